package game

import (
	"sync"
	"time"

	"github.com/KirkDiggler/codered/internal/common/clock"
)

// timerKind names one of the pending callbacks a room can have
type timerKind string

const (
	timerRoundDeadline timerKind = "round-deadline"
	timerRoundTick     timerKind = "round-tick"
	timerVoteDeadline  timerKind = "vote-deadline"
	timerVoteTick      timerKind = "vote-tick"
	timerIntermission  timerKind = "intermission"
	timerFixReveal     timerKind = "fix-reveal"
)

type timerKey struct {
	code string
	kind timerKind
}

// scheduler keeps at most one pending timer per room and kind
type scheduler struct {
	mu     sync.Mutex
	clock  clock.Clock
	timers map[timerKey]clock.Timer
}

func newScheduler(c clock.Clock) *scheduler {
	return &scheduler{
		clock:  c,
		timers: make(map[timerKey]clock.Timer),
	}
}

// schedule replaces any pending timer of the same room and kind
func (s *scheduler) schedule(code string, kind timerKind, d time.Duration, f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := timerKey{code: code, kind: kind}
	if prev, ok := s.timers[key]; ok {
		prev.Stop()
	}
	s.timers[key] = s.clock.AfterFunc(d, f)
}

func (s *scheduler) cancel(code string, kinds ...timerKind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, kind := range kinds {
		key := timerKey{code: code, kind: kind}
		if t, ok := s.timers[key]; ok {
			t.Stop()
			delete(s.timers, key)
		}
	}
}

// cancelRoom stops every pending timer of the room
func (s *scheduler) cancelRoom(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, t := range s.timers {
		if key.code == code {
			t.Stop()
			delete(s.timers, key)
		}
	}
}

func (s *scheduler) pending(code string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for key := range s.timers {
		if key.code == code {
			count++
		}
	}
	return count
}
