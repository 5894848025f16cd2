package game

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/KirkDiggler/codered/internal/common/clock"
	mockclock "github.com/KirkDiggler/codered/internal/common/clock/mocks"
	mockcode "github.com/KirkDiggler/codered/internal/common/roomcode/mocks"
	mockuuid "github.com/KirkDiggler/codered/internal/common/uuid/mocks"
	"github.com/KirkDiggler/codered/internal/models"
	"github.com/KirkDiggler/codered/internal/random"
	mockrandom "github.com/KirkDiggler/codered/internal/random/mocks"
	matchRepo "github.com/KirkDiggler/codered/internal/repositories/match"
	mockmatch "github.com/KirkDiggler/codered/internal/repositories/match/mocks"
	roomRepo "github.com/KirkDiggler/codered/internal/repositories/room"
	"github.com/KirkDiggler/codered/internal/samples"
	"github.com/KirkDiggler/codered/internal/services/messaging"
	"github.com/KirkDiggler/codered/internal/services/relay"
	mockrelay "github.com/KirkDiggler/codered/internal/services/relay/mocks"
)

type fakePublisher struct {
	mu     sync.Mutex
	events []*PublishInput
	gate   *publishGate
}

// publishGate stalls the first publish of event until release is closed
type publishGate struct {
	event   EventName
	reached chan struct{}
	release chan struct{}
}

func (p *fakePublisher) Publish(ctx context.Context, input *PublishInput) error {
	p.mu.Lock()
	p.events = append(p.events, input)
	gate := p.gate
	if gate != nil && gate.event == input.Event {
		p.gate = nil
	} else {
		gate = nil
	}
	p.mu.Unlock()

	if gate != nil {
		close(gate.reached)
		<-gate.release
	}
	return nil
}

func (p *fakePublisher) holdNext(event EventName) *publishGate {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gate = &publishGate{event: event, reached: make(chan struct{}), release: make(chan struct{})}
	return p.gate
}

func (p *fakePublisher) sequence() []EventName {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]EventName, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Event)
	}
	return out
}

func (p *fakePublisher) named(event EventName) []*PublishInput {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*PublishInput
	for _, e := range p.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func (p *fakePublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

type pendingTimer struct {
	d       time.Duration
	f       func()
	stopped bool
}

type fakeTimer struct{ t *pendingTimer }

func (f *fakeTimer) Stop() bool {
	was := !f.t.stopped
	f.t.stopped = true
	return was
}

type GameServiceTestSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mockClock     *mockclock.MockClock
	mockUUID      *mockuuid.MockUUID
	mockGenerator *mockcode.MockGenerator
	mockRandom    *mockrandom.MockSource
	mockDocuments *mockrelay.MockService
	mockMatchRepo *mockmatch.MockRepository
	announcer     *fakeAnnouncer

	publisher *fakePublisher
	rooms     roomRepo.Repository
	catalog   samples.Catalog
	service   *service
	ctx       context.Context

	mu        sync.Mutex
	now       time.Time
	timers    []*pendingTimer
	ids       int
	codes     int
	adversary int
	seeds       []string
	generations []string
	texts       map[string]string
	destroyed   []string
	matches     []*models.Match
	saveGate    chan struct{}
}

type fakeAnnouncer struct {
	mu      sync.Mutex
	matches []*models.Match
}

func (a *fakeAnnouncer) AnnounceMatch(ctx context.Context, match *models.Match) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.matches = append(a.matches, match)
	return nil
}

func (s *GameServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockClock = mockclock.NewMockClock(s.ctrl)
	s.mockUUID = mockuuid.NewMockUUID(s.ctrl)
	s.mockGenerator = mockcode.NewMockGenerator(s.ctrl)
	s.mockRandom = mockrandom.NewMockSource(s.ctrl)
	s.mockDocuments = mockrelay.NewMockService(s.ctrl)
	s.mockMatchRepo = mockmatch.NewMockRepository(s.ctrl)
	s.announcer = &fakeAnnouncer{}
	s.publisher = &fakePublisher{}
	s.catalog = samples.Default()
	s.ctx = context.Background()

	s.now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.timers = nil
	s.ids = 0
	s.codes = 0
	s.adversary = 0
	s.seeds = nil
	s.generations = nil
	s.texts = map[string]string{}
	s.destroyed = nil
	s.matches = nil
	s.saveGate = nil

	s.mockClock.EXPECT().Now().DoAndReturn(func() time.Time {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.now
	}).AnyTimes()
	s.mockClock.EXPECT().AfterFunc(gomock.Any(), gomock.Any()).DoAndReturn(func(d time.Duration, f func()) clock.Timer {
		s.mu.Lock()
		defer s.mu.Unlock()
		t := &pendingTimer{d: d, f: f}
		s.timers = append(s.timers, t)
		return &fakeTimer{t: t}
	}).AnyTimes()
	s.mockUUID.EXPECT().NewUUID().DoAndReturn(func() string {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.ids++
		return fmt.Sprintf("id-%d", s.ids)
	}).AnyTimes()
	s.mockGenerator.EXPECT().Generate().DoAndReturn(func() string {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.codes++
		return fmt.Sprintf("ROOM%02d", s.codes)
	}).AnyTimes()
	s.mockRandom.EXPECT().Intn(gomock.Any()).Return(0).AnyTimes()
	s.mockRandom.EXPECT().Perm(gomock.Any()).DoAndReturn(func(n int) []int {
		perm := make([]int, n)
		for i := range perm {
			perm[i] = (i + s.adversary) % n
		}
		return perm
	}).AnyTimes()
	s.mockDocuments.EXPECT().Seed(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, input *relay.SeedInput) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.seeds = append(s.seeds, input.Text)
		s.generations = append(s.generations, input.Generation)
		s.texts[input.RoomCode] = input.Text
		return nil
	}).AnyTimes()
	s.mockDocuments.EXPECT().GetText(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, input *relay.GetTextInput) (*relay.GetTextOutput, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		text, ok := s.texts[input.RoomCode]
		if !ok {
			return nil, relay.ErrDocumentNotFound
		}
		return &relay.GetTextOutput{Text: text}, nil
	}).AnyTimes()
	s.mockDocuments.EXPECT().Destroy(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, input *relay.DestroyInput) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.destroyed = append(s.destroyed, input.RoomCode)
		return nil
	}).AnyTimes()
	s.mockMatchRepo.EXPECT().SaveMatch(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, input *matchRepo.SaveMatchInput) error {
		s.mu.Lock()
		gate := s.saveGate
		s.mu.Unlock()
		if gate != nil {
			<-gate
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		s.matches = append(s.matches, input.Match)
		return nil
	}).AnyTimes()

	rooms, err := roomRepo.NewMemory(&roomRepo.Config{Generator: s.mockGenerator})
	s.Require().NoError(err)
	s.rooms = rooms

	msgs, err := messaging.New(&messaging.Config{Random: random.New(&random.Config{Seed: 1})})
	s.Require().NoError(err)

	svc, err := New(&Config{
		RoomRepo:      s.rooms,
		MatchRepo:     s.mockMatchRepo,
		Documents:     s.mockDocuments,
		Publisher:     s.publisher,
		Messaging:     msgs,
		Catalog:       s.catalog,
		Announcer:     s.announcer,
		Random:        s.mockRandom,
		Clock:         s.mockClock,
		UUIDGenerator: s.mockUUID,
	})
	s.Require().NoError(err)
	s.service = svc
}

func (s *GameServiceTestSuite) TearDownTest() {
	s.service.archives.Wait()
	s.ctrl.Finish()
}

func TestGameServiceTestSuite(t *testing.T) {
	suite.Run(t, new(GameServiceTestSuite))
}

// advance moves the clock forward by d and fires every pending timer of that duration
func (s *GameServiceTestSuite) advance(d time.Duration) int {
	s.mu.Lock()
	s.now = s.now.Add(d)
	var due, rest []*pendingTimer
	for _, t := range s.timers {
		switch {
		case t.stopped:
		case t.d == d:
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	s.timers = rest
	s.mu.Unlock()

	for _, t := range due {
		t.stopped = true
		t.f()
	}
	return len(due)
}

// archived waits for finished games to be recorded and returns the saved matches
func (s *GameServiceTestSuite) archived() []*models.Match {
	s.service.archives.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.Match(nil), s.matches...)
}

func (s *GameServiceTestSuite) announced() []*models.Match {
	s.service.archives.Wait()
	s.announcer.mu.Lock()
	defer s.announcer.mu.Unlock()
	return append([]*models.Match(nil), s.announcer.matches...)
}

// pendingWith returns the live timer of the given duration, if any
func (s *GameServiceTestSuite) pendingWith(d time.Duration) *pendingTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.timers {
		if !t.stopped && t.d == d {
			return t
		}
	}
	return nil
}

func (s *GameServiceTestSuite) room(code string) *models.Room {
	room, err := s.rooms.GetRoom(s.ctx, &roomRepo.GetRoomInput{Code: code})
	s.Require().NoError(err)
	return room
}

func (s *GameServiceTestSuite) last(event EventName) *PublishInput {
	events := s.publisher.named(event)
	s.Require().NotEmpty(events, "no %s event published", event)
	return events[len(events)-1]
}

func (s *GameServiceTestSuite) newLobby(players int) (string, []string) {
	created, err := s.service.CreateRoom(s.ctx, &CreateRoomInput{DisplayName: "Host"})
	s.Require().NoError(err)

	ids := []string{created.ParticipantID}
	for i := 2; i <= players; i++ {
		joined, err := s.service.JoinRoom(s.ctx, &JoinRoomInput{
			RoomCode:    created.RoomCode,
			DisplayName: fmt.Sprintf("Player %d", i),
		})
		s.Require().NoError(err)
		ids = append(ids, joined.ParticipantID)
	}
	return created.RoomCode, ids
}

// newGame starts a game where the member at index adversary holds the adversary role
func (s *GameServiceTestSuite) newGame(players, adversary int) (string, []string) {
	code, ids := s.newLobby(players)
	s.adversary = adversary

	_, err := s.service.StartGame(s.ctx, &StartGameInput{RoomCode: code, ParticipantID: ids[0]})
	s.Require().NoError(err)
	s.publisher.reset()
	return code, ids
}

func (s *GameServiceTestSuite) buzz(code, id, suspect string) {
	_, err := s.service.Buzz(s.ctx, &BuzzInput{RoomCode: code, ParticipantID: id, SuspectID: suspect})
	s.Require().NoError(err)
}

func (s *GameServiceTestSuite) vote(code, id, target string) *CastVoteOutput {
	out, err := s.service.CastVote(s.ctx, &CastVoteInput{RoomCode: code, ParticipantID: id, TargetID: target})
	s.Require().NoError(err)
	return out
}

func (s *GameServiceTestSuite) TestNew_Validation() {
	_, err := New(nil)
	s.ErrorIs(err, ErrNilConfig)

	_, err = New(&Config{})
	s.ErrorIs(err, ErrNilRoomRepo)

	_, err = New(&Config{RoomRepo: s.rooms})
	s.ErrorIs(err, ErrNilDocuments)

	_, err = New(&Config{RoomRepo: s.rooms, Documents: s.mockDocuments})
	s.ErrorIs(err, ErrNilPublisher)
}

func (s *GameServiceTestSuite) TestNew_Defaults() {
	s.Equal(DefaultTotalRounds, s.service.totalRounds)
	s.Equal(DefaultRoundDuration, s.service.roundDuration)
	s.Equal(DefaultVoteDuration, s.service.voteDuration)
	s.Equal(DefaultRoundIntermission, s.service.roundIntermission)
	s.Equal(DefaultFixRevealDelay, s.service.fixRevealDelay)
}

func (s *GameServiceTestSuite) TestCreateRoom() {
	_, err := s.service.CreateRoom(s.ctx, &CreateRoomInput{DisplayName: "  a  "})
	s.ErrorIs(err, ErrInvalidDisplayName)

	_, err = s.service.CreateRoom(s.ctx, &CreateRoomInput{DisplayName: strings.Repeat("x", MaxDisplayNameLength+1)})
	s.ErrorIs(err, ErrInvalidDisplayName)

	out, err := s.service.CreateRoom(s.ctx, &CreateRoomInput{DisplayName: "  Ada  "})
	s.Require().NoError(err)
	s.Equal("ROOM01", out.RoomCode)
	s.Require().Len(out.Room.Members, 1)
	s.Equal("Ada", out.Room.Members[0].Name)
	s.True(out.Room.Members[0].IsHost)
	s.Equal(out.ParticipantID, out.Room.HostID)
	s.Equal(models.PresenceColor(0), out.Room.Members[0].Color)
	s.Equal(models.GameStateLobby, out.Room.State)
	s.Equal(DefaultTotalRounds, out.Room.TotalRounds)
}

func (s *GameServiceTestSuite) TestJoinRoom() {
	_, err := s.service.JoinRoom(s.ctx, &JoinRoomInput{RoomCode: "abc", DisplayName: "Bob"})
	s.ErrorIs(err, ErrInvalidRoomCode)

	_, err = s.service.JoinRoom(s.ctx, &JoinRoomInput{RoomCode: "zzz999", DisplayName: "Bob"})
	s.ErrorIs(err, ErrRoomNotFound)

	code, ids := s.newLobby(1)
	s.publisher.reset()

	out, err := s.service.JoinRoom(s.ctx, &JoinRoomInput{RoomCode: strings.ToLower(code), DisplayName: "Bob"})
	s.Require().NoError(err)
	s.Equal(code, out.RoomCode)
	s.Len(out.Room.Members, 2)
	s.False(out.Room.Members[1].IsHost)

	joined := s.last(EventPlayerJoined)
	s.Equal(out.ParticipantID, joined.ExcludeID)
	s.Equal("Bob", joined.Data.(*PlayerJoinedEvent).Participant.Name)

	chat := s.last(EventChatMessage).Data.(*ChatMessageEvent)
	s.True(chat.System)
	s.Contains(chat.Text, "Bob")

	s.Equal(ids[0], s.room(code).HostID)
}

func (s *GameServiceTestSuite) TestJoinRoom_PreassignedID() {
	code, _ := s.newLobby(1)

	out, err := s.service.JoinRoom(s.ctx, &JoinRoomInput{RoomCode: code, DisplayName: "Bob", ParticipantID: "conn-1"})
	s.Require().NoError(err)
	s.Equal("conn-1", out.ParticipantID)
	s.NotNil(s.room(code).Member("conn-1"))

	_, err = s.service.JoinRoom(s.ctx, &JoinRoomInput{RoomCode: code, DisplayName: "Bob again", ParticipantID: "conn-1"})
	s.ErrorIs(err, ErrAlreadyInRoom)
	s.Len(s.room(code).Members, 2)
}

func (s *GameServiceTestSuite) TestJoinRoom_Full() {
	code, _ := s.newLobby(models.MaxMembers)

	_, err := s.service.JoinRoom(s.ctx, &JoinRoomInput{RoomCode: code, DisplayName: "Late"})
	s.ErrorIs(err, ErrRoomFull)
	s.Len(s.room(code).Members, models.MaxMembers)
}

func (s *GameServiceTestSuite) TestJoinRoom_AfterStart() {
	code, _ := s.newGame(3, 0)

	_, err := s.service.JoinRoom(s.ctx, &JoinRoomInput{RoomCode: code, DisplayName: "Late"})
	s.ErrorIs(err, ErrInvalidGameState)
}

func (s *GameServiceTestSuite) TestToggleReady() {
	code, ids := s.newLobby(2)

	out, err := s.service.ToggleReady(s.ctx, &ToggleReadyInput{RoomCode: code, ParticipantID: ids[1]})
	s.Require().NoError(err)
	s.True(out.IsReady)

	out, err = s.service.ToggleReady(s.ctx, &ToggleReadyInput{RoomCode: code, ParticipantID: ids[1]})
	s.Require().NoError(err)
	s.False(out.IsReady)

	_, err = s.service.ToggleReady(s.ctx, &ToggleReadyInput{RoomCode: code, ParticipantID: "nobody"})
	s.ErrorIs(err, ErrParticipantNotInRoom)
}

func (s *GameServiceTestSuite) TestStartGame_Validation() {
	code, ids := s.newLobby(2)

	_, err := s.service.StartGame(s.ctx, &StartGameInput{RoomCode: code, ParticipantID: "nobody"})
	s.ErrorIs(err, ErrParticipantNotInRoom)

	_, err = s.service.StartGame(s.ctx, &StartGameInput{RoomCode: code, ParticipantID: ids[1]})
	s.ErrorIs(err, ErrNotHost)

	_, err = s.service.StartGame(s.ctx, &StartGameInput{RoomCode: code, ParticipantID: ids[0]})
	s.ErrorIs(err, ErrNotEnoughPlayers)
	s.Equal(models.GameStateLobby, s.room(code).State)
}

func (s *GameServiceTestSuite) TestStartGame_AssignsExactlyOneAdversary() {
	code, ids := s.newLobby(4)
	s.adversary = 2
	s.publisher.reset()

	out, err := s.service.StartGame(s.ctx, &StartGameInput{RoomCode: code, ParticipantID: ids[0]})
	s.Require().NoError(err)
	s.Equal(models.GameStatePlaying, out.Room.State)
	s.Equal(1, out.Room.CurrentRound)

	room := s.room(code)
	adversaries := 0
	for _, p := range room.Members {
		if p.IsAdversary() {
			adversaries++
		}
	}
	s.Equal(1, adversaries)
	s.Equal(ids[2], room.Adversary().ID)
	s.Equal(ids[2], room.Round.AdversaryID)

	// roles only ever travel as private messages
	assigned := s.publisher.named(EventRoleAssigned)
	s.Require().Len(assigned, 4)
	for _, e := range assigned {
		s.NotEmpty(e.RecipientID)
		p := room.Member(e.RecipientID)
		s.Require().NotNil(p)
		s.Equal(p.Role, e.Data.(*RoleAssignedEvent).Role)
	}

	s.Len(s.publisher.named(EventGameStarted), 1)
	started := s.last(EventRoundStarted).Data.(*RoundStartedEvent)
	s.Equal(1, started.Round.Number)
	s.Equal(90, started.Round.Remaining)

	sample := s.catalog.All()[0]
	s.Equal([]string{sample.Defects[0].Content}, s.seeds)
	s.Equal(sample.Defects[0].Content, started.Round.Content)

	_, err = s.service.StartGame(s.ctx, &StartGameInput{RoomCode: code, ParticipantID: ids[0]})
	s.ErrorIs(err, ErrInvalidGameState)
}

func (s *GameServiceTestSuite) TestRoundTimeout_AwardsBonusAndStartsNextRound() {
	code, ids := s.newGame(3, 1)

	s.Equal(1, s.advance(DefaultRoundDuration))

	room := s.room(code)
	s.Equal(NoBuzzBonus, room.Scores[ids[1]])
	s.Equal(0, room.Scores[ids[0]])
	s.False(room.Round.Active)

	summary := s.last(EventRoundEnded).Data.(*RoundSummary)
	s.Equal(RoundEndTimeout, summary.Reason)
	s.True(summary.BonusAwarded)
	s.Equal(ids[1], summary.AdversaryID)
	s.Equal(NoBuzzBonus, summary.Scores[ids[1]])
	s.Equal(0, summary.Buzzes)
	s.Equal(s.catalog.All()[0].Defects[0].Content, summary.FinalText)

	// buzzing is closed between rounds
	_, err := s.service.Buzz(s.ctx, &BuzzInput{RoomCode: code, ParticipantID: ids[0]})
	s.ErrorIs(err, ErrRoundNotActive)

	s.Equal(1, s.advance(DefaultRoundIntermission))
	room = s.room(code)
	s.Equal(2, room.CurrentRound)
	s.True(room.Round.Active)
	s.Equal(models.GameStatePlaying, room.State)
	s.Len(s.publisher.named(EventRoundStarted), 1)
	s.Len(s.publisher.named(EventRoleAssigned), 3)

	// each round seeds its document under its own generation
	s.Require().Len(s.generations, 2)
	s.NotEqual(s.generations[0], s.generations[1])
	s.Equal(room.Round.ID, s.generations[1])
}

func (s *GameServiceTestSuite) TestRoundTimeout_BonusAfterBuzzReleased() {
	code, ids := s.newGame(3, 2)

	s.buzz(code, ids[0], ids[1])
	s.vote(code, ids[2], ids[0])
	s.Equal(VoteOutcomeNone, s.last(EventVoteEnded).Data.(*VoteEndedEvent).Outcome)
	s.Empty(s.room(code).Round.BuzzedBy)

	s.advance(DefaultRoundDuration)
	summary := s.last(EventRoundEnded).Data.(*RoundSummary)
	s.True(summary.BonusAwarded)
	s.Equal(1, summary.Buzzes)
	s.Equal(NoBuzzBonus, summary.Scores[ids[2]])
	s.Equal(NoBuzzBonus, s.room(code).Scores[ids[2]])
}

func (s *GameServiceTestSuite) TestRoundTick() {
	code, _ := s.newGame(3, 0)

	s.advance(time.Second)
	s.Equal(89, s.last(EventTimerUpdate).Data.(*TimerEvent).Remaining)

	s.advance(time.Second)
	s.Equal(88, s.last(EventTimerUpdate).Data.(*TimerEvent).Remaining)
	s.Len(s.publisher.named(EventTimerUpdate), 2)
	s.Equal(code, s.last(EventTimerUpdate).RoomCode)
}

func (s *GameServiceTestSuite) TestAllyBuzzAndVote_DisablesAdversary() {
	code, ids := s.newGame(3, 2)

	out, err := s.service.Buzz(s.ctx, &BuzzInput{RoomCode: code, ParticipantID: ids[0], SuspectID: ids[2]})
	s.Require().NoError(err)
	s.NotEmpty(out.VoteID)

	buzzed := s.last(EventPlayerBuzzed).Data.(*PlayerBuzzedEvent)
	s.Equal(ids[0], buzzed.ParticipantID)
	s.Equal([]string{ids[0], ids[1]}, buzzed.Vote.Eligible)
	s.Equal([]string{ids[0]}, buzzed.Vote.Voted)
	s.Equal(ids[0], s.room(code).Round.BuzzedBy)

	voted := s.vote(code, ids[1], ids[2])
	s.True(voted.Resolved)

	ended := s.last(EventVoteEnded).Data.(*VoteEndedEvent)
	s.Equal(VoteOutcomeDisable, ended.Outcome)
	s.Equal(ids[2], ended.TargetID)
	s.Equal(2, ended.Counts[ids[2]])

	disabled := s.last(EventPlayerDisabled).Data.(*PlayerDisabledEvent)
	s.Equal(ids[2], disabled.ParticipantID)
	s.Equal(models.RoleAdversary, disabled.Role)

	room := s.room(code)
	s.Equal(models.GameStateResults, room.State)
	s.Equal(models.FactionAllies, room.Winner)
	s.Equal(EndReasonAdversaryDisabled, room.EndReason)
	s.Nil(room.ActiveVote)
	s.Equal(0, s.service.timers.pending(code))

	gameEnded := s.last(EventGameEnded).Data.(*GameEndedEvent)
	s.Equal(models.FactionAllies, gameEnded.Winner)
	s.Equal(ids[2], gameEnded.AdversaryID)
	s.NotEmpty(gameEnded.Message)

	s.Equal([]string{code}, s.destroyed)
	matches := s.archived()
	s.Require().Len(matches, 1)
	s.Equal(code, matches[0].RoomCode)
	s.Equal(models.FactionAllies, matches[0].Winner)
	s.Len(matches[0].Players, 3)
	s.Len(s.announced(), 1)
}

func (s *GameServiceTestSuite) TestSplitVote_NoOneDisabled() {
	code, ids := s.newGame(3, 2)

	s.buzz(code, ids[0], ids[2])
	voted := s.vote(code, ids[1], ids[0])
	s.True(voted.Resolved)

	ended := s.last(EventVoteEnded).Data.(*VoteEndedEvent)
	s.Equal(VoteOutcomeNone, ended.Outcome)
	s.Empty(ended.TargetID)
	s.Empty(s.publisher.named(EventPlayerDisabled))

	room := s.room(code)
	s.Equal(models.GameStatePlaying, room.State)
	s.Nil(room.ActiveVote)
	s.Empty(room.Round.BuzzedBy)
	for _, p := range room.Members {
		s.False(p.Disabled)
	}

	// the buzz lock is released
	s.buzz(code, ids[1], "")
	s.Equal(2, s.room(code).Round.BuzzCount)
}

func (s *GameServiceTestSuite) TestBuzzWithoutSuspect_EveryoneVotes() {
	code, ids := s.newGame(3, 2)

	s.buzz(code, ids[0], "")
	buzzed := s.last(EventPlayerBuzzed).Data.(*PlayerBuzzedEvent)
	s.Equal([]string{ids[0], ids[1], ids[2]}, buzzed.Vote.Eligible)
	s.Empty(buzzed.Vote.Voted)

	s.False(s.vote(code, ids[0], ids[2]).Resolved)
	s.False(s.vote(code, ids[2], ids[0]).Resolved)
	s.True(s.vote(code, ids[1], ids[2]).Resolved)

	s.Equal(models.FactionAllies, s.room(code).Winner)
}

func (s *GameServiceTestSuite) TestBuzz_Validation() {
	code, ids := s.newLobby(4)
	_, err := s.service.Buzz(s.ctx, &BuzzInput{RoomCode: code, ParticipantID: ids[0]})
	s.ErrorIs(err, ErrInvalidGameState)

	code, ids = s.newGame(4, 3)

	_, err = s.service.Buzz(s.ctx, &BuzzInput{RoomCode: code, ParticipantID: "nobody"})
	s.ErrorIs(err, ErrParticipantNotInRoom)

	_, err = s.service.Buzz(s.ctx, &BuzzInput{RoomCode: code, ParticipantID: ids[3]})
	s.ErrorIs(err, ErrAdversaryCannotBuzz)

	_, err = s.service.Buzz(s.ctx, &BuzzInput{RoomCode: code, ParticipantID: ids[0], SuspectID: ids[0]})
	s.ErrorIs(err, ErrInvalidVoteTarget)

	_, err = s.service.Buzz(s.ctx, &BuzzInput{RoomCode: code, ParticipantID: ids[0], SuspectID: "nobody"})
	s.ErrorIs(err, ErrInvalidVoteTarget)
	s.Nil(s.room(code).ActiveVote)

	s.buzz(code, ids[0], ids[1])

	_, err = s.service.Buzz(s.ctx, &BuzzInput{RoomCode: code, ParticipantID: ids[1]})
	s.ErrorIs(err, ErrAccusedCannotBuzz)

	_, err = s.service.Buzz(s.ctx, &BuzzInput{RoomCode: code, ParticipantID: ids[2]})
	s.ErrorIs(err, ErrVoteInProgress)
	s.Equal(1, s.room(code).Round.BuzzCount)
}

func (s *GameServiceTestSuite) TestCastVote_Validation() {
	code, ids := s.newGame(4, 3)

	_, err := s.service.CastVote(s.ctx, &CastVoteInput{RoomCode: code, ParticipantID: ids[0], TargetID: ids[3]})
	s.ErrorIs(err, ErrNoActiveVote)

	s.buzz(code, ids[0], ids[1])

	_, err = s.service.CastVote(s.ctx, &CastVoteInput{RoomCode: code, ParticipantID: ids[1], TargetID: ids[0]})
	s.ErrorIs(err, ErrNotEligibleToVote)

	_, err = s.service.CastVote(s.ctx, &CastVoteInput{RoomCode: code, ParticipantID: ids[2], TargetID: ids[2]})
	s.ErrorIs(err, ErrInvalidVoteTarget)

	_, err = s.service.CastVote(s.ctx, &CastVoteInput{RoomCode: code, ParticipantID: ids[2], TargetID: "nobody"})
	s.ErrorIs(err, ErrInvalidVoteTarget)

	// a later ballot replaces an earlier one
	s.False(s.vote(code, ids[2], ids[3]).Resolved)
	out, err := s.service.CastVote(s.ctx, &CastVoteInput{RoomCode: code, ParticipantID: ids[2], Abstain: true})
	s.Require().NoError(err)
	s.False(out.Resolved)

	vote := s.room(code).ActiveVote
	s.Require().NotNil(vote)
	_, cast := vote.Ballots[ids[2]]
	s.False(cast)
	s.True(vote.Abstentions[ids[2]])

	updated := s.last(EventVoteUpdated).Data.(*VoteUpdatedEvent)
	s.Equal(1, updated.Vote.Abstentions)
	s.Equal([]string{ids[0], ids[2], ids[3]}, updated.Vote.Eligible)

	// one ballot each for two targets is no majority
	s.True(s.vote(code, ids[3], ids[0]).Resolved)
	s.Equal(VoteOutcomeNone, s.last(EventVoteEnded).Data.(*VoteEndedEvent).Outcome)
}

func (s *GameServiceTestSuite) TestDisabledAlly_GameContinues() {
	code, ids := s.newGame(5, 4)

	s.buzz(code, ids[0], ids[1])
	s.vote(code, ids[2], ids[1])
	s.vote(code, ids[3], ids[1])
	out, err := s.service.CastVote(s.ctx, &CastVoteInput{RoomCode: code, ParticipantID: ids[4], Abstain: true})
	s.Require().NoError(err)
	s.True(out.Resolved)

	room := s.room(code)
	s.True(room.Member(ids[1]).Disabled)
	s.Equal(models.RoleAlly, room.Member(ids[1]).Role)
	s.Equal(models.GameStatePlaying, room.State)
	s.Equal(models.RoleAlly, s.last(EventPlayerDisabled).Data.(*PlayerDisabledEvent).Role)
	s.Empty(s.publisher.named(EventGameEnded))

	_, err = s.service.Buzz(s.ctx, &BuzzInput{RoomCode: code, ParticipantID: ids[1]})
	s.ErrorIs(err, ErrParticipantDisabled)

	_, err = s.service.SubmitFix(s.ctx, &SubmitFixInput{RoomCode: code, ParticipantID: ids[1], Content: "x"})
	s.ErrorIs(err, ErrParticipantDisabled)

	// disabled members are out of the next electorate and cannot be targeted
	s.buzz(code, ids[0], ids[4])
	buzzed := s.last(EventPlayerBuzzed).Data.(*PlayerBuzzedEvent)
	s.Equal([]string{ids[0], ids[2], ids[3]}, buzzed.Vote.Eligible)

	_, err = s.service.CastVote(s.ctx, &CastVoteInput{RoomCode: code, ParticipantID: ids[1], TargetID: ids[4]})
	s.ErrorIs(err, ErrNotEligibleToVote)

	_, err = s.service.CastVote(s.ctx, &CastVoteInput{RoomCode: code, ParticipantID: ids[2], TargetID: ids[1]})
	s.ErrorIs(err, ErrInvalidVoteTarget)
}

func (s *GameServiceTestSuite) TestDisabledMember_HasNoRoleNextRound() {
	code, ids := s.newGame(4, 3)

	s.buzz(code, ids[0], ids[1])
	s.vote(code, ids[2], ids[1])
	s.True(s.vote(code, ids[3], ids[1]).Resolved)
	s.True(s.room(code).Member(ids[1]).Disabled)

	s.Equal(1, s.advance(DefaultRoundDuration))
	s.publisher.reset()
	s.Equal(1, s.advance(DefaultRoundIntermission))

	room := s.room(code)
	s.Equal(2, room.CurrentRound)
	s.True(room.Round.Active)

	disabled := room.Member(ids[1])
	s.True(disabled.Disabled)
	s.Equal(models.RoleNone, disabled.Role)

	adversaries := 0
	for _, p := range room.ActiveMembers() {
		switch p.Role {
		case models.RoleAdversary:
			adversaries++
			s.Equal(p.ID, room.Round.AdversaryID)
		case models.RoleAlly:
		default:
			s.Failf("unassigned role", "active member %s has role %q", p.ID, p.Role)
		}
	}
	s.Equal(1, adversaries)

	assigned := s.publisher.named(EventRoleAssigned)
	s.Len(assigned, 3)
	for _, e := range assigned {
		s.NotEqual(ids[1], e.RecipientID)
	}
}

func (s *GameServiceTestSuite) TestEventsPublishInTransitionOrder() {
	code, ids := s.newGame(4, 3)
	s.buzz(code, ids[0], ids[3])
	s.publisher.reset()

	gate := s.publisher.holdNext(EventVoteUpdated)
	first := make(chan struct{})
	go func() {
		defer close(first)
		_, _ = s.service.CastVote(s.ctx, &CastVoteInput{RoomCode: code, ParticipantID: ids[1], TargetID: ids[3]})
	}()
	<-gate.reached

	second := make(chan struct{})
	go func() {
		defer close(second)
		_, _ = s.service.CastVote(s.ctx, &CastVoteInput{RoomCode: code, ParticipantID: ids[2], TargetID: ids[3]})
	}()

	// the deciding ballot waits while the previous update is still being published
	select {
	case <-second:
		close(gate.release)
		s.FailNow("second ballot completed while the first update was unpublished")
	case <-time.After(50 * time.Millisecond):
	}

	close(gate.release)
	<-first
	<-second

	seq := s.publisher.sequence()
	s.Require().GreaterOrEqual(len(seq), 3)
	s.Equal([]EventName{EventVoteUpdated, EventVoteUpdated, EventVoteEnded}, seq[:3])

	index := func(event EventName) int {
		for i, e := range seq {
			if e == event {
				return i
			}
		}
		return -1
	}
	s.Less(index(EventVoteEnded), index(EventPlayerDisabled))
	s.Less(index(EventPlayerDisabled), index(EventGameEnded))
	s.Equal(models.GameStateResults, s.room(code).State)
}

func (s *GameServiceTestSuite) TestGameEnd_DoesNotWaitForArchive() {
	code, ids := s.newGame(3, 2)
	s.saveGate = make(chan struct{})

	s.buzz(code, ids[0], ids[2])
	done := make(chan *CastVoteOutput, 1)
	go func() {
		out, _ := s.service.CastVote(s.ctx, &CastVoteInput{RoomCode: code, ParticipantID: ids[1], TargetID: ids[2]})
		done <- out
	}()

	select {
	case out := <-done:
		s.Require().NotNil(out)
		s.True(out.Resolved)
	case <-time.After(time.Second):
		close(s.saveGate)
		s.FailNow("vote did not return while the archive was blocked")
	}

	s.Equal(models.GameStateResults, s.room(code).State)
	s.NotEmpty(s.publisher.named(EventGameEnded))

	s.mu.Lock()
	s.Empty(s.matches)
	s.mu.Unlock()

	close(s.saveGate)
	s.Len(s.archived(), 1)
	s.Len(s.announced(), 1)
}

func (s *GameServiceTestSuite) TestDisabledAlly_AdversaryWins() {
	code, ids := s.newGame(3, 2)

	s.buzz(code, ids[0], ids[1])
	s.True(s.vote(code, ids[2], ids[1]).Resolved)

	room := s.room(code)
	s.Equal(models.GameStateResults, room.State)
	s.Equal(models.FactionAdversary, room.Winner)
	s.Equal(EndReasonNotEnoughAllies, room.EndReason)
	s.Len(s.archived(), 1)
}

func (s *GameServiceTestSuite) TestVoteDeadline_ResolvesWithBallotsCast() {
	code, ids := s.newGame(4, 3)

	s.buzz(code, ids[0], ids[3])
	s.False(s.vote(code, ids[1], ids[3]).Resolved)

	s.Equal(1, s.advance(DefaultVoteDuration))

	ended := s.last(EventVoteEnded).Data.(*VoteEndedEvent)
	s.Equal(VoteOutcomeDisable, ended.Outcome)
	s.Equal(ids[3], ended.TargetID)
	s.Equal(models.FactionAllies, s.room(code).Winner)
}

func (s *GameServiceTestSuite) TestVoteTick() {
	code, ids := s.newGame(3, 2)
	s.buzz(code, ids[0], "")

	// the round and vote ticks both run while a vote is open
	s.Equal(2, s.advance(time.Second))
	s.Equal(59, s.last(EventVoteTimeUpdate).Data.(*TimerEvent).Remaining)
	s.Equal(89, s.last(EventTimerUpdate).Data.(*TimerEvent).Remaining)

	s.vote(code, ids[0], ids[2])
	s.vote(code, ids[1], ids[0])
	s.True(s.vote(code, ids[2], ids[1]).Resolved)

	// resolution stops the vote tick
	s.Equal(1, s.advance(time.Second))
	s.Len(s.publisher.named(EventVoteTimeUpdate), 1)
}

func (s *GameServiceTestSuite) TestVoteDeadline_StaleCallbackIgnored() {
	code, ids := s.newGame(3, 2)

	s.buzz(code, ids[0], ids[2])
	deadline := s.pendingWith(DefaultVoteDuration)
	s.Require().NotNil(deadline)

	s.vote(code, ids[1], ids[0])
	s.True(deadline.stopped)

	// a callback that lost the race with resolution is a no-op
	deadline.f()
	s.Len(s.publisher.named(EventVoteEnded), 1)

	s.buzz(code, ids[1], ids[2])
	deadline.f()
	s.NotNil(s.room(code).ActiveVote)
	s.Len(s.publisher.named(EventVoteEnded), 1)
}

func (s *GameServiceTestSuite) TestRoundDeadline_CancelsOpenVote() {
	code, ids := s.newGame(4, 3)

	s.buzz(code, ids[0], ids[3])
	s.advance(DefaultRoundDuration)

	cancelled := s.last(EventVoteCancelled).Data.(*VoteCancelledEvent)
	s.Equal(VoteCancelRoundEnded, cancelled.Reason)
	s.Empty(s.publisher.named(EventVoteEnded))

	room := s.room(code)
	s.Nil(room.ActiveVote)
	s.False(room.Round.Active)
	summary := s.last(EventRoundEnded).Data.(*RoundSummary)
	s.Equal(RoundEndTimeout, summary.Reason)
	s.False(summary.BonusAwarded)
	s.Zero(room.Scores[ids[3]])
	s.Nil(s.pendingWith(DefaultVoteDuration))
}

func (s *GameServiceTestSuite) TestLeave_CancelsOpenVote() {
	code, ids := s.newGame(4, 3)

	s.buzz(code, ids[0], ids[3])

	out, err := s.service.LeaveRoom(s.ctx, &LeaveRoomInput{RoomCode: code, ParticipantID: ids[1]})
	s.Require().NoError(err)
	s.False(out.RoomDestroyed)

	cancelled := s.last(EventVoteCancelled).Data.(*VoteCancelledEvent)
	s.Equal(VoteCancelParticipantLeft, cancelled.Reason)
	s.Equal(ids[1], cancelled.ParticipantID)
	s.Empty(s.publisher.named(EventVoteEnded))

	room := s.room(code)
	s.Nil(room.ActiveVote)
	s.Equal(models.GameStatePlaying, room.State)
	s.Nil(s.pendingWith(DefaultVoteDuration))

	left := s.last(EventPlayerLeft).Data.(*PlayerLeftEvent)
	s.Equal(ids[1], left.ParticipantID)
	s.Len(left.Room.Members, 3)

	s.buzz(code, ids[2], ids[3])
}

func (s *GameServiceTestSuite) TestLeave_AdversaryLeavingEndsGame() {
	code, ids := s.newGame(3, 2)

	_, err := s.service.LeaveRoom(s.ctx, &LeaveRoomInput{RoomCode: code, ParticipantID: ids[2]})
	s.Require().NoError(err)

	room := s.room(code)
	s.Equal(models.GameStateResults, room.State)
	s.Equal(models.FactionAllies, room.Winner)
	s.Equal(EndReasonAdversaryLeft, room.EndReason)
}

func (s *GameServiceTestSuite) TestLeave_TooFewAlliesEndsGame() {
	code, ids := s.newGame(3, 2)

	_, err := s.service.LeaveRoom(s.ctx, &LeaveRoomInput{RoomCode: code, ParticipantID: ids[1]})
	s.Require().NoError(err)

	room := s.room(code)
	s.Equal(models.FactionAdversary, room.Winner)
	s.Equal(EndReasonNotEnoughAllies, room.EndReason)
}

func (s *GameServiceTestSuite) TestLeave_BetweenRoundsWithTooFewPlayers() {
	code, ids := s.newGame(3, 2)
	s.advance(DefaultRoundDuration)

	_, err := s.service.LeaveRoom(s.ctx, &LeaveRoomInput{RoomCode: code, ParticipantID: ids[1]})
	s.Require().NoError(err)

	room := s.room(code)
	s.Equal(models.GameStateResults, room.State)
	s.Equal(models.FactionNone, room.Winner)
	s.Equal(EndReasonNotEnoughPlayers, room.EndReason)

	// the intermission timer was dropped with the rest
	s.Equal(0, s.advance(DefaultRoundIntermission))
	s.Equal(1, s.room(code).CurrentRound)
}

func (s *GameServiceTestSuite) TestLeave_HostPasses() {
	code, ids := s.newLobby(3)

	_, err := s.service.LeaveRoom(s.ctx, &LeaveRoomInput{RoomCode: code, ParticipantID: ids[0]})
	s.Require().NoError(err)

	room := s.room(code)
	s.Equal(ids[1], room.HostID)
	s.True(room.Member(ids[1]).IsHost)
	s.Equal(ids[1], s.last(EventPlayerLeft).Data.(*PlayerLeftEvent).Room.HostID)

	_, err = s.service.LeaveRoom(s.ctx, &LeaveRoomInput{RoomCode: code, ParticipantID: ids[0]})
	s.ErrorIs(err, ErrParticipantNotInRoom)
}

func (s *GameServiceTestSuite) TestLeave_LastMemberDestroysRoom() {
	code, ids := s.newLobby(2)

	_, err := s.service.LeaveRoom(s.ctx, &LeaveRoomInput{RoomCode: code, ParticipantID: ids[0]})
	s.Require().NoError(err)

	out, err := s.service.LeaveRoom(s.ctx, &LeaveRoomInput{RoomCode: code, ParticipantID: ids[1]})
	s.Require().NoError(err)
	s.True(out.RoomDestroyed)

	s.Equal([]string{code}, s.destroyed)
	s.Equal(0, s.rooms.CountRooms(s.ctx))
	s.Equal(0, s.service.timers.pending(code))

	_, err = s.service.GetRoomSummary(s.ctx, &GetRoomSummaryInput{RoomCode: code})
	s.ErrorIs(err, ErrRoomNotFound)
}

func (s *GameServiceTestSuite) TestSubmitFix_Correct() {
	code, ids := s.newGame(3, 2)
	sample := s.catalog.All()[0]

	deadline := s.pendingWith(DefaultRoundDuration)
	s.Require().NotNil(deadline)

	out, err := s.service.SubmitFix(s.ctx, &SubmitFixInput{
		RoomCode:      code,
		ParticipantID: ids[1],
		Content:       "\n  " + sample.CorrectArtifact + "  \n",
	})
	s.Require().NoError(err)
	s.True(out.IsCorrect)
	s.Equal(sample.Defects[0].Description, out.Explanation)

	room := s.room(code)
	s.Equal(FixReward, room.Scores[ids[0]])
	s.Equal(FixReward, room.Scores[ids[1]])
	s.Equal(0, room.Scores[ids[2]])

	fix := s.last(EventFixSubmitted).Data.(*FixSubmittedEvent)
	s.True(fix.IsCorrect)
	s.Equal(ids[1], fix.ParticipantID)

	_, err = s.service.SubmitFix(s.ctx, &SubmitFixInput{RoomCode: code, ParticipantID: ids[0], Content: sample.CorrectArtifact})
	s.ErrorIs(err, ErrFixAlreadySubmitted)

	_, err = s.service.Buzz(s.ctx, &BuzzInput{RoomCode: code, ParticipantID: ids[0]})
	s.ErrorIs(err, ErrFixAlreadySubmitted)

	// the round deadline no longer applies
	s.True(deadline.stopped)
	deadline.f()
	s.Empty(s.publisher.named(EventRoundEnded))

	s.Equal(1, s.advance(DefaultFixRevealDelay))
	summary := s.last(EventRoundEnded).Data.(*RoundSummary)
	s.Equal(RoundEndFix, summary.Reason)
	s.False(summary.BonusAwarded)
	s.Equal(0, s.room(code).Scores[ids[2]])
}

func (s *GameServiceTestSuite) TestSubmitFix_IncorrectPenaltyFloorsAtZero() {
	code, ids := s.newGame(3, 2)

	room := s.room(code)
	room.Lock()
	room.Scores[ids[0]] = 3
	room.Scores[ids[1]] = 12
	room.Unlock()

	out, err := s.service.SubmitFix(s.ctx, &SubmitFixInput{RoomCode: code, ParticipantID: ids[0], Content: "return 42;"})
	s.Require().NoError(err)
	s.False(out.IsCorrect)
	s.Equal(0, room.Scores[ids[0]])
	s.Equal(12, room.Scores[ids[1]])

	code, ids = s.newGame(3, 2)
	room = s.room(code)
	room.Lock()
	room.Scores[ids[1]] = 12
	room.Unlock()

	// any byte-level difference inside the artifact counts as wrong
	sample := s.catalog.All()[0]
	_, err = s.service.SubmitFix(s.ctx, &SubmitFixInput{
		RoomCode:      code,
		ParticipantID: ids[1],
		Content:       strings.Replace(sample.CorrectArtifact, " ", "  ", 1),
	})
	s.Require().NoError(err)
	s.Equal(12-FixPenalty, room.Scores[ids[1]])
}

func (s *GameServiceTestSuite) TestSubmitFix_Validation() {
	code, ids := s.newGame(3, 2)

	_, err := s.service.SubmitFix(s.ctx, &SubmitFixInput{RoomCode: code, ParticipantID: ids[2], Content: "x"})
	s.ErrorIs(err, ErrNotAlly)

	s.buzz(code, ids[0], "")
	_, err = s.service.SubmitFix(s.ctx, &SubmitFixInput{RoomCode: code, ParticipantID: ids[1], Content: "x"})
	s.ErrorIs(err, ErrVoteInProgress)
}

func (s *GameServiceTestSuite) TestSubmitDefectUpdate() {
	code, ids := s.newGame(3, 2)

	_, err := s.service.SubmitDefectUpdate(s.ctx, &SubmitDefectUpdateInput{RoomCode: code, ParticipantID: ids[0], Content: "x"})
	s.ErrorIs(err, ErrNotAdversary)

	_, err = s.service.SubmitDefectUpdate(s.ctx, &SubmitDefectUpdateInput{RoomCode: code, ParticipantID: ids[2], Content: "let broken = true;"})
	s.Require().NoError(err)
	s.Equal("let broken = true;", s.room(code).Round.Defect.Content)
	s.Empty(s.publisher.events)
}

func (s *GameServiceTestSuite) TestFullGame_EndsAfterFinalRound() {
	code, ids := s.newGame(3, 1)

	for round := 1; round <= DefaultTotalRounds; round++ {
		s.Equal(round, s.room(code).CurrentRound)
		s.Equal(1, s.advance(DefaultRoundDuration))
		if round < DefaultTotalRounds {
			s.Equal(1, s.advance(DefaultRoundIntermission))
		}
	}

	room := s.room(code)
	s.Equal(models.GameStateResults, room.State)
	s.Equal(models.FactionNone, room.Winner)
	s.Equal(EndReasonRoundsCompleted, room.EndReason)
	s.Equal(DefaultTotalRounds*NoBuzzBonus, room.Scores[ids[1]])
	s.Len(s.publisher.named(EventRoundEnded), DefaultTotalRounds)

	ended := s.last(EventGameEnded).Data.(*GameEndedEvent)
	s.Equal([]string{ids[1]}, ended.TopScorers)
	s.Contains(ended.Message, "Player 2")

	matches := s.archived()
	s.Require().Len(matches, 1)
	s.Equal(DefaultTotalRounds, matches[0].RoundsPlayed)
	s.Equal(0, s.service.timers.pending(code))
	s.Equal(0, s.advance(DefaultRoundIntermission))
}

func (s *GameServiceTestSuite) TestPlayAgain() {
	code, ids := s.newGame(3, 2)

	_, err := s.service.PlayAgain(s.ctx, &PlayAgainInput{RoomCode: code, ParticipantID: ids[1]})
	s.ErrorIs(err, ErrInvalidGameState)

	s.buzz(code, ids[0], ids[2])
	s.vote(code, ids[1], ids[2])
	s.Equal(models.GameStateResults, s.room(code).State)

	out, err := s.service.PlayAgain(s.ctx, &PlayAgainInput{RoomCode: code, ParticipantID: ids[1]})
	s.Require().NoError(err)
	s.Equal(models.GameStateLobby, out.Room.State)
	s.Nil(out.Room.Round)
	s.Empty(out.Room.Winner)

	room := s.room(code)
	s.Equal(ids[0], room.HostID)
	s.Len(room.Members, 3)
	for _, p := range room.Members {
		s.Equal(models.RoleNone, p.Role)
		s.False(p.Disabled)
		s.Equal(0, room.Scores[p.ID])
	}
	s.Len(s.publisher.named(EventGameReset), 1)

	_, err = s.service.StartGame(s.ctx, &StartGameInput{RoomCode: code, ParticipantID: ids[0]})
	s.Require().NoError(err)
	s.Equal(1, s.room(code).CurrentRound)
}

func (s *GameServiceTestSuite) TestSendChat() {
	code, ids := s.newLobby(2)
	s.publisher.reset()

	_, err := s.service.SendChat(s.ctx, &SendChatInput{RoomCode: code, ParticipantID: ids[0], Text: "   "})
	s.ErrorIs(err, ErrEmptyMessage)

	_, err = s.service.SendChat(s.ctx, &SendChatInput{RoomCode: code, ParticipantID: ids[0], Text: strings.Repeat("a", MaxChatLength+1)})
	s.ErrorIs(err, ErrMessageTooLong)

	_, err = s.service.SendChat(s.ctx, &SendChatInput{RoomCode: code, ParticipantID: "nobody", Text: "hi"})
	s.ErrorIs(err, ErrParticipantNotInRoom)

	_, err = s.service.SendChat(s.ctx, &SendChatInput{RoomCode: code, ParticipantID: ids[1], Text: " hi there "})
	s.Require().NoError(err)

	chat := s.last(EventChatMessage).Data.(*ChatMessageEvent)
	s.Equal("hi there", chat.Text)
	s.Equal("Player 2", chat.Name)
	s.False(chat.System)
	s.Len(s.publisher.named(EventChatMessage), 1)
}

func (s *GameServiceTestSuite) TestGetRoom() {
	code, ids := s.newGame(3, 2)

	out, err := s.service.GetRoom(s.ctx, &GetRoomInput{RoomCode: code, ParticipantID: ids[2]})
	s.Require().NoError(err)
	s.Equal(models.RoleAdversary, out.Role)
	s.Equal(models.GameStatePlaying, out.Room.State)

	out, err = s.service.GetRoom(s.ctx, &GetRoomInput{RoomCode: code, ParticipantID: ids[0]})
	s.Require().NoError(err)
	s.Equal(models.RoleAlly, out.Role)

	_, err = s.service.GetRoom(s.ctx, &GetRoomInput{RoomCode: code, ParticipantID: "nobody"})
	s.ErrorIs(err, ErrParticipantNotInRoom)
}

func (s *GameServiceTestSuite) TestGetRoomSummary() {
	code, _ := s.newLobby(3)

	out, err := s.service.GetRoomSummary(s.ctx, &GetRoomSummaryInput{RoomCode: strings.ToLower(code)})
	s.Require().NoError(err)
	s.Equal(code, out.Code)
	s.Equal(3, out.Members)
	s.Equal(models.MaxMembers, out.MaxMembers)
	s.True(out.Joinable)

	code, _ = s.newGame(3, 0)
	out, err = s.service.GetRoomSummary(s.ctx, &GetRoomSummaryInput{RoomCode: code})
	s.Require().NoError(err)
	s.False(out.Joinable)
	s.Equal(1, out.CurrentRound)
}

func (s *GameServiceTestSuite) TestConcurrentActions() {
	code, ids := s.newLobby(3)

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_, err := s.service.ToggleReady(s.ctx, &ToggleReadyInput{RoomCode: code, ParticipantID: id})
				s.NoError(err)
				_, err = s.service.SendChat(s.ctx, &SendChatInput{RoomCode: code, ParticipantID: id, Text: "go"})
				s.NoError(err)
			}
		}(id)
	}
	wg.Wait()

	room := s.room(code)
	for _, p := range room.Members {
		s.False(p.IsReady)
	}
	s.Len(s.publisher.named(EventChatMessage), 150+2)
}
