package game

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/KirkDiggler/codered/internal/common/clock"
	"github.com/KirkDiggler/codered/internal/common/roomcode"
	"github.com/KirkDiggler/codered/internal/common/uuid"
	"github.com/KirkDiggler/codered/internal/models"
	"github.com/KirkDiggler/codered/internal/random"
	matchRepo "github.com/KirkDiggler/codered/internal/repositories/match"
	roomRepo "github.com/KirkDiggler/codered/internal/repositories/room"
	"github.com/KirkDiggler/codered/internal/samples"
	"github.com/KirkDiggler/codered/internal/services/messaging"
	"github.com/KirkDiggler/codered/internal/services/relay"
)

// archiveTimeout bounds the match archive and announcement after a game ends
const archiveTimeout = 5 * time.Second

// service implements the Service interface
type service struct {
	totalRounds       int
	roundDuration     time.Duration
	voteDuration      time.Duration
	roundIntermission time.Duration
	fixRevealDelay    time.Duration

	roomRepo  roomRepo.Repository
	matchRepo matchRepo.Repository
	documents relay.Service
	publisher Publisher
	messaging messaging.Service
	catalog   samples.Catalog
	announcer Announcer
	random    random.Source
	clock     clock.Clock
	uuid      uuid.UUID

	timers   *scheduler
	archives sync.WaitGroup
}

// New creates a new game service
func New(cfg *Config) (*service, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.RoomRepo == nil {
		return nil, ErrNilRoomRepo
	}
	if cfg.Documents == nil {
		return nil, ErrNilDocuments
	}
	if cfg.Publisher == nil {
		return nil, ErrNilPublisher
	}
	if cfg.Messaging == nil {
		return nil, ErrNilMessaging
	}
	if cfg.Catalog == nil {
		return nil, ErrNilCatalog
	}
	if cfg.Random == nil {
		return nil, ErrNilRandom
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}
	if cfg.UUIDGenerator == nil {
		return nil, ErrNilUUIDGenerator
	}

	s := &service{
		totalRounds:       cfg.TotalRounds,
		roundDuration:     cfg.RoundDuration,
		voteDuration:      cfg.VoteDuration,
		roundIntermission: cfg.RoundIntermission,
		fixRevealDelay:    cfg.FixRevealDelay,
		roomRepo:          cfg.RoomRepo,
		matchRepo:         cfg.MatchRepo,
		documents:         cfg.Documents,
		publisher:         cfg.Publisher,
		messaging:         cfg.Messaging,
		catalog:           cfg.Catalog,
		announcer:         cfg.Announcer,
		random:            cfg.Random,
		clock:             cfg.Clock,
		uuid:              cfg.UUIDGenerator,
		timers:            newScheduler(cfg.Clock),
	}

	// Set default values if not provided
	if s.totalRounds <= 0 {
		s.totalRounds = DefaultTotalRounds
	}
	if s.roundDuration <= 0 {
		s.roundDuration = DefaultRoundDuration
	}
	if s.voteDuration <= 0 {
		s.voteDuration = DefaultVoteDuration
	}
	if s.roundIntermission <= 0 {
		s.roundIntermission = DefaultRoundIntermission
	}
	if s.fixRevealDelay <= 0 {
		s.fixRevealDelay = DefaultFixRevealDelay
	}

	return s, nil
}

// CreateRoom creates a room with the caller as host
func (s *service) CreateRoom(ctx context.Context, input *CreateRoomInput) (*CreateRoomOutput, error) {
	name, err := validateDisplayName(input.DisplayName)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	host := &models.Participant{
		ID:     s.uuid.NewUUID(),
		Name:   name,
		IsHost: true,
	}

	room := &models.Room{
		HostID:        host.ID,
		State:         models.GameStateLobby,
		TotalRounds:   s.totalRounds,
		RoundDuration: s.roundDuration,
		VoteDuration:  s.voteDuration,
		Scores:        make(map[string]int),
		CreatedAt:     now,
	}
	room.AddMember(host)

	room, err = s.roomRepo.CreateRoom(ctx, &roomRepo.CreateRoomInput{Room: room})
	if err != nil {
		return nil, err
	}

	room.Lock()
	view := newRoomView(room, now)
	room.Unlock()

	log.Info().
		Str("room", room.Code).
		Str("participant", host.ID).
		Msg("Room created")

	return &CreateRoomOutput{
		RoomCode:      room.Code,
		ParticipantID: host.ID,
		Room:          view,
	}, nil
}

// JoinRoom adds a participant to a room that is still in the lobby
func (s *service) JoinRoom(ctx context.Context, input *JoinRoomInput) (*JoinRoomOutput, error) {
	name, err := validateDisplayName(input.DisplayName)
	if err != nil {
		return nil, err
	}

	var output *JoinRoomOutput
	err = s.withRoom(ctx, input.RoomCode, func(room *models.Room, out *outbox) error {
		if room.IsFull() {
			return ErrRoomFull
		}
		if !room.State.IsLobby() {
			return ErrInvalidGameState
		}

		id := input.ParticipantID
		if id == "" {
			id = s.uuid.NewUUID()
		} else if room.Member(id) != nil {
			return ErrAlreadyInRoom
		}

		p := &models.Participant{
			ID:   id,
			Name: name,
		}
		room.AddMember(p)

		view := newRoomView(room, s.clock.Now())
		out.broadcastExcept(p.ID, EventPlayerJoined, &PlayerJoinedEvent{
			Participant: newMemberView(p),
			Room:        view,
		})
		if msg, err := s.messaging.GetJoinMessage(ctx, &messaging.GetJoinMessageInput{Name: name}); err == nil {
			s.systemChat(out, msg.Message)
		}

		log.Info().
			Str("room", room.Code).
			Str("participant", p.ID).
			Int("members", len(room.Members)).
			Msg("Participant joined")

		output = &JoinRoomOutput{
			RoomCode:      room.Code,
			ParticipantID: p.ID,
			Room:          view,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// LeaveRoom removes a participant. A departure mid-vote cancels the vote and
// may end the game; the last departure tears the room down.
func (s *service) LeaveRoom(ctx context.Context, input *LeaveRoomInput) (*LeaveRoomOutput, error) {
	output := &LeaveRoomOutput{}
	err := s.withRoom(ctx, input.RoomCode, func(room *models.Room, out *outbox) error {
		p, err := member(room, input.ParticipantID)
		if err != nil {
			return err
		}

		playing := room.State.IsPlaying()
		if playing && room.ActiveVote != nil && p.IsActive() {
			s.cancelVote(room, out, VoteCancelParticipantLeft, p.ID)
		}

		room.RemoveMember(p.ID)

		log.Info().
			Str("room", room.Code).
			Str("participant", p.ID).
			Int("members", len(room.Members)).
			Msg("Participant left")

		if len(room.Members) == 0 {
			s.teardown(ctx, room)
			output.RoomDestroyed = true
			return nil
		}

		if room.HostID == p.ID {
			next := room.Members[0]
			next.IsHost = true
			room.HostID = next.ID
		}

		out.broadcast(EventPlayerLeft, &PlayerLeftEvent{
			ParticipantID: p.ID,
			Name:          p.Name,
			Room:          newRoomView(room, s.clock.Now()),
		})
		if msg, err := s.messaging.GetLeaveMessage(ctx, &messaging.GetLeaveMessageInput{Name: p.Name, Playing: playing}); err == nil {
			s.systemChat(out, msg.Message)
		}

		if playing && p.IsActive() {
			s.checkDepartureWin(ctx, room, out, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// checkDepartureWin ends the game when a departure leaves it unplayable
func (s *service) checkDepartureWin(ctx context.Context, room *models.Room, out *outbox, left *models.Participant) {
	if room.Round != nil && room.Round.Active {
		switch {
		case left.IsAdversary():
			s.finishGame(ctx, room, out, models.FactionAllies, EndReasonAdversaryLeft)
		case room.ActiveAllies() < 2:
			s.finishGame(ctx, room, out, models.FactionAdversary, EndReasonNotEnoughAllies)
		}
		return
	}

	// between rounds nobody holds a role for the next round yet
	if len(room.ActiveMembers()) < models.MinPlayersToStart {
		s.finishGame(ctx, room, out, models.FactionNone, EndReasonNotEnoughPlayers)
	}
}

// teardown drops an empty room, its timers and its document
func (s *service) teardown(ctx context.Context, room *models.Room) {
	room.Destroyed = true
	s.timers.cancelRoom(room.Code)

	if err := s.documents.Destroy(ctx, &relay.DestroyInput{RoomCode: room.Code}); err != nil {
		log.Warn().Err(err).Str("room", room.Code).Msg("Failed to destroy document")
	}
	if err := s.roomRepo.DeleteRoom(ctx, &roomRepo.DeleteRoomInput{Code: room.Code}); err != nil {
		log.Warn().Err(err).Str("room", room.Code).Msg("Failed to delete room")
	}

	log.Info().Str("room", room.Code).Msg("Room destroyed")
}

// ToggleReady flips the caller's ready flag in the lobby
func (s *service) ToggleReady(ctx context.Context, input *ToggleReadyInput) (*ToggleReadyOutput, error) {
	output := &ToggleReadyOutput{}
	err := s.withRoom(ctx, input.RoomCode, func(room *models.Room, out *outbox) error {
		p, err := member(room, input.ParticipantID)
		if err != nil {
			return err
		}
		if !room.State.IsLobby() {
			return ErrInvalidGameState
		}

		p.IsReady = !p.IsReady
		output.IsReady = p.IsReady

		out.broadcast(EventRoomUpdated, &RoomEvent{Room: newRoomView(room, s.clock.Now())})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// PlayAgain resets a finished game; membership and host are kept
func (s *service) PlayAgain(ctx context.Context, input *PlayAgainInput) (*PlayAgainOutput, error) {
	var output *PlayAgainOutput
	err := s.withRoom(ctx, input.RoomCode, func(room *models.Room, out *outbox) error {
		if _, err := member(room, input.ParticipantID); err != nil {
			return err
		}
		if !room.State.IsResults() {
			return ErrInvalidGameState
		}

		s.timers.cancelRoom(room.Code)
		room.State = models.GameStateLobby
		room.CurrentRound = 0
		room.Round = nil
		room.ActiveVote = nil
		room.Winner = models.FactionNone
		room.EndReason = ""
		for _, p := range room.Members {
			p.Role = models.RoleNone
			p.Disabled = false
			p.IsReady = false
			room.Scores[p.ID] = 0
		}

		view := newRoomView(room, s.clock.Now())
		out.broadcast(EventGameReset, &RoomEvent{Room: view})

		log.Info().Str("room", room.Code).Msg("Game reset")

		output = &PlayAgainOutput{Room: view}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// SendChat broadcasts a chat line from a member
func (s *service) SendChat(ctx context.Context, input *SendChatInput) (*SendChatOutput, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > MaxChatLength {
		return nil, ErrMessageTooLong
	}

	err := s.withRoom(ctx, input.RoomCode, func(room *models.Room, out *outbox) error {
		p, err := member(room, input.ParticipantID)
		if err != nil {
			return err
		}

		out.broadcast(EventChatMessage, &ChatMessageEvent{
			ParticipantID: p.ID,
			Name:          p.Name,
			Text:          text,
			SentAt:        s.clock.Now().UnixMilli(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &SendChatOutput{}, nil
}

// GetRoom returns the room view plus the caller's own role
func (s *service) GetRoom(ctx context.Context, input *GetRoomInput) (*GetRoomOutput, error) {
	var output *GetRoomOutput
	err := s.withRoom(ctx, input.RoomCode, func(room *models.Room, out *outbox) error {
		p, err := member(room, input.ParticipantID)
		if err != nil {
			return err
		}

		output = &GetRoomOutput{
			Room: newRoomView(room, s.clock.Now()),
			Role: p.Role,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// GetRoomSummary returns what anyone holding the code may see
func (s *service) GetRoomSummary(ctx context.Context, input *GetRoomSummaryInput) (*GetRoomSummaryOutput, error) {
	var output *GetRoomSummaryOutput
	err := s.withRoom(ctx, input.RoomCode, func(room *models.Room, out *outbox) error {
		output = &GetRoomSummaryOutput{
			Code:         room.Code,
			State:        room.State,
			Members:      len(room.Members),
			MaxMembers:   models.MaxMembers,
			Joinable:     room.State.IsLobby() && !room.IsFull(),
			CurrentRound: room.CurrentRound,
			TotalRounds:  room.TotalRounds,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// withRoom runs fn with the room locked. Queued events are published before
// the lock is released so clients see them in transition order; finished
// matches are archived afterwards in the background.
func (s *service) withRoom(ctx context.Context, code string, fn func(room *models.Room, out *outbox) error) error {
	room, err := s.lookup(ctx, code)
	if err != nil {
		return err
	}

	out := newOutbox(room.Code)

	room.Lock()
	if room.Destroyed {
		room.Unlock()
		return ErrRoomNotFound
	}
	err = fn(room, out)
	s.publish(ctx, out)
	room.Unlock()

	for _, match := range out.matches {
		s.archives.Add(1)
		go s.recordMatch(match)
	}
	return err
}

// fromTimer is withRoom for timer callbacks, where a vanished room is a no-op
func (s *service) fromTimer(code string, fn func(ctx context.Context, room *models.Room, out *outbox)) {
	ctx := context.Background()
	err := s.withRoom(ctx, code, func(room *models.Room, out *outbox) error {
		fn(ctx, room, out)
		return nil
	})
	if err != nil {
		log.Debug().Err(err).Str("room", code).Msg("Timer fired for missing room")
	}
}

func (s *service) lookup(ctx context.Context, code string) (*models.Room, error) {
	code = roomcode.Normalize(code)
	if !roomcode.Valid(code) {
		return nil, ErrInvalidRoomCode
	}

	room, err := s.roomRepo.GetRoom(ctx, &roomRepo.GetRoomInput{Code: code})
	if err != nil {
		if errors.Is(err, roomRepo.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

// publish hands queued events to the publisher, which must not block
func (s *service) publish(ctx context.Context, out *outbox) {
	for _, event := range out.events {
		if err := s.publisher.Publish(ctx, event); err != nil {
			log.Warn().
				Err(err).
				Str("room", event.RoomCode).
				Str("event", string(event.Event)).
				Msg("Failed to publish event")
		}
	}
}

// recordMatch archives and announces a finished game. Failures are logged only.
func (s *service) recordMatch(match *models.Match) {
	defer s.archives.Done()
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()

	if s.matchRepo != nil {
		if err := s.matchRepo.SaveMatch(ctx, &matchRepo.SaveMatchInput{Match: match}); err != nil {
			log.Error().Err(err).Str("room", match.RoomCode).Str("match", match.ID).Msg("Failed to archive match")
		}
	}
	if s.announcer != nil {
		if err := s.announcer.AnnounceMatch(ctx, match); err != nil {
			log.Error().Err(err).Str("room", match.RoomCode).Str("match", match.ID).Msg("Failed to announce match")
		}
	}
}

func (s *service) systemChat(out *outbox, text string) {
	out.broadcast(EventChatMessage, &ChatMessageEvent{
		Text:   text,
		System: true,
		SentAt: s.clock.Now().UnixMilli(),
	})
}

func member(room *models.Room, participantID string) (*models.Participant, error) {
	p := room.Member(participantID)
	if p == nil {
		return nil, ErrParticipantNotInRoom
	}
	return p, nil
}

func validateDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	length := utf8.RuneCountInString(name)
	if length < MinDisplayNameLength || length > MaxDisplayNameLength {
		return "", ErrInvalidDisplayName
	}
	return name, nil
}
