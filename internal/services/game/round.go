package game

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/KirkDiggler/codered/internal/models"
	"github.com/KirkDiggler/codered/internal/services/messaging"
	"github.com/KirkDiggler/codered/internal/services/relay"
)

// Round end reasons
const (
	RoundEndTimeout = "time expired"
	RoundEndFix     = "fix submitted"
)

// Game end reasons
const (
	EndReasonAdversaryDisabled = "adversary disabled"
	EndReasonAdversaryLeft     = "adversary left"
	EndReasonNotEnoughAllies   = "not enough allies remain"
	EndReasonNotEnoughPlayers  = "not enough players remain"
	EndReasonRoundsCompleted   = "all rounds completed"
)

// StartGame moves the room from the lobby straight into round 1
func (s *service) StartGame(ctx context.Context, input *StartGameInput) (*StartGameOutput, error) {
	var output *StartGameOutput
	err := s.withRoom(ctx, input.RoomCode, func(room *models.Room, out *outbox) error {
		if _, err := member(room, input.ParticipantID); err != nil {
			return err
		}
		if room.HostID != input.ParticipantID {
			return ErrNotHost
		}
		if !room.State.IsLobby() {
			return ErrInvalidGameState
		}
		if len(room.Members) < models.MinPlayersToStart {
			return ErrNotEnoughPlayers
		}

		room.State = models.GameStatePlaying
		room.CurrentRound = 0
		room.Winner = models.FactionNone
		room.EndReason = ""

		out.broadcast(EventGameStarted, &RoomEvent{Room: newRoomView(room, s.clock.Now())})
		s.startRound(ctx, room, out)

		log.Info().
			Str("room", room.Code).
			Int("members", len(room.Members)).
			Int("rounds", room.TotalRounds).
			Msg("Game started")

		output = &StartGameOutput{Room: newRoomView(room, s.clock.Now())}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// SubmitFix scores an ally's fix and ends the round after the reveal delay
func (s *service) SubmitFix(ctx context.Context, input *SubmitFixInput) (*SubmitFixOutput, error) {
	var output *SubmitFixOutput
	err := s.withRoom(ctx, input.RoomCode, func(room *models.Room, out *outbox) error {
		p, err := member(room, input.ParticipantID)
		if err != nil {
			return err
		}
		if !room.State.IsPlaying() {
			return ErrInvalidGameState
		}
		round := room.Round
		if round == nil || !round.Active {
			return ErrRoundNotActive
		}
		if p.Disabled {
			return ErrParticipantDisabled
		}
		if p.Role != models.RoleAlly {
			return ErrNotAlly
		}
		if room.ActiveVote != nil {
			return ErrVoteInProgress
		}
		if round.FixSubmitted {
			return ErrFixAlreadySubmitted
		}

		correct := isCorrectFix(input.Content, round.CorrectArtifact)
		if correct {
			for _, ally := range room.ActiveMembers() {
				if ally.Role == models.RoleAlly {
					room.AddScore(ally.ID, FixReward)
				}
			}
		} else {
			room.AddScore(p.ID, -FixPenalty)
		}

		round.FixSubmitted = true
		s.timers.cancel(room.Code, timerRoundDeadline, timerRoundTick)

		out.broadcast(EventFixSubmitted, &FixSubmittedEvent{
			ParticipantID:   p.ID,
			Name:            p.Name,
			IsCorrect:       correct,
			Explanation:     round.Defect.Description,
			CorrectArtifact: round.CorrectArtifact,
		})
		out.broadcast(EventRoomUpdated, &RoomEvent{Room: newRoomView(room, s.clock.Now())})

		code, roundID := room.Code, round.ID
		s.timers.schedule(code, timerFixReveal, s.fixRevealDelay, func() {
			s.onFixReveal(code, roundID)
		})

		log.Info().
			Str("room", room.Code).
			Str("participant", p.ID).
			Bool("correct", correct).
			Msg("Fix submitted")

		output = &SubmitFixOutput{
			IsCorrect:   correct,
			Explanation: round.Defect.Description,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// SubmitDefectUpdate lets the adversary rewrite the defect; nothing is broadcast
func (s *service) SubmitDefectUpdate(ctx context.Context, input *SubmitDefectUpdateInput) (*SubmitDefectUpdateOutput, error) {
	err := s.withRoom(ctx, input.RoomCode, func(room *models.Room, out *outbox) error {
		p, err := member(room, input.ParticipantID)
		if err != nil {
			return err
		}
		if !room.State.IsPlaying() {
			return ErrInvalidGameState
		}
		if room.Round == nil || !room.Round.Active {
			return ErrRoundNotActive
		}
		if p.Disabled || !p.IsAdversary() {
			return ErrNotAdversary
		}

		room.Round.Defect.Content = input.Content
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &SubmitDefectUpdateOutput{}, nil
}

// isCorrectFix compares trimmed content byte for byte
func isCorrectFix(submitted, correct string) bool {
	return strings.TrimSpace(submitted) == strings.TrimSpace(correct)
}

// startRound assigns roles, picks content, reseeds the document and starts the timers
func (s *service) startRound(ctx context.Context, room *models.Room, out *outbox) {
	room.CurrentRound++
	s.assignRoles(room)

	sample, defect := s.selectContent()
	now := s.clock.Now()

	round := &models.Round{
		ID:              s.uuid.NewUUID(),
		Number:          room.CurrentRound,
		SampleID:        sample.ID,
		Title:           sample.Title,
		Language:        sample.Language,
		CorrectArtifact: sample.CorrectArtifact,
		Defect:          defect,
		StartedAt:       now,
		Duration:        room.RoundDuration,
		Active:          true,
	}
	if adversary := room.Adversary(); adversary != nil {
		round.AdversaryID = adversary.ID
	}
	room.Round = round
	room.ActiveVote = nil

	if err := s.documents.Seed(ctx, &relay.SeedInput{RoomCode: room.Code, Text: defect.Content, Generation: round.ID}); err != nil {
		log.Error().Err(err).Str("room", room.Code).Msg("Failed to seed document")
	}

	view := newRoomView(room, now)
	out.broadcast(EventRoundStarted, &RoundStartedEvent{Round: view.Round, Room: view})
	for _, p := range room.ActiveMembers() {
		out.send(p.ID, EventRoleAssigned, &RoleAssignedEvent{Role: p.Role, RoundNumber: round.Number})
	}

	code, roundID := room.Code, round.ID
	s.timers.schedule(code, timerRoundDeadline, room.RoundDuration, func() {
		s.onRoundDeadline(code, roundID)
	})
	s.timers.schedule(code, timerRoundTick, time.Second, func() {
		s.onRoundTick(code, roundID)
	})

	log.Debug().
		Str("room", room.Code).
		Int("round", round.Number).
		Int("sample", sample.ID).
		Msg("Round started")
}

// assignRoles makes the first entry of a random permutation of active members the adversary
func (s *service) assignRoles(room *models.Room) {
	for _, p := range room.Members {
		p.Role = models.RoleNone
	}

	active := room.ActiveMembers()
	for i, idx := range s.random.Perm(len(active)) {
		if i == 0 {
			active[idx].Role = models.RoleAdversary
		} else {
			active[idx].Role = models.RoleAlly
		}
	}
}

func (s *service) selectContent() (*models.Sample, models.Defect) {
	all := s.catalog.All()
	sample := all[s.random.Intn(len(all))]
	defect := sample.Defects[s.random.Intn(len(sample.Defects))]
	return sample, defect
}

// roundCurrent reports whether a timer for roundID still applies to the room
func roundCurrent(room *models.Room, roundID string) bool {
	return room.State.IsPlaying() && room.Round != nil && room.Round.ID == roundID && room.Round.Active
}

func (s *service) onRoundTick(code, roundID string) {
	s.fromTimer(code, func(ctx context.Context, room *models.Room, out *outbox) {
		if !roundCurrent(room, roundID) || room.Round.FixSubmitted {
			return
		}

		remaining := room.Round.Remaining(s.clock.Now())
		out.broadcast(EventTimerUpdate, &TimerEvent{Remaining: remaining})
		if remaining > 0 {
			s.timers.schedule(code, timerRoundTick, time.Second, func() {
				s.onRoundTick(code, roundID)
			})
		}
	})
}

func (s *service) onRoundDeadline(code, roundID string) {
	s.fromTimer(code, func(ctx context.Context, room *models.Room, out *outbox) {
		if !roundCurrent(room, roundID) || room.Round.FixSubmitted {
			return
		}

		// a vote still open at the deadline holds the buzz lock and forfeits the bonus
		unchallenged := room.Round.BuzzedBy == ""
		if room.ActiveVote != nil {
			s.cancelVote(room, out, VoteCancelRoundEnded, "")
		}
		s.endRound(ctx, room, out, RoundEndTimeout, unchallenged)
	})
}

func (s *service) onFixReveal(code, roundID string) {
	s.fromTimer(code, func(ctx context.Context, room *models.Room, out *outbox) {
		if !roundCurrent(room, roundID) || !room.Round.FixSubmitted {
			return
		}
		s.endRound(ctx, room, out, RoundEndFix, false)
	})
}

func (s *service) onIntermissionEnd(code, roundID string) {
	s.fromTimer(code, func(ctx context.Context, room *models.Room, out *outbox) {
		if !room.State.IsPlaying() || room.Round == nil || room.Round.ID != roundID || room.Round.Active {
			return
		}
		s.startRound(ctx, room, out)
	})
}

// endRound scores the round, reveals the summary and either schedules the
// next round or finishes the game. The adversary earns the bonus only for a
// timeout that no buzz is holding.
func (s *service) endRound(ctx context.Context, room *models.Room, out *outbox, reason string, unchallenged bool) {
	round := room.Round
	round.Active = false
	s.timers.cancel(room.Code, timerRoundDeadline, timerRoundTick, timerFixReveal)

	bonus := false
	if reason == RoundEndTimeout && unchallenged && room.Member(round.AdversaryID) != nil {
		room.AddScore(round.AdversaryID, NoBuzzBonus)
		bonus = true
	}

	finalText := ""
	if doc, err := s.documents.GetText(ctx, &relay.GetTextInput{RoomCode: room.Code}); err == nil {
		finalText = doc.Text
	} else {
		log.Debug().Err(err).Str("room", room.Code).Msg("No document to summarize")
	}

	out.broadcast(EventRoundEnded, &RoundSummary{
		Number:            round.Number,
		Reason:            reason,
		AdversaryID:       round.AdversaryID,
		DefectDescription: round.Defect.Description,
		CorrectArtifact:   round.CorrectArtifact,
		FinalText:         finalText,
		Buzzes:            round.BuzzCount,
		BonusAwarded:      bonus,
		Scores:            copyScores(room.Scores),
	})

	log.Info().
		Str("room", room.Code).
		Int("round", round.Number).
		Str("reason", reason).
		Bool("bonus", bonus).
		Msg("Round ended")

	if room.CurrentRound >= room.TotalRounds {
		s.finishGame(ctx, room, out, models.FactionNone, EndReasonRoundsCompleted)
		return
	}

	code, roundID := room.Code, round.ID
	s.timers.schedule(code, timerIntermission, s.roundIntermission, func() {
		s.onIntermissionEnd(code, roundID)
	})
}

// finishGame moves the room to results, stops its timers and drops the document
func (s *service) finishGame(ctx context.Context, room *models.Room, out *outbox, winner models.Faction, reason string) {
	room.State = models.GameStateResults
	room.Winner = winner
	room.EndReason = reason
	room.ActiveVote = nil
	if room.Round != nil {
		room.Round.Active = false
	}
	s.timers.cancelRoom(room.Code)

	if err := s.documents.Destroy(ctx, &relay.DestroyInput{RoomCode: room.Code}); err != nil {
		log.Warn().Err(err).Str("room", room.Code).Msg("Failed to destroy document")
	}

	adversaryID := ""
	if room.Round != nil {
		adversaryID = room.Round.AdversaryID
	}

	top := topScorers(room)
	names := make([]string, 0, len(top))
	for _, id := range top {
		names = append(names, room.Member(id).Name)
	}

	message := ""
	if msg, err := s.messaging.GetGameEndedMessage(ctx, &messaging.GetGameEndedMessageInput{
		Winner:         winner,
		Reason:         reason,
		TopScorerNames: names,
	}); err == nil {
		message = msg.Title + " " + msg.Message
	}

	out.broadcast(EventGameEnded, &GameEndedEvent{
		Winner:      winner,
		Reason:      reason,
		AdversaryID: adversaryID,
		TopScorers:  top,
		Scores:      copyScores(room.Scores),
		Message:     message,
		Room:        newRoomView(room, s.clock.Now()),
	})
	out.archive(s.newMatch(room))

	log.Info().
		Str("room", room.Code).
		Str("winner", string(winner)).
		Str("reason", reason).
		Msg("Game ended")
}

func (s *service) newMatch(room *models.Room) *models.Match {
	match := &models.Match{
		ID:           s.uuid.NewUUID(),
		RoomCode:     room.Code,
		Winner:       room.Winner,
		Reason:       room.EndReason,
		RoundsPlayed: room.CurrentRound,
		Players:      make([]*models.MatchPlayer, 0, len(room.Members)),
		EndedAt:      s.clock.Now(),
	}
	for _, p := range room.Members {
		match.Players = append(match.Players, &models.MatchPlayer{
			ID:       p.ID,
			Name:     p.Name,
			Score:    room.Scores[p.ID],
			Disabled: p.Disabled,
		})
	}
	return match
}
