package game

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/KirkDiggler/codered/internal/models"
	"github.com/KirkDiggler/codered/internal/services/messaging"
)

// Vote cancellation reasons
const (
	VoteCancelParticipantLeft = "participant left"
	VoteCancelRoundEnded      = "round ended"
)

// Buzz opens an accusation vote. Naming a suspect casts the buzzer's ballot
// against them and keeps the suspect out of the electorate.
func (s *service) Buzz(ctx context.Context, input *BuzzInput) (*BuzzOutput, error) {
	var output *BuzzOutput
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
		if p.Disabled {
			return ErrParticipantDisabled
		}
		if p.IsAdversary() {
			return ErrAdversaryCannotBuzz
		}
		if room.ActiveVote != nil {
			if room.ActiveVote.AccusedID == p.ID {
				return ErrAccusedCannotBuzz
			}
			return ErrVoteInProgress
		}
		if room.Round.FixSubmitted {
			return ErrFixAlreadySubmitted
		}
		if input.SuspectID != "" {
			suspect := room.Member(input.SuspectID)
			if suspect == nil || suspect.Disabled || suspect.ID == p.ID {
				return ErrInvalidVoteTarget
			}
		}

		now := s.clock.Now()
		vote := models.NewVote(s.uuid.NewUUID(), p.ID, input.SuspectID, now, room.VoteDuration)
		if input.SuspectID != "" {
			vote.Cast(p.ID, input.SuspectID)
		}
		room.ActiveVote = vote
		room.Round.BuzzedBy = p.ID
		room.Round.BuzzCount++

		out.broadcast(EventPlayerBuzzed, &PlayerBuzzedEvent{
			ParticipantID: p.ID,
			Name:          p.Name,
			SuspectID:     input.SuspectID,
			Vote:          newVoteView(room, vote, now),
		})

		log.Info().
			Str("room", room.Code).
			Str("participant", p.ID).
			Str("suspect", input.SuspectID).
			Msg("Participant buzzed")

		output = &BuzzOutput{VoteID: vote.ID}

		if allVoted(room, vote) {
			s.resolveVote(ctx, room, out)
			return nil
		}

		code, voteID := room.Code, vote.ID
		s.timers.schedule(code, timerVoteDeadline, room.VoteDuration, func() {
			s.onVoteDeadline(code, voteID)
		})
		s.timers.schedule(code, timerVoteTick, time.Second, func() {
			s.onVoteTick(code, voteID)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// CastVote records a ballot or abstention, replacing the voter's earlier one.
// The vote resolves as soon as every eligible voter has voted.
func (s *service) CastVote(ctx context.Context, input *CastVoteInput) (*CastVoteOutput, error) {
	output := &CastVoteOutput{}
	err := s.withRoom(ctx, input.RoomCode, func(room *models.Room, out *outbox) error {
		p, err := member(room, input.ParticipantID)
		if err != nil {
			return err
		}
		if !room.State.IsPlaying() {
			return ErrInvalidGameState
		}
		vote := room.ActiveVote
		if vote == nil {
			return ErrNoActiveVote
		}
		if !isEligible(vote, p) {
			return ErrNotEligibleToVote
		}

		if input.Abstain {
			vote.Abstain(p.ID)
		} else {
			target := room.Member(input.TargetID)
			if target == nil || target.Disabled || target.ID == p.ID {
				return ErrInvalidVoteTarget
			}
			vote.Cast(p.ID, target.ID)
		}

		out.broadcast(EventVoteUpdated, &VoteUpdatedEvent{Vote: newVoteView(room, vote, s.clock.Now())})

		if allVoted(room, vote) {
			s.resolveVote(ctx, room, out)
			output.Resolved = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return output, nil
}

// isEligible applies the electorate rule: active members other than the accused
func isEligible(vote *models.Vote, p *models.Participant) bool {
	return p.IsActive() && p.ID != vote.AccusedID
}

// eligibleVoters lists the electorate in join order
func eligibleVoters(room *models.Room, vote *models.Vote) []string {
	voters := make([]string, 0, len(room.Members))
	for _, p := range room.Members {
		if isEligible(vote, p) {
			voters = append(voters, p.ID)
		}
	}
	return voters
}

func allVoted(room *models.Room, vote *models.Vote) bool {
	for _, id := range eligibleVoters(room, vote) {
		if !vote.HasVoted(id) {
			return false
		}
	}
	return true
}

func voteCurrent(room *models.Room, voteID string) bool {
	return room.State.IsPlaying() && room.ActiveVote != nil && room.ActiveVote.ID == voteID
}

func (s *service) onVoteTick(code, voteID string) {
	s.fromTimer(code, func(ctx context.Context, room *models.Room, out *outbox) {
		if !voteCurrent(room, voteID) {
			return
		}

		remaining := room.ActiveVote.Remaining(s.clock.Now())
		out.broadcast(EventVoteTimeUpdate, &TimerEvent{Remaining: remaining})
		if remaining > 0 {
			s.timers.schedule(code, timerVoteTick, time.Second, func() {
				s.onVoteTick(code, voteID)
			})
		}
	})
}

// onVoteDeadline resolves with whatever ballots were cast in time
func (s *service) onVoteDeadline(code, voteID string) {
	s.fromTimer(code, func(ctx context.Context, room *models.Room, out *outbox) {
		if !voteCurrent(room, voteID) {
			return
		}
		s.resolveVote(ctx, room, out)
	})
}

// resolveVote tallies the open vote and applies its outcome
func (s *service) resolveVote(ctx context.Context, room *models.Room, out *outbox) {
	vote := room.ActiveVote
	result := Tally(vote.Ballots)

	room.ActiveVote = nil
	s.timers.cancel(room.Code, timerVoteDeadline, timerVoteTick)
	if room.Round != nil {
		room.Round.BuzzedBy = ""
	}

	out.broadcast(EventVoteEnded, &VoteEndedEvent{
		VoteID:   vote.ID,
		Outcome:  result.Outcome,
		TargetID: result.TargetID,
		Counts:   result.Counts,
	})

	log.Info().
		Str("room", room.Code).
		Str("vote", vote.ID).
		Str("outcome", string(result.Outcome)).
		Str("target", result.TargetID).
		Int("cast", result.Cast).
		Msg("Vote resolved")

	target := room.Member(result.TargetID)
	if result.Outcome != VoteOutcomeDisable || target == nil {
		out.broadcast(EventRoomUpdated, &RoomEvent{Room: newRoomView(room, s.clock.Now())})
		return
	}

	target.Disabled = true
	out.broadcast(EventPlayerDisabled, &PlayerDisabledEvent{
		ParticipantID: target.ID,
		Role:          target.Role,
	})
	if msg, err := s.messaging.GetDisabledMessage(ctx, &messaging.GetDisabledMessageInput{
		Name:         target.Name,
		WasAdversary: target.IsAdversary(),
	}); err == nil {
		s.systemChat(out, msg.Message)
	}

	switch {
	case target.IsAdversary():
		s.finishGame(ctx, room, out, models.FactionAllies, EndReasonAdversaryDisabled)
	case room.ActiveAllies() < 2:
		s.finishGame(ctx, room, out, models.FactionAdversary, EndReasonNotEnoughAllies)
	default:
		out.broadcast(EventRoomUpdated, &RoomEvent{Room: newRoomView(room, s.clock.Now())})
	}
}

// cancelVote drops the open vote without an outcome
func (s *service) cancelVote(room *models.Room, out *outbox, reason, participantID string) {
	vote := room.ActiveVote
	room.ActiveVote = nil
	s.timers.cancel(room.Code, timerVoteDeadline, timerVoteTick)
	if room.Round != nil {
		room.Round.BuzzedBy = ""
	}

	out.broadcast(EventVoteCancelled, &VoteCancelledEvent{
		VoteID:        vote.ID,
		Reason:        reason,
		ParticipantID: participantID,
	})

	log.Info().
		Str("room", room.Code).
		Str("vote", vote.ID).
		Str("reason", reason).
		Msg("Vote cancelled")
}
