package models

import (
	"time"
)

// Vote is the accusation vote opened by a buzz
type Vote struct {
	// ID identifies this vote; timers compare it to detect stale callbacks
	ID string

	// InitiatorID is the participant who buzzed
	InitiatorID string

	// AccusedID is the suspect named with the buzz, if any
	AccusedID string

	// StartedAt is when the vote opened
	StartedAt time.Time

	// Duration is how long voting stays open
	Duration time.Duration

	// Ballots maps voter ID to target ID
	Ballots map[string]string

	// Abstentions holds voters who explicitly skipped
	Abstentions map[string]bool
}

// NewVote creates an open vote with empty ballots
func NewVote(id, initiatorID, accusedID string, startedAt time.Time, duration time.Duration) *Vote {
	return &Vote{
		ID:          id,
		InitiatorID: initiatorID,
		AccusedID:   accusedID,
		StartedAt:   startedAt,
		Duration:    duration,
		Ballots:     make(map[string]string),
		Abstentions: make(map[string]bool),
	}
}

// Cast records a ballot, replacing any earlier ballot or abstention of the voter
func (v *Vote) Cast(voterID, targetID string) {
	delete(v.Abstentions, voterID)
	v.Ballots[voterID] = targetID
}

// Abstain records an abstention, replacing any earlier ballot of the voter
func (v *Vote) Abstain(voterID string) {
	delete(v.Ballots, voterID)
	v.Abstentions[voterID] = true
}

// HasVoted returns true if the voter cast a ballot or abstained
func (v *Vote) HasVoted(voterID string) bool {
	_, cast := v.Ballots[voterID]
	return cast || v.Abstentions[voterID]
}

// Remaining returns the whole seconds left at now, never negative
func (v *Vote) Remaining(now time.Time) int {
	left := v.Duration - now.Sub(v.StartedAt)
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}
