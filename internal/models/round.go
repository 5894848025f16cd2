package models

import (
	"time"
)

// Round represents one timed cycle of adversary edits and ally review
type Round struct {
	// ID identifies this round; timers compare it to detect stale callbacks
	ID string

	// Number is the 1-based round counter
	Number int

	// SampleID identifies the code sample in the catalog
	SampleID int

	// Title is the sample title
	Title string

	// Language is the sample language
	Language string

	// CorrectArtifact is the ground-truth code used to check fixes
	CorrectArtifact string

	// Defect is the seeded variant shown to participants
	Defect Defect

	// StartedAt is when the round timer started
	StartedAt time.Time

	// Duration is how long the round lasts
	Duration time.Duration

	// Active is false during the intermission before a round and once it has resolved
	Active bool

	// BuzzedBy holds the participant whose buzz opened the current vote
	BuzzedBy string

	// BuzzCount is the number of buzzes during this round
	BuzzCount int

	// FixSubmitted is set once a fix was submitted; the round then ends
	FixSubmitted bool

	// AdversaryID is the adversary for this round
	AdversaryID string
}

// Remaining returns the whole seconds left at now, never negative
func (r *Round) Remaining(now time.Time) int {
	left := r.Duration - now.Sub(r.StartedAt)
	if left <= 0 {
		return 0
	}
	return int((left + time.Second - 1) / time.Second)
}
