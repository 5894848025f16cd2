package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTally(t *testing.T) {
	tests := []struct {
		name    string
		ballots map[string]string
		outcome VoteOutcome
		target  string
	}{
		{
			name:    "no ballots",
			ballots: map[string]string{},
			outcome: VoteOutcomeNone,
		},
		{
			name:    "unanimous",
			ballots: map[string]string{"a": "x", "b": "x"},
			outcome: VoteOutcomeDisable,
			target:  "x",
		},
		{
			name:    "even split",
			ballots: map[string]string{"a": "x", "b": "y"},
			outcome: VoteOutcomeNone,
		},
		{
			name:    "plurality without majority",
			ballots: map[string]string{"a": "x", "b": "x", "c": "y", "d": "z"},
			outcome: VoteOutcomeNone,
		},
		{
			name:    "majority of three",
			ballots: map[string]string{"a": "x", "b": "x", "c": "y"},
			outcome: VoteOutcomeDisable,
			target:  "x",
		},
		{
			name:    "single ballot is a majority of cast ballots",
			ballots: map[string]string{"a": "y"},
			outcome: VoteOutcomeDisable,
			target:  "y",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Tally(tt.ballots)
			assert.Equal(t, tt.outcome, result.Outcome)
			assert.Equal(t, tt.target, result.TargetID)
			assert.Equal(t, len(tt.ballots), result.Cast)
		})
	}
}

func TestTally_Deterministic(t *testing.T) {
	ballots := map[string]string{"a": "x", "b": "y", "c": "x", "d": "x", "e": "y"}

	first := Tally(ballots)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Tally(ballots))
	}
	assert.Equal(t, VoteOutcomeDisable, first.Outcome)
	assert.Equal(t, "x", first.TargetID)
	assert.Equal(t, map[string]int{"x": 3, "y": 2}, first.Counts)
}
