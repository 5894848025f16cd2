package game

import "sort"

// VoteOutcome is the result of a resolved vote
type VoteOutcome string

const (
	// VoteOutcomeNone means no target reached a clear majority
	VoteOutcomeNone VoteOutcome = "none"

	// VoteOutcomeDisable means the target is disabled for the rest of the game
	VoteOutcomeDisable VoteOutcome = "disable"
)

// TallyResult is the deterministic result of counting ballots
type TallyResult struct {
	Outcome  VoteOutcome
	TargetID string
	Counts   map[string]int
	Cast     int
}

// Tally counts non-abstaining ballots by target. A target wins only with a
// strict majority of those ballots, so a tie or a spread vote yields none.
func Tally(ballots map[string]string) TallyResult {
	result := TallyResult{
		Outcome: VoteOutcomeNone,
		Counts:  make(map[string]int),
	}

	for _, target := range ballots {
		if target == "" {
			continue
		}
		result.Counts[target]++
		result.Cast++
	}

	targets := make([]string, 0, len(result.Counts))
	for target := range result.Counts {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	for _, target := range targets {
		if result.Counts[target]*2 > result.Cast {
			result.Outcome = VoteOutcomeDisable
			result.TargetID = target
			break
		}
	}

	return result
}
