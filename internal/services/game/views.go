package game

import (
	"sort"
	"time"

	"github.com/KirkDiggler/codered/internal/models"
)

// RoomView is the room as broadcast to every member. It never carries roles.
type RoomView struct {
	Code         string           `json:"code"`
	HostID       string           `json:"hostId"`
	State        models.GameState `json:"state"`
	CurrentRound int              `json:"currentRound"`
	TotalRounds  int              `json:"totalRounds"`
	Members      []*MemberView    `json:"members"`
	Scores       map[string]int   `json:"scores"`
	Round        *RoundView       `json:"round,omitempty"`
	Vote         *VoteView        `json:"vote,omitempty"`
	Winner       models.Faction   `json:"winner,omitempty"`
	EndReason    string           `json:"endReason,omitempty"`
}

type MemberView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsHost   bool   `json:"isHost"`
	IsReady  bool   `json:"isReady"`
	Disabled bool   `json:"disabled"`
	Color    string `json:"color"`
}

type RoundView struct {
	Number          int    `json:"number"`
	Title           string `json:"title"`
	Language        string `json:"language"`
	Content         string `json:"content"`
	StartedAt       int64  `json:"startedAt"`
	DurationSeconds int    `json:"durationSeconds"`
	Remaining       int    `json:"remaining"`
	Active          bool   `json:"active"`
	BuzzedBy        string `json:"buzzedBy,omitempty"`
}

// VoteView shows who has voted and the running counts, not who voted for whom
type VoteView struct {
	ID          string         `json:"id"`
	InitiatorID string         `json:"initiatorId"`
	AccusedID   string         `json:"accusedId,omitempty"`
	Remaining   int            `json:"remaining"`
	Eligible    []string       `json:"eligible"`
	Voted       []string       `json:"voted"`
	Counts      map[string]int `json:"counts"`
	Abstentions int            `json:"abstentions"`
}

func newMemberView(p *models.Participant) *MemberView {
	return &MemberView{
		ID:       p.ID,
		Name:     p.Name,
		IsHost:   p.IsHost,
		IsReady:  p.IsReady,
		Disabled: p.Disabled,
		Color:    p.Color,
	}
}

func newRoomView(room *models.Room, now time.Time) *RoomView {
	view := &RoomView{
		Code:         room.Code,
		HostID:       room.HostID,
		State:        room.State,
		CurrentRound: room.CurrentRound,
		TotalRounds:  room.TotalRounds,
		Members:      make([]*MemberView, 0, len(room.Members)),
		Scores:       copyScores(room.Scores),
		Winner:       room.Winner,
		EndReason:    room.EndReason,
	}
	for _, p := range room.Members {
		view.Members = append(view.Members, newMemberView(p))
	}
	if room.Round != nil {
		view.Round = newRoundView(room.Round, now)
	}
	if room.ActiveVote != nil {
		view.Vote = newVoteView(room, room.ActiveVote, now)
	}
	return view
}

func newRoundView(round *models.Round, now time.Time) *RoundView {
	view := &RoundView{
		Number:          round.Number,
		Title:           round.Title,
		Language:        round.Language,
		Content:         round.Defect.Content,
		StartedAt:       round.StartedAt.UnixMilli(),
		DurationSeconds: int(round.Duration / time.Second),
		Active:          round.Active,
		BuzzedBy:        round.BuzzedBy,
	}
	if round.Active {
		view.Remaining = round.Remaining(now)
	}
	return view
}

func newVoteView(room *models.Room, vote *models.Vote, now time.Time) *VoteView {
	view := &VoteView{
		ID:          vote.ID,
		InitiatorID: vote.InitiatorID,
		AccusedID:   vote.AccusedID,
		Remaining:   vote.Remaining(now),
		Eligible:    eligibleVoters(room, vote),
		Voted:       make([]string, 0, len(vote.Ballots)+len(vote.Abstentions)),
		Counts:      make(map[string]int),
		Abstentions: len(vote.Abstentions),
	}
	for voter, target := range vote.Ballots {
		view.Voted = append(view.Voted, voter)
		view.Counts[target]++
	}
	for voter := range vote.Abstentions {
		view.Voted = append(view.Voted, voter)
	}
	sort.Strings(view.Voted)
	return view
}

func copyScores(scores map[string]int) map[string]int {
	out := make(map[string]int, len(scores))
	for id, score := range scores {
		out[id] = score
	}
	return out
}

// topScorers returns the IDs sharing the highest score, in join order
func topScorers(room *models.Room) []string {
	best := -1
	var top []string
	for _, p := range room.Members {
		score := room.Scores[p.ID]
		switch {
		case score > best:
			best = score
			top = []string{p.ID}
		case score == best:
			top = append(top, p.ID)
		}
	}
	return top
}
