// models/models.go
package models

import (
	"time"
)

// MatchSummary is the read model of the match history.
type MatchSummary struct {
	RoomID     string          `json:"room_id"`
	WinnerName string          `json:"winner_name"`
	Turns      int             `json:"turns"`
	Duration   time.Duration   `json:"duration"`
	EndedAt    time.Time       `json:"ended_at"`
	Players    []PlayerOutcome `json:"players"`
}

// PlayerOutcome 玩家信息（用于游戏记录）
type PlayerOutcome struct {
	Name    string `json:"name"`
	Outcome string `json:"outcome"` // win/lose
	Cash    int    `json:"cash"`
}

// Summary converts a stored record for display.
func (r *GameRecord) Summary() MatchSummary {
	s := MatchSummary{
		RoomID:     r.RoomID,
		WinnerName: r.WinnerName,
		Turns:      r.Turns,
		Duration:   time.Duration(r.Duration) * time.Second,
		EndedAt:    r.EndedAt,
		Players:    make([]PlayerOutcome, 0, len(r.Players)),
	}
	for _, p := range r.Players {
		outcome := "lose"
		if p.Winner {
			outcome = "win"
		}
		s.Players = append(s.Players, PlayerOutcome{Name: p.Name, Outcome: outcome, Cash: p.Cash})
	}
	return s
}
