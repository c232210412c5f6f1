package entity

import (
	"context"
	"time"
)

const (
	EndReasonKO         EndReason = "ko"
	EndReasonForfeit    EndReason = "forfeit"
	EndReasonDisconnect EndReason = "disconnect"
)

type EndReason string

// MatchOutcome result of a finished match handed to the ledger.
// Winner and Loser are public identities and are empty on a draw. Public
// identities are not unique, per player results live in Players.
type MatchOutcome struct {
	MatchID   string
	Players   [2]OutcomePlayer
	Winner    string
	Loser     string
	Reason    EndReason
	StakeID   string
	Private   bool
	AI        bool
	Ticks     uint64
	StartedAt time.Time
	EndedAt   time.Time
}

type OutcomePlayer struct {
	ID           string
	ConnectionID string
	Name         string
	HP           int
	Bot          bool
	Won          bool
	Coins        int
}

// PlayerStats per player increment upserted after every match
type PlayerStats struct {
	PlayerID string
	Name     string
	MatchID  string
	Wins     int
	Losses   int
	Draws    int
	Coins    int
}

func (o *MatchOutcome) Duration() time.Duration {
	return o.EndedAt.Sub(o.StartedAt)
}

func (o *MatchOutcome) IsDraw() bool {
	return !o.Players[0].Won && !o.Players[1].Won
}

// Stats returns the increments of every human participant
func (o *MatchOutcome) Stats() []*PlayerStats {
	stats := make([]*PlayerStats, 0, 2)
	for _, p := range o.Players {
		if p.Bot {
			continue
		}
		s := &PlayerStats{
			PlayerID: p.ID,
			Name:     p.Name,
			MatchID:  o.MatchID,
			Coins:    p.Coins,
		}
		switch {
		case o.IsDraw():
			s.Draws = 1
		case p.Won:
			s.Wins = 1
		default:
			s.Losses = 1
		}
		stats = append(stats, s)
	}
	return stats
}

// Ledger persistence collaborator
type Ledger interface {
	RecordMatch(ctx context.Context, outcome *MatchOutcome) error
	UpsertPlayerStats(ctx context.Context, stats *PlayerStats) error
}

// CosmeticsResolver maps equipped item ids to renderable references
type CosmeticsResolver interface {
	Resolve(ctx context.Context, items []string) (map[string]string, error)
}
