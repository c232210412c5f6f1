package entity

import (
	"time"
)

// Session one running 1v1 match
type Session struct {
	ID           string
	Participants [2]*Connection
	Arena        Arena
	Players      map[string]*PlayerState
	Events       []GameEvent
	Inputs       map[string]Input
	PrevInputs   map[string]Input
	Tick         uint64
	StartedAt    time.Time
	StakeID      string
	Private      bool
}

// StateSnapshot copy of the session state broadcast to clients
type StateSnapshot struct {
	Players map[string]PlayerState `json:"players"`
	Events  []EventSnapshot        `json:"events"`
}

func NewSession(id string, a, b *Connection, now time.Time) *Session {
	arena := DefaultArena()
	return &Session{
		ID:           id,
		Participants: [2]*Connection{a, b},
		Arena:        arena,
		Players: map[string]*PlayerState{
			a.ID: NewPlayerState(SpawnOffset, arena.GroundY, FacingRight),
			b.ID: NewPlayerState(arena.Width-SpawnOffset, arena.GroundY, FacingLeft),
		},
		Events:     make([]GameEvent, 0, 4),
		Inputs:     make(map[string]Input, 2),
		PrevInputs: make(map[string]Input, 2),
		StartedAt:  now,
	}
}

func (s *Session) IsParticipant(connID string) bool {
	return s.Participants[0].ID == connID || s.Participants[1].ID == connID
}

// Opponent returns the other participant or nil if connID does not play in s
func (s *Session) Opponent(connID string) *Connection {
	switch connID {
	case s.Participants[0].ID:
		return s.Participants[1]
	case s.Participants[1].ID:
		return s.Participants[0]
	}
	return nil
}

func (s *Session) IsAI() bool {
	return s.Participants[0].IsBot() || s.Participants[1].IsBot()
}

func (s *Session) Snapshot() *StateSnapshot {
	snap := &StateSnapshot{
		Players: make(map[string]PlayerState, len(s.Players)),
		Events:  make([]EventSnapshot, 0, len(s.Events)),
	}
	for id, p := range s.Players {
		snap.Players[id] = *p
	}
	for _, ev := range s.Events {
		snap.Events = append(snap.Events, SnapshotEvent(ev))
	}
	return snap
}

// Broadcast sends msg to both participants and returns the failed ones
func (s *Session) Broadcast(msg *Message) map[*Connection]error {
	var failed map[*Connection]error
	for _, c := range s.Participants {
		if err := c.Send(msg); err != nil {
			if failed == nil {
				failed = make(map[*Connection]error, 2)
			}
			failed[c] = err
		}
	}
	return failed
}
