package usecase

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/forest33/arena/business/entity"
	"github.com/forest33/arena/pkg/structs"
)

// EngineState point-in-time view of the engine served by the REST API
type EngineState struct {
	Ticks       uint64            `json:"ticks"`
	Connections []*ConnectionView `json:"connections"`
	Queue       []*QueueEntryView `json:"queue"`
	Sessions    []*SessionView    `json:"sessions"`
}

type ConnectionView struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	Status       string    `json:"status"`
	Addr         string    `json:"addr,omitempty"`
	Name         string    `json:"name,omitempty"`
	MatchID      string    `json:"matchId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

type QueueEntryView struct {
	ID         string    `json:"id"`
	StakeID    string    `json:"stakeId,omitempty"`
	EnqueuedAt time.Time `json:"enqueuedAt"`
}

type SessionView struct {
	ID        string                `json:"id"`
	Tick      uint64                `json:"tick"`
	StartedAt time.Time             `json:"startedAt"`
	AI        bool                  `json:"ai"`
	Private   bool                  `json:"private"`
	StakeID   string                `json:"stakeId,omitempty"`
	Players   []*entity.PlayerInfo  `json:"players"`
	State     *entity.StateSnapshot `json:"state,omitempty"`
}

func (uc *EngineUseCase) GetState() *EngineState {
	uc.mux.Lock()
	defer uc.mux.Unlock()

	st := &EngineState{
		Ticks: uc.ticks,
		Connections: structs.Map(lo.Values(uc.connections), func(c *entity.Connection) *ConnectionView {
			return getConnectionView(c)
		}),
		Queue: structs.Map(uc.queue, func(e *queueEntry) *QueueEntryView {
			return &QueueEntryView{ID: e.connID, StakeID: e.stakeID, EnqueuedAt: e.enqueuedAt}
		}),
		Sessions: structs.Map(lo.Values(uc.sessions), func(s *entity.Session) *SessionView {
			return getSessionView(s, false)
		}),
	}

	sort.Slice(st.Connections, func(i, j int) bool {
		return st.Connections[i].CreatedAt.Before(st.Connections[j].CreatedAt)
	})
	sort.Slice(st.Sessions, func(i, j int) bool {
		return st.Sessions[i].StartedAt.Before(st.Sessions[j].StartedAt)
	})

	return st
}

// GetSession returns a live match including its latest state
func (uc *EngineUseCase) GetSession(id string) (*SessionView, error) {
	uc.mux.Lock()
	defer uc.mux.Unlock()

	s, ok := uc.sessions[id]
	if !ok {
		return nil, entity.ErrSessionNotExists
	}

	return getSessionView(s, true), nil
}

func getConnectionView(c *entity.Connection) *ConnectionView {
	return &ConnectionView{
		ID:           c.ID,
		Kind:         c.Controller.Kind.String(),
		Status:       c.Status.String(),
		Addr:         c.RemoteAddr(),
		Name:         c.PlayerInfo().Name,
		MatchID:      c.SessionID,
		CreatedAt:    c.CreatedAt,
		LastActivity: c.LastActivity,
	}
}

func getSessionView(s *entity.Session, withState bool) *SessionView {
	v := &SessionView{
		ID:        s.ID,
		Tick:      s.Tick,
		StartedAt: s.StartedAt,
		AI:        s.IsAI(),
		Private:   s.Private,
		StakeID:   s.StakeID,
		Players:   []*entity.PlayerInfo{s.Participants[0].PlayerInfo(), s.Participants[1].PlayerInfo()},
	}
	if withState {
		v.State = s.Snapshot()
	}
	return v
}
