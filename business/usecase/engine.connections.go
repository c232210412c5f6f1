package usecase

import (
	"time"

	"github.com/forest33/arena/business/entity"
)

func (uc *EngineUseCase) register(p entity.Peer) *entity.Connection {
	now := uc.now()
	conn := &entity.Connection{
		ID:           uc.newID(),
		Controller:   entity.HumanController(p),
		Status:       entity.ConnectionStatusIdle,
		CreatedAt:    now,
		LastActivity: now,
	}
	uc.connections[conn.ID] = conn

	uc.log.Info().
		Str("connection_id", conn.ID).
		Str("addr", conn.RemoteAddr()).
		Msg("connected")

	return conn
}

func (uc *EngineUseCase) registerBot() *entity.Connection {
	now := uc.now()
	conn := &entity.Connection{
		ID:           uc.newID(),
		Controller:   entity.BotController(uc.settings.bot.BotParams()),
		Status:       entity.ConnectionStatusInMatch,
		CreatedAt:    now,
		LastActivity: now,
	}
	uc.connections[conn.ID] = conn
	return conn
}

// unregister removes a connection, a running match is lost by disconnect
func (uc *EngineUseCase) unregister(connID string) {
	conn, ok := uc.connections[connID]
	if !ok {
		return
	}

	uc.dequeue(connID)

	if s, ok := uc.sessions[conn.SessionID]; ok {
		uc.endMatch(s, s.Opponent(connID), entity.EndReasonDisconnect)
	}

	delete(uc.connections, connID)
}

func (uc *EngineUseCase) get(connID string) (*entity.Connection, bool) {
	conn, ok := uc.connections[connID]
	return conn, ok
}

// sweepIdle drops human connections that stayed silent longer than the idle
// timeout. Waiting in the queue is not idling.
func (uc *EngineUseCase) sweepIdle(now time.Time) {
	if uc.settings.idleTimeout <= 0 {
		return
	}

	for id, conn := range uc.connections {
		if conn.IsBot() || uc.isQueued(id) || now.Sub(conn.LastActivity) < uc.settings.idleTimeout {
			continue
		}

		uc.log.Info().
			Err(entity.ErrIdleTimeoutExceeded).
			Str("connection_id", id).
			Time("last_activity", conn.LastActivity).
			Msg("closing idle connection")

		if p := conn.Controller.Peer; p != nil {
			if err := p.Close(); err != nil {
				uc.log.Debug().Err(err).Str("connection_id", id).Msg("failed to close peer")
			}
		}
		uc.unregister(id)
	}
}

func (uc *EngineUseCase) touch(conn *entity.Connection) {
	conn.LastActivity = uc.now()
}
