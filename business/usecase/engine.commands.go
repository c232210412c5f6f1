package usecase

import (
	"context"
	"time"

	"github.com/forest33/arena/business/entity"
)

// Receive handles an inbound message of a connection. Payload decoding and
// cosmetics resolution happen before the engine lock is taken.
func (uc *EngineUseCase) Receive(connID string, msg *entity.Message) {
	req, decodeErr := decodeRequest(msg)

	var cosmetics map[string]string
	if jr, ok := req.(*entity.JoinQueueRequest); ok && len(jr.Equipped) > 0 {
		cosmetics = uc.resolveCosmetics(connID, jr.Equipped)
	}

	uc.mux.Lock()
	defer uc.mux.Unlock()

	conn, ok := uc.get(connID)
	if !ok {
		uc.log.Debug().
			Err(entity.ErrConnectionNotExists).
			Str("connection_id", connID).
			Str("type", msg.Type.String()).
			Msg("message from unknown connection")
		return
	}
	uc.touch(conn)

	if resp := uc.command(conn, msg, req, decodeErr, cosmetics); resp != nil {
		uc.send(conn, resp)
	}
}

func (uc *EngineUseCase) command(conn *entity.Connection, msg *entity.Message, req interface{}, decodeErr error, cosmetics map[string]string) (resp *entity.Message) {
	err := decodeErr

	defer func() {
		if err == nil {
			return
		}
		if text, ok := entity.GetMessageError(err); ok {
			resp = entity.NewErrorMessage(text)
			uc.log.Warn().Err(err).
				Str("connection_id", conn.ID).
				Str("type", msg.Type.String()).
				Msg("incoming message error")
			return
		}
		uc.log.Debug().Err(err).
			Str("connection_id", conn.ID).
			Str("type", msg.Type.String()).
			Msg("message dropped")
	}()

	if err != nil {
		return
	}

	switch msg.Type {
	case entity.MessageTypeJoinQueue:
		uc.commandJoinQueue(conn, req.(*entity.JoinQueueRequest), cosmetics)
	case entity.MessageTypeJoinAI:
		uc.createAIMatch(conn)
	case entity.MessageTypeLeaveQueue:
		uc.dequeue(conn.ID)
	case entity.MessageTypeCreatePrivate:
		err = uc.createPrivateMatch(conn, req.(*entity.CreatePrivateRequest).OpponentID)
	case entity.MessageTypeInput:
		resp, err = uc.onInput(conn, req.(*entity.InputRequest))
	case entity.MessageTypeForfeit:
		err = uc.forfeit(conn, req.(*entity.ForfeitRequest).MatchID)
	default:
		err = entity.ErrUnknownCommand
	}

	return
}

func (uc *EngineUseCase) commandJoinQueue(conn *entity.Connection, req *entity.JoinQueueRequest, cosmetics map[string]string) {
	if !conn.IsIdle() || uc.isQueued(conn.ID) {
		return
	}

	// every join replaces the previous profile
	conn.Profile = req.Profile()
	if conn.Profile != nil {
		conn.Profile.Cosmetics = cosmetics
	}
	conn.StakeID = req.StakeID

	uc.enqueue(conn)
}

// resolveCosmetics maps equipped items to renderable references, a failure
// only costs the player its cosmetics
func (uc *EngineUseCase) resolveCosmetics(connID string, items []string) map[string]string {
	if uc.cosmetics == nil {
		return nil
	}

	uc.mux.Lock()
	timeout := uc.settings.resolveTime
	uc.mux.Unlock()

	ctx, cancel := context.WithTimeout(uc.ctx, timeout)
	defer cancel()

	started := time.Now()
	refs, err := uc.cosmetics.Resolve(ctx, items)
	if err != nil {
		uc.log.Warn().Err(err).
			Str("connection_id", connID).
			Strs("items", items).
			Dur("elapsed", time.Since(started)).
			Msg("failed to resolve cosmetics")
		return nil
	}

	return refs
}
