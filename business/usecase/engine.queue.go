package usecase

import (
	"time"

	"github.com/samber/lo"

	"github.com/forest33/arena/business/entity"
)

// queueEntry a connection waiting for an opponent. Entries with a stake id
// are only ever paired with an entry carrying the same stake id.
type queueEntry struct {
	connID     string
	stakeID    string
	enqueuedAt time.Time
}

func (e *queueEntry) isTagged() bool {
	return e.stakeID != ""
}

// enqueue appends an idle connection and runs pairing, returns false if nothing changed
func (uc *EngineUseCase) enqueue(conn *entity.Connection) bool {
	if !conn.IsIdle() || conn.IsBot() || uc.isQueued(conn.ID) {
		return false
	}

	uc.queue = append(uc.queue, &queueEntry{
		connID:     conn.ID,
		stakeID:    conn.StakeID,
		enqueuedAt: uc.now(),
	})

	uc.log.Debug().
		Str("connection_id", conn.ID).
		Str("stake_id", conn.StakeID).
		Int("queue", len(uc.queue)).
		Msg("queued")

	uc.pair()

	return true
}

func (uc *EngineUseCase) dequeue(connID string) bool {
	n := len(uc.queue)
	uc.queue = lo.Reject(uc.queue, func(e *queueEntry, _ int) bool {
		return e.connID == connID
	})
	return len(uc.queue) != n
}

func (uc *EngineUseCase) isQueued(connID string) bool {
	return lo.ContainsBy(uc.queue, func(e *queueEntry) bool {
		return e.connID == connID
	})
}

func (uc *EngineUseCase) removeEntries(entries ...*queueEntry) {
	uc.queue = lo.Reject(uc.queue, func(e *queueEntry, _ int) bool {
		return lo.Contains(entries, e)
	})
}

// pair drains every possible pair: stake pairs first, then untagged entries in arrival order
func (uc *EngineUseCase) pair() {
	for uc.pairTiered() {
	}
	for uc.pairFIFO() {
	}
}

func (uc *EngineUseCase) pairTiered() bool {
	for i, a := range uc.queue {
		if !a.isTagged() {
			continue
		}
		b, _, ok := lo.FindIndexOf(uc.queue[i+1:], func(e *queueEntry) bool {
			return e.stakeID == a.stakeID
		})
		if !ok {
			continue
		}
		uc.removeEntries(a, b)
		uc.startQueued(a, b)
		return true
	}
	return false
}

func (uc *EngineUseCase) pairFIFO() bool {
	untagged := lo.Filter(uc.queue, func(e *queueEntry, _ int) bool {
		return !e.isTagged()
	})
	if len(untagged) < 2 {
		return false
	}

	a, b := untagged[0], untagged[1]
	uc.removeEntries(a, b)
	uc.startQueued(a, b)

	return true
}

func (uc *EngineUseCase) startQueued(a, b *queueEntry) {
	ca, okA := uc.get(a.connID)
	cb, okB := uc.get(b.connID)
	if !okA || !okB {
		uc.log.Error().
			Err(entity.ErrConnectionNotExists).
			Str("a", a.connID).
			Str("b", b.connID).
			Msg("queue entry without connection")
		return
	}

	s := uc.createSession(ca, cb)
	s.StakeID = a.stakeID
}

// createAIMatch starts a match against a freshly spawned bot, bypassing the queue
func (uc *EngineUseCase) createAIMatch(conn *entity.Connection) bool {
	if !conn.IsIdle() || conn.IsBot() {
		return false
	}

	uc.dequeue(conn.ID)
	uc.createSession(conn, uc.registerBot())

	return true
}

// createPrivateMatch starts a match between two named idle humans
func (uc *EngineUseCase) createPrivateMatch(conn *entity.Connection, opponentID string) error {
	if !conn.IsIdle() {
		return entity.ErrNotIdle
	}
	if conn.ID == opponentID {
		return entity.ErrSelfMatch
	}

	opponent, ok := uc.get(opponentID)
	if !ok {
		return entity.ErrOpponentNotExists
	}
	if opponent.IsBot() || !opponent.IsIdle() {
		return entity.ErrOpponentNotIdle
	}

	uc.dequeue(conn.ID)
	uc.dequeue(opponent.ID)

	s := uc.createSession(conn, opponent)
	s.Private = true

	return nil
}
