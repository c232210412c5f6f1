package usecase

import (
	"time"

	"github.com/forest33/arena/business/entity"
)

func (uc *EngineUseCase) createSession(a, b *entity.Connection) *entity.Session {
	s := entity.NewSession(uc.newID(), a, b, uc.now())
	for _, c := range s.Participants {
		c.Status = entity.ConnectionStatusInMatch
		c.SessionID = s.ID
		uc.touch(c)
	}
	uc.sessions[s.ID] = s

	players := []*entity.PlayerInfo{a.PlayerInfo(), b.PlayerInfo()}
	state := s.Snapshot()
	for _, c := range s.Participants {
		uc.send(c, &entity.Message{
			Type: entity.MessageTypeMatchStart,
			Payload: &entity.MatchStartResponse{
				MatchID:  s.ID,
				PlayerID: c.ID,
				Players:  players,
				Arena:    s.Arena,
				State:    state,
			},
		})
	}

	uc.log.Info().
		Str("match_id", s.ID).
		Str("a", a.ID).
		Str("b", b.ID).
		Bool("ai", s.IsAI()).
		Msg("match started")

	return s
}

func (uc *EngineUseCase) getParticipantSession(conn *entity.Connection, matchID string) (*entity.Session, error) {
	s, ok := uc.sessions[matchID]
	if !ok {
		return nil, entity.ErrSessionNotExists
	}
	if !s.IsParticipant(conn.ID) {
		return nil, entity.ErrNotParticipant
	}
	return s, nil
}

// onInput replaces the latest input of a participant
func (uc *EngineUseCase) onInput(conn *entity.Connection, req *entity.InputRequest) (*entity.Message, error) {
	s, err := uc.getParticipantSession(conn, req.MatchID)
	if err != nil {
		return nil, err
	}

	s.Inputs[conn.ID] = req.Inputs

	return &entity.Message{
		Type:    entity.MessageTypeInputAck,
		Payload: &entity.InputAckResponse{Tick: req.Tick},
	}, nil
}

func (uc *EngineUseCase) forfeit(conn *entity.Connection, matchID string) error {
	s, err := uc.getParticipantSession(conn, matchID)
	if err != nil {
		return err
	}

	uc.endMatch(s, s.Opponent(conn.ID), entity.EndReasonForfeit)

	return nil
}

// tickSession advances s by one fixed step and ends it on a knockout
func (uc *EngineUseCase) tickSession(s *entity.Session, now time.Time) {
	var (
		ms = now.UnixMilli()
		dt = 1.0 / float64(uc.settings.tickRate)
	)

	s.Tick++
	s.Events = s.Events[:0]

	uc.synthesizeBotInputs(s)

	for _, c := range s.Participants {
		resolvePlayer(s, c.ID, s.Inputs[c.ID], ms, dt)
	}

	autoFace(s, ms)

	winner, lethal := uc.checkLethal(s)

	if uc.settings.tracingCombat {
		uc.traceCombat(s)
	}

	uc.broadcast(s, &entity.Message{
		Type: entity.MessageTypeState,
		Payload: &entity.StateResponse{
			MatchID: s.ID,
			Tick:    s.Tick,
			State:   s.Snapshot(),
		},
	})

	if lethal {
		uc.endMatch(s, winner, entity.EndReasonKO)
	}
}

// checkLethal reports whether a participant is down and picks the winner by
// strictly higher hp. An exact tie goes to the second participant or is a draw.
func (uc *EngineUseCase) checkLethal(s *entity.Session) (*entity.Connection, bool) {
	a, b := s.Participants[0], s.Participants[1]
	pa, pb := s.Players[a.ID], s.Players[b.ID]

	if !pa.IsDead() && !pb.IsDead() {
		return nil, false
	}

	for _, c := range s.Participants {
		if p := s.Players[c.ID]; p.IsDead() {
			s.Events = append(s.Events, entity.DeathEvent{Victim: c.ID, Killer: p.LastDamager})
		}
	}

	switch {
	case pa.HP > pb.HP:
		return a, true
	case pb.HP > pa.HP:
		return b, true
	case uc.settings.tieBreak == entity.TieBreakDraw:
		return nil, true
	default:
		return b, true
	}
}

func (uc *EngineUseCase) traceCombat(s *entity.Session) {
	for _, ev := range s.Events {
		switch e := ev.(type) {
		case entity.HitEvent:
			uc.log.Debug().
				Str("match_id", s.ID).
				Uint64("tick", s.Tick).
				Str("attacker", e.Attacker).
				Str("target", e.Target).
				Str("attack", string(e.Attack)).
				Int("damage", e.Damage).
				Int("hp", e.TargetHP).
				Msg("hit")
		case entity.DeathEvent:
			uc.log.Debug().
				Str("match_id", s.ID).
				Uint64("tick", s.Tick).
				Str("victim", e.Victim).
				Str("killer", e.Killer).
				Msg("death")
		}
	}
}

// endMatch settles s: participants go back to idle, the bot is dropped,
// both sides learn the result and the outcome goes to the recorder.
// winner is nil on a draw.
func (uc *EngineUseCase) endMatch(s *entity.Session, winner *entity.Connection, reason entity.EndReason) {
	now := uc.now()
	rewards := make(map[string]int, len(s.Participants))
	for _, c := range s.Participants {
		if winner != nil && c.ID == winner.ID {
			rewards[c.ID] = uc.settings.rewards.Win
		} else {
			rewards[c.ID] = uc.settings.rewards.Loss
		}
	}

	outcome := uc.getOutcome(s, winner, reason, rewards, now)

	delete(uc.sessions, s.ID)
	for _, c := range s.Participants {
		c.SessionID = ""
		if c.IsBot() {
			delete(uc.connections, c.ID)
			continue
		}
		c.Status = entity.ConnectionStatusIdle
	}

	var winnerID string
	if winner != nil {
		winnerID = winner.ID
	}

	uc.broadcast(s, &entity.Message{
		Type: entity.MessageTypeMatchEnd,
		Payload: &entity.MatchEndResponse{
			MatchID: s.ID,
			Winner:  winnerID,
			Reason:  reason,
			Rewards: rewards,
		},
	})

	uc.recorder.Record(outcome)

	uc.log.Info().
		Str("match_id", s.ID).
		Str("reason", string(reason)).
		Str("winner", winnerID).
		Uint64("ticks", s.Tick).
		Bool("ai", outcome.AI).
		Bool("private", s.Private).
		Int64("duration", outcome.Duration().Milliseconds()).
		Msg("match ended")
}

func (uc *EngineUseCase) getOutcome(s *entity.Session, winner *entity.Connection, reason entity.EndReason, rewards map[string]int, now time.Time) *entity.MatchOutcome {
	o := &entity.MatchOutcome{
		MatchID:   s.ID,
		Reason:    reason,
		StakeID:   s.StakeID,
		Private:   s.Private,
		AI:        s.IsAI(),
		Ticks:     s.Tick,
		StartedAt: s.StartedAt,
		EndedAt:   now,
	}

	for i, c := range s.Participants {
		o.Players[i] = entity.OutcomePlayer{
			ID:           c.PublicID(),
			ConnectionID: c.ID,
			Name:         c.PlayerInfo().Name,
			HP:           s.Players[c.ID].HP,
			Bot:          c.IsBot(),
			Won:          winner != nil && c.ID == winner.ID,
			Coins:        rewards[c.ID],
		}
	}

	if winner != nil {
		o.Winner = winner.PublicID()
		o.Loser = s.Opponent(winner.ID).PublicID()
	}

	return o
}
