package usecase

import (
	"testing"

	"github.com/google/uuid"

	"github.com/forest33/arena/business/entity"
)

func TestQueueFIFO(t *testing.T) {
	h := newHarness(t)
	a, pa := h.connect()
	b, pb := h.connect()
	c, pc := h.connect()

	h.receive(a, entity.MessageTypeJoinQueue, nil)
	h.receive(b, entity.MessageTypeJoinQueue, nil)
	h.receive(c, entity.MessageTypeJoinQueue, nil)

	if len(h.uc.sessions) != 1 {
		t.Fatalf("sessions %d, expected 1", len(h.uc.sessions))
	}
	if len(h.uc.queue) != 1 || h.uc.queue[0].connID != c {
		t.Fatalf("expected only %s to wait", c)
	}

	for id, p := range map[string]*MockPeer{a: pa, b: pb} {
		msg := p.Last(entity.MessageTypeMatchStart)
		if msg == nil {
			t.Fatalf("match_start not sent to %s", id)
		}
		resp := msg.Payload.(*entity.MatchStartResponse)
		if resp.PlayerID != id {
			t.Fatalf("player id %s, expected %s", resp.PlayerID, id)
		}
		if len(resp.Players) != 2 || resp.Players[0].ID != a || resp.Players[1].ID != b {
			t.Fatalf("unexpected players %+v", resp.Players)
		}
		if resp.Arena.Width != entity.ArenaWidth || resp.State.Players[a].X != entity.SpawnOffset {
			t.Fatalf("unexpected initial state %+v", resp.State)
		}
	}
	if pc.Last(entity.MessageTypeMatchStart) != nil {
		t.Fatal("third connection must keep waiting")
	}

	conn, _ := h.uc.get(a)
	if conn.Status != entity.ConnectionStatusInMatch {
		t.Fatalf("status %s, expected in_match", conn.Status)
	}
}

func TestQueueStakePairing(t *testing.T) {
	h := newHarness(t)
	a, _ := h.connect()
	b, _ := h.connect()
	c, _ := h.connect()
	d, _ := h.connect()
	e, _ := h.connect()

	h.receive(a, entity.MessageTypeJoinQueue, nil)
	h.receive(b, entity.MessageTypeJoinQueue, map[string]interface{}{"stakeId": "s1"})
	h.receive(c, entity.MessageTypeJoinQueue, map[string]interface{}{"stakeId": "s2"})
	h.receive(d, entity.MessageTypeJoinQueue, map[string]interface{}{"stakeId": "s1"})

	if len(h.uc.sessions) != 1 {
		t.Fatalf("sessions %d, expected 1", len(h.uc.sessions))
	}
	cb, _ := h.uc.get(b)
	s := h.uc.sessions[cb.SessionID]
	if s == nil || !s.IsParticipant(d) || s.StakeID != "s1" {
		t.Fatalf("stake entries must be paired together")
	}

	// untagged entries pair past the waiting stake entry
	h.receive(e, entity.MessageTypeJoinQueue, nil)
	ca, _ := h.uc.get(a)
	if s := h.uc.sessions[ca.SessionID]; s == nil || !s.IsParticipant(e) || s.StakeID != "" {
		t.Fatal("untagged entries must be paired in arrival order")
	}
	if len(h.uc.queue) != 1 || h.uc.queue[0].connID != c {
		t.Fatal("unmatched stake entry must keep waiting")
	}
}

func TestJoinQueueNoop(t *testing.T) {
	h := newHarness(t)
	a, _, pa, _, _ := h.match()

	h.receive(a, entity.MessageTypeJoinQueue, nil)
	if len(h.uc.queue) != 0 {
		t.Fatal("connection in a match must not be queued")
	}

	c, pc := h.connect()
	h.receive(c, entity.MessageTypeJoinQueue, nil)
	h.receive(c, entity.MessageTypeJoinQueue, nil)
	if len(h.uc.queue) != 1 {
		t.Fatalf("queue %d, expected 1", len(h.uc.queue))
	}

	if len(errorTexts(pa)) != 0 || len(errorTexts(pc)) != 0 {
		t.Fatal("no-op joins must not answer with errors")
	}
}

func TestJoinQueueReplacesProfile(t *testing.T) {
	h := newHarness(t)
	a, _ := h.connect()

	h.receive(a, entity.MessageTypeJoinQueue, map[string]interface{}{"address": "0xaaa", "name": "alice", "stakeId": "duel-1"})
	h.receive(a, entity.MessageTypeLeaveQueue, nil)
	h.receive(a, entity.MessageTypeJoinQueue, nil)

	conn, _ := h.uc.get(a)
	if conn.Profile != nil || conn.PublicID() != a || conn.StakeID != "" {
		t.Fatalf("previous join leaked into %+v", conn)
	}
	if !h.uc.isQueued(a) {
		t.Fatal("connection must be queued again")
	}
}

func TestLeaveQueueIdempotent(t *testing.T) {
	h := newHarness(t)
	a, pa := h.connect()

	h.receive(a, entity.MessageTypeLeaveQueue, nil)
	h.receive(a, entity.MessageTypeJoinQueue, nil)
	h.receive(a, entity.MessageTypeLeaveQueue, nil)
	h.receive(a, entity.MessageTypeLeaveQueue, nil)

	if len(h.uc.queue) != 0 {
		t.Fatalf("queue %d, expected 0", len(h.uc.queue))
	}
	if msgs := pa.Messages(""); len(msgs) != 1 || msgs[0].Type != entity.MessageTypeWelcome {
		t.Fatalf("unexpected messages %v", msgs)
	}
	if conn, _ := h.uc.get(a); !conn.IsIdle() {
		t.Fatal("connection must stay idle")
	}
}

func TestJoinQueueCosmetics(t *testing.T) {
	tests := map[string]struct {
		resolver *MockCosmetics
		want     map[string]string
	}{
		"resolved": {
			resolver: &MockCosmetics{},
			want:     map[string]string{"hat-1": "asset/hat-1"},
		},
		"failed": {
			resolver: &MockCosmetics{Err: entity.ErrInternalError},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			h.uc.cosmetics = tc.resolver

			a, _ := h.connect()
			b, pb := h.connect()
			h.receive(a, entity.MessageTypeJoinQueue, map[string]interface{}{
				"address":  "0xabc",
				"name":     "alice",
				"equipped": []interface{}{"hat-1"},
			})
			h.receive(b, entity.MessageTypeJoinQueue, nil)

			msg := pb.Last(entity.MessageTypeMatchStart)
			if msg == nil {
				t.Fatal("match must start even without cosmetics")
			}
			info := msg.Payload.(*entity.MatchStartResponse).Players[0]
			if info.Name != "alice" || info.Address != "0xabc" {
				t.Fatalf("unexpected profile %+v", info)
			}
			if len(info.Cosmetics) != len(tc.want) || info.Cosmetics["hat-1"] != tc.want["hat-1"] {
				t.Fatalf("cosmetics %v, expected %v", info.Cosmetics, tc.want)
			}
		})
	}
}

func TestJoinAI(t *testing.T) {
	h := newHarness(t)
	a, pa := h.connect()
	h.receive(a, entity.MessageTypeJoinQueue, nil)
	h.receive(a, entity.MessageTypeJoinAI, nil)

	if len(h.uc.queue) != 0 {
		t.Fatal("AI match must leave the queue")
	}
	if len(h.uc.connections) != 2 || len(h.uc.sessions) != 1 {
		t.Fatalf("connections %d sessions %d", len(h.uc.connections), len(h.uc.sessions))
	}

	msg := pa.Last(entity.MessageTypeMatchStart)
	if msg == nil {
		t.Fatal("match_start not sent")
	}
	bot := msg.Payload.(*entity.MatchStartResponse).Players[1]
	if !bot.Bot || bot.Name != "Bot" {
		t.Fatalf("unexpected bot %+v", bot)
	}
	if conn, _ := h.uc.get(bot.ID); conn.Status != entity.ConnectionStatusInMatch || !conn.IsBot() {
		t.Fatal("bot must be in a match")
	}

	h.receive(a, entity.MessageTypeJoinAI, nil)
	if len(h.uc.sessions) != 1 {
		t.Fatal("second AI match must be ignored")
	}

	for i := 0; i < 20; i++ {
		h.tick()
	}

	conn, _ := h.uc.get(a)
	h.receive(a, entity.MessageTypeForfeit, map[string]interface{}{"matchId": conn.SessionID})

	if len(h.uc.connections) != 1 || len(h.uc.sessions) != 0 {
		t.Fatal("bot must be dropped when the match ends")
	}
	end := pa.Last(entity.MessageTypeMatchEnd).Payload.(*entity.MatchEndResponse)
	if end.Winner != bot.ID || end.Reason != entity.EndReasonForfeit {
		t.Fatalf("unexpected match end %+v", end)
	}
}

func TestCreatePrivate(t *testing.T) {
	tests := map[string]struct {
		opponent func(h *harness, self string) string
		want     string
	}{
		"self": {
			opponent: func(_ *harness, self string) string { return self },
			want:     "cannot play against yourself",
		},
		"unknown": {
			opponent: func(*harness, string) string { return uuid.New().String() },
			want:     "opponent not found",
		},
		"invalid id": {
			opponent: func(*harness, string) string { return "bob" },
			want:     "invalid message",
		},
		"busy": {
			opponent: func(h *harness, _ string) string {
				a, _, _, _, _ := h.match()
				return a
			},
			want: "opponent is not available",
		},
		"ok": {
			opponent: func(h *harness, _ string) string {
				b, _ := h.connect()
				h.receive(b, entity.MessageTypeJoinQueue, nil)
				return b
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			self, p := h.connect()
			opponent := tc.opponent(h, self)

			h.receive(self, entity.MessageTypeCreatePrivate, map[string]interface{}{"opponentId": opponent})

			errs := errorTexts(p)
			if tc.want != "" {
				if len(errs) != 1 || errs[0] != tc.want {
					t.Fatalf("errors %v, expected %q", errs, tc.want)
				}
				return
			}

			if len(errs) != 0 {
				t.Fatalf("unexpected errors %v", errs)
			}
			conn, _ := h.uc.get(self)
			s := h.uc.sessions[conn.SessionID]
			if s == nil || !s.Private || !s.IsParticipant(opponent) {
				t.Fatal("private match not created")
			}
			if len(h.uc.queue) != 0 {
				t.Fatal("opponent must leave the queue")
			}
		})
	}
}

func TestCreatePrivateNotIdle(t *testing.T) {
	h := newHarness(t)
	a, _, pa, _, _ := h.match()
	c, _ := h.connect()

	h.receive(a, entity.MessageTypeCreatePrivate, map[string]interface{}{"opponentId": c})

	if errs := errorTexts(pa); len(errs) != 1 || errs[0] != "already in a match" {
		t.Fatalf("unexpected errors %v", errs)
	}
}
