package usecase

import (
	"math"
	"testing"
	"time"

	"github.com/forest33/arena/business/entity"
)

const testNow int64 = 1_700_000_000_000

func newTestSession() (*entity.Session, string, string) {
	a := &entity.Connection{ID: "a", Controller: entity.HumanController(&MockPeer{})}
	b := &entity.Connection{ID: "b", Controller: entity.HumanController(&MockPeer{})}
	return entity.NewSession("m1", a, b, time.UnixMilli(testNow)), a.ID, b.ID
}

func countEvents(s *entity.Session, kind string) int {
	n := 0
	for _, ev := range s.Events {
		if entity.SnapshotEvent(ev).Type == kind {
			n++
		}
	}
	return n
}

func TestGroundedFrictionDecay(t *testing.T) {
	s, a, _ := newTestSession()
	p := s.Players[a]
	p.VX = entity.MoveSpeed

	prev := p.VX
	for i := 0; i < 30; i++ {
		resolvePlayer(s, a, entity.Input{}, testNow+int64(i*100), 0.1)

		if !p.Grounded {
			t.Fatalf("tick %d: player left the ground", i)
		}
		if math.Abs(p.VX-prev*entity.FrictionGrounded) > 1e-9 {
			t.Fatalf("tick %d: vx %f, expected %f", i, p.VX, prev*entity.FrictionGrounded)
		}
		if p.VX <= 0 {
			t.Fatalf("tick %d: vx reversed sign %f", i, p.VX)
		}
		prev = p.VX
	}
}

func TestAirborneFriction(t *testing.T) {
	p := entity.NewPlayerState(400, entity.ArenaGroundY-100, entity.FacingRight)
	p.Grounded = false
	p.VX = 100

	applyPhysics(p, entity.DefaultArena(), 0.1)

	if math.Abs(p.VX-100*entity.FrictionAirborne) > 1e-9 {
		t.Fatalf("vx %f, expected %f", p.VX, 100*entity.FrictionAirborne)
	}
	if p.Grounded || math.Abs(p.VY-entity.Gravity*0.1) > 1e-9 {
		t.Fatalf("unexpected vertical state %+v", p)
	}
}

func TestPhysicsClamp(t *testing.T) {
	p := entity.NewPlayerState(25, entity.ArenaGroundY, entity.FacingLeft)
	p.VX = -entity.MoveSpeed

	applyPhysics(p, entity.DefaultArena(), 0.1)

	if p.X != entity.ActorWidth/2 {
		t.Fatalf("x %f, expected %f", p.X, entity.ActorWidth/2)
	}
	if p.Y != entity.ArenaGroundY || p.VY != 0 || !p.Grounded {
		t.Fatalf("player must stay on the ground %+v", p)
	}
}

func TestLightAttackRange(t *testing.T) {
	tests := map[string]struct {
		distance float64
		dy       float64
		facing   entity.Facing
		hit      bool
	}{
		"boundary":     {distance: 60, hit: true},
		"out of range": {distance: 61},
		"behind":       {distance: 30, facing: entity.FacingLeft},
		"vertical":     {distance: 30, dy: -51},
		"above within": {distance: 30, dy: -50, hit: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			s, a, b := newTestSession()
			if tc.facing != 0 {
				s.Players[a].Facing = tc.facing
			}
			s.Players[b].X = s.Players[a].X + tc.distance
			s.Players[b].Y += tc.dy

			hit := resolveAttack(s, a, &entity.LightAttack, testNow)

			if hit != tc.hit {
				t.Fatalf("hit %v, expected %v", hit, tc.hit)
			}
			if countEvents(s, entity.EventTypeAttack) != 1 {
				t.Fatal("attack event expected")
			}
			wantHP := entity.DefaultMaxHP
			if tc.hit {
				wantHP -= entity.LightAttack.Damage
			}
			if s.Players[b].HP != wantHP {
				t.Fatalf("hp %d, expected %d", s.Players[b].HP, wantHP)
			}
		})
	}
}

func TestAttackCooldown(t *testing.T) {
	s, a, b := newTestSession()
	s.Players[b].X = s.Players[a].X + 40

	steps := []struct {
		at    int64
		input entity.Input
	}{
		{at: 0, input: entity.Input{Light: true}},
		{at: 100},
		{at: 300, input: entity.Input{Light: true}},
		{at: 350},
		{at: 400, input: entity.Input{Light: true}},
	}

	for _, st := range steps {
		// keep the defender in place, only the attacker's timing matters
		s.Players[b].X = s.Players[a].X + 40
		s.Players[b].Y = entity.ArenaGroundY
		resolvePlayer(s, a, st.input, testNow+st.at, 0.1)
	}

	if n := countEvents(s, entity.EventTypeAttack); n != 2 {
		t.Fatalf("attacks %d, expected 2", n)
	}
	if n := countEvents(s, entity.EventTypeHit); n != 2 {
		t.Fatalf("hits %d, expected 2", n)
	}
}

func TestAttackEdgeTriggered(t *testing.T) {
	s, a, _ := newTestSession()

	for i := int64(0); i < 10; i++ {
		resolvePlayer(s, a, entity.Input{Light: true}, testNow+i*500, 0.1)
	}

	if n := countEvents(s, entity.EventTypeAttack); n != 1 {
		t.Fatalf("held button fired %d attacks, expected 1", n)
	}
}

func TestAttackPressDuringCooldown(t *testing.T) {
	type step struct {
		at    int64
		light bool
	}

	tests := map[string]struct {
		steps []step
		want  int
	}{
		// a press swallowed by the cooldown needs a release before it counts again
		"held through cooldown": {
			steps: []step{{0, true}, {100, false}, {300, true}, {500, true}, {700, true}},
			want:  1,
		},
		"pressed again": {
			steps: []step{{0, true}, {100, false}, {300, true}, {450, false}, {500, true}},
			want:  2,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			s, a, _ := newTestSession()

			for _, st := range tc.steps {
				resolvePlayer(s, a, entity.Input{Light: st.light}, testNow+st.at, 0.1)
			}

			if n := countEvents(s, entity.EventTypeAttack); n != tc.want {
				t.Fatalf("attacks %d, expected %d", n, tc.want)
			}
		})
	}
}

func TestHeavyAttackScenario(t *testing.T) {
	s, a, b := newTestSession()
	s.Players[b].X = 210

	if !resolveAttack(s, a, &entity.HeavyAttack, testNow) {
		t.Fatal("heavy attack must hit")
	}

	target := s.Players[b]
	if target.HP != entity.DefaultMaxHP-25 {
		t.Fatalf("hp %d, expected %d", target.HP, entity.DefaultMaxHP-25)
	}
	if target.VX != 300 || target.VY != -180 {
		t.Fatalf("knockback %f/%f, expected 300/-180", target.VX, target.VY)
	}
	if target.Grounded {
		t.Fatal("target must be airborne")
	}
	if target.StunUntil != testNow+entity.HitstunDuration || target.AttackState != entity.AttackStateHurt {
		t.Fatalf("unexpected stun %d %s", target.StunUntil, target.AttackState)
	}
	if target.LastDamager != a {
		t.Fatalf("last damager %s, expected %s", target.LastDamager, a)
	}

	attacker := s.Players[a]
	if attacker.CooldownUntil != testNow+800 || attacker.AttackState != entity.AttackStateHeavy || attacker.AttackStateUntil != testNow+400 {
		t.Fatalf("unexpected attacker state %+v", attacker)
	}
}

func TestStunBlocksMovement(t *testing.T) {
	s, a, b := newTestSession()
	s.Players[b].X = s.Players[a].X + 40
	resolveAttack(s, a, &entity.LightAttack, testNow)

	target := s.Players[b]
	target.VX = 0
	resolvePlayer(s, b, entity.Input{Right: true, Up: true}, testNow+100, 0.1)

	if target.VX != 0 || target.Facing != entity.FacingLeft {
		t.Fatalf("stunned player must not move, vx=%f", target.VX)
	}
	if countEvents(s, entity.EventTypeAttack) != 1 {
		t.Fatal("unexpected attack")
	}

	resolvePlayer(s, b, entity.Input{}, testNow+400, 0.1)
	if target.AttackState != entity.AttackStateNone {
		t.Fatalf("hurt state must expire, got %s", target.AttackState)
	}
}

func TestAnimationBlocksSteering(t *testing.T) {
	s, a, _ := newTestSession()
	p := s.Players[a]

	resolvePlayer(s, a, entity.Input{Heavy: true}, testNow, 0.1)
	resolvePlayer(s, a, entity.Input{Left: true}, testNow+100, 0.1)

	if p.Facing != entity.FacingRight || p.VX != 0 {
		t.Fatalf("attack must not be steered, facing=%d vx=%f", p.Facing, p.VX)
	}

	resolvePlayer(s, a, entity.Input{Left: true}, testNow+500, 0.1)
	if p.Facing != entity.FacingLeft || p.VX >= 0 {
		t.Fatalf("player must turn after the animation, facing=%d vx=%f", p.Facing, p.VX)
	}
}

func TestAutoFace(t *testing.T) {
	s, a, b := newTestSession()
	s.Players[a].X = 700
	s.Players[b].X = 100
	s.Players[b].Facing = entity.FacingLeft
	s.Inputs[b] = entity.Input{Left: true}

	autoFace(s, testNow)

	if s.Players[a].Facing != entity.FacingLeft {
		t.Fatal("idle player must face the opponent")
	}
	if s.Players[b].Facing != entity.FacingLeft {
		t.Fatal("player with horizontal input keeps its facing")
	}
}
