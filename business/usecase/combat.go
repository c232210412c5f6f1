package usecase

import (
	"math"

	"github.com/forest33/arena/business/entity"
)

// resolvePlayer advances one participant by one tick: movement, physics, then
// attack. now is in unix milliseconds and dt in seconds.
func resolvePlayer(s *entity.Session, connID string, input entity.Input, now int64, dt float64) {
	p := s.Players[connID]
	prev := s.PrevInputs[connID]

	expireAttackState(p, now)

	if !p.IsStunned(now) {
		applyMovement(p, input, now)
	}

	applyPhysics(p, s.Arena, dt)

	if spec := pressedAttack(input, prev); spec != nil {
		resolveAttack(s, connID, spec, now)
	}

	s.PrevInputs[connID] = input
}

func expireAttackState(p *entity.PlayerState, now int64) {
	if p.AttackState != entity.AttackStateNone && now >= p.AttackStateUntil {
		p.AttackState = entity.AttackStateNone
		p.AttackStateUntil = 0
	}
}

func applyMovement(p *entity.PlayerState, input entity.Input, now int64) {
	if !p.IsAnimating(now) {
		switch {
		case input.Left && !input.Right:
			p.VX = -entity.MoveSpeed
			p.Facing = entity.FacingLeft
		case input.Right && !input.Left:
			p.VX = entity.MoveSpeed
			p.Facing = entity.FacingRight
		}
	}

	if input.Up && p.Grounded {
		p.VY = entity.JumpVelocity
		p.Grounded = false
	}
}

func applyPhysics(p *entity.PlayerState, arena entity.Arena, dt float64) {
	p.VY += entity.Gravity * dt

	p.X += p.VX * dt
	p.Y += p.VY * dt

	if p.Grounded {
		p.VX *= entity.FrictionGrounded
	} else {
		p.VX *= entity.FrictionAirborne
	}

	half := entity.ActorWidth / 2
	p.X = math.Max(half, math.Min(arena.Width-half, p.X))

	if p.Y >= arena.GroundY {
		p.Y = arena.GroundY
		p.VY = 0
		p.Grounded = true
	}
}

// pressedAttack returns the attack whose button went down this tick, heavy first.
// A press refused by cooldown is still consumed.
func pressedAttack(input, prev entity.Input) *entity.AttackSpec {
	switch {
	case input.Heavy && !prev.Heavy:
		return &entity.HeavyAttack
	case input.Light && !prev.Light:
		return &entity.LightAttack
	}
	return nil
}

func resolveAttack(s *entity.Session, connID string, spec *entity.AttackSpec, now int64) bool {
	attacker := s.Players[connID]
	if attacker.IsOnCooldown(now) || attacker.IsStunned(now) || attacker.IsAnimating(now) {
		return false
	}

	attacker.AttackState = entity.AttackState(spec.Kind)
	attacker.AttackStateUntil = now + spec.Animation
	attacker.CooldownUntil = now + spec.Cooldown
	s.Events = append(s.Events, entity.AttackEvent{Attacker: connID, Attack: spec.Kind})

	opponent := s.Opponent(connID)
	if opponent == nil {
		return false
	}
	target := s.Players[opponent.ID]
	if !inReach(attacker, target, spec) {
		return false
	}

	direction := float64(attacker.Facing)
	target.HP -= spec.Damage
	target.LastDamager = connID
	target.VX += spec.KnockbackX * direction
	target.VY = spec.KnockbackY
	target.Grounded = false
	target.StunUntil = now + entity.HitstunDuration
	target.AttackState = entity.AttackStateHurt
	target.AttackStateUntil = target.StunUntil

	s.Events = append(s.Events, entity.HitEvent{
		Attacker: connID,
		Target:   opponent.ID,
		Attack:   spec.Kind,
		Damage:   spec.Damage,
		TargetHP: target.HP,
	})

	return true
}

// inReach the target stands ahead of the attacker within range and vertical tolerance
func inReach(attacker, target *entity.PlayerState, spec *entity.AttackSpec) bool {
	ahead := (target.X - attacker.X) * float64(attacker.Facing)
	return ahead >= 0 && ahead <= spec.Range && math.Abs(target.Y-attacker.Y) <= entity.VerticalTolerance
}

// autoFace turns idle participants toward their opponent
func autoFace(s *entity.Session, now int64) {
	for _, c := range s.Participants {
		p := s.Players[c.ID]
		if p.IsAnimating(now) || s.Inputs[c.ID].Horizontal() {
			continue
		}
		opponent := s.Players[s.Opponent(c.ID).ID]
		switch {
		case opponent.X > p.X:
			p.Facing = entity.FacingRight
		case opponent.X < p.X:
			p.Facing = entity.FacingLeft
		}
	}
}
