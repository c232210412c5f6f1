package entity

const (
	EventTypeAttack = "attack"
	EventTypeHit    = "hit"
	EventTypeDeath  = "death"
)

// GameEvent something that happened during a tick. The set of
// implementations is closed: AttackEvent, HitEvent and DeathEvent.
type GameEvent interface {
	gameEvent()
}

type AttackEvent struct {
	Attacker string
	Attack   AttackKind
}

type HitEvent struct {
	Attacker string
	Target   string
	Attack   AttackKind
	Damage   int
	TargetHP int
}

type DeathEvent struct {
	Victim string
	Killer string
}

func (AttackEvent) gameEvent() {}
func (HitEvent) gameEvent()    {}
func (DeathEvent) gameEvent()  {}

// EventSnapshot wire form of a GameEvent
type EventSnapshot struct {
	Type     string     `json:"type"`
	Attacker string     `json:"attacker,omitempty"`
	Target   string     `json:"target,omitempty"`
	Attack   AttackKind `json:"attack,omitempty"`
	Damage   int        `json:"damage,omitempty"`
	HP       int        `json:"hp,omitempty"`
	Victim   string     `json:"victim,omitempty"`
	Killer   string     `json:"killer,omitempty"`
}

func SnapshotEvent(ev GameEvent) EventSnapshot {
	switch e := ev.(type) {
	case AttackEvent:
		return EventSnapshot{Type: EventTypeAttack, Attacker: e.Attacker, Attack: e.Attack}
	case HitEvent:
		return EventSnapshot{Type: EventTypeHit, Attacker: e.Attacker, Target: e.Target, Attack: e.Attack, Damage: e.Damage, HP: e.TargetHP}
	case DeathEvent:
		return EventSnapshot{Type: EventTypeDeath, Victim: e.Victim, Killer: e.Killer}
	}
	panic("unknown game event")
}
