package entity

const (
	AttackStateNone  AttackState = "none"
	AttackStateLight AttackState = "light"
	AttackStateHeavy AttackState = "heavy"
	AttackStateHurt  AttackState = "hurt"

	FacingLeft  Facing = -1
	FacingRight Facing = 1
)

type AttackState string
type Facing int

// PlayerState combat state of one participant, timestamps are unix milliseconds
type PlayerState struct {
	X                float64     `json:"x"`
	Y                float64     `json:"y"`
	VX               float64     `json:"vx"`
	VY               float64     `json:"vy"`
	HP               int         `json:"hp"`
	MaxHP            int         `json:"maxHp"`
	Grounded         bool        `json:"grounded"`
	Facing           Facing      `json:"facing"`
	CooldownUntil    int64       `json:"cooldownUntil"`
	AttackState      AttackState `json:"attackState"`
	AttackStateUntil int64       `json:"attackStateUntil"`
	StunUntil        int64       `json:"stunUntil"`
	LastDamager      string      `json:"lastDamager,omitempty"`
}

// Input button state sent by a client every frame
type Input struct {
	Left  bool `json:"left"`
	Right bool `json:"right"`
	Up    bool `json:"up"`
	Light bool `json:"light"`
	Heavy bool `json:"heavy"`
}

func NewPlayerState(x, groundY float64, facing Facing) *PlayerState {
	return &PlayerState{
		X:           x,
		Y:           groundY,
		HP:          DefaultMaxHP,
		MaxHP:       DefaultMaxHP,
		Grounded:    true,
		Facing:      facing,
		AttackState: AttackStateNone,
	}
}

func (p *PlayerState) IsStunned(now int64) bool {
	return now < p.StunUntil
}

func (p *PlayerState) IsOnCooldown(now int64) bool {
	return now < p.CooldownUntil
}

// IsAnimating reports an attack animation in progress
func (p *PlayerState) IsAnimating(now int64) bool {
	return (p.AttackState == AttackStateLight || p.AttackState == AttackStateHeavy) && now < p.AttackStateUntil
}

func (p *PlayerState) IsDead() bool {
	return p.HP <= 0
}

func (i Input) Horizontal() bool {
	return i.Left != i.Right
}
