package entity

const (
	AttackLight AttackKind = "light"
	AttackHeavy AttackKind = "heavy"
)

// Physics constants, distances in arena units and times in milliseconds
const (
	MoveSpeed         = 200.0
	JumpVelocity      = -450.0
	Gravity           = 900.0
	FrictionGrounded  = 0.80
	FrictionAirborne  = 0.95
	ActorWidth        = 40.0
	VerticalTolerance = 50.0
	HitstunDuration   = 300

	ArenaWidth   = 800.0
	ArenaHeight  = 450.0
	ArenaGroundY = 395.0
	SpawnOffset  = 150.0

	DefaultMaxHP = 100
)

type AttackKind string

// AttackSpec immutable parameters of an attack type
type AttackSpec struct {
	Kind       AttackKind
	Damage     int
	Range      float64
	Cooldown   int64
	KnockbackX float64
	KnockbackY float64
	Animation  int64
}

var (
	LightAttack = AttackSpec{
		Kind:       AttackLight,
		Damage:     10,
		Range:      60,
		Cooldown:   400,
		KnockbackX: 150,
		KnockbackY: -120,
		Animation:  200,
	}
	HeavyAttack = AttackSpec{
		Kind:       AttackHeavy,
		Damage:     25,
		Range:      75,
		Cooldown:   800,
		KnockbackX: 300,
		KnockbackY: -180,
		Animation:  400,
	}
)

// Arena playing field, y grows downwards
type Arena struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	GroundY float64 `json:"groundY"`
}

func DefaultArena() Arena {
	return Arena{
		Width:   ArenaWidth,
		Height:  ArenaHeight,
		GroundY: ArenaGroundY,
	}
}
