package usecase

import (
	"math/rand"
	"testing"

	"github.com/forest33/arena/business/entity"
)

func getTestBotParams() *entity.BotParams {
	return &entity.BotParams{
		Name:              "Bot",
		FarDistance:       120,
		NearDistance:      40,
		LightAttackChance: 0.15,
		HeavyAttackChance: 0.05,
		JumpChance:        0.02,
	}
}

func TestBotMovement(t *testing.T) {
	tests := map[string]struct {
		self, opponent float64
		left, right    bool
	}{
		"far right":  {self: 100, opponent: 500, right: true},
		"far left":   {self: 500, opponent: 100, left: true},
		"too close":  {self: 300, opponent: 320, left: true},
		"close left": {self: 300, opponent: 280, right: true},
		"in band":    {self: 300, opponent: 380},
	}

	rng := rand.New(rand.NewSource(1))
	params := getTestBotParams()
	params.JumpChance = 0

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			self := entity.NewPlayerState(tc.self, entity.ArenaGroundY, entity.FacingRight)
			opponent := entity.NewPlayerState(tc.opponent, entity.ArenaGroundY, entity.FacingLeft)

			in := botInput(params, self, opponent, rng)
			if in.Left != tc.left || in.Right != tc.right || in.Up {
				t.Fatalf("unexpected input %+v", in)
			}
		})
	}
}

func TestBotAttacksInBand(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	params := getTestBotParams()
	self := entity.NewPlayerState(300, entity.ArenaGroundY, entity.FacingRight)
	opponent := entity.NewPlayerState(380, entity.ArenaGroundY, entity.FacingLeft)

	var light, heavy, jumps int
	const rounds = 10_000
	for i := 0; i < rounds; i++ {
		in := botInput(params, self, opponent, rng)
		if in.Light {
			light++
		}
		if in.Heavy {
			heavy++
		}
		if in.Up {
			jumps++
		}
		if in.Light && in.Heavy {
			t.Fatal("bot pressed both attacks")
		}
	}

	if light < rounds/10 || light > rounds/5 {
		t.Fatalf("light attacks %d out of %d", light, rounds)
	}
	if heavy < rounds/40 || heavy > rounds/10 {
		t.Fatalf("heavy attacks %d out of %d", heavy, rounds)
	}
	if jumps == 0 || jumps > rounds/20 {
		t.Fatalf("jumps %d out of %d", jumps, rounds)
	}
}

func TestBotNeverJumpsAirborne(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	params := getTestBotParams()
	params.JumpChance = 1

	self := entity.NewPlayerState(300, entity.ArenaGroundY-50, entity.FacingRight)
	self.Grounded = false
	opponent := entity.NewPlayerState(600, entity.ArenaGroundY, entity.FacingLeft)

	if in := botInput(params, self, opponent, rng); in.Up {
		t.Fatal("airborne bot must not jump")
	}
}

func TestBotDeterministic(t *testing.T) {
	params := getTestBotParams()
	self := entity.NewPlayerState(300, entity.ArenaGroundY, entity.FacingRight)
	opponent := entity.NewPlayerState(380, entity.ArenaGroundY, entity.FacingLeft)

	r1, r2 := rand.New(rand.NewSource(99)), rand.New(rand.NewSource(99))
	for i := 0; i < 100; i++ {
		if botInput(params, self, opponent, r1) != botInput(params, self, opponent, r2) {
			t.Fatalf("round %d: same seed produced different inputs", i)
		}
	}
}
