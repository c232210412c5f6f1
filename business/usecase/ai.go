package usecase

import (
	"math"
	"math/rand"

	"github.com/forest33/arena/business/entity"
)

// botInput picks the bot's buttons for this tick from the horizontal distance
// to its opponent. Attacks are only rolled inside the [near, far] band.
func botInput(params *entity.BotParams, self, opponent *entity.PlayerState, rng *rand.Rand) entity.Input {
	var (
		in     entity.Input
		dx     = opponent.X - self.X
		toward = dx > 0
	)

	switch distance := math.Abs(dx); {
	case distance > params.FarDistance:
		in.Right, in.Left = toward, !toward
	case distance < params.NearDistance:
		in.Right, in.Left = !toward, toward
	default:
		switch r := rng.Float64(); {
		case r < params.HeavyAttackChance:
			in.Heavy = true
		case r < params.HeavyAttackChance+params.LightAttackChance:
			in.Light = true
		}
	}

	if self.Grounded && rng.Float64() < params.JumpChance {
		in.Up = true
	}

	return in
}

func (uc *EngineUseCase) synthesizeBotInputs(s *entity.Session) {
	for _, c := range s.Participants {
		if !c.IsBot() {
			continue
		}
		opponent := s.Opponent(c.ID)
		s.Inputs[c.ID] = botInput(c.Controller.Bot, s.Players[c.ID], s.Players[opponent.ID], uc.rng)
	}
}
