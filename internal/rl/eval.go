package rl

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/rlzoo/zoo-hub/internal/models"
)

// Evaluate rolls the policy out for nEpisodes sequential episodes and
// returns the mean and standard deviation of the episode rewards.
// Rewards are accumulated raw, before any normalization.
func Evaluate(policy *Policy, venv *VecEnv, nEpisodes int, deterministic bool) (models.EvalResult, error) {
	if nEpisodes < 1 {
		return models.EvalResult{}, fmt.Errorf("need at least one evaluation episode, got %d", nEpisodes)
	}

	rewards := make([]float64, 0, nEpisodes)
	for ep := 0; ep < nEpisodes; ep++ {
		env := venv.Envs[ep%len(venv.Envs)]
		obs := env.Reset()

		var total float64
		for {
			action := policy.Predict(venv.Observe(obs), deterministic)
			next, reward, done := env.Step(action)
			total += reward
			if done {
				break
			}
			obs = next
		}
		rewards = append(rewards, total)
	}

	mean, std := stat.MeanStdDev(rewards, nil)
	if nEpisodes == 1 {
		std = 0
	}
	return models.EvalResult{MeanReward: mean, StdReward: std, NEpisodes: nEpisodes}, nil
}
