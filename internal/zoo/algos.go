package zoo

import (
	"fmt"
	"sort"
	"strings"
)

// Algorithms maps the short algorithm names used in log folders to the
// class names reported on model cards.
var Algorithms = map[string]string{
	"a2c":      "A2C",
	"ars":      "ARS",
	"ddpg":     "DDPG",
	"dqn":      "DQN",
	"her":      "HER",
	"ppo":      "PPO",
	"ppo_lstm": "RecurrentPPO",
	"qrdqn":    "QRDQN",
	"sac":      "SAC",
	"td3":      "TD3",
	"tqc":      "TQC",
	"trpo":     "TRPO",
}

// Off-policy algorithms only support one env for evaluation.
var offPolicyAlgos = map[string]bool{
	"qrdqn": true,
	"dqn":   true,
	"ddpg":  true,
	"sac":   true,
	"her":   true,
	"td3":   true,
	"tqc":   true,
}

// AlgoClassName resolves the class name for a short algorithm name.
func AlgoClassName(algo string) (string, error) {
	name, ok := Algorithms[algo]
	if !ok {
		return "", fmt.Errorf("unknown algorithm: %s (valid: %s)", algo, strings.Join(AlgorithmNames(), ", "))
	}
	return name, nil
}

// AlgorithmNames returns the registered short names, sorted.
func AlgorithmNames() []string {
	names := make([]string, 0, len(Algorithms))
	for name := range Algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsOffPolicy reports whether an algorithm is in the off-policy set.
func IsOffPolicy(algo string) bool {
	return offPolicyAlgos[algo]
}

// IsAtari reports whether an environment id belongs to the Atari family.
func IsAtari(envID string) bool {
	return strings.Contains(envID, "NoFrameskip") || strings.HasPrefix(envID, "ALE/")
}
