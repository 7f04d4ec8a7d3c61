package zoo

import "testing"

func TestAlgoClassName(t *testing.T) {
	tests := []struct {
		algo    string
		want    string
		wantErr bool
	}{
		{algo: "ppo", want: "PPO"},
		{algo: "ppo_lstm", want: "RecurrentPPO"},
		{algo: "tqc", want: "TQC"},
		{algo: "reinforce", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.algo, func(t *testing.T) {
			got, err := AlgoClassName(tt.algo)
			if (err != nil) != tt.wantErr {
				t.Fatalf("AlgoClassName() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("AlgoClassName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsOffPolicy(t *testing.T) {
	for _, algo := range []string{"qrdqn", "dqn", "ddpg", "sac", "her", "td3", "tqc"} {
		if !IsOffPolicy(algo) {
			t.Errorf("IsOffPolicy(%q) = false, want true", algo)
		}
	}
	for _, algo := range []string{"ppo", "a2c", "trpo", "ars"} {
		if IsOffPolicy(algo) {
			t.Errorf("IsOffPolicy(%q) = true, want false", algo)
		}
	}
}

func TestIsAtari(t *testing.T) {
	tests := []struct {
		envID string
		want  bool
	}{
		{envID: "BreakoutNoFrameskip-v4", want: true},
		{envID: "ALE/Breakout-v5", want: true},
		{envID: "CartPole-v1", want: false},
		{envID: "MountainCar-v0", want: false},
	}
	for _, tt := range tests {
		if got := IsAtari(tt.envID); got != tt.want {
			t.Errorf("IsAtari(%q) = %v, want %v", tt.envID, got, tt.want)
		}
	}
}
