package cmd

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/spf13/cobra"
)

func TestBuildRunConfigOffPolicySingleEnv(t *testing.T) {
	tests := []struct {
		algo      string
		nEnvs     int
		wantNEnvs int
	}{
		{algo: "dqn", nEnvs: 4, wantNEnvs: 1},
		{algo: "sac", nEnvs: 8, wantNEnvs: 1},
		{algo: "qrdqn", nEnvs: 2, wantNEnvs: 1},
		{algo: "ppo", nEnvs: 4, wantNEnvs: 4},
		{algo: "a2c", nEnvs: 1, wantNEnvs: 1},
	}
	for _, tt := range tests {
		t.Run(tt.algo, func(t *testing.T) {
			cmd := &cobra.Command{}
			registerPushFlags(cmd)
			flags := map[string]string{
				"algo":   tt.algo,
				"env":    "CartPole-v1",
				"folder": "logs",
				"n-envs": strconv.Itoa(tt.nEnvs),
			}
			for name, value := range flags {
				if err := cmd.Flags().Set(name, value); err != nil {
					t.Fatalf("set --%s: %v", name, err)
				}
			}

			cfg, err := buildRunConfig(cmd)
			if err != nil {
				t.Fatalf("buildRunConfig() error = %v", err)
			}
			if cfg.NEnvs != tt.wantNEnvs {
				t.Errorf("NEnvs = %d, want %d", cfg.NEnvs, tt.wantNEnvs)
			}
		})
	}
}

func TestResolveDeterministic(t *testing.T) {
	tests := []struct {
		name          string
		envID         string
		stochastic    bool
		deterministic bool
		want          bool
	}{
		{name: "default is deterministic", envID: "CartPole-v1", want: true},
		{name: "stochastic flag wins", envID: "CartPole-v1", stochastic: true, want: false},
		{name: "atari defaults to stochastic", envID: "BreakoutNoFrameskip-v4", want: false},
		{name: "atari with deterministic flag", envID: "BreakoutNoFrameskip-v4", deterministic: true, want: true},
		{name: "ALE prefix defaults to stochastic", envID: "ALE/Pong-v5", want: false},
		{name: "stochastic beats deterministic", envID: "CartPole-v1", stochastic: true, deterministic: true, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolveDeterministic(tt.envID, tt.stochastic, tt.deterministic); got != tt.want {
				t.Errorf("resolveDeterministic() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRepoIDFor(t *testing.T) {
	tests := []struct {
		name         string
		organization string
		repoName     string
		want         string
	}{
		{name: "default name", organization: "acme", repoName: "ppo-CartPole-v1", want: "acme/ppo-CartPole-v1"},
		{name: "slash replaced", organization: "acme", repoName: "ppo/CartPole-v1", want: "acme/ppo-CartPole-v1"},
		{name: "multiple slashes", organization: "org", repoName: "a/b/c", want: "org/a-b-c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := repoIDFor(tt.organization, tt.repoName); got != tt.want {
				t.Errorf("repoIDFor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMergeKwargs(t *testing.T) {
	base := map[string]any{"a": 1, "b": 2}
	override := map[string]any{"b": 3, "c": 4}

	got := mergeKwargs(base, override)
	want := map[string]any{"a": 1, "b": 3, "c": 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("mergeKwargs() = %v, want %v", got, want)
	}

	if got := mergeKwargs(nil, override); !reflect.DeepEqual(got, override) {
		t.Errorf("mergeKwargs(nil, override) = %v, want %v", got, override)
	}
}
