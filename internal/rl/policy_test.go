package rl

import (
	"path/filepath"
	"testing"
)

func testPolicy(t *testing.T) *Policy {
	t.Helper()
	p, err := newPolicy(&policyData{
		AlgoClass:  "PPO",
		ObsSize:    4,
		NumActions: 2,
		Layers: []layerData{
			{
				Weights: [][]float64{
					{0.5, -0.25, 0.1, 0},
					{-0.5, 0.25, -0.1, 0},
					{0.3, 0.3, -0.3, 0.3},
				},
				Biases:     []float64{0.1, -0.1, 0},
				Activation: "tanh",
			},
			{
				Weights: [][]float64{
					{1, 0, 0.5},
					{0, 1, -0.5},
				},
				Biases:     []float64{0, 0.2},
				Activation: "linear",
			},
		},
	}, 42)
	if err != nil {
		t.Fatalf("newPolicy() error = %v", err)
	}
	return p
}

func TestPolicySaveLoadRoundTrip(t *testing.T) {
	p := testPolicy(t)
	path := filepath.Join(t.TempDir(), "ppo-CartPole-v1.zip")
	if err := p.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadPolicy(path, 42)
	if err != nil {
		t.Fatalf("LoadPolicy() error = %v", err)
	}

	if loaded.AlgoClass != p.AlgoClass || loaded.ObsSize != p.ObsSize || loaded.NumActions != p.NumActions {
		t.Errorf("loaded policy header = %s/%d/%d, want %s/%d/%d",
			loaded.AlgoClass, loaded.ObsSize, loaded.NumActions, p.AlgoClass, p.ObsSize, p.NumActions)
	}

	obs := []float64{0.1, -0.2, 0.05, 0.3}
	want := p.forward(obs)
	got := loaded.forward(obs)
	for i := range want {
		if diff := got[i] - want[i]; diff > 1e-12 || diff < -1e-12 {
			t.Fatalf("forward mismatch at %d: %v vs %v", i, got[i], want[i])
		}
	}
}

func TestPolicyPredictDeterministic(t *testing.T) {
	p := testPolicy(t)
	obs := []float64{0.1, -0.2, 0.05, 0.3}

	first := p.Predict(obs, true)
	for i := 0; i < 10; i++ {
		if got := p.Predict(obs, true); got != first {
			t.Fatalf("deterministic Predict() changed: %d vs %d", got, first)
		}
	}
	if first < 0 || first >= p.NumActions {
		t.Fatalf("Predict() = %d, out of action range", first)
	}
}

func TestPolicyShapeValidation(t *testing.T) {
	_, err := newPolicy(&policyData{
		AlgoClass:  "PPO",
		ObsSize:    4,
		NumActions: 2,
		Layers: []layerData{
			{Weights: [][]float64{{1, 2}}, Biases: []float64{0}, Activation: "linear"},
		},
	}, 0)
	if err == nil {
		t.Error("newPolicy() expected shape mismatch error")
	}
}

func TestLoadPolicyMissingEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.zip")
	if _, err := LoadPolicy(path, 0); err == nil {
		t.Error("LoadPolicy() expected error for missing archive")
	}
}
