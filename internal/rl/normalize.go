package rl

import (
	"fmt"
	"math"
	"os"

	"github.com/goccy/go-json"
)

// VecNormalize holds the running observation/return statistics recorded
// during training. At evaluation time the statistics are frozen and
// reward normalization is disabled.
type VecNormalize struct {
	ObsMean []float64 `json:"obs_mean"`
	ObsVar  []float64 `json:"obs_var"`
	RetVar  float64   `json:"ret_var"`
	Count   float64   `json:"count"`

	ClipObs    float64 `json:"clip_obs"`
	ClipReward float64 `json:"clip_reward"`
	Gamma      float64 `json:"gamma"`
	Epsilon    float64 `json:"epsilon"`

	Training   bool `json:"training"`
	NormReward bool `json:"norm_reward"`
}

// LoadVecNormalize reads statistics from disk and freezes them for
// evaluation: no updates, no reward normalization.
func LoadVecNormalize(path string) (*VecNormalize, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var n VecNormalize
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("failed to parse normalization stats %s: %w", path, err)
	}
	if len(n.ObsMean) != len(n.ObsVar) {
		return nil, fmt.Errorf("normalization stats %s: mean/var length mismatch (%d vs %d)",
			path, len(n.ObsMean), len(n.ObsVar))
	}

	n.Training = false
	n.NormReward = false
	return &n, nil
}

// Save writes the statistics to disk.
func (n *VecNormalize) Save(path string) error {
	data, err := json.MarshalIndent(n, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// NormalizeObs applies the frozen statistics to an observation.
func (n *VecNormalize) NormalizeObs(obs []float64) []float64 {
	normalized := make([]float64, len(obs))
	for i, v := range obs {
		if i >= len(n.ObsMean) {
			normalized[i] = v
			continue
		}
		scaled := (v - n.ObsMean[i]) / math.Sqrt(n.ObsVar[i]+n.Epsilon)
		if n.ClipObs > 0 {
			scaled = clamp(scaled, -n.ClipObs, n.ClipObs)
		}
		normalized[i] = scaled
	}
	return normalized
}
