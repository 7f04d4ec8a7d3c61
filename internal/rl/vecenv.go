package rl

// VecEnv is a fixed set of environments stepped sequentially, optionally
// wrapped with observation normalization.
type VecEnv struct {
	Envs      []Env
	Normalize *VecNormalize
}

// CreateTestEnv builds the evaluation environment for a run. When
// statsPath is non-empty, the recorded normalization statistics are
// loaded and frozen.
func CreateTestEnv(envID string, nEnvs int, statsPath string, seed int64, envKwargs map[string]any) (*VecEnv, error) {
	if nEnvs < 1 {
		nEnvs = 1
	}

	envs := make([]Env, 0, nEnvs)
	for i := 0; i < nEnvs; i++ {
		env, err := NewEnv(envID, seed+int64(i), envKwargs)
		if err != nil {
			return nil, err
		}
		envs = append(envs, env)
	}
	venv := &VecEnv{Envs: envs}

	if statsPath != "" {
		normalize, err := LoadVecNormalize(statsPath)
		if err != nil {
			return nil, err
		}
		venv.Normalize = normalize
	}
	return venv, nil
}

// Observe applies normalization, if configured, to a raw observation.
func (v *VecEnv) Observe(obs []float64) []float64 {
	if v.Normalize == nil {
		return obs
	}
	return v.Normalize.NormalizeObs(obs)
}

func (v *VecEnv) ObsSize() int    { return v.Envs[0].ObsSize() }
func (v *VecEnv) NumActions() int { return v.Envs[0].NumActions() }

func (v *VecEnv) Close() {
	for _, env := range v.Envs {
		_ = env.Close()
	}
}
