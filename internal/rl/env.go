package rl

import (
	"fmt"
	"image"
	"sort"
)

// Env is a single episodic environment with a discrete action space.
type Env interface {
	// Reset starts a new episode and returns the initial observation.
	Reset() []float64
	// Step applies an action and returns the next observation, the raw
	// reward, and whether the episode terminated.
	Step(action int) (obs []float64, reward float64, done bool)
	ObsSize() int
	NumActions() int
	Close() error
}

// Renderer is implemented by environments that can draw their state.
type Renderer interface {
	RenderRGB() *image.RGBA
}

type envBuilder func(seed int64, kwargs map[string]any) (Env, error)

var envBuilders = map[string]envBuilder{
	"CartPole-v1":    newCartPole,
	"MountainCar-v0": newMountainCar,
}

// NewEnv constructs a registered environment.
func NewEnv(envID string, seed int64, kwargs map[string]any) (Env, error) {
	builder, ok := envBuilders[envID]
	if !ok {
		return nil, fmt.Errorf("unknown environment: %s (valid: %v)", envID, envNames())
	}
	return builder(seed, kwargs)
}

func envNames() []string {
	names := make([]string, 0, len(envBuilders))
	for name := range envBuilders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// kwargInt reads an integer kwarg, tolerating YAML's int/float decoding.
func kwargInt(kwargs map[string]any, key string, fallback int) int {
	v, ok := kwargs[key]
	if !ok {
		return fallback
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return fallback
	}
}
