package models

// RunConfig describes a single push invocation. It is built once from
// command-line flags and not mutated afterwards.
type RunConfig struct {
	Algo   string
	EnvID  string
	Folder string
	ExpID  int

	Seed        int64
	Device      string
	NEnvs       int
	NumThreads  int
	VideoLength int
	Verbose     int

	Deterministic bool
	Render        bool

	// EnvKwargs is the effective environment keyword-argument map:
	// values loaded from the run's args.yml, overridden by flag values.
	EnvKwargs map[string]any
}
