package zoo

import (
	"os"
	"path/filepath"

	"github.com/rlzoo/zoo-hub/internal/parser"
)

// NormalizeStatsFile is the name under which running observation/return
// statistics are persisted next to a trained model.
const NormalizeStatsFile = "vec_normalize.pkl"

// SavedHyperparams reads the hyperparameters recorded for a run and the
// path of its normalization statistics, if any.
//
// The stats path is only returned when the run was trained with
// normalization and the statistics file is actually present.
func SavedHyperparams(runDir string) (hyperparams map[string]any, statsPath string, err error) {
	configPath := filepath.Join(runDir, "config.yml")
	hyperparams, err = parser.ParseYAMLFile(configPath)
	if err != nil {
		return nil, "", err
	}

	if normalize, ok := hyperparams["normalize"]; ok && normalize != false {
		candidate := filepath.Join(runDir, NormalizeStatsFile)
		if _, err := os.Stat(candidate); err == nil {
			statsPath = candidate
		}
	}
	return hyperparams, statsPath, nil
}

// RunEnvKwargs loads the env_kwargs mapping saved in a run's args.yml.
// A missing args.yml is not an error: training runs predating the file
// simply have no recorded kwargs.
func RunEnvKwargs(runDir string) (map[string]any, error) {
	f, err := os.Open(filepath.Join(runDir, "args.yml"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	args, err := parser.ParseRunArgs(f)
	if err != nil {
		return nil, err
	}
	return args.EnvKwargs, nil
}
