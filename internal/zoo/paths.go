package zoo

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

var checkpointPattern = regexp.MustCompile(`^rl_model_(\d+)_steps\.zip$`)

// LatestRunID returns the highest experiment id recorded for an
// environment under <folder>/<algo>, or 0 when none exists.
func LatestRunID(folder, algo, envID string) int {
	entries, err := os.ReadDir(filepath.Join(folder, algo))
	if err != nil {
		return 0
	}

	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(envID) + `_(\d+)$`)
	latest := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		m := pattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		if id, err := strconv.Atoi(m[1]); err == nil && id > latest {
			latest = id
		}
	}
	return latest
}

// ModelPath locates the serialized model for a run.
//
// expID selects the experiment folder: 0 means the latest recorded run,
// -1 means no experiment suffix at all. checkpoint selects a
// rl_model_<n>_steps.zip snapshot when positive; loadLastCheckpoint picks
// the snapshot with the most steps; loadBest prefers best_model.zip.
// By default the final model <envID>.zip is used.
func ModelPath(folder, algo, envID string, expID int, loadBest bool, checkpoint int, loadLastCheckpoint bool) (modelPath, runDir string, err error) {
	if expID == 0 {
		expID = LatestRunID(folder, algo, envID)
	}

	if expID == -1 {
		runDir = filepath.Join(folder, algo, envID)
	} else {
		runDir = filepath.Join(folder, algo, fmt.Sprintf("%s_%d", envID, expID))
	}
	if _, err := os.Stat(runDir); err != nil {
		return "", "", fmt.Errorf("no run found for %s on %s: %w", algo, envID, err)
	}

	switch {
	case loadBest:
		modelPath = filepath.Join(runDir, "best_model.zip")
	case checkpoint > 0:
		modelPath = filepath.Join(runDir, fmt.Sprintf("rl_model_%d_steps.zip", checkpoint))
	case loadLastCheckpoint:
		modelPath, err = lastCheckpoint(runDir)
		if err != nil {
			return "", "", err
		}
	default:
		modelPath = filepath.Join(runDir, envID+".zip")
	}

	if _, err := os.Stat(modelPath); err != nil {
		return "", "", fmt.Errorf("no model found at %s: %w", modelPath, err)
	}
	return modelPath, runDir, nil
}

func lastCheckpoint(runDir string) (string, error) {
	entries, err := os.ReadDir(runDir)
	if err != nil {
		return "", err
	}

	best, bestSteps := "", -1
	for _, entry := range entries {
		m := checkpointPattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		steps, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if steps > bestSteps {
			best, bestSteps = entry.Name(), steps
		}
	}
	if best == "" {
		return "", fmt.Errorf("no checkpoint found in %s", runDir)
	}
	return filepath.Join(runDir, best), nil
}
