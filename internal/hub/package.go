package hub

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/rlzoo/zoo-hub/internal/card"
	"github.com/rlzoo/zoo-hub/internal/rl"
	"github.com/rlzoo/zoo-hub/internal/zoo"
)

// PackageInput carries everything the packaging pipeline needs.
type PackageInput struct {
	Client *Client
	Policy *rl.Policy
	Env    *rl.VecEnv

	ModelName     string
	AlgoName      string
	AlgoClassName string
	RunDir        string
	Hyperparams   map[string]any
	EnvKwargs     map[string]any
	EnvID         string

	RepoID        string
	CommitMessage string
	Deterministic bool
	NEvalEpisodes int
	LocalRepoPath string
	VideoLength   int
	GenerateVideo bool
	Verbose       int
}

// PackageToHub runs the full publishing pipeline: clone/sync the remote
// repo, stage model weights, stats and configs, evaluate the agent,
// optionally record a replay, write the model card, and push.
//
// There are no retries and no rollback. Any error aborts the run with the
// underlying cause; a partially staged clone stays on disk.
func PackageToHub(ctx context.Context, in PackageInput) (string, error) {
	if in.NEvalEpisodes <= 0 {
		in.NEvalEpisodes = 10
	}

	organization, repoName, ok := strings.Cut(in.RepoID, "/")
	if !ok {
		return "", fmt.Errorf("invalid repo id %q (expected organization/name)", in.RepoID)
	}

	// Step 1: create-or-reuse the remote repo and sync a local clone.
	info, err := in.Client.CreateRepo(ctx, in.RepoID, false)
	if err != nil {
		return "", err
	}
	clone, err := Clone(ctx, in.Client, in.RepoID, filepath.Join(in.LocalRepoPath, repoName))
	if err != nil {
		return "", err
	}

	// Step 2: stage the model archive and unpack it next to itself.
	archivePath := filepath.Join(clone.Dir, in.ModelName+".zip")
	if err := in.Policy.Save(archivePath); err != nil {
		return "", err
	}
	if err := unpackArchive(archivePath, filepath.Join(clone.Dir, in.ModelName)); err != nil {
		return "", err
	}

	// Step 3: freeze and stage normalization statistics, if any.
	if normalize := in.Env.Normalize; normalize != nil {
		normalize.Training = false
		normalize.NormReward = false
		if err := normalize.Save(filepath.Join(clone.Dir, zoo.NormalizeStatsFile)); err != nil {
			return "", err
		}
	}

	// Step 4: copy run configs and write the effective env kwargs.
	for _, name := range []string{"args.yml", "config.yml"} {
		if err := copyFile(filepath.Join(in.RunDir, name), filepath.Join(clone.Dir, name)); err != nil {
			return "", err
		}
	}
	if err := writeEnvKwargs(filepath.Join(clone.Dir, "env_kwargs.yml"), in.EnvKwargs); err != nil {
		return "", err
	}

	// Step 5: bundle training/eval metrics.
	if err := writeMetricsArchive(in.RunDir, filepath.Join(clone.Dir, "train_eval_metrics.zip")); err != nil {
		return "", err
	}

	// Step 6: evaluate.
	result, err := rl.Evaluate(in.Policy, in.Env, in.NEvalEpisodes, in.Deterministic)
	if err != nil {
		return "", err
	}
	if in.Verbose > 0 {
		fmt.Printf("Mean reward: %.2f +/- %.2f\n", result.MeanReward, result.StdReward)
	}
	resultsRaw, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(clone.Dir, "results.json"), resultsRaw, 0o644); err != nil {
		return "", err
	}

	// Step 7: replay video, best-effort.
	if in.GenerateVideo {
		if err := rl.RecordReplay(ctx, in.Policy, in.Env, in.VideoLength, in.Deterministic, clone.Dir); err != nil {
			fmt.Fprintf(os.Stderr, "Replay video skipped: %v\n", err)
		}
	}

	// Step 8: model card. The README is always regenerated.
	markdown, metadata, err := card.Generate(
		in.AlgoName, in.AlgoClassName, organization, in.EnvID,
		result.MeanReward, result.StdReward, in.Hyperparams, in.EnvKwargs,
	)
	if err != nil {
		return "", err
	}
	if err := card.Save(clone.Dir, markdown, metadata); err != nil {
		return "", err
	}

	// Step 9: push.
	if in.Verbose > 0 {
		fmt.Printf("Pushing repo %s to the hub\n", repoName)
	}
	if err := clone.Push(ctx, in.CommitMessage); err != nil {
		return "", err
	}

	if in.Verbose > 0 {
		fmt.Printf("Your model is pushed to the hub. You can view it here: %s\n", info.URL)
	}
	return info.URL, nil
}

func unpackArchive(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer reader.Close()

	for _, entry := range reader.File {
		target := filepath.Join(destDir, filepath.FromSlash(entry.Name))
		if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes %s", entry.Name, destDir)
		}
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := extractEntry(entry, target); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(entry *zip.File, target string) error {
	rc, err := entry.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	f, err := os.Create(target)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(f, rc)
	return err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

func writeEnvKwargs(path string, envKwargs map[string]any) error {
	if envKwargs == nil {
		envKwargs = map[string]any{}
	}
	raw, err := yaml.Marshal(envKwargs)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// writeMetricsArchive zips evaluations.npz and all monitor CSV files
// from the run directory. Missing inputs are skipped, never an error;
// anything else, including a failed archive flush, aborts the run.
func writeMetricsArchive(runDir, dst string) error {
	f, err := os.Create(dst)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(f)
	if err := bundleMetrics(zw, runDir); err != nil {
		zw.Close()
		f.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func bundleMetrics(zw *zip.Writer, runDir string) error {
	if evalPath := filepath.Join(runDir, "evaluations.npz"); fileExists(evalPath) {
		if err := addToZip(zw, evalPath, "evaluations.npz"); err != nil {
			return err
		}
	}

	monitors, _ := filepath.Glob(filepath.Join(runDir, "*.csv"))
	for _, monitor := range monitors {
		if err := addToZip(zw, monitor, filepath.Base(monitor)); err != nil {
			return err
		}
	}
	return nil
}

func addToZip(zw *zip.Writer, src, name string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	entry, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(entry, in)
	return err
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
