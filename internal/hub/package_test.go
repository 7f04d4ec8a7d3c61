package hub

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rlzoo/zoo-hub/internal/rl"
)

func writeTestModel(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	entry, err := zw.Create("data.json")
	if err != nil {
		t.Fatal(err)
	}
	_, err = entry.Write([]byte(`{
	  "algo_class": "PPO",
	  "obs_size": 4,
	  "num_actions": 2,
	  "layers": [
	    {"weights": [[0,0,-1,-1],[0,0,1,1]], "biases": [0,0], "activation": "linear"}
	  ]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestPackageToHub(t *testing.T) {
	client, fake := testClient(t)

	runDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(runDir, "args.yml"), []byte("env_kwargs:\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "config.yml"), []byte("n_steps: 32\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "0.monitor.csv"), []byte("r,l,t\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	modelPath := filepath.Join(runDir, "CartPole-v1.zip")
	writeTestModel(t, modelPath)
	policy, err := rl.LoadPolicy(modelPath, 0)
	if err != nil {
		t.Fatal(err)
	}
	venv, err := rl.CreateTestEnv("CartPole-v1", 1, "", 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer venv.Close()

	url, err := PackageToHub(context.Background(), PackageInput{
		Client:        client,
		Policy:        policy,
		Env:           venv,
		ModelName:     "ppo-CartPole-v1",
		AlgoName:      "ppo",
		AlgoClassName: "PPO",
		RunDir:        runDir,
		Hyperparams:   map[string]any{"n_steps": 32},
		EnvKwargs:     nil,
		EnvID:         "CartPole-v1",
		RepoID:        "acme/ppo-CartPole-v1",
		CommitMessage: "Initial commit",
		Deterministic: true,
		NEvalEpisodes: 2,
		LocalRepoPath: t.TempDir(),
		VideoLength:   10,
		GenerateVideo: false,
		Verbose:       0,
	})
	if err != nil {
		t.Fatalf("PackageToHub() error = %v", err)
	}
	if url == "" {
		t.Error("PackageToHub() returned empty repo URL")
	}

	if len(fake.commits) != 1 {
		t.Fatalf("commits = %d, want 1", len(fake.commits))
	}
	committed := map[string]bool{}
	for _, desc := range fake.commits[0].Files {
		committed[desc.Path] = true
	}
	for _, want := range []string{
		"ppo-CartPole-v1.zip",
		"ppo-CartPole-v1/data.json",
		"args.yml",
		"config.yml",
		"env_kwargs.yml",
		"train_eval_metrics.zip",
		"results.json",
		"README.md",
	} {
		if !committed[want] {
			t.Errorf("commit missing %q (got %v)", want, fake.commits[0].Files)
		}
	}
}

func TestPackageToHubInvalidRepoID(t *testing.T) {
	client, _ := testClient(t)
	_, err := PackageToHub(context.Background(), PackageInput{Client: client, RepoID: "no-organization"})
	if err == nil {
		t.Error("PackageToHub() expected error for repo id without organization")
	}
}

func TestWriteMetricsArchiveSkipsAbsent(t *testing.T) {
	runDir := t.TempDir()
	dst := filepath.Join(t.TempDir(), "train_eval_metrics.zip")

	// Nothing to bundle: still produces a valid, empty archive.
	if err := writeMetricsArchive(runDir, dst); err != nil {
		t.Fatalf("writeMetricsArchive() error = %v", err)
	}
	reader, err := zip.OpenReader(dst)
	if err != nil {
		t.Fatalf("archive unreadable: %v", err)
	}
	defer reader.Close()
	if len(reader.File) != 0 {
		t.Errorf("archive entries = %d, want 0", len(reader.File))
	}
}

func TestWriteMetricsArchiveBundlesFiles(t *testing.T) {
	runDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(runDir, "evaluations.npz"), []byte("npz"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "0.monitor.csv"), []byte("csv"), 0o644); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(t.TempDir(), "train_eval_metrics.zip")
	if err := writeMetricsArchive(runDir, dst); err != nil {
		t.Fatalf("writeMetricsArchive() error = %v", err)
	}

	reader, err := zip.OpenReader(dst)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	names := map[string]bool{}
	for _, entry := range reader.File {
		names[entry.Name] = true
	}
	if !names["evaluations.npz"] || !names["0.monitor.csv"] {
		t.Errorf("archive entries = %v", names)
	}
}

func TestWriteMetricsArchiveReportsBundleErrors(t *testing.T) {
	runDir := t.TempDir()
	// A directory matching the monitor glob cannot be read as a file.
	if err := os.Mkdir(filepath.Join(runDir, "0.monitor.csv"), 0o755); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(t.TempDir(), "train_eval_metrics.zip")
	if err := writeMetricsArchive(runDir, dst); err == nil {
		t.Fatal("writeMetricsArchive() error = nil, want bundle error")
	}
}

func TestUnpackArchive(t *testing.T) {
	archivePath := filepath.Join(t.TempDir(), "model.zip")
	writeTestModel(t, archivePath)

	destDir := filepath.Join(t.TempDir(), "model")
	if err := unpackArchive(archivePath, destDir); err != nil {
		t.Fatalf("unpackArchive() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(destDir, "data.json")); err != nil {
		t.Errorf("unpacked data.json missing: %v", err)
	}
}
