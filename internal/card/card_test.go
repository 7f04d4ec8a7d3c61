package card

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateEnvKwargsSection(t *testing.T) {
	tests := []struct {
		name      string
		envKwargs map[string]any
		want      bool
	}{
		{name: "empty", envKwargs: nil, want: false},
		{name: "empty map", envKwargs: map[string]any{}, want: false},
		{name: "non-empty", envKwargs: map[string]any{"max_episode_steps": 200}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			markdown, _, err := Generate("ppo", "PPO", "acme", "CartPole-v1", 200, 25, map[string]any{"n_steps": 32}, tt.envKwargs)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			got := strings.Contains(markdown, "# Environment Arguments")
			if got != tt.want {
				t.Errorf("env kwargs section present = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateMarkdownContents(t *testing.T) {
	markdown, _, err := Generate("dqn", "DQN", "acme", "MountainCar-v0", -120.5, 8.25, map[string]any{"buffer_size": 10000}, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	for _, want := range []string{
		"**DQN** Agent playing **MountainCar-v0**",
		"buffer_size: 10000",
		"--organization acme",
	} {
		if !strings.Contains(markdown, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestMetadataKeepsRewardValues(t *testing.T) {
	_, metadata, err := Generate("ppo", "PPO", "acme", "CartPole-v1", 123.456, 7.89, nil, nil)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if got := metadata["mean_reward"]; got != 123.456 {
		t.Errorf("mean_reward = %v, want 123.456", got)
	}
	if got := metadata["std_reward"]; got != 7.89 {
		t.Errorf("std_reward = %v, want 7.89", got)
	}
}

func TestSaveOverwritesReadme(t *testing.T) {
	dir := t.TempDir()
	readme := filepath.Join(dir, "README.md")
	if err := os.WriteFile(readme, []byte("manual edits"), 0o644); err != nil {
		t.Fatal(err)
	}

	metadata := Metadata("ppo", "PPO", "CartPole-v1", 10, 1)
	if err := Save(dir, "# card body\n", metadata); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	content, err := os.ReadFile(readme)
	if err != nil {
		t.Fatal(err)
	}
	text := string(content)
	if strings.Contains(text, "manual edits") {
		t.Error("README was not overwritten")
	}
	if !strings.HasPrefix(text, "---\n") {
		t.Error("README missing metadata front matter")
	}
	if !strings.Contains(text, "# card body") {
		t.Error("README missing card body")
	}
}
