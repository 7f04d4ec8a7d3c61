package rl

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
)

// ReplayFileName is the video file written into the repo clone.
const ReplayFileName = "replay.mp4"

// RecordReplay rolls the policy out for up to videoLength steps, captures
// RGB frames and encodes them with ffmpeg into dir. Callers treat a
// failure as best-effort: the error is reported, not fatal.
func RecordReplay(ctx context.Context, policy *Policy, venv *VecEnv, videoLength int, deterministic bool, dir string) error {
	env := venv.Envs[0]
	renderer, ok := env.(Renderer)
	if !ok {
		return fmt.Errorf("environment %T does not support rendering", env)
	}

	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found, skipping replay: %w", err)
	}

	framesDir, err := os.MkdirTemp("", "zoo-hub-frames-")
	if err != nil {
		return err
	}
	defer CleanupReplayArtifacts(framesDir)

	obs := env.Reset()
	for frame := 0; frame < videoLength; frame++ {
		if err := writeFrame(framesDir, frame, renderer); err != nil {
			return err
		}
		action := policy.Predict(venv.Observe(obs), deterministic)
		next, _, done := env.Step(action)
		if done {
			next = env.Reset()
		}
		obs = next
	}

	cmd := exec.CommandContext(ctx, ffmpeg, "-y",
		"-framerate", "30",
		"-i", filepath.Join(framesDir, "frame_%06d.png"),
		"-pix_fmt", "yuv420p",
		filepath.Join(dir, ReplayFileName),
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", err, out)
	}
	return nil
}

func writeFrame(framesDir string, frame int, renderer Renderer) error {
	f, err := os.Create(filepath.Join(framesDir, fmt.Sprintf("frame_%06d.png", frame)))
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, renderer.RenderRGB())
}

// CleanupReplayArtifacts removes the temporary frames directory and any
// stray recorder metadata files. Missing files are not an error.
func CleanupReplayArtifacts(framesDir string) {
	if framesDir != "" {
		if _, err := os.Stat(framesDir); err == nil {
			_ = os.RemoveAll(framesDir)
		}
	}
	matches, _ := filepath.Glob("*.meta.json")
	for _, match := range matches {
		if _, err := os.Stat(match); err == nil {
			_ = os.Remove(match)
		}
	}
}
