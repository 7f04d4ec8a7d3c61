package cmd

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rlzoo/zoo-hub/internal/config"
	"github.com/rlzoo/zoo-hub/internal/hub"
	"github.com/rlzoo/zoo-hub/internal/models"
	"github.com/rlzoo/zoo-hub/internal/parser"
	"github.com/rlzoo/zoo-hub/internal/rl"
	"github.com/rlzoo/zoo-hub/internal/zoo"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Publish a trained agent to the hub",
	Long: `Publish a trained agent to the hub.

Resolves the serialized model inside the log folder, rebuilds the
evaluation environment from the run's saved hyperparameters, evaluates
the agent, optionally records a replay video, generates a model card and
pushes all artifacts to the hub repository.`,
	Example: `  # Push the latest ppo CartPole run
  zoo-hub push --algo ppo --env CartPole-v1 -f logs/ --organization acme

  # Push the best model of experiment 3 without a replay video
  zoo-hub push --algo dqn --env MountainCar-v0 -f logs/ --exp-id 3 --load-best --no-render --organization acme`,
	RunE: runPush,
}

func init() {
	rootCmd.AddCommand(pushCmd)
	registerPushFlags(pushCmd)

	pushCmd.MarkFlagRequired("env")
	pushCmd.MarkFlagRequired("folder")
	pushCmd.MarkFlagRequired("algo")
	pushCmd.MarkFlagRequired("organization")
}

func registerPushFlags(cmd *cobra.Command) {
	cmd.Flags().String("env", "", "Environment ID (required)")
	cmd.Flags().StringP("folder", "f", "", "Log folder (required)")
	cmd.Flags().String("algo", "", "RL algorithm (required)")
	cmd.Flags().Int("n-timesteps", 1000, "Number of timesteps for the replay video")
	cmd.Flags().Int("num-threads", -1, "Number of compute threads (-1 to use default)")
	cmd.Flags().Int("n-envs", 1, "Number of environments")
	cmd.Flags().Int("exp-id", 0, "Experiment ID (0: latest, -1: no exp folder)")
	cmd.Flags().Int("verbose", 1, "Verbose mode (0: no output, 1: INFO)")
	cmd.Flags().Bool("no-render", false, "Do not render the environment (skips the replay video)")
	cmd.Flags().Bool("deterministic", false, "Use deterministic actions")
	cmd.Flags().String("device", "auto", "Compute device (ex: cpu, auto)")
	cmd.Flags().Bool("load-best", false, "Load best model instead of last model if available")
	cmd.Flags().Int("load-checkpoint", 0, "Load checkpoint instead of last model if available, pass the number of timesteps corresponding to it")
	cmd.Flags().Bool("load-last-checkpoint", false, "Load last checkpoint instead of last model if available")
	cmd.Flags().Bool("stochastic", false, "Use stochastic actions")
	cmd.Flags().Int64("seed", 0, "Random generator seed")
	cmd.Flags().StringArray("env-kwargs", []string{}, "Optional keyword argument to pass to the env constructor (key:value)")
	cmd.Flags().String("organization", "", "Hub organization (required)")
	cmd.Flags().String("repo-name", "", "Hub repository name, by default '<algo>-<env>'")
	cmd.Flags().StringP("commit-message", "m", "Initial commit", "Commit message")
}

func runPush(cmd *cobra.Command, args []string) error {
	cfg := config.New()
	client, err := hub.NewClient(cfg)
	if err != nil {
		return fmt.Errorf("failed to create hub client: %w", err)
	}

	runCfg, err := buildRunConfig(cmd)
	if err != nil {
		return err
	}

	algoClassName, err := zoo.AlgoClassName(runCfg.Algo)
	if err != nil {
		return err
	}

	loadBest, _ := cmd.Flags().GetBool("load-best")
	loadCheckpoint, _ := cmd.Flags().GetInt("load-checkpoint")
	loadLastCheckpoint, _ := cmd.Flags().GetBool("load-last-checkpoint")

	modelPath, runDir, err := zoo.ModelPath(
		runCfg.Folder, runCfg.Algo, runCfg.EnvID, runCfg.ExpID,
		loadBest, loadCheckpoint, loadLastCheckpoint,
	)
	if err != nil {
		return err
	}
	if runCfg.Verbose > 0 {
		fmt.Printf("Loading %s\n", modelPath)
	}

	if runCfg.NumThreads > 0 {
		if runCfg.Verbose > 1 {
			fmt.Printf("Setting compute threads to %d\n", runCfg.NumThreads)
		}
		runtime.GOMAXPROCS(runCfg.NumThreads)
	}

	hyperparams, statsPath, err := zoo.SavedHyperparams(runDir)
	if err != nil {
		return err
	}

	// Recorded env kwargs, overridden by command line values.
	runKwargs, err := zoo.RunEnvKwargs(runDir)
	if err != nil {
		return err
	}
	runCfg.EnvKwargs = mergeKwargs(runKwargs, runCfg.EnvKwargs)

	venv, err := rl.CreateTestEnv(runCfg.EnvID, runCfg.NEnvs, statsPath, runCfg.Seed, runCfg.EnvKwargs)
	if err != nil {
		return err
	}
	defer venv.Close()

	policy, err := rl.LoadPolicy(modelPath, runCfg.Seed)
	if err != nil {
		return err
	}

	stochastic, _ := cmd.Flags().GetBool("stochastic")
	deterministic := resolveDeterministic(runCfg.EnvID, stochastic, runCfg.Deterministic)

	organization, _ := cmd.Flags().GetString("organization")
	repoName, _ := cmd.Flags().GetString("repo-name")
	commitMessage, _ := cmd.Flags().GetString("commit-message")

	modelName := runCfg.Algo + "-" + runCfg.EnvID
	if repoName == "" {
		repoName = modelName
	}
	repoID := repoIDFor(organization, repoName)
	if runCfg.Verbose > 0 {
		fmt.Printf("Uploading to %s, make sure to have the rights\n", repoID)
	}

	_, err = hub.PackageToHub(context.Background(), hub.PackageInput{
		Client:        client,
		Policy:        policy,
		Env:           venv,
		ModelName:     modelName,
		AlgoName:      runCfg.Algo,
		AlgoClassName: algoClassName,
		RunDir:        runDir,
		Hyperparams:   hyperparams,
		EnvKwargs:     runCfg.EnvKwargs,
		EnvID:         runCfg.EnvID,
		RepoID:        repoID,
		CommitMessage: commitMessage,
		Deterministic: deterministic,
		NEvalEpisodes: 10,
		LocalRepoPath: "hub",
		VideoLength:   runCfg.VideoLength,
		GenerateVideo: runCfg.Render,
		Verbose:       runCfg.Verbose,
	})
	return err
}

// buildRunConfig constructs the RunConfig from command flags and the
// run's recorded arguments.
func buildRunConfig(cmd *cobra.Command) (*models.RunConfig, error) {
	envID, _ := cmd.Flags().GetString("env")
	folder, _ := cmd.Flags().GetString("folder")
	algo, _ := cmd.Flags().GetString("algo")
	nTimesteps, _ := cmd.Flags().GetInt("n-timesteps")
	numThreads, _ := cmd.Flags().GetInt("num-threads")
	nEnvs, _ := cmd.Flags().GetInt("n-envs")
	expID, _ := cmd.Flags().GetInt("exp-id")
	verbose, _ := cmd.Flags().GetInt("verbose")
	noRender, _ := cmd.Flags().GetBool("no-render")
	deterministic, _ := cmd.Flags().GetBool("deterministic")
	device, _ := cmd.Flags().GetString("device")
	seed, _ := cmd.Flags().GetInt64("seed")
	kwargFlags, _ := cmd.Flags().GetStringArray("env-kwargs")

	// Off-policy algorithms only support one env for now
	if zoo.IsOffPolicy(algo) {
		nEnvs = 1
	}

	flagKwargs, err := parser.ParseEnvKwargs(kwargFlags)
	if err != nil {
		return nil, err
	}

	return &models.RunConfig{
		Algo:          algo,
		EnvID:         envID,
		Folder:        folder,
		ExpID:         expID,
		Seed:          seed,
		Device:        device,
		NEnvs:         nEnvs,
		NumThreads:    numThreads,
		VideoLength:   nTimesteps,
		Verbose:       verbose,
		Deterministic: deterministic,
		Render:        !noRender,
		EnvKwargs:     flagKwargs,
	}, nil
}

// resolveDeterministic applies the action-sampling policy: stochastic
// when requested, or for atari-like environments unless deterministic
// actions were explicitly asked for.
func resolveDeterministic(envID string, stochastic, deterministic bool) bool {
	useStochastic := stochastic || (zoo.IsAtari(envID) && !deterministic)
	return !useStochastic
}

func mergeKwargs(base, override map[string]any) map[string]any {
	if len(base) == 0 {
		return override
	}
	merged := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

// repoIDFor derives the hub repository id from the organization and the
// repo name, normalizing path separators in the name.
func repoIDFor(organization, repoName string) string {
	return organization + "/" + strings.ReplaceAll(repoName, "/", "-")
}
