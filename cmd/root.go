package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "zoo-hub",
	Short: "RL Zoo Hub CLI Tool",
	Long: `A command line tool for publishing trained reinforcement-learning
agents to a model-sharing hub: model weights, normalization statistics,
evaluation results, replay videos and a generated model card.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("hub-url", "", "Hub base URL (overrides ZOOHUB_HUB_URL)")
	rootCmd.PersistentFlags().String("token", "", "Hub access token (overrides ZOOHUB_TOKEN)")
	viper.BindPFlag("hub_url", rootCmd.PersistentFlags().Lookup("hub-url"))
	viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
}

func initConfig() {
	// Environment variables
	viper.SetEnvPrefix("ZOOHUB")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("hub_url", "https://hub.rlzoo.io")
}
