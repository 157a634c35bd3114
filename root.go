package main

import (
	"fmt"
	"os"

	"student/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "student",
	Short: "Student agent - builds and publishes project repositories from task webhooks",
	Long: `A webhook-driven agent that turns a task brief into a published repository.

For every accepted round it:
- derives a stable repository name from the task and the shared secret
- generates project files with an LLM (with a safe fallback)
- publishes them to GitHub and enables GitHub Pages
- notifies the evaluator once the round is complete`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.student.yaml)")
	rootCmd.PersistentFlags().String("port", config.DefaultPort, "HTTP server port")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	rootCmd.PersistentFlags().String("secret", "", "Shared secret every task request must present")
	rootCmd.PersistentFlags().String("github-token", "", "GitHub personal access token")
	rootCmd.PersistentFlags().String("github-owner", "", "Owner of created repositories (default: authenticated user)")
	rootCmd.PersistentFlags().String("github-api-url", "", "GitHub API base URL override")
	rootCmd.PersistentFlags().String("openai-api-key", "", "API key for the completion service")
	rootCmd.PersistentFlags().String("openai-base-url", config.DefaultOpenAIBaseURL, "OpenAI-compatible API base URL")
	rootCmd.PersistentFlags().String("llm-model", config.DefaultLLMModel, "Model used to generate files")
	rootCmd.PersistentFlags().Float64("llm-temperature", config.DefaultLLMTemperature, "LLM temperature")

	// Logging flags
	rootCmd.PersistentFlags().String("log-file", "", "log file path (optional)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")

	// Bind flags to viper
	for _, key := range []string{
		"port", "debug", "secret",
		"github-token", "github-owner", "github-api-url",
		"openai-api-key", "openai-base-url", "llm-model", "llm-temperature",
		"log-file", "log-level", "log-format",
	} {
		viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(key))
	}

	config.SetDefaults(viper.GetViper())
	config.BindEnv(viper.GetViper())

	// Add subcommands
	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(identityCmd)
}

// initConfig reads in the .env file, config file and ENV variables if set.
func initConfig() {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "Failed to load .env file:", err)
	}

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".student" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".student")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
