package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"student/models"
	"student/utils"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runCmd executes a single round in the foreground
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one round synchronously from a task file",
	Long: `Run one round synchronously from a JSON task file, bypassing the webhook.

The file has the same shape as the webhook body. The secret in the file is
ignored in favour of the configured one. Use this to re-drive a round that
failed in the background.`,
	RunE: runRound,
}

// identityCmd prints the repository name a task resolves to
var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Print the repository name derived from a task and secret",
	RunE: func(cmd *cobra.Command, args []string) error {
		task, _ := cmd.Flags().GetString("task")
		secret := viper.GetString("secret")
		fmt.Fprintln(cmd.OutOrStdout(), utils.DeriveRepoName(task, secret))
		return nil
	},
}

func init() {
	runCmd.Flags().String("file", "", "Path to the task JSON file")
	runCmd.MarkFlagRequired("file")

	identityCmd.Flags().String("task", "", "Task label")
	identityCmd.MarkFlagRequired("task")
}

func runRound(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read task file: %w", err)
	}

	var req models.TaskRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("failed to parse task file: %w", err)
	}
	if !req.IsActionable() {
		return fmt.Errorf("round must be %d or %d, got %d", models.RoundCreate, models.RoundRevise, req.Round)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.log.Close()
	req.Secret = a.cfg.Secret

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, a.cfg.RoundTimeout)
	defer cancel()

	runID := uuid.New().String()
	a.tracker.Start(runID, req)
	result, err := a.orchestrator.RunRound(ctx, runID, req)

	out := json.NewEncoder(cmd.OutOrStdout())
	out.SetIndent("", "  ")
	if encErr := out.Encode(result); encErr != nil {
		return encErr
	}
	if err != nil {
		return fmt.Errorf("round failed: %w", err)
	}
	return nil
}
