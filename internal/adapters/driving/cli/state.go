package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect and move the watermark state file",
	Long:  `Show the watched collections, or sync the state file with its remote copy.`,
}

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List collections and their watermarks",
	RunE:  runStateShow,
}

var statePullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Download the remote state file over the local copy",
	RunE:  runStatePull,
}

var statePushCmd = &cobra.Command{
	Use:   "push",
	Short: "Upload the local state file as the new remote copy",
	RunE:  runStatePush,
}

func init() {
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(statePullCmd)
	stateCmd.AddCommand(statePushCmd)
	rootCmd.AddCommand(stateCmd)
}

func runStateShow(cmd *cobra.Command, args []string) error {
	if stateStore == nil {
		if err := wireServices(); err != nil {
			return err
		}
	}

	ctx := context.Background()

	rows, err := stateStore.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	cmd.Printf("State file: %s\n\n", stateStore.Path())
	for i := range rows {
		cmd.Printf("  %s\n", rows[i].CollectionID)
		cmd.Printf("    Last change: %s\n", rows[i].LastDate)
		if rows[i].Channel != "" {
			cmd.Printf("    Channel: %s\n", rows[i].Channel)
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d collections\n", len(rows))
	return nil
}

func runStatePull(cmd *cobra.Command, args []string) error {
	if stateStore == nil {
		if err := wireServices(); err != nil {
			return err
		}
	}
	if stateTransfer == nil {
		return errors.New("state transfer not configured: set state.drive_file_id")
	}

	ctx := context.Background()

	data, err := stateTransfer.Pull(ctx)
	if err != nil {
		return fmt.Errorf("failed to pull state: %w", err)
	}
	if err := os.WriteFile(stateStore.Path(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}

	cmd.Printf("Pulled %d bytes to %s.\n", len(data), stateStore.Path())
	return nil
}

func runStatePush(cmd *cobra.Command, args []string) error {
	if stateStore == nil {
		if err := wireServices(); err != nil {
			return err
		}
	}
	if stateTransfer == nil {
		return errors.New("state transfer not configured: set state.drive_file_id")
	}

	ctx := context.Background()

	data, err := os.ReadFile(stateStore.Path())
	if err != nil {
		return fmt.Errorf("failed to read state: %w", err)
	}
	if err := stateTransfer.Push(ctx, data); err != nil {
		return fmt.Errorf("failed to push state: %w", err)
	}

	cmd.Printf("Pushed %d bytes from %s.\n", len(data), stateStore.Path())
	return nil
}
