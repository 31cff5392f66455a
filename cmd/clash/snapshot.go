package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/clash-cost/internal/cli"
	"github.com/Veraticus/clash-cost/internal/workspace"
)

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write works and scenarios to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeEnv(env)

			snap := env.workspace.Export()
			data, err := json.MarshalIndent(snap, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode workspace: %w", err)
			}
			if err := os.WriteFile(args[0], data, 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", args[0], err)
			}
			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Exported %d works and %d scenarios to %s",
				len(snap.Works), len(snap.Scenarios), args[0])))
			return nil
		},
	}
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace works and scenarios with the contents of a JSON file",
		Long: `Import replaces each collection present in the file. A file with only
"works" leaves the scenarios untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			var snap workspace.Snapshot
			if err := json.Unmarshal(data, &snap); err != nil {
				return fmt.Errorf("invalid workspace file %s: %w", args[0], err)
			}

			env, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeEnv(env)

			if err := env.workspace.Import(cmd.Context(), snap); err != nil {
				return err
			}
			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Imported %d works and %d scenarios",
				len(env.workspace.Works()), len(env.workspace.Scenarios()))))
			return nil
		},
	}
}
