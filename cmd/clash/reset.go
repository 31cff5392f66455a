package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/clash-cost/internal/cli"
)

func resetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every work and scenario",
		Long: `Reset removes all loaded works and generated scenarios so the matrix can
be rebuilt from scratch. The audit log is kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			yes, _ := cmd.Flags().GetBool("yes")

			env, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeEnv(env)

			works, scenarios := len(env.workspace.Works()), len(env.workspace.Scenarios())
			if works == 0 && scenarios == 0 {
				printLine(cmd, cli.FormatInfo("Nothing to reset"))
				return nil
			}

			if !yes {
				printLine(cmd, fmt.Sprintf("This will delete %d works and %d scenarios.", works, scenarios))
				ok, err := cli.Confirm(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), "Are you sure you want to continue?")
				if err != nil {
					return err
				}
				if !ok {
					printLine(cmd, "Reset canceled.")
					return nil
				}
			}

			if err := env.workspace.Reset(cmd.Context()); err != nil {
				return fmt.Errorf("failed to reset workspace: %w", err)
			}
			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Deleted %d works and %d scenarios", works, scenarios)))
			return nil
		},
	}
	cmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	return cmd
}
