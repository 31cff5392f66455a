package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/clash-cost/internal/cli"
	"github.com/Veraticus/clash-cost/internal/model"
)

func logsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the audit log, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			clearLog, _ := cmd.Flags().GetBool("clear")

			env, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeEnv(env)

			if clearLog {
				if err := env.store.ClearLog(cmd.Context()); err != nil {
					return err
				}
				printLine(cmd, cli.FormatSuccess("Audit log cleared"))
				return nil
			}

			entries, err := env.store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				printLine(cmd, cli.FormatInfo("The audit log is empty"))
				return nil
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				status := cli.StyleSuccess(cli.SuccessIcon)
				if e.Status == model.LogStatusError {
					status = cli.StyleError(cli.ErrorIcon)
				}
				tokens := ""
				if e.TokensUsed > 0 {
					tokens = strconv.Itoa(e.TokensUsed)
				}
				rows = append(rows, []string{
					e.Timestamp.Local().Format("2006-01-02 15:04:05"),
					status,
					e.Action,
					e.Details,
					tokens,
				})
			}
			printLine(cmd, cli.RenderTable([]string{"Time", "", "Action", "Details", "Tokens"}, rows))
			return nil
		},
	}
	cmd.Flags().Int("limit", 50, "number of entries to show (0 for all)")
	cmd.Flags().Bool("clear", false, "delete every entry")
	return cmd
}
