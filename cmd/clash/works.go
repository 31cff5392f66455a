package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/clash-cost/internal/cli"
	"github.com/Veraticus/clash-cost/internal/model"
)

func worksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "works",
		Short: "List and review loaded works",
	}
	cmd.AddCommand(worksListCmd())
	cmd.AddCommand(worksAcceptCmd())
	cmd.AddCommand(worksStatusCmd())
	return cmd
}

func worksListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [category]",
		Short: "List works, optionally for one discipline",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")

			env, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeEnv(env)

			works := env.workspace.Works()
			if len(args) == 1 {
				works = env.workspace.WorksByCategory(args[0])
			}

			var rows [][]string
			for _, w := range works {
				if status != "" && string(w.Status) != status {
					continue
				}
				rows = append(rows, []string{
					w.ID,
					w.CategoryID,
					w.Name,
					w.DisplayCurrency(env.cfg.Language) + formatMoney(w.Price) + "/" + w.Unit,
					strconv.FormatFloat(w.Score, 'f', 2, 64),
					string(w.Status),
				})
			}
			if len(rows) == 0 {
				printLine(cmd, cli.FormatInfo("No works found"))
				return nil
			}
			printLine(cmd, cli.RenderTable([]string{"ID", "Category", "Name", "Price", "Score", "Status"}, rows))
			return nil
		},
	}
	cmd.Flags().String("status", "", "only show works with this status (pending, accepted, rejected)")
	return cmd
}

func worksAcceptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accept <category>",
		Short: "Accept pending works at or above the minimum score and reject the rest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeEnv(env)

			minScore := env.cfg.MinScore
			if cmd.Flags().Changed("min-score") {
				minScore, _ = cmd.Flags().GetFloat64("min-score")
			}
			if minScore < 0 || minScore > 1 {
				return fmt.Errorf("min score must be between 0 and 1, got %v", minScore)
			}

			accepted, rejected, err := env.workspace.AcceptPending(cmd.Context(), args[0], minScore)
			if err != nil {
				return err
			}
			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Accepted %d, rejected %d works in %s", accepted, rejected, args[0])))
			return nil
		},
	}
	cmd.Flags().Float64("min-score", 0, "score threshold (default: estimate.min_score)")
	return cmd
}

func worksStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <work-id> <pending|accepted|rejected>",
		Short: "Set the review status of one work",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := model.WorkStatus(args[1])
			if !status.Valid() {
				return fmt.Errorf("invalid status %q: expected pending, accepted or rejected", args[1])
			}

			env, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeEnv(env)

			if err := env.workspace.SetWorkStatus(cmd.Context(), args[0], status); err != nil {
				return err
			}
			printLine(cmd, cli.FormatSuccess(fmt.Sprintf("%s is now %s", args[0], status)))
			return nil
		},
	}
}
