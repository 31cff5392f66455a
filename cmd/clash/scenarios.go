package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/clash-cost/internal/cli"
	"github.com/Veraticus/clash-cost/internal/model"
	"github.com/Veraticus/clash-cost/internal/sheets"
)

func scenariosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "scenarios",
		Aliases: []string{"sc"},
		Short:   "List scenarios and edit their works",
	}
	cmd.AddCommand(scenariosListCmd())
	cmd.AddCommand(scenariosCostCmd())
	cmd.AddCommand(scenarioWorkCmd("add-work", "Add a work to a scenario with quantity 1",
		func(env *appEnv, cmd *cobra.Command, scenarioID, workID string) error {
			return env.workspace.AddScenarioWork(cmd.Context(), scenarioID, workID)
		}))
	cmd.AddCommand(scenarioWorkCmd("remove-work", "Remove a work from a scenario",
		func(env *appEnv, cmd *cobra.Command, scenarioID, workID string) error {
			return env.workspace.RemoveScenarioWork(cmd.Context(), scenarioID, workID)
		}))
	cmd.AddCommand(scenarioWorkCmd("toggle", "Include or exclude a work from the scenario cost",
		func(env *appEnv, cmd *cobra.Command, scenarioID, workID string) error {
			return env.workspace.ToggleScenarioWork(cmd.Context(), scenarioID, workID)
		}))
	cmd.AddCommand(scenariosQtyCmd())
	return cmd
}

func scenariosListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [row:col]",
		Short: "List scenarios, optionally for one matrix cell",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeEnv(env)

			scenarios := env.workspace.Scenarios()
			if len(args) == 1 {
				key, err := model.ParseMatrixKey(args[0])
				if err != nil {
					return err
				}
				scenarios = env.workspace.ScenariosForKey(key)
			}
			if len(scenarios) == 0 {
				printLine(cmd, cli.FormatInfo("No scenarios found"))
				return nil
			}

			rows := make([][]string, 0, len(scenarios))
			for _, s := range scenarios {
				cost, err := env.workspace.ScenarioCost(s.ID)
				if err != nil {
					return err
				}
				rows = append(rows, []string{
					s.ID,
					s.MatrixKey.String(),
					s.Name,
					strconv.Itoa(len(s.Works)),
					env.cfg.Language.CurrencySymbol() + formatMoney(cost),
				})
			}
			printLine(cmd, cli.RenderTable([]string{"ID", "Cell", "Name", "Works", "Cost"}, rows))
			return nil
		},
	}
}

func scenariosCostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cost [row:col]",
		Short: "Show the cost range of one cell or of every cell",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeEnv(env)

			currency := env.cfg.Language.CurrencySymbol()
			if len(args) == 1 {
				key, err := model.ParseMatrixKey(args[0])
				if err != nil {
					return err
				}
				cell, ok := env.workspace.CellCost(key)
				if !ok {
					printLine(cmd, cli.FormatInfo(fmt.Sprintf("%s has no scenarios", key)))
					return nil
				}
				printLine(cmd, fmt.Sprintf("%s  %s", key, sheets.FormatCell(cell, currency)))
				return nil
			}

			var rows [][]string
			for _, row := range env.cfg.Disciplines {
				for _, col := range env.cfg.Disciplines {
					key := model.MatrixKey{Row: row.ID, Col: col.ID}
					if key.Diagonal() {
						continue
					}
					if cell, ok := env.workspace.CellCost(key); ok {
						rows = append(rows, []string{key.String(), sheets.FormatCell(cell, currency)})
					}
				}
			}
			if len(rows) == 0 {
				printLine(cmd, cli.FormatInfo("No scenarios found"))
				return nil
			}
			printLine(cmd, cli.RenderTable([]string{"Cell", "Cost"}, rows))
			return nil
		},
	}
}

func scenarioWorkCmd(use, short string, fn func(env *appEnv, cmd *cobra.Command, scenarioID, workID string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <scenario-id> <work-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeEnv(env)

			if err := fn(env, cmd, args[0], args[1]); err != nil {
				return err
			}
			return printScenarioCost(cmd, env, args[0])
		},
	}
}

func scenariosQtyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "qty <scenario-id> <work-id> <quantity>",
		Short: "Set the quantity of a work in a scenario",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid quantity %q: %w", args[2], err)
			}

			env, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeEnv(env)

			if err := env.workspace.SetScenarioWorkQuantity(cmd.Context(), args[0], args[1], quantity); err != nil {
				return err
			}
			return printScenarioCost(cmd, env, args[0])
		},
	}
}

func printScenarioCost(cmd *cobra.Command, env *appEnv, scenarioID string) error {
	cost, err := env.workspace.ScenarioCost(scenarioID)
	if err != nil {
		return err
	}
	printLine(cmd, cli.FormatSuccess(fmt.Sprintf("%s cost: %s%s", scenarioID, env.cfg.Language.CurrencySymbol(), formatMoney(cost))))
	return nil
}
