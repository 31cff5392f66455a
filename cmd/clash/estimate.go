package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/clash-cost/internal/cli"
	"github.com/Veraticus/clash-cost/internal/engine"
	"github.com/Veraticus/clash-cost/internal/model"
)

func loadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <category>",
		Short: "Extract and score priced works for one discipline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, func(ctx context.Context, env *appEnv) error {
				if err := env.engine.LoadWorks(ctx, args[0]); err != nil {
					return err
				}
				works := env.workspace.WorksByCategory(args[0])
				accepted := 0
				for _, w := range works {
					if w.Status == model.WorkStatusAccepted {
						accepted++
					}
				}
				printLine(cmd, cli.FormatSuccess(fmt.Sprintf("%s now has %d works (%d accepted)", args[0], len(works), accepted)))
				return nil
			})
		},
	}
}

func generateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate <row> <col> | <row:col>",
		Short: "Propose resolution scenarios for one matrix cell",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := parseKeyArgs(args)
			if err != nil {
				return err
			}
			return withEngine(cmd, func(ctx context.Context, env *appEnv) error {
				if err := env.engine.GenerateScenarios(ctx, key); err != nil {
					return err
				}
				scenarios := env.workspace.ScenariosForKey(key)
				printLine(cmd, cli.FormatSuccess(fmt.Sprintf("%s has %d scenarios", key, len(scenarios))))
				for _, s := range scenarios {
					printLine(cmd, fmt.Sprintf("  %s  %s", cli.SubtleStyle.Render(s.ID), s.Name))
				}
				return nil
			})
		},
	}
}

func matchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match <scenario-id>",
		Short: "Match works to one scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd, func(ctx context.Context, env *appEnv) error {
				outcome, err := env.engine.MatchScenario(ctx, args[0])
				if err != nil {
					return err
				}
				if outcome == engine.MatchOutcomeEmpty {
					printLine(cmd, cli.FormatWarning("No suitable works found for this scenario"))
					return nil
				}
				cost, err := env.workspace.ScenarioCost(args[0])
				if err != nil {
					return err
				}
				s, _ := env.workspace.Scenario(args[0])
				printLine(cmd, cli.FormatSuccess(fmt.Sprintf("Matched %d works, cost %s%s",
					len(s.Works), env.cfg.Language.CurrencySymbol(), formatMoney(cost))))
				return nil
			})
		},
	}
}

// withEngine opens the engine and runs fn with a context cancelled by the
// first interrupt.
func withEngine(cmd *cobra.Command, fn func(ctx context.Context, env *appEnv) error) error {
	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, cancel := handler.HandleInterrupts(cmd.Context(), nil)
	defer cancel()

	env, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer closeEnv(env)

	return fn(ctx, env)
}

func parseKeyArgs(args []string) (model.MatrixKey, error) {
	var key model.MatrixKey
	if len(args) == 2 {
		key = model.MatrixKey{Row: args[0], Col: args[1]}
	} else {
		var err error
		if key, err = model.ParseMatrixKey(args[0]); err != nil {
			return model.MatrixKey{}, err
		}
	}
	if key.Diagonal() {
		return model.MatrixKey{}, fmt.Errorf("row and column must differ: %s", key)
	}
	return key, nil
}
