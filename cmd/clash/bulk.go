package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/clash-cost/internal/cli"
	"github.com/Veraticus/clash-cost/internal/engine"
	"github.com/Veraticus/clash-cost/internal/model"
	"github.com/Veraticus/clash-cost/internal/tui"
	"github.com/Veraticus/clash-cost/internal/tui/themes"
)

func bulkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk load|generate|match",
		Short: "Process every pending item of one kind",
		Long: `Bulk runs process candidates one at a time, in order:

  load      every discipline without works
  generate  every pair of disciplines whose row has works and no scenarios yet
  match     every scenario without works; scenarios whose row discipline
            has no works yet are counted as skipped

A failing item is logged and skipped. Press Ctrl-C once to stop after the
current item, twice to abort immediately.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(model.BulkLoad), string(model.BulkGenerate), string(model.BulkMatch)},
		RunE:      runBulk,
	}

	cmd.Flags().Bool("tui", false, "show the interactive monitor")
	cmd.Flags().String("theme", "default", "monitor theme (default, catppuccin-mocha)")

	return cmd
}

func runBulk(cmd *cobra.Command, args []string) error {
	kind, ok := model.ParseBulkKind(strings.ToLower(args[0]))
	if !ok {
		return fmt.Errorf("unknown bulk kind %q: expected load, generate or match", args[0])
	}
	useTUI, _ := cmd.Flags().GetBool("tui")
	theme, _ := cmd.Flags().GetString("theme")

	env, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer closeEnv(env)

	if useTUI {
		summary, err := tui.Run(cmd.Context(), env.engine, env.tracker, kind, tui.WithTheme(themes.GetTheme(theme)))
		if summary != nil {
			printLine(cmd, cli.RenderSummary(*summary))
		}
		return err
	}

	token := engine.NewStopToken()
	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, cancel := handler.HandleInterrupts(cmd.Context(), func() { env.engine.Stop(token) })
	defer cancel()

	env.engine.SetObserver(cli.NewBulkProgress(cmd.ErrOrStderr()))
	_, err = env.engine.RunBulk(ctx, kind, token)
	return handler.AbortError(err)
}
