package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/clash-cost/internal/clash"
	"github.com/Veraticus/clash-cost/internal/cli"
	"github.com/Veraticus/clash-cost/internal/config"
	"github.com/Veraticus/clash-cost/internal/model"
)

func detectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <clash-report.xml>...",
		Short: "Detect the discipline pair of clash reports",
		Long: `Detect reads clash detection XML reports and identifies the two
disciplines involved from the clash locators, the object path links and,
as a fallback, the file name.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}
			parser := clash.NewParser(slog.Default())

			rows := make([][]string, 0, len(args))
			for _, path := range args {
				det, err := detectFile(cmd, parser, path)
				if err != nil {
					return err
				}
				cell := "-"
				if key, ok := det.Key(); ok {
					cell = key.String()
				}
				rows = append(rows, []string{
					filepath.Base(path),
					disciplineStatus(cfg.Disciplines, det.Row),
					disciplineStatus(cfg.Disciplines, det.Col),
					cell,
					string(det.Source),
				})
			}
			printLine(cmd, cli.RenderTable([]string{"File", "Row", "Col", "Cell", "Source"}, rows))
			return nil
		},
	}
}

func detectFile(cmd *cobra.Command, parser *clash.Parser, path string) (clash.Detection, error) {
	f, err := os.Open(path) //nolint:gosec // user-supplied report path
	if err != nil {
		return clash.Detection{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	det, err := parser.ParseFile(cmd.Context(), filepath.Base(path), f)
	if err != nil {
		return clash.Detection{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return det, nil
}

// disciplineStatus marks detected ids missing from the configured list.
func disciplineStatus(disciplines []model.Discipline, id string) string {
	if id == "" {
		return "?"
	}
	if _, ok := model.FindDiscipline(disciplines, id); !ok {
		return id + " (unknown)"
	}
	return id
}
