package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/clash-cost/internal/cli"
	"github.com/Veraticus/clash-cost/internal/config"
	"github.com/Veraticus/clash-cost/internal/model"
	"github.com/Veraticus/clash-cost/internal/sheets"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the cost matrix",
	}
	cmd.AddCommand(reportMatrixCmd())
	cmd.AddCommand(reportSheetsCmd())
	return cmd
}

func reportMatrixCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "matrix",
		Short: "Print the cost matrix in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeEnv(env)

			report, err := sheets.BuildReport(env.workspace, env.cfg.Disciplines, env.cfg.Language)
			if err != nil {
				return err
			}
			printLine(cmd, renderMatrix(report))
			return nil
		},
	}
}

func renderMatrix(report sheets.MatrixReport) string {
	headers := []string{`Row \ Col`}
	for _, d := range report.Disciplines {
		headers = append(headers, d.ID)
	}
	rows := make([][]string, 0, len(report.Disciplines))
	for _, r := range report.Disciplines {
		row := []string{r.ID}
		for _, c := range report.Disciplines {
			key := model.MatrixKey{Row: r.ID, Col: c.ID}
			switch cell, ok := report.Cells[key]; {
			case key.Diagonal():
				row = append(row, "-")
			case ok:
				row = append(row, sheets.FormatCell(cell, report.Currency))
			default:
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}
	return cli.RenderTable(headers, rows)
}

func reportSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Publish the cost matrix and scenarios to Google Sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			logger := slog.Default()

			if login, _ := cmd.Flags().GetBool("login"); login {
				oauthCfg, err := config.LoadOAuthConfig(viper.GetViper())
				if err != nil {
					return err
				}
				if _, err := sheets.GetOrCreateToken(ctx, oauthCfg, logger); err != nil {
					return fmt.Errorf("failed to authenticate with Google: %w", err)
				}
			}

			sheetsCfg, err := config.LoadSheetsConfig(viper.GetViper())
			if err != nil {
				return err
			}

			env, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer closeEnv(env)

			report, err := sheets.BuildReport(env.workspace, env.cfg.Disciplines, env.cfg.Language)
			if err != nil {
				return err
			}

			writer, err := sheets.NewWriter(ctx, sheetsCfg, logger)
			if err != nil {
				return err
			}
			id, err := writer.Write(ctx, report)
			if err != nil {
				return err
			}
			printLine(cmd, cli.FormatSuccess("Report written: https://docs.google.com/spreadsheets/d/"+id))
			return nil
		},
	}
	cmd.Flags().Bool("login", false, "run the browser OAuth flow first when no token is saved")
	return cmd
}
