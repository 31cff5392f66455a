package main

import (
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/clash-cost/internal/cli"
	"github.com/Veraticus/clash-cost/internal/config"
)

func disciplinesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "disciplines",
		Short: "List the configured disciplines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(cfg.Disciplines))
			for _, d := range cfg.Disciplines {
				rows = append(rows, []string{d.ID, d.Code, d.Name, strconv.Itoa(d.Rank), d.Description})
			}
			printLine(cmd, cli.RenderTable([]string{"ID", "Code", "Name", "Rank", "Description"}, rows))
			return nil
		},
	}
}
