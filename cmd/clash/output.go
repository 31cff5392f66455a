package main

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"
)

func printLine(cmd *cobra.Command, line string) {
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
		slog.Error("failed to write output", "error", err)
	}
}

func formatMoney(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
