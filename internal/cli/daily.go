package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "daily",
		Short: "Show per-day totals across runs",
		Run:   runDaily,
	}

	cmd.Flags().IntP("limit", "l", 7, "Number of days")

	RootCmd.AddCommand(cmd)
}

func runDaily(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	days, err := s.DailyHistory(cmd.Context(), limit)
	if err != nil {
		exitErr("daily", err)
	}

	b, _ := json.MarshalIndent(days, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
