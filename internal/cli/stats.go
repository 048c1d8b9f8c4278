package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rcliao/turnfarm/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show run and database totals",
		Run:   runStats,
	}

	cmd.Flags().Bool("json", false, "Print as JSON")

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	asJSON, _ := cmd.Flags().GetBool("json")
	path := getDBPath()

	s, err := store.NewSQLiteStore(path)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	st, err := s.Stats(cmd.Context(), path)
	if err != nil {
		s.Close()
		exitErr("stats", err)
	}

	if asJSON {
		b, _ := json.MarshalIndent(st, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return
	}
	printStats(cmd.OutOrStdout(), st)
}

func printStats(out io.Writer, st *store.Stats) {
	fmt.Fprintf(out, "%s (%d bytes)\n", st.DBPath, st.DBSizeBytes)
	fmt.Fprintf(out, "runs: %d total, %d finished, %d failed\n", st.TotalRuns, st.FinishedRuns, st.FailedRuns)
	fmt.Fprintf(out, "snapshots: %d across %d days\n", st.Snapshots, st.Days)
	if len(st.Modes) == 0 {
		return
	}
	table := tablewriter.NewTable(out,
		tablewriter.WithHeader([]string{"Mode", "Runs", "Turns", "Currency"}),
	)
	for _, m := range st.Modes {
		_ = table.Append([]string{m.Mode, fmt.Sprint(m.Runs), fmt.Sprint(m.Turns), fmt.Sprint(m.Currency)})
	}
	_ = table.Render()
}
