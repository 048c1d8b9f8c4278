package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/turnfarm/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List runs, newest first",
		Run:   runList,
	}

	cmd.Flags().StringP("mode", "m", "", "Filter by mode (full, nobarf, turns)")
	cmd.Flags().Bool("failed", false, "Only runs that ended with an error")
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().Bool("ids-only", false, "Only output run IDs")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	mode, _ := cmd.Flags().GetString("mode")
	failed, _ := cmd.Flags().GetBool("failed")
	limit, _ := cmd.Flags().GetInt("limit")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	runs, err := s.ListRuns(cmd.Context(), store.ListRunsParams{
		Mode:   mode,
		Failed: failed,
		Limit:  limit,
	})
	if err != nil {
		exitErr("list", err)
	}

	if idsOnly {
		for _, r := range runs {
			fmt.Fprintln(cmd.OutOrStdout(), r.ID)
		}
		return
	}

	b, _ := json.MarshalIndent(runs, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
