package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/turnfarm/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get <run-id>",
		Short: "Show a run and its checkpoints",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	cmd.Flags().Bool("no-snapshots", false, "Omit checkpoints")

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	noSnaps, _ := cmd.Flags().GetBool("no-snapshots")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	run, err := s.GetRun(cmd.Context(), args[0])
	if err != nil {
		exitErr("get", err)
	}

	out := store.RunExport{Run: *run}
	if !noSnaps {
		if out.Snapshots, err = s.Snapshots(cmd.Context(), run.ID); err != nil {
			exitErr("snapshots", err)
		}
	}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
