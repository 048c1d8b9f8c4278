package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export runs as JSON",
		Long:  "Export every run with its checkpoints as JSON. Filter by mode with -m.",
		Run:   runExport,
	}

	cmd.Flags().StringP("mode", "m", "", "Filter by mode")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	mode, _ := cmd.Flags().GetString("mode")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	runs, err := s.ExportAll(cmd.Context(), mode)
	if err != nil {
		exitErr("export", err)
	}

	b, _ := json.MarshalIndent(runs, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}
