package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/turnfarm/internal/game/sim"
)

func init() {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Check a scenario file against the scenario schema",
		Args:  cobra.ExactArgs(1),
		Run:   runValidate,
	}

	RootCmd.AddCommand(cmd)
}

func runValidate(cmd *cobra.Command, args []string) {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		exitErr("read scenario", err)
	}
	if err := sim.Validate(raw); err != nil {
		exitErr("validate", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"scenario":%q}`+"\n", args[0])
}
