package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/turnfarm/internal/eventlog"
)

func init() {
	cmd := &cobra.Command{
		Use:   "events <run-id>",
		Short: "Print a run's event log as JSON lines",
		Args:  cobra.ExactArgs(1),
		Run:   runEvents,
	}

	cmd.Flags().String("events-dir", "", "Directory holding event logs (default: beside the database)")
	cmd.Flags().Bool("errors", false, "Only events that failed")

	RootCmd.AddCommand(cmd)
}

func runEvents(cmd *cobra.Command, args []string) {
	o := loadOptions()
	if dir, _ := cmd.Flags().GetString("events-dir"); dir != "" {
		o.EventsDir = dir
	}
	onlyErrors, _ := cmd.Flags().GetBool("errors")

	events, err := eventlog.ReadFile(eventlog.Path(o.EventsPath(), args[0]))
	if err != nil {
		exitErr("read events", err)
	}
	for _, e := range events {
		if onlyErrors && e.Error == "" {
			continue
		}
		b, _ := json.Marshal(e)
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
	}
}
