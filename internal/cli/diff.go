package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/turnfarm/internal/game/sim"
	"github.com/rcliao/turnfarm/internal/model"
	"github.com/rcliao/turnfarm/internal/report"
	"github.com/rcliao/turnfarm/internal/session"
	"github.com/rcliao/turnfarm/internal/value"
)

func init() {
	cmd := &cobra.Command{
		Use:   "diff <run-id> [from] [to]",
		Short: "Value the change between two checkpoints of a stored run",
		Long:  "Value the change between two checkpoints of a stored run (default day-start to day-end) with the scenario or --prices price table.",
		Args:  cobra.RangeArgs(1, 3),
		Run:   runDiff,
	}

	cmd.Flags().StringP("scenario", "s", "", "Scenario whose prices value the items (default: bundled demo)")
	cmd.Flags().String("prices", "", "Price table YAML file")
	cmd.Flags().Bool("json", false, "Print the report as JSON")

	RootCmd.AddCommand(cmd)
}

func runDiff(cmd *cobra.Command, args []string) {
	scenario, _ := cmd.Flags().GetString("scenario")
	prices, _ := cmd.Flags().GetString("prices")
	asJSON, _ := cmd.Flags().GetBool("json")

	from, to := model.DayStart, model.DayEnd
	if len(args) > 1 {
		from = model.Checkpoint(args[1])
	}
	if len(args) > 2 {
		to = model.Checkpoint(args[2])
	}

	oracle, err := loadOracle(scenario, prices)
	if err != nil {
		exitErr("load prices", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	snaps, err := s.Snapshots(cmd.Context(), args[0])
	if err != nil {
		exitErr("snapshots", err)
	}
	byCheckpoint := make(map[model.Checkpoint]model.Snapshot, len(snaps))
	for _, snap := range snaps {
		byCheckpoint[snap.Checkpoint] = snap
	}
	a, ok := byCheckpoint[from]
	if !ok {
		exitErr("diff", fmt.Errorf("%w: %s not recorded for %s", session.ErrInvalidRange, from, args[0]))
	}
	b, ok := byCheckpoint[to]
	if !ok {
		exitErr("diff", fmt.Errorf("%w: %s not recorded for %s", session.ErrInvalidRange, to, args[0]))
	}

	rep := session.Value(oracle, model.Sub(a, b))
	if asJSON {
		out, _ := json.MarshalIndent(rep, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return
	}
	p := report.New(cmd.OutOrStdout())
	p.Extremes(rep.Lines)
	p.Totals(fmt.Sprintf("From %s to %s", from, to), rep.Turns, rep.Currency, rep.ItemValue)
}

// loadOracle prefers an explicit price table over the scenario's prices.
func loadOracle(scenario, prices string) (value.Oracle, error) {
	if prices != "" {
		return value.LoadPriceTable(prices)
	}
	sc := sim.Demo()
	if scenario != "" {
		var err error
		if sc, err = sim.LoadScenario(scenario); err != nil {
			return nil, err
		}
	}
	return value.NewPriceTable(sc.Prices), nil
}
