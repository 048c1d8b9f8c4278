package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rcliao/turnfarm/internal/config"
	"github.com/rcliao/turnfarm/internal/farm"
	"github.com/rcliao/turnfarm/internal/fight"
	"github.com/rcliao/turnfarm/internal/game/sim"
	"github.com/rcliao/turnfarm/internal/report"
)

func init() {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Spend a farming day",
		Long: "Runs setup chores, every available target fight, then farming turns in the farm zone. " +
			"Flags override TURNFARM_* environment variables.",
		Run: runRun,
	}

	cmd.Flags().IntP("turns", "t", 0, "Turns to spend; negative leaves that many adventures (0: all)")
	cmd.Flags().Bool("ascend", false, "Plan for ascending at the end of the day")
	cmd.Flags().Bool("nobarf", false, "Only run target fights")
	cmd.Flags().BoolP("yes", "y", false, "Answer yes to every prompt")
	cmd.Flags().String("zone", "", "Farm zone")
	cmd.Flags().Float64("target-value", 0, "Value of one target fight for the unlock decision (0: from prices)")
	cmd.Flags().Float64("unlock-max-price", 0, "Most the unlock purchase may cost (0: market price)")
	cmd.Flags().StringP("scenario", "s", "", "Scenario YAML file (default: bundled demo)")
	cmd.Flags().String("prices", "", "Price table YAML file (default: scenario prices)")
	cmd.Flags().String("events-dir", "", "Directory for per-run event logs (default: beside the database)")
	cmd.Flags().Duration("fax-backoff", 0, "Wait between fax polls")
	cmd.Flags().Bool("json", false, "Print the summary as JSON")

	RootCmd.AddCommand(cmd)
}

// applyRunFlags overlays flags the user set on options loaded from the
// environment.
func applyRunFlags(cmd *cobra.Command, o *config.Options) {
	f := cmd.Flags()
	if f.Changed("turns") {
		o.Turns, _ = f.GetInt("turns")
	}
	if f.Changed("ascend") {
		o.Ascend, _ = f.GetBool("ascend")
	}
	if f.Changed("nobarf") {
		o.NoBarf, _ = f.GetBool("nobarf")
	}
	if f.Changed("yes") {
		o.Yes, _ = f.GetBool("yes")
	}
	if f.Changed("zone") {
		o.FarmZone, _ = f.GetString("zone")
	}
	if f.Changed("target-value") {
		o.TargetValue, _ = f.GetFloat64("target-value")
	}
	if f.Changed("unlock-max-price") {
		o.UnlockMaxPrice, _ = f.GetFloat64("unlock-max-price")
	}
	if f.Changed("scenario") {
		o.Scenario, _ = f.GetString("scenario")
	}
	if f.Changed("prices") {
		o.Prices, _ = f.GetString("prices")
	}
	if f.Changed("events-dir") {
		o.EventsDir, _ = f.GetString("events-dir")
	}
	if f.Changed("fax-backoff") {
		o.FaxBackoff, _ = f.GetDuration("fax-backoff")
	}
}

// prompter asks yes/no questions on in, or answers yes when yes is set.
func prompter(in io.Reader, out io.Writer, yes bool) fight.Confirmer {
	r := bufio.NewReader(in)
	ask := color.New(color.FgYellow, color.Bold)
	return fight.ConfirmFunc(func(msg string) bool {
		ask.Fprintln(out, msg)
		if yes {
			fmt.Fprintln(out, "yes (auto)")
			return true
		}
		fmt.Fprint(out, "[y/N] ")
		line, _ := r.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	})
}

func runRun(cmd *cobra.Command, args []string) {
	o := loadOptions()
	applyRunFlags(cmd, &o)
	o.EventsDir = o.EventsPath()
	asJSON, _ := cmd.Flags().GetBool("json")

	sc := sim.Demo()
	if o.Scenario != "" {
		var err error
		if sc, err = sim.LoadScenario(o.Scenario); err != nil {
			exitErr("load scenario", err)
		}
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	confirm := prompter(cmd.InOrStdin(), cmd.ErrOrStderr(), o.Yes)
	day, _, err := farm.Simulated(o, sc, confirm, s, newLogger(o))
	if err != nil {
		exitErr("build day", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	sum, runErr := day.Run(ctx)
	if sum != nil {
		if asJSON {
			b, _ := json.MarshalIndent(sum, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
		} else {
			report.New(cmd.OutOrStdout()).Summary(sum)
		}
	}
	if runErr != nil {
		s.Close()
		exitErr("run", runErr)
	}
}
