package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rcliao/turnfarm/internal/config"
	"github.com/rcliao/turnfarm/internal/store"
)

func TestApplyRunFlags(t *testing.T) {
	cmd, _, err := RootCmd.Find([]string{"run"})
	if err != nil {
		t.Fatalf("find run: %v", err)
	}
	for name, v := range map[string]string{
		"turns":       "-10",
		"nobarf":      "true",
		"fax-backoff": "2s",
	} {
		if err := cmd.Flags().Set(name, v); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}

	o := config.Options{FarmZone: "Barf Mountain", Ascend: true, FaxBackoff: 10 * time.Second}
	applyRunFlags(cmd, &o)

	if o.Turns != -10 || !o.NoBarf || o.FaxBackoff != 2*time.Second {
		t.Errorf("expected flags applied, got %+v", o)
	}
	if !o.Ascend || o.FarmZone != "Barf Mountain" {
		t.Errorf("expected unset flags to keep env values, got %+v", o)
	}
}

func TestPrompter(t *testing.T) {
	var out bytes.Buffer
	c := prompter(strings.NewReader("y\nno\n"), &out, false)
	if !c.Confirm("buy?") {
		t.Error("expected yes")
	}
	if c.Confirm("buy again?") {
		t.Error("expected no")
	}
	if c.Confirm("eof?") {
		t.Error("expected no at end of input")
	}
	if !strings.Contains(out.String(), "buy?") {
		t.Errorf("expected question printed, got %q", out.String())
	}

	out.Reset()
	auto := prompter(strings.NewReader(""), &out, true)
	if !auto.Confirm("buy?") {
		t.Error("expected auto yes")
	}
}

func TestPrintStats(t *testing.T) {
	var out bytes.Buffer
	printStats(&out, &store.Stats{
		DBPath:       "turnfarm.db",
		TotalRuns:    3,
		FinishedRuns: 2,
		FailedRuns:   1,
		Snapshots:    14,
		Days:         2,
		Modes:        []store.ModeStats{{Mode: "full", Runs: 3, Turns: 180, Currency: 150000}},
	})
	for _, want := range []string{"runs: 3 total, 2 finished, 1 failed", "snapshots: 14 across 2 days", "150000"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in output:\n%s", want, out.String())
		}
	}
}
