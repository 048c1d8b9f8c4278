// Package config loads run options. Environment variables provide defaults;
// command-line flags override them.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Options are read-only to the farming engine once loaded.
type Options struct {
	// Turns limits the run: positive spends that many turns, negative leaves
	// that many adventures unspent, zero spends everything.
	Turns  int  `env:"TURNFARM_TURNS" envDefault:"0"`
	Ascend bool `env:"TURNFARM_ASCEND"`
	// NoBarf skips the farming phase; only target fights run.
	NoBarf bool `env:"TURNFARM_NOBARF"`
	// Yes answers operator prompts affirmatively.
	Yes bool `env:"TURNFARM_YES"`

	FarmZone string `env:"TURNFARM_FARM_ZONE" envDefault:"Barf Mountain"`
	// TargetValue overrides the per-fight value used by the unlock decision.
	TargetValue float64 `env:"TURNFARM_TARGET_VALUE"`
	// UnlockMaxPrice caps what the unlock purchase may cost. Zero uses the
	// market price.
	UnlockMaxPrice float64 `env:"TURNFARM_UNLOCK_MAX_PRICE"`

	Scenario   string        `env:"TURNFARM_SCENARIO"`
	Prices     string        `env:"TURNFARM_PRICES"`
	DBPath     string        `env:"TURNFARM_DB"`
	EventsDir  string        `env:"TURNFARM_EVENTS_DIR"`
	FaxBackoff time.Duration `env:"TURNFARM_FAX_BACKOFF" envDefault:"10s"`
	Verbose    bool          `env:"TURNFARM_VERBOSE"`
}

// Load reads Options from the environment.
func Load() (Options, error) {
	var o Options
	if err := env.Parse(&o); err != nil {
		return o, fmt.Errorf("parse env: %w", err)
	}
	return o, nil
}

// Mode names how the day is spent, as recorded with the run.
func (o Options) Mode() string {
	switch {
	case o.NoBarf:
		return "nobarf"
	case o.Turns != 0:
		return "turns"
	}
	return "full"
}

// Validate rejects option combinations the engine cannot honour.
func (o Options) Validate() error {
	if o.FarmZone == "" && !o.NoBarf {
		return fmt.Errorf("farm zone is required unless nobarf is set")
	}
	if o.TargetValue < 0 || o.UnlockMaxPrice < 0 {
		return fmt.Errorf("values must not be negative")
	}
	if o.FaxBackoff < 0 {
		return fmt.Errorf("fax backoff must not be negative")
	}
	return nil
}

// DatabasePath returns DBPath or the default under the home directory.
func (o Options) DatabasePath() string {
	if o.DBPath != "" {
		return o.DBPath
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".turnfarm", "turnfarm.db")
}

// EventsPath returns EventsDir or an "events" directory beside the database.
func (o Options) EventsPath() string {
	if o.EventsDir != "" {
		return o.EventsDir
	}
	return filepath.Join(filepath.Dir(o.DatabasePath()), "events")
}
