// Package sim is an in-memory game world driven by a YAML scenario. It
// implements every game collaborator so a farming day can run offline.
package sim

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed scenario.schema.json
var scenarioSchema string

//go:embed demo.yaml
var demoScenario []byte

// Scenario is the starting world state.
type Scenario struct {
	Character Character           `yaml:"character"`
	Inventory map[string]int      `yaml:"inventory"`
	Equipped  []string            `yaml:"equipped"`
	Props     map[string]string   `yaml:"props"`
	Counters  map[string]int      `yaml:"counters"`
	Zones     []Zone              `yaml:"zones"`
	Monsters  map[string]Monster  `yaml:"monsters"`
	CopyItems map[string]CopyItem `yaml:"copy_items"`
	Prices    map[string]float64  `yaml:"prices"`
	Recipes   map[string][]string `yaml:"recipes"`
	Fax       FaxPeer             `yaml:"fax"`
	Terminal  TerminalConfig      `yaml:"terminal"`
}

type Character struct {
	Meat           int64 `yaml:"meat"`
	Adventures     int   `yaml:"adventures"`
	Turns          int   `yaml:"turns"`
	Inebriety      int   `yaml:"inebriety"`
	InebrietyLimit int   `yaml:"inebriety_limit"`
}

type Zone struct {
	Name          string `yaml:"name"`
	CombatPercent int    `yaml:"combat_percent"`
	Monster       string `yaml:"monster"`
	Free          bool   `yaml:"free"`
}

type Monster struct {
	ID    int            `yaml:"id"`
	Meat  int64          `yaml:"meat"`
	Drops map[string]int `yaml:"drops"`
	// NoCopy marks monsters that never become the last copyable monster.
	NoCopy bool `yaml:"no_copy"`
}

// CopyItem is an item that starts a fight when used.
type CopyItem struct {
	// Monster is fought directly; otherwise the monster named by Prop is.
	Monster string `yaml:"monster"`
	Prop    string `yaml:"prop"`
	// Counter is incremented on each use.
	Counter string `yaml:"counter"`
	Keep    bool   `yaml:"keep"`
}

type FaxPeer struct {
	Peer string `yaml:"peer"`
	// DelayPolls is the number of "fax receive" calls before the copy arrives.
	DelayPolls int  `yaml:"delay_polls"`
	Never      bool `yaml:"never"`
}

type TerminalConfig struct {
	Installed     bool     `yaml:"installed"`
	DuplicateUses int      `yaml:"duplicate_uses"`
	Skills        []string `yaml:"skills"`
}

// ParseScenario validates raw YAML against the scenario schema and decodes it.
func ParseScenario(raw []byte) (*Scenario, error) {
	if err := Validate(raw); err != nil {
		return nil, err
	}
	var s Scenario
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	return &s, nil
}

// Demo returns the bundled demo scenario.
func Demo() *Scenario {
	s, err := ParseScenario(bytes.Clone(demoScenario))
	if err != nil {
		panic(fmt.Sprintf("demo scenario: %v", err))
	}
	return s
}

// LoadScenario reads and parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := ParseScenario(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks raw YAML against the embedded JSON schema.
func Validate(raw []byte) error {
	schema, err := jsonschema.CompileString("scenario.schema.json", scenarioSchema)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	// Round-trip through JSON so numbers and maps take the shapes the
	// validator expects.
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("convert yaml: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("convert yaml: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("invalid scenario: %w", err)
	}
	return nil
}
