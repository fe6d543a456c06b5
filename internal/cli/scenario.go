// Package cli loads scenario files and assembles them into runnable chains.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Scenario is the decoded form of a scenario file. It describes a named
// sequence of steps plus defaults applied to steps that omit a field.
type Scenario struct {
	Name     string
	Defaults Defaults
	Steps    []Step
}

// Defaults holds values applied to steps that leave a field empty.
type Defaults struct {
	Cache string `mapstructure:"cache"`
}

// Step is one entry of the scenario's step list. Exactly one of Op, Tx
// or Group must be set.
type Step struct {
	Op         string        `mapstructure:"op"`
	Cache      string        `mapstructure:"cache"`
	Key        any           `mapstructure:"key"`
	Value      any           `mapstructure:"value"`
	Async      bool          `mapstructure:"async"`
	KeepBinary bool          `mapstructure:"keep_binary"`
	Name       string        `mapstructure:"name"`
	Checks     []CheckConfig `mapstructure:"checks"`

	Tx    *TxConfig    `mapstructure:"tx"`
	Group *GroupConfig `mapstructure:"group"`
}

// CheckConfig configures one check attached to a cache step. Args
// collects keys not claimed by the built-in types so registered custom
// checks receive their raw arguments.
type CheckConfig struct {
	Type   string         `mapstructure:"type"`
	Count  int            `mapstructure:"count"`
	Key    any            `mapstructure:"key"`
	Value  any            `mapstructure:"value"`
	SaveAs string         `mapstructure:"save_as"`
	Args   map[string]any `mapstructure:",remain"`
}

// TxConfig configures a transactional block of steps.
type TxConfig struct {
	Concurrency string           `mapstructure:"concurrency"`
	Isolation   string           `mapstructure:"isolation"`
	Steps       []map[string]any `mapstructure:"steps"`
}

// GroupConfig configures a named group of steps.
type GroupConfig struct {
	Name  string           `mapstructure:"name"`
	Steps []map[string]any `mapstructure:"steps"`
}

// scenarioFile is the raw YAML shape. Steps stay untyped here so that
// nested blocks can be decoded recursively with mapstructure.
type scenarioFile struct {
	Name     string           `yaml:"name"`
	Defaults map[string]any   `yaml:"defaults"`
	Steps    []map[string]any `yaml:"steps"`
}

// Load reads and decodes a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes scenario YAML from memory.
func Parse(data []byte) (*Scenario, error) {
	var file scenarioFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if file.Name == "" {
		return nil, fmt.Errorf("scenario missing name")
	}
	if len(file.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", file.Name)
	}

	scenario := &Scenario{Name: file.Name}
	if file.Defaults != nil {
		if err := mapstructure.Decode(file.Defaults, &scenario.Defaults); err != nil {
			return nil, fmt.Errorf("invalid defaults: %w", err)
		}
	}

	steps, err := decodeSteps(file.Steps, scenario.Defaults)
	if err != nil {
		return nil, err
	}
	scenario.Steps = steps
	return scenario, nil
}

func decodeSteps(raw []map[string]any, defaults Defaults) ([]Step, error) {
	steps := make([]Step, 0, len(raw))
	for i, m := range raw {
		var step Step
		if err := mapstructure.Decode(m, &step); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		if err := validateStep(&step); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		if step.Cache == "" {
			step.Cache = defaults.Cache
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func validateStep(step *Step) error {
	set := 0
	if step.Op != "" {
		set++
	}
	if step.Tx != nil {
		set++
	}
	if step.Group != nil {
		set++
	}
	switch set {
	case 0:
		return fmt.Errorf("step needs one of op, tx or group")
	case 1:
		return nil
	default:
		return fmt.Errorf("step has conflicting keys, want exactly one of op, tx or group")
	}
}

// varRef reports whether a scalar value is a ${name} session reference
// and returns the referenced name.
func varRef(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") && len(s) > 3 {
		return s[2 : len(s)-1], true
	}
	return "", false
}
