package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/blueprint/internal/mutate"
	"github.com/roach88/blueprint/internal/project"
)

// Scenario is a scripted editing session with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario; golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Template names an embedded seed document. Defaults to "blank".
	Template string `yaml:"template,omitempty"`

	// Document is a seed document path, relative to the scenario file.
	// Mutually exclusive with Template.
	Document string `yaml:"document,omitempty"`

	// Steps are applied in order.
	Steps []Step `yaml:"steps"`

	// Assertions are evaluated against the final session.
	Assertions []Assertion `yaml:"assertions"`

	// Golden lists projection targets compared against golden files.
	Golden []string `yaml:"golden,omitempty"`

	// dir is the directory the scenario was loaded from.
	dir string
}

// Step is one edit or restore.
type Step struct {
	// Op is a mutate op name. Empty when Restore is set.
	Op string `yaml:"op,omitempty"`

	// Args are the op arguments, encoded as the op's journal JSON.
	Args map[string]any `yaml:"args,omitempty"`

	// Restore is a history index to restore instead of applying an op.
	Restore *int `yaml:"restore,omitempty"`

	// ExpectError is a violation code (E201) or an error kind
	// (index_out_of_range, model_not_found, decode). The step must fail with it.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Label names the step in traces and messages.
func (s Step) Label() string {
	if s.Restore != nil {
		return fmt.Sprintf("restore(%d)", *s.Restore)
	}
	return s.Op
}

// Assertion checks the final session state.
type Assertion struct {
	Type     string   `yaml:"type"`
	Count    int      `yaml:"count,omitempty"`
	Model    string   `yaml:"model,omitempty"`
	Names    []string `yaml:"names,omitempty"`
	Target   string   `yaml:"target,omitempty"`
	Contains string   `yaml:"contains,omitempty"`
}

// Assertion type constants.
const (
	AssertEndpointCount      = "endpoint_count"
	AssertModels             = "models"
	AssertFields             = "fields"
	AssertHistoryLength      = "history_length"
	AssertWarningCount       = "warning_count"
	AssertProjectionContains = "projection_contains"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown keys are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	scenario.dir = filepath.Dir(path)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenarios loads every *.yaml scenario in dir, in file name order.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("scan scenarios: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Template != "" && s.Document != "" {
		return fmt.Errorf("template and document are mutually exclusive")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		switch {
		case step.Op == "" && step.Restore == nil:
			return fmt.Errorf("steps[%d]: op or restore is required", i)
		case step.Op != "" && step.Restore != nil:
			return fmt.Errorf("steps[%d]: op and restore are mutually exclusive", i)
		case step.Op != "":
			if _, err := mutate.New(step.Op); err != nil {
				return fmt.Errorf("steps[%d]: %w", i, err)
			}
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}

	for _, target := range s.Golden {
		if _, err := project.ParseTarget(target); err != nil {
			return fmt.Errorf("golden: %w", err)
		}
	}
	return nil
}

func validateAssertion(index int, a Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertEndpointCount, AssertHistoryLength, AssertWarningCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertModels:
	case AssertFields:
		if a.Model == "" {
			return fmt.Errorf("assertions[%d]: model is required for fields", index)
		}
	case AssertProjectionContains:
		if _, err := project.ParseTarget(a.Target); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.Contains == "" {
			return fmt.Errorf("assertions[%d]: contains is required for projection_contains", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
