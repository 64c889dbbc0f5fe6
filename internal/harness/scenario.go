package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/lateinit/internal/ir"
)

// Scenario defines a conformance test scenario.
// Scenarios exercise guarded properties step by step and assert on the
// resulting trace and final instance state.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists CUE files declaring the classes the steps instantiate.
	// Relative paths are resolved against the load base path.
	Specs []string `yaml:"specs"`

	// RunID pins the run id for deterministic stored runs.
	// If empty, the harness takes one from its generator.
	RunID string `yaml:"run_id,omitempty"`

	// Steps execute in order against live instances.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and instance state.
	// Supported types: trace_contains, trace_order, trace_count, final_state
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one operation against a class or instance.
type Step struct {
	// Op is one of new, write, read, inspect.
	Op string `yaml:"op"`

	// Target names an instance for new ("c") and an instance property for
	// every other op ("c.p").
	Target string `yaml:"target"`

	// Class is the class to instantiate (new only).
	Class string `yaml:"class,omitempty"`

	// Value is the value to write. YAML null writes an explicit null.
	Value yaml.Node `yaml:"value,omitempty"`

	// Undefined writes the undefined value instead of Value.
	Undefined bool `yaml:"undefined,omitempty"`

	// Expect validates the step's outcome. If nil, any outcome is accepted.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected result of a step.
type Expect struct {
	// Outcome is the expected outcome name (e.g. "ok", "already_initialized").
	Outcome string `yaml:"outcome,omitempty"`

	// Value is the value a read must return.
	Value yaml.Node `yaml:"value,omitempty"`

	// Undefined requires a read to return the undefined value.
	Undefined bool `yaml:"undefined,omitempty"`

	// Initialized is the state an inspect must report.
	Initialized *bool `yaml:"initialized,omitempty"`
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": an event matches op/target/outcome/value
	// - "trace_order": events appear in the given order
	// - "trace_count": exactly Count events match op/target/outcome
	// - "final_state": a live property is (or is not) initialized to a value
	Type string `yaml:"type"`

	// Op, Target and Outcome select events; empty fields match anything.
	Op      string `yaml:"op,omitempty"`
	Target  string `yaml:"target,omitempty"`
	Outcome string `yaml:"outcome,omitempty"`

	// Count is the expected number of matching events (trace_count).
	Count int `yaml:"count,omitempty"`

	// Events lists "op target [outcome]" patterns in expected order
	// (trace_order). Intervening events are allowed.
	Events []string `yaml:"events,omitempty"`

	// Initialized is the required final state (final_state).
	Initialized *bool `yaml:"initialized,omitempty"`

	// Value is the required value (trace_contains, final_state).
	Value yaml.Node `yaml:"value,omitempty"`

	// Undefined requires the value to be undefined (trace_contains,
	// final_state).
	Undefined bool `yaml:"undefined,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file. Spec paths are
// resolved relative to the scenario file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving spec paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, basePath)
}

// ParseScenario parses scenario YAML, resolving relative spec paths
// against basePath before validation.
func ParseScenario(data []byte, basePath string) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) && basePath != "" {
			scenario.Specs[i] = filepath.Join(basePath, specPath)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Specs) == 0 {
		return fmt.Errorf("specs list is required and must be non-empty")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for _, specPath := range s.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return fmt.Errorf("spec file not found: %s", specPath)
		}
	}

	for i := range s.Steps {
		if err := validateStep(i, &s.Steps[i]); err != nil {
			return err
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

// validateStep validates a single step based on its op.
func validateStep(index int, st *Step) error {
	if !validOps[st.Op] {
		return fmt.Errorf("steps[%d]: invalid op %q (must be new, write, read or inspect)", index, st.Op)
	}

	if st.Op == OpNew {
		if st.Target == "" || strings.Contains(st.Target, ".") {
			return fmt.Errorf("steps[%d]: new requires an instance name target, got %q", index, st.Target)
		}
		if st.Class == "" {
			return fmt.Errorf("steps[%d]: class is required for new", index)
		}
	} else {
		if _, _, ok := splitTarget(st.Target); !ok {
			return fmt.Errorf("steps[%d]: target must be instance.property, got %q", index, st.Target)
		}
		if st.Class != "" {
			return fmt.Errorf("steps[%d]: class is only valid for new", index)
		}
	}

	hasValue := st.Value.Kind != 0
	switch {
	case st.Op == OpWrite && hasValue && st.Undefined:
		return fmt.Errorf("steps[%d]: write takes value or undefined, not both", index)
	case st.Op == OpWrite && !hasValue && !st.Undefined:
		return fmt.Errorf("steps[%d]: write requires value or undefined", index)
	case st.Op != OpWrite && (hasValue || st.Undefined):
		return fmt.Errorf("steps[%d]: value is only valid for write", index)
	}
	if _, _, err := nodeValue(&st.Value); err != nil {
		return fmt.Errorf("steps[%d].value: %w", index, err)
	}

	if st.Expect != nil {
		if err := validateExpect(index, st.Op, st.Expect); err != nil {
			return err
		}
	}
	return nil
}

func validateExpect(index int, op string, e *Expect) error {
	if e.Outcome != "" && !validOutcomes[e.Outcome] {
		return fmt.Errorf("steps[%d].expect: unknown outcome %q", index, e.Outcome)
	}

	hasValue := e.Value.Kind != 0
	if (hasValue || e.Undefined) && op != OpRead {
		return fmt.Errorf("steps[%d].expect: value is only valid for read", index)
	}
	if hasValue && e.Undefined {
		return fmt.Errorf("steps[%d].expect: value and undefined are mutually exclusive", index)
	}
	if _, _, err := nodeValue(&e.Value); err != nil {
		return fmt.Errorf("steps[%d].expect.value: %w", index, err)
	}

	if e.Initialized != nil && op != OpInspect {
		return fmt.Errorf("steps[%d].expect: initialized is only valid for inspect", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	if a.Op != "" && !validOps[a.Op] {
		return fmt.Errorf("assertions[%d]: invalid op %q", index, a.Op)
	}
	if a.Outcome != "" && !validOutcomes[a.Outcome] {
		return fmt.Errorf("assertions[%d]: unknown outcome %q", index, a.Outcome)
	}
	hasValue := a.Value.Kind != 0
	if hasValue && a.Undefined {
		return fmt.Errorf("assertions[%d]: value and undefined are mutually exclusive", index)
	}
	if _, _, err := nodeValue(&a.Value); err != nil {
		return fmt.Errorf("assertions[%d].value: %w", index, err)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Op == "" && a.Target == "" {
			return fmt.Errorf("assertions[%d]: op or target is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for trace_order", index)
		}
		for j, pattern := range a.Events {
			if _, err := parseEventPattern(pattern); err != nil {
				return fmt.Errorf("assertions[%d].events[%d]: %w", index, j, err)
			}
		}
	case AssertTraceCount:
		if a.Op == "" && a.Target == "" {
			return fmt.Errorf("assertions[%d]: op or target is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if _, _, ok := splitTarget(a.Target); !ok {
			return fmt.Errorf("assertions[%d]: target must be instance.property for final_state, got %q", index, a.Target)
		}
		if a.Initialized == nil {
			return fmt.Errorf("assertions[%d]: initialized is required for final_state", index)
		}
		if !*a.Initialized && (hasValue || a.Undefined) {
			return fmt.Errorf("assertions[%d]: an uninitialized property has no value", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// splitTarget splits "instance.property".
func splitTarget(target string) (instance, property string, ok bool) {
	instance, property, ok = strings.Cut(target, ".")
	return instance, property, ok && instance != "" && property != ""
}

// nodeValue converts a decoded YAML node into a scenario value.
// present is false when the field was absent from the document.
func nodeValue(n *yaml.Node) (v ir.Value, present bool, err error) {
	if n.Kind == 0 {
		return nil, false, nil
	}
	var raw any
	if err := n.Decode(&raw); err != nil {
		return nil, true, err
	}
	v, err = ir.FromYAML(raw)
	return v, true, err
}
