package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultStartMillis is the wall clock a scenario starts at when it
// does not set start_ms.
const DefaultStartMillis int64 = 1_700_000_000_000

// Scenario defines a record-store scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// StartMillis is the initial wall clock in Unix milliseconds.
	StartMillis int64 `yaml:"start_ms,omitempty"`

	// Unavailable makes every open of the record store fail.
	Unavailable bool `yaml:"unavailable,omitempty"`

	// Steps run in order against one bridge.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final store contents and emitted events.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one action against the bridge.
type Step struct {
	// Action is one of store, fetch_all, relay, tick, reopen.
	Action string `yaml:"action"`

	// Value is stored as JSON (store only).
	Value interface{} `yaml:"value,omitempty"`

	// Raw is stored verbatim and takes precedence over Value (store only).
	Raw string `yaml:"raw,omitempty"`

	// AdvanceMillis moves the wall clock forward (tick only).
	AdvanceMillis int64 `yaml:"advance_ms,omitempty"`

	// Expect checks the step outcome. If nil, any outcome is accepted.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies expected step behavior.
type ExpectClause struct {
	// Outcome is the expected outcome name (see the Outcome constants).
	Outcome string `yaml:"outcome"`

	// Count is the expected number of records read (fetch_all, relay).
	Count *int `yaml:"count,omitempty"`
}

// Assertion validates the state after all steps ran.
type Assertion struct {
	// Type is one of record_count, values_order, ids_ascending,
	// event_count, ack_count.
	Type string `yaml:"type"`

	// Count is used by record_count, event_count and ack_count.
	Count int `yaml:"count,omitempty"`

	// Values is used by values_order.
	Values []interface{} `yaml:"values,omitempty"`
}

// Step action constants.
const (
	ActionStore    = "store"
	ActionFetchAll = "fetch_all"
	ActionRelay    = "relay"
	ActionTick     = "tick"
	ActionReopen   = "reopen"
)

// Assertion type constants.
const (
	AssertRecordCount  = "record_count"
	AssertValuesOrder  = "values_order"
	AssertIDsAscending = "ids_ascending"
	AssertEventCount   = "event_count"
	AssertAckCount     = "ack_count"
)

// Outcome constants.
const (
	OutcomeOK      = "ok"
	OutcomeStored  = "stored"
	OutcomeSkipped = "skipped"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
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

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.StartMillis < 0 {
		return fmt.Errorf("start_ms must be non-negative")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, st *Step) error {
	switch st.Action {
	case "":
		return fmt.Errorf("steps[%d]: action is required", index)
	case ActionStore:
	case ActionFetchAll, ActionRelay, ActionReopen:
		if st.Value != nil || st.Raw != "" {
			return fmt.Errorf("steps[%d]: %s takes no value", index, st.Action)
		}
	case ActionTick:
		if st.AdvanceMillis <= 0 {
			return fmt.Errorf("steps[%d]: advance_ms must be positive for tick", index)
		}
	default:
		return fmt.Errorf("steps[%d]: unknown action %q", index, st.Action)
	}

	if st.Expect == nil {
		return nil
	}
	if st.Expect.Outcome == "" {
		return fmt.Errorf("steps[%d].expect: outcome is required", index)
	}
	if st.Expect.Count != nil && st.Action != ActionFetchAll && st.Action != ActionRelay {
		return fmt.Errorf("steps[%d].expect: count only applies to fetch_all and relay", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertRecordCount, AssertEventCount, AssertAckCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertValuesOrder:
		if a.Values == nil {
			return fmt.Errorf("assertions[%d]: values list is required for values_order", index)
		}
	case AssertIDsAscending:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
