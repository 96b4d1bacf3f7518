package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/blobrelay/internal/record"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string          // Assertion type for categorization
	Expected string          // Human-readable expected outcome
	Actual   string          // Human-readable actual outcome
	Records  []record.Record // Final records for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Records) > 0 {
		fmt.Fprintf(&buf, "\nFinal records:\n")
		for i, rec := range e.Records {
			fmt.Fprintf(&buf, "  [%d] %d %s\n", i+1, rec.ID, rec.Value)
		}
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against result and returns
// one message per failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluateAssertion(result *Result, a Assertion) error {
	switch a.Type {
	case AssertRecordCount:
		return assertRecordCount(result.Records, a)
	case AssertValuesOrder:
		return assertValuesOrder(result.Records, a)
	case AssertIDsAscending:
		return assertIDsAscending(result.Records)
	case AssertEventCount:
		return assertCount(AssertEventCount, "events", len(result.Events), a.Count)
	case AssertAckCount:
		return assertCount(AssertAckCount, "acknowledgements", result.Acks, a.Count)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func assertRecordCount(recs []record.Record, a Assertion) error {
	if len(recs) != a.Count {
		return &AssertionError{
			Type:     AssertRecordCount,
			Expected: fmt.Sprintf("%d records", a.Count),
			Actual:   fmt.Sprintf("%d records", len(recs)),
			Records:  recs,
		}
	}
	return nil
}

// assertValuesOrder compares values structurally: both sides are
// re-encoded so key order and whitespace do not matter.
func assertValuesOrder(recs []record.Record, a Assertion) error {
	if len(recs) != len(a.Values) {
		return &AssertionError{
			Type:     AssertValuesOrder,
			Expected: fmt.Sprintf("%d values", len(a.Values)),
			Actual:   fmt.Sprintf("%d records", len(recs)),
			Records:  recs,
		}
	}

	for i, want := range a.Values {
		wantJSON, err := json.Marshal(want)
		if err != nil {
			return fmt.Errorf("values[%d]: %w", i, err)
		}
		gotJSON, err := normalize(recs[i].Value)
		if err != nil {
			return fmt.Errorf("record %d: %w", recs[i].ID, err)
		}
		if !bytes.Equal(wantJSON, gotJSON) {
			return &AssertionError{
				Type:     AssertValuesOrder,
				Expected: fmt.Sprintf("value %d = %s", i, wantJSON),
				Actual:   fmt.Sprintf("value %d = %s", i, gotJSON),
				Records:  recs,
			}
		}
	}
	return nil
}

func assertIDsAscending(recs []record.Record) error {
	for i := 1; i < len(recs); i++ {
		if recs[i-1].ID >= recs[i].ID {
			return &AssertionError{
				Type:     AssertIDsAscending,
				Expected: "strictly increasing keys",
				Actual: fmt.Sprintf("key %d (pos %d) is not below key %d (pos %d)",
					recs[i-1].ID, i, recs[i].ID, i+1),
				Records: recs,
			}
		}
	}
	return nil
}

func assertCount(kind, noun string, got, want int) error {
	if got != want {
		return &AssertionError{
			Type:     kind,
			Expected: fmt.Sprintf("%d %s", want, noun),
			Actual:   fmt.Sprintf("%d %s", got, noun),
		}
	}
	return nil
}

// normalize decodes and re-encodes a stored value.
func normalize(raw json.RawMessage) ([]byte, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}
