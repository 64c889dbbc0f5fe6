package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/lateinit/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  %s\n", event)
		}
	}

	return buf.String()
}

// eventPattern selects trace events. Empty fields match anything.
type eventPattern struct {
	Op      string
	Target  string
	Outcome string
}

func (p eventPattern) matches(ev TraceEvent) bool {
	return (p.Op == "" || p.Op == ev.Op) &&
		(p.Target == "" || p.Target == ev.Target) &&
		(p.Outcome == "" || p.Outcome == ev.Outcome)
}

func (p eventPattern) String() string {
	return strings.Join(strings.Fields(p.Op+" "+p.Target+" "+p.Outcome), " ")
}

// parseEventPattern parses "op target [outcome]".
func parseEventPattern(s string) (eventPattern, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 || len(fields) > 3 {
		return eventPattern{}, fmt.Errorf("pattern %q must be \"op target [outcome]\"", s)
	}
	p := eventPattern{Op: fields[0], Target: fields[1]}
	if !validOps[p.Op] {
		return eventPattern{}, fmt.Errorf("pattern %q: invalid op %q", s, p.Op)
	}
	if len(fields) == 3 {
		p.Outcome = fields[2]
		if !validOutcomes[p.Outcome] {
			return eventPattern{}, fmt.Errorf("pattern %q: unknown outcome %q", s, p.Outcome)
		}
	}
	return p, nil
}

func patternOf(a Assertion) eventPattern {
	return eventPattern{Op: a.Op, Target: a.Target, Outcome: a.Outcome}
}

// expectedValue returns the value an assertion requires, if any.
func expectedValue(a Assertion) (ir.Value, bool) {
	if a.Undefined {
		return ir.Undefined{}, true
	}
	v, present, err := nodeValue(&a.Value)
	if err != nil {
		return nil, false
	}
	return v, present
}

// assertTraceContains checks that some event matches the assertion's
// pattern and, if given, its value.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	p := patternOf(assertion)
	want, hasValue := expectedValue(assertion)

	for _, event := range trace {
		if !p.matches(event) {
			continue
		}
		if hasValue && event.Value != ir.Render(want) {
			continue
		}
		return nil
	}

	expected := fmt.Sprintf("event matching %q", p.String())
	if hasValue {
		expected += " with value " + ir.Render(want)
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the patterns match events in order.
// Events don't need to be consecutive (intervening events are allowed), and
// each event satisfies at most one pattern.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	patterns := make([]eventPattern, len(assertion.Events))
	for i, s := range assertion.Events {
		p, err := parseEventPattern(s)
		if err != nil {
			return err
		}
		patterns[i] = p
	}

	next := 0
	for _, event := range trace {
		if next < len(patterns) && patterns[next].matches(event) {
			next++
		}
	}

	if next < len(patterns) {
		return &AssertionError{
			Type:     AssertTraceOrder,
			Expected: fmt.Sprintf("events in order: %v", assertion.Events),
			Actual:   fmt.Sprintf("no match for %q after %d matched events", patterns[next].String(), next),
			Trace:    trace,
		}
	}
	return nil
}

// assertTraceCount checks that exactly Count events match the pattern.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	p := patternOf(assertion)

	count := 0
	for _, event := range trace {
		if p.matches(event) {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d events matching %q", assertion.Count, p.String()),
			Actual:   fmt.Sprintf("%d events", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalState checks a live instance property after all steps ran.
// The property is inspected and read directly; the trace is not consulted.
func assertFinalState(result *Result, assertion Assertion) error {
	name, prop, ok := splitTarget(assertion.Target)
	if !ok {
		return fmt.Errorf("final_state: invalid target %q", assertion.Target)
	}
	if assertion.Initialized == nil {
		return fmt.Errorf("final_state: initialized is required")
	}

	inst, ok := result.Instances[name]
	if !ok {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("instance %s", name),
			Actual:   "instance not found",
		}
	}

	initialized := inst.IsInitialized(prop)
	if initialized != *assertion.Initialized {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s initialized=%t", assertion.Target, *assertion.Initialized),
			Actual:   fmt.Sprintf("initialized=%t", initialized),
		}
	}

	want, hasValue := expectedValue(assertion)
	if !initialized || !hasValue {
		return nil
	}

	v, defined, err := inst.Lookup(prop)
	if err != nil {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s = %s", assertion.Target, ir.Render(want)),
			Actual:   err.Error(),
		}
	}
	var got ir.Value = ir.Undefined{}
	if defined {
		got, _ = v.(ir.Value)
	}
	if !ir.Equal(want, got) {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s = %s", assertion.Target, ir.Render(want)),
			Actual:   fmt.Sprintf("%s = %s", assertion.Target, ir.Render(got)),
		}
	}
	return nil
}

// EvaluateAssertions runs all assertions against a result.
// Returns a list of error messages (empty if all pass).
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertFinalState:
			err = assertFinalState(result, assertion)
		default:
			err = fmt.Errorf("unknown assertion type: %s", assertion.Type)
		}

		if err != nil {
			errors = append(errors, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}

	return errors
}
