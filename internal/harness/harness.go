package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/lateinit"
	"github.com/roach88/lateinit/internal/compiler"
	"github.com/roach88/lateinit/internal/ir"
	"github.com/roach88/lateinit/internal/store"
	"github.com/roach88/lateinit/internal/testutil"
)

// RunIDGenerator produces run ids for scenarios that do not pin one.
type RunIDGenerator interface {
	Generate() string
}

// Options configure a scenario run. The zero value runs without
// persistence, discards logs, and uses testutil.DefaultRunID.
type Options struct {
	// Store, if set, receives the run and its trace in one transaction.
	Store *store.Store

	// Logger receives step-level debug logs.
	Logger *slog.Logger

	// RunIDs generates the run id when the scenario has none.
	RunIDs RunIDGenerator
}

// Harness is the test execution engine.
// It runs scenario steps with a deterministic clock.
type Harness struct {
	classes   map[string]*lateinit.Class
	instances map[string]*lateinit.Instance
	clock     *testutil.SeqClock
	logger    *slog.Logger
}

// Run executes a test scenario with default options and returns the result.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithOptions(context.Background(), scenario, Options{})
}

// RunWithOptions executes a test scenario and returns the result.
//
// Execution flow:
// 1. Compile and install the classes from scenario.Specs
// 2. Execute steps against live instances, checking expect clauses
// 3. Evaluate assertions against the trace and the instances
// 4. Persist the run when a store is configured
//
// An error is returned only when the scenario cannot execute (bad specs,
// unknown class or instance). Failed expectations are reported in the result.
func RunWithOptions(ctx context.Context, scenario *Scenario, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	runID := scenario.RunID
	if runID == "" {
		gen := opts.RunIDs
		if gen == nil {
			gen = testutil.NewFixedRunID("")
		}
		runID = gen.Generate()
	}
	logger = logger.With("scenario", scenario.Name, "run_id", runID)

	classes, err := loadClasses(scenario.Specs)
	if err != nil {
		return nil, fmt.Errorf("failed to load specs: %w", err)
	}

	h := &Harness{
		classes:   classes,
		instances: make(map[string]*lateinit.Instance),
		clock:     testutil.NewSeqClock(),
		logger:    logger,
	}

	result := NewResult()
	result.RunID = runID
	result.Instances = h.instances

	for i := range scenario.Steps {
		if err := h.executeStep(i, &scenario.Steps[i], result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	logger.Info("scenario completed",
		"pass", result.Pass,
		"events", len(result.Trace),
		"errors", len(result.Errors),
	)

	if opts.Store != nil {
		if err := persist(ctx, opts.Store, scenario.Name, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// loadClasses compiles every spec file and installs its classes.
func loadClasses(paths []string) (map[string]*lateinit.Class, error) {
	classes := make(map[string]*lateinit.Class)
	for _, path := range paths {
		specs, err := compiler.CompileFile(path)
		if err != nil {
			return nil, err
		}
		for _, spec := range specs {
			if _, dup := classes[spec.Name]; dup {
				return nil, fmt.Errorf("%s: class %s already declared", path, spec.Name)
			}
			class, err := compiler.Install(spec)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			classes[spec.Name] = class
		}
	}
	return classes, nil
}

// executeStep runs one step, appends its trace event and checks its
// expect clause.
func (h *Harness) executeStep(index int, step *Step, result *Result) error {
	var (
		ev  TraceEvent
		err error
	)
	switch step.Op {
	case OpNew:
		ev, err = h.newInstance(step)
	case OpWrite:
		ev, err = h.write(step)
	case OpRead:
		ev, err = h.read(step)
	case OpInspect:
		ev, err = h.inspect(step)
	default:
		err = fmt.Errorf("unknown op %q", step.Op)
	}
	if err != nil {
		return err
	}

	// One tick per event
	ev.Seq = h.clock.Next()
	result.AddTrace(ev)

	h.logger.Debug("step executed",
		"step", index,
		"op", ev.Op,
		"target", ev.Target,
		"outcome", ev.Outcome,
		"value", ev.Value,
	)

	if step.Expect != nil {
		for _, msg := range checkExpect(step.Expect, ev) {
			result.AddError(fmt.Sprintf("steps[%d] %s %s: %s", index, ev.Op, ev.Target, msg))
		}
	}
	return nil
}

func (h *Harness) newInstance(step *Step) (TraceEvent, error) {
	class, ok := h.classes[step.Class]
	if !ok {
		return TraceEvent{}, fmt.Errorf("unknown class %q", step.Class)
	}
	if _, exists := h.instances[step.Target]; exists {
		return TraceEvent{}, fmt.Errorf("instance %q already exists", step.Target)
	}
	h.instances[step.Target] = class.New()
	return TraceEvent{Op: OpNew, Target: step.Target, Class: class.Name(), Outcome: OutcomeOK}, nil
}

func (h *Harness) write(step *Step) (TraceEvent, error) {
	inst, prop, err := h.resolve(step.Target)
	if err != nil {
		return TraceEvent{}, err
	}

	var value ir.Value = ir.Undefined{}
	if !step.Undefined {
		value, _, err = nodeValue(&step.Value)
		if err != nil {
			return TraceEvent{}, err
		}
	}

	ev := TraceEvent{Op: OpWrite, Target: step.Target, Value: ir.Render(value)}
	if step.Undefined {
		err = inst.SetUndefined(prop)
	} else {
		err = inst.Set(prop, value)
	}
	switch {
	case err == nil && !inst.IsInitialized(prop):
		// A nil error without a commit means the write was swallowed.
		ev.Outcome = OutcomeSuppressed
	case err == nil:
		ev.Outcome = OutcomeOK
	default:
		ev.Outcome, err = outcomeOf(err)
	}
	return ev, err
}

func (h *Harness) read(step *Step) (TraceEvent, error) {
	inst, prop, err := h.resolve(step.Target)
	if err != nil {
		return TraceEvent{}, err
	}

	ev := TraceEvent{Op: OpRead, Target: step.Target}
	v, defined, err := inst.Lookup(prop)
	if err != nil {
		ev.Outcome, err = outcomeOf(err)
		return ev, err
	}

	ev.Outcome = OutcomeOK
	if !defined {
		ev.Value = ir.Render(ir.Undefined{})
		return ev, nil
	}
	value, ok := v.(ir.Value)
	if !ok {
		return TraceEvent{}, fmt.Errorf("%s holds %T, not a scenario value", step.Target, v)
	}
	ev.Value = ir.Render(value)
	return ev, nil
}

func (h *Harness) inspect(step *Step) (TraceEvent, error) {
	inst, prop, err := h.resolve(step.Target)
	if err != nil {
		return TraceEvent{}, err
	}
	initialized := lateinit.IsInitialized(inst, prop)
	return TraceEvent{
		Op:      OpInspect,
		Target:  step.Target,
		Outcome: OutcomeOK,
		Value:   ir.Render(ir.Bool(initialized)),
	}, nil
}

// resolve finds the instance named by an "instance.property" target.
func (h *Harness) resolve(target string) (*lateinit.Instance, string, error) {
	name, prop, ok := splitTarget(target)
	if !ok {
		return nil, "", fmt.Errorf("invalid target %q", target)
	}
	inst, ok := h.instances[name]
	if !ok {
		return nil, "", fmt.Errorf("unknown instance %q (missing new step?)", name)
	}
	return inst, prop, nil
}

// outcomeOf maps a guard error to a trace outcome. Errors that are not
// guard errors are returned unchanged.
func outcomeOf(err error) (string, error) {
	var unknown *lateinit.UnknownPropertyError
	switch {
	case lateinit.IsNotInitialized(err):
		return OutcomeNotInitialized, nil
	case lateinit.IsAlreadyInitialized(err):
		return OutcomeAlreadyInitialized, nil
	case errors.As(err, &unknown):
		return OutcomeUnknownProperty, nil
	default:
		return "", err
	}
}

// checkExpect compares an event against a step's expect clause.
func checkExpect(e *Expect, ev TraceEvent) []string {
	var msgs []string

	if e.Outcome != "" && e.Outcome != ev.Outcome {
		msgs = append(msgs, fmt.Sprintf("expected outcome %s, got %s", e.Outcome, ev.Outcome))
	}

	want, present, err := nodeValue(&e.Value)
	if err != nil {
		return append(msgs, fmt.Sprintf("invalid expected value: %v", err))
	}
	if e.Undefined {
		want, present = ir.Undefined{}, true
	}
	if present && ir.Render(want) != ev.Value {
		msgs = append(msgs, fmt.Sprintf("expected value %s, got %s", ir.Render(want), displayValue(ev.Value)))
	}

	if e.Initialized != nil {
		if want := ir.Render(ir.Bool(*e.Initialized)); want != ev.Value {
			msgs = append(msgs, fmt.Sprintf("expected initialized %s, got %s", want, ev.Value))
		}
	}
	return msgs
}

// displayValue names the absent value of a failed read.
func displayValue(rendered string) string {
	if rendered == "" {
		return "no value"
	}
	return rendered
}

// persist writes the run and its trace to the store.
func persist(ctx context.Context, st *store.Store, scenario string, result *Result) error {
	run := ir.RunRecord{
		ID:       result.RunID,
		Scenario: scenario,
		Pass:     result.Pass,
		Events:   len(result.Trace),
	}
	events := make([]ir.EventRecord, len(result.Trace))
	for i, ev := range result.Trace {
		events[i] = ir.EventRecord{
			RunID:   result.RunID,
			Seq:     ev.Seq,
			Op:      ev.Op,
			Target:  ev.Target,
			Outcome: ev.Outcome,
			Value:   ev.Value,
		}
	}
	if err := st.WriteTrace(ctx, run, events); err != nil {
		return fmt.Errorf("failed to persist run: %w", err)
	}
	return nil
}
