// Package harness runs conformance scenarios against guarded properties.
//
// A scenario is a YAML file naming one or more CUE class declarations and a
// list of steps. Each step creates an instance, writes a value, reads a
// value, or inspects whether a property is initialized:
//
//	name: readonly_basic
//	description: "Second readonly write fails and keeps the first value"
//	specs: [classes.cue]
//	steps:
//	  - {op: new, target: d, class: D}
//	  - {op: write, target: d.q, value: "x"}
//	  - {op: write, target: d.q, value: "y", expect: {outcome: already_initialized}}
//	  - {op: read, target: d.q, expect: {outcome: ok, value: "x"}}
//	assertions:
//	  - {type: final_state, target: d.q, initialized: true, value: "x"}
//
// Steps execute against real lateinit instances. Every step yields exactly
// one trace event stamped by a deterministic sequence clock, so identical
// scenarios produce byte-identical traces for golden comparison.
//
// Outcomes recorded in the trace:
//
//	ok                   the operation completed
//	suppressed           an initial undefined write was ignored
//	not_initialized      a read found no committed value
//	already_initialized  a readonly property rejected a second write
//	unknown_property     the class declares no such property
package harness
