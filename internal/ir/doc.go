// Package ir provides the shared types of the lateinit conformance tooling.
//
// This package contains type definitions and value helpers only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float values in scenarios (traces must render identically on every run)
//   - Undefined is a value of its own, distinct from Null
//   - All JSON tags use snake_case
//   - Logical clocks (seq) only, never wall-clock timestamps
package ir
