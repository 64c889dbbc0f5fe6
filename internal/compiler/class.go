package compiler

import (
	"fmt"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"golang.org/x/text/cases"

	"github.com/roach88/lateinit/internal/ir"
)

// modeFolder normalizes mode spellings ("Readonly", "READONLY") before lookup.
var modeFolder = cases.Fold()

// CompileClass parses a CUE value into a ClassSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the class struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`class: C: { property: p: { mode: "mutable" } }`)
//	spec, err := CompileClass(v.LookupPath(cue.ParsePath("class.C")))
func CompileClass(v cue.Value) (*ir.ClassSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.ClassSpec{}

	// Class name comes from the struct label (the path selector)
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = unquoteLabel(labels[len(labels)-1].String())
	}

	// Purpose is optional
	purposeVal := v.LookupPath(cue.ParsePath("purpose"))
	if purposeVal.Exists() {
		purpose, err := purposeVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		spec.Purpose = purpose
	}

	props, err := parseProperties(v)
	if err != nil {
		return nil, err
	}
	if len(props) == 0 {
		return nil, &CompileError{
			Field:   "property",
			Message: "at least one property is required",
			Pos:     v.Pos(),
		}
	}
	spec.Properties = props

	return spec, nil
}

// parseProperties extracts guarded property declarations, sorted by name.
func parseProperties(v cue.Value) ([]ir.PropertySpec, error) {
	var props []ir.PropertySpec

	propVal := v.LookupPath(cue.ParsePath("property"))
	if !propVal.Exists() {
		return props, nil
	}

	iter, err := propVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		name := iter.Label()
		pv := iter.Value()

		modeVal := pv.LookupPath(cue.ParsePath("mode"))
		if !modeVal.Exists() {
			return nil, &CompileError{
				Field:   "mode",
				Message: fmt.Sprintf("property %s: mode is required", name),
				Pos:     pv.Pos(),
			}
		}
		rawMode, err := modeVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		mode, ok := parseMode(rawMode)
		if !ok {
			return nil, &CompileError{
				Field:   "mode",
				Message: fmt.Sprintf("property %s: invalid mode %q (must be %s or %s)", name, rawMode, ir.ModeMutable, ir.ModeReadonly),
				Pos:     modeVal.Pos(),
			}
		}

		prop := ir.PropertySpec{Name: name, Mode: mode}

		ignoreVal := pv.LookupPath(cue.ParsePath("ignore_initial_undefined"))
		if ignoreVal.Exists() {
			ignore, err := ignoreVal.Bool()
			if err != nil {
				return nil, formatCUEError(err)
			}
			prop.IgnoreInitialUndefined = ignore
		}

		props = append(props, prop)
	}

	slices.SortFunc(props, func(a, b ir.PropertySpec) int {
		return strings.Compare(a.Name, b.Name)
	})
	return props, nil
}

// parseMode folds case so "Readonly" and "READONLY" are accepted.
func parseMode(s string) (string, bool) {
	mode := modeFolder.String(strings.TrimSpace(s))
	return mode, ir.ValidModes[mode]
}

// unquoteLabel strips the quotes CUE keeps on string labels ("my-class").
func unquoteLabel(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &CompileError{Field: "cue", Message: err.Error()}
	}

	// Report the first error, with its position when CUE has one
	firstErr := errs[0]
	ce := &CompileError{Field: "cue", Message: firstErr.Error()}
	if positions := errors.Positions(firstErr); len(positions) > 0 {
		ce.Pos = positions[0]
	}
	return ce
}
