package compiler

import (
	"fmt"
	"regexp"

	"github.com/roach88/lateinit/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	ErrClassNameInvalid    = "E101" // class name is empty or not an identifier
	ErrClassNoProperties   = "E102" // at least one property required
	ErrInvalidMode         = "E103" // mode is not mutable/readonly
	ErrInvalidPropertyName = "E104" // property name is not an identifier
	ErrDuplicateName       = "E105" // duplicate property name
)

// identifier matches class and property names usable from scenarios
// (targets are written "instance.property").
var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates a compiled class against schema rules.
// Returns all errors found (does not fail-fast).
func Validate(v any) []ValidationError {
	switch spec := v.(type) {
	case *ir.ClassSpec:
		return validateClassSpec(spec)
	case ir.ClassSpec:
		return validateClassSpec(&spec)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

func validateClassSpec(spec *ir.ClassSpec) []ValidationError {
	var errs []ValidationError

	if !identifier.MatchString(spec.Name) {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("class name %q must be an identifier", spec.Name),
			Code:    ErrClassNameInvalid,
		})
	}

	if len(spec.Properties) == 0 {
		errs = append(errs, ValidationError{
			Field:   "properties",
			Message: "at least one property is required",
			Code:    ErrClassNoProperties,
		})
	}

	seen := make(map[string]bool)
	for i, p := range spec.Properties {
		field := fmt.Sprintf("properties[%d]", i)

		if !identifier.MatchString(p.Name) {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("property name %q must be an identifier", p.Name),
				Code:    ErrInvalidPropertyName,
			})
		}
		if seen[p.Name] {
			errs = append(errs, ValidationError{
				Field:   field + ".name",
				Message: fmt.Sprintf("duplicate property name: %q", p.Name),
				Code:    ErrDuplicateName,
			})
		}
		seen[p.Name] = true

		if !ir.ValidModes[p.Mode] {
			errs = append(errs, ValidationError{
				Field:   field + ".mode",
				Message: fmt.Sprintf("invalid mode %q (must be %s or %s)", p.Mode, ir.ModeMutable, ir.ModeReadonly),
				Code:    ErrInvalidMode,
			})
		}
	}

	return errs
}
