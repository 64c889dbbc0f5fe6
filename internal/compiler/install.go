package compiler

import (
	"fmt"

	"github.com/roach88/lateinit"
	"github.com/roach88/lateinit/internal/ir"
)

// Install validates a class spec and installs its accessors, returning the
// class ready to construct instances.
func Install(spec *ir.ClassSpec) (*lateinit.Class, error) {
	if errs := Validate(spec); len(errs) > 0 {
		return nil, fmt.Errorf("class %s: %w", spec.Name, errs[0])
	}

	defs := make([]lateinit.PropertyDef, 0, len(spec.Properties))
	for _, p := range spec.Properties {
		mode := lateinit.Mutable
		if p.Mode == ir.ModeReadonly {
			mode = lateinit.Readonly
		}
		defs = append(defs, lateinit.PropertyDef{
			Name:    p.Name,
			Mode:    mode,
			Options: lateinit.Options{IgnoreInitialUndefined: p.IgnoreInitialUndefined},
		})
	}

	return lateinit.NewClass(spec.Name, defs...)
}
