package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/lateinit/internal/ir"
)

// CompileFile compiles every class declared in a single CUE file.
func CompileFile(path string) ([]*ir.ClassSpec, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return CompileSource(path, src)
}

// CompileSource compiles CUE source text. The filename only labels error
// positions.
func CompileSource(filename string, src []byte) ([]*ir.ClassSpec, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileClasses(v)
}

// CompileClasses compiles each field of the top-level "class" struct, in
// declaration order.
func CompileClasses(v cue.Value) ([]*ir.ClassSpec, error) {
	classVal := v.LookupPath(cue.ParsePath("class"))
	if !classVal.Exists() {
		return nil, &CompileError{
			Field:   "class",
			Message: "no class declarations found",
			Pos:     v.Pos(),
		}
	}

	iter, err := classVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var specs []*ir.ClassSpec
	for iter.Next() {
		spec, err := CompileClass(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", iter.Label(), err)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
