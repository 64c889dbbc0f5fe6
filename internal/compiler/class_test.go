package compiler

import (
	"errors"
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lateinit"
	"github.com/roach88/lateinit/internal/ir"
)

func compileClass(t *testing.T, src, path string) (*ir.ClassSpec, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileClass(v.LookupPath(cue.ParsePath(path)))
}

func TestCompileClassBasic(t *testing.T) {
	spec, err := compileClass(t, `
		class: Conn: {
			purpose: "Connection with late-bound address"

			property: timeout: { mode: "mutable" }
			property: addr: {
				mode: "readonly"
				ignore_initial_undefined: true
			}
		}
	`, "class.Conn")
	require.NoError(t, err)

	assert.Equal(t, "Conn", spec.Name)
	assert.Equal(t, "Connection with late-bound address", spec.Purpose)
	require.Len(t, spec.Properties, 2)

	// Sorted by name
	assert.Equal(t, ir.PropertySpec{Name: "addr", Mode: ir.ModeReadonly, IgnoreInitialUndefined: true}, spec.Properties[0])
	assert.Equal(t, ir.PropertySpec{Name: "timeout", Mode: ir.ModeMutable}, spec.Properties[1])
}

func TestCompileClass_ModeIsCaseInsensitive(t *testing.T) {
	spec, err := compileClass(t, `
		class: D: property: q: mode: "ReadOnly"
	`, "class.D")
	require.NoError(t, err)
	assert.Equal(t, ir.ModeReadonly, spec.Properties[0].Mode)
}

func TestCompileClass_PurposeOptional(t *testing.T) {
	spec, err := compileClass(t, `class: C: property: p: mode: "mutable"`, "class.C")
	require.NoError(t, err)
	assert.Empty(t, spec.Purpose)
}

func TestCompileClass_Errors(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantField string
		wantMsg   string
	}{
		{
			name:      "no properties",
			src:       `class: C: purpose: "empty"`,
			wantField: "property",
			wantMsg:   "at least one property is required",
		},
		{
			name:      "missing mode",
			src:       `class: C: property: p: { ignore_initial_undefined: true }`,
			wantField: "mode",
			wantMsg:   "mode is required",
		},
		{
			name:      "invalid mode",
			src:       `class: C: property: p: mode: "frozen"`,
			wantField: "mode",
			wantMsg:   `invalid mode "frozen"`,
		},
		{
			name:      "mode wrong type",
			src:       `class: C: property: p: mode: 3`,
			wantField: "cue",
		},
		{
			name:      "ignore flag wrong type",
			src:       `class: C: property: p: { mode: "mutable", ignore_initial_undefined: "yes" }`,
			wantField: "cue",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileClass(t, tt.src, "class.C")
			require.Error(t, err)

			var ce *CompileError
			require.True(t, errors.As(err, &ce), "got %T: %v", err, err)
			assert.Equal(t, tt.wantField, ce.Field)
			if tt.wantMsg != "" {
				assert.Contains(t, ce.Message, tt.wantMsg)
			}
		})
	}
}

func TestCompileError_Format(t *testing.T) {
	err := &CompileError{Field: "mode", Message: "bad"}
	assert.Equal(t, "mode: bad", err.Error())
}

func TestInstall(t *testing.T) {
	spec := &ir.ClassSpec{
		Name: "D",
		Properties: []ir.PropertySpec{
			{Name: "p", Mode: ir.ModeMutable, IgnoreInitialUndefined: true},
			{Name: "q", Mode: ir.ModeReadonly},
		},
	}

	class, err := Install(spec)
	require.NoError(t, err)
	assert.Equal(t, "D", class.Name())

	p, ok := class.Accessor("p")
	require.True(t, ok)
	assert.Equal(t, lateinit.Mutable, p.Mode())
	assert.True(t, p.Options().IgnoreInitialUndefined)

	q, ok := class.Accessor("q")
	require.True(t, ok)
	assert.Equal(t, lateinit.Readonly, q.Mode())

	d := class.New()
	require.NoError(t, d.Set("q", ir.Int(1)))
	assert.True(t, lateinit.IsAlreadyInitialized(d.Set("q", ir.Int(2))))
}

func TestInstall_Invalid(t *testing.T) {
	_, err := Install(&ir.ClassSpec{Name: "C"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrClassNoProperties)
}
