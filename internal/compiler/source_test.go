package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileSource_MultipleClasses(t *testing.T) {
	specs, err := CompileSource("classes.cue", []byte(`
		class: C: property: p: mode: "mutable"
		class: D: property: q: mode: "readonly"
	`))
	require.NoError(t, err)
	require.Len(t, specs, 2)

	assert.Equal(t, "C", specs[0].Name)
	assert.Equal(t, "D", specs[1].Name)
}

func TestCompileSource_NoClasses(t *testing.T) {
	_, err := CompileSource("empty.cue", []byte(`other: 1`))
	require.Error(t, err)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "class", ce.Field)
}

func TestCompileSource_SyntaxError(t *testing.T) {
	_, err := CompileSource("broken.cue", []byte(`class: C: {`))
	require.Error(t, err)

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "cue", ce.Field)
}

func TestCompileSource_WrapsClassName(t *testing.T) {
	_, err := CompileSource("bad.cue", []byte(`class: Broken: property: p: mode: "frozen"`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "class Broken")

	var ce *CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "mode", ce.Field)
}

func TestCompileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classes.cue")
	require.NoError(t, os.WriteFile(path, []byte(`class: C: property: p: mode: "mutable"`), 0644))

	specs, err := CompileFile(path)
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "C", specs[0].Name)
}

func TestCompileFile_Missing(t *testing.T) {
	_, err := CompileFile(filepath.Join(t.TempDir(), "nope.cue"))
	assert.Error(t, err)
}
