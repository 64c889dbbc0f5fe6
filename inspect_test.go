package lateinit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tagged struct {
	addr    Slot[string] `lateinit:"address"`
	Port    Slot[int]
	timeout *Slot[int]
	plain   string
}

var (
	taggedAddr    = ReadonlyLateInit[string]("address")
	taggedPort    = LateInit[int]("Port")
	taggedTimeout = LateInit[int]("timeout")
)

func TestIsInitialized_Struct(t *testing.T) {
	v := &tagged{timeout: &Slot[int]{}}

	assert.False(t, IsInitialized(v, "address"))
	assert.False(t, IsInitialized(v, "Port"))
	assert.False(t, IsInitialized(v, "timeout"))

	require.NoError(t, taggedAddr.Set(&v.addr, "localhost"))
	require.NoError(t, taggedPort.Set(&v.Port, 8080))
	require.NoError(t, taggedTimeout.Set(v.timeout, 30))

	assert.True(t, IsInitialized(v, "address"))
	assert.True(t, IsInitialized(v, "Port"))
	assert.True(t, IsInitialized(v, "timeout"))
}

func TestIsInitialized_TagOverridesFieldName(t *testing.T) {
	v := &tagged{}
	require.NoError(t, taggedAddr.Set(&v.addr, "localhost"))

	assert.True(t, IsInitialized(v, "address"))
	assert.False(t, IsInitialized(v, "addr"), "tagged field is only found by its tag")
}

func TestIsInitialized_StructValue(t *testing.T) {
	v := tagged{}
	require.NoError(t, taggedPort.Set(&v.Port, 1))

	assert.True(t, IsInitialized(v, "Port"))
	assert.False(t, IsInitialized(v, "address"))
}

func TestIsInitialized_NotGuarded(t *testing.T) {
	v := &tagged{plain: "x"}

	tests := []struct {
		name     string
		instance any
		property string
	}{
		{"nil instance", nil, "address"},
		{"nil pointer", (*tagged)(nil), "address"},
		{"non-struct", 42, "address"},
		{"unknown property", v, "missing"},
		{"plain field", v, "plain"},
		{"nil slot pointer", v, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, IsInitialized(tt.instance, tt.property))
			})
		})
	}
}

func TestIsInitialized_NilInstance(t *testing.T) {
	var inst *Instance

	assert.NotPanics(t, func() {
		assert.False(t, IsInitialized(inst, "p"))
	})
	assert.False(t, IsInitialized(&Instance{}, "p"))
}

func TestIsInitialized_Suppressed(t *testing.T) {
	a := LateInit[string]("p", Options{IgnoreInitialUndefined: true})
	v := &struct {
		p Slot[string]
	}{}

	require.NoError(t, a.SetUndefined(&v.p))
	assert.False(t, IsInitialized(v, "p"))

	require.NoError(t, a.Set(&v.p, "x"))
	assert.True(t, IsInitialized(v, "p"))
}

func TestIsInitialized_DoesNotMutate(t *testing.T) {
	v := &tagged{}

	for i := 0; i < 3; i++ {
		assert.False(t, IsInitialized(v, "Port"))
	}
	_, err := taggedPort.Get(&v.Port)
	assert.True(t, IsNotInitialized(err))
}

func TestIsInitialized_Instance(t *testing.T) {
	c, err := NewClass("C", PropertyDef{Name: "p"})
	require.NoError(t, err)
	obj := c.New()

	assert.False(t, IsInitialized(obj, "p"))
	require.NoError(t, obj.Set("p", "a"))
	assert.True(t, IsInitialized(obj, "p"))
	assert.False(t, IsInitialized(obj, "q"))
}
