package lateinit

import "fmt"

// Mode selects what happens when an initialized property is written again.
type Mode int

const (
	// Mutable properties may be overwritten any number of times.
	Mutable Mode = iota
	// Readonly properties may be committed once; later writes fail.
	Readonly
)

// String returns "mutable" or "readonly".
func (m Mode) String() string {
	switch m {
	case Mutable:
		return "mutable"
	case Readonly:
		return "readonly"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Options configures an Accessor at installation time.
type Options struct {
	// IgnoreInitialUndefined drops the first write attempt on a slot when it
	// is undefined. Useful when generic instantiation assigns undefined to
	// every field before the real initialization runs.
	IgnoreInitialUndefined bool
}

// Accessor is the installed getter/setter pair for one guarded property.
// It is immutable and shared by every instance; per-instance state lives in
// the Slot passed to each call.
type Accessor[T any] struct {
	name string
	mode Mode
	opts Options
}

// Install creates the accessor for property name. When several Options are
// given the last one wins. Install panics if name is empty.
func Install[T any](name string, mode Mode, opts ...Options) *Accessor[T] {
	if name == "" {
		panic("lateinit: property name must not be empty")
	}
	a := &Accessor[T]{name: name, mode: mode}
	if len(opts) > 0 {
		a.opts = opts[len(opts)-1]
	}
	return a
}

// LateInit installs a Mutable accessor.
func LateInit[T any](name string, opts ...Options) *Accessor[T] {
	return Install[T](name, Mutable, opts...)
}

// ReadonlyLateInit installs a Readonly accessor.
func ReadonlyLateInit[T any](name string, opts ...Options) *Accessor[T] {
	return Install[T](name, Readonly, opts...)
}

// Name returns the guarded property name.
func (a *Accessor[T]) Name() string { return a.name }

// Mode returns the installed mode.
func (a *Accessor[T]) Mode() Mode { return a.mode }

// Options returns the installed options.
func (a *Accessor[T]) Options() Options { return a.opts }

// Get returns the committed value. It fails with *NotInitializedError when
// nothing has been committed. A committed undefined reads as the zero T.
func (a *Accessor[T]) Get(s *Slot[T]) (T, error) {
	v, _, err := a.Lookup(s)
	return v, err
}

// Lookup is Get that also reports whether the committed value is defined.
func (a *Accessor[T]) Lookup(s *Slot[T]) (v T, defined bool, err error) {
	if !s.IsInitialized() {
		return v, false, &NotInitializedError{Property: a.name}
	}
	return s.value, s.defined, nil
}

// MustGet is like Get but panics with the *NotInitializedError.
func (a *Accessor[T]) MustGet(s *Slot[T]) T {
	v, err := a.Get(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Set commits v.
func (a *Accessor[T]) Set(s *Slot[T], v T) error {
	return a.write(s, v, true)
}

// SetUndefined commits an explicit undefined value, unless it is the first
// write attempt on a slot whose accessor ignores an initial undefined.
func (a *Accessor[T]) SetUndefined(s *Slot[T]) error {
	var zero T
	return a.write(s, zero, false)
}

// IsInitialized reports whether s holds a committed value.
func (a *Accessor[T]) IsInitialized(s *Slot[T]) bool {
	return s.IsInitialized()
}

func (a *Accessor[T]) write(s *Slot[T], v T, defined bool) error {
	if s == nil {
		panic(fmt.Sprintf("lateinit: write to nil slot for property %s", a.name))
	}
	if a.opts.IgnoreInitialUndefined && !defined && !s.attempted && !s.set {
		s.attempted = true
		return nil
	}
	if a.mode == Readonly && s.set {
		return &AlreadyInitializedError{Property: a.name}
	}
	s.value = v
	s.defined = defined
	s.set = true
	s.attempted = true
	return nil
}
