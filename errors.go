package lateinit

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is. The structured errors below match them.
var (
	ErrNotInitialized     = errors.New("lateinit: property not initialized")
	ErrAlreadyInitialized = errors.New("lateinit: readonly property already initialized")
)

// NotInitializedError is returned when a guarded property is read before a
// value was committed.
type NotInitializedError struct {
	// Property is the guarded property name.
	Property string
}

func (e *NotInitializedError) Error() string {
	return fmt.Sprintf("lateinit: the property %s was not set", e.Property)
}

// Is reports whether target is ErrNotInitialized.
func (e *NotInitializedError) Is(target error) bool {
	return target == ErrNotInitialized
}

// AlreadyInitializedError is returned when a readonly property is written a
// second time. The first value is left untouched.
type AlreadyInitializedError struct {
	// Property is the guarded property name.
	Property string
}

func (e *AlreadyInitializedError) Error() string {
	return fmt.Sprintf("lateinit: the property %s was already set, and readonly properties cannot be set twice", e.Property)
}

// Is reports whether target is ErrAlreadyInitialized.
func (e *AlreadyInitializedError) Is(target error) bool {
	return target == ErrAlreadyInitialized
}

// UnknownPropertyError is returned by Instance when a property name was never
// declared on its Class.
type UnknownPropertyError struct {
	Class    string
	Property string
}

func (e *UnknownPropertyError) Error() string {
	if e.Class == "" {
		return fmt.Sprintf("lateinit: instance has no class, so no guarded property %s", e.Property)
	}
	return fmt.Sprintf("lateinit: class %s has no guarded property %s", e.Class, e.Property)
}

// IsNotInitialized returns true if err is, or wraps, a *NotInitializedError.
func IsNotInitialized(err error) bool {
	var ne *NotInitializedError
	return errors.As(err, &ne)
}

// IsAlreadyInitialized returns true if err is, or wraps, an *AlreadyInitializedError.
func IsAlreadyInitialized(err error) bool {
	var ae *AlreadyInitializedError
	return errors.As(err, &ae)
}

// PropertyOf returns the property name carried by a guard error, and false if
// err is not one.
func PropertyOf(err error) (string, bool) {
	var ne *NotInitializedError
	if errors.As(err, &ne) {
		return ne.Property, true
	}
	var ae *AlreadyInitializedError
	if errors.As(err, &ae) {
		return ae.Property, true
	}
	var ue *UnknownPropertyError
	if errors.As(err, &ue) {
		return ue.Property, true
	}
	return "", false
}
