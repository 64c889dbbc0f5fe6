package lateinit

// Slot holds the per-instance state of one guarded property.
//
// The zero value is an unset slot. A slot belongs to exactly one instance and
// is only changed through an Accessor. Do not copy a slot after first use.
type Slot[T any] struct {
	value     T
	defined   bool // false when the committed value is undefined
	set       bool
	attempted bool // a write was attempted, even if it was suppressed
}

// IsInitialized reports whether a value has been committed to the slot.
// A nil slot is never initialized.
func (s *Slot[T]) IsInitialized() bool {
	return s != nil && s.set
}

// initialized is implemented by every *Slot[T]; the inspector uses it to
// recognize slot fields without knowing T.
type initialized interface {
	IsInitialized() bool
}
