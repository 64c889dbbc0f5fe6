package lateinit

import (
	"reflect"
	"unsafe"
)

// TagName is the struct tag that names a slot field for IsInitialized.
const TagName = "lateinit"

// propertyInspector is implemented by instances that track their own slots
// by name, such as *Instance.
type propertyInspector interface {
	IsInitialized(name string) bool
}

var initializedType = reflect.TypeOf((*initialized)(nil)).Elem()

// IsInitialized reports whether the property called name has a committed
// value on instance. It never fails: nil instances, non-struct values, names
// that are not guarded, untouched slots and slots whose first undefined write
// was suppressed all report false.
//
// Instances that implement IsInitialized(name string) bool are asked
// directly. Otherwise instance must be a struct or a pointer to one, and the
// property is the Slot field whose `lateinit` tag equals name, or the untagged
// Slot field whose Go name equals name. Unexported fields are supported.
func IsInitialized(instance any, name string) bool {
	if instance == nil {
		return false
	}
	if pi, ok := instance.(propertyInspector); ok {
		return pi.IsInitialized(name)
	}

	v := reflect.ValueOf(instance)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return false
	}
	if !v.CanAddr() {
		// Copy so fields are addressable; slots are read, never written.
		cp := reflect.New(v.Type()).Elem()
		cp.Set(v)
		v = cp
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !fieldMatches(sf, name) {
			continue
		}
		if slot, ok := slotOf(v.Field(i)); ok {
			return slot.IsInitialized()
		}
	}
	return false
}

func fieldMatches(sf reflect.StructField, name string) bool {
	if tag, ok := sf.Tag.Lookup(TagName); ok {
		return tag == name
	}
	return sf.Name == name
}

// slotOf returns the slot stored in an addressable field, reading through
// unexported fields without going through Interface on them.
func slotOf(f reflect.Value) (initialized, bool) {
	ft := f.Type()
	ptr := reflect.NewAt(ft, unsafe.Pointer(f.UnsafeAddr()))

	switch {
	case ft.Kind() == reflect.Pointer && ft.Implements(initializedType):
		elem := ptr.Elem()
		if elem.IsNil() {
			return nil, false
		}
		s, ok := elem.Interface().(initialized)
		return s, ok
	case ft.Kind() != reflect.Pointer && reflect.PointerTo(ft).Implements(initializedType):
		s, ok := ptr.Interface().(initialized)
		return s, ok
	default:
		return nil, false
	}
}
