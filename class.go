package lateinit

import "fmt"

// PropertyDef declares one guarded property of a Class.
type PropertyDef struct {
	Name    string
	Mode    Mode
	Options Options
}

// Class is a set of guarded properties installed once and shared by all of
// its instances.
type Class struct {
	name      string
	props     []PropertyDef
	accessors map[string]*Accessor[any]
}

// NewClass installs an accessor for every property. Property names must be
// non-empty and unique within the class.
func NewClass(name string, props ...PropertyDef) (*Class, error) {
	c := &Class{
		name:      name,
		props:     make([]PropertyDef, 0, len(props)),
		accessors: make(map[string]*Accessor[any], len(props)),
	}
	for i, p := range props {
		if p.Name == "" {
			return nil, fmt.Errorf("class %s: property[%d]: name is required", name, i)
		}
		if _, dup := c.accessors[p.Name]; dup {
			return nil, fmt.Errorf("class %s: duplicate property %s", name, p.Name)
		}
		c.accessors[p.Name] = Install[any](p.Name, p.Mode, p.Options)
		c.props = append(c.props, p)
	}
	return c, nil
}

// Name returns the class name.
func (c *Class) Name() string { return c.name }

// Properties returns the declared properties in declaration order.
func (c *Class) Properties() []PropertyDef {
	out := make([]PropertyDef, len(c.props))
	copy(out, c.props)
	return out
}

// Accessor returns the installed accessor for a property.
func (c *Class) Accessor(name string) (*Accessor[any], bool) {
	a, ok := c.accessors[name]
	return a, ok
}

// New constructs an instance with every property unset.
func (c *Class) New() *Instance {
	return &Instance{class: c}
}

// Instance is one object of a Class. It owns its slots; slots are created on
// first write. Instances come from Class.New; a nil or zero Instance has no
// properties.
type Instance struct {
	class *Class
	slots map[string]*Slot[any]
}

// Class returns the instance's class.
func (i *Instance) Class() *Class { return i.class }

// Get reads a guarded property.
func (i *Instance) Get(name string) (any, error) {
	v, _, err := i.Lookup(name)
	return v, err
}

// Lookup reads a guarded property and reports whether the committed value is
// defined.
func (i *Instance) Lookup(name string) (any, bool, error) {
	a, err := i.accessor(name)
	if err != nil {
		return nil, false, err
	}
	// Reads never create a slot; a missing slot reads as unset.
	return a.Lookup(i.slots[name])
}

// Set writes a defined value to a guarded property.
func (i *Instance) Set(name string, v any) error {
	a, err := i.accessor(name)
	if err != nil {
		return err
	}
	return a.Set(i.slot(name), v)
}

// SetUndefined writes undefined to a guarded property.
func (i *Instance) SetUndefined(name string) error {
	a, err := i.accessor(name)
	if err != nil {
		return err
	}
	return a.SetUndefined(i.slot(name))
}

// IsInitialized reports whether the named property has a committed value.
// Unknown names and nil instances report false.
func (i *Instance) IsInitialized(name string) bool {
	if i == nil {
		return false
	}
	s, ok := i.slots[name]
	return ok && s.IsInitialized()
}

func (i *Instance) accessor(name string) (*Accessor[any], error) {
	if i == nil || i.class == nil {
		return nil, &UnknownPropertyError{Property: name}
	}
	a, ok := i.class.accessors[name]
	if !ok {
		return nil, &UnknownPropertyError{Class: i.class.name, Property: name}
	}
	return a, nil
}

func (i *Instance) slot(name string) *Slot[any] {
	if i.slots == nil {
		i.slots = make(map[string]*Slot[any], len(i.class.props))
	}
	s, ok := i.slots[name]
	if !ok {
		s = &Slot[any]{}
		i.slots[name] = s
	}
	return s
}
