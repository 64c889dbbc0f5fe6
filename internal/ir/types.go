package ir

// ClassSpec is a compiled class declaration: a named set of guarded properties.
type ClassSpec struct {
	Name       string         `json:"name"`
	Purpose    string         `json:"purpose,omitempty"`
	Properties []PropertySpec `json:"properties"`
}

// PropertySpec declares one guarded property.
type PropertySpec struct {
	Name                   string `json:"name"`
	Mode                   string `json:"mode"` // "mutable" or "readonly"
	IgnoreInitialUndefined bool   `json:"ignore_initial_undefined"`
}

// Property mode names as written in class declarations.
const (
	ModeMutable  = "mutable"
	ModeReadonly = "readonly"
)

// ValidModes defines allowed property modes.
var ValidModes = map[string]bool{
	ModeMutable:  true,
	ModeReadonly: true,
}

// Property returns the named property, if declared.
func (c *ClassSpec) Property(name string) (PropertySpec, bool) {
	for _, p := range c.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return PropertySpec{}, false
}
