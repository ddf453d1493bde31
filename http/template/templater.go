package template

import "context"

// CapabilityName is the name of the capability template backends provide.
const CapabilityName = "Template"

// Templater is the contract every template backend satisfies.
type Templater interface {
	// SetTemplateDir sets the root directory templates are found in.
	// It must be called before LoadTemplate.
	SetTemplateDir(path string)

	// PersistTemplateVar binds value to name for every subsequent render.
	PersistTemplateVar(name string, value any)

	// LoadTemplate renders the template identified by name with vars
	// layered over any persisted variables.
	LoadTemplate(ctx context.Context, name string, vars map[string]any, cacheID string) (string, error)

	// TemplateExists asserts whether name can be found without rendering it.
	TemplateExists(name string) bool

	// RegisterPlugin adds an extension to the backend.
	// The meaning of kind and callback is defined by the backend.
	RegisterPlugin(kind, name string, callback any) error
}

// Extender is satisfied only by types embedding Base.
type Extender interface {
	templateBase()
}

// Base is embedded by every template backend.
type Base struct{}

func (Base) templateBase() {}
