package factory

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

const settingsSection = "factory_settings"

// A Configurer looks up the value of key in section or returns def.
//
// *config.Store implements Configurer.
type Configurer interface {
	Get(section, key, def string) string
}

// A Capability names an abstract service and the interfaces
// every implementation of it must satisfy.
type Capability struct {
	Name string

	// Base is satisfied by embedding the capability's base struct.
	Base reflect.Type

	// Interface is the capability's contract.
	Interface reflect.Type
}

// NewCapability constructs a Capability from the Base and Interface type parameters,
// both of which must be interface types.
func NewCapability[Base, Interface any](name string) Capability {
	return Capability{
		Name:      name,
		Base:      reflect.TypeOf((*Base)(nil)).Elem(),
		Interface: reflect.TypeOf((*Interface)(nil)).Elem(),
	}
}

// check asserts t satisfies both of c's requirements.
func (c Capability) check(t reflect.Type) error {
	if c.Base != nil && !t.Implements(c.Base) {
		return fmt.Errorf("%w: %s does not extend %s", ErrInvalidOption, t, c.Name)
	}

	if c.Interface != nil && !t.Implements(c.Interface) {
		return fmt.Errorf("%w: %s does not implement %sInterface", ErrInvalidOption, t, c.Name)
	}

	return nil
}

// settingsKey is the key in the factory_settings section naming c's implementation.
func (c Capability) settingsKey() string { return strings.ToLower(c.Name) }

type registration struct {
	typ reflect.Type
	ctor func(params any) (any, error)
}

// A Registry maps capabilities to the implementations available for them.
type Registry struct {
	cfg          Configurer
	capabilities map[string]Capability
	impls        map[string]map[string]registration
	singletons   map[string]any
	mu           sync.Mutex
}

// NewRegistry constructs a *Registry reading implementation names from cfg.
func NewRegistry(cfg Configurer) *Registry {
	return &Registry{
		cfg:          cfg,
		capabilities: make(map[string]Capability),
		impls:        make(map[string]map[string]registration),
		singletons:   make(map[string]any),
	}
}

// Define declares c so implementations can be registered against it.
func (reg *Registry) Define(c Capability) error {
	if c.Name == "" {
		return fmt.Errorf("%w: capability has no name", ErrInvalidOption)
	}

	for _, t := range []reflect.Type{c.Base, c.Interface} {
		if t != nil && t.Kind() != reflect.Interface {
			return fmt.Errorf("%w: %s is not an interface", ErrInvalidOption, t)
		}
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	reg.capabilities[c.Name] = c
	if _, ok := reg.impls[c.Name]; !ok {
		reg.impls[c.Name] = make(map[string]registration)
	}

	return nil
}

// Register records ctor as the constructor of the implementation called name.
//
// If capability has not been defined, or T does not satisfy it, ErrInvalidOption returns.
func Register[T any](reg *Registry, capability, name string, ctor func(params any) (T, error)) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	c, ok := reg.capabilities[capability]
	if !ok {
		return fmt.Errorf("%w: unknown capability %q", ErrInvalidOption, capability)
	}

	if ctor == nil {
		return fmt.Errorf("%w: nil constructor for %q", ErrInvalidOption, name)
	}

	typ := reflect.TypeOf((*T)(nil)).Elem()
	if err := c.check(typ); err != nil {
		return err
	}

	reg.impls[capability][name] = registration{
		typ:  typ,
		ctor: func(params any) (any, error) { return ctor(params) },
	}

	return nil
}

// Load constructs the implementation of capability named by the factory_settings section.
//
// If asSingleton is true, the first call constructs and caches the implementation;
// later calls return the cached value and params is ignored.
//
// If no implementation is registered under the configured name, ErrClassNotFound returns.
// If the implementation does not satisfy the capability or T, ErrInvalidOption returns.
func Load[T any](reg *Registry, capability string, asSingleton bool, params any) (T, error) {
	var zero T

	reg.mu.Lock()
	defer reg.mu.Unlock()

	c, ok := reg.capabilities[capability]
	if !ok {
		return zero, fmt.Errorf("%w: unknown capability %q", ErrInvalidOption, capability)
	}

	if asSingleton {
		if inst, ok := reg.singletons[capability]; ok {
			return cast[T](inst, capability)
		}
	}

	name := reg.cfg.Get(settingsSection, c.settingsKey(), "")
	r, ok := reg.impls[capability][name]
	if !ok {
		return zero, fmt.Errorf("%w: %q for factory option %s", ErrClassNotFound, name, capability)
	}

	if err := c.check(r.typ); err != nil {
		return zero, err
	}

	inst, err := r.ctor(params)
	if err != nil {
		return zero, err
	}

	if asSingleton {
		reg.singletons[capability] = inst
	}

	return cast[T](inst, capability)
}

func cast[T any](inst any, capability string) (T, error) {
	t, ok := inst.(T)
	if !ok {
		var zero T
		want := reflect.TypeOf((*T)(nil)).Elem()
		return zero, fmt.Errorf("%w: %T is not %s for %s", ErrInvalidOption, inst, want, capability)
	}

	return t, nil
}
