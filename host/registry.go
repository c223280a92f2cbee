package host

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/cwbudde/algo-drumgate/dsp/effects/dynamics"
)

// ComponentName is the name the drum gate registers under.
const ComponentName = "drumgate"

// Factory builds one processor instance for a host.
type Factory func() (Processor, error)

// Component describes a registered processor type.
type Component struct {
	Name         string
	Manufacturer string
	Version      string
	Factory      Factory
}

// Registry maps component names to their descriptions. It is safe for
// concurrent use.
type Registry struct {
	mu         sync.RWMutex
	components map[string]Component
}

var errDuplicateComponent = errors.New("duplicate component")

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{components: make(map[string]Component)}
}

// Register adds a component.
func (r *Registry) Register(c Component) error {
	if c.Name == "" {
		return errors.New("empty component name")
	}

	if c.Factory == nil {
		return errors.New("nil factory")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.components[c.Name]; exists {
		return fmt.Errorf("%w: %s", errDuplicateComponent, c.Name)
	}

	r.components[c.Name] = c

	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(c Component) {
	if err := r.Register(c); err != nil {
		panic("host registry: " + err.Error())
	}
}

// Lookup returns the component registered under name.
func (r *Registry) Lookup(name string) (Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.components[name]

	return c, ok
}

// Names returns the registered component names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

var (
	defaultRegistry = NewRegistry()
	initOnce        sync.Once
)

// DefaultRegistry returns the process-wide registry used by [New].
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Initialize registers the drum gate in the default registry. Only the
// first call has an effect.
func Initialize() {
	initOnce.Do(func() {
		defaultRegistry.MustRegister(Component{
			Name:         ComponentName,
			Manufacturer: "algo-drumgate",
			Version:      "1.0.0",
			Factory: func() (Processor, error) {
				return dynamics.NewGateBank(), nil
			},
		})
	})
}
