package config

import (
	"sort"
	"sync"

	"github.com/stripe/apm/trace"
)

// Integration is the runtime state of one instrumented integration:
// its settings and the tracer its spans go to.
type Integration struct {
	Name     string
	Settings IntegrationConfig
	Tracer   *trace.Tracer
}

// Handle is a shared, hot-reloadable reference to an Integration.
// Integrations read it on every call, so a Set or Update takes effect
// on the next call without re-wrapping anything.
type Handle struct {
	mu      sync.RWMutex
	current Integration
}

// NewHandle returns a handle holding in.
func NewHandle(in Integration) *Handle {
	return &Handle{current: in}
}

// Get returns a snapshot of the integration.
func (h *Handle) Get() Integration {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Set replaces the integration.
func (h *Handle) Set(in Integration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.current = in
}

// Update applies fn to the integration under the handle's lock.
func (h *Handle) Update(fn func(*Integration)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(&h.current)
}

// Registry maps integration names to their handles.
type Registry struct {
	tracer *trace.Tracer

	mu      sync.Mutex
	handles map[string]*Handle
}

// NewRegistry returns a registry whose integrations report to tracer
// unless configured otherwise.
func NewRegistry(tracer *trace.Tracer) *Registry {
	return &Registry{
		tracer:  tracer,
		handles: map[string]*Handle{},
	}
}

// Handle returns the handle of the named integration, creating it with
// default settings if it does not exist yet.
func (r *Registry) Handle(name string) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[name]
	if !ok {
		h = NewHandle(Integration{
			Name:     name,
			Settings: DefaultIntegrationConfig(name),
			Tracer:   r.tracer,
		})
		r.handles[name] = h
	}
	return h
}

// Lookup returns the handle of the named integration, if it exists.
func (r *Registry) Lookup(name string) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[name]
	return h, ok
}

// Names returns the names of all known integrations, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.handles))
	for name := range r.handles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Configure decodes the integration sections of c and applies them to
// the matching handles. Handles that already exist are updated in
// place, which is how settings are reloaded at runtime. Nothing is
// applied if any section fails to decode.
func (r *Registry) Configure(c Config) error {
	decoded := make(map[string]IntegrationConfig, len(c.Integrations))
	for name, raw := range c.Integrations {
		settings, err := DecodeIntegration(name, raw, DefaultIntegrationConfig(name))
		if err != nil {
			return err
		}
		decoded[name] = settings
	}
	for name, settings := range decoded {
		settings := settings
		r.Handle(name).Update(func(in *Integration) {
			in.Settings = settings
		})
	}
	return nil
}
