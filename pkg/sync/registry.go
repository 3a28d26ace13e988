package sync

import (
	"fmt"
	"sort"
)

// ProviderFactory is a function that creates a Provider instance.
type ProviderFactory func(cfg Config) Provider

// Registry maps provider names to factories.
type Registry struct {
	providerFactories map[string]ProviderFactory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		providerFactories: make(map[string]ProviderFactory),
	}
}

// RegisterProvider registers a provider factory for a given provider name.
func (r *Registry) RegisterProvider(name string, factory ProviderFactory) {
	r.providerFactories[name] = factory
}

// Provider builds the provider named in cfg.
func (r *Registry) Provider(cfg Config) (Provider, error) {
	factory, ok := r.providerFactories[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported or unregistered provider: %s", cfg.Provider)
	}
	return factory(cfg), nil
}

// Names lists the registered providers.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providerFactories))
	for name := range r.providerFactories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
