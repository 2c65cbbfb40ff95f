// registry.go implements ProviderRegistry, which stores and retrieves provider builder
// functions keyed by ProviderType.
package scm

import (
	"fmt"
	"sort"
	"sync"
)

// ProviderBuilder is a function that constructs a Provider
type ProviderBuilder func(settings *ProviderSettings) (Provider, error)

// ProviderRegistry manages available provider implementations
type ProviderRegistry struct {
	mu       sync.RWMutex
	builders map[ProviderType]ProviderBuilder
}

// NewProviderRegistry creates an empty registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		builders: make(map[ProviderType]ProviderBuilder),
	}
}

// Register adds a provider builder for a provider kind
func (r *ProviderRegistry) Register(kind ProviderType, builder ProviderBuilder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[kind] = builder
}

// Build creates a provider instance for the given settings
func (r *ProviderRegistry) Build(settings *ProviderSettings) (Provider, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if !r.HasKind(settings.Kind) {
		return nil, fmt.Errorf("%w: %s (registered: %v)", ErrProviderNotSupported, settings.Kind, r.AvailableKinds())
	}

	r.mu.RLock()
	builder := r.builders[settings.Kind]
	r.mu.RUnlock()

	return builder(settings)
}

// AvailableKinds returns all registered provider kinds in sorted order
func (r *ProviderRegistry) AvailableKinds() []ProviderType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]ProviderType, 0, len(r.builders))
	for k := range r.builders {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// HasKind checks if a provider kind is registered
func (r *ProviderRegistry) HasKind(kind ProviderType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, found := r.builders[kind]
	return found
}

// GlobalRegistry is the default provider registry
var GlobalRegistry = NewProviderRegistry()

// RegisterProvider adds a builder to the global registry
func RegisterProvider(kind ProviderType, builder ProviderBuilder) {
	GlobalRegistry.Register(kind, builder)
}

// BuildProvider creates a provider using the global registry
func BuildProvider(settings *ProviderSettings) (Provider, error) {
	return GlobalRegistry.Build(settings)
}

// RegisteredProviders lists the kinds in the global registry
func RegisteredProviders() []ProviderType {
	return GlobalRegistry.AvailableKinds()
}
