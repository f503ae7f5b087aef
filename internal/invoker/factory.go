package invoker

import (
	"fmt"
	"sort"

	"ogarx/internal/config"
	"ogarx/internal/port"
)

// ProviderFactory creates a ModelInvoker from the model config.
type ProviderFactory func(cfg *config.ModelConfig) (port.ModelInvoker, error)

// registry of provider factories, populated by init() in each provider package
// or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers a provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// Providers lists the registered provider names.
func Providers() []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates the configured ModelInvoker, throttled when
// cfg.RequestsPerMinute is set.
func New(cfg *config.ModelConfig) (port.ModelInvoker, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown model provider: %s", cfg.Provider)
	}
	inv, err := factory(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.RequestsPerMinute > 0 {
		return NewThrottled(inv, cfg.RequestsPerMinute), nil
	}
	return inv, nil
}
