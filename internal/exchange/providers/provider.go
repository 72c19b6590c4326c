// Package providers holds the external data providers the pipeline calls to
// enrich verified credentials before issuance. Each provider is a named HTTP
// endpoint with a configured method and headers; the registry is the lookup
// point for the pipeline's request stage.
package providers

import (
	"errors"
	"fmt"
)

// Provider describes one configured external data endpoint.
type Provider struct {
	ID       string            `json:"id"`
	Method   string            `json:"method"`
	Endpoint string            `json:"endpoint"`
	Headers  map[string]string `json:"headers,omitempty"`
}

// Registry maintains all configured providers indexed by their unique ID.
// Not safe for concurrent mutation; register all providers during
// initialization.
type Registry struct {
	providers map[string]Provider
	order     []string
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider to the registry, keyed by its ID.
// Returns an error if a provider with the same ID is already registered.
func (r *Registry) Register(p Provider) error {
	if p.ID == "" {
		return fmt.Errorf("provider has no id")
	}
	if _, exists := r.providers[p.ID]; exists {
		return fmt.Errorf("provider %s already registered", p.ID)
	}
	r.providers[p.ID] = p
	r.order = append(r.order, p.ID)
	return nil
}

// Default returns the first registered provider. It backs lookups with no
// provider ID; a present-but-unmatched ID never falls back here.
func (r *Registry) Default() (Provider, error) {
	if len(r.order) == 0 {
		return Provider{}, fmt.Errorf("default provider: %w", ErrProviderNotFound)
	}
	return r.providers[r.order[0]], nil
}

// Get returns the provider with the given ID. An unmatched ID is an error,
// never a fallback to some other provider.
func (r *Registry) Get(id string) (Provider, error) {
	p, ok := r.providers[id]
	if !ok {
		return Provider{}, fmt.Errorf("provider %q: %w", id, ErrProviderNotFound)
	}
	return p, nil
}

// ErrProviderNotFound marks a lookup for a provider ID absent from the
// registry. Use errors.Is() to check for it.
var ErrProviderNotFound = errors.New("provider not found")

// RequestError reports a failed provider invocation: a transport failure or a
// non-2xx response. Status is zero when the request never reached the
// provider; Body carries the provider's response verbatim for diagnosis.
type RequestError struct {
	ProviderID string
	Status     int
	Body       string
	Underlying error
}

func (e *RequestError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("provider %s request failed: %v", e.ProviderID, e.Underlying)
	}
	return fmt.Sprintf("provider %s request failed: status %d: %s", e.ProviderID, e.Status, e.Body)
}

// Unwrap supports error unwrapping.
func (e *RequestError) Unwrap() error {
	return e.Underlying
}
