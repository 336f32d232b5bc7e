package providers

import (
	"fmt"
	"sort"

	"github.com/vrsandeep/manga-sync/internal/models"
)

// Registry maps a website domain to the provider that knows how to read
// it. It is filled once at startup and only read afterwards.
type Registry struct {
	providers map[string]models.Provider
}

// NewRegistry creates a registry holding ps.
func NewRegistry(ps ...models.Provider) *Registry {
	r := &Registry{providers: make(map[string]models.Provider)}
	for _, p := range ps {
		r.Register(p)
	}
	return r
}

// Register adds a provider. It's called at startup.
func (r *Registry) Register(p models.Provider) {
	domain := p.Domain()
	if _, exists := r.providers[domain]; exists {
		// Panic is appropriate here as it's a developer error during setup.
		panic(fmt.Sprintf("provider for domain '%s' is already registered", domain))
	}
	r.providers[domain] = p
}

// Get returns the provider for domain.
func (r *Registry) Get(domain string) (models.Provider, bool) {
	p, ok := r.providers[domain]
	return p, ok
}

// SupportedDomains lists every registered domain in sorted order.
func (r *Registry) SupportedDomains() []string {
	domains := make([]string, 0, len(r.providers))
	for d := range r.providers {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	return domains
}
