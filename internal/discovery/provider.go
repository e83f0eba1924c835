package discovery

import (
	"context"
	"sort"

	"github.com/tagsentry/tagsentry/internal/domain/account"
)

// Snapshot is one discovered resource as reported by a provider
type Snapshot struct {
	ARN      string                 `json:"arn"`
	Type     string                 `json:"type"`
	Region   string                 `json:"region"`
	Name     string                 `json:"name"`
	Tags     map[string]string      `json:"tags"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Provider lists current real-world resources of one category for an
// account. Implementations must not mutate shared state and must be safe
// to retry.
type Provider interface {
	// Type returns the resource type code this provider discovers
	Type() string

	// Global reports whether the provider's resources are global rather
	// than regional. Global providers ignore the regions argument.
	Global() bool

	// Discover returns a snapshot list of the account's resources. Regional
	// APIs are queried in the given regions; account-wide APIs may report
	// resources from other regions and the caller resolves their scope.
	Discover(ctx context.Context, acct *account.Account, regions []string) ([]Snapshot, error)
}

// Registry holds discovery providers keyed by resource type
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider; the last registration for a type wins
func (r *Registry) Register(p Provider) {
	r.providers[p.Type()] = p
}

// Get returns the provider for a resource type
func (r *Registry) Get(resourceType string) (Provider, bool) {
	p, ok := r.providers[resourceType]
	return p, ok
}

// ForTypes returns the registered providers matching the enabled type set,
// in stable type order
func (r *Registry) ForTypes(enabledTypes map[string]bool) []Provider {
	var out []Provider
	for t, p := range r.providers {
		if enabledTypes[t] {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type() < out[j].Type() })
	return out
}

// Types returns all registered resource type codes, sorted
func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.providers))
	for t := range r.providers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
