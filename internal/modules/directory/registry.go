// Package directory resolves store codes to callable store handles. Nodes in
// the same process register themselves directly; stores served elsewhere are
// registered as HTTP client adapters.
package directory

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/storenetdev/storenet-backend/internal/apperr"
	"github.com/storenetdev/storenet-backend/internal/modules/store"
)

// Registry is an in-memory directory of store handles. It implements
// store.Resolver.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]store.Remote
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]store.Remote)}
}

// Register binds a store code to a handle, replacing any previous binding.
func (r *Registry) Register(storeCode string, handle store.Remote) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handles[storeCode]; !ok {
		r.order = append(r.order, storeCode)
	}
	r.handles[storeCode] = handle
}

// Resolve returns the handle for a store code.
func (r *Registry) Resolve(storeCode string) (store.Remote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handle, ok := r.handles[storeCode]
	if !ok {
		return nil, errors.Wrapf(apperr.ErrNotFound, "store %s is not registered", storeCode)
	}
	return handle, nil
}

// OtherStores lists every registered store except the given one, in
// registration order.
func (r *Registry) OtherStores(storeCode string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	others := make([]string, 0, len(r.order))
	for _, code := range r.order {
		if code != storeCode {
			others = append(others, code)
		}
	}
	return others
}
