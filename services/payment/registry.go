package payment

import "sync"

// Registry indexes in-flight checkouts by checkout ID so the gateway callback
// endpoint can resolve the matching suspended saga.
type Registry struct {
	mu        sync.Mutex
	checkouts map[string]*Checkout
}

func NewRegistry() *Registry {
	return &Registry{checkouts: make(map[string]*Checkout)}
}

// Register indexes the checkout under the given ID.
func (r *Registry) Register(id string, c *Checkout) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkouts[id] = c
}

// Lookup returns the in-flight checkout, if any.
func (r *Registry) Lookup(id string) (*Checkout, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.checkouts[id]
	return c, ok
}

// Release drops the checkout once its saga reached a terminal state.
func (r *Registry) Release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.checkouts, id)
}
