package application

import (
	"sync"

	"github.com/ericfisherdev/checkoutrelay/internal/domain/port/driven"
)

// ClientCache holds one live remote handle per tenant. It is never persisted;
// handles are rebuilt from stored credentials after a miss or a restart.
// Coherence with the credential store is the TenantRegistry's job: the cache
// itself has no notion of which record a handle was built from.
type ClientCache struct {
	mu      sync.RWMutex
	clients map[string]driven.PaymentGateway
}

// NewClientCache creates an empty cache.
func NewClientCache() *ClientCache {
	return &ClientCache{clients: make(map[string]driven.PaymentGateway)}
}

// Get returns the cached handle for tenantID.
func (c *ClientCache) Get(tenantID string) (driven.PaymentGateway, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	client, ok := c.clients[tenantID]
	return client, ok
}

// Put stores client for tenantID, replacing any previous handle.
func (c *ClientCache) Put(tenantID string, client driven.PaymentGateway) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clients[tenantID] = client
}

// Evict drops the handle for tenantID, if any.
func (c *ClientCache) Evict(tenantID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.clients, tenantID)
}

// Flush drops every handle.
func (c *ClientCache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.clients)
}

// Len returns the number of cached handles.
func (c *ClientCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.clients)
}
