package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ericfisherdev/checkoutrelay/internal/domain/model"
	"github.com/ericfisherdev/checkoutrelay/internal/domain/port/driven"
)

// TenantRegistry is the single owner of tenant credentials and their cached
// remote handles. Every mutation of the credential store goes through it and
// refreshes or evicts the matching cache entry under the same lock, so a
// cached handle always reflects the stored record.
//
// The lock covers only local store and cache work. Callers use the returned
// handle for remote calls after it is released.
type TenantRegistry struct {
	mu            sync.Mutex
	store         driven.CredentialStore
	cache         *ClientCache
	newClient     driven.GatewayFactory
	defaultTenant *model.Credential
	events        *EventLog
	logger        *slog.Logger
}

// NewTenantRegistry creates a TenantRegistry. defaultTenant may be nil; when
// set it is the fallback for requests without a tenant id and the record
// RemoveAll re-seeds.
func NewTenantRegistry(
	store driven.CredentialStore,
	cache *ClientCache,
	newClient driven.GatewayFactory,
	defaultTenant *model.Credential,
	events *EventLog,
	logger *slog.Logger,
) *TenantRegistry {
	return &TenantRegistry{
		store:         store,
		cache:         cache,
		newClient:     newClient,
		defaultTenant: defaultTenant,
		events:        events,
		logger:        logger,
	}
}

// DefaultTenantID returns the configured default tenant id, or "".
func (r *TenantRegistry) DefaultTenantID() string {
	if r.defaultTenant == nil {
		return ""
	}
	return r.defaultTenant.TenantID
}

// Upsert validates cred, writes it durably, and replaces the cached handle
// with one built from the new secret key. An incomplete credential returns
// ErrInvalidCredentials without touching the store.
func (r *TenantRegistry) Upsert(ctx context.Context, cred model.Credential) error {
	if !cred.Complete() {
		r.logger.Warn("rejected credential upsert with missing fields",
			"tenant_id", cred.TenantID,
			"has_secret_key", cred.SecretKey != "",
			"has_public_key", cred.PublicKey != "",
		)
		credentialMutations.WithLabelValues("upsert", "invalid").Inc()
		return fmt.Errorf("upsert tenant %q: %w", cred.TenantID, ErrInvalidCredentials)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.upsertLocked(ctx, cred)
}

func (r *TenantRegistry) upsertLocked(ctx context.Context, cred model.Credential) error {
	if err := r.store.Upsert(ctx, cred); err != nil {
		credentialMutations.WithLabelValues("upsert", "error").Inc()
		return fmt.Errorf("upsert tenant %q: %w", cred.TenantID, err)
	}

	r.cache.Put(cred.TenantID, r.newClient(cred))
	cachedClients.Set(float64(r.cache.Len()))
	credentialMutations.WithLabelValues("upsert", "ok").Inc()

	r.events.Append(map[string]string{
		"event":      "credentials_saved",
		"tenant_id":  cred.TenantID,
		"account_id": cred.AccountID,
	})
	return nil
}

// Remove deletes the tenant's credential and evicts its handle. Removing an
// unknown tenant succeeds. An empty id returns ErrInvalidCredentials.
func (r *TenantRegistry) Remove(ctx context.Context, tenantID string) error {
	if tenantID == "" {
		r.logger.Warn("rejected credential removal with empty tenant id")
		credentialMutations.WithLabelValues("remove", "invalid").Inc()
		return fmt.Errorf("remove tenant: %w", ErrInvalidCredentials)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Evict first: a missing entry is always rebuilt from the store, so the
	// cache stays coherent even if the delete below fails.
	r.cache.Evict(tenantID)
	cachedClients.Set(float64(r.cache.Len()))

	if err := r.store.Delete(ctx, tenantID); err != nil {
		credentialMutations.WithLabelValues("remove", "error").Inc()
		return fmt.Errorf("remove tenant %q: %w", tenantID, err)
	}
	credentialMutations.WithLabelValues("remove", "ok").Inc()

	r.events.Append(map[string]string{"event": "credentials_removed", "tenant_id": tenantID})
	return nil
}

// RemoveAll deletes every credential and flushes the cache, then re-seeds the
// default tenant when one is configured.
func (r *TenantRegistry) RemoveAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache.Flush()
	cachedClients.Set(0)

	if err := r.store.DeleteAll(ctx); err != nil {
		credentialMutations.WithLabelValues("remove_all", "error").Inc()
		return fmt.Errorf("remove all tenants: %w", err)
	}
	credentialMutations.WithLabelValues("remove_all", "ok").Inc()
	r.events.Append(map[string]string{"event": "credentials_flushed"})

	if r.defaultTenant == nil {
		return nil
	}
	return r.upsertLocked(ctx, *r.defaultTenant)
}

// Seed writes the configured default tenant, if any. Called once at startup so
// a configured default is always resolvable.
func (r *TenantRegistry) Seed(ctx context.Context) error {
	if r.defaultTenant == nil {
		return nil
	}
	if !r.defaultTenant.Complete() {
		return fmt.Errorf("seed default tenant: %w", ErrInvalidCredentials)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.upsertLocked(ctx, *r.defaultTenant)
}

// Get returns the stored credential for tenantID, or (nil, nil).
func (r *TenantRegistry) Get(ctx context.Context, tenantID string) (*model.Credential, error) {
	return r.store.Get(ctx, tenantID)
}

// List returns every stored credential.
func (r *TenantRegistry) List(ctx context.Context) ([]model.Credential, error) {
	return r.store.List(ctx)
}

// Resolve returns a ready-to-use remote handle for tenantID. An empty id
// falls back to the default tenant. A missing or incomplete record yields
// ErrUnauthorizedTenant. Cached handles are returned as is; on a miss a new
// handle is built from the stored secret key and cached.
func (r *TenantRegistry) Resolve(ctx context.Context, tenantID string) (driven.PaymentGateway, error) {
	if tenantID == "" {
		tenantID = r.DefaultTenantID()
	}
	if tenantID == "" {
		r.logger.Warn("tenant resolution without tenant id")
		resolveTotal.WithLabelValues("unauthorized").Inc()
		return nil, ErrUnauthorizedTenant
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cred, err := r.store.Get(ctx, tenantID)
	if err != nil {
		resolveTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("resolve tenant %q: %w", tenantID, err)
	}
	if cred == nil || !cred.Complete() {
		r.logger.Warn("tenant resolution failed", "tenant_id", tenantID, "found", cred != nil)
		resolveTotal.WithLabelValues("unauthorized").Inc()
		return nil, fmt.Errorf("%w: %q", ErrUnauthorizedTenant, tenantID)
	}

	if client, ok := r.cache.Get(tenantID); ok {
		resolveTotal.WithLabelValues("hit").Inc()
		return client, nil
	}

	client := r.newClient(*cred)
	r.cache.Put(tenantID, client)
	cachedClients.Set(float64(r.cache.Len()))
	resolveTotal.WithLabelValues("miss").Inc()
	return client, nil
}
