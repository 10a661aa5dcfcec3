package application_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/ericfisherdev/checkoutrelay/internal/application"
	"github.com/ericfisherdev/checkoutrelay/internal/domain/model"
	"github.com/ericfisherdev/checkoutrelay/internal/domain/port/driven"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// --- Credential store ---

type memStore struct {
	mu        sync.Mutex
	creds     map[string]model.Credential
	getErr    error
	upsertErr error
	deleteErr error
	pingErr   error
	gets      int
}

func newMemStore() *memStore {
	return &memStore{creds: make(map[string]model.Credential)}
}

func (m *memStore) Upsert(_ context.Context, cred model.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.creds[cred.TenantID] = cred
	return nil
}

func (m *memStore) Get(_ context.Context, tenantID string) (*model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.getErr != nil {
		return nil, m.getErr
	}
	cred, ok := m.creds[tenantID]
	if !ok {
		return nil, nil
	}
	return &cred, nil
}

func (m *memStore) List(_ context.Context) ([]model.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Credential, 0, len(m.creds))
	for _, c := range m.creds {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TenantID < out[j].TenantID })
	return out, nil
}

func (m *memStore) Delete(_ context.Context, tenantID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.creds, tenantID)
	return nil
}

func (m *memStore) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	clear(m.creds)
	return nil
}

func (m *memStore) Ping(_ context.Context) error { return m.pingErr }

// put writes directly, bypassing the registry, to simulate a corrupt row.
func (m *memStore) put(cred model.Credential) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds[cred.TenantID] = cred
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.creds)
}

// --- Payment gateway ---

type fakeGateway struct {
	secretKey string

	mu               sync.Mutex
	domainRegistered bool
	getDomainErr     error
	createDomainErr  error
	customer         *model.Customer
	findCustomerErr  error
	createSessionErr error
	session          *model.CheckoutSession
	getSessionErr    error

	createdDomains []string
	customerLookup []string
	sessionReqs    []model.CheckoutSessionRequest
}

func (g *fakeGateway) GetPaymentMethodDomain(_ context.Context, domain string) (*model.PaymentMethodDomain, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.getDomainErr != nil {
		return nil, g.getDomainErr
	}
	if !g.domainRegistered {
		return nil, fmt.Errorf("payment method domain %q: %w", domain, driven.ErrRemoteNotFound)
	}
	return &model.PaymentMethodDomain{ID: "pmd_1", DomainName: domain, Enabled: true}, nil
}

func (g *fakeGateway) CreatePaymentMethodDomain(_ context.Context, domain string) (*model.PaymentMethodDomain, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createDomainErr != nil {
		return nil, g.createDomainErr
	}
	g.createdDomains = append(g.createdDomains, domain)
	g.domainRegistered = true
	return &model.PaymentMethodDomain{ID: "pmd_new", DomainName: domain, Enabled: true}, nil
}

func (g *fakeGateway) FindCustomerByEmail(_ context.Context, email string) (*model.Customer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.customerLookup = append(g.customerLookup, email)
	return g.customer, g.findCustomerErr
}

func (g *fakeGateway) CreateCheckoutSession(_ context.Context, req model.CheckoutSessionRequest) (*model.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createSessionErr != nil {
		return nil, g.createSessionErr
	}
	g.sessionReqs = append(g.sessionReqs, req)
	return &model.CheckoutSession{ID: "cs_test_1", ClientSecret: "cs_test_1_secret", Status: "open"}, nil
}

func (g *fakeGateway) GetCheckoutSession(_ context.Context, sessionID string) (*model.CheckoutSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.getSessionErr != nil {
		return nil, g.getSessionErr
	}
	if g.session == nil || g.session.ID != sessionID {
		return nil, fmt.Errorf("checkout session %q: %w", sessionID, driven.ErrRemoteNotFound)
	}
	s := *g.session
	return &s, nil
}

// countingFactory builds a fresh fakeGateway per call and counts calls.
type countingFactory struct {
	mu    sync.Mutex
	calls int
}

func (f *countingFactory) build(cred model.Credential) driven.PaymentGateway {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return &fakeGateway{secretKey: cred.SecretKey}
}

func (f *countingFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fixedResolver always returns the same gateway or error.
type fixedResolver struct {
	gw  driven.PaymentGateway
	err error
}

func (r *fixedResolver) Resolve(_ context.Context, _ string) (driven.PaymentGateway, error) {
	return r.gw, r.err
}

// --- Account linker ---

type fakeLinker struct {
	linked *model.LinkedAccount
	err    error
	codes  []string
}

func (l *fakeLinker) ExchangeCode(_ context.Context, code string) (*model.LinkedAccount, error) {
	l.codes = append(l.codes, code)
	return l.linked, l.err
}

var errBoom = errors.New("boom")

func newRegistry(store *memStore, factory *countingFactory, defaultTenant *model.Credential) (*application.TenantRegistry, *application.ClientCache) {
	cache := application.NewClientCache()
	reg := application.NewTenantRegistry(store, cache, factory.build, defaultTenant, application.NewEventLog(0, discardLogger), discardLogger)
	return reg, cache
}
