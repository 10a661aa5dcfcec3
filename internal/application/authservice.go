package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/ericfisherdev/checkoutrelay/internal/domain/model"
	"github.com/ericfisherdev/checkoutrelay/internal/domain/port/driven"
)

// LinkResult is returned to the popup that completed an OAuth link.
type LinkResult struct {
	TenantID       string
	PublishableKey string
	AccountName    string
}

// AuthService authorizes and un-authorizes tenants, either from a raw key pair
// or through an OAuth authorization code.
type AuthService struct {
	registry *TenantRegistry
	linker   driven.AccountLinker
	newID    func() string
	events   *EventLog
	logger   *slog.Logger
}

// NewAuthService creates an AuthService. linker may be nil, in which case
// Link always fails.
func NewAuthService(registry *TenantRegistry, linker driven.AccountLinker, events *EventLog, logger *slog.Logger) *AuthService {
	return &AuthService{
		registry: registry,
		linker:   linker,
		newID:    uuid.NewString,
		events:   events,
		logger:   logger,
	}
}

// Authorize stores a key pair under a freshly minted tenant id and returns it.
func (s *AuthService) Authorize(ctx context.Context, secretKey, publicKey string) (string, error) {
	tenantID := s.newID()
	cred := model.Credential{TenantID: tenantID, SecretKey: secretKey, PublicKey: publicKey}
	if err := s.registry.Upsert(ctx, cred); err != nil {
		return "", err
	}
	return tenantID, nil
}

// Link exchanges an OAuth code for a connected account and stores its access
// token and publishable key under a new tenant id.
func (s *AuthService) Link(ctx context.Context, code string) (*LinkResult, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: authorization code is required", ErrInvalidRequest)
	}
	if s.linker == nil {
		return nil, fmt.Errorf("link account: no account linker configured")
	}

	linked, err := s.linker.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("link account: %w", err)
	}

	tenantID := s.newID()
	cred := model.Credential{
		TenantID:  tenantID,
		SecretKey: linked.AccessToken,
		PublicKey: linked.PublishableKey,
		AccountID: linked.AccountID,
	}
	if err := s.registry.Upsert(ctx, cred); err != nil {
		return nil, err
	}

	s.events.Append(map[string]string{
		"event":        "account_linked",
		"tenant_id":    tenantID,
		"account_id":   linked.AccountID,
		"account_name": linked.AccountName,
	})
	s.logger.Info("account linked", "tenant_id", tenantID, "account_id", linked.AccountID)

	return &LinkResult{
		TenantID:       tenantID,
		PublishableKey: linked.PublishableKey,
		AccountName:    linked.AccountName,
	}, nil
}

// Unauthorize removes one tenant. Unknown tenants succeed.
func (s *AuthService) Unauthorize(ctx context.Context, tenantID string) error {
	return s.registry.Remove(ctx, tenantID)
}

// Flush removes every tenant, leaving only the configured default, if any.
func (s *AuthService) Flush(ctx context.Context) error {
	return s.registry.RemoveAll(ctx)
}
