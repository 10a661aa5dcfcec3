package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ericfisherdev/checkoutrelay/internal/domain/model"
	"github.com/ericfisherdev/checkoutrelay/internal/domain/port/driven"
)

// DefaultCheckoutMode is used when a request does not name a mode.
const DefaultCheckoutMode = "payment"

// TenantResolver returns a remote handle for a tenant id.
type TenantResolver interface {
	Resolve(ctx context.Context, tenantID string) (driven.PaymentGateway, error)
}

// CreateSessionInput is a checkout request from the embedding widget.
type CreateSessionInput struct {
	TenantID      string
	Domain        string
	CustomerEmail string
	Mode          string
	LineItems     []model.LineItem
}

// CreateSessionResult is what the widget needs to mount embedded checkout.
type CreateSessionResult struct {
	ClientSecret string
	SessionID    string
}

// SessionStatus is the caller-facing view of a checkout session.
type SessionStatus struct {
	Status        string
	PaymentStatus string
	CustomerEmail string
	Error         *model.PaymentError
}

// CheckoutService orchestrates checkout sessions on behalf of tenants.
type CheckoutService struct {
	tenants        TenantResolver
	returnURL      string
	requestTimeout time.Duration
	events         *EventLog
	logger         *slog.Logger
}

// CheckoutOption configures a CheckoutService.
type CheckoutOption func(*CheckoutService)

// WithRequestTimeout bounds each CreateSession and SessionStatus call as a
// whole, across all of its remote calls. Zero leaves only the per-call bound
// of the remote adapter.
func WithRequestTimeout(d time.Duration) CheckoutOption {
	return func(s *CheckoutService) { s.requestTimeout = d }
}

// NewCheckoutService creates a CheckoutService. publicBaseURL is the externally
// reachable base of this service; sessions return the buyer to its /return.
func NewCheckoutService(tenants TenantResolver, publicBaseURL string, events *EventLog, logger *slog.Logger, opts ...CheckoutOption) *CheckoutService {
	s := &CheckoutService{
		tenants:   tenants,
		returnURL: strings.TrimSuffix(publicBaseURL, "/") + "/return?session_id={CHECKOUT_SESSION_ID}",
		events:    events,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CheckoutService) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.requestTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.requestTimeout)
}

// ReturnURL returns the return_url template sent with every session.
func (s *CheckoutService) ReturnURL() string { return s.returnURL }

// CreateSession resolves the tenant, makes sure the domain is registered for
// wallet payment methods, attaches or creates a customer, and opens the session.
func (s *CheckoutService) CreateSession(ctx context.Context, in CreateSessionInput) (*CreateSessionResult, error) {
	if in.Domain == "" {
		return nil, fmt.Errorf("%w: domain is required", ErrInvalidRequest)
	}
	if len(in.LineItems) == 0 {
		return nil, fmt.Errorf("%w: at least one line item is required", ErrInvalidRequest)
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	gw, err := s.tenants.Resolve(ctx, in.TenantID)
	if err != nil {
		return nil, err
	}

	if err := s.ensureDomain(ctx, gw, in.Domain); err != nil {
		return nil, err
	}

	req := model.CheckoutSessionRequest{
		LineItems: in.LineItems,
		Mode:      in.Mode,
		ReturnURL: s.returnURL,
	}
	if req.Mode == "" {
		req.Mode = DefaultCheckoutMode
	}

	if err := s.applyCustomer(ctx, gw, in.CustomerEmail, &req); err != nil {
		return nil, err
	}

	session, err := gw.CreateCheckoutSession(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	return &CreateSessionResult{ClientSecret: session.ClientSecret, SessionID: session.ID}, nil
}

// ensureDomain is a read-then-create: a concurrent duplicate registration is
// left to the remote service to reject or absorb.
func (s *CheckoutService) ensureDomain(ctx context.Context, gw driven.PaymentGateway, domain string) error {
	_, err := gw.GetPaymentMethodDomain(ctx, domain)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, driven.ErrRemoteNotFound):
	default:
		return fmt.Errorf("look up payment method domain %q: %w", domain, err)
	}

	pmd, err := gw.CreatePaymentMethodDomain(ctx, domain)
	if err != nil {
		return fmt.Errorf("register payment method domain %q: %w", domain, err)
	}

	s.logger.Info("registered payment method domain", "domain", pmd.DomainName, "id", pmd.ID)
	s.events.Append(map[string]any{"event": "payment_method_domain_registered", "domain": pmd})
	return nil
}

// applyCustomer attaches an existing customer when one matches email.
// Otherwise the session creates a customer and offers to save the payment
// method, whether or not an email was given.
func (s *CheckoutService) applyCustomer(ctx context.Context, gw driven.PaymentGateway, email string, req *model.CheckoutSessionRequest) error {
	if email != "" {
		customer, err := gw.FindCustomerByEmail(ctx, email)
		if err != nil {
			return fmt.Errorf("look up customer: %w", err)
		}

		s.events.Append(map[string]any{"event": "customer_lookup", "email": email, "found": customer != nil})

		if customer != nil {
			req.CustomerID = customer.ID
			return nil
		}
		req.CustomerEmail = email
	}

	req.CreateCustomer = true
	req.SavePaymentMethod = true
	return nil
}

// SessionStatus reports a session's status and, when the payment intent has
// one, its last payment error.
func (s *CheckoutService) SessionStatus(ctx context.Context, tenantID, sessionID string) (*SessionStatus, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session id is required", ErrInvalidRequest)
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	gw, err := s.tenants.Resolve(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	session, err := gw.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get checkout session %q: %w", sessionID, err)
	}

	return &SessionStatus{
		Status:        session.Status,
		PaymentStatus: session.PaymentStatus,
		CustomerEmail: session.CustomerEmail,
		Error:         session.PaymentError,
	}, nil
}
