package driven

import (
	"context"
	"errors"
	"fmt"

	"github.com/ericfisherdev/checkoutrelay/internal/domain/model"
)

// ErrRemoteNotFound is the explicit "resource missing" variant of a remote
// failure. Callers branch on it with errors.Is instead of inspecting codes.
var ErrRemoteNotFound = errors.New("remote resource not found")

// RemoteError is a failure reported by the payment platform. Code, DeclineCode
// and Type are the platform's own classification when it supplied one.
type RemoteError struct {
	Op          string
	Status      int
	Code        string
	DeclineCode string
	Type        string
	Message     string
	Err         error
}

func (e *RemoteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: remote error %s (%s): %s", e.Op, e.Code, e.Type, e.Message)
	}
	return fmt.Sprintf("%s: remote error: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// PaymentGateway is a remote-service handle bound to one tenant's secret key.
// Every call is blocking I/O against the payment platform.
type PaymentGateway interface {
	// GetPaymentMethodDomain returns the registration for domain, or an error
	// wrapping ErrRemoteNotFound when the domain is not registered.
	GetPaymentMethodDomain(ctx context.Context, domain string) (*model.PaymentMethodDomain, error)

	// CreatePaymentMethodDomain registers domain for wallet payment methods.
	CreatePaymentMethodDomain(ctx context.Context, domain string) (*model.PaymentMethodDomain, error)

	// FindCustomerByEmail returns the first customer with the given email, or
	// (nil, nil) when there is none.
	FindCustomerByEmail(ctx context.Context, email string) (*model.Customer, error)

	// CreateCheckoutSession opens a new checkout session.
	CreateCheckoutSession(ctx context.Context, req model.CheckoutSessionRequest) (*model.CheckoutSession, error)

	// GetCheckoutSession fetches a session together with its payment intent's
	// last payment error, if any.
	GetCheckoutSession(ctx context.Context, sessionID string) (*model.CheckoutSession, error)
}

// GatewayFactory builds a remote handle from a tenant credential. It must not
// perform I/O; handles are built while the registry lock is held.
type GatewayFactory func(cred model.Credential) PaymentGateway

// AccountLinker exchanges an OAuth authorization code for connected account
// credentials using the platform's own key.
type AccountLinker interface {
	ExchangeCode(ctx context.Context, code string) (*model.LinkedAccount, error)
}
