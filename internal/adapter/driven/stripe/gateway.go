package stripe

import (
	"context"
	"fmt"
	"time"

	sdk "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/ericfisherdev/checkoutrelay/internal/domain/model"
	"github.com/ericfisherdev/checkoutrelay/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PaymentGateway = (*Gateway)(nil)

// Gateway is a remote handle bound to one tenant's secret key. Requests are
// scoped to accountID through the Stripe-Account header when it is set.
type Gateway struct {
	api       *client.API
	secretKey string
	accountID string
	timeout   time.Duration
}

// NewGatewayFactory returns a factory that builds one Gateway per credential.
// The SDK backends are created once and shared by every handle, so building a
// handle performs no I/O.
func NewGatewayFactory(opts Options) driven.GatewayFactory {
	backends := newBackends(opts)
	timeout := opts.timeout()

	return func(cred model.Credential) driven.PaymentGateway {
		return &Gateway{
			api:       client.New(cred.SecretKey, backends),
			secretKey: cred.SecretKey,
			accountID: cred.AccountID,
			timeout:   timeout,
		}
	}
}

// SecretKey returns the key this handle authenticates with.
func (g *Gateway) SecretKey() string { return g.secretKey }

// scope applies the connected account and a bounded context to params.
func (g *Gateway) scope(ctx context.Context, params *sdk.Params) context.CancelFunc {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	params.Context = ctx
	if g.accountID != "" {
		params.SetStripeAccount(g.accountID)
	}
	return cancel
}

func (g *Gateway) scopeList(ctx context.Context, params *sdk.ListParams) context.CancelFunc {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	params.Context = ctx
	if g.accountID != "" {
		params.SetStripeAccount(g.accountID)
	}
	return cancel
}

// GetPaymentMethodDomain looks the domain up by name.
func (g *Gateway) GetPaymentMethodDomain(ctx context.Context, domain string) (*model.PaymentMethodDomain, error) {
	params := &sdk.PaymentMethodDomainListParams{DomainName: sdk.String(domain)}
	params.Limit = sdk.Int64(1)
	cancel := g.scopeList(ctx, &params.ListParams)
	defer cancel()

	iter := g.api.PaymentMethodDomains.List(params)
	if iter.Next() {
		return toPaymentMethodDomain(iter.PaymentMethodDomain()), nil
	}
	if err := iter.Err(); err != nil {
		return nil, wrapErr("get payment method domain", err)
	}
	return nil, fmt.Errorf("payment method domain %q: %w", domain, driven.ErrRemoteNotFound)
}

// CreatePaymentMethodDomain registers domain for wallet payment methods.
func (g *Gateway) CreatePaymentMethodDomain(ctx context.Context, domain string) (*model.PaymentMethodDomain, error) {
	params := &sdk.PaymentMethodDomainParams{DomainName: sdk.String(domain)}
	cancel := g.scope(ctx, &params.Params)
	defer cancel()

	pmd, err := g.api.PaymentMethodDomains.New(params)
	if err != nil {
		return nil, wrapErr("create payment method domain", err)
	}
	return toPaymentMethodDomain(pmd), nil
}

// FindCustomerByEmail returns the first customer with email, or (nil, nil).
func (g *Gateway) FindCustomerByEmail(ctx context.Context, email string) (*model.Customer, error) {
	params := &sdk.CustomerListParams{Email: sdk.String(email)}
	params.Limit = sdk.Int64(1)
	cancel := g.scopeList(ctx, &params.ListParams)
	defer cancel()

	iter := g.api.Customers.List(params)
	if iter.Next() {
		c := iter.Customer()
		return &model.Customer{ID: c.ID, Email: c.Email}, nil
	}
	if err := iter.Err(); err != nil {
		return nil, wrapErr("list customers", err)
	}
	return nil, nil
}

// CreateCheckoutSession opens an embedded checkout session.
func (g *Gateway) CreateCheckoutSession(ctx context.Context, req model.CheckoutSessionRequest) (*model.CheckoutSession, error) {
	lineItems, err := toLineItemParams(req.LineItems)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	params := &sdk.CheckoutSessionParams{
		LineItems:          lineItems,
		Mode:               sdk.String(req.Mode),
		UIMode:             sdk.String("custom"),
		ReturnURL:          sdk.String(req.ReturnURL),
		PaymentMethodTypes: sdk.StringSlice([]string{"card"}),
		InvoiceCreation: &sdk.CheckoutSessionInvoiceCreationParams{
			Enabled: sdk.Bool(true),
		},
	}

	switch {
	case req.CustomerID != "":
		params.Customer = sdk.String(req.CustomerID)
	case req.CustomerEmail != "":
		params.CustomerEmail = sdk.String(req.CustomerEmail)
	}
	if req.CreateCustomer && req.CustomerID == "" {
		params.CustomerCreation = sdk.String("always")
	}
	if req.SavePaymentMethod {
		params.SavedPaymentMethodOptions = &sdk.CheckoutSessionSavedPaymentMethodOptionsParams{
			PaymentMethodSave: sdk.String("enabled"),
		}
	}

	cancel := g.scope(ctx, &params.Params)
	defer cancel()

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, wrapErr("create checkout session", err)
	}
	return toCheckoutSession(s), nil
}

// GetCheckoutSession fetches a session expanded with its payment intent.
func (g *Gateway) GetCheckoutSession(ctx context.Context, sessionID string) (*model.CheckoutSession, error) {
	params := &sdk.CheckoutSessionParams{}
	params.AddExpand("payment_intent")
	cancel := g.scope(ctx, &params.Params)
	defer cancel()

	s, err := g.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, wrapErr("get checkout session", err)
	}
	return toCheckoutSession(s), nil
}

// toLineItemParams maps every modeled line item field. Optional fields the
// caller left empty are omitted from the request.
func toLineItemParams(items []model.LineItem) ([]*sdk.CheckoutSessionLineItemParams, error) {
	out := make([]*sdk.CheckoutSessionLineItemParams, 0, len(items))
	for i, item := range items {
		p := &sdk.CheckoutSessionLineItemParams{}
		if len(item.TaxRates) > 0 {
			p.TaxRates = sdk.StringSlice(item.TaxRates)
		}
		if len(item.DynamicTaxRates) > 0 {
			p.DynamicTaxRates = sdk.StringSlice(item.DynamicTaxRates)
		}
		if item.Price != "" {
			p.Price = sdk.String(item.Price)
		}
		if item.Quantity > 0 {
			p.Quantity = sdk.Int64(item.Quantity)
		}
		if aq := item.AdjustableQuantity; aq != nil {
			p.AdjustableQuantity = &sdk.CheckoutSessionLineItemAdjustableQuantityParams{
				Enabled: sdk.Bool(aq.Enabled),
				Minimum: optInt64(aq.Minimum),
				Maximum: optInt64(aq.Maximum),
			}
		}
		if pd := item.PriceData; pd != nil {
			priceData, err := toPriceDataParams(pd)
			if err != nil {
				return nil, fmt.Errorf("line_items[%d]: %w", i, err)
			}
			p.PriceData = priceData
		}
		out = append(out, p)
	}
	return out, nil
}

func toPriceDataParams(pd *model.PriceData) (*sdk.CheckoutSessionLineItemPriceDataParams, error) {
	out := &sdk.CheckoutSessionLineItemPriceDataParams{
		Currency:    sdk.String(pd.Currency),
		Product:     optString(pd.Product),
		TaxBehavior: optString(pd.TaxBehavior),
	}
	if pd.UnitAmount != nil {
		out.UnitAmount = sdk.Int64(*pd.UnitAmount)
	}
	if pd.UnitAmountDecimal != "" {
		v, err := pd.UnitAmountDecimal.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid unit_amount_decimal %q: %w", pd.UnitAmountDecimal, err)
		}
		out.UnitAmountDecimal = sdk.Float64(v)
	}
	if r := pd.Recurring; r != nil {
		out.Recurring = &sdk.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval:      sdk.String(r.Interval),
			IntervalCount: optInt64(r.IntervalCount),
		}
	}
	if prod := pd.ProductData; prod != nil {
		out.ProductData = &sdk.CheckoutSessionLineItemPriceDataProductDataParams{
			Name:        sdk.String(prod.Name),
			Description: optString(prod.Description),
			TaxCode:     optString(prod.TaxCode),
			Metadata:    prod.Metadata,
		}
		if len(prod.Images) > 0 {
			out.ProductData.Images = sdk.StringSlice(prod.Images)
		}
	}
	return out, nil
}

func optString(v string) *string {
	if v == "" {
		return nil
	}
	return sdk.String(v)
}

func optInt64(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return sdk.Int64(v)
}

func toPaymentMethodDomain(pmd *sdk.PaymentMethodDomain) *model.PaymentMethodDomain {
	return &model.PaymentMethodDomain{
		ID:         pmd.ID,
		DomainName: pmd.DomainName,
		Enabled:    pmd.Enabled,
	}
}

func toCheckoutSession(s *sdk.CheckoutSession) *model.CheckoutSession {
	out := &model.CheckoutSession{
		ID:            s.ID,
		ClientSecret:  s.ClientSecret,
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
	}
	if s.CustomerDetails != nil {
		out.CustomerEmail = s.CustomerDetails.Email
	}
	if pi := s.PaymentIntent; pi != nil && pi.LastPaymentError != nil {
		e := pi.LastPaymentError
		out.PaymentError = &model.PaymentError{
			Code:        string(e.Code),
			DeclineCode: string(e.DeclineCode),
			Message:     e.Msg,
			Type:        string(e.Type),
		}
	}
	return out
}
