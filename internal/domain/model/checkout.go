package model

import "encoding/json"

// LineItem is a single checkout line. Either Price references an existing
// price object, or PriceData describes an ad-hoc one.
type LineItem struct {
	Price              string              `json:"price,omitempty"`
	Quantity           int64               `json:"quantity,omitempty"`
	PriceData          *PriceData          `json:"price_data,omitempty"`
	AdjustableQuantity *AdjustableQuantity `json:"adjustable_quantity,omitempty"`
	TaxRates           []string            `json:"tax_rates,omitempty"`
	DynamicTaxRates    []string            `json:"dynamic_tax_rates,omitempty"`
}

// PriceData describes an inline price for a line item. Exactly one of
// UnitAmount and UnitAmountDecimal is expected. Recurring is required in
// subscription mode.
type PriceData struct {
	Currency          string       `json:"currency"`
	UnitAmount        *int64       `json:"unit_amount,omitempty"`
	UnitAmountDecimal json.Number  `json:"unit_amount_decimal,omitempty"`
	Product           string       `json:"product,omitempty"`
	ProductData       *ProductData `json:"product_data,omitempty"`
	Recurring         *Recurring   `json:"recurring,omitempty"`
	TaxBehavior       string       `json:"tax_behavior,omitempty"`
}

// ProductData describes the product an inline price is for.
type ProductData struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Images      []string          `json:"images,omitempty"`
	TaxCode     string            `json:"tax_code,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Recurring is the billing interval of a subscription price.
type Recurring struct {
	Interval      string `json:"interval"`
	IntervalCount int64  `json:"interval_count,omitempty"`
}

// AdjustableQuantity lets the buyer change a line's quantity during checkout.
type AdjustableQuantity struct {
	Enabled bool  `json:"enabled"`
	Minimum int64 `json:"minimum,omitempty"`
	Maximum int64 `json:"maximum,omitempty"`
}

// CheckoutSessionRequest is everything the payment platform needs to open a
// checkout session on behalf of a tenant.
type CheckoutSessionRequest struct {
	LineItems []LineItem
	Mode      string
	ReturnURL string

	// CustomerID attaches an existing customer. When empty, CustomerEmail
	// (optional) prefills a customer created during checkout.
	CustomerID    string
	CustomerEmail string

	// CreateCustomer requests customer creation during checkout.
	CreateCustomer bool
	// SavePaymentMethod enables saved-payment-method capture.
	SavePaymentMethod bool
}

// CheckoutSession is the subset of the remote checkout session this service reads.
type CheckoutSession struct {
	ID            string
	ClientSecret  string
	Status        string
	PaymentStatus string
	CustomerEmail string
	PaymentError  *PaymentError
}

// PaymentError is the last payment error reported on a session's payment intent.
type PaymentError struct {
	Code        string `json:"code"`
	DeclineCode string `json:"decline_code"`
	Message     string `json:"message"`
	Type        string `json:"type"`
}

// PaymentMethodDomain is a domain registered for wallet payment methods.
type PaymentMethodDomain struct {
	ID         string `json:"id"`
	DomainName string `json:"domain_name"`
	Enabled    bool   `json:"enabled"`
}

// Customer is a remote customer record.
type Customer struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
