package model

import "time"

// Credential is the stored API key pair for one tenant. TenantID is the opaque
// identifier handed to the embedding widget; SecretKey authenticates server-side
// calls to the payment platform and PublicKey is safe to ship to the browser.
// AccountID is set only for tenants linked through OAuth and scopes every
// remote call to that connected account.
type Credential struct {
	TenantID  string
	SecretKey string
	PublicKey string
	AccountID string
	UpdatedAt time.Time
}

// Complete reports whether both keys are present. A record missing either key
// is treated as unauthorized rather than as an internal error.
func (c Credential) Complete() bool {
	return c.TenantID != "" && c.SecretKey != "" && c.PublicKey != ""
}
