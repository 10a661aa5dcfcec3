package model

// LinkedAccount is the result of exchanging an OAuth authorization code for a
// connected account's credentials.
type LinkedAccount struct {
	AccountID      string
	AccessToken    string
	RefreshToken   string
	PublishableKey string
	AccountName    string
}
