package stripe

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	sdk "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/ericfisherdev/checkoutrelay/internal/domain/model"
	"github.com/ericfisherdev/checkoutrelay/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AccountLinker = (*AccountLinker)(nil)

// ErrLinkingDisabled is returned when no platform key is configured.
var ErrLinkingDisabled = errors.New("account linking disabled: no platform secret key configured")

// AccountLinker completes the OAuth authorization-code exchange for connected
// accounts using the platform's own secret key.
type AccountLinker struct {
	api     *client.API
	timeout time.Duration
	logger  *slog.Logger
}

// NewAccountLinker creates an AccountLinker. An empty platformKey yields a
// linker whose every exchange fails with ErrLinkingDisabled.
func NewAccountLinker(platformKey string, opts Options) *AccountLinker {
	l := &AccountLinker{timeout: opts.timeout(), logger: opts.logger()}
	if platformKey != "" {
		l.api = client.New(platformKey, newBackends(opts))
	}
	return l
}

// ExchangeCode trades code for the connected account's tokens, then looks the
// account up for a display name. A failed name lookup is logged and leaves
// AccountName empty.
func (l *AccountLinker) ExchangeCode(ctx context.Context, code string) (*model.LinkedAccount, error) {
	if l.api == nil {
		return nil, ErrLinkingDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	params := &sdk.OAuthTokenParams{
		GrantType: sdk.String("authorization_code"),
		Code:      sdk.String(code),
	}
	params.Context = ctx

	token, err := l.api.OAuth.New(params)
	if err != nil {
		return nil, wrapErr("exchange oauth code", err)
	}

	linked := &model.LinkedAccount{
		AccountID:      token.StripeUserID,
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		PublishableKey: token.StripePublishableKey,
	}

	acctParams := &sdk.AccountParams{}
	acctParams.Context = ctx
	acct, err := l.api.Accounts.GetByID(token.StripeUserID, acctParams)
	if err != nil {
		l.logger.Warn("failed to fetch linked account", "account_id", token.StripeUserID, "error", wrapErr("get account", err))
		return linked, nil
	}
	linked.AccountName = AccountName(acct)

	return linked, nil
}

// AccountName derives a display name: the business profile name, otherwise
// the individual's first and last name, otherwise "".
func AccountName(acct *sdk.Account) string {
	if acct == nil {
		return ""
	}
	if acct.BusinessProfile != nil && acct.BusinessProfile.Name != "" {
		return acct.BusinessProfile.Name
	}
	if acct.Individual != nil {
		return strings.TrimSpace(acct.Individual.FirstName + " " + acct.Individual.LastName)
	}
	return ""
}
