package stripe

import (
	"errors"
	"fmt"

	sdk "github.com/stripe/stripe-go/v82"

	"github.com/ericfisherdev/checkoutrelay/internal/domain/port/driven"
)

// wrapErr converts an SDK failure into a *driven.RemoteError. A
// resource_missing code additionally wraps driven.ErrRemoteNotFound so callers
// can branch on it with errors.Is.
func wrapErr(op string, err error) error {
	var apiErr *sdk.Error
	if !errors.As(err, &apiErr) {
		return &driven.RemoteError{Op: op, Err: err}
	}

	remote := &driven.RemoteError{
		Op:          op,
		Status:      apiErr.HTTPStatusCode,
		Code:        string(apiErr.Code),
		DeclineCode: string(apiErr.DeclineCode),
		Type:        string(apiErr.Type),
		Message:     apiErr.Msg,
		Err:         err,
	}
	if apiErr.Code == sdk.ErrorCodeResourceMissing {
		return fmt.Errorf("%w: %w", driven.ErrRemoteNotFound, remote)
	}
	return remote
}
