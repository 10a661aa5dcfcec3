package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/checkoutrelay/internal/domain/model"
)

// ErrEncryptionKeyNotSet is returned when a stored secret was sealed at rest
// but CHECKOUTRELAY_SECRET_KEY is not configured to open it.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set CHECKOUTRELAY_SECRET_KEY")

// CredentialStore defines the driven port for durable tenant credential
// persistence. Values cross this boundary as plaintext; any at-rest
// encryption is the adapter's concern.
type CredentialStore interface {
	// Upsert stores the credential, replacing any prior record with the same
	// tenant id in a single statement.
	Upsert(ctx context.Context, cred model.Credential) error

	// Get returns the credential for tenantID, or (nil, nil) if none exists.
	Get(ctx context.Context, tenantID string) (*model.Credential, error)

	// List returns every stored credential ordered by tenant id.
	List(ctx context.Context) ([]model.Credential, error)

	// Delete removes the credential for tenantID. Deleting an unknown tenant
	// is not an error.
	Delete(ctx context.Context, tenantID string) error

	// DeleteAll removes every stored credential.
	DeleteAll(ctx context.Context) error

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}
