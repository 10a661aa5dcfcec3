package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/checkoutrelay/internal/application"
	"github.com/ericfisherdev/checkoutrelay/internal/domain/model"
)

func TestAuthService_AuthorizeMintsTenant(t *testing.T) {
	store := newMemStore()
	reg, _ := newRegistry(store, &countingFactory{}, nil)
	svc := application.NewAuthService(reg, nil, nil, discardLogger)
	ctx := context.Background()

	id1, err := svc.Authorize(ctx, "sk_x", "pk_x")
	require.NoError(t, err)
	id2, err := svc.Authorize(ctx, "sk_y", "pk_y")
	require.NoError(t, err)

	assert.NotEmpty(t, id1)
	assert.NotEqual(t, id1, id2)

	gw, err := reg.Resolve(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, "sk_x", gw.(*fakeGateway).secretKey)
}

func TestAuthService_AuthorizeRejectsMissingKeys(t *testing.T) {
	store := newMemStore()
	reg, _ := newRegistry(store, &countingFactory{}, nil)
	svc := application.NewAuthService(reg, nil, nil, discardLogger)

	_, err := svc.Authorize(context.Background(), "", "pk_x")
	require.ErrorIs(t, err, application.ErrInvalidCredentials)
	assert.Equal(t, 0, store.count())
}

func TestAuthService_UnauthorizeAndFlush(t *testing.T) {
	store := newMemStore()
	reg, _ := newRegistry(store, &countingFactory{}, nil)
	svc := application.NewAuthService(reg, nil, nil, discardLogger)
	ctx := context.Background()

	id, err := svc.Authorize(ctx, "sk", "pk")
	require.NoError(t, err)
	_, err = svc.Authorize(ctx, "sk2", "pk2")
	require.NoError(t, err)

	require.NoError(t, svc.Unauthorize(ctx, id))
	require.NoError(t, svc.Unauthorize(ctx, "unknown-id"))
	assert.Equal(t, 1, store.count())

	require.NoError(t, svc.Flush(ctx))
	assert.Equal(t, 0, store.count())
}

func TestAuthService_Link(t *testing.T) {
	store := newMemStore()
	reg, _ := newRegistry(store, &countingFactory{}, nil)
	linker := &fakeLinker{linked: &model.LinkedAccount{
		AccountID:      "acct_1",
		AccessToken:    "sk_acct",
		PublishableKey: "pk_acct",
		AccountName:    "Acme Ltd",
	}}
	events := application.NewEventLog(0, discardLogger)
	svc := application.NewAuthService(reg, linker, events, discardLogger)

	res, err := svc.Link(context.Background(), "ac_123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.TenantID)
	assert.Equal(t, "pk_acct", res.PublishableKey)
	assert.Equal(t, "Acme Ltd", res.AccountName)
	assert.Equal(t, []string{"ac_123"}, linker.codes)

	stored, err := reg.Get(context.Background(), res.TenantID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "sk_acct", stored.SecretKey)
	assert.Equal(t, "acct_1", stored.AccountID)

	for _, e := range events.Entries() {
		assert.NotContains(t, string(e.What), "sk_acct", "secrets must not reach the event log")
	}
}

func TestAuthService_LinkFailures(t *testing.T) {
	reg, _ := newRegistry(newMemStore(), &countingFactory{}, nil)

	t.Run("empty code", func(t *testing.T) {
		svc := application.NewAuthService(reg, &fakeLinker{}, nil, discardLogger)
		_, err := svc.Link(context.Background(), "")
		require.ErrorIs(t, err, application.ErrInvalidRequest)
	})

	t.Run("no linker", func(t *testing.T) {
		svc := application.NewAuthService(reg, nil, nil, discardLogger)
		_, err := svc.Link(context.Background(), "ac_1")
		require.Error(t, err)
	})

	t.Run("exchange error", func(t *testing.T) {
		svc := application.NewAuthService(reg, &fakeLinker{err: errBoom}, nil, discardLogger)
		_, err := svc.Link(context.Background(), "ac_1")
		require.ErrorIs(t, err, errBoom)
	})

	t.Run("exchange without publishable key", func(t *testing.T) {
		linker := &fakeLinker{linked: &model.LinkedAccount{AccountID: "acct_1", AccessToken: "sk"}}
		svc := application.NewAuthService(reg, linker, nil, discardLogger)
		_, err := svc.Link(context.Background(), "ac_1")
		require.ErrorIs(t, err, application.ErrInvalidCredentials)
	})
}
