package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/checkoutrelay/internal/application"
	"github.com/ericfisherdev/checkoutrelay/internal/domain/model"
)

func TestHealthService_Healthy(t *testing.T) {
	store := newMemStore()
	registry, cache := newRegistry(store, &countingFactory{}, nil)
	events := application.NewEventLog(0, discardLogger)
	svc := application.NewHealthService(store, cache, events)

	require.NoError(t, registry.Upsert(context.Background(), model.Credential{TenantID: "t1", SecretKey: "sk", PublicKey: "pk"}))
	events.Append("tenant linked")

	report := svc.Check(context.Background())

	assert.True(t, report.Healthy)
	assert.NoError(t, report.StoreErr)
	assert.Equal(t, 1, report.CachedClients)
	assert.Equal(t, 1, report.EventLogEntries)
}

func TestHealthService_StoreDown(t *testing.T) {
	store := newMemStore()
	store.pingErr = errBoom
	svc := application.NewHealthService(store, application.NewClientCache(), application.NewEventLog(0, discardLogger))

	report := svc.Check(context.Background())

	assert.False(t, report.Healthy)
	assert.ErrorIs(t, report.StoreErr, errBoom)
	assert.Zero(t, report.CachedClients)
}
