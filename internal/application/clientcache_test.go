package application_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/checkoutrelay/internal/application"
)

func TestClientCache_PutGet(t *testing.T) {
	cache := application.NewClientCache()
	client := &fakeGateway{secretKey: "sk"}

	_, ok := cache.Get("t1")
	require.False(t, ok)

	cache.Put("t1", client)
	got, ok := cache.Get("t1")
	require.True(t, ok)
	assert.Same(t, client, got)
}

func TestClientCache_PutReplaces(t *testing.T) {
	cache := application.NewClientCache()
	original := &fakeGateway{secretKey: "sk_1"}
	replacement := &fakeGateway{secretKey: "sk_2"}

	cache.Put("t1", original)
	cache.Put("t1", replacement)

	got, _ := cache.Get("t1")
	assert.Same(t, replacement, got)
	assert.Equal(t, 1, cache.Len())
}

func TestClientCache_EvictAndFlush(t *testing.T) {
	cache := application.NewClientCache()
	cache.Put("a", &fakeGateway{})
	cache.Put("b", &fakeGateway{})

	cache.Evict("a")
	cache.Evict("missing")
	_, ok := cache.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, cache.Len())

	cache.Flush()
	assert.Equal(t, 0, cache.Len())
}

func TestClientCache_ConcurrentGetPutSafety(t *testing.T) {
	cache := application.NewClientCache()
	client1 := &fakeGateway{secretKey: "sk_1"}
	client2 := &fakeGateway{secretKey: "sk_2"}
	cache.Put("t1", client1)

	const goroutines = 100
	var wg sync.WaitGroup
	wg.Add(goroutines * 2)

	// Half the goroutines read, half write.
	for range goroutines {
		go func() {
			defer wg.Done()
			got, ok := cache.Get("t1")
			assert.True(t, ok)
			assert.NotNil(t, got)
		}()
		go func() {
			defer wg.Done()
			cache.Put("t1", client2)
		}()
	}

	wg.Wait()

	got, _ := cache.Get("t1")
	assert.Same(t, client2, got)
}
