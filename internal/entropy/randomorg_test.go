package entropy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (c *Client) busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refilling
}

func (c *Client) pooled() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pool)
}

func TestClientDrainsPoolInOrder(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "generateDecimalFractions", req.Method)
		assert.Equal(t, "key", req.Params.APIKey)
		w.Write([]byte(`{"jsonrpc":"2.0","result":{"random":{"data":[0.25,1.0,0.5]}},"id":1}`))
	}))
	defer srv.Close()

	c := NewClient("key", WithEndpoint(srv.URL))
	c.lowWater = 1
	require.True(t, c.Enabled())

	first := c.Float() // empty pool: crypto fallback, refill kicked off
	assert.GreaterOrEqual(t, first, 0.0)
	assert.Less(t, first, 1.0)
	require.Eventually(t, func() bool { return c.pooled() == 3 && !c.busy() }, time.Second, 5*time.Millisecond)

	assert.Equal(t, 0.25, c.Float())
	assert.Equal(t, 0.0, c.Float(), "closed upper end folds to zero")
	assert.Equal(t, 0.5, c.Float())
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientFloatDoesNotWaitForRefill(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		w.Write([]byte(`{"jsonrpc":"2.0","result":{"random":{"data":[0.5]}},"id":1}`))
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient("key", WithEndpoint(srv.URL))
	start := time.Now()
	for i := 0; i < 1000; i++ {
		v := c.Float()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
	assert.Less(t, time.Since(start), 250*time.Millisecond)
	assert.True(t, c.busy(), "a single refill stays in flight")
}

func TestClientFallsBackAndBacksOff(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"jsonrpc":"2.0","error":{"code":401,"message":"bad key"},"id":1}`))
	}))
	defer srv.Close()

	c := NewClient("key", WithEndpoint(srv.URL))
	c.Float()
	require.Eventually(t, func() bool { return calls.Load() == 1 && !c.busy() }, time.Second, 5*time.Millisecond)

	for i := 0; i < 5; i++ {
		v := c.Float()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
	assert.Equal(t, int32(1), calls.Load(), "no retry inside the backoff window")
}

func TestClientEmptyBatchBacksOff(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"jsonrpc":"2.0","result":{"random":{"data":[]}},"id":1}`))
	}))
	defer srv.Close()

	c := NewClient("key", WithEndpoint(srv.URL))
	c.Float()
	require.Eventually(t, func() bool { return calls.Load() == 1 && !c.busy() }, time.Second, 5*time.Millisecond)

	for i := 0; i < 5; i++ {
		c.Float()
	}
	assert.Equal(t, int32(1), calls.Load())
	assert.Zero(t, c.pooled())
}

func TestNewClientWithoutKey(t *testing.T) {
	assert.Nil(t, NewClient(""))
	_, ok := Select("key", 1).(*Client)
	assert.True(t, ok)
}
