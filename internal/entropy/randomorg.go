package entropy

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const (
	randomOrgEndpoint = "https://api.random.org/json-rpc/4/invoke"
	randomOrgBatch    = 100
	randomOrgLowWater = 10
)

// Client is a Source backed by random.org decimal fractions, drawn from a
// local pool. The pool is topped up in the background once it runs low;
// Float never waits on the network and falls back to crypto/rand while
// the pool is empty.
type Client struct {
	apiKey   string
	endpoint string
	batch    int
	lowWater int
	client   *http.Client

	mu        sync.Mutex
	pool      []float64
	refilling bool
	failedAt  time.Time
	backoff   time.Duration
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithEndpoint points the client at a different JSON-RPC URL.
func WithEndpoint(url string) ClientOption {
	return func(c *Client) { c.endpoint = url }
}

// NewClient creates a random.org client. Returns nil if apiKey is empty.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	if apiKey == "" {
		return nil
	}
	c := &Client{
		apiKey:   apiKey,
		endpoint: randomOrgEndpoint,
		batch:    randomOrgBatch,
		lowWater: randomOrgLowWater,
		client:   &http.Client{Timeout: 15 * time.Second},
		backoff:  time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled returns true if the client has a valid API key.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Float returns a random float64 in [0, 1).
func (c *Client) Float() float64 {
	if c == nil {
		return cryptoRandFloat()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.pool) < c.lowWater && !c.refilling && time.Since(c.failedAt) >= c.backoff {
		c.refilling = true
		go c.refill()
	}

	if len(c.pool) == 0 {
		return cryptoRandFloat()
	}
	v := c.pool[0]
	c.pool = c.pool[1:]
	return v
}

// refill fetches one batch and appends it to the pool. At most one refill
// is in flight at a time.
func (c *Client) refill() {
	vals, err := c.fetch(context.Background())

	c.mu.Lock()
	defer c.mu.Unlock()
	c.refilling = false
	if err != nil {
		c.failedAt = time.Now()
		slog.Warn("random.org refill failed, using crypto/rand", "error", err, "retry_in", c.backoff)
		return
	}
	c.pool = append(c.pool, vals...)
	slog.Debug("random.org pool refilled", "count", len(vals), "pool", len(c.pool))
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      int       `json:"id"`
}

type rpcParams struct {
	APIKey        string `json:"apiKey"`
	N             int    `json:"n"`
	DecimalPlaces int    `json:"decimalPlaces"`
}

type rpcResponse struct {
	Result struct {
		Random struct {
			Data []float64 `json:"data"`
		} `json:"random"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// fetch requests one batch of fractions.
func (c *Client) fetch(ctx context.Context) ([]float64, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "generateDecimalFractions",
		Params:  rpcParams{APIKey: c.apiKey, N: c.batch, DecimalPlaces: 6},
		ID:      1,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("random.org request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("random.org returned %d", resp.StatusCode)
	}

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("random.org decode: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("random.org error %d: %s", out.Error.Code, out.Error.Message)
	}
	if len(out.Result.Random.Data) == 0 {
		return nil, errors.New("random.org returned no data")
	}

	vals := make([]float64, 0, len(out.Result.Random.Data))
	for _, v := range out.Result.Random.Data {
		// Fractions are in [0, 1]; fold the closed end back in.
		if v >= 1 || v < 0 {
			v = 0
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// cryptoRandFloat draws 53 bits from crypto/rand.
func cryptoRandFloat() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0.5
	}
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}
