package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"solpay/logger"
	"solpay/payment"
)

var (
	ErrMaxAttempts = errors.New("gave up waiting for settlement")
	ErrServer      = errors.New("payment service error")
)

// Client drives settlement polling against a running payment service. The
// maximum-attempt circuit breaker lives here: the service itself never
// stops answering, the client decides when to give up.
type Client struct {
	baseURL     string
	http        *http.Client
	interval    time.Duration
	maxAttempts int
	log         logger.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

func New(baseURL string, interval time.Duration, maxAttempts int, log logger.Logger) *Client {
	return &Client{
		baseURL:     baseURL,
		http:        &http.Client{Timeout: 15 * time.Second},
		interval:    interval,
		maxAttempts: maxAttempts,
		stop:        make(chan struct{}),
		log:         log,
	}
}

// Stop aborts a running WaitForSettlement. Safe to call more than once.
func (c *Client) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

type envelope struct {
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (c *Client) get(ctx context.Context, path string, q url.Values, token string, out any) (int, error) {
	u := fmt.Sprintf("%s%s?%s", c.baseURL, path, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: bad envelope: %v", ErrServer, err)
	}
	if env.Code != 0 {
		return resp.StatusCode, fmt.Errorf("%w: code %d: %s", ErrServer, env.Code, env.Message)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("%w: bad payload: %v", ErrServer, err)
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) pollToken(ctx context.Context, mpid string) (string, error) {
	q := url.Values{}
	q.Set("mpid", mpid)

	var data struct {
		PollToken string `json:"pollToken"`
	}
	if _, err := c.get(ctx, "/api/pay/poll-token", q, "", &data); err != nil {
		return "", err
	}
	return data.PollToken, nil
}

// Status runs one poll attempt: fetch a fresh token, then query the status
// endpoint with it.
func (c *Client) Status(ctx context.Context, mpid string) (payment.Status, error) {
	token, err := c.pollToken(ctx, mpid)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("mpid", mpid)

	var data struct {
		Status payment.Status `json:"status"`
	}
	if _, err := c.get(ctx, "/api/pay/status", q, token, &data); err != nil {
		return "", err
	}
	return data.Status, nil
}

// WaitForSettlement polls until the payment settles, the attempt budget is
// exhausted, the context ends, or Stop is called. Transient failures count
// as attempts but do not abort the loop.
func (c *Client) WaitForSettlement(ctx context.Context, mpid string) (payment.Status, error) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		status, err := c.Status(ctx, mpid)
		if err != nil {
			c.log.Warn("poll attempt failed", map[string]any{
				"mpid": mpid, "attempt": attempt, "err": err.Error(),
			})
		} else if status.Settled() {
			return status, nil
		}

		if attempt == c.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-c.stop:
			return "", context.Canceled
		case <-ticker.C:
		}
	}

	return "", fmt.Errorf("%w: %s after %d attempts", ErrMaxAttempts, mpid, c.maxAttempts)
}
