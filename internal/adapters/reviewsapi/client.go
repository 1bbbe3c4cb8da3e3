// internal/adapters/reviewsapi/client.go
package reviewsapi

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"company_reviews/internal/adapters/observability"
	"company_reviews/internal/app"
	"company_reviews/internal/domain"
)

const maxAttempts = 4

// Client talks to a running review service on behalf of one user.
type Client struct {
	base  string
	hc    *http.Client
	token string
	rl    *rate.Limiter
}

func New(base, token string, rps int) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("API token is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base:  strings.TrimRight(base, "/"),
		hc:    &http.Client{Timeout: 20 * time.Second},
		token: token,
		rl:    rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Public API ----

// CreateReview submits payload. A rejected payload comes back as
// domain.FieldErrors.
func (c *Client) CreateReview(ctx context.Context, payload map[string]any) (app.ReviewOut, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return app.ReviewOut{}, fmt.Errorf("encode review: %w", err)
	}
	var out app.ReviewOut
	return out, c.do(ctx, http.MethodPost, "/reviews", "/reviews", body, &out)
}

func (c *Client) ListReviews(ctx context.Context) ([]app.ReviewOut, error) {
	var out []app.ReviewOut
	return out, c.do(ctx, http.MethodGet, "/reviews", "/reviews", nil, &out)
}

func (c *Client) GetReview(ctx context.Context, id int64) (app.ReviewOut, error) {
	var out app.ReviewOut
	return out, c.do(ctx, http.MethodGet, fmt.Sprintf("/reviews/%d", id), "/reviews/{id}", nil, &out)
}

// ---- Internals ----

// do performs one logical call with client-side rate limiting and retries.
// GETs retry on 429 and transient 5xx; POSTs only on 429 since the server
// has no idempotency keys. Retry-After is honored when present.
func (c *Client) do(ctx context.Context, method, path, endpoint string, body []byte, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		last := i == maxAttempts-1

		// build a fresh request each attempt
		var rdr io.Reader
		if body != nil {
			rdr = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "company-reviews-importer/1.0")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("reviews-api", endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			// a POST that may have reached the server is not replayed
			if method != http.MethodGet || last || !sleepCtx(ctx, backoff(i)) {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return lastErr
			}
			continue
		}
		observability.ObserveExternal("reviews-api", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK, http.StatusCreated:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case http.StatusBadRequest:
			var fe domain.FieldErrors
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
			resp.Body.Close()
			if err := json.Unmarshal(b, &fe); err == nil && fe.Len() > 0 {
				return fe
			}
			return fmt.Errorf("bad request: %s", strings.TrimSpace(string(b)))

		case http.StatusNotFound:
			resp.Body.Close()
			return domain.ErrNotFound

		case http.StatusUnauthorized, http.StatusForbidden:
			resp.Body.Close()
			return domain.ErrForbidden

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			resp.Body.Close()
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if method != http.MethodGet && resp.StatusCode != http.StatusTooManyRequests {
				return lastErr
			}
			if wait == 0 {
				wait = backoff(i)
			}
			if !last && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}

	if lastErr == nil {
		lastErr = errors.New("no attempt succeeded")
	}
	return lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 100ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 100 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
