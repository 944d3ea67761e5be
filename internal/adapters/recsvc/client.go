// internal/adapters/recsvc/client.go
package recsvc

import (
	"context"
	crand "crypto/rand"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"trip_planner/internal/adapters/observability"
	"trip_planner/internal/domain"
)

const serviceName = "recommendation-service"

type Options struct {
	// Attempts is the total number of tries per call; 1 means no retry.
	Attempts int
	RPS      int
	Timeout  time.Duration
	// BreakerFailures is the number of consecutive failures that opens the breaker.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

type Client struct {
	base     string
	hc       *http.Client
	rl       *rate.Limiter
	cb       *gobreaker.CircuitBreaker[any]
	attempts int
}

func New(base string, o Options) (*Client, error) {
	if strings.TrimSpace(base) == "" {
		return nil, fmt.Errorf("recommendation service base URL is required")
	}
	if o.Attempts <= 0 {
		o.Attempts = 1
	}
	if o.RPS <= 0 {
		o.RPS = 5
	}
	if o.Timeout <= 0 {
		o.Timeout = 10 * time.Second
	}
	if o.BreakerFailures == 0 {
		o.BreakerFailures = 5
	}
	if o.BreakerCooldown <= 0 {
		o.BreakerCooldown = 30 * time.Second
	}

	observability.BreakerState.WithLabelValues(serviceName).Set(0)
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        serviceName,
		MaxRequests: 1,
		Timeout:     o.BreakerCooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= o.BreakerFailures
		},
		// a missing user is an answer, not an outage
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			observability.BreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &Client{
		base:     strings.TrimRight(base, "/"),
		hc:       &http.Client{Timeout: o.Timeout},
		rl:       rate.NewLimiter(rate.Limit(o.RPS), o.RPS),
		cb:       cb,
		attempts: o.Attempts,
	}, nil
}

// ---- Public API ----

// GetRecommendation fetches GET {base}/recommendation/{userName}. The service
// is unauthenticated and has no fixed schema; any JSON value is returned as is.
// A non-2xx reply comes back as *domain.RemoteError carrying its decoded body.
func (c *Client) GetRecommendation(ctx context.Context, userName string) (any, error) {
	u := fmt.Sprintf("%s/recommendation/%s", c.base, url.PathEscape(userName))
	return c.cb.Execute(func() (any, error) {
		var out any
		if err := c.get(ctx, u, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
}

// ---- Internals ----

// remoteError drains the body and keeps it when it is valid JSON.
func remoteError(resp *http.Response) *domain.RemoteError {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
	e := &domain.RemoteError{Status: resp.StatusCode}
	var v any
	if err := json.Unmarshal(b, &v); err == nil {
		e.Body, e.Parsed = v, true
	}
	return e
}

// get performs a GET with client-side rate limiting, optional retries, and
// JSON decode into out. Retries on 429 and transient 5xx, honoring
// Retry-After when provided. Other non-2xx replies are not retried.
func (c *Client) get(ctx context.Context, url string, out any) error {
	// client-side rate limiting
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	last := c.attempts - 1
	var lastErr error
	for i := 0; i < c.attempts; i++ {
		// build a fresh request each attempt
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "trip-planner/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(serviceName, "recommendation", 0, time.Since(start))
			// network error or context canceled
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < last && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal(serviceName, "recommendation", resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			if i < last {
				// Prefer server-provided Retry-After; otherwise exponential backoff.
				wait := retryAfter(resp)
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				if wait == 0 {
					wait = backoff(i)
				}
				lastErr = fmt.Errorf("remote %d", resp.StatusCode)
				if sleepCtx(ctx, wait) {
					continue
				}
				return ctx.Err()
			}
			return remoteError(resp)

		default:
			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				return remoteError(resp)
			}
			// any 2xx: the body must be JSON, an empty one included
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err
		}
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

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
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

// backoff returns an exponential delay (200ms, 400ms, 800ms...) with up to
// +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
