package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"pickem/engine/internal/pickemerr"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = 1 * time.Second
)

// httpResult carries the pieces of an upstream response the adapters
// care about beyond the body.
type httpResult struct {
	body           []byte
	status         int
	quotaRemaining int // parsed from a quota header, or -1
}

// getJSON performs a GET with retry and exponential backoff, in the
// shape all adapters share. 5xx and network errors retry; 429 is
// returned to the caller (the odds adapter treats it as empty, others as
// transient); auth failures never retry. headers are applied to every
// attempt; quotaHeader, if non-empty, names the response header carrying
// the source's remaining call budget.
func getJSON(ctx context.Context, client *http.Client, source, url string, headers map[string]string, quotaHeader string) (*httpResult, error) {
	var lastErr error
	for attempt := 0; attempt <= defaultMaxRetries; attempt++ {
		if attempt > 0 {
			backoff := defaultRetryDelay * time.Duration(1<<uint(attempt-1))
			log.Info().
				Str("source", source).
				Int("attempt", attempt).
				Dur("backoff", backoff).
				Msg("Retrying upstream request after backoff")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "pickem-engine/1.0")
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		log.Debug().
			Str("source", source).
			Str("url", url).
			Int("attempt", attempt+1).
			Msg("Making upstream request")

		resp, err := client.Do(req)
		if err != nil {
			lastErr = &pickemerr.UpstreamError{Source: source, Err: err}
			if attempt < defaultMaxRetries {
				continue
			}
			return nil, lastErr
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = &pickemerr.UpstreamError{Source: source, Err: err}
			if attempt < defaultMaxRetries {
				continue
			}
			return nil, lastErr
		}

		result := &httpResult{
			body:           body,
			status:         resp.StatusCode,
			quotaRemaining: parseQuotaHeader(resp, quotaHeader),
		}

		switch resp.StatusCode {
		case http.StatusOK:
			return result, nil

		case http.StatusTooManyRequests:
			// No retry: the caller decides whether 429 is empty or transient.
			return result, &pickemerr.UpstreamError{
				Source: source,
				Err:    fmt.Errorf("rate limited (status 429)"),
			}

		case http.StatusServiceUnavailable, http.StatusGatewayTimeout,
			http.StatusInternalServerError, http.StatusBadGateway:
			lastErr = &pickemerr.UpstreamError{
				Source: source,
				Err:    fmt.Errorf("retryable status %d", resp.StatusCode),
			}
			if attempt < defaultMaxRetries {
				log.Warn().
					Str("source", source).
					Int("status", resp.StatusCode).
					Int("attempt", attempt+1).
					Msg("Received retryable error, will retry")
				continue
			}
			return result, lastErr

		case http.StatusUnauthorized, http.StatusForbidden:
			return result, &pickemerr.UpstreamError{
				Source: source,
				Err:    fmt.Errorf("authentication failed (status %d)", resp.StatusCode),
			}

		default:
			return result, &pickemerr.UpstreamError{
				Source: source,
				Err:    fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body, 200)),
			}
		}
	}

	return nil, lastErr
}

func parseQuotaHeader(resp *http.Response, header string) int {
	if header == "" {
		return -1
	}
	val := resp.Header.Get(header)
	if val == "" {
		return -1
	}
	var quota int
	if _, err := fmt.Sscanf(val, "%d", &quota); err != nil {
		return -1
	}
	return quota
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// newHTTPClient builds the transport all adapters use.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
