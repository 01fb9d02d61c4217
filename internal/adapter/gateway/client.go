// Package gateway holds HTTP clients for the account and customer services.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/d1ma11/deposit-service/internal/domain/apperr"

	"go.uber.org/zap"
)

const maxErrorBody = 512

// client is the shared JSON-over-HTTP plumbing of both gateways.
type client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func newClient(name, baseURL string, timeout time.Duration, log *zap.Logger) client {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named(name)
	base := strings.TrimRight(baseURL, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	return client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// HTTPClient exposes the underlying client so tests can intercept transport.
func (c client) HTTPClient() *http.Client { return c.httpClient }

// statusError maps a non-2xx upstream status to a domain error. 404 is left
// to the caller through notFound.
func statusError(op string, code int, body []byte, notFound *apperr.Error) error {
	msg := strings.TrimSpace(string(body))
	switch {
	case code == http.StatusBadRequest:
		return apperr.ErrUpstreamBadRequest.Withf("%s: %s", op, msg)
	case code == http.StatusNotFound && notFound != nil:
		return notFound.Withf("%s: %s", op, msg)
	}
	return apperr.ErrUpstreamUnavailable.Withf("%s: unexpected status %d", op, code)
}

// do sends in as JSON (when non-nil) and decodes the 2xx body into out (when non-nil).
func (c client) do(ctx context.Context, op, method, path string, in, out any, notFound *apperr.Error) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("upstream call failed", zap.String("op", op), zap.Error(err))
		return apperr.ErrUpstreamUnavailable.Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.Warn("upstream returned error",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", b),
		)
		return statusError(op, resp.StatusCode, b, notFound)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.ErrUpstreamUnavailable.Wrap(fmt.Errorf("%s: decode response: %w", op, err))
	}
	return nil
}
