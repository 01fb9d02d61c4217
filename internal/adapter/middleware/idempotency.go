package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderRequestAt      = "X-Request-At"

	// How long we hold the "in-progress" lock before it must be refreshed by finishing the handler.
	provisionalLockTTL = 60 * time.Second
	// Allowed client/server clock skew for X-Request-At (in UTC).
	maxClockSkew = 10 * time.Minute
	storeTimeout = 2 * time.Second
)

// ---- Data types ----
type idempEntry struct {
	InProgress  bool      `json:"in_progress"`
	Code        int       `json:"code"`
	Body        []byte    `json:"body"`
	BodySHA256  string    `json:"body_sha256"`
	Key         string    `json:"idempotency_key"`
	RequestAtMS int64     `json:"request_at_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

type respRecorder struct {
	w    http.ResponseWriter
	buf  *bytes.Buffer
	code int
}

func (r *respRecorder) Header() http.Header { return r.w.Header() }
func (r *respRecorder) Write(b []byte) (int, error) {
	if r.buf != nil {
		r.buf.Write(b)
	}
	return r.w.Write(b)
}
func (r *respRecorder) WriteHeader(statusCode int) { r.code = statusCode; r.w.WriteHeader(statusCode) }

// Idempotency replays the first successful response of a confirmation call
// for a repeated Idempotency-Key. Keys are scoped by route and by the
// request_id carried in the JSON body.
type Idempotency struct {
	rdb redis.Cmdable
	ttl time.Duration
	log *zap.Logger
	now func() time.Time
}

func NewIdempotency(rdb redis.Cmdable, ttl time.Duration, log *zap.Logger) *Idempotency {
	if log == nil {
		log = zap.NewNop()
	}
	return &Idempotency{
		rdb: rdb,
		ttl: ttl,
		log: log.Named("idempotency"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (m *Idempotency) WithClock(now func() time.Time) *Idempotency {
	m.now = now
	return m
}

// Middleware enforces X-Request-At as epoch (seconds or ms) OR RFC3339/RFC3339Nano
// **with** timezone (Z or ±HH:MM). Only 2xx responses are stored; any other
// outcome releases the key so the client may retry with a corrected body.
func (m *Idempotency) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			method := req.Method

			// Only enforce on mutating methods
			switch method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			// Headers Validation
			idemKey := strings.TrimSpace(req.Header.Get(HeaderIdempotencyKey))
			if idemKey == "" {
				return echo.NewHTTPError(http.StatusBadRequest, "missing "+HeaderIdempotencyKey)
			}
			if !validKey(idemKey) {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid "+HeaderIdempotencyKey+" format")
			}

			reqAt, err := parseRequestAt(req.Header.Get(HeaderRequestAt))
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
			now := m.now()
			if reqAt.Before(now.Add(-maxClockSkew)) || reqAt.After(now.Add(maxClockSkew)) {
				return echo.NewHTTPError(http.StatusBadRequest, HeaderRequestAt+" too skewed")
			}

			// Buffer & hash body
			var body []byte
			if req.Body != nil {
				if body, err = io.ReadAll(req.Body); err != nil {
					m.log.Info("read request body", zap.Error(err))
					return echo.NewHTTPError(http.StatusBadRequest, "unreadable request body")
				}
			}
			req.Body = io.NopCloser(bytes.NewBuffer(body))
			bhash := bodyHash(body)

			// Provisional lock key
			key := buildKey(method, c.Path(), scopeOf(body), idemKey)
			ctx, cancel := context.WithTimeout(req.Context(), storeTimeout)
			defer cancel()

			entry := idempEntry{
				InProgress:  true,
				BodySHA256:  bhash,
				Key:         idemKey,
				RequestAtMS: reqAt.UnixMilli(),
				CreatedAt:   now,
			}
			ok, err := provisionalSet(ctx, m.rdb, key, entry)
			if err != nil {
				m.log.Error("provisional lock", zap.String("key", key), zap.Error(err))
				return echo.NewHTTPError(http.StatusServiceUnavailable, "idempotency store unavailable")
			}
			if !ok {
				// Key exists: body must match, and we may be able to replay
				cur, errLoad := loadEntry(ctx, m.rdb, key)
				if errLoad != nil {
					m.log.Warn("load idempotency entry", zap.String("key", key), zap.Error(errLoad))
				}

				if cur.BodySHA256 != "" && cur.BodySHA256 != bhash {
					return echo.NewHTTPError(http.StatusConflict, HeaderIdempotencyKey+" reused with different body")
				}
				if !cur.InProgress && cur.Code != 0 && len(cur.Body) > 0 {
					m.log.Debug("replay", zap.String("key", key), zap.Int("status", cur.Code))
					return c.Blob(cur.Code, echo.MIMEApplicationJSON, cur.Body)
				}
				if !cur.InProgress && cur.Code == http.StatusNoContent {
					return c.NoContent(cur.Code)
				}
				return echo.NewHTTPError(http.StatusConflict, "request is already in progress")
			}

			// Call next and record final response
			rec := &respRecorder{w: c.Response().Writer, buf: &bytes.Buffer{}, code: http.StatusOK}
			c.Response().Writer = rec
			if err := next(c); err != nil {
				c.Error(err)
			}

			// the request context may already be done; the store must still settle
			sctx, scancel := context.WithTimeout(context.Background(), storeTimeout)
			defer scancel()
			if rec.code < 200 || rec.code >= 300 {
				if err := release(sctx, m.rdb, key); err != nil {
					m.log.Warn("release idempotency key", zap.String("key", key), zap.Error(err))
				}
				return nil
			}
			final := idempEntry{
				InProgress:  false,
				Code:        rec.code,
				Body:        rec.buf.Bytes(),
				BodySHA256:  bhash,
				Key:         idemKey,
				RequestAtMS: reqAt.UnixMilli(),
				CreatedAt:   m.now(),
			}
			if err := saveFinal(sctx, m.rdb, key, final, m.ttl); err != nil {
				m.log.Warn("save idempotency entry", zap.String("key", key), zap.Error(err))
			}
			return nil
		}
	}
}
