package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/qrfood/eatery-backend/internal/config"
)

// teeWriter forwards the response to the client while keeping a bounded
// copy for the cache.  Responses that grow past the limit are served but
// never stored.
type teeWriter struct {
	http.ResponseWriter
	status   int
	body     bytes.Buffer
	written  int64
	limit    int64
	overflow bool
}

func (w *teeWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *teeWriter) Write(b []byte) (int, error) {
	w.written += int64(len(b))
	if w.limit > 0 && w.written > w.limit {
		w.overflow = true
	} else {
		w.body.Write(b)
	}
	return w.ResponseWriter.Write(b)
}

// cachedPage is the stored form of a response: status plus headers, so a
// hit replays exactly what the handler produced, Content-Type included.
type cachedPage struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
}

func encodePage(status int, header http.Header, body []byte) ([]byte, error) {
	meta, err := json.Marshal(cachedPage{Status: status, Header: header})
	if err != nil {
		return nil, err
	}
	out := make([]byte, 4+len(meta)+len(body))
	binary.BigEndian.PutUint32(out[:4], uint32(len(meta)))
	copy(out[4:], meta)
	copy(out[4+len(meta):], body)
	return out, nil
}

func decodePage(raw []byte) (cachedPage, []byte, bool) {
	if len(raw) < 4 {
		return cachedPage{}, nil, false
	}
	mlen := int(binary.BigEndian.Uint32(raw[:4]))
	if mlen <= 0 || 4+mlen > len(raw) {
		return cachedPage{}, nil, false
	}
	var page cachedPage
	if err := json.Unmarshal(raw[4:4+mlen], &page); err != nil {
		return cachedPage{}, nil, false
	}
	return page, raw[4+mlen:], true
}

// NewRedisCache caches successful GET responses in Redis.  It sits on the
// public menu route, where every table QR code hits the same handful of
// eatery menus; a miss-path storage failure only costs the next request a
// rebuild.  Without a Redis client it passes requests straight through.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Methods[c.Request().Method] {
				return next(c)
			}
			key := cacheKey(cfg, c)

			if raw, err := rdb.Get(c.Request().Context(), key).Bytes(); err == nil {
				if page, body, ok := decodePage(raw); ok {
					return replay(c, page, body)
				}
				// Corrupt entry: drop it and rebuild below.
				_ = rdb.Del(c.Request().Context(), key).Err()
			}

			tw := &teeWriter{
				ResponseWriter: c.Response().Writer,
				status:         http.StatusOK,
				limit:          int64(cfg.MaxBodyBytes),
			}
			c.Response().Writer = tw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}

			if tw.status == http.StatusOK && !tw.overflow {
				hdr := c.Response().Header().Clone()
				hdr.Del("X-Cache")
				if payload, err := encodePage(tw.status, hdr, tw.body.Bytes()); err == nil {
					// Detached context: the client response is already sent.
					_ = rdb.SetEx(context.Background(), key, payload, cfg.TTL).Err()
				}
			}
			return nil
		}
	}
}

func replay(c echo.Context, page cachedPage, body []byte) error {
	out := c.Response().Header()
	for k, vals := range page.Header {
		if strings.EqualFold(k, "Content-Length") {
			continue
		}
		out[k] = vals
	}
	out.Set("X-Cache", "HIT")
	c.Response().WriteHeader(page.Status)
	_, err := c.Response().Write(body)
	return err
}

// cacheKey hashes the request path (and query, which carries nothing
// sensitive on public endpoints) under the configured prefix.  The concrete
// path is used rather than the route pattern so each eatery gets its own
// entry.
func cacheKey(cfg config.CacheConfig, c echo.Context) string {
	raw := c.Request().URL.Path
	if cfg.KeyStrategy != "route" {
		raw += "?" + c.Request().URL.RawQuery
	}
	sum := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%x", cfg.Prefix, sum)
}
