package middlewares

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/kbukum/reqmw/middleware"
)

// HeaderCache reports whether a response came from the cache.
const HeaderCache = "X-Cache"

// CacheConfig configures the response cache stage.
type CacheConfig struct {
	// TTL is how long a response stays cached. Defaults to one minute.
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl" validate:"gte=0"`
	// CleanupInterval is how often expired entries are purged. Defaults to TTL.
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval" validate:"gte=0"`
	// MaxBodyBytes caps the size of a cacheable body. Defaults to 1 MiB.
	MaxBodyBytes int64 `yaml:"max_body_bytes" mapstructure:"max_body_bytes" validate:"gte=0"`
	// VaryHeaders are request headers whose values become part of the cache
	// key, e.g. Authorization when callers with different credentials share
	// one client. Values are hashed, never stored.
	VaryHeaders []string `yaml:"vary_headers" mapstructure:"vary_headers"`
}

// ApplyDefaults fills unset fields.
func (c *CacheConfig) ApplyDefaults() {
	if c.TTL <= 0 {
		c.TTL = time.Minute
	}
	if c.CleanupInterval <= 0 {
		c.CleanupInterval = c.TTL
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 1 << 20
	}
	for i, name := range c.VaryHeaders {
		c.VaryHeaders[i] = http.CanonicalHeaderKey(name)
	}
}

// Cache is a stage that answers repeated GET and HEAD requests from memory.
// Only 200 responses without Cache-Control no-store are kept. Entries are
// keyed by method and URL plus the configured VaryHeaders; a hit never
// reaches the later stages. Request headers are otherwise ignored, so without
// VaryHeaders two requests that differ only in Authorization share an entry.
type Cache struct {
	cfg   CacheConfig
	store *cache.Cache
}

type cachedResponse struct {
	status     int
	proto      string
	protoMajor int
	protoMinor int
	header     http.Header
	body       []byte
}

// NewCache returns a response cache stage.
func NewCache(cfg CacheConfig) *Cache {
	cfg.VaryHeaders = slices.Clone(cfg.VaryHeaders)
	cfg.ApplyDefaults()
	return &Cache{
		cfg:   cfg,
		store: cache.New(cfg.TTL, cfg.CleanupInterval),
	}
}

// Len returns the number of cached entries, including expired ones not yet purged.
func (m *Cache) Len() int { return m.store.ItemCount() }

// Flush drops every cached entry.
func (m *Cache) Flush() { m.store.Flush() }

// Handle serves GET and HEAD requests from the cache when an entry exists and
// stores complete 200 responses otherwise. Other methods pass through.
func (m *Cache) Handle(req *http.Request, ext *middleware.Extensions, next middleware.Next) (*http.Response, error) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead && req.Method != "" {
		return next.Run(req, ext)
	}

	key := cacheKey(req, m.cfg.VaryHeaders)
	if v, ok := m.store.Get(key); ok {
		return v.(*cachedResponse).response(req), nil
	}

	resp, err := next.Run(req, ext)
	if err != nil || resp == nil || resp.StatusCode != http.StatusOK || noStore(resp.Header) {
		return resp, err
	}

	body, complete, err := readLimited(resp.Body, m.cfg.MaxBodyBytes)
	if err != nil {
		_ = resp.Body.Close()
		return nil, middleware.NewMiddlewareError(StageCache, err)
	}
	if !complete {
		resp.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(body), resp.Body), resp.Body}
		return resp, nil
	}
	_ = resp.Body.Close()

	entry := &cachedResponse{
		status:     resp.StatusCode,
		proto:      resp.Proto,
		protoMajor: resp.ProtoMajor,
		protoMinor: resp.ProtoMinor,
		header:     resp.Header.Clone(),
		body:       body,
	}
	m.store.SetDefault(key, entry)

	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.Header.Set(HeaderCache, "MISS")
	return resp, nil
}

func (e *cachedResponse) response(req *http.Request) *http.Response {
	header := e.header.Clone()
	header.Set(HeaderCache, "HIT")
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", e.status, http.StatusText(e.status)),
		StatusCode:    e.status,
		Proto:         e.proto,
		ProtoMajor:    e.protoMajor,
		ProtoMinor:    e.protoMinor,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(e.body)),
		ContentLength: int64(len(e.body)),
		Request:       req,
	}
}

func cacheKey(req *http.Request, vary []string) string {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	var b strings.Builder
	b.WriteString(method)
	b.WriteByte(' ')
	b.WriteString(req.URL.String())
	for _, name := range vary {
		sum := sha256.Sum256([]byte(strings.Join(req.Header.Values(name), "\n")))
		b.WriteByte('\n')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(hex.EncodeToString(sum[:]))
	}
	return b.String()
}

func noStore(h http.Header) bool {
	for _, v := range h.Values("Cache-Control") {
		if strings.Contains(strings.ToLower(v), "no-store") {
			return true
		}
	}
	return false
}

// readLimited reads at most limit bytes. complete is false when the body is
// longer, in which case the bytes read so far are returned and r still holds
// the rest.
func readLimited(r io.Reader, limit int64) ([]byte, bool, error) {
	buf, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(buf)) > limit {
		return buf, false, nil
	}
	return buf, true, nil
}
