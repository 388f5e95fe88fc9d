package middlewares

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kbukum/reqmw/middleware"
)

// ErrMissingJWTSecret is returned when a JWT stage has no signing secret.
var ErrMissingJWTSecret = errors.New("middlewares: jwt secret is required")

// JWTConfig configures a stage that signs a fresh HS256 token per request.
type JWTConfig struct {
	// Secret is the HMAC signing key.
	Secret string `yaml:"secret" mapstructure:"secret"`
	// Issuer is the iss claim.
	Issuer string `yaml:"issuer" mapstructure:"issuer"`
	// Subject is the sub claim.
	Subject string `yaml:"subject" mapstructure:"subject"`
	// TTL is the token lifetime. Defaults to one minute.
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl" validate:"gte=0"`
	// Header receives the token. Defaults to Authorization with a Bearer prefix.
	Header string `yaml:"header" mapstructure:"header"`
}

// ApplyDefaults fills unset fields.
func (c *JWTConfig) ApplyDefaults() {
	if c.TTL <= 0 {
		c.TTL = time.Minute
	}
	if c.Header == "" {
		c.Header = "Authorization"
	}
}

// JWTBearer returns a stage that signs a short-lived token for every request.
// The audience is the request host, so a token minted for one upstream is not
// accepted by another.
func JWTBearer(cfg JWTConfig) (middleware.Middleware, error) {
	return newJWTSigner(cfg, time.Now)
}

type jwtSigner struct {
	cfg JWTConfig
	key []byte
	now func() time.Time
}

func newJWTSigner(cfg JWTConfig, now func() time.Time) (*jwtSigner, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingJWTSecret
	}
	cfg.ApplyDefaults()
	return &jwtSigner{cfg: cfg, key: []byte(cfg.Secret), now: now}, nil
}

func (s *jwtSigner) Handle(req *http.Request, ext *middleware.Extensions, next middleware.Next) (*http.Response, error) {
	token, err := s.sign(req)
	if err != nil {
		return nil, middleware.NewMiddlewareError(StageJWT, err)
	}

	signed := req.Clone(req.Context())
	if strings.EqualFold(s.cfg.Header, "Authorization") {
		signed.Header.Set("Authorization", "Bearer "+token)
	} else {
		signed.Header.Set(s.cfg.Header, token)
	}
	return next.Run(signed, ext)
}

func (s *jwtSigner) sign(req *http.Request) (string, error) {
	now := s.now()
	claims := gojwt.RegisteredClaims{
		Issuer:    s.cfg.Issuer,
		Subject:   s.cfg.Subject,
		Audience:  gojwt.ClaimStrings{requestHost(req)},
		IssuedAt:  gojwt.NewNumericDate(now),
		NotBefore: gojwt.NewNumericDate(now),
		ExpiresAt: gojwt.NewNumericDate(now.Add(s.cfg.TTL)),
		ID:        uuid.NewString(),
	}

	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func requestHost(req *http.Request) string {
	if req.URL != nil && req.URL.Hostname() != "" {
		return req.URL.Hostname()
	}
	host := req.Host
	if i := strings.LastIndexByte(host, ':'); i >= 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	return host
}
