package middlewares

import (
	"net/http"

	"github.com/kbukum/reqmw/middleware"
)

// AuthType selects how credentials are attached to a request.
type AuthType int

const (
	// AuthNone leaves requests unauthenticated.
	AuthNone AuthType = iota
	// AuthBearer sends "Authorization: Bearer <token>".
	AuthBearer
	// AuthBasic sends HTTP Basic credentials.
	AuthBasic
	// AuthAPIKey sends a key in a header or a query parameter.
	AuthAPIKey
	// AuthCustom hands the request to a caller-supplied function.
	AuthCustom
)

// DefaultAPIKeyName is the header or query parameter used for API keys when
// none is configured.
const DefaultAPIKeyName = "X-API-Key"

var authTypeNames = map[AuthType]string{
	AuthNone:   "none",
	AuthBearer: "bearer",
	AuthBasic:  "basic",
	AuthAPIKey: "api_key",
	AuthCustom: "custom",
}

// String returns the config name of t.
func (t AuthType) String() string {
	if name, ok := authTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseAuthType maps a config name to an AuthType. Unknown names and "custom"
// map to AuthNone, since a custom function cannot come from config.
func ParseAuthType(name string) AuthType {
	for t, n := range authTypeNames {
		if n == name && t != AuthCustom {
			return t
		}
	}
	return AuthNone
}

// AuthConfig holds the credentials for one auth method. Only the fields of
// the selected Type are read.
type AuthConfig struct {
	Type AuthType

	// AuthBearer
	Token string

	// AuthBasic
	Username string
	Password string

	// AuthAPIKey. In is "header" (default) or "query"; Name defaults to
	// DefaultAPIKeyName.
	Key  string
	In   string
	Name string

	// AuthCustom
	Apply func(*http.Request)
}

// BearerAuth returns a config that sends token as a bearer token.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// BasicAuth returns a config that sends HTTP Basic credentials.
func BasicAuth(username, password string) *AuthConfig {
	return &AuthConfig{Type: AuthBasic, Username: username, Password: password}
}

// APIKeyAuth sends key in the X-API-Key header.
func APIKeyAuth(key string) *AuthConfig {
	return APIKeyAuthHeader(key, DefaultAPIKeyName)
}

// APIKeyAuthHeader sends key in the named header.
func APIKeyAuthHeader(key, headerName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "header", Name: headerName}
}

// APIKeyAuthQuery sends key as the named query parameter.
func APIKeyAuthQuery(key, paramName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "query", Name: paramName}
}

// CustomAuth runs fn on a clone of every request.
func CustomAuth(fn func(*http.Request)) *AuthConfig {
	return &AuthConfig{Type: AuthCustom, Apply: fn}
}

func (a *AuthConfig) keyName() string {
	if a.Name == "" {
		return DefaultAPIKeyName
	}
	return a.Name
}

// authenticate writes the credentials onto req, which must already be a
// private copy.
func (a *AuthConfig) authenticate(req *http.Request) {
	switch a.Type {
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+a.Token)
	case AuthBasic:
		req.SetBasicAuth(a.Username, a.Password)
	case AuthAPIKey:
		if a.In != "query" {
			req.Header.Set(a.keyName(), a.Key)
			return
		}
		q := req.URL.Query()
		q.Set(a.keyName(), a.Key)
		req.URL.RawQuery = q.Encode()
	case AuthCustom:
		if a.Apply != nil {
			a.Apply(req)
		}
	}
}

// Auth returns a stage that attaches cfg's credentials to every request it
// sees. The caller's request is never modified. A nil config or AuthNone
// passes requests through untouched.
func Auth(cfg *AuthConfig) middleware.Middleware {
	if cfg == nil || cfg.Type == AuthNone {
		return middleware.Func(func(req *http.Request, ext *middleware.Extensions, next middleware.Next) (*http.Response, error) {
			return next.Run(req, ext)
		})
	}
	return middleware.Func(func(req *http.Request, ext *middleware.Extensions, next middleware.Next) (*http.Response, error) {
		authed := req.Clone(req.Context())
		cfg.authenticate(authed)
		return next.Run(authed, ext)
	})
}
