package middlewares

import (
	"net/http"
	"testing"
)

func TestAuth(t *testing.T) {
	tests := []struct {
		name  string
		cfg   *AuthConfig
		check func(t *testing.T, r *http.Request)
	}{
		{"bearer", BearerAuth("tok"), func(t *testing.T, r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer tok" {
				t.Errorf("Authorization = %q", got)
			}
		}},
		{"basic", BasicAuth("user", "pass"), func(t *testing.T, r *http.Request) {
			u, p, ok := r.BasicAuth()
			if !ok || u != "user" || p != "pass" {
				t.Errorf("basic auth = %q %q %v", u, p, ok)
			}
		}},
		{"api key default header", APIKeyAuth("k1"), func(t *testing.T, r *http.Request) {
			if got := r.Header.Get("X-API-Key"); got != "k1" {
				t.Errorf("X-API-Key = %q", got)
			}
		}},
		{"api key custom header", APIKeyAuthHeader("k2", "X-Token"), func(t *testing.T, r *http.Request) {
			if got := r.Header.Get("X-Token"); got != "k2" {
				t.Errorf("X-Token = %q", got)
			}
		}},
		{"api key query", APIKeyAuthQuery("k3", "api_key"), func(t *testing.T, r *http.Request) {
			if got := r.URL.Query().Get("api_key"); got != "k3" {
				t.Errorf("api_key = %q", got)
			}
			if got := r.URL.Query().Get("page"); got != "2" {
				t.Errorf("existing query lost, page = %q", got)
			}
		}},
		{"api key empty name", &AuthConfig{Type: AuthAPIKey, Key: "k4"}, func(t *testing.T, r *http.Request) {
			if got := r.Header.Get("X-API-Key"); got != "k4" {
				t.Errorf("X-API-Key = %q", got)
			}
		}},
		{"custom", CustomAuth(func(r *http.Request) { r.Header.Set("X-Signed", "yes") }), func(t *testing.T, r *http.Request) {
			if got := r.Header.Get("X-Signed"); got != "yes" {
				t.Errorf("X-Signed = %q", got)
			}
		}},
		{"none", &AuthConfig{}, func(t *testing.T, r *http.Request) {
			if len(r.Header) != 0 {
				t.Errorf("expected no headers, got %v", r.Header)
			}
		}},
		{"nil", nil, func(t *testing.T, r *http.Request) {
			if len(r.Header) != 0 {
				t.Errorf("expected no headers, got %v", r.Header)
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := newUpstream(http.StatusOK)
			req := newRequest(t, http.MethodGet, "https://api.example.com/items?page=2")

			if _, err := run(req, Auth(tt.cfg), up); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.check(t, up.Last())
			if len(req.Header) != 0 || req.URL.RawQuery != "page=2" {
				t.Errorf("caller request was mutated: %v %q", req.Header, req.URL.RawQuery)
			}
		})
	}
}

func TestParseAuthType(t *testing.T) {
	tests := map[string]AuthType{"bearer": AuthBearer, "basic": AuthBasic, "api_key": AuthAPIKey, "": AuthNone, "digest": AuthNone}
	for in, want := range tests {
		if got := ParseAuthType(in); got != want {
			t.Errorf("ParseAuthType(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestAuthTypeString(t *testing.T) {
	for _, typ := range []AuthType{AuthBearer, AuthBasic, AuthAPIKey} {
		if got := ParseAuthType(typ.String()); got != typ {
			t.Errorf("ParseAuthType(%q) = %v, want %v", typ.String(), got, typ)
		}
	}
	if got := ParseAuthType(AuthCustom.String()); got != AuthNone {
		t.Errorf("custom should not parse from config, got %v", got)
	}
	if got := AuthType(42).String(); got != "unknown" {
		t.Errorf("String() = %q", got)
	}
}
