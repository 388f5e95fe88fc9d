package conditional

import (
	"net"
	"net/http"
	"strings"

	"golang.org/x/net/idna"
)

// Condition decides whether a wrapped stage runs for req. It must not modify
// the request and must be safe to call concurrently.
type Condition func(req *http.Request) bool

// Always is a Condition that always holds.
func Always(*http.Request) bool { return true }

// Never is a Condition that never holds.
func Never(*http.Request) bool { return false }

// Not inverts c.
func Not(c Condition) Condition {
	return func(req *http.Request) bool { return !c(req) }
}

// All holds when every condition holds. All() holds for every request.
func All(conds ...Condition) Condition {
	return func(req *http.Request) bool {
		for _, c := range conds {
			if !c(req) {
				return false
			}
		}
		return true
	}
}

// Any holds when at least one condition holds. Any() never holds.
func Any(conds ...Condition) Condition {
	return func(req *http.Request) bool {
		for _, c := range conds {
			if c(req) {
				return true
			}
		}
		return false
	}
}

// MethodIs holds when the request method is one of methods (case-insensitive).
func MethodIs(methods ...string) Condition {
	set := make(map[string]struct{}, len(methods))
	for _, m := range methods {
		set[strings.ToUpper(m)] = struct{}{}
	}
	return func(req *http.Request) bool {
		method := req.Method
		if method == "" {
			method = http.MethodGet
		}
		_, ok := set[strings.ToUpper(method)]
		return ok
	}
}

// SchemeIs holds when the request URL scheme is one of schemes.
func SchemeIs(schemes ...string) Condition {
	set := make(map[string]struct{}, len(schemes))
	for _, s := range schemes {
		set[strings.ToLower(s)] = struct{}{}
	}
	return func(req *http.Request) bool {
		if req.URL == nil {
			return false
		}
		_, ok := set[strings.ToLower(req.URL.Scheme)]
		return ok
	}
}

// HostIs holds when the request host matches one of hosts. Matching ignores
// case and port, and compares internationalised names in their ASCII form.
// A pattern of the form "*.example.com" matches any subdomain of example.com
// but not example.com itself.
func HostIs(hosts ...string) Condition {
	exact := make(map[string]struct{}, len(hosts))
	var suffixes []string
	for _, h := range hosts {
		if rest, ok := strings.CutPrefix(h, "*."); ok {
			suffixes = append(suffixes, "."+normalizeHost(rest))
			continue
		}
		exact[normalizeHost(h)] = struct{}{}
	}
	return func(req *http.Request) bool {
		host := requestHost(req)
		if host == "" {
			return false
		}
		if _, ok := exact[host]; ok {
			return true
		}
		for _, s := range suffixes {
			if strings.HasSuffix(host, s) {
				return true
			}
		}
		return false
	}
}

// PathPrefix holds when the URL path starts with one of prefixes.
func PathPrefix(prefixes ...string) Condition {
	return func(req *http.Request) bool {
		if req.URL == nil {
			return false
		}
		path := req.URL.Path
		if path == "" {
			path = "/"
		}
		for _, p := range prefixes {
			if strings.HasPrefix(path, p) {
				return true
			}
		}
		return false
	}
}

// HeaderPresent holds when the request carries the named header.
func HeaderPresent(name string) Condition {
	return func(req *http.Request) bool {
		return len(req.Header.Values(name)) > 0
	}
}

// HeaderEquals holds when any value of the named header equals value.
func HeaderEquals(name, value string) Condition {
	return func(req *http.Request) bool {
		for _, v := range req.Header.Values(name) {
			if v == value {
				return true
			}
		}
		return false
	}
}

// QueryPresent holds when the URL query contains the named parameter.
func QueryPresent(name string) Condition {
	return func(req *http.Request) bool {
		if req.URL == nil {
			return false
		}
		return req.URL.Query().Has(name)
	}
}

func requestHost(req *http.Request) string {
	host := ""
	if req.URL != nil {
		host = req.URL.Hostname()
	}
	if host == "" && req.Host != "" {
		host = req.Host
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
	}
	return normalizeHost(host)
}

func normalizeHost(host string) string {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		return ascii
	}
	return host
}
