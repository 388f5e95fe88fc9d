// Package middleware provides the request pipeline that wraps an *http.Client
// with a chain of pluggable stages.
//
// A stage implements Middleware. It receives the outgoing request, a per-call
// Extensions bag and a Next continuation for the rest of the chain. It may
// modify the request, answer it directly, or call next.Run to continue.
//
// # Basic Usage
//
//	client := middleware.NewClientBuilder(&http.Client{Timeout: 10 * time.Second}).
//	    With(middlewares.RequestID()).
//	    With(middlewares.Logging(log)).
//	    Build()
//
//	resp, err := client.Get(ctx, "https://api.example.com/users/123")
//
// # Extensions
//
// Extensions carry typed values between stages for the lifetime of a single
// request execution:
//
//	type tenant string
//	ext := new(middleware.Extensions)
//	middleware.Insert(ext, tenant("acme"))
//	resp, err := client.DoWithExtensions(req, ext)
package middleware
