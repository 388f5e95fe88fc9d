// Package conditional provides a decorator that runs a wrapped pipeline stage
// only for requests matching a Condition.
//
// When the condition holds, the wrapped stage handles the request and decides
// itself whether to continue the chain. Otherwise the decorator is transparent
// and hands the request straight to the next stage.
//
// # Usage
//
//	// Only sign requests bound for the internal API.
//	signed := conditional.New(
//	    middlewares.JWTBearer(jwtCfg),
//	    conditional.HostIs("api.internal.example.com"),
//	)
//
//	// Cache GETs under /catalog.
//	cached := conditional.New(
//	    middlewares.Cache(cacheCfg),
//	    conditional.All(conditional.MethodIs(http.MethodGet), conditional.PathPrefix("/catalog")),
//	)
//
//	client := middleware.NewClientBuilder(nil).With(signed).With(cached).Build()
package conditional
