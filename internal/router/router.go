package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/travora/booking-api/internal/handler"    // import the handlers that implement business logic
	"github.com/travora/booking-api/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Routes that do not require an existing session: register, login and the
	// two refresh flavors.  Each handler generates or exchanges tokens.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotating refresh: invalidates the presented refresh token and issues a new pair.
	g.POST("/refresh", a.Refresh)
	// Non-rotating refresh: issues a new access token while reusing the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT authentication.  The handler accepts a JSON
	// body containing a `refresh_token` and invalidates that token, or revokes
	// every session when called with a bearer token and no body.
	g.POST("/logout", a.Logout)

	// Protected group: every handler registered here runs the JWTAuth
	// middleware first.  Both roles may introspect their own session.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("PARTNER", "CUSTOMER"))
	auth.GET("/me", a.Me)

	// Alias outside the protected group so clients can terminate a session
	// with only a refresh token in the body.
	e.POST("/v1/logout", a.Logout)
}

// RegisterCatalog registers the unauthenticated catalog browse endpoints.
// The optional middleware chain is where the Redis response cache is
// mounted; catalog reads are the hottest and most cacheable surface.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, mw ...echo.MiddlewareFunc) {
	// Browse active offers, optionally filtered with ?category=.
	e.GET("/v1/catalog/offers", h.ListOffers, mw...)
	// Offer detail by id.
	e.GET("/v1/catalog/offers/:id", h.GetOffer, mw...)
}
