package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/travora/booking-api/internal/handler"    // partner handlers
	"github.com/travora/booking-api/internal/middleware" // JWT + role middlewares
)

// RegisterPartner registers PARTNER-scoped endpoints under /v1/partner.
// All routes require a valid JWT and PARTNER role.  Partners operate the
// fulfillment state machine across every order.
func RegisterPartner(e *echo.Echo, orders *handler.OrderHandler, jwtSecret string) {
	// Attach middlewares at group construction time for clarity.
	g := e.Group(
		"/v1/partner",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("PARTNER"),
	)

	// ---- Orders ----
	g.GET("/orders", orders.ListOrders)
	g.GET("/orders/:id", orders.GetOrder)
	// PATCH carries {status}; the handler validates the transition against
	// the order's track before anything is written.
	g.PATCH("/orders/:id", orders.UpdateOrderStatus)
}
