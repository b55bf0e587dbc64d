package router

import (
	"github.com/labstack/echo/v4"

	"github.com/travora/booking-api/internal/handler"
	"github.com/travora/booking-api/internal/middleware"
)

// RegisterCustomer registers customer-scoped endpoints under /v1.  All routes
// require a valid JWT and the CUSTOMER role.  Customers manage their cart,
// start a checkout hold, pay or cancel their bookings and follow (or cancel)
// the resulting fulfillment orders.
func RegisterCustomer(e *echo.Echo, cart *handler.CartHandler, checkout *handler.CheckoutHandler, bookings *handler.BookingHandler, orders *handler.OrderHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER"),
	)

	// ---- Cart ----
	g.GET("/cart", cart.GetCart)
	g.POST("/cart/items", cart.AddItem)
	g.PATCH("/cart/items/:id", cart.UpdateItem)
	g.DELETE("/cart/items/:id", cart.RemoveItem)
	g.POST("/cart/apply-coupon", cart.ApplyCoupon)

	// ---- Checkout ----
	// The category in the path selects which selection shape the body must
	// carry; a successful POST reserves inventory and opens a timed hold.
	g.POST("/checkout/:category", checkout.Checkout)

	// ---- Bookings ----
	g.GET("/bookings", bookings.ListBookings)
	g.GET("/bookings/:id", bookings.GetBooking)
	// PATCH carries {action: cancel} or {action: pay}.
	g.PATCH("/bookings/:id", bookings.PatchBooking)

	// ---- Orders ----
	// Customers see only their own orders and may only cancel; the
	// transition guard in the handler enforces the rest.
	g.GET("/orders", orders.ListOrders)
	g.GET("/orders/:id", orders.GetOrder)
	g.PATCH("/orders/:id", orders.UpdateOrderStatus)
}
