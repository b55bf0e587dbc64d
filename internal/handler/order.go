package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/travora/booking-api/internal/fulfillment"
    "github.com/travora/booking-api/internal/model"
    "github.com/travora/booking-api/internal/repository"
)

// OrderHandler serves the post-confirmation fulfillment surface.  The
// same handler backs the partner and customer route groups; the role
// claim decides both visibility (partners see every order, customers
// only their own) and which transitions fulfillment.Authorize will
// permit.
type OrderHandler struct {
    Orders   *repository.OrderRepo
    Bookings *repository.BookingRepo
    Offers   *repository.OfferRepo
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(orders *repository.OrderRepo, bookings *repository.BookingRepo, offers *repository.OfferRepo) *OrderHandler {
    if orders == nil || bookings == nil || offers == nil {
        panic("nil dependency passed to NewOrderHandler")
    }
    return &OrderHandler{Orders: orders, Bookings: bookings, Offers: offers}
}

// ListOrders handles GET /v1/partner/orders and GET /v1/orders.
func (h *OrderHandler) ListOrders(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized", ""))
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    scope := userID
    if getRole(c) == fulfillment.RolePartner {
        scope = 0 // partners operate across all orders
    }
    list, err := h.Orders.List(ctx, scope)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, errorJSON("database error", ""))
    }
    return c.JSON(http.StatusOK, echo.Map{"orders": list})
}

// GetOrder handles GET /v1/partner/orders/:id and GET /v1/orders/:id.
func (h *OrderHandler) GetOrder(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized", ""))
    }
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, errorJSON("invalid order id", ""))
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    o, err := h.Orders.GetByID(ctx, id)
    if errors.Is(err, repository.ErrNotFound) {
        return c.JSON(http.StatusNotFound, errorJSON("order not found", ""))
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, errorJSON("database error", ""))
    }
    if getRole(c) != fulfillment.RolePartner && o.CustomerID != userID {
        return c.JSON(http.StatusNotFound, errorJSON("order not found", ""))
    }
    return c.JSON(http.StatusOK, o)
}

// UpdateOrderStatus handles PATCH /v1/partner/orders/:id and PATCH
// /v1/orders/:id with {status}.  The transition is validated against
// the order's track and the actor's role before anything is written,
// and a cancellation releases the booking's reserved inventory in the
// same transaction as the status change.
func (h *OrderHandler) UpdateOrderStatus(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized", ""))
    }
    role := getRole(c)
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, errorJSON("invalid order id", ""))
    }
    var body struct {
        Status string `json:"status"`
    }
    if err := c.Bind(&body); err != nil || body.Status == "" {
        return c.JSON(http.StatusBadRequest, errorJSON("status is required", ""))
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()

    tx, err := h.Orders.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, errorJSON("failed to start transaction", ""))
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    o, err := h.Orders.GetForUpdateTx(ctx, tx, id)
    if errors.Is(err, repository.ErrNotFound) {
        return c.JSON(http.StatusNotFound, errorJSON("order not found", ""))
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, errorJSON("database error", ""))
    }
    if role != fulfillment.RolePartner && o.CustomerID != userID {
        return c.JSON(http.StatusNotFound, errorJSON("order not found", ""))
    }

    track := fulfillment.Track(o.Track)
    if err := fulfillment.Authorize(track, o.Status, body.Status, role); err != nil {
        switch {
        case errors.Is(err, fulfillment.ErrActorNotAllowed):
            return c.JSON(http.StatusForbidden, errorJSON(err.Error(), ""))
        default:
            return c.JSON(http.StatusConflict, errorJSON(err.Error(), ""))
        }
    }

    if err := h.Orders.UpdateStatusTx(ctx, tx, o.ID, o.Status, body.Status); err != nil {
        return c.JSON(http.StatusConflict, errorJSON("order changed concurrently", ""))
    }

    // Keep the customer's booking view in step with fulfillment and
    // make cancellation return its inventory atomically.
    switch body.Status {
    case fulfillment.StatusCancelled:
        b, err := h.Bookings.GetForUpdateTx(ctx, tx, o.BookingID, o.CustomerID)
        if err != nil {
            return c.JSON(http.StatusInternalServerError, errorJSON("database error", ""))
        }
        if err := h.Bookings.UpdateStatusTx(ctx, tx, b.ID, model.BookingConfirmed, model.BookingCancelled); err != nil {
            return c.JSON(http.StatusConflict, errorJSON("booking changed concurrently", ""))
        }
        for _, it := range b.Items {
            if err := h.Offers.ReleaseTx(ctx, tx, it.OfferID, it.Qty); err != nil {
                return c.JSON(http.StatusInternalServerError, errorJSON("failed to release inventory", ""))
            }
        }
    case fulfillment.StatusDelivered, fulfillment.StatusCheckedOut:
        if err := h.Bookings.UpdateStatusTx(ctx, tx, o.BookingID, model.BookingConfirmed, model.BookingCompleted); err != nil {
            return c.JSON(http.StatusConflict, errorJSON("booking changed concurrently", ""))
        }
    }

    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, errorJSON("failed to commit", ""))
    }
    committed = true

    o.Status = body.Status
    return c.JSON(http.StatusOK, o)
}
