package handler

import (
    "context"
    "errors"
    "log"
    "net/http"
    "strconv"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/travora/booking-api/internal/fulfillment"
    "github.com/travora/booking-api/internal/model"
    "github.com/travora/booking-api/internal/payment"
    "github.com/travora/booking-api/internal/queue"
    "github.com/travora/booking-api/internal/repository"
)

// ConfirmationPublisher emits the booking.confirmed event to the
// notification collaborator.  Publish failures are logged and never
// block confirmation.
type ConfirmationPublisher func(ctx context.Context, ev queue.BookingConfirmedEvent) error

// BookingHandler serves the customer-facing hold lifecycle: listing,
// detail, cancellation and payment.  Expiry is enforced lazily on
// every path – a held booking past its deadline is treated as
// cancelled whether or not a sweep has rewritten the row – and every
// state change shares a transaction with its inventory side effect.
type BookingHandler struct {
    Bookings *repository.BookingRepo
    Offers   *repository.OfferRepo
    Orders   *repository.OrderRepo
    Vouchers *repository.VoucherRepo
    Charger  payment.Charger
    Publish  ConfirmationPublisher
}

// NewBookingHandler constructs a BookingHandler.  Publish may be nil
// when no broker is configured; everything else must be non-nil.
func NewBookingHandler(bookings *repository.BookingRepo, offers *repository.OfferRepo, orders *repository.OrderRepo, vouchers *repository.VoucherRepo, charger payment.Charger, publish ConfirmationPublisher) *BookingHandler {
    if bookings == nil || offers == nil || orders == nil || vouchers == nil || charger == nil {
        panic("nil dependency passed to NewBookingHandler")
    }
    return &BookingHandler{Bookings: bookings, Offers: offers, Orders: orders, Vouchers: vouchers, Charger: charger, Publish: publish}
}

// ListBookings handles GET /v1/bookings?view=upcoming|cancelled.  The
// repository classifies lapsed holds in SQL and the effective status
// is applied per row, so an expired-but-unswept hold always shows in
// the cancelled view and never in upcoming.
func (h *BookingHandler) ListBookings(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized", ""))
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    view := c.QueryParam("view")
    list, err := h.Bookings.ListForUser(ctx, userID, view)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, errorJSON("database error", ""))
    }
    now := time.Now().UTC()
    for i := range list {
        list[i].Status = list[i].EffectiveStatus(now)
    }
    return c.JSON(http.StatusOK, echo.Map{"bookings": list})
}

// GetBooking handles GET /v1/bookings/:id.
func (h *BookingHandler) GetBooking(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized", ""))
    }
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, errorJSON("invalid booking id", ""))
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    b, err := h.Bookings.GetForUser(ctx, id, userID)
    if errors.Is(err, repository.ErrNotFound) {
        return c.JSON(http.StatusNotFound, errorJSON("booking not found", ""))
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, errorJSON("database error", ""))
    }
    b.Status = b.EffectiveStatus(time.Now().UTC())
    return c.JSON(http.StatusOK, b)
}

// PatchBooking handles PATCH /v1/bookings/:id with {action: cancel}
// or {action: pay}.
func (h *BookingHandler) PatchBooking(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized", ""))
    }
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, errorJSON("invalid booking id", ""))
    }
    var body struct {
        Action string `json:"action"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, errorJSON("invalid request body", ""))
    }
    switch body.Action {
    case "cancel":
        return h.cancel(c, id, userID)
    case "pay":
        return h.pay(c, id, userID)
    default:
        return c.JSON(http.StatusBadRequest, errorJSON("unknown action", ""))
    }
}

// cancel releases a held booking and its reserved inventory in one
// transaction.  Cancelling an already lapsed hold succeeds with the
// same result; cancelling after confirmation is a conflict – the
// fulfillment machine owns that lifecycle.
func (h *BookingHandler) cancel(c echo.Context, id, userID uint64) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    tx, err := h.Bookings.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, errorJSON("failed to start transaction", ""))
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    b, err := h.Bookings.GetForUpdateTx(ctx, tx, id, userID)
    if errors.Is(err, repository.ErrNotFound) {
        return c.JSON(http.StatusNotFound, errorJSON("booking not found", ""))
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, errorJSON("database error", ""))
    }
    if b.Status == model.BookingCancelled {
        return c.JSON(http.StatusOK, b) // already cancelled, idempotent
    }
    if b.Status != model.BookingHeld {
        return c.JSON(http.StatusConflict, errorJSON("booking can no longer be cancelled here", ""))
    }

    if err := h.Bookings.UpdateStatusTx(ctx, tx, b.ID, model.BookingHeld, model.BookingCancelled); err != nil {
        return c.JSON(http.StatusConflict, errorJSON("booking changed concurrently", ""))
    }
    for _, it := range b.Items {
        if err := h.Offers.ReleaseTx(ctx, tx, it.OfferID, it.Qty); err != nil {
            return c.JSON(http.StatusInternalServerError, errorJSON("failed to release inventory", ""))
        }
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, errorJSON("failed to commit", ""))
    }
    committed = true

    b.Status = model.BookingCancelled
    return c.JSON(http.StatusOK, b)
}

// pay charges the frozen hold total through the payment collaborator.
// A lapsed hold is rejected with the distinct HOLD_EXPIRED error (and
// swept in passing).  Success flips held→confirmed and creates the
// fulfillment order in the same transaction; a gateway decline flips
// held→payment_failed and releases inventory; a gateway transport
// failure changes nothing and surfaces as 502.
func (h *BookingHandler) pay(c echo.Context, id, userID uint64) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
    defer cancel()
    now := time.Now().UTC()

    tx, err := h.Bookings.DB().BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, errorJSON("failed to start transaction", ""))
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    b, err := h.Bookings.GetForUpdateTx(ctx, tx, id, userID)
    if errors.Is(err, repository.ErrNotFound) {
        return c.JSON(http.StatusNotFound, errorJSON("booking not found", ""))
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, errorJSON("database error", ""))
    }

    if b.Expired(now) {
        // Sweep the lapsed hold while we hold the lock, then reject
        // the charge with the distinct expired-hold error.
        if err := h.Bookings.UpdateStatusTx(ctx, tx, b.ID, model.BookingHeld, model.BookingCancelled); err == nil {
            for _, it := range b.Items {
                if err := h.Offers.ReleaseTx(ctx, tx, it.OfferID, it.Qty); err != nil {
                    return c.JSON(http.StatusInternalServerError, errorJSON("failed to release inventory", ""))
                }
            }
            if err := tx.Commit(); err == nil {
                committed = true
            }
        }
        return c.JSON(http.StatusGone, errorJSON(repository.ErrHoldExpired.Error(), "HOLD_EXPIRED"))
    }
    if b.Status != model.BookingHeld {
        return c.JSON(http.StatusConflict, errorJSON("booking is not payable", ""))
    }

    err = h.Charger.Charge(ctx, payment.Intent{
        AmountCents: b.TotalAmountCents,
        Currency:    b.Currency,
        Reference:   b.Reference,
    })
    if errors.Is(err, payment.ErrDeclined) {
        if err := h.Bookings.UpdateStatusTx(ctx, tx, b.ID, model.BookingHeld, model.BookingPaymentFailed); err != nil {
            return c.JSON(http.StatusConflict, errorJSON("booking changed concurrently", ""))
        }
        for _, it := range b.Items {
            if err := h.Offers.ReleaseTx(ctx, tx, it.OfferID, it.Qty); err != nil {
                return c.JSON(http.StatusInternalServerError, errorJSON("failed to release inventory", ""))
            }
        }
        if err := tx.Commit(); err != nil {
            return c.JSON(http.StatusInternalServerError, errorJSON("failed to commit", ""))
        }
        committed = true
        b.Status = model.BookingPaymentFailed
        return c.JSON(http.StatusPaymentRequired, echo.Map{
            "error":   "payment declined",
            "code":    "PAYMENT_DECLINED",
            "booking": b,
        })
    }
    if err != nil {
        // Upstream failure: nothing changes, and the error is never
        // swallowed.  The hold stays payable until its deadline.
        return c.JSON(http.StatusBadGateway, errorJSON("payment collaborator unavailable", "UPSTREAM_ERROR"))
    }

    if err := h.Bookings.UpdateStatusTx(ctx, tx, b.ID, model.BookingHeld, model.BookingConfirmed); err != nil {
        return c.JSON(http.StatusConflict, errorJSON("booking changed concurrently", ""))
    }
    if b.VoucherCode != nil {
        if err := h.Vouchers.RedeemTx(ctx, tx, *b.VoucherCode); err != nil {
            // The discount was already frozen into the hold total;
            // losing the counter race is logged, not fatal.
            log.Printf("booking %d: voucher %s redemption not recorded: %v", b.ID, *b.VoucherCode, err)
        }
    }

    order := &model.Order{
        BookingID:        b.ID,
        Reference:        uuid.NewString(),
        CustomerID:       b.OwnerID,
        Category:         b.Category,
        Track:            string(fulfillment.TrackFor(b.Category)),
        Status:           fulfillment.StatusPending,
        TotalAmountCents: b.TotalAmountCents,
        Currency:         b.Currency,
    }
    if err := h.Orders.CreateTx(ctx, tx, order); err != nil {
        return c.JSON(http.StatusInternalServerError, errorJSON("failed to create order", ""))
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, errorJSON("failed to commit", ""))
    }
    committed = true
    b.Status = model.BookingConfirmed

    // Notify after commit; a broker failure must never undo or block
    // the confirmation.
    if h.Publish != nil {
        ev := queue.BookingConfirmedEvent{
            BookingID:        b.ID,
            Reference:        b.Reference,
            OrderReference:   order.Reference,
            Category:         string(b.Category),
            GuestName:        b.GuestName,
            GuestEmail:       b.GuestEmail,
            TotalAmountCents: b.TotalAmountCents,
            Currency:         b.Currency,
            ConfirmedAt:      now.Format(time.RFC3339),
        }
        if err := h.Publish(ctx, ev); err != nil {
            log.Printf("booking %d: confirmation notification failed: %v", b.ID, err)
        }
    }

    return c.JSON(http.StatusOK, echo.Map{"booking": b, "order": order})
}
