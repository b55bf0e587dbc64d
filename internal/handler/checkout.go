package handler

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/travora/booking-api/internal/checkout"
    "github.com/travora/booking-api/internal/model"
    "github.com/travora/booking-api/internal/repository"
)

// CheckoutHandler turns a category-specific selection into a
// time-boxed hold.  Normalization recomputes every amount on the
// server; the reservation itself runs in one transaction that sweeps
// the owner's stale holds, decrements inventory for every line and
// inserts the hold record, so the reservation and the hold commit
// atomically and overselling is impossible.
type CheckoutHandler struct {
    HoldWindow time.Duration
    Normalizer *checkout.Normalizer
    Offers     *repository.OfferRepo
    Bookings   *repository.BookingRepo
}

// NewCheckoutHandler constructs a CheckoutHandler.  All dependencies
// must be non-nil.
func NewCheckoutHandler(holdWindow time.Duration, n *checkout.Normalizer, offers *repository.OfferRepo, bookings *repository.BookingRepo) *CheckoutHandler {
    if n == nil || offers == nil || bookings == nil {
        panic("nil dependency passed to NewCheckoutHandler")
    }
    return &CheckoutHandler{HoldWindow: holdWindow, Normalizer: n, Offers: offers, Bookings: bookings}
}

// Checkout handles POST /v1/checkout/:category.  On success it
// answers 201 with the held booking, including expires_at so clients
// can project a countdown; the server-issued deadline remains the
// only authority on payability.  When inventory cannot be reserved
// the response carries inventory_reserved=false so clients know a
// retry cannot have produced a duplicate hold.
func (h *CheckoutHandler) Checkout(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized", ""))
    }
    category := c.Param("category")
    if !model.ValidCategory(category) {
        return c.JSON(http.StatusNotFound, errorJSON("unknown category", ""))
    }

    var req checkout.Request
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, errorJSON("invalid request body", ""))
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
    defer cancel()
    now := time.Now().UTC()

    intent, err := h.Normalizer.Normalize(ctx, model.Category(category), &req, now)
    if err != nil {
        var ve *checkout.VoucherError
        switch {
        case errors.As(err, &ve):
            return c.JSON(http.StatusBadRequest, errorJSON(ve.Reason, "INVALID_COUPON"))
        case errors.Is(err, checkout.ErrInvalidSelection):
            return c.JSON(http.StatusBadRequest, errorJSON(err.Error(), ""))
        case errors.Is(err, checkout.ErrOfferNotFound), errors.Is(err, repository.ErrNotFound):
            return c.JSON(http.StatusNotFound, errorJSON("offer not found", ""))
        default:
            return c.JSON(http.StatusInternalServerError, errorJSON("database error", ""))
        }
    }

    booking := &model.Booking{
        Reference:        uuid.NewString(),
        OwnerID:          userID,
        Category:         intent.Category,
        Status:           model.BookingHeld,
        TotalAmountCents: intent.TotalCents,
        Currency:         intent.Currency,
        ExpiresAt:        now.Add(h.HoldWindow),
        GuestName:        intent.Contact.Name,
        GuestEmail:       intent.Contact.Email,
        SpecialRequests:  intent.SpecialRequests,
        DetailsJSON:      intent.DetailsJSON,
    }
    if intent.VoucherCode != "" {
        vc := intent.VoucherCode
        booking.VoucherCode = &vc
    }
    for _, li := range intent.LineItems {
        booking.Items = append(booking.Items, model.BookingItem{
            OfferID:        li.OfferID,
            Title:          li.Title,
            Variant:        li.Variant,
            UnitPriceCents: li.UnitPriceCents,
            Qty:            li.Qty,
        })
    }

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

    // Free inventory still pinned by the owner's lapsed holds before
    // trying to reserve; expired holds must never block a new one.
    released, err := h.Bookings.ExpireStaleTx(ctx, tx, userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, errorJSON("failed to cleanup expired holds", ""))
    }
    for _, it := range released {
        if err := h.Offers.ReleaseTx(ctx, tx, it.OfferID, it.Qty); err != nil {
            return c.JSON(http.StatusInternalServerError, errorJSON("failed to cleanup expired holds", ""))
        }
    }

    for _, it := range booking.Items {
        if err := h.Offers.ReserveTx(ctx, tx, it.OfferID, it.Qty); err != nil {
            if errors.Is(err, repository.ErrInsufficientInventory) {
                // Nothing was committed: tell the client no hold
                // exists so a retry cannot duplicate one.
                return c.JSON(http.StatusConflict, echo.Map{
                    "error":              "offer is sold out",
                    "code":               "INSUFFICIENT_INVENTORY",
                    "inventory_reserved": false,
                })
            }
            return c.JSON(http.StatusInternalServerError, errorJSON("failed to reserve inventory", ""))
        }
    }

    if err := h.Bookings.CreateTx(ctx, tx, booking); err != nil {
        return c.JSON(http.StatusInternalServerError, errorJSON("failed to create booking", ""))
    }
    if err := tx.Commit(); err != nil {
        return c.JSON(http.StatusInternalServerError, errorJSON("failed to commit", ""))
    }
    committed = true

    return c.JSON(http.StatusCreated, booking)
}
