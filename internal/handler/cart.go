package handler

import (
    "context"
    "database/sql"
    "errors"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/travora/booking-api/internal/model"
    "github.com/travora/booking-api/internal/pricing"
    "github.com/travora/booking-api/internal/repository"
)

// CartHandler groups the repositories needed to serve the cart
// aggregate.  All methods assume JWT authentication has already run.
// Every mutation executes inside a transaction that locks the cart
// row, recomputes the totals on the server, and writes them back
// through a version guard; the response is always the full recomputed
// cart so clients hold an authoritative snapshot, never a delta.  A
// failed mutation rolls the transaction back, leaving the previous
// cart state intact for the client to restore.
type CartHandler struct {
    Cfg      CartConfig
    Carts    *repository.CartRepo
    Offers   *repository.OfferRepo
    Vouchers *repository.VoucherRepo
}

// CartConfig carries the cart-relevant settings from the application
// config.
type CartConfig struct {
    Currency string
}

// NewCartHandler constructs a CartHandler.  All repositories must be
// non-nil.
func NewCartHandler(cfg CartConfig, carts *repository.CartRepo, offers *repository.OfferRepo, vouchers *repository.VoucherRepo) *CartHandler {
    if carts == nil || offers == nil || vouchers == nil {
        panic("nil repository passed to NewCartHandler")
    }
    return &CartHandler{Cfg: cfg, Carts: carts, Offers: offers, Vouchers: vouchers}
}

// GetCart handles GET /v1/cart.  Owners without a stored cart receive
// the empty-cart shape rather than a 404: the cart exists logically
// from the owner's first request.
func (h *CartHandler) GetCart(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized", ""))
    }
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    cart, err := h.Carts.GetByOwner(ctx, userID)
    if errors.Is(err, repository.ErrNotFound) {
        return c.JSON(http.StatusOK, model.EmptyCart(userID, h.Cfg.Currency))
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, errorJSON("database error", ""))
    }
    return c.JSON(http.StatusOK, cart)
}

// AddItem handles POST /v1/cart/items.  The referenced offer's
// current price is frozen into the line; adding the same offer again
// merges into the existing line instead of creating a duplicate.  The
// cart row is created lazily on the first add.
func (h *CartHandler) AddItem(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized", ""))
    }
    var body struct {
        VariantID uint64 `json:"variant_id"`
        Qty       int    `json:"qty"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, errorJSON("invalid request body", ""))
    }
    if body.VariantID == 0 {
        return c.JSON(http.StatusBadRequest, errorJSON("variant_id is required", ""))
    }
    if body.Qty < 1 {
        return c.JSON(http.StatusBadRequest, errorJSON("qty must be at least 1", ""))
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    off, err := h.Offers.OfferByID(ctx, body.VariantID)
    if errors.Is(err, repository.ErrNotFound) {
        return c.JSON(http.StatusNotFound, errorJSON("variant not found", ""))
    }
    if err != nil {
        return c.JSON(http.StatusInternalServerError, errorJSON("database error", ""))
    }
    if !off.IsActive {
        return c.JSON(http.StatusNotFound, errorJSON("variant not found", ""))
    }

    cart, status, err := h.mutate(ctx, userID, func(tx *sql.Tx, cart *model.Cart) error {
        for i := range cart.Items {
            if cart.Items[i].OfferID == off.ID {
                cart.Items[i].Qty += body.Qty
                return h.Carts.UpdateItemQtyTx(ctx, tx, cart.ID, cart.Items[i].ID, cart.Items[i].Qty)
            }
        }
        cart.Items = append(cart.Items, model.CartItem{
            CartID:         cart.ID,
            OfferID:        off.ID,
            Category:       off.Category,
            Title:          off.Title,
            Variant:        off.Variant,
            UnitPriceCents: off.PriceCents,
            Qty:            body.Qty,
        })
        return h.Carts.InsertItemTx(ctx, tx, cart.ID, off, body.Qty)
    })
    if err != nil {
        return c.JSON(status, errorJSON(err.Error(), ""))
    }
    return c.JSON(http.StatusCreated, cart)
}

// UpdateItem handles PATCH /v1/cart/items/:id.  Quantities below 1
// are rejected; removal goes through DELETE.
func (h *CartHandler) UpdateItem(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized", ""))
    }
    itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || itemID == 0 {
        return c.JSON(http.StatusBadRequest, errorJSON("invalid item id", ""))
    }
    var body struct {
        Qty int `json:"qty"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, errorJSON("invalid request body", ""))
    }
    if body.Qty < 1 {
        return c.JSON(http.StatusBadRequest, errorJSON("qty must be at least 1", ""))
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    cart, status, err := h.mutate(ctx, userID, func(tx *sql.Tx, cart *model.Cart) error {
        for i := range cart.Items {
            if cart.Items[i].ID == itemID {
                cart.Items[i].Qty = body.Qty
                return h.Carts.UpdateItemQtyTx(ctx, tx, cart.ID, itemID, body.Qty)
            }
        }
        return repository.ErrNotFound
    })
    if err != nil {
        return c.JSON(status, errorJSON(err.Error(), ""))
    }
    return c.JSON(http.StatusOK, cart)
}

// RemoveItem handles DELETE /v1/cart/items/:id.  Removing the last
// line yields an empty cart with zero totals, never a deleted cart.
func (h *CartHandler) RemoveItem(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized", ""))
    }
    itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || itemID == 0 {
        return c.JSON(http.StatusBadRequest, errorJSON("invalid item id", ""))
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    cart, status, err := h.mutate(ctx, userID, func(tx *sql.Tx, cart *model.Cart) error {
        for i := range cart.Items {
            if cart.Items[i].ID == itemID {
                cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
                return h.Carts.DeleteItemTx(ctx, tx, cart.ID, itemID)
            }
        }
        return repository.ErrNotFound
    })
    if err != nil {
        return c.JSON(status, errorJSON(err.Error(), ""))
    }
    return c.JSON(http.StatusOK, cart)
}

// ApplyCoupon handles POST /v1/cart/apply-coupon.  A valid code
// atomically replaces any previously applied discount – vouchers do
// not stack – and re-applying the same code is idempotent.  Invalid
// codes answer 400 with code INVALID_COUPON and the reason.
func (h *CartHandler) ApplyCoupon(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized", ""))
    }
    var body struct {
        Code string `json:"code"`
    }
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, errorJSON("invalid request body", ""))
    }
    code := pricing.NormalizeCode(body.Code)
    if code == "" {
        return c.JSON(http.StatusBadRequest, errorJSON("code is required", "INVALID_COUPON"))
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    v, err := h.Vouchers.VoucherByCode(ctx, code)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, errorJSON("database error", ""))
    }

    var rejected *pricing.VoucherResult
    cart, status, err := h.mutate(ctx, userID, func(tx *sql.Tx, cart *model.Cart) error {
        subtotal := pricing.Subtotal(cart.Items)
        res := pricing.ValidateVoucher(v, subtotal, cart.ServiceType(), time.Now().UTC())
        if !res.Valid {
            rejected = &res
            return errValidation
        }
        cart.CouponCode = &code
        return nil
    })
    if rejected != nil {
        return c.JSON(http.StatusBadRequest, errorJSON(rejected.Reason, "INVALID_COUPON"))
    }
    if err != nil {
        return c.JSON(status, errorJSON(err.Error(), ""))
    }
    return c.JSON(http.StatusOK, cart)
}

// errValidation aborts a mutation without mapping to a generic
// message; the caller supplies the response.
var errValidation = errors.New("validation failed")

// mutate runs one cart mutation end to end: lock (or lazily create)
// the cart, apply the line change, recompute the totals from the
// frozen prices, re-validate any applied coupon against the new
// subtotal, and persist through the version guard.  On any error the
// transaction rolls back and the stored cart is untouched.  The
// returned status is the HTTP status matching the error.
func (h *CartHandler) mutate(ctx context.Context, ownerID uint64, change func(tx *sql.Tx, cart *model.Cart) error) (*model.Cart, int, error) {
    tx, err := h.Carts.DB().BeginTx(ctx, nil)
    if err != nil {
        return nil, http.StatusInternalServerError, errors.New("failed to start transaction")
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    cart, err := h.Carts.GetForUpdateTx(ctx, tx, ownerID)
    if errors.Is(err, repository.ErrNotFound) {
        cart, err = h.Carts.CreateTx(ctx, tx, ownerID, h.Cfg.Currency)
    }
    if err != nil {
        return nil, http.StatusInternalServerError, errors.New("database error")
    }
    version := cart.Version

    if err := change(tx, cart); err != nil {
        switch {
        case errors.Is(err, repository.ErrNotFound):
            return nil, http.StatusNotFound, errors.New("cart item not found")
        case errors.Is(err, errValidation):
            return nil, http.StatusBadRequest, err
        default:
            return nil, http.StatusInternalServerError, errors.New("database error")
        }
    }

    var v *model.Voucher
    if cart.CouponCode != nil {
        v, err = h.Vouchers.VoucherByCode(ctx, *cart.CouponCode)
        if err != nil {
            return nil, http.StatusInternalServerError, errors.New("database error")
        }
    }
    tot := pricing.RecomputeCart(cart, v, time.Now().UTC())
    coupon := cart.CouponCode
    if !tot.CouponKept {
        // The coupon no longer qualifies; drop it rather than carry a
        // stale discount.
        coupon = nil
    }

    if err := h.Carts.SaveTotalsTx(ctx, tx, cart.ID, version, coupon, tot.SubtotalCents, tot.DiscountCents, tot.GrandTotalCents); err != nil {
        if errors.Is(err, repository.ErrVersionConflict) {
            return nil, http.StatusConflict, errors.New("cart was modified concurrently, reload and retry")
        }
        return nil, http.StatusInternalServerError, errors.New("database error")
    }
    if err := tx.Commit(); err != nil {
        return nil, http.StatusInternalServerError, errors.New("failed to commit")
    }
    committed = true

    full, err := h.Carts.GetByOwner(ctx, ownerID)
    if err != nil {
        return nil, http.StatusInternalServerError, errors.New("database error")
    }
    return full, http.StatusOK, nil
}
