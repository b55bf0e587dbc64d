package repository

import (
    "context"
    "database/sql"

    "github.com/travora/booking-api/internal/model"
)

// CartRepo provides data access to carts and cart_items.  Each owner
// has at most one cart, created lazily by the first item add.  All
// mutating methods operate inside a caller-supplied transaction: the
// handler selects the cart FOR UPDATE, applies line changes, then
// writes the recomputed totals through a version-guarded UPDATE so a
// stale concurrent writer is rejected instead of silently losing the
// race.
type CartRepo struct {
    db *sql.DB
}

// NewCartRepo returns a new CartRepo bound to the provided database.
func NewCartRepo(db *sql.DB) *CartRepo { return &CartRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *CartRepo) DB() *sql.DB { return r.db }

const cartColumns = `id, owner_id, currency, coupon_code, version, subtotal_cents, discount_cents, grand_total_cents, created_at, updated_at`

func scanCart(row interface{ Scan(...interface{}) error }) (*model.Cart, error) {
    var c model.Cart
    var coupon sql.NullString
    err := row.Scan(&c.ID, &c.OwnerID, &c.Currency, &coupon, &c.Version,
        &c.SubtotalCents, &c.DiscountCents, &c.GrandTotalCents, &c.CreatedAt, &c.UpdatedAt)
    if err != nil {
        return nil, err
    }
    if coupon.Valid {
        cc := coupon.String
        c.CouponCode = &cc
    }
    return &c, nil
}

// GetByOwner loads the owner's cart with all items.  It returns
// ErrNotFound when the owner has no stored cart yet; callers render
// the empty-cart shape in that case rather than creating a row.
func (r *CartRepo) GetByOwner(ctx context.Context, ownerID uint64) (*model.Cart, error) {
    row := r.db.QueryRowContext(ctx,
        `SELECT `+cartColumns+` FROM carts WHERE owner_id = ? LIMIT 1`, ownerID)
    c, err := scanCart(row)
    if err == sql.ErrNoRows {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    if err := r.loadItems(ctx, c); err != nil {
        return nil, err
    }
    return c, nil
}

// GetForUpdateTx loads the owner's cart and items inside a
// transaction, taking a row lock so concurrent mutations of the same
// aggregate serialize.  Returns ErrNotFound when no cart exists.
func (r *CartRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, ownerID uint64) (*model.Cart, error) {
    row := tx.QueryRowContext(ctx,
        `SELECT `+cartColumns+` FROM carts WHERE owner_id = ? LIMIT 1 FOR UPDATE`, ownerID)
    c, err := scanCart(row)
    if err == sql.ErrNoRows {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    if err := r.loadItemsTx(ctx, tx, c); err != nil {
        return nil, err
    }
    return c, nil
}

// CreateTx inserts an empty cart for the owner and returns it.  Used
// by the lazy create-on-first-add path.
func (r *CartRepo) CreateTx(ctx context.Context, tx *sql.Tx, ownerID uint64, currency string) (*model.Cart, error) {
    res, err := tx.ExecContext(ctx,
        `INSERT INTO carts (owner_id, currency, version) VALUES (?, ?, 1)`, ownerID, currency)
    if err != nil {
        return nil, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return nil, err
    }
    row := tx.QueryRowContext(ctx, `SELECT `+cartColumns+` FROM carts WHERE id = ?`, id)
    c, err := scanCart(row)
    if err != nil {
        return nil, err
    }
    c.Items = []model.CartItem{}
    return c, nil
}

func (r *CartRepo) loadItems(ctx context.Context, c *model.Cart) error {
    rows, err := r.db.QueryContext(ctx, cartItemSelect, c.ID)
    if err != nil {
        return err
    }
    return collectItems(rows, c)
}

func (r *CartRepo) loadItemsTx(ctx context.Context, tx *sql.Tx, c *model.Cart) error {
    rows, err := tx.QueryContext(ctx, cartItemSelect, c.ID)
    if err != nil {
        return err
    }
    return collectItems(rows, c)
}

const cartItemSelect = `SELECT id, cart_id, offer_id, category, title, variant, unit_price_cents, qty, created_at
                        FROM cart_items WHERE cart_id = ? ORDER BY id`

func collectItems(rows *sql.Rows, c *model.Cart) error {
    defer rows.Close()
    c.Items = []model.CartItem{}
    for rows.Next() {
        var it model.CartItem
        if err := rows.Scan(&it.ID, &it.CartID, &it.OfferID, &it.Category, &it.Title, &it.Variant,
            &it.UnitPriceCents, &it.Qty, &it.CreatedAt); err != nil {
            return err
        }
        it.LineTotalCents = it.UnitPriceCents * int64(it.Qty)
        c.Items = append(c.Items, it)
    }
    c.ItemCount = len(c.Items)
    return rows.Err()
}

// InsertItemTx adds a new line with a frozen price snapshot.
func (r *CartRepo) InsertItemTx(ctx context.Context, tx *sql.Tx, cartID uint64, off *model.Offer, qty int) error {
    _, err := tx.ExecContext(ctx,
        `INSERT INTO cart_items (cart_id, offer_id, category, title, variant, unit_price_cents, qty) VALUES (?, ?, ?, ?, ?, ?, ?)`,
        cartID, off.ID, off.Category, off.Title, off.Variant, off.PriceCents, qty)
    return err
}

// UpdateItemQtyTx sets the quantity of an existing line.  The line
// must belong to the given cart; otherwise no row matches and
// ErrNotFound is returned.
func (r *CartRepo) UpdateItemQtyTx(ctx context.Context, tx *sql.Tx, cartID, itemID uint64, qty int) error {
    res, err := tx.ExecContext(ctx,
        `UPDATE cart_items SET qty = ? WHERE id = ? AND cart_id = ?`, qty, itemID, cartID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrNotFound
    }
    return nil
}

// DeleteItemTx removes a line from the cart.  ErrNotFound when the
// line does not exist under this cart.
func (r *CartRepo) DeleteItemTx(ctx context.Context, tx *sql.Tx, cartID, itemID uint64) error {
    res, err := tx.ExecContext(ctx,
        `DELETE FROM cart_items WHERE id = ? AND cart_id = ?`, itemID, cartID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrNotFound
    }
    return nil
}

// SaveTotalsTx writes the server-recomputed totals and coupon back to
// the cart through a version-guarded UPDATE.  The version the caller
// read must still be current; otherwise a concurrent writer won and
// ErrVersionConflict is returned so the whole transaction rolls back,
// leaving the previous cart state intact.
func (r *CartRepo) SaveTotalsTx(ctx context.Context, tx *sql.Tx, cartID, version uint64, coupon *string, subtotal, discount, grand int64) error {
    res, err := tx.ExecContext(ctx,
        `UPDATE carts
            SET coupon_code = ?, subtotal_cents = ?, discount_cents = ?, grand_total_cents = ?, version = version + 1
          WHERE id = ? AND version = ?`,
        coupon, subtotal, discount, grand, cartID, version)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrVersionConflict
    }
    return nil
}
