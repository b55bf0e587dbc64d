package repository

import (
    "context"
    "database/sql"

    "github.com/travora/booking-api/internal/model"
)

// OfferRepo provides read access to the bookable catalog and the two
// inventory mutations the core is allowed to make: the atomic reserve
// performed while creating a hold, and the matching release when a
// hold dies.  All other catalog writes belong to partner tooling
// outside this service.
type OfferRepo struct {
    db *sql.DB
}

// NewOfferRepo returns a new OfferRepo bound to the provided database.
func NewOfferRepo(db *sql.DB) *OfferRepo { return &OfferRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// that span offers and bookings.
func (r *OfferRepo) DB() *sql.DB { return r.db }

const offerColumns = `id, category, parent_ref, title, variant, price_cents, currency, available, is_active, created_at, updated_at`

func scanOffer(row interface{ Scan(...interface{}) error }) (*model.Offer, error) {
    var o model.Offer
    err := row.Scan(&o.ID, &o.Category, &o.ParentRef, &o.Title, &o.Variant,
        &o.PriceCents, &o.Currency, &o.Available, &o.IsActive, &o.CreatedAt, &o.UpdatedAt)
    if err != nil {
        return nil, err
    }
    return &o, nil
}

// OfferByID loads a single offer.  It returns ErrNotFound when the id
// matches no row.
func (r *OfferRepo) OfferByID(ctx context.Context, id uint64) (*model.Offer, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+offerColumns+` FROM offers WHERE id = ?`, id)
    o, err := scanOffer(row)
    if err == sql.ErrNoRows {
        return nil, ErrNotFound
    }
    return o, err
}

// List returns active offers, optionally filtered by category, ordered
// for stable paging.
func (r *OfferRepo) List(ctx context.Context, category string) ([]model.Offer, error) {
    q := `SELECT ` + offerColumns + ` FROM offers WHERE is_active = 1`
    args := []interface{}{}
    if category != "" {
        q += ` AND category = ?`
        args = append(args, category)
    }
    q += ` ORDER BY category, title, variant`
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    offers := []model.Offer{}
    for rows.Next() {
        o, err := scanOffer(rows)
        if err != nil {
            return nil, err
        }
        offers = append(offers, *o)
    }
    return offers, rows.Err()
}

// ReserveTx decrements an offer's availability by qty inside an
// existing transaction.  The guarded UPDATE only matches while enough
// units remain, so two concurrent holds can never oversell: the loser
// sees zero affected rows and gets ErrInsufficientInventory.  The
// caller must roll back the surrounding transaction on error so the
// hold record and the decrement commit together or not at all.
func (r *OfferRepo) ReserveTx(ctx context.Context, tx *sql.Tx, offerID uint64, qty int) error {
    res, err := tx.ExecContext(ctx,
        `UPDATE offers SET available = available - ? WHERE id = ? AND is_active = 1 AND available >= ?`,
        qty, offerID, qty)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrInsufficientInventory
    }
    return nil
}

// ReleaseTx returns qty units to an offer's availability inside an
// existing transaction.  Used when a hold expires, is cancelled, or
// its payment fails, and when a fulfillment cancellation releases
// inventory.
func (r *OfferRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, offerID uint64, qty int) error {
    _, err := tx.ExecContext(ctx,
        `UPDATE offers SET available = available + ? WHERE id = ?`,
        qty, offerID)
    return err
}
