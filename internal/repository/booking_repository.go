package repository

import (
    "context"
    "database/sql"

    "github.com/travora/booking-api/internal/model"
)

// BookingRepo provides data access to bookings (holds) and their
// reserved item lines.  Hold creation, confirmation and expiry all
// run inside caller-supplied transactions so the status change and
// the matching inventory movement commit atomically.  Listing queries
// classify a held row past its deadline as cancelled in SQL, so the
// lazy-expiry view is correct even before a sweep rewrites the row.
type BookingRepo struct {
    db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning bookings, offers and orders.
func (r *BookingRepo) DB() *sql.DB { return r.db }

const bookingColumns = `id, reference, owner_id, category, status, total_amount_cents, currency,
       expires_at, guest_name, guest_email, special_requests, voucher_code, details_json,
       created_at, updated_at`

func scanBooking(row interface{ Scan(...interface{}) error }) (*model.Booking, error) {
    var b model.Booking
    var voucher sql.NullString
    var requests sql.NullString
    err := row.Scan(&b.ID, &b.Reference, &b.OwnerID, &b.Category, &b.Status,
        &b.TotalAmountCents, &b.Currency, &b.ExpiresAt, &b.GuestName, &b.GuestEmail,
        &requests, &voucher, &b.DetailsJSON, &b.CreatedAt, &b.UpdatedAt)
    if err != nil {
        return nil, err
    }
    if requests.Valid {
        b.SpecialRequests = requests.String
    }
    if voucher.Valid {
        vc := voucher.String
        b.VoucherCode = &vc
    }
    return &b, nil
}

// CreateTx inserts a new hold and its item lines within an existing
// transaction and populates the generated ID and timestamps on the
// provided record.  The caller has already decremented inventory in
// the same transaction; committing makes the reservation and the hold
// visible as one atomic unit.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
    res, err := tx.ExecContext(ctx,
        `INSERT INTO bookings
            (reference, owner_id, category, status, total_amount_cents, currency,
             expires_at, guest_name, guest_email, special_requests, voucher_code, details_json)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
        b.Reference, b.OwnerID, b.Category, b.Status, b.TotalAmountCents, b.Currency,
        b.ExpiresAt, b.GuestName, b.GuestEmail, nullIfEmpty(b.SpecialRequests), b.VoucherCode, b.DetailsJSON)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    b.ID = uint64(id)
    for i := range b.Items {
        it := &b.Items[i]
        it.BookingID = b.ID
        ires, err := tx.ExecContext(ctx,
            `INSERT INTO booking_items (booking_id, offer_id, title, variant, unit_price_cents, qty)
             VALUES (?, ?, ?, ?, ?, ?)`,
            it.BookingID, it.OfferID, it.Title, it.Variant, it.UnitPriceCents, it.Qty)
        if err != nil {
            return err
        }
        iid, err := ires.LastInsertId()
        if err != nil {
            return err
        }
        it.ID = uint64(iid)
    }
    // Query back timestamps set by the database.
    return tx.QueryRowContext(ctx,
        `SELECT created_at, updated_at FROM bookings WHERE id = ?`, b.ID).
        Scan(&b.CreatedAt, &b.UpdatedAt)
}

func nullIfEmpty(s string) interface{} {
    if s == "" {
        return nil
    }
    return s
}

// GetForUser loads a booking with its items, enforcing ownership.
func (r *BookingRepo) GetForUser(ctx context.Context, id, ownerID uint64) (*model.Booking, error) {
    row := r.db.QueryRowContext(ctx,
        `SELECT `+bookingColumns+` FROM bookings WHERE id = ? AND owner_id = ?`, id, ownerID)
    b, err := scanBooking(row)
    if err == sql.ErrNoRows {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    b.Items, err = r.itemsFor(ctx, nil, b.ID)
    return b, err
}

// GetForUpdateTx loads a booking with a row lock inside an existing
// transaction, enforcing ownership.  Charge and cancel paths use it
// so concurrent actions on the same hold serialize.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id, ownerID uint64) (*model.Booking, error) {
    row := tx.QueryRowContext(ctx,
        `SELECT `+bookingColumns+` FROM bookings WHERE id = ? AND owner_id = ? FOR UPDATE`, id, ownerID)
    b, err := scanBooking(row)
    if err == sql.ErrNoRows {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    b.Items, err = r.itemsFor(ctx, tx, b.ID)
    return b, err
}

func (r *BookingRepo) itemsFor(ctx context.Context, tx *sql.Tx, bookingID uint64) ([]model.BookingItem, error) {
    const q = `SELECT id, booking_id, offer_id, title, variant, unit_price_cents, qty
               FROM booking_items WHERE booking_id = ? ORDER BY id`
    var rows *sql.Rows
    var err error
    if tx != nil {
        rows, err = tx.QueryContext(ctx, q, bookingID)
    } else {
        rows, err = r.db.QueryContext(ctx, q, bookingID)
    }
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    items := []model.BookingItem{}
    for rows.Next() {
        var it model.BookingItem
        if err := rows.Scan(&it.ID, &it.BookingID, &it.OfferID, &it.Title, &it.Variant,
            &it.UnitPriceCents, &it.Qty); err != nil {
            return nil, err
        }
        items = append(items, it)
    }
    return items, rows.Err()
}

// ListForUser returns the owner's bookings for one of three views.
// The classification happens in SQL against the current UTC time, so
// a held row whose deadline passed is excluded from "upcoming" and
// included in "cancelled" even when no sweep has rewritten it yet.
// Recognized views: "upcoming", "cancelled", anything else lists all.
func (r *BookingRepo) ListForUser(ctx context.Context, ownerID uint64, view string) ([]model.Booking, error) {
    q := `SELECT ` + bookingColumns + ` FROM bookings WHERE owner_id = ?`
    switch view {
    case "upcoming":
        q += ` AND (status IN ('confirmed','completed') OR (status = 'held' AND expires_at > UTC_TIMESTAMP()))`
    case "cancelled":
        q += ` AND (status IN ('cancelled','payment_failed') OR (status = 'held' AND expires_at <= UTC_TIMESTAMP()))`
    }
    q += ` ORDER BY created_at DESC`
    rows, err := r.db.QueryContext(ctx, q, ownerID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.Booking{}
    for rows.Next() {
        b, err := scanBooking(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *b)
    }
    return out, rows.Err()
}

// UpdateStatusTx transitions a booking from one exact status to
// another inside an existing transaction.  The WHERE clause guards on
// the expected current status; zero affected rows means a concurrent
// transition won and the caller gets ErrConflict.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to string) error {
    res, err := tx.ExecContext(ctx,
        `UPDATE bookings SET status = ? WHERE id = ? AND status = ?`, to, id, from)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrConflict
    }
    return nil
}

// ExpireStaleTx sweeps the owner's lapsed holds inside an existing
// transaction: every held booking past its deadline is flipped to
// cancelled and its item lines are returned so the caller can release
// the reserved inventory in the same transaction.  With no stale
// holds it returns an empty slice.  The sweep is an optimization –
// reads classify lapsed holds correctly whether or not it has run.
func (r *BookingRepo) ExpireStaleTx(ctx context.Context, tx *sql.Tx, ownerID uint64) ([]model.BookingItem, error) {
    rows, err := tx.QueryContext(ctx,
        `SELECT id FROM bookings
          WHERE owner_id = ? AND status = 'held' AND expires_at <= UTC_TIMESTAMP()
          FOR UPDATE`, ownerID)
    if err != nil {
        return nil, err
    }
    var ids []uint64
    for rows.Next() {
        var id uint64
        if err := rows.Scan(&id); err != nil {
            rows.Close()
            return nil, err
        }
        ids = append(ids, id)
    }
    if err := rows.Close(); err != nil {
        return nil, err
    }
    if len(ids) == 0 {
        return []model.BookingItem{}, nil
    }
    released := []model.BookingItem{}
    for _, id := range ids {
        items, err := r.itemsFor(ctx, tx, id)
        if err != nil {
            return nil, err
        }
        released = append(released, items...)
        if err := r.UpdateStatusTx(ctx, tx, id, model.BookingHeld, model.BookingCancelled); err != nil {
            return nil, err
        }
    }
    return released, nil
}
