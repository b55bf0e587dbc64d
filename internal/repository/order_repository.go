package repository

import (
    "context"
    "database/sql"

    "github.com/travora/booking-api/internal/model"
)

// OrderRepo provides data access to fulfillment orders.  An order row
// is created exactly once, when its booking is confirmed, and then
// only its status ever changes.  Status updates are guarded on the
// expected current status so two concurrent transitions can never
// both apply.
type OrderRepo struct {
    db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning orders, bookings and offers.
func (r *OrderRepo) DB() *sql.DB { return r.db }

const orderColumns = `id, booking_id, reference, customer_id, category, track, status,
       total_amount_cents, currency, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*model.Order, error) {
    var o model.Order
    err := row.Scan(&o.ID, &o.BookingID, &o.Reference, &o.CustomerID, &o.Category,
        &o.Track, &o.Status, &o.TotalAmountCents, &o.Currency, &o.CreatedAt, &o.UpdatedAt)
    if err != nil {
        return nil, err
    }
    return &o, nil
}

// CreateTx inserts a new order within an existing transaction and
// populates the generated ID and timestamps.  Called from the payment
// confirmation flow so the order appears atomically with the
// booking's held→confirmed transition.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, o *model.Order) error {
    res, err := tx.ExecContext(ctx,
        `INSERT INTO orders
            (booking_id, reference, customer_id, category, track, status, total_amount_cents, currency)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
        o.BookingID, o.Reference, o.CustomerID, o.Category, o.Track, o.Status,
        o.TotalAmountCents, o.Currency)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    o.ID = uint64(id)
    return tx.QueryRowContext(ctx,
        `SELECT created_at, updated_at FROM orders WHERE id = ?`, o.ID).
        Scan(&o.CreatedAt, &o.UpdatedAt)
}

// GetByID loads a single order.  ErrNotFound when the id matches no
// row.
func (r *OrderRepo) GetByID(ctx context.Context, id uint64) (*model.Order, error) {
    row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
    o, err := scanOrder(row)
    if err == sql.ErrNoRows {
        return nil, ErrNotFound
    }
    return o, err
}

// GetForUpdateTx loads an order with a row lock inside an existing
// transaction so concurrent transitions on the same order serialize.
func (r *OrderRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Order, error) {
    row := tx.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ? FOR UPDATE`, id)
    o, err := scanOrder(row)
    if err == sql.ErrNoRows {
        return nil, ErrNotFound
    }
    return o, err
}

// List returns orders newest-first.  When customerID is non-zero the
// result is restricted to that customer's orders.
func (r *OrderRepo) List(ctx context.Context, customerID uint64) ([]model.Order, error) {
    q := `SELECT ` + orderColumns + ` FROM orders`
    args := []interface{}{}
    if customerID != 0 {
        q += ` WHERE customer_id = ?`
        args = append(args, customerID)
    }
    q += ` ORDER BY created_at DESC`
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := []model.Order{}
    for rows.Next() {
        o, err := scanOrder(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *o)
    }
    return out, rows.Err()
}

// UpdateStatusTx transitions an order from one exact status to
// another inside an existing transaction.  The guard on the expected
// current status turns a lost race into ErrConflict instead of a
// silent double transition.
func (r *OrderRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to string) error {
    res, err := tx.ExecContext(ctx,
        `UPDATE orders SET status = ? WHERE id = ? AND status = ?`, to, id, from)
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
