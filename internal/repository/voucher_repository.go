package repository

import (
    "context"
    "database/sql"

    "github.com/travora/booking-api/internal/model"
)

// VoucherRepo provides read access to vouchers and the usage counter
// increment performed when a voucher is redeemed at confirmation.
// Eligibility rules themselves are pure functions in the pricing
// package; this repo only fetches rows.
type VoucherRepo struct {
    db *sql.DB
}

// NewVoucherRepo returns a new VoucherRepo bound to the given database.
func NewVoucherRepo(db *sql.DB) *VoucherRepo { return &VoucherRepo{db: db} }

// VoucherByCode loads a voucher by its normalized (upper-case) code.
// Unknown codes return (nil, nil) so validation can report the
// "unknown code" reason instead of a transport error.
func (r *VoucherRepo) VoucherByCode(ctx context.Context, code string) (*model.Voucher, error) {
    var v model.Voucher
    var serviceType sql.NullString
    err := r.db.QueryRowContext(ctx,
        `SELECT id, code, discount_type, discount_value, min_cart_total_cents, service_type,
                valid_from, valid_to, max_uses, used_count, is_active
           FROM vouchers WHERE code = ? LIMIT 1`, code).
        Scan(&v.ID, &v.Code, &v.DiscountType, &v.DiscountValue, &v.MinCartTotalCents,
            &serviceType, &v.ValidFrom, &v.ValidTo, &v.MaxUses, &v.UsedCount, &v.IsActive)
    if err == sql.ErrNoRows {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    if serviceType.Valid {
        cat := model.Category(serviceType.String)
        v.ServiceType = &cat
    }
    return &v, nil
}

// RedeemTx increments a voucher's usage counter inside an existing
// transaction, guarded so the counter can never pass max_uses.  A
// zero max_uses means unlimited.  ErrConflict is returned when the
// limit was exhausted between validation and redemption.
func (r *VoucherRepo) RedeemTx(ctx context.Context, tx *sql.Tx, code string) error {
    res, err := tx.ExecContext(ctx,
        `UPDATE vouchers SET used_count = used_count + 1
          WHERE code = ? AND is_active = 1 AND (max_uses = 0 OR used_count < max_uses)`,
        code)
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
