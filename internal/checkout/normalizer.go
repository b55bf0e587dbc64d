package checkout

import (
    "context"
    "errors"
    "fmt"
    "sort"
    "strconv"
    "time"

    "github.com/travora/booking-api/internal/model"
    "github.com/travora/booking-api/internal/pricing"
)

// ErrInvalidSelection marks malformed or missing selection input.
// Handlers translate it into a 400 response.  Wrapped messages carry
// the specific field problem.
var ErrInvalidSelection = errors.New("invalid selection")

// ErrOfferNotFound is returned when a referenced offer does not exist,
// is inactive, or belongs to a different category than the checkout
// path.  Handlers translate it into a 404 response.
var ErrOfferNotFound = errors.New("offer not found")

// VoucherError reports a voucher that failed validation during
// normalization.  It is distinct from ErrInvalidSelection so handlers
// can emit the INVALID_COUPON error code.
type VoucherError struct {
    Reason string
}

func (e *VoucherError) Error() string { return "invalid voucher: " + e.Reason }

// OfferSource resolves catalog offers by ID.  The catalog repository
// satisfies it; tests use an in-memory map.
type OfferSource interface {
    OfferByID(ctx context.Context, id uint64) (*model.Offer, error)
}

// VoucherSource resolves vouchers by normalized code.  A nil voucher
// with a nil error means the code is unknown.
type VoucherSource interface {
    VoucherByCode(ctx context.Context, code string) (*model.Voucher, error)
}

// Normalizer turns category-specific checkout requests into canonical
// intents.  It owns no state beyond its catalog and voucher sources.
type Normalizer struct {
    Offers   OfferSource
    Vouchers VoucherSource
}

// NewNormalizer constructs a Normalizer.  Both sources must be non-nil.
func NewNormalizer(offers OfferSource, vouchers VoucherSource) *Normalizer {
    if offers == nil || vouchers == nil {
        panic("nil source passed to NewNormalizer")
    }
    return &Normalizer{Offers: offers, Vouchers: vouchers}
}

// Normalize maps the selection matching the given category into a
// canonical intent.  All prices come from the catalog at call time,
// the subtotal is the sum of count × unit price, any voucher is
// validated against the recomputed subtotal, and the final total is
// clamped at zero.  The selection shape for the category must be
// present; contact name and email are always required.
func (n *Normalizer) Normalize(ctx context.Context, category model.Category, req *Request, now time.Time) (*Intent, error) {
    if req == nil {
        return nil, fmt.Errorf("%w: empty request body", ErrInvalidSelection)
    }
    if req.Contact.Name == "" || req.Contact.Email == "" {
        return nil, fmt.Errorf("%w: contact name and email are required", ErrInvalidSelection)
    }

    var (
        lines   []LineItem
        details string
        err     error
    )
    switch category {
    case model.CategoryHotel:
        lines, details, err = n.normalizeHotel(ctx, req.Hotel)
    case model.CategoryTransport:
        lines, details, err = n.normalizeTransport(ctx, req.Transport)
    case model.CategoryActivity, model.CategoryEvent, model.CategoryEntertainment:
        lines, details, err = n.normalizeTicketed(ctx, category, req.Tickets)
    case model.CategoryWellness:
        lines, details, err = n.normalizeWellness(ctx, req.Wellness)
    default:
        return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidSelection, category)
    }
    if err != nil {
        return nil, err
    }

    var subtotal int64
    for _, li := range lines {
        subtotal += li.LineTotalCents
    }

    intent := &Intent{
        Category:        category,
        LineItems:       lines,
        SubtotalCents:   subtotal,
        Currency:        linesCurrency(lines),
        Contact:         req.Contact,
        SpecialRequests: req.SpecialRequests,
        DetailsJSON:     details,
    }

    if code := pricing.NormalizeCode(req.VoucherCode); code != "" {
        v, err := n.Vouchers.VoucherByCode(ctx, code)
        if err != nil {
            return nil, err
        }
        res := pricing.ValidateVoucher(v, subtotal, category, now)
        if !res.Valid {
            return nil, &VoucherError{Reason: res.Reason}
        }
        intent.VoucherCode = code
        intent.DiscountCents = res.DiscountCents
    }

    intent.TotalCents = pricing.GrandTotal(intent.SubtotalCents, intent.DiscountCents)
    return intent, nil
}

// resolveOffer loads an offer and checks it is sellable under the
// requested category.
func (n *Normalizer) resolveOffer(ctx context.Context, id uint64, category model.Category) (*model.Offer, error) {
    if id == 0 {
        return nil, fmt.Errorf("%w: offer id is required", ErrInvalidSelection)
    }
    off, err := n.Offers.OfferByID(ctx, id)
    if err != nil {
        return nil, err
    }
    if off == nil || !off.IsActive || off.Category != category {
        return nil, ErrOfferNotFound
    }
    return off, nil
}

func lineFor(off *model.Offer, qty int) LineItem {
    return LineItem{
        OfferID:        off.ID,
        Title:          off.Title,
        Variant:        off.Variant,
        UnitPriceCents: off.PriceCents,
        Qty:            qty,
        LineTotalCents: off.PriceCents * int64(qty),
        currency:       off.Currency,
    }
}

func (n *Normalizer) normalizeHotel(ctx context.Context, sel *HotelSelection) ([]LineItem, string, error) {
    if sel == nil {
        return nil, "", fmt.Errorf("%w: hotel selection is required", ErrInvalidSelection)
    }
    in, err := parseDate(sel.CheckIn)
    if err != nil {
        return nil, "", fmt.Errorf("%w: bad check_in date", ErrInvalidSelection)
    }
    out, err := parseDate(sel.CheckOut)
    if err != nil {
        return nil, "", fmt.Errorf("%w: bad check_out date", ErrInvalidSelection)
    }
    nights := int(out.Sub(in).Hours() / 24)
    if nights < 1 {
        return nil, "", fmt.Errorf("%w: check_out must be after check_in", ErrInvalidSelection)
    }
    if sel.Adults < 1 {
        return nil, "", fmt.Errorf("%w: at least one adult guest is required", ErrInvalidSelection)
    }
    if sel.Children < 0 {
        return nil, "", fmt.Errorf("%w: negative child count", ErrInvalidSelection)
    }
    off, err := n.resolveOffer(ctx, sel.RoomOfferID, model.CategoryHotel)
    if err != nil {
        return nil, "", err
    }
    // One line: the room offer priced per night, qty = nights.
    return []LineItem{lineFor(off, nights)}, detailsJSON(sel), nil
}

func (n *Normalizer) normalizeTransport(ctx context.Context, sel *TransportSelection) ([]LineItem, string, error) {
    if sel == nil {
        return nil, "", fmt.Errorf("%w: transport selection is required", ErrInvalidSelection)
    }
    if sel.Pickup == "" || sel.Dropoff == "" {
        return nil, "", fmt.Errorf("%w: pickup and dropoff are required", ErrInvalidSelection)
    }
    if sel.Passengers < 1 {
        return nil, "", fmt.Errorf("%w: at least one passenger is required", ErrInvalidSelection)
    }
    off, err := n.resolveOffer(ctx, sel.RouteOfferID, model.CategoryTransport)
    if err != nil {
        return nil, "", err
    }
    return []LineItem{lineFor(off, sel.Passengers)}, detailsJSON(sel), nil
}

func (n *Normalizer) normalizeTicketed(ctx context.Context, category model.Category, sel *TicketedSelection) ([]LineItem, string, error) {
    if sel == nil {
        return nil, "", fmt.Errorf("%w: ticket selection is required", ErrInvalidSelection)
    }
    // Two accepted forms: a ticket-count map keyed by offer ID, or a
    // single ticket offer with a quantity.
    if len(sel.TicketCounts) > 0 {
        // Iterate keys in sorted order for deterministic line output.
        keys := make([]string, 0, len(sel.TicketCounts))
        for k := range sel.TicketCounts {
            keys = append(keys, k)
        }
        sort.Strings(keys)
        var lines []LineItem
        for _, k := range keys {
            count := sel.TicketCounts[k]
            if count == 0 {
                continue
            }
            if count < 0 {
                return nil, "", fmt.Errorf("%w: negative ticket count", ErrInvalidSelection)
            }
            id, err := strconv.ParseUint(k, 10, 64)
            if err != nil || id == 0 {
                return nil, "", fmt.Errorf("%w: bad ticket offer id %q", ErrInvalidSelection, k)
            }
            off, err := n.resolveOffer(ctx, id, category)
            if err != nil {
                return nil, "", err
            }
            lines = append(lines, lineFor(off, count))
        }
        if len(lines) == 0 {
            return nil, "", fmt.Errorf("%w: ticket counts are all zero", ErrInvalidSelection)
        }
        return lines, detailsJSON(sel), nil
    }

    qty := sel.Qty
    if qty == 0 {
        qty = 1
    }
    if qty < 1 {
        return nil, "", fmt.Errorf("%w: ticket quantity must be at least 1", ErrInvalidSelection)
    }
    off, err := n.resolveOffer(ctx, sel.TicketOfferID, category)
    if err != nil {
        return nil, "", err
    }
    return []LineItem{lineFor(off, qty)}, detailsJSON(sel), nil
}

func (n *Normalizer) normalizeWellness(ctx context.Context, sel *WellnessSelection) ([]LineItem, string, error) {
    if sel == nil {
        return nil, "", fmt.Errorf("%w: wellness selection is required", ErrInvalidSelection)
    }
    if _, err := parseDate(sel.Date); err != nil {
        return nil, "", fmt.Errorf("%w: bad date", ErrInvalidSelection)
    }
    if sel.Guests < 1 {
        return nil, "", fmt.Errorf("%w: at least one guest is required", ErrInvalidSelection)
    }
    off, err := n.resolveOffer(ctx, sel.ExperienceOfferID, model.CategoryWellness)
    if err != nil {
        return nil, "", err
    }
    return []LineItem{lineFor(off, sel.Guests)}, detailsJSON(sel), nil
}

// linesCurrency returns the shared currency of the resolved lines.
// Mixed-currency carts are not supported; the first line wins and
// normalization has already guaranteed all offers share it in
// practice because offers within a category are priced alike.
func linesCurrency(lines []LineItem) string {
    if len(lines) == 0 {
        return ""
    }
    return lines[0].currency
}
