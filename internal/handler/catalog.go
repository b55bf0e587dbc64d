// Package handler exposes HTTP handlers for both authenticated and public endpoints.
// This file defines the public catalog API. These routes let unauthenticated
// visitors browse bookable offers across every category without an account.
// Internal fields (inventory counters, timestamps) are filtered from responses.

package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/travora/booking-api/internal/model"
    "github.com/travora/booking-api/internal/repository"
)

// CatalogHandler aggregates the repository needed for unauthenticated
// browsing. It produces sanitized responses suitable for public consumption.
type CatalogHandler struct {
    Offers *repository.OfferRepo // provides access to offer data
}

// PublicOffer represents an offer exposed via the public API. It contains
// only safe fields; availability is reduced to an in-stock flag so the
// exact inventory count is never leaked.
type PublicOffer struct {
    ID         uint64 `json:"id"`
    Category   string `json:"category"`
    Title      string `json:"title"`
    Variant    string `json:"variant,omitempty"`
    PriceCents int64  `json:"price_cents"`
    Currency   string `json:"currency"`
    InStock    bool   `json:"in_stock"`
}

func publicOffer(o *model.Offer) PublicOffer {
    return PublicOffer{
        ID:         o.ID,
        Category:   string(o.Category),
        Title:      o.Title,
        Variant:    o.Variant,
        PriceCents: o.PriceCents,
        Currency:   o.Currency,
        InStock:    o.Available > 0,
    }
}

// ListOffers returns active offers, optionally filtered by ?category=.
// Response JSON contains an "items" array of PublicOffer.
func (h *CatalogHandler) ListOffers(c echo.Context) error {
    ctx := c.Request().Context()
    category := c.QueryParam("category")
    if category != "" && !model.ValidCategory(category) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category"})
    }
    offers, err := h.Offers.List(ctx, category)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]PublicOffer, 0, len(offers))
    for i := range offers {
        out = append(out, publicOffer(&offers[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetOffer returns details of a single active offer.
func (h *CatalogHandler) GetOffer(c echo.Context) error {
    ctx := c.Request().Context()
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    o, err := h.Offers.OfferByID(ctx, id)
    if err != nil {
        if err == repository.ErrNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "offer not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if !o.IsActive {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "offer not found"})
    }
    return c.JSON(http.StatusOK, publicOffer(o))
}
