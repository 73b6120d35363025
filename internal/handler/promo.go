package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/freshplate/storefront/internal/domain/promo"
)

type validatePromoRequest struct {
	Code     string          `json:"code"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type validatePromoResponse struct {
	Valid    bool            `json:"valid"`
	Code     string          `json:"code,omitempty"`
	Discount decimal.Decimal `json:"discount,omitempty"`
	Reason   string          `json:"reason,omitempty"`
}

// ValidatePromo handles POST /api/promos/validate. It is a pre-flight check
// for the cart UI: the same rules run again inside the order transaction, so
// a "valid" answer here is advisory, not a reservation.
func (h *Handler) ValidatePromo(w http.ResponseWriter, r *http.Request) {
	var req validatePromoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Code == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "promo code is required"})
		return
	}

	res, err := h.promos.ValidateByCode(r.Context(), req.Code, req.Subtotal)
	if err != nil {
		var invalid *promo.InvalidError
		if errors.As(err, &invalid) {
			respondJSON(w, http.StatusOK, validatePromoResponse{
				Valid:  false,
				Code:   invalid.Code,
				Reason: string(invalid.Reason),
			})
			return
		}
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, validatePromoResponse{
		Valid:    true,
		Code:     res.Promo.Code,
		Discount: res.Discount,
	})
}
