package http

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tajhr/hrpay-backend-go/internal/domain/tax"
	"github.com/tajhr/hrpay-backend-go/internal/handler/http/response"
	taxsvc "github.com/tajhr/hrpay-backend-go/internal/service/tax"
)

type TaxHandler interface {
	ListSlabs(w http.ResponseWriter, r *http.Request)
	ReplaceSlabs(w http.ResponseWriter, r *http.Request)
}

type taxHandlerImpl struct {
	taxService *taxsvc.ResolverImpl
}

func NewTaxHandler(taxService *taxsvc.ResolverImpl) TaxHandler {
	return &taxHandlerImpl{taxService: taxService}
}

type slabResponse struct {
	ID         string           `json:"id,omitempty"`
	Label      string           `json:"label"`
	Floor      decimal.Decimal  `json:"floor"`
	Ceiling    *decimal.Decimal `json:"ceiling,omitempty"`
	BaseTax    decimal.Decimal  `json:"base_tax"`
	Rate       decimal.Decimal  `json:"rate"`
	FiscalYear string           `json:"fiscal_year,omitempty"`
}

// ListSlabs implements TaxHandler
func (h *taxHandlerImpl) ListSlabs(w http.ResponseWriter, r *http.Request) {
	slabs, err := h.taxService.Slabs(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]slabResponse, 0, len(slabs))
	for _, s := range slabs {
		result = append(result, slabResponse{
			ID:         s.ID,
			Label:      s.Label,
			Floor:      s.Floor,
			Ceiling:    s.Ceiling,
			BaseTax:    s.BaseTax,
			Rate:       s.Rate,
			FiscalYear: s.FiscalYear,
		})
	}

	response.Success(w, result)
}

type replaceSlabsRequest struct {
	FiscalYear string         `json:"fiscal_year"`
	Slabs      []slabResponse `json:"slabs"`
}

// ReplaceSlabs implements TaxHandler - swaps in a new fiscal year's table
func (h *taxHandlerImpl) ReplaceSlabs(w http.ResponseWriter, r *http.Request) {
	var req replaceSlabsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if req.FiscalYear == "" {
		response.BadRequest(w, "fiscal_year is required", nil)
		return
	}

	slabs := make([]tax.Slab, 0, len(req.Slabs))
	for _, s := range req.Slabs {
		slabs = append(slabs, tax.Slab{
			Label:   s.Label,
			Floor:   s.Floor,
			Ceiling: s.Ceiling,
			BaseTax: s.BaseTax,
			Rate:    s.Rate,
		})
	}

	if err := h.taxService.ReplaceSlabs(r.Context(), req.FiscalYear, slabs); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Tax slabs replaced successfully", nil)
}
