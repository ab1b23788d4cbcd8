package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"run-planner/internal/planner/model"
)

type resolveRequest struct {
	CustomerID string   `json:"customerId"`
	Address    string   `json:"address"`
	Threshold  *float64 `json:"threshold,omitempty"`
}

// Resolve handles POST /addresses/resolve.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Address) == "" {
		writeError(w, http.StatusBadRequest, "address is required")
		return
	}
	threshold := h.Threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if !validThreshold(threshold) {
		writeError(w, http.StatusBadRequest, "threshold must be within [0,1]")
		return
	}

	res, err := h.Resolver.Resolve(r.Context(), req.CustomerID, req.Address, threshold)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type customerAddressView struct {
	model.CustomerAddress
	FormattedAddr string `json:"formatted"`
	Label         string `json:"addressType"`
}

// CustomerAddresses handles GET /customers/{customerID}/addresses.
func (h *Handler) CustomerAddresses(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")
	list, err := h.Book.ListCustomerAddresses(r.Context(), customerID)
	if err != nil {
		h.fail(w, r, &model.LookupError{Op: "customer addresses", Err: err})
		return
	}
	out := make([]customerAddressView, 0, len(list))
	for _, a := range list {
		out = append(out, customerAddressView{CustomerAddress: a, FormattedAddr: a.Formatted(), Label: model.KindBook.Label()})
	}
	writeJSON(w, http.StatusOK, out)
}
