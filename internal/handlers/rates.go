package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/motelworks/motel-manager/internal/httpx"
	"github.com/motelworks/motel-manager/internal/services"
)

type RateHandler struct {
	Svc *services.RateService
}

func NewRateHandler(svc *services.RateService) *RateHandler { return &RateHandler{Svc: svc} }

// Get: GET /rates. Lazily creates the zero-rate singleton on first read.
func (h *RateHandler) Get(w http.ResponseWriter, r *http.Request) {
	rate, err := h.Svc.Current(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_rates", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, rate)
}

// Update: POST /rates. Partial patch of the singleton.
func (h *RateHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch services.RatePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	rate, err := h.Svc.UpdateRates(r.Context(), patch)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rate)
}
