package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/motelworks/motel-manager/internal/httpx"
	"github.com/motelworks/motel-manager/internal/models"
	"github.com/motelworks/motel-manager/internal/services"
)

type ElectricityHandler struct {
	Svc *services.ElectricityService
}

func NewElectricityHandler(svc *services.ElectricityService) *ElectricityHandler {
	return &ElectricityHandler{Svc: svc}
}

type readingReq struct {
	RoomID        uint     `json:"room_id"`
	ReadingDate   string   `json:"reading_date"`
	CurrentUnits  float64  `json:"current_units"`
	PreviousUnits *float64 `json:"previous_units"`
}

// Record: POST /readings. units_used is computed server-side no matter
// what the client sent.
func (h *ElectricityHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req readingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.RoomID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"room_id": "required"})
		return
	}
	readingDate := time.Now()
	if req.ReadingDate != "" {
		parsed, err := time.Parse("2006-01-02", req.ReadingDate)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"reading_date": "must_be_yyyy_mm_dd"})
			return
		}
		readingDate = parsed
	}
	usage, err := h.Svc.RecordReading(r.Context(), services.ReadingInput{
		RoomID:        req.RoomID,
		ReadingDate:   readingDate,
		CurrentUnits:  req.CurrentUnits,
		PreviousUnits: req.PreviousUnits,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, usage)
}

// List: GET /readings?id=<room>. ?unbilled=1 narrows to unbilled rows,
// ?from=&to= narrows to a date range.
func (h *ElectricityHandler) List(w http.ResponseWriter, r *http.Request) {
	roomID, ok := idParam(w, r)
	if !ok {
		return
	}
	var (
		usages []models.ElectricityUsage
		err    error
	)
	q := r.URL.Query()
	switch {
	case q.Get("unbilled") == "1":
		usages, err = h.Svc.Unbilled(r.Context(), roomID)
	case q.Get("from") != "" && q.Get("to") != "":
		var from, to time.Time
		if from, err = time.Parse("2006-01-02", q.Get("from")); err == nil {
			to, err = time.Parse("2006-01-02", q.Get("to"))
		}
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"from": "must_be_yyyy_mm_dd", "to": "must_be_yyyy_mm_dd"})
			return
		}
		usages, err = h.Svc.InDateRange(r.Context(), roomID, from, to)
	default:
		usages, err = h.Svc.ForRoom(r.Context(), roomID)
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_readings", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": usages, "total": len(usages)})
}

// Latest: GET /readings/latest?id=<room>
func (h *ElectricityHandler) Latest(w http.ResponseWriter, r *http.Request) {
	roomID, ok := idParam(w, r)
	if !ok {
		return
	}
	usage, err := h.Svc.LatestForRoom(r.Context(), roomID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_reading", nil)
		return
	}
	if usage == nil {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, usage)
}
