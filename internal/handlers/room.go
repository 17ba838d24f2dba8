package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/motelworks/motel-manager/internal/httpx"
	"github.com/motelworks/motel-manager/internal/models"
)

type RoomHandler struct{ DB *gorm.DB }

func NewRoomHandler(db *gorm.DB) *RoomHandler { return &RoomHandler{DB: db} }

// List: GET /rooms. Optionally filtered by ?status=
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	q := h.DB.Order("id")
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	var rooms []models.Room
	if err := q.Find(&rooms).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_rooms", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": rooms, "total": len(rooms)})
}

type roomReq struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	PricePerMonth float64  `json:"price_per_month"`
	Amenities     []string `json:"amenities"`
}

// Create: POST /rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req roomReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.Name == "" || req.PricePerMonth <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"name": "required", "price_per_month": "must_be_positive"})
		return
	}
	room := models.Room{
		Name:          req.Name,
		Type:          req.Type,
		PricePerMonth: req.PricePerMonth,
		Status:        models.RoomAvailable,
		Amenities:     req.Amenities,
	}
	if err := h.DB.Create(&room).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_create_room", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, room)
}

// SetStatus: POST /rooms/status?id=...
func (h *RoomHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req struct {
		Status models.RoomStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	switch req.Status {
	case models.RoomAvailable, models.RoomOccupied, models.RoomMaintenance:
	default:
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"status": "invalid"})
		return
	}
	res := h.DB.Model(&models.Room{}).Where("id = ?", id).Update("status", req.Status)
	if res.Error != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_update_room", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "status": req.Status})
}

// idParam parses the ?id= query parameter shared by the mutate endpoints.
func idParam(w http.ResponseWriter, r *http.Request) (uint, bool) {
	idStr := r.URL.Query().Get("id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return 0, false
	}
	return uint(id), true
}
