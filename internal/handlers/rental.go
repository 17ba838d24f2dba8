package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"gorm.io/gorm"

	"github.com/motelworks/motel-manager/internal/auth"
	"github.com/motelworks/motel-manager/internal/httpx"
	"github.com/motelworks/motel-manager/internal/models"
	"github.com/motelworks/motel-manager/internal/services"
)

type RentalHandler struct {
	DB  *gorm.DB
	Svc *services.RentalService
}

func NewRentalHandler(db *gorm.DB, svc *services.RentalService) *RentalHandler {
	return &RentalHandler{DB: db, Svc: svc}
}

// Create: POST /bookings. An authenticated user books for themselves.
func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var in services.BookingInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	rental, err := h.Svc.CreateBooking(r.Context(), uid, in)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rental)
}

// List: GET /bookings. The caller's own bookings; ?status=pending|active
// returns the staff-facing scoped lists instead.
func (h *RentalHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var (
		rentals []models.Rental
		err     error
	)
	switch r.URL.Query().Get("status") {
	case "pending":
		rentals, err = h.Svc.Pending(r.Context())
	case "active":
		rentals, err = h.Svc.Active(r.Context())
	default:
		rentals, err = h.Svc.ForUser(r.Context(), uid)
	}
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_bookings", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": rentals, "total": len(rentals)})
}

// Get: GET /bookings/get?id=... Includes the tenant with masked id card.
func (h *RentalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	rental, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	paid, err := h.Svc.TotalPaid(r.Context(), id)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_payments", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"rental":            rental,
		"total_paid":        paid,
		"remaining_balance": rental.TotalPrice - paid,
		"fully_paid":        rental.TotalPrice-paid <= 0,
	})
}

// Approve/Activate/Complete/Cancel: POST /bookings/<verb>?id=...
func (h *RentalHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.doTransition(w, r, h.Svc.Approve)
}

func (h *RentalHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.doTransition(w, r, h.Svc.Activate)
}

func (h *RentalHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.doTransition(w, r, h.Svc.Complete)
}

func (h *RentalHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.doTransition(w, r, h.Svc.Cancel)
}

func (h *RentalHandler) doTransition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id uint) (*models.Rental, error)) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	rental, err := fn(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rental)
}

// RecordPayment: POST /bookings/payments?id=...
func (h *RentalHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in services.PaymentInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	payment, err := h.Svc.RecordPayment(r.Context(), id, in)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, payment)
}

// ListPayments: GET /bookings/payments?id=...
func (h *RentalHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var payments []models.Payment
	if err := h.DB.Where("rental_id = ?", id).Order("payment_date DESC").Find(&payments).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_payments", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": payments, "total": len(payments)})
}
