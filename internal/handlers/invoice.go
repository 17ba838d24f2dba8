package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/motelworks/motel-manager/internal/httpx"
	"github.com/motelworks/motel-manager/internal/services"
)

type InvoiceHandler struct {
	Svc *services.InvoiceService
}

func NewInvoiceHandler(svc *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{Svc: svc}
}

type createInvoiceReq struct {
	RentalID  uint   `json:"rental_id"`
	IssueDate string `json:"issue_date"`
	DueDate   string `json:"due_date"`
}

// Create: POST /invoices. Generates the invoice for a rental from its
// unbilled usage and the current rates.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.RentalID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"rental_id": "required"})
		return
	}
	var in services.CreateInvoiceInput
	var err error
	if req.IssueDate != "" {
		if in.IssueDate, err = time.Parse("2006-01-02", req.IssueDate); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"issue_date": "must_be_yyyy_mm_dd"})
			return
		}
	}
	if req.DueDate != "" {
		if in.DueDate, err = time.Parse("2006-01-02", req.DueDate); err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"due_date": "must_be_yyyy_mm_dd"})
			return
		}
	}
	invoice, err := h.Svc.CreateInvoice(r.Context(), req.RentalID, in)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoice)
}

// List: GET /invoices?id=<rental>
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	rentalID, ok := idParam(w, r)
	if !ok {
		return
	}
	invoices, err := h.Svc.ForRental(r.Context(), rentalID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invoices, "total": len(invoices)})
}

// MarkPaid: POST /invoices/pay?id=...
func (h *InvoiceHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	invoice, err := h.Svc.MarkPaid(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

// Overdue: GET /invoices/overdue. The sweep query without the mutation.
func (h *InvoiceHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.Svc.OverdueInvoices(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_invoices", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invoices, "total": len(invoices)})
}

// SweepOverdue: POST /invoices/sweep-overdue. Transitions every unpaid
// past-due invoice. Scheduling is left to an external caller (cron).
func (h *InvoiceHandler) SweepOverdue(w http.ResponseWriter, r *http.Request) {
	n, err := h.Svc.SweepOverdue(r.Context())
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "sweep_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"transitioned": n})
}
