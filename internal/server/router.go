package server

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/motelworks/motel-manager/internal/auth"
	"github.com/motelworks/motel-manager/internal/handlers"
	"github.com/motelworks/motel-manager/internal/httpx"
	"github.com/motelworks/motel-manager/internal/models"
	"github.com/motelworks/motel-manager/internal/policy"
	"github.com/motelworks/motel-manager/internal/rbac"
	"github.com/motelworks/motel-manager/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares.
func New(db *gorm.DB, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	// RequireAuth verifies the session still refers to a real user.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	rbacSvc := rbac.NewService(db)
	gate := policy.NewGate(rbacSvc)
	rateSvc := services.NewRateService(db)
	elecSvc := services.NewElectricityService(db)
	rentalSvc := services.NewRentalService(db)
	invoiceSvc := services.NewInvoiceService(db, rateSvc)

	// --- Health endpoints ---
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth endpoints
	handlers.NewAuthHandler(db).Register(mux)

	// Rooms: listing is public, mutation needs the manage-rooms permission.
	rooms := handlers.NewRoomHandler(db)
	mux.Handle("/rooms", methodSplit(methodHandlers{
		http.MethodGet:  http.HandlerFunc(rooms.List),
		http.MethodPost: auth.RequireAuth(gate.RequirePermission("manage-rooms")(http.HandlerFunc(rooms.Create))),
	}))
	mux.Handle("/rooms/status", auth.RequireAuth(gate.RequirePermission("manage-rooms")(http.HandlerFunc(rooms.SetStatus))))

	// Bookings: any authenticated user books for themselves; the lifecycle
	// transitions need elevated roles/permissions.
	rentals := handlers.NewRentalHandler(db, rentalSvc)
	mux.Handle("/bookings", auth.RequireAuth(methodSplit(methodHandlers{
		http.MethodGet:  http.HandlerFunc(rentals.List),
		http.MethodPost: http.HandlerFunc(rentals.Create),
	})))
	mux.Handle("/bookings/get", auth.RequireAuth(http.HandlerFunc(rentals.Get)))
	mux.Handle("/bookings/approve", auth.RequireAuth(gate.RequirePermission("approve-bookings")(http.HandlerFunc(rentals.Approve))))
	mux.Handle("/bookings/cancel", auth.RequireAuth(gate.RequirePermission("reject-bookings")(http.HandlerFunc(rentals.Cancel))))
	mux.Handle("/bookings/activate", auth.RequireAuth(gate.RequireRole("admin", "manager")(http.HandlerFunc(rentals.Activate))))
	mux.Handle("/bookings/complete", auth.RequireAuth(gate.RequireRole("admin", "manager")(http.HandlerFunc(rentals.Complete))))
	mux.Handle("/bookings/payments", auth.RequireAuth(methodSplit(methodHandlers{
		http.MethodGet:  http.HandlerFunc(rentals.ListPayments),
		http.MethodPost: http.HandlerFunc(rentals.RecordPayment),
	})))

	// Meter readings
	readings := handlers.NewElectricityHandler(elecSvc)
	mux.Handle("/readings", auth.RequireAuth(methodSplit(methodHandlers{
		http.MethodGet:  http.HandlerFunc(readings.List),
		http.MethodPost: gate.RequirePermission("record-readings")(http.HandlerFunc(readings.Record)),
	})))
	mux.Handle("/readings/latest", auth.RequireAuth(http.HandlerFunc(readings.Latest)))

	// Utility rates
	rates := handlers.NewRateHandler(rateSvc)
	mux.Handle("/rates", auth.RequireAuth(methodSplit(methodHandlers{
		http.MethodGet:  http.HandlerFunc(rates.Get),
		http.MethodPost: gate.RequirePermission("manage-rates")(http.HandlerFunc(rates.Update)),
	})))

	// Invoices
	invoices := handlers.NewInvoiceHandler(invoiceSvc)
	mux.Handle("/invoices", auth.RequireAuth(methodSplit(methodHandlers{
		http.MethodGet:  http.HandlerFunc(invoices.List),
		http.MethodPost: gate.RequirePermission("generate-invoices")(http.HandlerFunc(invoices.Create)),
	})))
	mux.Handle("/invoices/pay", auth.RequireAuth(gate.RequirePermission("record-payments")(http.HandlerFunc(invoices.MarkPaid))))
	mux.Handle("/invoices/overdue", auth.RequireAuth(http.HandlerFunc(invoices.Overdue)))
	mux.Handle("/invoices/sweep-overdue", auth.RequireAuth(gate.RequirePermission("generate-invoices")(http.HandlerFunc(invoices.SweepOverdue))))

	// Role administration
	roles := handlers.NewRoleHandler(db, rbacSvc)
	adminOnly := gate.RequireRole("admin")
	mux.Handle("/admin/roles", auth.RequireAuth(adminOnly(http.HandlerFunc(roles.List))))
	mux.Handle("/admin/roles/assign", auth.RequireAuth(adminOnly(http.HandlerFunc(roles.Assign))))
	mux.Handle("/admin/roles/remove", auth.RequireAuth(adminOnly(http.HandlerFunc(roles.Remove))))
	mux.Handle("/admin/roles/sync", auth.RequireAuth(adminOnly(http.HandlerFunc(roles.Sync))))

	return auth.Middleware(withRecover(withLogging(logger, mux)))
}

type methodHandlers map[string]http.Handler

// methodSplit dispatches by HTTP method and answers 405 with Allow set.
func methodSplit(m methodHandlers) http.Handler {
	allow := ""
	for method := range m {
		if allow != "" {
			allow += ","
		}
		allow += method
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := m[r.Method]; ok {
			h.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Allow", allow)
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func withLogging(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
