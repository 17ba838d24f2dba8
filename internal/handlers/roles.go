package handlers

import (
	"encoding/json"
	"net/http"

	"gorm.io/gorm"

	"github.com/motelworks/motel-manager/internal/httpx"
	"github.com/motelworks/motel-manager/internal/models"
	"github.com/motelworks/motel-manager/internal/rbac"
)

// RoleHandler is the admin surface for role membership. The router guards
// every route here behind the admin role.
type RoleHandler struct {
	DB   *gorm.DB
	RBAC *rbac.Service
}

func NewRoleHandler(db *gorm.DB, r *rbac.Service) *RoleHandler {
	return &RoleHandler{DB: db, RBAC: r}
}

// List: GET /admin/roles
func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	var roles []models.Role
	if err := h.DB.Preload("Permissions").Order("id").Find(&roles).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_list_roles", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": roles, "total": len(roles)})
}

type roleChangeReq struct {
	UserID uint   `json:"user_id"`
	RoleID uint   `json:"role_id"`
	Role   string `json:"role"`
}

func (req roleChangeReq) ref() rbac.RoleRef {
	if req.RoleID != 0 {
		return rbac.RoleID(req.RoleID)
	}
	return rbac.RoleName(req.Role)
}

// Assign: POST /admin/roles/assign. Role by id or name. The UI checks for
// an already-held role before calling; the attach itself does not dedupe.
func (h *RoleHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req roleChangeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.UserID == 0 || (req.RoleID == 0 && req.Role == "") {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"user_id": "required", "role": "required"})
		return
	}
	if err := h.RBAC.AssignRole(r.Context(), req.UserID, req.ref()); err != nil {
		httpx.WriteError(w, err)
		return
	}
	h.respondRoles(w, r, req.UserID)
}

// Remove: POST /admin/roles/remove
func (h *RoleHandler) Remove(w http.ResponseWriter, r *http.Request) {
	var req roleChangeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.UserID == 0 || (req.RoleID == 0 && req.Role == "") {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"user_id": "required", "role": "required"})
		return
	}
	if err := h.RBAC.RemoveRole(r.Context(), req.UserID, req.ref()); err != nil {
		httpx.WriteError(w, err)
		return
	}
	h.respondRoles(w, r, req.UserID)
}

type syncRolesReq struct {
	UserID  uint   `json:"user_id"`
	RoleIDs []uint `json:"role_ids"`
}

// Sync: POST /admin/roles/sync. Replaces the user's entire role set.
func (h *RoleHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var req syncRolesReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if req.UserID == 0 {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"user_id": "required"})
		return
	}
	if err := h.RBAC.SyncRoles(r.Context(), req.UserID, req.RoleIDs); err != nil {
		httpx.WriteError(w, err)
		return
	}
	h.respondRoles(w, r, req.UserID)
}

func (h *RoleHandler) respondRoles(w http.ResponseWriter, r *http.Request, userID uint) {
	names, err := h.RBAC.UserRoles(r.Context(), userID)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed_to_load_roles", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"user_id": userID, "roles": names})
}
