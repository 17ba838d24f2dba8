package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/motelworks/motel-manager/internal/models"
)

func TestSignupAssignsTenantRole(t *testing.T) {
	conn := testDB(t)
	mux := http.NewServeMux()
	NewAuthHandler(conn).Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, postJSON("/signup", `{"name":"Somchai","email":"s@example.com","password":"secret123"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Fatal("signup should set a session cookie")
	}

	var user models.User
	if err := conn.Preload("Roles").Where("email = ?", "s@example.com").First(&user).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.PasswordHash == "secret123" {
		t.Fatal("password must be stored hashed")
	}
	if len(user.Roles) != 1 || user.Roles[0].Name != "tenant" {
		t.Fatalf("roles = %+v, want the default tenant role", user.Roles)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	conn := testDB(t)
	mux := http.NewServeMux()
	NewAuthHandler(conn).Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, postJSON("/signup", `{"name":"A","email":"dup@example.com","password":"x"}`))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first signup: status = %d", rec.Code)
	}
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, postJSON("/signup", `{"name":"B","email":"dup@example.com","password":"y"}`))
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate signup: status = %d, want 409", rec.Code)
	}
}

func TestSignupValidation(t *testing.T) {
	conn := testDB(t)
	mux := http.NewServeMux()
	NewAuthHandler(conn).Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, postJSON("/signup", `{"name":"A","email":"","password":""}`))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank credentials: status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/signup", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /signup: status = %d, want 405", rec.Code)
	}
}
