package rbac

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/motelworks/motel-manager/internal/apperr"
	"github.com/motelworks/motel-manager/internal/db"
	"github.com/motelworks/motel-manager/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	for _, m := range db.Models() {
		if err := conn.AutoMigrate(m); err != nil {
			t.Fatalf("automigrate %T: %v", m, err)
		}
	}
	return conn
}

type fixture struct {
	conn    *gorm.DB
	svc     *Service
	user    models.User
	admin   models.Role
	manager models.Role
}

func setup(t *testing.T) *fixture {
	t.Helper()
	conn := testDB(t)
	if err := db.Seed(conn); err != nil {
		t.Fatalf("seed: %v", err)
	}
	f := &fixture{conn: conn, svc: NewService(conn)}
	if err := conn.Where("name = ?", "admin").First(&f.admin).Error; err != nil {
		t.Fatalf("load admin role: %v", err)
	}
	if err := conn.Where("name = ?", "manager").First(&f.manager).Error; err != nil {
		t.Fatalf("load manager role: %v", err)
	}
	f.user = models.User{Name: "Somchai", Email: "somchai@example.com", PasswordHash: "x"}
	if err := conn.Create(&f.user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return f
}

func TestHasRole(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	held, err := f.svc.HasRole(ctx, f.user.ID, "admin")
	if err != nil {
		t.Fatalf("HasRole: %v", err)
	}
	if held {
		t.Fatal("fresh user should hold no roles")
	}

	if err := f.svc.AssignRole(ctx, f.user.ID, RoleName("admin")); err != nil {
		t.Fatalf("AssignRole: %v", err)
	}
	held, err = f.svc.HasRole(ctx, f.user.ID, "admin")
	if err != nil {
		t.Fatalf("HasRole: %v", err)
	}
	if !held {
		t.Fatal("role grant should be visible on the next check")
	}

	// any-of semantics
	held, err = f.svc.HasRole(ctx, f.user.ID, "manager", "admin")
	if err != nil {
		t.Fatalf("HasRole: %v", err)
	}
	if !held {
		t.Fatal("any-of check should pass when one name matches")
	}
}

func TestHasAllRolesIsConjunction(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	if err := f.svc.AssignRole(ctx, f.user.ID, RoleName("admin")); err != nil {
		t.Fatalf("AssignRole: %v", err)
	}

	all, err := f.svc.HasAllRoles(ctx, f.user.ID, []string{"admin", "manager"})
	if err != nil {
		t.Fatalf("HasAllRoles: %v", err)
	}
	if all {
		t.Fatal("missing manager role should fail the conjunction")
	}

	if err := f.svc.AssignRole(ctx, f.user.ID, RoleID(f.manager.ID)); err != nil {
		t.Fatalf("AssignRole by id: %v", err)
	}
	all, err = f.svc.HasAllRoles(ctx, f.user.ID, []string{"admin", "manager"})
	if err != nil {
		t.Fatalf("HasAllRoles: %v", err)
	}
	if !all {
		t.Fatal("conjunction should pass once both roles are held")
	}
}

func TestHasPermissionIsUnionAcrossRoles(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	// tenant role carries no permissions
	if err := f.svc.AssignRole(ctx, f.user.ID, RoleName("tenant")); err != nil {
		t.Fatalf("AssignRole: %v", err)
	}
	held, err := f.svc.HasPermission(ctx, f.user.ID, "manage-rates")
	if err != nil {
		t.Fatalf("HasPermission: %v", err)
	}
	if held {
		t.Fatal("tenant must not have manage-rates")
	}

	// manager lacks manage-rates, admin grants it; union should win
	if err := f.svc.AssignRole(ctx, f.user.ID, RoleName("manager")); err != nil {
		t.Fatalf("AssignRole: %v", err)
	}
	held, err = f.svc.HasPermission(ctx, f.user.ID, "manage-rates")
	if err != nil {
		t.Fatalf("HasPermission: %v", err)
	}
	if held {
		t.Fatal("manager must not have manage-rates")
	}
	if err := f.svc.AssignRole(ctx, f.user.ID, RoleName("admin")); err != nil {
		t.Fatalf("AssignRole: %v", err)
	}
	held, err = f.svc.HasPermission(ctx, f.user.ID, "manage-rates")
	if err != nil {
		t.Fatalf("HasPermission: %v", err)
	}
	if !held {
		t.Fatal("admin role should grant manage-rates through the union")
	}
}

func TestRemoveRoleIsVisibleImmediately(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	if err := f.svc.AssignRole(ctx, f.user.ID, RoleName("admin")); err != nil {
		t.Fatalf("AssignRole: %v", err)
	}
	if err := f.svc.RemoveRole(ctx, f.user.ID, RoleName("admin")); err != nil {
		t.Fatalf("RemoveRole: %v", err)
	}
	held, err := f.svc.HasRole(ctx, f.user.ID, "admin")
	if err != nil {
		t.Fatalf("HasRole: %v", err)
	}
	if held {
		t.Fatal("revocation should be visible on the next check")
	}
}

func TestSyncRolesReplacesSet(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	if err := f.svc.AssignRole(ctx, f.user.ID, RoleName("admin")); err != nil {
		t.Fatalf("AssignRole: %v", err)
	}
	if err := f.svc.SyncRoles(ctx, f.user.ID, []uint{f.manager.ID}); err != nil {
		t.Fatalf("SyncRoles: %v", err)
	}
	names, err := f.svc.UserRoles(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("UserRoles: %v", err)
	}
	if len(names) != 1 || names[0] != "manager" {
		t.Fatalf("roles after sync = %v, want [manager]", names)
	}

	// empty sync clears everything
	if err := f.svc.SyncRoles(ctx, f.user.ID, nil); err != nil {
		t.Fatalf("SyncRoles empty: %v", err)
	}
	names, err = f.svc.UserRoles(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("UserRoles: %v", err)
	}
	if len(names) != 0 {
		t.Fatalf("roles after empty sync = %v, want none", names)
	}
}

func TestSyncRolesUnknownID(t *testing.T) {
	f := setup(t)
	err := f.svc.SyncRoles(context.Background(), f.user.ID, []uint{9999})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUnknownSubjectsAreNotFound(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	if err := f.svc.AssignRole(ctx, 9999, RoleName("admin")); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("assign to unknown user: %v, want ErrNotFound", err)
	}
	if err := f.svc.AssignRole(ctx, f.user.ID, RoleName("landlord")); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("assign unknown role: %v, want ErrNotFound", err)
	}
	if err := f.svc.GivePermission(ctx, RoleName("admin"), "no-such-permission"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("give unknown permission: %v, want ErrNotFound", err)
	}
}

func TestRoleHasPermission(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	held, err := f.svc.RoleHasPermission(ctx, RoleName("manager"), "approve-bookings")
	if err != nil {
		t.Fatalf("RoleHasPermission: %v", err)
	}
	if !held {
		t.Fatal("manager should hold approve-bookings")
	}
	held, err = f.svc.RoleHasPermission(ctx, RoleEntity(&f.manager), "manage-roles")
	if err != nil {
		t.Fatalf("RoleHasPermission: %v", err)
	}
	if held {
		t.Fatal("manager must not hold manage-roles")
	}
}

func TestGiveAndRevokePermission(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	if err := f.svc.GivePermission(ctx, RoleName("manager"), "manage-rates"); err != nil {
		t.Fatalf("GivePermission: %v", err)
	}
	held, err := f.svc.RoleHasPermission(ctx, RoleName("manager"), "manage-rates")
	if err != nil {
		t.Fatalf("RoleHasPermission: %v", err)
	}
	if !held {
		t.Fatal("grant should be visible")
	}
	if err := f.svc.RevokePermission(ctx, RoleName("manager"), "manage-rates"); err != nil {
		t.Fatalf("RevokePermission: %v", err)
	}
	held, err = f.svc.RoleHasPermission(ctx, RoleName("manager"), "manage-rates")
	if err != nil {
		t.Fatalf("RoleHasPermission: %v", err)
	}
	if held {
		t.Fatal("revocation should be visible")
	}
}
