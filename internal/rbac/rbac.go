// Package rbac is the role/permission authority. All checks are live reads
// against the membership tables; nothing is cached, so a role or permission
// mutation is visible on the next check.
package rbac

import (
	"context"

	"gorm.io/gorm"

	"github.com/motelworks/motel-manager/internal/apperr"
	"github.com/motelworks/motel-manager/internal/models"
)

// RoleRef identifies a role by id, by name, or by entity. Callers pick one
// constructor; the ref is resolved to a canonical row exactly once.
type RoleRef struct {
	id     uint
	name   string
	entity *models.Role
}

func RoleID(id uint) RoleRef            { return RoleRef{id: id} }
func RoleName(name string) RoleRef      { return RoleRef{name: name} }
func RoleEntity(r *models.Role) RoleRef { return RoleRef{entity: r} }

func (ref RoleRef) resolve(db *gorm.DB) (*models.Role, error) {
	if ref.entity != nil {
		return ref.entity, nil
	}
	var role models.Role
	q := db
	switch {
	case ref.id != 0:
		q = q.Where("id = ?", ref.id)
	case ref.name != "":
		q = q.Where("name = ?", ref.name)
	default:
		return nil, apperr.NotFound("role")
	}
	if err := q.First(&role).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("role")
		}
		return nil, err
	}
	return &role, nil
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// HasRole reports whether the user holds any of the given role names.
func (s *Service) HasRole(ctx context.Context, userID uint, names ...string) (bool, error) {
	if len(names) == 0 {
		return false, nil
	}
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Role{}).
		Joins("JOIN user_roles ur ON ur.role_id = roles.id").
		Where("ur.user_id = ? AND roles.name IN ?", userID, names).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// HasAnyRole is the explicit any-of form of HasRole.
func (s *Service) HasAnyRole(ctx context.Context, userID uint, names []string) (bool, error) {
	return s.HasRole(ctx, userID, names...)
}

// HasAllRoles is a conjunction of individual HasRole checks and fails fast
// as soon as one role is missing.
func (s *Service) HasAllRoles(ctx context.Context, userID uint, names []string) (bool, error) {
	for _, name := range names {
		ok, err := s.HasRole(ctx, userID, name)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// HasPermission reports whether any of the user's roles grants the named
// permission: union-then-contains, recomputed on every call.
func (s *Service) HasPermission(ctx context.Context, userID uint, permission string) (bool, error) {
	var roles []models.Role
	err := s.db.WithContext(ctx).
		Joins("JOIN user_roles ur ON ur.role_id = roles.id").
		Where("ur.user_id = ?", userID).
		Preload("Permissions").
		Find(&roles).Error
	if err != nil {
		return false, err
	}
	for i := range roles {
		if roles[i].HasPermission(permission) {
			return true, nil
		}
	}
	return false, nil
}

// AssignRole attaches a role to a user. Attaching an already-held role is a
// caller responsibility to avoid; the attach itself does not dedupe.
func (s *Service) AssignRole(ctx context.Context, userID uint, ref RoleRef) error {
	db := s.db.WithContext(ctx)
	role, err := ref.resolve(db)
	if err != nil {
		return err
	}
	user, err := s.findUser(db, userID)
	if err != nil {
		return err
	}
	return db.Model(user).Association("Roles").Append(role)
}

// RemoveRole detaches a role from a user.
func (s *Service) RemoveRole(ctx context.Context, userID uint, ref RoleRef) error {
	db := s.db.WithContext(ctx)
	role, err := ref.resolve(db)
	if err != nil {
		return err
	}
	user, err := s.findUser(db, userID)
	if err != nil {
		return err
	}
	return db.Model(user).Association("Roles").Delete(role)
}

// SyncRoles replaces the user's entire role set with exactly the given ids.
func (s *Service) SyncRoles(ctx context.Context, userID uint, roleIDs []uint) error {
	db := s.db.WithContext(ctx)
	user, err := s.findUser(db, userID)
	if err != nil {
		return err
	}
	var roles []models.Role
	if len(roleIDs) > 0 {
		if err := db.Where("id IN ?", roleIDs).Find(&roles).Error; err != nil {
			return err
		}
		if len(roles) != len(roleIDs) {
			return apperr.NotFound("role")
		}
	}
	return db.Model(user).Association("Roles").Replace(roles)
}

// UserRoles returns the user's role names.
func (s *Service) UserRoles(ctx context.Context, userID uint) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).Model(&models.Role{}).
		Joins("JOIN user_roles ur ON ur.role_id = roles.id").
		Where("ur.user_id = ?", userID).
		Pluck("roles.name", &names).Error
	return names, err
}

// RoleHasPermission mirrors HasPermission one level down.
func (s *Service) RoleHasPermission(ctx context.Context, ref RoleRef, permission string) (bool, error) {
	db := s.db.WithContext(ctx)
	role, err := ref.resolve(db)
	if err != nil {
		return false, err
	}
	var n int64
	err = db.Model(&models.Permission{}).
		Joins("JOIN role_permissions rp ON rp.permission_id = permissions.id").
		Where("rp.role_id = ? AND permissions.name = ?", role.ID, permission).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GivePermission grants a named permission to a role.
func (s *Service) GivePermission(ctx context.Context, ref RoleRef, permission string) error {
	db := s.db.WithContext(ctx)
	role, err := ref.resolve(db)
	if err != nil {
		return err
	}
	perm, err := s.findPermission(db, permission)
	if err != nil {
		return err
	}
	return db.Model(role).Association("Permissions").Append(perm)
}

// RevokePermission removes a named permission from a role.
func (s *Service) RevokePermission(ctx context.Context, ref RoleRef, permission string) error {
	db := s.db.WithContext(ctx)
	role, err := ref.resolve(db)
	if err != nil {
		return err
	}
	perm, err := s.findPermission(db, permission)
	if err != nil {
		return err
	}
	return db.Model(role).Association("Permissions").Delete(perm)
}

func (s *Service) findUser(db *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("user")
		}
		return nil, err
	}
	return &user, nil
}

func (s *Service) findPermission(db *gorm.DB, name string) (*models.Permission, error) {
	var perm models.Permission
	if err := db.Where("name = ?", name).First(&perm).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("permission")
		}
		return nil, err
	}
	return &perm, nil
}
