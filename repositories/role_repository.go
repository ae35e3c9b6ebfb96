package repositories

import (
	"context"
	"errors"
	"fmt"

	"admin-restful/models"

	"gorm.io/gorm"
)

// ErrUnknownPermissions is returned when a role references permission ids
// that are not in the catalog.
var ErrUnknownPermissions = errors.New("unknown permission ids")

// RoleRepository persists roles and their permission associations. Create
// and Update are all-or-nothing: a failed attach rolls back the scalar write.
type RoleRepository interface {
	Create(ctx context.Context, role *models.Role, permissionIDs []uint) error
	Update(ctx context.Context, role *models.Role, permissionIDs []uint) error
	FindByID(ctx context.Context, id uint) (*models.Role, error)
	FindByName(ctx context.Context, name string) (*models.Role, error)
	FindAll(ctx context.Context) ([]models.Role, error)
	Delete(ctx context.Context, role *models.Role) error
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) Create(ctx context.Context, role *models.Role, permissionIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		role.Permissions = nil
		if err := tx.Create(role).Error; err != nil {
			return err
		}
		return attachPermissions(tx, role, permissionIDs)
	})
}

func (r *roleRepository) Update(ctx context.Context, role *models.Role, permissionIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Role{}).Where("id = ?", role.ID).Update("name", role.Name)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Role{}).Where("id = ?", role.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return attachPermissions(tx, role, permissionIDs)
	})
}

// attachPermissions replaces the permission set of role with permissionIDs.
// Any id missing from the catalog aborts the surrounding transaction.
func attachPermissions(tx *gorm.DB, role *models.Role, permissionIDs []uint) error {
	ids := uniqueIDs(permissionIDs)
	perms := make([]models.Permission, 0, len(ids))
	if len(ids) > 0 {
		if err := tx.Where("id IN ?", ids).Order("id").Find(&perms).Error; err != nil {
			return err
		}
		if len(perms) != len(ids) {
			return fmt.Errorf("%w: requested %d, found %d", ErrUnknownPermissions, len(ids), len(perms))
		}
	}

	if err := tx.Model(role).Association("Permissions").Replace(perms); err != nil {
		return fmt.Errorf("attach permissions to role %d: %w", role.ID, err)
	}
	role.Permissions = perms
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (r *roleRepository) FindByID(ctx context.Context, id uint) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Preload("Permissions").First(&role, id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Preload("Permissions").Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) FindAll(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := r.db.WithContext(ctx).Preload("Permissions").Order("id").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// Delete detaches the role from its users and permissions, then removes it.
func (r *roleRepository) Delete(ctx context.Context, role *models.Role) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("role_id = ?", role.ID).Update("role_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(role).Association("Permissions").Clear(); err != nil {
			return err
		}
		return tx.Unscoped().Delete(role).Error
	})
}
