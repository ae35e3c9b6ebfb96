package repositories

import (
	"context"

	"admin-restful/models"

	"gorm.io/gorm"
)

type PermissionRepository interface {
	FindAll(ctx context.Context) ([]models.Permission, error)
	FindOrCreate(ctx context.Context, name string) (*models.Permission, error)
}

type permissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &permissionRepository{db: db}
}

func (r *permissionRepository) FindAll(ctx context.Context) ([]models.Permission, error) {
	var perms []models.Permission
	if err := r.db.WithContext(ctx).Order("id").Find(&perms).Error; err != nil {
		return nil, err
	}
	return perms, nil
}

func (r *permissionRepository) FindOrCreate(ctx context.Context, name string) (*models.Permission, error) {
	perm := models.Permission{Name: name}
	if err := r.db.WithContext(ctx).Where("name = ?", name).FirstOrCreate(&perm).Error; err != nil {
		return nil, err
	}
	return &perm, nil
}
