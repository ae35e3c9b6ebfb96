package services

import (
	"context"
	"fmt"

	"admin-restful/models"
	"admin-restful/repositories"
)

type PermissionService interface {
	ListPermissions(ctx context.Context) ([]models.Permission, error)
}

type permissionService struct {
	repo repositories.PermissionRepository
}

func NewPermissionService(repo repositories.PermissionRepository) PermissionService {
	return &permissionService{repo: repo}
}

func (s *permissionService) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	perms, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	return perms, nil
}
