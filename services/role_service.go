package services

import (
	"context"
	"errors"
	"fmt"

	"admin-restful/auth"
	"admin-restful/models"
	"admin-restful/repositories"

	"gorm.io/gorm"
)

// RoleInput is the body of role create and update. Permissions holds
// permission ids; the role's set is replaced by exactly these.
type RoleInput struct {
	Name        string `json:"name" validate:"required,max=200"`
	Permissions []uint `json:"permissions" validate:"dive,min=1"`
}

type RoleService interface {
	CreateRole(ctx context.Context, input *RoleInput) (*models.Role, error)
	GetRole(ctx context.Context, id uint) (*models.Role, error)
	UpdateRole(ctx context.Context, id uint, input *RoleInput) (*models.Role, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
	DeleteRole(ctx context.Context, id uint) error
}

type roleService struct {
	repo repositories.RoleRepository
}

var _ RoleService = (*roleService)(nil)

func NewRoleService(repo repositories.RoleRepository) RoleService {
	return &roleService{repo: repo}
}

// CreateRole persists the role and its permission set atomically. An unknown
// permission id yields auth.ErrInvalidPermissionSet and leaves no role behind.
func (s *roleService) CreateRole(ctx context.Context, input *RoleInput) (*models.Role, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	role := models.Role{Name: input.Name}
	if err := s.repo.Create(ctx, &role, input.Permissions); err != nil {
		return nil, permissionSetError(err, "create role")
	}
	return s.repo.FindByID(ctx, role.ID)
}

func (s *roleService) GetRole(ctx context.Context, id uint) (*models.Role, error) {
	role, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("role", id)
		}
		return nil, fmt.Errorf("get role %d: %w", id, err)
	}
	return role, nil
}

// UpdateRole renames the role and replaces its permission set in one
// transaction. On auth.ErrInvalidPermissionSet the stored role is unchanged.
func (s *roleService) UpdateRole(ctx context.Context, id uint, input *RoleInput) (*models.Role, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	role, err := s.GetRole(ctx, id)
	if err != nil {
		return nil, err
	}
	role.Name = input.Name
	if err := s.repo.Update(ctx, role, input.Permissions); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("role", id)
		}
		return nil, permissionSetError(err, fmt.Sprintf("update role %d", id))
	}
	return s.repo.FindByID(ctx, id)
}

func (s *roleService) ListRoles(ctx context.Context) ([]models.Role, error) {
	roles, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

// DeleteRole removes the role. Users holding it are left without a role.
func (s *roleService) DeleteRole(ctx context.Context, id uint) error {
	role, err := s.GetRole(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, role); err != nil {
		return fmt.Errorf("delete role %d: %w", id, err)
	}
	return nil
}

func permissionSetError(err error, op string) error {
	if errors.Is(err, repositories.ErrUnknownPermissions) {
		return fmt.Errorf("%w: %v", auth.ErrInvalidPermissionSet, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
