package services

import (
	"context"
	"errors"
	"fmt"

	"admin-restful/auth"
	"admin-restful/models"
	"admin-restful/repositories"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// The UserService interface defines the methods that user services need to implement
type UserService interface {
	Register(ctx context.Context, input *RegisterInput) (*models.User, error)
	CreateUser(ctx context.Context, input *CreateUserInput) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	UpdateUser(ctx context.Context, id uint, input *UpdateUserInput) (*models.User, error)
	ListUsers(ctx context.Context, page int, pageSize int) ([]models.User, int64, error)
	DeleteUser(ctx context.Context, id uint) error
}

type RegisterInput struct {
	FirstName       string `json:"first_name" validate:"required,max=200"`
	LastName        string `json:"last_name" validate:"required,max=200"`
	Email           string `json:"email" validate:"required,email,max=200"`
	Password        string `json:"password" validate:"required,min=4"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
}

type CreateUserInput struct {
	FirstName string `json:"first_name" validate:"required,max=200"`
	LastName  string `json:"last_name" validate:"required,max=200"`
	Email     string `json:"email" validate:"required,email,max=200"`
	Password  string `json:"password" validate:"required,min=4"`
	RoleID    *uint  `json:"role_id" validate:"omitempty,min=1"`
}

// UpdateUserInput uses pointers to distinguish "not provided" from empty.
// ClearRole detaches the current role.
type UpdateUserInput struct {
	FirstName *string `json:"first_name" validate:"omitempty,min=1,max=200"`
	LastName  *string `json:"last_name" validate:"omitempty,min=1,max=200"`
	Email     *string `json:"email" validate:"omitempty,email,max=200"`
	Password  *string `json:"password" validate:"omitempty,min=4"`
	RoleID    *uint   `json:"role_id" validate:"omitempty,min=1"`
	ClearRole bool    `json:"clear_role"`
}

type userService struct {
	repo  repositories.UserRepository
	roles repositories.RoleRepository
}

var _ UserService = (*userService)(nil)

// NewUserService creates a new UserService instance
func NewUserService(repo repositories.UserRepository, roles repositories.RoleRepository) UserService {
	return &userService{repo: repo, roles: roles}
}

// Register creates a user without a role. The user holds no resource
// permissions until an administrator assigns one.
func (s *userService) Register(ctx context.Context, input *RegisterInput) (*models.User, error) {
	if input.Password != input.PasswordConfirm {
		return nil, auth.ErrPasswordMismatch
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	return s.create(ctx, input.FirstName, input.LastName, input.Email, input.Password, nil)
}

func (s *userService) CreateUser(ctx context.Context, input *CreateUserInput) (*models.User, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	return s.create(ctx, input.FirstName, input.LastName, input.Email, input.Password, input.RoleID)
}

func (s *userService) create(ctx context.Context, firstName, lastName, email, password string, roleID *uint) (*models.User, error) {
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}
	if err := s.ensureRoleExists(ctx, roleID); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Password:  string(hashedPassword),
		RoleID:    roleID,
	}
	if err := s.repo.Create(ctx, &user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.repo.FindByID(ctx, user.ID)
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user", id)
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

func (s *userService) UpdateUser(ctx context.Context, id uint, input *UpdateUserInput) (*models.User, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil && *input.Email != user.Email {
		if err := s.ensureEmailFree(ctx, *input.Email, user.ID); err != nil {
			return nil, err
		}
		user.Email = *input.Email
	}
	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Password != nil {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.Password = string(hashedPassword)
	}
	switch {
	case input.ClearRole:
		user.RoleID = nil
	case input.RoleID != nil:
		if err := s.ensureRoleExists(ctx, input.RoleID); err != nil {
			return nil, err
		}
		user.RoleID = input.RoleID
	}
	user.Role = nil

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	return s.repo.FindByID(ctx, user.ID)
}

func (s *userService) ListUsers(ctx context.Context, page int, pageSize int) ([]models.User, int64, error) {
	users, total, err := s.repo.FindAll(ctx, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return users, total, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, user); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}

// ensureEmailFree fails when another user than self already uses email.
// Concurrent writers can still race past it; the unique index on email
// catches those and surfaces as gorm.ErrDuplicatedKey.
func (s *userService) ensureEmailFree(ctx context.Context, email string, self uint) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != self:
		return ErrEmailTaken
	case err == nil, errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return fmt.Errorf("check email uniqueness: %w", err)
	}
}

func (s *userService) ensureRoleExists(ctx context.Context, roleID *uint) error {
	if roleID == nil {
		return nil
	}
	if _, err := s.roles.FindByID(ctx, *roleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: role %d does not exist", ErrInvalidInput, *roleID)
		}
		return fmt.Errorf("look up role %d: %w", *roleID, err)
	}
	return nil
}
