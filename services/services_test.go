package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"admin-restful/auth"
	"admin-restful/config"
	"admin-restful/database"
	"admin-restful/models"
	"admin-restful/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: dsn}, false)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Seed(context.Background(), db, config.SeedConfig{}, zap.NewNop()))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func permissionIDs(t *testing.T, db *gorm.DB, names ...string) []uint {
	t.Helper()
	var perms []models.Permission
	require.NoError(t, db.Where("name IN ?", names).Find(&perms).Error)
	require.Len(t, perms, len(names))
	ids := make([]uint, 0, len(perms))
	for _, p := range perms {
		ids = append(ids, p.ID)
	}
	return ids
}

func newUserService(db *gorm.DB) UserService {
	return NewUserService(repositories.NewUserRepository(db), repositories.NewRoleRepository(db))
}

func TestRegister(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	t.Run("password mismatch", func(t *testing.T) {
		_, err := svc.Register(ctx, &RegisterInput{
			FirstName: "A", LastName: "B", Email: "a@example.com",
			Password: "secret", PasswordConfirm: "other",
		})
		assert.ErrorIs(t, err, auth.ErrPasswordMismatch)
		assert.Equal(t, 400, auth.HTTPStatus(err))
	})

	t.Run("creates user without role", func(t *testing.T) {
		user, err := svc.Register(ctx, &RegisterInput{
			FirstName: "A", LastName: "B", Email: "a@example.com",
			Password: "secret", PasswordConfirm: "secret",
		})
		require.NoError(t, err)
		assert.Nil(t, user.RoleID)
		assert.NotEqual(t, "secret", user.Password)
		assert.False(t, auth.Authorize(user, "users", auth.Read))
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, &RegisterInput{
			FirstName: "C", LastName: "D", Email: "a@example.com",
			Password: "secret", PasswordConfirm: "secret",
		})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := svc.Register(ctx, &RegisterInput{
			FirstName: "C", LastName: "D", Email: "not-an-email",
			Password: "secret", PasswordConfirm: "secret",
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestRegisterConcurrentSameEmail(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	const workers = 4
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, &RegisterInput{
				FirstName: "Dup", LastName: "User", Email: "dup@example.com",
				Password: "secret", PasswordConfirm: "secret",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrEmailTaken)
	}
	assert.Equal(t, 1, succeeded)
}

// staleEmailLookup hides existing users from the uniqueness pre-check, as
// a concurrent writer would.
type staleEmailLookup struct {
	repositories.UserRepository
}

func (staleEmailLookup) FindByEmail(context.Context, string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func TestUniqueIndexViolationIsEmailTaken(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	roles := repositories.NewRoleRepository(db)
	svc := NewUserService(staleEmailLookup{repositories.NewUserRepository(db)}, roles)

	first, err := svc.CreateUser(ctx, &CreateUserInput{
		FirstName: "A", LastName: "B", Email: "race@example.com", Password: "secret",
	})
	require.NoError(t, err)
	_, err = svc.CreateUser(ctx, &CreateUserInput{
		FirstName: "C", LastName: "D", Email: "race@example.com", Password: "secret",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)

	second, err := svc.CreateUser(ctx, &CreateUserInput{
		FirstName: "E", LastName: "F", Email: "other@example.com", Password: "secret",
	})
	require.NoError(t, err)
	taken := first.Email
	_, err = svc.UpdateUser(ctx, second.ID, &UpdateUserInput{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserCRUD(t *testing.T) {
	db := setupTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	editor, err := repositories.NewRoleRepository(db).FindByName(ctx, "Editor")
	require.NoError(t, err)

	user, err := svc.CreateUser(ctx, &CreateUserInput{
		FirstName: "Alice", LastName: "Smith", Email: "alice@example.com",
		Password: "secret", RoleID: &editor.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, user.Role)
	assert.Equal(t, "Editor", user.Role.Name)

	missing := uint(9999)
	_, err = svc.CreateUser(ctx, &CreateUserInput{
		FirstName: "Bob", LastName: "Smith", Email: "bob@example.com",
		Password: "secret", RoleID: &missing,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	newName := "Alicia"
	updated, err := svc.UpdateUser(ctx, user.ID, &UpdateUserInput{FirstName: &newName, ClearRole: true})
	require.NoError(t, err)
	assert.Equal(t, "Alicia", updated.FirstName)
	assert.Equal(t, "Smith", updated.LastName)
	assert.Nil(t, updated.RoleID)

	_, err = svc.CreateUser(ctx, &CreateUserInput{
		FirstName: "Bob", LastName: "Smith", Email: "bob@example.com", Password: "secret",
	})
	require.NoError(t, err)
	taken := "bob@example.com"
	_, err = svc.UpdateUser(ctx, user.ID, &UpdateUserInput{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailTaken)

	users, total, err := svc.ListUsers(ctx, 1, 15)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, users, 2)

	require.NoError(t, svc.DeleteUser(ctx, user.ID))
	_, err = svc.GetUserByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteUser(ctx, user.ID), ErrNotFound)
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	_, err := newUserService(db).Register(ctx, &RegisterInput{
		FirstName: "A", LastName: "B", Email: "a@example.com",
		Password: "secret", PasswordConfirm: "secret",
	})
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens, err := auth.NewTokenManager([]byte("test-secret"))
	require.NoError(t, err)
	tokens = tokens.WithClock(func() time.Time { return now })
	svc := NewAuthService(repositories.NewUserRepository(db), tokens)

	token, user, err := svc.Login(ctx, &LoginInput{Email: "a@example.com", Password: "secret"})
	require.NoError(t, err)
	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	_, _, err = svc.Login(ctx, &LoginInput{Email: "a@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidLogin)
	_, _, err = svc.Login(ctx, &LoginInput{Email: "nobody@example.com", Password: "secret"})
	assert.ErrorIs(t, err, ErrInvalidLogin)
	// Email lookup is exact.
	_, _, err = svc.Login(ctx, &LoginInput{Email: "A@example.com", Password: "secret"})
	assert.ErrorIs(t, err, ErrInvalidLogin)
}

func TestRoleServiceRejectsUnknownPermission(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoleService(repositories.NewRoleRepository(db))
	ctx := context.Background()

	var before int64
	require.NoError(t, db.Model(&models.Role{}).Count(&before).Error)

	_, err := svc.CreateRole(ctx, &RoleInput{Name: "viewer-only", Permissions: []uint{99}})
	assert.ErrorIs(t, err, auth.ErrInvalidPermissionSet)
	assert.Equal(t, 422, auth.HTTPStatus(err))

	var after int64
	require.NoError(t, db.Model(&models.Role{}).Count(&after).Error)
	assert.Equal(t, before, after)
	var named int64
	require.NoError(t, db.Model(&models.Role{}).Where("name = ?", "viewer-only").Count(&named).Error)
	assert.Zero(t, named)
}

func TestRoleServiceUpdate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoleService(repositories.NewRoleRepository(db))
	ctx := context.Background()

	role, err := svc.CreateRole(ctx, &RoleInput{
		Name:        "support",
		Permissions: permissionIDs(t, db, "view_users"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"view_users"}, role.PermissionNames())

	_, err = svc.UpdateRole(ctx, role.ID, &RoleInput{Name: "renamed", Permissions: []uint{99}})
	assert.ErrorIs(t, err, auth.ErrInvalidPermissionSet)
	unchanged, err := svc.GetRole(ctx, role.ID)
	require.NoError(t, err)
	assert.Equal(t, "support", unchanged.Name)
	assert.Equal(t, []string{"view_users"}, unchanged.PermissionNames())

	updated, err := svc.UpdateRole(ctx, role.ID, &RoleInput{
		Name:        "support",
		Permissions: permissionIDs(t, db, "edit_users", "view_orders"),
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"edit_users", "view_orders"}, updated.PermissionNames())

	_, err = svc.UpdateRole(ctx, 4242, &RoleInput{Name: "ghost"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.DeleteRole(ctx, role.ID))
	_, err = svc.GetRole(ctx, role.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPermissionChangeAffectsAuthorization(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	roles := NewRoleService(repositories.NewRoleRepository(db))
	userRepo := repositories.NewUserRepository(db)

	role, err := roles.CreateRole(ctx, &RoleInput{Name: "editor", Permissions: permissionIDs(t, db, "view_products")})
	require.NoError(t, err)
	user, err := newUserService(db).CreateUser(ctx, &CreateUserInput{
		FirstName: "Alice", LastName: "Smith", Email: "alice@example.com",
		Password: "secret", RoleID: &role.ID,
	})
	require.NoError(t, err)

	loaded, err := userRepo.FindByIDWithRole(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, auth.Authorize(loaded, "products", auth.Read))
	assert.False(t, auth.Authorize(loaded, "products", auth.Write))

	_, err = roles.UpdateRole(ctx, role.ID, &RoleInput{Name: "editor", Permissions: permissionIDs(t, db, "edit_products")})
	require.NoError(t, err)

	loaded, err = userRepo.FindByIDWithRole(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, auth.Authorize(loaded, "products", auth.Write))
}

func TestProductService(t *testing.T) {
	db := setupTestDB(t)
	svc := NewProductService(repositories.NewProductRepository(db))
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, &CreateProductInput{Title: "Mug", Price: 9.5})
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, &CreateProductInput{Price: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	price := 12.0
	updated, err := svc.UpdateProduct(ctx, p.ID, &UpdateProductInput{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, "Mug", updated.Title)
	assert.Equal(t, 12.0, updated.Price)

	_, total, err := svc.ListProducts(ctx, 1, 15)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	require.NoError(t, svc.DeleteProduct(ctx, p.ID))
	_, err = svc.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderService(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := repositories.NewOrderRepository(db)
	require.NoError(t, db.WithContext(ctx).Create(&models.Order{
		FirstName: "Jane", LastName: "Doe", Email: "jane@example.com",
		OrderItems: []models.OrderItem{
			{ProductTitle: "Mug", Price: 10, Quantity: 2},
			{ProductTitle: "Pen", Price: 2.5, Quantity: 4},
		},
	}).Error)
	svc := NewOrderService(repo)

	orders, total, err := svc.ListOrders(ctx, 1, 15)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, orders, 1)
	assert.Equal(t, "Jane Doe", orders[0].Name)
	assert.Equal(t, 30.0, orders[0].Total)

	order, err := svc.GetOrder(ctx, orders[0].ID)
	require.NoError(t, err)
	assert.Len(t, order.OrderItems, 2)

	_, err = svc.GetOrder(ctx, 777)
	assert.ErrorIs(t, err, ErrNotFound)

	sums, err := svc.Chart(ctx)
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.Equal(t, 30.0, sums[0].Sum)
}
