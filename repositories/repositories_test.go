package repositories_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"admin-restful/config"
	"admin-restful/database"
	"admin-restful/models"
	"admin-restful/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: dsn}, false)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedPermissions(t *testing.T, db *gorm.DB, names ...string) []models.Permission {
	t.Helper()
	repo := repositories.NewPermissionRepository(db)
	perms := make([]models.Permission, 0, len(names))
	for _, n := range names {
		p, err := repo.FindOrCreate(context.Background(), n)
		require.NoError(t, err)
		perms = append(perms, *p)
	}
	return perms
}

func TestRoleCreateAttachesPermissions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	perms := seedPermissions(t, db, "view_users", "edit_users")
	repo := repositories.NewRoleRepository(db)

	role := &models.Role{Name: "manager"}
	require.NoError(t, repo.Create(ctx, role, []uint{perms[0].ID, perms[1].ID, perms[0].ID}))
	assert.NotZero(t, role.ID)

	stored, err := repo.FindByID(ctx, role.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"view_users", "edit_users"}, stored.PermissionNames())
}

func TestRoleCreateRollsBackOnUnknownPermission(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	perms := seedPermissions(t, db, "view_users")
	repo := repositories.NewRoleRepository(db)

	err := repo.Create(ctx, &models.Role{Name: "viewer-only"}, []uint{99})
	assert.ErrorIs(t, err, repositories.ErrUnknownPermissions)

	err = repo.Create(ctx, &models.Role{Name: "viewer-only"}, []uint{perms[0].ID, 99})
	assert.ErrorIs(t, err, repositories.ErrUnknownPermissions)

	_, err = repo.FindByName(ctx, "viewer-only")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var roles, links int64
	require.NoError(t, db.Unscoped().Model(&models.Role{}).Count(&roles).Error)
	require.NoError(t, db.Table("role_permissions").Count(&links).Error)
	assert.Zero(t, roles)
	assert.Zero(t, links)
}

func TestRoleUpdate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	perms := seedPermissions(t, db, "view_users", "edit_users", "view_orders")
	repo := repositories.NewRoleRepository(db)

	role := &models.Role{Name: "support"}
	require.NoError(t, repo.Create(ctx, role, []uint{perms[0].ID}))

	t.Run("replaces permissions", func(t *testing.T) {
		update := &models.Role{Model: gorm.Model{ID: role.ID}, Name: "support-2"}
		require.NoError(t, repo.Update(ctx, update, []uint{perms[1].ID, perms[2].ID}))

		stored, err := repo.FindByID(ctx, role.ID)
		require.NoError(t, err)
		assert.Equal(t, "support-2", stored.Name)
		assert.ElementsMatch(t, []string{"edit_users", "view_orders"}, stored.PermissionNames())
	})

	t.Run("unknown permission leaves role untouched", func(t *testing.T) {
		update := &models.Role{Model: gorm.Model{ID: role.ID}, Name: "renamed"}
		err := repo.Update(ctx, update, []uint{perms[0].ID, 4242})
		assert.ErrorIs(t, err, repositories.ErrUnknownPermissions)

		stored, err := repo.FindByID(ctx, role.ID)
		require.NoError(t, err)
		assert.Equal(t, "support-2", stored.Name)
		assert.ElementsMatch(t, []string{"edit_users", "view_orders"}, stored.PermissionNames())
	})

	t.Run("empty set clears permissions", func(t *testing.T) {
		update := &models.Role{Model: gorm.Model{ID: role.ID}, Name: "support-2"}
		require.NoError(t, repo.Update(ctx, update, nil))

		stored, err := repo.FindByID(ctx, role.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.Permissions)
	})

	t.Run("missing role", func(t *testing.T) {
		err := repo.Update(ctx, &models.Role{Model: gorm.Model{ID: 777}, Name: "x"}, nil)
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestRoleDeleteDetachesUsers(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	perms := seedPermissions(t, db, "view_users")
	roles := repositories.NewRoleRepository(db)
	users := repositories.NewUserRepository(db)

	role := &models.Role{Name: "temp"}
	require.NoError(t, roles.Create(ctx, role, []uint{perms[0].ID}))
	user := &models.User{FirstName: "a", LastName: "b", Email: "a@example.com", Password: "x", RoleID: &role.ID}
	require.NoError(t, users.Create(ctx, user))

	require.NoError(t, roles.Delete(ctx, role))

	_, err := roles.FindByID(ctx, role.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	reloaded, err := users.FindByIDWithRole(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.RoleID)
	assert.Nil(t, reloaded.Role)
}

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	perms := seedPermissions(t, db, "edit_products")
	role := &models.Role{Name: "editor"}
	require.NoError(t, repositories.NewRoleRepository(db).Create(ctx, role, []uint{perms[0].ID}))
	repo := repositories.NewUserRepository(db)

	for i := 1; i <= 5; i++ {
		u := &models.User{FirstName: "f", LastName: "l", Email: fmt.Sprintf("u%d@example.com", i), Password: "x"}
		if i == 1 {
			u.RoleID = &role.ID
		}
		require.NoError(t, repo.Create(ctx, u))
	}

	dup := &models.User{FirstName: "f", LastName: "l", Email: "u1@example.com", Password: "x"}
	assert.Error(t, repo.Create(ctx, dup))

	u, err := repo.FindByEmail(ctx, "u1@example.com")
	require.NoError(t, err)
	_, err = repo.FindByEmail(ctx, "U1@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	withRole, err := repo.FindByIDWithRole(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, withRole.Role)
	assert.Equal(t, []string{"edit_products"}, withRole.Role.PermissionNames())

	page, total, err := repo.FindAll(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page, 2)
	assert.Equal(t, "u3@example.com", page[0].Email)

	u.FirstName = "changed"
	u.RoleID = nil
	require.NoError(t, repo.Update(ctx, u))
	reloaded, err := repo.FindByIDWithRole(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "changed", reloaded.FirstName)
	assert.Nil(t, reloaded.Role)

	require.NoError(t, repo.Delete(ctx, reloaded))
	_, err = repo.FindByID(ctx, u.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := repositories.NewOrderRepository(db)

	day1 := time.Date(2024, 4, 20, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 4, 21, 10, 0, 0, 0, time.UTC)
	orders := []*models.Order{
		{Model: gorm.Model{CreatedAt: day1}, FirstName: "a", LastName: "b", Email: "a@example.com", OrderItems: []models.OrderItem{
			{ProductTitle: "mug", Price: 10, Quantity: 2},
			{ProductTitle: "cap", Price: 5, Quantity: 1},
		}},
		{Model: gorm.Model{CreatedAt: day1}, FirstName: "c", LastName: "d", Email: "c@example.com", OrderItems: []models.OrderItem{
			{ProductTitle: "mug", Price: 10, Quantity: 1},
		}},
		{Model: gorm.Model{CreatedAt: day2}, FirstName: "e", LastName: "f", Email: "e@example.com", OrderItems: []models.OrderItem{
			{ProductTitle: "pen", Price: 1.5, Quantity: 4},
		}},
	}
	for _, o := range orders {
		require.NoError(t, db.WithContext(ctx).Create(o).Error)
	}

	got, err := repo.FindByID(ctx, orders[0].ID)
	require.NoError(t, err)
	assert.Len(t, got.OrderItems, 2)
	assert.InDelta(t, 25.0, got.Total(), 0.001)
	assert.Equal(t, "a b", got.Name())

	page, total, err := repo.FindAll(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 2)

	sums, err := repo.DailySums(ctx)
	require.NoError(t, err)
	require.Len(t, sums, 2)
	assert.Equal(t, "2024-04-20", sums[0].Date)
	assert.InDelta(t, 35.0, sums[0].Sum, 0.001)
	assert.Equal(t, "2024-04-21", sums[1].Date)
	assert.InDelta(t, 6.0, sums[1].Sum, 0.001)
}

func TestProductRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := repositories.NewProductRepository(db)

	p := &models.Product{Title: "mug", Price: 9.99}
	require.NoError(t, repo.Create(ctx, p))
	p.Price = 12.5
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.InDelta(t, 12.5, got.Price, 0.001)

	list, total, err := repo.FindAll(ctx, 1, 15)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, got))
	_, err = repo.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
