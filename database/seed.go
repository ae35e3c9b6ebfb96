package database

import (
	"context"
	"errors"
	"fmt"

	"admin-restful/auth"
	"admin-restful/config"
	"admin-restful/models"
	"admin-restful/repositories"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Resources lists the protected resource families.
var Resources = []string{"users", "roles", "products", "orders"}

type seedRole struct {
	name   string
	action auth.Action // "" grants both actions
}

var seedRoles = []seedRole{
	{name: "Admin"},
	{name: "Editor", action: auth.ActionEdit},
	{name: "Viewer", action: auth.ActionView},
}

// Seed creates the permission catalog, the default roles and, when
// configured, an Admin principal. It is idempotent.
func Seed(ctx context.Context, db *gorm.DB, cfg config.SeedConfig, log *zap.Logger) error {
	db = db.WithContext(ctx)

	permissions := repositories.NewPermissionRepository(db)
	catalog := make(map[auth.Capability]models.Permission)
	for _, c := range auth.CatalogFor(Resources...) {
		p, err := permissions.FindOrCreate(ctx, c.String())
		if err != nil {
			return fmt.Errorf("seed permission %s: %w", c, err)
		}
		catalog[c] = *p
	}

	for _, sr := range seedRoles {
		var role models.Role
		err := db.Where("name = ?", sr.name).First(&role).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("look up role %s: %w", sr.name, err)
		}

		var perms []models.Permission
		for c, p := range catalog {
			if sr.action == "" || c.Action == sr.action {
				perms = append(perms, p)
			}
		}
		role = models.Role{Name: sr.name, Permissions: perms}
		if err := db.Create(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", sr.name, err)
		}
		log.Info("seeded role", zap.String("role", sr.name), zap.Int("permissions", len(perms)))
	}

	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}
	var admin models.User
	err := db.Where("email = ?", cfg.AdminEmail).First(&admin).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("look up admin user: %w", err)
	}

	var adminRole models.Role
	if err := db.Where("name = ?", "Admin").First(&adminRole).Error; err != nil {
		return fmt.Errorf("look up Admin role: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin = models.User{
		FirstName: "Admin",
		LastName:  "Admin",
		Email:     cfg.AdminEmail,
		Password:  string(hash),
		RoleID:    &adminRole.ID,
	}
	if err := db.Omit("Role").Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.Info("seeded admin user", zap.String("email", admin.Email))
	return nil
}
