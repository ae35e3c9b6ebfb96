package models

import "gorm.io/gorm"

type Role struct {
	gorm.Model
	Name        string       `gorm:"size:200;not null" json:"name"`
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions"`
}

// PermissionNames returns the names of the permissions attached to the role.
func (r *Role) PermissionNames() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		names = append(names, p.Name)
	}
	return names
}
