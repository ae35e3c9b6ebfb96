package models

import "gorm.io/gorm"

// User is an authenticated principal. A user without a role holds no
// resource permissions.
type User struct {
	gorm.Model
	FirstName string `gorm:"size:200;not null" json:"first_name"`
	LastName  string `gorm:"size:200;not null" json:"last_name"`
	Email     string `gorm:"size:200;uniqueIndex;not null" json:"email"`
	Password  string `gorm:"size:200;not null" json:"-"` // bcrypt hash, never serialized
	RoleID    *uint  `json:"role_id"`
	Role      *Role  `gorm:"constraint:OnDelete:SET NULL;" json:"role,omitempty"`
}
