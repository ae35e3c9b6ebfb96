package models

import "gorm.io/gorm"

// Permission is a named capability of the form "<action>_<resource>",
// e.g. "view_users" or "edit_orders".
type Permission struct {
	gorm.Model
	Name string `gorm:"size:200;uniqueIndex;not null" json:"name"`
}
