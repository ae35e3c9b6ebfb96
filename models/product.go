package models

import "gorm.io/gorm"

type Product struct {
	gorm.Model
	Title       string  `gorm:"size:200;not null" json:"title"`
	Description string  `gorm:"size:1000" json:"description"`
	Image       string  `gorm:"size:200" json:"image"`
	Price       float64 `gorm:"type:decimal(10,2)" json:"price"`
}
