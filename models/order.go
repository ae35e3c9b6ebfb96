package models

import "gorm.io/gorm"

type Order struct {
	gorm.Model
	FirstName  string      `gorm:"size:200" json:"first_name"`
	LastName   string      `gorm:"size:200" json:"last_name"`
	Email      string      `gorm:"size:200" json:"email"`
	OrderItems []OrderItem `json:"order_items"`
}

// Name is the customer's full name.
func (o *Order) Name() string {
	return o.FirstName + " " + o.LastName
}

// Total sums price * quantity over the loaded items.
func (o *Order) Total() float64 {
	var total float64
	for _, item := range o.OrderItems {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

type OrderItem struct {
	gorm.Model
	OrderID      uint    `gorm:"index;not null" json:"order_id"`
	ProductTitle string  `gorm:"size:200" json:"product_title"`
	Price        float64 `gorm:"type:decimal(10,2)" json:"price"`
	Quantity     uint    `json:"quantity"`
}
