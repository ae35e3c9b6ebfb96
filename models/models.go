package models

// All returns every model managed by the application, in migration order.
func All() []any {
	return []any{&Permission{}, &Role{}, &User{}, &Product{}, &Order{}, &OrderItem{}}
}
