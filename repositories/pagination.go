package repositories

import "gorm.io/gorm"

// paginate limits a query to one page. Page numbers start at 1.
func paginate(page, pageSize int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		if pageSize < 1 {
			pageSize = 1
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}
