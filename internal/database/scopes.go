package database

import (
	"gorm.io/gorm"

	"github.com/kimshinchol/nnponline-sub000/internal/utils"
)

// Paginate applies pagination to a GORM query
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// ActiveRows filters out soft-deleted rows. Legacy rows created before the
// column existed carry NULL, which counts as active.
func ActiveRows(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ? OR is_deleted IS NULL", false)
}
