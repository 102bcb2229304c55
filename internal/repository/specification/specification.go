package specification

import "gorm.io/gorm"

// Specification is a composable query constraint applied onto a gorm query.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
