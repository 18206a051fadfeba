package specification

import "gorm.io/gorm"

// Specification is a composable query fragment. Repositories chain them
// onto a base query; sync windows and row locks plug in the same way.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
