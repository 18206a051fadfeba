package specification

import "gorm.io/gorm"

// ByNotebookId filters notes by their parent notebook's surrogate id
type ByNotebookId struct {
	NotebookId int64
}

func (s ByNotebookId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("notebook_id = ?", s.NotebookId)
}
