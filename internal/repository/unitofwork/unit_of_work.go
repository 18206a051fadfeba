package unitofwork

import (
	"context"

	"gorm.io/gorm"

	"sync-notes-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	// DB exposes the active transaction (or the base handle outside one)
	// for components that build raw gorm queries, such as quota counters
	// and tombstone eviction.
	DB() *gorm.DB

	UserRepository() contract.UserRepository
	NotebookRepository() contract.NotebookRepository
	NoteRepository() contract.NoteRepository
	TaskRepository() contract.TaskRepository
}
