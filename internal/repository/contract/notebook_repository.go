package contract

import (
	"context"

	"sync-notes-be/internal/entity"
	"sync-notes-be/internal/repository/specification"
)

type NotebookRepository interface {
	Create(ctx context.Context, notebook *entity.Notebook) error
	Save(ctx context.Context, notebook *entity.Notebook) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Notebook, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Notebook, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
