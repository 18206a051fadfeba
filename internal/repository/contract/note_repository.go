package contract

import (
	"context"

	"sync-notes-be/internal/entity"
	"sync-notes-be/internal/repository/specification"
)

type NoteRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	Save(ctx context.Context, note *entity.Note) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
