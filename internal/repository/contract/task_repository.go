package contract

import (
	"context"

	"sync-notes-be/internal/entity"
	"sync-notes-be/internal/repository/specification"
)

type TaskRepository interface {
	Create(ctx context.Context, task *entity.Task) error
	Save(ctx context.Context, task *entity.Task) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Task, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Task, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
