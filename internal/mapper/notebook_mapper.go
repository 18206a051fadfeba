package mapper

import (
	"sync-notes-be/internal/entity"
	"sync-notes-be/internal/model"
)

type NotebookMapper struct{}

func NewNotebookMapper() *NotebookMapper {
	return &NotebookMapper{}
}

func (m *NotebookMapper) ToEntity(n *model.Notebook) *entity.Notebook {
	if n == nil {
		return nil
	}

	return &entity.Notebook{
		Tracked: trackedToEntity(n.Tracked),
		UserId:  n.UserId,
		Name:    n.Name,
	}
}

func (m *NotebookMapper) ToModel(n *entity.Notebook) *model.Notebook {
	if n == nil {
		return nil
	}

	return &model.Notebook{
		Tracked: trackedToModel(n.Tracked),
		UserId:  n.UserId,
		Name:    n.Name,
	}
}

func (m *NotebookMapper) ToEntities(notebooks []*model.Notebook) []*entity.Notebook {
	entities := make([]*entity.Notebook, len(notebooks))
	for i, n := range notebooks {
		entities[i] = m.ToEntity(n)
	}
	return entities
}
