package mapper

import (
	"sync-notes-be/internal/entity"
	"sync-notes-be/internal/model"
)

type TaskMapper struct{}

func NewTaskMapper() *TaskMapper {
	return &TaskMapper{}
}

func (m *TaskMapper) ToEntity(t *model.Task) *entity.Task {
	if t == nil {
		return nil
	}

	return &entity.Task{
		Tracked:     trackedToEntity(t.Tracked),
		UserId:      t.UserId,
		Done:        t.Done,
		Title:       t.Title,
		Description: t.Description,
	}
}

func (m *TaskMapper) ToModel(t *entity.Task) *model.Task {
	if t == nil {
		return nil
	}

	return &model.Task{
		Tracked:     trackedToModel(t.Tracked),
		UserId:      t.UserId,
		Done:        t.Done,
		Title:       t.Title,
		Description: t.Description,
	}
}

func (m *TaskMapper) ToEntities(tasks []*model.Task) []*entity.Task {
	entities := make([]*entity.Task, len(tasks))
	for i, t := range tasks {
		entities[i] = m.ToEntity(t)
	}
	return entities
}
