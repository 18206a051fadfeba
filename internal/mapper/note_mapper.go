package mapper

import (
	"sync-notes-be/internal/entity"
	"sync-notes-be/internal/model"
)

type NoteMapper struct{}

func NewNoteMapper() *NoteMapper {
	return &NoteMapper{}
}

func (m *NoteMapper) ToEntity(n *model.Note) *entity.Note {
	if n == nil {
		return nil
	}

	return &entity.Note{
		Tracked:    trackedToEntity(n.Tracked),
		NotebookId: n.NotebookId,
		Title:      n.Title,
		Text:       n.Text,
	}
}

func (m *NoteMapper) ToModel(n *entity.Note) *model.Note {
	if n == nil {
		return nil
	}

	return &model.Note{
		Tracked:    trackedToModel(n.Tracked),
		NotebookId: n.NotebookId,
		Title:      n.Title,
		Text:       n.Text,
	}
}

func (m *NoteMapper) ToEntities(notes []*model.Note) []*entity.Note {
	entities := make([]*entity.Note, len(notes))
	for i, n := range notes {
		entities[i] = m.ToEntity(n)
	}
	return entities
}
