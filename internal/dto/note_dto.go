package dto

import (
	"time"

	"github.com/google/uuid"
)

type SaveNoteRequest struct {
	Title string `json:"title" validate:"required,max=256"`
	Text  string `json:"text"`
}

type NoteResponse struct {
	Id      uuid.UUID `json:"id"`
	Title   string    `json:"title"`
	Text    string    `json:"text"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

type DeletedNoteResponse struct {
	Id      uuid.UUID `json:"id"`
	Updated time.Time `json:"updated"`
}
