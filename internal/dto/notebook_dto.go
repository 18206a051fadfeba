package dto

import (
	"time"

	"github.com/google/uuid"
)

type SaveNotebookRequest struct {
	Name string `json:"name" validate:"required,max=256"`
}

type NotebookResponse struct {
	Id      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

type DeletedNotebookResponse struct {
	Id      uuid.UUID `json:"id"`
	Updated time.Time `json:"updated"`
}
