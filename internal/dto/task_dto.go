package dto

import (
	"time"

	"github.com/google/uuid"
)

type SaveTaskRequest struct {
	Title       string `json:"title" validate:"required,max=256"`
	Description string `json:"description"`
	Done        bool   `json:"done"`
}

type TaskResponse struct {
	Id          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Done        bool      `json:"done"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated"`
}

type DeletedTaskResponse struct {
	Id      uuid.UUID `json:"id"`
	Updated time.Time `json:"updated"`
}
