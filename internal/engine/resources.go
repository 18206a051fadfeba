package engine

import "sync-notes-be/internal/model"

// Resource describes one table to the engine: how to count, purge and
// resolve its rows without the engine knowing the concrete types.
type Resource struct {
	Name         string // singular key used in config and logs
	Plural       string
	Model        interface{} // pointer to the GORM model struct
	ParentColumn string      // FK column holding the parent surrogate id
	Deletable    bool        // carries a tombstone flag
}

var (
	Users = Resource{
		Name:   "user",
		Plural: "users",
		Model:  &model.User{},
	}

	Notebooks = Resource{
		Name:         "notebook",
		Plural:       "notebooks",
		Model:        &model.Notebook{},
		ParentColumn: "user_id",
		Deletable:    true,
	}

	Notes = Resource{
		Name:         "note",
		Plural:       "notes",
		Model:        &model.Note{},
		ParentColumn: "notebook_id",
		Deletable:    true,
	}

	Tasks = Resource{
		Name:         "task",
		Plural:       "tasks",
		Model:        &model.Task{},
		ParentColumn: "user_id",
		Deletable:    true,
	}
)

// SweptResources is the order the retention sweep visits tables. Notebooks
// go first so their cascade removes dependent notes in the same pass.
var SweptResources = []Resource{Notebooks, Notes, Tasks}
