package mapper

import (
	"sync-notes-be/internal/entity"
	"sync-notes-be/internal/model"
)

func trackedToEntity(t model.Tracked) entity.Tracked {
	return entity.Tracked{
		Id:      t.Id,
		ExtId:   t.ExtId,
		Created: t.Created,
		Updated: t.Updated,
		Deleted: t.Deleted,
	}
}

func trackedToModel(t entity.Tracked) model.Tracked {
	return model.Tracked{
		Id:      t.Id,
		ExtId:   t.ExtId,
		Created: t.Created,
		Updated: t.Updated,
		Deleted: t.Deleted,
	}
}
