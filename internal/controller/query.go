package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"sync-notes-be/internal/engine"
	"sync-notes-be/internal/pkg/serverutils"
)

// queryParams adapts the raw fasthttp query args to the engine's Query
// interface, preserving duplicate values so multiplicity checks work.
type queryParams struct {
	names  []string
	values map[string][]string
}

func QueryFromCtx(ctx *fiber.Ctx) engine.Query {
	q := &queryParams{values: map[string][]string{}}
	ctx.Context().QueryArgs().VisitAll(func(key, value []byte) {
		name := string(key)
		if _, seen := q.values[name]; !seen {
			q.names = append(q.names, name)
		}
		q.values[name] = append(q.values[name], string(value))
	})
	return q
}

func (q *queryParams) Names() []string {
	return q.names
}

func (q *queryParams) Values(name string) []string {
	return q.values[name]
}

// parseExtId treats an unparseable id the same as a missing resource, so
// malformed ids cannot be told apart from nonexistent ones.
func parseExtId(ctx *fiber.Ctx, param, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(param))
	if err != nil {
		return uuid.Nil, serverutils.NewNotFoundError(resource + " not found")
	}
	return id, nil
}
