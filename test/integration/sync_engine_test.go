package integration

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"sync-notes-be/internal/dto"
	"sync-notes-be/internal/engine"
	"sync-notes-be/internal/entity"
	"sync-notes-be/internal/model"
	"sync-notes-be/internal/pkg/serverutils"
	"sync-notes-be/internal/repository/specification"
	"sync-notes-be/internal/repository/unitofwork"
	"sync-notes-be/internal/service"
	"sync-notes-be/pkg/database"
)

type nullLogger struct{}

func (nullLogger) Debug(module, message string, details map[string]interface{}) {}
func (nullLogger) Info(module, message string, details map[string]interface{})  {}
func (nullLogger) Warn(module, message string, details map[string]interface{})  {}
func (nullLogger) Error(module, message string, details map[string]interface{}) {}
func (nullLogger) Sync() error                                                  { return nil }

// query satisfies engine.Query for hand-built request parameters.
type query map[string][]string

func (q query) Names() []string {
	names := make([]string, 0, len(q))
	for name := range q {
		names = append(names, name)
	}
	return names
}

func (q query) Values(name string) []string {
	return q[name]
}

func intPtr(n int) *int { return &n }

type testEnv struct {
	db         *gorm.DB
	uowFactory unitofwork.RepositoryFactory
	notebooks  service.INotebookService
	notes      service.INoteService
	tasks      service.ITaskService
}

// setupEnv wires the full service pipeline against a real Postgres with a
// tight quota table: 2 active / 2 deleted notebooks per user, 1 retained
// note tombstone per notebook.
func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Notebook{}, &model.Note{}, &model.Task{}))

	retention := 30 * 24 * time.Hour
	tombstones := engine.NewTombstoneManager(&retention, nullLogger{})
	quotas := engine.NewQuotaEnforcer(engine.QuotaTable{
		{Parent: "user", Child: "notebook"}: {Active: intPtr(2), Deleted: intPtr(2)},
		{Parent: "notebook", Child: "note"}: {Active: intPtr(125), Deleted: intPtr(1)},
		{Parent: "user", Child: "task"}:     {Active: intPtr(250), Deleted: intPtr(250)},
	}, tombstones)
	resolver := engine.NewParentResolver()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	publisher := service.NewPublisherService("TEST_RESOURCE_CHANGED", pubSub)

	uowFactory := unitofwork.NewRepositoryFactory(db)

	return &testEnv{
		db:         db,
		uowFactory: uowFactory,
		notebooks:  service.NewNotebookService(uowFactory, resolver, quotas, tombstones, publisher),
		notes:      service.NewNoteService(uowFactory, resolver, quotas, tombstones, publisher),
		tasks:      service.NewTaskService(uowFactory, resolver, quotas, tombstones, publisher),
	}
}

func (e *testEnv) newUser(t *testing.T) serverutils.Principal {
	t.Helper()
	user := entity.User{
		Username: "it-" + uuid.NewString()[:18],
		Email:    "it-" + uuid.NewString() + "@example.com",
		Password: "unused",
		Created:  time.Now().UTC(),
	}
	uow := e.uowFactory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.UserRepository().Create(context.Background(), &user))
	return serverutils.Principal{UserId: user.Id, Username: user.Username}
}

func appStatus(t *testing.T, err error) int {
	t.Helper()
	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	return appErr.Status
}

func TestNotebookActiveQuota(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	p := env.newUser(t)

	first, err := env.notebooks.Create(ctx, p, p.Username, &dto.SaveNotebookRequest{Name: "one"})
	require.NoError(t, err)
	_, err = env.notebooks.Create(ctx, p, p.Username, &dto.SaveNotebookRequest{Name: "two"})
	require.NoError(t, err)

	_, err = env.notebooks.Create(ctx, p, p.Username, &dto.SaveNotebookRequest{Name: "three"})
	assert.Equal(t, 402, appStatus(t, err))

	require.NoError(t, env.notebooks.Delete(ctx, p, p.Username, first.Id, query{}))

	_, err = env.notebooks.Create(ctx, p, p.Username, &dto.SaveNotebookRequest{Name: "four"})
	require.NoError(t, err)
}

func TestConcurrentCreatesNeverExceedActiveQuota(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	p := env.newUser(t)

	// Every goroutine contends on the same user row lock; however the
	// creates interleave, at most 2 may win.
	const attempts = 8
	var created int64
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := env.notebooks.Create(ctx, p, p.Username, &dto.SaveNotebookRequest{Name: fmt.Sprintf("race-%d", n)})
			if err == nil {
				atomic.AddInt64(&created, 1)
			}
		}(i)
	}
	wg.Wait()

	uow := env.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: p.Username})
	require.NoError(t, err)
	require.NotNil(t, user)

	active, err := uow.NotebookRepository().Count(ctx,
		specification.ByUserId{UserId: user.Id},
		specification.Deleted{Deleted: false},
	)
	require.NoError(t, err)
	assert.LessOrEqual(t, active, int64(2))
	assert.Equal(t, created, active, "every accepted create must be visible, every rejected one invisible")
}

func TestNoteTombstoneEviction(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	p := env.newUser(t)

	nb, err := env.notebooks.Create(ctx, p, p.Username, &dto.SaveNotebookRequest{Name: "evict"})
	require.NoError(t, err)

	var noteIds []uuid.UUID
	for _, title := range []string{"a", "b", "c"} {
		note, err := env.notes.Create(ctx, p, p.Username, nb.Id, &dto.SaveNoteRequest{Title: title})
		require.NoError(t, err)
		noteIds = append(noteIds, note.Id)
	}

	for _, id := range noteIds {
		require.NoError(t, env.notes.Delete(ctx, p, p.Username, nb.Id, id, query{}))
	}

	// deletedLimit = 1: only the most recently deleted note may survive.
	uow := env.uowFactory.NewUnitOfWork(ctx)
	notebook, err := uow.NotebookRepository().FindOne(ctx, specification.ByExtId{ExtId: nb.Id})
	require.NoError(t, err)
	require.NotNil(t, notebook)

	remaining, err := uow.NoteRepository().FindAll(ctx,
		specification.ByNotebookId{NotebookId: notebook.Id},
		specification.Deleted{Deleted: true},
	)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, noteIds[2], remaining[0].ExtId)
}

func TestAtPreconditionReplay(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	p := env.newUser(t)

	nb, err := env.notebooks.Create(ctx, p, p.Username, &dto.SaveNotebookRequest{Name: "cond"})
	require.NoError(t, err)

	// Re-read so the timestamp carries the store's precision, not the
	// in-process one.
	shown, err := env.notebooks.Show(ctx, p, p.Username, nb.Id)
	require.NoError(t, err)

	at := query{"at": []string{shown.Updated.Format(time.RFC3339Nano)}}
	updated, err := env.notebooks.Update(ctx, p, p.Username, nb.Id, at, &dto.SaveNotebookRequest{Name: "cond2"})
	require.NoError(t, err)
	assert.True(t, updated.Updated.After(shown.Updated))

	// The identical request replayed must conflict: updated has advanced.
	_, err = env.notebooks.Update(ctx, p, p.Username, nb.Id, at, &dto.SaveNotebookRequest{Name: "cond3"})
	assert.Equal(t, 409, appStatus(t, err))
}

func TestBothConditionsRejectedBeforeWrite(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	p := env.newUser(t)

	nb, err := env.notebooks.Create(ctx, p, p.Username, &dto.SaveNotebookRequest{Name: "guard"})
	require.NoError(t, err)

	ts := time.Now().UTC().Format(time.RFC3339Nano)
	both := query{"at": []string{ts}, "until": []string{ts}}
	_, err = env.notebooks.Update(ctx, p, p.Username, nb.Id, both, &dto.SaveNotebookRequest{Name: "changed"})
	assert.Equal(t, 400, appStatus(t, err))

	shown, err := env.notebooks.Show(ctx, p, p.Username, nb.Id)
	require.NoError(t, err)
	assert.Equal(t, "guard", shown.Name)
}

func TestWindowChaining(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	p := env.newUser(t)

	a := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := env.tasks.Create(ctx, p, p.Username, &dto.SaveTaskRequest{Title: "first"})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	b := time.Now().UTC().Format(time.RFC3339Nano)
	_, err = env.tasks.Create(ctx, p, p.Username, &dto.SaveTaskRequest{Title: "second"})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	c := time.Now().UTC().Format(time.RFC3339Nano)

	window := func(since, until string) map[uuid.UUID]bool {
		res, err := env.tasks.List(ctx, p, p.Username, query{"since": []string{since}, "until": []string{until}})
		require.NoError(t, err)
		ids := make(map[uuid.UUID]bool, len(res.Results))
		for _, task := range res.Results {
			ids[task.Id] = true
		}
		return ids
	}

	ab := window(a, b)
	bc := window(b, c)
	ac := window(a, c)

	assert.Len(t, ab, 1)
	assert.Len(t, bc, 1)
	assert.Len(t, ac, 2)
	for id := range ab {
		assert.False(t, bc[id], "consecutive windows must be disjoint")
	}
	for id := range ac {
		assert.True(t, ab[id] || bc[id], "chained windows must cover the union")
	}
}

func TestUpdatedStrictlyIncreases(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	p := env.newUser(t)

	task, err := env.tasks.Create(ctx, p, p.Username, &dto.SaveTaskRequest{Title: "tick"})
	require.NoError(t, err)

	before, err := env.tasks.Show(ctx, p, p.Username, task.Id)
	require.NoError(t, err)

	updated, err := env.tasks.Update(ctx, p, p.Username, task.Id, query{}, &dto.SaveTaskRequest{Title: "tick", Done: true})
	require.NoError(t, err)
	assert.True(t, updated.Updated.After(before.Updated))
}

func TestDeletedListingAlwaysPossiblyIncompleteWithoutSince(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	p := env.newUser(t)

	nb, err := env.notebooks.Create(ctx, p, p.Username, &dto.SaveNotebookRequest{Name: "tomb"})
	require.NoError(t, err)
	require.NoError(t, env.notebooks.Delete(ctx, p, p.Username, nb.Id, query{}))

	res, err := env.notebooks.ListDeleted(ctx, p, p.Username, query{})
	require.NoError(t, err)
	assert.True(t, res.PossiblyIncomplete, "retention enabled and no since must flag incompleteness")
	require.Len(t, res.Results, 1)
	assert.Equal(t, nb.Id, res.Results[0].Id)
}

func TestOtherUsersTreeIsInvisible(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	owner := env.newUser(t)
	stranger := env.newUser(t)

	nb, err := env.notebooks.Create(ctx, owner, owner.Username, &dto.SaveNotebookRequest{Name: "mine"})
	require.NoError(t, err)

	_, err = env.notebooks.Show(ctx, stranger, owner.Username, nb.Id)
	assert.Equal(t, 404, appStatus(t, err))

	_, err = env.notebooks.List(ctx, stranger, owner.Username, query{})
	assert.Equal(t, 404, appStatus(t, err))
}
