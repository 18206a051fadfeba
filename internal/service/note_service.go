package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"sync-notes-be/internal/dto"
	"sync-notes-be/internal/engine"
	"sync-notes-be/internal/entity"
	"sync-notes-be/internal/model"
	"sync-notes-be/internal/pkg/serverutils"
	"sync-notes-be/internal/repository/specification"
	"sync-notes-be/internal/repository/unitofwork"
)

type INoteService interface {
	List(ctx context.Context, principal serverutils.Principal, username string, notebookId uuid.UUID, q engine.Query) (*dto.SyncListResponse[*dto.NoteResponse], error)
	ListDeleted(ctx context.Context, principal serverutils.Principal, username string, notebookId uuid.UUID, q engine.Query) (*dto.DeletedListResponse[*dto.DeletedNoteResponse], error)
	Show(ctx context.Context, principal serverutils.Principal, username string, notebookId, id uuid.UUID) (*dto.NoteResponse, error)
	Create(ctx context.Context, principal serverutils.Principal, username string, notebookId uuid.UUID, req *dto.SaveNoteRequest) (*dto.NoteResponse, error)
	Update(ctx context.Context, principal serverutils.Principal, username string, notebookId, id uuid.UUID, q engine.Query, req *dto.SaveNoteRequest) (*dto.NoteResponse, error)
	Delete(ctx context.Context, principal serverutils.Principal, username string, notebookId, id uuid.UUID, q engine.Query) error
}

type noteService struct {
	uowFactory       unitofwork.RepositoryFactory
	resolver         *engine.ParentResolver
	quotas           *engine.QuotaEnforcer
	tombstones       *engine.TombstoneManager
	publisherService IPublisherService
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	resolver *engine.ParentResolver,
	quotas *engine.QuotaEnforcer,
	tombstones *engine.TombstoneManager,
	publisherService IPublisherService,
) INoteService {
	return &noteService{
		uowFactory:       uowFactory,
		resolver:         resolver,
		quotas:           quotas,
		tombstones:       tombstones,
		publisherService: publisherService,
	}
}

// resolveNotebook walks the user -> notebook chain by natural keys. policy
// decides whether a tombstoned notebook still resolves: live listings need a
// live parent, while writes and deleted listings must keep working after the
// notebook itself was deleted so clients can purge its notes.
func (c *noteService) resolveNotebook(ctx context.Context, uow unitofwork.UnitOfWork, username string, notebookId uuid.UUID, policy engine.TombstonePolicy, lock bool) (*model.Notebook, error) {
	var user model.User
	if err := c.resolver.Resolve(ctx, uow.DB(), engine.Users, map[string]interface{}{"username": username}, engine.ParentAny, false, &user); err != nil {
		return nil, err
	}

	var notebook model.Notebook
	filters := map[string]interface{}{
		"ext_id":  notebookId,
		"user_id": user.Id,
	}
	if err := c.resolver.Resolve(ctx, uow.DB(), engine.Notebooks, filters, policy, lock, &notebook); err != nil {
		return nil, err
	}
	return &notebook, nil
}

func (c *noteService) List(ctx context.Context, principal serverutils.Principal, username string, notebookId uuid.UUID, q engine.Query) (*dto.SyncListResponse[*dto.NoteResponse], error) {
	if err := ensureOwner(principal, username); err != nil {
		return nil, err
	}
	w, err := engine.ParseWindow(q, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	notebook, err := c.resolveNotebook(ctx, uow, username, notebookId, engine.ParentAlive, false)
	if err != nil {
		return nil, err
	}

	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.ByNotebookId{NotebookId: notebook.Id},
		specification.Deleted{Deleted: false},
		w,
		specification.OrderBy{Field: "updated"},
	)
	if err != nil {
		return nil, err
	}

	results := make([]*dto.NoteResponse, 0, len(notes))
	for _, note := range notes {
		results = append(results, toNoteResponse(note))
	}

	return &dto.SyncListResponse[*dto.NoteResponse]{
		Since:   w.Since,
		Until:   w.Until,
		Results: results,
	}, nil
}

func (c *noteService) ListDeleted(ctx context.Context, principal serverutils.Principal, username string, notebookId uuid.UUID, q engine.Query) (*dto.DeletedListResponse[*dto.DeletedNoteResponse], error) {
	if err := ensureOwner(principal, username); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	w, err := engine.ParseWindow(q, now)
	if err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	notebook, err := c.resolveNotebook(ctx, uow, username, notebookId, engine.ParentAny, false)
	if err != nil {
		return nil, err
	}

	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.ByNotebookId{NotebookId: notebook.Id},
		specification.Deleted{Deleted: true},
		w,
		specification.OrderBy{Field: "updated"},
	)
	if err != nil {
		return nil, err
	}

	incomplete, err := c.tombstones.PossiblyIncomplete(ctx, uow.DB(), engine.Notes, notebook.Id, w,
		c.quotas.DeletedLimit(engine.Notebooks.Name, engine.Notes.Name), now)
	if err != nil {
		return nil, err
	}

	results := make([]*dto.DeletedNoteResponse, 0, len(notes))
	for _, note := range notes {
		results = append(results, &dto.DeletedNoteResponse{
			Id:      note.ExtId,
			Updated: note.Updated,
		})
	}

	return &dto.DeletedListResponse[*dto.DeletedNoteResponse]{
		Since:              w.Since,
		Until:              w.Until,
		PossiblyIncomplete: incomplete,
		Results:            results,
	}, nil
}

func (c *noteService) Show(ctx context.Context, principal serverutils.Principal, username string, notebookId, id uuid.UUID) (*dto.NoteResponse, error) {
	if err := ensureOwner(principal, username); err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	notebook, err := c.resolveNotebook(ctx, uow, username, notebookId, engine.ParentAlive, false)
	if err != nil {
		return nil, err
	}

	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByExtId{ExtId: id},
		specification.ByNotebookId{NotebookId: notebook.Id},
		specification.Deleted{Deleted: false},
	)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, serverutils.NewNotFoundError("note not found")
	}

	return toNoteResponse(note), nil
}

func (c *noteService) Create(ctx context.Context, principal serverutils.Principal, username string, notebookId uuid.UUID, req *dto.SaveNoteRequest) (*dto.NoteResponse, error) {
	if err := ensureOwner(principal, username); err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = uow.Rollback() }()

	notebook, err := c.resolveNotebook(ctx, uow, username, notebookId, engine.ParentAlive, true)
	if err != nil {
		return nil, err
	}

	if err := c.quotas.CheckActive(ctx, uow.DB(), engine.Notes, engine.Notebooks, notebook.Id); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	note := entity.Note{
		Tracked: entity.Tracked{
			ExtId:   uuid.New(),
			Created: now,
			Updated: now,
		},
		NotebookId: notebook.Id,
		Title:      req.Title,
		Text:       req.Text,
	}
	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		return nil, serverutils.FromDBError(err)
	}

	if err := uow.Commit(); err != nil {
		return nil, serverutils.FromDBError(err)
	}

	publishChange(ctx, c.publisherService, notebook.UserId, engine.Notes.Name, note.ExtId, "created")
	return toNoteResponse(&note), nil
}

func (c *noteService) Update(ctx context.Context, principal serverutils.Principal, username string, notebookId, id uuid.UUID, q engine.Query, req *dto.SaveNoteRequest) (*dto.NoteResponse, error) {
	if err := ensureOwner(principal, username); err != nil {
		return nil, err
	}
	conditions, err := engine.ParseWriteConditions(q)
	if err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = uow.Rollback() }()

	notebook, err := c.resolveNotebook(ctx, uow, username, notebookId, engine.ParentAny, false)
	if err != nil {
		return nil, err
	}

	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByExtId{ExtId: id},
		specification.ByNotebookId{NotebookId: notebook.Id},
		specification.Deleted{Deleted: false},
		specification.ForUpdate{},
	)
	if err != nil {
		return nil, serverutils.FromDBError(err)
	}
	if note == nil {
		return nil, serverutils.NewNotFoundError("note not found")
	}

	if err := conditions.Check(note.Updated); err != nil {
		return nil, err
	}
	if err := engine.EnsureUpdatedPast(note.Updated, func() time.Time { return time.Now().UTC() }); err != nil {
		return nil, err
	}

	note.Title = req.Title
	note.Text = req.Text
	note.Updated = time.Now().UTC()
	if err := uow.NoteRepository().Save(ctx, note); err != nil {
		return nil, serverutils.FromDBError(err)
	}

	if err := uow.Commit(); err != nil {
		return nil, serverutils.FromDBError(err)
	}

	publishChange(ctx, c.publisherService, notebook.UserId, engine.Notes.Name, note.ExtId, "updated")
	return toNoteResponse(note), nil
}

func (c *noteService) Delete(ctx context.Context, principal serverutils.Principal, username string, notebookId, id uuid.UUID, q engine.Query) error {
	if err := ensureOwner(principal, username); err != nil {
		return err
	}
	conditions, err := engine.ParseWriteConditions(q)
	if err != nil {
		return err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() { _ = uow.Rollback() }()

	notebook, err := c.resolveNotebook(ctx, uow, username, notebookId, engine.ParentAny, true)
	if err != nil {
		return err
	}

	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByExtId{ExtId: id},
		specification.ByNotebookId{NotebookId: notebook.Id},
		specification.Deleted{Deleted: false},
		specification.ForUpdate{},
	)
	if err != nil {
		return serverutils.FromDBError(err)
	}
	if note == nil {
		return serverutils.NewNotFoundError("note not found")
	}

	if err := conditions.Check(note.Updated); err != nil {
		return err
	}
	if err := engine.EnsureUpdatedPast(note.Updated, func() time.Time { return time.Now().UTC() }); err != nil {
		return err
	}

	note.Deleted = true
	note.Updated = time.Now().UTC()
	if err := uow.NoteRepository().Save(ctx, note); err != nil {
		return serverutils.FromDBError(err)
	}

	if _, err := c.quotas.EvictDeletedPeers(ctx, uow.DB(), engine.Notes, engine.Notebooks, notebook.Id); err != nil {
		return serverutils.FromDBError(err)
	}

	if err := uow.Commit(); err != nil {
		return serverutils.FromDBError(err)
	}

	publishChange(ctx, c.publisherService, notebook.UserId, engine.Notes.Name, note.ExtId, "deleted")
	return nil
}

func toNoteResponse(note *entity.Note) *dto.NoteResponse {
	return &dto.NoteResponse{
		Id:      note.ExtId,
		Title:   note.Title,
		Text:    note.Text,
		Created: note.Created,
		Updated: note.Updated,
	}
}
