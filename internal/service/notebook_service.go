package service

import (
	"context"
	"encoding/json"
	"log"
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

type INotebookService interface {
	List(ctx context.Context, principal serverutils.Principal, username string, q engine.Query) (*dto.SyncListResponse[*dto.NotebookResponse], error)
	ListDeleted(ctx context.Context, principal serverutils.Principal, username string, q engine.Query) (*dto.DeletedListResponse[*dto.DeletedNotebookResponse], error)
	Show(ctx context.Context, principal serverutils.Principal, username string, id uuid.UUID) (*dto.NotebookResponse, error)
	Create(ctx context.Context, principal serverutils.Principal, username string, req *dto.SaveNotebookRequest) (*dto.NotebookResponse, error)
	Update(ctx context.Context, principal serverutils.Principal, username string, id uuid.UUID, q engine.Query, req *dto.SaveNotebookRequest) (*dto.NotebookResponse, error)
	Delete(ctx context.Context, principal serverutils.Principal, username string, id uuid.UUID, q engine.Query) error
}

type notebookService struct {
	uowFactory       unitofwork.RepositoryFactory
	resolver         *engine.ParentResolver
	quotas           *engine.QuotaEnforcer
	tombstones       *engine.TombstoneManager
	publisherService IPublisherService
}

func NewNotebookService(
	uowFactory unitofwork.RepositoryFactory,
	resolver *engine.ParentResolver,
	quotas *engine.QuotaEnforcer,
	tombstones *engine.TombstoneManager,
	publisherService IPublisherService,
) INotebookService {
	return &notebookService{
		uowFactory:       uowFactory,
		resolver:         resolver,
		quotas:           quotas,
		tombstones:       tombstones,
		publisherService: publisherService,
	}
}

// ensureOwner hides other users' trees entirely. A wrong username is a 404,
// not a 403, so probing cannot distinguish "exists" from "not yours".
func ensureOwner(principal serverutils.Principal, username string) error {
	if principal.Username != username {
		return serverutils.NewNotFoundError("user not found")
	}
	return nil
}

func publishChange(ctx context.Context, pub IPublisherService, userId int64, resource string, extId uuid.UUID, action string) {
	payload, err := json.Marshal(dto.ResourceChangedMessage{
		UserId:   userId,
		Resource: resource,
		ExtId:    extId.String(),
		Action:   action,
	})
	if err != nil {
		return
	}
	if err := pub.Publish(ctx, payload); err != nil {
		log.Printf("[WARN] Failed to publish %s %s event: %v", resource, action, err)
	}
}

func (c *notebookService) List(ctx context.Context, principal serverutils.Principal, username string, q engine.Query) (*dto.SyncListResponse[*dto.NotebookResponse], error) {
	if err := ensureOwner(principal, username); err != nil {
		return nil, err
	}
	w, err := engine.ParseWindow(q, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)

	var user model.User
	if err := c.resolver.Resolve(ctx, uow.DB(), engine.Users, map[string]interface{}{"username": username}, engine.ParentAlive, false, &user); err != nil {
		return nil, err
	}

	notebooks, err := uow.NotebookRepository().FindAll(ctx,
		specification.ByUserId{UserId: user.Id},
		specification.Deleted{Deleted: false},
		w,
		specification.OrderBy{Field: "updated"},
	)
	if err != nil {
		return nil, err
	}

	results := make([]*dto.NotebookResponse, 0, len(notebooks))
	for _, notebook := range notebooks {
		results = append(results, toNotebookResponse(notebook))
	}

	return &dto.SyncListResponse[*dto.NotebookResponse]{
		Since:   w.Since,
		Until:   w.Until,
		Results: results,
	}, nil
}

func (c *notebookService) ListDeleted(ctx context.Context, principal serverutils.Principal, username string, q engine.Query) (*dto.DeletedListResponse[*dto.DeletedNotebookResponse], error) {
	if err := ensureOwner(principal, username); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	w, err := engine.ParseWindow(q, now)
	if err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)

	var user model.User
	if err := c.resolver.Resolve(ctx, uow.DB(), engine.Users, map[string]interface{}{"username": username}, engine.ParentAny, false, &user); err != nil {
		return nil, err
	}

	notebooks, err := uow.NotebookRepository().FindAll(ctx,
		specification.ByUserId{UserId: user.Id},
		specification.Deleted{Deleted: true},
		w,
		specification.OrderBy{Field: "updated"},
	)
	if err != nil {
		return nil, err
	}

	incomplete, err := c.tombstones.PossiblyIncomplete(ctx, uow.DB(), engine.Notebooks, user.Id, w,
		c.quotas.DeletedLimit(engine.Users.Name, engine.Notebooks.Name), now)
	if err != nil {
		return nil, err
	}

	results := make([]*dto.DeletedNotebookResponse, 0, len(notebooks))
	for _, notebook := range notebooks {
		results = append(results, &dto.DeletedNotebookResponse{
			Id:      notebook.ExtId,
			Updated: notebook.Updated,
		})
	}

	return &dto.DeletedListResponse[*dto.DeletedNotebookResponse]{
		Since:              w.Since,
		Until:              w.Until,
		PossiblyIncomplete: incomplete,
		Results:            results,
	}, nil
}

func (c *notebookService) Show(ctx context.Context, principal serverutils.Principal, username string, id uuid.UUID) (*dto.NotebookResponse, error) {
	if err := ensureOwner(principal, username); err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)

	var user model.User
	if err := c.resolver.Resolve(ctx, uow.DB(), engine.Users, map[string]interface{}{"username": username}, engine.ParentAlive, false, &user); err != nil {
		return nil, err
	}

	notebook, err := uow.NotebookRepository().FindOne(ctx,
		specification.ByExtId{ExtId: id},
		specification.ByUserId{UserId: user.Id},
		specification.Deleted{Deleted: false},
	)
	if err != nil {
		return nil, err
	}
	if notebook == nil {
		return nil, serverutils.NewNotFoundError("notebook not found")
	}

	return toNotebookResponse(notebook), nil
}

func (c *notebookService) Create(ctx context.Context, principal serverutils.Principal, username string, req *dto.SaveNotebookRequest) (*dto.NotebookResponse, error) {
	if err := ensureOwner(principal, username); err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = uow.Rollback() }()

	// Lock the owning user row so concurrent creates serialize and the
	// quota count stays exact until commit.
	var user model.User
	if err := c.resolver.Resolve(ctx, uow.DB(), engine.Users, map[string]interface{}{"username": username}, engine.ParentAny, true, &user); err != nil {
		return nil, err
	}

	if err := c.quotas.CheckActive(ctx, uow.DB(), engine.Notebooks, engine.Users, user.Id); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	notebook := entity.Notebook{
		Tracked: entity.Tracked{
			ExtId:   uuid.New(),
			Created: now,
			Updated: now,
		},
		UserId: user.Id,
		Name:   req.Name,
	}
	if err := uow.NotebookRepository().Create(ctx, &notebook); err != nil {
		return nil, serverutils.FromDBError(err)
	}

	if err := uow.Commit(); err != nil {
		return nil, serverutils.FromDBError(err)
	}

	publishChange(ctx, c.publisherService, user.Id, engine.Notebooks.Name, notebook.ExtId, "created")
	return toNotebookResponse(&notebook), nil
}

func (c *notebookService) Update(ctx context.Context, principal serverutils.Principal, username string, id uuid.UUID, q engine.Query, req *dto.SaveNotebookRequest) (*dto.NotebookResponse, error) {
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

	var user model.User
	if err := c.resolver.Resolve(ctx, uow.DB(), engine.Users, map[string]interface{}{"username": username}, engine.ParentAny, false, &user); err != nil {
		return nil, err
	}

	notebook, err := uow.NotebookRepository().FindOne(ctx,
		specification.ByExtId{ExtId: id},
		specification.ByUserId{UserId: user.Id},
		specification.Deleted{Deleted: false},
		specification.ForUpdate{},
	)
	if err != nil {
		return nil, serverutils.FromDBError(err)
	}
	if notebook == nil {
		return nil, serverutils.NewNotFoundError("notebook not found")
	}

	if err := conditions.Check(notebook.Updated); err != nil {
		return nil, err
	}
	if err := engine.EnsureUpdatedPast(notebook.Updated, func() time.Time { return time.Now().UTC() }); err != nil {
		return nil, err
	}

	notebook.Name = req.Name
	notebook.Updated = time.Now().UTC()
	if err := uow.NotebookRepository().Save(ctx, notebook); err != nil {
		return nil, serverutils.FromDBError(err)
	}

	if err := uow.Commit(); err != nil {
		return nil, serverutils.FromDBError(err)
	}

	publishChange(ctx, c.publisherService, user.Id, engine.Notebooks.Name, notebook.ExtId, "updated")
	return toNotebookResponse(notebook), nil
}

func (c *notebookService) Delete(ctx context.Context, principal serverutils.Principal, username string, id uuid.UUID, q engine.Query) error {
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

	// The delete changes the user's tombstone count, so the user row is
	// locked for the whole transaction like on create.
	var user model.User
	if err := c.resolver.Resolve(ctx, uow.DB(), engine.Users, map[string]interface{}{"username": username}, engine.ParentAny, true, &user); err != nil {
		return err
	}

	notebook, err := uow.NotebookRepository().FindOne(ctx,
		specification.ByExtId{ExtId: id},
		specification.ByUserId{UserId: user.Id},
		specification.Deleted{Deleted: false},
		specification.ForUpdate{},
	)
	if err != nil {
		return serverutils.FromDBError(err)
	}
	if notebook == nil {
		return serverutils.NewNotFoundError("notebook not found")
	}

	if err := conditions.Check(notebook.Updated); err != nil {
		return err
	}
	if err := engine.EnsureUpdatedPast(notebook.Updated, func() time.Time { return time.Now().UTC() }); err != nil {
		return err
	}

	notebook.Deleted = true
	notebook.Updated = time.Now().UTC()
	if err := uow.NotebookRepository().Save(ctx, notebook); err != nil {
		return serverutils.FromDBError(err)
	}

	if _, err := c.quotas.EvictDeletedPeers(ctx, uow.DB(), engine.Notebooks, engine.Users, user.Id); err != nil {
		return serverutils.FromDBError(err)
	}

	if err := uow.Commit(); err != nil {
		return serverutils.FromDBError(err)
	}

	publishChange(ctx, c.publisherService, user.Id, engine.Notebooks.Name, notebook.ExtId, "deleted")
	return nil
}

func toNotebookResponse(notebook *entity.Notebook) *dto.NotebookResponse {
	return &dto.NotebookResponse{
		Id:      notebook.ExtId,
		Name:    notebook.Name,
		Created: notebook.Created,
		Updated: notebook.Updated,
	}
}
