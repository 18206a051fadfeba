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

type ITaskService interface {
	List(ctx context.Context, principal serverutils.Principal, username string, q engine.Query) (*dto.SyncListResponse[*dto.TaskResponse], error)
	ListDeleted(ctx context.Context, principal serverutils.Principal, username string, q engine.Query) (*dto.DeletedListResponse[*dto.DeletedTaskResponse], error)
	Show(ctx context.Context, principal serverutils.Principal, username string, id uuid.UUID) (*dto.TaskResponse, error)
	Create(ctx context.Context, principal serverutils.Principal, username string, req *dto.SaveTaskRequest) (*dto.TaskResponse, error)
	Update(ctx context.Context, principal serverutils.Principal, username string, id uuid.UUID, q engine.Query, req *dto.SaveTaskRequest) (*dto.TaskResponse, error)
	Delete(ctx context.Context, principal serverutils.Principal, username string, id uuid.UUID, q engine.Query) error
}

type taskService struct {
	uowFactory       unitofwork.RepositoryFactory
	resolver         *engine.ParentResolver
	quotas           *engine.QuotaEnforcer
	tombstones       *engine.TombstoneManager
	publisherService IPublisherService
}

func NewTaskService(
	uowFactory unitofwork.RepositoryFactory,
	resolver *engine.ParentResolver,
	quotas *engine.QuotaEnforcer,
	tombstones *engine.TombstoneManager,
	publisherService IPublisherService,
) ITaskService {
	return &taskService{
		uowFactory:       uowFactory,
		resolver:         resolver,
		quotas:           quotas,
		tombstones:       tombstones,
		publisherService: publisherService,
	}
}

func (c *taskService) List(ctx context.Context, principal serverutils.Principal, username string, q engine.Query) (*dto.SyncListResponse[*dto.TaskResponse], error) {
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

	tasks, err := uow.TaskRepository().FindAll(ctx,
		specification.ByUserId{UserId: user.Id},
		specification.Deleted{Deleted: false},
		w,
		specification.OrderBy{Field: "updated"},
	)
	if err != nil {
		return nil, err
	}

	results := make([]*dto.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		results = append(results, toTaskResponse(task))
	}

	return &dto.SyncListResponse[*dto.TaskResponse]{
		Since:   w.Since,
		Until:   w.Until,
		Results: results,
	}, nil
}

func (c *taskService) ListDeleted(ctx context.Context, principal serverutils.Principal, username string, q engine.Query) (*dto.DeletedListResponse[*dto.DeletedTaskResponse], error) {
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

	tasks, err := uow.TaskRepository().FindAll(ctx,
		specification.ByUserId{UserId: user.Id},
		specification.Deleted{Deleted: true},
		w,
		specification.OrderBy{Field: "updated"},
	)
	if err != nil {
		return nil, err
	}

	incomplete, err := c.tombstones.PossiblyIncomplete(ctx, uow.DB(), engine.Tasks, user.Id, w,
		c.quotas.DeletedLimit(engine.Users.Name, engine.Tasks.Name), now)
	if err != nil {
		return nil, err
	}

	results := make([]*dto.DeletedTaskResponse, 0, len(tasks))
	for _, task := range tasks {
		results = append(results, &dto.DeletedTaskResponse{
			Id:      task.ExtId,
			Updated: task.Updated,
		})
	}

	return &dto.DeletedListResponse[*dto.DeletedTaskResponse]{
		Since:              w.Since,
		Until:              w.Until,
		PossiblyIncomplete: incomplete,
		Results:            results,
	}, nil
}

func (c *taskService) Show(ctx context.Context, principal serverutils.Principal, username string, id uuid.UUID) (*dto.TaskResponse, error) {
	if err := ensureOwner(principal, username); err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)

	var user model.User
	if err := c.resolver.Resolve(ctx, uow.DB(), engine.Users, map[string]interface{}{"username": username}, engine.ParentAlive, false, &user); err != nil {
		return nil, err
	}

	task, err := uow.TaskRepository().FindOne(ctx,
		specification.ByExtId{ExtId: id},
		specification.ByUserId{UserId: user.Id},
		specification.Deleted{Deleted: false},
	)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, serverutils.NewNotFoundError("task not found")
	}

	return toTaskResponse(task), nil
}

func (c *taskService) Create(ctx context.Context, principal serverutils.Principal, username string, req *dto.SaveTaskRequest) (*dto.TaskResponse, error) {
	if err := ensureOwner(principal, username); err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = uow.Rollback() }()

	var user model.User
	if err := c.resolver.Resolve(ctx, uow.DB(), engine.Users, map[string]interface{}{"username": username}, engine.ParentAny, true, &user); err != nil {
		return nil, err
	}

	if err := c.quotas.CheckActive(ctx, uow.DB(), engine.Tasks, engine.Users, user.Id); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	task := entity.Task{
		Tracked: entity.Tracked{
			ExtId:   uuid.New(),
			Created: now,
			Updated: now,
		},
		UserId:      user.Id,
		Done:        req.Done,
		Title:       req.Title,
		Description: req.Description,
	}
	if err := uow.TaskRepository().Create(ctx, &task); err != nil {
		return nil, serverutils.FromDBError(err)
	}

	if err := uow.Commit(); err != nil {
		return nil, serverutils.FromDBError(err)
	}

	publishChange(ctx, c.publisherService, user.Id, engine.Tasks.Name, task.ExtId, "created")
	return toTaskResponse(&task), nil
}

func (c *taskService) Update(ctx context.Context, principal serverutils.Principal, username string, id uuid.UUID, q engine.Query, req *dto.SaveTaskRequest) (*dto.TaskResponse, error) {
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

	task, err := uow.TaskRepository().FindOne(ctx,
		specification.ByExtId{ExtId: id},
		specification.ByUserId{UserId: user.Id},
		specification.Deleted{Deleted: false},
		specification.ForUpdate{},
	)
	if err != nil {
		return nil, serverutils.FromDBError(err)
	}
	if task == nil {
		return nil, serverutils.NewNotFoundError("task not found")
	}

	if err := conditions.Check(task.Updated); err != nil {
		return nil, err
	}
	if err := engine.EnsureUpdatedPast(task.Updated, func() time.Time { return time.Now().UTC() }); err != nil {
		return nil, err
	}

	task.Done = req.Done
	task.Title = req.Title
	task.Description = req.Description
	task.Updated = time.Now().UTC()
	if err := uow.TaskRepository().Save(ctx, task); err != nil {
		return nil, serverutils.FromDBError(err)
	}

	if err := uow.Commit(); err != nil {
		return nil, serverutils.FromDBError(err)
	}

	publishChange(ctx, c.publisherService, user.Id, engine.Tasks.Name, task.ExtId, "updated")
	return toTaskResponse(task), nil
}

func (c *taskService) Delete(ctx context.Context, principal serverutils.Principal, username string, id uuid.UUID, q engine.Query) error {
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

	var user model.User
	if err := c.resolver.Resolve(ctx, uow.DB(), engine.Users, map[string]interface{}{"username": username}, engine.ParentAny, true, &user); err != nil {
		return err
	}

	task, err := uow.TaskRepository().FindOne(ctx,
		specification.ByExtId{ExtId: id},
		specification.ByUserId{UserId: user.Id},
		specification.Deleted{Deleted: false},
		specification.ForUpdate{},
	)
	if err != nil {
		return serverutils.FromDBError(err)
	}
	if task == nil {
		return serverutils.NewNotFoundError("task not found")
	}

	if err := conditions.Check(task.Updated); err != nil {
		return err
	}
	if err := engine.EnsureUpdatedPast(task.Updated, func() time.Time { return time.Now().UTC() }); err != nil {
		return err
	}

	task.Deleted = true
	task.Updated = time.Now().UTC()
	if err := uow.TaskRepository().Save(ctx, task); err != nil {
		return serverutils.FromDBError(err)
	}

	if _, err := c.quotas.EvictDeletedPeers(ctx, uow.DB(), engine.Tasks, engine.Users, user.Id); err != nil {
		return serverutils.FromDBError(err)
	}

	if err := uow.Commit(); err != nil {
		return serverutils.FromDBError(err)
	}

	publishChange(ctx, c.publisherService, user.Id, engine.Tasks.Name, task.ExtId, "deleted")
	return nil
}

func toTaskResponse(task *entity.Task) *dto.TaskResponse {
	return &dto.TaskResponse{
		Id:          task.ExtId,
		Title:       task.Title,
		Description: task.Description,
		Done:        task.Done,
		Created:     task.Created,
		Updated:     task.Updated,
	}
}
