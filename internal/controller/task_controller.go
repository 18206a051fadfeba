package controller

import (
	"github.com/gofiber/fiber/v2"

	"sync-notes-be/internal/dto"
	"sync-notes-be/internal/pkg/serverutils"
	"sync-notes-be/internal/service"
)

type ITaskController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	ListDeleted(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type taskController struct {
	service service.ITaskService
}

func NewTaskController(service service.ITaskService) ITaskController {
	return &taskController{service: service}
}

func (c *taskController) RegisterRoutes(r fiber.Router) {
	r.Get("/tasks", c.List)
	r.Post("/tasks", c.Create)
	r.Get("/tasks/deleted", c.ListDeleted)
	r.Get("/tasks/:taskId", c.Show)
	r.Put("/tasks/:taskId", c.Update)
	r.Delete("/tasks/:taskId", c.Delete)
}

func (c *taskController) List(ctx *fiber.Ctx) error {
	principal := serverutils.PrincipalFromCtx(ctx)

	res, err := c.service.List(ctx.Context(), principal, ctx.Params("username"), QueryFromCtx(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list tasks", res))
}

func (c *taskController) ListDeleted(ctx *fiber.Ctx) error {
	principal := serverutils.PrincipalFromCtx(ctx)

	res, err := c.service.ListDeleted(ctx.Context(), principal, ctx.Params("username"), QueryFromCtx(ctx))
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if res.PossiblyIncomplete {
		status = fiber.StatusPartialContent
	}
	return ctx.Status(status).JSON(serverutils.SuccessResponse("Success list deleted tasks", res))
}

func (c *taskController) Show(ctx *fiber.Ctx) error {
	principal := serverutils.PrincipalFromCtx(ctx)
	id, err := parseExtId(ctx, "taskId", "task")
	if err != nil {
		return err
	}

	res, err := c.service.Show(ctx.Context(), principal, ctx.Params("username"), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show task", res))
}

func (c *taskController) Create(ctx *fiber.Ctx) error {
	principal := serverutils.PrincipalFromCtx(ctx)

	var req dto.SaveTaskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.Context(), principal, ctx.Params("username"), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create task", res))
}

func (c *taskController) Update(ctx *fiber.Ctx) error {
	principal := serverutils.PrincipalFromCtx(ctx)
	id, err := parseExtId(ctx, "taskId", "task")
	if err != nil {
		return err
	}

	var req dto.SaveTaskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Update(ctx.Context(), principal, ctx.Params("username"), id, QueryFromCtx(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update task", res))
}

func (c *taskController) Delete(ctx *fiber.Ctx) error {
	principal := serverutils.PrincipalFromCtx(ctx)
	id, err := parseExtId(ctx, "taskId", "task")
	if err != nil {
		return err
	}

	if err := c.service.Delete(ctx.Context(), principal, ctx.Params("username"), id, QueryFromCtx(ctx)); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete task", nil))
}
