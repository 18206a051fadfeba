package controller

import (
	"github.com/gofiber/fiber/v2"

	"sync-notes-be/internal/dto"
	"sync-notes-be/internal/pkg/serverutils"
	"sync-notes-be/internal/service"
)

type INotebookController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	ListDeleted(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type notebookController struct {
	service service.INotebookService
}

func NewNotebookController(service service.INotebookService) INotebookController {
	return &notebookController{service: service}
}

// RegisterRoutes mounts under /users/:username. The deleted listing must be
// registered before the :notebookId route so "deleted" never parses as an id.
func (c *notebookController) RegisterRoutes(r fiber.Router) {
	r.Get("/notebooks", c.List)
	r.Post("/notebooks", c.Create)
	r.Get("/notebooks/deleted", c.ListDeleted)
	r.Get("/notebooks/:notebookId", c.Show)
	r.Put("/notebooks/:notebookId", c.Update)
	r.Delete("/notebooks/:notebookId", c.Delete)
}

func (c *notebookController) List(ctx *fiber.Ctx) error {
	principal := serverutils.PrincipalFromCtx(ctx)

	res, err := c.service.List(ctx.Context(), principal, ctx.Params("username"), QueryFromCtx(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list notebooks", res))
}

func (c *notebookController) ListDeleted(ctx *fiber.Ctx) error {
	principal := serverutils.PrincipalFromCtx(ctx)

	res, err := c.service.ListDeleted(ctx.Context(), principal, ctx.Params("username"), QueryFromCtx(ctx))
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if res.PossiblyIncomplete {
		status = fiber.StatusPartialContent
	}
	return ctx.Status(status).JSON(serverutils.SuccessResponse("Success list deleted notebooks", res))
}

func (c *notebookController) Show(ctx *fiber.Ctx) error {
	principal := serverutils.PrincipalFromCtx(ctx)
	id, err := parseExtId(ctx, "notebookId", "notebook")
	if err != nil {
		return err
	}

	res, err := c.service.Show(ctx.Context(), principal, ctx.Params("username"), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show notebook", res))
}

func (c *notebookController) Create(ctx *fiber.Ctx) error {
	principal := serverutils.PrincipalFromCtx(ctx)

	var req dto.SaveNotebookRequest
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

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create notebook", res))
}

func (c *notebookController) Update(ctx *fiber.Ctx) error {
	principal := serverutils.PrincipalFromCtx(ctx)
	id, err := parseExtId(ctx, "notebookId", "notebook")
	if err != nil {
		return err
	}

	var req dto.SaveNotebookRequest
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

	return ctx.JSON(serverutils.SuccessResponse("Success update notebook", res))
}

func (c *notebookController) Delete(ctx *fiber.Ctx) error {
	principal := serverutils.PrincipalFromCtx(ctx)
	id, err := parseExtId(ctx, "notebookId", "notebook")
	if err != nil {
		return err
	}

	if err := c.service.Delete(ctx.Context(), principal, ctx.Params("username"), id, QueryFromCtx(ctx)); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete notebook", nil))
}
