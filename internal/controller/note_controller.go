package controller

import (
	"github.com/gofiber/fiber/v2"

	"sync-notes-be/internal/dto"
	"sync-notes-be/internal/pkg/serverutils"
	"sync-notes-be/internal/service"
)

type INoteController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	ListDeleted(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type noteController struct {
	service service.INoteService
}

func NewNoteController(service service.INoteService) INoteController {
	return &noteController{service: service}
}

func (c *noteController) RegisterRoutes(r fiber.Router) {
	r.Get("/notebooks/:notebookId/notes", c.List)
	r.Post("/notebooks/:notebookId/notes", c.Create)
	r.Get("/notebooks/:notebookId/notes/deleted", c.ListDeleted)
	r.Get("/notebooks/:notebookId/notes/:noteId", c.Show)
	r.Put("/notebooks/:notebookId/notes/:noteId", c.Update)
	r.Delete("/notebooks/:notebookId/notes/:noteId", c.Delete)
}

func (c *noteController) List(ctx *fiber.Ctx) error {
	principal := serverutils.PrincipalFromCtx(ctx)
	notebookId, err := parseExtId(ctx, "notebookId", "notebook")
	if err != nil {
		return err
	}

	res, err := c.service.List(ctx.Context(), principal, ctx.Params("username"), notebookId, QueryFromCtx(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list notes", res))
}

func (c *noteController) ListDeleted(ctx *fiber.Ctx) error {
	principal := serverutils.PrincipalFromCtx(ctx)
	notebookId, err := parseExtId(ctx, "notebookId", "notebook")
	if err != nil {
		return err
	}

	res, err := c.service.ListDeleted(ctx.Context(), principal, ctx.Params("username"), notebookId, QueryFromCtx(ctx))
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if res.PossiblyIncomplete {
		status = fiber.StatusPartialContent
	}
	return ctx.Status(status).JSON(serverutils.SuccessResponse("Success list deleted notes", res))
}

func (c *noteController) Show(ctx *fiber.Ctx) error {
	principal := serverutils.PrincipalFromCtx(ctx)
	notebookId, err := parseExtId(ctx, "notebookId", "notebook")
	if err != nil {
		return err
	}
	id, err := parseExtId(ctx, "noteId", "note")
	if err != nil {
		return err
	}

	res, err := c.service.Show(ctx.Context(), principal, ctx.Params("username"), notebookId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show note", res))
}

func (c *noteController) Create(ctx *fiber.Ctx) error {
	principal := serverutils.PrincipalFromCtx(ctx)
	notebookId, err := parseExtId(ctx, "notebookId", "notebook")
	if err != nil {
		return err
	}

	var req dto.SaveNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Create(ctx.Context(), principal, ctx.Params("username"), notebookId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success create note", res))
}

func (c *noteController) Update(ctx *fiber.Ctx) error {
	principal := serverutils.PrincipalFromCtx(ctx)
	notebookId, err := parseExtId(ctx, "notebookId", "notebook")
	if err != nil {
		return err
	}
	id, err := parseExtId(ctx, "noteId", "note")
	if err != nil {
		return err
	}

	var req dto.SaveNoteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Update(ctx.Context(), principal, ctx.Params("username"), notebookId, id, QueryFromCtx(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success update note", res))
}

func (c *noteController) Delete(ctx *fiber.Ctx) error {
	principal := serverutils.PrincipalFromCtx(ctx)
	notebookId, err := parseExtId(ctx, "notebookId", "notebook")
	if err != nil {
		return err
	}
	id, err := parseExtId(ctx, "noteId", "note")
	if err != nil {
		return err
	}

	if err := c.service.Delete(ctx.Context(), principal, ctx.Params("username"), notebookId, id, QueryFromCtx(ctx)); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete note", nil))
}
