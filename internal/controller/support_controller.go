package controller

import (
	"pin-support-be/internal/dto"
	"pin-support-be/internal/pkg/serverutils"
	"pin-support-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISupportController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	Chat(ctx *fiber.Ctx) error
	ShowSession(ctx *fiber.Ctx) error
	Messages(ctx *fiber.Ctx) error
}

type supportController struct {
	supportService service.ISupportService
}

func NewSupportController(supportService service.ISupportService) ISupportController {
	return &supportController{
		supportService: supportService,
	}
}

func (c *supportController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/support/v1")
	h.Post("session", c.CreateSession)
	h.Post("chat", c.Chat)
	h.Get("session/:id", c.ShowSession)
	h.Get("session/:id/messages", c.Messages)
}

func (c *supportController) CreateSession(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.supportService.CreateSession(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Session created", res))
}

func (c *supportController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.supportService.SubmitMessage(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success", res))
}

func (c *supportController) ShowSession(ctx *fiber.Ctx) error {
	res, err := c.supportService.GetSession(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *supportController) Messages(ctx *fiber.Ctx) error {
	res, err := c.supportService.GetHistory(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show messages", res))
}
