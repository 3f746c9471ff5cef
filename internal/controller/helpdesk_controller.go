package controller

import (
	"pin-support-be/internal/dto"
	"pin-support-be/internal/pkg/logger"
	"pin-support-be/internal/pkg/serverutils"
	"pin-support-be/internal/service"
	internalWS "pin-support-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type IHelpdeskController interface {
	RegisterRoutes(r fiber.Router)
	ListSessions(ctx *fiber.Ctx) error
	ListTickets(ctx *fiber.Ctx) error
	ShowTicket(ctx *fiber.Ctx) error
	CloseTicket(ctx *fiber.Ctx) error
	ServeWs(ctx *fiber.Ctx) error
}

type helpdeskController struct {
	helpdeskService service.IHelpdeskService
	hub             *internalWS.Hub
	jwtSecret       string
	logger          logger.ILogger
}

func NewHelpdeskController(helpdeskService service.IHelpdeskService, hub *internalWS.Hub, jwtSecret string, log logger.ILogger) IHelpdeskController {
	return &helpdeskController{
		helpdeskService: helpdeskService,
		hub:             hub,
		jwtSecret:       jwtSecret,
		logger:          log,
	}
}

func (c *helpdeskController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/helpdesk/v1")
	h.Use(serverutils.NewJwtMiddleware(c.jwtSecret))
	h.Get("sessions", c.ListSessions)
	h.Get("tickets", c.ListTickets)
	h.Get("tickets/:id", c.ShowTicket)
	h.Put("tickets/:id/close", c.CloseTicket)
	h.Get("ws", c.ServeWs)
}

// agentOrg is the org_id claim of the calling agent. Agents without one see
// every organisation.
func agentOrg(ctx *fiber.Ctx) string {
	org, _ := ctx.Locals("org_id").(string)
	return org
}

func (c *helpdeskController) ListSessions(ctx *fiber.Ctx) error {
	var req dto.ListSessionsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	if org := agentOrg(ctx); org != "" {
		req.OrgId = org
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.helpdeskService.ListOpenSessions(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list sessions", res))
}

func (c *helpdeskController) ListTickets(ctx *fiber.Ctx) error {
	var req dto.ListTicketsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	if org := agentOrg(ctx); org != "" {
		req.OrgId = org
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.helpdeskService.ListTickets(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list tickets", res))
}

func (c *helpdeskController) ticketID(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid ticket id")
	}
	return id, nil
}

// visible hides tickets of other organisations behind a 404.
func visible(ctx *fiber.Ctx, t *dto.TicketDetailResponse) bool {
	org := agentOrg(ctx)
	return org == "" || t.OrgId == org
}

func (c *helpdeskController) ShowTicket(ctx *fiber.Ctx) error {
	id, err := c.ticketID(ctx)
	if err != nil {
		return err
	}

	res, err := c.helpdeskService.GetTicket(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	if !visible(ctx, res) {
		return service.ErrTicketNotFound
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show ticket", res))
}

func (c *helpdeskController) CloseTicket(ctx *fiber.Ctx) error {
	id, err := c.ticketID(ctx)
	if err != nil {
		return err
	}

	current, err := c.helpdeskService.GetTicket(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	if !visible(ctx, current) {
		return service.ErrTicketNotFound
	}

	res, err := c.helpdeskService.CloseTicket(ctx.UserContext(), id)
	if err != nil {
		return err
	}

	c.logger.Info("HelpdeskController", "Ticket closed", map[string]interface{}{
		"ticket_id": id.String(),
		"user_id":   ctx.Locals("user_id"),
	})
	return ctx.JSON(serverutils.SuccessResponse("Ticket closed", res))
}

// ServeWs upgrades the request into a ticket feed. The JWT middleware has
// already validated the token (header or ?token=).
func (c *helpdeskController) ServeWs(ctx *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	userID, _ := ctx.Locals("user_id").(string)
	orgID := agentOrg(ctx)

	return websocket.New(func(conn *websocket.Conn) {
		c.logger.Info("HelpdeskController", "Agent feed opened", map[string]interface{}{"user_id": userID, "org_id": orgID})
		internalWS.ServeWs(c.hub, conn, userID, orgID)
		c.logger.Info("HelpdeskController", "Agent feed closed", map[string]interface{}{"user_id": userID})
	})(ctx)
}
