package controller

import (
	"time"

	"ai-conversation-be/internal/dto"
	"ai-conversation-be/internal/pkg/serverutils"
	"ai-conversation-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const sessionCookieName = "chat_session"

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	SendChat(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	ClearConversation(ctx *fiber.Ctx) error
}

type assistantController struct {
	assistantService service.IAssistantService
}

func NewAssistantController(assistantService service.IAssistantService) IAssistantController {
	return &assistantController{
		assistantService: assistantService,
	}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assistant/v1")
	h.Use(serverutils.OptionalJwtMiddleware) // anonymous callers allowed
	h.Post("chat", c.SendChat)
	h.Get("history", c.GetHistory)
	h.Delete("session", c.ClearConversation)
}

func (c *assistantController) SendChat(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.assistantService.SendChat(ctx.Context(), c.caller(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send chat", res))
}

func (c *assistantController) GetHistory(ctx *fiber.Ctx) error {
	res, err := c.assistantService.GetChatHistory(ctx.Context(), c.caller(ctx), ctx.Query("thread_id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}

func (c *assistantController) ClearConversation(ctx *fiber.Ctx) error {
	res, err := c.assistantService.ClearConversation(ctx.Context(), c.caller(ctx), ctx.Query("thread_id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success clear conversation", res))
}

// caller assembles identity for this request: the session cookie (minted on
// first contact) plus the user id when a valid JWT was presented.
func (c *assistantController) caller(ctx *fiber.Ctx) service.Caller {
	sessionKey := ctx.Cookies(sessionCookieName)
	if sessionKey == "" {
		sessionKey = uuid.New().String()
		ctx.Cookie(&fiber.Cookie{
			Name:     sessionCookieName,
			Value:    sessionKey,
			Expires:  time.Now().Add(24 * time.Hour),
			HTTPOnly: true,
			SameSite: "Lax",
		})
	}

	caller := service.Caller{SessionKey: sessionKey}
	if userIdStr, ok := ctx.Locals("user_id").(string); ok && userIdStr != "" {
		if userId, err := uuid.Parse(userIdStr); err == nil {
			caller.UserId = &userId
		}
	}
	return caller
}
