package router

import (
	"github.com/labstack/echo/v4"

	"marketchat/internal/adapter/api/handler"
	"marketchat/internal/adapter/api/middleware"
)

func Setup(e *echo.Echo, chatHandler *handler.ChatHandler, identity *middleware.IdentityMiddleware) {
	SetupChatRouter(e, chatHandler, identity)
	SetupHealthRouter(e)
}
