package router

import (
	"github.com/labstack/echo/v4"

	"marketchat/internal/adapter/api/handler"
	"marketchat/internal/adapter/api/middleware"
)

// SetupChatRouter sets up all chat room and message routes
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, identity *middleware.IdentityMiddleware) {
	chatGroup := e.Group("/v1/chatrooms")
	chatGroup.Use(identity.RequireUser)

	// Room management
	chatGroup.POST("", chatHandler.CreateOrGetRoom) // POST /v1/chatrooms - Open (or return) the room for a product
	chatGroup.GET("", chatHandler.ListRooms)        // GET /v1/chatrooms - Inbox listing
	chatGroup.POST("/:id/leave", chatHandler.LeaveRoom)

	// Message management
	chatGroup.POST("/:id/messages", chatHandler.SendMessage)
	chatGroup.GET("/:id/messages", chatHandler.ListMessages)

	// Read state
	chatGroup.PUT("/:id/read", chatHandler.MarkRead)
	chatGroup.GET("/:id/unread-count", chatHandler.CountUnread)
}
