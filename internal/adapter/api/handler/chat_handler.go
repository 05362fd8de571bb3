package handler

import (
	"github.com/labstack/echo/v4"

	"marketchat/internal/domain/entity"
	"marketchat/internal/domain/repository"
	"marketchat/internal/usecase"
	"marketchat/pkg/response"
	"marketchat/pkg/utils"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type createRoomRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	ProductID  string `json:"product_id" validate:"required"`
}

type sendMessageRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required"`
	Content    string `json:"content" validate:"required"`
	Type       string `json:"type" validate:"required,oneof=text image system"`
	FileURL    string `json:"file_url,omitempty" validate:"omitempty,url"`
	FileName   string `json:"file_name,omitempty"`
}

type createRoomResponse struct {
	Room    *entity.ChatRoom `json:"room"`
	Created bool             `json:"created"`
}

// CreateOrGetRoom opens the room between the caller and the receiver about a
// product, returning the existing one when it is already there.
func (h *ChatHandler) CreateOrGetRoom(c echo.Context) error {
	var req createRoomRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	room, created, err := h.chatUseCase.CreateOrGetRoom(c.Request().Context(), userID, req.ReceiverID, req.ProductID)
	if err != nil {
		return response.Error(c, err)
	}

	if created {
		return response.Created(c, createRoomResponse{Room: room, Created: true})
	}
	return response.Success(c, createRoomResponse{Room: room, Created: false})
}

// ListRooms returns the caller's rooms ordered for the inbox.
func (h *ChatHandler) ListRooms(c echo.Context) error {
	userID := c.Get("uid").(string)
	params := utils.GetPaginationParams(c, "updatedAt")

	rooms, total, err := h.chatUseCase.ListRoomsForUser(c.Request().Context(), userID, repository.ListParams{
		Limit:     params.PageSize,
		Offset:    params.Offset,
		SortBy:    params.SortBy,
		SortOrder: params.SortOrder,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, rooms, total, params.Page, params.PageSize)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), usecase.SendMessageInput{
		RoomID:     c.Param("id"),
		SenderID:   userID,
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
		Type:       entity.MessageType(req.Type),
		FileURL:    req.FileURL,
		FileName:   req.FileName,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ChatHandler) ListMessages(c echo.Context) error {
	params := utils.GetPaginationParams(c, "createdAt")

	messages, total, err := h.chatUseCase.ListMessages(c.Request().Context(), usecase.ListMessagesInput{
		RoomID:    c.Param("id"),
		Page:      params.Page,
		Limit:     params.PageSize,
		SortBy:    params.SortBy,
		SortOrder: params.SortOrder,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, messages, total, params.Page, params.PageSize)
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	userID := c.Get("uid").(string)

	modified, err := h.chatUseCase.MarkRead(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int64{"modified_count": modified})
}

func (h *ChatHandler) CountUnread(c echo.Context) error {
	userID := c.Get("uid").(string)

	count, err := h.chatUseCase.CountUnread(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]int64{"unread_count": count})
}

func (h *ChatHandler) LeaveRoom(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.chatUseCase.LeaveRoom(c.Request().Context(), c.Param("id"), userID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"left": true})
}
