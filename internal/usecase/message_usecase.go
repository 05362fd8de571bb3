package usecase

import (
	"context"
	"time"

	"marketchat/internal/domain/entity"
	"marketchat/internal/domain/repository"
	"marketchat/pkg/errors"
	"marketchat/pkg/logger"
)

// MessageUseCase owns message delivery: send, paginated retrieval, read
// receipts and unread counts. Room existence checks go through the room
// lifecycle.
type MessageUseCase struct {
	messageRepo  repository.MessageRepository
	chatRoomRepo repository.ChatRoomRepository
	rooms        *ChatRoomUseCase
	users        UserDirectory
}

func NewMessageUseCase(
	messageRepo repository.MessageRepository,
	chatRoomRepo repository.ChatRoomRepository,
	rooms *ChatRoomUseCase,
	users UserDirectory,
) *MessageUseCase {
	return &MessageUseCase{
		messageRepo:  messageRepo,
		chatRoomRepo: chatRoomRepo,
		rooms:        rooms,
		users:        users,
	}
}

type SendMessageInput struct {
	RoomID     string
	SenderID   string
	ReceiverID string
	Content    string
	Type       entity.MessageType
	FileURL    string
	FileName   string
}

type ListMessagesInput struct {
	RoomID    string
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

func (uc *MessageUseCase) SendMessage(ctx context.Context, input SendMessageInput) (*entity.Message, error) {
	if !input.Type.Valid() {
		return nil, errors.BadRequest("Unknown message type", nil)
	}

	if err := uc.users.EnsureUserExists(ctx, input.SenderID); err != nil {
		logger.Error("SendMessage Error: sender %s: %v", input.SenderID, err)
		return nil, err
	}
	if err := uc.users.EnsureUserExists(ctx, input.ReceiverID); err != nil {
		logger.Error("SendMessage Error: receiver %s: %v", input.ReceiverID, err)
		return nil, err
	}
	if _, err := uc.rooms.GetChatRoom(ctx, input.RoomID); err != nil {
		logger.Error("SendMessage Error: room %s: %v", input.RoomID, err)
		return nil, err
	}

	message := &entity.Message{
		ConversationID: input.RoomID,
		SenderID:       input.SenderID,
		ReceiverID:     input.ReceiverID,
		Content:        input.Content,
		Type:           input.Type,
		FileURL:        input.FileURL,
		FileName:       input.FileName,
	}

	if err := uc.messageRepo.Create(ctx, message); err != nil {
		logger.Error("SendMessage Error: creating message in room %s: %v", input.RoomID, err)
		return nil, err
	}

	// Last-message denormalization is a separate write, fired off the request
	// path. The room's inbox entry is eventually consistent with the message
	// itself; a failure here is logged and never surfaced to the sender.
	go func(roomID, content, messageID string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := uc.chatRoomRepo.UpdateLastMessage(ctx, roomID, content, messageID); err != nil {
			logger.Error("SendMessage: failed to update last message for room %s: %v", roomID, err)
		}
	}(input.RoomID, message.Content, message.ID)

	return message, nil
}

func (uc *MessageUseCase) ListMessages(ctx context.Context, input ListMessagesInput) ([]*entity.Message, int64, error) {
	if _, err := uc.rooms.GetChatRoom(ctx, input.RoomID); err != nil {
		return nil, 0, err
	}

	page := input.Page
	if page <= 0 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}
	sortBy := input.SortBy
	if sortBy == "" {
		sortBy = "createdAt"
	}

	params := repository.ListParams{
		Limit:     limit,
		Offset:    (page - 1) * limit,
		SortBy:    sortBy,
		SortOrder: input.SortOrder,
	}

	return uc.messageRepo.ListByConversation(ctx, input.RoomID, params)
}

func (uc *MessageUseCase) MarkMessagesAsRead(ctx context.Context, roomID, userID string) (int64, error) {
	if _, err := uc.rooms.GetChatRoom(ctx, roomID); err != nil {
		return 0, err
	}

	modified, err := uc.messageRepo.MarkAllRead(ctx, roomID, userID)
	if err != nil {
		logger.Error("MarkMessagesAsRead Error: room %s, user %s: %v", roomID, userID, err)
		return 0, err
	}

	return modified, nil
}

func (uc *MessageUseCase) CountUnreadMessagesByRoom(ctx context.Context, roomID, userID string) (int64, error) {
	if _, err := uc.rooms.GetChatRoom(ctx, roomID); err != nil {
		return 0, err
	}

	return uc.messageRepo.CountUnread(ctx, roomID, userID)
}
