package usecase

import (
	"context"

	"marketchat/internal/domain/entity"
	"marketchat/internal/domain/repository"
	"marketchat/pkg/errors"
	"marketchat/pkg/logger"
)

// ChatRoomUseCase owns the room lifecycle: creation with best-effort dedup,
// access control, and the leave protocol with its cascade.
type ChatRoomUseCase struct {
	chatRoomRepo repository.ChatRoomRepository
	messageRepo  repository.MessageRepository
	users        UserDirectory
	products     ProductCatalog
}

func NewChatRoomUseCase(
	chatRoomRepo repository.ChatRoomRepository,
	messageRepo repository.MessageRepository,
	users UserDirectory,
	products ProductCatalog,
) *ChatRoomUseCase {
	return &ChatRoomUseCase{
		chatRoomRepo: chatRoomRepo,
		messageRepo:  messageRepo,
		users:        users,
		products:     products,
	}
}

func (uc *ChatRoomUseCase) FindOrCreateChatRoom(ctx context.Context, senderID, receiverID, productID string) (*entity.ChatRoom, bool, error) {
	if senderID == receiverID {
		logger.Warn("FindOrCreateChatRoom Error: user %s attempted to open a chat room with themselves", senderID)
		return nil, false, errors.BadRequest("You cannot open a chat room with yourself", nil)
	}

	if err := uc.users.EnsureUserExists(ctx, senderID); err != nil {
		logger.Error("FindOrCreateChatRoom Error: sender %s: %v", senderID, err)
		return nil, false, err
	}
	if err := uc.users.EnsureUserExists(ctx, receiverID); err != nil {
		logger.Error("FindOrCreateChatRoom Error: receiver %s: %v", receiverID, err)
		return nil, false, err
	}
	if err := uc.products.EnsureProductExists(ctx, productID); err != nil {
		logger.Error("FindOrCreateChatRoom Error: product %s: %v", productID, err)
		return nil, false, err
	}

	return uc.chatRoomRepo.FindOrCreate(ctx, senderID, receiverID, productID)
}

func (uc *ChatRoomUseCase) GetChatRoom(ctx context.Context, roomID string) (*entity.ChatRoom, error) {
	return uc.chatRoomRepo.GetByID(ctx, roomID)
}

// EnsureUserCanAccessChatRoom returns the room when userID is currently an
// active participant; NotFound when the room is absent, Forbidden otherwise.
func (uc *ChatRoomUseCase) EnsureUserCanAccessChatRoom(ctx context.Context, roomID, userID string) (*entity.ChatRoom, error) {
	room, err := uc.chatRoomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if !room.HasActiveParticipant(userID) {
		logger.Warn("EnsureUserCanAccessChatRoom: user %s is not an active participant of room %s", userID, roomID)
		return nil, errors.Forbidden("User is not a participant in this chat room", nil)
	}

	return room, nil
}

func (uc *ChatRoomUseCase) ListChatRoomsForUser(ctx context.Context, userID string, params repository.ListParams) ([]*entity.ChatRoom, int64, error) {
	return uc.chatRoomRepo.ListByUserID(ctx, userID, params)
}

// Leave marks the participant left and, when the room empties, deletes the
// room and every message referencing it. It performs the full sequence on the
// given context; the facade decides whether that context is transactional.
func (uc *ChatRoomUseCase) Leave(ctx context.Context, roomID, userID string) error {
	if _, err := uc.EnsureUserCanAccessChatRoom(ctx, roomID, userID); err != nil {
		return err
	}

	if err := uc.chatRoomRepo.MarkParticipantLeft(ctx, roomID, userID); err != nil {
		logger.Error("Leave Error: marking user %s left in room %s: %v", userID, roomID, err)
		return err
	}

	room, err := uc.chatRoomRepo.GetByID(ctx, roomID)
	if err != nil {
		return err
	}

	if room.ParticipantsCount > 0 {
		return nil
	}

	logger.Info("Leave: room %s is empty, cascading delete", roomID)

	if err := uc.chatRoomRepo.Delete(ctx, roomID); err != nil {
		return err
	}
	if err := uc.messageRepo.DeleteByConversation(ctx, roomID); err != nil {
		return err
	}

	return nil
}
