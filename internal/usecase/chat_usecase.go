package usecase

import (
	"context"
	"sync"

	"marketchat/internal/domain/entity"
	"marketchat/internal/domain/repository"
	"marketchat/pkg/logger"
)

// ChatUseCase is the facade consumed by the transport layer. It delegates to
// the room lifecycle and message delivery services and owns the choice of
// leave strategy.
type ChatUseCase struct {
	rooms    *ChatRoomUseCase
	messages *MessageUseCase
	tx       TransactionManager

	strategyOnce sync.Once
	leave        leaveStrategy
}

func NewChatUseCase(rooms *ChatRoomUseCase, messages *MessageUseCase, tx TransactionManager) *ChatUseCase {
	return &ChatUseCase{
		rooms:    rooms,
		messages: messages,
		tx:       tx,
	}
}

func (uc *ChatUseCase) CreateOrGetRoom(ctx context.Context, senderID, receiverID, productID string) (*entity.ChatRoom, bool, error) {
	return uc.rooms.FindOrCreateChatRoom(ctx, senderID, receiverID, productID)
}

func (uc *ChatUseCase) ListRoomsForUser(ctx context.Context, userID string, params repository.ListParams) ([]*entity.ChatRoom, int64, error) {
	return uc.rooms.ListChatRoomsForUser(ctx, userID, params)
}

func (uc *ChatUseCase) SendMessage(ctx context.Context, input SendMessageInput) (*entity.Message, error) {
	return uc.messages.SendMessage(ctx, input)
}

func (uc *ChatUseCase) ListMessages(ctx context.Context, input ListMessagesInput) ([]*entity.Message, int64, error) {
	return uc.messages.ListMessages(ctx, input)
}

func (uc *ChatUseCase) MarkRead(ctx context.Context, roomID, userID string) (int64, error) {
	return uc.messages.MarkMessagesAsRead(ctx, roomID, userID)
}

func (uc *ChatUseCase) CountUnread(ctx context.Context, roomID, userID string) (int64, error) {
	return uc.messages.CountUnreadMessagesByRoom(ctx, roomID, userID)
}

// LeaveRoom runs the leave protocol through a strategy picked once per
// process from the store's topology probe. Both strategies surface the same
// error set; callers cannot tell which one ran.
func (uc *ChatUseCase) LeaveRoom(ctx context.Context, roomID, userID string) error {
	uc.strategyOnce.Do(func() {
		if uc.tx.SupportsTransactions(ctx) {
			logger.Info("LeaveRoom: store supports transactions, using atomic leave strategy")
			uc.leave = &atomicLeaveStrategy{rooms: uc.rooms, tx: uc.tx}
			return
		}
		logger.Warn("LeaveRoom: store does not support transactions, using best-effort leave strategy")
		uc.leave = &bestEffortLeaveStrategy{rooms: uc.rooms}
	})

	return uc.leave.Leave(ctx, roomID, userID)
}

type leaveStrategy interface {
	Leave(ctx context.Context, roomID, userID string) error
}

// atomicLeaveStrategy runs mark-left and the conditional cascade inside one
// scoped transaction: both writes commit or neither does.
type atomicLeaveStrategy struct {
	rooms *ChatRoomUseCase
	tx    TransactionManager
}

func (s *atomicLeaveStrategy) Leave(ctx context.Context, roomID, userID string) error {
	return s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.rooms.Leave(txCtx, roomID, userID)
	})
}

// bestEffortLeaveStrategy runs the same steps sequentially. A crash between
// the mark-left write and the cascade can leave an orphaned empty room or
// orphaned messages; there is no automatic repair for that window.
type bestEffortLeaveStrategy struct {
	rooms *ChatRoomUseCase
}

func (s *bestEffortLeaveStrategy) Leave(ctx context.Context, roomID, userID string) error {
	return s.rooms.Leave(ctx, roomID, userID)
}
