package repository

import (
	"context"

	"marketchat/internal/domain/entity"
)

type MessageRepository interface {
	// Create persists a new message with ReadAt unset, filling ID and
	// timestamps.
	Create(ctx context.Context, message *entity.Message) error

	ListByConversation(ctx context.Context, conversationID string, params ListParams) ([]*entity.Message, int64, error)

	// MarkAllRead sets ReadAt for every unread message in the conversation
	// addressed to receiverID and returns the number modified.
	MarkAllRead(ctx context.Context, conversationID, receiverID string) (int64, error)

	CountUnread(ctx context.Context, conversationID, userID string) (int64, error)

	DeleteByConversation(ctx context.Context, conversationID string) error
}
