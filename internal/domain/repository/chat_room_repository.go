package repository

import (
	"context"

	"marketchat/internal/domain/entity"
)

// ListParams carries offset pagination plus the caller-chosen sort field and
// direction ("asc" or "desc").
type ListParams struct {
	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

func (p ListParams) Descending() bool {
	return p.SortOrder != "asc"
}

// ChatRoomRepository persists chat rooms. Operations that take part in the
// leave cascade run inside a transactional session when the given context is
// session-scoped; they behave identically on a plain context.
type ChatRoomRepository interface {
	// FindOrCreate returns the room whose active participants are exactly
	// {senderID, receiverID} for the product, creating it when absent. The
	// second result reports whether a new room was inserted. Read-then-write
	// without an exclusive lock; racing callers may create duplicates.
	FindOrCreate(ctx context.Context, senderID, receiverID, productID string) (*entity.ChatRoom, bool, error)

	GetByID(ctx context.Context, id string) (*entity.ChatRoom, error)

	ListByUserID(ctx context.Context, userID string, params ListParams) ([]*entity.ChatRoom, int64, error)

	// MarkParticipantLeft sets the active participant's leftAt and decrements
	// participantsCount in one atomic document update. Returns an
	// INVARIANT_VIOLATION error when the update matches nothing (room gone or
	// participant already inactive).
	MarkParticipantLeft(ctx context.Context, roomID, userID string) error

	UpdateLastMessage(ctx context.Context, roomID, text, messageID string) error

	Delete(ctx context.Context, roomID string) error
}
