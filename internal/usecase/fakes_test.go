package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"marketchat/internal/domain/entity"
	"marketchat/internal/domain/repository"
	"marketchat/pkg/errors"
)

// In-memory store fakes with the same observable semantics as the mongo
// adapters, shared by the usecase tests.

type fakeChatRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]*entity.ChatRoom
	seq   int

	markLeftErr error
}

func newFakeChatRoomRepo() *fakeChatRoomRepo {
	return &fakeChatRoomRepo{rooms: make(map[string]*entity.ChatRoom)}
}

func copyRoom(room *entity.ChatRoom) *entity.ChatRoom {
	clone := *room
	clone.Participants = append([]entity.Participant(nil), room.Participants...)
	return &clone
}

func (f *fakeChatRoomRepo) FindOrCreate(ctx context.Context, senderID, receiverID, productID string) (*entity.ChatRoom, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, room := range f.rooms {
		if room.ProductID != productID || room.ActiveCount() != 2 {
			continue
		}
		if room.HasActiveParticipant(senderID) && room.HasActiveParticipant(receiverID) {
			return copyRoom(room), false, nil
		}
	}

	f.seq++
	now := time.Now()
	room := &entity.ChatRoom{
		ID:        fmt.Sprintf("room-%d", f.seq),
		ProductID: productID,
		Participants: []entity.Participant{
			{UserID: senderID, JoinedAt: now},
			{UserID: receiverID, JoinedAt: now},
		},
		ParticipantsCount: 2,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	f.rooms[room.ID] = room

	return copyRoom(room), true, nil
}

func (f *fakeChatRoomRepo) GetByID(ctx context.Context, id string) (*entity.ChatRoom, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	room, ok := f.rooms[id]
	if !ok {
		return nil, errors.NotFound("Chat room", nil)
	}
	return copyRoom(room), nil
}

func (f *fakeChatRoomRepo) ListByUserID(ctx context.Context, userID string, params repository.ListParams) ([]*entity.ChatRoom, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*entity.ChatRoom
	for _, room := range f.rooms {
		for _, p := range room.Participants {
			if p.UserID == userID {
				matched = append(matched, copyRoom(room))
				break
			}
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if params.Descending() {
			return matched[i].UpdatedAt.After(matched[j].UpdatedAt)
		}
		return matched[i].UpdatedAt.Before(matched[j].UpdatedAt)
	})

	total := int64(len(matched))
	if params.Offset >= len(matched) {
		return nil, total, nil
	}
	end := params.Offset + params.Limit
	if params.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[params.Offset:end], total, nil
}

func (f *fakeChatRoomRepo) MarkParticipantLeft(ctx context.Context, roomID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.markLeftErr != nil {
		return f.markLeftErr
	}

	room, ok := f.rooms[roomID]
	if !ok {
		return errors.InvariantViolation("Participant is not active in this chat room", nil)
	}
	for i := range room.Participants {
		if room.Participants[i].UserID == userID && room.Participants[i].Active() {
			now := time.Now()
			room.Participants[i].LeftAt = &now
			room.ParticipantsCount--
			room.UpdatedAt = now
			return nil
		}
	}
	return errors.InvariantViolation("Participant is not active in this chat room", nil)
}

func (f *fakeChatRoomRepo) UpdateLastMessage(ctx context.Context, roomID, text, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	room, ok := f.rooms[roomID]
	if !ok {
		return errors.NotFound("Chat room", nil)
	}
	now := time.Now()
	room.LastMessage = text
	room.LastMessageID = messageID
	room.LastMessageAt = &now
	room.UpdatedAt = now
	return nil
}

func (f *fakeChatRoomRepo) Delete(ctx context.Context, roomID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.rooms, roomID)
	return nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*entity.Message
	seq      int
	base     time.Time
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{base: time.Now()}
}

func copyMessage(msg *entity.Message) *entity.Message {
	clone := *msg
	return &clone
}

func (f *fakeMessageRepo) Create(ctx context.Context, message *entity.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	message.ID = fmt.Sprintf("msg-%d", f.seq)
	// Strictly increasing timestamps keep sort order deterministic.
	message.CreatedAt = f.base.Add(time.Duration(f.seq) * time.Millisecond)
	message.UpdatedAt = message.CreatedAt
	message.ReadAt = nil
	f.messages = append(f.messages, copyMessage(message))
	return nil
}

func (f *fakeMessageRepo) ListByConversation(ctx context.Context, conversationID string, params repository.ListParams) ([]*entity.Message, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*entity.Message
	for _, msg := range f.messages {
		if msg.ConversationID == conversationID {
			matched = append(matched, copyMessage(msg))
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if params.Descending() {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if params.Offset >= len(matched) {
		return nil, total, nil
	}
	end := params.Offset + params.Limit
	if params.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[params.Offset:end], total, nil
}

func (f *fakeMessageRepo) MarkAllRead(ctx context.Context, conversationID, receiverID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var modified int64
	now := time.Now()
	for _, msg := range f.messages {
		if msg.ConversationID == conversationID && msg.ReceiverID == receiverID && msg.ReadAt == nil {
			readAt := now
			msg.ReadAt = &readAt
			msg.UpdatedAt = now
			modified++
		}
	}
	return modified, nil
}

func (f *fakeMessageRepo) CountUnread(ctx context.Context, conversationID, userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, msg := range f.messages {
		if msg.ConversationID == conversationID && msg.ReceiverID == userID && msg.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (f *fakeMessageRepo) DeleteByConversation(ctx context.Context, conversationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	kept := f.messages[:0]
	for _, msg := range f.messages {
		if msg.ConversationID != conversationID {
			kept = append(kept, msg)
		}
	}
	f.messages = kept
	return nil
}

func (f *fakeMessageRepo) countForConversation(conversationID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, msg := range f.messages {
		if msg.ConversationID == conversationID {
			count++
		}
	}
	return count
}

func listParamsPage(page, limit int) repository.ListParams {
	return repository.ListParams{
		Limit:     limit,
		Offset:    (page - 1) * limit,
		SortBy:    "updatedAt",
		SortOrder: "desc",
	}
}

type fakeUserDirectory struct {
	known map[string]bool
}

func newFakeUserDirectory(userIDs ...string) *fakeUserDirectory {
	known := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		known[id] = true
	}
	return &fakeUserDirectory{known: known}
}

func (f *fakeUserDirectory) EnsureUserExists(ctx context.Context, userID string) error {
	if !f.known[userID] {
		return errors.NotFound("User", nil)
	}
	return nil
}

type fakeProductCatalog struct {
	known map[string]bool
}

func newFakeProductCatalog(productIDs ...string) *fakeProductCatalog {
	known := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		known[id] = true
	}
	return &fakeProductCatalog{known: known}
}

func (f *fakeProductCatalog) EnsureProductExists(ctx context.Context, productID string) error {
	if !f.known[productID] {
		return errors.NotFound("Product", nil)
	}
	return nil
}

type fakeTxManager struct {
	mu          sync.Mutex
	supports    bool
	probeCalls  int
	txStarted   int
	txCommitted int
}

func (f *fakeTxManager) SupportsTransactions(ctx context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probeCalls++
	return f.supports
}

func (f *fakeTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	f.txStarted++
	f.mu.Unlock()

	err := fn(ctx)
	if err == nil {
		f.mu.Lock()
		f.txCommitted++
		f.mu.Unlock()
	}
	return err
}
