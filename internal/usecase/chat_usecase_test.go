package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketchat/internal/domain/entity"
	"marketchat/pkg/errors"
)

func newFacadeFixture(t *testing.T, txSupported bool) (*ChatUseCase, *fakeChatRoomRepo, *fakeMessageRepo, *fakeTxManager) {
	t.Helper()

	roomRepo := newFakeChatRoomRepo()
	messageRepo := newFakeMessageRepo()
	users := newFakeUserDirectory("seller", "buyer", "stranger")
	products := newFakeProductCatalog("product-1")
	tx := &fakeTxManager{supports: txSupported}

	rooms := NewChatRoomUseCase(roomRepo, messageRepo, users, products)
	messages := NewMessageUseCase(messageRepo, roomRepo, rooms, users)
	facade := NewChatUseCase(rooms, messages, tx)

	return facade, roomRepo, messageRepo, tx
}

func seedRoomWithMessages(t *testing.T, facade *ChatUseCase, n int) *entity.ChatRoom {
	t.Helper()
	ctx := context.Background()

	room, created, err := facade.CreateOrGetRoom(ctx, "buyer", "seller", "product-1")
	require.NoError(t, err)
	require.True(t, created)

	for i := 0; i < n; i++ {
		_, err := facade.SendMessage(ctx, SendMessageInput{
			RoomID:     room.ID,
			SenderID:   "buyer",
			ReceiverID: "seller",
			Content:    fmt.Sprintf("message %d", i),
			Type:       entity.MessageTypeText,
		})
		require.NoError(t, err)
	}

	return room
}

func TestLeaveRoomCascadeOnEmpty(t *testing.T) {
	for _, txSupported := range []bool{true, false} {
		name := "best-effort"
		if txSupported {
			name = "atomic"
		}
		t.Run(name, func(t *testing.T) {
			facade, roomRepo, messageRepo, _ := newFacadeFixture(t, txSupported)
			ctx := context.Background()

			room := seedRoomWithMessages(t, facade, 11)

			// First leave: room survives with one active participant.
			require.NoError(t, facade.LeaveRoom(ctx, room.ID, "seller"))
			got, err := roomRepo.GetByID(ctx, room.ID)
			require.NoError(t, err)
			assert.Equal(t, 1, got.ParticipantsCount)

			// Last leave: room and all its messages are gone.
			require.NoError(t, facade.LeaveRoom(ctx, room.ID, "buyer"))

			_, err = roomRepo.GetByID(ctx, room.ID)
			assert.True(t, errors.Is(err, "NOT_FOUND"))
			assert.Zero(t, messageRepo.countForConversation(room.ID))

			_, _, err = facade.ListMessages(ctx, ListMessagesInput{RoomID: room.ID, Page: 1, Limit: 10})
			assert.True(t, errors.Is(err, "NOT_FOUND"))
		})
	}
}

func TestLeaveRoomSelectsAtomicStrategyOnce(t *testing.T) {
	facade, _, _, tx := newFacadeFixture(t, true)
	ctx := context.Background()

	room := seedRoomWithMessages(t, facade, 1)

	require.NoError(t, facade.LeaveRoom(ctx, room.ID, "seller"))
	require.NoError(t, facade.LeaveRoom(ctx, room.ID, "buyer"))

	assert.Equal(t, 1, tx.probeCalls, "topology probed once, then cached")
	assert.Equal(t, 2, tx.txStarted)
	assert.Equal(t, 2, tx.txCommitted)
}

func TestLeaveRoomBestEffortNeverOpensTransaction(t *testing.T) {
	facade, _, _, tx := newFacadeFixture(t, false)
	ctx := context.Background()

	room := seedRoomWithMessages(t, facade, 1)

	require.NoError(t, facade.LeaveRoom(ctx, room.ID, "seller"))
	require.NoError(t, facade.LeaveRoom(ctx, room.ID, "buyer"))

	assert.Equal(t, 1, tx.probeCalls)
	assert.Zero(t, tx.txStarted)
}

func TestLeaveRoomErrorsMatchAcrossStrategies(t *testing.T) {
	for _, txSupported := range []bool{true, false} {
		facade, _, _, _ := newFacadeFixture(t, txSupported)
		ctx := context.Background()

		room := seedRoomWithMessages(t, facade, 1)

		err := facade.LeaveRoom(ctx, "no-such-room", "buyer")
		assert.True(t, errors.Is(err, "NOT_FOUND"))

		err = facade.LeaveRoom(ctx, room.ID, "stranger")
		assert.True(t, errors.Is(err, "FORBIDDEN"))
	}
}

func TestLeaveRoomFailedTransactionIsNotCommitted(t *testing.T) {
	facade, roomRepo, _, tx := newFacadeFixture(t, true)
	ctx := context.Background()

	room := seedRoomWithMessages(t, facade, 1)

	roomRepo.markLeftErr = errors.InvariantViolation("Participant is not active in this chat room", nil)

	err := facade.LeaveRoom(ctx, room.ID, "seller")
	assert.True(t, errors.Is(err, "INVARIANT_VIOLATION"))
	assert.Equal(t, 1, tx.txStarted)
	assert.Zero(t, tx.txCommitted)
}

func TestCreateOrGetRoomThroughFacade(t *testing.T) {
	facade, _, _, _ := newFacadeFixture(t, true)
	ctx := context.Background()

	room, created, err := facade.CreateOrGetRoom(ctx, "buyer", "seller", "product-1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 2, room.ParticipantsCount)

	again, created, err := facade.CreateOrGetRoom(ctx, "buyer", "seller", "product-1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, room.ID, again.ID)
}

func TestListRoomsForUser(t *testing.T) {
	facade, _, _, _ := newFacadeFixture(t, true)
	ctx := context.Background()

	room := seedRoomWithMessages(t, facade, 1)

	rooms, total, err := facade.ListRoomsForUser(ctx, "buyer", listParamsPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rooms, 1)
	assert.Equal(t, room.ID, rooms[0].ID)

	// A user who left still sees the room while it exists.
	require.NoError(t, facade.LeaveRoom(ctx, room.ID, "seller"))
	rooms, total, err = facade.ListRoomsForUser(ctx, "seller", listParamsPage(1, 20))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rooms, 1)
}
