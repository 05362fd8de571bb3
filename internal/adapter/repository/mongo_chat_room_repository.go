package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"

	"marketchat/internal/domain/entity"
	"marketchat/internal/domain/repository"
	"marketchat/pkg/errors"
	"marketchat/pkg/logger"
)

const chatRoomCollection = "chatrooms"

type mongoChatRoomRepository struct {
	db *mongo.Database
}

func NewMongoChatRoomRepository(db *mongo.Database) repository.ChatRoomRepository {
	return &mongoChatRoomRepository{
		db: db,
	}
}

func (r *mongoChatRoomRepository) collection() *mongo.Collection {
	return r.db.Collection(chatRoomCollection)
}

func (r *mongoChatRoomRepository) FindOrCreate(ctx context.Context, senderID, receiverID, productID string) (*entity.ChatRoom, bool, error) {
	// Active participant set must equal exactly {sender, receiver}: both
	// elemMatch active and nobody else active.
	filter := bson.M{
		"productId": productID,
		"participants": bson.M{"$all": bson.A{
			bson.M{"$elemMatch": bson.M{"userId": senderID, "leftAt": nil}},
			bson.M{"$elemMatch": bson.M{"userId": receiverID, "leftAt": nil}},
		}},
		"participantsCount": 2,
	}

	var doc chatRoomDoc
	err := r.collection().FindOne(ctx, filter).Decode(&doc)
	if err == nil {
		return mapChatRoomToEntity(doc), false, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, false, errors.Internal("Failed to search for chat room", err)
	}

	// Read-then-write without an exclusive lock: two racing identical
	// requests can both land here and both insert. Tolerated and monitored
	// rather than locked.
	now := time.Now()
	doc = chatRoomDoc{
		ID:        primitive.NewObjectID(),
		ProductID: productID,
		Participants: []participantDoc{
			{UserID: senderID, JoinedAt: now},
			{UserID: receiverID, JoinedAt: now},
		},
		ParticipantsCount: 2,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if _, err := r.collection().InsertOne(ctx, doc); err != nil {
		return nil, false, errors.Internal("Failed to create chat room", err)
	}

	return mapChatRoomToEntity(doc), true, nil
}

func (r *mongoChatRoomRepository) GetByID(ctx context.Context, id string) (*entity.ChatRoom, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.NotFound("Chat room", err)
	}

	var doc chatRoomDoc
	err = r.collection().FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, errors.NotFound("Chat room", nil)
	}
	if err != nil {
		return nil, errors.Internal("Failed to get chat room", err)
	}

	return mapChatRoomToEntity(doc), nil
}

func (r *mongoChatRoomRepository) ListByUserID(ctx context.Context, userID string, params repository.ListParams) ([]*entity.ChatRoom, int64, error) {
	filter := bson.M{"participants.userId": userID}

	var (
		docs  []chatRoomDoc
		total int64
	)

	// Page and count are independent queries; they are not point-in-time
	// consistent with each other under concurrent writes.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := r.collection().CountDocuments(gctx, filter)
		if err != nil {
			return errors.Internal("Failed to count chat rooms", err)
		}
		total = count
		return nil
	})

	g.Go(func() error {
		findOpts := options.Find().
			SetSort(bson.D{{Key: params.SortBy, Value: sortDirection(params)}}).
			SetSkip(int64(params.Offset)).
			SetLimit(int64(params.Limit))

		cursor, err := r.collection().Find(gctx, filter, findOpts)
		if err != nil {
			return errors.Internal("Failed to list chat rooms", err)
		}
		if err := cursor.All(gctx, &docs); err != nil {
			return errors.Internal("Failed to decode chat rooms", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("ListByUserID Error: user %s: %v", userID, err)
		return nil, 0, err
	}

	rooms := make([]*entity.ChatRoom, 0, len(docs))
	for _, doc := range docs {
		rooms = append(rooms, mapChatRoomToEntity(doc))
	}

	return rooms, total, nil
}

func (r *mongoChatRoomRepository) MarkParticipantLeft(ctx context.Context, roomID, userID string) error {
	oid, err := primitive.ObjectIDFromHex(roomID)
	if err != nil {
		return errors.NotFound("Chat room", err)
	}

	now := time.Now()
	filter := bson.M{
		"_id":          oid,
		"participants": bson.M{"$elemMatch": bson.M{"userId": userID, "leftAt": nil}},
	}
	update := bson.M{
		"$set": bson.M{
			"participants.$.leftAt": now,
			"updatedAt":             now,
		},
		"$inc": bson.M{"participantsCount": -1},
	}

	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		return errors.Internal("Failed to mark participant left", err)
	}

	// Matched vs modified distinguishes the no-match signal: matched 0 means
	// the room is gone or the participant is already inactive.
	if result.MatchedCount == 0 {
		return errors.InvariantViolation("Participant is not active in this chat room", nil)
	}
	if result.ModifiedCount == 0 {
		return errors.InvariantViolation("Participant leave update matched but modified nothing", nil)
	}

	return nil
}

func (r *mongoChatRoomRepository) UpdateLastMessage(ctx context.Context, roomID, text, messageID string) error {
	oid, err := primitive.ObjectIDFromHex(roomID)
	if err != nil {
		return errors.NotFound("Chat room", err)
	}

	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"lastMessage":   text,
			"lastMessageId": messageID,
			"lastMessageAt": now,
			"updatedAt":     now,
		},
	}

	if _, err := r.collection().UpdateOne(ctx, bson.M{"_id": oid}, update); err != nil {
		return errors.Internal("Failed to update last message", err)
	}

	return nil
}

func (r *mongoChatRoomRepository) Delete(ctx context.Context, roomID string) error {
	oid, err := primitive.ObjectIDFromHex(roomID)
	if err != nil {
		return errors.NotFound("Chat room", err)
	}

	if _, err := r.collection().DeleteOne(ctx, bson.M{"_id": oid}); err != nil {
		return errors.Internal("Failed to delete chat room", err)
	}

	return nil
}

// EnsureChatRoomIndexes creates the room query indexes at startup.
func EnsureChatRoomIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(chatRoomCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "productId", Value: 1}, {Key: "participants.userId", Value: 1}}},
		{Keys: bson.D{{Key: "participants.userId", Value: 1}}},
	})
	return err
}

func sortDirection(params repository.ListParams) int {
	if params.Descending() {
		return -1
	}
	return 1
}
