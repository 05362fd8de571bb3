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

const messageCollection = "messages"

type mongoMessageRepository struct {
	db *mongo.Database
}

func NewMongoMessageRepository(db *mongo.Database) repository.MessageRepository {
	return &mongoMessageRepository{
		db: db,
	}
}

func (r *mongoMessageRepository) collection() *mongo.Collection {
	return r.db.Collection(messageCollection)
}

func (r *mongoMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	conversationID, err := primitive.ObjectIDFromHex(message.ConversationID)
	if err != nil {
		return errors.NotFound("Chat room", err)
	}

	now := time.Now()
	doc := messageDoc{
		ID:             primitive.NewObjectID(),
		ConversationID: conversationID,
		SenderID:       message.SenderID,
		ReceiverID:     message.ReceiverID,
		Message:        message.Content,
		MessageType:    string(message.Type),
		ReadAt:         nil,
		FileURL:        message.FileURL,
		FileName:       message.FileName,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if _, err := r.collection().InsertOne(ctx, doc); err != nil {
		return errors.Internal("Failed to create message", err)
	}

	message.ID = doc.ID.Hex()
	message.ReadAt = nil
	message.CreatedAt = now
	message.UpdatedAt = now
	return nil
}

func (r *mongoMessageRepository) ListByConversation(ctx context.Context, conversationID string, params repository.ListParams) ([]*entity.Message, int64, error) {
	oid, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		return nil, 0, errors.NotFound("Chat room", err)
	}

	filter := bson.M{"conversationId": oid}

	var (
		docs  []messageDoc
		total int64
	)

	// Data page and total count run concurrently; no point-in-time
	// consistency between them is promised.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		count, err := r.collection().CountDocuments(gctx, filter)
		if err != nil {
			return errors.Internal("Failed to count messages", err)
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
			return errors.Internal("Failed to list messages", err)
		}
		if err := cursor.All(gctx, &docs); err != nil {
			return errors.Internal("Failed to decode messages", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("ListByConversation Error: conversation %s: %v", conversationID, err)
		return nil, 0, err
	}

	messages := make([]*entity.Message, 0, len(docs))
	for _, doc := range docs {
		messages = append(messages, mapMessageToEntity(doc))
	}

	return messages, total, nil
}

func (r *mongoMessageRepository) MarkAllRead(ctx context.Context, conversationID, receiverID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		return 0, errors.NotFound("Chat room", err)
	}

	now := time.Now()
	filter := bson.M{
		"conversationId": oid,
		"receiverId":     receiverID,
		"readAt":         nil,
	}
	update := bson.M{
		"$set": bson.M{
			"readAt":    now,
			"updatedAt": now,
		},
	}

	result, err := r.collection().UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, errors.Internal("Failed to mark messages as read", err)
	}

	return result.ModifiedCount, nil
}

func (r *mongoMessageRepository) CountUnread(ctx context.Context, conversationID, userID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		return 0, errors.NotFound("Chat room", err)
	}

	count, err := r.collection().CountDocuments(ctx, bson.M{
		"conversationId": oid,
		"receiverId":     userID,
		"readAt":         nil,
	})
	if err != nil {
		return 0, errors.Internal("Failed to count unread messages", err)
	}

	return count, nil
}

func (r *mongoMessageRepository) DeleteByConversation(ctx context.Context, conversationID string) error {
	oid, err := primitive.ObjectIDFromHex(conversationID)
	if err != nil {
		return errors.NotFound("Chat room", err)
	}

	if _, err := r.collection().DeleteMany(ctx, bson.M{"conversationId": oid}); err != nil {
		return errors.Internal("Failed to delete messages for chat room", err)
	}

	return nil
}

// EnsureMessageIndexes creates the message query indexes at startup.
func EnsureMessageIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(messageCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "conversationId", Value: 1}, {Key: "createdAt", Value: 1}}},
		{Keys: bson.D{{Key: "senderId", Value: 1}}},
		{Keys: bson.D{{Key: "receiverId", Value: 1}}},
		{Keys: bson.D{{Key: "readAt", Value: 1}}},
	})
	return err
}
