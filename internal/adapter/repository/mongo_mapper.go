package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"marketchat/internal/domain/entity"
)

// Persisted document shapes. One explicit, total mapping function per
// direction per collection; optional-field rules are stated per field.

type participantDoc struct {
	UserID   string     `bson:"userId"`
	JoinedAt time.Time  `bson:"joinedAt"`
	LeftAt   *time.Time `bson:"leftAt"`
}

type chatRoomDoc struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	ProductID         string             `bson:"productId"`
	Participants      []participantDoc   `bson:"participants"`
	ParticipantsCount int                `bson:"participantsCount"`
	LastMessage       string             `bson:"lastMessage,omitempty"`
	LastMessageID     string             `bson:"lastMessageId,omitempty"`
	LastMessageAt     *time.Time         `bson:"lastMessageAt,omitempty"`
	RelatedOrderID    string             `bson:"relatedOrderId,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt"`
}

type messageDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	ConversationID primitive.ObjectID `bson:"conversationId"`
	SenderID       string             `bson:"senderId"`
	ReceiverID     string             `bson:"receiverId"`
	Message        string             `bson:"message"`
	MessageType    string             `bson:"messageType"`
	ReadAt         *time.Time         `bson:"readAt"`
	FileURL        string             `bson:"fileUrl,omitempty"`
	FileName       string             `bson:"fileName,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

// mapChatRoomToEntity converts a persisted room document to the domain
// entity. Rules: _id renders as its hex string; leftAt/lastMessageAt stay nil
// when absent; lastMessage/lastMessageId/relatedOrderId coalesce to "".
func mapChatRoomToEntity(doc chatRoomDoc) *entity.ChatRoom {
	participants := make([]entity.Participant, 0, len(doc.Participants))
	for _, p := range doc.Participants {
		participants = append(participants, entity.Participant{
			UserID:   p.UserID,
			JoinedAt: p.JoinedAt,
			LeftAt:   p.LeftAt,
		})
	}

	return &entity.ChatRoom{
		ID:                doc.ID.Hex(),
		ProductID:         doc.ProductID,
		Participants:      participants,
		ParticipantsCount: doc.ParticipantsCount,
		LastMessage:       doc.LastMessage,
		LastMessageID:     doc.LastMessageID,
		LastMessageAt:     doc.LastMessageAt,
		RelatedOrderID:    doc.RelatedOrderID,
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
	}
}

// mapMessageToEntity converts a persisted message document to the domain
// entity. Rules: ids render as hex strings; readAt stays nil until the
// receiver reads; fileUrl/fileName coalesce to "" and are only meaningful for
// image messages.
func mapMessageToEntity(doc messageDoc) *entity.Message {
	return &entity.Message{
		ID:             doc.ID.Hex(),
		ConversationID: doc.ConversationID.Hex(),
		SenderID:       doc.SenderID,
		ReceiverID:     doc.ReceiverID,
		Content:        doc.Message,
		Type:           entity.MessageType(doc.MessageType),
		ReadAt:         doc.ReadAt,
		FileURL:        doc.FileURL,
		FileName:       doc.FileName,
		CreatedAt:      doc.CreatedAt,
		UpdatedAt:      doc.UpdatedAt,
	}
}
