package entity

import "time"

// Participant is a user's membership record in a chat room. LeftAt is nil
// while the participant is active.
type Participant struct {
	UserID   string     `json:"user_id"`
	JoinedAt time.Time  `json:"joined_at"`
	LeftAt   *time.Time `json:"left_at,omitempty"`
}

func (p Participant) Active() bool {
	return p.LeftAt == nil
}

// ChatRoom is a conversation scoped to one product between exactly two users
// at creation time. ParticipantsCount and the last-message fields are
// denormalized read-model state.
type ChatRoom struct {
	ID                string        `json:"id"`
	ProductID         string        `json:"product_id"`
	Participants      []Participant `json:"participants"`
	ParticipantsCount int           `json:"participants_count"`
	LastMessage       string        `json:"last_message,omitempty"`
	LastMessageID     string        `json:"last_message_id,omitempty"`
	LastMessageAt     *time.Time    `json:"last_message_at,omitempty"`
	RelatedOrderID    string        `json:"related_order_id,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// HasActiveParticipant reports whether userID is present with LeftAt unset.
func (r *ChatRoom) HasActiveParticipant(userID string) bool {
	for _, p := range r.Participants {
		if p.UserID == userID && p.Active() {
			return true
		}
	}
	return false
}

// ActiveCount recomputes the participant count from the source-of-truth list.
func (r *ChatRoom) ActiveCount() int {
	count := 0
	for _, p := range r.Participants {
		if p.Active() {
			count++
		}
	}
	return count
}
