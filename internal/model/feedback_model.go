package model

import (
	"time"

	"github.com/google/uuid"
)

// Feedback is many-per-message: re-rating appends a new row.
type Feedback struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatMessageId uuid.UUID `gorm:"type:uuid;not null;index"`
	Rating        int       `gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment       *string   `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`

	// Relationships
	ChatMessage *ChatMessage `gorm:"foreignKey:ChatMessageId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (Feedback) TableName() string {
	return "feedbacks"
}
