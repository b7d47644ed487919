package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// QueryRecord links a session and the user message that opened a turn to
// the measured gateway latency. The unique index on ChatMessageId enforces
// the one-to-one message link at the database level.
type QueryRecord struct {
	Id            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId uuid.UUID      `gorm:"type:uuid;not null;index"`
	ChatMessageId uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	QueryType     string         `gorm:"type:varchar(100);not null"`
	ResponseTime  int64          `gorm:"not null;check:response_time >= 0"` // nanoseconds
	Metadata      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`

	// Relationships
	ChatSession *ChatSession `gorm:"foreignKey:ChatSessionId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ChatMessage *ChatMessage `gorm:"foreignKey:ChatMessageId;references:Id;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (QueryRecord) TableName() string {
	return "query_records"
}
