package entity

import (
	"time"

	"github.com/google/uuid"
)

// QueryRecord stores latency metadata for one user->bot exchange. Exactly
// one record may exist per user message.
type QueryRecord struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	ChatMessageId uuid.UUID
	QueryType     string
	ResponseTime  time.Duration
	Metadata      map[string]interface{}
	CreatedAt     time.Time
}
