package dto

import (
	"time"

	"github.com/google/uuid"
)

// QueryCompletedMessage is the payload published on the in-process bus
// after every successful turn.
type QueryCompletedMessage struct {
	ChatSessionId  uuid.UUID `json:"chat_session_id"`
	ChatMessageId  uuid.UUID `json:"chat_message_id"`
	QueryType      string    `json:"query_type"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	Provider       string    `json:"provider"`
	Model          string    `json:"model"`
	OccurredAt     time.Time `json:"occurred_at"`
}
