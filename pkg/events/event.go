package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "TURN_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewTurnCompletedEvent is emitted after a chat turn has been fully
// persisted (bot message + query record committed).
func NewTurnCompletedEvent(chatSessionID, chatMessageID, queryType string, responseTimeMs int64) Event {
	return BaseEvent{
		Type: "TURN_COMPLETED",
		Data: map[string]interface{}{
			"chat_session_id":  chatSessionID,
			"chat_message_id":  chatMessageID,
			"query_type":       queryType,
			"response_time_ms": responseTimeMs,
		},
		OccurredAt: time.Now(),
	}
}

// NewFeedbackSubmittedEvent is emitted after a feedback row is stored.
func NewFeedbackSubmittedEvent(feedbackID, chatMessageID string, rating int) Event {
	return BaseEvent{
		Type: "FEEDBACK_SUBMITTED",
		Data: map[string]interface{}{
			"feedback_id":     feedbackID,
			"chat_message_id": chatMessageID,
			"rating":          rating,
		},
		OccurredAt: time.Now(),
	}
}
