package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	UserId uuid.UUID `json:"user_id" validate:"required"`
}

type CreateSessionResponse struct {
	ChatId    uuid.UUID `json:"chat_id"`
	CreatedAt time.Time `json:"created_at"`
}

type SendChatRequest struct {
	ChatId  uuid.UUID `json:"chat_id" validate:"required"`
	Message string    `json:"message" validate:"required"`
}

type SendChatResponse struct {
	ChatId        uuid.UUID `json:"chat_id"`
	UserMessageId uuid.UUID `json:"user_message_id"`
	BotMessageId  uuid.UUID `json:"bot_message_id"`
	UserMessage   string    `json:"user_message"`
	BotResponse   string    `json:"bot_response"`
	// ResponseTime is the gateway latency in seconds.
	ResponseTime float64 `json:"response_time"`
}

type GetAllSessionsResponse struct {
	ChatId    uuid.UUID `json:"chat_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
