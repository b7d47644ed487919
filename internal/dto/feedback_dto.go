package dto

import (
	"time"

	"github.com/google/uuid"
)

type SubmitFeedbackRequest struct {
	ChatMessageId uuid.UUID `json:"chat_message_id" validate:"required"`
	Rating        int       `json:"rating" validate:"required"`
	Comment       *string   `json:"comment,omitempty"`
}

type SubmitFeedbackResponse struct {
	Status      string    `json:"status"`
	FeedbackId  uuid.UUID `json:"feedback_id"`
	RatingLabel string    `json:"rating_label"`
}

type FeedbackItemResponse struct {
	Id          uuid.UUID `json:"id"`
	Rating      int       `json:"rating"`
	RatingLabel string    `json:"rating_label"`
	Comment     *string   `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
