package entity

import (
	"time"

	"github.com/google/uuid"
)

type Feedback struct {
	Id            uuid.UUID
	ChatMessageId uuid.UUID
	Rating        int
	Comment       *string
	CreatedAt     time.Time
}
