package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id            uuid.UUID
	UserId        uuid.UUID
	UserIpAddress *string
	Active        bool
	CreatedAt     time.Time
}
