package mapper

import (
	"encoding/json"
	"time"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/model"

	"gorm.io/datatypes"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}
	return &entity.ChatSession{
		Id:            s.Id,
		UserId:        s.UserId,
		UserIpAddress: s.UserIpAddress,
		Active:        s.Active,
		CreatedAt:     s.CreatedAt,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}
	return &model.ChatSession{
		Id:            s.Id,
		UserId:        s.UserId,
		UserIpAddress: s.UserIpAddress,
		Active:        s.Active,
		CreatedAt:     s.CreatedAt,
	}
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}
	return &entity.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Sender:        msg.Sender,
		Message:       msg.Message,
		CreatedAt:     msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}
	return &model.ChatMessage{
		Id:            msg.Id,
		ChatSessionId: msg.ChatSessionId,
		Sender:        msg.Sender,
		Message:       msg.Message,
		CreatedAt:     msg.CreatedAt,
	}
}

// Query Record Mappers

func (m *ChatMapper) QueryRecordToEntity(r *model.QueryRecord) *entity.QueryRecord {
	if r == nil {
		return nil
	}

	var metadata map[string]interface{}
	if len(r.Metadata) > 0 {
		// Best effort: corrupt metadata should not break reads
		_ = json.Unmarshal(r.Metadata, &metadata)
	}

	return &entity.QueryRecord{
		Id:            r.Id,
		ChatSessionId: r.ChatSessionId,
		ChatMessageId: r.ChatMessageId,
		QueryType:     r.QueryType,
		ResponseTime:  time.Duration(r.ResponseTime),
		Metadata:      metadata,
		CreatedAt:     r.CreatedAt,
	}
}

func (m *ChatMapper) QueryRecordToModel(r *entity.QueryRecord) *model.QueryRecord {
	if r == nil {
		return nil
	}

	var metadata datatypes.JSON
	if r.Metadata != nil {
		if raw, err := json.Marshal(r.Metadata); err == nil {
			metadata = raw
		}
	}

	return &model.QueryRecord{
		Id:            r.Id,
		ChatSessionId: r.ChatSessionId,
		ChatMessageId: r.ChatMessageId,
		QueryType:     r.QueryType,
		ResponseTime:  int64(r.ResponseTime),
		Metadata:      metadata,
		CreatedAt:     r.CreatedAt,
	}
}
