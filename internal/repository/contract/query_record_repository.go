package contract

import (
	"context"

	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/repository/specification"
)

type QueryRecordRepository interface {
	Create(ctx context.Context, record *entity.QueryRecord) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.QueryRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.QueryRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
