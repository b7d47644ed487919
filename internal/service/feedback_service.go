package service

import (
	"context"
	"fmt"
	"time"

	"ai-chatbot-be/internal/apperror"
	"ai-chatbot-be/internal/constant"
	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/specification"
	"ai-chatbot-be/internal/repository/unitofwork"
	pkgEvents "ai-chatbot-be/pkg/events"
	pkgNats "ai-chatbot-be/pkg/nats"

	"github.com/google/uuid"
)

type IFeedbackService interface {
	SubmitFeedback(ctx context.Context, request *dto.SubmitFeedbackRequest) (*dto.SubmitFeedbackResponse, error)
	GetFeedbackForMessage(ctx context.Context, messageId uuid.UUID) ([]*dto.FeedbackItemResponse, error)
}

type feedbackService struct {
	uowFactory     unitofwork.RepositoryFactory
	log            logger.ILogger
	eventPublisher *pkgNats.Publisher
}

func NewFeedbackService(
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
	eventPublisher *pkgNats.Publisher,
) IFeedbackService {
	return &feedbackService{
		uowFactory:     uowFactory,
		log:            log,
		eventPublisher: eventPublisher,
	}
}

// SubmitFeedback records one rating for a bot or user message. A message
// accumulates feedback entries, corrections are new rows, never edits.
func (fs *feedbackService) SubmitFeedback(ctx context.Context, request *dto.SubmitFeedbackRequest) (*dto.SubmitFeedbackResponse, error) {
	if request.Rating < constant.FeedbackRatingMin || request.Rating > constant.FeedbackRatingMax {
		return nil, apperror.Validation(fmt.Sprintf(
			"rating must be between %d and %d", constant.FeedbackRatingMin, constant.FeedbackRatingMax,
		))
	}

	uow := fs.uowFactory.NewUnitOfWork(ctx)

	chatMessage, err := uow.ChatMessageRepository().FindOne(ctx, specification.ByID{ID: request.ChatMessageId})
	if err != nil {
		return nil, apperror.Persistence(err, "failed to look up chat message")
	}
	if chatMessage == nil {
		return nil, apperror.NotFound("chat message not found")
	}

	feedback := entity.Feedback{
		Id:            uuid.New(),
		ChatMessageId: chatMessage.Id,
		Rating:        request.Rating,
		Comment:       request.Comment,
		CreatedAt:     time.Now(),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Persistence(err, "failed to start transaction")
	}
	defer uow.Rollback()

	if err := uow.FeedbackRepository().Create(ctx, &feedback); err != nil {
		return nil, apperror.Persistence(err, "failed to store feedback")
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Persistence(err, "failed to commit feedback")
	}

	evt := pkgEvents.NewFeedbackSubmittedEvent(feedback.Id.String(), chatMessage.Id.String(), feedback.Rating)
	if err := fs.eventPublisher.Publish(ctx, evt); err != nil {
		fs.log.Warn("feedback", "Failed to publish feedback event", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return &dto.SubmitFeedbackResponse{
		Status:      "success",
		FeedbackId:  feedback.Id,
		RatingLabel: constant.FeedbackRatingLabels[feedback.Rating],
	}, nil
}

// GetFeedbackForMessage lists all feedback entries of one message,
// oldest first.
func (fs *feedbackService) GetFeedbackForMessage(ctx context.Context, messageId uuid.UUID) ([]*dto.FeedbackItemResponse, error) {
	uow := fs.uowFactory.NewUnitOfWork(ctx)

	chatMessage, err := uow.ChatMessageRepository().FindOne(ctx, specification.ByID{ID: messageId})
	if err != nil {
		return nil, apperror.Persistence(err, "failed to look up chat message")
	}
	if chatMessage == nil {
		return nil, apperror.NotFound("chat message not found")
	}

	feedbacks, err := uow.FeedbackRepository().FindAll(ctx,
		specification.ByChatMessageID{ChatMessageID: messageId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, apperror.Persistence(err, "failed to list feedback")
	}

	response := make([]*dto.FeedbackItemResponse, 0, len(feedbacks))
	for _, f := range feedbacks {
		response = append(response, &dto.FeedbackItemResponse{
			Id:          f.Id,
			Rating:      f.Rating,
			RatingLabel: constant.FeedbackRatingLabels[f.Rating],
			Comment:     f.Comment,
			CreatedAt:   f.CreatedAt,
		})
	}

	return response, nil
}
