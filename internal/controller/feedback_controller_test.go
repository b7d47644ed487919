package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-chatbot-be/internal/apperror"
	"ai-chatbot-be/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubFeedbackService struct {
	submit func(ctx context.Context, req *dto.SubmitFeedbackRequest) (*dto.SubmitFeedbackResponse, error)
	list   func(ctx context.Context, messageId uuid.UUID) ([]*dto.FeedbackItemResponse, error)
}

func (s *stubFeedbackService) SubmitFeedback(ctx context.Context, req *dto.SubmitFeedbackRequest) (*dto.SubmitFeedbackResponse, error) {
	return s.submit(ctx, req)
}

func (s *stubFeedbackService) GetFeedbackForMessage(ctx context.Context, messageId uuid.UUID) ([]*dto.FeedbackItemResponse, error) {
	return s.list(ctx, messageId)
}

func newFeedbackTestApp(svc *stubFeedbackService) *fiber.App {
	app := fiber.New()
	api := app.Group("/api")
	NewFeedbackController(svc).RegisterRoutes(api)
	return app
}

func TestSubmitFeedbackSuccess(t *testing.T) {
	svc := &stubFeedbackService{
		submit: func(ctx context.Context, req *dto.SubmitFeedbackRequest) (*dto.SubmitFeedbackResponse, error) {
			return &dto.SubmitFeedbackResponse{
				Status:      "success",
				FeedbackId:  uuid.New(),
				RatingLabel: "excellent",
			}, nil
		},
	}
	app := newFeedbackTestApp(svc)

	resp := postJSON(t, app, "/api/chatbot/feedback", fiber.Map{
		"chat_message_id": uuid.New(),
		"rating":          5,
	})

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := decodeEnvelope(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, "success", data["status"])
	assert.Equal(t, "excellent", data["rating_label"])
}

func TestSubmitFeedbackInvalidRatingReturns400(t *testing.T) {
	svc := &stubFeedbackService{
		submit: func(ctx context.Context, req *dto.SubmitFeedbackRequest) (*dto.SubmitFeedbackResponse, error) {
			return nil, apperror.Validation("rating must be between 1 and 5")
		},
	}
	app := newFeedbackTestApp(svc)

	resp := postJSON(t, app, "/api/chatbot/feedback", fiber.Map{
		"chat_message_id": uuid.New(),
		"rating":          9,
	})

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSubmitFeedbackUnknownMessageReturns404(t *testing.T) {
	svc := &stubFeedbackService{
		submit: func(ctx context.Context, req *dto.SubmitFeedbackRequest) (*dto.SubmitFeedbackResponse, error) {
			return nil, apperror.NotFound("chat message not found")
		},
	}
	app := newFeedbackTestApp(svc)

	resp := postJSON(t, app, "/api/chatbot/feedback", fiber.Map{
		"chat_message_id": uuid.New(),
		"rating":          3,
	})

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetFeedbackForMessage(t *testing.T) {
	svc := &stubFeedbackService{
		list: func(ctx context.Context, messageId uuid.UUID) ([]*dto.FeedbackItemResponse, error) {
			return []*dto.FeedbackItemResponse{
				{Id: uuid.New(), Rating: 5, RatingLabel: "excellent"},
				{Id: uuid.New(), Rating: 1, RatingLabel: "terrible"},
			}, nil
		},
	}
	app := newFeedbackTestApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/chatbot/message/"+uuid.NewString()+"/feedback", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := decodeEnvelope(t, resp)["data"].([]interface{})
	assert.Len(t, data, 2)
}
