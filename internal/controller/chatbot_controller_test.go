package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ai-chatbot-be/internal/apperror"
	"ai-chatbot-be/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type stubChatbotService struct {
	createSession func(ctx context.Context, req *dto.CreateSessionRequest, clientIP string) (*dto.CreateSessionResponse, error)
	sendChat      func(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
}

func (s *stubChatbotService) CreateSession(ctx context.Context, req *dto.CreateSessionRequest, clientIP string) (*dto.CreateSessionResponse, error) {
	return s.createSession(ctx, req, clientIP)
}

func (s *stubChatbotService) SendChat(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	return s.sendChat(ctx, req)
}

func (s *stubChatbotService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	return []*dto.GetAllSessionsResponse{}, nil
}

func (s *stubChatbotService) GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	return nil, apperror.NotFound("chat session not found")
}

func (s *stubChatbotService) DeleteSession(ctx context.Context, sessionId uuid.UUID) error {
	return nil
}

func newChatbotTestApp(svc *stubChatbotService) *fiber.App {
	app := fiber.New()
	api := app.Group("/api")
	NewChatbotController(svc).RegisterRoutes(api)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)

	var envelope map[string]interface{}
	assert.NoError(t, json.Unmarshal(raw, &envelope))
	return envelope
}

func TestCreateSessionReturns201(t *testing.T) {
	sessionId := uuid.New()
	svc := &stubChatbotService{
		createSession: func(ctx context.Context, req *dto.CreateSessionRequest, clientIP string) (*dto.CreateSessionResponse, error) {
			return &dto.CreateSessionResponse{ChatId: sessionId}, nil
		},
	}
	app := newChatbotTestApp(svc)

	resp := postJSON(t, app, "/api/chatbot/session", fiber.Map{"user_id": uuid.New()})

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	envelope := decodeEnvelope(t, resp)
	assert.Equal(t, true, envelope["success"])
	data := envelope["data"].(map[string]interface{})
	assert.Equal(t, sessionId.String(), data["chat_id"])
}

func TestCreateSessionUnknownUserReturns404(t *testing.T) {
	svc := &stubChatbotService{
		createSession: func(ctx context.Context, req *dto.CreateSessionRequest, clientIP string) (*dto.CreateSessionResponse, error) {
			return nil, apperror.NotFound("user not found")
		},
	}
	app := newChatbotTestApp(svc)

	resp := postJSON(t, app, "/api/chatbot/session", fiber.Map{"user_id": uuid.New()})

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	envelope := decodeEnvelope(t, resp)
	assert.Equal(t, false, envelope["success"])
	assert.Equal(t, float64(404), envelope["code"])
}

func TestSendChatSuccessCarriesResponseTime(t *testing.T) {
	svc := &stubChatbotService{
		sendChat: func(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
			return &dto.SendChatResponse{
				ChatId:       req.ChatId,
				UserMessage:  req.Message,
				BotResponse:  "hello there",
				ResponseTime: 0.12,
			}, nil
		},
	}
	app := newChatbotTestApp(svc)

	resp := postJSON(t, app, "/api/chatbot/chat", fiber.Map{"chat_id": uuid.New(), "message": "hi"})

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := decodeEnvelope(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, "hello there", data["bot_response"])
	assert.InDelta(t, 0.12, data["response_time"], 0.0001)
}

func TestSendChatErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", apperror.NotFound("chat session not found"), fiber.StatusNotFound},
		{"validation", apperror.Validation("message must not be empty"), fiber.StatusBadRequest},
		{"inference", apperror.Inference(nil, "inference gateway failed"), fiber.StatusBadGateway},
		{"persistence", apperror.Persistence(nil, "failed to store query record"), fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubChatbotService{
				sendChat: func(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
					return nil, tc.err
				},
			}
			app := newChatbotTestApp(svc)

			resp := postJSON(t, app, "/api/chatbot/chat", fiber.Map{"chat_id": uuid.New(), "message": "hi"})

			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestSendChatMissingFieldsReturns400(t *testing.T) {
	svc := &stubChatbotService{
		sendChat: func(ctx context.Context, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
			t.Fatal("service must not be reached for invalid payloads")
			return nil, nil
		},
	}
	app := newChatbotTestApp(svc)

	resp := postJSON(t, app, "/api/chatbot/chat", fiber.Map{"message": "hi"})

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetAllSessionsBadUUIDReturns400(t *testing.T) {
	app := newChatbotTestApp(&stubChatbotService{})

	req := httptest.NewRequest(http.MethodGet, "/api/chatbot/sessions/not-a-uuid", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetChatHistoryUnknownSessionReturns404(t *testing.T) {
	app := newChatbotTestApp(&stubChatbotService{})

	req := httptest.NewRequest(http.MethodGet, "/api/chatbot/session/"+uuid.NewString()+"/history", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
