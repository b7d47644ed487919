package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"ai-chatbot-be/internal/apperror"
	"ai-chatbot-be/internal/config"
	"ai-chatbot-be/internal/constant"
	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/memory"
	"ai-chatbot-be/internal/repository/specification"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/pkg/llm"

	"github.com/google/uuid"
)

// IChatbotService defines the chatbot service interface
type IChatbotService interface {
	CreateSession(ctx context.Context, request *dto.CreateSessionRequest, clientIP string) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	SendChat(ctx context.Context, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	DeleteSession(ctx context.Context, sessionId uuid.UUID) error
}

// QueryClassifier labels a user query for the query record. When nil,
// every record is labeled with the general query type.
type QueryClassifier func(ctx context.Context, message string) string

type chatbotService struct {
	uowFactory       unitofwork.RepositoryFactory
	llmProvider      llm.LLMProvider
	sessionCache     *memory.SessionCache
	publisherService IPublisherService
	log              logger.ILogger
	classifier       QueryClassifier
	aiConfig         config.AIConfig
}

func NewChatbotService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	sessionCache *memory.SessionCache,
	publisherService IPublisherService,
	log logger.ILogger,
	classifier QueryClassifier,
	aiConfig config.AIConfig,
) IChatbotService {
	return &chatbotService{
		uowFactory:       uowFactory,
		llmProvider:      llmProvider,
		sessionCache:     sessionCache,
		publisherService: publisherService,
		log:              log,
		classifier:       classifier,
		aiConfig:         aiConfig,
	}
}

// CreateSession opens a new conversation for an existing user. Every
// call creates a fresh session, there is no idempotency.
func (cs *chatbotService) CreateSession(ctx context.Context, request *dto.CreateSessionRequest, clientIP string) (*dto.CreateSessionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: request.UserId})
	if err != nil {
		return nil, apperror.Persistence(err, "failed to look up user")
	}
	if user == nil {
		return nil, apperror.NotFound("user not found")
	}

	chatSession := entity.ChatSession{
		Id:        uuid.New(),
		UserId:    request.UserId,
		Active:    true,
		CreatedAt: time.Now(),
	}
	if clientIP != "" {
		chatSession.UserIpAddress = &clientIP
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Persistence(err, "failed to start transaction")
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Create(ctx, &chatSession); err != nil {
		return nil, apperror.Persistence(err, "failed to create chat session")
	}

	if err := uow.Commit(); err != nil {
		return nil, apperror.Persistence(err, "failed to commit chat session")
	}

	cs.sessionCache.Save(&chatSession)

	return &dto.CreateSessionResponse{
		ChatId:    chatSession.Id,
		CreatedAt: chatSession.CreatedAt,
	}, nil
}

// GetAllSessions retrieves all chat sessions for a user, newest first.
func (cs *chatbotService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chatSessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.Persistence(err, "failed to list chat sessions")
	}

	response := make([]*dto.GetAllSessionsResponse, 0, len(chatSessions))
	for _, s := range chatSessions {
		response = append(response, &dto.GetAllSessionsResponse{
			ChatId:    s.Id,
			Active:    s.Active,
			CreatedAt: s.CreatedAt,
		})
	}

	return response, nil
}

// GetChatHistory retrieves the messages of a session in insertion order.
func (cs *chatbotService) GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.resolveSession(ctx, uow, sessionId); err != nil {
		return nil, err
	}

	chatMessages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, apperror.Persistence(err, "failed to load chat history")
	}

	response := make([]*dto.GetChatHistoryResponse, 0, len(chatMessages))
	for _, m := range chatMessages {
		response = append(response, &dto.GetChatHistoryResponse{
			Id:        m.Id,
			Sender:    m.Sender,
			Message:   m.Message,
			CreatedAt: m.CreatedAt,
		})
	}

	return response, nil
}

// SendChat runs one user->bot exchange:
//
//  1. persist the user message in its own committed transaction,
//  2. call the inference gateway with the configured timeout while
//     measuring latency,
//  3. persist the bot message and the query record atomically.
//
// A gateway failure leaves the user message in place and produces no bot
// message or query record.
func (cs *chatbotService) SendChat(ctx context.Context, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	userText := strings.TrimSpace(request.Message)
	if userText == "" {
		return nil, apperror.Validation("message must not be empty")
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chatSession, err := cs.resolveSession(ctx, uow, request.ChatId)
	if err != nil {
		return nil, err
	}

	userMessage := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: chatSession.Id,
		Sender:        constant.ChatMessageSenderUser,
		Message:       userText,
		CreatedAt:     time.Now(),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Persistence(err, "failed to start transaction")
	}
	if err := uow.ChatMessageRepository().Create(ctx, &userMessage); err != nil {
		uow.Rollback()
		return nil, apperror.Persistence(err, "failed to store user message")
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.Persistence(err, "failed to commit user message")
	}

	botText, elapsed, err := cs.generate(ctx, userText)
	if err != nil {
		cs.log.Error("chatbot", "Inference gateway call failed", map[string]interface{}{
			"chat_session_id": chatSession.Id,
			"error":           err.Error(),
		})
		return nil, apperror.Inference(err, "inference gateway failed")
	}

	queryType := constant.QueryTypeGeneral
	if cs.classifier != nil {
		queryType = cs.classifier(ctx, userText)
	}

	botMessage := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: chatSession.Id,
		Sender:        constant.ChatMessageSenderBot,
		Message:       botText,
		CreatedAt:     time.Now(),
	}

	queryRecord := entity.QueryRecord{
		Id:            uuid.New(),
		ChatSessionId: chatSession.Id,
		ChatMessageId: userMessage.Id,
		QueryType:     queryType,
		ResponseTime:  elapsed,
		Metadata: map[string]interface{}{
			"provider": cs.aiConfig.LLMProvider,
			"model":    cs.aiConfig.LLMModel,
		},
		CreatedAt: time.Now(),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, apperror.Persistence(err, "failed to start transaction")
	}
	if err := uow.ChatMessageRepository().Create(ctx, &botMessage); err != nil {
		uow.Rollback()
		return nil, apperror.Persistence(err, "failed to store bot message")
	}
	if err := uow.QueryRecordRepository().Create(ctx, &queryRecord); err != nil {
		uow.Rollback()
		return nil, apperror.Persistence(err, "failed to store query record")
	}
	if err := uow.Commit(); err != nil {
		return nil, apperror.Persistence(err, "failed to commit turn")
	}

	cs.publishTurn(ctx, chatSession.Id, userMessage.Id, queryType, elapsed)

	return &dto.SendChatResponse{
		ChatId:        chatSession.Id,
		UserMessageId: userMessage.Id,
		BotMessageId:  botMessage.Id,
		UserMessage:   userMessage.Message,
		BotResponse:   botMessage.Message,
		ResponseTime:  elapsed.Seconds(),
	}, nil
}

// DeleteSession hard-deletes a session; messages, query records and
// feedback entries go with it through the FK cascade.
func (cs *chatbotService) DeleteSession(ctx context.Context, sessionId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	if _, err := cs.resolveSession(ctx, uow, sessionId); err != nil {
		return err
	}

	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return apperror.Persistence(err, "failed to delete chat session")
	}

	cs.sessionCache.Delete(sessionId.String())
	return nil
}

// resolveSession checks the cache before hitting the database. Sessions
// are immutable after creation so a cache hit needs no revalidation.
func (cs *chatbotService) resolveSession(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) (*entity.ChatSession, error) {
	if cached, found := cs.sessionCache.Get(sessionId.String()); found {
		return cached, nil
	}

	chatSession, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, apperror.Persistence(err, "failed to look up chat session")
	}
	if chatSession == nil {
		return nil, apperror.NotFound("chat session not found")
	}

	cs.sessionCache.Save(chatSession)
	return chatSession, nil
}

// generate calls the gateway with the configured timeout and measures
// the latency of the call alone, on the monotonic clock.
func (cs *chatbotService) generate(ctx context.Context, prompt string) (string, time.Duration, error) {
	timeout := time.Duration(cs.aiConfig.TimeoutSeconds) * time.Second
	gatewayCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	answer, err := cs.llmProvider.Generate(gatewayCtx, prompt, llm.WithMaxTokens(cs.aiConfig.MaxTokens))
	elapsed := time.Since(start)

	if err != nil {
		return "", elapsed, err
	}
	return answer, elapsed, nil
}

func (cs *chatbotService) publishTurn(ctx context.Context, sessionId, messageId uuid.UUID, queryType string, elapsed time.Duration) {
	// Nil publisher means no analytics bus is wired, same convention as
	// the NATS publisher.
	if cs.publisherService == nil {
		return
	}

	payload := dto.QueryCompletedMessage{
		ChatSessionId:  sessionId,
		ChatMessageId:  messageId,
		QueryType:      queryType,
		ResponseTimeMs: elapsed.Milliseconds(),
		Provider:       cs.aiConfig.LLMProvider,
		Model:          cs.aiConfig.LLMModel,
		OccurredAt:     time.Now(),
	}

	payloadJson, err := json.Marshal(payload)
	if err != nil {
		cs.log.Warn("chatbot", "Failed to marshal turn analytics payload", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	// Analytics is auxiliary, a publish failure never fails the turn.
	if err := cs.publisherService.Publish(ctx, payloadJson); err != nil {
		cs.log.Warn("chatbot", "Failed to publish turn analytics", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
