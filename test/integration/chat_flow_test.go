package integration

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ai-chatbot-be/internal/apperror"
	"ai-chatbot-be/internal/config"
	"ai-chatbot-be/internal/dto"
	"ai-chatbot-be/internal/entity"
	"ai-chatbot-be/internal/model"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/memory"
	"ai-chatbot-be/internal/repository/specification"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/internal/service"
	"ai-chatbot-be/pkg/database"
	"ai-chatbot-be/pkg/llm"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubGateway struct {
	response string
	err      error
	delay    time.Duration
}

func (s *stubGateway) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.Generate(ctx, "", options...)
}

func (s *stubGateway) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.response, s.err
}

func (s *stubGateway) Close() error { return nil }

type fixture struct {
	db         *gorm.DB
	uowFactory unitofwork.RepositoryFactory
	cache      *memory.SessionCache
	log        logger.ILogger
	pubSub     *gochannel.GoChannel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn, database.DefaultPoolConfig())
	require.NoError(t, err)

	require.NoError(t, gormDB.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error)
	require.NoError(t, gormDB.AutoMigrate(
		&model.User{},
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.QueryRecord{},
		&model.Feedback{},
	))

	return &fixture{
		db:         gormDB,
		uowFactory: unitofwork.NewRepositoryFactory(gormDB),
		cache:      memory.NewSessionCache(),
		log:        logger.NewZapLogger(filepath.Join(t.TempDir(), "test.log"), false),
		pubSub:     gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false)),
	}
}

func (f *fixture) chatbotService(gateway llm.LLMProvider) service.IChatbotService {
	publisher := service.NewPublisherService(f.pubSub, "QUERY_COMPLETED_TEST")
	return service.NewChatbotService(
		f.uowFactory,
		gateway,
		f.cache,
		publisher,
		f.log,
		nil,
		config.AIConfig{LLMProvider: "stub", LLMModel: "stub-model", MaxTokens: 2048, TimeoutSeconds: 5},
	)
}

func (f *fixture) createUser(t *testing.T) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	uow := f.uowFactory.NewUnitOfWork(ctx)

	user := entity.User{
		Id:        uuid.New(),
		Email:     "turn-test-" + uuid.NewString() + "@example.com",
		FullName:  "Integration Test User",
		CreatedAt: time.Now(),
	}

	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.UserRepository().Create(ctx, &user))
	require.NoError(t, uow.Commit())
	return user.Id
}

func (f *fixture) messageCount(t *testing.T, sessionId uuid.UUID) int64 {
	t.Helper()
	uow := f.uowFactory.NewUnitOfWork(context.Background())
	count, err := uow.ChatMessageRepository().Count(context.Background(),
		specification.ByChatSessionID{ChatSessionID: sessionId})
	require.NoError(t, err)
	return count
}

func (f *fixture) recordCount(t *testing.T, sessionId uuid.UUID) int64 {
	t.Helper()
	uow := f.uowFactory.NewUnitOfWork(context.Background())
	count, err := uow.QueryRecordRepository().Count(context.Background(),
		specification.ByChatSessionID{ChatSessionID: sessionId})
	require.NoError(t, err)
	return count
}

func (f *fixture) feedbackCount(t *testing.T, messageId uuid.UUID) int64 {
	t.Helper()
	uow := f.uowFactory.NewUnitOfWork(context.Background())
	count, err := uow.FeedbackRepository().Count(context.Background(),
		specification.ByChatMessageID{ChatMessageID: messageId})
	require.NoError(t, err)
	return count
}

func TestTurnExchangeFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userId := f.createUser(t)

	svc := f.chatbotService(&stubGateway{response: "I can help with that.", delay: 120 * time.Millisecond})

	sessionRes, err := svc.CreateSession(ctx, &dto.CreateSessionRequest{UserId: userId}, "127.0.0.1")
	require.NoError(t, err)
	sessionId := sessionRes.ChatId

	t.Run("successful turn writes two messages and one record", func(t *testing.T) {
		res, err := svc.SendChat(ctx, &dto.SendChatRequest{ChatId: sessionId, Message: "What is Go?"})
		require.NoError(t, err)

		assert.Equal(t, "What is Go?", res.UserMessage)
		assert.Equal(t, "I can help with that.", res.BotResponse)
		assert.GreaterOrEqual(t, res.ResponseTime, 0.12)
		assert.Less(t, res.ResponseTime, 5.0)

		assert.EqualValues(t, 2, f.messageCount(t, sessionId))
		assert.EqualValues(t, 1, f.recordCount(t, sessionId))

		uow := f.uowFactory.NewUnitOfWork(ctx)
		record, err := uow.QueryRecordRepository().FindOne(ctx,
			specification.ByChatMessageID{ChatMessageID: res.UserMessageId})
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, "general", record.QueryType)
		assert.GreaterOrEqual(t, record.ResponseTime, 120*time.Millisecond)
		assert.Equal(t, "stub", record.Metadata["provider"])
	})

	t.Run("second query record for the same message is rejected", func(t *testing.T) {
		uow := f.uowFactory.NewUnitOfWork(ctx)
		records, err := uow.QueryRecordRepository().FindAll(ctx,
			specification.ByChatSessionID{ChatSessionID: sessionId})
		require.NoError(t, err)
		require.Len(t, records, 1)

		duplicate := entity.QueryRecord{
			Id:            uuid.New(),
			ChatSessionId: sessionId,
			ChatMessageId: records[0].ChatMessageId,
			QueryType:     "general",
			ResponseTime:  time.Millisecond,
			CreatedAt:     time.Now(),
		}

		require.NoError(t, uow.Begin(ctx))
		err = uow.QueryRecordRepository().Create(ctx, &duplicate)
		if err == nil {
			err = uow.Commit()
		} else {
			uow.Rollback()
		}
		assert.Error(t, err, "unique index on chat_message_id must reject the duplicate")
	})

	t.Run("inference failure keeps the user message only", func(t *testing.T) {
		failing := f.chatbotService(&stubGateway{err: errors.New("model unavailable")})

		messagesBefore := f.messageCount(t, sessionId)
		recordsBefore := f.recordCount(t, sessionId)

		res, err := failing.SendChat(ctx, &dto.SendChatRequest{ChatId: sessionId, Message: "still there?"})
		assert.Nil(t, res)
		assert.True(t, apperror.IsInference(err), "got %v", err)

		assert.EqualValues(t, messagesBefore+1, f.messageCount(t, sessionId))
		assert.EqualValues(t, recordsBefore, f.recordCount(t, sessionId))
	})

	t.Run("unknown session writes nothing", func(t *testing.T) {
		phantom := uuid.New()
		res, err := svc.SendChat(ctx, &dto.SendChatRequest{ChatId: phantom, Message: "hello?"})

		assert.Nil(t, res)
		assert.True(t, apperror.IsNotFound(err), "got %v", err)
		assert.EqualValues(t, 0, f.messageCount(t, phantom))
	})

	t.Run("history returns messages in order", func(t *testing.T) {
		history, err := svc.GetChatHistory(ctx, sessionId)
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(history), 3)

		assert.Equal(t, "user", history[0].Sender)
		assert.Equal(t, "bot", history[1].Sender)
		for i := 1; i < len(history); i++ {
			assert.False(t, history[i].CreatedAt.Before(history[i-1].CreatedAt))
		}
	})

	t.Run("deleting the session cascades", func(t *testing.T) {
		// Attach feedback to a message first, so the delete has to
		// cascade through the whole session -> message -> feedback chain
		turn, err := svc.SendChat(ctx, &dto.SendChatRequest{ChatId: sessionId, Message: "last words"})
		require.NoError(t, err)

		feedbackSvc := service.NewFeedbackService(f.uowFactory, f.log, nil)
		_, err = feedbackSvc.SubmitFeedback(ctx, &dto.SubmitFeedbackRequest{
			ChatMessageId: turn.BotMessageId,
			Rating:        4,
		})
		require.NoError(t, err)
		require.EqualValues(t, 1, f.feedbackCount(t, turn.BotMessageId))

		require.NoError(t, svc.DeleteSession(ctx, sessionId))

		assert.EqualValues(t, 0, f.messageCount(t, sessionId))
		assert.EqualValues(t, 0, f.recordCount(t, sessionId))
		assert.EqualValues(t, 0, f.feedbackCount(t, turn.BotMessageId))

		_, err = svc.GetChatHistory(ctx, sessionId)
		assert.True(t, apperror.IsNotFound(err), "got %v", err)
	})
}

func TestFeedbackFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	userId := f.createUser(t)

	chatSvc := f.chatbotService(&stubGateway{response: "sure"})
	feedbackSvc := service.NewFeedbackService(f.uowFactory, f.log, nil)

	sessionRes, err := chatSvc.CreateSession(ctx, &dto.CreateSessionRequest{UserId: userId}, "")
	require.NoError(t, err)

	turn, err := chatSvc.SendChat(ctx, &dto.SendChatRequest{ChatId: sessionRes.ChatId, Message: "rate me"})
	require.NoError(t, err)

	comment := "helpful answer"
	first, err := feedbackSvc.SubmitFeedback(ctx, &dto.SubmitFeedbackRequest{
		ChatMessageId: turn.BotMessageId,
		Rating:        5,
		Comment:       &comment,
	})
	require.NoError(t, err)
	assert.Equal(t, "success", first.Status)
	assert.Equal(t, "excellent", first.RatingLabel)

	// A correction is a new entry, not an edit
	second, err := feedbackSvc.SubmitFeedback(ctx, &dto.SubmitFeedbackRequest{
		ChatMessageId: turn.BotMessageId,
		Rating:        1,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.FeedbackId, second.FeedbackId)

	entries, err := feedbackSvc.GetFeedbackForMessage(ctx, turn.BotMessageId)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, 5, entries[0].Rating)
	assert.Equal(t, 1, entries[1].Rating)

	_, err = feedbackSvc.SubmitFeedback(ctx, &dto.SubmitFeedbackRequest{
		ChatMessageId: uuid.New(),
		Rating:        3,
	})
	assert.True(t, apperror.IsNotFound(err), "got %v", err)

	// Deleting a message removes its feedback entries
	require.NoError(t, f.db.Exec(`DELETE FROM chat_messages WHERE id = ?`, turn.BotMessageId).Error)
	assert.EqualValues(t, 0, f.feedbackCount(t, turn.BotMessageId))
}
