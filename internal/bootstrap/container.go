package bootstrap

import (
	"context"
	"log"

	"ai-chatbot-be/internal/config"
	"ai-chatbot-be/internal/controller"
	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/internal/repository/memory"
	"ai-chatbot-be/internal/repository/unitofwork"
	"ai-chatbot-be/internal/service"
	"ai-chatbot-be/pkg/llm"
	"ai-chatbot-be/pkg/llm/factory"
	pktNats "ai-chatbot-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

const turnAnalyticsTopic = "QUERY_COMPLETED"

type Container struct {
	// Controllers
	ChatbotController  controller.IChatbotController
	FeedbackController controller.IFeedbackController

	// Background Services (Exposed for main.go to run)
	AnalyticsService service.IAnalyticsService

	// Infrastructure owned by the container, released on shutdown
	Logger      logger.ILogger
	LLMProvider llm.LLMProvider
	NatsPub     *pktNats.Publisher
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Initialize LLM Provider based on Config
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.HuggingFaceAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// Initialize In-Memory Session Cache
	sessionCache := memory.NewSessionCache()

	// NATS (optional: the services treat a nil publisher as "no broker")
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// 3. Services
	publisherService := service.NewPublisherService(pubSub, turnAnalyticsTopic)
	analyticsService := service.NewAnalyticsService(pubSub, turnAnalyticsTopic, sysLogger, natsPub)

	chatbotService := service.NewChatbotService(
		uowFactory,
		llmProvider,
		sessionCache,
		publisherService,
		sysLogger,
		nil, // no query classifier wired, every record is labeled "general"
		cfg.Ai,
	)
	feedbackService := service.NewFeedbackService(uowFactory, sysLogger, natsPub)

	// 4. Controllers
	chatbotController := controller.NewChatbotController(chatbotService)
	feedbackController := controller.NewFeedbackController(feedbackService)

	return &Container{
		ChatbotController:  chatbotController,
		FeedbackController: feedbackController,
		AnalyticsService:   analyticsService,
		Logger:             sysLogger,
		LLMProvider:        llmProvider,
		NatsPub:            natsPub,
	}
}

// Shutdown releases long-lived infrastructure.
func (c *Container) Shutdown(ctx context.Context) {
	if err := c.LLMProvider.Close(); err != nil {
		log.Printf("[WARN] Failed to close LLM provider: %v", err)
	}
	c.NatsPub.Close()
	_ = c.Logger.Sync()
}
