package bootstrap

import (
	"context"
	"log"

	"ai-conversation-be/internal/config"
	"ai-conversation-be/internal/constant"
	"ai-conversation-be/internal/controller"
	"ai-conversation-be/internal/pkg/logger"
	"ai-conversation-be/internal/repository/contract"
	"ai-conversation-be/internal/repository/memory"
	"ai-conversation-be/internal/repository/unitofwork"
	"ai-conversation-be/internal/service"
	"ai-conversation-be/pkg/checkpoint"
	"ai-conversation-be/pkg/llm/factory"

	pktNats "ai-conversation-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AssistantController controller.IAssistantController

	// Background Services (Exposed for main.go to run)
	ProgressService service.IProgressService

	// Core checkpoint store, exposed for integration tooling
	Saver *checkpoint.Saver
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
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// Session Storage: redis for multi-instance deployments, in-process
	// cache otherwise
	var sessionStore contract.SessionStore
	if cfg.Session.Store == "redis" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		sessionStore = memory.NewRedisSessionRepository(rdb)
		log.Printf("[INFO] Using Session Store: REDIS")
	} else {
		sessionStore = memory.NewSessionRepository()
		log.Printf("[INFO] Using Session Store: MEMORY")
	}

	// NATS (optional; chat works without it)
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// 3. Services
	saver := checkpoint.NewSaver(uowFactory, sysLogger)

	assistantService := service.NewAssistantService(
		saver,
		llmProvider,
		sessionStore,
		natsPub,
		pubSub,
		cfg.Ai.HistoryLimit,
		sysLogger,
	)

	progressService := service.NewProgressService(
		pubSub,
		constant.TopicTurnSaved,
		uowFactory,
	)

	// 4. Controllers
	return &Container{
		AssistantController: controller.NewAssistantController(assistantService),
		ProgressService:     progressService,
		Saver:               saver,
	}
}
