package bootstrap

import (
	"context"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"sync-notes-be/internal/config"
	"sync-notes-be/internal/controller"
	"sync-notes-be/internal/engine"
	"sync-notes-be/internal/pkg/logger"
	"sync-notes-be/internal/repository/unitofwork"
	"sync-notes-be/internal/service"
	"sync-notes-be/internal/websocket"
	pktNats "sync-notes-be/pkg/nats"
)

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	NotebookController controller.INotebookController
	NoteController     controller.INoteController
	TaskController     controller.ITaskController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	SweeperService  service.ISweeperService

	WebSocketHub *websocket.Hub

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Sync Engine
	// Quotas and retention are resolved once here; the components never
	// consult ambient configuration afterwards.
	tombstones := engine.NewTombstoneManager(cfg.Sync.Retention, sysLogger)
	quotas := engine.NewQuotaEnforcer(cfg.Sync.Quotas, tombstones)
	resolver := engine.NewParentResolver()

	// 3. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
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

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/sync-hints.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Services
	changePublisher := service.NewPublisherService(cfg.Sync.ChangeTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.Sync.ChangeTopic, wsHub, natsPub)
	sweeperService := service.NewSweeperService(db, pubSub, cfg.Sync.SweepTopic, cfg.Sync.SweepInterval, tombstones, sysLogger)

	authService := service.NewAuthService(uowFactory, cfg.Auth.JwtSecret, cfg.Auth.JwtTTL)
	notebookService := service.NewNotebookService(uowFactory, resolver, quotas, tombstones, changePublisher)
	noteService := service.NewNoteService(uowFactory, resolver, quotas, tombstones, changePublisher)
	taskService := service.NewTaskService(uowFactory, resolver, quotas, tombstones, changePublisher)

	// 5. Controllers
	return &Container{
		AuthController:     controller.NewAuthController(authService),
		NotebookController: controller.NewNotebookController(notebookService),
		NoteController:     controller.NewNoteController(noteService),
		TaskController:     controller.NewTaskController(taskService),

		ConsumerService: consumerService,
		SweeperService:  sweeperService,

		WebSocketHub: wsHub,
		Logger:       sysLogger,
	}
}
