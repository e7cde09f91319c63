package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ivankudzin/muji/internal/bridge"
	"github.com/ivankudzin/muji/internal/config"
	s3infra "github.com/ivankudzin/muji/internal/infra/s3"
	"github.com/ivankudzin/muji/internal/infra/telegram"
	"github.com/ivankudzin/muji/internal/jobs/sweeper"
	redrepo "github.com/ivankudzin/muji/internal/repo/redis"
	"github.com/ivankudzin/muji/internal/services/attachments"
	authsvc "github.com/ivankudzin/muji/internal/services/auth"
	chatsvc "github.com/ivankudzin/muji/internal/services/chats"
	ordersvc "github.com/ivankudzin/muji/internal/services/orders"
	profilesvc "github.com/ivankudzin/muji/internal/services/profiles"
	settingssvc "github.com/ivankudzin/muji/internal/services/settings"
	"github.com/ivankudzin/muji/internal/store"
)

const bridgeShutdownGrace = 5 * time.Second

// App is the user-facing process: the Mini App HTTP API, the operator
// Telegram bridge and the expiry sweeper share one document store.
type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	store      *store.Store
	redis      *goredis.Client
	s3         *minio.Client
	bridge     *bridge.Bridge
	sweeper    *sweeper.Job
	httpRouter http.Handler

	bgCancel context.CancelFunc
	bgDone   sync.WaitGroup
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	documentStore := store.New(cfg.Store.Path,
		store.WithCacheTTL(cfg.Store.CacheTTL),
		store.WithLogger(log),
	)

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	sessionRepo := redrepo.NewSessionRepo(redisClient)

	var s3Client *minio.Client
	if c, err := s3infra.NewClient(cfg.S3); err != nil {
		log.Warn("s3 init failed, continuing in degraded mode", zap.Error(err))
	} else {
		s3Client = c
	}
	uploads := attachments.NewStorage(s3Client, cfg.S3.Bucket)

	authService := authsvc.NewService(cfg.Bot.Token, sessionRepo, cfg.Auth.SessionTTL, log)
	orderService := ordersvc.NewService(log)
	chatService := chatsvc.NewService(orderService, log)
	profileService := profilesvc.NewService(log)
	settingsService := settingssvc.NewService()

	var operatorBridge *bridge.Bridge
	if cfg.Bot.Token != "" && len(cfg.Bot.AdminIDs) > 0 {
		bot, err := telegram.NewBot(cfg.Bot.Token, log)
		if err != nil {
			log.Warn("telegram bot init failed, continuing without bridge", zap.Error(err))
		} else {
			operatorBridge = bridge.New(documentStore, chatService, bot, cfg.Bot.AdminIDs, log)
		}
	}

	sweepJob := sweeper.New(documentStore, orderService, cfg.Bot.SweepInterval, log)

	RegisterRoutes(r, Dependencies{
		Store:           documentStore,
		AuthService:     authService,
		ChatService:     chatService,
		OrderService:    orderService,
		ProfileService:  profileService,
		SettingsService: settingsService,
		Uploads:         uploads,
		Bridge:          operatorBridge,
		Logger:          log,
		Config:          cfg,
	})

	server := &http.Server{
		Addr:         cfg.API.Addr,
		Handler:      r,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
		IdleTimeout:  cfg.API.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		store:      documentStore,
		redis:      redisClient,
		s3:         s3Client,
		bridge:     operatorBridge,
		sweeper:    sweepJob,
		httpRouter: r,
	}, nil
}

// Run starts the background workers and serves HTTP until shutdown.
func (a *App) Run() error {
	bgCtx, cancel := context.WithCancel(context.Background())
	a.bgCancel = cancel

	a.bgDone.Add(1)
	go func() {
		defer a.bgDone.Done()
		a.sweeper.Run(bgCtx)
	}()

	if a.bridge != nil {
		a.bgDone.Add(1)
		go func() {
			defer a.bgDone.Done()
			if err := a.bridge.Run(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
				a.logger.Error("telegram bridge stopped", zap.Error(err))
			}
		}()
	}

	a.logger.Info("api server started", zap.String("addr", a.cfg.API.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops HTTP first, then gives the workers a bounded grace
// period to finish their current update.
func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}

	if a.bgCancel != nil {
		a.bgCancel()
		done := make(chan struct{})
		go func() {
			a.bgDone.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(bridgeShutdownGrace):
			a.logger.Warn("background workers did not stop in time")
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
