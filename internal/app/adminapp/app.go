package adminapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ivankudzin/muji/internal/config"
	adminauthsvc "github.com/ivankudzin/muji/internal/services/adminauth"
	chatsvc "github.com/ivankudzin/muji/internal/services/chats"
	ordersvc "github.com/ivankudzin/muji/internal/services/orders"
	profilesvc "github.com/ivankudzin/muji/internal/services/profiles"
	settingssvc "github.com/ivankudzin/muji/internal/services/settings"
	"github.com/ivankudzin/muji/internal/store"
)

// App is the operator panel process. It shares the document file with the
// API process; version checks on save keep concurrent writers honest.
type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	store      *store.Store
	httpRouter http.Handler
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	if cfg.Auth.AdminPasswordHash == "" {
		return nil, fmt.Errorf("admin password hash is not configured")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	documentStore := store.New(cfg.Store.Path,
		store.WithCacheTTL(cfg.Store.CacheTTL),
		store.WithLogger(log),
	)

	adminAuth := adminauthsvc.NewService(
		cfg.Auth.AdminUsername,
		cfg.Auth.AdminPasswordHash,
		cfg.Auth.JWTSecret,
		cfg.Auth.AdminTTL,
		log,
	)
	orderService := ordersvc.NewService(log)
	chatService := chatsvc.NewService(orderService, log)
	profileService := profilesvc.NewService(log)
	settingsService := settingssvc.NewService()

	RegisterRoutes(r, Dependencies{
		Store:           documentStore,
		AdminAuth:       adminAuth,
		ChatService:     chatService,
		OrderService:    orderService,
		ProfileService:  profileService,
		SettingsService: settingsService,
		Logger:          log,
		Config:          cfg,
	})

	server := &http.Server{
		Addr:         cfg.Admin.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Admin.ReadTimeout,
		WriteTimeout: cfg.Admin.WriteTimeout,
		IdleTimeout:  cfg.Admin.IdleTimeout,
	}

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		store:      documentStore,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("admin server started", zap.String("addr", a.cfg.Admin.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
