package adminapp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ivankudzin/muji/internal/config"
	adminauthsvc "github.com/ivankudzin/muji/internal/services/adminauth"
	chatsvc "github.com/ivankudzin/muji/internal/services/chats"
	ordersvc "github.com/ivankudzin/muji/internal/services/orders"
	profilesvc "github.com/ivankudzin/muji/internal/services/profiles"
	settingssvc "github.com/ivankudzin/muji/internal/services/settings"
	"github.com/ivankudzin/muji/internal/store"
	httperrors "github.com/ivankudzin/muji/internal/transport/http/errors"
	"github.com/ivankudzin/muji/internal/transport/http/handlers"
)

type Dependencies struct {
	Store           *store.Store
	AdminAuth       *adminauthsvc.Service
	ChatService     *chatsvc.Service
	OrderService    *ordersvc.Service
	ProfileService  *profilesvc.Service
	SettingsService *settingssvc.Service
	Logger          *zap.Logger
	Config          config.Config
}

func ApplyMiddlewares(r chi.Router, log *zap.Logger) {
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	if log != nil {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				start := time.Now()
				next.ServeHTTP(w, r)
				log.Info("http_request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Duration("duration", time.Since(start)),
				)
			})
		})
	}
}

// AuthMiddleware validates the admin cookie token on every panel route.
func AuthMiddleware(adminAuth *adminauthsvc.Service, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(handlers.AdminCookieName)
			if err != nil || cookie.Value == "" {
				httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
					Code:    "UNAUTHORIZED",
					Message: "missing admin session",
				})
				return
			}

			if _, err := adminAuth.Parse(cookie.Value); err != nil {
				if log != nil {
					log.Debug("admin token rejected", zap.Error(err))
				}
				httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
					Code:    "UNAUTHORIZED",
					Message: "invalid or expired admin session",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	secure := deps.Config.Env == "prod"

	adminAuthHandler := handlers.NewAdminAuthHandler(deps.AdminAuth, secure)
	profileHandler := handlers.NewAdminProfileHandler(deps.Store, deps.ProfileService)
	chatHandler := handlers.NewAdminChatHandler(deps.Store, deps.ChatService)
	orderHandler := handlers.NewAdminOrderHandler(deps.Store, deps.OrderService, deps.ChatService)
	settingsHandler := handlers.NewAdminSettingsHandler(deps.Store, deps.SettingsService)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httperrors.Write(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/admin/api", func(r chi.Router) {
		r.Post("/login", adminAuthHandler.Login)
		r.Post("/logout", adminAuthHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(deps.AdminAuth, deps.Logger))

			r.Get("/profiles", profileHandler.List)
			r.Post("/profiles", profileHandler.Create)
			r.Post("/profiles/{profileID}/toggle", profileHandler.Toggle)
			r.Delete("/profiles/{profileID}", profileHandler.Delete)

			r.Get("/chats", chatHandler.List)
			r.Get("/chats/{chatID}/messages", chatHandler.Messages)
			r.Post("/chats/{chatID}/reply", chatHandler.Reply)
			r.Post("/chats/{chatID}/mark_read", chatHandler.MarkRead)

			r.Get("/orders", orderHandler.List)
			r.Post("/orders/{orderID}/confirm", orderHandler.Confirm)

			r.Get("/stats", settingsHandler.Stats)
			r.Put("/settings/wallets", settingsHandler.UpdateWallets)
			r.Put("/settings/banner", settingsHandler.UpdateBanner)
			r.Put("/settings/bonus", settingsHandler.UpdateBonus)
		})
	})
}
