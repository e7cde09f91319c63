package apiapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ivankudzin/muji/internal/bridge"
	"github.com/ivankudzin/muji/internal/config"
	"github.com/ivankudzin/muji/internal/services/attachments"
	authsvc "github.com/ivankudzin/muji/internal/services/auth"
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
	AuthService     *authsvc.Service
	ChatService     *chatsvc.Service
	OrderService    *ordersvc.Service
	ProfileService  *profilesvc.Service
	SettingsService *settingssvc.Service
	Uploads         *attachments.Storage
	Bridge          *bridge.Bridge
	Logger          *zap.Logger
	Config          config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	secure := deps.Config.Env == "prod"

	var notifier handlers.Notifier
	if deps.Bridge != nil {
		notifier = deps.Bridge
	}

	authHandler := handlers.NewAuthHandler(deps.AuthService, deps.Config.Auth.SessionTTL, secure)
	profileHandler := handlers.NewProfileHandler(deps.Store, deps.ProfileService)
	chatHandler := handlers.NewChatHandler(deps.Store, deps.ChatService, deps.Uploads, notifier, deps.Logger)
	paymentHandler := handlers.NewPaymentHandler(deps.Store, deps.OrderService)
	settingsHandler := handlers.NewSettingsHandler(deps.Store, deps.SettingsService)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httperrors.Write(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/telegram/auth", authHandler.Telegram)
		r.Post("/logout", authHandler.Logout)

		r.Get("/profiles", profileHandler.List)
		r.Get("/profiles/{profileID}", profileHandler.Get)
		r.Get("/profiles/{profileID}/comments", profileHandler.Comments)
		r.Post("/profiles/{profileID}/comments", profileHandler.AddComment)

		r.Get("/settings/app", settingsHandler.App)
		r.Get("/settings/banner", settingsHandler.Banner)
		r.Get("/settings/wallets", settingsHandler.Wallets)
		r.Post("/promocodes/validate", settingsHandler.ValidatePromocode)
		r.Get("/payment/qr/{wallet}", paymentHandler.QR)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(deps.AuthService, deps.Logger))

			r.Get("/me", authHandler.Me)

			r.Get("/chats/{profileID}/messages", chatHandler.Messages)
			r.Post("/chats/{profileID}/messages", chatHandler.Send)
			r.Get("/chats/{profileID}/updates", chatHandler.Updates)
			r.Post("/chats/{profileID}/mark_read", chatHandler.MarkRead)
			r.Get("/user/chats", chatHandler.UserChats)

			r.Post("/payment/crypto", paymentHandler.Quote)
			r.Get("/user/orders", paymentHandler.UserOrders)
			r.Delete("/orders/{orderID}", paymentHandler.DeleteOrder)
		})
	})
}
