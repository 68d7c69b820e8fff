package api

import (
	"github.com/go-chi/chi/v5"

	"thirtymeals/internal/advisor"
	"thirtymeals/internal/auth"
	"thirtymeals/internal/chat"
	"thirtymeals/internal/config"
	"thirtymeals/internal/constants"
	"thirtymeals/internal/notify"
	"thirtymeals/internal/orders"
	"thirtymeals/internal/schedule"
	"thirtymeals/internal/store"
)

// ApiDependencies содержит зависимости для обработчиков API.
type ApiDependencies struct {
	Config    *config.Config
	Store     *store.Store
	Orders    *orders.Service
	Relay     *chat.Relay
	Auth      *auth.Manager
	Advisor   *advisor.Client
	Scheduler *schedule.Scheduler
	Notifier  *notify.TelegramChannel
}

// Api связывает обработчики с их зависимостями.
type Api struct {
	deps ApiDependencies
}

// SetupRoutes настраивает все маршруты для API.
func SetupRoutes(r *chi.Mux, deps ApiDependencies) {
	a := &Api{deps: deps}

	// Публичные маршруты входа
	r.Group(func(r chi.Router) {
		r.Post("/api/auth/request-otp", a.RequestLoginOtp)
		r.Post("/api/auth/verify-otp", a.VerifyLoginOtp)
	})

	r.Group(func(r chi.Router) {
		r.Use(a.AuthMiddleware())

		// --- Маршруты для обычных пользователей ---
		r.Get("/api/user/profile", a.GetUserProfile)
		r.Post("/api/user/profile", a.UpdateUserProfile)
		r.Get("/api/user/menu", a.GetTodaysMenu)
		r.Get("/api/user/orders", a.GetUserOrders)
		r.Post("/api/user/orders", a.CreateUserOrder)
		r.Get("/api/user/orders/{id}/otp-qr", a.GetOrderOtpQr)
		r.Get("/api/user/analytics", a.GetUserAnalytics)
		r.Get("/api/user/messages", a.GetUserMessages)
		r.Post("/api/user/messages", a.PostUserMessage)

		// --- Маршруты для админов ---
		r.Route("/api/admin", func(r chi.Router) {
			r.Use(a.RoleMiddleware(constants.ROLE_ADMIN))

			r.Get("/users", a.GetClients)
			r.Post("/users", a.CreateClient)
			r.Post("/users/{id}/balance", a.UpdateClientBalance)
			r.Get("/orders", a.GetOrders)
			r.Post("/orders/{id}/deliver", a.ConfirmDelivery)
			r.Get("/orders/export", a.ExportOrdersExcel)
			r.Get("/menu/catalog", a.GetMenuCatalog)
			r.Post("/menu/catalog", a.AddCatalogItem)
			r.Post("/menu", a.SetTodaysMenu)
			r.Get("/analytics", a.GetAdminAnalytics)
			r.Post("/broadcast", a.Broadcast)
			r.Post("/broadcast/schedule", a.ScheduleBroadcast)
			r.Post("/suggest-time", a.SuggestNotificationTime)
			r.Get("/messages/{userId}", a.GetClientMessages)
			r.Post("/messages/{userId}", a.PostClientMessage)
		})
	})
}
