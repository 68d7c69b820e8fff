package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"thirtymeals/internal/advisor"
	"thirtymeals/internal/api"
	"thirtymeals/internal/auth"
	"thirtymeals/internal/chat"
	"thirtymeals/internal/config"
	"thirtymeals/internal/constants"
	"thirtymeals/internal/models"
	"thirtymeals/internal/notify"
	"thirtymeals/internal/orders"
	"thirtymeals/internal/schedule"
	"thirtymeals/internal/store"
)

func main() {
	// --- Блок инициализации ---
	if err := godotenv.Load(); err != nil {
		log.Println("Предупреждение: не удалось загрузить файл .env. Переменные окружения должны быть установлены иным способом.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось загрузить конфигурацию: %v", err)
	}

	st, err := store.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось инициализировать базу данных: %v", err)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	notifier, err := notify.NewTelegramChannel(cfg.TelegramToken, cfg.AppEnv == "dev", cfg.OpsChatID,
		func(phone string) (int64, bool) {
			return st.GetTelegramChatByPhone(context.Background(), phone)
		})
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось инициализировать канал уведомлений: %v", err)
	}

	orderService := orders.NewService(st)
	relay := chat.NewRelay(st, notifier)
	authManager := auth.NewManager()
	advisorClient := advisor.NewClient(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel)

	scheduler := schedule.NewScheduler()
	scheduler.Start()
	defer scheduler.Stop()

	// Серверный опросчик переписки: замечает новые сообщения пользователей
	// и дёргает операционный чат админов. Push в системе нет - только опрос.
	poller := chat.NewPoller(cfg.ChatPollInterval,
		func(ctx context.Context, since time.Time) ([]models.Message, error) {
			return st.ListMessagesSince(ctx, since)
		},
		func(msgs []models.Message) {
			for _, m := range msgs {
				if m.Sender == constants.SENDER_USER {
					notifier.NotifyOps("Новое сообщение от пользователя " + m.UserID + ": " + m.Text)
				}
			}
		})
	poller.Start(ctx)
	defer poller.Stop()

	// --- Настройка роутера и Middleware ---
	apiRouter := chi.NewRouter()

	apiRouter.Use(middleware.Logger)
	apiRouter.Use(middleware.Recoverer)
	apiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	api.SetupRoutes(apiRouter, api.ApiDependencies{
		Config:    cfg,
		Store:     st,
		Orders:    orderService,
		Relay:     relay,
		Auth:      authManager,
		Advisor:   advisorClient,
		Scheduler: scheduler,
		Notifier:  notifier,
	})

	apiRouter.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: apiRouter,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			log.Printf("Ошибка остановки HTTP-сервера: %v", errShutdown)
		}
	}()

	log.Printf("Запуск HTTP-сервера на порту %s", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("КРИТИЧЕСКАЯ ОШИБКА: не удалось запустить HTTP-сервер: %v", err)
	}
	log.Println("Сервер остановлен.")
}
