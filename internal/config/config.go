// internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"thirtymeals/internal/constants"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL string
	Port        string
	AppEnv      string
	JWTSecret   string

	// Telegram - внешний канал уведомлений (WhatsApp-подобная доставка).
	TelegramToken string
	OpsChatID     int64

	// Параметры внешнего советника по времени уведомлений.
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string

	ChatPollInterval time.Duration
}

// LoadConfig загружает конфигурацию из переменных окружения.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		Port:             os.Getenv("PORT"),
		AppEnv:           os.Getenv("ENV"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		TelegramToken:    os.Getenv("TELEGRAM_APITOKEN"),
		LLMAPIKey:        os.Getenv("LLM_API_KEY"),
		LLMBaseURL:       os.Getenv("LLM_BASE_URL"),
		LLMModel:         os.Getenv("LLM_MODEL"),
		ChatPollInterval: constants.CHAT_POLL_INTERVAL,
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	var err error
	cfg.OpsChatID, err = strconv.ParseInt(os.Getenv("OPS_CHAT_ID"), 10, 64)
	if err != nil {
		log.Printf("Предупреждение: не удалось прочитать OPS_CHAT_ID: %v. Установлено в 0.", err)
		cfg.OpsChatID = 0
	}

	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = "https://api.openai.com/v1"
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = "gpt-3.5-turbo"
	}

	if cfg.DatabaseURL == "" {
		log.Println("Критическая ошибка: DATABASE_URL не установлен.")
	}
	if cfg.JWTSecret == "" {
		log.Println("Критическая ошибка: JWT_SECRET не установлен. Авторизация работать не будет.")
	}
	if cfg.TelegramToken == "" {
		log.Println("Предупреждение: TELEGRAM_APITOKEN не установлен. Внешние уведомления будут только логироваться.")
	}
	if cfg.LLMAPIKey == "" {
		log.Println("Предупреждение: LLM_API_KEY не установлен. Подсказки времени уведомлений работать не будут.")
	}

	log.Println("Конфигурация загружена.")
	return cfg, nil
}
