// Пакет notify - внешний канал уведомлений (WhatsApp-подобная доставка).
// Доставка fire-and-forget: подтверждений ядру не возвращается.
package notify

import (
	"fmt"
	"log"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
)

// ChatResolver сопоставляет номер телефона привязанному Telegram-чату.
type ChatResolver func(phone string) (int64, bool)

// TelegramChannel доставляет уведомления через Telegram-бота тем
// пользователям, кто привязал чат; остальным доставка только логируется.
type TelegramChannel struct {
	api       *tgbotapi.BotAPI
	resolve   ChatResolver
	opsChatID int64
}

// NewTelegramChannel инициализирует бота. Пустой токен - канал-заглушка,
// который пишет уведомления в лог (полезно в dev-окружении без бота).
func NewTelegramChannel(token string, debug bool, opsChatID int64, resolve ChatResolver) (*TelegramChannel, error) {
	ch := &TelegramChannel{resolve: resolve, opsChatID: opsChatID}
	if token == "" {
		log.Println("Уведомления: токен не задан, внешние сообщения будут только логироваться.")
		return ch, nil
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Telegram Bot API: %w", err)
	}
	api.Debug = debug
	log.Printf("Авторизован как аккаунт %s", api.Self.UserName)

	ch.api = api
	return ch, nil
}

// Send отправляет текст по номеру телефона. Ошибки доставки возвращаются
// вызывающему только для логирования - откатов они не вызывают.
func (c *TelegramChannel) Send(phone, text string) error {
	if c.api == nil {
		log.Printf("Уведомление (заглушка) для %s: %.80s", phone, text)
		return nil
	}

	chatID, ok := c.resolve(phone)
	if !ok {
		log.Printf("Уведомление для %s пропущено: Telegram-чат не привязан.", phone)
		return nil
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("ошибка отправки уведомления в чат %d: %w", chatID, err)
	}
	return nil
}

// NotifyOps шлёт служебное сообщение в операционный чат админов
// (например, о новых сообщениях пользователей).
func (c *TelegramChannel) NotifyOps(text string) {
	if c.api == nil || c.opsChatID == 0 {
		log.Printf("Служебное уведомление (заглушка): %.120s", text)
		return
	}
	msg := tgbotapi.NewMessage(c.opsChatID, text)
	if _, err := c.api.Send(msg); err != nil {
		log.Printf("NotifyOps: ошибка отправки в операционный чат: %v", err)
	}
}
