// Пакет chat реализует переписку пользователя с админами: дописываемый лог
// сообщений с разветвлением по получателям. Push-доставки нет - наблюдатели
// переопрашивают лог с фиксированным интервалом.
package chat

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"thirtymeals/internal/models"
)

// ErrEmptyMessage возвращается при попытке отправить пустой текст.
var ErrEmptyMessage = errors.New("текст сообщения пуст")

// Store - операции хранилища, нужные переписке.
type Store interface {
	AppendMessage(ctx context.Context, m models.Message) error
	ListMessages(ctx context.Context, userID string) ([]models.Message, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Notifier - внешний канал доставки (WhatsApp-подобный). Без подтверждений.
type Notifier interface {
	Send(phone, text string) error
}

// Relay - ретранслятор сообщений.
type Relay struct {
	store    Store
	notifier Notifier
	now      func() time.Time
}

// NewRelay создаёт ретранслятор. notifier может быть nil - тогда внешние
// уведомления при рассылке не отправляются.
func NewRelay(st Store, notifier Notifier) *Relay {
	return &Relay{store: st, notifier: notifier, now: time.Now}
}

// Send разветвляет текст по получателям: по одному сообщению на каждого,
// с общей отметкой времени вызова. Прежние сообщения не трогаются.
func (r *Relay) Send(ctx context.Context, recipientIDs []string, text, sender string) error {
	if text == "" {
		return ErrEmptyMessage
	}

	ts := r.now()
	for _, userID := range recipientIDs {
		msg := models.Message{
			ID:        uuid.NewString(),
			UserID:    userID,
			Text:      text,
			Sender:    sender,
			Timestamp: ts,
		}
		if err := r.store.AppendMessage(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

// Fetch возвращает переписку пользователя по возрастанию времени.
// Пустой userID - пустая выборка, не ошибка.
func (r *Relay) Fetch(ctx context.Context, userID string) ([]models.Message, error) {
	if userID == "" {
		return []models.Message{}, nil
	}
	msgs, err := r.store.ListMessages(ctx, userID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, nil
}

// Broadcast отправляет текст всем пользователям и вдогонку дёргает внешний
// канал по каждому получателю. Внешняя доставка - fire-and-forget: её сбой
// логируется и не влияет на успех рассылки, отката записей нет.
func (r *Relay) Broadcast(ctx context.Context, text string) error {
	users, err := r.store.ListUsers(ctx)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	if err := r.Send(ctx, ids, text, "admin"); err != nil {
		return err
	}

	if r.notifier != nil {
		for _, u := range users {
			go func(phone string) {
				if errSend := r.notifier.Send(phone, text); errSend != nil {
					log.Printf("Broadcast: внешняя доставка на %s не удалась: %v", phone, errSend)
				}
			}(u.Phone)
		}
	}
	log.Printf("Рассылка доставлена в %d переписок.", len(ids))
	return nil
}
