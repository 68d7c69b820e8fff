package store

import (
	"context"
	"log"
	"time"

	"thirtymeals/internal/models"
)

// AppendMessage дописывает сообщение в лог переписки. Лог только растёт:
// существующие сообщения никогда не меняются и не удаляются.
func (s *Store) AppendMessage(ctx context.Context, m models.Message) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO messages (id, user_id, text, sender, created_at)
        VALUES ($1, $2, $3, $4, $5)`,
		m.ID, m.UserID, m.Text, m.Sender, m.Timestamp)
	if err != nil {
		log.Printf("AppendMessage: ошибка добавления сообщения для %s: %v", m.UserID, err)
		return err
	}
	return nil
}

// ListMessages возвращает переписку пользователя по возрастанию времени.
func (s *Store) ListMessages(ctx context.Context, userID string) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, user_id, text, sender, created_at
        FROM messages WHERE user_id = $1
        ORDER BY created_at ASC`, userID)
	if err != nil {
		log.Printf("ListMessages: ошибка получения сообщений для %s: %v", userID, err)
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

// ListMessagesSince возвращает все сообщения системы новее отметки времени.
// Используется серверным опросчиком для наблюдения за новыми сообщениями.
func (s *Store) ListMessagesSince(ctx context.Context, since time.Time) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, user_id, text, sender, created_at
        FROM messages WHERE created_at > $1
        ORDER BY created_at ASC`, since)
	if err != nil {
		log.Printf("ListMessagesSince: ошибка выборки новых сообщений: %v", err)
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func scanMessages(rows interface {
	Next() bool
	Scan(...interface{}) error
	Err() error
}) ([]models.Message, error) {
	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if errScan := rows.Scan(&m.ID, &m.UserID, &m.Text, &m.Sender, &m.Timestamp); errScan != nil {
			log.Printf("scanMessages: ошибка сканирования сообщения: %v", errScan)
			continue
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
