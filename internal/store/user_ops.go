package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/lib/pq"

	"thirtymeals/internal/models"
)

const userColumns = "id, name, phone, role, remaining_meals, telegram_chat_id"

func scanUser(row interface{ Scan(...interface{}) error }) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Phone, &u.Role, &u.RemainingMeals, &u.TelegramChatID)
	return u, err
}

// GetUser извлекает пользователя по его ID.
func (s *Store) GetUser(ctx context.Context, id string) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id))
	if err == sql.ErrNoRows {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		log.Printf("GetUser: ошибка получения пользователя %s: %v", id, err)
		return models.User{}, err
	}
	return u, nil
}

// GetUserByPhone извлекает пользователя по номеру телефона. Используется при входе.
func (s *Store) GetUserByPhone(ctx context.Context, phone string) (models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE phone = $1", phone))
	if err == sql.ErrNoRows {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		log.Printf("GetUserByPhone: ошибка поиска по телефону %s: %v", phone, err)
		return models.User{}, err
	}
	return u, nil
}

// ListUsers возвращает всех пользователей, отсортированных по имени.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY name ASC")
	if err != nil {
		log.Printf("ListUsers: ошибка запроса списка пользователей: %v", err)
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, errScan := scanUser(rows)
		if errScan != nil {
			log.Printf("ListUsers: ошибка сканирования пользователя: %v", errScan)
			continue
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateUser добавляет нового пользователя (подписчика тарифа).
func (s *Store) CreateUser(ctx context.Context, u models.User) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO users (id, name, phone, role, remaining_meals, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, NOW(), NOW())`,
		u.ID, u.Name, u.Phone, u.Role, u.RemainingMeals)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicatePhone
		}
		log.Printf("CreateUser: ошибка добавления пользователя %s (%s): %v", u.Name, u.Phone, err)
		return err
	}
	log.Printf("Пользователь %s (%s) добавлен.", u.Name, u.Phone)
	return nil
}

// UpdateUserName обновляет имя пользователя. Правка профиля ограничена именем.
func (s *Store) UpdateUserName(ctx context.Context, id, name string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET name = $1, updated_at = NOW() WHERE id = $2", name, id)
	if err != nil {
		log.Printf("UpdateUserName: ошибка обновления имени для %s: %v", id, err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SetMealBalance выставляет баланс приёмов пищи напрямую (правка админом).
// Проверка диапазона выполняется на уровне сервиса.
func (s *Store) SetMealBalance(ctx context.Context, id string, meals int) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET remaining_meals = $1, updated_at = NOW() WHERE id = $2", meals, id)
	if err != nil {
		log.Printf("SetMealBalance: ошибка обновления баланса для %s: %v", id, err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	log.Printf("Баланс пользователя %s выставлен в %d.", id, meals)
	return nil
}

// GetTelegramChatByPhone возвращает привязанный Telegram-чат по телефону.
// Второе значение false, если чат не привязан или пользователь неизвестен.
func (s *Store) GetTelegramChatByPhone(ctx context.Context, phone string) (int64, bool) {
	var chatID sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT telegram_chat_id FROM users WHERE phone = $1", phone).Scan(&chatID)
	if err != nil || !chatID.Valid {
		return 0, false
	}
	return chatID.Int64, true
}

// LinkTelegramChat привязывает Telegram-чат к пользователю для внешних уведомлений.
func (s *Store) LinkTelegramChat(ctx context.Context, id string, chatID int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET telegram_chat_id = $1, updated_at = NOW() WHERE id = $2", chatID, id)
	if err != nil {
		return fmt.Errorf("ошибка привязки Telegram-чата: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
