// Файл: internal/store/store.go
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// ErrNotFound возвращается, когда запрошенная сущность отсутствует в базе.
var ErrNotFound = errors.New("запись не найдена")

// ErrNoMeals возвращается транзакцией создания заказа, когда баланс
// пользователя исчерпан и списать приём пищи нельзя.
var ErrNoMeals = errors.New("баланс приёмов пищи исчерпан")

// ErrDuplicatePhone возвращается при попытке завести пользователя с уже
// зарегистрированным номером телефона.
var ErrDuplicatePhone = errors.New("номер телефона уже зарегистрирован")

// Store - репозиторий поверх PostgreSQL. Передаётся явно через конструкторы,
// глобального состояния нет.
type Store struct {
	db *sql.DB
}

// New открывает соединение с базой, проверяет его и создаёт схему.
func New(databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL не установлена")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(20)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ошибка проверки соединения с базой данных: %w", err)
	}
	log.Println("Успешное подключение к базе данных.")

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewWithDB оборачивает уже открытое соединение. Используется в тестах (sqlmock).
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close закрывает соединение с базой.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate создаёт таблицы, если их ещё нет.
func (s *Store) migrate() error {
	createTablesSQL := `
        CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            name VARCHAR(100) NOT NULL,
            phone VARCHAR(20) UNIQUE NOT NULL,
            role TEXT NOT NULL DEFAULT 'user',
            remaining_meals INT NOT NULL DEFAULT 0 CHECK (remaining_meals >= 0),
            telegram_chat_id BIGINT,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS menu_items (
            id TEXT PRIMARY KEY,
            name VARCHAR(100) NOT NULL,
            description TEXT NOT NULL DEFAULT ''
        );
        CREATE TABLE IF NOT EXISTS todays_menu (
            position INT PRIMARY KEY,
            item_id TEXT NOT NULL REFERENCES menu_items(id)
        );
        CREATE TABLE IF NOT EXISTS orders (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL REFERENCES users(id),
            user_name VARCHAR(100) NOT NULL,
            meal_type TEXT NOT NULL,
            meal_choice TEXT NOT NULL,
            date DATE NOT NULL,
            status TEXT NOT NULL DEFAULT 'Pending',
            delivery_otp CHAR(6) NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS messages (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL REFERENCES users(id),
            text TEXT NOT NULL,
            sender TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id);
        CREATE INDEX IF NOT EXISTS idx_messages_user ON messages(user_id, created_at);
    `
	if _, err := s.db.Exec(createTablesSQL); err != nil {
		return fmt.Errorf("ошибка создания таблиц: %w", err)
	}
	log.Println("Схема базы данных проверена.")
	return nil
}
