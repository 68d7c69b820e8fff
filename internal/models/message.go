package models

import "time"

// Message - сообщение в переписке пользователя с админами.
// Лог только дописывается: правок и удалений нет.
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"` // "user" или "admin"
	Timestamp time.Time `json:"timestamp"`
}
