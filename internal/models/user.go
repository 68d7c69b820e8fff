package models

import "database/sql"

// User - подписчик тарифа на приёмы пищи.
type User struct {
	ID             string
	Name           string
	Phone          string
	Role           string
	RemainingMeals int
	// TelegramChatID - привязанный Telegram-чат для внешних уведомлений.
	// NULL, если пользователь не привязывал Telegram.
	TelegramChatID sql.NullInt64
}

// PublicUser - представление пользователя для JSON-ответов API.
type PublicUser struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	Role           string `json:"role"`
	RemainingMeals int    `json:"remainingMeals"`
}

// Public возвращает представление без служебных полей.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:             u.ID,
		Name:           u.Name,
		Phone:          u.Phone,
		Role:           u.Role,
		RemainingMeals: u.RemainingMeals,
	}
}
