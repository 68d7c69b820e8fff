package constants

import "time"

// Типы приёмов пищи
const (
	MEAL_TYPE_LUNCH  = "Lunch"
	MEAL_TYPE_DINNER = "Dinner"
)

// Варианты базы приёма пищи
const (
	MEAL_CHOICE_RICE  = "Rice + 4 Rotis"
	MEAL_CHOICE_ROTIS = "5 Rotis"
)

// Статусы заказа
const (
	STATUS_PENDING   = "Pending"
	STATUS_DELIVERED = "Delivered"
)

// Роли пользователей
const (
	ROLE_USER  = "user"
	ROLE_ADMIN = "admin"
)

// Отправители сообщений в чате
const (
	SENDER_USER  = "user"
	SENDER_ADMIN = "admin"
)

// MAX_MEAL_BALANCE - верхняя граница баланса при ручной правке админом.
const MAX_MEAL_BALANCE = 100

// CHAT_POLL_INTERVAL - единый интервал опроса чата.
const CHAT_POLL_INTERVAL = 5 * time.Second

// LOGIN_OTP_TTL - время жизни кода входа.
const LOGIN_OTP_TTL = 5 * time.Minute

// Размер выборки последних заказов для аналитики.
const (
	RECENT_ORDERS_USER  = 5
	RECENT_ORDERS_ADMIN = 10
)

// CHART_DAYS_LIMIT - сколько последних активных дней попадает в график.
const CHART_DAYS_LIMIT = 30

// DATE_LAYOUT - календарная дата в формате ISO, используется как ключ группировки.
const DATE_LAYOUT = "2006-01-02"

// MealTypeValid проверяет, что тип приёма пищи известен системе.
func MealTypeValid(mealType string) bool {
	return mealType == MEAL_TYPE_LUNCH || mealType == MEAL_TYPE_DINNER
}

// MealChoiceValid проверяет, что выбранная база входит в меню тарифа.
func MealChoiceValid(choice string) bool {
	return choice == MEAL_CHOICE_RICE || choice == MEAL_CHOICE_ROTIS
}
