package models

import "time"

// Order - заказ одного приёма пищи.
// Date хранится как календарная дата "YYYY-MM-DD" без компонента времени:
// именно по ней группируется аналитика.
type Order struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	UserName    string    `json:"userName"`
	MealType    string    `json:"mealType"`
	MealChoice  string    `json:"mealChoice"`
	Date        string    `json:"date"`
	Status      string    `json:"status"`
	DeliveryOtp string    `json:"deliveryOtp,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// MenuItem - позиция каталога (сабджи). Записи каталога неизменяемы;
// "меню на сегодня" - упорядоченное подмножество, заменяемое целиком.
type MenuItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
