package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"thirtymeals/internal/analytics"
	"thirtymeals/internal/chat"
	"thirtymeals/internal/constants"
	"thirtymeals/internal/models"
	"thirtymeals/internal/orders"
	"thirtymeals/internal/store"
)

// jsonResponse - вспомогательная структура для стандартного ответа API
type jsonResponse struct {
	Status  string      `json:"status"` // "success" или "error"
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// --- Вспомогательные функции для JSON-ответов ---
func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(jsonResponse{Status: "error", Message: message})
}

func writeJSONSuccess(w http.ResponseWriter, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(jsonResponse{Status: "success", Message: message, Data: data})
}

func userFromContext(r *http.Request) (models.User, bool) {
	user, ok := r.Context().Value(UserContextKey).(models.User)
	return user, ok
}

// GetUserProfile возвращает профиль текущего пользователя.
func (a *Api) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}
	writeJSONSuccess(w, "Profile retrieved", user.Public())
}

// UpdateUserProfile обновляет имя пользователя. Правка профиля ограничена именем.
func (a *Api) UpdateUserProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSONError(w, http.StatusBadRequest, "Name is required")
		return
	}

	if err := a.deps.Store.UpdateUserName(r.Context(), user.ID, req.Name); err != nil {
		log.Printf("UpdateUserProfile: ошибка обновления имени: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}
	user.Name = req.Name
	writeJSONSuccess(w, "Profile updated", user.Public())
}

// GetTodaysMenu возвращает меню на сегодня.
func (a *Api) GetTodaysMenu(w http.ResponseWriter, r *http.Request) {
	items, err := a.deps.Store.GetTodaysMenu(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Failed to load menu")
		return
	}
	if items == nil {
		items = []models.MenuItem{}
	}
	writeJSONSuccess(w, "Menu retrieved", items)
}

// GetUserOrders возвращает заказы текущего пользователя, включая OTP
// доставки: пользователь предъявляет его курьеру.
func (a *Api) GetUserOrders(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	list, err := a.deps.Store.ListOrdersByUser(r.Context(), user.ID)
	if err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Failed to load orders")
		return
	}
	if list == nil {
		list = []models.Order{}
	}
	writeJSONSuccess(w, "Orders retrieved", list)
}

// CreateUserOrder размещает заказ на сегодняшнюю дату.
func (a *Api) CreateUserOrder(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	var req struct {
		MealType   string `json:"mealType"`
		MealChoice string `json:"mealChoice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	date := time.Now().Format(constants.DATE_LAYOUT)
	order, err := a.deps.Orders.PlaceOrder(r.Context(), user.ID, req.MealType, req.MealChoice, date)
	switch {
	case errors.Is(err, orders.ErrBadMeal):
		writeJSONError(w, http.StatusBadRequest, "Unknown meal type or choice")
		return
	case errors.Is(err, orders.ErrInsufficientBalance):
		writeJSONError(w, http.StatusConflict, "No meals left. Please recharge your plan.")
		return
	case errors.Is(err, orders.ErrDuplicateSlot):
		writeJSONError(w, http.StatusConflict, "You have already ordered this meal today")
		return
	case err != nil:
		log.Printf("CreateUserOrder: ошибка размещения заказа для %s: %v", user.ID, err)
		writeJSONError(w, http.StatusServiceUnavailable, "Could not place your order. Please try again.")
		return
	}

	writeJSONSuccess(w, "Order placed", order)
}

// GetOrderOtpQr отдаёт PNG с QR-кодом OTP доставки: пользователь показывает
// его курьеру вместо того, чтобы диктовать цифры.
func (a *Api) GetOrderOtpQr(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	orderID := chi.URLParam(r, "id")
	order, err := a.deps.Store.GetOrder(r.Context(), orderID)
	if errors.Is(err, store.ErrNotFound) {
		writeJSONError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Failed to load order")
		return
	}
	if order.UserID != user.ID {
		writeJSONError(w, http.StatusForbidden, "Access denied")
		return
	}

	// qrcode.Medium - уровень коррекции ошибок, 256 - размер в пикселях.
	qrBytes, err := qrcode.Encode(order.DeliveryOtp, qrcode.Medium, 256)
	if err != nil {
		log.Printf("GetOrderOtpQr: ошибка генерации QR для заказа %s: %v", orderID, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(qrBytes)
}

// GetUserAnalytics пересчитывает личную аналитику из живого снимка заказов.
func (a *Api) GetUserAnalytics(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	snapshot, err := a.deps.Store.ListOrders(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Failed to load orders")
		return
	}
	writeJSONSuccess(w, "Analytics computed", analytics.Compute(snapshot, user.ID))
}

// GetUserMessages возвращает переписку текущего пользователя.
func (a *Api) GetUserMessages(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	msgs, err := a.deps.Relay.Fetch(r.Context(), user.ID)
	if err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Failed to load messages")
		return
	}
	writeJSONSuccess(w, "Messages retrieved", msgs)
}

// PostUserMessage дописывает сообщение пользователя в его переписку.
func (a *Api) PostUserMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "User not found in context")
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := a.deps.Relay.Send(r.Context(), []string{user.ID}, req.Text, constants.SENDER_USER)
	if errors.Is(err, chat.ErrEmptyMessage) {
		writeJSONError(w, http.StatusBadRequest, "Message cannot be empty")
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Failed to send message")
		return
	}
	writeJSONSuccess(w, "Message sent", nil)
}
