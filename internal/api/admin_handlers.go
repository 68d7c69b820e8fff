package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"thirtymeals/internal/analytics"
	"thirtymeals/internal/chat"
	"thirtymeals/internal/constants"
	"thirtymeals/internal/models"
	"thirtymeals/internal/orders"
	"thirtymeals/internal/store"
)

// GetClients возвращает всех пользователей системы.
func (a *Api) GetClients(w http.ResponseWriter, r *http.Request) {
	users, err := a.deps.Store.ListUsers(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Failed to load users")
		return
	}

	public := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}
	writeJSONSuccess(w, "Users retrieved", public)
}

// CreateClient заводит нового подписчика тарифа.
func (a *Api) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		Meals int    `json:"meals"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.Phone == "" {
		writeJSONError(w, http.StatusBadRequest, "Name and phone are required")
		return
	}
	if req.Meals < 0 || req.Meals > constants.MAX_MEAL_BALANCE {
		writeJSONError(w, http.StatusBadRequest, "Meals must be between 0 and 100")
		return
	}

	user := models.User{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Phone:          req.Phone,
		Role:           constants.ROLE_USER,
		RemainingMeals: req.Meals,
	}
	if err := a.deps.Store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrDuplicatePhone) {
			writeJSONError(w, http.StatusConflict, "Phone number already registered")
			return
		}
		writeJSONError(w, http.StatusServiceUnavailable, "Failed to create user")
		return
	}
	writeJSONSuccess(w, "User created", user.Public())
}

// UpdateClientBalance выставляет баланс пользователя. Диапазон [0, 100].
func (a *Api) UpdateClientBalance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req struct {
		Meals int `json:"meals"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := a.deps.Orders.UpdateMealBalance(r.Context(), userID, req.Meals)
	switch {
	case errors.Is(err, orders.ErrOutOfRange):
		writeJSONError(w, http.StatusBadRequest, "Meals must be between 0 and 100")
		return
	case errors.Is(err, store.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "User not found")
		return
	case err != nil:
		writeJSONError(w, http.StatusServiceUnavailable, "Failed to update balance")
		return
	}
	writeJSONSuccess(w, "Balance updated", nil)
}

// GetOrders возвращает все заказы. OTP доставки вычищается: админ вводит
// код со слов пользователя, а не читает его из таблицы.
func (a *Api) GetOrders(w http.ResponseWriter, r *http.Request) {
	list, err := a.deps.Store.ListOrders(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Failed to load orders")
		return
	}
	for i := range list {
		list[i].DeliveryOtp = ""
	}
	if list == nil {
		list = []models.Order{}
	}
	writeJSONSuccess(w, "Orders retrieved", list)
}

// ConfirmDelivery сверяет OTP и помечает заказ доставленным.
func (a *Api) ConfirmDelivery(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	var req struct {
		Otp string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	order, err := a.deps.Orders.ConfirmDelivery(r.Context(), orderID, req.Otp)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "Order not found")
		return
	case errors.Is(err, orders.ErrAlreadyDelivered):
		writeJSONError(w, http.StatusConflict, "Order already delivered")
		return
	case errors.Is(err, orders.ErrInvalidOtp):
		writeJSONError(w, http.StatusBadRequest, "Invalid OTP")
		return
	case err != nil:
		writeJSONError(w, http.StatusServiceUnavailable, "Failed to confirm delivery")
		return
	}

	order.DeliveryOtp = ""
	writeJSONSuccess(w, "Delivery confirmed", order)
}

// GetMenuCatalog возвращает каталог сабджи.
func (a *Api) GetMenuCatalog(w http.ResponseWriter, r *http.Request) {
	items, err := a.deps.Store.ListCatalog(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Failed to load catalog")
		return
	}
	if items == nil {
		items = []models.MenuItem{}
	}
	writeJSONSuccess(w, "Catalog retrieved", items)
}

// AddCatalogItem добавляет позицию в каталог.
func (a *Api) AddCatalogItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSONError(w, http.StatusBadRequest, "Name is required")
		return
	}

	item := models.MenuItem{ID: uuid.NewString(), Name: req.Name, Description: req.Description}
	if err := a.deps.Store.AddCatalogItem(r.Context(), item); err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Failed to add item")
		return
	}
	writeJSONSuccess(w, "Item added", item)
}

// SetTodaysMenu целиком заменяет меню на сегодня.
func (a *Api) SetTodaysMenu(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemIDs []string `json:"itemIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := a.deps.Orders.SetTodaysMenu(r.Context(), req.ItemIDs); err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Failed to save menu")
		return
	}
	writeJSONSuccess(w, "Menu saved", nil)
}

// GetAdminAnalytics пересчитывает сводную аналитику по всем заказам.
func (a *Api) GetAdminAnalytics(w http.ResponseWriter, r *http.Request) {
	snapshot, err := a.deps.Store.ListOrders(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Failed to load orders")
		return
	}
	writeJSONSuccess(w, "Analytics computed", analytics.Compute(snapshot, ""))
}

// ExportOrdersExcel формирует и отдаёт Excel-отчёт по всем заказам.
func (a *Api) ExportOrdersExcel(w http.ResponseWriter, r *http.Request) {
	list, err := a.deps.Store.ListOrders(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Failed to load orders")
		return
	}

	f := excelize.NewFile()
	sheetName := "Orders"
	index, _ := f.NewSheet(sheetName)
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headers := []string{"ID заказа", "Пользователь", "Приём пищи", "База", "Дата", "Статус"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	rowIndex := 2
	for _, o := range list {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIndex), o.ID)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIndex), o.UserName)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowIndex), o.MealType)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowIndex), o.MealChoice)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowIndex), o.Date)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowIndex), o.Status)
		rowIndex++
	}

	fileName := fmt.Sprintf("orders_report_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	if err := f.Write(w); err != nil {
		log.Printf("ExportOrdersExcel: ошибка записи Excel файла: %v", err)
	}
}

// Broadcast рассылает сообщение всем пользователям плюс внешние уведомления.
func (a *Api) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := a.deps.Relay.Broadcast(r.Context(), req.Text)
	if errors.Is(err, chat.ErrEmptyMessage) {
		writeJSONError(w, http.StatusBadRequest, "Message cannot be empty")
		return
	}
	if err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Failed to send broadcast")
		return
	}
	writeJSONSuccess(w, "Broadcast sent", nil)
}

// ScheduleBroadcast регистрирует ежедневную рассылку на заданное время.
func (a *Api) ScheduleBroadcast(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
		At   string `json:"at"` // "15:04"
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" || req.At == "" {
		writeJSONError(w, http.StatusBadRequest, "Text and time are required")
		return
	}

	text := req.Text
	id, err := a.deps.Scheduler.ScheduleDaily(req.At, func() {
		if errSend := a.deps.Relay.Broadcast(context.Background(), text); errSend != nil {
			log.Printf("ScheduleBroadcast: запланированная рассылка не удалась: %v", errSend)
		}
	})
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid time format, expected HH:MM")
		return
	}
	writeJSONSuccess(w, "Broadcast scheduled", map[string]interface{}{"entryId": int(id)})
}

// SuggestNotificationTime спрашивает внешнего советника об оптимальном
// времени уведомления.
func (a *Api) SuggestNotificationTime(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NotificationType string `json:"notificationType"`
		UserBehavior     string `json:"userBehavior"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.NotificationType == "" {
		writeJSONError(w, http.StatusBadRequest, "notificationType is required")
		return
	}

	suggestion, err := a.deps.Advisor.SuggestTime(r.Context(), req.NotificationType, req.UserBehavior)
	if err != nil {
		log.Printf("SuggestNotificationTime: советник недоступен: %v", err)
		writeJSONError(w, http.StatusBadGateway, "Advisor unavailable")
		return
	}
	writeJSONSuccess(w, "Suggestion ready", suggestion)
}

// GetClientMessages возвращает переписку выбранного пользователя.
func (a *Api) GetClientMessages(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	msgs, err := a.deps.Relay.Fetch(r.Context(), userID)
	if err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Failed to load messages")
		return
	}
	writeJSONSuccess(w, "Messages retrieved", msgs)
}

// PostClientMessage отправляет сообщение от имени админа в переписку
// выбранного пользователя.
func (a *Api) PostClientMessage(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	err := a.deps.Relay.Send(r.Context(), []string{userID}, req.Text, constants.SENDER_ADMIN)
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
