package store

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"thirtymeals/internal/constants"
	"thirtymeals/internal/models"
)

const orderColumns = "id, user_id, user_name, meal_type, meal_choice, date, status, delivery_otp, created_at"

func scanOrder(row interface{ Scan(...interface{}) error }) (models.Order, error) {
	var o models.Order
	var date time.Time
	err := row.Scan(&o.ID, &o.UserID, &o.UserName, &o.MealType, &o.MealChoice,
		&date, &o.Status, &o.DeliveryOtp, &o.CreatedAt)
	if err != nil {
		return models.Order{}, err
	}
	// Поле Date возвращается в формате "YYYY-MM-DD".
	o.Date = date.Format(constants.DATE_LAYOUT)
	return o, nil
}

// InsertOrderDeductMeal создаёт заказ и списывает один приём пищи одной
// транзакцией. Условие remaining_meals > 0 в самом UPDATE закрывает гонку
// потерянного обновления: при нулевом балансе ни одна запись не видна.
func (s *Store) InsertOrderDeductMeal(ctx context.Context, o models.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Printf("InsertOrderDeductMeal: Ошибка начала транзакции: %v", err)
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
        UPDATE users SET remaining_meals = remaining_meals - 1, updated_at = NOW()
        WHERE id = $1 AND remaining_meals > 0`, o.UserID)
	if err != nil {
		log.Printf("InsertOrderDeductMeal: Ошибка списания приёма пищи для %s: %v", o.UserID, err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNoMeals
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO orders (id, user_id, user_name, meal_type, meal_choice, date, status, delivery_otp, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`,
		o.ID, o.UserID, o.UserName, o.MealType, o.MealChoice, o.Date, o.Status, o.DeliveryOtp)
	if err != nil {
		log.Printf("InsertOrderDeductMeal: Ошибка выполнения INSERT заказа для %s: %v", o.UserID, err)
		return err
	}

	if err = tx.Commit(); err != nil {
		log.Printf("InsertOrderDeductMeal: Ошибка фиксации транзакции: %v", err)
		return err
	}
	log.Printf("Заказ %s (%s, %s) создан для пользователя %s.", o.ID, o.MealType, o.MealChoice, o.UserID)
	return nil
}

// GetOrder извлекает заказ по его ID.
func (s *Store) GetOrder(ctx context.Context, id string) (models.Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Order{}, ErrNotFound
	}
	if err != nil {
		log.Printf("GetOrder: ошибка получения заказа %s: %v", id, err)
		return models.Order{}, err
	}
	return o, nil
}

// ListOrders возвращает полный снимок заказов (для админской аналитики).
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.listOrders(ctx,
		"SELECT "+orderColumns+" FROM orders ORDER BY created_at ASC")
}

// ListOrdersByUser возвращает заказы одного пользователя.
func (s *Store) ListOrdersByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.listOrders(ctx,
		"SELECT "+orderColumns+" FROM orders WHERE user_id = $1 ORDER BY created_at ASC", userID)
}

func (s *Store) listOrders(ctx context.Context, query string, args ...interface{}) ([]models.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Printf("listOrders: ошибка запроса заказов: %v", err)
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		o, errScan := scanOrder(rows)
		if errScan != nil {
			log.Printf("listOrders: ошибка сканирования заказа: %v", errScan)
			continue
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// OrderExistsForSlot сообщает, есть ли у пользователя заказ на (тип, дата).
// Мягкая проверка: уникальность на уровне данных не навязывается.
func (s *Store) OrderExistsForSlot(ctx context.Context, userID, mealType, date string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM orders WHERE user_id = $1 AND meal_type = $2 AND date = $3",
		userID, mealType, date).Scan(&n)
	if err != nil {
		log.Printf("OrderExistsForSlot: ошибка проверки слота (%s, %s, %s): %v", userID, mealType, date, err)
		return false, err
	}
	return n > 0, nil
}

// MarkDelivered переводит заказ в статус Delivered.
// Переход выполняется только из Pending; повторный вызов не находит строк.
func (s *Store) MarkDelivered(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE orders SET status = $1 WHERE id = $2 AND status = $3",
		constants.STATUS_DELIVERED, id, constants.STATUS_PENDING)
	if err != nil {
		log.Printf("MarkDelivered: ошибка обновления статуса заказа %s: %v", id, err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	log.Printf("Заказ %s помечен как доставленный.", id)
	return nil
}
