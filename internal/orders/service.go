// Пакет orders реализует жизненный цикл заказа: единственный переход
// Pending -> Delivered, подтверждаемый шестизначным OTP доставки.
package orders

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"

	"github.com/google/uuid"

	"thirtymeals/internal/constants"
	"thirtymeals/internal/models"
	"thirtymeals/internal/store"
)

// Ошибки жизненного цикла, различимые вызывающей стороной.
var (
	ErrInsufficientBalance = errors.New("недостаточно приёмов пищи на балансе")
	ErrInvalidOtp          = errors.New("неверный OTP доставки")
	ErrAlreadyDelivered    = errors.New("заказ уже доставлен")
	ErrOutOfRange          = errors.New("баланс вне допустимого диапазона")
	ErrDuplicateSlot       = errors.New("заказ на этот приём пищи уже есть")
	ErrBadMeal             = errors.New("неизвестный тип или база приёма пищи")
)

// Store - срез операций хранилища, который нужен жизненному циклу заказов.
type Store interface {
	GetUser(ctx context.Context, id string) (models.User, error)
	InsertOrderDeductMeal(ctx context.Context, o models.Order) error
	GetOrder(ctx context.Context, id string) (models.Order, error)
	MarkDelivered(ctx context.Context, id string) error
	OrderExistsForSlot(ctx context.Context, userID, mealType, date string) (bool, error)
	SetMealBalance(ctx context.Context, id string, meals int) error
	SetTodaysMenu(ctx context.Context, itemIDs []string) error
}

// Service управляет заказами и балансом приёмов пищи.
type Service struct {
	store Store
}

// NewService создаёт сервис поверх переданного хранилища.
func NewService(st Store) *Service {
	return &Service{store: st}
}

// PlaceOrder создаёт заказ на (тип, база, дата) и списывает один приём пищи.
// Вставка заказа и списание выполняются хранилищем одной транзакцией: при
// исчерпанном балансе не видно ни того, ни другого.
func (s *Service) PlaceOrder(ctx context.Context, userID, mealType, mealChoice, date string) (models.Order, error) {
	if !constants.MealTypeValid(mealType) || !constants.MealChoiceValid(mealChoice) {
		return models.Order{}, ErrBadMeal
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return models.Order{}, err
	}
	if user.RemainingMeals <= 0 {
		return models.Order{}, ErrInsufficientBalance
	}

	// Мягкая проверка слота: переживает перезагрузку страницы, но жёсткой
	// уникальности на уровне данных нет.
	exists, err := s.store.OrderExistsForSlot(ctx, userID, mealType, date)
	if err != nil {
		return models.Order{}, err
	}
	if exists {
		return models.Order{}, ErrDuplicateSlot
	}

	otp, err := generateDeliveryOtp()
	if err != nil {
		return models.Order{}, fmt.Errorf("ошибка генерации OTP доставки: %w", err)
	}

	order := models.Order{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		UserName:    user.Name,
		MealType:    mealType,
		MealChoice:  mealChoice,
		Date:        date,
		Status:      constants.STATUS_PENDING,
		DeliveryOtp: otp,
	}

	if err := s.store.InsertOrderDeductMeal(ctx, order); err != nil {
		if errors.Is(err, store.ErrNoMeals) {
			return models.Order{}, ErrInsufficientBalance
		}
		return models.Order{}, err
	}
	return order, nil
}

// ConfirmDelivery сверяет предъявленный OTP и переводит заказ в Delivered.
// Несовпадение не меняет заказ; повтор по доставленному заказу отличим от
// неверного кода.
func (s *Service) ConfirmDelivery(ctx context.Context, orderID, submittedOtp string) (models.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if order.Status == constants.STATUS_DELIVERED {
		return order, ErrAlreadyDelivered
	}
	if submittedOtp != order.DeliveryOtp {
		log.Printf("ConfirmDelivery: неверный OTP для заказа %s.", orderID)
		return order, ErrInvalidOtp
	}

	if err := s.store.MarkDelivered(ctx, orderID); err != nil {
		return models.Order{}, err
	}
	order.Status = constants.STATUS_DELIVERED
	return order, nil
}

// SetTodaysMenu целиком заменяет меню на сегодня.
func (s *Service) SetTodaysMenu(ctx context.Context, itemIDs []string) error {
	return s.store.SetTodaysMenu(ctx, itemIDs)
}

// UpdateMealBalance выставляет баланс пользователя (правка админом).
// Значение ограничено диапазоном [0, 100] включительно.
func (s *Service) UpdateMealBalance(ctx context.Context, userID string, meals int) error {
	if meals < 0 || meals > constants.MAX_MEAL_BALANCE {
		return ErrOutOfRange
	}
	return s.store.SetMealBalance(ctx, userID, meals)
}

// generateDeliveryOtp выдаёт шестизначный числовой OTP. Равномерный
// криптослучайный выбор из [0, 1e6), ведущие нули сохраняются.
func generateDeliveryOtp() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
