package orders

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thirtymeals/internal/constants"
	"thirtymeals/internal/models"
	"thirtymeals/internal/store"
)

// fakeStore - хранилище в памяти, повторяющее транзакционную семантику
// InsertOrderDeductMeal: при исчерпанном балансе не видно ни заказа,
// ни списания.
type fakeStore struct {
	users  map[string]*models.User
	orders map[string]*models.Order
	menu   []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:  make(map[string]*models.User),
		orders: make(map[string]*models.Order),
	}
}

func (f *fakeStore) GetUser(_ context.Context, id string) (models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return models.User{}, store.ErrNotFound
	}
	return *u, nil
}

func (f *fakeStore) InsertOrderDeductMeal(_ context.Context, o models.Order) error {
	u, ok := f.users[o.UserID]
	if !ok {
		return store.ErrNotFound
	}
	if u.RemainingMeals <= 0 {
		return store.ErrNoMeals
	}
	u.RemainingMeals--
	cp := o
	f.orders[o.ID] = &cp
	return nil
}

func (f *fakeStore) GetOrder(_ context.Context, id string) (models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return models.Order{}, store.ErrNotFound
	}
	return *o, nil
}

func (f *fakeStore) MarkDelivered(_ context.Context, id string) error {
	o, ok := f.orders[id]
	if !ok || o.Status != constants.STATUS_PENDING {
		return store.ErrNotFound
	}
	o.Status = constants.STATUS_DELIVERED
	return nil
}

func (f *fakeStore) OrderExistsForSlot(_ context.Context, userID, mealType, date string) (bool, error) {
	for _, o := range f.orders {
		if o.UserID == userID && o.MealType == mealType && o.Date == date {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) SetMealBalance(_ context.Context, id string, meals int) error {
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.RemainingMeals = meals
	return nil
}

func (f *fakeStore) SetTodaysMenu(_ context.Context, itemIDs []string) error {
	f.menu = append([]string(nil), itemIDs...)
	return nil
}

func newTestService(meals int) (*Service, *fakeStore) {
	fs := newFakeStore()
	fs.users["u1"] = &models.User{ID: "u1", Name: "Ananya", Phone: "9876543210", RemainingMeals: meals}
	return NewService(fs), fs
}

func TestPlaceOrderDeductsOneMeal(t *testing.T) {
	svc, fs := newTestService(3)

	order, err := svc.PlaceOrder(context.Background(), "u1",
		constants.MEAL_TYPE_LUNCH, constants.MEAL_CHOICE_RICE, "2024-06-01")
	require.NoError(t, err)

	assert.Equal(t, constants.STATUS_PENDING, order.Status)
	assert.Equal(t, "Ananya", order.UserName)
	assert.Equal(t, 2, fs.users["u1"].RemainingMeals)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), order.DeliveryOtp)
}

func TestPlaceOrderInsufficientBalance(t *testing.T) {
	svc, fs := newTestService(0)

	_, err := svc.PlaceOrder(context.Background(), "u1",
		constants.MEAL_TYPE_LUNCH, constants.MEAL_CHOICE_RICE, "2024-06-01")
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Ни заказа, ни списания.
	assert.Empty(t, fs.orders)
	assert.Equal(t, 0, fs.users["u1"].RemainingMeals)
}

func TestPlaceOrderDuplicateSlot(t *testing.T) {
	svc, fs := newTestService(5)

	_, err := svc.PlaceOrder(context.Background(), "u1",
		constants.MEAL_TYPE_DINNER, constants.MEAL_CHOICE_ROTIS, "2024-06-01")
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), "u1",
		constants.MEAL_TYPE_DINNER, constants.MEAL_CHOICE_RICE, "2024-06-01")
	assert.ErrorIs(t, err, ErrDuplicateSlot)
	assert.Equal(t, 4, fs.users["u1"].RemainingMeals)

	// Другой приём пищи в тот же день разрешён.
	_, err = svc.PlaceOrder(context.Background(), "u1",
		constants.MEAL_TYPE_LUNCH, constants.MEAL_CHOICE_RICE, "2024-06-01")
	assert.NoError(t, err)
}

func TestPlaceOrderUnknownMeal(t *testing.T) {
	svc, _ := newTestService(5)
	_, err := svc.PlaceOrder(context.Background(), "u1", "Breakfast", constants.MEAL_CHOICE_RICE, "2024-06-01")
	assert.ErrorIs(t, err, ErrBadMeal)
}

func TestConfirmDeliveryFlow(t *testing.T) {
	svc, _ := newTestService(3)

	order, err := svc.PlaceOrder(context.Background(), "u1",
		constants.MEAL_TYPE_LUNCH, constants.MEAL_CHOICE_RICE, "2024-06-01")
	require.NoError(t, err)

	// Неверный OTP не меняет заказ.
	got, err := svc.ConfirmDelivery(context.Background(), order.ID, "000000x")
	assert.ErrorIs(t, err, ErrInvalidOtp)
	assert.Equal(t, constants.STATUS_PENDING, got.Status)

	// Верный OTP переводит заказ в Delivered.
	got, err = svc.ConfirmDelivery(context.Background(), order.ID, order.DeliveryOtp)
	require.NoError(t, err)
	assert.Equal(t, constants.STATUS_DELIVERED, got.Status)

	// Повторное подтверждение отличимо от неверного кода.
	_, err = svc.ConfirmDelivery(context.Background(), order.ID, order.DeliveryOtp)
	assert.ErrorIs(t, err, ErrAlreadyDelivered)
}

func TestConfirmDeliveryUnknownOrder(t *testing.T) {
	svc, _ := newTestService(3)
	_, err := svc.ConfirmDelivery(context.Background(), "missing", "123456")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdateMealBalanceBounds(t *testing.T) {
	svc, fs := newTestService(3)

	assert.ErrorIs(t, svc.UpdateMealBalance(context.Background(), "u1", -1), ErrOutOfRange)
	assert.ErrorIs(t, svc.UpdateMealBalance(context.Background(), "u1", 101), ErrOutOfRange)
	assert.Equal(t, 3, fs.users["u1"].RemainingMeals)

	require.NoError(t, svc.UpdateMealBalance(context.Background(), "u1", 100))
	assert.Equal(t, 100, fs.users["u1"].RemainingMeals)
	require.NoError(t, svc.UpdateMealBalance(context.Background(), "u1", 0))
	assert.Equal(t, 0, fs.users["u1"].RemainingMeals)
}

func TestSetTodaysMenuReplacesWholesale(t *testing.T) {
	svc, fs := newTestService(3)

	require.NoError(t, svc.SetTodaysMenu(context.Background(), []string{"s1", "s2"}))
	require.NoError(t, svc.SetTodaysMenu(context.Background(), []string{"s3"}))
	assert.Equal(t, []string{"s3"}, fs.menu)
}

func TestDeliveryOtpFormat(t *testing.T) {
	for i := 0; i < 200; i++ {
		otp, err := generateDeliveryOtp()
		require.NoError(t, err)
		require.Len(t, otp, 6)
		for _, c := range otp {
			require.True(t, c >= '0' && c <= '9')
		}
	}
}
