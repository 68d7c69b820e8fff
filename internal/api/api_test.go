package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thirtymeals/internal/auth"
	"thirtymeals/internal/chat"
	"thirtymeals/internal/config"
	"thirtymeals/internal/orders"
	"thirtymeals/internal/store"
)

func newTestRouter(t *testing.T) (*chi.Mux, sqlmock.Sqlmock, *config.Config) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := store.NewWithDB(db)
	cfg := &config.Config{JWTSecret: "test-secret"}

	r := chi.NewRouter()
	SetupRoutes(r, ApiDependencies{
		Config: cfg,
		Store:  st,
		Orders: orders.NewService(st),
		Relay:  chat.NewRelay(st, nil),
		Auth:   auth.NewManager(),
	})
	return r, mock, cfg
}

func userRows(id, name, phone, role string, meals int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "phone", "role", "remaining_meals", "telegram_chat_id"}).
		AddRow(id, name, phone, role, meals, nil)
}

func TestRequestOtpUnknownPhone(t *testing.T) {
	r, mock, _ := newTestRouter(t)

	mock.ExpectQuery("SELECT .+ FROM users WHERE phone").
		WithArgs("0000000000").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "phone", "role", "remaining_meals", "telegram_chat_id"}))

	req := httptest.NewRequest(http.MethodPost, "/api/auth/request-otp",
		strings.NewReader(`{"phone": "0000000000"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestVerifyOtpWrongCode(t *testing.T) {
	r, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/verify-otp",
		strings.NewReader(`{"phone": "9876543210", "code": "123456"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfileRequiresToken(t *testing.T) {
	r, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfileWithValidToken(t *testing.T) {
	r, mock, cfg := newTestRouter(t)

	token, err := auth.GenerateToken("u1", "user", []byte(cfg.JWTSecret))
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs("u1").
		WillReturnRows(userRows("u1", "Ananya", "9876543210", "user", 12))

	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Name           string `json:"name"`
			RemainingMeals int    `json:"remainingMeals"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "Ananya", resp.Data.Name)
	assert.Equal(t, 12, resp.Data.RemainingMeals)
}

func TestAdminRoutesForbiddenForUserRole(t *testing.T) {
	r, mock, cfg := newTestRouter(t)

	token, err := auth.GenerateToken("u1", "user", []byte(cfg.JWTSecret))
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs("u1").
		WillReturnRows(userRows("u1", "Ananya", "9876543210", "user", 12))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateClientDuplicatePhone(t *testing.T) {
	r, mock, cfg := newTestRouter(t)

	token, err := auth.GenerateToken("a1", "admin", []byte(cfg.JWTSecret))
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs("a1").
		WillReturnRows(userRows("a1", "Admin", "9000000000", "admin", 0))
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505"})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/users",
		strings.NewReader(`{"name": "Rohan", "phone": "9876543210", "meals": 10}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateOrderBadMealType(t *testing.T) {
	r, mock, cfg := newTestRouter(t)

	token, err := auth.GenerateToken("u1", "user", []byte(cfg.JWTSecret))
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id").
		WithArgs("u1").
		WillReturnRows(userRows("u1", "Ananya", "9876543210", "user", 12))

	req := httptest.NewRequest(http.MethodPost, "/api/user/orders",
		strings.NewReader(`{"mealType": "Breakfast", "mealChoice": "5 Rotis"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
