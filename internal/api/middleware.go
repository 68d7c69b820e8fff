// Файл: internal/api/middleware.go
package api

import (
	"context"
	"log"
	"net/http"
	"strings"

	"thirtymeals/internal/auth"
	"thirtymeals/internal/models"
)

// UserContextKey - ключ для сохранения данных пользователя в контексте запроса.
var UserContextKey = &contextKey{"User"}

type contextKey struct {
	name string
}

// AuthMiddleware проверяет Bearer-токен и кладёт пользователя в контекст.
func (a *Api) AuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				http.Error(w, "Unauthorized: Missing bearer token", http.StatusUnauthorized)
				return
			}

			claims, err := auth.ValidateToken(strings.TrimPrefix(authHeader, "Bearer "), []byte(a.deps.Config.JWTSecret))
			if err != nil {
				log.Printf("AuthMiddleware: некорректный токен: %v", err)
				http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
				return
			}

			// Получаем полную информацию о пользователе из нашей БД
			user, err := a.deps.Store.GetUser(r.Context(), claims.UserID)
			if err != nil {
				log.Printf("AuthMiddleware: пользователь %s не найден: %v", claims.UserID, err)
				http.Error(w, "Unauthorized: User not found", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RoleMiddleware проверяет, соответствует ли роль пользователя требуемой.
func (a *Api) RoleMiddleware(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := r.Context().Value(UserContextKey).(models.User)
			if !ok {
				http.Error(w, "Forbidden: User data not found in context", http.StatusForbidden)
				return
			}

			if user.Role != requiredRole {
				http.Error(w, "Forbidden: Insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
