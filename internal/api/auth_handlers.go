package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"thirtymeals/internal/auth"
	"thirtymeals/internal/store"
)

// RequestLoginOtp выдаёт код входа по номеру телефона. Код уходит во внешний
// канал уведомлений; его сбой на выдачу не влияет.
func (a *Api) RequestLoginOtp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Phone == "" {
		writeJSONError(w, http.StatusBadRequest, "Phone is required")
		return
	}

	if _, err := a.deps.Store.GetUserByPhone(r.Context(), req.Phone); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "User not found")
			return
		}
		writeJSONError(w, http.StatusServiceUnavailable, "Store unavailable")
		return
	}

	code, err := a.deps.Auth.IssueCode(req.Phone)
	if err != nil {
		log.Printf("RequestLoginOtp: ошибка выдачи кода для %s: %v", req.Phone, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to issue code")
		return
	}

	if a.deps.Notifier != nil {
		go func() {
			text := fmt.Sprintf("Ваш код входа в 30meals: %s", code)
			if errSend := a.deps.Notifier.Send(req.Phone, text); errSend != nil {
				log.Printf("RequestLoginOtp: доставка кода на %s не удалась: %v", req.Phone, errSend)
			}
		}()
	}
	log.Printf("Код входа выдан для %s.", req.Phone)
	writeJSONSuccess(w, "Code sent", nil)
}

// VerifyLoginOtp проверяет код и выпускает JWT-сессию.
func (a *Api) VerifyLoginOtp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Phone string `json:"phone"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Phone == "" || req.Code == "" {
		writeJSONError(w, http.StatusBadRequest, "Phone and code are required")
		return
	}

	if err := a.deps.Auth.VerifyCode(req.Phone, req.Code); err != nil {
		if errors.Is(err, auth.ErrCodeExpired) {
			writeJSONError(w, http.StatusUnauthorized, "Code expired, request a new one")
			return
		}
		writeJSONError(w, http.StatusUnauthorized, "Invalid code")
		return
	}

	user, err := a.deps.Store.GetUserByPhone(r.Context(), req.Phone)
	if err != nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Store unavailable")
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Role, []byte(a.deps.Config.JWTSecret))
	if err != nil {
		log.Printf("VerifyLoginOtp: ошибка выпуска токена для %s: %v", user.ID, err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	writeJSONSuccess(w, "Logged in", map[string]interface{}{
		"token": token,
		"user":  user.Public(),
	})
}
