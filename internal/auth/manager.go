// Пакет auth - вход по телефону и одноразовому коду плюс JWT-сессии.
// Доставка кода - забота внешнего канала; здесь только выдача и проверка.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"thirtymeals/internal/constants"
)

var (
	// ErrCodeInvalid - код не совпал или не запрашивался.
	ErrCodeInvalid = errors.New("неверный код входа")
	// ErrCodeExpired - код запрашивался, но его время жизни истекло.
	ErrCodeExpired = errors.New("код входа истёк")
)

type loginCode struct {
	code      string
	expiresAt time.Time
}

// Manager хранит выданные коды входа в памяти. Ключ - номер телефона.
type Manager struct {
	mu    sync.Mutex
	codes map[string]loginCode
	ttl   time.Duration
	now   func() time.Time
}

// NewManager создаёт менеджер кодов входа со стандартным TTL.
func NewManager() *Manager {
	return &Manager{
		codes: make(map[string]loginCode),
		ttl:   constants.LOGIN_OTP_TTL,
		now:   time.Now,
	}
}

// IssueCode выдаёт новый шестизначный код для телефона. Повторный запрос
// замещает прежний код.
func (m *Manager) IssueCode(phone string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("ошибка генерации кода входа: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())

	m.mu.Lock()
	m.codes[phone] = loginCode{code: code, expiresAt: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return code, nil
}

// VerifyCode проверяет код и при успехе гасит его: каждый код одноразовый.
func (m *Manager) VerifyCode(phone, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	issued, ok := m.codes[phone]
	if !ok || issued.code != code {
		return ErrCodeInvalid
	}
	if m.now().After(issued.expiresAt) {
		delete(m.codes, phone)
		return ErrCodeExpired
	}
	delete(m.codes, phone)
	return nil
}
