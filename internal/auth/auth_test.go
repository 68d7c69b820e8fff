package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyCode(t *testing.T) {
	m := NewManager()

	code, err := m.IssueCode("9876543210")
	require.NoError(t, err)
	require.Len(t, code, 6)

	require.NoError(t, m.VerifyCode("9876543210", code))

	// Код одноразовый: повторная проверка не проходит.
	assert.ErrorIs(t, m.VerifyCode("9876543210", code), ErrCodeInvalid)
}

func TestVerifyWrongCode(t *testing.T) {
	m := NewManager()
	_, err := m.IssueCode("9876543210")
	require.NoError(t, err)

	assert.ErrorIs(t, m.VerifyCode("9876543210", "999999x"), ErrCodeInvalid)
	assert.ErrorIs(t, m.VerifyCode("0000000000", "123456"), ErrCodeInvalid)
}

func TestVerifyExpiredCode(t *testing.T) {
	m := NewManager()
	code, err := m.IssueCode("9876543210")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
	assert.ErrorIs(t, m.VerifyCode("9876543210", code), ErrCodeExpired)
}

func TestReissueReplacesCode(t *testing.T) {
	m := NewManager()
	first, err := m.IssueCode("9876543210")
	require.NoError(t, err)
	second, err := m.IssueCode("9876543210")
	require.NoError(t, err)

	if first != second {
		assert.ErrorIs(t, m.VerifyCode("9876543210", first), ErrCodeInvalid)
	}
	assert.NoError(t, m.VerifyCode("9876543210", second))
}

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken("u1", "admin", secret)
	require.NoError(t, err)

	claims, err := ValidateToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := GenerateToken("u1", "user", []byte("secret-a"))
	require.NoError(t, err)

	_, err = ValidateToken(token, []byte("secret-b"))
	assert.Error(t, err)
}
