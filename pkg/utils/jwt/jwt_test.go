package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("secret", time.Hour)

	token, err := m.GenerateToken("u1", "admin@example.com", RoleAdmin)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, RoleAdmin, claims.Role)
	assert.True(t, claims.IsStaff())
}

func TestManager_RejectsForeignSecret(t *testing.T) {
	token, err := NewManager("one", time.Hour).GenerateToken("u1", "a@example.com", RoleCustomer)
	require.NoError(t, err)

	_, err = NewManager("two", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}

func TestManager_RejectsExpired(t *testing.T) {
	m := NewManager("secret", -time.Minute)
	token, err := m.GenerateToken("u1", "a@example.com", RoleCustomer)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}
