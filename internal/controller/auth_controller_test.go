package controller_test

import (
	"context"
	"testing"

	"storefront_backend/pkg/seed"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminLogin(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, seed.SeedAdmin(context.Background(), h.store, "Owner@Example.com", "s3cret-pass"))

	code, body := h.do("POST", "/api/auth/login", map[string]string{"email": "owner@example.com", "password": "wrong"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, code)
	assert.Equal(t, "Invalid email or password", body["error"])

	code, body = h.do("POST", "/api/auth/login", map[string]string{"email": "owner@example.com", "password": "s3cret-pass"}, "")
	require.Equal(t, fiber.StatusOK, code, body)
	token := body["token"].(string)
	assert.Equal(t, "admin", body["user"].(map[string]interface{})["role"])

	code, me := h.do("GET", "/api/auth/me", nil, token)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "owner@example.com", me["email"])
	assert.NotContains(t, me, "password")
}

func TestAdminLogin_UnknownUser(t *testing.T) {
	h := newHarness(t)

	code, _ := h.do("POST", "/api/auth/login", map[string]string{"email": "nobody@example.com", "password": "x"}, "")
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, body := h.do("POST", "/api/auth/login", map[string]string{"email": "not-an-email"}, "")
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Contains(t, body["fields"], "password")
}

func TestCustomerAccount(t *testing.T) {
	h := newHarness(t)

	code, body := h.do("POST", "/api/customers/register", map[string]string{
		"email":      "Shopper@Example.com",
		"password":   "password123",
		"first_name": "Sam",
		"last_name":  "Shopper",
	}, "")
	require.Equal(t, fiber.StatusCreated, code, body)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, []string{"shopper@example.com"}, h.welcome.sent)

	code, _ = h.do("POST", "/api/customers/register", map[string]string{
		"email":    "shopper@example.com",
		"password": "password123",
	}, "")
	assert.Equal(t, fiber.StatusConflict, code)

	code, body = h.do("POST", "/api/customers/register", map[string]string{
		"email":    "short@example.com",
		"password": "short",
	}, "")
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Contains(t, body["fields"], "password")

	code, body = h.do("POST", "/api/customers/login", map[string]string{
		"email":    "shopper@example.com",
		"password": "password123",
	}, "")
	require.Equal(t, fiber.StatusOK, code, body)
	token := body["token"].(string)

	code, me := h.do("GET", "/api/customers/me", nil, token)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "Sam", me["first_name"])
	assert.NotContains(t, me, "password")

	// A customer token is not a back-office token.
	code, _ = h.do("GET", "/api/auth/me", nil, token)
	assert.Equal(t, fiber.StatusForbidden, code)
}
