package controller_test

import (
	"context"
	"testing"
	"time"

	"storefront_backend/pkg/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := &cache.Client{Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()}), TTL: time.Minute}
	t.Cleanup(func() { client.Close() })

	h := newCachedHarness(t, client)
	token, _ := h.admin()
	product := h.product("Burr Grinder", 250, true)

	code, _ := h.do("GET", "/api/products/burr-grinder", nil, "")
	require.Equal(t, fiber.StatusOK, code)
	assert.True(t, mr.Exists("catalog:product:burr-grinder"))

	// Writes behind the API's back are not seen until the entry expires.
	product.Price = 300
	require.NoError(t, h.store.Products.Update(context.Background(), product))
	_, body := h.do("GET", "/api/products/burr-grinder", nil, "")
	assert.EqualValues(t, 250, body["price"])

	code, _ = h.do("PUT", "/api/admin/products/"+product.ID, map[string]interface{}{
		"name": "Burr Grinder", "price": 320, "published": true,
	}, token)
	require.Equal(t, fiber.StatusOK, code)
	assert.False(t, mr.Exists("catalog:product:burr-grinder"))

	_, body = h.do("GET", "/api/products/burr-grinder", nil, "")
	assert.EqualValues(t, 320, body["price"])

	h.do("GET", "/api/products?sort=price_asc", nil, "")
	assert.True(t, mr.Exists("catalog:products:sort=price_asc"))

	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists("catalog:products:sort=price_asc"))
}
