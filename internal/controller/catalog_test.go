package controller_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront_backend/internal/model"
	"storefront_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrands(t *testing.T) {
	h := newHarness(t)
	token, _ := h.admin()

	code, brand := h.do("POST", "/api/admin/brands", map[string]string{
		"name":    "Blue Mountain Roasters",
		"website": "https://bluemountain.example.com",
	}, token)
	require.Equal(t, fiber.StatusCreated, code, brand)
	assert.Equal(t, "blue-mountain-roasters", brand["slug"])
	brandID := brand["id"].(string)

	code, body := h.do("POST", "/api/admin/brands", map[string]string{"name": "Bad", "website": "not a url"}, token)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Contains(t, body["fields"], "website")

	code, _ = h.do("POST", "/api/admin/products", map[string]interface{}{
		"name": "House Blend", "price": 18.5, "brand_id": brandID, "published": true,
	}, token)
	require.Equal(t, fiber.StatusCreated, code)
	code, _ = h.do("POST", "/api/admin/products", map[string]interface{}{
		"name": "Secret Blend", "price": 25, "brand_id": brandID,
	}, token)
	require.Equal(t, fiber.StatusCreated, code)

	code, page := h.do("GET", "/api/brands/blue-mountain-roasters", nil, "")
	require.Equal(t, fiber.StatusOK, code)
	products := page["products"].([]interface{})
	require.Len(t, products, 1)
	assert.Equal(t, "House Blend", products[0].(map[string]interface{})["name"])

	code, brand = h.do("PUT", "/api/admin/brands/"+brandID, map[string]string{"name": "Blue Mountain Coffee"}, token)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "blue-mountain-roasters", brand["slug"])

	code, list := h.list("GET", "/api/brands", "")
	require.Equal(t, fiber.StatusOK, code)
	require.Len(t, list, 1)
	assert.Equal(t, "Blue Mountain Coffee", list[0]["name"])

	code, _ = h.do("DELETE", "/api/admin/brands/"+brandID, nil, token)
	assert.Equal(t, fiber.StatusOK, code)
	code, _ = h.do("GET", "/api/brands/blue-mountain-roasters", nil, "")
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestListProducts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	brand := &model.Brand{Name: "Acme"}
	require.NoError(t, h.store.Brands.Create(ctx, brand))

	cheap := h.product("Paper Filter", 5, true)
	h.product("Burr Grinder", 250, true)
	h.product("Draft Machine", 999, false)
	branded := h.product("Acme Kettle", 80, true)
	branded.BrandID = &brand.ID
	require.NoError(t, h.store.Products.Update(ctx, branded))

	code, body := h.do("GET", "/api/products?sort=price_asc", nil, "")
	require.Equal(t, fiber.StatusOK, code)
	assert.EqualValues(t, 3, body["total"])
	data := body["data"].([]interface{})
	require.Len(t, data, 3)
	assert.Equal(t, cheap.Name, data[0].(map[string]interface{})["name"])

	_, body = h.do("GET", "/api/products?min_price=50&max_price=100", nil, "")
	assert.EqualValues(t, 1, body["total"])

	_, body = h.do("GET", "/api/products?brand=acme", nil, "")
	require.Len(t, body["data"], 1)
	first := body["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Acme Kettle", first["name"])
	assert.Equal(t, "Acme", first["brand"].(map[string]interface{})["name"])

	_, body = h.do("GET", "/api/products?brand=unknown", nil, "")
	assert.Len(t, body["data"], 0)

	_, body = h.do("GET", "/api/products?q=GRIND", nil, "")
	assert.EqualValues(t, 1, body["total"])

	code, _ = h.do("GET", "/api/products?sort=random", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, code)
	code, _ = h.do("GET", "/api/products?min_price=cheap", nil, "")
	assert.Equal(t, fiber.StatusBadRequest, code)
}

func TestGetProductBySlug_HidesDrafts(t *testing.T) {
	h := newHarness(t)
	h.product("Burr Grinder", 250, true)
	h.product("Draft Machine", 999, false)

	code, body := h.do("GET", "/api/products/burr-grinder", nil, "")
	require.Equal(t, fiber.StatusOK, code)
	assert.EqualValues(t, 250, body["price"])

	code, _ = h.do("GET", "/api/products/draft-machine", nil, "")
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestAdminProducts(t *testing.T) {
	h := newHarness(t)
	token, _ := h.admin()

	code, body := h.do("POST", "/api/admin/products", map[string]interface{}{"name": "Free Sample", "price": 0}, token)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Contains(t, body["fields"], "price")

	code, body = h.do("POST", "/api/admin/products", map[string]interface{}{
		"name": "Gift Card", "price": 50, "brand_id": "8c3c2f3e-6a55-4cf1-9d7e-7e1f0b0a9c11",
	}, token)
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "Brand not found", body["error"])

	code, product := h.do("POST", "/api/admin/products", map[string]interface{}{
		"name":       "Gift Card",
		"price":      50,
		"currency":   "JMD",
		"attributes": map[string]interface{}{"denomination": "50"},
	}, token)
	require.Equal(t, fiber.StatusCreated, code, product)
	assert.Equal(t, "JMD", product["currency"])
	assert.Equal(t, false, product["published"])
	id := product["id"].(string)

	code, product = h.do("PUT", "/api/admin/products/"+id, map[string]interface{}{
		"name": "Gift Card", "price": 75, "published": true,
	}, token)
	require.Equal(t, fiber.StatusOK, code)
	assert.EqualValues(t, 75, product["price"])
	assert.Equal(t, "USD", product["currency"])

	_, body = h.do("GET", "/api/admin/products?published=true", nil, token)
	assert.EqualValues(t, 1, body["total"])

	editor := h.token("e1", "e@example.com", jwt.RoleEditor)
	code, _ = h.do("DELETE", "/api/admin/products/"+id, nil, editor)
	assert.Equal(t, fiber.StatusForbidden, code)
	code, _ = h.do("DELETE", "/api/admin/products/"+id, nil, token)
	assert.Equal(t, fiber.StatusOK, code)
	code, _ = h.do("GET", "/api/admin/products/"+id, nil, token)
	assert.Equal(t, fiber.StatusNotFound, code)
}

func uploadImage(t *testing.T, h *harness, productID, token, filename string) (int, []byte) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for x := 0; x < 200; x++ {
		for y := 0; y < 100; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var pngBuf bytes.Buffer
	require.NoError(t, png.Encode(&pngBuf, img))

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(pngBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, form.Close())

	req := httptest.NewRequest("POST", "/api/admin/products/"+productID+"/images", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	return h.send(req, token)
}

func TestProductImages(t *testing.T) {
	h := newHarness(t)
	token, _ := h.admin()
	product := h.product("Burr Grinder", 250, true)
	ctx := context.Background()

	code, raw := uploadImage(t, h, product.ID, token, "front.png")
	require.Equal(t, fiber.StatusCreated, code, string(raw))
	code, raw = uploadImage(t, h, product.ID, token, "side.png")
	require.Equal(t, fiber.StatusCreated, code, string(raw))

	require.Len(t, h.uploader.uploaded, 2)
	for key, size := range h.uploader.uploaded {
		assert.True(t, strings.HasPrefix(key, "products/burr-grinder/"), key)
		assert.True(t, strings.HasSuffix(key, ".webp"), key)
		assert.Positive(t, size)
	}

	code, _ = uploadImage(t, h, product.ID, token, "notes.txt")
	assert.Equal(t, fiber.StatusBadRequest, code)

	stored, err := h.store.Products.WithOrdered("Images", `"order" ASC`).GetByID(ctx, product.ID)
	require.NoError(t, err)
	require.Len(t, stored.Images, 2)
	assert.True(t, stored.Images[0].IsCover)
	assert.False(t, stored.Images[1].IsCover)

	code, _ = h.do("DELETE", "/api/admin/products/"+product.ID+"/images/"+stored.Images[0].ID, nil, token)
	require.Equal(t, fiber.StatusNoContent, code)
	assert.Equal(t, []string{stored.Images[0].URL}, h.uploader.deleted)

	promoted, err := h.store.ProductImages.GetByID(ctx, stored.Images[1].ID)
	require.NoError(t, err)
	assert.True(t, promoted.IsCover)

	code, _ = h.do("DELETE", "/api/admin/products/other/images/"+promoted.ID, nil, token)
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestProductImages_Limit(t *testing.T) {
	h := newHarness(t)
	token, _ := h.admin()
	product := h.product("Burr Grinder", 250, true)

	for i := 0; i < 12; i++ {
		require.NoError(t, h.store.ProductImages.Create(context.Background(), &model.ProductImage{
			ProductID: product.ID,
			URL:       "https://cdn.example.com/x.webp",
			Order:     i,
		}))
	}

	code, raw := uploadImage(t, h, product.ID, token, "one-more.png")
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Contains(t, string(raw), "Maximum image limit reached (12)")
	assert.Empty(t, h.uploader.uploaded)
}
