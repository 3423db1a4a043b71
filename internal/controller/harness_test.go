package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront_backend/internal/controller"
	"storefront_backend/internal/model"
	"storefront_backend/internal/repository"
	"storefront_backend/internal/repository/repotest"
	"storefront_backend/internal/scoring"
	"storefront_backend/pkg/cache"
	"storefront_backend/pkg/notify"
	"storefront_backend/pkg/utils/image"
	"storefront_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockNotifier struct {
	mu       sync.Mutex
	payloads []notify.Payload
}

func (m *mockNotifier) NotifyNewLead(ctx context.Context, p notify.Payload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = append(m.payloads, p)
}

type mockUploader struct {
	uploaded map[string]int
	deleted  []string
}

func (m *mockUploader) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	n, _ := io.Copy(io.Discard, body)
	m.uploaded[key] = int(n)
	return "https://cdn.example.com/" + key, nil
}

func (m *mockUploader) Delete(ctx context.Context, url string) error {
	m.deleted = append(m.deleted, url)
	return nil
}

type mockWelcome struct {
	sent []string
}

func (m *mockWelcome) SendWelcomeEmail(email, name string) error {
	m.sent = append(m.sent, email)
	return nil
}

type harness struct {
	t        *testing.T
	app      *fiber.App
	store    *repository.Store
	tokens   *jwt.Manager
	notifier *mockNotifier
	uploader *mockUploader
	welcome  *mockWelcome
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newCachedHarness(t, nil)
}

// newCachedHarness serves the public catalog through catalog.
func newCachedHarness(t *testing.T, catalog *cache.Client) *harness {
	t.Helper()

	h := &harness{
		t:        t,
		store:    repotest.Open(t),
		tokens:   jwt.NewManager("test-secret", time.Hour),
		notifier: &mockNotifier{},
		uploader: &mockUploader{uploaded: map[string]int{}},
		welcome:  &mockWelcome{},
	}

	engine := scoring.NewEngine(h.store.Products, h.store.Leads)
	handlers := &controller.Handlers{
		Auth:      controller.NewAuthController(h.store, h.tokens, h.welcome),
		Brands:    controller.NewBrandController(h.store, catalog),
		Products:  controller.NewProductController(h.store, catalog, h.uploader, image.Options{MaxEdge: 64}),
		Wishlists: controller.NewWishlistController(h.store),
		Leads:     controller.NewLeadController(h.store, engine, h.notifier),
	}

	h.app = fiber.New(fiber.Config{ErrorHandler: controller.ErrorHandler})
	controller.SetupRoutes(h.app, handlers, h.tokens)
	return h
}

func (h *harness) token(subject, email, role string) string {
	h.t.Helper()
	token, err := h.tokens.GenerateToken(subject, email, role)
	require.NoError(h.t, err)
	return token
}

// admin stores a back-office user and returns its token.
func (h *harness) admin() (string, *model.User) {
	h.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(h.t, err)
	user := &model.User{Email: "admin@example.com", Password: string(hash), Name: "Admin", Role: model.RoleAdmin}
	require.NoError(h.t, h.store.Users.Create(context.Background(), user))
	return h.token(user.ID, user.Email, jwt.RoleAdmin), user
}

func (h *harness) product(name string, price float64, published bool) *model.Product {
	h.t.Helper()
	p := &model.Product{Name: name, Price: price, Currency: model.CurrencyUSD, Published: published}
	require.NoError(h.t, h.store.Products.Create(context.Background(), p))
	return p
}

func (h *harness) do(method, path string, body interface{}, token string) (int, map[string]interface{}) {
	h.t.Helper()
	code, raw := h.doRaw(method, path, body, token)
	out := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(h.t, json.Unmarshal(raw, &out), string(raw))
	}
	return code, out
}

func (h *harness) doRaw(method, path string, body interface{}, token string) (int, []byte) {
	h.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return h.send(req, token)
}

func (h *harness) send(req *http.Request, token string) (int, []byte) {
	h.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.app.Test(req, -1)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return resp.StatusCode, raw
}

// list decodes a JSON array response.
func (h *harness) list(method, path, token string) (int, []map[string]interface{}) {
	h.t.Helper()
	code, raw := h.doRaw(method, path, nil, token)
	var out []map[string]interface{}
	if code < 300 {
		require.NoError(h.t, json.Unmarshal(raw, &out), string(raw))
	}
	return code, out
}

func longMessage() string {
	return strings.Repeat("x", 25)
}
