package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"parlor/internal/config"
	"parlor/internal/models"
	"parlor/internal/payment"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gatewayStub implements payment.Gateway for handler tests. Set the function
// fields a test needs; unset calls fail loudly.
type gatewayStub struct {
	createFn func(ctx context.Context, params payment.CheckoutParams) (*payment.CheckoutSession, error)
	subFn    func(ctx context.Context, params payment.SubscriptionParams) (*payment.CheckoutSession, error)
	getFn    func(ctx context.Context, sessionID string) (*payment.CheckoutSession, error)
}

func (g *gatewayStub) CreateCheckoutSession(ctx context.Context, params payment.CheckoutParams) (*payment.CheckoutSession, error) {
	if g.createFn == nil {
		return nil, errors.New("unexpected CreateCheckoutSession call")
	}
	return g.createFn(ctx, params)
}

func (g *gatewayStub) CreateSubscriptionSession(ctx context.Context, params payment.SubscriptionParams) (*payment.CheckoutSession, error) {
	if g.subFn == nil {
		return nil, errors.New("unexpected CreateSubscriptionSession call")
	}
	return g.subFn(ctx, params)
}

func (g *gatewayStub) GetCheckoutSession(ctx context.Context, sessionID string) (*payment.CheckoutSession, error) {
	if g.getFn == nil {
		return nil, errors.New("unexpected GetCheckoutSession call")
	}
	return g.getFn(ctx, sessionID)
}

// newTestServer wires a Server against in-memory sqlite, a nil redis client,
// and the given gateway stub, with the real route table mounted.
func newTestServer(t *testing.T, gateway payment.Gateway) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A second pooled connection to :memory: would see a fresh empty database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Listing{},
		&models.ListingService{},
		&models.Employee{},
		&models.StoreHour{},
		&models.Reservation{},
		&models.Notification{},
		&models.Follow{},
		&models.ListingFollow{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Bookmark{},
	))

	cfg := &config.Config{
		Env:                "test",
		JWTSecret:          "test-secret-for-handler-tests",
		CheckoutSuccessURL: "http://localhost:5173/checkout/success",
		CheckoutCancelURL:  "http://localhost:5173/checkout/cancel",
		StripePriceBasic:   "price_basic_test",
		StripePricePro:     "price_pro_test",
	}

	if gateway == nil {
		gateway = &gatewayStub{}
	}
	srv, err := NewServerWithDeps(cfg, db, nil, gateway)
	require.NoError(t, err)

	app := fiber.New()
	srv.SetupRoutes(app)
	return srv, app, db
}

// signupUser registers a user through the real signup endpoint and returns
// the bearer token and decoded user.
func signupUser(t *testing.T, app *fiber.App, username string) (string, *models.User) {
	t.Helper()
	body := fiber.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": "Password123!demo",
	}
	resp := doJSON(t, app, http.MethodPost, "/api/auth/signup", "", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	decodeBody(t, resp, &out)
	require.NotEmpty(t, out.Token)
	return "Bearer " + out.Token, &out.User
}

// doJSON performs a request with an optional JSON body and auth header.
func doJSON(t *testing.T, app *fiber.App, method, path, auth string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// errBody decodes the standard error envelope.
func errBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	decodeBody(t, resp, &out)
	return out
}

func uintPath(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}
