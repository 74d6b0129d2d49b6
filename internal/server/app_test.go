package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAppErrorHandler drives the app built by NewApp, the same construction
// Start uses, so the configured error handler is on the request path.
func TestAppErrorHandler(t *testing.T) {
	t.Parallel()
	srv, _, _ := newTestServer(t, nil)
	app := srv.NewApp()
	app.Get("/explode", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	resp := doJSON(t, app, http.MethodGet, "/explode", "", nil)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := errBody(t, resp)
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
	assert.Equal(t, "Internal server error", body["error"])

	// Router-level errors keep their status instead of collapsing to 500.
	resp = doJSON(t, app, http.MethodGet, "/no-such-route", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
