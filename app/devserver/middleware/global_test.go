package middleware

import (
	"adminctl/app/devserver/mapper"
	"adminctl/app/util"
	"adminctl/app/util/testkit"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	di := testkit.NewInjector(t, testkit.Config(t, "http://127.0.0.1:1/api/v1/"))
	do.Provide(di, NewMetrics)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler,
	})
	FiberMiddleware(app, di)

	app.Get("/echo", func(c *fiber.Ctx) error {
		return c.SendString(util.GetRequestIDFromContext(c.UserContext()))
	})
	app.Get("/panic", func(*fiber.Ctx) error {
		panic("nil map write")
	})

	return app
}

func TestRequestContext_RequestID(t *testing.T) {
	app := newTestApp(t)

	t.Run("client id is kept", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/echo", nil)
		req.Header.Set(RequestIDHeader, "req-42")

		resp, err := app.Test(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, "req-42", resp.Header.Get(RequestIDHeader))

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "req-42", string(body))
	})

	t.Run("missing id is generated", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/echo", nil))
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Len(t, resp.Header.Get(RequestIDHeader), 36)
	})
}

func TestFiberMiddleware_PanicAnswersWithEnvelope(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var env mapper.Envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, http.StatusInternalServerError, env.StatusCode)
	assert.NotEmpty(t, env.Message)
}
