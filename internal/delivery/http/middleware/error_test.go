package middleware

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"mockraft/internal/logger"
	"mockraft/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newErrorApp(h fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(NewErrorMiddleware(logger.Discard()).Middleware())
	app.Get("/", h)
	return app
}

func doGet(t *testing.T, app *fiber.App) (int, response.SemanticResponse) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body response.SemanticResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestErrorMiddleware_AppErrorKeepsMessageAndData(t *testing.T) {
	app := newErrorApp(func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusConflict, "Answer already analyzed", map[string]int{"position": 2}, errors.New("dup"))
	})

	status, body := doGet(t, app)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, fiber.StatusConflict, body.Status)
	assert.Equal(t, "Answer already analyzed", body.Message)
	assert.NotNil(t, body.Data)
}

func TestErrorMiddleware_ServerErrorsHideDetail(t *testing.T) {
	app := newErrorApp(func(c fiber.Ctx) error {
		return NewAppError(fiber.StatusBadGateway, "ai said: secret", map[string]string{"raw": "x"}, errors.New("boom"))
	})

	status, body := doGet(t, app)
	assert.Equal(t, fiber.StatusBadGateway, status)
	assert.Equal(t, response.MessageBadGateway, body.Message)
	assert.Nil(t, body.Data)
}

func TestErrorMiddleware_UnknownErrorIs500(t *testing.T) {
	app := newErrorApp(func(c fiber.Ctx) error {
		return errors.New("db exploded")
	})

	status, body := doGet(t, app)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, response.MessageInternalServerError, body.Message)
}

func TestErrorMiddleware_RecoversPanic(t *testing.T) {
	app := newErrorApp(func(c fiber.Ctx) error {
		panic("nil map")
	})

	status, body := doGet(t, app)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, response.MessageInternalServerError, body.Message)
}

func TestErrorMiddleware_FiberErrorUsesItsCode(t *testing.T) {
	app := newErrorApp(func(c fiber.Ctx) error {
		return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	})

	status, body := doGet(t, app)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized", body.Message)
}
