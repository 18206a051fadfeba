package serverutils

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newThrottleTestApp(limit int) *fiber.App {
	app := fiber.New()
	counters := cache.New(time.Minute, time.Minute)
	app.Get("/ping", ThrottleMiddleware(counters, limit, time.Minute), func(ctx *fiber.Ctx) error {
		return ctx.SendString("pong")
	})
	return app
}

func TestThrottleMiddlewareAllowsUnderLimit(t *testing.T) {
	app := newThrottleTestApp(3)

	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}

func TestThrottleMiddlewareRejectsOverLimit(t *testing.T) {
	app := newThrottleTestApp(2)

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}

func TestThrottleMiddlewareDisabledWithZeroLimit(t *testing.T) {
	app := newThrottleTestApp(0)

	for i := 0; i < 10; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}

func TestValidateRequest(t *testing.T) {
	type payload struct {
		Name string `validate:"required,max=8"`
	}

	assert.NoError(t, ValidateRequest(payload{Name: "ok"}))

	err := ValidateRequest(payload{})
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, fiber.StatusBadRequest, appErr.Status)
}
