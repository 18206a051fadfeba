package serverutils

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func TestErrorConstructors(t *testing.T) {
	cases := []struct {
		err    *AppError
		status int
		code   string
	}{
		{NewValidationError("bad"), fiber.StatusBadRequest, "validation_error"},
		{NewNotFoundError("missing"), fiber.StatusNotFound, "not_found"},
		{NewConflictError(), fiber.StatusConflict, "conflict"},
		{NewQuotaExceededError("full"), fiber.StatusPaymentRequired, "limit_exceeded"},
		{NewInternalError("boom"), fiber.StatusInternalServerError, "internal_error"},
	}

	for _, c := range cases {
		assert.Equal(t, c.status, c.err.Status)
		assert.Equal(t, c.code, c.err.Code)
		assert.NotEmpty(t, c.err.Error())
	}
}

func TestFromDBError(t *testing.T) {
	assert.NoError(t, FromDBError(nil))

	lockErr := &pgconn.PgError{Code: "55P03"}
	translated := FromDBError(lockErr)
	var appErr *AppError
	require.ErrorAs(t, translated, &appErr)
	assert.Equal(t, fiber.StatusConflict, appErr.Status)

	plain := errors.New("connection reset")
	assert.Equal(t, plain, FromDBError(plain))

	otherPg := &pgconn.PgError{Code: "23505"}
	assert.Equal(t, otherPg, FromDBError(otherPg).(*pgconn.PgError))
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware(nopLogger{}))
	app.Get("/conflict", func(ctx *fiber.Ctx) error {
		return NewConflictError()
	})
	app.Get("/quota", func(ctx *fiber.Ctx) error {
		return NewQuotaExceededError("exceeded limit of 8 notebooks per user")
	})
	app.Get("/boom", func(ctx *fiber.Ctx) error {
		return errors.New("unexpected")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/conflict", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/quota", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "limit_exceeded")
	assert.Contains(t, string(body), "exceeded limit of 8 notebooks per user")

	resp, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	body, _ = io.ReadAll(resp.Body)
	assert.NotContains(t, string(body), "unexpected", "internal details must not leak")
}
