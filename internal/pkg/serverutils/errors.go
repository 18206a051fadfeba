package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"

	"sync-notes-be/internal/pkg/logger"
)

// AppError carries the HTTP mapping for the error taxonomy the sync engine
// raises. Services return these as plain errors; the middleware below turns
// them into the JSON error envelope.
type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

func NewValidationError(message string) *AppError {
	return &AppError{Status: fiber.StatusBadRequest, Code: "validation_error", Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Status: fiber.StatusNotFound, Code: "not_found", Message: message}
}

// NewConflictError signals a failed write precondition or a lock-wait
// timeout. The client is expected to re-fetch and retry.
func NewConflictError() *AppError {
	return &AppError{Status: fiber.StatusConflict, Code: "conflict", Message: "conflict"}
}

// NewQuotaExceededError maps to 402, distinct from validation errors: the
// request was well-formed, the account simply has no room left.
func NewQuotaExceededError(message string) *AppError {
	return &AppError{Status: fiber.StatusPaymentRequired, Code: "limit_exceeded", Message: message}
}

func NewInternalError(message string) *AppError {
	return &AppError{Status: fiber.StatusInternalServerError, Code: "internal_error", Message: message}
}

const pgLockNotAvailable = "55P03"

// FromDBError translates driver errors that have a defined client-facing
// meaning. Postgres reports an exceeded lock_timeout as 55P03; that is a
// retryable conflict, not a server fault.
func FromDBError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
		return NewConflictError()
	}
	return err
}

// ErrorHandlerMiddleware converts AppErrors and stray errors into the JSON
// error envelope. Anything without an explicit mapping is a 500 and gets
// logged with its route.
func ErrorHandlerMiddleware(log logger.ILogger) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var appErr *AppError
		if errors.As(err, &appErr) {
			if appErr.Status >= fiber.StatusInternalServerError {
				log.Error("http", appErr.Message, map[string]interface{}{
					"path":   ctx.Path(),
					"method": ctx.Method(),
				})
			}
			return ctx.Status(appErr.Status).JSON(fiber.Map{
				"error":   appErr.Code,
				"message": appErr.Message,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(fiber.Map{
				"error":   "request_error",
				"message": fiberErr.Message,
			})
		}

		log.Error("http", "unhandled error", map[string]interface{}{
			"path":   ctx.Path(),
			"method": ctx.Method(),
			"error":  err.Error(),
		})
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "internal_error",
			"message": "internal server error",
		})
	}
}
