package apperror

import (
	"errors"

	"butce-backend/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const genericMessage = "Beklenmeyen sunucu hatası"

// ErrorHandler renders errors as {"error": msg}. Server faults are logged with
// their cause; the cause is echoed to the client only when exposeDetail is set.
func ErrorHandler(exposeDetail bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if appErr, ok := As(err); ok {
			status := appErr.Status()
			body := fiber.Map{"error": appErr.Message}
			if appErr.Retryable() {
				body["retryable"] = true
			}
			if status >= fiber.StatusInternalServerError {
				logger.FromCtx(c).Error("İstek işlenemedi", zap.String("kind", string(appErr.Kind)), zap.Error(appErr.Err))
				if exposeDetail && appErr.Err != nil {
					body["detail"] = appErr.Err.Error()
				}
			}
			return c.Status(status).JSON(body)
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		logger.FromCtx(c).Error("Beklenmeyen hata", zap.Error(err))
		body := fiber.Map{"error": genericMessage}
		if exposeDetail {
			body["detail"] = err.Error()
		}
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}
}
