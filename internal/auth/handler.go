package auth

import (
	"butce-backend/internal/apperror"
	"butce-backend/internal/config"
	"butce-backend/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func LoginHandler(cfg *config.Config, verifier CredentialVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}
		if body.Username == "" || body.Password == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Kullanıcı adı ve şifre zorunlu")
		}

		identity, err := verifier.Verify(c.UserContext(), body.Username, body.Password)
		if err != nil {
			return err
		}
		if identity == nil {
			logger.FromCtx(c).Warn("Başarısız giriş denemesi", zap.String("username", body.Username))
			return apperror.Unauthorized("Kullanıcı adı veya şifre hatalı")
		}

		token, err := GenerateToken(cfg.JWTSecret, identity)
		if err != nil {
			return apperror.Internal("Token oluşturulamadı", err)
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user":  identity,
		})
	}
}

func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := CurrentUser(c)
		if !ok {
			return apperror.Unauthorized("Oturum bulunamadı")
		}
		return c.JSON(identity)
	}
}
