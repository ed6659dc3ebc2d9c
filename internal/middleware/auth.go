package middleware

import (
	"achievify/pkg/apperror"
	"achievify/pkg/logger"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const tokenUserKey = "tokenUserID"

type TokenVerifier interface {
	VerifyToken(raw string) (int64, error)
}

// Identity reads an optional bearer token. Requests without one pass
// through untouched; a present but invalid token is rejected.
func Identity(v TokenVerifier, log *logger.Loggers) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return c.Next()
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			log.Security.Warn("Invalid token format", zap.String("ip", c.IP()))
			return apperror.Unauthorized("Invalid token format")
		}
		userID, err := v.VerifyToken(parts[1])
		if err != nil {
			log.Security.Warn("Token rejected", zap.String("ip", c.IP()), zap.Error(err))
			return err
		}
		c.Locals(tokenUserKey, userID)
		return c.Next()
	}
}

// TokenUser returns the user a verified bearer token belongs to.
func TokenUser(c *fiber.Ctx) (int64, bool) {
	id, ok := c.Locals(tokenUserKey).(int64)
	return id, ok
}
