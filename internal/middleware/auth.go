package middleware

import (
	"context"
	"encoding/base64"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"go.uber.org/zap"

	"taskmanager/internal/models"
	"taskmanager/pkg/logger"
)

const principalKey = "principal"

// StaticBasicAuth guards routes with a single fixed username/password.
func StaticBasicAuth(username, password string) fiber.Handler {
	return basicauth.New(basicauth.Config{
		Users: map[string]string{username: password},
		Realm: "Login Required",
		Unauthorized: func(c *fiber.Ctx) error {
			logger.SecurityLogger.Warn("Static credentials rejected", zap.String("url", c.OriginalURL()))
			c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="Login Required"`)
			return c.Status(fiber.StatusUnauthorized).SendString("Could not verify the login")
		},
	})
}

type CredentialVerifier interface {
	VerifyCredentials(ctx context.Context, username, password string) (models.Principal, bool, error)
}

// BasicAuth checks HTTP Basic credentials against the credential store and
// stores the resolved principal in the request locals.
func BasicAuth(verifier CredentialVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username, password, ok := parseBasicAuth(c.Get(fiber.HeaderAuthorization))
		if !ok {
			logger.SecurityLogger.Warn("Missing basic credentials", zap.String("url", c.OriginalURL()))
			return unauthorized(c)
		}

		principal, ok, err := verifier.VerifyCredentials(c.UserContext(), username, password)
		if err != nil {
			logger.ErrorLogger.Error("Error verifying credentials", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Error verifying credentials",
				"success": false,
				"status":  fiber.StatusInternalServerError,
			})
		}
		if !ok {
			logger.SecurityLogger.Warn("Invalid credentials", zap.String("username", username))
			return unauthorized(c)
		}

		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// PrincipalFrom returns the principal set by BasicAuth.
func PrincipalFrom(c *fiber.Ctx) (models.Principal, bool) {
	p, ok := c.Locals(principalKey).(models.Principal)
	return p, ok
}

func unauthorized(c *fiber.Ctx) error {
	c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="Authentication Required"`)
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"message": "Unauthorized access",
		"success": false,
		"status":  fiber.StatusUnauthorized,
	})
}

func parseBasicAuth(header string) (username, password string, ok bool) {
	const prefix = "Basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(header[len(prefix):]))
	if err != nil {
		return "", "", false
	}
	username, password, ok = strings.Cut(string(raw), ":")
	return username, password, ok
}
