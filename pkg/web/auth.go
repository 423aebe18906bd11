package web

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dukex/formtrigger/pkg/auth"
	"github.com/gofiber/fiber/v3"
)

const (
	bearerPrefix  = "Bearer "
	userLocalsKey = "formtrigger.user_id"
)

// Authenticate resolves the bearer token of the request into the acting user.
// Requests without a token, or with an unknown one, continue anonymously.
func Authenticate(store auth.SessionStore, logger *slog.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return c.Next()
		}

		userID, err := store.UserForToken(requestContext(c), token)
		if err != nil {
			if errors.Is(err, auth.ErrSessionNotFound) {
				logger.DebugContext(requestContext(c), "Unknown session token, continuing anonymously")

				return c.Next()
			}

			return internalError(c, err)
		}

		c.Locals(userLocalsKey, userID)

		return c.Next()
	}
}

// RequireUser rejects anonymous requests.
func RequireUser() fiber.Handler {
	return func(c fiber.Ctx) error {
		if !auth.IsUserLoggedIn(requestContext(c)) {
			return unauthorized(c, "Authentication required")
		}

		return c.Next()
	}
}

func bearerToken(header string) string {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}

	return strings.TrimSpace(header[len(bearerPrefix):])
}

// requestContext returns the request context carrying the authenticated user,
// if any.
func requestContext(c fiber.Ctx) context.Context {
	var ctx context.Context = c.Context()

	if userID, ok := c.Locals(userLocalsKey).(int64); ok {
		return auth.WithUser(ctx, userID)
	}

	return ctx
}
