package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"

	"pairconnect/api/internal/identity"
	"pairconnect/api/utils"
)

// UserIDKey is the fiber.Ctx locals key holding the authenticated user id.
const UserIDKey = "userid"

// Authenticate resolves the bearer token, when one is sent, and stores the
// caller's id in the request locals. Requests without a valid token continue
// anonymously. The token is copied out of the request buffer, so the stored
// id stays valid after the handler returns.
func Authenticate(verifier identity.Verifier, logger logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := fiberutils.CopyString(bearerToken(c.Get(fiber.HeaderAuthorization)))
		if token == "" {
			return c.Next()
		}
		userID, err := verifier.Verify(c.UserContext(), token)
		if err != nil {
			logger.WithError(err).WithField("request_id", RequestID(c)).Debug("bearer token rejected")
			return c.Next()
		}
		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// RequireAuth rejects requests that Authenticate did not resolve to a user.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if UserID(c) == "" {
			return utils.RespondWithError(c, fiber.StatusUnauthorized, "Unauthorized")
		}
		return c.Next()
	}
}

// UserID returns the authenticated caller's id, or "" for anonymous requests.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDKey).(string)
	return id
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
