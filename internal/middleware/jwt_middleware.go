package middleware

import (
	"log"
	"strings"

	"arenda/internal/services"

	"github.com/gofiber/fiber/v2"
)

// SessionCookie is the cookie holding the signed session token.
const SessionCookie = "session"

// LoadSession resolves the current user from the session cookie or an
// "Authorization: Bearer <token>" header. Requests without a valid token
// continue anonymously.
func LoadSession(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(SessionCookie)
		if tokenString == "" {
			// Expected format: "Bearer <token>"
			parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			return c.Next()
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			log.Printf("Ignoring invalid session token: %v", err)
			c.ClearCookie(SessionCookie)
			return c.Next()
		}

		// Store claims in Fiber context for subsequent handlers
		c.Locals("user_id", claims["user_id"])
		c.Locals("username", claims["username"])
		return c.Next()
	}
}

// AuthRequired sends anonymous visitors to the login page.
// It must run after LoadSession.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentUserID(c); !ok {
			return c.Redirect("/login", fiber.StatusSeeOther)
		}
		return c.Next()
	}
}

// CurrentUserID returns the id of the logged in user.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	// JSON numbers in claims decode as float64.
	switch id := c.Locals("user_id").(type) {
	case float64:
		if id > 0 {
			return uint(id), true
		}
	case uint:
		if id > 0 {
			return id, true
		}
	}
	return 0, false
}

// CurrentUsername returns the username of the logged in user, or "".
func CurrentUsername(c *fiber.Ctx) string {
	username, _ := c.Locals("username").(string)
	return username
}
