package handlers

import (
	"log"
	"time"

	"arenda/internal/customerrors"
	"arenda/internal/middleware"
	"arenda/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for registration and sessions.
type AuthHandler struct {
	authService  *services.AuthService
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookieSecure: cookieSecure,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	router.Get("/register", h.ShowRegister)
	router.Post("/register", h.HandleRegister)
	router.Get("/login", h.ShowLogin)
	router.Post("/login", h.HandleLogin)
	router.Get("/logout", requireAuth, h.HandleLogout)
}

// ShowRegister renders the empty registration form.
func (h *AuthHandler) ShowRegister(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, "register", fiber.Map{"Title": "Register", "Form": services.RegisterInput{}})
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		log.Printf("Error parsing register request body: %v", err)
		return h.registerForm(c, in, customerrors.Validationf("invalid request body"))
	}

	if _, err := h.authService.RegisterUser(in); err != nil {
		return h.registerForm(c, in, err)
	}
	return c.Redirect("/login", fiber.StatusSeeOther)
}

func (h *AuthHandler) registerForm(c *fiber.Ctx, in services.RegisterInput, err error) error {
	if customerrors.KindOf(err) == customerrors.Internal {
		return renderError(c, err)
	}
	// For security, do not echo the password back
	in.Password = ""
	return render(c, statusFor(err), "register", fiber.Map{
		"Title": "Register",
		"Form":  in,
		"Error": customerrors.Message(err),
	})
}

// ShowLogin renders the login form.
func (h *AuthHandler) ShowLogin(c *fiber.Ctx) error {
	return render(c, fiber.StatusOK, "login", fiber.Map{"Title": "Log in"})
}

// HandleLogin checks the credentials and starts a session.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var in services.LoginInput
	if err := c.BodyParser(&in); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return h.loginForm(c, in.Username, customerrors.Validationf("invalid request body"))
	}

	token, _, err := h.authService.LoginUser(in)
	if err != nil {
		log.Printf("Error during login for user %s: %v", in.Username, err)
		return h.loginForm(c, in.Username, err)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.authService.TokenDuration()),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (h *AuthHandler) loginForm(c *fiber.Ctx, username string, err error) error {
	if customerrors.KindOf(err) == customerrors.Internal {
		return renderError(c, err)
	}
	return render(c, statusFor(err), "login", fiber.Map{
		"Title":    "Log in",
		"Username": username,
		"Error":    customerrors.Message(err),
	})
}

// HandleLogout ends the session.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect("/", fiber.StatusSeeOther)
}
