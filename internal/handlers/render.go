package handlers

import (
	"log"

	"arenda/internal/customerrors"
	"arenda/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps an error kind to the HTTP status of the response.
func statusFor(err error) int {
	switch customerrors.KindOf(err) {
	case customerrors.Validation:
		return fiber.StatusBadRequest
	case customerrors.Duplicate:
		return fiber.StatusConflict
	case customerrors.Auth:
		return fiber.StatusUnauthorized
	case customerrors.Permission:
		return fiber.StatusForbidden
	case customerrors.NotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// render executes a view with the session user added to data.
func render(c *fiber.Ctx, status int, view string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["CurrentUser"] = middleware.CurrentUsername(c)
	return c.Status(status).Render(view, data)
}

// renderError shows the error page. Internal errors are logged and their
// details kept out of the response.
func renderError(c *fiber.Ctx, err error) error {
	switch customerrors.KindOf(err) {
	case customerrors.Internal:
		log.Printf("Error handling %s %s: %v", c.Method(), c.Path(), err)
	case customerrors.Permission:
		if _, ok := middleware.CurrentUserID(c); !ok {
			return c.Redirect("/login", fiber.StatusSeeOther)
		}
	}
	status := statusFor(err)
	return render(c, status, "error", fiber.Map{
		"Title":   "Error",
		"Status":  status,
		"Message": customerrors.Message(err),
	})
}
