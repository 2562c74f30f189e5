package handlers

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"pairconnect/api/internal/application"
	"pairconnect/api/internal/apperr"
	"pairconnect/api/middleware"
	"pairconnect/api/utils"
)

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Auth     *application.AuthService
	Users    *application.UserService
	Projects *application.ProjectService
	Sessions *application.SessionService
	Requests *application.RequestService

	Logger   logrus.FieldLogger
	validate *validator.Validate
}

// NewApplicationHandler creates a new ApplicationHandler with the given dependencies.
func NewApplicationHandler(
	auth *application.AuthService,
	users *application.UserService,
	projects *application.ProjectService,
	sessions *application.SessionService,
	requests *application.RequestService,
	logger logrus.FieldLogger,
) *ApplicationHandler {
	return &ApplicationHandler{
		Auth:     auth,
		Users:    users,
		Projects: projects,
		Sessions: sessions,
		Requests: requests,
		Logger:   logger,
		validate: validator.New(),
	}
}

// bind parses the JSON body into dst and validates it.
func (h *ApplicationHandler) bind(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return apperr.InvalidInput("Cannot parse request body")
	}
	if err := h.validate.Struct(dst); err != nil {
		return apperr.InvalidInput(strings.Join(utils.FormatValidationErrors(err), "; "))
	}
	return nil
}

func (h *ApplicationHandler) fail(c *fiber.Ctx, err error) error {
	return utils.RespondWithAppError(c, h.Logger.WithField("request_id", middleware.RequestID(c)), err)
}
