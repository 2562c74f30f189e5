package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"pairconnect/api/internal/application"
	"pairconnect/api/middleware"
	"pairconnect/api/models"
	"pairconnect/api/utils"
)

// SignUpRequest defines the expected request body for creating an account.
type SignUpRequest struct {
	Name     string `json:"name" validate:"required"`
	Username string `json:"username" validate:"required,max=40"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest defines the expected request body for a password login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by signup and login. AccessToken is omitted and
// NeedsLogin set when an account was created but no token could be issued.
type AuthResponse struct {
	User        models.User `json:"user"`
	AccessToken string      `json:"accessToken,omitempty"`
	NeedsLogin  bool        `json:"needsLogin,omitempty"`
}

// HealthResponse is the body of the health check.
type HealthResponse struct {
	Status    string    `json:"status" example:"ok"`
	Timestamp time.Time `json:"timestamp"`
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *ApplicationHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(HealthResponse{Status: "ok", Timestamp: time.Now().UTC()})
}

// SignUp godoc
// @Summary Create an account
// @Description Creates the auth account and profile, then signs the user in.
// @Tags auth
// @Accept json
// @Produce json
// @Param account body SignUpRequest true "Account to create"
// @Success 201 {object} utils.SuccessResponse{data=AuthResponse}
// @Failure 400 {object} utils.ErrorResponse "Missing fields, username taken or account rejected"
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/auth/signup [post]
func (h *ApplicationHandler) SignUp(c *fiber.Ctx) error {
	req := new(SignUpRequest)
	if err := h.bind(c, req); err != nil {
		return h.fail(c, err)
	}

	result, err := h.Auth.SignUp(c.UserContext(), application.SignUpInput{
		Name:     utils.SanitizeInput(req.Name),
		Username: utils.SanitizeInput(req.Username),
		Email:    utils.SanitizeInput(req.Email),
		Password: req.Password,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusCreated, authResponse(result))
}

// Login godoc
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} utils.SuccessResponse{data=AuthResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse "Invalid email or password"
// @Router /api/v1/auth/login [post]
func (h *ApplicationHandler) Login(c *fiber.Ctx) error {
	req := new(LoginRequest)
	if err := h.bind(c, req); err != nil {
		return h.fail(c, err)
	}

	result, err := h.Auth.Login(c.UserContext(), utils.SanitizeInput(req.Email), req.Password)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, authResponse(result))
}

// CurrentSession godoc
// @Summary Current user
// @Description Returns the caller's profile with bookmarks.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.SuccessResponse{data=models.User}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/auth/session [get]
func (h *ApplicationHandler) CurrentSession(c *fiber.Ctx) error {
	user, err := h.Auth.Session(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, user)
}

func authResponse(result *application.AuthResult) AuthResponse {
	return AuthResponse{User: result.User, AccessToken: result.AccessToken, NeedsLogin: result.NeedsLogin}
}
