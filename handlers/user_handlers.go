package handlers

import (
	"github.com/gofiber/fiber/v2"

	"pairconnect/api/internal/application"
	"pairconnect/api/internal/apperr"
	"pairconnect/api/middleware"
	"pairconnect/api/models"
	"pairconnect/api/utils"
)

// UpdateUserRequest defines the mutable profile fields. Omitted fields are
// left untouched; id, email and createdAt are ignored.
type UpdateUserRequest struct {
	Username        *string              `json:"username,omitempty" validate:"omitempty,min=1,max=40"`
	Name            *string              `json:"name,omitempty"`
	Avatar          *string              `json:"avatar,omitempty"`
	Bio             *string              `json:"bio,omitempty" validate:"omitempty,max=2000"`
	Stack           *models.Stack        `json:"stack,omitempty" validate:"omitempty,oneof=Frontend Backend Fullstack"`
	Level           *models.Level        `json:"level,omitempty" validate:"omitempty,oneof=Junior Mid Senior"`
	Languages       []string             `json:"languages,omitempty"`
	Contacts        *models.Contacts     `json:"contacts,omitempty"`
	ProfilePublic   *bool                `json:"profilePublic,omitempty"`
	PrivacySettings *models.PrivacyFlags `json:"privacySettings,omitempty"`
}

// SearchUsers godoc
// @Summary Search public profiles
// @Tags users
// @Produce json
// @Param q query string false "Name or username fragment"
// @Param stack query string false "Stack" Enums(Frontend, Backend, Fullstack)
// @Param level query string false "Level" Enums(Junior, Mid, Senior)
// @Success 200 {object} utils.SuccessResponse{data=[]models.User}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/users [get]
func (h *ApplicationHandler) SearchUsers(c *fiber.Ctx) error {
	users, err := h.Users.Search(c.UserContext(), models.UserFilter{
		Query: utils.SanitizeInput(c.Query("q")),
		Stack: models.Stack(c.Query("stack")),
		Level: models.Level(c.Query("level")),
	})
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, users)
}

// GetUser godoc
// @Summary Get a profile
// @Description Fields are hidden according to the profile's privacy settings unless the caller owns it.
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} utils.SuccessResponse{data=models.User}
// @Failure 403 {object} utils.ErrorResponse "Profile is private"
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/users/{id} [get]
func (h *ApplicationHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.Users.Get(c.UserContext(), c.Params("id"), middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, user)
}

// UpdateUser godoc
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param profile body UpdateUserRequest true "Fields to change"
// @Success 200 {object} utils.SuccessResponse{data=models.User}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Router /api/v1/users/{id} [put]
func (h *ApplicationHandler) UpdateUser(c *fiber.Ctx) error {
	req := new(UpdateUserRequest)
	if err := h.bind(c, req); err != nil {
		return h.fail(c, err)
	}

	user, err := h.Users.Update(c.UserContext(), c.Params("id"), middleware.UserID(c), models.UserUpdate{
		Username:        req.Username,
		Name:            req.Name,
		Avatar:          req.Avatar,
		Bio:             req.Bio,
		Stack:           req.Stack,
		Level:           req.Level,
		Languages:       req.Languages,
		Contacts:        req.Contacts,
		ProfilePublic:   req.ProfilePublic,
		PrivacySettings: req.PrivacySettings,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, user)
}

// UploadAvatar godoc
// @Summary Upload a profile picture
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param file formData file true "JPEG, PNG, WebP or GIF up to 5 MB"
// @Success 200 {object} utils.SuccessResponse{data=models.User}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Router /api/v1/users/{id}/avatar [post]
func (h *ApplicationHandler) UploadAvatar(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return h.fail(c, apperr.InvalidInput("No file provided"))
	}
	file, err := fileHeader.Open()
	if err != nil {
		return h.fail(c, apperr.Internal("Could not read uploaded file", err))
	}
	defer file.Close()

	user, err := h.Users.UploadAvatar(c.UserContext(), c.Params("id"), middleware.UserID(c), application.AvatarUpload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get(fiber.HeaderContentType),
		Size:        fileHeader.Size,
		Data:        file,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, user)
}
