package handlers

import (
	"github.com/gofiber/fiber/v2"

	"pairconnect/api/internal/application"
	"pairconnect/api/middleware"
	"pairconnect/api/models"
	"pairconnect/api/utils"
)

// CreateProjectRequest defines the expected request body for creating a project.
// Title is required. Stack and level default to Fullstack and Junior.
type CreateProjectRequest struct {
	Title       string       `json:"title" validate:"required,max=200"`
	Description string       `json:"description"`
	Image       *string      `json:"image,omitempty"`
	Stack       models.Stack `json:"stack,omitempty" validate:"omitempty,oneof=Frontend Backend Fullstack"`
	Level       models.Level `json:"level,omitempty" validate:"omitempty,oneof=Junior Mid Senior"`
	Languages   []string     `json:"languages,omitempty"`
}

// UpdateProjectRequest defines the mutable project fields. Omitted fields are
// left untouched.
type UpdateProjectRequest struct {
	Title       *string       `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string       `json:"description,omitempty"`
	Image       *string       `json:"image,omitempty"`
	Stack       *models.Stack `json:"stack,omitempty" validate:"omitempty,oneof=Frontend Backend Fullstack"`
	Level       *models.Level `json:"level,omitempty" validate:"omitempty,oneof=Junior Mid Senior"`
	Languages   []string      `json:"languages,omitempty"`
}

// ResolveRequestBody carries the owner's decision on a join request.
type ResolveRequestBody struct {
	Action string `json:"action" validate:"required" example:"accept"`
}

// CreateProject godoc
// @Summary Create a new project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param project body CreateProjectRequest true "Project to create"
// @Success 201 {object} utils.SuccessResponse{data=models.Project}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Router /api/v1/projects [post]
func (h *ApplicationHandler) CreateProject(c *fiber.Ctx) error {
	req := new(CreateProjectRequest)
	if err := h.bind(c, req); err != nil {
		return h.fail(c, err)
	}

	project, err := h.Projects.Create(c.UserContext(), middleware.UserID(c), application.ProjectInput{
		Title:       utils.SanitizeInput(req.Title),
		Description: req.Description,
		Image:       req.Image,
		Stack:       req.Stack,
		Level:       req.Level,
		Languages:   req.Languages,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusCreated, project)
}

// ListProjects godoc
// @Summary List projects
// @Description Newest first.
// @Tags projects
// @Produce json
// @Param ownerId query string false "Owner user ID"
// @Param stack query string false "Stack" Enums(Frontend, Backend, Fullstack)
// @Param level query string false "Level" Enums(Junior, Mid, Senior)
// @Success 200 {object} utils.SuccessResponse{data=[]models.Project}
// @Router /api/v1/projects [get]
func (h *ApplicationHandler) ListProjects(c *fiber.Ctx) error {
	projects, err := h.Projects.List(c.UserContext(), models.ProjectFilter{
		OwnerID: c.Query("ownerId"),
		Stack:   models.Stack(c.Query("stack")),
		Level:   models.Level(c.Query("level")),
	})
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, projects)
}

// GetProject godoc
// @Summary Get a project
// @Tags projects
// @Produce json
// @Param id path string true "Project ID"
// @Success 200 {object} utils.SuccessResponse{data=models.Project}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/projects/{id} [get]
func (h *ApplicationHandler) GetProject(c *fiber.Ctx) error {
	project, err := h.Projects.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, project)
}

// UpdateProject godoc
// @Summary Update an owned project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param project body UpdateProjectRequest true "Fields to change"
// @Success 200 {object} utils.SuccessResponse{data=models.Project}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/projects/{id} [put]
func (h *ApplicationHandler) UpdateProject(c *fiber.Ctx) error {
	req := new(UpdateProjectRequest)
	if err := h.bind(c, req); err != nil {
		return h.fail(c, err)
	}

	project, err := h.Projects.Update(c.UserContext(), c.Params("id"), middleware.UserID(c), models.ProjectUpdate{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Stack:       req.Stack,
		Level:       req.Level,
		Languages:   req.Languages,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, project)
}

// DeleteProject godoc
// @Summary Delete an owned project
// @Description Sessions and join requests of the project are removed with it.
// @Tags projects
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 204 "No Content"
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/projects/{id} [delete]
func (h *ApplicationHandler) DeleteProject(c *fiber.Ctx) error {
	if err := h.Projects.Delete(c.UserContext(), c.Params("id"), middleware.UserID(c)); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleProjectInterest godoc
// @Summary Request to join a project, or withdraw the request
// @Description Creates a pending join request when none exists; otherwise deletes the existing request whatever its status.
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} utils.SuccessResponse{data=models.Project}
// @Failure 403 {object} utils.ErrorResponse "Owners cannot request their own project"
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/projects/{id}/interested [post]
func (h *ApplicationHandler) ToggleProjectInterest(c *fiber.Ctx) error {
	project, err := h.Requests.ExpressInterest(c.UserContext(), c.Params("id"), middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, project)
}

// ListProjectRequests godoc
// @Summary List join requests of an owned project
// @Tags requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Success 200 {object} utils.SuccessResponse{data=[]models.ProjectRequest}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/projects/{id}/requests [get]
func (h *ApplicationHandler) ListProjectRequests(c *fiber.Ctx) error {
	requests, err := h.Requests.ListRequests(c.UserContext(), c.Params("id"), middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, requests)
}

// ResolveProjectRequest godoc
// @Summary Accept or reject a join request
// @Description Accepting adds the requester to every session of the project.
// @Tags requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Project ID"
// @Param requestId path string true "Request ID"
// @Param decision body ResolveRequestBody true "accept or reject"
// @Success 200 {object} utils.SuccessResponse{data=models.ProjectRequest}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/projects/{id}/requests/{requestId} [post]
func (h *ApplicationHandler) ResolveProjectRequest(c *fiber.Ctx) error {
	req := new(ResolveRequestBody)
	if err := h.bind(c, req); err != nil {
		return h.fail(c, err)
	}

	request, err := h.Requests.ResolveRequest(
		c.UserContext(),
		c.Params("id"),
		c.Params("requestId"),
		middleware.UserID(c),
		application.RequestAction(utils.SanitizeInput(req.Action)),
	)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, request)
}
