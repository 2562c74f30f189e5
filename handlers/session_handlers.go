package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"pairconnect/api/internal/application"
	"pairconnect/api/middleware"
	"pairconnect/api/models"
	"pairconnect/api/utils"
)

// CreateSessionRequest defines the expected request body for scheduling a
// session. Duration and maxParticipants default to 60 and 4.
type CreateSessionRequest struct {
	ProjectID       string    `json:"projectId" validate:"required"`
	Title           string    `json:"title" validate:"required,max=200"`
	Description     string    `json:"description"`
	Date            time.Time `json:"date" validate:"required"`
	Duration        int       `json:"duration,omitempty" validate:"gte=0"`
	MaxParticipants int       `json:"maxParticipants,omitempty" validate:"gte=0"`
	Link            *string   `json:"link,omitempty" validate:"omitempty,url"`
}

// UpdateSessionRequest defines the mutable session fields. Omitted fields are
// left untouched.
type UpdateSessionRequest struct {
	Title           *string    `json:"title,omitempty" validate:"omitempty,max=200"`
	Description     *string    `json:"description,omitempty"`
	Date            *time.Time `json:"date,omitempty"`
	Duration        *int       `json:"duration,omitempty" validate:"omitempty,gt=0"`
	MaxParticipants *int       `json:"maxParticipants,omitempty" validate:"omitempty,gt=0"`
	Link            *string    `json:"link,omitempty" validate:"omitempty,url"`
}

// ToggleBookmarkRequest names the session to bookmark or unbookmark.
type ToggleBookmarkRequest struct {
	SessionID string `json:"sessionId"`
}

// InterestResponse reports the caller's session interest after a toggle.
type InterestResponse struct {
	IsInterested bool `json:"isInterested"`
}

// BookmarkResponse reports the caller's bookmarks after a toggle.
type BookmarkResponse struct {
	Bookmarks    []string `json:"bookmarks"`
	IsBookmarked bool     `json:"isBookmarked"`
}

// CreateSession godoc
// @Summary Schedule a session
// @Description The caller must own the project and becomes the first participant.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param session body CreateSessionRequest true "Session to create"
// @Success 201 {object} utils.SuccessResponse{data=models.Session}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions [post]
func (h *ApplicationHandler) CreateSession(c *fiber.Ctx) error {
	req := new(CreateSessionRequest)
	if err := h.bind(c, req); err != nil {
		return h.fail(c, err)
	}

	session, err := h.Sessions.Create(c.UserContext(), middleware.UserID(c), application.SessionInput{
		ProjectID:       req.ProjectID,
		Title:           utils.SanitizeInput(req.Title),
		Description:     req.Description,
		Date:            req.Date,
		Duration:        req.Duration,
		MaxParticipants: req.MaxParticipants,
		Link:            req.Link,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusCreated, session)
}

// ListSessions godoc
// @Summary List sessions
// @Description Latest date first. The link is null unless the caller owns or participates in the session.
// @Tags sessions
// @Produce json
// @Param projectId query string false "Project ID"
// @Param ownerId query string false "Owner user ID"
// @Success 200 {object} utils.SuccessResponse{data=[]models.Session}
// @Router /api/v1/sessions [get]
func (h *ApplicationHandler) ListSessions(c *fiber.Ctx) error {
	sessions, err := h.Sessions.List(c.UserContext(), models.SessionFilter{
		ProjectID: c.Query("projectId"),
		OwnerID:   c.Query("ownerId"),
	}, middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, sessions)
}

// GetSession godoc
// @Summary Get a session
// @Description The link is null unless the caller owns or participates in the session.
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} utils.SuccessResponse{data=models.Session}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id} [get]
func (h *ApplicationHandler) GetSession(c *fiber.Ctx) error {
	session, err := h.Sessions.Get(c.UserContext(), c.Params("id"), middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, session)
}

// UpdateSession godoc
// @Summary Update an owned session
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param session body UpdateSessionRequest true "Fields to change"
// @Success 200 {object} utils.SuccessResponse{data=models.Session}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id} [put]
func (h *ApplicationHandler) UpdateSession(c *fiber.Ctx) error {
	req := new(UpdateSessionRequest)
	if err := h.bind(c, req); err != nil {
		return h.fail(c, err)
	}

	session, err := h.Sessions.Update(c.UserContext(), c.Params("id"), middleware.UserID(c), models.SessionUpdate{
		Title:           req.Title,
		Description:     req.Description,
		Date:            req.Date,
		Duration:        req.Duration,
		MaxParticipants: req.MaxParticipants,
		Link:            req.Link,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, session)
}

// DeleteSession godoc
// @Summary Delete an owned session
// @Tags sessions
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 204 "No Content"
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id} [delete]
func (h *ApplicationHandler) DeleteSession(c *fiber.Ctx) error {
	if err := h.Sessions.Delete(c.UserContext(), c.Params("id"), middleware.UserID(c)); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// JoinSession godoc
// @Summary Join a session
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} utils.SuccessResponse{data=models.Session}
// @Failure 400 {object} utils.ErrorResponse "Already joined or session full"
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/join [post]
func (h *ApplicationHandler) JoinSession(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if err := h.Sessions.Join(c.UserContext(), c.Params("id"), userID); err != nil {
		return h.fail(c, err)
	}
	return h.respondWithSession(c, userID)
}

// LeaveSession godoc
// @Summary Leave a session
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} utils.SuccessResponse{data=models.Session}
// @Failure 403 {object} utils.ErrorResponse "The owner cannot leave"
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/leave [post]
func (h *ApplicationHandler) LeaveSession(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if err := h.Sessions.Leave(c.UserContext(), c.Params("id"), userID); err != nil {
		return h.fail(c, err)
	}
	return h.respondWithSession(c, userID)
}

// ToggleSessionInterest godoc
// @Summary Mark or unmark interest in a session
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} utils.SuccessResponse{data=InterestResponse}
// @Failure 400 {object} utils.ErrorResponse "Already participating"
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sessions/{id}/interested [post]
func (h *ApplicationHandler) ToggleSessionInterest(c *fiber.Ctx) error {
	interested, err := h.Sessions.ToggleInterest(c.UserContext(), c.Params("id"), middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, InterestResponse{IsInterested: interested})
}

// ListBookmarks godoc
// @Summary List bookmarked sessions
// @Tags bookmarks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.SuccessResponse{data=[]models.Session}
// @Router /api/v1/bookmarks [get]
func (h *ApplicationHandler) ListBookmarks(c *fiber.Ctx) error {
	sessions, err := h.Sessions.Bookmarks(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, sessions)
}

// ToggleBookmark godoc
// @Summary Bookmark or unbookmark a session
// @Tags bookmarks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bookmark body ToggleBookmarkRequest true "Session to toggle"
// @Success 200 {object} utils.SuccessResponse{data=BookmarkResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/bookmarks/toggle [post]
func (h *ApplicationHandler) ToggleBookmark(c *fiber.Ctx) error {
	req := new(ToggleBookmarkRequest)
	if err := h.bind(c, req); err != nil {
		return h.fail(c, err)
	}

	bookmarks, bookmarked, err := h.Sessions.ToggleBookmark(c.UserContext(), middleware.UserID(c), utils.SanitizeInput(req.SessionID))
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, BookmarkResponse{Bookmarks: bookmarks, IsBookmarked: bookmarked})
}

func (h *ApplicationHandler) respondWithSession(c *fiber.Ctx, viewerID string) error {
	session, err := h.Sessions.Get(c.UserContext(), c.Params("id"), viewerID)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.RespondWithJSON(c, fiber.StatusOK, session)
}
