package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberSwagger "github.com/swaggo/fiber-swagger"

	_ "pairconnect/api/docs"
	"pairconnect/api/internal/identity"
	"pairconnect/api/middleware"
	"pairconnect/api/utils"
)

// BodyLimit leaves room for a maximum size avatar plus multipart framing.
const BodyLimit = 6 << 20

// NewApp builds the Fiber application with its middleware and routes.
func NewApp(h *ApplicationHandler, verifier identity.Verifier, corsOrigins string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Pair Connect API",
		BodyLimit:    BodyLimit,
		Immutable:    true,
		ErrorHandler: h.errorHandler,
	})

	if corsOrigins == "" {
		corsOrigins = "*"
	}
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(middleware.RequestLogger(h.Logger))
	app.Use(middleware.Authenticate(verifier, h.Logger))

	SetupRoutes(app, h)
	return app
}

// SetupRoutes registers every route of the API.
func SetupRoutes(app *fiber.App, h *ApplicationHandler) {
	app.Get("/health", h.Health)
	app.Get("/swagger/*", fiberSwagger.WrapHandler)

	auth := middleware.RequireAuth()
	apiV1 := app.Group("/api/v1")

	apiV1.Post("/auth/signup", h.SignUp)
	apiV1.Post("/auth/login", h.Login)
	apiV1.Get("/auth/session", auth, h.CurrentSession)

	apiV1.Get("/users", h.SearchUsers)
	apiV1.Get("/users/:id", h.GetUser)
	apiV1.Put("/users/:id", auth, h.UpdateUser)
	apiV1.Post("/users/:id/avatar", auth, h.UploadAvatar)

	apiV1.Post("/projects", auth, h.CreateProject)
	apiV1.Get("/projects", h.ListProjects)
	apiV1.Get("/projects/:id", h.GetProject)
	apiV1.Put("/projects/:id", auth, h.UpdateProject)
	apiV1.Delete("/projects/:id", auth, h.DeleteProject)
	apiV1.Post("/projects/:id/interested", auth, h.ToggleProjectInterest)
	apiV1.Get("/projects/:id/requests", auth, h.ListProjectRequests)
	apiV1.Post("/projects/:id/requests/:requestId", auth, h.ResolveProjectRequest)

	apiV1.Post("/sessions", auth, h.CreateSession)
	apiV1.Get("/sessions", h.ListSessions)
	apiV1.Get("/sessions/:id", h.GetSession)
	apiV1.Put("/sessions/:id", auth, h.UpdateSession)
	apiV1.Delete("/sessions/:id", auth, h.DeleteSession)
	apiV1.Post("/sessions/:id/join", auth, h.JoinSession)
	apiV1.Post("/sessions/:id/leave", auth, h.LeaveSession)
	apiV1.Post("/sessions/:id/interested", auth, h.ToggleSessionInterest)

	apiV1.Get("/bookmarks", auth, h.ListBookmarks)
	apiV1.Post("/bookmarks/toggle", auth, h.ToggleBookmark)
}

func (h *ApplicationHandler) errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return utils.RespondWithError(c, fiberErr.Code, fiberErr.Message)
	}
	return h.fail(c, err)
}
