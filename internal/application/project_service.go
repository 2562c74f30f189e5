package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"pairconnect/api/internal/apperr"
	"pairconnect/api/models"
)

// ProjectInput captures caller provided fields for a new project.
type ProjectInput struct {
	Title       string
	Description string
	Image       *string
	Stack       models.Stack
	Level       models.Level
	Languages   []string
}

// ProjectService handles project CRUD. Every project it returns carries the
// ids of users whose join request was accepted.
type ProjectService struct {
	store    Store
	identity IdentityProvider
	logger   logrus.FieldLogger
}

// NewProjectService constructs a project service.
func NewProjectService(store Store, identity IdentityProvider, logger logrus.FieldLogger) *ProjectService {
	return &ProjectService{store: store, identity: identity, logger: defaultLogger(logger)}
}

// Create stores a new project owned by userID.
func (s *ProjectService) Create(ctx context.Context, userID string, input ProjectInput) (*models.Project, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperr.InvalidInput("title is required")
	}
	if input.Stack == "" {
		input.Stack = models.StackFullstack
	}
	if input.Level == "" {
		input.Level = models.LevelJunior
	}
	if !validStack(input.Stack) || !validLevel(input.Level) {
		return nil, apperr.InvalidInput("invalid stack or level")
	}
	if input.Languages == nil {
		input.Languages = []string{}
	}

	if err := ensureProfile(ctx, s.store, s.identity, userID); err != nil {
		return nil, err
	}

	project, err := s.store.InsertProject(ctx, models.Project{
		OwnerID:     userID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Image:       input.Image,
		Stack:       input.Stack,
		Level:       input.Level,
		Languages:   input.Languages,
	})
	if err != nil {
		return nil, apperr.Internal("could not create project", err)
	}
	project.Interested = []string{}

	serviceLogger(s.logger, "ProjectService", "Create").
		WithFields(logrus.Fields{"project_id": project.ID, "owner_id": userID}).
		Info("project created")
	return project, nil
}

// Get returns a single project.
func (s *ProjectService) Get(ctx context.Context, id string) (*models.Project, error) {
	project, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, lookupError(err, "project")
	}
	if err := s.attachInterested(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// List returns projects matching filter, newest first.
func (s *ProjectService) List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	projects, err := s.store.ListProjects(ctx, filter)
	if err != nil {
		return nil, apperr.Internal("could not load projects", err)
	}
	for i := range projects {
		if err := s.attachInterested(ctx, &projects[i]); err != nil {
			return nil, err
		}
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return projects, nil
}

// Update changes an owned project.
func (s *ProjectService) Update(ctx context.Context, id, userID string, update models.ProjectUpdate) (*models.Project, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, id, userID); err != nil {
		return nil, err
	}
	if update.Title != nil && strings.TrimSpace(*update.Title) == "" {
		return nil, apperr.InvalidInput("title cannot be empty")
	}
	if update.Stack != nil && !validStack(*update.Stack) {
		return nil, apperr.InvalidInput("invalid stack")
	}
	if update.Level != nil && !validLevel(*update.Level) {
		return nil, apperr.InvalidInput("invalid level")
	}

	project, err := s.store.UpdateProject(ctx, id, update)
	if err != nil {
		return nil, lookupError(err, "project")
	}
	if err := s.attachInterested(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes an owned project together with its sessions and requests.
func (s *ProjectService) Delete(ctx context.Context, id, userID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if err := s.checkOwner(ctx, id, userID); err != nil {
		return err
	}
	if err := s.store.DeleteProject(ctx, id); err != nil {
		return apperr.Internal("could not delete project", err)
	}
	serviceLogger(s.logger, "ProjectService", "Delete").
		WithField("project_id", id).
		Info("project deleted")
	return nil
}

func (s *ProjectService) checkOwner(ctx context.Context, id, userID string) error {
	project, err := s.store.GetProject(ctx, id)
	if err != nil {
		return lookupError(err, "project")
	}
	if project.OwnerID != userID {
		return apperr.Forbidden("not the project owner")
	}
	return nil
}

func (s *ProjectService) attachInterested(ctx context.Context, project *models.Project) error {
	accepted, err := s.store.AcceptedUserIDs(ctx, project.ID)
	if err != nil {
		return apperr.Internal("could not load project interest", err)
	}
	if accepted == nil {
		accepted = []string{}
	}
	project.Interested = accepted
	return nil
}
