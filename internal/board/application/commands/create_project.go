package commands

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/davidrzs/Timeboard/internal/board/domain/project"
	"github.com/davidrzs/Timeboard/internal/shared/application"
)

// CreateProjectCommand creates a project at the end of the list.
type CreateProjectCommand struct {
	UserID uuid.UUID
	Name   string
	Color  string
}

// CreateProjectHandler handles project creation.
type CreateProjectHandler struct {
	projects project.Repository
	uow      application.UnitOfWork
	logger   *slog.Logger
}

// NewCreateProjectHandler wires the handler.
func NewCreateProjectHandler(projects project.Repository, uow application.UnitOfWork, logger *slog.Logger) *CreateProjectHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CreateProjectHandler{projects: projects, uow: uow, logger: logger}
}

// Handle creates the project.
func (h *CreateProjectHandler) Handle(ctx context.Context, cmd CreateProjectCommand) (*project.Project, error) {
	p, err := project.NewProject(cmd.UserID, cmd.Name)
	if err != nil {
		return nil, err
	}
	if cmd.Color != "" {
		p.SetColor(cmd.Color)
	}

	err = application.WithUnitOfWork(ctx, h.uow, func(ctx context.Context) error {
		existing, err := h.projects.FindByUser(ctx, cmd.UserID)
		if err != nil {
			return err
		}
		p.SetPosition(len(existing))
		return h.projects.Save(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("project created", "project_id", p.ID(), "name", p.Name())
	return p, nil
}
