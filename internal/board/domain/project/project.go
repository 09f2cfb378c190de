package project

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/davidrzs/Timeboard/internal/shared/domain"
)

var (
	ErrEmptyName       = errors.New("project name cannot be empty")
	ErrProjectNotFound = errors.New("project not found")
)

// Project is a named list tasks can be ordered under.
type Project struct {
	domain.BaseEntity
	userID   uuid.UUID
	name     string
	color    string
	position int
	archived bool
}

// NewProject creates a project for the given user.
func NewProject(userID uuid.UUID, name string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	return &Project{
		BaseEntity: domain.NewBaseEntity(),
		userID:     userID,
		name:       name,
	}, nil
}

// RehydrateProject rebuilds a project from persisted state.
func RehydrateProject(entity domain.BaseEntity, userID uuid.UUID, name, color string, position int, archived bool) *Project {
	return &Project{
		BaseEntity: entity,
		userID:     userID,
		name:       name,
		color:      color,
		position:   position,
		archived:   archived,
	}
}

func (p *Project) UserID() uuid.UUID { return p.userID }
func (p *Project) Name() string      { return p.name }
func (p *Project) Color() string     { return p.color }
func (p *Project) Position() int     { return p.position }
func (p *Project) IsArchived() bool  { return p.archived }

// Rename changes the project name.
func (p *Project) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	p.name = name
	p.Touch()
	return nil
}

// SetColor changes the display color.
func (p *Project) SetColor(color string) {
	p.color = color
	p.Touch()
}

// SetPosition orders the project among its siblings.
func (p *Project) SetPosition(position int) {
	if position < 0 {
		position = 0
	}
	p.position = position
	p.Touch()
}

// Archive hides the project from the board.
func (p *Project) Archive() {
	p.archived = true
	p.Touch()
}

// Repository persists projects.
//
// FindByID returns (nil, nil) when the project does not exist.
type Repository interface {
	Save(ctx context.Context, p *Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
