package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/davidrzs/Timeboard/internal/board/domain/project"
	"github.com/davidrzs/Timeboard/internal/shared/domain"
	"github.com/davidrzs/Timeboard/internal/shared/infrastructure/database"
)

const projectColumns = `id, user_id, name, color, position, archived, created_at, updated_at`

// ProjectRepository persists projects.
type ProjectRepository struct {
	conn database.Connection
}

// NewProjectRepository creates the repository.
func NewProjectRepository(conn database.Connection) *ProjectRepository {
	return &ProjectRepository{conn: conn}
}

func (r *ProjectRepository) q(query string) string {
	return database.Rebind(r.conn.Driver(), query)
}

// Save inserts or updates a project.
func (r *ProjectRepository) Save(ctx context.Context, p *project.Project) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	query := r.q(`
		INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			color = excluded.color,
			position = excluded.position,
			archived = excluded.archived,
			updated_at = excluded.updated_at
	`)

	var color any
	if p.Color() != "" {
		color = p.Color()
	}

	_, err := exec.Exec(ctx, query,
		p.ID().String(),
		p.UserID().String(),
		p.Name(),
		color,
		p.Position(),
		boolInt(p.IsArchived()),
		p.CreatedAt().Format(time.RFC3339),
		p.UpdatedAt().Format(time.RFC3339),
	)
	return err
}

// FindByID returns a project, or (nil, nil) when it does not exist.
func (r *ProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, r.q(`SELECT `+projectColumns+` FROM projects WHERE id = ?`), id.String())

	p, err := scanProject(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return p, err
}

// FindByUser returns the user's unarchived projects in position order.
func (r *ProjectRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*project.Project, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	query := r.q(`
		SELECT ` + projectColumns + `
		FROM projects
		WHERE user_id = ? AND archived = 0
		ORDER BY position ASC, created_at ASC
	`)

	rows, err := exec.Query(ctx, query, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Delete removes a project. Task rows keep their project_id nulled by
// the schema's ON DELETE SET NULL.
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, r.q(`DELETE FROM projects WHERE id = ?`), id.String())
	return err
}

func scanProject(row scanner) (*project.Project, error) {
	var (
		id, userID, name     string
		color                sql.NullString
		position, archived   int
		createdAt, updatedAt string
	)

	if err := row.Scan(&id, &userID, &name, &color, &position, &archived, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	projectID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse project id: %w", err)
	}
	owner, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	updated, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	entity := domain.RehydrateBaseEntity(projectID, created, updated)
	return project.RehydrateProject(entity, owner, name, color.String, position, archived != 0), nil
}
