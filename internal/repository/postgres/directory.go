package postgres

import (
	"context"

	"github.com/gofrs/uuid/v5"
)

// Directory implements access.ProjectDirectory against the projects and
// project_members tables owned by the project-management subsystem.
type Directory struct{ db *DB }

// NewDirectory constructs a project directory.
func NewDirectory(db *DB) *Directory { return &Directory{db: db} }

// ProjectExists reports whether the project row is present.
func (d *Directory) ProjectExists(ctx context.Context, projectID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM projects WHERE id=$1)`
	var ok bool
	if err := d.db.Pool.QueryRow(ctx, q, projectID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// IsActiveMember reports whether the user holds a membership of the project
// that has not ended.
func (d *Directory) IsActiveMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	const q = `
SELECT EXISTS (
	SELECT 1 FROM project_members
	WHERE project_id=$1 AND user_id=$2 AND ended_at IS NULL
)`
	var ok bool
	if err := d.db.Pool.QueryRow(ctx, q, projectID, userID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
