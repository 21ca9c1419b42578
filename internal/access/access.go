// Package access decides what an actor may do with a project's boards.
package access

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/williansouza19122014/Timesheet-sub000/internal/errs"
	"github.com/williansouza19122014/Timesheet-sub000/internal/model"
)

// Decision is the capability an actor holds for a project, resolved once
// per operation.
type Decision int

// Decisions in increasing capability order.
const (
	None Decision = iota
	Member
	Manager
	Admin
)

// CanManageBoards reports whether the decision allows board and column
// mutation. Card mutation only needs Member.
func (d Decision) CanManageBoards() bool { return d >= Manager }

// ProjectDirectory answers project existence and membership questions.
// It is implemented by the external project-management subsystem.
type ProjectDirectory interface {
	// ProjectExists reports whether the project is known.
	ProjectExists(ctx context.Context, projectID uuid.UUID) (bool, error)
	// IsActiveMember reports whether the user holds a membership of the
	// project that has not ended.
	IsActiveMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error)
}

// Guard evaluates access decisions against the project directory.
type Guard struct {
	dir ProjectDirectory
}

// NewGuard constructs a Guard.
func NewGuard(dir ProjectDirectory) *Guard { return &Guard{dir: dir} }

// Decide maps an actor's role to its project-independent capability.
func Decide(actor model.Actor) Decision {
	switch actor.Role {
	case model.RoleAdmin:
		return Admin
	case model.RoleManager:
		return Manager
	}
	return None
}

// Resolve returns the actor's decision for the given project. Admins and
// managers pass without a membership lookup. Other actors need an active
// membership; errs.ErrNotFound if the project does not exist,
// errs.ErrForbidden if it does but the actor is not an active member.
func (g *Guard) Resolve(ctx context.Context, projectID uuid.UUID, actor model.Actor) (Decision, error) {
	if d := Decide(actor); d.CanManageBoards() {
		return d, nil
	}

	exists, err := g.dir.ProjectExists(ctx, projectID)
	if err != nil {
		return None, fmt.Errorf("project lookup: %w", err)
	}
	if !exists {
		return None, fmt.Errorf("project %s: %w", projectID, errs.ErrNotFound)
	}

	active, err := g.dir.IsActiveMember(ctx, projectID, actor.ID)
	if err != nil {
		return None, fmt.Errorf("membership lookup: %w", err)
	}
	if !active {
		return None, fmt.Errorf("project %s: %w", projectID, errs.ErrForbidden)
	}
	return Member, nil
}

// EnsureProject fails with errs.ErrNotFound when the project is unknown.
// Unlike Resolve, the existence check is not bypassed for managers.
func (g *Guard) EnsureProject(ctx context.Context, projectID uuid.UUID) error {
	exists, err := g.dir.ProjectExists(ctx, projectID)
	if err != nil {
		return fmt.Errorf("project lookup: %w", err)
	}
	if !exists {
		return fmt.Errorf("project %s: %w", projectID, errs.ErrNotFound)
	}
	return nil
}

// RequireManager resolves the decision and rejects anything below Manager.
func (g *Guard) RequireManager(ctx context.Context, projectID uuid.UUID, actor model.Actor) (Decision, error) {
	d, err := g.Resolve(ctx, projectID, actor)
	if err != nil {
		return None, err
	}
	if !d.CanManageBoards() {
		return None, fmt.Errorf("manager role required: %w", errs.ErrForbidden)
	}
	return d, nil
}
