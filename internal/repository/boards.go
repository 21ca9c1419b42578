// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/williansouza19122014/Timesheet-sub000/internal/model"
)

// BoardFilter restricts a board listing.
type BoardFilter struct {
	// ProjectID limits the listing to a single project when set.
	ProjectID *uuid.UUID
	// MemberUserID limits the listing to boards of projects where this
	// user holds an active membership. Set for non-manager actors.
	MemberUserID *uuid.UUID
	// IncludeArchived keeps archived boards in the result.
	IncludeArchived bool
}

// BoardPatch carries partial board updates; nil fields are untouched.
type BoardPatch struct {
	Name        *string
	Description *string
}

// ColumnPatch carries partial column updates; nil fields are untouched.
// ClearLimit removes the WIP cap and takes precedence over Limit.
type ColumnPatch struct {
	Title      *string
	Limit      *int
	ClearLimit bool
	Position   *int
}

// BoardRepository provides transactional access to boards and their columns.
// Position-shifting methods keep column positions dense per board.
type BoardRepository interface {
	// List returns boards matching the filter, nested and position-sorted.
	List(ctx context.Context, f BoardFilter) ([]model.Board, error)

	// Get loads one board with nested, position-sorted columns and cards.
	Get(ctx context.Context, id uuid.UUID) (*model.Board, error)

	// Create inserts the board and its seeded columns atomically.
	Create(ctx context.Context, b *model.Board) error

	// Update applies a partial board patch.
	Update(ctx context.Context, id uuid.UUID, patch BoardPatch) error

	// SetArchived flips the archive flag.
	SetArchived(ctx context.Context, id uuid.UUID, archived bool) error

	// GetColumn loads a single column without its cards.
	GetColumn(ctx context.Context, id uuid.UUID) (*model.Column, error)

	// CreateColumn inserts a column, shifting siblings when desired points
	// inside the existing sequence. The final position is written to col.
	CreateColumn(ctx context.Context, col *model.Column, desired *int) error

	// UpdateColumn applies a partial column patch; a position change moves
	// the column within its board and shifts the siblings in between.
	UpdateColumn(ctx context.Context, id uuid.UUID, patch ColumnPatch) error

	// DeleteColumn removes a column. A non-nil moveTo migrates its cards to
	// that column as a bulk append; otherwise the column must be empty
	// (errs.ErrPrecondition). Trailing columns are compacted.
	DeleteColumn(ctx context.Context, col *model.Column, moveTo *model.Column) error
}
