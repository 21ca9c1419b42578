// Package service contains the kanban engine's application services. The
// board and card services together form the public operation surface: they
// authorize, validate, normalize, delegate the transactional work to the
// repositories, and return the freshly reloaded nested board so callers
// never observe a partially-shifted state.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/williansouza19122014/Timesheet-sub000/internal/access"
	"github.com/williansouza19122014/Timesheet-sub000/internal/errs"
	"github.com/williansouza19122014/Timesheet-sub000/internal/model"
	"github.com/williansouza19122014/Timesheet-sub000/internal/repository"
)

// Default columns seeded into every new board, positions 0..2.
var defaultColumnTitles = []string{"Backlog", "Em andamento", "Concluido"}

// BoardListFilter narrows a board listing.
type BoardListFilter struct {
	ProjectID       *uuid.UUID
	IncludeArchived bool
}

// CreateBoardInput carries the fields for a new board.
type CreateBoardInput struct {
	ProjectID   uuid.UUID
	Name        string
	Description string
}

// UpdateBoardInput is a partial board patch; nil fields are untouched.
type UpdateBoardInput struct {
	Name        *string
	Description *string
}

// CreateColumnInput carries the fields for a new column.
type CreateColumnInput struct {
	Title    string
	Limit    *int
	Position *int
}

// UpdateColumnInput is a partial column patch; nil fields are untouched.
// ClearLimit removes the WIP cap.
type UpdateColumnInput struct {
	Title      *string
	Limit      *int
	ClearLimit bool
	Position   *int
}

// BoardService defines board and column operations.
type BoardService interface {
	// List returns the boards visible to the actor, nested and sorted.
	List(ctx context.Context, actor model.Actor, f BoardListFilter) ([]model.Board, error)
	// Create makes a board for a project with the three default columns.
	Create(ctx context.Context, actor model.Actor, in CreateBoardInput) (*model.Board, error)
	// Update patches board name/description.
	Update(ctx context.Context, actor model.Actor, boardID uuid.UUID, in UpdateBoardInput) (*model.Board, error)
	// SetArchived soft-disables or restores a board.
	SetArchived(ctx context.Context, actor model.Actor, boardID uuid.UUID, archived bool) (*model.Board, error)
	// CreateColumn adds a column to a board.
	CreateColumn(ctx context.Context, actor model.Actor, boardID uuid.UUID, in CreateColumnInput) (*model.Board, error)
	// UpdateColumn patches a column's title, limit, or position.
	UpdateColumn(ctx context.Context, actor model.Actor, columnID uuid.UUID, in UpdateColumnInput) (*model.Board, error)
	// DeleteColumn removes a column, optionally migrating its cards.
	DeleteColumn(ctx context.Context, actor model.Actor, columnID uuid.UUID, moveCardsTo *uuid.UUID) (*model.Board, error)
}

type BoardServiceImpl struct {
	boards repository.BoardRepository
	guard  *access.Guard
}

// NewBoardService constructs BoardService.
func NewBoardService(boards repository.BoardRepository, guard *access.Guard) *BoardServiceImpl {
	return &BoardServiceImpl{boards: boards, guard: guard}
}

// List restricts the listing to what the actor may see: a requested project
// requires access to it; without a project filter, non-managers only see
// boards of projects where they hold an active membership.
func (s *BoardServiceImpl) List(ctx context.Context, actor model.Actor, f BoardListFilter) ([]model.Board, error) {
	rf := repository.BoardFilter{IncludeArchived: f.IncludeArchived}
	if f.ProjectID != nil {
		if _, err := s.guard.Resolve(ctx, *f.ProjectID, actor); err != nil {
			return nil, err
		}
		rf.ProjectID = f.ProjectID
	} else if !access.Decide(actor).CanManageBoards() {
		uid := actor.ID
		rf.MemberUserID = &uid
	}
	return s.boards.List(ctx, rf)
}

// Create seeds a new board with the default columns.
func (s *BoardServiceImpl) Create(ctx context.Context, actor model.Actor, in CreateBoardInput) (*model.Board, error) {
	if !access.Decide(actor).CanManageBoards() {
		return nil, fmt.Errorf("manager role required: %w", errs.ErrForbidden)
	}
	if err := s.guard.EnsureProject(ctx, in.ProjectID); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("board name is required: %w", errs.ErrValidation)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	b := &model.Board{
		ID:          id,
		ProjectID:   in.ProjectID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		CreatedBy:   actor.ID,
	}
	for i, title := range defaultColumnTitles {
		cid, err := uuid.NewV4()
		if err != nil {
			return nil, err
		}
		b.Columns = append(b.Columns, model.Column{
			ID:       cid,
			BoardID:  id,
			Title:    title,
			Position: i,
			Cards:    []model.Card{},
		})
	}
	if err := s.boards.Create(ctx, b); err != nil {
		return nil, err
	}
	return s.boards.Get(ctx, id)
}

// Update patches name/description and returns the reloaded board.
func (s *BoardServiceImpl) Update(ctx context.Context, actor model.Actor, boardID uuid.UUID, in UpdateBoardInput) (*model.Board, error) {
	b, err := s.boards.Get(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.RequireManager(ctx, b.ProjectID, actor); err != nil {
		return nil, err
	}

	patch := repository.BoardPatch{Description: in.Description}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("board name is required: %w", errs.ErrValidation)
		}
		patch.Name = &name
	}
	if err := s.boards.Update(ctx, boardID, patch); err != nil {
		return nil, err
	}
	return s.boards.Get(ctx, boardID)
}

// SetArchived flips the archive flag and returns the reloaded board.
func (s *BoardServiceImpl) SetArchived(ctx context.Context, actor model.Actor, boardID uuid.UUID, archived bool) (*model.Board, error) {
	b, err := s.boards.Get(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.RequireManager(ctx, b.ProjectID, actor); err != nil {
		return nil, err
	}
	if err := s.boards.SetArchived(ctx, boardID, archived); err != nil {
		return nil, err
	}
	return s.boards.Get(ctx, boardID)
}

// CreateColumn inserts a column at the requested (clamped) position.
func (s *BoardServiceImpl) CreateColumn(ctx context.Context, actor model.Actor, boardID uuid.UUID, in CreateColumnInput) (*model.Board, error) {
	b, err := s.boards.Get(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.RequireManager(ctx, b.ProjectID, actor); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("column title is required: %w", errs.ErrValidation)
	}
	if in.Limit != nil && *in.Limit < 0 {
		return nil, fmt.Errorf("column limit must not be negative: %w", errs.ErrValidation)
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	col := &model.Column{ID: id, BoardID: boardID, Title: title, Limit: in.Limit}
	if err := s.boards.CreateColumn(ctx, col, in.Position); err != nil {
		return nil, err
	}
	return s.boards.Get(ctx, boardID)
}

// UpdateColumn patches a column and returns the reloaded board.
func (s *BoardServiceImpl) UpdateColumn(ctx context.Context, actor model.Actor, columnID uuid.UUID, in UpdateColumnInput) (*model.Board, error) {
	col, err := s.boards.GetColumn(ctx, columnID)
	if err != nil {
		return nil, err
	}
	b, err := s.boards.Get(ctx, col.BoardID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.RequireManager(ctx, b.ProjectID, actor); err != nil {
		return nil, err
	}

	patch := repository.ColumnPatch{ClearLimit: in.ClearLimit, Position: in.Position}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("column title is required: %w", errs.ErrValidation)
		}
		patch.Title = &title
	}
	if !in.ClearLimit && in.Limit != nil {
		if *in.Limit < 0 {
			return nil, fmt.Errorf("column limit must not be negative: %w", errs.ErrValidation)
		}
		patch.Limit = in.Limit
	}
	if err := s.boards.UpdateColumn(ctx, columnID, patch); err != nil {
		return nil, err
	}
	return s.boards.Get(ctx, col.BoardID)
}

// DeleteColumn removes a column after migrating its cards to the optional
// target on the same board; a non-empty column without a target fails.
func (s *BoardServiceImpl) DeleteColumn(ctx context.Context, actor model.Actor, columnID uuid.UUID, moveCardsTo *uuid.UUID) (*model.Board, error) {
	col, err := s.boards.GetColumn(ctx, columnID)
	if err != nil {
		return nil, err
	}
	b, err := s.boards.Get(ctx, col.BoardID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.RequireManager(ctx, b.ProjectID, actor); err != nil {
		return nil, err
	}

	var target *model.Column
	if moveCardsTo != nil {
		if *moveCardsTo == columnID {
			return nil, fmt.Errorf("migration target equals the deleted column: %w", errs.ErrValidation)
		}
		target, err = s.boards.GetColumn(ctx, *moveCardsTo)
		if err != nil {
			return nil, err
		}
		if target.BoardID != col.BoardID {
			return nil, fmt.Errorf("migration target must belong to the same board: %w", errs.ErrPrecondition)
		}
	}
	if err := s.boards.DeleteColumn(ctx, col, target); err != nil {
		return nil, err
	}
	return s.boards.Get(ctx, col.BoardID)
}
