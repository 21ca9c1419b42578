package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/williansouza19122014/Timesheet-sub000/internal/access"
	"github.com/williansouza19122014/Timesheet-sub000/internal/errs"
	"github.com/williansouza19122014/Timesheet-sub000/internal/model"
	"github.com/williansouza19122014/Timesheet-sub000/internal/repository"
)

// CreateCardInput carries the fields for a new card. Tags and assignees are
// normalized (trimmed, deduplicated) by the service.
type CreateCardInput struct {
	Title       string
	Description string
	Status      model.Status
	Priority    model.Priority
	Tags        []string
	DueDate     *time.Time
	Position    *int
	Assignees   []uuid.UUID
	Correction  *model.Correction
}

// UpdateCardInput is a partial card patch. Nil fields are untouched; the
// *Set flags mark fields that were present in the patch with an explicit
// null/empty value, which clears them.
type UpdateCardInput struct {
	Title         *string
	Description   *string
	Status        *model.Status
	Priority      *model.Priority
	Tags          *[]string
	DueDate       *time.Time
	ClearDueDate  bool
	Assignees     *[]uuid.UUID
	Correction    *model.Correction
	CorrectionSet bool
}

// MoveCardInput names the destination of a card move. A nil TargetPosition
// appends to the destination column.
type MoveCardInput struct {
	TargetColumnID uuid.UUID
	TargetPosition *int
}

// CardService defines card operations. Unlike board/column mutation, card
// mutation is open to every active project member.
type CardService interface {
	// Create inserts a card into a column and records card_created.
	Create(ctx context.Context, actor model.Actor, columnID uuid.UUID, in CreateCardInput) (*model.Card, *model.Board, error)
	// Update applies a partial patch and records card_updated.
	Update(ctx context.Context, actor model.Actor, cardID uuid.UUID, in UpdateCardInput) (*model.Card, *model.Board, error)
	// Move relocates a card within its board and records card_moved.
	Move(ctx context.Context, actor model.Actor, cardID uuid.UUID, in MoveCardInput) (*model.Card, *model.Board, error)
	// Delete removes a card and records card_deleted.
	Delete(ctx context.Context, actor model.Actor, cardID uuid.UUID) (*model.Board, error)
	// ListActivity returns the card's trail, newest first.
	ListActivity(ctx context.Context, actor model.Actor, cardID uuid.UUID) ([]model.Activity, error)
}

type CardServiceImpl struct {
	cards    repository.CardRepository
	boards   repository.BoardRepository
	activity repository.ActivityRepository
	guard    *access.Guard
	dir      access.ProjectDirectory
}

// NewCardService constructs CardService.
func NewCardService(
	cards repository.CardRepository,
	boards repository.BoardRepository,
	activity repository.ActivityRepository,
	guard *access.Guard,
	dir access.ProjectDirectory,
) *CardServiceImpl {
	return &CardServiceImpl{cards: cards, boards: boards, activity: activity, guard: guard, dir: dir}
}

// Create validates and normalizes the card, resolves its position, writes it
// with the card_created activity, and returns the fresh card plus board.
func (s *CardServiceImpl) Create(ctx context.Context, actor model.Actor, columnID uuid.UUID, in CreateCardInput) (*model.Card, *model.Board, error) {
	col, err := s.boards.GetColumn(ctx, columnID)
	if err != nil {
		return nil, nil, err
	}
	board, err := s.boards.Get(ctx, col.BoardID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.guard.Resolve(ctx, board.ProjectID, actor); err != nil {
		return nil, nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, nil, fmt.Errorf("card title is required: %w", errs.ErrValidation)
	}
	status := in.Status
	if status == "" {
		status = model.StatusTodo
	}
	if !model.ValidStatus(status) {
		return nil, nil, fmt.Errorf("unknown status %q: %w", status, errs.ErrValidation)
	}
	assignees := dedupeUUIDs(in.Assignees)
	if err := s.checkAssignees(ctx, board.ProjectID, assignees); err != nil {
		return nil, nil, err
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, nil, err
	}
	card := &model.Card{
		ID:          id,
		ColumnID:    columnID,
		BoardID:     col.BoardID,
		ProjectID:   board.ProjectID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      status,
		Tags:        normalizeTags(in.Tags),
		DueDate:     in.DueDate,
		Priority:    model.NormalizePriority(in.Priority),
		Assignees:   assignees,
		CreatedBy:   actor.ID,
		Correction:  in.Correction.Normalize(),
	}

	act, err := newActivity(id, actor.ID, model.ActionCardCreated, map[string]any{
		"title":  title,
		"column": columnID.String(),
	})
	if err != nil {
		return nil, nil, err
	}
	if err := s.cards.Create(ctx, card, in.Position, act); err != nil {
		return nil, nil, err
	}
	return s.reload(ctx, card.BoardID, card.ID)
}

// Update applies each patched field independently, re-validating assignees
// against current membership whenever the field is touched.
func (s *CardServiceImpl) Update(ctx context.Context, actor model.Actor, cardID uuid.UUID, in UpdateCardInput) (*model.Card, *model.Board, error) {
	card, err := s.resolveCard(ctx, actor, cardID)
	if err != nil {
		return nil, nil, err
	}

	var changed []string
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, nil, fmt.Errorf("card title is required: %w", errs.ErrValidation)
		}
		card.Title = title
		changed = append(changed, "title")
	}
	if in.Description != nil {
		card.Description = strings.TrimSpace(*in.Description)
		changed = append(changed, "description")
	}
	if in.Status != nil {
		if !model.ValidStatus(*in.Status) {
			return nil, nil, fmt.Errorf("unknown status %q: %w", *in.Status, errs.ErrValidation)
		}
		card.Status = *in.Status
		changed = append(changed, "status")
	}
	if in.Priority != nil {
		card.Priority = model.NormalizePriority(*in.Priority)
		changed = append(changed, "priority")
	}
	if in.Tags != nil {
		card.Tags = normalizeTags(*in.Tags)
		changed = append(changed, "tags")
	}
	switch {
	case in.ClearDueDate:
		card.DueDate = nil
		changed = append(changed, "dueDate")
	case in.DueDate != nil:
		card.DueDate = in.DueDate
		changed = append(changed, "dueDate")
	}
	if in.Assignees != nil {
		assignees := dedupeUUIDs(*in.Assignees)
		if err := s.checkAssignees(ctx, card.ProjectID, assignees); err != nil {
			return nil, nil, err
		}
		card.Assignees = assignees
		changed = append(changed, "assignees")
	}
	if in.CorrectionSet {
		card.Correction = in.Correction.Normalize()
		changed = append(changed, "correction")
	}

	act, err := newActivity(cardID, actor.ID, model.ActionCardUpdated, map[string]any{
		"fields": changed,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := s.cards.Update(ctx, card, act); err != nil {
		return nil, nil, err
	}
	return s.reload(ctx, card.BoardID, card.ID)
}

// Move relocates the card inside its board. Moving a todo card into a column
// whose title contains "rev" (any case) promotes its status to review; that
// rule is a deliberate product policy tied to review-column naming.
func (s *CardServiceImpl) Move(ctx context.Context, actor model.Actor, cardID uuid.UUID, in MoveCardInput) (*model.Card, *model.Board, error) {
	card, err := s.resolveCard(ctx, actor, cardID)
	if err != nil {
		return nil, nil, err
	}
	target, err := s.boards.GetColumn(ctx, in.TargetColumnID)
	if err != nil {
		return nil, nil, err
	}
	if target.BoardID != card.BoardID {
		return nil, nil, fmt.Errorf("cards cannot move across boards: %w", errs.ErrPrecondition)
	}

	newStatus := card.Status
	if card.Status == model.StatusTodo && strings.Contains(strings.ToLower(target.Title), "rev") {
		newStatus = model.StatusReview
	}

	act, err := newActivity(cardID, actor.ID, model.ActionCardMoved, map[string]any{
		"fromColumn": card.ColumnID.String(),
		"toColumn":   target.ID.String(),
	})
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.cards.Move(ctx, card, target.ID, in.TargetPosition, newStatus, act); err != nil {
		return nil, nil, err
	}
	return s.reload(ctx, card.BoardID, card.ID)
}

// Delete removes the card; the card_deleted entry is written in the same
// transaction, ahead of the delete, so the trail survives the card.
func (s *CardServiceImpl) Delete(ctx context.Context, actor model.Actor, cardID uuid.UUID) (*model.Board, error) {
	card, err := s.resolveCard(ctx, actor, cardID)
	if err != nil {
		return nil, err
	}
	act, err := newActivity(cardID, actor.ID, model.ActionCardDeleted, map[string]any{
		"title":  card.Title,
		"column": card.ColumnID.String(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.cards.Delete(ctx, card, act); err != nil {
		return nil, err
	}
	return s.boards.Get(ctx, card.BoardID)
}

// ListActivity returns the card's trail, newest first.
func (s *CardServiceImpl) ListActivity(ctx context.Context, actor model.Actor, cardID uuid.UUID) ([]model.Activity, error) {
	if _, err := s.resolveCard(ctx, actor, cardID); err != nil {
		return nil, err
	}
	return s.activity.ListByCard(ctx, cardID)
}

// resolveCard loads the card and checks the actor's project access.
func (s *CardServiceImpl) resolveCard(ctx context.Context, actor model.Actor, cardID uuid.UUID) (*model.Card, error) {
	card, err := s.cards.Get(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.Resolve(ctx, card.ProjectID, actor); err != nil {
		return nil, err
	}
	return card, nil
}

// reload fetches the nested board and locates the card inside it.
func (s *CardServiceImpl) reload(ctx context.Context, boardID, cardID uuid.UUID) (*model.Card, *model.Board, error) {
	board, err := s.boards.Get(ctx, boardID)
	if err != nil {
		return nil, nil, err
	}
	for i := range board.Columns {
		for j := range board.Columns[i].Cards {
			if board.Columns[i].Cards[j].ID == cardID {
				return &board.Columns[i].Cards[j], board, nil
			}
		}
	}
	return nil, nil, fmt.Errorf("card %s vanished after write: %w", cardID, errs.ErrNotFound)
}

// checkAssignees verifies every assignee holds an active membership of the
// card's project.
func (s *CardServiceImpl) checkAssignees(ctx context.Context, projectID uuid.UUID, assignees []uuid.UUID) error {
	for _, u := range assignees {
		active, err := s.dir.IsActiveMember(ctx, projectID, u)
		if err != nil {
			return fmt.Errorf("membership lookup: %w", err)
		}
		if !active {
			return fmt.Errorf("some assignees are not active members: %w", errs.ErrValidation)
		}
	}
	return nil
}

// newActivity builds a trail entry; the repository persists it inside the
// mutation's transaction.
func newActivity(cardID, userID uuid.UUID, action model.Action, payload map[string]any) (*model.Activity, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	return &model.Activity{ID: id, CardID: cardID, UserID: userID, Action: action, Payload: payload}, nil
}

// normalizeTags trims, drops empties, and deduplicates preserving order.
func normalizeTags(tags []string) []string {
	out := []string{}
	seen := map[string]bool{}
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func dedupeUUIDs(ids []uuid.UUID) []uuid.UUID {
	out := []uuid.UUID{}
	seen := map[uuid.UUID]bool{}
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
