package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/williansouza19122014/Timesheet-sub000/internal/model"
)

// CardRepository provides transactional access to cards. Every mutation
// appends the supplied activity entry inside the same transaction as the
// primary write, so a committed operation always leaves exactly one trail
// record behind.
type CardRepository interface {
	// Get loads a single card.
	Get(ctx context.Context, id uuid.UUID) (*model.Card, error)

	// Create inserts the card, shifting siblings when desired points inside
	// the column's existing sequence. The final position is written to c.
	Create(ctx context.Context, c *model.Card, desired *int, act *model.Activity) error

	// Update persists the already-patched card row.
	Update(ctx context.Context, c *model.Card, act *model.Activity) error

	// Move relocates the card to targetColumn at the desired position,
	// compacting the old column and opening a gap in the new one as one
	// transaction. newStatus is the (possibly auto-promoted) status to
	// persist. The final position is recorded in act's payload and
	// returned.
	Move(ctx context.Context, c *model.Card, targetColumn uuid.UUID, desired *int, newStatus model.Status, act *model.Activity) (int, error)

	// Delete appends the activity entry, removes the card, and compacts the
	// remaining siblings. The trail outlives the card.
	Delete(ctx context.Context, c *model.Card, act *model.Activity) error
}

// ActivityRepository reads the append-only card activity trail.
type ActivityRepository interface {
	// ListByCard returns the card's activity ordered newest first.
	ListByCard(ctx context.Context, cardID uuid.UUID) ([]model.Activity, error)
}
