package postgres

import (
	"context"
	"encoding/json"

	"github.com/gofrs/uuid/v5"

	"github.com/williansouza19122014/Timesheet-sub000/internal/model"
)

// ActivityRepo implements ActivityRepository using PostgreSQL. The trail is
// append-only; writes happen inside CardRepo transactions.
type ActivityRepo struct{ db *DB }

// NewActivityRepo constructs an activity repository.
func NewActivityRepo(db *DB) *ActivityRepo { return &ActivityRepo{db: db} }

// ListByCard returns the card's activity ordered newest first.
func (r *ActivityRepo) ListByCard(ctx context.Context, cardID uuid.UUID) ([]model.Activity, error) {
	const q = `
SELECT id, card_id, user_id, action, payload, created_at
FROM card_activity WHERE card_id=$1 ORDER BY created_at DESC`
	rows, err := r.db.Pool.Query(ctx, q, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Activity{}
	for rows.Next() {
		var (
			a       model.Activity
			payload []byte
		)
		if err := rows.Scan(&a.ID, &a.CardID, &a.UserID, &a.Action, &payload, &a.CreatedAt); err != nil {
			return nil, err
		}
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &a.Payload); err != nil {
				return nil, err
			}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
