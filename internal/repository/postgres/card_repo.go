package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/williansouza19122014/Timesheet-sub000/internal/errs"
	"github.com/williansouza19122014/Timesheet-sub000/internal/model"
	"github.com/williansouza19122014/Timesheet-sub000/internal/order"
)

// CardRepo implements CardRepository using PostgreSQL. All mutations run as
// one transaction covering the position shifts, the primary write, and the
// activity append, serialized on the owning column row(s).
type CardRepo struct{ db *DB }

// NewCardRepo constructs a card repository.
func NewCardRepo(db *DB) *CardRepo { return &CardRepo{db: db} }

const selCard = `
SELECT id, column_id, board_id, project_id, title, description, status, position,
       tags, due_date, priority, assignees, created_by, correction, created_at, updated_at
FROM cards WHERE id=$1`

const lockColumn = `SELECT 1 FROM board_columns WHERE id=$1 FOR UPDATE`
const countCards = `SELECT COUNT(*) FROM cards WHERE column_id=$1`
const selPlacement = `SELECT column_id, position FROM cards WHERE id=$1`

const insActivity = `
INSERT INTO card_activity (id, card_id, user_id, action, payload)
VALUES ($1,$2,$3,$4,$5)`

// Get loads a single card, or errs.ErrNotFound.
func (r *CardRepo) Get(ctx context.Context, id uuid.UUID) (*model.Card, error) {
	c, err := scanCard(r.db.Pool.QueryRow(ctx, selCard, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// Create inserts the card at the desired (clamped) position under the column
// lock and appends the card_created activity in the same transaction.
func (r *CardRepo) Create(ctx context.Context, c *model.Card, desired *int, act *model.Activity) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = mapContention(e)
		}
	}()

	if _, err = tx.Exec(ctx, lockTimeout); err != nil {
		return err
	}
	var one int
	if err = tx.QueryRow(ctx, lockColumn, c.ColumnID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return mapContention(err)
	}

	var count int
	if err = tx.QueryRow(ctx, countCards, c.ColumnID).Scan(&count); err != nil {
		return err
	}
	target := count
	if desired != nil {
		target = *desired
	}
	final, shift := order.InsertAt(count, target)
	if err = applyCardShift(ctx, tx, c.ColumnID, shift); err != nil {
		return err
	}
	c.Position = final

	correction, err := marshalCorrection(c.Correction)
	if err != nil {
		return err
	}
	const ins = `
INSERT INTO cards (id, column_id, board_id, project_id, title, description, status,
                   position, tags, due_date, priority, assignees, created_by, correction)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	if _, err = tx.Exec(ctx, ins, c.ID, c.ColumnID, c.BoardID, c.ProjectID, c.Title,
		c.Description, c.Status, c.Position, c.Tags, c.DueDate, c.Priority,
		c.Assignees, c.CreatedBy, correction); err != nil {
		return err
	}
	return r.appendActivity(ctx, tx, act)
}

// Update persists the already-patched card row plus its activity entry.
func (r *CardRepo) Update(ctx context.Context, c *model.Card, act *model.Activity) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = e
		}
	}()

	correction, err := marshalCorrection(c.Correction)
	if err != nil {
		return err
	}
	const upd = `
UPDATE cards SET title=$2, description=$3, status=$4, tags=$5, due_date=$6,
                 priority=$7, assignees=$8, correction=$9, updated_at=now()
WHERE id=$1`
	tag, err := tx.Exec(ctx, upd, c.ID, c.Title, c.Description, c.Status, c.Tags,
		c.DueDate, c.Priority, c.Assignees, correction)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return r.appendActivity(ctx, tx, act)
}

// Move relocates the card, keeping both the source and destination columns
// dense. Both column rows are locked in ascending id order so two concurrent
// cross-column moves cannot deadlock; the card's placement is re-read under
// the locks before the shift plan is built. The final position is written
// into the activity payload before it is appended.
func (r *CardRepo) Move(ctx context.Context, c *model.Card, targetColumn uuid.UUID, desired *int, newStatus model.Status, act *model.Activity) (final int, err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = mapContention(e)
		}
	}()

	if _, err = tx.Exec(ctx, lockTimeout); err != nil {
		return 0, err
	}
	if err = r.lockColumns(ctx, tx, c.ColumnID, targetColumn); err != nil {
		return 0, err
	}
	if err = r.refreshPlacement(ctx, tx, c); err != nil {
		return 0, err
	}

	if targetColumn == c.ColumnID {
		var count int
		if err = tx.QueryRow(ctx, countCards, c.ColumnID).Scan(&count); err != nil {
			return 0, err
		}
		toRaw := count - 1
		if desired != nil {
			toRaw = *desired
		}
		var shift *order.Shift
		final, shift = order.MoveWithin(c.Position, toRaw, count)
		if err = applyCardShift(ctx, tx, c.ColumnID, shift); err != nil {
			return 0, err
		}
		const upd = `UPDATE cards SET position=$2, status=$3, updated_at=now() WHERE id=$1`
		if _, err = tx.Exec(ctx, upd, c.ID, final, newStatus); err != nil {
			return 0, err
		}
	} else {
		var destCount int
		if err = tx.QueryRow(ctx, countCards, targetColumn).Scan(&destCount); err != nil {
			return 0, err
		}
		toRaw := destCount
		if desired != nil {
			toRaw = *desired
		}
		plan := order.MoveAcross(c.Position, toRaw, destCount)
		src := plan.Source
		if err = applyCardShift(ctx, tx, c.ColumnID, &src); err != nil {
			return 0, err
		}
		if err = applyCardShift(ctx, tx, targetColumn, plan.Insert); err != nil {
			return 0, err
		}
		final = plan.Final
		const upd = `UPDATE cards SET column_id=$2, position=$3, status=$4, updated_at=now() WHERE id=$1`
		if _, err = tx.Exec(ctx, upd, c.ID, targetColumn, final, newStatus); err != nil {
			return 0, err
		}
	}

	act.Payload["position"] = final
	if err = r.appendActivity(ctx, tx, act); err != nil {
		return 0, err
	}
	return final, nil
}

// Delete appends the card_deleted activity, removes the card, and compacts
// the remaining siblings using the position re-read under the column lock.
// The activity row is written first: the trail is an audit record, not a
// live join, and must survive the card.
func (r *CardRepo) Delete(ctx context.Context, c *model.Card, act *model.Activity) (err error) {
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = mapContention(e)
		}
	}()

	if _, err = tx.Exec(ctx, lockTimeout); err != nil {
		return err
	}
	var one int
	if err = tx.QueryRow(ctx, lockColumn, c.ColumnID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return mapContention(err)
	}
	if err = r.refreshPlacement(ctx, tx, c); err != nil {
		return err
	}

	if err = r.appendActivity(ctx, tx, act); err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM cards WHERE id=$1`, c.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	shift := order.RemoveAt(c.Position)
	return applyCardShift(ctx, tx, c.ColumnID, &shift)
}

// refreshPlacement re-reads the card's column and position under the column
// lock. The caller's snapshot was taken before the transaction began; a
// concurrent shift may have moved the card, and a shift plan built from the
// stale position would leave the column non-dense. A card that left its
// column entirely invalidates the locks already held, so that surfaces as a
// retryable conflict.
func (r *CardRepo) refreshPlacement(ctx context.Context, tx pgx.Tx, c *model.Card) error {
	var (
		columnID uuid.UUID
		position int
	)
	if err := tx.QueryRow(ctx, selPlacement, c.ID).Scan(&columnID, &position); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}
	if columnID != c.ColumnID {
		return fmt.Errorf("card changed column concurrently: %w", errs.ErrConflict)
	}
	c.Position = position
	return nil
}

// lockColumns takes FOR UPDATE locks on one or two columns in ascending id
// order.
func (r *CardRepo) lockColumns(ctx context.Context, tx pgx.Tx, a, b uuid.UUID) error {
	ids := []uuid.UUID{a}
	if b != a {
		if b.String() < a.String() {
			ids = []uuid.UUID{b, a}
		} else {
			ids = append(ids, b)
		}
	}
	for _, id := range ids {
		var one int
		if err := tx.QueryRow(ctx, lockColumn, id).Scan(&one); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return errs.ErrNotFound
			}
			return mapContention(err)
		}
	}
	return nil
}

func (r *CardRepo) appendActivity(ctx context.Context, tx pgx.Tx, act *model.Activity) error {
	payload, err := marshalPayload(act.Payload)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, insActivity, act.ID, act.CardID, act.UserID, act.Action, payload)
	return err
}

// applyCardShift translates a Shift into a bulk position update scoped to
// one column.
func applyCardShift(ctx context.Context, tx pgx.Tx, columnID uuid.UUID, sh *order.Shift) error {
	if sh == nil {
		return nil
	}
	if sh.Open() {
		_, err := tx.Exec(ctx,
			`UPDATE cards SET position=position+$2 WHERE column_id=$1 AND position>=$3`,
			columnID, sh.Delta, sh.Lo)
		return err
	}
	_, err := tx.Exec(ctx,
		`UPDATE cards SET position=position+$2 WHERE column_id=$1 AND position BETWEEN $3 AND $4`,
		columnID, sh.Delta, sh.Lo, sh.Hi)
	return err
}
