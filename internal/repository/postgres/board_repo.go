package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"

	"github.com/williansouza19122014/Timesheet-sub000/internal/errs"
	"github.com/williansouza19122014/Timesheet-sub000/internal/model"
	"github.com/williansouza19122014/Timesheet-sub000/internal/order"
	"github.com/williansouza19122014/Timesheet-sub000/internal/repository"
)

// BoardRepo implements BoardRepository using PostgreSQL.
type BoardRepo struct{ db *DB }

// NewBoardRepo constructs a board repository.
func NewBoardRepo(db *DB) *BoardRepo { return &BoardRepo{db: db} }

const selBoard = `
SELECT id, project_id, name, description, is_archived, created_by, created_at, updated_at
FROM boards WHERE id=$1`

const selColumns = `
SELECT id, board_id, title, card_limit, position
FROM board_columns WHERE board_id=$1 ORDER BY position ASC`

const selBoardCards = `
SELECT id, column_id, board_id, project_id, title, description, status, position,
       tags, due_date, priority, assignees, created_by, correction, created_at, updated_at
FROM cards WHERE board_id=$1 ORDER BY position ASC`

// List returns boards matching the filter with nested columns and cards.
func (r *BoardRepo) List(ctx context.Context, f repository.BoardFilter) ([]model.Board, error) {
	q := `
SELECT id, project_id, name, description, is_archived, created_by, created_at, updated_at
FROM boards`
	var conds []string
	var args []any
	if f.ProjectID != nil {
		args = append(args, *f.ProjectID)
		conds = append(conds, fmt.Sprintf("project_id=$%d", len(args)))
	}
	if f.MemberUserID != nil {
		args = append(args, *f.MemberUserID)
		conds = append(conds, fmt.Sprintf(
			"project_id IN (SELECT project_id FROM project_members WHERE user_id=$%d AND ended_at IS NULL)", len(args)))
	}
	if !f.IncludeArchived {
		conds = append(conds, "NOT is_archived")
	}
	if len(conds) > 0 {
		q += "\nWHERE " + strings.Join(conds, " AND ")
	}
	q += "\nORDER BY created_at ASC"

	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	boards, err := scanBoards(rows)
	if err != nil {
		return nil, err
	}
	for i := range boards {
		if err := r.loadNested(ctx, &boards[i]); err != nil {
			return nil, err
		}
	}
	return boards, nil
}

// Get loads one board with nested columns and cards, or errs.ErrNotFound.
func (r *BoardRepo) Get(ctx context.Context, id uuid.UUID) (*model.Board, error) {
	row := r.db.Pool.QueryRow(ctx, selBoard, id)
	b, err := scanBoard(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadNested(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// loadNested attaches position-sorted columns and cards to the board.
func (r *BoardRepo) loadNested(ctx context.Context, b *model.Board) error {
	rows, err := r.db.Pool.Query(ctx, selColumns, b.ID)
	if err != nil {
		return err
	}
	cols, err := scanColumns(rows)
	if err != nil {
		return err
	}

	rows, err = r.db.Pool.Query(ctx, selBoardCards, b.ID)
	if err != nil {
		return err
	}
	cards, err := scanCards(rows)
	if err != nil {
		return err
	}

	byColumn := make(map[uuid.UUID][]model.Card, len(cols))
	for _, c := range cards {
		byColumn[c.ColumnID] = append(byColumn[c.ColumnID], c)
	}
	for i := range cols {
		cs := byColumn[cols[i].ID]
		if cs == nil {
			cs = []model.Card{}
		}
		cols[i].Cards = cs
	}
	b.Columns = cols
	return nil
}

// Create inserts the board and its pre-seeded columns in one transaction.
func (r *BoardRepo) Create(ctx context.Context, b *model.Board) (err error) {
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

	const ins = `
INSERT INTO boards (id, project_id, name, description, is_archived, created_by)
VALUES ($1,$2,$3,$4,false,$5)`
	if _, err = tx.Exec(ctx, ins, b.ID, b.ProjectID, b.Name, b.Description, b.CreatedBy); err != nil {
		return err
	}
	const insCol = `
INSERT INTO board_columns (id, board_id, title, card_limit, position)
VALUES ($1,$2,$3,$4,$5)`
	for i := range b.Columns {
		c := &b.Columns[i]
		if _, err = tx.Exec(ctx, insCol, c.ID, b.ID, c.Title, c.Limit, c.Position); err != nil {
			return err
		}
	}
	return nil
}

// Update applies a partial board patch.
func (r *BoardRepo) Update(ctx context.Context, id uuid.UUID, patch repository.BoardPatch) error {
	sets, args := []string{"updated_at=now()"}, []any{id}
	if patch.Name != nil {
		args = append(args, *patch.Name)
		sets = append(sets, fmt.Sprintf("name=$%d", len(args)))
	}
	if patch.Description != nil {
		args = append(args, *patch.Description)
		sets = append(sets, fmt.Sprintf("description=$%d", len(args)))
	}
	q := "UPDATE boards SET " + strings.Join(sets, ", ") + " WHERE id=$1"
	tag, err := r.db.Pool.Exec(ctx, q, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// SetArchived flips the soft-disable flag.
func (r *BoardRepo) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	const q = `UPDATE boards SET is_archived=$2, updated_at=now() WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id, archived)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

const selColumn = `
SELECT id, board_id, title, card_limit, position
FROM board_columns WHERE id=$1`

// GetColumn loads a single column without cards, or errs.ErrNotFound.
func (r *BoardRepo) GetColumn(ctx context.Context, id uuid.UUID) (*model.Column, error) {
	var c model.Column
	err := r.db.Pool.QueryRow(ctx, selColumn, id).
		Scan(&c.ID, &c.BoardID, &c.Title, &c.Limit, &c.Position)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

const lockBoard = `SELECT 1 FROM boards WHERE id=$1 FOR UPDATE`
const countColumns = `SELECT COUNT(*) FROM board_columns WHERE board_id=$1`

// CreateColumn inserts a column at the desired (clamped) position, shifting
// trailing siblings up by one under the board lock.
func (r *BoardRepo) CreateColumn(ctx context.Context, col *model.Column, desired *int) (err error) {
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
	if err = tx.QueryRow(ctx, lockBoard, col.BoardID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return mapContention(err)
	}

	var count int
	if err = tx.QueryRow(ctx, countColumns, col.BoardID).Scan(&count); err != nil {
		return err
	}
	target := count
	if desired != nil {
		target = *desired
	}
	final, shift := order.InsertAt(count, target)
	if err = applyColumnShift(ctx, tx, col.BoardID, shift); err != nil {
		return err
	}

	col.Position = final
	const ins = `
INSERT INTO board_columns (id, board_id, title, card_limit, position)
VALUES ($1,$2,$3,$4,$5)`
	_, err = tx.Exec(ctx, ins, col.ID, col.BoardID, col.Title, col.Limit, col.Position)
	return err
}

// UpdateColumn patches title/limit and, when requested, moves the column
// within its board, shifting the siblings between the two positions.
func (r *BoardRepo) UpdateColumn(ctx context.Context, id uuid.UUID, patch repository.ColumnPatch) (err error) {
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

	// Resolve the owning board before taking its lock; all column mutations
	// serialize on the board row.
	var boardID uuid.UUID
	if err = tx.QueryRow(ctx, `SELECT board_id FROM board_columns WHERE id=$1`, id).Scan(&boardID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}
	var one int
	if err = tx.QueryRow(ctx, lockBoard, boardID).Scan(&one); err != nil {
		return mapContention(err)
	}

	var cur int
	if err = tx.QueryRow(ctx, `SELECT position FROM board_columns WHERE id=$1`, id).Scan(&cur); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}

	sets, args := []string{}, []any{id}
	if patch.Title != nil {
		args = append(args, *patch.Title)
		sets = append(sets, fmt.Sprintf("title=$%d", len(args)))
	}
	switch {
	case patch.ClearLimit:
		sets = append(sets, "card_limit=NULL")
	case patch.Limit != nil:
		args = append(args, *patch.Limit)
		sets = append(sets, fmt.Sprintf("card_limit=$%d", len(args)))
	}
	if len(sets) > 0 {
		q := "UPDATE board_columns SET " + strings.Join(sets, ", ") + " WHERE id=$1"
		if _, err = tx.Exec(ctx, q, args...); err != nil {
			return err
		}
	}

	if patch.Position != nil {
		var count int
		if err = tx.QueryRow(ctx, countColumns, boardID).Scan(&count); err != nil {
			return err
		}
		final, shift := order.MoveWithin(cur, *patch.Position, count)
		if shift != nil {
			if err = applyColumnShift(ctx, tx, boardID, shift); err != nil {
				return err
			}
			if _, err = tx.Exec(ctx, `UPDATE board_columns SET position=$2 WHERE id=$1`, id, final); err != nil {
				return err
			}
		}
	}
	return nil
}

// DeleteColumn removes the column under the board lock. Cards are either
// migrated to moveTo as one bulk append or must be absent; trailing columns
// are compacted afterwards.
func (r *BoardRepo) DeleteColumn(ctx context.Context, col *model.Column, moveTo *model.Column) (err error) {
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
	if err = tx.QueryRow(ctx, lockBoard, col.BoardID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return mapContention(err)
	}

	var pos int
	if err = tx.QueryRow(ctx, `SELECT position FROM board_columns WHERE id=$1`, col.ID).Scan(&pos); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errs.ErrNotFound
		}
		return err
	}

	var cardCount int
	if err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM cards WHERE column_id=$1`, col.ID).Scan(&cardCount); err != nil {
		return err
	}
	if cardCount > 0 {
		if moveTo == nil {
			return fmt.Errorf("column must be empty or specify a migration target: %w", errs.ErrPrecondition)
		}
		var destCount int
		if err = tx.QueryRow(ctx, `SELECT COUNT(*) FROM cards WHERE column_id=$1`, moveTo.ID).Scan(&destCount); err != nil {
			return err
		}
		// bulk append: offset preserves the migrated cards' relative order
		const migrate = `UPDATE cards SET column_id=$2, position=position+$3, updated_at=now() WHERE column_id=$1`
		if _, err = tx.Exec(ctx, migrate, col.ID, moveTo.ID, destCount); err != nil {
			return err
		}
	}

	if _, err = tx.Exec(ctx, `DELETE FROM board_columns WHERE id=$1`, col.ID); err != nil {
		return err
	}
	_, err = tx.Exec(ctx,
		`UPDATE board_columns SET position=position-1 WHERE board_id=$1 AND position>$2`,
		col.BoardID, pos)
	return err
}

// applyColumnShift translates a Shift into a bulk position update scoped to
// one board.
func applyColumnShift(ctx context.Context, tx pgx.Tx, boardID uuid.UUID, sh *order.Shift) error {
	if sh == nil {
		return nil
	}
	if sh.Open() {
		_, err := tx.Exec(ctx,
			`UPDATE board_columns SET position=position+$2 WHERE board_id=$1 AND position>=$3`,
			boardID, sh.Delta, sh.Lo)
		return err
	}
	_, err := tx.Exec(ctx,
		`UPDATE board_columns SET position=position+$2 WHERE board_id=$1 AND position BETWEEN $3 AND $4`,
		boardID, sh.Delta, sh.Lo, sh.Hi)
	return err
}
