package postgres

import (
	"encoding/json"

	"github.com/jackc/pgx/v5"

	"github.com/williansouza19122014/Timesheet-sub000/internal/model"
)

func scanBoard(row pgx.Row) (*model.Board, error) {
	var b model.Board
	err := row.Scan(&b.ID, &b.ProjectID, &b.Name, &b.Description, &b.IsArchived,
		&b.CreatedBy, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func scanBoards(rows pgx.Rows) ([]model.Board, error) {
	defer rows.Close()
	out := []model.Board{}
	for rows.Next() {
		var b model.Board
		if err := rows.Scan(&b.ID, &b.ProjectID, &b.Name, &b.Description, &b.IsArchived,
			&b.CreatedBy, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanColumns(rows pgx.Rows) ([]model.Column, error) {
	defer rows.Close()
	out := []model.Column{}
	for rows.Next() {
		var c model.Column
		if err := rows.Scan(&c.ID, &c.BoardID, &c.Title, &c.Limit, &c.Position); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCard(row pgx.Row) (*model.Card, error) {
	var (
		c          model.Card
		correction []byte
	)
	err := row.Scan(&c.ID, &c.ColumnID, &c.BoardID, &c.ProjectID, &c.Title, &c.Description,
		&c.Status, &c.Position, &c.Tags, &c.DueDate, &c.Priority, &c.Assignees,
		&c.CreatedBy, &correction, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := attachCorrection(&c, correction); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanCards(rows pgx.Rows) ([]model.Card, error) {
	defer rows.Close()
	out := []model.Card{}
	for rows.Next() {
		var (
			c          model.Card
			correction []byte
		)
		if err := rows.Scan(&c.ID, &c.ColumnID, &c.BoardID, &c.ProjectID, &c.Title, &c.Description,
			&c.Status, &c.Position, &c.Tags, &c.DueDate, &c.Priority, &c.Assignees,
			&c.CreatedBy, &correction, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if err := attachCorrection(&c, correction); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func attachCorrection(c *model.Card, raw []byte) error {
	if len(raw) == 0 {
		c.Correction = nil
		return nil
	}
	var cor model.Correction
	if err := json.Unmarshal(raw, &cor); err != nil {
		return err
	}
	c.Correction = cor.Normalize()
	return nil
}

// marshalCorrection encodes the optional sub-record for the jsonb column;
// an absent correction is stored as NULL.
func marshalCorrection(c *model.Correction) ([]byte, error) {
	c = c.Normalize()
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

func marshalPayload(p map[string]any) ([]byte, error) {
	if p == nil {
		p = map[string]any{}
	}
	return json.Marshal(p)
}
