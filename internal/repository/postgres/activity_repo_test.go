package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/williansouza19122014/Timesheet-sub000/internal/model"
)

func TestActivityRepo_ListByCard(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewActivityRepo(db)
	ctx := context.Background()

	cardID := uuid.Must(uuid.NewV4())
	userID := uuid.Must(uuid.NewV4())
	newer := uuid.Must(uuid.NewV4())
	older := uuid.Must(uuid.NewV4())
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "card_id", "user_id", "action", "payload", "created_at"}).
		AddRow(newer, cardID, userID, model.ActionCardDeleted, []byte(`{"title":"card"}`), now).
		AddRow(older, cardID, userID, model.ActionCardCreated, []byte(nil), now.Add(-time.Hour))
	mock.ExpectQuery(`FROM card_activity WHERE card_id=\$1 ORDER BY created_at DESC`).
		WithArgs(cardID).WillReturnRows(rows)

	got, err := r.ListByCard(ctx, cardID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, newer, got[0].ID)
	require.Equal(t, "card", got[0].Payload["title"])
	require.Nil(t, got[1].Payload)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepo_ListByCard_Empty(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewActivityRepo(db)
	ctx := context.Background()

	cardID := uuid.Must(uuid.NewV4())
	mock.ExpectQuery(`FROM card_activity WHERE card_id=\$1`).
		WithArgs(cardID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "card_id", "user_id", "action", "payload", "created_at"}))

	got, err := r.ListByCard(ctx, cardID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestDirectory_IsActiveMember(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	d := NewDirectory(db)
	ctx := context.Background()

	projectID := uuid.Must(uuid.NewV4())
	userID := uuid.Must(uuid.NewV4())

	mock.ExpectQuery(`SELECT 1 FROM project_members`).
		WithArgs(projectID, userID).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := d.IsActiveMember(ctx, projectID, userID)
	require.NoError(t, err)
	require.True(t, ok)
}
