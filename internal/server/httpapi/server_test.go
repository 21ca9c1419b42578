package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/williansouza19122014/Timesheet-sub000/internal/errs"
	"github.com/williansouza19122014/Timesheet-sub000/internal/model"
	"github.com/williansouza19122014/Timesheet-sub000/internal/service"
)

var testKey = []byte("test-signing-key")

type fakeBoardService struct {
	lastActor model.Actor
	boards    []model.Board
	err       error
}

func (f *fakeBoardService) List(_ context.Context, actor model.Actor, _ service.BoardListFilter) ([]model.Board, error) {
	f.lastActor = actor
	return f.boards, f.err
}

func (f *fakeBoardService) Create(_ context.Context, actor model.Actor, _ service.CreateBoardInput) (*model.Board, error) {
	f.lastActor = actor
	if f.err != nil {
		return nil, f.err
	}
	return &model.Board{}, nil
}

func (f *fakeBoardService) Update(context.Context, model.Actor, uuid.UUID, service.UpdateBoardInput) (*model.Board, error) {
	return nil, f.err
}

func (f *fakeBoardService) SetArchived(context.Context, model.Actor, uuid.UUID, bool) (*model.Board, error) {
	return nil, f.err
}

func (f *fakeBoardService) CreateColumn(context.Context, model.Actor, uuid.UUID, service.CreateColumnInput) (*model.Board, error) {
	return nil, f.err
}

func (f *fakeBoardService) UpdateColumn(context.Context, model.Actor, uuid.UUID, service.UpdateColumnInput) (*model.Board, error) {
	return nil, f.err
}

func (f *fakeBoardService) DeleteColumn(context.Context, model.Actor, uuid.UUID, *uuid.UUID) (*model.Board, error) {
	return nil, f.err
}

type fakeCardService struct {
	err error
}

func (f *fakeCardService) Create(context.Context, model.Actor, uuid.UUID, service.CreateCardInput) (*model.Card, *model.Board, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return &model.Card{}, &model.Board{}, nil
}

func (f *fakeCardService) Update(context.Context, model.Actor, uuid.UUID, service.UpdateCardInput) (*model.Card, *model.Board, error) {
	return nil, nil, f.err
}

func (f *fakeCardService) Move(context.Context, model.Actor, uuid.UUID, service.MoveCardInput) (*model.Card, *model.Board, error) {
	return nil, nil, f.err
}

func (f *fakeCardService) Delete(context.Context, model.Actor, uuid.UUID) (*model.Board, error) {
	return nil, f.err
}

func (f *fakeCardService) ListActivity(context.Context, model.Actor, uuid.UUID) ([]model.Activity, error) {
	return nil, f.err
}

func signToken(t *testing.T, userID uuid.UUID, role model.Role) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, actorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: string(role),
	})
	signed, err := tok.SignedString(testKey)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newTestServer(boards service.BoardService, cards service.CardService) *Server {
	return New(boards, cards, testKey, zap.NewNop())
}

func TestRequireActor_MissingToken(t *testing.T) {
	srv := newTestServer(&fakeBoardService{}, &fakeCardService{})

	req := httptest.NewRequest(http.MethodGet, "/api/boards", nil)
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRequireActor_BadSignature(t *testing.T) {
	srv := newTestServer(&fakeBoardService{}, &fakeCardService{})

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, actorClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.Must(uuid.NewV4()).String()},
	})
	signed, err := tok.SignedString([]byte("some-other-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/boards", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRequireActor_PassesActorToService(t *testing.T) {
	boards := &fakeBoardService{boards: []model.Board{}}
	srv := newTestServer(boards, &fakeCardService{})

	userID := uuid.Must(uuid.NewV4())
	req := httptest.NewRequest(http.MethodGet, "/api/boards", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, userID, model.RoleManager))
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
	}
	if boards.lastActor.ID != userID {
		t.Fatalf("actor id = %s, want %s", boards.lastActor.ID, userID)
	}
	if boards.lastActor.Role != model.RoleManager {
		t.Fatalf("actor role = %s, want %s", boards.lastActor.Role, model.RoleManager)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"validation", fmt.Errorf("bad input: %w", errs.ErrValidation), http.StatusBadRequest, ""},
		{"not found", errs.ErrNotFound, http.StatusNotFound, ""},
		{"forbidden", errs.ErrForbidden, http.StatusForbidden, ""},
		{"precondition", fmt.Errorf("column not empty: %w", errs.ErrPrecondition), http.StatusConflict, ""},
		{"conflict", errs.ErrConflict, http.StatusConflict, `"retryable":true`},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, `"internal"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(&fakeBoardService{err: tc.err}, &fakeCardService{})

			req := httptest.NewRequest(http.MethodGet, "/api/boards", nil)
			req.Header.Set("Authorization", "Bearer "+signToken(t, uuid.Must(uuid.NewV4()), model.RoleAdmin))
			w := httptest.NewRecorder()
			srv.Engine().ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tc.wantStatus)
			}
			if tc.wantBody != "" && !strings.Contains(w.Body.String(), tc.wantBody) {
				t.Fatalf("body %q does not contain %q", w.Body.String(), tc.wantBody)
			}
		})
	}
}

func TestHealthEndpointIsPublic(t *testing.T) {
	srv := newTestServer(&fakeBoardService{}, &fakeCardService{})

	req := httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}
