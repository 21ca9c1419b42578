package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/williansouza19122014/Timesheet-sub000/internal/access"
	"github.com/williansouza19122014/Timesheet-sub000/internal/errs"
	"github.com/williansouza19122014/Timesheet-sub000/internal/model"
	"github.com/williansouza19122014/Timesheet-sub000/internal/repository"
)

type fakeCardRepo struct {
	getOut *model.Card
	getErr error

	createIn      *model.Card
	createDesired *int
	createAct     *model.Activity
	createErr     error

	updateIn  *model.Card
	updateAct *model.Activity

	moveIn        *model.Card
	moveTarget    uuid.UUID
	moveDesired   *int
	moveNewStatus model.Status
	moveAct       *model.Activity
	moveErr       error

	deleteIn  *model.Card
	deleteAct *model.Activity
}

var _ repository.CardRepository = (*fakeCardRepo)(nil)

func (f *fakeCardRepo) Get(_ context.Context, _ uuid.UUID) (*model.Card, error) {
	return f.getOut, f.getErr
}
func (f *fakeCardRepo) Create(_ context.Context, c *model.Card, desired *int, act *model.Activity) error {
	f.createIn, f.createDesired, f.createAct = c, desired, act
	return f.createErr
}
func (f *fakeCardRepo) Update(_ context.Context, c *model.Card, act *model.Activity) error {
	f.updateIn, f.updateAct = c, act
	return nil
}
func (f *fakeCardRepo) Move(_ context.Context, c *model.Card, target uuid.UUID, desired *int, newStatus model.Status, act *model.Activity) (int, error) {
	f.moveIn, f.moveTarget, f.moveDesired, f.moveNewStatus, f.moveAct = c, target, desired, newStatus, act
	return 0, f.moveErr
}
func (f *fakeCardRepo) Delete(_ context.Context, c *model.Card, act *model.Activity) error {
	f.deleteIn, f.deleteAct = c, act
	return nil
}

type fakeActivityRepo struct {
	listIn  uuid.UUID
	listOut []model.Activity
}

var _ repository.ActivityRepository = (*fakeActivityRepo)(nil)

func (f *fakeActivityRepo) ListByCard(_ context.Context, cardID uuid.UUID) ([]model.Activity, error) {
	f.listIn = cardID
	return f.listOut, nil
}

// cardFixtures builds a board with two columns and one existing card in the
// first column, wiring the board repo so reloads find the mutated card.
type cardFixtures struct {
	board   *model.Board
	colA    *model.Column
	colB    *model.Column
	card    *model.Card
	boards  *fakeBoardRepo
	cards   *fakeCardRepo
	dir     *fakeDir
	service *CardServiceImpl
}

func newCardFixtures() *cardFixtures {
	boardID := uuid.Must(uuid.NewV4())
	projectID := uuid.Must(uuid.NewV4())
	colA := &model.Column{ID: uuid.Must(uuid.NewV4()), BoardID: boardID, Title: "Backlog", Position: 0}
	colB := &model.Column{ID: uuid.Must(uuid.NewV4()), BoardID: boardID, Title: "Em andamento", Position: 1}
	card := &model.Card{
		ID:        uuid.Must(uuid.NewV4()),
		ColumnID:  colA.ID,
		BoardID:   boardID,
		ProjectID: projectID,
		Title:     "Existing",
		Status:    model.StatusTodo,
		Priority:  model.PriorityMedium,
	}
	board := &model.Board{ID: boardID, ProjectID: projectID, Name: "Sprint"}

	cards := &fakeCardRepo{getOut: card}
	boards := &fakeBoardRepo{
		getOut: board,
		columns: map[uuid.UUID]*model.Column{
			colA.ID: colA,
			colB.ID: colB,
		},
	}
	boards.getFn = func(id uuid.UUID) (*model.Board, error) {
		b := *board
		a, bb := *colA, *colB
		a.Cards, bb.Cards = []model.Card{}, []model.Card{}
		for _, c := range []*model.Card{cards.createIn, cards.updateIn, cards.moveIn, card} {
			if c != nil {
				cc := *c
				if cc.ColumnID == a.ID {
					a.Cards = append(a.Cards, cc)
				} else {
					bb.Cards = append(bb.Cards, cc)
				}
				break
			}
		}
		b.Columns = []model.Column{a, bb}
		return &b, nil
	}

	dir := &fakeDir{exists: true, active: true}
	return &cardFixtures{
		board: board, colA: colA, colB: colB, card: card,
		boards: boards, cards: cards, dir: dir,
		service: NewCardService(cards, boards, &fakeActivityRepo{}, access.NewGuard(dir), dir),
	}
}

func TestCardService_Create_NormalizesFields(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newCardFixtures()
	member := employee()

	pos := 0
	card, _, err := fx.service.Create(ctx, member, fx.colA.ID, CreateCardInput{
		Title:      "  Fix login  ",
		Priority:   "urgent",
		Tags:       []string{" backend ", "backend", "", "auth"},
		Position:   &pos,
		Correction: &model.Correction{},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if card.Title != "Fix login" {
		t.Fatalf("title not trimmed: %q", card.Title)
	}
	if card.Status != model.StatusTodo {
		t.Fatalf("default status: want todo, got %s", card.Status)
	}
	if card.Priority != model.PriorityMedium {
		t.Fatalf("unknown priority must default to medium, got %s", card.Priority)
	}
	if len(card.Tags) != 2 || card.Tags[0] != "backend" || card.Tags[1] != "auth" {
		t.Fatalf("tags not normalized: %v", card.Tags)
	}
	if card.Correction != nil {
		t.Fatalf("empty correction must be absent")
	}
	if fx.cards.createDesired == nil || *fx.cards.createDesired != 0 {
		t.Fatalf("explicit position not forwarded")
	}
	if fx.cards.createAct == nil || fx.cards.createAct.Action != model.ActionCardCreated {
		t.Fatalf("card_created activity not recorded: %+v", fx.cards.createAct)
	}
}

func TestCardService_Create_Validation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newCardFixtures()

	if _, _, err := fx.service.Create(ctx, employee(), fx.colA.ID, CreateCardInput{Title: "  "}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("blank title: want ErrValidation, got %v", err)
	}
	if _, _, err := fx.service.Create(ctx, employee(), fx.colA.ID, CreateCardInput{Title: "x", Status: "blocked"}); !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("unknown status: want ErrValidation, got %v", err)
	}
	if fx.cards.createIn != nil {
		t.Fatalf("repo must not be called on validation failure")
	}

	// non-members cannot create cards
	fx.dir.active = false
	if _, _, err := fx.service.Create(ctx, employee(), fx.colA.ID, CreateCardInput{Title: "x"}); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("non-member: want ErrForbidden, got %v", err)
	}
}

func TestCardService_Create_RejectsInactiveAssignees(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newCardFixtures()

	// a manager bypasses the access check, so only the assignee probe fails
	assignee := uuid.Must(uuid.NewV4())
	mgr := manager()

	fx.dir.active = false
	_, _, err := fx.service.Create(ctx, mgr, fx.colA.ID, CreateCardInput{
		Title:     "x",
		Assignees: []uuid.UUID{assignee},
	})
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("inactive assignee: want ErrValidation, got %v", err)
	}
	if fx.cards.createIn != nil {
		t.Fatalf("no card state may change on assignee failure")
	}
}

func TestCardService_Update_PartialPatch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newCardFixtures()
	due := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	fx.card.DueDate = &due
	fx.card.Description = "keep me"

	title := " Retitled "
	card, _, err := fx.service.Update(ctx, employee(), fx.card.ID, UpdateCardInput{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if card.Title != "Retitled" {
		t.Fatalf("title not applied: %q", card.Title)
	}
	if card.Description != "keep me" {
		t.Fatalf("untouched field must survive: %q", card.Description)
	}
	if card.DueDate == nil || !card.DueDate.Equal(due) {
		t.Fatalf("untouched dueDate must survive")
	}
	if fx.cards.updateAct == nil || fx.cards.updateAct.Action != model.ActionCardUpdated {
		t.Fatalf("card_updated activity not recorded")
	}

	// explicit clear
	_, _, err = fx.service.Update(ctx, employee(), fx.card.ID, UpdateCardInput{ClearDueDate: true})
	if err != nil {
		t.Fatalf("Update clear: %v", err)
	}
	if fx.cards.updateIn.DueDate != nil {
		t.Fatalf("dueDate must be cleared")
	}
}

func TestCardService_Update_RevalidatesAssignees(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newCardFixtures()
	fx.dir.active = true

	gone := []uuid.UUID{uuid.Must(uuid.NewV4())}
	mgr := manager()
	fx.dir.active = false
	_, _, err := fx.service.Update(ctx, mgr, fx.card.ID, UpdateCardInput{Assignees: &gone})
	if !errors.Is(err, errs.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
	if fx.cards.updateIn != nil {
		t.Fatalf("no write may happen on assignee failure")
	}
}

func TestCardService_Move_CrossBoardRejected(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newCardFixtures()
	foreign := &model.Column{ID: uuid.Must(uuid.NewV4()), BoardID: uuid.Must(uuid.NewV4()), Title: "Other"}
	fx.boards.columns[foreign.ID] = foreign

	_, _, err := fx.service.Move(ctx, employee(), fx.card.ID, MoveCardInput{TargetColumnID: foreign.ID})
	if !errors.Is(err, errs.ErrPrecondition) {
		t.Fatalf("cross-board move: want ErrPrecondition, got %v", err)
	}
	if fx.cards.moveIn != nil {
		t.Fatalf("positions must stay untouched on a rejected move")
	}
}

func TestCardService_Move_ReviewAutoPromotion(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	review := []string{"Review", "REVISÃO, sort of: rev", "Code review"}
	for _, title := range review {
		fx := newCardFixtures()
		fx.colB.Title = title
		fx.card.Status = model.StatusTodo

		if _, _, err := fx.service.Move(ctx, employee(), fx.card.ID, MoveCardInput{TargetColumnID: fx.colB.ID}); err != nil {
			t.Fatalf("Move(%q): %v", title, err)
		}
		if fx.cards.moveNewStatus != model.StatusReview {
			t.Fatalf("todo card into %q: want review, got %s", title, fx.cards.moveNewStatus)
		}
	}

	// only todo cards are promoted
	fx := newCardFixtures()
	fx.colB.Title = "Review"
	fx.card.Status = model.StatusDoing
	if _, _, err := fx.service.Move(ctx, employee(), fx.card.ID, MoveCardInput{TargetColumnID: fx.colB.ID}); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if fx.cards.moveNewStatus != model.StatusDoing {
		t.Fatalf("doing card must keep its status, got %s", fx.cards.moveNewStatus)
	}

	// non-review columns never promote
	fx = newCardFixtures()
	fx.card.Status = model.StatusTodo
	if _, _, err := fx.service.Move(ctx, employee(), fx.card.ID, MoveCardInput{TargetColumnID: fx.colB.ID}); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if fx.cards.moveNewStatus != model.StatusTodo {
		t.Fatalf("plain column must not promote, got %s", fx.cards.moveNewStatus)
	}
}

func TestCardService_Move_ActivityPayload(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newCardFixtures()

	pos := 1
	if _, _, err := fx.service.Move(ctx, employee(), fx.card.ID, MoveCardInput{TargetColumnID: fx.colB.ID, TargetPosition: &pos}); err != nil {
		t.Fatalf("Move: %v", err)
	}
	act := fx.cards.moveAct
	if act == nil || act.Action != model.ActionCardMoved {
		t.Fatalf("card_moved activity not recorded")
	}
	if act.Payload["fromColumn"] != fx.colA.ID.String() || act.Payload["toColumn"] != fx.colB.ID.String() {
		t.Fatalf("move payload wrong: %+v", act.Payload)
	}
	if fx.cards.moveDesired == nil || *fx.cards.moveDesired != 1 {
		t.Fatalf("target position not forwarded")
	}
}

func TestCardService_Delete_RecordsTrail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newCardFixtures()

	if _, err := fx.service.Delete(ctx, employee(), fx.card.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	act := fx.cards.deleteAct
	if act == nil || act.Action != model.ActionCardDeleted {
		t.Fatalf("card_deleted activity not recorded")
	}
	if act.CardID != fx.card.ID || act.Payload["title"] != fx.card.Title {
		t.Fatalf("delete payload wrong: %+v", act.Payload)
	}
}

func TestCardService_ListActivity_RequiresAccess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newCardFixtures()
	activity := &fakeActivityRepo{listOut: []model.Activity{{Action: model.ActionCardCreated}}}
	fx.service = NewCardService(fx.cards, fx.boards, activity, access.NewGuard(fx.dir), fx.dir)

	out, err := fx.service.ListActivity(ctx, employee(), fx.card.ID)
	if err != nil || len(out) != 1 {
		t.Fatalf("ListActivity: out=%v err=%v", out, err)
	}
	if activity.listIn != fx.card.ID {
		t.Fatalf("card id not forwarded")
	}

	fx.dir.active = false
	if _, err := fx.service.ListActivity(ctx, employee(), fx.card.ID); !errors.Is(err, errs.ErrForbidden) {
		t.Fatalf("non-member: want ErrForbidden, got %v", err)
	}
}

func TestCardService_RepoErrorsPropagate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fx := newCardFixtures()
	fx.cards.createErr = errors.New("boom-create")
	fx.cards.moveErr = errors.New("boom-move")

	if _, _, err := fx.service.Create(ctx, employee(), fx.colA.ID, CreateCardInput{Title: "x"}); err == nil {
		t.Fatalf("want create error propagate")
	}
	if _, _, err := fx.service.Move(ctx, employee(), fx.card.ID, MoveCardInput{TargetColumnID: fx.colB.ID}); err == nil {
		t.Fatalf("want move error propagate")
	}
}
