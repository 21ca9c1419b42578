package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"

	"github.com/williansouza19122014/Timesheet-sub000/internal/model"
	"github.com/williansouza19122014/Timesheet-sub000/internal/service"
)

// dueDateLayout is the calendar-date format accepted for card due dates.
const dueDateLayout = "2006-01-02"

type createCardRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      string            `json:"status"`
	Priority    string            `json:"priority"`
	Tags        tagList           `json:"tags"`
	DueDate     string            `json:"dueDate"`
	Position    *int              `json:"position"`
	Assignees   []string          `json:"assignees"`
	Correction  *model.Correction `json:"correction"`
}

type updateCardRequest struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	Status      *string            `json:"status"`
	Priority    *string            `json:"priority"`
	Tags        *tagList           `json:"tags"`
	DueDate     optionalString     `json:"dueDate"`
	Assignees   *[]string          `json:"assignees"`
	Correction  optionalCorrection `json:"correction"`
}

type moveCardRequest struct {
	TargetColumnID string `json:"targetColumnId"`
	TargetPosition *int   `json:"targetPosition"`
}

// handleCreateCard inserts a card into a column.
func (s *Server) handleCreateCard(c *gin.Context) {
	columnID, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req createCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	assignees, err := parseUUIDList(req.Assignees)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in := service.CreateCardInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      model.Status(req.Status),
		Priority:    model.Priority(req.Priority),
		Tags:        req.Tags,
		Position:    req.Position,
		Assignees:   assignees,
		Correction:  req.Correction,
	}
	if req.DueDate != "" {
		due, err := time.Parse(dueDateLayout, req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "dueDate must be YYYY-MM-DD"})
			return
		}
		in.DueDate = &due
	}

	card, board, err := s.cards.Create(c.Request.Context(), actorFrom(c), columnID, in)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"card": card, "board": board})
}

// handleUpdateCard applies a partial patch to a card.
func (s *Server) handleUpdateCard(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req updateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in := service.UpdateCardInput{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		st := model.Status(*req.Status)
		in.Status = &st
	}
	if req.Priority != nil {
		pr := model.Priority(*req.Priority)
		in.Priority = &pr
	}
	if req.Tags != nil {
		tags := []string(*req.Tags)
		in.Tags = &tags
	}
	if req.DueDate.set {
		if req.DueDate.valid && req.DueDate.value != "" {
			due, err := time.Parse(dueDateLayout, req.DueDate.value)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "dueDate must be YYYY-MM-DD"})
				return
			}
			in.DueDate = &due
		} else {
			in.ClearDueDate = true
		}
	}
	if req.Assignees != nil {
		assignees, err := parseUUIDList(*req.Assignees)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		in.Assignees = &assignees
	}
	if req.Correction.set {
		in.CorrectionSet = true
		in.Correction = req.Correction.value
	}

	card, board, err := s.cards.Update(c.Request.Context(), actorFrom(c), id, in)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"card": card, "board": board})
}

// handleMoveCard relocates a card within its board.
func (s *Server) handleMoveCard(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req moveCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	target, err := uuid.FromString(req.TargetColumnID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid targetColumnId"})
		return
	}
	card, board, err := s.cards.Move(c.Request.Context(), actorFrom(c), id, service.MoveCardInput{
		TargetColumnID: target,
		TargetPosition: req.TargetPosition,
	})
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"card": card, "board": board})
}

// handleDeleteCard removes a card.
func (s *Server) handleDeleteCard(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	board, err := s.cards.Delete(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"board": board})
}

// handleCardActivity returns the card's trail, newest first.
func (s *Server) handleCardActivity(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	activity, err := s.cards.ListActivity(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"activity": activity})
}

func parseUUIDList(raw []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.FromString(r)
		if err != nil {
			return nil, fmt.Errorf("invalid assignee id %q", r)
		}
		out = append(out, id)
	}
	return out, nil
}
