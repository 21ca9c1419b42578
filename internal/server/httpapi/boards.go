package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"

	"github.com/williansouza19122014/Timesheet-sub000/internal/service"
)

type createBoardRequest struct {
	ProjectID   string `json:"projectId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updateBoardRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type archiveBoardRequest struct {
	Archived bool `json:"archived"`
}

type createColumnRequest struct {
	Title    string `json:"title"`
	Limit    *int   `json:"limit"`
	Position *int   `json:"position"`
}

type updateColumnRequest struct {
	Title    *string     `json:"title"`
	Limit    optionalInt `json:"limit"`
	Position *int        `json:"position"`
}

// handleListBoards returns the boards visible to the actor.
func (s *Server) handleListBoards(c *gin.Context) {
	var filter service.BoardListFilter
	if raw := c.Query("projectId"); raw != "" {
		pid, err := uuid.FromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid projectId"})
			return
		}
		filter.ProjectID = &pid
	}
	filter.IncludeArchived = c.Query("includeArchived") == "true"

	boards, err := s.boards.List(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"boards": boards})
}

// handleCreateBoard makes a board with the three default columns.
func (s *Server) handleCreateBoard(c *gin.Context) {
	var req createBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pid, err := uuid.FromString(req.ProjectID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid projectId"})
		return
	}
	board, err := s.boards.Create(c.Request.Context(), actorFrom(c), service.CreateBoardInput{
		ProjectID:   pid,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"board": board})
}

// handleUpdateBoard patches name/description.
func (s *Server) handleUpdateBoard(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req updateBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	board, err := s.boards.Update(c.Request.Context(), actorFrom(c), id, service.UpdateBoardInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"board": board})
}

// handleArchiveBoard soft-disables or restores a board.
func (s *Server) handleArchiveBoard(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req archiveBoardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	board, err := s.boards.SetArchived(c.Request.Context(), actorFrom(c), id, req.Archived)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"board": board})
}

// handleCreateColumn adds a column to a board.
func (s *Server) handleCreateColumn(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req createColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	board, err := s.boards.CreateColumn(c.Request.Context(), actorFrom(c), id, service.CreateColumnInput{
		Title:    req.Title,
		Limit:    req.Limit,
		Position: req.Position,
	})
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"board": board})
}

// handleUpdateColumn patches a column; an explicit null limit clears the cap.
func (s *Server) handleUpdateColumn(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req updateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in := service.UpdateColumnInput{Title: req.Title, Position: req.Position}
	if req.Limit.set {
		if req.Limit.valid {
			v := req.Limit.value
			in.Limit = &v
		} else {
			in.ClearLimit = true
		}
	}
	board, err := s.boards.UpdateColumn(c.Request.Context(), actorFrom(c), id, in)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"board": board})
}

// handleDeleteColumn removes a column, migrating cards when moveCardsTo is given.
func (s *Server) handleDeleteColumn(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var moveTo *uuid.UUID
	if raw := c.Query("moveCardsTo"); raw != "" {
		target, err := uuid.FromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid moveCardsTo"})
			return
		}
		moveTo = &target
	}
	board, err := s.boards.DeleteColumn(c.Request.Context(), actorFrom(c), id, moveTo)
	if err != nil {
		s.respondServiceError(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"board": board})
}
