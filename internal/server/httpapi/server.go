// Package httpapi exposes the kanban engine over REST.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/williansouza19122014/Timesheet-sub000/internal/service"
)

// Server wires the board and card services into HTTP handlers.
type Server struct {
	engine  *gin.Engine
	boards  service.BoardService
	cards   service.CardService
	logger  *zap.Logger
	signKey []byte
}

// New constructs the HTTP server with routes and middleware configured.
func New(boards service.BoardService, cards service.CardService, signKey []byte, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	s := &Server{
		engine:  router,
		boards:  boards,
		cards:   cards,
		logger:  logger,
		signKey: signKey,
	}

	router.Use(s.recovery(), s.logging())
	s.registerRoutes()
	return s
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine { return s.engine }

// registerRoutes wires the API surface together.
func (s *Server) registerRoutes() {
	s.engine.GET("/api/healthz", s.handleHealth)

	api := s.engine.Group("/api", s.requireActor())
	{
		boards := api.Group("/boards")
		{
			boards.GET("", s.handleListBoards)
			boards.POST("", s.handleCreateBoard)
			boards.PATCH(":id", s.handleUpdateBoard)
			boards.PUT(":id/archive", s.handleArchiveBoard)
			boards.POST(":id/columns", s.handleCreateColumn)
		}

		api.PATCH("/columns/:id", s.handleUpdateColumn)
		api.DELETE("/columns/:id", s.handleDeleteColumn)
		api.POST("/columns/:id/cards", s.handleCreateCard)

		cards := api.Group("/cards")
		{
			cards.PATCH(":id", s.handleUpdateCard)
			cards.POST(":id/move", s.handleMoveCard)
			cards.DELETE(":id", s.handleDeleteCard)
			cards.GET(":id/activity", s.handleCardActivity)
		}
	}
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseUUID converts a path parameter into an identifier.
func parseUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.FromString(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid identifier"})
		return uuid.Nil, false
	}
	return id, true
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
