package httpapi

import (
	"errors"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/williansouza19122014/Timesheet-sub000/internal/errs"
	"github.com/williansouza19122014/Timesheet-sub000/internal/model"
)

const actorKey = "kanban.actor"

// actorClaims is the token shape issued by the authentication subsystem:
// subject carries the user id, role the coarse role.
type actorClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// requireActor extracts the authenticated actor from the bearer token. The
// engine never issues tokens; it only consumes already-authenticated
// identity and role claims.
func (s *Server) requireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		if !strings.HasPrefix(raw, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		var claims actorClaims
		_, err := jwt.ParseWithClaims(strings.TrimPrefix(raw, "Bearer "), &claims,
			func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return s.signKey, nil
			})
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		uid, err := uuid.FromString(claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
			return
		}
		c.Set(actorKey, model.Actor{ID: uid, Role: model.Role(claims.Role)})
		c.Next()
	}
}

// actorFrom fetches the actor stored by requireActor.
func actorFrom(c *gin.Context) model.Actor {
	v, _ := c.Get(actorKey)
	actor, _ := v.(model.Actor)
	return actor
}

// logging records request metadata; payloads are never logged.
func (s *Server) logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("http",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
			zap.String("remote", c.ClientIP()),
		)
	}
}

// recovery converts panics into plain 500s with a logged stack.
func (s *Server) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic",
					zap.Any("reason", r),
					zap.ByteString("stack", debug.Stack()),
					zap.String("path", c.FullPath()),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal"})
			}
		}()
		c.Next()
	}
}

// respondServiceError maps the sentinel taxonomy onto HTTP statuses.
// Conflicts are marked retryable so the client can re-issue the move.
func (s *Server) respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrPrecondition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "retryable": true})
	default:
		s.logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
	}
}
