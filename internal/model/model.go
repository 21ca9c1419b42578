// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Role is the coarse role carried by an authenticated actor.
type Role string

// Roles recognized by the access guard.
const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// Actor is the authenticated caller of an engine operation.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// Status is a card workflow state.
type Status string

// Card statuses.
const (
	StatusTodo   Status = "todo"
	StatusDoing  Status = "doing"
	StatusReview Status = "review"
	StatusDone   Status = "done"
)

// ValidStatus reports whether s is one of the four allowed values.
func ValidStatus(s Status) bool {
	switch s {
	case StatusTodo, StatusDoing, StatusReview, StatusDone:
		return true
	}
	return false
}

// Priority is a card priority level.
type Priority string

// Card priorities.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// NormalizePriority maps p to a known priority, defaulting to medium.
func NormalizePriority(p Priority) Priority {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p
	}
	return PriorityMedium
}

// Board groups columns for a single project. Boards are archived, never deleted.
type Board struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"projectId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsArchived  bool      `json:"isArchived"`
	CreatedBy   uuid.UUID `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Columns are sorted by position ascending when the board is loaded nested.
	Columns []Column `json:"columns"`
}

// Column is an ordered lane on a board. Position values are dense per board,
// starting at 0.
type Column struct {
	ID       uuid.UUID `json:"id"`
	BoardID  uuid.UUID `json:"boardId"`
	Title    string    `json:"title"`
	Limit    *int      `json:"limit,omitempty"` // WIP cap; nil means uncapped
	Position int       `json:"position"`

	Cards []Card `json:"cards"`
}

// Card is a single work item. Position values are dense per column, starting at 0.
// BoardID and ProjectID are denormalized from the owning column.
type Card struct {
	ID          uuid.UUID   `json:"id"`
	ColumnID    uuid.UUID   `json:"columnId"`
	BoardID     uuid.UUID   `json:"boardId"`
	ProjectID   uuid.UUID   `json:"projectId"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Status      Status      `json:"status"`
	Position    int         `json:"position"`
	Tags        []string    `json:"tags"`
	DueDate     *time.Time  `json:"dueDate,omitempty"`
	Priority    Priority    `json:"priority"`
	Assignees   []uuid.UUID `json:"assignees"`
	CreatedBy   uuid.UUID   `json:"createdBy"`
	Correction  *Correction `json:"correction,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// TimePair is a clock-in/clock-out pair inside a correction.
type TimePair struct {
	Entrada string `json:"entrada"`
	Saida   string `json:"saida"`
}

// Correction is an optional sub-record attached to a card. It exists only
// when at least one field is set; Normalize enforces that rule.
type Correction struct {
	Date          string     `json:"date,omitempty"`
	Justification string     `json:"justification,omitempty"`
	DocumentName  string     `json:"documentName,omitempty"`
	Entries       []TimePair `json:"entries,omitempty"`
}

// Normalize returns nil unless at least one field of the correction is set.
func (c *Correction) Normalize() *Correction {
	if c == nil {
		return nil
	}
	if c.Date == "" && c.Justification == "" && c.DocumentName == "" && len(c.Entries) == 0 {
		return nil
	}
	return c
}

// Action tags recorded in the activity trail.
type Action string

// Activity actions.
const (
	ActionCardCreated Action = "card_created"
	ActionCardUpdated Action = "card_updated"
	ActionCardMoved   Action = "card_moved"
	ActionCardDeleted Action = "card_deleted"
)

// Activity is an immutable audit record of a card mutation. Entries survive
// card deletion; the card id may no longer resolve to a live card.
type Activity struct {
	ID        uuid.UUID      `json:"id"`
	CardID    uuid.UUID      `json:"cardId"`
	UserID    uuid.UUID      `json:"userId"`
	Action    Action         `json:"action"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"createdAt"`
}
