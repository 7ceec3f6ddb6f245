package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskPriority ranks a task.
type TaskPriority string

// Valid priorities.
const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// IsValid reports whether p is one of the defined priorities.
func (p TaskPriority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ParsePriority accepts a priority in any letter case.
func ParsePriority(s string) (TaskPriority, error) {
	p := TaskPriority(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return p, nil
}

// TaskStatus tracks completion of a task.
type TaskStatus string

// Valid statuses.
const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
)

// IsValid reports whether s is one of the defined statuses.
func (s TaskStatus) IsValid() bool {
	return s == StatusPending || s == StatusCompleted
}

// ParseStatus accepts a status in any letter case.
func ParseStatus(s string) (TaskStatus, error) {
	st := TaskStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// dueDateLayouts are tried in order by ParseDueDate.
var dueDateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"}

// ParseDueDate accepts an RFC 3339 timestamp or a bare YYYY-MM-DD date.
func ParseDueDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDueDate, s)
}

// TaskOwner is a copy of the creating user's identity fields, taken when
// the task is created. It is not kept in sync with later profile changes.
type TaskOwner struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// OwnerFromUser snapshots u.
func OwnerFromUser(u *User) TaskOwner {
	return TaskOwner{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Task is a unit of work belonging to exactly one owner.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DueDate     time.Time    `json:"dueDate"`
	Priority    TaskPriority `json:"priority"`
	Status      TaskStatus   `json:"status"`
	Owner       TaskOwner    `json:"owner"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// NewTask creates a pending task for owner. An empty priority defaults to medium.
func NewTask(owner TaskOwner, title, description string, dueDate time.Time, priority TaskPriority) (*Task, error) {
	if priority == "" {
		priority = PriorityMedium
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		DueDate:     dueDate.UTC(),
		Priority:    priority,
		Status:      StatusPending,
		Owner:       owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}
	return task, nil
}

// Validate checks the invariants every stored task must satisfy.
func (t *Task) Validate() error {
	verr := NewValidationError()

	if t.ID == uuid.Nil {
		verr.Add("id", "id is required")
	}
	if t.Title == "" {
		verr.Add("title", "title is required")
	}
	if t.Description == "" {
		verr.Add("description", "description is required")
	}
	if t.DueDate.IsZero() {
		verr.Add("dueDate", "dueDate is required")
	}
	if !t.Priority.IsValid() {
		verr.Add("priority", "priority must be one of [low medium high]")
	}
	if !t.Status.IsValid() {
		verr.Add("status", "status must be one of [pending completed]")
	}
	if t.Owner.ID == uuid.Nil {
		verr.Add("owner", ErrEmptyUserID.Error())
	}

	return verr.OrNil()
}

// IsOwnedBy reports whether userID is the task's owner.
func (t *Task) IsOwnedBy(userID uuid.UUID) bool {
	return t.Owner.ID == userID
}

// TaskPatch holds the fields of a partial update. Nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	Priority    *TaskPriority
	Status      *TaskStatus
}

// Apply merges p into t, bumps UpdatedAt and re-validates. Owner and
// CreatedAt are never touched.
func (t *Task) Apply(p TaskPatch) error {
	if p.Title != nil {
		t.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		t.Description = strings.TrimSpace(*p.Description)
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate.UTC()
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	t.UpdatedAt = time.Now().UTC()

	return t.Validate()
}
