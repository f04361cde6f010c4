package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task status constants.
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"
)

// ValidTaskStatus reports whether status is a known task status.
func ValidTaskStatus(status string) bool {
	return status == TaskStatusPending ||
		status == TaskStatusInProgress ||
		status == TaskStatusCompleted ||
		status == TaskStatusCancelled
}

// TaskCategory is a reference list for grouping tasks.
type TaskCategory struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
}

func (c *TaskCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Task is a work item assigned by one account to another, with a date range
// and a mutable status. Deletion removes the row; is_deleted additionally
// hides soft-hidden tasks from assignee lists.
type Task struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	CategoryID *uuid.UUID    `gorm:"type:uuid;index" json:"category_id"`
	Category   *TaskCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Title      string        `gorm:"type:varchar(255);not null" json:"title"`
	Details    string        `gorm:"type:text;default:'No details provided'" json:"details"`

	AssignedByID uuid.UUID `gorm:"type:uuid;not null;index" json:"assigned_by_id"`
	AssignedBy   Account   `gorm:"foreignKey:AssignedByID" json:"assigned_by,omitempty"`
	AssignedToID uuid.UUID `gorm:"type:uuid;not null;index" json:"assigned_to_id"`
	AssignedTo   Account   `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`

	StartDate time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate   time.Time `gorm:"type:date;not null" json:"end_date"`
	Status    string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	IsDeleted bool      `gorm:"default:false;index" json:"is_deleted"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TaskNote is one entry in a task's append-only note thread.
type TaskNote struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TaskID    uuid.UUID `gorm:"type:uuid;not null;index" json:"task_id"`
	Task      Task      `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      Account   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Note      string    `gorm:"type:text;not null" json:"note"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (n *TaskNote) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
