package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateDailyTarget = "CREATE_DAILY_TARGET"
	ActionUpdateDailyTarget = "UPDATE_DAILY_TARGET"

	ActionCreateCollection = "CREATE_SD_COLLECTION"
	ActionUpdateCollection = "UPDATE_SD_COLLECTION"
	ActionDeleteCollection = "DELETE_SD_COLLECTION"

	ActionAssignTask       = "ASSIGN_TASK"
	ActionUpdateTask       = "UPDATE_TASK"
	ActionDeleteTask       = "DELETE_TASK"
	ActionTaskStatusChange = "TASK_STATUS_CHANGE"

	ActionMapPincodeData = "MAP_PINCODE_DATA"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User       *Account   `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string     `gorm:"type:jsonb" json:"details"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
