package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SDCollection status constants.
const (
	CollectionStatusPending   = "pending"
	CollectionStatusCompleted = "completed"
	CollectionStatusCancelled = "cancelled"
)

// ValidCollectionStatus reports whether status is a known collection status.
func ValidCollectionStatus(status string) bool {
	return status == CollectionStatusPending ||
		status == CollectionStatusCompleted ||
		status == CollectionStatusCancelled
}

// SDCollection records one security-deposit collection transaction against a
// Partner. The ASM path soft-deletes (is_deleted flag); only the ZM/Admin path
// removes rows.
type SDCollection struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	PartnerID     uuid.UUID     `gorm:"type:uuid;not null;index" json:"partner_id"`
	Partner       Account       `gorm:"foreignKey:PartnerID" json:"partner,omitempty"`
	ASMID         uuid.UUID     `gorm:"column:asm_id;type:uuid;not null;index" json:"asm_id"`
	ASM           Account       `gorm:"foreignKey:ASMID" json:"asm,omitempty"`
	ZoneManagerID *uuid.UUID    `gorm:"type:uuid;index" json:"zone_manager_id"`
	ZoneManager   *ZonalManager `gorm:"foreignKey:ZoneManagerID" json:"zone_manager,omitempty"`

	Date      time.Time       `gorm:"type:date;not null;index" json:"date"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Note      string          `gorm:"type:text" json:"note"`
	Status    string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	IsDeleted bool            `gorm:"default:false;index" json:"is_deleted"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *SDCollection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
