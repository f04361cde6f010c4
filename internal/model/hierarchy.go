package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ASMProfile links one Area Sales Manager account to the Partner accounts it
// manages. The role invariants (user is an ASM, partners are Partners) are
// enforced at data-entry time by the hierarchy service.
type ASMProfile struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User     Account   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Partners []Account `gorm:"many2many:asm_partners;" json:"partners,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *ASMProfile) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// ZonalManager links one Zone Manager account to the ASM accounts under it,
// completing the three-level ZM → ASM → Partner tree.
type ZonalManager struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User   Account   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	ASMs   []Account `gorm:"many2many:zonal_manager_asms;" json:"asms,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (z *ZonalManager) BeforeCreate(tx *gorm.DB) error {
	if z.ID == uuid.Nil {
		z.ID = uuid.New()
	}
	return nil
}
