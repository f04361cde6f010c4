package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// State is the top level of the reference geography.
type State struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
}

func (s *State) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// District belongs to a State; names are unique per state.
type District struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_districts_name_state" json:"name"`
	StateID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_districts_name_state;index" json:"state_id"`
	State   State     `gorm:"foreignKey:StateID;constraint:OnDelete:CASCADE" json:"state,omitempty"`
}

func (d *District) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Office belongs to a District; names are unique per district.
type Office struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(150);not null;uniqueIndex:idx_offices_name_district" json:"name"`
	DistrictID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_offices_name_district;index" json:"district_id"`
	District   District  `gorm:"foreignKey:DistrictID;constraint:OnDelete:CASCADE" json:"district,omitempty"`
	OfficeType string    `gorm:"type:varchar(50)" json:"officetype"`
	Pincode    string    `gorm:"type:varchar(10)" json:"pincode"`
}

func (o *Office) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// PincodeData is the raw staging table for bulk geography uploads. Rows are
// mapped into State/District/Office by the map-to-master operation.
type PincodeData struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CircleName   string    `gorm:"type:varchar(100)" json:"circlename"`
	RegionName   string    `gorm:"type:varchar(100)" json:"regionname"`
	DivisionName string    `gorm:"type:varchar(100)" json:"divisionname"`
	OfficeName   string    `gorm:"type:varchar(150)" json:"officename"`
	Pincode      string    `gorm:"type:varchar(10)" json:"pincode"`
	OfficeType   string    `gorm:"type:varchar(50)" json:"officetype"`
	Delivery     string    `gorm:"type:varchar(50)" json:"delivery"`
	District     string    `gorm:"type:varchar(100)" json:"district"`
	StateName    string    `gorm:"type:varchar(100)" json:"statename"`
	Latitude     *float64  `json:"latitude"`
	Longitude    *float64  `json:"longitude"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (p *PincodeData) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
