package model

import (
	"time"

	"salesops/internal/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DailyTarget holds one day's targets and achievements for one ASM under one
// Zonal Manager: ZM-set targets, ASM-set targets, and achieved values for the
// eight tracked metrics. The composite unique index on (asm_id, date) is the
// storage-level guard against the duplicate-creation race.
type DailyTarget struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ZonalManagerID uuid.UUID    `gorm:"type:uuid;not null;index" json:"zonal_manager_id"`
	ZonalManager   ZonalManager `gorm:"foreignKey:ZonalManagerID;constraint:OnDelete:CASCADE" json:"zonal_manager,omitempty"`
	ASMID          uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_daily_targets_asm_date" json:"asm_id"`
	ASM            Account      `gorm:"foreignKey:ASMID" json:"asm,omitempty"`
	Date           time.Time    `gorm:"type:date;not null;uniqueIndex:idx_daily_targets_asm_date" json:"date"`

	// ZM-set targets
	ApplicationTarget     float64 `gorm:"default:0" json:"application_target"`
	POPTarget             float64 `gorm:"column:pop_target;default:0" json:"pop_target"`
	ESignTarget           float64 `gorm:"column:esign_target;default:0" json:"esign_target"`
	NewTalukTarget        float64 `gorm:"default:0" json:"new_taluk_target"`
	NewLivePartnersTarget float64 `gorm:"default:0" json:"new_live_partners_target"`
	ActivationsTarget     float64 `gorm:"default:0" json:"activations_target"`
	CallsTarget           float64 `gorm:"default:0" json:"calls_target"`
	SDCollectionTarget    float64 `gorm:"column:sd_collection_target;default:0" json:"sd_collection_target"`

	// ASM-set targets
	ASMApplicationTarget     float64 `gorm:"column:asm_application_target;default:0" json:"asm_application_target"`
	ASMPOPTarget             float64 `gorm:"column:asm_pop_target;default:0" json:"asm_pop_target"`
	ASMESignTarget           float64 `gorm:"column:asm_esign_target;default:0" json:"asm_esign_target"`
	ASMNewTalukTarget        float64 `gorm:"column:asm_new_taluk_target;default:0" json:"asm_new_taluk_target"`
	ASMNewLivePartnersTarget float64 `gorm:"column:asm_new_live_partners_target;default:0" json:"asm_new_live_partners_target"`
	ASMActivationsTarget     float64 `gorm:"column:asm_activations_target;default:0" json:"asm_activations_target"`
	ASMCallsTarget           float64 `gorm:"column:asm_calls_target;default:0" json:"asm_calls_target"`
	ASMSDCollectionTarget    float64 `gorm:"column:asm_sd_collection_target;default:0" json:"asm_sd_collection_target"`

	// Achievements
	ApplicationAchieve     float64 `gorm:"default:0" json:"application_achieve"`
	POPAchieve             float64 `gorm:"column:pop_achieve;default:0" json:"pop_achieve"`
	ESignAchieve           float64 `gorm:"column:esign_achieve;default:0" json:"esign_achieve"`
	NewTalukAchieve        float64 `gorm:"default:0" json:"new_taluk_achieve"`
	NewLivePartnersAchieve float64 `gorm:"default:0" json:"new_live_partners_achieve"`
	ActivationsAchieve     float64 `gorm:"default:0" json:"activations_achieve"`
	CallsAchieve           float64 `gorm:"default:0" json:"calls_achieve"`
	SDCollectionAchieve    float64 `gorm:"column:sd_collection_achieve;default:0" json:"sd_collection_achieve"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *DailyTarget) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TargetValues returns the ZM-set target group.
func (t *DailyTarget) TargetValues() metrics.Values {
	return metrics.Values{
		Applications:    t.ApplicationTarget,
		POP:             t.POPTarget,
		ESign:           t.ESignTarget,
		NewTaluk:        t.NewTalukTarget,
		NewLivePartners: t.NewLivePartnersTarget,
		Activations:     t.ActivationsTarget,
		Calls:           t.CallsTarget,
		SDCollection:    t.SDCollectionTarget,
	}
}

// ASMTargetValues returns the ASM-set target group.
func (t *DailyTarget) ASMTargetValues() metrics.Values {
	return metrics.Values{
		Applications:    t.ASMApplicationTarget,
		POP:             t.ASMPOPTarget,
		ESign:           t.ASMESignTarget,
		NewTaluk:        t.ASMNewTalukTarget,
		NewLivePartners: t.ASMNewLivePartnersTarget,
		Activations:     t.ASMActivationsTarget,
		Calls:           t.ASMCallsTarget,
		SDCollection:    t.ASMSDCollectionTarget,
	}
}

// AchieveValues returns the achievement group.
func (t *DailyTarget) AchieveValues() metrics.Values {
	return metrics.Values{
		Applications:    t.ApplicationAchieve,
		POP:             t.POPAchieve,
		ESign:           t.ESignAchieve,
		NewTaluk:        t.NewTalukAchieve,
		NewLivePartners: t.NewLivePartnersAchieve,
		Activations:     t.ActivationsAchieve,
		Calls:           t.CallsAchieve,
		SDCollection:    t.SDCollectionAchieve,
	}
}
