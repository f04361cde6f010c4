package repository

import (
	"context"

	"salesops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HierarchyRepository resolves the ZM → ASM → Partner tree. Upward lookups
// query the many-to-many join tables directly so they stay indexed lookups,
// not in-memory walks over loaded associations.
type HierarchyRepository interface {
	CreateASMProfile(ctx context.Context, profile *model.ASMProfile) error
	CreateZMProfile(ctx context.Context, profile *model.ZonalManager) error
	GetASMProfileByID(ctx context.Context, id uuid.UUID) (*model.ASMProfile, error)
	GetZMProfileByID(ctx context.Context, id uuid.UUID) (*model.ZonalManager, error)
	GetASMProfileByUser(ctx context.Context, userID uuid.UUID) (*model.ASMProfile, error)
	GetZMProfileByUser(ctx context.Context, userID uuid.UUID) (*model.ZonalManager, error)
	ListASMProfiles(ctx context.Context) ([]model.ASMProfile, error)
	ListZMProfiles(ctx context.Context) ([]model.ZonalManager, error)
	ReplacePartners(ctx context.Context, profile *model.ASMProfile, partners []model.Account) error
	ReplaceASMs(ctx context.Context, profile *model.ZonalManager, asms []model.Account) error

	// Upward resolution. Results are ordered by profile id so callers can pick
	// deterministically when the tree is ambiguous.
	ZMProfilesForASM(ctx context.Context, asmAccountID uuid.UUID) ([]model.ZonalManager, error)
	ASMProfilesForPartner(ctx context.Context, partnerAccountID uuid.UUID) ([]model.ASMProfile, error)

	// Membership checks used by the access policy.
	IsASMOfZM(ctx context.Context, zmProfileID, asmAccountID uuid.UUID) (bool, error)
	IsPartnerOfASM(ctx context.Context, asmProfileID, partnerAccountID uuid.UUID) (bool, error)

	ASMsOf(ctx context.Context, zmProfileID uuid.UUID, activeOnly bool) ([]model.Account, error)
	PartnersOf(ctx context.Context, asmProfileID uuid.UUID, activeOnly bool) ([]model.Account, error)
}

type hierarchyRepository struct {
	db *gorm.DB
}

func NewHierarchyRepository(db *gorm.DB) HierarchyRepository {
	return &hierarchyRepository{db: db}
}

func (r *hierarchyRepository) CreateASMProfile(ctx context.Context, profile *model.ASMProfile) error {
	return GetDB(ctx, r.db).Create(profile).Error
}

func (r *hierarchyRepository) CreateZMProfile(ctx context.Context, profile *model.ZonalManager) error {
	return GetDB(ctx, r.db).Create(profile).Error
}

func (r *hierarchyRepository) GetASMProfileByID(ctx context.Context, id uuid.UUID) (*model.ASMProfile, error) {
	var profile model.ASMProfile
	if err := GetDB(ctx, r.db).Preload("User").Preload("Partners").First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *hierarchyRepository) GetZMProfileByID(ctx context.Context, id uuid.UUID) (*model.ZonalManager, error) {
	var profile model.ZonalManager
	if err := GetDB(ctx, r.db).Preload("User").Preload("ASMs").First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *hierarchyRepository) GetASMProfileByUser(ctx context.Context, userID uuid.UUID) (*model.ASMProfile, error) {
	var profile model.ASMProfile
	if err := GetDB(ctx, r.db).Preload("User").First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *hierarchyRepository) GetZMProfileByUser(ctx context.Context, userID uuid.UUID) (*model.ZonalManager, error) {
	var profile model.ZonalManager
	if err := GetDB(ctx, r.db).Preload("User").First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *hierarchyRepository) ListASMProfiles(ctx context.Context) ([]model.ASMProfile, error) {
	var profiles []model.ASMProfile
	if err := GetDB(ctx, r.db).Preload("User").Preload("Partners").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *hierarchyRepository) ListZMProfiles(ctx context.Context) ([]model.ZonalManager, error) {
	var profiles []model.ZonalManager
	if err := GetDB(ctx, r.db).Preload("User").Preload("ASMs").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *hierarchyRepository) ReplacePartners(ctx context.Context, profile *model.ASMProfile, partners []model.Account) error {
	return GetDB(ctx, r.db).Model(profile).Association("Partners").Replace(partners)
}

func (r *hierarchyRepository) ReplaceASMs(ctx context.Context, profile *model.ZonalManager, asms []model.Account) error {
	return GetDB(ctx, r.db).Model(profile).Association("ASMs").Replace(asms)
}

func (r *hierarchyRepository) ZMProfilesForASM(ctx context.Context, asmAccountID uuid.UUID) ([]model.ZonalManager, error) {
	var profiles []model.ZonalManager
	err := GetDB(ctx, r.db).
		Joins("JOIN zonal_manager_asms link ON link.zonal_manager_id = zonal_managers.id").
		Where("link.account_id = ?", asmAccountID).
		Preload("User").
		Order("zonal_managers.id").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *hierarchyRepository) ASMProfilesForPartner(ctx context.Context, partnerAccountID uuid.UUID) ([]model.ASMProfile, error) {
	var profiles []model.ASMProfile
	err := GetDB(ctx, r.db).
		Joins("JOIN asm_partners link ON link.asm_profile_id = asm_profiles.id").
		Where("link.account_id = ?", partnerAccountID).
		Preload("User").
		Order("asm_profiles.id").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *hierarchyRepository) IsASMOfZM(ctx context.Context, zmProfileID, asmAccountID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Table("zonal_manager_asms").
		Where("zonal_manager_id = ? AND account_id = ?", zmProfileID, asmAccountID).
		Count(&count).Error
	return count > 0, err
}

func (r *hierarchyRepository) IsPartnerOfASM(ctx context.Context, asmProfileID, partnerAccountID uuid.UUID) (bool, error) {
	var count int64
	err := GetDB(ctx, r.db).Table("asm_partners").
		Where("asm_profile_id = ? AND account_id = ?", asmProfileID, partnerAccountID).
		Count(&count).Error
	return count > 0, err
}

func (r *hierarchyRepository) ASMsOf(ctx context.Context, zmProfileID uuid.UUID, activeOnly bool) ([]model.Account, error) {
	var accounts []model.Account
	q := GetDB(ctx, r.db).
		Joins("JOIN zonal_manager_asms link ON link.account_id = accounts.id").
		Where("link.zonal_manager_id = ?", zmProfileID)
	if activeOnly {
		q = q.Where("accounts.is_active = ?", true)
	}
	if err := q.Order("accounts.username").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *hierarchyRepository) PartnersOf(ctx context.Context, asmProfileID uuid.UUID, activeOnly bool) ([]model.Account, error) {
	var accounts []model.Account
	q := GetDB(ctx, r.db).
		Joins("JOIN asm_partners link ON link.account_id = accounts.id").
		Where("link.asm_profile_id = ?", asmProfileID)
	if activeOnly {
		q = q.Where("accounts.is_active = ?", true)
	}
	if err := q.Order("accounts.username").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}
