package service

import (
	"context"
	"errors"

	"salesops/internal/model"
	"salesops/internal/policy"
	"salesops/internal/repository"
	"salesops/pkg/apperr"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DTOs

type ProfileRequest struct {
	UserID    string   `json:"user_id" binding:"required,uuid"`
	MemberIDs []string `json:"member_ids"`
}

type PartnerDetailsResponse struct {
	ASMID   string `json:"asm_id"`
	ASMName string `json:"asm_name"`
	ZMID    string `json:"zm_id"`
	ZMName  string `json:"zm_name"`
}

// HierarchyService resolves the ZM → ASM → Partner chains and maintains the
// two link profiles. Resolution treats zero upstream profiles as an explicit
// not-assigned condition and multiple upstream profiles as a data-integrity
// ambiguity: it picks the lowest profile id deterministically and logs it.
type HierarchyService interface {
	ResolveZMForASM(ctx context.Context, asmAccountID uuid.UUID) (*model.ZonalManager, error)
	ResolveASMForPartner(ctx context.Context, partnerAccountID uuid.UUID) (*model.ASMProfile, error)
	ResolveZMForPartner(ctx context.Context, partnerAccountID uuid.UUID) (*model.ZonalManager, error)
	PartnerDetails(ctx context.Context, partnerID uuid.UUID) (*PartnerDetailsResponse, error)

	CreateASMProfile(ctx context.Context, p policy.Principal, req ProfileRequest) (*model.ASMProfile, error)
	UpdateASMProfile(ctx context.Context, p policy.Principal, id uuid.UUID, req ProfileRequest) (*model.ASMProfile, error)
	CreateZMProfile(ctx context.Context, p policy.Principal, req ProfileRequest) (*model.ZonalManager, error)
	UpdateZMProfile(ctx context.Context, p policy.Principal, id uuid.UUID, req ProfileRequest) (*model.ZonalManager, error)
	ListASMProfiles(ctx context.Context, p policy.Principal) ([]model.ASMProfile, error)
	ListZMProfiles(ctx context.Context, p policy.Principal) ([]model.ZonalManager, error)
}

type hierarchyService struct {
	repo     repository.HierarchyRepository
	accounts repository.AccountRepository
	logger   *zap.Logger
}

func NewHierarchyService(repo repository.HierarchyRepository, accounts repository.AccountRepository, logger *zap.Logger) HierarchyService {
	return &hierarchyService{repo: repo, accounts: accounts, logger: logger}
}

func (s *hierarchyService) ResolveZMForASM(ctx context.Context, asmAccountID uuid.UUID) (*model.ZonalManager, error) {
	profiles, err := s.repo.ZMProfilesForASM(ctx, asmAccountID)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, apperr.ErrNotAssigned
	}
	if len(profiles) > 1 {
		s.logger.Warn("asm assigned to multiple zonal managers, picking lowest profile id",
			zap.String("asm_account_id", asmAccountID.String()),
			zap.Int("profile_count", len(profiles)),
			zap.String("picked_profile_id", profiles[0].ID.String()))
	}
	return &profiles[0], nil
}

func (s *hierarchyService) ResolveASMForPartner(ctx context.Context, partnerAccountID uuid.UUID) (*model.ASMProfile, error) {
	profiles, err := s.repo.ASMProfilesForPartner(ctx, partnerAccountID)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, apperr.ErrNotAssigned
	}
	if len(profiles) > 1 {
		s.logger.Warn("partner assigned to multiple asms, picking lowest profile id",
			zap.String("partner_account_id", partnerAccountID.String()),
			zap.Int("profile_count", len(profiles)),
			zap.String("picked_profile_id", profiles[0].ID.String()))
	}
	return &profiles[0], nil
}

func (s *hierarchyService) ResolveZMForPartner(ctx context.Context, partnerAccountID uuid.UUID) (*model.ZonalManager, error) {
	asm, err := s.ResolveASMForPartner(ctx, partnerAccountID)
	if err != nil {
		return nil, err
	}
	return s.ResolveZMForASM(ctx, asm.UserID)
}

// PartnerDetails returns the partner's upstream chain for display. Absent
// links come back as empty fields rather than an error: the consuming form
// shows whatever part of the chain exists.
func (s *hierarchyService) PartnerDetails(ctx context.Context, partnerID uuid.UUID) (*PartnerDetailsResponse, error) {
	if _, err := s.accounts.GetByID(ctx, partnerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}

	res := &PartnerDetailsResponse{}

	asm, err := s.ResolveASMForPartner(ctx, partnerID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotAssigned) {
			return res, nil
		}
		return nil, err
	}
	res.ASMID = asm.UserID.String()
	res.ASMName = asm.User.DisplayName()

	zm, err := s.ResolveZMForASM(ctx, asm.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotAssigned) {
			return res, nil
		}
		return nil, err
	}
	res.ZMID = zm.ID.String()
	res.ZMName = zm.User.DisplayName()
	return res, nil
}

// loadMembers fetches the member accounts and verifies they all hold the
// expected role. Role invariants are enforced here, at data-entry time.
func (s *hierarchyService) loadMembers(ctx context.Context, ids []string, role string) ([]model.Account, error) {
	members := make([]model.Account, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, apperr.Validation("invalid member id %q", raw)
		}
		account, err := s.accounts.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.Validation("member %s not found", raw)
			}
			return nil, err
		}
		if account.Role != role {
			return nil, apperr.Validation("member %s must have role %s", account.Username, role)
		}
		members = append(members, *account)
	}
	return members, nil
}

func (s *hierarchyService) profileUser(ctx context.Context, rawID, role string) (*model.Account, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, apperr.Validation("invalid user id")
	}
	user, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if user.Role != role {
		return nil, apperr.Validation("profile user must have role %s", role)
	}
	return user, nil
}

func (s *hierarchyService) CreateASMProfile(ctx context.Context, p policy.Principal, req ProfileRequest) (*model.ASMProfile, error) {
	if err := policy.RequireRole(p, model.RoleAdmin); err != nil {
		return nil, err
	}
	user, err := s.profileUser(ctx, req.UserID, model.RoleAreaSalesManager)
	if err != nil {
		return nil, err
	}
	partners, err := s.loadMembers(ctx, req.MemberIDs, model.RolePartner)
	if err != nil {
		return nil, err
	}
	profile := &model.ASMProfile{UserID: user.ID, Partners: partners}
	if err := s.repo.CreateASMProfile(ctx, profile); err != nil {
		return nil, err
	}
	return s.repo.GetASMProfileByID(ctx, profile.ID)
}

func (s *hierarchyService) UpdateASMProfile(ctx context.Context, p policy.Principal, id uuid.UUID, req ProfileRequest) (*model.ASMProfile, error) {
	if err := policy.RequireRole(p, model.RoleAdmin); err != nil {
		return nil, err
	}
	profile, err := s.repo.GetASMProfileByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	partners, err := s.loadMembers(ctx, req.MemberIDs, model.RolePartner)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReplacePartners(ctx, profile, partners); err != nil {
		return nil, err
	}
	return s.repo.GetASMProfileByID(ctx, id)
}

func (s *hierarchyService) CreateZMProfile(ctx context.Context, p policy.Principal, req ProfileRequest) (*model.ZonalManager, error) {
	if err := policy.RequireRole(p, model.RoleAdmin); err != nil {
		return nil, err
	}
	user, err := s.profileUser(ctx, req.UserID, model.RoleZoneManager)
	if err != nil {
		return nil, err
	}
	asms, err := s.loadMembers(ctx, req.MemberIDs, model.RoleAreaSalesManager)
	if err != nil {
		return nil, err
	}
	profile := &model.ZonalManager{UserID: user.ID, ASMs: asms}
	if err := s.repo.CreateZMProfile(ctx, profile); err != nil {
		return nil, err
	}
	return s.repo.GetZMProfileByID(ctx, profile.ID)
}

func (s *hierarchyService) UpdateZMProfile(ctx context.Context, p policy.Principal, id uuid.UUID, req ProfileRequest) (*model.ZonalManager, error) {
	if err := policy.RequireRole(p, model.RoleAdmin); err != nil {
		return nil, err
	}
	profile, err := s.repo.GetZMProfileByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	asms, err := s.loadMembers(ctx, req.MemberIDs, model.RoleAreaSalesManager)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceASMs(ctx, profile, asms); err != nil {
		return nil, err
	}
	return s.repo.GetZMProfileByID(ctx, id)
}

func (s *hierarchyService) ListASMProfiles(ctx context.Context, p policy.Principal) ([]model.ASMProfile, error) {
	if err := policy.RequireRole(p, model.RoleAdmin); err != nil {
		return nil, err
	}
	return s.repo.ListASMProfiles(ctx)
}

func (s *hierarchyService) ListZMProfiles(ctx context.Context, p policy.Principal) ([]model.ZonalManager, error) {
	if err := policy.RequireRole(p, model.RoleAdmin); err != nil {
		return nil, err
	}
	return s.repo.ListZMProfiles(ctx)
}
