package service

import (
	"context"
	"encoding/json"
	"errors"

	"salesops/internal/model"
	"salesops/internal/policy"
	"salesops/internal/repository"
	"salesops/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CollectionRequest struct {
	PartnerID string `json:"partner_id" binding:"required,uuid"`
	Date      string `json:"date" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
	Note      string `json:"note"`
	Status    string `json:"status"`
}

// ZMCollectionRequest records a collection from the ZM/Admin side. Any partner
// is allowed; the ASM link is taken from the request or resolved from the
// partner's profile.
type ZMCollectionRequest struct {
	PartnerID string `json:"partner_id" binding:"required,uuid"`
	ASMID     string `json:"asm_id"`
	Date      string `json:"date" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
	Note      string `json:"note"`
	Status    string `json:"status"`
}

// CollectionUpdateRequest carries only the fields being changed.
type CollectionUpdateRequest struct {
	Date   *string `json:"date"`
	Amount *string `json:"amount"`
	Note   *string `json:"note"`
	Status *string `json:"status"`
}

type CollectionListFilter struct {
	ASMID  string
	From   string
	To     string
	Status string
}

// CollectionSummary totals a collection list by status. Amounts stay decimal
// end to end; the totals are summed in Go over the listed rows.
type CollectionSummary struct {
	Total     decimal.Decimal `json:"total"`
	Completed decimal.Decimal `json:"completed"`
	Pending   decimal.Decimal `json:"pending"`
}

type CollectionListResponse struct {
	Collections []model.SDCollection `json:"collections"`
	Summary     CollectionSummary    `json:"summary"`
}

// CollectionService owns the security-deposit collection ledger. The ASM path
// only ever soft-deletes; hard deletion is reserved for the ZM/Admin path.
type CollectionService interface {
	ListForASM(ctx context.Context, p policy.Principal, filter CollectionListFilter) (*CollectionListResponse, error)
	Add(ctx context.Context, p policy.Principal, req CollectionRequest) (*model.SDCollection, error)
	Edit(ctx context.Context, p policy.Principal, id uuid.UUID, req CollectionUpdateRequest) (*model.SDCollection, error)
	SoftDelete(ctx context.Context, p policy.Principal, id uuid.UUID) error

	ListForZM(ctx context.Context, p policy.Principal, filter CollectionListFilter) (*CollectionListResponse, error)
	AddForZM(ctx context.Context, p policy.Principal, req ZMCollectionRequest) (*model.SDCollection, error)
	EditForZM(ctx context.Context, p policy.Principal, id uuid.UUID, req CollectionUpdateRequest) (*model.SDCollection, error)
	HardDelete(ctx context.Context, p policy.Principal, id uuid.UUID) error
}

type collectionService struct {
	repo      repository.CollectionRepository
	hierarchy repository.HierarchyRepository
	audit     repository.AuditRepository
}

func NewCollectionService(repo repository.CollectionRepository, hierarchy repository.HierarchyRepository, audit repository.AuditRepository) CollectionService {
	return &collectionService{repo: repo, hierarchy: hierarchy, audit: audit}
}

func parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperr.Validation("invalid amount %q", raw)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, apperr.Validation("amount must be greater than zero")
	}
	return amount, nil
}

func summarize(rows []model.SDCollection) CollectionSummary {
	s := CollectionSummary{Total: decimal.Zero, Completed: decimal.Zero, Pending: decimal.Zero}
	for i := range rows {
		if rows[i].IsDeleted {
			continue
		}
		s.Total = s.Total.Add(rows[i].Amount)
		switch rows[i].Status {
		case model.CollectionStatusCompleted:
			s.Completed = s.Completed.Add(rows[i].Amount)
		case model.CollectionStatusPending:
			s.Pending = s.Pending.Add(rows[i].Amount)
		}
	}
	return s
}

func buildCollectionFilter(filter CollectionListFilter) (repository.CollectionFilter, error) {
	out := repository.CollectionFilter{Status: filter.Status}
	if filter.Status != "" && !model.ValidCollectionStatus(filter.Status) {
		return out, apperr.Validation("unknown status %q", filter.Status)
	}
	if filter.ASMID != "" {
		id, err := uuid.Parse(filter.ASMID)
		if err != nil {
			return out, apperr.Validation("invalid asm id")
		}
		out.ASMID = &id
	}
	if filter.From != "" {
		from, err := parseDate(filter.From)
		if err != nil {
			return out, err
		}
		out.From = &from
	}
	if filter.To != "" {
		to, err := parseDate(filter.To)
		if err != nil {
			return out, err
		}
		out.To = &to
	}
	return out, nil
}

func (s *collectionService) record(ctx context.Context, p policy.Principal, action string, c *model.SDCollection) {
	details, _ := json.Marshal(map[string]interface{}{
		"partner_id": c.PartnerID.String(),
		"date":       c.Date.Format(dateLayout),
		"amount":     c.Amount.String(),
		"status":     c.Status,
	})
	accountID := p.AccountID
	_ = s.audit.Record(ctx, &model.AuditLog{
		UserID:     &accountID,
		Action:     action,
		EntityID:   c.ID.String(),
		EntityName: "sd collection " + c.Date.Format(dateLayout),
		Details:    string(details),
	})
}

func (s *collectionService) ListForASM(ctx context.Context, p policy.Principal, filter CollectionListFilter) (*CollectionListResponse, error) {
	if err := policy.RequireRole(p, model.RoleAreaSalesManager); err != nil {
		return nil, err
	}
	repoFilter, err := buildCollectionFilter(filter)
	if err != nil {
		return nil, err
	}
	repoFilter.ASMID = nil
	rows, err := s.repo.ListByASM(ctx, p.AccountID, repoFilter)
	if err != nil {
		return nil, err
	}
	return &CollectionListResponse{Collections: rows, Summary: summarize(rows)}, nil
}

func (s *collectionService) Add(ctx context.Context, p policy.Principal, req CollectionRequest) (*model.SDCollection, error) {
	if err := policy.RequireRole(p, model.RoleAreaSalesManager); err != nil {
		return nil, err
	}

	partnerID, err := uuid.Parse(req.PartnerID)
	if err != nil {
		return nil, apperr.Validation("invalid partner id")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = model.CollectionStatusPending
	}
	if !model.ValidCollectionStatus(status) {
		return nil, apperr.Validation("unknown status %q", status)
	}

	// The ASM may only record collections against its own partners.
	profile, err := s.hierarchy.GetASMProfileByUser(ctx, p.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotAssigned
		}
		return nil, err
	}
	ok, err := s.hierarchy.IsPartnerOfASM(ctx, profile.ID, partnerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrDenied
	}

	collection := &model.SDCollection{
		PartnerID: partnerID,
		ASMID:     p.AccountID,
		Date:      date,
		Amount:    amount,
		Note:      req.Note,
		Status:    status,
	}
	// Attach the upstream ZM when one exists; an unassigned ASM still records.
	zms, err := s.hierarchy.ZMProfilesForASM(ctx, p.AccountID)
	if err != nil {
		return nil, err
	}
	if len(zms) > 0 {
		collection.ZoneManagerID = &zms[0].ID
	}

	if err := s.repo.Create(ctx, collection); err != nil {
		return nil, err
	}
	s.record(ctx, p, model.ActionCreateCollection, collection)
	return s.getCollection(ctx, collection.ID)
}

func (s *collectionService) getCollection(ctx context.Context, id uuid.UUID) (*model.SDCollection, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func applyCollectionUpdate(c *model.SDCollection, req CollectionUpdateRequest) error {
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			return err
		}
		c.Date = date
	}
	if req.Amount != nil {
		amount, err := parseAmount(*req.Amount)
		if err != nil {
			return err
		}
		c.Amount = amount
	}
	if req.Note != nil {
		c.Note = *req.Note
	}
	if req.Status != nil {
		if !model.ValidCollectionStatus(*req.Status) {
			return apperr.Validation("unknown status %q", *req.Status)
		}
		c.Status = *req.Status
	}
	return nil
}

func (s *collectionService) Edit(ctx context.Context, p policy.Principal, id uuid.UUID, req CollectionUpdateRequest) (*model.SDCollection, error) {
	if err := policy.RequireRole(p, model.RoleAreaSalesManager); err != nil {
		return nil, err
	}
	c, err := s.getCollection(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireOwner(p, c.ASMID); err != nil {
		return nil, err
	}
	if c.IsDeleted {
		return nil, apperr.ErrNotFound
	}
	if err := applyCollectionUpdate(c, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.record(ctx, p, model.ActionUpdateCollection, c)
	return s.getCollection(ctx, id)
}

func (s *collectionService) SoftDelete(ctx context.Context, p policy.Principal, id uuid.UUID) error {
	if err := policy.RequireRole(p, model.RoleAreaSalesManager); err != nil {
		return err
	}
	c, err := s.getCollection(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.RequireOwner(p, c.ASMID); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, p, model.ActionDeleteCollection, c)
	return nil
}

func (s *collectionService) zmProfile(ctx context.Context, p policy.Principal) (*model.ZonalManager, error) {
	if err := policy.RequireRole(p, model.RoleZoneManager); err != nil {
		return nil, err
	}
	profile, err := s.hierarchy.GetZMProfileByUser(ctx, p.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotAssigned
		}
		return nil, err
	}
	return profile, nil
}

// ListForZM reports all collections under the ZM's profile, soft-deleted rows
// included; the summary still skips them.
func (s *collectionService) ListForZM(ctx context.Context, p policy.Principal, filter CollectionListFilter) (*CollectionListResponse, error) {
	profile, err := s.zmProfile(ctx, p)
	if err != nil {
		return nil, err
	}
	repoFilter, err := buildCollectionFilter(filter)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByZM(ctx, profile.ID, repoFilter)
	if err != nil {
		return nil, err
	}
	return &CollectionListResponse{Collections: rows, Summary: summarize(rows)}, nil
}

func (s *collectionService) zmOwns(p policy.Principal, c *model.SDCollection) error {
	if p.Is(model.RoleAdmin) {
		return nil
	}
	if c.ZoneManager != nil && c.ZoneManager.UserID == p.AccountID {
		return nil
	}
	return apperr.ErrDenied
}

// AddForZM records a collection against any partner. When the caller is a ZM
// its own profile becomes the upstream link; for Admin the link is resolved
// from the ASM's profile when one exists.
func (s *collectionService) AddForZM(ctx context.Context, p policy.Principal, req ZMCollectionRequest) (*model.SDCollection, error) {
	if err := policy.RequireRole(p, model.RoleZoneManager, model.RoleAdmin); err != nil {
		return nil, err
	}

	partnerID, err := uuid.Parse(req.PartnerID)
	if err != nil {
		return nil, apperr.Validation("invalid partner id")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = model.CollectionStatusPending
	}
	if !model.ValidCollectionStatus(status) {
		return nil, apperr.Validation("unknown status %q", status)
	}

	var asmID uuid.UUID
	if req.ASMID != "" {
		asmID, err = uuid.Parse(req.ASMID)
		if err != nil {
			return nil, apperr.Validation("invalid asm id")
		}
	} else {
		asms, err := s.hierarchy.ASMProfilesForPartner(ctx, partnerID)
		if err != nil {
			return nil, err
		}
		if len(asms) == 0 {
			return nil, apperr.ErrNotAssigned
		}
		asmID = asms[0].UserID
	}

	collection := &model.SDCollection{
		PartnerID: partnerID,
		ASMID:     asmID,
		Date:      date,
		Amount:    amount,
		Note:      req.Note,
		Status:    status,
	}

	if p.Is(model.RoleZoneManager) {
		profile, err := s.hierarchy.GetZMProfileByUser(ctx, p.AccountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.ErrNotAssigned
			}
			return nil, err
		}
		collection.ZoneManagerID = &profile.ID
	} else {
		zms, err := s.hierarchy.ZMProfilesForASM(ctx, asmID)
		if err != nil {
			return nil, err
		}
		if len(zms) > 0 {
			collection.ZoneManagerID = &zms[0].ID
		}
	}

	if err := s.repo.Create(ctx, collection); err != nil {
		return nil, err
	}
	s.record(ctx, p, model.ActionCreateCollection, collection)
	return s.getCollection(ctx, collection.ID)
}

func (s *collectionService) EditForZM(ctx context.Context, p policy.Principal, id uuid.UUID, req CollectionUpdateRequest) (*model.SDCollection, error) {
	if err := policy.RequireRole(p, model.RoleZoneManager, model.RoleAdmin); err != nil {
		return nil, err
	}
	c, err := s.getCollection(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.zmOwns(p, c); err != nil {
		return nil, err
	}
	if err := applyCollectionUpdate(c, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.record(ctx, p, model.ActionUpdateCollection, c)
	return s.getCollection(ctx, id)
}

func (s *collectionService) HardDelete(ctx context.Context, p policy.Principal, id uuid.UUID) error {
	if err := policy.RequireRole(p, model.RoleZoneManager, model.RoleAdmin); err != nil {
		return err
	}
	c, err := s.getCollection(ctx, id)
	if err != nil {
		return err
	}
	if err := s.zmOwns(p, c); err != nil {
		return err
	}
	if err := s.repo.HardDelete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, p, model.ActionDeleteCollection, c)
	return nil
}
