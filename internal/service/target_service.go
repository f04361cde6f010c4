package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"salesops/internal/metrics"
	"salesops/internal/model"
	"salesops/internal/policy"
	"salesops/internal/repository"
	"salesops/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Metric slugs as submitted by the target forms, in display order.
var metricSlugs = []string{
	"applications",
	"pop",
	"e-sign",
	"new-taluk",
	"new-live-partners",
	"activations",
	"calls",
	"sd-collection",
}

// MetricEdit is one metric's submitted pair. Values arrive as strings and are
// parsed server-side so an unparsable entry yields a per-field error instead
// of a rejected payload.
type MetricEdit struct {
	Target  string `json:"target"`
	Achieve string `json:"achieve"`
}

// TargetEditRequest maps metric slug → submitted pair. Missing metrics count
// as "0". The batch applies all-or-nothing.
type TargetEditRequest map[string]MetricEdit

type CreateTargetRequest struct {
	ASMID   string            `json:"asm_id" binding:"required,uuid"`
	Date    string            `json:"date" binding:"required"`
	Targets map[string]string `json:"targets"`
}

type TargetListFilter struct {
	ASMID  string
	From   string
	To     string
	Search string
}

type AccountRef struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
}

type TargetRow struct {
	ID           uuid.UUID  `json:"id"`
	Date         string     `json:"date"`
	ASM          AccountRef `json:"asm"`
	TotalTarget  float64    `json:"total_target"`
	TotalAchieve float64    `json:"total_achieve"`
	Percent      float64    `json:"percent"`
}

type TargetListResponse struct {
	Targets        []TargetRow `json:"targets"`
	TotalTarget    float64     `json:"total_target"`
	TotalAchieve   float64     `json:"total_achieve"`
	OverallPercent float64     `json:"overall_percent"`
}

// ASMTargetRow is the ASM-side list row with both percent views.
type ASMTargetRow struct {
	ID                  uuid.UUID `json:"id"`
	Date                string    `json:"date"`
	ZMTotalTarget       float64   `json:"zm_total_target"`
	ASMTotalTarget      float64   `json:"asm_total_target"`
	ASMTotalAchieve     float64   `json:"asm_total_achieve"`
	ZMVsAchievePercent  float64   `json:"zm_vs_achieve_percent"`
	ASMVsAchievePercent float64   `json:"asm_vs_achieve_percent"`
}

type MetricDetail struct {
	Name       string  `json:"name"`
	ZMTarget   float64 `json:"zm_target"`
	ASMTarget  float64 `json:"asm_target"`
	Achieve    float64 `json:"achieve"`
	ZMPercent  float64 `json:"zm_percent"`
	ASMPercent float64 `json:"asm_percent"`
}

type TargetDetailResponse struct {
	ID        uuid.UUID        `json:"id"`
	Date      string           `json:"date"`
	ASM       AccountRef       `json:"asm"`
	Metrics   []MetricDetail   `json:"metrics"`
	States    []model.State    `json:"asm_states"`
	Districts []model.District `json:"asm_districts"`
	Offices   []model.Office   `json:"asm_offices"`
}

// TargetService owns the daily target ledger: ZM list/detail/add/edit and the
// ASM self-service views.
type TargetService interface {
	ListForZM(ctx context.Context, p policy.Principal, filter TargetListFilter) (*TargetListResponse, error)
	ListForASM(ctx context.Context, p policy.Principal) ([]ASMTargetRow, error)
	Detail(ctx context.Context, p policy.Principal, id uuid.UUID) (*TargetDetailResponse, error)
	Create(ctx context.Context, p policy.Principal, req CreateTargetRequest) (*TargetDetailResponse, error)
	UpdateZMBatch(ctx context.Context, p policy.Principal, id uuid.UUID, req TargetEditRequest) (*TargetDetailResponse, error)
	UpdateASMBatch(ctx context.Context, p policy.Principal, id uuid.UUID, req TargetEditRequest) (*TargetDetailResponse, error)
}

type targetService struct {
	repo      repository.TargetRepository
	hierarchy repository.HierarchyRepository
	audit     repository.AuditRepository
	tx        repository.TransactionManager
}

func NewTargetService(repo repository.TargetRepository, hierarchy repository.HierarchyRepository, audit repository.AuditRepository, tx repository.TransactionManager) TargetService {
	return &targetService{repo: repo, hierarchy: hierarchy, audit: audit, tx: tx}
}

const dateLayout = "2006-01-02"

func parseDate(raw string) (time.Time, error) {
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return d, nil
}

// parseMetricValue parses one submitted value. Empty means zero; negatives
// and unparsable input are rejected.
func parseMetricValue(raw string) (float64, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ""
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, "invalid number"
	}
	if v < 0 {
		return 0, "values cannot be negative"
	}
	return v, ""
}

// parseBatch validates the whole submission before anything is applied. When
// any metric fails, the field errors are returned and no value is used.
func parseBatch(req TargetEditRequest) (map[string][2]float64, *apperr.ValidationError) {
	parsed := make(map[string][2]float64, len(metricSlugs))
	fieldErrs := map[string]string{}

	for _, slug := range metricSlugs {
		edit := req[slug]
		t, terr := parseMetricValue(edit.Target)
		a, aerr := parseMetricValue(edit.Achieve)
		if terr != "" {
			fieldErrs[slug] = terr
			continue
		}
		if aerr != "" {
			fieldErrs[slug] = aerr
			continue
		}
		parsed[slug] = [2]float64{t, a}
	}

	if len(fieldErrs) > 0 {
		return nil, apperr.ValidationFields("target submission rejected", fieldErrs)
	}
	return parsed, nil
}

func applyZMEdit(t *model.DailyTarget, slug string, target, achieve float64) {
	switch slug {
	case "applications":
		t.ApplicationTarget, t.ApplicationAchieve = target, achieve
	case "pop":
		t.POPTarget, t.POPAchieve = target, achieve
	case "e-sign":
		t.ESignTarget, t.ESignAchieve = target, achieve
	case "new-taluk":
		t.NewTalukTarget, t.NewTalukAchieve = target, achieve
	case "new-live-partners":
		t.NewLivePartnersTarget, t.NewLivePartnersAchieve = target, achieve
	case "activations":
		t.ActivationsTarget, t.ActivationsAchieve = target, achieve
	case "calls":
		t.CallsTarget, t.CallsAchieve = target, achieve
	case "sd-collection":
		t.SDCollectionTarget, t.SDCollectionAchieve = target, achieve
	}
}

func applyASMEdit(t *model.DailyTarget, slug string, asmTarget, achieve float64) {
	switch slug {
	case "applications":
		t.ASMApplicationTarget, t.ApplicationAchieve = asmTarget, achieve
	case "pop":
		t.ASMPOPTarget, t.POPAchieve = asmTarget, achieve
	case "e-sign":
		t.ASMESignTarget, t.ESignAchieve = asmTarget, achieve
	case "new-taluk":
		t.ASMNewTalukTarget, t.NewTalukAchieve = asmTarget, achieve
	case "new-live-partners":
		t.ASMNewLivePartnersTarget, t.NewLivePartnersAchieve = asmTarget, achieve
	case "activations":
		t.ASMActivationsTarget, t.ActivationsAchieve = asmTarget, achieve
	case "calls":
		t.ASMCallsTarget, t.CallsAchieve = asmTarget, achieve
	case "sd-collection":
		t.ASMSDCollectionTarget, t.SDCollectionAchieve = asmTarget, achieve
	}
}

func setInitialTarget(t *model.DailyTarget, slug string, v float64) {
	switch slug {
	case "applications":
		t.ApplicationTarget = v
	case "pop":
		t.POPTarget = v
	case "e-sign":
		t.ESignTarget = v
	case "new-taluk":
		t.NewTalukTarget = v
	case "new-live-partners":
		t.NewLivePartnersTarget = v
	case "activations":
		t.ActivationsTarget = v
	case "calls":
		t.CallsTarget = v
	case "sd-collection":
		t.SDCollectionTarget = v
	}
}

func asmRef(a *model.Account) AccountRef {
	return AccountRef{ID: a.ID, Username: a.Username, Name: a.DisplayName()}
}

func (s *targetService) ownProfile(ctx context.Context, p policy.Principal) (*model.ZonalManager, error) {
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

func (s *targetService) ListForZM(ctx context.Context, p policy.Principal, filter TargetListFilter) (*TargetListResponse, error) {
	profile, err := s.ownProfile(ctx, p)
	if err != nil {
		return nil, err
	}

	repoFilter := repository.TargetFilter{Search: filter.Search}
	if filter.ASMID != "" {
		id, err := uuid.Parse(filter.ASMID)
		if err != nil {
			return nil, apperr.Validation("invalid asm id")
		}
		repoFilter.ASMID = &id
	}
	if filter.From != "" {
		from, err := parseDate(filter.From)
		if err == nil {
			repoFilter.From = &from
		}
	}
	if filter.To != "" {
		to, err := parseDate(filter.To)
		if err == nil {
			repoFilter.To = &to
		}
	}

	targets, err := s.repo.ListByZM(ctx, profile.ID, repoFilter)
	if err != nil {
		return nil, err
	}

	res := &TargetListResponse{Targets: make([]TargetRow, 0, len(targets))}
	var rollup metrics.Rollup
	for i := range targets {
		t := &targets[i]
		totalTarget := t.TargetValues().Total()
		totalAchieve := t.AchieveValues().Total()
		rollup.Add(totalTarget, totalAchieve)
		res.Targets = append(res.Targets, TargetRow{
			ID:           t.ID,
			Date:         t.Date.Format(dateLayout),
			ASM:          asmRef(&t.ASM),
			TotalTarget:  totalTarget,
			TotalAchieve: totalAchieve,
			Percent:      metrics.Percent(totalAchieve, totalTarget),
		})
	}
	res.TotalTarget = rollup.Target
	res.TotalAchieve = rollup.Achieve
	res.OverallPercent = rollup.Percent()
	return res, nil
}

func (s *targetService) ListForASM(ctx context.Context, p policy.Principal) ([]ASMTargetRow, error) {
	if err := policy.RequireRole(p, model.RoleAreaSalesManager); err != nil {
		return nil, err
	}

	targets, err := s.repo.ListByASM(ctx, p.AccountID)
	if err != nil {
		return nil, err
	}

	rows := make([]ASMTargetRow, 0, len(targets))
	for i := range targets {
		t := &targets[i]
		zmTotal := t.TargetValues().Total()
		asmTotal := t.ASMTargetValues().Total()
		achieveTotal := t.AchieveValues().Total()
		rows = append(rows, ASMTargetRow{
			ID:                  t.ID,
			Date:                t.Date.Format(dateLayout),
			ZMTotalTarget:       zmTotal,
			ASMTotalTarget:      asmTotal,
			ASMTotalAchieve:     achieveTotal,
			ZMVsAchievePercent:  metrics.Percent(achieveTotal, zmTotal),
			ASMVsAchievePercent: metrics.Percent(achieveTotal, asmTotal),
		})
	}
	return rows, nil
}

// detailAccess allows Admin, the owning ZM, or the target's ASM.
func (s *targetService) detailAccess(ctx context.Context, p policy.Principal, t *model.DailyTarget) error {
	if p.Is(model.RoleAdmin) {
		return nil
	}
	if p.Is(model.RoleAreaSalesManager) && t.ASMID == p.AccountID {
		return nil
	}
	if p.Is(model.RoleZoneManager) && t.ZonalManager.UserID == p.AccountID {
		return nil
	}
	return apperr.ErrDenied
}

func (s *targetService) getTarget(ctx context.Context, id uuid.UUID) (*model.DailyTarget, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func buildDetail(t *model.DailyTarget) *TargetDetailResponse {
	zmTargets := t.TargetValues().Slice()
	asmTargets := t.ASMTargetValues().Slice()
	achieves := t.AchieveValues().Slice()

	details := make([]MetricDetail, 0, len(metrics.Names))
	for i, name := range metrics.Names {
		details = append(details, MetricDetail{
			Name:       name,
			ZMTarget:   zmTargets[i],
			ASMTarget:  asmTargets[i],
			Achieve:    achieves[i],
			ZMPercent:  metrics.Percent(achieves[i], zmTargets[i]),
			ASMPercent: metrics.Percent(achieves[i], asmTargets[i]),
		})
	}

	return &TargetDetailResponse{
		ID:        t.ID,
		Date:      t.Date.Format(dateLayout),
		ASM:       asmRef(&t.ASM),
		Metrics:   details,
		States:    t.ASM.States,
		Districts: t.ASM.Districts,
		Offices:   t.ASM.Offices,
	}
}

func (s *targetService) Detail(ctx context.Context, p policy.Principal, id uuid.UUID) (*TargetDetailResponse, error) {
	t, err := s.getTarget(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.detailAccess(ctx, p, t); err != nil {
		return nil, err
	}
	return buildDetail(t), nil
}

func (s *targetService) record(ctx context.Context, p policy.Principal, action string, t *model.DailyTarget) {
	details, _ := json.Marshal(map[string]interface{}{
		"asm_id": t.ASMID.String(),
		"date":   t.Date.Format(dateLayout),
	})
	accountID := p.AccountID
	_ = s.audit.Record(ctx, &model.AuditLog{
		UserID:     &accountID,
		Action:     action,
		EntityID:   t.ID.String(),
		EntityName: "daily target " + t.Date.Format(dateLayout),
		Details:    string(details),
	})
}

func (s *targetService) Create(ctx context.Context, p policy.Principal, req CreateTargetRequest) (*TargetDetailResponse, error) {
	profile, err := s.ownProfile(ctx, p)
	if err != nil {
		return nil, err
	}

	asmID, err := uuid.Parse(req.ASMID)
	if err != nil {
		return nil, apperr.Validation("invalid asm id")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	// ZM can only set targets for its own ASMs.
	ok, err := s.hierarchy.IsASMOfZM(ctx, profile.ID, asmID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.ErrDenied
	}

	target := &model.DailyTarget{
		ZonalManagerID: profile.ID,
		ASMID:          asmID,
		Date:           date,
	}
	fieldErrs := map[string]string{}
	for _, slug := range metricSlugs {
		v, msg := parseMetricValue(req.Targets[slug])
		if msg != "" {
			fieldErrs[slug] = msg
			continue
		}
		setInitialTarget(target, slug, v)
	}
	if len(fieldErrs) > 0 {
		return nil, apperr.ValidationFields("target submission rejected", fieldErrs)
	}

	// Existence check and insert share one transaction; the unique index on
	// (asm_id, date) backstops the check against concurrent submissions.
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		exists, err := s.repo.ExistsForASMOnDate(txCtx, asmID, date)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Validation("target for this ASM on %s already exists", req.Date)
		}
		return s.repo.Create(txCtx, target)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Validation("target for this ASM on %s already exists", req.Date)
		}
		return nil, err
	}

	s.record(ctx, p, model.ActionCreateDailyTarget, target)

	created, err := s.getTarget(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	return buildDetail(created), nil
}

func (s *targetService) UpdateZMBatch(ctx context.Context, p policy.Principal, id uuid.UUID, req TargetEditRequest) (*TargetDetailResponse, error) {
	if err := policy.RequireRole(p, model.RoleZoneManager, model.RoleAdmin); err != nil {
		return nil, err
	}
	t, err := s.getTarget(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Is(model.RoleZoneManager) && t.ZonalManager.UserID != p.AccountID {
		return nil, apperr.ErrDenied
	}

	parsed, verr := parseBatch(req)
	if verr != nil {
		return nil, verr
	}
	for slug, pair := range parsed {
		applyZMEdit(t, slug, pair[0], pair[1])
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.record(ctx, p, model.ActionUpdateDailyTarget, t)
	return buildDetail(t), nil
}

func (s *targetService) UpdateASMBatch(ctx context.Context, p policy.Principal, id uuid.UUID, req TargetEditRequest) (*TargetDetailResponse, error) {
	if err := policy.RequireRole(p, model.RoleAreaSalesManager); err != nil {
		return nil, err
	}
	t, err := s.getTarget(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireOwner(p, t.ASMID); err != nil {
		return nil, err
	}

	parsed, verr := parseBatch(req)
	if verr != nil {
		return nil, verr
	}
	for slug, pair := range parsed {
		applyASMEdit(t, slug, pair[0], pair[1])
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.record(ctx, p, model.ActionUpdateDailyTarget, t)
	return buildDetail(t), nil
}
