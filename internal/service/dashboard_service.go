package service

import (
	"context"
	"errors"
	"time"

	"salesops/internal/metrics"
	"salesops/internal/model"
	"salesops/internal/policy"
	"salesops/internal/repository"
	"salesops/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// lakh is the display unit for collection revenue on the ASM dashboard.
var lakh = decimal.NewFromInt(100000)

type MonthlyPoint struct {
	Month        string  `json:"month"`
	TotalTarget  float64 `json:"total_target"`
	TotalAchieve float64 `json:"total_achieve"`
	Percent      float64 `json:"percent"`
}

type ZMDashboardResponse struct {
	Date           string         `json:"date"`
	ASMCount       int            `json:"asm_count"`
	TodayTarget    float64        `json:"today_target"`
	TodayAchieve   float64        `json:"today_achieve"`
	TodayPercent   float64        `json:"today_percent"`
	TodayByMetric  []MetricDetail `json:"today_by_metric"`
	MonthlySeries  []MonthlyPoint `json:"monthly_series"`
	PendingTargets int            `json:"pending_targets"`
}

type ASMDashboardRow struct {
	Date         string  `json:"date"`
	TotalTarget  float64 `json:"total_target"`
	TotalAchieve float64 `json:"total_achieve"`
	Percent      float64 `json:"percent"`
}

type ASMDashboardResponse struct {
	Recent         []ASMDashboardRow `json:"recent"`
	OverallPercent float64           `json:"overall_percent"`
	MonthRevenue   decimal.Decimal   `json:"month_revenue"`
	// MonthRevenueLakhs is MonthRevenue divided by one lakh, for the headline
	// figure.
	MonthRevenueLakhs decimal.Decimal `json:"month_revenue_lakhs"`
	PartnerCount      int             `json:"partner_count"`
}

type AdminDashboardResponse struct {
	AccountsByRole map[string]int64 `json:"accounts_by_role"`
	TotalAccounts  int64            `json:"total_accounts"`
}

// DashboardService computes the role-specific landing summaries. Every figure
// is a reduction over ledger rows; nothing here writes.
type DashboardService interface {
	ZMDashboard(ctx context.Context, p policy.Principal) (*ZMDashboardResponse, error)
	ASMDashboard(ctx context.Context, p policy.Principal) (*ASMDashboardResponse, error)
	AdminDashboard(ctx context.Context, p policy.Principal) (*AdminDashboardResponse, error)
}

type dashboardService struct {
	targets     repository.TargetRepository
	collections repository.CollectionRepository
	accounts    repository.AccountRepository
	hierarchy   repository.HierarchyRepository
	now         func() time.Time
}

func NewDashboardService(targets repository.TargetRepository, collections repository.CollectionRepository, accounts repository.AccountRepository, hierarchy repository.HierarchyRepository) DashboardService {
	return &dashboardService{
		targets:     targets,
		collections: collections,
		accounts:    accounts,
		hierarchy:   hierarchy,
		now:         time.Now,
	}
}

func (s *dashboardService) ZMDashboard(ctx context.Context, p policy.Principal) (*ZMDashboardResponse, error) {
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

	asms, err := s.hierarchy.ASMsOf(ctx, profile.ID, true)
	if err != nil {
		return nil, err
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	todayRows, err := s.targets.ListByZMDateRange(ctx, profile.ID, today, today)
	if err != nil {
		return nil, err
	}

	var rollup metrics.Rollup
	var targetSum, achieveSum metrics.Values
	for i := range todayRows {
		rollup.Add(todayRows[i].TargetValues().Total(), todayRows[i].AchieveValues().Total())
		targetSum = targetSum.Add(todayRows[i].TargetValues())
		achieveSum = achieveSum.Add(todayRows[i].AchieveValues())
	}

	targetSlice := targetSum.Slice()
	achieveSlice := achieveSum.Slice()
	byMetric := make([]MetricDetail, 0, len(metrics.Names))
	for i, name := range metrics.Names {
		byMetric = append(byMetric, MetricDetail{
			Name:      name,
			ZMTarget:  targetSlice[i],
			Achieve:   achieveSlice[i],
			ZMPercent: metrics.Percent(achieveSlice[i], targetSlice[i]),
		})
	}

	series, err := s.monthlySeries(ctx, profile, today, 6)
	if err != nil {
		return nil, err
	}

	// Pending counts active ASMs without a row today. Rows from since-deactivated
	// ASMs must not offset the count.
	submitted := make(map[uuid.UUID]struct{}, len(todayRows))
	for i := range todayRows {
		submitted[todayRows[i].ASMID] = struct{}{}
	}
	pending := 0
	for i := range asms {
		if _, ok := submitted[asms[i].ID]; !ok {
			pending++
		}
	}

	return &ZMDashboardResponse{
		Date:           today.Format(dateLayout),
		ASMCount:       len(asms),
		TodayTarget:    rollup.Target,
		TodayAchieve:   rollup.Achieve,
		TodayPercent:   rollup.Percent(),
		TodayByMetric:  byMetric,
		MonthlySeries:  series,
		PendingTargets: pending,
	}, nil
}

// monthlySeries sums target/achieve totals per calendar month for the n months
// ending at the month of ref, oldest first.
func (s *dashboardService) monthlySeries(ctx context.Context, profile *model.ZonalManager, ref time.Time, n int) ([]MonthlyPoint, error) {
	series := make([]MonthlyPoint, 0, n)
	for i := n - 1; i >= 0; i-- {
		start := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		end := start.AddDate(0, 1, -1)
		rows, err := s.targets.ListByZMDateRange(ctx, profile.ID, start, end)
		if err != nil {
			return nil, err
		}
		var rollup metrics.Rollup
		for j := range rows {
			rollup.Add(rows[j].TargetValues().Total(), rows[j].AchieveValues().Total())
		}
		series = append(series, MonthlyPoint{
			Month:        start.Format("2006-01"),
			TotalTarget:  rollup.Target,
			TotalAchieve: rollup.Achieve,
			Percent:      rollup.Percent(),
		})
	}
	return series, nil
}

func (s *dashboardService) ASMDashboard(ctx context.Context, p policy.Principal) (*ASMDashboardResponse, error) {
	if err := policy.RequireRole(p, model.RoleAreaSalesManager); err != nil {
		return nil, err
	}

	recent, err := s.targets.ListRecentByASM(ctx, p.AccountID, 6)
	if err != nil {
		return nil, err
	}

	rows := make([]ASMDashboardRow, 0, len(recent))
	var rollup metrics.Rollup
	for i := range recent {
		totalTarget := recent[i].TargetValues().Total()
		totalAchieve := recent[i].AchieveValues().Total()
		rollup.Add(totalTarget, totalAchieve)
		rows = append(rows, ASMDashboardRow{
			Date:         recent[i].Date.Format(dateLayout),
			TotalTarget:  totalTarget,
			TotalAchieve: totalAchieve,
			Percent:      metrics.Percent(totalAchieve, totalTarget),
		})
	}

	now := s.now().UTC()
	monthRows, err := s.collections.ListByASMMonth(ctx, p.AccountID, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}
	revenue := decimal.Zero
	for i := range monthRows {
		revenue = revenue.Add(monthRows[i].Amount)
	}

	partnerCount := 0
	if profile, err := s.hierarchy.GetASMProfileByUser(ctx, p.AccountID); err == nil {
		if partners, err := s.hierarchy.PartnersOf(ctx, profile.ID, true); err == nil {
			partnerCount = len(partners)
		}
	}

	return &ASMDashboardResponse{
		Recent:            rows,
		OverallPercent:    rollup.Percent(),
		MonthRevenue:      revenue,
		MonthRevenueLakhs: revenue.DivRound(lakh, 2),
		PartnerCount:      partnerCount,
	}, nil
}

func (s *dashboardService) AdminDashboard(ctx context.Context, p policy.Principal) (*AdminDashboardResponse, error) {
	if err := policy.RequireRole(p, model.RoleAdmin); err != nil {
		return nil, err
	}

	byRole := make(map[string]int64, len(model.Roles))
	var total int64
	for _, role := range model.Roles {
		_, count, err := s.accounts.List(ctx, role, "", 1, 1)
		if err != nil {
			return nil, err
		}
		byRole[role] = count
		total += count
	}

	return &AdminDashboardResponse{AccountsByRole: byRole, TotalAccounts: total}, nil
}
