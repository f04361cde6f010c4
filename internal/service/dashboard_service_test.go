package service

import (
	"context"
	"testing"
	"time"

	"salesops/internal/model"
	"salesops/internal/repository"
	"salesops/pkg/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newDashboardService(db *gorm.DB, now time.Time) DashboardService {
	svc := NewDashboardService(
		repository.NewTargetRepository(db),
		repository.NewCollectionRepository(db),
		repository.NewAccountRepository(db),
		repository.NewHierarchyRepository(db),
	).(*dashboardService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestZMDashboardTodayAndPending(t *testing.T) {
	db := newTestDB(t)
	zmUser := createAccount(t, db, model.RoleZoneManager, "zm1")
	asm1 := createAccount(t, db, model.RoleAreaSalesManager, "asm1")
	asm2 := createAccount(t, db, model.RoleAreaSalesManager, "asm2")
	profile := createZMProfile(t, db, zmUser, asm1, asm2)

	today := day("2026-08-15")
	require.NoError(t, db.Create(&model.DailyTarget{
		ZonalManagerID:     profile.ID,
		ASMID:              asm1.ID,
		Date:               today,
		ApplicationTarget:  10,
		ApplicationAchieve: 8,
		CallsTarget:        10,
		CallsAchieve:       2,
	}).Error)

	svc := newDashboardService(db, today.Add(9*time.Hour))
	res, err := svc.ZMDashboard(context.Background(), principalFor(zmUser))
	require.NoError(t, err)

	assert.Equal(t, 2, res.ASMCount)
	assert.Equal(t, 20.0, res.TodayTarget)
	assert.Equal(t, 10.0, res.TodayAchieve)
	assert.Equal(t, 50.0, res.TodayPercent)
	// only asm1 has a row for today
	assert.Equal(t, 1, res.PendingTargets)

	require.Len(t, res.MonthlySeries, 6)
	last := res.MonthlySeries[len(res.MonthlySeries)-1]
	assert.Equal(t, "2026-08", last.Month)
	assert.Equal(t, 20.0, last.TotalTarget)
	assert.Equal(t, 0.0, res.MonthlySeries[0].TotalTarget)

	assert.Equal(t, "Applications", res.TodayByMetric[0].Name)
	assert.Equal(t, 80.0, res.TodayByMetric[0].ZMPercent)
}

func TestZMDashboardPendingIgnoresInactiveASMs(t *testing.T) {
	db := newTestDB(t)
	zmUser := createAccount(t, db, model.RoleZoneManager, "zm1")
	activeASM := createAccount(t, db, model.RoleAreaSalesManager, "asm1")
	retiredASM := createAccount(t, db, model.RoleAreaSalesManager, "asm2")
	profile := createZMProfile(t, db, zmUser, activeASM, retiredASM)
	require.NoError(t, db.Model(&model.Account{}).
		Where("id = ?", retiredASM.ID).
		Update("is_active", false).Error)

	// the only row today belongs to the deactivated ASM
	today := day("2026-08-15")
	require.NoError(t, db.Create(&model.DailyTarget{
		ZonalManagerID:    profile.ID,
		ASMID:             retiredASM.ID,
		Date:              today,
		ApplicationTarget: 10,
	}).Error)

	svc := newDashboardService(db, today)
	res, err := svc.ZMDashboard(context.Background(), principalFor(zmUser))
	require.NoError(t, err)

	assert.Equal(t, 1, res.ASMCount)
	// the active ASM is still pending; the retired ASM's row must not offset it
	assert.Equal(t, 1, res.PendingTargets)
}

func TestZMDashboardWithoutProfile(t *testing.T) {
	db := newTestDB(t)
	zmUser := createAccount(t, db, model.RoleZoneManager, "zm1")

	svc := newDashboardService(db, day("2026-08-15"))
	_, err := svc.ZMDashboard(context.Background(), principalFor(zmUser))
	assert.ErrorIs(t, err, apperr.ErrNotAssigned)
}

func TestASMDashboardRevenueInLakhs(t *testing.T) {
	db := newTestDB(t)
	zmUser := createAccount(t, db, model.RoleZoneManager, "zm1")
	asmUser := createAccount(t, db, model.RoleAreaSalesManager, "asm1")
	partner := createAccount(t, db, model.RolePartner, "partner1")
	profile := createZMProfile(t, db, zmUser, asmUser)
	createASMProfile(t, db, asmUser, partner)

	require.NoError(t, db.Create(&model.DailyTarget{
		ZonalManagerID:     profile.ID,
		ASMID:              asmUser.ID,
		Date:               day("2026-08-10"),
		ApplicationTarget:  10,
		ApplicationAchieve: 5,
	}).Error)

	// two collections this month, one last month, one soft-deleted
	for _, c := range []model.SDCollection{
		{PartnerID: partner.ID, ASMID: asmUser.ID, Date: day("2026-08-05"), Amount: decimal.NewFromInt(150000), Status: model.CollectionStatusCompleted},
		{PartnerID: partner.ID, ASMID: asmUser.ID, Date: day("2026-08-20"), Amount: decimal.NewFromInt(100000), Status: model.CollectionStatusPending},
		{PartnerID: partner.ID, ASMID: asmUser.ID, Date: day("2026-07-20"), Amount: decimal.NewFromInt(999999), Status: model.CollectionStatusCompleted},
		{PartnerID: partner.ID, ASMID: asmUser.ID, Date: day("2026-08-21"), Amount: decimal.NewFromInt(50000), Status: model.CollectionStatusPending, IsDeleted: true},
	} {
		row := c
		require.NoError(t, db.Create(&row).Error)
	}

	svc := newDashboardService(db, day("2026-08-25"))
	res, err := svc.ASMDashboard(context.Background(), principalFor(asmUser))
	require.NoError(t, err)

	require.Len(t, res.Recent, 1)
	assert.Equal(t, 50.0, res.Recent[0].Percent)
	assert.True(t, res.MonthRevenue.Equal(decimal.NewFromInt(250000)))
	assert.True(t, res.MonthRevenueLakhs.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, 1, res.PartnerCount)
}

func TestAdminDashboardCountsByRole(t *testing.T) {
	db := newTestDB(t)
	admin := createAccount(t, db, model.RoleAdmin, "admin1")
	zmUser := createAccount(t, db, model.RoleZoneManager, "zm1")
	createAccount(t, db, model.RoleAreaSalesManager, "asm1")
	createAccount(t, db, model.RoleAreaSalesManager, "asm2")
	createAccount(t, db, model.RolePartner, "partner1")

	svc := newDashboardService(db, day("2026-08-15"))
	res, err := svc.AdminDashboard(context.Background(), principalFor(admin))
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.AccountsByRole[model.RoleAdmin])
	assert.Equal(t, int64(2), res.AccountsByRole[model.RoleAreaSalesManager])
	assert.Equal(t, int64(5), res.TotalAccounts)

	// role-gated
	_, err = svc.AdminDashboard(context.Background(), principalFor(zmUser))
	assert.ErrorIs(t, err, apperr.ErrDenied)
}
