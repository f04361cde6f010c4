package service

import (
	"context"
	"testing"
	"time"

	"salesops/internal/model"
	"salesops/internal/repository"
	"salesops/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type targetFixture struct {
	db      *gorm.DB
	service TargetService
	zmUser  *model.Account
	asmUser *model.Account
	profile *model.ZonalManager
}

func newTargetFixture(t *testing.T) *targetFixture {
	db := newTestDB(t)
	zmUser := createAccount(t, db, model.RoleZoneManager, "zm1")
	asmUser := createAccount(t, db, model.RoleAreaSalesManager, "asm1")
	profile := createZMProfile(t, db, zmUser, asmUser)

	svc := NewTargetService(
		repository.NewTargetRepository(db),
		repository.NewHierarchyRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
	)
	return &targetFixture{db: db, service: svc, zmUser: zmUser, asmUser: asmUser, profile: profile}
}

func (f *targetFixture) create(t *testing.T, date string, targets map[string]string) *TargetDetailResponse {
	t.Helper()
	detail, err := f.service.Create(context.Background(), principalFor(f.zmUser), CreateTargetRequest{
		ASMID:   f.asmUser.ID.String(),
		Date:    date,
		Targets: targets,
	})
	require.NoError(t, err)
	return detail
}

func TestCreateTargetRejectsDuplicateDate(t *testing.T) {
	f := newTargetFixture(t)
	f.create(t, "2026-08-01", map[string]string{"applications": "10"})

	_, err := f.service.Create(context.Background(), principalFor(f.zmUser), CreateTargetRequest{
		ASMID:   f.asmUser.ID.String(),
		Date:    "2026-08-01",
		Targets: map[string]string{"applications": "5"},
	})
	verr, ok := apperr.AsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Contains(t, verr.Message, "already exists")

	// a different date is fine
	f.create(t, "2026-08-02", map[string]string{"applications": "5"})
}

// raceBlindTargetRepo never sees the existing row, so the insert itself runs
// into the unique index the way a concurrent submission would.
type raceBlindTargetRepo struct {
	repository.TargetRepository
}

func (r raceBlindTargetRepo) ExistsForASMOnDate(ctx context.Context, asmID uuid.UUID, date time.Time) (bool, error) {
	return false, nil
}

func TestCreateTargetConcurrentDuplicateIsValidationError(t *testing.T) {
	f := newTargetFixture(t)
	f.create(t, "2026-08-01", map[string]string{"applications": "10"})

	svc := NewTargetService(
		raceBlindTargetRepo{repository.NewTargetRepository(f.db)},
		repository.NewHierarchyRepository(f.db),
		repository.NewAuditRepository(f.db),
		repository.NewTransactionManager(f.db),
	)
	_, err := svc.Create(context.Background(), principalFor(f.zmUser), CreateTargetRequest{
		ASMID:   f.asmUser.ID.String(),
		Date:    "2026-08-01",
		Targets: map[string]string{"applications": "5"},
	})
	verr, ok := apperr.AsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Contains(t, verr.Message, "already exists")

	var count int64
	require.NoError(t, f.db.Model(&model.DailyTarget{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateTargetRequiresOwnASM(t *testing.T) {
	f := newTargetFixture(t)
	outsider := createAccount(t, f.db, model.RoleAreaSalesManager, "asm-outside")

	_, err := f.service.Create(context.Background(), principalFor(f.zmUser), CreateTargetRequest{
		ASMID:   outsider.ID.String(),
		Date:    "2026-08-01",
		Targets: map[string]string{"applications": "10"},
	})
	assert.ErrorIs(t, err, apperr.ErrDenied)
}

func TestCreateTargetRejectsNegativeValues(t *testing.T) {
	f := newTargetFixture(t)

	_, err := f.service.Create(context.Background(), principalFor(f.zmUser), CreateTargetRequest{
		ASMID:   f.asmUser.ID.String(),
		Date:    "2026-08-01",
		Targets: map[string]string{"applications": "10", "pop": "-3"},
	})
	verr, ok := apperr.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "values cannot be negative", verr.Fields["pop"])

	// nothing was persisted
	var count int64
	require.NoError(t, f.db.Model(&model.DailyTarget{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestUpdateZMBatchComputesPercent(t *testing.T) {
	f := newTargetFixture(t)
	created := f.create(t, "2026-08-01", map[string]string{"applications": "10"})

	detail, err := f.service.UpdateZMBatch(context.Background(), principalFor(f.zmUser), created.ID, TargetEditRequest{
		"applications": {Target: "10", Achieve: "8"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Applications", detail.Metrics[0].Name)
	assert.Equal(t, 10.0, detail.Metrics[0].ZMTarget)
	assert.Equal(t, 8.0, detail.Metrics[0].Achieve)
	assert.Equal(t, 80.0, detail.Metrics[0].ZMPercent)
	// ASM percent against a zero asm target stays 0
	assert.Equal(t, 0.0, detail.Metrics[0].ASMPercent)
}

func TestUpdateZMBatchRejectsWholeBatchOnOneBadValue(t *testing.T) {
	f := newTargetFixture(t)
	created := f.create(t, "2026-08-01", map[string]string{"applications": "10", "pop": "20"})

	_, err := f.service.UpdateZMBatch(context.Background(), principalFor(f.zmUser), created.ID, TargetEditRequest{
		"applications": {Target: "15", Achieve: "5"},
		"pop":          {Target: "-1", Achieve: "2"},
	})
	verr, ok := apperr.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "values cannot be negative", verr.Fields["pop"])

	// the valid metric must not have been applied either
	var stored model.DailyTarget
	require.NoError(t, f.db.First(&stored, "id = ?", created.ID).Error)
	assert.Equal(t, 10.0, stored.ApplicationTarget)
	assert.Equal(t, 0.0, stored.ApplicationAchieve)
	assert.Equal(t, 20.0, stored.POPTarget)
}

func TestUpdateASMBatchOwnershipAndFields(t *testing.T) {
	f := newTargetFixture(t)
	created := f.create(t, "2026-08-01", map[string]string{"applications": "10"})

	// a different ASM cannot edit the row
	stranger := createAccount(t, f.db, model.RoleAreaSalesManager, "asm2")
	_, err := f.service.UpdateASMBatch(context.Background(), principalFor(stranger), created.ID, TargetEditRequest{
		"applications": {Target: "12", Achieve: "6"},
	})
	assert.ErrorIs(t, err, apperr.ErrDenied)

	// the owning ASM edits its own target group plus the achievements;
	// the ZM-set target is untouched
	detail, err := f.service.UpdateASMBatch(context.Background(), principalFor(f.asmUser), created.ID, TargetEditRequest{
		"applications": {Target: "12", Achieve: "6"},
	})
	require.NoError(t, err)
	assert.Equal(t, 10.0, detail.Metrics[0].ZMTarget)
	assert.Equal(t, 12.0, detail.Metrics[0].ASMTarget)
	assert.Equal(t, 6.0, detail.Metrics[0].Achieve)
	assert.Equal(t, 60.0, detail.Metrics[0].ZMPercent)
	assert.Equal(t, 50.0, detail.Metrics[0].ASMPercent)
}

func TestListForZMTotals(t *testing.T) {
	f := newTargetFixture(t)
	created := f.create(t, "2026-08-01", map[string]string{"applications": "10", "calls": "10"})
	_, err := f.service.UpdateZMBatch(context.Background(), principalFor(f.zmUser), created.ID, TargetEditRequest{
		"applications": {Target: "10", Achieve: "8"},
		"calls":        {Target: "10", Achieve: "8"},
	})
	require.NoError(t, err)
	f.create(t, "2026-08-02", map[string]string{"applications": "20"})

	res, err := f.service.ListForZM(context.Background(), principalFor(f.zmUser), TargetListFilter{})
	require.NoError(t, err)
	require.Len(t, res.Targets, 2)
	assert.Equal(t, 40.0, res.TotalTarget)
	assert.Equal(t, 16.0, res.TotalAchieve)
	assert.Equal(t, 40.0, res.OverallPercent)
}

func TestDetailAccess(t *testing.T) {
	f := newTargetFixture(t)
	created := f.create(t, "2026-08-01", map[string]string{"applications": "10"})

	// owning ZM, the ASM and Admin can read
	_, err := f.service.Detail(context.Background(), principalFor(f.zmUser), created.ID)
	assert.NoError(t, err)
	_, err = f.service.Detail(context.Background(), principalFor(f.asmUser), created.ID)
	assert.NoError(t, err)
	admin := createAccount(t, f.db, model.RoleAdmin, "admin1")
	_, err = f.service.Detail(context.Background(), principalFor(admin), created.ID)
	assert.NoError(t, err)

	// an unrelated ZM cannot
	otherZM := createAccount(t, f.db, model.RoleZoneManager, "zm2")
	createZMProfile(t, f.db, otherZM)
	_, err = f.service.Detail(context.Background(), principalFor(otherZM), created.ID)
	assert.ErrorIs(t, err, apperr.ErrDenied)
}

func TestListForASMBothPercentViews(t *testing.T) {
	f := newTargetFixture(t)
	created := f.create(t, "2026-08-01", map[string]string{"applications": "20"})
	_, err := f.service.UpdateASMBatch(context.Background(), principalFor(f.asmUser), created.ID, TargetEditRequest{
		"applications": {Target: "10", Achieve: "8"},
	})
	require.NoError(t, err)

	rows, err := f.service.ListForASM(context.Background(), principalFor(f.asmUser))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 20.0, rows[0].ZMTotalTarget)
	assert.Equal(t, 10.0, rows[0].ASMTotalTarget)
	assert.Equal(t, 8.0, rows[0].ASMTotalAchieve)
	assert.Equal(t, 40.0, rows[0].ZMVsAchievePercent)
	assert.Equal(t, 80.0, rows[0].ASMVsAchievePercent)
}
