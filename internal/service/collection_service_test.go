package service

import (
	"context"
	"testing"

	"salesops/internal/model"
	"salesops/internal/repository"
	"salesops/pkg/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type collectionFixture struct {
	db      *gorm.DB
	service CollectionService
	zmUser  *model.Account
	asmUser *model.Account
	partner *model.Account
}

func newCollectionFixture(t *testing.T) *collectionFixture {
	db := newTestDB(t)
	zmUser := createAccount(t, db, model.RoleZoneManager, "zm1")
	asmUser := createAccount(t, db, model.RoleAreaSalesManager, "asm1")
	partner := createAccount(t, db, model.RolePartner, "partner1")
	createZMProfile(t, db, zmUser, asmUser)
	createASMProfile(t, db, asmUser, partner)

	svc := NewCollectionService(
		repository.NewCollectionRepository(db),
		repository.NewHierarchyRepository(db),
		repository.NewAuditRepository(db),
	)
	return &collectionFixture{db: db, service: svc, zmUser: zmUser, asmUser: asmUser, partner: partner}
}

func (f *collectionFixture) add(t *testing.T, amount, status string) *model.SDCollection {
	t.Helper()
	c, err := f.service.Add(context.Background(), principalFor(f.asmUser), CollectionRequest{
		PartnerID: f.partner.ID.String(),
		Date:      "2026-08-01",
		Amount:    amount,
		Status:    status,
	})
	require.NoError(t, err)
	return c
}

func TestAddCollectionRequiresOwnPartner(t *testing.T) {
	f := newCollectionFixture(t)
	strangerPartner := createAccount(t, f.db, model.RolePartner, "partner2")

	_, err := f.service.Add(context.Background(), principalFor(f.asmUser), CollectionRequest{
		PartnerID: strangerPartner.ID.String(),
		Date:      "2026-08-01",
		Amount:    "500",
	})
	assert.ErrorIs(t, err, apperr.ErrDenied)
}

func TestAddCollectionLinksUpstreamZM(t *testing.T) {
	f := newCollectionFixture(t)
	c := f.add(t, "1000.50", "")

	require.NotNil(t, c.ZoneManagerID)
	assert.Equal(t, model.CollectionStatusPending, c.Status)
	assert.True(t, c.Amount.Equal(decimal.RequireFromString("1000.50")))
}

func TestAddCollectionRejectsBadAmount(t *testing.T) {
	f := newCollectionFixture(t)

	for _, amount := range []string{"0", "-10", "abc"} {
		_, err := f.service.Add(context.Background(), principalFor(f.asmUser), CollectionRequest{
			PartnerID: f.partner.ID.String(),
			Date:      "2026-08-01",
			Amount:    amount,
		})
		_, ok := apperr.AsValidation(err)
		assert.True(t, ok, "amount %q should be rejected", amount)
	}
}

func TestAddCollectionWithoutUpstreamZM(t *testing.T) {
	db := newTestDB(t)
	asmUser := createAccount(t, db, model.RoleAreaSalesManager, "asm1")
	partner := createAccount(t, db, model.RolePartner, "partner1")
	createASMProfile(t, db, asmUser, partner)

	svc := NewCollectionService(
		repository.NewCollectionRepository(db),
		repository.NewHierarchyRepository(db),
		repository.NewAuditRepository(db),
	)
	c, err := svc.Add(context.Background(), principalFor(asmUser), CollectionRequest{
		PartnerID: partner.ID.String(),
		Date:      "2026-08-01",
		Amount:    "500",
	})
	require.NoError(t, err)
	assert.Nil(t, c.ZoneManagerID)
}

func TestZMAddsCollectionForAnyPartner(t *testing.T) {
	f := newCollectionFixture(t)

	// a partner outside the ZM's subtree, with its own ASM
	otherASM := createAccount(t, f.db, model.RoleAreaSalesManager, "asm-other")
	otherPartner := createAccount(t, f.db, model.RolePartner, "partner-other")
	createASMProfile(t, f.db, otherASM, otherPartner)

	c, err := f.service.AddForZM(context.Background(), principalFor(f.zmUser), ZMCollectionRequest{
		PartnerID: otherPartner.ID.String(),
		Date:      "2026-08-01",
		Amount:    "750",
	})
	require.NoError(t, err)

	// ASM resolved from the partner's profile, ZM link from the caller
	assert.Equal(t, otherASM.ID, c.ASMID)
	var zmProfile model.ZonalManager
	require.NoError(t, f.db.First(&zmProfile, "user_id = ?", f.zmUser.ID).Error)
	require.NotNil(t, c.ZoneManagerID)
	assert.Equal(t, zmProfile.ID, *c.ZoneManagerID)

	// a partner with no ASM and none supplied cannot be recorded
	orphan := createAccount(t, f.db, model.RolePartner, "partner-orphan")
	_, err = f.service.AddForZM(context.Background(), principalFor(f.zmUser), ZMCollectionRequest{
		PartnerID: orphan.ID.String(),
		Date:      "2026-08-01",
		Amount:    "100",
	})
	assert.ErrorIs(t, err, apperr.ErrNotAssigned)

	// an explicit ASM overrides resolution
	c, err = f.service.AddForZM(context.Background(), principalFor(f.zmUser), ZMCollectionRequest{
		PartnerID: orphan.ID.String(),
		ASMID:     f.asmUser.ID.String(),
		Date:      "2026-08-01",
		Amount:    "100",
	})
	require.NoError(t, err)
	assert.Equal(t, f.asmUser.ID, c.ASMID)

	// the ASM role cannot use the ZM path
	_, err = f.service.AddForZM(context.Background(), principalFor(f.asmUser), ZMCollectionRequest{
		PartnerID: f.partner.ID.String(),
		Date:      "2026-08-01",
		Amount:    "100",
	})
	assert.ErrorIs(t, err, apperr.ErrDenied)
}

func TestSoftDeleteHidesFromASMButNotZM(t *testing.T) {
	f := newCollectionFixture(t)
	c := f.add(t, "1000", model.CollectionStatusCompleted)

	require.NoError(t, f.service.SoftDelete(context.Background(), principalFor(f.asmUser), c.ID))

	asmList, err := f.service.ListForASM(context.Background(), principalFor(f.asmUser), CollectionListFilter{})
	require.NoError(t, err)
	assert.Empty(t, asmList.Collections)

	zmList, err := f.service.ListForZM(context.Background(), principalFor(f.zmUser), CollectionListFilter{})
	require.NoError(t, err)
	require.Len(t, zmList.Collections, 1)
	assert.True(t, zmList.Collections[0].IsDeleted)
	// removed rows stay visible but drop out of the totals
	assert.True(t, zmList.Summary.Total.IsZero())
}

func TestEditCollectionCrossASMDenied(t *testing.T) {
	f := newCollectionFixture(t)
	c := f.add(t, "1000", "")

	stranger := createAccount(t, f.db, model.RoleAreaSalesManager, "asm2")
	newAmount := "2000"
	_, err := f.service.Edit(context.Background(), principalFor(stranger), c.ID, CollectionUpdateRequest{Amount: &newAmount})
	assert.ErrorIs(t, err, apperr.ErrDenied)

	// unchanged
	var stored model.SDCollection
	require.NoError(t, f.db.First(&stored, "id = ?", c.ID).Error)
	assert.True(t, stored.Amount.Equal(decimal.NewFromInt(1000)))
}

func TestZMSummaryTotalsByStatus(t *testing.T) {
	f := newCollectionFixture(t)
	f.add(t, "1000", model.CollectionStatusCompleted)
	f.add(t, "250.25", model.CollectionStatusPending)
	f.add(t, "99", model.CollectionStatusCancelled)

	res, err := f.service.ListForZM(context.Background(), principalFor(f.zmUser), CollectionListFilter{})
	require.NoError(t, err)
	require.Len(t, res.Collections, 3)
	assert.True(t, res.Summary.Total.Equal(decimal.RequireFromString("1349.25")))
	assert.True(t, res.Summary.Completed.Equal(decimal.NewFromInt(1000)))
	assert.True(t, res.Summary.Pending.Equal(decimal.RequireFromString("250.25")))
}

func TestHardDeleteRemovesRow(t *testing.T) {
	f := newCollectionFixture(t)
	c := f.add(t, "1000", "")

	// the ASM path cannot hard-delete
	err := f.service.HardDelete(context.Background(), principalFor(f.asmUser), c.ID)
	assert.ErrorIs(t, err, apperr.ErrDenied)

	require.NoError(t, f.service.HardDelete(context.Background(), principalFor(f.zmUser), c.ID))

	var count int64
	require.NoError(t, f.db.Model(&model.SDCollection{}).Count(&count).Error)
	assert.Zero(t, count)
}
