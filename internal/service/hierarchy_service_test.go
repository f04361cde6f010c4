package service

import (
	"context"
	"testing"

	"salesops/internal/model"
	"salesops/internal/repository"
	"salesops/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newHierarchyService(db *gorm.DB) HierarchyService {
	return NewHierarchyService(
		repository.NewHierarchyRepository(db),
		repository.NewAccountRepository(db),
		zap.NewNop(),
	)
}

func TestResolveZMForPartnerWalksChain(t *testing.T) {
	db := newTestDB(t)
	zmUser := createAccount(t, db, model.RoleZoneManager, "zm1")
	asmUser := createAccount(t, db, model.RoleAreaSalesManager, "asm1")
	partner := createAccount(t, db, model.RolePartner, "partner1")
	zmProfile := createZMProfile(t, db, zmUser, asmUser)
	createASMProfile(t, db, asmUser, partner)

	svc := newHierarchyService(db)
	zm, err := svc.ResolveZMForPartner(context.Background(), partner.ID)
	require.NoError(t, err)
	assert.Equal(t, zmProfile.ID, zm.ID)
}

func TestResolveUnassignedIsExplicit(t *testing.T) {
	db := newTestDB(t)
	asmUser := createAccount(t, db, model.RoleAreaSalesManager, "asm1")
	partner := createAccount(t, db, model.RolePartner, "partner1")
	createASMProfile(t, db, asmUser, partner)

	svc := newHierarchyService(db)

	// partner with an ASM but no ZM above it
	_, err := svc.ResolveZMForPartner(context.Background(), partner.ID)
	assert.ErrorIs(t, err, apperr.ErrNotAssigned)

	// partner with no ASM at all
	orphan := createAccount(t, db, model.RolePartner, "partner2")
	_, err = svc.ResolveASMForPartner(context.Background(), orphan.ID)
	assert.ErrorIs(t, err, apperr.ErrNotAssigned)
}

func TestResolveAmbiguityPicksDeterministically(t *testing.T) {
	db := newTestDB(t)
	asmUser := createAccount(t, db, model.RoleAreaSalesManager, "asm1")
	zmA := createAccount(t, db, model.RoleZoneManager, "zm-a")
	zmB := createAccount(t, db, model.RoleZoneManager, "zm-b")
	createZMProfile(t, db, zmA, asmUser)
	createZMProfile(t, db, zmB, asmUser)

	svc := newHierarchyService(db)
	first, err := svc.ResolveZMForASM(context.Background(), asmUser.ID)
	require.NoError(t, err)
	second, err := svc.ResolveZMForASM(context.Background(), asmUser.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestPartnerDetailsDegradesOnMissingLinks(t *testing.T) {
	db := newTestDB(t)
	asmUser := createAccount(t, db, model.RoleAreaSalesManager, "asm1")
	partner := createAccount(t, db, model.RolePartner, "partner1")
	createASMProfile(t, db, asmUser, partner)

	svc := newHierarchyService(db)

	// ASM present, ZM absent: the ASM half still comes back
	details, err := svc.PartnerDetails(context.Background(), partner.ID)
	require.NoError(t, err)
	assert.Equal(t, asmUser.ID.String(), details.ASMID)
	assert.Empty(t, details.ZMID)

	// fully unassigned partner yields an empty chain, not an error
	orphan := createAccount(t, db, model.RolePartner, "partner2")
	details, err = svc.PartnerDetails(context.Background(), orphan.ID)
	require.NoError(t, err)
	assert.Empty(t, details.ASMID)

	// an unknown account is still a 404
	_, err = svc.PartnerDetails(context.Background(), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestProfileCreationEnforcesMemberRoles(t *testing.T) {
	db := newTestDB(t)
	admin := createAccount(t, db, model.RoleAdmin, "admin1")
	asmUser := createAccount(t, db, model.RoleAreaSalesManager, "asm1")
	notAPartner := createAccount(t, db, model.RoleZoneManager, "zm1")

	svc := newHierarchyService(db)
	_, err := svc.CreateASMProfile(context.Background(), principalFor(admin), ProfileRequest{
		UserID:    asmUser.ID.String(),
		MemberIDs: []string{notAPartner.ID.String()},
	})
	_, ok := apperr.AsValidation(err)
	assert.True(t, ok, "expected validation error, got %v", err)

	// only Admin manages profiles
	_, err = svc.CreateASMProfile(context.Background(), principalFor(asmUser), ProfileRequest{
		UserID: asmUser.ID.String(),
	})
	assert.ErrorIs(t, err, apperr.ErrDenied)
}

func TestUpdateASMProfileReplacesPartnerSet(t *testing.T) {
	db := newTestDB(t)
	admin := createAccount(t, db, model.RoleAdmin, "admin1")
	asmUser := createAccount(t, db, model.RoleAreaSalesManager, "asm1")
	p1 := createAccount(t, db, model.RolePartner, "partner1")
	p2 := createAccount(t, db, model.RolePartner, "partner2")
	profile := createASMProfile(t, db, asmUser, p1)

	svc := newHierarchyService(db)
	updated, err := svc.UpdateASMProfile(context.Background(), principalFor(admin), profile.ID, ProfileRequest{
		UserID:    asmUser.ID.String(),
		MemberIDs: []string{p2.ID.String()},
	})
	require.NoError(t, err)
	require.Len(t, updated.Partners, 1)
	assert.Equal(t, p2.ID, updated.Partners[0].ID)
}
