package service

import (
	"context"
	"testing"

	"salesops/internal/model"
	"salesops/internal/repository"
	"salesops/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newGeographyService(db *gorm.DB) GeographyService {
	return NewGeographyService(
		repository.NewGeographyRepository(db),
		repository.NewAuditRepository(db),
		repository.NewTransactionManager(db),
		zap.NewNop(),
	)
}

func TestStagePincodeDataValidatesRows(t *testing.T) {
	db := newTestDB(t)
	admin := createAccount(t, db, model.RoleAdmin, "admin1")
	svc := newGeographyService(db)

	_, err := svc.StagePincodeData(context.Background(), principalFor(admin), nil)
	_, ok := apperr.AsValidation(err)
	assert.True(t, ok)

	_, err = svc.StagePincodeData(context.Background(), principalFor(admin), []model.PincodeData{
		{StateName: "Karnataka", District: "", OfficeName: "Hubli HO", Pincode: "580020"},
	})
	_, ok = apperr.AsValidation(err)
	assert.True(t, ok)

	n, err := svc.StagePincodeData(context.Background(), principalFor(admin), []model.PincodeData{
		{StateName: "Karnataka", District: "Dharwad", OfficeName: "Hubli HO", OfficeType: "HO", Pincode: "580020"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Admin only
	zm := createAccount(t, db, model.RoleZoneManager, "zm1")
	_, err = svc.StagePincodeData(context.Background(), principalFor(zm), []model.PincodeData{
		{StateName: "Karnataka", District: "Dharwad", OfficeName: "Hubli HO"},
	})
	assert.ErrorIs(t, err, apperr.ErrDenied)
}

func TestMapPincodeDataBuildsMasterHierarchy(t *testing.T) {
	db := newTestDB(t)
	admin := createAccount(t, db, model.RoleAdmin, "admin1")
	svc := newGeographyService(db)

	_, err := svc.StagePincodeData(context.Background(), principalFor(admin), []model.PincodeData{
		{StateName: "Karnataka", District: "Dharwad", OfficeName: "Hubli HO", OfficeType: "HO", Pincode: "580020"},
		{StateName: "Karnataka", District: "Dharwad", OfficeName: "Hubli HO", OfficeType: "HO", Pincode: "580021"},
		{StateName: "Karnataka", District: "Belagavi", OfficeName: "Belagavi SO", OfficeType: "SO", Pincode: "590001"},
	})
	require.NoError(t, err)

	result, err := svc.MapPincodeData(context.Background(), principalFor(admin))
	require.NoError(t, err)

	assert.Equal(t, 3, result.RowsProcessed)
	assert.Equal(t, 1, result.StatesCreated)
	assert.Equal(t, 2, result.DistrictsCreated)
	assert.Equal(t, 2, result.OfficesCreated)
	// the duplicate office row counts as an update, not a create
	assert.Equal(t, 1, result.OfficesUpdated)

	states, err := svc.States(context.Background(), LookupFilter{Query: "Karna"})
	require.NoError(t, err)
	require.Len(t, states, 1)

	// lookup ignores case
	states, err = svc.States(context.Background(), LookupFilter{Query: "karna"})
	require.NoError(t, err)
	require.Len(t, states, 1)

	districts, err := svc.Districts(context.Background(), LookupFilter{StateIDs: []string{states[0].ID.String()}})
	require.NoError(t, err)
	assert.Len(t, districts, 2)
}
