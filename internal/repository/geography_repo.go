package repository

import (
	"context"

	"salesops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GeographyRepository covers the State/District/Office reference data, the
// lookup queries behind form auto-suggest, and the pincode staging table.
type GeographyRepository interface {
	SearchStates(ctx context.Context, nameFragment string) ([]model.State, error)
	SearchDistricts(ctx context.Context, nameFragment string, stateIDs []uuid.UUID) ([]model.District, error)
	SearchOffices(ctx context.Context, nameFragment string, districtIDs []uuid.UUID) ([]model.Office, error)
	GetStates(ctx context.Context, ids []uuid.UUID) ([]model.State, error)
	GetDistricts(ctx context.Context, ids []uuid.UUID) ([]model.District, error)
	GetOffices(ctx context.Context, ids []uuid.UUID) ([]model.Office, error)

	GetOrCreateState(ctx context.Context, name string) (*model.State, bool, error)
	GetOrCreateDistrict(ctx context.Context, name string, stateID uuid.UUID) (*model.District, bool, error)
	// UpsertOffice keys on (name, district) and refreshes officetype/pincode.
	UpsertOffice(ctx context.Context, name string, districtID uuid.UUID, officeType, pincode string) (created bool, err error)

	ListPincodeData(ctx context.Context) ([]model.PincodeData, error)
	CreatePincodeData(ctx context.Context, rows []model.PincodeData) error
}

type geographyRepository struct {
	db *gorm.DB
}

func NewGeographyRepository(db *gorm.DB) GeographyRepository {
	return &geographyRepository{db: db}
}

func (r *geographyRepository) SearchStates(ctx context.Context, nameFragment string) ([]model.State, error) {
	var states []model.State
	q := GetDB(ctx, r.db)
	if nameFragment != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+nameFragment+"%")
	}
	if err := q.Order("name").Find(&states).Error; err != nil {
		return nil, err
	}
	return states, nil
}

func (r *geographyRepository) SearchDistricts(ctx context.Context, nameFragment string, stateIDs []uuid.UUID) ([]model.District, error) {
	var districts []model.District
	q := GetDB(ctx, r.db)
	if nameFragment != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+nameFragment+"%")
	}
	if len(stateIDs) > 0 {
		q = q.Where("state_id IN ?", stateIDs)
	}
	if err := q.Order("name").Find(&districts).Error; err != nil {
		return nil, err
	}
	return districts, nil
}

func (r *geographyRepository) SearchOffices(ctx context.Context, nameFragment string, districtIDs []uuid.UUID) ([]model.Office, error) {
	var offices []model.Office
	q := GetDB(ctx, r.db)
	if nameFragment != "" {
		q = q.Where("LOWER(name) LIKE LOWER(?)", "%"+nameFragment+"%")
	}
	if len(districtIDs) > 0 {
		q = q.Where("district_id IN ?", districtIDs)
	}
	if err := q.Order("name").Find(&offices).Error; err != nil {
		return nil, err
	}
	return offices, nil
}

func (r *geographyRepository) GetStates(ctx context.Context, ids []uuid.UUID) ([]model.State, error) {
	var states []model.State
	if len(ids) == 0 {
		return states, nil
	}
	err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&states).Error
	return states, err
}

func (r *geographyRepository) GetDistricts(ctx context.Context, ids []uuid.UUID) ([]model.District, error) {
	var districts []model.District
	if len(ids) == 0 {
		return districts, nil
	}
	err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&districts).Error
	return districts, err
}

func (r *geographyRepository) GetOffices(ctx context.Context, ids []uuid.UUID) ([]model.Office, error) {
	var offices []model.Office
	if len(ids) == 0 {
		return offices, nil
	}
	err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&offices).Error
	return offices, err
}

func (r *geographyRepository) GetOrCreateState(ctx context.Context, name string) (*model.State, bool, error) {
	db := GetDB(ctx, r.db)
	var state model.State
	err := db.Where("name = ?", name).First(&state).Error
	if err == nil {
		return &state, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}
	state = model.State{Name: name}
	if err := db.Create(&state).Error; err != nil {
		return nil, false, err
	}
	return &state, true, nil
}

func (r *geographyRepository) GetOrCreateDistrict(ctx context.Context, name string, stateID uuid.UUID) (*model.District, bool, error) {
	db := GetDB(ctx, r.db)
	var district model.District
	err := db.Where("name = ? AND state_id = ?", name, stateID).First(&district).Error
	if err == nil {
		return &district, false, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, false, err
	}
	district = model.District{Name: name, StateID: stateID}
	if err := db.Create(&district).Error; err != nil {
		return nil, false, err
	}
	return &district, true, nil
}

func (r *geographyRepository) UpsertOffice(ctx context.Context, name string, districtID uuid.UUID, officeType, pincode string) (bool, error) {
	db := GetDB(ctx, r.db)
	var office model.Office
	err := db.Where("name = ? AND district_id = ?", name, districtID).First(&office).Error
	if err == gorm.ErrRecordNotFound {
		office = model.Office{Name: name, DistrictID: districtID, OfficeType: officeType, Pincode: pincode}
		if err := db.Create(&office).Error; err != nil {
			return false, err
		}
		return true, nil
	}
	if err != nil {
		return false, err
	}
	office.OfficeType = officeType
	office.Pincode = pincode
	return false, db.Save(&office).Error
}

func (r *geographyRepository) ListPincodeData(ctx context.Context) ([]model.PincodeData, error) {
	var rows []model.PincodeData
	if err := GetDB(ctx, r.db).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *geographyRepository) CreatePincodeData(ctx context.Context, rows []model.PincodeData) error {
	if len(rows) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&rows).Error
}
