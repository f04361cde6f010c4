package service

import (
	"context"
	"encoding/json"
	"strings"

	"salesops/internal/model"
	"salesops/internal/policy"
	"salesops/internal/repository"
	"salesops/pkg/apperr"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LookupFilter struct {
	Query       string
	StateIDs    []string
	DistrictIDs []string
}

// MapPincodeResult reports what the map-to-master pass did with the staged
// pincode rows.
type MapPincodeResult struct {
	RowsProcessed    int `json:"rows_processed"`
	RowsSkipped      int `json:"rows_skipped"`
	StatesCreated    int `json:"states_created"`
	DistrictsCreated int `json:"districts_created"`
	OfficesCreated   int `json:"offices_created"`
	OfficesUpdated   int `json:"offices_updated"`
}

// GeographyService serves the reference-geography lookups behind the account
// and profile forms, and the admin map-to-master operation that folds staged
// pincode rows into States, Districts and Offices.
type GeographyService interface {
	States(ctx context.Context, filter LookupFilter) ([]model.State, error)
	Districts(ctx context.Context, filter LookupFilter) ([]model.District, error)
	Offices(ctx context.Context, filter LookupFilter) ([]model.Office, error)

	StagePincodeData(ctx context.Context, p policy.Principal, rows []model.PincodeData) (int, error)
	MapPincodeData(ctx context.Context, p policy.Principal) (*MapPincodeResult, error)
}

type geographyService struct {
	repo   repository.GeographyRepository
	audit  repository.AuditRepository
	tx     repository.TransactionManager
	logger *zap.Logger
}

func NewGeographyService(repo repository.GeographyRepository, audit repository.AuditRepository, tx repository.TransactionManager, logger *zap.Logger) GeographyService {
	return &geographyService{repo: repo, audit: audit, tx: tx, logger: logger}
}

func parseUUIDList(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		if r == "" {
			continue
		}
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, apperr.Validation("invalid id %q", r)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *geographyService) States(ctx context.Context, filter LookupFilter) ([]model.State, error) {
	return s.repo.SearchStates(ctx, filter.Query)
}

func (s *geographyService) Districts(ctx context.Context, filter LookupFilter) ([]model.District, error) {
	stateIDs, err := parseUUIDList(filter.StateIDs)
	if err != nil {
		return nil, err
	}
	return s.repo.SearchDistricts(ctx, filter.Query, stateIDs)
}

func (s *geographyService) Offices(ctx context.Context, filter LookupFilter) ([]model.Office, error) {
	districtIDs, err := parseUUIDList(filter.DistrictIDs)
	if err != nil {
		return nil, err
	}
	return s.repo.SearchOffices(ctx, filter.Query, districtIDs)
}

// StagePincodeData loads raw rows into the staging table. Rows missing a
// state, district or office name are rejected up front.
func (s *geographyService) StagePincodeData(ctx context.Context, p policy.Principal, rows []model.PincodeData) (int, error) {
	if err := policy.RequireRole(p, model.RoleAdmin); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, apperr.Validation("no rows to stage")
	}
	for i := range rows {
		if strings.TrimSpace(rows[i].StateName) == "" ||
			strings.TrimSpace(rows[i].District) == "" ||
			strings.TrimSpace(rows[i].OfficeName) == "" {
			return 0, apperr.Validation("row %d is missing state, district or office name", i+1)
		}
	}
	if err := s.repo.CreatePincodeData(ctx, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// MapPincodeData folds every staged row into the master tables. The whole
// pass runs in one transaction so a failed row never leaves a half-mapped
// hierarchy behind.
func (s *geographyService) MapPincodeData(ctx context.Context, p policy.Principal) (*MapPincodeResult, error) {
	if err := policy.RequireRole(p, model.RoleAdmin); err != nil {
		return nil, err
	}

	result := &MapPincodeResult{}
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		rows, err := s.repo.ListPincodeData(txCtx)
		if err != nil {
			return err
		}
		for i := range rows {
			row := &rows[i]
			stateName := strings.TrimSpace(row.StateName)
			districtName := strings.TrimSpace(row.District)
			officeName := strings.TrimSpace(row.OfficeName)
			if stateName == "" || districtName == "" || officeName == "" {
				result.RowsSkipped++
				continue
			}

			state, created, err := s.repo.GetOrCreateState(txCtx, stateName)
			if err != nil {
				return err
			}
			if created {
				result.StatesCreated++
			}

			district, created, err := s.repo.GetOrCreateDistrict(txCtx, districtName, state.ID)
			if err != nil {
				return err
			}
			if created {
				result.DistrictsCreated++
			}

			created, err = s.repo.UpsertOffice(txCtx, officeName, district.ID, row.OfficeType, row.Pincode)
			if err != nil {
				return err
			}
			if created {
				result.OfficesCreated++
			} else {
				result.OfficesUpdated++
			}
			result.RowsProcessed++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("pincode data mapped to master geography",
		zap.Int("rows_processed", result.RowsProcessed),
		zap.Int("rows_skipped", result.RowsSkipped),
		zap.Int("states_created", result.StatesCreated),
		zap.Int("districts_created", result.DistrictsCreated),
		zap.Int("offices_created", result.OfficesCreated))

	details, _ := json.Marshal(result)
	accountID := p.AccountID
	_ = s.audit.Record(ctx, &model.AuditLog{
		UserID:     &accountID,
		Action:     model.ActionMapPincodeData,
		EntityName: "pincode master mapping",
		Details:    string(details),
	})
	return result, nil
}
