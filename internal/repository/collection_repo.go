package repository

import (
	"context"
	"time"

	"salesops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CollectionFilter narrows SD collection list queries.
type CollectionFilter struct {
	ASMID  *uuid.UUID
	From   *time.Time
	To     *time.Time
	Status string
}

// CollectionRepository defines data access for SDCollection rows.
type CollectionRepository interface {
	Create(ctx context.Context, c *model.SDCollection) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.SDCollection, error)
	Update(ctx context.Context, c *model.SDCollection) error
	// SoftDelete flags the row; it stays in storage and in ZM reporting.
	SoftDelete(ctx context.Context, id uuid.UUID) error
	// HardDelete removes the row. ZM/Admin path only.
	HardDelete(ctx context.Context, id uuid.UUID) error
	ListByASM(ctx context.Context, asmAccountID uuid.UUID, filter CollectionFilter) ([]model.SDCollection, error)
	ListByZM(ctx context.Context, zmProfileID uuid.UUID, filter CollectionFilter) ([]model.SDCollection, error)
	ListByASMMonth(ctx context.Context, asmAccountID uuid.UUID, year int, month time.Month) ([]model.SDCollection, error)
}

type collectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) Create(ctx context.Context, c *model.SDCollection) error {
	return GetDB(ctx, r.db).Create(c).Error
}

func (r *collectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SDCollection, error) {
	var c model.SDCollection
	if err := GetDB(ctx, r.db).
		Preload("Partner").Preload("ASM").Preload("ZoneManager").Preload("ZoneManager.User").
		First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *collectionRepository) Update(ctx context.Context, c *model.SDCollection) error {
	return GetDB(ctx, r.db).Save(c).Error
}

func (r *collectionRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Model(&model.SDCollection{}).
		Where("id = ?", id).
		Update("is_deleted", true).Error
}

func (r *collectionRepository) HardDelete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.SDCollection{}).Error
}

func applyCollectionFilter(q *gorm.DB, filter CollectionFilter) *gorm.DB {
	if filter.ASMID != nil {
		q = q.Where("asm_id = ?", *filter.ASMID)
	}
	if filter.From != nil {
		q = q.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("date <= ?", *filter.To)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	return q
}

// ListByASM returns the ASM's own non-deleted collections, newest first.
func (r *collectionRepository) ListByASM(ctx context.Context, asmAccountID uuid.UUID, filter CollectionFilter) ([]model.SDCollection, error) {
	var rows []model.SDCollection
	q := GetDB(ctx, r.db).
		Where("asm_id = ? AND is_deleted = ?", asmAccountID, false)
	q = applyCollectionFilter(q, filter)
	if err := q.Preload("Partner").Order("date DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByZM returns every collection under the ZM profile, soft-deleted rows
// included; the reporting view decides what to hide.
func (r *collectionRepository) ListByZM(ctx context.Context, zmProfileID uuid.UUID, filter CollectionFilter) ([]model.SDCollection, error) {
	var rows []model.SDCollection
	q := GetDB(ctx, r.db).Where("zone_manager_id = ?", zmProfileID)
	q = applyCollectionFilter(q, filter)
	if err := q.Preload("Partner").Preload("ASM").Order("date DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *collectionRepository) ListByASMMonth(ctx context.Context, asmAccountID uuid.UUID, year int, month time.Month) ([]model.SDCollection, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	var rows []model.SDCollection
	if err := GetDB(ctx, r.db).
		Where("asm_id = ? AND is_deleted = ? AND date >= ? AND date <= ?", asmAccountID, false, start, end).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
