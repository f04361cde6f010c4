package repository

import (
	"context"
	"time"

	"salesops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskFilter narrows task list queries.
type TaskFilter struct {
	CategoryID *uuid.UUID
	AssigneeID *uuid.UUID
	Status     string
	From       *time.Time
	To         *time.Time
}

// TaskRepository defines data access for tasks and their note threads.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListAssignedBy(ctx context.Context, assignorID uuid.UUID, filter TaskFilter) ([]model.Task, error)
	ListAssignedTo(ctx context.Context, assigneeID uuid.UUID, filter TaskFilter) ([]model.Task, error)

	CreateNote(ctx context.Context, note *model.TaskNote) error
	ListNotes(ctx context.Context, taskID uuid.UUID) ([]model.TaskNote, error)

	ListCategories(ctx context.Context) ([]model.TaskCategory, error)
	CreateCategory(ctx context.Context, category *model.TaskCategory) error
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return GetDB(ctx, r.db).Create(task).Error
}

func (r *taskRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := GetDB(ctx, r.db).
		Preload("Category").Preload("AssignedBy").Preload("AssignedTo").
		First(&task, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *model.Task) error {
	return GetDB(ctx, r.db).Save(task).Error
}

func (r *taskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Task{}).Error
}

func applyTaskFilter(q *gorm.DB, filter TaskFilter) *gorm.DB {
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.AssigneeID != nil {
		q = q.Where("assigned_to_id = ?", *filter.AssigneeID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		q = q.Where("start_date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("end_date <= ?", *filter.To)
	}
	return q
}

func (r *taskRepository) ListAssignedBy(ctx context.Context, assignorID uuid.UUID, filter TaskFilter) ([]model.Task, error) {
	var tasks []model.Task
	q := GetDB(ctx, r.db).Where("assigned_by_id = ? AND is_deleted = ?", assignorID, false)
	q = applyTaskFilter(q, filter)
	if err := q.Preload("Category").Preload("AssignedTo").
		Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) ListAssignedTo(ctx context.Context, assigneeID uuid.UUID, filter TaskFilter) ([]model.Task, error) {
	var tasks []model.Task
	q := GetDB(ctx, r.db).Where("assigned_to_id = ? AND is_deleted = ?", assigneeID, false)
	q = applyTaskFilter(q, filter)
	if err := q.Preload("Category").Preload("AssignedBy").
		Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) CreateNote(ctx context.Context, note *model.TaskNote) error {
	return GetDB(ctx, r.db).Create(note).Error
}

func (r *taskRepository) ListNotes(ctx context.Context, taskID uuid.UUID) ([]model.TaskNote, error) {
	var notes []model.TaskNote
	if err := GetDB(ctx, r.db).
		Preload("User").
		Where("task_id = ?", taskID).
		Order("created_at DESC").
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *taskRepository) ListCategories(ctx context.Context) ([]model.TaskCategory, error) {
	var categories []model.TaskCategory
	if err := GetDB(ctx, r.db).Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *taskRepository) CreateCategory(ctx context.Context, category *model.TaskCategory) error {
	return GetDB(ctx, r.db).Create(category).Error
}
