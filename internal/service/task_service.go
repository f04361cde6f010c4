package service

import (
	"context"
	"encoding/json"
	"errors"

	"salesops/internal/model"
	"salesops/internal/policy"
	"salesops/internal/repository"
	"salesops/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskEvent is pushed to connected manager clients when a task changes hands
// or state.
type TaskEvent struct {
	Type         string `json:"type"`
	TaskID       string `json:"task_id"`
	Title        string `json:"title"`
	Status       string `json:"status"`
	AssignedToID string `json:"assigned_to_id"`
	AssignedBy   string `json:"assigned_by"`
}

// TaskNotifier fans a task event out to live subscribers. Delivery is
// best-effort; task persistence never depends on it.
type TaskNotifier interface {
	Publish(event TaskEvent)
}

type AssignTaskRequest struct {
	CategoryID   string `json:"category_id"`
	Title        string `json:"title" binding:"required"`
	Details      string `json:"details"`
	AssignedToID string `json:"assigned_to_id" binding:"required,uuid"`
	StartDate    string `json:"start_date" binding:"required"`
	EndDate      string `json:"end_date" binding:"required"`
}

type UpdateTaskRequest struct {
	CategoryID *string `json:"category_id"`
	Title      *string `json:"title"`
	Details    *string `json:"details"`
	StartDate  *string `json:"start_date"`
	EndDate    *string `json:"end_date"`
}

type TaskStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type TaskNoteRequest struct {
	Note string `json:"note" binding:"required"`
}

type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type TaskListFilter struct {
	CategoryID string
	AssigneeID string
	Status     string
	From       string
	To         string
}

// TaskCounts breaks a task list down by status.
type TaskCounts struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
}

type TaskListResponse struct {
	Tasks  []model.Task `json:"tasks"`
	Counts TaskCounts   `json:"counts"`
}

type TaskDetailResponse struct {
	Task  model.Task       `json:"task"`
	Notes []model.TaskNote `json:"notes"`
}

// TaskService owns the task board. Edit and delete belong to the assignor;
// status changes and notes belong to both ends of the assignment.
type TaskService interface {
	Assign(ctx context.Context, p policy.Principal, req AssignTaskRequest) (*model.Task, error)
	ListAssignedBy(ctx context.Context, p policy.Principal, filter TaskListFilter) (*TaskListResponse, error)
	ListAssignedTo(ctx context.Context, p policy.Principal, filter TaskListFilter) (*TaskListResponse, error)
	Detail(ctx context.Context, p policy.Principal, id uuid.UUID) (*TaskDetailResponse, error)
	Update(ctx context.Context, p policy.Principal, id uuid.UUID, req UpdateTaskRequest) (*model.Task, error)
	Delete(ctx context.Context, p policy.Principal, id uuid.UUID) error
	Purge(ctx context.Context, p policy.Principal, id uuid.UUID) error
	UpdateStatus(ctx context.Context, p policy.Principal, id uuid.UUID, req TaskStatusRequest) (*model.Task, error)
	AddNote(ctx context.Context, p policy.Principal, id uuid.UUID, req TaskNoteRequest) (*model.TaskNote, error)

	ListCategories(ctx context.Context) ([]model.TaskCategory, error)
	CreateCategory(ctx context.Context, p policy.Principal, req CategoryRequest) (*model.TaskCategory, error)
}

type taskService struct {
	repo      repository.TaskRepository
	accounts  repository.AccountRepository
	hierarchy repository.HierarchyRepository
	audit     repository.AuditRepository
	notifier  TaskNotifier
}

func NewTaskService(repo repository.TaskRepository, accounts repository.AccountRepository, hierarchy repository.HierarchyRepository, audit repository.AuditRepository, notifier TaskNotifier) TaskService {
	return &taskService{repo: repo, accounts: accounts, hierarchy: hierarchy, audit: audit, notifier: notifier}
}

func (s *taskService) record(ctx context.Context, p policy.Principal, action string, t *model.Task) {
	details, _ := json.Marshal(map[string]interface{}{
		"title":          t.Title,
		"assigned_to_id": t.AssignedToID.String(),
		"status":         t.Status,
	})
	accountID := p.AccountID
	_ = s.audit.Record(ctx, &model.AuditLog{
		UserID:     &accountID,
		Action:     action,
		EntityID:   t.ID.String(),
		EntityName: t.Title,
		Details:    string(details),
	})
}

func (s *taskService) notify(eventType string, t *model.Task, by string) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(TaskEvent{
		Type:         eventType,
		TaskID:       t.ID.String(),
		Title:        t.Title,
		Status:       t.Status,
		AssignedToID: t.AssignedToID.String(),
		AssignedBy:   by,
	})
}

func (s *taskService) Assign(ctx context.Context, p policy.Principal, req AssignTaskRequest) (*model.Task, error) {
	if err := policy.RequireRole(p, model.RoleZoneManager, model.RoleAdmin); err != nil {
		return nil, err
	}

	assigneeID, err := uuid.Parse(req.AssignedToID)
	if err != nil {
		return nil, apperr.Validation("invalid assignee id")
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	if endDate.Before(startDate) {
		return nil, apperr.Validation("end date must not be before start date")
	}

	assignee, err := s.accounts.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Validation("assignee not found")
		}
		return nil, err
	}

	// A ZM only assigns to ASMs inside its own profile; Admin is unrestricted.
	if p.Is(model.RoleZoneManager) {
		profile, err := s.hierarchy.GetZMProfileByUser(ctx, p.AccountID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperr.ErrNotAssigned
			}
			return nil, err
		}
		ok, err := s.hierarchy.IsASMOfZM(ctx, profile.ID, assignee.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.ErrDenied
		}
	}

	task := &model.Task{
		Title:        req.Title,
		Details:      req.Details,
		AssignedByID: p.AccountID,
		AssignedToID: assignee.ID,
		StartDate:    startDate,
		EndDate:      endDate,
		Status:       model.TaskStatusPending,
	}
	if task.Details == "" {
		task.Details = "No details provided"
	}
	if req.CategoryID != "" {
		categoryID, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return nil, apperr.Validation("invalid category id")
		}
		task.CategoryID = &categoryID
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	s.record(ctx, p, model.ActionAssignTask, task)

	created, err := s.getTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	s.notify("task_assigned", created, created.AssignedBy.DisplayName())
	return created, nil
}

func (s *taskService) getTask(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if task.IsDeleted {
		return nil, apperr.ErrNotFound
	}
	return task, nil
}

func countTasks(tasks []model.Task) TaskCounts {
	counts := TaskCounts{Total: len(tasks)}
	for i := range tasks {
		switch tasks[i].Status {
		case model.TaskStatusPending:
			counts.Pending++
		case model.TaskStatusInProgress:
			counts.InProgress++
		case model.TaskStatusCompleted:
			counts.Completed++
		case model.TaskStatusCancelled:
			counts.Cancelled++
		}
	}
	return counts
}

func buildTaskFilter(filter TaskListFilter) (repository.TaskFilter, error) {
	out := repository.TaskFilter{Status: filter.Status}
	if filter.Status != "" && !model.ValidTaskStatus(filter.Status) {
		return out, apperr.Validation("unknown status %q", filter.Status)
	}
	if filter.CategoryID != "" {
		id, err := uuid.Parse(filter.CategoryID)
		if err != nil {
			return out, apperr.Validation("invalid category id")
		}
		out.CategoryID = &id
	}
	if filter.AssigneeID != "" {
		id, err := uuid.Parse(filter.AssigneeID)
		if err != nil {
			return out, apperr.Validation("invalid assignee id")
		}
		out.AssigneeID = &id
	}
	if filter.From != "" {
		from, err := parseDate(filter.From)
		if err != nil {
			return out, err
		}
		out.From = &from
	}
	if filter.To != "" {
		to, err := parseDate(filter.To)
		if err != nil {
			return out, err
		}
		out.To = &to
	}
	return out, nil
}

func (s *taskService) ListAssignedBy(ctx context.Context, p policy.Principal, filter TaskListFilter) (*TaskListResponse, error) {
	repoFilter, err := buildTaskFilter(filter)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListAssignedBy(ctx, p.AccountID, repoFilter)
	if err != nil {
		return nil, err
	}
	return &TaskListResponse{Tasks: tasks, Counts: countTasks(tasks)}, nil
}

func (s *taskService) ListAssignedTo(ctx context.Context, p policy.Principal, filter TaskListFilter) (*TaskListResponse, error) {
	repoFilter, err := buildTaskFilter(filter)
	if err != nil {
		return nil, err
	}
	repoFilter.AssigneeID = nil
	tasks, err := s.repo.ListAssignedTo(ctx, p.AccountID, repoFilter)
	if err != nil {
		return nil, err
	}
	return &TaskListResponse{Tasks: tasks, Counts: countTasks(tasks)}, nil
}

// participant allows either end of the assignment, plus Admin.
func participant(p policy.Principal, t *model.Task) error {
	if p.Is(model.RoleAdmin) || p.AccountID == t.AssignedByID || p.AccountID == t.AssignedToID {
		return nil
	}
	return apperr.ErrDenied
}

// assignor allows only the account that created the task, plus Admin.
func assignor(p policy.Principal, t *model.Task) error {
	return policy.RequireOwnerOrRole(p, t.AssignedByID, model.RoleAdmin)
}

func (s *taskService) Detail(ctx context.Context, p policy.Principal, id uuid.UUID) (*TaskDetailResponse, error) {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := participant(p, task); err != nil {
		return nil, err
	}
	notes, err := s.repo.ListNotes(ctx, id)
	if err != nil {
		return nil, err
	}
	return &TaskDetailResponse{Task: *task, Notes: notes}, nil
}

func (s *taskService) Update(ctx context.Context, p policy.Principal, id uuid.UUID, req UpdateTaskRequest) (*model.Task, error) {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := assignor(p, task); err != nil {
		return nil, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, apperr.Validation("title cannot be empty")
		}
		task.Title = *req.Title
	}
	if req.Details != nil {
		task.Details = *req.Details
	}
	if req.CategoryID != nil {
		if *req.CategoryID == "" {
			task.CategoryID = nil
		} else {
			categoryID, err := uuid.Parse(*req.CategoryID)
			if err != nil {
				return nil, apperr.Validation("invalid category id")
			}
			task.CategoryID = &categoryID
		}
	}
	if req.StartDate != nil {
		startDate, err := parseDate(*req.StartDate)
		if err != nil {
			return nil, err
		}
		task.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, err := parseDate(*req.EndDate)
		if err != nil {
			return nil, err
		}
		task.EndDate = endDate
	}
	if task.EndDate.Before(task.StartDate) {
		return nil, apperr.Validation("end date must not be before start date")
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	s.record(ctx, p, model.ActionUpdateTask, task)
	return s.getTask(ctx, id)
}

// Delete hides the task from both boards. The row stays for the audit trail.
func (s *taskService) Delete(ctx context.Context, p policy.Principal, id uuid.UUID) error {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return err
	}
	if err := assignor(p, task); err != nil {
		return err
	}
	task.IsDeleted = true
	if err := s.repo.Update(ctx, task); err != nil {
		return err
	}
	s.record(ctx, p, model.ActionDeleteTask, task)
	return nil
}

// Purge removes the row entirely. Admin only.
func (s *taskService) Purge(ctx context.Context, p policy.Principal, id uuid.UUID) error {
	if err := policy.RequireRole(p, model.RoleAdmin); err != nil {
		return err
	}
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrNotFound
		}
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.record(ctx, p, model.ActionDeleteTask, task)
	return nil
}

func (s *taskService) UpdateStatus(ctx context.Context, p policy.Principal, id uuid.UUID, req TaskStatusRequest) (*model.Task, error) {
	if !model.ValidTaskStatus(req.Status) {
		return nil, apperr.Validation("unknown status %q", req.Status)
	}
	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := participant(p, task); err != nil {
		return nil, err
	}

	task.Status = req.Status
	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}
	s.record(ctx, p, model.ActionTaskStatusChange, task)

	updated, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify("task_status_changed", updated, updated.AssignedBy.DisplayName())
	return updated, nil
}

func (s *taskService) AddNote(ctx context.Context, p policy.Principal, id uuid.UUID, req TaskNoteRequest) (*model.TaskNote, error) {
	task, err := s.getTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := participant(p, task); err != nil {
		return nil, err
	}

	note := &model.TaskNote{
		TaskID: task.ID,
		UserID: p.AccountID,
		Note:   req.Note,
	}
	if err := s.repo.CreateNote(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *taskService) ListCategories(ctx context.Context) ([]model.TaskCategory, error) {
	return s.repo.ListCategories(ctx)
}

func (s *taskService) CreateCategory(ctx context.Context, p policy.Principal, req CategoryRequest) (*model.TaskCategory, error) {
	if err := policy.RequireRole(p, model.RoleAdmin); err != nil {
		return nil, err
	}
	category := &model.TaskCategory{Name: req.Name, Description: req.Description}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}
