package service

import (
	"context"
	"testing"

	"salesops/internal/model"
	"salesops/internal/repository"
	"salesops/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingNotifier captures published task events in order.
type recordingNotifier struct {
	events []TaskEvent
}

func (n *recordingNotifier) Publish(event TaskEvent) {
	n.events = append(n.events, event)
}

type taskFixture struct {
	db       *gorm.DB
	service  TaskService
	notifier *recordingNotifier
	zmUser   *model.Account
	asmUser  *model.Account
}

func newTaskFixture(t *testing.T) *taskFixture {
	db := newTestDB(t)
	zmUser := createAccount(t, db, model.RoleZoneManager, "zm1")
	asmUser := createAccount(t, db, model.RoleAreaSalesManager, "asm1")
	createZMProfile(t, db, zmUser, asmUser)

	notifier := &recordingNotifier{}
	svc := NewTaskService(
		repository.NewTaskRepository(db),
		repository.NewAccountRepository(db),
		repository.NewHierarchyRepository(db),
		repository.NewAuditRepository(db),
		notifier,
	)
	return &taskFixture{db: db, service: svc, notifier: notifier, zmUser: zmUser, asmUser: asmUser}
}

func (f *taskFixture) assign(t *testing.T, title string) *model.Task {
	t.Helper()
	task, err := f.service.Assign(context.Background(), principalFor(f.zmUser), AssignTaskRequest{
		Title:        title,
		AssignedToID: f.asmUser.ID.String(),
		StartDate:    "2026-08-01",
		EndDate:      "2026-08-07",
	})
	require.NoError(t, err)
	return task
}

func TestAssignTaskRestrictedToOwnASMs(t *testing.T) {
	f := newTaskFixture(t)
	outsider := createAccount(t, f.db, model.RoleAreaSalesManager, "asm-outside")

	_, err := f.service.Assign(context.Background(), principalFor(f.zmUser), AssignTaskRequest{
		Title:        "visit branch",
		AssignedToID: outsider.ID.String(),
		StartDate:    "2026-08-01",
		EndDate:      "2026-08-07",
	})
	assert.ErrorIs(t, err, apperr.ErrDenied)

	// Admin is unrestricted
	admin := createAccount(t, f.db, model.RoleAdmin, "admin1")
	_, err = f.service.Assign(context.Background(), principalFor(admin), AssignTaskRequest{
		Title:        "visit branch",
		AssignedToID: outsider.ID.String(),
		StartDate:    "2026-08-01",
		EndDate:      "2026-08-07",
	})
	assert.NoError(t, err)
}

func TestAssignTaskValidatesDatesAndDefaults(t *testing.T) {
	f := newTaskFixture(t)

	_, err := f.service.Assign(context.Background(), principalFor(f.zmUser), AssignTaskRequest{
		Title:        "backwards",
		AssignedToID: f.asmUser.ID.String(),
		StartDate:    "2026-08-07",
		EndDate:      "2026-08-01",
	})
	_, ok := apperr.AsValidation(err)
	require.True(t, ok, "expected validation error, got %v", err)

	task := f.assign(t, "visit branch")
	assert.Equal(t, "No details provided", task.Details)
	assert.Equal(t, model.TaskStatusPending, task.Status)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, "task_assigned", f.notifier.events[0].Type)
	assert.Equal(t, task.ID.String(), f.notifier.events[0].TaskID)
}

func TestAssigneeChangesStatusButNotContent(t *testing.T) {
	f := newTaskFixture(t)
	task := f.assign(t, "visit branch")

	updated, err := f.service.UpdateStatus(context.Background(), principalFor(f.asmUser), task.ID, TaskStatusRequest{
		Status: model.TaskStatusInProgress,
	})
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusInProgress, updated.Status)
	require.Len(t, f.notifier.events, 2)
	assert.Equal(t, "task_status_changed", f.notifier.events[1].Type)

	// content edits stay with the assignor
	newTitle := "renamed"
	_, err = f.service.Update(context.Background(), principalFor(f.asmUser), task.ID, UpdateTaskRequest{Title: &newTitle})
	assert.ErrorIs(t, err, apperr.ErrDenied)
}

func TestTaskDeleteBelongsToAssignor(t *testing.T) {
	f := newTaskFixture(t)
	task := f.assign(t, "visit branch")

	err := f.service.Delete(context.Background(), principalFor(f.asmUser), task.ID)
	assert.ErrorIs(t, err, apperr.ErrDenied)

	require.NoError(t, f.service.Delete(context.Background(), principalFor(f.zmUser), task.ID))

	// hidden from reads, still in storage
	_, err = f.service.Detail(context.Background(), principalFor(f.zmUser), task.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	var stored model.Task
	require.NoError(t, f.db.First(&stored, "id = ?", task.ID).Error)
	assert.True(t, stored.IsDeleted)
}

func TestPurgeIsAdminOnly(t *testing.T) {
	f := newTaskFixture(t)
	task := f.assign(t, "visit branch")

	assert.ErrorIs(t, f.service.Purge(context.Background(), principalFor(f.zmUser), task.ID), apperr.ErrDenied)

	admin := createAccount(t, f.db, model.RoleAdmin, "admin1")
	require.NoError(t, f.service.Purge(context.Background(), principalFor(admin), task.ID))

	var count int64
	require.NoError(t, f.db.Model(&model.Task{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestTaskDetailAccessAndNotes(t *testing.T) {
	f := newTaskFixture(t)
	task := f.assign(t, "visit branch")

	_, err := f.service.AddNote(context.Background(), principalFor(f.asmUser), task.ID, TaskNoteRequest{Note: "on my way"})
	require.NoError(t, err)
	_, err = f.service.AddNote(context.Background(), principalFor(f.zmUser), task.ID, TaskNoteRequest{Note: "ack"})
	require.NoError(t, err)

	detail, err := f.service.Detail(context.Background(), principalFor(f.asmUser), task.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Notes, 2)

	// a bystander sees nothing
	bystander := createAccount(t, f.db, model.RoleAreaSalesManager, "asm2")
	_, err = f.service.Detail(context.Background(), principalFor(bystander), task.ID)
	assert.ErrorIs(t, err, apperr.ErrDenied)
	_, err = f.service.AddNote(context.Background(), principalFor(bystander), task.ID, TaskNoteRequest{Note: "hi"})
	assert.ErrorIs(t, err, apperr.ErrDenied)
}

func TestListCountsByStatus(t *testing.T) {
	f := newTaskFixture(t)
	t1 := f.assign(t, "one")
	f.assign(t, "two")
	t3 := f.assign(t, "three")

	_, err := f.service.UpdateStatus(context.Background(), principalFor(f.asmUser), t1.ID, TaskStatusRequest{Status: model.TaskStatusCompleted})
	require.NoError(t, err)
	_, err = f.service.UpdateStatus(context.Background(), principalFor(f.asmUser), t3.ID, TaskStatusRequest{Status: model.TaskStatusInProgress})
	require.NoError(t, err)

	mine, err := f.service.ListAssignedTo(context.Background(), principalFor(f.asmUser), TaskListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, mine.Counts.Total)
	assert.Equal(t, 1, mine.Counts.Pending)
	assert.Equal(t, 1, mine.Counts.InProgress)
	assert.Equal(t, 1, mine.Counts.Completed)

	byZM, err := f.service.ListAssignedBy(context.Background(), principalFor(f.zmUser), TaskListFilter{Status: model.TaskStatusCompleted})
	require.NoError(t, err)
	require.Len(t, byZM.Tasks, 1)
	assert.Equal(t, "one", byZM.Tasks[0].Title)
}
