package businessflow

import (
	"context"
	"testing"

	"github.com/fasehq/backoffice/app/dto"
	"github.com/fasehq/backoffice/models"
	testingutil "github.com/fasehq/backoffice/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taskFixture struct {
	flow     TaskFlow
	tasks    *testingutil.FakeTaskRepository
	accounts *testingutil.FakeAccountRepository
	audit    *testingutil.FakeAuditLogRepository
}

func newTaskFixture(t *testing.T) *taskFixture {
	t.Helper()

	accounts := testingutil.NewFakeAccountRepository()
	tasks := testingutil.NewFakeTaskRepository()
	audit := testingutil.NewFakeAuditLogRepository()

	require.NoError(t, accounts.Save(context.Background(), testingutil.IndividualAccount("acct-1", models.StatusApproved)))

	return &taskFixture{
		flow:     NewTaskFlow(tasks, accounts, audit, nil),
		tasks:    tasks,
		accounts: accounts,
		audit:    audit,
	}
}

func TestCreateTask(t *testing.T) {
	fx := newTaskFixture(t)

	resp, err := fx.flow.CreateTask(context.Background(), &dto.CreateTaskRequest{
		Kind:      models.TaskKindTask,
		AccountID: "acct-1",
		Title:     "Chase renewal paperwork",
	}, 7, nil)
	require.NoError(t, err)

	assert.NotZero(t, resp.Task.ID)
	assert.Equal(t, models.TaskStatusOpen, resp.Task.Status)
	require.NotNil(t, resp.Task.AdminID)
	assert.Equal(t, uint(7), *resp.Task.AdminID)

	entries := fx.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditActionTaskCreated, entries[0].Action)
}

func TestCreateTask_NoteGetsNoteAudit(t *testing.T) {
	fx := newTaskFixture(t)

	_, err := fx.flow.CreateTask(context.Background(), &dto.CreateTaskRequest{
		Kind:      models.TaskKindNote,
		AccountID: "acct-1",
		Title:     "Spoke to broker about pending docs",
	}, 7, nil)
	require.NoError(t, err)

	entries := fx.audit.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, models.AuditActionNoteCreated, entries[0].Action)
}

func TestCreateTask_AccountNotFound(t *testing.T) {
	fx := newTaskFixture(t)

	_, err := fx.flow.CreateTask(context.Background(), &dto.CreateTaskRequest{
		Kind:      models.TaskKindTask,
		AccountID: "acct-gone",
		Title:     "Orphan",
	}, 7, nil)
	require.Error(t, err)
	assert.True(t, IsAccountNotFound(err))
}

func TestCreateTask_TitleRequired(t *testing.T) {
	fx := newTaskFixture(t)

	_, err := fx.flow.CreateTask(context.Background(), &dto.CreateTaskRequest{
		Kind:      models.TaskKindTask,
		AccountID: "acct-1",
	}, 7, nil)
	require.Error(t, err)
}

func TestCompleteTask(t *testing.T) {
	fx := newTaskFixture(t)
	ctx := context.Background()

	created, err := fx.flow.CreateTask(ctx, &dto.CreateTaskRequest{
		Kind:      models.TaskKindTask,
		AccountID: "acct-1",
		Title:     "Review application",
	}, 7, nil)
	require.NoError(t, err)

	resp, err := fx.flow.CompleteTask(ctx, &dto.CompleteTaskRequest{TaskID: created.Task.ID}, 7, nil)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, resp.Task.Status)
	assert.NotNil(t, resp.Task.DoneAt)

	// Completing twice is rejected
	_, err = fx.flow.CompleteTask(ctx, &dto.CompleteTaskRequest{TaskID: created.Task.ID}, 7, nil)
	require.Error(t, err)
	assert.True(t, IsTaskAlreadyCompleted(err))
}

func TestCompleteTask_NoteRejected(t *testing.T) {
	fx := newTaskFixture(t)
	ctx := context.Background()

	created, err := fx.flow.CreateTask(ctx, &dto.CreateTaskRequest{
		Kind:      models.TaskKindNote,
		AccountID: "acct-1",
		Title:     "Call summary",
	}, 7, nil)
	require.NoError(t, err)

	_, err = fx.flow.CompleteTask(ctx, &dto.CompleteTaskRequest{TaskID: created.Task.ID}, 7, nil)
	require.Error(t, err)
	assert.True(t, IsNoteNotCompletable(err))
}

func TestUpdateTask(t *testing.T) {
	fx := newTaskFixture(t)
	ctx := context.Background()

	created, err := fx.flow.CreateTask(ctx, &dto.CreateTaskRequest{
		Kind:      models.TaskKindTask,
		AccountID: "acct-1",
		Title:     "Draft title",
	}, 7, nil)
	require.NoError(t, err)

	resp, err := fx.flow.UpdateTask(ctx, &dto.UpdateTaskRequest{
		TaskID: created.Task.ID,
		Title:  strPtr("Final title"),
	}, 7, nil)
	require.NoError(t, err)
	assert.Equal(t, "Final title", resp.Task.Title)
}

func TestUpdateTask_NotFound(t *testing.T) {
	fx := newTaskFixture(t)

	_, err := fx.flow.UpdateTask(context.Background(), &dto.UpdateTaskRequest{TaskID: 999, Title: strPtr("x")}, 7, nil)
	require.Error(t, err)
	assert.True(t, IsTaskNotFound(err))
}

func TestListTasks(t *testing.T) {
	fx := newTaskFixture(t)
	ctx := context.Background()

	for _, title := range []string{"one", "two", "three"} {
		_, err := fx.flow.CreateTask(ctx, &dto.CreateTaskRequest{
			Kind:      models.TaskKindTask,
			AccountID: "acct-1",
			Title:     title,
		}, 7, nil)
		require.NoError(t, err)
	}
	_, err := fx.flow.CreateTask(ctx, &dto.CreateTaskRequest{
		Kind:      models.TaskKindNote,
		AccountID: "acct-1",
		Title:     "a note",
	}, 7, nil)
	require.NoError(t, err)

	resp, err := fx.flow.ListTasks(ctx, &dto.ListTasksRequest{AccountID: "acct-1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(4), resp.Pagination.Total)

	kind := models.TaskKindNote
	resp, err = fx.flow.ListTasks(ctx, &dto.ListTasksRequest{AccountID: "acct-1", Kind: &kind}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Pagination.Total)
}

func TestDeleteTask(t *testing.T) {
	fx := newTaskFixture(t)
	ctx := context.Background()

	created, err := fx.flow.CreateTask(ctx, &dto.CreateTaskRequest{
		Kind:      models.TaskKindTask,
		AccountID: "acct-1",
		Title:     "temp",
	}, 7, nil)
	require.NoError(t, err)

	require.NoError(t, fx.flow.DeleteTask(ctx, created.Task.ID, 7, nil))

	err = fx.flow.DeleteTask(ctx, created.Task.ID, 7, nil)
	require.Error(t, err)
	assert.True(t, IsTaskNotFound(err))
}
