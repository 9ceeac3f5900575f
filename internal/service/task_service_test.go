package service

import (
	"context"
	"testing"
	"time"

	"task_manager/internal/domain"
	"task_manager/internal/repository"
	"task_manager/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskService_CreateWithInlineSubtasks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, e.store, "owner", false)

	for _, n := range []int{0, 1, 3, 7} {
		var subs []domain.TaskInput
		for i := 0; i < n; i++ {
			subs = append(subs, todo("sub"))
		}
		created, err := e.tasks.CreateTask(ctx, todo("root", subs...), owner.ID)
		require.NoError(t, err)

		got, err := e.tasks.GetTaskByID(ctx, created.ID, owner.ID)
		require.NoError(t, err)
		require.Len(t, got.Subtasks, n)
		for _, st := range got.Subtasks {
			require.NotNil(t, st.ParentID)
			assert.Equal(t, created.ID, *st.ParentID)
			assert.Equal(t, owner.ID, st.UserID)
		}
	}
}

func TestTaskService_BuyMilkScenario(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, e.store, "shopper", false)

	parent, err := e.tasks.CreateTask(ctx, domain.TaskInput{Title: "Buy milk", Status: domain.StatusTodo}, u.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, parent.ID)
	assert.Equal(t, domain.StatusTodo, parent.Status)
	assert.NotNil(t, parent.Subtasks)
	assert.Empty(t, parent.Subtasks)
	assert.NotNil(t, parent.Comments)
	assert.Empty(t, parent.Comments)

	refreshed, err := e.tasks.AddSubtask(ctx, parent.ID, domain.TaskInput{Title: "Pick 2%", Status: domain.StatusTodo}, u.ID)
	require.NoError(t, err)
	require.Len(t, refreshed.Subtasks, 1)
	assert.Equal(t, "Pick 2%", refreshed.Subtasks[0].Title)
	subID := refreshed.Subtasks[0].ID

	require.NoError(t, e.tasks.DeleteTask(ctx, parent.ID, u.ID))

	_, err = e.tasks.GetTaskByID(ctx, parent.ID, u.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	_, err = e.tasks.GetTaskByID(ctx, subID, u.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	assert.Equal(t, []string{domain.EventTaskCreated, domain.EventTaskSubtaskAdded, domain.EventTaskDeleted}, e.events.types())
}

func TestTaskService_DeleteCascadesToDescendantsAndComments(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, e.store, "owner", false)

	root, err := e.tasks.CreateTask(ctx, todo("root", todo("a", todo("a1"), todo("a2", todo("a2x"))), todo("b")), u.ID)
	require.NoError(t, err)
	require.Equal(t, 6, e.store.TaskCount())

	a2x := root.Subtasks[0].Subtasks[1].Subtasks[0]
	_, err = e.comments.Create(ctx, root.ID, "on root")
	require.NoError(t, err)
	deep, err := e.comments.Create(ctx, a2x.ID, "deep")
	require.NoError(t, err)

	require.NoError(t, e.tasks.DeleteTask(ctx, root.ID, u.ID))

	assert.Equal(t, 0, e.store.TaskCount())
	assert.Equal(t, 0, e.store.CommentCount())
	_, err = e.tasks.GetTaskByID(ctx, a2x.ID, u.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	_, err = e.comments.Get(ctx, deep.ID)
	assert.ErrorIs(t, err, domain.ErrCommentNotFound)
}

func TestTaskService_NonOwnerIsRejectedEvenIfAdmin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, e.store, "owner", false)
	other := testutil.SeedUser(t, e.store, "other", false)
	admin := testutil.SeedUser(t, e.store, "admin", true)

	task, err := e.tasks.CreateTask(ctx, todo("private"), owner.ID)
	require.NoError(t, err)

	for _, requester := range []string{other.ID, admin.ID} {
		_, err := e.tasks.GetTaskByID(ctx, task.ID, requester)
		assert.ErrorIs(t, err, domain.ErrNotOwner)

		_, err = e.tasks.UpdateTask(ctx, task.ID, domain.TaskPatch{Title: testutil.Ptr("x")}, requester)
		assert.ErrorIs(t, err, domain.ErrNotOwner)

		_, err = e.tasks.AddSubtask(ctx, task.ID, todo("child"), requester)
		assert.ErrorIs(t, err, domain.ErrNotOwner)

		assert.ErrorIs(t, e.tasks.DeleteTask(ctx, task.ID, requester), domain.ErrNotOwner)
	}

	_, err = e.tasks.GetTaskByID(ctx, "missing", owner.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(domain.ErrNotOwner))
}

func TestTaskService_EmptyPatchIsNoOp(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, e.store, "owner", false)

	created, err := e.tasks.CreateTask(ctx, domain.TaskInput{
		Title:       "keep",
		Description: testutil.Ptr("as is"),
		Status:      domain.StatusInProgress,
		Subtasks:    []domain.TaskInput{todo("child")},
	}, u.ID)
	require.NoError(t, err)
	before, err := e.tasks.GetTaskByID(ctx, created.ID, u.ID)
	require.NoError(t, err)

	after, err := e.tasks.UpdateTask(ctx, created.ID, domain.TaskPatch{}, u.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.NotContains(t, e.events.types(), domain.EventTaskUpdated)
}

func TestTaskService_UpdateReplacesSubtasks(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, e.store, "owner", false)

	created, err := e.tasks.CreateTask(ctx, todo("root", todo("old1", todo("old1-deep")), todo("old2"), todo("old3")), u.ID)
	require.NoError(t, err)
	_, err = e.comments.Create(ctx, created.Subtasks[0].ID, "goes away")
	require.NoError(t, err)

	replacement := []domain.TaskInput{todo("A"), todo("B")}
	updated, err := e.tasks.UpdateTask(ctx, created.ID, domain.TaskPatch{Subtasks: &replacement}, u.ID)
	require.NoError(t, err)

	require.Len(t, updated.Subtasks, 2)
	assert.Equal(t, "A", updated.Subtasks[0].Title)
	assert.Equal(t, "B", updated.Subtasks[1].Title)
	assert.Equal(t, 3, e.store.TaskCount())
	assert.Equal(t, 0, e.store.CommentCount())

	empty := []domain.TaskInput{}
	cleared, err := e.tasks.UpdateTask(ctx, created.ID, domain.TaskPatch{Subtasks: &empty}, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cleared.Subtasks)
	assert.Equal(t, 1, e.store.TaskCount())
}

func TestTaskService_PartialUpdate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, e.store, "owner", false)
	cat := testutil.SeedCategory(t, e.store, "home")

	created, err := e.tasks.CreateTask(ctx, domain.TaskInput{
		Title:       "paint",
		Description: testutil.Ptr("walls"),
		Status:      domain.StatusTodo,
		Lat:         testutil.Ptr(1.5),
	}, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTodo, created.Status)

	done := domain.StatusDone
	updated, err := e.tasks.UpdateTask(ctx, created.ID, domain.TaskPatch{
		Status:     &done,
		CategoryID: &cat.ID,
		EndTime:    testutil.Ptr("2030-01-02T10:00:00+02:00"),
	}, u.ID)
	require.NoError(t, err)

	assert.Equal(t, "paint", updated.Title)
	assert.Equal(t, "walls", *updated.Description)
	assert.Equal(t, 1.5, *updated.Lat)
	assert.Equal(t, domain.StatusDone, updated.Status)
	require.NotNil(t, updated.CategoryName)
	assert.Equal(t, "home", *updated.CategoryName)
	require.NotNil(t, updated.EndTime)
	assert.Equal(t, time.Date(2030, 1, 2, 8, 0, 0, 0, time.UTC), *updated.EndTime)
	assert.Equal(t, time.UTC, updated.EndTime.Location())

	cleared, err := e.tasks.UpdateTask(ctx, created.ID, domain.TaskPatch{CategoryID: testutil.Ptr(""), Description: testutil.Ptr("")}, u.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.CategoryID)
	assert.Nil(t, cleared.CategoryName)
	assert.Nil(t, cleared.Description)
}

func TestTaskService_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, e.store, "owner", false)

	cases := []struct {
		name  string
		input domain.TaskInput
		want  string
	}{
		{"missing title", domain.TaskInput{Status: domain.StatusTodo}, "Title is required"},
		{"bad status", domain.TaskInput{Title: "x", Status: "later"}, "Status must be one of: todo, in-progress, done"},
		{"bad nested status", todo("x", domain.TaskInput{Title: "y", Status: "nope"}), "Status must be one of: todo, in-progress, done"},
		{"missing status", domain.TaskInput{Title: "x"}, "Status must be one of: todo, in-progress, done"},
		{"bad end time", domain.TaskInput{Title: "x", Status: domain.StatusTodo, EndTime: testutil.Ptr("tomorrow-ish")}, "endTime must be a valid date"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.tasks.CreateTask(ctx, tc.input, u.ID)
			require.Error(t, err)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
			assert.EqualError(t, err, tc.want)
		})
	}
	assert.Equal(t, 0, e.store.TaskCount(), "failed validation must not write anything")

	_, err := e.tasks.CreateTask(ctx, domain.TaskInput{Title: "x", Status: domain.StatusTodo, CategoryID: testutil.Ptr("nope")}, u.ID)
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	_, err = e.tasks.CreateTask(ctx, todo("x", domain.TaskInput{Title: "y", CategoryID: testutil.Ptr("nope")}), u.ID)
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	assert.Equal(t, 0, e.store.TaskCount())

	created, err := e.tasks.CreateTask(ctx, todo("x"), u.ID)
	require.NoError(t, err)
	_, err = e.tasks.UpdateTask(ctx, created.ID, domain.TaskPatch{CategoryID: testutil.Ptr("nope")}, u.ID)
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	_, err = e.tasks.UpdateTask(ctx, created.ID, domain.TaskPatch{Title: testutil.Ptr("  ")}, u.ID)
	assert.EqualError(t, err, "Title is required")

	_, err = e.tasks.AddSubtask(ctx, created.ID, domain.TaskInput{Title: "child"}, u.ID)
	assert.ErrorIs(t, err, errInvalidStatus)

	// inline subtasks without a status start as todo
	nested, err := e.tasks.CreateTask(ctx, todo("outer", domain.TaskInput{Title: "inner"}), u.ID)
	require.NoError(t, err)
	require.Len(t, nested.Subtasks, 1)
	assert.Equal(t, domain.StatusTodo, nested.Subtasks[0].Status)
}

func TestTaskService_ListsReturnHydratedRoots(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := testutil.SeedUser(t, e.store, "alice", false)
	bob := testutil.SeedUser(t, e.store, "bob", false)
	cat := testutil.SeedCategory(t, e.store, "errands")

	a, err := e.tasks.CreateTask(ctx, domain.TaskInput{Title: "a", Status: domain.StatusTodo, CategoryID: &cat.ID, Subtasks: []domain.TaskInput{todo("a1")}}, alice.ID)
	require.NoError(t, err)
	_, err = e.tasks.CreateTask(ctx, todo("b"), bob.ID)
	require.NoError(t, err)
	_, err = e.comments.Create(ctx, a.ID, "note")
	require.NoError(t, err)

	mine, err := e.tasks.GetUsersTasks(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "a", mine[0].Title)
	require.Len(t, mine[0].Subtasks, 1)
	require.Len(t, mine[0].Comments, 1)
	assert.Equal(t, "note", mine[0].Comments[0].Text)
	require.NotNil(t, mine[0].CategoryName)
	assert.Equal(t, "errands", *mine[0].CategoryName)

	all, err := e.tasks.GetAllTasks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	for _, root := range all {
		assert.True(t, root.IsRoot())
	}

	none, err := e.tasks.GetUsersTasks(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestTaskService_MaxDepth(t *testing.T) {
	e := newEnv(t, WithMaxDepth(2))
	ctx := context.Background()
	u := testutil.SeedUser(t, e.store, "owner", false)

	_, err := e.tasks.CreateTask(ctx, todo("1", todo("2", todo("3"))), u.ID)
	assert.ErrorIs(t, err, domain.ErrTaskTooDeep)
	assert.Equal(t, 0, e.store.TaskCount())

	root, err := e.tasks.CreateTask(ctx, todo("1", todo("2")), u.ID)
	require.NoError(t, err)
	_, err = e.tasks.AddSubtask(ctx, root.Subtasks[0].ID, todo("3"), u.ID)
	assert.ErrorIs(t, err, domain.ErrTaskTooDeep)
	_, err = e.tasks.AddSubtask(ctx, root.ID, todo("2b"), u.ID)
	assert.NoError(t, err)
}

func TestTaskService_TasksByCategory(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, e.store, "owner", false)
	other := testutil.SeedUser(t, e.store, "other", false)
	cat := testutil.SeedCategory(t, e.store, "work")

	_, err := e.tasks.CreateTask(ctx, domain.TaskInput{Title: "mine", Status: domain.StatusTodo, CategoryID: &cat.ID}, u.ID)
	require.NoError(t, err)
	_, err = e.tasks.CreateTask(ctx, domain.TaskInput{Title: "theirs", Status: domain.StatusTodo, CategoryID: &cat.ID}, other.ID)
	require.NoError(t, err)

	ts, err := e.tasks.TasksByCategory(ctx, cat.ID, u.ID)
	require.NoError(t, err)
	require.Len(t, ts, 1)
	assert.Equal(t, "mine", ts[0].Title)

	_, err = e.tasks.TasksByCategory(ctx, "missing", u.ID)
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestTaskService_Overdue(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, e.store, "owner", false)

	fixed := time.Date(2031, 5, 1, 12, 0, 0, 0, time.UTC)
	prev := overdueScanAt
	overdueScanAt = func() time.Time { return fixed }
	t.Cleanup(func() { overdueScanAt = prev })

	late, err := e.tasks.CreateTask(ctx, domain.TaskInput{Title: "late", Status: domain.StatusTodo, EndTime: testutil.Ptr("2031-05-01T11:00:00Z")}, u.ID)
	require.NoError(t, err)
	_, err = e.tasks.CreateTask(ctx, domain.TaskInput{Title: "future", Status: domain.StatusTodo, EndTime: testutil.Ptr("2031-05-02")}, u.ID)
	require.NoError(t, err)
	_, err = e.tasks.CreateTask(ctx, domain.TaskInput{Title: "finished", Status: domain.StatusDone, EndTime: testutil.Ptr("2031-04-01")}, u.ID)
	require.NoError(t, err)

	due, err := e.tasks.OverdueTasks(ctx, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, late.ID, due[0].ID)

	require.NoError(t, e.tasks.MarkNotified(ctx, due[0]))
	due, err = e.tasks.OverdueTasks(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, due)

	_, err = e.tasks.UpdateTask(ctx, late.ID, domain.TaskPatch{EndTime: testutil.Ptr("2031-05-01T11:30:00Z")}, u.ID)
	require.NoError(t, err)
	due, err = e.tasks.OverdueTasks(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, due, 1, "moving the deadline re-arms the notification")
}

func TestTaskService_MissingOwnerIsInternal(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.tasks.CreateTask(ctx, todo("stray"), "deleted-user")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrTaskNotFound)
	assert.ErrorIs(t, err, repository.ErrReferenced)
	assert.Equal(t, domain.KindInternal, domain.KindOf(err))
}
