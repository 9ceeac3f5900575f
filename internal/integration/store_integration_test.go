package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"task_manager/internal/domain"
	"task_manager/internal/repository"
)

func register(t *testing.T, s *services, role string) *domain.User {
	t.Helper()
	suffix := uniq()
	u, err := s.auth.Register(context.Background(), domain.RegisterInput{
		Name:     "it-" + suffix,
		Email:    "it-" + suffix + "@example.com",
		Password: "integration",
	}, role)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return u
}

func strp(s string) *string { return &s }

func TestTaskTree_Postgres(t *testing.T) {
	pool := openPool(t)
	s := newServices(pool, nil)
	ctx := context.Background()

	owner := register(t, s, domain.RoleUser)
	cat, err := s.categories.Create(ctx, "it-cat-"+uniq())
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	created, err := s.tasks.CreateTask(ctx, domain.TaskInput{
		Title:      "Plan trip",
		Status:     domain.StatusTodo,
		CategoryID: &cat.ID,
		EndTime:    strp("2030-05-01T09:30:00"),
		Subtasks: []domain.TaskInput{
			{Title: "Book flights", Subtasks: []domain.TaskInput{{Title: "Compare prices"}}},
			{Title: "Pack"},
		},
	}, owner.ID)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	got, err := s.tasks.GetTaskByID(ctx, created.ID, owner.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if len(got.Subtasks) != 2 {
		t.Fatalf("expected 2 subtasks, got %d", len(got.Subtasks))
	}
	if got.CategoryName == nil || *got.CategoryName != cat.Name {
		t.Fatalf("category name not hydrated: %v", got.CategoryName)
	}
	if got.EndTime == nil || got.EndTime.Hour() != 9 || got.EndTime.Location() != time.UTC {
		t.Fatalf("end time not stored as UTC: %v", got.EndTime)
	}
	var deepest int
	for _, sub := range got.Subtasks {
		deepest += len(sub.Subtasks)
	}
	if deepest != 1 {
		t.Fatalf("expected one grandchild, got %d", deepest)
	}

	if _, err := s.comments.Create(ctx, got.Subtasks[0].ID, "remember passports"); err != nil {
		t.Fatalf("create comment: %v", err)
	}

	if err := s.categories.Delete(ctx, cat.ID, owner.ID); !errors.Is(err, domain.ErrCategoryInUse) {
		t.Fatalf("expected category in use, got %v", err)
	}

	if err := s.tasks.DeleteTask(ctx, created.ID, owner.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	for _, id := range []string{created.ID, got.Subtasks[0].ID, got.Subtasks[0].Subtasks[0].ID} {
		if _, err := s.tasks.GetTaskByID(ctx, id, owner.ID); !errors.Is(err, domain.ErrTaskNotFound) {
			t.Fatalf("task %s survived delete: %v", id, err)
		}
	}

	if err := s.categories.Delete(ctx, cat.ID, owner.ID); err != nil {
		t.Fatalf("delete freed category: %v", err)
	}
}

func TestUniqueConstraints_Postgres(t *testing.T) {
	pool := openPool(t)
	s := newServices(pool, nil)
	ctx := context.Background()

	u := register(t, s, domain.RoleUser)
	_, err := s.auth.Register(ctx, domain.RegisterInput{Name: "dupe", Email: u.Email, Password: "x"}, domain.RoleUser)
	if !errors.Is(err, domain.ErrEmailInUse) {
		t.Fatalf("expected email in use, got %v", err)
	}

	name := "it-cat-" + uniq()
	if _, err := s.categories.Create(ctx, name); err != nil {
		t.Fatalf("create category: %v", err)
	}
	if _, err := s.categories.Create(ctx, name); !errors.Is(err, domain.ErrCategoryExists) {
		t.Fatalf("expected category exists, got %v", err)
	}

	in := domain.BusinessInput{
		Name: "Shop", EmployeeCount: 1, PhoneNumber: "1", Email: "biz-" + uniq() + "@example.com",
		Country: "NL", City: "Delft",
	}
	b, err := s.businesses.Create(ctx, in, u.ID)
	if err != nil {
		t.Fatalf("create business: %v", err)
	}
	if b.Status != domain.BusinessPending || b.OwnerFullName != u.Name {
		t.Fatalf("unexpected business: %+v", b)
	}
	if _, err := s.businesses.Create(ctx, in, u.ID); !errors.Is(err, domain.ErrBusinessEmailTaken) {
		t.Fatalf("expected business email taken, got %v", err)
	}
}

func TestOverdueAndNotified_Postgres(t *testing.T) {
	pool := openPool(t)
	s := newServices(pool, nil)
	ctx := context.Background()
	repo := repository.NewTaskRepository(pool)

	owner := register(t, s, domain.RoleUser)
	past := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	task, err := s.tasks.CreateTask(ctx, domain.TaskInput{Title: "Late", Status: domain.StatusInProgress, EndTime: &past}, owner.ID)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	contains := func() bool {
		due, err := repo.ListOverdue(ctx, time.Now().UTC(), 10000)
		if err != nil {
			t.Fatalf("list overdue: %v", err)
		}
		for _, d := range due {
			if d.ID == task.ID {
				return true
			}
		}
		return false
	}

	if !contains() {
		t.Fatalf("overdue task not listed")
	}
	if err := s.tasks.MarkNotified(ctx, task); err != nil {
		t.Fatalf("mark notified: %v", err)
	}
	if contains() {
		t.Fatalf("notified task listed again")
	}

	later := time.Now().UTC().Add(-time.Minute).Format(time.RFC3339)
	if _, err := s.tasks.UpdateTask(ctx, task.ID, domain.TaskPatch{EndTime: &later}, owner.ID); err != nil {
		t.Fatalf("update end time: %v", err)
	}
	if !contains() {
		t.Fatalf("changing the deadline should re-arm the notification")
	}
}
