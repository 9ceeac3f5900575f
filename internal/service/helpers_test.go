package service

import (
	"sync"
	"testing"
	"time"

	"task_manager/internal/domain"
	"task_manager/internal/testutil"

	"golang.org/x/crypto/bcrypt"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.TaskEvent
}

func (p *recordingPublisher) Publish(ev domain.TaskEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type recordingRemover struct {
	removed []string
}

func (r *recordingRemover) Remove(name string) error {
	r.removed = append(r.removed, name)
	return nil
}

type env struct {
	store      *testutil.Store
	events     *recordingPublisher
	images     *recordingRemover
	audit      *AuditService
	auth       *AuthService
	users      *UserService
	tasks      *TaskService
	categories *CategoryService
	comments   *CommentService
	businesses *BusinessService
}

func newEnv(t *testing.T, opts ...TaskOption) *env {
	t.Helper()
	InitJWT("test-secret", time.Hour)

	st := testutil.NewStore()
	e := &env{store: st, events: &recordingPublisher{}, images: &recordingRemover{}}
	e.audit = NewAuditService(st.Audit())
	e.auth = NewAuthService(st.Users(), st.Roles(), e.audit)
	e.auth.SetHashCost(bcrypt.MinCost)
	e.users = NewUserService(st.Users(), st.Tasks(), e.auth, e.audit)
	opts = append([]TaskOption{WithTaskEvents(e.events), WithTaskAudit(e.audit)}, opts...)
	e.tasks = NewTaskService(st.Tasks(), st.Categories(), st.Comments(), opts...)
	e.categories = NewCategoryService(st.Categories(), st.Tasks(), e.audit)
	e.comments = NewCommentService(st.Comments(), st.Tasks())
	e.businesses = NewBusinessService(st.Businesses(), e.auth, e.images, e.audit)
	return e
}

func todo(title string, subtasks ...domain.TaskInput) domain.TaskInput {
	return domain.TaskInput{Title: title, Status: domain.StatusTodo, Subtasks: subtasks}
}
