package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"task_manager/internal/domain"
	"task_manager/internal/repository"
)

// Store is an in-memory implementation of every repository interface. It
// reproduces the schema's unique keys and cascade rules so service tests
// observe the same behavior as PostgreSQL.
type Store struct {
	mu  sync.Mutex
	seq int64
	now func() time.Time

	roles      map[string]*domain.Role
	users      map[string]*domain.User
	categories map[string]*domain.Category
	tasks      map[string]*domain.Task
	comments   map[string]*domain.Comment
	businesses map[string]*domain.Business
	audit      []*domain.AuditLog

	order map[string]int64
}

const (
	AdminRoleID = "00000000-0000-4000-8000-000000000001"
	UserRoleID  = "00000000-0000-4000-8000-000000000002"
)

// NewStore returns an empty store seeded with the admin and user roles.
func NewStore() *Store {
	s := &Store{
		now:        func() time.Time { return time.Now().UTC() },
		roles:      make(map[string]*domain.Role),
		users:      make(map[string]*domain.User),
		categories: make(map[string]*domain.Category),
		tasks:      make(map[string]*domain.Task),
		comments:   make(map[string]*domain.Comment),
		businesses: make(map[string]*domain.Business),
		order:      make(map[string]int64),
	}
	s.roles[AdminRoleID] = &domain.Role{ID: AdminRoleID, Name: domain.RoleAdmin, CreatedAt: s.now()}
	s.roles[UserRoleID] = &domain.Role{ID: UserRoleID, Name: domain.RoleUser, CreatedAt: s.now()}
	return s
}

func (s *Store) stamp(id string) time.Time {
	s.seq++
	s.order[id] = s.seq
	return s.now()
}

func (s *Store) Users() *UserStore { return &UserStore{s} }
func (s *Store) Roles() *RoleStore { return &RoleStore{s} }
func (s *Store) Categories() *CategoryStore { return &CategoryStore{s} }
func (s *Store) Tasks() *TaskStore { return &TaskStore{s} }
func (s *Store) Comments() *CommentStore { return &CommentStore{s} }
func (s *Store) Businesses() *BusinessStore { return &BusinessStore{s} }
func (s *Store) Audit() *AuditStore { return &AuditStore{s} }

// TaskCount returns the number of stored task rows.
func (s *Store) TaskCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// CommentCount returns the number of stored comment rows.
func (s *Store) CommentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.comments)
}

// deleteTaskLocked removes a task, its comments and its whole subtree.
func (s *Store) deleteTaskLocked(id string) {
	for cid, c := range s.comments {
		if c.TaskID == id {
			delete(s.comments, cid)
		}
	}
	for tid, t := range s.tasks {
		if t.ParentID != nil && *t.ParentID == id {
			s.deleteTaskLocked(tid)
		}
	}
	delete(s.tasks, id)
}

func (s *Store) sortTasks(ts []*domain.Task) {
	sort.Slice(ts, func(i, j int) bool { return s.order[ts[i].ID] < s.order[ts[j].ID] })
}

func copyTask(t *domain.Task) *domain.Task {
	c := *t
	c.Subtasks = nil
	c.Comments = nil
	c.CategoryName = nil
	return &c
}

type UserStore struct{ s *Store }

func (r *UserStore) withRole(u *domain.User) *domain.User {
	c := *u
	if role, ok := r.s.roles[u.RoleID]; ok {
		c.RoleName = role.Name
	}
	return &c
}

func (r *UserStore) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	if _, ok := r.s.roles[u.RoleID]; !ok {
		return repository.ErrReferenced
	}
	u.CreatedAt = r.s.stamp(u.ID)
	c := *u
	r.s.users[u.ID] = &c
	return nil
}

func (r *UserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.withRole(u), nil
}

func (r *UserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return r.withRole(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserStore) List(_ context.Context, q domain.UserQuery) ([]*domain.User, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	needle := strings.ToLower(q.Search)
	var matched []*domain.User
	for _, u := range r.s.users {
		if strings.Contains(strings.ToLower(u.Name), needle) || strings.Contains(strings.ToLower(u.Email), needle) {
			matched = append(matched, r.withRole(u))
		}
	}
	sort.Slice(matched, func(i, j int) bool { return r.s.order[matched[i].ID] > r.s.order[matched[j].ID] })

	start := (q.Page - 1) * q.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], len(matched), nil
}

func (r *UserStore) Update(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, other := range r.s.users {
		if other.ID != u.ID && other.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	cur.Name, cur.Email = u.Name, u.Email
	return nil
}

func (r *UserStore) UpdatePassword(_ context.Context, id, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	cur.PasswordHash = hash
	return nil
}

func (r *UserStore) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	for tid, t := range r.s.tasks {
		if t.UserID == id {
			if _, still := r.s.tasks[tid]; still {
				r.s.deleteTaskLocked(tid)
			}
		}
	}
	for bid, b := range r.s.businesses {
		if b.UserID == id {
			delete(r.s.businesses, bid)
		}
	}
	delete(r.s.users, id)
	return nil
}

type RoleStore struct{ s *Store }

func (r *RoleStore) GetByName(_ context.Context, name string) (*domain.Role, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, role := range r.s.roles {
		if role.Name == name {
			c := *role
			return &c, nil
		}
	}
	return nil, repository.ErrNotFound
}

type CategoryStore struct{ s *Store }

func (r *CategoryStore) Create(_ context.Context, c *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.categories {
		if existing.Name == c.Name {
			return repository.ErrDuplicate
		}
	}
	c.CreatedAt = r.s.stamp(c.ID)
	cp := *c
	r.s.categories[c.ID] = &cp
	return nil
}

func (r *CategoryStore) GetByID(_ context.Context, id string) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CategoryStore) GetByName(_ context.Context, name string) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *CategoryStore) List(_ context.Context) ([]*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var res []*domain.Category
	for _, c := range r.s.categories {
		cp := *c
		res = append(res, &cp)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
	return res, nil
}

func (r *CategoryStore) NamesByIDs(_ context.Context, ids []string) (map[string]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	names := make(map[string]string)
	for _, id := range ids {
		if c, ok := r.s.categories[id]; ok {
			names[id] = c.Name
		}
	}
	return names, nil
}

func (r *CategoryStore) Update(_ context.Context, c *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.categories[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, other := range r.s.categories {
		if other.ID != c.ID && other.Name == c.Name {
			return repository.ErrDuplicate
		}
	}
	cur.Name = c.Name
	return nil
}

func (r *CategoryStore) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return repository.ErrNotFound
	}
	for _, t := range r.s.tasks {
		if t.CategoryID != nil && *t.CategoryID == id {
			return repository.ErrReferenced
		}
	}
	delete(r.s.categories, id)
	return nil
}

type TaskStore struct{ s *Store }

func (r *TaskStore) Create(_ context.Context, t *domain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[t.UserID]; !ok {
		return repository.ErrReferenced
	}
	if t.ParentID != nil {
		if _, ok := r.s.tasks[*t.ParentID]; !ok {
			return repository.ErrReferenced
		}
	}
	if t.CategoryID != nil {
		if _, ok := r.s.categories[*t.CategoryID]; !ok {
			return repository.ErrReferenced
		}
	}
	t.CreatedAt = r.s.stamp(t.ID)
	r.s.tasks[t.ID] = copyTask(t)
	return nil
}

func (r *TaskStore) GetByID(_ context.Context, id string) (*domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyTask(t), nil
}

func (r *TaskStore) filter(keep func(*domain.Task) bool) []*domain.Task {
	var res []*domain.Task
	for _, t := range r.s.tasks {
		if keep(t) {
			res = append(res, copyTask(t))
		}
	}
	r.s.sortTasks(res)
	return res
}

func (r *TaskStore) ListRoots(_ context.Context, ownerID string) ([]*domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(t *domain.Task) bool {
		return t.ParentID == nil && (ownerID == "" || t.UserID == ownerID)
	}), nil
}

func (r *TaskStore) ListChildren(_ context.Context, parentIDs []string) ([]*domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := make(map[string]bool, len(parentIDs))
	for _, id := range parentIDs {
		want[id] = true
	}
	return r.filter(func(t *domain.Task) bool {
		return t.ParentID != nil && want[*t.ParentID]
	}), nil
}

func (r *TaskStore) ListByCategory(_ context.Context, categoryID, ownerID string) ([]*domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(t *domain.Task) bool {
		return t.CategoryID != nil && *t.CategoryID == categoryID && t.UserID == ownerID
	}), nil
}

func (r *TaskStore) CountByCategory(_ context.Context, categoryID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, t := range r.s.tasks {
		if t.CategoryID != nil && *t.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (r *TaskStore) ListOverdue(_ context.Context, now time.Time, limit int) ([]*domain.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	res := r.filter(func(t *domain.Task) bool {
		return t.EndTime != nil && !t.EndTime.After(now) && t.Status != domain.StatusDone && t.NotifiedAt == nil
	})
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (r *TaskStore) Update(_ context.Context, t *domain.Task) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.tasks[t.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if t.CategoryID != nil {
		if _, ok := r.s.categories[*t.CategoryID]; !ok {
			return repository.ErrReferenced
		}
	}
	cur.Title, cur.Description, cur.Status = t.Title, t.Description, t.Status
	cur.CategoryID, cur.Lat, cur.Lng, cur.EndTime = t.CategoryID, t.Lat, t.Lng, t.EndTime
	cur.NotifiedAt = t.NotifiedAt
	return nil
}

func (r *TaskStore) MarkNotified(_ context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.tasks[id]
	if !ok {
		return repository.ErrNotFound
	}
	cur.NotifiedAt = &at
	return nil
}

func (r *TaskStore) DeleteChildren(_ context.Context, parentID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, t := range r.s.tasks {
		if t.ParentID != nil && *t.ParentID == parentID {
			if _, still := r.s.tasks[id]; still {
				r.s.deleteTaskLocked(id)
			}
		}
	}
	return nil
}

func (r *TaskStore) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	r.s.deleteTaskLocked(id)
	return nil
}

func (r *TaskStore) DeleteByOwner(_ context.Context, ownerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, t := range r.s.tasks {
		if t.UserID == ownerID {
			if _, still := r.s.tasks[id]; still {
				r.s.deleteTaskLocked(id)
			}
		}
	}
	return nil
}

type CommentStore struct{ s *Store }

func (r *CommentStore) Create(_ context.Context, c *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tasks[c.TaskID]; !ok {
		return repository.ErrReferenced
	}
	c.CreatedAt = r.s.stamp(c.ID)
	cp := *c
	r.s.comments[c.ID] = &cp
	return nil
}

func (r *CommentStore) GetByID(_ context.Context, id string) (*domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CommentStore) collect(keep func(*domain.Comment) bool) []*domain.Comment {
	var res []*domain.Comment
	for _, c := range r.s.comments {
		if keep(c) {
			cp := *c
			res = append(res, &cp)
		}
	}
	sort.Slice(res, func(i, j int) bool { return r.s.order[res[i].ID] < r.s.order[res[j].ID] })
	return res
}

func (r *CommentStore) List(_ context.Context) ([]*domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.collect(func(*domain.Comment) bool { return true }), nil
}

func (r *CommentStore) ListByTasks(_ context.Context, taskIDs []string) ([]*domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := make(map[string]bool, len(taskIDs))
	for _, id := range taskIDs {
		want[id] = true
	}
	return r.collect(func(c *domain.Comment) bool { return want[c.TaskID] }), nil
}

func (r *CommentStore) Update(_ context.Context, c *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.comments[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Text = c.Text
	return nil
}

func (r *CommentStore) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.comments, id)
	return nil
}

func (r *CommentStore) DeleteByTask(_ context.Context, taskID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, c := range r.s.comments {
		if c.TaskID == taskID {
			delete(r.s.comments, id)
		}
	}
	return nil
}

type BusinessStore struct{ s *Store }

func (r *BusinessStore) Create(_ context.Context, b *domain.Business) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.businesses {
		if existing.Email == b.Email {
			return repository.ErrDuplicate
		}
	}
	b.CreatedAt = r.s.stamp(b.ID)
	cp := *b
	r.s.businesses[b.ID] = &cp
	return nil
}

func (r *BusinessStore) GetByID(_ context.Context, id string) (*domain.Business, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.businesses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *BusinessStore) GetByEmail(_ context.Context, email string) (*domain.Business, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.businesses {
		if b.Email == email {
			cp := *b
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *BusinessStore) collect(keep func(*domain.Business) bool) []*domain.Business {
	var res []*domain.Business
	for _, b := range r.s.businesses {
		if keep(b) {
			cp := *b
			res = append(res, &cp)
		}
	}
	sort.Slice(res, func(i, j int) bool { return r.s.order[res[i].ID] > r.s.order[res[j].ID] })
	return res
}

func (r *BusinessStore) List(_ context.Context, status domain.BusinessStatus) ([]*domain.Business, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.collect(func(b *domain.Business) bool { return status == "" || b.Status == status }), nil
}

func (r *BusinessStore) ListByOwner(_ context.Context, ownerID string) ([]*domain.Business, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.collect(func(b *domain.Business) bool { return b.UserID == ownerID }), nil
}

func (r *BusinessStore) Update(_ context.Context, b *domain.Business) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.businesses[b.ID]
	if !ok {
		return repository.ErrNotFound
	}
	for _, other := range r.s.businesses {
		if other.ID != b.ID && other.Email == b.Email {
			return repository.ErrDuplicate
		}
	}
	status, owner, created, ownerName := cur.Status, cur.UserID, cur.CreatedAt, cur.OwnerFullName
	*cur = *b
	cur.Status, cur.UserID, cur.CreatedAt, cur.OwnerFullName = status, owner, created, ownerName
	return nil
}

func (r *BusinessStore) UpdateStatus(_ context.Context, id string, status domain.BusinessStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.businesses[id]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Status = status
	return nil
}

func (r *BusinessStore) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.businesses[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.businesses, id)
	return nil
}

type AuditStore struct{ s *Store }

func (r *AuditStore) Create(_ context.Context, log *domain.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	log.ID = int64(len(r.s.audit) + 1)
	log.CreatedAt = r.s.now()
	cp := *log
	r.s.audit = append(r.s.audit, &cp)
	return nil
}

func (r *AuditStore) List(_ context.Context, f domain.AuditFilter) ([]*domain.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var res []*domain.AuditLog
	for i := len(r.s.audit) - 1; i >= 0 && len(res) < f.Limit; i-- {
		l := r.s.audit[i]
		if (f.UserID == "" || l.UserID == f.UserID) &&
			(f.Category == "" || l.Category == f.Category) &&
			(f.Action == "" || l.Action == f.Action) {
			cp := *l
			res = append(res, &cp)
		}
	}
	return res, nil
}

var (
	_ repository.UserRepo     = (*UserStore)(nil)
	_ repository.RoleRepo     = (*RoleStore)(nil)
	_ repository.CategoryRepo = (*CategoryStore)(nil)
	_ repository.TaskRepo     = (*TaskStore)(nil)
	_ repository.CommentRepo  = (*CommentStore)(nil)
	_ repository.BusinessRepo = (*BusinessStore)(nil)
	_ repository.AuditRepo    = (*AuditStore)(nil)
)
