package usecase

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/opsboard/opsboard/internal/domain"
)

// In-memory repository fakes used across the usecase tests.

type fakeTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]*domain.Task
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*domain.Task)}
}

func (r *fakeTaskRepo) Create(ctx context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	cp := *task
	return &cp, nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	cp := *task
	r.tasks[task.ID] = &cp
	return nil
}

func (r *fakeTaskRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *fakeTaskRepo) List(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Task
	for _, t := range r.tasks {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeTaskRepo) Count(ctx context.Context, filter domain.TaskFilter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks), nil
}

func (r *fakeTaskRepo) Stats(ctx context.Context) (*domain.TaskStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &domain.TaskStats{
		ByStatus:   make(map[domain.TaskStatus]int),
		ByPriority: make(map[domain.TaskPriority]int),
	}
	for _, t := range r.tasks {
		stats.Total++
		stats.ByStatus[t.Status]++
		stats.ByPriority[t.Priority]++
	}
	return stats, nil
}

type fakeIncidentRepo struct {
	mu        sync.Mutex
	incidents map[string]*domain.Incident
}

func newFakeIncidentRepo() *fakeIncidentRepo {
	return &fakeIncidentRepo{incidents: make(map[string]*domain.Incident)}
}

func (r *fakeIncidentRepo) Create(ctx context.Context, incident *domain.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *incident
	r.incidents[incident.ID] = &cp
	return nil
}

func (r *fakeIncidentRepo) FindByID(ctx context.Context, id string) (*domain.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	incident, ok := r.incidents[id]
	if !ok {
		return nil, domain.ErrIncidentNotFound
	}
	cp := *incident
	return &cp, nil
}

func (r *fakeIncidentRepo) Update(ctx context.Context, incident *domain.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.incidents[incident.ID]; !ok {
		return domain.ErrIncidentNotFound
	}
	cp := *incident
	r.incidents[incident.ID] = &cp
	return nil
}

func (r *fakeIncidentRepo) List(ctx context.Context, filter domain.IncidentFilter) ([]*domain.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Incident
	for _, i := range r.incidents {
		cp := *i
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeIncidentRepo) Count(ctx context.Context, filter domain.IncidentFilter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.incidents), nil
}

func (r *fakeIncidentRepo) Stats(ctx context.Context) (*domain.IncidentStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &domain.IncidentStats{
		ByStatus: make(map[domain.IncidentStatus]int),
		ByTier:   make(map[domain.IncidentTier]int),
	}
	for _, i := range r.incidents {
		stats.Total++
		stats.ByStatus[i.Status]++
		stats.ByTier[i.Tier]++
	}
	return stats, nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments []*domain.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{}
}

func (r *fakeCommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *comment
	r.comments = append(r.comments, &cp)
	return nil
}

func (r *fakeCommentRepo) ListByParent(ctx context.Context, parentType domain.ParentType, parentID string, limit, offset int) ([]*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Comment
	for _, c := range r.comments {
		if c.ParentType == parentType && c.ParentID == parentID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeCommentRepo) CountByParent(ctx context.Context, parentType domain.ParentType, parentID string) (int, error) {
	comments, _ := r.ListByParent(ctx, parentType, parentID, 0, 0)
	return len(comments), nil
}

type fakeAttachmentRepo struct {
	mu          sync.Mutex
	attachments map[string]*domain.Attachment
}

func newFakeAttachmentRepo() *fakeAttachmentRepo {
	return &fakeAttachmentRepo{attachments: make(map[string]*domain.Attachment)}
}

func (r *fakeAttachmentRepo) Create(ctx context.Context, attachment *domain.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *attachment
	r.attachments[attachment.ID] = &cp
	return nil
}

func (r *fakeAttachmentRepo) FindByID(ctx context.Context, id string) (*domain.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	attachment, ok := r.attachments[id]
	if !ok {
		return nil, domain.ErrAttachmentNotFound
	}
	cp := *attachment
	return &cp, nil
}

func (r *fakeAttachmentRepo) ListByParent(ctx context.Context, parentType domain.ParentType, parentID string) ([]*domain.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Attachment
	for _, a := range r.attachments {
		if a.ParentType == parentType && a.ParentID == parentID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAttachmentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.attachments[id]; !ok {
		return domain.ErrAttachmentNotFound
	}
	delete(r.attachments, id)
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type fakeFileStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: make(map[string][]byte)}
}

func (s *fakeFileStore) Save(ctx context.Context, key string, content io.Reader) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key] = data
	return key, nil
}

func (s *fakeFileStore) Open(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[storagePath]
	if !ok {
		return nil, domain.ErrAttachmentNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeFileStore) Remove(ctx context.Context, storagePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, storagePath)
	return nil
}
