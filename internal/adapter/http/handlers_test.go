package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opsboard/opsboard/internal/adapter/http/middleware"
	"github.com/opsboard/opsboard/internal/domain"
	"github.com/opsboard/opsboard/internal/ports"
	"github.com/opsboard/opsboard/internal/service/logger"
	"github.com/opsboard/opsboard/internal/service/ratelimit"
	"github.com/opsboard/opsboard/internal/usecase"
)

const testAPIKey = "ingest-key-1"

// stubTokenService encodes the actor directly in the token string so tests
// can mint credentials without signing real JWTs.
type stubTokenService struct{}

func (s stubTokenService) GenerateAccessToken(actor domain.Actor) (string, error) {
	return fmt.Sprintf("%s|%s", actor.ID, actor.Role), nil
}

func (s stubTokenService) ValidateAccessToken(token string) (domain.Actor, error) {
	parts := strings.SplitN(token, "|", 2)
	if len(parts) != 2 {
		return domain.Actor{}, domain.ErrInvalidCredentials
	}
	role, err := domain.ParseRole(parts[1])
	if err != nil {
		return domain.Actor{}, err
	}
	return domain.Actor{ID: parts[0], Role: role}, nil
}

func bearerFor(actor domain.Actor) string {
	token, _ := stubTokenService{}.GenerateAccessToken(actor)
	return "Bearer " + token
}

// In-memory repositories.

type memTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]*domain.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: make(map[string]*domain.Task)}
}

func (r *memTaskRepo) Create(ctx context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *memTaskRepo) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

func (r *memTaskRepo) Update(ctx context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *memTaskRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *memTaskRepo) List(ctx context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Task
	for _, t := range r.tasks {
		copied := *t
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memTaskRepo) Count(ctx context.Context, filter domain.TaskFilter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks), nil
}

func (r *memTaskRepo) Stats(ctx context.Context) (*domain.TaskStats, error) {
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

type memIncidentRepo struct {
	mu        sync.Mutex
	incidents map[string]*domain.Incident
}

func newMemIncidentRepo() *memIncidentRepo {
	return &memIncidentRepo{incidents: make(map[string]*domain.Incident)}
}

func (r *memIncidentRepo) Create(ctx context.Context, incident *domain.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *incident
	r.incidents[incident.ID] = &copied
	return nil
}

func (r *memIncidentRepo) FindByID(ctx context.Context, id string) (*domain.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	incident, ok := r.incidents[id]
	if !ok {
		return nil, domain.ErrIncidentNotFound
	}
	copied := *incident
	return &copied, nil
}

func (r *memIncidentRepo) Update(ctx context.Context, incident *domain.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.incidents[incident.ID]; !ok {
		return domain.ErrIncidentNotFound
	}
	copied := *incident
	r.incidents[incident.ID] = &copied
	return nil
}

func (r *memIncidentRepo) List(ctx context.Context, filter domain.IncidentFilter) ([]*domain.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Incident
	for _, i := range r.incidents {
		copied := *i
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memIncidentRepo) Count(ctx context.Context, filter domain.IncidentFilter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.incidents), nil
}

func (r *memIncidentRepo) Stats(ctx context.Context) (*domain.IncidentStats, error) {
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

type memCommentRepo struct {
	mu       sync.Mutex
	comments []*domain.Comment
}

func (r *memCommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *comment
	r.comments = append(r.comments, &copied)
	return nil
}

func (r *memCommentRepo) ListByParent(ctx context.Context, parentType domain.ParentType, parentID string, limit, offset int) ([]*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Comment
	for _, c := range r.comments {
		if c.ParentType == parentType && c.ParentID == parentID {
			copied := *c
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memCommentRepo) CountByParent(ctx context.Context, parentType domain.ParentType, parentID string) (int, error) {
	list, _ := r.ListByParent(ctx, parentType, parentID, 0, 0)
	return len(list), nil
}

type memAttachmentRepo struct {
	mu          sync.Mutex
	attachments map[string]*domain.Attachment
}

func newMemAttachmentRepo() *memAttachmentRepo {
	return &memAttachmentRepo{attachments: make(map[string]*domain.Attachment)}
}

func (r *memAttachmentRepo) Create(ctx context.Context, attachment *domain.Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *attachment
	r.attachments[attachment.ID] = &copied
	return nil
}

func (r *memAttachmentRepo) FindByID(ctx context.Context, id string) (*domain.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	attachment, ok := r.attachments[id]
	if !ok {
		return nil, domain.ErrAttachmentNotFound
	}
	copied := *attachment
	return &copied, nil
}

func (r *memAttachmentRepo) ListByParent(ctx context.Context, parentType domain.ParentType, parentID string) ([]*domain.Attachment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Attachment
	for _, a := range r.attachments {
		if a.ParentType == parentType && a.ParentID == parentID {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memAttachmentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.attachments[id]; !ok {
		return domain.ErrAttachmentNotFound
	}
	delete(r.attachments, id)
	return nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type memFileStore struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemFileStore() *memFileStore {
	return &memFileStore{files: make(map[string][]byte)}
}

func (s *memFileStore) Save(ctx context.Context, key string, content io.Reader) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key] = data
	return key, nil
}

func (s *memFileStore) Open(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[storagePath]
	if !ok {
		return nil, domain.ErrAttachmentNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memFileStore) Remove(ctx context.Context, storagePath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, storagePath)
	return nil
}

// testEnv wires the full server against in-memory collaborators.
type testEnv struct {
	server         *httptest.Server
	taskRepo       *memTaskRepo
	incidentRepo   *memIncidentRepo
	commentRepo    *memCommentRepo
	attachmentRepo *memAttachmentRepo
	userRepo       *memUserRepo
	fileStore      *memFileStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		taskRepo:       newMemTaskRepo(),
		incidentRepo:   newMemIncidentRepo(),
		commentRepo:    &memCommentRepo{},
		attachmentRepo: newMemAttachmentRepo(),
		userRepo:       newMemUserRepo(),
		fileStore:      newMemFileStore(),
	}

	notifier := ports.NewNoopNotificationService()
	taskUseCase := usecase.NewTaskUseCase(env.taskRepo, notifier)
	incidentUseCase := usecase.NewIncidentUseCase(env.incidentRepo, notifier)
	commentUseCase := usecase.NewCommentUseCase(env.commentRepo, env.taskRepo, env.incidentRepo, notifier)
	attachmentUseCase := usecase.NewAttachmentUseCase(
		env.attachmentRepo, env.taskRepo, env.incidentRepo, env.fileStore,
		1<<20, []string{"text/plain", "image/png"},
	)
	authUseCase := usecase.NewAuthUseCase(env.userRepo, stubPasswordService{}, stubTokenService{})

	limiter, err := ratelimit.NewRateLimitService(ratelimit.Config{Enabled: false}, logrus.New())
	if err != nil {
		t.Fatalf("rate limiter: %v", err)
	}

	log := logger.NewStructuredLogger(logger.Config{Level: "error", Format: "text", ServiceName: "test"})

	srv := NewServer(
		ServerConfig{
			Port:            "0",
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			IdleTimeout:     5 * time.Second,
			MaxUploadBytes:  1 << 20,
			IngestAPIKeys:   []string{testAPIKey},
			RateLimit:       100,
			RateLimitWindow: time.Minute,
		},
		log,
		taskUseCase,
		incidentUseCase,
		commentUseCase,
		attachmentUseCase,
		authUseCase,
		middleware.NewAuthMiddleware(stubTokenService{}),
		limiter,
	)

	env.server = httptest.NewServer(srv.server.Handler)
	t.Cleanup(env.server.Close)
	return env
}

// stubPasswordService compares plaintext directly; hashing behavior has its
// own tests.
type stubPasswordService struct{}

func (stubPasswordService) Hash(password string) (string, error) { return password, nil }

func (stubPasswordService) Compare(hash, password string) error {
	if hash != password {
		return domain.ErrInvalidCredentials
	}
	return nil
}

func (e *testEnv) do(t *testing.T, method, path, auth string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func (e *testEnv) doWithAPIKey(t *testing.T, path, key string, body interface{}) *http.Response {
	t.Helper()

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.APIKeyHeader, key)

	resp, err := e.server.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func decodeEnvelope(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()

	var envelope struct {
		Status  bool                   `json:"status"`
		Message string                 `json:"message"`
		Data    map[string]interface{} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return envelope.Data
}
