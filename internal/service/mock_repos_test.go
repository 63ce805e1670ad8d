package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"student-events/config"
	"student-events/internal/model"
	"student-events/internal/repository"
	"student-events/pkg/graph"
)

var errMockDB = errors.New("mock: db failure")

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	mu         sync.Mutex
	students   map[string]*model.Student
	failCreate bool
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) put(s model.Student) *model.Student {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := s
	m.students[s.StudentID] = &cp
	return &cp
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.students[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByExternalID(_ context.Context, externalID string) (*model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.students {
		if s.ExternalID != nil && *s.ExternalID == externalID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) filtered(f repository.StudentFilter) []model.Student {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Student
	for _, s := range m.students {
		if q := strings.TrimSpace(f.Search); q != "" &&
			!containsFold(s.DisplayName, q) && !containsFold(s.Email, q) {
			continue
		}
		if d := strings.TrimSpace(f.Department); d != "" &&
			(s.Department == nil || !containsFold(*s.Department, d)) {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayName != out[j].DisplayName {
			return out[i].DisplayName < out[j].DisplayName
		}
		return out[i].StudentID < out[j].StudentID
	})
	return out
}

func (m *mockStudentRepo) List(_ context.Context, f repository.StudentFilter, offset, limit int) ([]model.Student, int64, error) {
	all := m.filtered(f)
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockStudentRepo) ListFiltered(_ context.Context, f repository.StudentFilter) ([]model.Student, error) {
	return m.filtered(f), nil
}

func (m *mockStudentRepo) ListAll(_ context.Context) ([]model.Student, error) {
	return m.filtered(repository.StudentFilter{}), nil
}

func (m *mockStudentRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.students)), nil
}

func (m *mockStudentRepo) BatchCreate(_ context.Context, students []model.Student) error {
	if m.failCreate && len(students) > 0 {
		return errMockDB
	}
	for _, s := range students {
		m.put(s)
	}
	return nil
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	m.put(*student)
	return nil
}

// ── Mock EventRepository ──

type mockEventRepo struct {
	mu     sync.Mutex
	events map[string]*model.Event
	// failFor 对指定学生的写入返回错误
	failFor map[string]bool
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{
		events:  make(map[string]*model.Event),
		failFor: make(map[string]bool),
	}
}

func (m *mockEventRepo) put(e model.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := e
	m.events[e.EventID] = &cp
}

func (m *mockEventRepo) GetByExternalID(_ context.Context, externalID, studentID string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ExternalID != nil && *e.ExternalID == externalID && e.StudentID == studentID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEventRepo) filtered(f repository.EventFilter) []model.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Event
	for _, e := range m.events {
		if f.StudentID != "" && e.StudentID != f.StudentID {
			continue
		}
		if f.StartFrom != nil && e.StartDateTime.Before(*f.StartFrom) {
			continue
		}
		if f.EndUntil != nil && e.EndDateTime.After(*f.EndUntil) {
			continue
		}
		if q := strings.TrimSpace(f.Search); q != "" &&
			!containsFold(e.Subject, q) && (e.Location == nil || !containsFold(*e.Location, q)) {
			continue
		}
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDateTime.Equal(out[j].StartDateTime) {
			return out[i].StartDateTime.Before(out[j].StartDateTime)
		}
		return out[i].EventID < out[j].EventID
	})
	return out
}

func (m *mockEventRepo) List(_ context.Context, f repository.EventFilter, offset, limit int) ([]model.Event, int64, error) {
	all := m.filtered(f)
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockEventRepo) ListByStudent(_ context.Context, studentID string) ([]model.Event, error) {
	return m.filtered(repository.EventFilter{StudentID: studentID}), nil
}

func (m *mockEventRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.events)), nil
}

func (m *mockEventRepo) shouldFail(studentID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failFor[studentID]
}

func (m *mockEventRepo) BatchCreate(_ context.Context, events []model.Event) error {
	for _, e := range events {
		if m.shouldFail(e.StudentID) {
			return errMockDB
		}
	}
	for _, e := range events {
		m.put(e)
	}
	return nil
}

func (m *mockEventRepo) Update(_ context.Context, event *model.Event) error {
	if m.shouldFail(event.StudentID) {
		return errMockDB
	}
	m.put(*event)
	return nil
}

func (m *mockEventRepo) byStudent(studentID string) []model.Event {
	return m.filtered(repository.EventFilter{StudentID: studentID})
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: username
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.users[user.Username] = user
	return nil
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

// ── Mock DirectoryProvider ──

type mockProvider struct {
	mu        sync.Mutex
	users     []graph.User
	usersErr  error
	events    map[string][]graph.Event // key: 外部用户 ID
	eventErrs map[string]error
	calls     []string
	onCall    func(userID string)
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		events:    make(map[string][]graph.Event),
		eventErrs: make(map[string]error),
	}
}

func (p *mockProvider) ListUsers(_ context.Context, top int) ([]graph.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, "users")
	if p.usersErr != nil {
		return nil, p.usersErr
	}
	if top < len(p.users) {
		return p.users[:top], nil
	}
	return p.users, nil
}

func (p *mockProvider) ListCalendarView(_ context.Context, userID string, _, _ time.Time, _ int) ([]graph.Event, error) {
	p.mu.Lock()
	p.calls = append(p.calls, userID)
	hook := p.onCall
	events, err := p.events[userID], p.eventErrs[userID]
	p.mu.Unlock()

	if hook != nil {
		hook(userID)
	}
	return events, err
}

func (p *mockProvider) callLog() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// ── 测试辅助 ──

type testEnv struct {
	repo     *repository.Repository
	students *mockStudentRepo
	events   *mockEventRepo
	users    *mockUserRepo
	provider *mockProvider
	cfg      *config.Config
	logger   *zap.Logger
}

func newTestEnv() *testEnv {
	students := newMockStudentRepo()
	events := newMockEventRepo()
	users := newMockUserRepo()
	return &testEnv{
		repo: &repository.Repository{
			Student: students,
			Event:   events,
			User:    users,
		},
		students: students,
		events:   events,
		users:    users,
		provider: newMockProvider(),
		cfg: &config.Config{
			Auth: config.AuthConfig{
				JWTSecret:      "test-secret-key-for-unit-testing",
				AccessTokenTTL: time.Hour,
			},
			Graph: config.GraphConfig{RequestTimeout: time.Second},
			Sync: config.SyncConfig{
				UserPageSize:    50,
				EventPageSize:   100,
				LookbackMonths:  1,
				LookaheadMonths: 3,
				LockTTL:         time.Minute,
				EventWorkers:    1,
			},
		},
		logger: zap.NewNop(),
	}
}

func paginate[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }
