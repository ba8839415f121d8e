package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/domain"
)

// Memory implements Store with mutex-guarded maps. It mirrors the
// Postgres semantics (soft-delete filtering, CAS status updates) and
// backs dev mode and the service/handler tests.
type Memory struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	users         map[string]domain.User
	clients       map[string]domain.Client
	projects      map[string]domain.Project
	tasks         map[string]domain.Task
	reviews       map[string]domain.ReviewSubmission
	feedback      map[string]domain.Feedback
	timeLogs      map[string]domain.TimeLog
	channels      map[string]domain.Channel
	messages      map[string]domain.Message
	files         map[string]domain.File
	notifications map[string]domain.Notification
}

func NewMemory() *Memory {
	return &Memory{
		users:         map[string]domain.User{},
		clients:       map[string]domain.Client{},
		projects:      map[string]domain.Project{},
		tasks:         map[string]domain.Task{},
		reviews:       map[string]domain.ReviewSubmission{},
		feedback:      map[string]domain.Feedback{},
		timeLogs:      map[string]domain.TimeLog{},
		channels:      map[string]domain.Channel{},
		messages:      map[string]domain.Message{},
		files:         map[string]domain.File{},
		notifications: map[string]domain.Notification{},
	}
}

func (m *Memory) Users() UserRepository                 { return &memUsers{m} }
func (m *Memory) Clients() ClientRepository             { return &memClients{m} }
func (m *Memory) Projects() ProjectRepository           { return &memProjects{m} }
func (m *Memory) Tasks() TaskRepository                 { return &memTasks{m} }
func (m *Memory) Reviews() ReviewRepository             { return &memReviews{m} }
func (m *Memory) Feedback() FeedbackRepository          { return &memFeedback{m} }
func (m *Memory) TimeLogs() TimeLogRepository           { return &memTimeLogs{m} }
func (m *Memory) Channels() ChannelRepository           { return &memChannels{m} }
func (m *Memory) Files() FileRepository                 { return &memFiles{m} }
func (m *Memory) Notifications() NotificationRepository { return &memNotifications{m} }

// InTx serializes transactions and restores a snapshot when fn fails,
// so the review-decision/task-status pair stays all-or-nothing.
//
// Only transactions are serialized. A non-transactional write from a
// concurrent request that lands between a failing transaction's
// snapshot and its restore is rolled back with it. Lost writes are
// limited to best-effort records (notification batches), which this
// backend accepts; Postgres is the durable path.
func (m *Memory) InTx(ctx context.Context, fn func(Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	snapshot := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

type memSnapshot struct {
	users         map[string]domain.User
	clients       map[string]domain.Client
	projects      map[string]domain.Project
	tasks         map[string]domain.Task
	reviews       map[string]domain.ReviewSubmission
	feedback      map[string]domain.Feedback
	timeLogs      map[string]domain.TimeLog
	channels      map[string]domain.Channel
	messages      map[string]domain.Message
	files         map[string]domain.File
	notifications map[string]domain.Notification
}

func cloneMap[V any](src map[string]V) map[string]V {
	dst := make(map[string]V, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (m *Memory) snapshot() memSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return memSnapshot{
		users:         cloneMap(m.users),
		clients:       cloneMap(m.clients),
		projects:      cloneMap(m.projects),
		tasks:         cloneMap(m.tasks),
		reviews:       cloneMap(m.reviews),
		feedback:      cloneMap(m.feedback),
		timeLogs:      cloneMap(m.timeLogs),
		channels:      cloneMap(m.channels),
		messages:      cloneMap(m.messages),
		files:         cloneMap(m.files),
		notifications: cloneMap(m.notifications),
	}
}

func (m *Memory) restore(s memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = s.users
	m.clients = s.clients
	m.projects = s.projects
	m.tasks = s.tasks
	m.reviews = s.reviews
	m.feedback = s.feedback
	m.timeLogs = s.timeLogs
	m.channels = s.channels
	m.messages = s.messages
	m.files = s.files
	m.notifications = s.notifications
}

func cloneIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}

type memUsers struct{ m *Memory }

func (r *memUsers) Create(ctx context.Context, user *domain.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, exists := r.m.users[user.ID]; exists {
		return fmt.Errorf("user %s already exists", user.ID)
	}
	r.m.users[user.ID] = *user
	return nil
}

func (r *memUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	user, ok := r.m.users[id]
	if !ok || user.IsDeleted {
		return nil, apperr.NotFound("user")
	}
	return &user, nil
}

func (r *memUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, user := range r.m.users {
		if user.Email == email && !user.IsDeleted {
			u := user
			return &u, nil
		}
	}
	return nil, apperr.NotFound("user")
}

func (r *memUsers) List(ctx context.Context) ([]domain.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	users := []domain.User{}
	for _, user := range r.m.users {
		if !user.IsDeleted {
			users = append(users, user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users, nil
}

type memClients struct{ m *Memory }

func (r *memClients) Create(ctx context.Context, client *domain.Client) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c := *client
	c.ContactIDs = cloneIDs(client.ContactIDs)
	r.m.clients[client.ID] = c
	return nil
}

func (r *memClients) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	client, ok := r.m.clients[id]
	if !ok || client.IsDeleted {
		return nil, apperr.NotFound("client")
	}
	return &client, nil
}

func (r *memClients) List(ctx context.Context, filter ClientFilter) ([]domain.Client, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	clients := []domain.Client{}
	for _, client := range r.m.clients {
		if client.IsDeleted {
			continue
		}
		if filter.ContactUserID != nil && !containsID(client.ContactIDs, *filter.ContactUserID) {
			continue
		}
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].Name < clients[j].Name })
	return clients, nil
}

func (r *memClients) Update(ctx context.Context, id string, update ClientUpdate) (*domain.Client, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	client, ok := r.m.clients[id]
	if !ok || client.IsDeleted {
		return nil, apperr.NotFound("client")
	}
	if update.Name != nil {
		client.Name = strings.TrimSpace(*update.Name)
		client.NameNormalized = strings.ToLower(client.Name)
	}
	if update.Domain != nil {
		lowered := strings.ToLower(*update.Domain)
		client.Domain = &lowered
	}
	if update.Stage != nil {
		client.Stage = *update.Stage
	}
	if update.Priority != nil {
		client.Priority = *update.Priority
	}
	if update.Notes != nil {
		client.Notes = update.Notes
	}
	client.UpdatedAt = time.Now().UTC()
	r.m.clients[id] = client
	return &client, nil
}

func (r *memClients) SoftDelete(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	client, ok := r.m.clients[id]
	if !ok || client.IsDeleted {
		return apperr.NotFound("client")
	}
	client.IsDeleted = true
	client.UpdatedAt = time.Now().UTC()
	r.m.clients[id] = client
	return nil
}

func (r *memClients) AddContact(ctx context.Context, clientID, userID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	client, ok := r.m.clients[clientID]
	if !ok || client.IsDeleted {
		return apperr.NotFound("client")
	}
	if !containsID(client.ContactIDs, userID) {
		client.ContactIDs = append(cloneIDs(client.ContactIDs), userID)
		client.UpdatedAt = time.Now().UTC()
		r.m.clients[clientID] = client
	}
	return nil
}

type memProjects struct{ m *Memory }

func (r *memProjects) Create(ctx context.Context, project *domain.Project) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	p := *project
	p.MemberIDs = cloneIDs(project.MemberIDs)
	r.m.projects[project.ID] = p
	return nil
}

func (r *memProjects) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	project, ok := r.m.projects[id]
	if !ok || project.IsDeleted {
		return nil, apperr.NotFound("project")
	}
	return &project, nil
}

func (r *memProjects) List(ctx context.Context, filter ProjectFilter) ([]domain.Project, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	projects := []domain.Project{}
	for _, project := range r.m.projects {
		if project.IsDeleted {
			continue
		}
		if filter.ClientID != nil && project.ClientID != *filter.ClientID {
			continue
		}
		if filter.MemberUserID != nil && !containsID(project.MemberIDs, *filter.MemberUserID) {
			continue
		}
		if filter.ContactUserID != nil {
			client, ok := r.m.clients[project.ClientID]
			if !ok || client.IsDeleted || !containsID(client.ContactIDs, *filter.ContactUserID) {
				continue
			}
		}
		projects = append(projects, project)
	}
	sort.Slice(projects, func(i, j int) bool {
		di, dj := projects[i].DueDate, projects[j].DueDate
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.Before(*dj)
		}
	})
	return projects, nil
}

func (r *memProjects) Update(ctx context.Context, id string, update ProjectUpdate) (*domain.Project, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	project, ok := r.m.projects[id]
	if !ok || project.IsDeleted {
		return nil, apperr.NotFound("project")
	}
	if update.Name != nil {
		project.Name = strings.TrimSpace(*update.Name)
	}
	if update.Description != nil {
		project.Description = update.Description
	}
	if update.Stage != nil {
		project.Stage = *update.Stage
	}
	if update.Priority != nil {
		project.Priority = *update.Priority
	}
	if update.DueDate != nil {
		project.DueDate = update.DueDate
	}
	project.UpdatedAt = time.Now().UTC()
	r.m.projects[id] = project
	return &project, nil
}

func (r *memProjects) SoftDelete(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	project, ok := r.m.projects[id]
	if !ok || project.IsDeleted {
		return apperr.NotFound("project")
	}
	project.IsDeleted = true
	project.UpdatedAt = time.Now().UTC()
	r.m.projects[id] = project
	return nil
}

func (r *memProjects) AddMember(ctx context.Context, projectID, userID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	project, ok := r.m.projects[projectID]
	if !ok || project.IsDeleted {
		return apperr.NotFound("project")
	}
	if !containsID(project.MemberIDs, userID) {
		project.MemberIDs = append(cloneIDs(project.MemberIDs), userID)
		project.UpdatedAt = time.Now().UTC()
		r.m.projects[projectID] = project
	}
	return nil
}

func (r *memProjects) AccessScope(ctx context.Context, projectID string) (domain.AccessScope, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	project, ok := r.m.projects[projectID]
	if !ok || project.IsDeleted {
		return domain.AccessScope{}, apperr.NotFound("project")
	}
	scope := domain.AccessScope{MemberIDs: cloneIDs(project.MemberIDs)}
	if client, ok := r.m.clients[project.ClientID]; ok {
		scope.ContactIDs = cloneIDs(client.ContactIDs)
	}
	return scope, nil
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
