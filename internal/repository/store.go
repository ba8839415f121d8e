// Package repository defines the entity store contract and its two
// implementations: Postgres (durable) and memory (dev/tests). Both
// enforce soft-delete filtering and compare-and-swap status updates so
// racing transitions surface Conflict instead of silently double
// applying.
package repository

import (
	"context"
	"time"

	"github.com/agencyos/agencyos/internal/domain"
)

// Store aggregates per-entity repositories. InTx yields a Store whose
// writes commit or roll back as a unit; the review-decision/task-status
// pair must always go through it.
type Store interface {
	Users() UserRepository
	Clients() ClientRepository
	Projects() ProjectRepository
	Tasks() TaskRepository
	Reviews() ReviewRepository
	Feedback() FeedbackRepository
	TimeLogs() TimeLogRepository
	Channels() ChannelRepository
	Files() FileRepository
	Notifications() NotificationRepository
	InTx(ctx context.Context, fn func(Store) error) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// ClientUpdate carries partial updates; nil fields are left unchanged.
type ClientUpdate struct {
	Name     *string
	Domain   *string
	Stage    *domain.ClientStage
	Priority *domain.Priority
	Notes    *string
}

type ClientFilter struct {
	// ContactUserID narrows results to clients listing the user as a contact.
	ContactUserID *string
}

type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	List(ctx context.Context, filter ClientFilter) ([]domain.Client, error)
	Update(ctx context.Context, id string, update ClientUpdate) (*domain.Client, error)
	SoftDelete(ctx context.Context, id string) error
	AddContact(ctx context.Context, clientID, userID string) error
}

type ProjectUpdate struct {
	Name        *string
	Description *string
	Stage       *domain.ProjectStage
	Priority    *domain.Priority
	DueDate     *time.Time
}

type ProjectFilter struct {
	ClientID      *string
	ContactUserID *string
	MemberUserID  *string
}

type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, filter ProjectFilter) ([]domain.Project, error)
	Update(ctx context.Context, id string, update ProjectUpdate) (*domain.Project, error)
	SoftDelete(ctx context.Context, id string) error
	AddMember(ctx context.Context, projectID, userID string) error
	// AccessScope loads the membership data the access-control engine
	// needs: the project's member ids and its client's contact ids.
	AccessScope(ctx context.Context, projectID string) (domain.AccessScope, error)
}

// TaskUpdate excludes status on purpose: status changes go through
// UpdateStatus so every transition is a compare-and-swap.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *domain.Priority
	DueDate     *time.Time
	EstimateHrs *float64
	OrderIndex  *int
	AssigneeIDs []string
}

type TaskFilter struct {
	ProjectID     *string
	Status        *domain.TaskStatus
	ContactUserID *string
	MemberUserID  *string
}

type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Update(ctx context.Context, id string, update TaskUpdate) (*domain.Task, error)
	// UpdateStatus applies next only when the row still holds expected;
	// a lost race returns Conflict, a missing row NotFound.
	UpdateStatus(ctx context.Context, id string, expected, next domain.TaskStatus) error
	SoftDelete(ctx context.Context, id string) error
}

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.ReviewSubmission) error
	GetByID(ctx context.Context, id string) (*domain.ReviewSubmission, error)
	ListByTask(ctx context.Context, taskID string) ([]domain.ReviewSubmission, error)
	// HasPending reports whether the task already has an active review.
	HasPending(ctx context.Context, taskID string) (bool, error)
	// Decide moves a PENDING review to its decision; deciding a review
	// that is no longer PENDING returns AlreadyDecided.
	Decide(ctx context.Context, id string, decision domain.ReviewStatus, reviewerID string, notes *string, at time.Time) (*domain.ReviewSubmission, error)
}

type FeedbackFilter struct {
	TargetType  domain.TargetType
	TargetID    string
	VisibleOnly bool
}

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) error
	Search(ctx context.Context, filter FeedbackFilter) ([]domain.Feedback, error)
}

type TimeLogFilter struct {
	ProjectID *string
	MemberID  *string
	Start     *time.Time
	End       *time.Time
}

type TimeLogRepository interface {
	Create(ctx context.Context, log *domain.TimeLog) error
	List(ctx context.Context, filter TimeLogFilter) ([]domain.TimeLog, error)
}

type ChannelRepository interface {
	Create(ctx context.Context, channel *domain.Channel) error
	GetByID(ctx context.Context, id string) (*domain.Channel, error)
	// ListVisible returns unarchived channels the user may see: every
	// GENERAL channel, channels they participate in, and PROJECT
	// channels within their membership (or contact, for clients) scope.
	ListVisible(ctx context.Context, userID string, role domain.Role) ([]domain.Channel, error)
	CreateMessage(ctx context.Context, message *domain.Message) error
	ListMessages(ctx context.Context, channelID string) ([]domain.Message, error)
}

type FileFilter struct {
	ClientID  *string
	ProjectID *string
}

type FileRepository interface {
	Create(ctx context.Context, file *domain.File) error
	List(ctx context.Context, filter FileFilter) ([]domain.File, error)
	// NextVersion returns 1 + the highest stored version for the same
	// name under the same client/project, or 1 when none exists.
	NextVersion(ctx context.Context, name string, clientID, projectID *string) (int, error)
	SoftDelete(ctx context.Context, id string) error
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
	CreateBatch(ctx context.Context, notifications []domain.Notification) error
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID string, ids []string, at time.Time) error
}
