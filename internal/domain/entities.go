package domain

import (
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// User is an authenticated account. Role is immutable per session.
type User struct {
	ID                 string     `db:"id" json:"id"`
	Email              string     `db:"email" json:"email"`
	Name               string     `db:"name" json:"name"`
	Role               Role       `db:"role" json:"role"`
	PasswordHash       string     `db:"password_hash" json:"-"`
	CapacityHrsPerWeek *float64   `db:"capacity_hrs_per_week" json:"capacityHrsPerWeek,omitempty"`
	IsDeleted          bool       `db:"is_deleted" json:"-"`
	CreatedAt          time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updatedAt"`
	DeletedAt          *time.Time `db:"deleted_at" json:"-"`
}

// Client is an agency account. CLIENT-role users reach it only by being
// listed as a contact.
type Client struct {
	ID             string         `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	NameNormalized string         `db:"name_normalized" json:"-"`
	Domain         *string        `db:"domain" json:"domain,omitempty"`
	Stage          ClientStage    `db:"stage" json:"stage"`
	Priority       Priority       `db:"priority" json:"priority"`
	Notes          *string        `db:"notes" json:"notes,omitempty"`
	ContactIDs     pq.StringArray `db:"contact_ids" json:"contactIds"`
	IsDeleted      bool           `db:"is_deleted" json:"-"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updatedAt"`
}

// Project belongs to a Client; developers and admins attach via membership.
type Project struct {
	ID          string         `db:"id" json:"id"`
	ClientID    string         `db:"client_id" json:"clientId"`
	Name        string         `db:"name" json:"name"`
	Description *string        `db:"description" json:"description,omitempty"`
	Stage       ProjectStage   `db:"stage" json:"stage"`
	Priority    Priority       `db:"priority" json:"priority"`
	DueDate     *time.Time     `db:"due_date" json:"dueDate,omitempty"`
	MemberIDs   pq.StringArray `db:"member_ids" json:"memberIds"`
	IsDeleted   bool           `db:"is_deleted" json:"-"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

// Task status changes only through the workflow transition table.
type Task struct {
	ID          string         `db:"id" json:"id"`
	ProjectID   string         `db:"project_id" json:"projectId"`
	Title       string         `db:"title" json:"title"`
	Description *string        `db:"description" json:"description,omitempty"`
	Status      TaskStatus     `db:"status" json:"status"`
	Priority    Priority       `db:"priority" json:"priority"`
	DueDate     *time.Time     `db:"due_date" json:"dueDate,omitempty"`
	EstimateHrs *float64       `db:"estimate_hrs" json:"estimateHrs,omitempty"`
	OrderIndex  int            `db:"order_index" json:"orderIndex"`
	AssigneeIDs pq.StringArray `db:"assignee_ids" json:"assigneeIds"`
	IsDeleted   bool           `db:"is_deleted" json:"-"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

// ReviewSubmission asks for a decision on a task that reached REVIEW.
type ReviewSubmission struct {
	ID            string       `db:"id" json:"id"`
	ProjectID     string       `db:"project_id" json:"projectId"`
	TaskID        string       `db:"task_id" json:"taskId"`
	Status        ReviewStatus `db:"status" json:"status"`
	SubmittedByID string       `db:"submitted_by_id" json:"submittedById"`
	ReviewerID    *string      `db:"reviewer_id" json:"reviewerId,omitempty"`
	Notes         *string      `db:"notes" json:"notes,omitempty"`
	RespondedAt   *time.Time   `db:"responded_at" json:"respondedAt,omitempty"`
	CreatedAt     time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updatedAt"`
}

// Feedback is free-form commentary on a client, project, or task. The
// owning client/project/task ids are denormalized for filtering.
type Feedback struct {
	ID              string     `db:"id" json:"id"`
	TargetType      TargetType `db:"target_type" json:"targetType"`
	TargetID        string     `db:"target_id" json:"targetId"`
	Content         string     `db:"content" json:"content"`
	IsClientVisible bool       `db:"is_client_visible" json:"isClientVisible"`
	AuthorID        string     `db:"author_id" json:"authorId"`
	ClientID        *string    `db:"client_id" json:"clientId,omitempty"`
	ProjectID       *string    `db:"project_id" json:"projectId,omitempty"`
	TaskID          *string    `db:"task_id" json:"taskId,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"createdAt"`
}

// TimeLog records hours a member spent on a project or task.
type TimeLog struct {
	ID         string     `db:"id" json:"id"`
	TargetType TargetType `db:"target_type" json:"targetType"`
	TargetID   string     `db:"target_id" json:"targetId"`
	ProjectID  string     `db:"project_id" json:"projectId"`
	TaskID     *string    `db:"task_id" json:"taskId,omitempty"`
	MemberID   string     `db:"member_id" json:"memberId"`
	Hours      float64    `db:"hours" json:"hours"`
	Date       time.Time  `db:"date" json:"date"`
	CreatedAt  time.Time  `db:"created_at" json:"createdAt"`
}

// Channel is a chat room. GENERAL channels are open to everyone; PROJECT
// channels inherit the project's access scope; DIRECT channels admit
// participants only.
type Channel struct {
	ID             string         `db:"id" json:"id"`
	Type           ChannelType    `db:"type" json:"type"`
	Name           string         `db:"name" json:"name"`
	ProjectID      *string        `db:"project_id" json:"projectId,omitempty"`
	ParticipantIDs pq.StringArray `db:"participant_ids" json:"participantIds"`
	IsArchived     bool           `db:"is_archived" json:"isArchived"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
}

// Message is a single chat entry.
type Message struct {
	ID        string    `db:"id" json:"id"`
	ChannelID string    `db:"channel_id" json:"channelId"`
	AuthorID  string    `db:"author_id" json:"authorId"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// File is a stored document record; bytes live in the blob store.
type File struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	URL        string    `db:"url" json:"url"`
	Mime       string    `db:"mime" json:"mime"`
	Size       int64     `db:"size" json:"size"`
	Version    int       `db:"version" json:"version"`
	ClientID   *string   `db:"client_id" json:"clientId,omitempty"`
	ProjectID  *string   `db:"project_id" json:"projectId,omitempty"`
	UploaderID string    `db:"uploader_id" json:"uploaderId"`
	IsDeleted  bool      `db:"is_deleted" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// Notification is a queued, at-most-once record for a single recipient.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"userId"`
	Type      NotificationType `db:"type" json:"type"`
	Payload   types.JSONText   `db:"payload" json:"payload"`
	ReadAt    *time.Time       `db:"read_at" json:"readAt,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
}

// AccessScope carries the membership data the access-control engine
// needs to decide on a project-rooted resource.
type AccessScope struct {
	MemberIDs  []string
	ContactIDs []string
}
