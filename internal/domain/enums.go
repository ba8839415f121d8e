package domain

import "fmt"

// Role identifies the single access-control axis besides membership.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleDeveloper Role = "DEVELOPER"
	RoleClient    Role = "CLIENT"
)

// ParseRole rejects unknown role values at the boundary.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleDeveloper, RoleClient:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// TaskStatus is the canonical five-state task lifecycle.
type TaskStatus string

const (
	TaskStatusTodo    TaskStatus = "TODO"
	TaskStatusDoing   TaskStatus = "DOING"
	TaskStatusReview  TaskStatus = "REVIEW"
	TaskStatusDone    TaskStatus = "DONE"
	TaskStatusBlocked TaskStatus = "BLOCKED"
)

func ParseTaskStatus(s string) (TaskStatus, error) {
	switch TaskStatus(s) {
	case TaskStatusTodo, TaskStatusDoing, TaskStatusReview, TaskStatusDone, TaskStatusBlocked:
		return TaskStatus(s), nil
	}
	return "", fmt.Errorf("unknown task status %q", s)
}

// ReviewStatus is the canonical three-state review lifecycle. PENDING is
// the only state awaiting a decision; the other two are terminal.
type ReviewStatus string

const (
	ReviewStatusPending          ReviewStatus = "PENDING"
	ReviewStatusApproved         ReviewStatus = "APPROVED"
	ReviewStatusChangesRequested ReviewStatus = "CHANGES_REQUESTED"
)

func ParseReviewStatus(s string) (ReviewStatus, error) {
	switch ReviewStatus(s) {
	case ReviewStatusPending, ReviewStatusApproved, ReviewStatusChangesRequested:
		return ReviewStatus(s), nil
	}
	return "", fmt.Errorf("unknown review status %q", s)
}

// Priority applies to clients, projects, and tasks alike.
type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return Priority(s), nil
	}
	return "", fmt.Errorf("unknown priority %q", s)
}

// ClientStage tracks a client account through the agency funnel.
type ClientStage string

const (
	ClientStageLead       ClientStage = "LEAD"
	ClientStageOnboarding ClientStage = "ONBOARDING"
	ClientStageActive     ClientStage = "ACTIVE"
	ClientStagePaused     ClientStage = "PAUSED"
	ClientStageArchived   ClientStage = "ARCHIVED"
)

func ParseClientStage(s string) (ClientStage, error) {
	switch ClientStage(s) {
	case ClientStageLead, ClientStageOnboarding, ClientStageActive, ClientStagePaused, ClientStageArchived:
		return ClientStage(s), nil
	}
	return "", fmt.Errorf("unknown client stage %q", s)
}

// ProjectStage tracks project delivery phases.
type ProjectStage string

const (
	ProjectStageDiscovery   ProjectStage = "DISCOVERY"
	ProjectStageDesign      ProjectStage = "DESIGN"
	ProjectStageBuild       ProjectStage = "BUILD"
	ProjectStageQA          ProjectStage = "QA"
	ProjectStageLaunch      ProjectStage = "LAUNCH"
	ProjectStageMaintenance ProjectStage = "MAINTENANCE"
)

func ParseProjectStage(s string) (ProjectStage, error) {
	switch ProjectStage(s) {
	case ProjectStageDiscovery, ProjectStageDesign, ProjectStageBuild,
		ProjectStageQA, ProjectStageLaunch, ProjectStageMaintenance:
		return ProjectStage(s), nil
	}
	return "", fmt.Errorf("unknown project stage %q", s)
}

// ChannelType determines who may read and post in a chat channel.
type ChannelType string

const (
	ChannelTypeGeneral ChannelType = "GENERAL"
	ChannelTypeProject ChannelType = "PROJECT"
	ChannelTypeDirect  ChannelType = "DIRECT"
)

func ParseChannelType(s string) (ChannelType, error) {
	switch ChannelType(s) {
	case ChannelTypeGeneral, ChannelTypeProject, ChannelTypeDirect:
		return ChannelType(s), nil
	}
	return "", fmt.Errorf("unknown channel type %q", s)
}

// TargetType scopes feedback and time logs to an owning entity.
type TargetType string

const (
	TargetClient  TargetType = "CLIENT"
	TargetProject TargetType = "PROJECT"
	TargetTask    TargetType = "TASK"
)

func ParseTargetType(s string) (TargetType, error) {
	switch TargetType(s) {
	case TargetClient, TargetProject, TargetTask:
		return TargetType(s), nil
	}
	return "", fmt.Errorf("unknown target type %q", s)
}

// NotificationType tags queued notification records.
type NotificationType string

const (
	NotificationReviewStatus  NotificationType = "REVIEW_STATUS"
	NotificationTaskAssigned  NotificationType = "TASK_ASSIGNED"
	NotificationChatMention   NotificationType = "CHAT_MENTION"
	NotificationCalendarEvent NotificationType = "CALENDAR_EVENT"
)
