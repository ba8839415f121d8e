package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/domain"
	"github.com/agencyos/agencyos/internal/rbac"
	"github.com/agencyos/agencyos/internal/repository"
)

// TimeLogService records hours and rolls them up into weekly summaries.
type TimeLogService struct {
	store repository.Store
	rbac  *rbac.Table
}

func NewTimeLogService(store repository.Store, table *rbac.Table) *TimeLogService {
	return &TimeLogService{store: store, rbac: table}
}

type CreateTimeLogInput struct {
	TargetType string    `json:"targetType" binding:"required"`
	TargetID   string    `json:"targetId" binding:"required"`
	Hours      float64   `json:"hours" binding:"required"`
	Date       time.Time `json:"date" binding:"required"`
}

func (s *TimeLogService) Create(ctx context.Context, auth rbac.AuthContext, input CreateTimeLogInput) (*domain.TimeLog, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermTimeLogWrite); err != nil {
		return nil, err
	}
	targetType, err := domain.ParseTargetType(input.TargetType)
	if err != nil {
		return nil, apperr.Validation(err.Error())
	}
	if targetType == domain.TargetClient {
		return nil, apperr.Validation("time logs attach to projects or tasks")
	}
	if input.Hours <= 0 || input.Hours > 24 {
		return nil, apperr.Validation("hours must be between 0 and 24")
	}

	log := &domain.TimeLog{
		ID:         uuid.NewString(),
		TargetType: targetType,
		TargetID:   input.TargetID,
		MemberID:   auth.UserID,
		Hours:      input.Hours,
		Date:       input.Date.UTC(),
		CreatedAt:  time.Now().UTC(),
	}
	switch targetType {
	case domain.TargetProject:
		project, err := s.store.Projects().GetByID(ctx, input.TargetID)
		if err != nil {
			return nil, err
		}
		log.ProjectID = project.ID
	case domain.TargetTask:
		task, err := s.store.Tasks().GetByID(ctx, input.TargetID)
		if err != nil {
			return nil, err
		}
		log.ProjectID = task.ProjectID
		log.TaskID = &task.ID
	}

	if err := s.store.TimeLogs().Create(ctx, log); err != nil {
		return nil, apperr.Internal(err)
	}
	return log, nil
}

type TimeLogListFilter struct {
	ProjectID *string
	MemberID  *string
	Start     *time.Time
	End       *time.Time
}

func (s *TimeLogService) List(ctx context.Context, auth rbac.AuthContext, filter TimeLogListFilter) ([]domain.TimeLog, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermTimeLogRead); err != nil {
		return nil, err
	}
	repoFilter := repository.TimeLogFilter{
		ProjectID: filter.ProjectID,
		MemberID:  filter.MemberID,
		Start:     filter.Start,
		End:       filter.End,
	}
	// Developers read their own logs unless they scope by project.
	if auth.Role == domain.RoleDeveloper && filter.ProjectID == nil && filter.MemberID == nil {
		repoFilter.MemberID = &auth.UserID
	}
	return s.store.TimeLogs().List(ctx, repoFilter)
}

// WeeklySummary aggregates one member's hours for the week containing
// the given date. Weeks start on Monday.
type WeeklySummary struct {
	MemberID    string     `json:"memberId"`
	WeekStart   time.Time  `json:"weekStart"`
	WeekEnd     time.Time  `json:"weekEnd"`
	TotalHours  float64    `json:"totalHours"`
	CapacityHrs *float64   `json:"capacityHrs,omitempty"`
	Utilization *float64   `json:"utilization,omitempty"`
	Days        []DayTotal `json:"days"`
}

type DayTotal struct {
	Date  time.Time `json:"date"`
	Hours float64   `json:"hours"`
}

func (s *TimeLogService) WeeklySummary(ctx context.Context, auth rbac.AuthContext, memberID string, anchor time.Time) (*WeeklySummary, error) {
	if err := s.rbac.AssertPermission(auth, rbac.PermTimeLogRead); err != nil {
		return nil, err
	}
	if memberID == "" {
		memberID = auth.UserID
	}
	if memberID != auth.UserID && auth.Role != domain.RoleAdmin {
		return nil, apperr.Authorization("cannot read another member's summary")
	}
	member, err := s.store.Users().GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}

	start := WeekStart(anchor)
	end := start.AddDate(0, 0, 7).Add(-time.Nanosecond)
	logs, err := s.store.TimeLogs().List(ctx, repository.TimeLogFilter{
		MemberID: &memberID,
		Start:    &start,
		End:      &end,
	})
	if err != nil {
		return nil, err
	}

	byDay := map[time.Time]float64{}
	total := 0.0
	for _, log := range logs {
		day := log.Date.UTC().Truncate(24 * time.Hour)
		byDay[day] += log.Hours
		total += log.Hours
	}
	days := make([]DayTotal, 0, len(byDay))
	for day, hours := range byDay {
		days = append(days, DayTotal{Date: day, Hours: hours})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })

	summary := &WeeklySummary{
		MemberID:    memberID,
		WeekStart:   start,
		WeekEnd:     start.AddDate(0, 0, 6),
		TotalHours:  total,
		CapacityHrs: member.CapacityHrsPerWeek,
		Days:        days,
	}
	if member.CapacityHrsPerWeek != nil && *member.CapacityHrsPerWeek > 0 {
		utilization := total / *member.CapacityHrsPerWeek
		summary.Utilization = &utilization
	}
	return summary, nil
}

// WeekStart truncates to the Monday 00:00 UTC of the week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := t.Truncate(24 * time.Hour)
	weekday := int(day.Weekday())
	// time.Weekday counts Sunday as 0.
	offset := (weekday + 6) % 7
	return day.AddDate(0, 0, -offset)
}
