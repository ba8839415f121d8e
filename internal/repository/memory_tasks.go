package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/domain"
)

type memTasks struct{ m *Memory }

func (r *memTasks) Create(ctx context.Context, task *domain.Task) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t := *task
	t.AssigneeIDs = cloneIDs(task.AssigneeIDs)
	t.UpdatedAt = task.CreatedAt
	r.m.tasks[task.ID] = t
	return nil
}

func (r *memTasks) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	task, ok := r.m.tasks[id]
	if !ok || task.IsDeleted {
		return nil, apperr.NotFound("task")
	}
	return &task, nil
}

func (r *memTasks) List(ctx context.Context, filter TaskFilter) ([]domain.Task, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	tasks := []domain.Task{}
	for _, task := range r.m.tasks {
		if task.IsDeleted {
			continue
		}
		if filter.ProjectID != nil && task.ProjectID != *filter.ProjectID {
			continue
		}
		if filter.Status != nil && task.Status != *filter.Status {
			continue
		}
		if filter.ContactUserID != nil && !r.contactScoped(task.ProjectID, *filter.ContactUserID) {
			continue
		}
		if filter.MemberUserID != nil && !r.memberScoped(task.ProjectID, *filter.MemberUserID) {
			continue
		}
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].ProjectID != tasks[j].ProjectID {
			return tasks[i].ProjectID < tasks[j].ProjectID
		}
		return tasks[i].OrderIndex < tasks[j].OrderIndex
	})
	return tasks, nil
}

func (r *memTasks) contactScoped(projectID, userID string) bool {
	project, ok := r.m.projects[projectID]
	if !ok || project.IsDeleted {
		return false
	}
	client, ok := r.m.clients[project.ClientID]
	return ok && !client.IsDeleted && containsID(client.ContactIDs, userID)
}

func (r *memTasks) memberScoped(projectID, userID string) bool {
	project, ok := r.m.projects[projectID]
	return ok && !project.IsDeleted && containsID(project.MemberIDs, userID)
}

func (r *memTasks) Update(ctx context.Context, id string, update TaskUpdate) (*domain.Task, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	task, ok := r.m.tasks[id]
	if !ok || task.IsDeleted {
		return nil, apperr.NotFound("task")
	}
	if update.Title != nil {
		task.Title = strings.TrimSpace(*update.Title)
	}
	if update.Description != nil {
		task.Description = update.Description
	}
	if update.Priority != nil {
		task.Priority = *update.Priority
	}
	if update.DueDate != nil {
		task.DueDate = update.DueDate
	}
	if update.EstimateHrs != nil {
		task.EstimateHrs = update.EstimateHrs
	}
	if update.OrderIndex != nil {
		task.OrderIndex = *update.OrderIndex
	}
	if update.AssigneeIDs != nil {
		task.AssigneeIDs = cloneIDs(update.AssigneeIDs)
	}
	task.UpdatedAt = time.Now().UTC()
	r.m.tasks[id] = task
	return &task, nil
}

func (r *memTasks) UpdateStatus(ctx context.Context, id string, expected, next domain.TaskStatus) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	task, ok := r.m.tasks[id]
	if !ok || task.IsDeleted {
		return apperr.NotFound("task")
	}
	if task.Status != expected {
		return apperr.Conflict(fmt.Sprintf("task %s no longer in %s", id, expected))
	}
	task.Status = next
	task.UpdatedAt = time.Now().UTC()
	r.m.tasks[id] = task
	return nil
}

func (r *memTasks) SoftDelete(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	task, ok := r.m.tasks[id]
	if !ok || task.IsDeleted {
		return apperr.NotFound("task")
	}
	task.IsDeleted = true
	task.UpdatedAt = time.Now().UTC()
	r.m.tasks[id] = task
	return nil
}

type memReviews struct{ m *Memory }

func (r *memReviews) Create(ctx context.Context, review *domain.ReviewSubmission) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	rev := *review
	rev.UpdatedAt = review.CreatedAt
	r.m.reviews[review.ID] = rev
	return nil
}

func (r *memReviews) GetByID(ctx context.Context, id string) (*domain.ReviewSubmission, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	review, ok := r.m.reviews[id]
	if !ok {
		return nil, apperr.NotFound("review")
	}
	return &review, nil
}

func (r *memReviews) ListByTask(ctx context.Context, taskID string) ([]domain.ReviewSubmission, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	reviews := []domain.ReviewSubmission{}
	for _, review := range r.m.reviews {
		if review.TaskID == taskID {
			reviews = append(reviews, review)
		}
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].CreatedAt.After(reviews[j].CreatedAt) })
	return reviews, nil
}

func (r *memReviews) HasPending(ctx context.Context, taskID string) (bool, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	for _, review := range r.m.reviews {
		if review.TaskID == taskID && review.Status == domain.ReviewStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *memReviews) Decide(ctx context.Context, id string, decision domain.ReviewStatus, reviewerID string, notes *string, at time.Time) (*domain.ReviewSubmission, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	review, ok := r.m.reviews[id]
	if !ok {
		return nil, apperr.NotFound("review")
	}
	if review.Status != domain.ReviewStatusPending {
		return nil, apperr.AlreadyDecided(id)
	}
	review.Status = decision
	review.ReviewerID = &reviewerID
	if notes != nil {
		review.Notes = notes
	}
	review.RespondedAt = &at
	review.UpdatedAt = at
	r.m.reviews[id] = review
	return &review, nil
}
