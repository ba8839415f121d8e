package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/domain"
)

type pgTasks struct {
	q sqlx.ExtContext
}

func (r *pgTasks) Create(ctx context.Context, task *domain.Task) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO tasks (id, project_id, title, description, status, priority, due_date,
			estimate_hrs, order_index, assignee_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)`,
		task.ID, task.ProjectID, task.Title, task.Description, task.Status, task.Priority,
		task.DueDate, task.EstimateHrs, task.OrderIndex, task.AssigneeIDs, task.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *pgTasks) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	err := sqlx.GetContext(ctx, r.q, &task,
		`SELECT * FROM tasks WHERE id = $1 AND is_deleted = false`, id)
	if err != nil {
		return nil, notFoundOr(err, "task")
	}
	return &task, nil
}

func (r *pgTasks) List(ctx context.Context, filter TaskFilter) ([]domain.Task, error) {
	query := `SELECT t.* FROM tasks t WHERE t.is_deleted = false`
	args := []any{}
	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		query += fmt.Sprintf(" AND t.project_id = $%d", len(args))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND t.status = $%d", len(args))
	}
	if filter.ContactUserID != nil {
		args = append(args, *filter.ContactUserID)
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM projects p JOIN clients c ON c.id = p.client_id
			WHERE p.id = t.project_id AND $%d = ANY(c.contact_ids)
			AND p.is_deleted = false AND c.is_deleted = false)`, len(args))
	}
	if filter.MemberUserID != nil {
		args = append(args, *filter.MemberUserID)
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM projects p
			WHERE p.id = t.project_id AND $%d = ANY(p.member_ids) AND p.is_deleted = false)`, len(args))
	}
	query += " ORDER BY t.project_id ASC, t.order_index ASC"

	tasks := []domain.Task{}
	if err := sqlx.SelectContext(ctx, r.q, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("select tasks: %w", err)
	}
	return tasks, nil
}

func (r *pgTasks) Update(ctx context.Context, id string, update TaskUpdate) (*domain.Task, error) {
	var b setBuilder
	if update.Title != nil {
		b.add("title", strings.TrimSpace(*update.Title))
	}
	if update.Description != nil {
		b.add("description", *update.Description)
	}
	if update.Priority != nil {
		b.add("priority", *update.Priority)
	}
	if update.DueDate != nil {
		b.add("due_date", *update.DueDate)
	}
	if update.EstimateHrs != nil {
		b.add("estimate_hrs", *update.EstimateHrs)
	}
	if update.OrderIndex != nil {
		b.add("order_index", *update.OrderIndex)
	}
	if update.AssigneeIDs != nil {
		b.add("assignee_ids", pq.StringArray(update.AssigneeIDs))
	}
	if b.empty() {
		return r.GetByID(ctx, id)
	}
	b.add("updated_at", time.Now().UTC())
	b.args = append(b.args, id)

	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d AND is_deleted = false`, b.set(), len(b.args))
	res, err := r.q.ExecContext(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, apperr.NotFound("task")
	}
	return r.GetByID(ctx, id)
}

func (r *pgTasks) UpdateStatus(ctx context.Context, id string, expected, next domain.TaskStatus) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE tasks SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2 AND is_deleted = false`,
		id, expected, next, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	if affected == 0 {
		if _, gerr := r.GetByID(ctx, id); gerr != nil {
			return gerr
		}
		return apperr.Conflict(fmt.Sprintf("task %s no longer in %s", id, expected))
	}
	return nil
}

func (r *pgTasks) SoftDelete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE tasks SET is_deleted = true, updated_at = $2 WHERE id = $1 AND is_deleted = false`,
		id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("soft delete task: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperr.NotFound("task")
	}
	return nil
}

type pgReviews struct {
	q sqlx.ExtContext
}

func (r *pgReviews) Create(ctx context.Context, review *domain.ReviewSubmission) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO review_submissions (id, project_id, task_id, status, submitted_by_id,
			reviewer_id, notes, responded_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		review.ID, review.ProjectID, review.TaskID, review.Status, review.SubmittedByID,
		review.ReviewerID, review.Notes, review.RespondedAt, review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *pgReviews) GetByID(ctx context.Context, id string) (*domain.ReviewSubmission, error) {
	var review domain.ReviewSubmission
	err := sqlx.GetContext(ctx, r.q, &review,
		`SELECT * FROM review_submissions WHERE id = $1`, id)
	if err != nil {
		return nil, notFoundOr(err, "review")
	}
	return &review, nil
}

func (r *pgReviews) ListByTask(ctx context.Context, taskID string) ([]domain.ReviewSubmission, error) {
	reviews := []domain.ReviewSubmission{}
	err := sqlx.SelectContext(ctx, r.q, &reviews,
		`SELECT * FROM review_submissions WHERE task_id = $1 ORDER BY created_at DESC`, taskID)
	if err != nil {
		return nil, fmt.Errorf("select reviews: %w", err)
	}
	return reviews, nil
}

func (r *pgReviews) HasPending(ctx context.Context, taskID string) (bool, error) {
	var count int
	err := sqlx.GetContext(ctx, r.q, &count,
		`SELECT COUNT(*) FROM review_submissions WHERE task_id = $1 AND status = $2`,
		taskID, domain.ReviewStatusPending)
	if err != nil {
		return false, fmt.Errorf("count pending reviews: %w", err)
	}
	return count > 0, nil
}

func (r *pgReviews) Decide(ctx context.Context, id string, decision domain.ReviewStatus, reviewerID string, notes *string, at time.Time) (*domain.ReviewSubmission, error) {
	res, err := r.q.ExecContext(ctx, `
		UPDATE review_submissions
		SET status = $2, reviewer_id = $3, notes = COALESCE($4, notes), responded_at = $5, updated_at = $5
		WHERE id = $1 AND status = $6`,
		id, decision, reviewerID, notes, at, domain.ReviewStatusPending)
	if err != nil {
		return nil, fmt.Errorf("decide review: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("decide review: %w", err)
	}
	if affected == 0 {
		if _, gerr := r.GetByID(ctx, id); gerr != nil {
			return nil, gerr
		}
		return nil, apperr.AlreadyDecided(id)
	}
	return r.GetByID(ctx, id)
}
