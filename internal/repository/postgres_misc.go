package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/domain"
)

type pgFeedback struct {
	q sqlx.ExtContext
}

func (r *pgFeedback) Create(ctx context.Context, feedback *domain.Feedback) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO feedback (id, target_type, target_id, content, is_client_visible,
			author_id, client_id, project_id, task_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		feedback.ID, feedback.TargetType, feedback.TargetID, feedback.Content,
		feedback.IsClientVisible, feedback.AuthorID, feedback.ClientID,
		feedback.ProjectID, feedback.TaskID, feedback.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (r *pgFeedback) Search(ctx context.Context, filter FeedbackFilter) ([]domain.Feedback, error) {
	query := `SELECT * FROM feedback WHERE target_type = $1 AND target_id = $2`
	args := []any{filter.TargetType, filter.TargetID}
	if filter.VisibleOnly {
		query += " AND is_client_visible = true"
	}
	query += " ORDER BY created_at DESC"

	items := []domain.Feedback{}
	if err := sqlx.SelectContext(ctx, r.q, &items, query, args...); err != nil {
		return nil, fmt.Errorf("select feedback: %w", err)
	}
	return items, nil
}

type pgTimeLogs struct {
	q sqlx.ExtContext
}

func (r *pgTimeLogs) Create(ctx context.Context, log *domain.TimeLog) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO time_logs (id, target_type, target_id, project_id, task_id, member_id, hours, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		log.ID, log.TargetType, log.TargetID, log.ProjectID, log.TaskID,
		log.MemberID, log.Hours, log.Date, log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert time log: %w", err)
	}
	return nil
}

func (r *pgTimeLogs) List(ctx context.Context, filter TimeLogFilter) ([]domain.TimeLog, error) {
	query := `SELECT * FROM time_logs WHERE 1=1`
	args := []any{}
	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		query += fmt.Sprintf(" AND project_id = $%d", len(args))
	}
	if filter.MemberID != nil {
		args = append(args, *filter.MemberID)
		query += fmt.Sprintf(" AND member_id = $%d", len(args))
	}
	if filter.Start != nil {
		args = append(args, *filter.Start)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if filter.End != nil {
		args = append(args, *filter.End)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	query += " ORDER BY date DESC"

	logs := []domain.TimeLog{}
	if err := sqlx.SelectContext(ctx, r.q, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("select time logs: %w", err)
	}
	return logs, nil
}

type pgChannels struct {
	q sqlx.ExtContext
}

func (r *pgChannels) Create(ctx context.Context, channel *domain.Channel) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO channels (id, type, name, project_id, participant_ids, is_archived, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		channel.ID, channel.Type, channel.Name, channel.ProjectID,
		channel.ParticipantIDs, channel.IsArchived, channel.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert channel: %w", err)
	}
	return nil
}

func (r *pgChannels) GetByID(ctx context.Context, id string) (*domain.Channel, error) {
	var channel domain.Channel
	err := sqlx.GetContext(ctx, r.q, &channel,
		`SELECT * FROM channels WHERE id = $1 AND is_archived = false`, id)
	if err != nil {
		return nil, notFoundOr(err, "channel")
	}
	return &channel, nil
}

func (r *pgChannels) ListVisible(ctx context.Context, userID string, role domain.Role) ([]domain.Channel, error) {
	// GENERAL channels are open; the rest require participation or a
	// project scope matching the caller (contacts for clients, members
	// otherwise).
	scope := `$1 = ANY(p.member_ids)`
	if role == domain.RoleClient {
		scope = `EXISTS (SELECT 1 FROM clients c WHERE c.id = p.client_id AND $1 = ANY(c.contact_ids) AND c.is_deleted = false)`
	}
	query := fmt.Sprintf(`
		SELECT ch.* FROM channels ch
		WHERE ch.is_archived = false AND (
			ch.type = 'GENERAL'
			OR $1 = ANY(ch.participant_ids)
			OR (ch.type = 'PROJECT' AND EXISTS (
				SELECT 1 FROM projects p WHERE p.id = ch.project_id AND p.is_deleted = false AND %s))
		)
		ORDER BY ch.created_at ASC`, scope)

	channels := []domain.Channel{}
	if err := sqlx.SelectContext(ctx, r.q, &channels, query, userID); err != nil {
		return nil, fmt.Errorf("select channels: %w", err)
	}
	return channels, nil
}

func (r *pgChannels) CreateMessage(ctx context.Context, message *domain.Message) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO messages (id, channel_id, author_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		message.ID, message.ChannelID, message.AuthorID, message.Content, message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *pgChannels) ListMessages(ctx context.Context, channelID string) ([]domain.Message, error) {
	messages := []domain.Message{}
	err := sqlx.SelectContext(ctx, r.q, &messages,
		`SELECT * FROM messages WHERE channel_id = $1 ORDER BY created_at ASC`, channelID)
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	return messages, nil
}

type pgFiles struct {
	q sqlx.ExtContext
}

func (r *pgFiles) Create(ctx context.Context, file *domain.File) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO files (id, name, url, mime, size, version, client_id, project_id, uploader_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		file.ID, file.Name, file.URL, file.Mime, file.Size, file.Version,
		file.ClientID, file.ProjectID, file.UploaderID, file.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert file: %w", err)
	}
	return nil
}

func (r *pgFiles) List(ctx context.Context, filter FileFilter) ([]domain.File, error) {
	query := `SELECT * FROM files WHERE is_deleted = false`
	args := []any{}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		query += fmt.Sprintf(" AND client_id = $%d", len(args))
	}
	if filter.ProjectID != nil {
		args = append(args, *filter.ProjectID)
		query += fmt.Sprintf(" AND project_id = $%d", len(args))
	}
	query += " ORDER BY client_id ASC, project_id ASC, created_at DESC"

	files := []domain.File{}
	if err := sqlx.SelectContext(ctx, r.q, &files, query, args...); err != nil {
		return nil, fmt.Errorf("select files: %w", err)
	}
	return files, nil
}

func (r *pgFiles) NextVersion(ctx context.Context, name string, clientID, projectID *string) (int, error) {
	var version int
	err := sqlx.GetContext(ctx, r.q, &version, `
		SELECT COALESCE(MAX(version), 0) + 1 FROM files
		WHERE name = $1 AND client_id IS NOT DISTINCT FROM $2 AND project_id IS NOT DISTINCT FROM $3`,
		name, clientID, projectID)
	if err != nil {
		return 0, fmt.Errorf("next file version: %w", err)
	}
	return version, nil
}

func (r *pgFiles) SoftDelete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE files SET is_deleted = true WHERE id = $1 AND is_deleted = false`, id)
	if err != nil {
		return fmt.Errorf("soft delete file: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperr.NotFound("file")
	}
	return nil
}

type pgNotifications struct {
	q sqlx.ExtContext
}

func (r *pgNotifications) Create(ctx context.Context, notification *domain.Notification) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, payload, read_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		notification.ID, notification.UserID, notification.Type,
		notification.Payload, notification.ReadAt, notification.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *pgNotifications) CreateBatch(ctx context.Context, notifications []domain.Notification) error {
	for i := range notifications {
		if err := r.Create(ctx, &notifications[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *pgNotifications) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	notifications := []domain.Notification{}
	err := sqlx.SelectContext(ctx, r.q, &notifications,
		`SELECT * FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("select notifications: %w", err)
	}
	return notifications, nil
}

func (r *pgNotifications) MarkRead(ctx context.Context, userID string, ids []string, at time.Time) error {
	query := `UPDATE notifications SET read_at = $2 WHERE user_id = $1 AND read_at IS NULL`
	args := []any{userID, at}
	if len(ids) > 0 {
		args = append(args, pq.StringArray(ids))
		query += fmt.Sprintf(" AND id = ANY($%d)", len(args))
	}
	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}
