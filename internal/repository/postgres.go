package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/domain"
)

// Postgres implements Store over sqlx. A Postgres created by InTx shares
// one transaction across all its repositories.
type Postgres struct {
	q  sqlx.ExtContext
	db *sqlx.DB // nil when running inside a transaction
}

func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{q: db, db: db}
}

func (p *Postgres) Users() UserRepository                 { return &pgUsers{q: p.q} }
func (p *Postgres) Clients() ClientRepository             { return &pgClients{q: p.q} }
func (p *Postgres) Projects() ProjectRepository           { return &pgProjects{q: p.q} }
func (p *Postgres) Tasks() TaskRepository                 { return &pgTasks{q: p.q} }
func (p *Postgres) Reviews() ReviewRepository             { return &pgReviews{q: p.q} }
func (p *Postgres) Feedback() FeedbackRepository          { return &pgFeedback{q: p.q} }
func (p *Postgres) TimeLogs() TimeLogRepository           { return &pgTimeLogs{q: p.q} }
func (p *Postgres) Channels() ChannelRepository           { return &pgChannels{q: p.q} }
func (p *Postgres) Files() FileRepository                 { return &pgFiles{q: p.q} }
func (p *Postgres) Notifications() NotificationRepository { return &pgNotifications{q: p.q} }

// InTx runs fn inside a database transaction. Nested calls reuse the
// enclosing transaction.
func (p *Postgres) InTx(ctx context.Context, fn func(Store) error) error {
	if p.db == nil {
		return fn(p)
	}
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&Postgres{q: tx}); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("%w: rollback: %v", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// setBuilder accumulates dynamic UPDATE clauses.
type setBuilder struct {
	clauses []string
	args    []any
}

func (b *setBuilder) add(column string, value any) {
	b.args = append(b.args, value)
	b.clauses = append(b.clauses, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

func (b *setBuilder) empty() bool { return len(b.clauses) == 0 }

func (b *setBuilder) set() string { return strings.Join(b.clauses, ", ") }

func notFoundOr(err error, resource string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(resource)
	}
	return err
}

type pgUsers struct {
	q sqlx.ExtContext
}

func (r *pgUsers) Create(ctx context.Context, user *domain.User) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO users (id, email, name, role, password_hash, capacity_hrs_per_week, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)`,
		user.ID, user.Email, user.Name, user.Role, user.PasswordHash, user.CapacityHrsPerWeek, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *pgUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	err := sqlx.GetContext(ctx, r.q, &user,
		`SELECT * FROM users WHERE id = $1 AND is_deleted = false`, id)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

func (r *pgUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := sqlx.GetContext(ctx, r.q, &user,
		`SELECT * FROM users WHERE email = $1 AND is_deleted = false`, email)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

func (r *pgUsers) List(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	err := sqlx.SelectContext(ctx, r.q, &users,
		`SELECT * FROM users WHERE is_deleted = false ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	return users, nil
}

type pgClients struct {
	q sqlx.ExtContext
}

func (r *pgClients) Create(ctx context.Context, client *domain.Client) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO clients (id, name, name_normalized, domain, stage, priority, notes, contact_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		client.ID, client.Name, client.NameNormalized, client.Domain, client.Stage,
		client.Priority, client.Notes, client.ContactIDs, client.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert client: %w", err)
	}
	return nil
}

func (r *pgClients) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	var client domain.Client
	err := sqlx.GetContext(ctx, r.q, &client,
		`SELECT * FROM clients WHERE id = $1 AND is_deleted = false`, id)
	if err != nil {
		return nil, notFoundOr(err, "client")
	}
	return &client, nil
}

func (r *pgClients) List(ctx context.Context, filter ClientFilter) ([]domain.Client, error) {
	query := `SELECT * FROM clients WHERE is_deleted = false`
	args := []any{}
	if filter.ContactUserID != nil {
		args = append(args, *filter.ContactUserID)
		query += fmt.Sprintf(" AND $%d = ANY(contact_ids)", len(args))
	}
	query += " ORDER BY name ASC"

	clients := []domain.Client{}
	if err := sqlx.SelectContext(ctx, r.q, &clients, query, args...); err != nil {
		return nil, fmt.Errorf("select clients: %w", err)
	}
	return clients, nil
}

func (r *pgClients) Update(ctx context.Context, id string, update ClientUpdate) (*domain.Client, error) {
	var b setBuilder
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		b.add("name", name)
		b.add("name_normalized", strings.ToLower(name))
	}
	if update.Domain != nil {
		b.add("domain", strings.ToLower(*update.Domain))
	}
	if update.Stage != nil {
		b.add("stage", *update.Stage)
	}
	if update.Priority != nil {
		b.add("priority", *update.Priority)
	}
	if update.Notes != nil {
		b.add("notes", *update.Notes)
	}
	if b.empty() {
		return (&pgClients{q: r.q}).GetByID(ctx, id)
	}
	b.add("updated_at", time.Now().UTC())
	b.args = append(b.args, id)

	query := fmt.Sprintf(`UPDATE clients SET %s WHERE id = $%d AND is_deleted = false`, b.set(), len(b.args))
	res, err := r.q.ExecContext(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("update client: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, apperr.NotFound("client")
	}
	return r.GetByID(ctx, id)
}

func (r *pgClients) SoftDelete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE clients SET is_deleted = true, updated_at = $2 WHERE id = $1 AND is_deleted = false`,
		id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("soft delete client: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperr.NotFound("client")
	}
	return nil
}

func (r *pgClients) AddContact(ctx context.Context, clientID, userID string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE clients SET contact_ids = array_append(contact_ids, $2), updated_at = $3
		WHERE id = $1 AND is_deleted = false AND NOT ($2 = ANY(contact_ids))`,
		clientID, userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("add client contact: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		// Either missing or already a contact; distinguish for the caller.
		if _, gerr := r.GetByID(ctx, clientID); gerr != nil {
			return gerr
		}
	}
	return nil
}

type pgProjects struct {
	q sqlx.ExtContext
}

func (r *pgProjects) Create(ctx context.Context, project *domain.Project) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO projects (id, client_id, name, description, stage, priority, due_date, member_ids, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		project.ID, project.ClientID, project.Name, project.Description, project.Stage,
		project.Priority, project.DueDate, project.MemberIDs, project.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r *pgProjects) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	var project domain.Project
	err := sqlx.GetContext(ctx, r.q, &project,
		`SELECT * FROM projects WHERE id = $1 AND is_deleted = false`, id)
	if err != nil {
		return nil, notFoundOr(err, "project")
	}
	return &project, nil
}

func (r *pgProjects) List(ctx context.Context, filter ProjectFilter) ([]domain.Project, error) {
	query := `SELECT p.* FROM projects p WHERE p.is_deleted = false`
	args := []any{}
	if filter.ClientID != nil {
		args = append(args, *filter.ClientID)
		query += fmt.Sprintf(" AND p.client_id = $%d", len(args))
	}
	if filter.ContactUserID != nil {
		args = append(args, *filter.ContactUserID)
		query += fmt.Sprintf(` AND EXISTS (
			SELECT 1 FROM clients c WHERE c.id = p.client_id AND $%d = ANY(c.contact_ids) AND c.is_deleted = false)`, len(args))
	}
	if filter.MemberUserID != nil {
		args = append(args, *filter.MemberUserID)
		query += fmt.Sprintf(" AND $%d = ANY(p.member_ids)", len(args))
	}
	query += " ORDER BY p.due_date ASC NULLS LAST"

	projects := []domain.Project{}
	if err := sqlx.SelectContext(ctx, r.q, &projects, query, args...); err != nil {
		return nil, fmt.Errorf("select projects: %w", err)
	}
	return projects, nil
}

func (r *pgProjects) Update(ctx context.Context, id string, update ProjectUpdate) (*domain.Project, error) {
	var b setBuilder
	if update.Name != nil {
		b.add("name", strings.TrimSpace(*update.Name))
	}
	if update.Description != nil {
		b.add("description", *update.Description)
	}
	if update.Stage != nil {
		b.add("stage", *update.Stage)
	}
	if update.Priority != nil {
		b.add("priority", *update.Priority)
	}
	if update.DueDate != nil {
		b.add("due_date", *update.DueDate)
	}
	if b.empty() {
		return r.GetByID(ctx, id)
	}
	b.add("updated_at", time.Now().UTC())
	b.args = append(b.args, id)

	query := fmt.Sprintf(`UPDATE projects SET %s WHERE id = $%d AND is_deleted = false`, b.set(), len(b.args))
	res, err := r.q.ExecContext(ctx, query, b.args...)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return nil, apperr.NotFound("project")
	}
	return r.GetByID(ctx, id)
}

func (r *pgProjects) SoftDelete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE projects SET is_deleted = true, updated_at = $2 WHERE id = $1 AND is_deleted = false`,
		id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("soft delete project: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return apperr.NotFound("project")
	}
	return nil
}

func (r *pgProjects) AddMember(ctx context.Context, projectID, userID string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE projects SET member_ids = array_append(member_ids, $2), updated_at = $3
		WHERE id = $1 AND is_deleted = false AND NOT ($2 = ANY(member_ids))`,
		projectID, userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("add project member: %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		if _, gerr := r.GetByID(ctx, projectID); gerr != nil {
			return gerr
		}
	}
	return nil
}

func (r *pgProjects) AccessScope(ctx context.Context, projectID string) (domain.AccessScope, error) {
	var row struct {
		MemberIDs  pq.StringArray `db:"member_ids"`
		ContactIDs pq.StringArray `db:"contact_ids"`
	}
	err := sqlx.GetContext(ctx, r.q, &row, `
		SELECT p.member_ids, c.contact_ids
		FROM projects p
		JOIN clients c ON c.id = p.client_id
		WHERE p.id = $1 AND p.is_deleted = false`, projectID)
	if err != nil {
		return domain.AccessScope{}, notFoundOr(err, "project")
	}
	return domain.AccessScope{MemberIDs: row.MemberIDs, ContactIDs: row.ContactIDs}, nil
}
