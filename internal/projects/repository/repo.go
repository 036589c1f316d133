package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Kenz1481/web-deployment-website/internal/projects/domain"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

const projectColumns = `id, project_name, description, repo_url, file_path, subdomain, status,
	deployment_url, vercel_project_id, vercel_deployment_id,
	github_repo_name, github_repo_id, github_repo_url, created_at, updated_at`

// ProjectRepository provides persistence operations for projects, their
// log sequence and their reviews.
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts p together with any log entries it already carries.
// ID, status and timestamps are filled in when empty.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	if p.Name == "" {
		return domain.ErrNameRequired
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = domain.StatusPendingSetup
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	const q = `
		INSERT INTO projects (id, project_name, description, repo_url, file_path, subdomain, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`
	err = tx.QueryRowContext(ctx, q,
		p.ID, p.Name, p.Description, p.RepoURL, p.FilePath, nullString(p.Subdomain), string(p.Status),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return domain.ErrSubdomainTaken
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	for _, entry := range p.Logs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO project_logs (project_id, logged_at, message, log_type) VALUES ($1, $2, $3, $4)`,
			p.ID, entry.Timestamp, entry.Message, string(entry.Type),
		); err != nil {
			return fmt.Errorf("failed to write initial log: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit project: %w", err)
	}
	if p.Reviews == nil {
		p.Reviews = []domain.Review{}
	}
	return nil
}

// FindByID loads a project with its full log sequence and reviews.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if p.Logs, err = r.listLogs(ctx, id); err != nil {
		return nil, err
	}
	if p.Reviews, err = r.listReviews(ctx, `WHERE r.project_id = $1`, id); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns projects newest first, with reviews but without logs.
func (r *ProjectRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Project, error) {
	where := ""
	var args []interface{}
	if filter.Status != nil {
		where = `WHERE status = $1`
		args = append(args, string(*filter.Status))
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects `+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	index := make(map[string]int)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		p.Reviews = []domain.Review{}
		index[p.ID] = len(out)
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	reviewWhere := ""
	if filter.Status != nil {
		reviewWhere = `WHERE p.status = $1`
	}
	reviews, err := r.listReviews(ctx, reviewWhere, args...)
	if err != nil {
		return nil, err
	}
	for _, rv := range reviews {
		if i, ok := index[rv.ProjectID]; ok {
			out[i].Reviews = append(out[i].Reviews, rv)
		}
	}
	return out, nil
}

// UpdateFields applies a partial update. Unset fields are left untouched.
func (r *ProjectRepository) UpdateFields(ctx context.Context, id string, u domain.ProjectUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if u.Empty() {
		return nil
	}

	sets := make([]string, 0, 10)
	args := []interface{}{id}
	add := func(col string, v interface{}) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if u.Name != nil {
		add("project_name", *u.Name)
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.Status != nil {
		add("status", string(*u.Status))
	}
	if u.DeploymentURL != nil {
		add("deployment_url", *u.DeploymentURL)
	}
	if u.VercelProjectID != nil {
		add("vercel_project_id", *u.VercelProjectID)
	}
	if u.VercelDeploymentID != nil {
		add("vercel_deployment_id", *u.VercelDeploymentID)
	}
	if u.GithubRepoName != nil {
		add("github_repo_name", *u.GithubRepoName)
	}
	if u.GithubRepoID != nil {
		add("github_repo_id", *u.GithubRepoID)
	}
	if u.GithubRepoURL != nil {
		add("github_repo_url", *u.GithubRepoURL)
	}
	sets = append(sets, "updated_at = now()")

	q := `UPDATE projects SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AppendLog adds one entry to the project's log sequence.
func (r *ProjectRepository) AppendLog(ctx context.Context, id string, entry domain.LogEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.Type == "" {
		entry.Type = domain.LogInfo
	}

	const q = `
		WITH touched AS (
			UPDATE projects SET updated_at = now() WHERE id = $1 RETURNING id
		)
		INSERT INTO project_logs (project_id, logged_at, message, log_type)
		SELECT id, $2, $3, $4 FROM touched
	`
	res, err := r.db.ExecContext(ctx, q, id, entry.Timestamp, entry.Message, string(entry.Type))
	if err != nil {
		return fmt.Errorf("failed to append log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddReview stores rv against the project; ID and CreatedAt are assigned here.
func (r *ProjectRepository) AddReview(ctx context.Context, projectID string, rv *domain.Review) error {
	if rv.ID == "" {
		rv.ID = uuid.New().String()
	}
	rv.ProjectID = projectID

	const q = `
		INSERT INTO project_reviews (id, project_id, rating, comment, reviewer_name)
		SELECT $1, id, $3, $4, $5 FROM projects WHERE id = $2
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, q, rv.ID, projectID, rv.Rating, rv.Comment, rv.ReviewerName).Scan(&rv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		switch pgCode(err) {
		case pgCheckViolation:
			return domain.ErrInvalidRating
		case pgForeignKeyViolation:
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to add review: %w", err)
	}
	return nil
}

// Delete removes the project; logs and reviews go with it through ON DELETE CASCADE.
func (r *ProjectRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *ProjectRepository) listLogs(ctx context.Context, id string) ([]domain.LogEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT logged_at, message, log_type FROM project_logs WHERE project_id = $1 ORDER BY id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	defer rows.Close()

	logs := make([]domain.LogEntry, 0, 16)
	for rows.Next() {
		var e domain.LogEntry
		var typ string
		if err := rows.Scan(&e.Timestamp, &e.Message, &typ); err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}
		e.Type = domain.LogType(typ)
		logs = append(logs, e)
	}
	return logs, rows.Err()
}

func (r *ProjectRepository) listReviews(ctx context.Context, where string, args ...interface{}) ([]domain.Review, error) {
	q := `
		SELECT r.id, r.project_id, r.rating, r.comment, r.reviewer_name, r.created_at
		FROM project_reviews r JOIN projects p ON p.id = r.project_id
		` + where + `
		ORDER BY r.created_at ASC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Review, 0)
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.ProjectID, &rv.Rating, &rv.Comment, &rv.ReviewerName, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(s scanner) (*domain.Project, error) {
	var p domain.Project
	var subdomain sql.NullString
	var status string
	err := s.Scan(
		&p.ID, &p.Name, &p.Description, &p.RepoURL, &p.FilePath, &subdomain, &status,
		&p.DeploymentURL, &p.VercelProjectID, &p.VercelDeploymentID,
		&p.GithubRepoName, &p.GithubRepoID, &p.GithubRepoURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Subdomain = subdomain.String
	if p.Status, err = domain.ParseStatus(status); err != nil {
		return nil, err
	}
	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
