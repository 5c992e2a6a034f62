package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/launchreel/launchreel/internal/models"
)

// CreatePlanRevision inserts a plan snapshot and bumps the project's
// revision pointer in one transaction. The revision number is assigned
// here, not by the caller, so concurrent edits cannot collide.
func (db *DB) CreatePlanRevision(ctx context.Context, projectID uuid.UUID, source string, plan json.RawMessage) (*models.PlanRevision, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin revision tx: %w", err)
	}
	defer tx.Rollback()

	var next int
	err = tx.QueryRowContext(ctx,
		`SELECT plan_revision + 1 FROM projects WHERE id = $1 FOR UPDATE`,
		projectID,
	).Scan(&next)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock project: %w", err)
	}

	rev := &models.PlanRevision{
		ID:        uuid.New(),
		ProjectID: projectID,
		Revision:  next,
		Source:    source,
		Plan:      plan,
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO plan_revisions (id, project_id, revision, source, plan)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		rev.ID, rev.ProjectID, rev.Revision, rev.Source, []byte(rev.Plan),
	).Scan(&rev.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert plan revision: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE projects SET plan_revision = $1, updated_at = NOW() WHERE id = $2`,
		next, projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to bump plan revision: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit revision: %w", err)
	}
	return rev, nil
}

func (db *DB) GetLatestPlanRevision(ctx context.Context, projectID uuid.UUID) (*models.PlanRevision, error) {
	query := `
		SELECT id, project_id, revision, source, plan, created_at
		FROM plan_revisions
		WHERE project_id = $1
		ORDER BY revision DESC
		LIMIT 1
	`
	return db.scanRevision(db.QueryRowContext(ctx, query, projectID))
}

func (db *DB) GetPlanRevision(ctx context.Context, projectID uuid.UUID, revision int) (*models.PlanRevision, error) {
	query := `
		SELECT id, project_id, revision, source, plan, created_at
		FROM plan_revisions
		WHERE project_id = $1 AND revision = $2
	`
	return db.scanRevision(db.QueryRowContext(ctx, query, projectID, revision))
}

func (db *DB) scanRevision(row *sql.Row) (*models.PlanRevision, error) {
	rev := &models.PlanRevision{}
	var plan []byte
	err := row.Scan(&rev.ID, &rev.ProjectID, &rev.Revision, &rev.Source, &plan, &rev.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("plan revision not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get plan revision: %w", err)
	}
	rev.Plan = json.RawMessage(plan)
	return rev, nil
}

// ListPlanRevisions returns revision metadata newest first, without the
// plan documents themselves.
func (db *DB) ListPlanRevisions(ctx context.Context, projectID uuid.UUID) ([]models.PlanRevision, error) {
	query := `
		SELECT id, project_id, revision, source, created_at
		FROM plan_revisions
		WHERE project_id = $1
		ORDER BY revision DESC
	`

	rows, err := db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query plan revisions: %w", err)
	}
	defer rows.Close()

	var revs []models.PlanRevision
	for rows.Next() {
		var rev models.PlanRevision
		if err := rows.Scan(&rev.ID, &rev.ProjectID, &rev.Revision, &rev.Source, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan plan revision: %w", err)
		}
		revs = append(revs, rev)
	}

	return revs, nil
}
