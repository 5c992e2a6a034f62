package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/launchreel/launchreel/internal/models"
)

func (db *DB) CreateProject(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (
			id, brief, brand_name, brand_color, template_id,
			target_duration_seconds, status, plan_revision,
			aspect_ratio, voice_id, language
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`

	return db.QueryRowContext(
		ctx, query,
		project.ID, project.Brief, project.BrandName, project.BrandColor,
		project.TemplateID, project.TargetDurationSeconds,
		project.Status, project.PlanRevision,
		project.AspectRatio, project.VoiceID, project.Language,
	).Scan(&project.CreatedAt, &project.UpdatedAt)
}

func (db *DB) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	query := `
		SELECT
			id, brief, brand_name, brand_color, template_id,
			target_duration_seconds, status, plan_revision, final_video_asset_id,
			aspect_ratio, voice_id, language,
			error_code, error_message, created_at, updated_at
		FROM projects
		WHERE id = $1
	`

	project := &models.Project{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&project.ID, &project.Brief, &project.BrandName, &project.BrandColor,
		&project.TemplateID, &project.TargetDurationSeconds,
		&project.Status, &project.PlanRevision, &project.FinalVideoAssetID,
		&project.AspectRatio, &project.VoiceID, &project.Language,
		&project.ErrorCode, &project.ErrorMessage,
		&project.CreatedAt, &project.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project not found: %w", sql.ErrNoRows)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

// ListProjects returns projects ordered by creation date (newest first).
// Supports optional status filter, limit, and offset for pagination.
func (db *DB) ListProjects(ctx context.Context, status string, limit, offset int) ([]models.Project, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseSelect := `
		SELECT
			id, brief, brand_name, brand_color, template_id,
			target_duration_seconds, status, plan_revision, final_video_asset_id,
			aspect_ratio, voice_id, language,
			error_code, error_message, created_at, updated_at
		FROM projects
	`

	if status != "" {
		query := baseSelect + ` WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
		rows, err = db.QueryContext(ctx, query, status, limit, offset)
	} else {
		query := baseSelect + ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
		rows, err = db.QueryContext(ctx, query, limit, offset)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(
			&p.ID, &p.Brief, &p.BrandName, &p.BrandColor,
			&p.TemplateID, &p.TargetDurationSeconds,
			&p.Status, &p.PlanRevision, &p.FinalVideoAssetID,
			&p.AspectRatio, &p.VoiceID, &p.Language,
			&p.ErrorCode, &p.ErrorMessage,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}

	return projects, nil
}

// CountProjects returns the total number of projects, optionally filtered by status.
func (db *DB) CountProjects(ctx context.Context, status string) (int, error) {
	var count int
	if status != "" {
		err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects WHERE status = $1`, status).Scan(&count)
		return count, err
	}
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM projects`).Scan(&count)
	return count, err
}

func (db *DB) UpdateProjectStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus) error {
	query := `UPDATE projects SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := db.ExecContext(ctx, query, status, id)
	return err
}

func (db *DB) UpdateProjectError(ctx context.Context, id uuid.UUID, errorCode, errorMessage string) error {
	query := `
		UPDATE projects
		SET status = $1, error_code = $2, error_message = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := db.ExecContext(ctx, query, models.ProjectStatusFailed, errorCode, errorMessage, id)
	return err
}

func (db *DB) SetProjectFinalVideo(ctx context.Context, projectID, assetID uuid.UUID) error {
	query := `
		UPDATE projects
		SET final_video_asset_id = $1, status = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := db.ExecContext(ctx, query, assetID, models.ProjectStatusCompleted, projectID)
	return err
}

// DeleteProject removes a project and all its rows in one transaction.
// Storage objects are not touched; they expire with the bucket's retention
// policy.
func (db *DB) DeleteProject(ctx context.Context, id uuid.UUID) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, query := range []string{
		`DELETE FROM jobs WHERE project_id = $1`,
		`DELETE FROM scene_media WHERE project_id = $1`,
		`UPDATE projects SET final_video_asset_id = NULL WHERE id = $1`,
		`DELETE FROM assets WHERE project_id = $1`,
		`DELETE FROM plan_revisions WHERE project_id = $1`,
		`DELETE FROM projects WHERE id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, query, id); err != nil {
			return fmt.Errorf("failed to delete project rows: %w", err)
		}
	}

	return tx.Commit()
}
