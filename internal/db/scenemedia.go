package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/launchreel/launchreel/internal/models"
)

func (db *DB) CreateSceneMedia(ctx context.Context, media *models.SceneMedia) error {
	query := `
		INSERT INTO scene_media (
			id, project_id, scene_index, generation, status
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (project_id, scene_index)
		DO UPDATE SET generation = EXCLUDED.generation, status = EXCLUDED.status,
			error_message = NULL, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	return db.QueryRowContext(
		ctx, query,
		media.ID, media.ProjectID, media.SceneIndex, media.Generation, media.Status,
	).Scan(&media.ID, &media.CreatedAt, &media.UpdatedAt)
}

func (db *DB) GetSceneMedia(ctx context.Context, projectID uuid.UUID, sceneIndex int) (*models.SceneMedia, error) {
	query := `
		SELECT
			id, project_id, scene_index, generation, status,
			voiceover_asset_id, background_asset_id, voiceover_duration_ms,
			error_message, created_at, updated_at
		FROM scene_media
		WHERE project_id = $1 AND scene_index = $2
	`

	media := &models.SceneMedia{}
	err := db.QueryRowContext(ctx, query, projectID, sceneIndex).Scan(
		&media.ID, &media.ProjectID, &media.SceneIndex, &media.Generation,
		&media.Status, &media.VoiceoverAssetID, &media.BackgroundAssetID,
		&media.VoiceoverDurationMs, &media.ErrorMessage,
		&media.CreatedAt, &media.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("scene media not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scene media: %w", err)
	}

	return media, nil
}

func (db *DB) GetProjectSceneMedia(ctx context.Context, projectID uuid.UUID) ([]models.SceneMedia, error) {
	query := `
		SELECT
			id, project_id, scene_index, generation, status,
			voiceover_asset_id, background_asset_id, voiceover_duration_ms,
			error_message, created_at, updated_at
		FROM scene_media
		WHERE project_id = $1
		ORDER BY scene_index
	`

	rows, err := db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scene media: %w", err)
	}
	defer rows.Close()

	var media []models.SceneMedia
	for rows.Next() {
		var m models.SceneMedia
		err := rows.Scan(
			&m.ID, &m.ProjectID, &m.SceneIndex, &m.Generation,
			&m.Status, &m.VoiceoverAssetID, &m.BackgroundAssetID,
			&m.VoiceoverDurationMs, &m.ErrorMessage,
			&m.CreatedAt, &m.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scene media: %w", err)
		}
		media = append(media, m)
	}

	return media, nil
}

// UpdateSceneVoiceover attaches a voiceover asset, but only if the row's
// generation still matches: a scene edited mid-synthesis requeues with a
// new generation and the stale result is dropped on the floor.
func (db *DB) UpdateSceneVoiceover(ctx context.Context, id uuid.UUID, generation int, assetID uuid.UUID, durationMs int) (bool, error) {
	query := `
		UPDATE scene_media
		SET voiceover_asset_id = $1, voiceover_duration_ms = $2, status = $3, updated_at = NOW()
		WHERE id = $4 AND generation = $5
	`
	res, err := db.ExecContext(ctx, query, assetID, durationMs, models.SceneMediaVoiced, id, generation)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// UpdateSceneBackground attaches a background asset under the same
// generation guard.
func (db *DB) UpdateSceneBackground(ctx context.Context, id uuid.UUID, generation int, assetID uuid.UUID) (bool, error) {
	query := `
		UPDATE scene_media
		SET background_asset_id = $1, status = $2, updated_at = NOW()
		WHERE id = $3 AND generation = $4
	`
	res, err := db.ExecContext(ctx, query, assetID, models.SceneMediaStaged, id, generation)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (db *DB) UpdateSceneMediaError(ctx context.Context, id uuid.UUID, generation int, errorMessage string) error {
	query := `
		UPDATE scene_media
		SET status = $1, error_message = $2, updated_at = NOW()
		WHERE id = $3 AND generation = $4
	`
	_, err := db.ExecContext(ctx, query, models.SceneMediaFailed, errorMessage, id, generation)
	return err
}

// MarkSceneStaged records that the scene's synthesis pipeline finished,
// under the generation guard.
func (db *DB) MarkSceneStaged(ctx context.Context, id uuid.UUID, generation int) (bool, error) {
	query := `
		UPDATE scene_media
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND generation = $3
	`
	res, err := db.ExecContext(ctx, query, models.SceneMediaStaged, id, generation)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// AreAllScenesStaged reports whether every scene of the project has
// finished synthesis.
func (db *DB) AreAllScenesStaged(ctx context.Context, projectID uuid.UUID) (bool, error) {
	query := `
		SELECT COUNT(*) = 0
		FROM scene_media
		WHERE project_id = $1 AND status != $2
	`

	var allStaged bool
	err := db.QueryRowContext(ctx, query, projectID, models.SceneMediaStaged).Scan(&allStaged)
	return allStaged, err
}
