package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/launchreel/launchreel/internal/models"
)

// assetColumns is the scan order shared by every asset query.
const assetColumns = `
	id, project_id, scene_index, type, storage_bucket,
	storage_path, content_type, byte_size, created_at
`

func scanAsset(row interface{ Scan(...interface{}) error }) (*models.Asset, error) {
	asset := &models.Asset{}
	err := row.Scan(
		&asset.ID, &asset.ProjectID, &asset.SceneIndex, &asset.Type,
		&asset.StorageBucket, &asset.StoragePath, &asset.ContentType,
		&asset.ByteSize, &asset.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return asset, nil
}

// CreateAsset records a stored artifact — plan document, voiceover,
// background, render manifest — after its bytes land in object storage.
func (db *DB) CreateAsset(ctx context.Context, asset *models.Asset) error {
	query := `
		INSERT INTO assets (
			id, project_id, scene_index, type, storage_bucket,
			storage_path, content_type, byte_size
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	return db.QueryRowContext(
		ctx, query,
		asset.ID, asset.ProjectID, asset.SceneIndex, asset.Type,
		asset.StorageBucket, asset.StoragePath, asset.ContentType, asset.ByteSize,
	).Scan(&asset.CreatedAt)
}

func (db *DB) GetAsset(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE id = $1`

	asset, err := scanAsset(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("asset %s not found: %w", id, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	return asset, nil
}

// GetProjectAssets lists everything staged for a project, newest last,
// so per-scene media appears in generation order.
func (db *DB) GetProjectAssets(ctx context.Context, projectID uuid.UUID) ([]models.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets WHERE project_id = $1 ORDER BY created_at`

	rows, err := db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		asset, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset: %w", err)
		}
		assets = append(assets, *asset)
	}

	return assets, rows.Err()
}
