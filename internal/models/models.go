package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Enums
type ProjectStatus string

const (
	ProjectStatusQueued     ProjectStatus = "queued"     // brief accepted, plan generation pending
	ProjectStatusPlanning   ProjectStatus = "planning"   // plan generation in flight
	ProjectStatusReady      ProjectStatus = "ready"      // plan available for editing
	ProjectStatusGenerating ProjectStatus = "generating" // scene media synthesis in flight
	ProjectStatusRendering  ProjectStatus = "rendering"  // export in flight
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusFailed     ProjectStatus = "failed"
)

type SceneMediaStatus string

const (
	SceneMediaPending SceneMediaStatus = "pending"
	SceneMediaVoiced  SceneMediaStatus = "voiced"
	SceneMediaStaged  SceneMediaStatus = "staged" // background media attached
	SceneMediaFailed  SceneMediaStatus = "failed"
)

type AssetType string

const (
	AssetTypePlanJSON        AssetType = "plan_json"
	AssetTypeVoiceover       AssetType = "voiceover"
	AssetTypeBackgroundVideo AssetType = "background_video"
	AssetTypeBackgroundImage AssetType = "background_image"
	AssetTypeRenderManifest  AssetType = "render_manifest"
	AssetTypeFinalVideo      AssetType = "final_video"
	AssetTypeLogs            AssetType = "logs"
)

type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// JSONB is a custom type for PostgreSQL JSONB columns
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// Models

type Project struct {
	ID                    uuid.UUID     `json:"id"`
	Brief                 string        `json:"brief"`
	BrandName             string        `json:"brand_name"`
	BrandColor            string        `json:"brand_color"`
	TemplateID            *string       `json:"template_id,omitempty"` // nil = free-form plan generation
	TargetDurationSeconds int           `json:"target_duration_seconds"`
	Status                ProjectStatus `json:"status"`
	PlanRevision          int           `json:"plan_revision"`
	FinalVideoAssetID     *uuid.UUID    `json:"final_video_asset_id,omitempty"`
	// Per-project customization (all optional, defaults applied at creation)
	AspectRatio  *string   `json:"aspect_ratio,omitempty"` // "16:9", "9:16", "1:1"
	VoiceID      *string   `json:"voice_id,omitempty"`     // ElevenLabs voice override
	Language     *string   `json:"language,omitempty"`     // ISO 639-1: "en", "es", "fr", etc.
	ErrorCode    *string   `json:"error_code,omitempty"`
	ErrorMessage *string   `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PlanRevision is one immutable snapshot of a project's plan document.
// Every edit writes a new row; the project points at the latest revision
// number and older rows remain for undo.
type PlanRevision struct {
	ID        uuid.UUID       `json:"id"`
	ProjectID uuid.UUID       `json:"project_id"`
	Revision  int             `json:"revision"`
	Source    string          `json:"source"` // "generated", "edited", "refined", "template"
	Plan      json.RawMessage `json:"plan"`
	CreatedAt time.Time       `json:"created_at"`
}

// SceneMedia tracks asynchronous synthesis for one scene of the plan.
// SceneIndex is positional; Generation guards against stale results
// landing after the scene was edited again.
type SceneMedia struct {
	ID                   uuid.UUID        `json:"id"`
	ProjectID            uuid.UUID        `json:"project_id"`
	SceneIndex           int              `json:"scene_index"`
	Generation           int              `json:"generation"`
	Status               SceneMediaStatus `json:"status"`
	VoiceoverAssetID     *uuid.UUID       `json:"voiceover_asset_id,omitempty"`
	BackgroundAssetID    *uuid.UUID       `json:"background_asset_id,omitempty"`
	VoiceoverDurationMs  *int             `json:"voiceover_duration_ms,omitempty"`
	ErrorMessage         *string          `json:"error_message,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
	UpdatedAt            time.Time        `json:"updated_at"`
}

type Asset struct {
	ID            uuid.UUID  `json:"id"`
	ProjectID     uuid.UUID  `json:"project_id"`
	SceneIndex    *int       `json:"scene_index,omitempty"`
	Type          AssetType  `json:"type"`
	StorageBucket string     `json:"storage_bucket"`
	StoragePath   string     `json:"storage_path"`
	ContentType   *string    `json:"content_type,omitempty"`
	ByteSize      *int64     `json:"byte_size,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type Job struct {
	ID           uuid.UUID  `json:"id"`
	ProjectID    uuid.UUID  `json:"project_id"`
	SceneIndex   *int       `json:"scene_index,omitempty"`
	Type         string     `json:"type"`
	Status       JobStatus  `json:"status"`
	Attempts     int        `json:"attempts"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	LogsAssetID  *uuid.UUID `json:"logs_asset_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// DTOs for API responses
type ProjectResponse struct {
	Project
	Plan          json.RawMessage `json:"plan,omitempty"`
	SceneMedia    []SceneMedia    `json:"scene_media,omitempty"`
	FinalVideoURL *string         `json:"final_video_url,omitempty"`
}

// ProjectSummary is a lightweight DTO for the list endpoint — no plan
// document, just core project fields.
type ProjectSummary struct {
	ID            uuid.UUID     `json:"id"`
	Brief         string        `json:"brief"`
	BrandName     string        `json:"brand_name"`
	Status        ProjectStatus `json:"status"`
	PlanRevision  int           `json:"plan_revision"`
	FinalVideoURL *string       `json:"final_video_url,omitempty"`
	SceneCount    int           `json:"scene_count"`
	ErrorCode     *string       `json:"error_code,omitempty"`
	ErrorMessage  *string       `json:"error_message,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type ListProjectsResponse struct {
	Projects []ProjectSummary `json:"projects"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

type CreateProjectRequest struct {
	Brief                 string  `json:"brief"`                 // either brief or product_url is required
	ProductURL            *string `json:"product_url,omitempty"` // landing page to distill into a brief
	BrandName             string  `json:"brand_name"`
	BrandColor            *string `json:"brand_color,omitempty"` // Default: "#4F46E5"
	TemplateID            *string `json:"template_id,omitempty"`
	TargetDurationSeconds *int    `json:"target_duration_seconds,omitempty"` // Default: 30
	AspectRatio           *string `json:"aspect_ratio,omitempty"`            // Default: "16:9"
	VoiceID               *string `json:"voice_id,omitempty"`                // Default: env ELEVENLABS_VOICE_ID
	Language              *string `json:"language,omitempty"`                // Default: "en"
}

type CreateProjectResponse struct {
	ProjectID uuid.UUID     `json:"project_id"`
	Status    ProjectStatus `json:"status"`
}

// RefineRequest asks the planner to rework the current plan from a free
// text instruction.
type RefineRequest struct {
	Instruction string `json:"instruction"`
}

// PlanUpdateResponse is returned by every plan editing endpoint.
type PlanUpdateResponse struct {
	ProjectID uuid.UUID       `json:"project_id"`
	Revision  int             `json:"revision"`
	Plan      json.RawMessage `json:"plan"`
}
