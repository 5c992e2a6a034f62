package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/launchreel/launchreel/internal/db"
	"github.com/launchreel/launchreel/internal/models"
	"github.com/launchreel/launchreel/internal/queue"
	"github.com/launchreel/launchreel/internal/services"
	"github.com/launchreel/launchreel/internal/storage"
	"github.com/launchreel/launchreel/internal/templates"
)

type Handler struct {
	db        *db.DB
	queue     *queue.Queue
	storage   *storage.Storage
	planner   *services.PlannerService
	templates *templates.Library
}

func NewHandler(database *db.DB, q *queue.Queue, stor *storage.Storage, plannerSvc *services.PlannerService, lib *templates.Library) *Handler {
	return &Handler{
		db:        database,
		queue:     q,
		storage:   stor,
		planner:   plannerSvc,
		templates: lib,
	}
}

// CreateProject handles POST /v1/projects
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Validate
	if req.Brief == "" && (req.ProductURL == nil || *req.ProductURL == "") {
		respondError(w, http.StatusBadRequest, "Either brief or product_url is required")
		return
	}
	if req.BrandName == "" {
		respondError(w, http.StatusBadRequest, "Brand name is required")
		return
	}
	if req.TemplateID != nil && *req.TemplateID != "" {
		if _, ok := h.templates.Get(*req.TemplateID); !ok {
			respondError(w, http.StatusBadRequest, "Unknown template: "+*req.TemplateID)
			return
		}
	}

	// Set defaults
	targetDuration := 30
	if req.TargetDurationSeconds != nil && *req.TargetDurationSeconds > 0 {
		targetDuration = *req.TargetDurationSeconds
	}

	brandColor := "#4F46E5"
	if req.BrandColor != nil && *req.BrandColor != "" {
		brandColor = *req.BrandColor
	}

	aspectRatio := "16:9"
	if req.AspectRatio != nil && *req.AspectRatio != "" {
		switch *req.AspectRatio {
		case "16:9", "9:16", "1:1":
			aspectRatio = *req.AspectRatio
		default:
			respondError(w, http.StatusBadRequest, "Invalid aspect ratio. Allowed: 16:9, 9:16, 1:1")
			return
		}
	}

	language := "en"
	if req.Language != nil && *req.Language != "" {
		language = *req.Language
	}

	// No brief given: distill one from the product page before the
	// project exists, so a fetch failure costs nothing.
	brief := req.Brief
	if brief == "" {
		var err error
		brief, err = h.planner.AnalyzeProductURL(r.Context(), *req.ProductURL)
		if err != nil {
			respondError(w, http.StatusBadGateway, "Failed to analyze product URL: "+err.Error())
			return
		}
	}

	project := &models.Project{
		ID:                    uuid.New(),
		Brief:                 brief,
		BrandName:             req.BrandName,
		BrandColor:            brandColor,
		TemplateID:            req.TemplateID,
		TargetDurationSeconds: targetDuration,
		Status:                models.ProjectStatusQueued,
		AspectRatio:           &aspectRatio,
		VoiceID:               req.VoiceID,
		Language:              &language,
	}

	if err := h.db.CreateProject(r.Context(), project); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create project")
		return
	}

	// Create and enqueue plan generation job
	jobID := uuid.New()
	job := &models.Job{
		ID:        jobID,
		ProjectID: project.ID,
		Type:      "generate_plan",
		Status:    models.JobStatusQueued,
	}

	if err := h.db.CreateJob(r.Context(), job); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create job")
		return
	}

	if err := h.queue.EnqueueGeneratePlan(r.Context(), project.ID, jobID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to enqueue job")
		return
	}

	respondJSON(w, http.StatusCreated, models.CreateProjectResponse{
		ProjectID: project.ID,
		Status:    project.Status,
	})
}

// ListProjects handles GET /v1/projects
// Query params:
//   - status: filter by project status (queued, planning, ready, generating, rendering, completed, failed)
//   - limit:  max results per page (default 20, max 100)
//   - offset: number of results to skip (default 0)
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	statusFilter := r.URL.Query().Get("status")
	if statusFilter != "" {
		switch models.ProjectStatus(statusFilter) {
		case models.ProjectStatusQueued, models.ProjectStatusPlanning,
			models.ProjectStatusReady, models.ProjectStatusGenerating,
			models.ProjectStatusRendering, models.ProjectStatusCompleted,
			models.ProjectStatusFailed:
			// valid
		default:
			respondError(w, http.StatusBadRequest, "Invalid status filter. Allowed: queued, planning, ready, generating, rendering, completed, failed")
			return
		}
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 100 {
		limit = 100
	}

	offset := 0
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	total, err := h.db.CountProjects(r.Context(), statusFilter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to count projects")
		return
	}

	projects, err := h.db.ListProjects(r.Context(), statusFilter, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list projects")
		return
	}

	// Build lightweight summaries — no plan document, just core fields
	summaries := make([]models.ProjectSummary, 0, len(projects))
	for _, project := range projects {
		summary := models.ProjectSummary{
			ID:           project.ID,
			Brief:        project.Brief,
			BrandName:    project.BrandName,
			Status:       project.Status,
			PlanRevision: project.PlanRevision,
			ErrorCode:    project.ErrorCode,
			ErrorMessage: project.ErrorMessage,
			CreatedAt:    project.CreatedAt,
			UpdatedAt:    project.UpdatedAt,
		}

		if rev, err := h.db.GetLatestPlanRevision(r.Context(), project.ID); err == nil {
			var p struct {
				Scenes []json.RawMessage `json:"scenes"`
			}
			if json.Unmarshal(rev.Plan, &p) == nil {
				summary.SceneCount = len(p.Scenes)
			}
		}

		if project.FinalVideoAssetID != nil {
			if asset, err := h.db.GetAsset(r.Context(), *project.FinalVideoAssetID); err == nil {
				url := h.storage.GetPublicURL(asset.StoragePath)
				summary.FinalVideoURL = &url
			}
		}

		summaries = append(summaries, summary)
	}

	respondJSON(w, http.StatusOK, models.ListProjectsResponse{
		Projects: summaries,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	})
}

// GetProject handles GET /v1/projects/{id}
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	project, err := h.db.GetProject(r.Context(), projectID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Project not found")
		return
	}

	response := models.ProjectResponse{Project: *project}

	if rev, err := h.db.GetLatestPlanRevision(r.Context(), projectID); err == nil {
		response.Plan = rev.Plan
	}

	if media, err := h.db.GetProjectSceneMedia(r.Context(), projectID); err == nil {
		response.SceneMedia = media
	}

	if project.FinalVideoAssetID != nil {
		if asset, err := h.db.GetAsset(r.Context(), *project.FinalVideoAssetID); err == nil {
			url := h.storage.GetPublicURL(asset.StoragePath)
			response.FinalVideoURL = &url
		}
	}

	respondJSON(w, http.StatusOK, response)
}

// GetProjectDownload handles GET /v1/projects/{id}/download
func (h *Handler) GetProjectDownload(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	project, err := h.db.GetProject(r.Context(), projectID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Project not found")
		return
	}

	if project.FinalVideoAssetID == nil {
		respondError(w, http.StatusNotFound, "Export not ready")
		return
	}

	asset, err := h.db.GetAsset(r.Context(), *project.FinalVideoAssetID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Asset not found")
		return
	}

	// Get signed URL (valid for 1 hour)
	signedURL, err := h.storage.GetSignedURL(r.Context(), asset.StoragePath, 3600)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate download URL")
		return
	}

	http.Redirect(w, r, signedURL, http.StatusTemporaryRedirect)
}

// ExportProject handles POST /v1/projects/{id}/export — freezes the
// current plan into a render manifest via the worker.
func (h *Handler) ExportProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	project, err := h.db.GetProject(r.Context(), projectID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Project not found")
		return
	}

	if project.PlanRevision == 0 {
		respondError(w, http.StatusConflict, "Project has no plan yet")
		return
	}

	jobID := uuid.New()
	job := &models.Job{
		ID:        jobID,
		ProjectID: projectID,
		Type:      "render_export",
		Status:    models.JobStatusQueued,
	}

	if err := h.db.CreateJob(r.Context(), job); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create job")
		return
	}

	if err := h.queue.EnqueueRenderExport(r.Context(), projectID, jobID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to enqueue export")
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{
		"project_id": projectID.String(),
		"job_id":     jobID.String(),
		"status":     "queued",
	})
}

// DeleteProject handles DELETE /v1/projects/{id}. Queued jobs for the
// project may still be in Redis; the worker drops them when the project
// row is gone.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	if _, err := h.db.GetProject(r.Context(), projectID); err != nil {
		respondError(w, http.StatusNotFound, "Project not found")
		return
	}

	if err := h.db.DeleteProject(r.Context(), projectID); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete project")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListProjectAssets handles GET /v1/projects/{id}/assets. Each asset is
// returned with a public URL so clients can preview staged media without
// re-deriving storage paths.
func (h *Handler) ListProjectAssets(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	assets, err := h.db.GetProjectAssets(r.Context(), projectID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list assets")
		return
	}

	type assetView struct {
		models.Asset
		URL string `json:"url"`
	}
	views := make([]assetView, len(assets))
	for i, a := range assets {
		views[i] = assetView{Asset: a, URL: h.storage.GetPublicURL(a.StoragePath)}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"assets": views})
}

// GetProjectJobs handles GET /v1/projects/{id}/debug/jobs
func (h *Handler) GetProjectJobs(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	jobs, err := h.db.GetProjectJobs(r.Context(), projectID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to get jobs")
		return
	}

	respondJSON(w, http.StatusOK, jobs)
}

// ListTemplates handles GET /v1/templates
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.templates.List())
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Health check
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
