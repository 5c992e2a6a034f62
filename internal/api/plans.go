package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/launchreel/launchreel/internal/models"
	"github.com/launchreel/launchreel/internal/plan"
)

// Plan editing endpoints. Every accepted edit writes a new immutable plan
// revision; concurrent editors race on the revision counter, never on the
// document itself. Edits that touch synthesized media (scripts, background
// prompts, scene structure) bump the affected scenes' generation and
// re-enqueue synthesis, which invalidates any in-flight results.

// GetPlanRevisions handles GET /v1/projects/{id}/revisions
func (h *Handler) GetPlanRevisions(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	revisions, err := h.db.ListPlanRevisions(r.Context(), projectID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list revisions")
		return
	}

	respondJSON(w, http.StatusOK, revisions)
}

// GetPlanRevision handles GET /v1/projects/{id}/revisions/{revision}
func (h *Handler) GetPlanRevision(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	revNum, err := strconv.Atoi(chi.URLParam(r, "revision"))
	if err != nil || revNum < 1 {
		respondError(w, http.StatusBadRequest, "Invalid revision number")
		return
	}

	rev, err := h.db.GetPlanRevision(r.Context(), projectID, revNum)
	if err != nil {
		respondError(w, http.StatusNotFound, "Revision not found")
		return
	}

	respondJSON(w, http.StatusOK, rev)
}

// GetPlan handles GET /v1/projects/{id}/plan — the latest plan document.
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	rev, err := h.db.GetLatestPlanRevision(r.Context(), projectID)
	if err != nil {
		respondError(w, http.StatusNotFound, "Project has no plan yet")
		return
	}

	respondJSON(w, http.StatusOK, models.PlanUpdateResponse{
		ProjectID: projectID,
		Revision:  rev.Revision,
		Plan:      rev.Plan,
	})
}

// ReplacePlan handles PUT /v1/projects/{id}/plan — the editor posts back
// the whole document. Every scene's media is restaged: a full replace
// gives no way to tell which scenes actually changed.
func (h *Handler) ReplacePlan(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil || len(body) == 0 {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var replacement plan.VideoPlan
	if err := json.Unmarshal(body, &replacement); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid plan: "+err.Error())
		return
	}

	h.applyPlanEdit(w, r, func(p *plan.VideoPlan) ([]int, error) {
		*p = replacement
		return allSceneIndices(p), nil
	})
}

// PatchPlan handles PATCH /v1/projects/{id}/plan — shallow merge over the
// plan's top-level fields (brand name, brand color). Scene edits go
// through the scene endpoints.
func (h *Handler) PatchPlan(w http.ResponseWriter, r *http.Request) {
	patch, err := io.ReadAll(r.Body)
	if err != nil || len(patch) == 0 {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.applyPlanEdit(w, r, func(p *plan.VideoPlan) ([]int, error) {
		return nil, p.MergePlanPatch(patch)
	})
}

// InsertScene handles POST /v1/projects/{id}/plan/scenes
func (h *Handler) InsertScene(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index int             `json:"index"`
		Scene json.RawMessage `json:"scene"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Scene) == 0 {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var scene plan.VideoScene
	if err := json.Unmarshal(req.Scene, &scene); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid scene: "+err.Error())
		return
	}

	h.applyPlanEdit(w, r, func(p *plan.VideoPlan) ([]int, error) {
		if err := p.InsertScene(req.Index, scene); err != nil {
			return nil, err
		}
		return allSceneIndices(p), nil
	})
}

// DuplicateScene handles POST /v1/projects/{id}/plan/scenes/{index}/duplicate
func (h *Handler) DuplicateScene(w http.ResponseWriter, r *http.Request) {
	index, ok := sceneIndexParam(w, r)
	if !ok {
		return
	}

	h.applyPlanEdit(w, r, func(p *plan.VideoPlan) ([]int, error) {
		if err := p.DuplicateScene(index); err != nil {
			return nil, err
		}
		return allSceneIndices(p), nil
	})
}

// MoveScene handles POST /v1/projects/{id}/plan/scenes/{index}/move
func (h *Handler) MoveScene(w http.ResponseWriter, r *http.Request) {
	index, ok := sceneIndexParam(w, r)
	if !ok {
		return
	}

	var req struct {
		To int `json:"to"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.applyPlanEdit(w, r, func(p *plan.VideoPlan) ([]int, error) {
		if err := p.MoveScene(index, req.To); err != nil {
			return nil, err
		}
		return allSceneIndices(p), nil
	})
}

// DeleteScene handles DELETE /v1/projects/{id}/plan/scenes/{index}
func (h *Handler) DeleteScene(w http.ResponseWriter, r *http.Request) {
	index, ok := sceneIndexParam(w, r)
	if !ok {
		return
	}

	h.applyPlanEdit(w, r, func(p *plan.VideoPlan) ([]int, error) {
		if err := p.DeleteScene(index); err != nil {
			return nil, err
		}
		return allSceneIndices(p), nil
	})
}

// PatchScene handles PATCH /v1/projects/{id}/plan/scenes/{index}
func (h *Handler) PatchScene(w http.ResponseWriter, r *http.Request) {
	index, ok := sceneIndexParam(w, r)
	if !ok {
		return
	}

	patch, err := io.ReadAll(r.Body)
	if err != nil || len(patch) == 0 {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.applyPlanEdit(w, r, func(p *plan.VideoPlan) ([]int, error) {
		if err := p.MergeScenePatch(index, patch); err != nil {
			return nil, err
		}
		if patchTouchesMedia(patch) {
			return []int{index}, nil
		}
		return nil, nil
	})
}

// RefineScene handles POST /v1/projects/{id}/plan/scenes/{index}/refine —
// the planner reworks one scene from a free-text instruction. Synchronous,
// like whole-plan refinement.
func (h *Handler) RefineScene(w http.ResponseWriter, r *http.Request) {
	index, ok := sceneIndexParam(w, r)
	if !ok {
		return
	}

	var req models.RefineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Instruction == "" {
		respondError(w, http.StatusBadRequest, "Instruction is required")
		return
	}

	h.applyPlanEditAs(w, r, "refined", func(p *plan.VideoPlan) ([]int, error) {
		if index >= len(p.Scenes) {
			return nil, fmt.Errorf("scene index %d out of range", index)
		}

		current, err := json.Marshal(&p.Scenes[index])
		if err != nil {
			return nil, fmt.Errorf("failed to encode scene: %w", err)
		}

		patch, err := h.planner.RefineScene(r.Context(), current, req.Instruction)
		if err != nil {
			return nil, err
		}

		// Shallow merge: fields the model left out keep their current
		// values, so a patch can never silently zero choreography,
		// elements, or media refs.
		if err := p.MergeScenePatch(index, patch); err != nil {
			return nil, err
		}
		if patchTouchesMedia(patch) {
			return []int{index}, nil
		}
		return nil, nil
	})
}

// RegenerateScene handles POST /v1/projects/{id}/plan/scenes/{index}/regenerate
// — re-enqueues media synthesis for one scene without touching the plan.
func (h *Handler) RegenerateScene(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	index, ok := sceneIndexParam(w, r)
	if !ok {
		return
	}

	rev, err := h.db.GetLatestPlanRevision(r.Context(), projectID)
	if err != nil {
		respondError(w, http.StatusConflict, "Project has no plan yet")
		return
	}

	var p plan.VideoPlan
	if err := json.Unmarshal(rev.Plan, &p); err != nil {
		respondError(w, http.StatusInternalServerError, "Stored plan is unreadable")
		return
	}

	if index >= len(p.Scenes) {
		respondError(w, http.StatusNotFound, "Scene index out of range")
		return
	}

	h.restageScenes(r.Context(), projectID, []int{index})

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"project_id":  projectID,
		"scene_index": index,
		"status":      "queued",
	})
}

// RefineProject handles POST /v1/projects/{id}/refine — the planner
// reworks the whole plan from a free-text instruction. Synchronous: the
// editor waits for the new plan.
func (h *Handler) RefineProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var req models.RefineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Instruction == "" {
		respondError(w, http.StatusBadRequest, "Instruction is required")
		return
	}

	rev, err := h.db.GetLatestPlanRevision(r.Context(), projectID)
	if err != nil {
		respondError(w, http.StatusConflict, "Project has no plan yet")
		return
	}

	patch, err := h.planner.RefinePlan(r.Context(), rev.Plan, req.Instruction)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Refinement failed: "+err.Error())
		return
	}

	var p plan.VideoPlan
	if err := json.Unmarshal(rev.Plan, &p); err != nil {
		respondError(w, http.StatusInternalServerError, "Stored plan is unreadable")
		return
	}

	// Shallow merge over the current document: plan fields the model did
	// not mention survive untouched. MergePlanPatch validates the result
	// and discards the whole patch on failure.
	if err := p.MergePlanPatch(patch); err != nil {
		respondError(w, http.StatusBadGateway, "Refinement produced an invalid plan: "+err.Error())
		return
	}

	planJSON, err := json.Marshal(&p)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to encode plan")
		return
	}

	newRev, err := h.db.CreatePlanRevision(r.Context(), projectID, "refined", planJSON)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to store revision")
		return
	}

	// Scene media only goes stale when the scene list itself was replaced.
	if patchReplacesScenes(patch) {
		h.restageScenes(r.Context(), projectID, allSceneIndices(&p))
	}

	respondJSON(w, http.StatusOK, models.PlanUpdateResponse{
		ProjectID: projectID,
		Revision:  newRev.Revision,
		Plan:      planJSON,
	})
}

// applyPlanEdit runs one edit against the latest plan revision: load,
// mutate, validate, store as a new revision. edit returns the scene
// indices whose media must be re-synthesized (nil = none).
func (h *Handler) applyPlanEdit(w http.ResponseWriter, r *http.Request, edit func(*plan.VideoPlan) ([]int, error)) {
	h.applyPlanEditAs(w, r, "edited", edit)
}

func (h *Handler) applyPlanEditAs(w http.ResponseWriter, r *http.Request, source string, edit func(*plan.VideoPlan) ([]int, error)) {
	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	rev, err := h.db.GetLatestPlanRevision(r.Context(), projectID)
	if err != nil {
		respondError(w, http.StatusConflict, "Project has no plan yet")
		return
	}

	var p plan.VideoPlan
	if err := json.Unmarshal(rev.Plan, &p); err != nil {
		respondError(w, http.StatusInternalServerError, "Stored plan is unreadable")
		return
	}

	restage, err := edit(&p)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := p.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "Edit produces invalid plan: "+err.Error())
		return
	}

	planJSON, err := json.Marshal(&p)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to encode plan")
		return
	}

	newRev, err := h.db.CreatePlanRevision(r.Context(), projectID, source, planJSON)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to store revision")
		return
	}

	if len(restage) > 0 {
		h.restageScenes(r.Context(), projectID, restage)
	}

	respondJSON(w, http.StatusOK, models.PlanUpdateResponse{
		ProjectID: projectID,
		Revision:  newRev.Revision,
		Plan:      planJSON,
	})
}

// restageScenes bumps each scene's media generation and re-enqueues
// synthesis. Failures are logged, not surfaced: the edit itself already
// succeeded, and synthesis can be retried.
func (h *Handler) restageScenes(ctx context.Context, projectID uuid.UUID, indices []int) {
	for _, i := range indices {
		generation := 1
		if existing, err := h.db.GetSceneMedia(ctx, projectID, i); err == nil {
			generation = existing.Generation + 1
		}

		media := &models.SceneMedia{
			ID:         uuid.New(),
			ProjectID:  projectID,
			SceneIndex: i,
			Generation: generation,
			Status:     models.SceneMediaPending,
		}
		if err := h.db.CreateSceneMedia(ctx, media); err != nil {
			log.Printf("[Plan] scene %d: failed to restage media: %v", i, err)
			continue
		}

		jobID := uuid.New()
		job := &models.Job{
			ID:         jobID,
			ProjectID:  projectID,
			SceneIndex: &i,
			Type:       "synthesize_scene",
			Status:     models.JobStatusQueued,
		}
		if err := h.db.CreateJob(ctx, job); err != nil {
			log.Printf("[Plan] scene %d: failed to create job: %v", i, err)
			continue
		}
		if err := h.queue.EnqueueSynthesizeScene(ctx, projectID, jobID, i, generation); err != nil {
			log.Printf("[Plan] scene %d: failed to enqueue synthesis: %v", i, err)
		}
	}

	if err := h.db.UpdateProjectStatus(ctx, projectID, models.ProjectStatusGenerating); err != nil {
		log.Printf("[Plan] failed to update project status: %v", err)
	}
}

func sceneIndexParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		respondError(w, http.StatusBadRequest, "Invalid scene index")
		return 0, false
	}
	return index, true
}

func allSceneIndices(p *plan.VideoPlan) []int {
	out := make([]int, len(p.Scenes))
	for i := range out {
		out[i] = i
	}
	return out
}

// patchReplacesScenes reports whether a plan-level patch carries a
// "scenes" key, which replaces the scene list wholesale under the shallow
// merge.
func patchReplacesScenes(patch []byte) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return false
	}
	_, ok := fields["scenes"]
	return ok
}

// patchTouchesMedia reports whether a scene patch changes fields whose
// synthesized media would go stale.
func patchTouchesMedia(patch []byte) bool {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return false
	}
	for _, key := range []string{"voiceover_script", "background_prompt"} {
		if _, ok := fields[key]; ok {
			return true
		}
	}
	return false
}
