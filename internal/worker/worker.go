package worker

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/launchreel/launchreel/internal/compose"
	"github.com/launchreel/launchreel/internal/db"
	"github.com/launchreel/launchreel/internal/models"
	"github.com/launchreel/launchreel/internal/plan"
	"github.com/launchreel/launchreel/internal/queue"
	"github.com/launchreel/launchreel/internal/render"
	"github.com/launchreel/launchreel/internal/services"
	"github.com/launchreel/launchreel/internal/storage"
	"github.com/launchreel/launchreel/internal/templates"
	"github.com/launchreel/launchreel/internal/timeline"
)

type Worker struct {
	db        *db.DB
	queue     *queue.Queue
	storage   *storage.Storage
	planner   *services.PlannerService
	tts       services.TTSService        // TTS provider (ElevenLabs preferred, Cartesia fallback)
	imageGen  *services.ImageGenService  // Background stills (always available)
	veo       *services.VeoService       // Optional: nil when VEO_ENABLED=false
	videoGen  *services.VideoGenService  // Optional: nil when GROK_VIDEO_ENABLED=false
	templates *templates.Library
	render    compose.Options
	uploadSem chan struct{} // Limits concurrent Supabase uploads to prevent congestion
}

func New(
	database *db.DB,
	q *queue.Queue,
	stor *storage.Storage,
	plannerSvc *services.PlannerService,
	ttsSvc services.TTSService,
	imageGenSvc *services.ImageGenService,
	veoSvc *services.VeoService,
	videoGenSvc *services.VideoGenService,
	lib *templates.Library,
	renderOpts compose.Options,
) *Worker {
	return &Worker{
		db:        database,
		queue:     q,
		storage:   stor,
		planner:   plannerSvc,
		tts:       ttsSvc,
		imageGen:  imageGenSvc,
		veo:       veoSvc,
		videoGen:  videoGenSvc,
		templates: lib,
		render:    renderOpts,
		uploadSem: make(chan struct{}, 4),
	}
}

// uploadWithLimit wraps an upload call with a semaphore to prevent Supabase congestion.
func (w *Worker) uploadWithLimit(ctx context.Context, label string, fn func() error) error {
	select {
	case w.uploadSem <- struct{}{}:
		// Acquired slot
	case <-ctx.Done():
		return fmt.Errorf("upload cancelled while waiting for slot: %w", ctx.Err())
	}
	defer func() { <-w.uploadSem }()

	log.Printf("[Upload] %s uploading...", label)
	return fn()
}

// Start begins processing jobs from all queues
func (w *Worker) Start(ctx context.Context, concurrency int) {
	log.Printf("Worker started with concurrency: %d", concurrency)

	// Start workers for each queue type
	for i := 0; i < concurrency; i++ {
		go w.processQueue(ctx, queue.QueueGeneratePlan, w.handleGeneratePlan)
		go w.processQueue(ctx, queue.QueueSynthesizeScene, w.handleSynthesizeScene)
		go w.processQueue(ctx, queue.QueueRenderExport, w.handleRenderExport)
	}

	<-ctx.Done()
	log.Println("Worker shutting down...")
}

func (w *Worker) processQueue(ctx context.Context, queueName string, handler func(context.Context, *queue.Job) error) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			job, err := w.queue.Dequeue(ctx, queueName, 5*time.Second)
			if err != nil {
				log.Printf("Error dequeuing from %s: %v", queueName, err)
				continue
			}

			if job == nil {
				continue // No job available, retry
			}

			log.Printf("Processing job %s (type: %s, project: %s)", job.ID, job.Type, job.ProjectID)

			if err := w.db.UpdateJobStatus(ctx, job.ID, models.JobStatusRunning); err != nil {
				log.Printf("Failed to update job status: %v", err)
			}

			if err := handler(ctx, job); err != nil {
				log.Printf("Job %s failed: %v", job.ID, err)
				w.db.UpdateJobError(ctx, job.ID, err.Error())
			} else {
				log.Printf("Job %s completed successfully", job.ID)
				w.db.UpdateJobStatus(ctx, job.ID, models.JobStatusSucceeded)
			}
		}
	}
}

// handleGeneratePlan produces the first plan revision for a project —
// either instantiated from a built-in template or generated by the
// planner from the brief — then kicks off media synthesis for every scene.
func (w *Worker) handleGeneratePlan(ctx context.Context, job *queue.Job) error {
	log.Printf("Generating plan for project %s", job.ProjectID)

	if err := w.db.UpdateProjectStatus(ctx, job.ProjectID, models.ProjectStatusPlanning); err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}

	project, err := w.db.GetProject(ctx, job.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}

	var (
		p      *plan.VideoPlan
		source string
	)
	if project.TemplateID != nil && *project.TemplateID != "" {
		tmpl, ok := w.templates.Get(*project.TemplateID)
		if !ok {
			w.db.UpdateProjectError(ctx, job.ProjectID, "template_not_found", *project.TemplateID)
			return fmt.Errorf("template %q not found", *project.TemplateID)
		}
		p = tmpl.Instantiate(project.BrandName, project.BrandColor)
		source = "template"
	} else {
		opts := &services.PlanOptions{
			AspectRatio: project.AspectRatio,
			Language:    project.Language,
		}
		p, err = w.planner.GeneratePlan(ctx, project.Brief, project.BrandName, project.BrandColor, project.TargetDurationSeconds, opts)
		if err != nil {
			w.db.UpdateProjectError(ctx, job.ProjectID, "plan_generation_failed", err.Error())
			return fmt.Errorf("failed to generate plan: %w", err)
		}
		source = "generated"
	}

	planJSON, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	rev, err := w.db.CreatePlanRevision(ctx, job.ProjectID, source, planJSON)
	if err != nil {
		return fmt.Errorf("failed to store plan revision: %w", err)
	}
	log.Printf("Plan revision %d stored for project %s (%d scenes, source=%s)", rev.Revision, job.ProjectID, len(p.Scenes), source)

	// Keep a copy of the plan in storage alongside the media it references
	planAsset := &models.Asset{
		ID:            uuid.New(),
		ProjectID:     job.ProjectID,
		Type:          models.AssetTypePlanJSON,
		StorageBucket: w.storage.Bucket,
		StoragePath:   w.storage.PlanPath(job.ProjectID),
		ContentType:   strPtr("application/json"),
		ByteSize:      int64Ptr(int64(len(planJSON))),
	}

	if err := w.uploadWithLimit(ctx, "plan.json", func() error {
		return w.storage.Upload(ctx, planAsset.StoragePath, planJSON, "application/json")
	}); err != nil {
		return fmt.Errorf("failed to upload plan: %w", err)
	}

	if err := w.db.CreateAsset(ctx, planAsset); err != nil {
		return fmt.Errorf("failed to save plan asset: %w", err)
	}

	// Create scene media records and enqueue synthesis for each scene
	const firstGeneration = 1
	for i := range p.Scenes {
		media := &models.SceneMedia{
			ID:         uuid.New(),
			ProjectID:  job.ProjectID,
			SceneIndex: i,
			Generation: firstGeneration,
			Status:     models.SceneMediaPending,
		}

		if err := w.db.CreateSceneMedia(ctx, media); err != nil {
			return fmt.Errorf("failed to create scene media: %w", err)
		}

		if err := w.enqueueSceneJob(ctx, job.ProjectID, i, firstGeneration); err != nil {
			return err
		}

		log.Printf("Enqueued synthesize_scene for scene %d/%d", i+1, len(p.Scenes))
	}

	return w.db.UpdateProjectStatus(ctx, job.ProjectID, models.ProjectStatusGenerating)
}

func (w *Worker) enqueueSceneJob(ctx context.Context, projectID uuid.UUID, sceneIndex, generation int) error {
	jobID := uuid.New()
	sceneJob := &models.Job{
		ID:         jobID,
		ProjectID:  projectID,
		SceneIndex: intPtr(sceneIndex),
		Type:       "synthesize_scene",
		Status:     models.JobStatusQueued,
	}

	if err := w.db.CreateJob(ctx, sceneJob); err != nil {
		return fmt.Errorf("failed to create scene job: %w", err)
	}

	if err := w.queue.EnqueueSynthesizeScene(ctx, projectID, jobID, sceneIndex, generation); err != nil {
		return fmt.Errorf("failed to enqueue scene job: %w", err)
	}

	return nil
}

// handleSynthesizeScene produces the media for one scene: voiceover audio
// and a background (video or still). The two run in parallel and converge
// on the staged marker.
//
// Every DB write carries the job's generation; a write that matches zero
// rows means the scene was edited again while this job ran, and the
// result is discarded without error.
func (w *Worker) handleSynthesizeScene(ctx context.Context, job *queue.Job) error {
	if job.SceneIndex == nil {
		return fmt.Errorf("scene index missing")
	}
	sceneIndex := *job.SceneIndex

	log.Printf("Synthesizing scene %d for project %s (generation %d)", sceneIndex, job.ProjectID, job.Generation)

	project, err := w.db.GetProject(ctx, job.ProjectID)
	if errors.Is(err, sql.ErrNoRows) {
		log.Printf("Project %s no longer exists, dropping job", job.ProjectID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get project: %w", err)
	}

	rev, err := w.db.GetLatestPlanRevision(ctx, job.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to load plan: %w", err)
	}

	var p plan.VideoPlan
	if err := json.Unmarshal(rev.Plan, &p); err != nil {
		return fmt.Errorf("failed to decode plan: %w", err)
	}
	if sceneIndex < 0 || sceneIndex >= len(p.Scenes) {
		log.Printf("Scene %d no longer exists (plan has %d scenes), dropping job", sceneIndex, len(p.Scenes))
		return nil
	}
	scene := &p.Scenes[sceneIndex]

	media, err := w.db.GetSceneMedia(ctx, job.ProjectID, sceneIndex)
	if err != nil {
		return fmt.Errorf("failed to get scene media: %w", err)
	}
	if media.Generation != job.Generation {
		log.Printf("Scene %d: generation %d superseded by %d, dropping job", sceneIndex, job.Generation, media.Generation)
		return nil
	}

	// ─────────────────────────────────────────────────────────────────────
	// Concurrent pipelines: voiceover + background run in parallel.
	//
	// errgroup.WithContext gives us:
	//   - automatic context cancellation if either pipeline fails
	//   - clean error propagation (first error wins)
	// ─────────────────────────────────────────────────────────────────────
	g, gctx := errgroup.WithContext(ctx)

	// ── Pipeline A: Voiceover (TTS → upload) ───────────────────────────
	g.Go(func() error {
		if scene.VoiceoverScript == "" {
			log.Printf("Scene %d: no voiceover script, skipping TTS", sceneIndex)
			return nil
		}

		voiceID := ""
		if project.VoiceID != nil {
			voiceID = *project.VoiceID
		}

		log.Printf("Scene %d: generating voiceover...", sceneIndex)
		audioResp, err := w.tts.GenerateSpeech(gctx, scene.VoiceoverScript, "confident and energetic", voiceID)
		if err != nil {
			w.db.UpdateSceneMediaError(gctx, media.ID, job.Generation, fmt.Sprintf("TTS failed: %v", err))
			return fmt.Errorf("failed to generate voiceover: %w", err)
		}
		log.Printf("Scene %d: voiceover generated (%d bytes, ~%dms)", sceneIndex, len(audioResp.AudioData), audioResp.DurationMs)

		audioAsset := &models.Asset{
			ID:            uuid.New(),
			ProjectID:     job.ProjectID,
			SceneIndex:    intPtr(sceneIndex),
			Type:          models.AssetTypeVoiceover,
			StorageBucket: w.storage.Bucket,
			StoragePath:   w.storage.VoiceoverPath(job.ProjectID, sceneIndex),
			ContentType:   strPtr("audio/mpeg"),
			ByteSize:      int64Ptr(int64(len(audioResp.AudioData))),
		}

		if err := w.uploadWithLimit(gctx, fmt.Sprintf("scene_%d_voiceover", sceneIndex), func() error {
			return w.storage.Upload(gctx, audioAsset.StoragePath, audioResp.AudioData, "audio/mpeg")
		}); err != nil {
			return fmt.Errorf("failed to upload voiceover: %w", err)
		}

		if err := w.db.CreateAsset(gctx, audioAsset); err != nil {
			return fmt.Errorf("failed to save voiceover asset: %w", err)
		}

		applied, err := w.db.UpdateSceneVoiceover(gctx, media.ID, job.Generation, audioAsset.ID, audioResp.DurationMs)
		if err != nil {
			return fmt.Errorf("failed to update scene voiceover: %w", err)
		}
		if !applied {
			log.Printf("Scene %d: voiceover result stale (generation moved on), discarded", sceneIndex)
		}
		return nil
	})

	// ── Pipeline B: Background (video or still → upload) ───────────────
	g.Go(func() error {
		if scene.BackgroundPrompt == "" {
			log.Printf("Scene %d: no background prompt, gradient fallback applies", sceneIndex)
			return nil
		}

		data, assetType, contentType, filename, err := w.generateBackground(gctx, project, scene)
		if err != nil {
			w.db.UpdateSceneMediaError(gctx, media.ID, job.Generation, fmt.Sprintf("Background generation failed: %v", err))
			return fmt.Errorf("failed to generate background: %w", err)
		}
		if data == nil {
			return nil
		}

		bgAsset := &models.Asset{
			ID:            uuid.New(),
			ProjectID:     job.ProjectID,
			SceneIndex:    intPtr(sceneIndex),
			Type:          assetType,
			StorageBucket: w.storage.Bucket,
			StoragePath:   w.storage.ScenePath(job.ProjectID, sceneIndex, filename),
			ContentType:   strPtr(contentType),
			ByteSize:      int64Ptr(int64(len(data))),
		}

		if err := w.uploadWithLimit(gctx, fmt.Sprintf("scene_%d_background", sceneIndex), func() error {
			return w.storage.Upload(gctx, bgAsset.StoragePath, data, contentType)
		}); err != nil {
			return fmt.Errorf("failed to upload background: %w", err)
		}

		if err := w.db.CreateAsset(gctx, bgAsset); err != nil {
			return fmt.Errorf("failed to save background asset: %w", err)
		}

		applied, err := w.db.UpdateSceneBackground(gctx, media.ID, job.Generation, bgAsset.ID)
		if err != nil {
			return fmt.Errorf("failed to update scene background: %w", err)
		}
		if !applied {
			log.Printf("Scene %d: background result stale (generation moved on), discarded", sceneIndex)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("scene synthesis failed: %w", err)
	}

	staged, err := w.db.MarkSceneStaged(ctx, media.ID, job.Generation)
	if err != nil {
		return fmt.Errorf("failed to mark scene staged: %w", err)
	}
	if !staged {
		log.Printf("Scene %d: staging skipped, generation moved on", sceneIndex)
		return nil
	}

	allStaged, err := w.db.AreAllScenesStaged(ctx, job.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to check scene status: %w", err)
	}
	if allStaged {
		log.Printf("All scenes staged for project %s", job.ProjectID)
		return w.db.UpdateProjectStatus(ctx, job.ProjectID, models.ProjectStatusReady)
	}

	return nil
}

// generateBackground picks the richest available provider: Grok video,
// then Veo video, then a Gemini still. Video failures fall back to a
// still rather than failing the scene.
func (w *Worker) generateBackground(ctx context.Context, project *models.Project, scene *plan.VideoScene) (data []byte, assetType models.AssetType, contentType, filename string, err error) {
	durationSec := int(scene.Duration)

	if w.videoGen != nil {
		opts := &services.VideoGenOptions{
			BrandName:   project.BrandName,
			BrandColor:  project.BrandColor,
			AspectRatio: project.AspectRatio,
		}
		data, err = w.videoGen.GenerateVideo(ctx, scene.BackgroundPrompt, "", durationSec, opts)
		if err == nil {
			return data, models.AssetTypeBackgroundVideo, "video/mp4", "background.mp4", nil
		}
		log.Printf("Scene %d: Grok video generation failed, falling back to still: %v", scene.ID, err)
	}

	if w.veo != nil {
		aspect := ""
		if project.AspectRatio != nil {
			aspect = *project.AspectRatio
		}
		data, err = w.veo.GenerateVideo(ctx, scene.BackgroundPrompt, nil, "", aspect)
		if err == nil {
			return data, models.AssetTypeBackgroundVideo, "video/mp4", "background.mp4", nil
		}
		log.Printf("Scene %d: Veo video generation failed, falling back to still: %v", scene.ID, err)
	}

	if w.imageGen == nil {
		log.Printf("Scene %d: no background provider configured, gradient fallback applies", scene.ID)
		return nil, "", "", "", nil
	}

	opts := &services.ImageGenOptions{
		BrandName:   project.BrandName,
		BrandColor:  project.BrandColor,
		AspectRatio: project.AspectRatio,
	}
	data, err = w.imageGen.GenerateImage(ctx, scene.BackgroundPrompt, opts)
	if err != nil {
		return nil, "", "", "", err
	}
	return data, models.AssetTypeBackgroundImage, "image/png", "background.png", nil
}

// handleRenderExport freezes the current plan plus staged media into a
// render manifest and stores it as the project's export artifact.
func (w *Worker) handleRenderExport(ctx context.Context, job *queue.Job) error {
	log.Printf("Exporting render manifest for project %s", job.ProjectID)

	if err := w.db.UpdateProjectStatus(ctx, job.ProjectID, models.ProjectStatusRendering); err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}

	p, err := w.ResolvedPlan(ctx, job.ProjectID)
	if err != nil {
		w.db.UpdateProjectError(ctx, job.ProjectID, "export_failed", err.Error())
		return err
	}

	manifest, err := render.Export(p, w.renderOptions(p))
	if err != nil {
		w.db.UpdateProjectError(ctx, job.ProjectID, "export_failed", err.Error())
		return fmt.Errorf("failed to build render manifest: %w", err)
	}

	manifestJSON, err := manifest.Bytes()
	if err != nil {
		return err
	}

	manifestAsset := &models.Asset{
		ID:            uuid.New(),
		ProjectID:     job.ProjectID,
		Type:          models.AssetTypeRenderManifest,
		StorageBucket: w.storage.Bucket,
		StoragePath:   w.storage.ManifestPath(job.ProjectID),
		ContentType:   strPtr("application/json"),
		ByteSize:      int64Ptr(int64(len(manifestJSON))),
	}

	if err := w.uploadWithLimit(ctx, "render_manifest", func() error {
		return w.storage.Upload(ctx, manifestAsset.StoragePath, manifestJSON, "application/json")
	}); err != nil {
		w.db.UpdateProjectError(ctx, job.ProjectID, "upload_failed", err.Error())
		return fmt.Errorf("failed to upload render manifest: %w", err)
	}

	if err := w.db.CreateAsset(ctx, manifestAsset); err != nil {
		return fmt.Errorf("failed to save manifest asset: %w", err)
	}

	log.Printf("Render manifest exported for project %s (%d frames, %d bytes)", job.ProjectID, manifest.TotalFrames, len(manifestJSON))

	return w.db.SetProjectFinalVideo(ctx, job.ProjectID, manifestAsset.ID)
}

// renderOptions adapts the configured render geometry to one plan. A
// template-driven plan exports at the template's authored total runtime;
// scene durations only proportion the windows inside it.
func (w *Worker) renderOptions(p *plan.VideoPlan) compose.Options {
	opts := w.render
	if p.TemplateID == "" || w.templates == nil {
		return opts
	}

	tmpl, ok := w.templates.Get(p.TemplateID)
	if !ok {
		log.Printf("Template %q not found, exporting at scene-duration total", p.TemplateID)
		return opts
	}

	fps := opts.FPS
	if fps <= 0 {
		fps = timeline.DefaultFPS
	}
	opts.TotalFrames = tmpl.TotalFrames(fps)
	return opts
}

// ResolvedPlan loads the project's latest plan revision and merges the
// staged media URLs into it. The stored plan stays media-free so that
// edits never race with synthesis; URLs are attached only at read time.
func (w *Worker) ResolvedPlan(ctx context.Context, projectID uuid.UUID) (*plan.VideoPlan, error) {
	rev, err := w.db.GetLatestPlanRevision(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	var p plan.VideoPlan
	if err := json.Unmarshal(rev.Plan, &p); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}
	p.Revision = rev.Revision

	mediaRows, err := w.db.GetProjectSceneMedia(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene media: %w", err)
	}

	for _, media := range mediaRows {
		if media.SceneIndex < 0 || media.SceneIndex >= len(p.Scenes) {
			continue
		}
		scene := &p.Scenes[media.SceneIndex]
		scene.MediaGeneration = media.Generation

		if media.VoiceoverAssetID != nil {
			asset, err := w.db.GetAsset(ctx, *media.VoiceoverAssetID)
			if err != nil {
				return nil, fmt.Errorf("failed to load voiceover asset: %w", err)
			}
			scene.VoiceoverURL = w.storage.GetPublicURL(asset.StoragePath)
		}

		if media.BackgroundAssetID != nil {
			asset, err := w.db.GetAsset(ctx, *media.BackgroundAssetID)
			if err != nil {
				return nil, fmt.Errorf("failed to load background asset: %w", err)
			}
			url := w.storage.GetPublicURL(asset.StoragePath)
			switch asset.Type {
			case models.AssetTypeBackgroundVideo:
				scene.BackgroundVideoURL = url
			case models.AssetTypeBackgroundImage:
				scene.BackgroundImageURL = url
			}
		}
	}

	return &p, nil
}

// Helper functions
func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

func int64Ptr(i int64) *int64 {
	return &i
}
