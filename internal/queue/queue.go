package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	QueueGeneratePlan    = "queue:generate_plan"
	QueueSynthesizeScene = "queue:synthesize_scene"
	QueueRenderExport    = "queue:render_export"
)

type Queue struct {
	client *redis.Client
}

type Job struct {
	ID         uuid.UUID              `json:"id"`
	Type       string                 `json:"type"`
	ProjectID  uuid.UUID              `json:"project_id"`
	SceneIndex *int                   `json:"scene_index,omitempty"`
	Generation int                    `json:"generation,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

func New(redisURL string) (*Queue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Queue{client: client}, nil
}

func (q *Queue) Close() error {
	return q.client.Close()
}

func (q *Queue) Enqueue(ctx context.Context, queueName string, job *Job) error {
	job.CreatedAt = time.Now()

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	return q.client.RPush(ctx, queueName, data).Err()
}

func (q *Queue) Dequeue(ctx context.Context, queueName string, timeout time.Duration) (*Job, error) {
	result, err := q.client.BLPop(ctx, timeout, queueName).Result()
	if err == redis.Nil {
		return nil, nil // No job available
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue: %w", err)
	}

	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected redis response")
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	return &job, nil
}

func (q *Queue) GetQueueLength(ctx context.Context, queueName string) (int64, error) {
	return q.client.LLen(ctx, queueName).Result()
}

// EnqueueGeneratePlan enqueues a plan generation job
func (q *Queue) EnqueueGeneratePlan(ctx context.Context, projectID uuid.UUID, jobID uuid.UUID) error {
	job := &Job{
		ID:        jobID,
		Type:      "generate_plan",
		ProjectID: projectID,
	}
	return q.Enqueue(ctx, QueueGeneratePlan, job)
}

// EnqueueSynthesizeScene enqueues media synthesis for one scene. The
// generation rides along so the worker can discard results for scenes
// edited after the job was queued.
func (q *Queue) EnqueueSynthesizeScene(ctx context.Context, projectID, jobID uuid.UUID, sceneIndex, generation int) error {
	job := &Job{
		ID:         jobID,
		Type:       "synthesize_scene",
		ProjectID:  projectID,
		SceneIndex: &sceneIndex,
		Generation: generation,
	}
	return q.Enqueue(ctx, QueueSynthesizeScene, job)
}

// EnqueueRenderExport enqueues a render manifest export job
func (q *Queue) EnqueueRenderExport(ctx context.Context, projectID, jobID uuid.UUID) error {
	job := &Job{
		ID:        jobID,
		Type:      "render_export",
		ProjectID: projectID,
	}
	return q.Enqueue(ctx, QueueRenderExport, job)
}
