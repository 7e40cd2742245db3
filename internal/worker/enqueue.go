package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/DukeRupert/blog/internal/repository"
	"github.com/google/uuid"
)

// Job type constants - these must match the JobHandler.Type() values
const (
	JobTypePurgeFiles    = "purge_files"
	JobTypeNotifyComment = "notify_comment"
)

// Priority constants for job scheduling
const (
	PriorityLow    = 0
	PriorityNormal = 10
	PriorityHigh   = 20
)

// PurgeFilesPayload is the payload for jobs that delete stored files no
// longer referenced by any post.
type PurgeFilesPayload struct {
	Keys []string `json:"keys"`
}

// NotifyCommentPayload is the payload for new comment notification jobs.
// It carries everything the email needs so the job survives the comment
// or post being deleted.
type NotifyCommentPayload struct {
	CommentID uuid.UUID `json:"comment_id"`
	PostID    uuid.UUID `json:"post_id"`
	PostTitle string    `json:"post_title"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	URL       string    `json:"url,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// EnqueueOption is a functional option for customizing job enqueue parameters.
type EnqueueOption func(*repository.EnqueueJobParams)

// WithPriority sets the job priority.
func WithPriority(priority int32) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.Priority = priority
	}
}

// WithMaxAttempts sets the maximum number of retry attempts.
func WithMaxAttempts(attempts int32) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.MaxAttempts = attempts
	}
}

// WithDelay schedules the job to run after a delay.
func WithDelay(delay time.Duration) EnqueueOption {
	return func(p *repository.EnqueueJobParams) {
		p.ScheduledAt = time.Now().Add(delay)
	}
}

// EnqueueJob is a generic helper for enqueuing jobs with custom options.
// Pass the Querier of an open transaction to enqueue atomically with other writes.
func EnqueueJob(
	ctx context.Context,
	queries repository.Querier,
	jobType string,
	payload interface{},
	opts ...EnqueueOption,
) (repository.Job, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return repository.Job{}, fmt.Errorf("marshal payload: %w", err)
	}

	params := repository.EnqueueJobParams{
		JobType:     jobType,
		Payload:     payloadJSON,
		Priority:    PriorityNormal,
		MaxAttempts: 5,
		ScheduledAt: time.Now(),
	}

	for _, opt := range opts {
		opt(&params)
	}

	job, err := queries.EnqueueJob(ctx, params)
	if err != nil {
		return repository.Job{}, fmt.Errorf("enqueue job: %w", err)
	}

	return job, nil
}

// EnqueuePurgeFiles enqueues deletion of the given storage keys. Empty keys
// are skipped; when none remain no job is created and ok is false.
func EnqueuePurgeFiles(
	ctx context.Context,
	queries repository.Querier,
	keys []string,
	opts ...EnqueueOption,
) (job repository.Job, ok bool, err error) {
	payload := PurgeFilesPayload{}
	for _, key := range keys {
		if key != "" {
			payload.Keys = append(payload.Keys, key)
		}
	}
	if len(payload.Keys) == 0 {
		return repository.Job{}, false, nil
	}

	opts = append([]EnqueueOption{WithPriority(PriorityLow)}, opts...)
	job, err = EnqueueJob(ctx, queries, JobTypePurgeFiles, payload, opts...)
	if err != nil {
		return repository.Job{}, false, err
	}
	return job, true, nil
}

// EnqueueNotifyComment enqueues the email telling the blog owner about a
// new comment.
func EnqueueNotifyComment(
	ctx context.Context,
	queries repository.Querier,
	payload NotifyCommentPayload,
	opts ...EnqueueOption,
) (repository.Job, error) {
	return EnqueueJob(ctx, queries, JobTypeNotifyComment, payload, opts...)
}
