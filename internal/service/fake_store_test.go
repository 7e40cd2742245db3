package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/DukeRupert/blog/internal/domain"
	"github.com/DukeRupert/blog/internal/repository"
	"github.com/DukeRupert/blog/internal/worker"
)

// fakeStore is an in-memory repository.Store. It models the constraints the
// services rely on: unique names, foreign keys and created_at ordering.
type fakeStore struct {
	mu         sync.Mutex
	categories map[uuid.UUID]repository.Category
	tags       map[uuid.UUID]repository.Tag
	posts      map[uuid.UUID]repository.Post
	postTags   map[uuid.UUID][]uuid.UUID
	comments   []repository.Comment
	jobs       []repository.Job
	now        time.Time

	// err is returned by every query when set.
	err error
	// enqueueErr is returned by EnqueueJob only.
	enqueueErr error
	// counts is the number of Count* queries run.
	counts int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		categories: make(map[uuid.UUID]repository.Category),
		tags:       make(map[uuid.UUID]repository.Tag),
		posts:      make(map[uuid.UUID]repository.Post),
		postTags:   make(map[uuid.UUID][]uuid.UUID),
		now:        time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (f *fakeStore) tick() time.Time {
	f.now = f.now.Add(time.Hour)
	return f.now
}

// seedPost inserts a post directly, bypassing the services.
func (f *fakeStore) seedPost(title string, categoryID uuid.UUID, createdAt time.Time, tagIDs ...uuid.UUID) repository.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := repository.Post{
		ID:         uuid.New(),
		Title:      title,
		Body:       "Body of " + title,
		Excerpt:    "Excerpt of " + title,
		Author:     "ann",
		CategoryID: categoryID,
		CreatedAt:  createdAt,
		ModifiedAt: createdAt,
	}
	f.posts[p.ID] = p
	f.postTags[p.ID] = append([]uuid.UUID(nil), tagIDs...)
	return p
}

func (f *fakeStore) seedCategory(name string) repository.Category {
	c, _ := f.CreateCategory(context.Background(), name)
	return c
}

func (f *fakeStore) seedTag(name string) repository.Tag {
	t, _ := f.CreateTag(context.Background(), name)
	return t
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: pgUniqueViolation}
}

func foreignKeyViolation() error {
	return &pgconn.PgError{Code: pgForeignKeyViolation}
}

// =============================================================================
// Store
// =============================================================================

func (f *fakeStore) ExecTx(ctx context.Context, fn func(repository.Querier) error) error {
	f.mu.Lock()
	snapshot := f.snapshot()
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.restore(snapshot)
		f.mu.Unlock()
		return err
	}
	return nil
}

type fakeSnapshot struct {
	posts    map[uuid.UUID]repository.Post
	postTags map[uuid.UUID][]uuid.UUID
	comments []repository.Comment
	jobs     []repository.Job
}

func (f *fakeStore) snapshot() fakeSnapshot {
	s := fakeSnapshot{
		posts:    make(map[uuid.UUID]repository.Post, len(f.posts)),
		postTags: make(map[uuid.UUID][]uuid.UUID, len(f.postTags)),
		comments: append([]repository.Comment(nil), f.comments...),
		jobs:     append([]repository.Job(nil), f.jobs...),
	}
	for k, v := range f.posts {
		s.posts[k] = v
	}
	for k, v := range f.postTags {
		s.postTags[k] = append([]uuid.UUID(nil), v...)
	}
	return s
}

func (f *fakeStore) restore(s fakeSnapshot) {
	f.posts = s.posts
	f.postTags = s.postTags
	f.comments = s.comments
	f.jobs = s.jobs
}

// =============================================================================
// Posts
// =============================================================================

func (f *fakeStore) sortedPosts(match func(repository.Post) bool) []repository.Post {
	var out []repository.Post
	for _, p := range f.posts {
		if match(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func page[T any](items []T, limit, offset int32) []T {
	if int(offset) >= len(items) {
		return nil
	}
	end := int(offset) + int(limit)
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func (f *fakeStore) hasTag(postID, tagID uuid.UUID) bool {
	for _, id := range f.postTags[postID] {
		if id == tagID {
			return true
		}
	}
	return false
}

func inRange(p repository.Post, start, end time.Time) bool {
	return !p.CreatedAt.Before(start) && p.CreatedAt.Before(end)
}

func (f *fakeStore) CountPosts(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts++
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.posts)), nil
}

func (f *fakeStore) CountPostsByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts++
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.sortedPosts(func(p repository.Post) bool { return p.CategoryID == categoryID }))), nil
}

func (f *fakeStore) CountPostsByCreatedRange(ctx context.Context, arg repository.CountPostsByCreatedRangeParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts++
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.sortedPosts(func(p repository.Post) bool { return inRange(p, arg.CreatedAt, arg.CreatedAt_2) }))), nil
}

func (f *fakeStore) CountPostsByTag(ctx context.Context, tagID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts++
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.sortedPosts(func(p repository.Post) bool { return f.hasTag(p.ID, tagID) }))), nil
}

func (f *fakeStore) ListPosts(ctx context.Context, arg repository.ListPostsParams) ([]repository.ListPostsRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var rows []repository.ListPostsRow
	for _, p := range page(f.sortedPosts(func(repository.Post) bool { return true }), arg.Limit, arg.Offset) {
		rows = append(rows, repository.ListPostsRow{Post: p, Category: f.categories[p.CategoryID]})
	}
	return rows, nil
}

func (f *fakeStore) ListPostsByCategory(ctx context.Context, arg repository.ListPostsByCategoryParams) ([]repository.ListPostsByCategoryRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var rows []repository.ListPostsByCategoryRow
	all := f.sortedPosts(func(p repository.Post) bool { return p.CategoryID == arg.CategoryID })
	for _, p := range page(all, arg.Limit, arg.Offset) {
		rows = append(rows, repository.ListPostsByCategoryRow{Post: p, Category: f.categories[p.CategoryID]})
	}
	return rows, nil
}

func (f *fakeStore) ListPostsByCreatedRange(ctx context.Context, arg repository.ListPostsByCreatedRangeParams) ([]repository.ListPostsByCreatedRangeRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var rows []repository.ListPostsByCreatedRangeRow
	all := f.sortedPosts(func(p repository.Post) bool { return inRange(p, arg.CreatedAt, arg.CreatedAt_2) })
	for _, p := range page(all, arg.Limit, arg.Offset) {
		rows = append(rows, repository.ListPostsByCreatedRangeRow{Post: p, Category: f.categories[p.CategoryID]})
	}
	return rows, nil
}

func (f *fakeStore) ListPostsByTag(ctx context.Context, arg repository.ListPostsByTagParams) ([]repository.ListPostsByTagRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var rows []repository.ListPostsByTagRow
	all := f.sortedPosts(func(p repository.Post) bool { return f.hasTag(p.ID, arg.TagID) })
	for _, p := range page(all, arg.Limit, arg.Offset) {
		rows = append(rows, repository.ListPostsByTagRow{Post: p, Category: f.categories[p.CategoryID]})
	}
	return rows, nil
}

func (f *fakeStore) ListRecentPosts(ctx context.Context, limit int32) ([]repository.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return page(f.sortedPosts(func(repository.Post) bool { return true }), limit, 0), nil
}

func (f *fakeStore) ListArchives(ctx context.Context) ([]repository.ListArchivesRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var rows []repository.ListArchivesRow
	for _, p := range f.sortedPosts(func(repository.Post) bool { return true }) {
		year, month := domain.ArchiveOf(p.CreatedAt)
		y, m := int32(year), int32(month)
		if n := len(rows); n > 0 && rows[n-1].Year == y && rows[n-1].Month == m {
			rows[n-1].PostCount++
			continue
		}
		rows = append(rows, repository.ListArchivesRow{Year: y, Month: m, PostCount: 1})
	}
	return rows, nil
}

func (f *fakeStore) GetPost(ctx context.Context, id uuid.UUID) (repository.GetPostRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return repository.GetPostRow{}, f.err
	}
	p, ok := f.posts[id]
	if !ok {
		return repository.GetPostRow{}, sql.ErrNoRows
	}
	return repository.GetPostRow{Post: p, Category: f.categories[p.CategoryID]}, nil
}

func (f *fakeStore) IncrementPostViews(ctx context.Context, id uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	p, ok := f.posts[id]
	if !ok {
		return 0, sql.ErrNoRows
	}
	p.Views++
	f.posts[id] = p
	return p.Views, nil
}

func (f *fakeStore) CreatePost(ctx context.Context, arg repository.CreatePostParams) (repository.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return repository.Post{}, f.err
	}
	if _, ok := f.categories[arg.CategoryID]; !ok {
		return repository.Post{}, foreignKeyViolation()
	}
	now := f.tick()
	p := repository.Post{
		ID:         uuid.New(),
		Title:      arg.Title,
		Body:       arg.Body,
		Excerpt:    arg.Excerpt,
		Author:     arg.Author,
		CategoryID: arg.CategoryID,
		CreatedAt:  now,
		ModifiedAt: now,
	}
	f.posts[p.ID] = p
	return p, nil
}

func (f *fakeStore) UpdatePost(ctx context.Context, arg repository.UpdatePostParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	p, ok := f.posts[arg.ID]
	if !ok {
		return 0, nil
	}
	if _, ok := f.categories[arg.CategoryID]; !ok {
		return 0, foreignKeyViolation()
	}
	p.Title, p.Body, p.Excerpt, p.CategoryID = arg.Title, arg.Body, arg.Excerpt, arg.CategoryID
	p.ModifiedAt = f.tick()
	f.posts[arg.ID] = p
	return 1, nil
}

func (f *fakeStore) DeletePost(ctx context.Context, id uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	if _, ok := f.posts[id]; !ok {
		return 0, nil
	}
	delete(f.posts, id)
	delete(f.postTags, id)
	kept := f.comments[:0]
	for _, c := range f.comments {
		if c.PostID != id {
			kept = append(kept, c)
		}
	}
	f.comments = kept
	return 1, nil
}

func (f *fakeStore) SetPostCover(ctx context.Context, arg repository.SetPostCoverParams) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	p, ok := f.posts[arg.ID]
	if !ok {
		return 0, nil
	}
	p.CoverKey, p.ThumbKey = arg.CoverKey, arg.ThumbKey
	f.posts[arg.ID] = p
	return 1, nil
}

func (f *fakeStore) AddPostTags(ctx context.Context, arg repository.AddPostTagsParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, id := range arg.TagIds {
		if _, ok := f.tags[id]; !ok {
			return foreignKeyViolation()
		}
	}
	for _, id := range arg.TagIds {
		if !f.hasTag(arg.PostID, id) {
			f.postTags[arg.PostID] = append(f.postTags[arg.PostID], id)
		}
	}
	return nil
}

func (f *fakeStore) DeletePostTags(ctx context.Context, postID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.postTags, postID)
	return nil
}

func (f *fakeStore) ListTagsForPosts(ctx context.Context, postIds []uuid.UUID) ([]repository.ListTagsForPostsRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var rows []repository.ListTagsForPostsRow
	for _, postID := range postIds {
		for _, tagID := range f.postTags[postID] {
			rows = append(rows, repository.ListTagsForPostsRow{PostID: postID, Tag: f.tags[tagID]})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Tag.Name < rows[j].Tag.Name })
	return rows, nil
}

// =============================================================================
// Taxonomy
// =============================================================================

func (f *fakeStore) CreateCategory(ctx context.Context, name string) (repository.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return repository.Category{}, f.err
	}
	for _, c := range f.categories {
		if c.Name == name {
			return repository.Category{}, uniqueViolation()
		}
	}
	c := repository.Category{ID: uuid.New(), Name: name, CreatedAt: f.tick()}
	f.categories[c.ID] = c
	return c, nil
}

func (f *fakeStore) CreateTag(ctx context.Context, name string) (repository.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return repository.Tag{}, f.err
	}
	for _, t := range f.tags {
		if t.Name == name {
			return repository.Tag{}, uniqueViolation()
		}
	}
	t := repository.Tag{ID: uuid.New(), Name: name, CreatedAt: f.tick()}
	f.tags[t.ID] = t
	return t, nil
}

func (f *fakeStore) GetCategory(ctx context.Context, id uuid.UUID) (repository.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return repository.Category{}, f.err
	}
	c, ok := f.categories[id]
	if !ok {
		return repository.Category{}, sql.ErrNoRows
	}
	return c, nil
}

func (f *fakeStore) GetTag(ctx context.Context, id uuid.UUID) (repository.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return repository.Tag{}, f.err
	}
	t, ok := f.tags[id]
	if !ok {
		return repository.Tag{}, sql.ErrNoRows
	}
	return t, nil
}

func (f *fakeStore) ListCategoriesWithPostCount(ctx context.Context) ([]repository.ListCategoriesWithPostCountRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var rows []repository.ListCategoriesWithPostCountRow
	for _, c := range f.categories {
		n := len(f.sortedPosts(func(p repository.Post) bool { return p.CategoryID == c.ID }))
		rows = append(rows, repository.ListCategoriesWithPostCountRow{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt, PostCount: int64(n)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, nil
}

func (f *fakeStore) ListTagsWithPostCount(ctx context.Context) ([]repository.ListTagsWithPostCountRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var rows []repository.ListTagsWithPostCountRow
	for _, t := range f.tags {
		n := len(f.sortedPosts(func(p repository.Post) bool { return f.hasTag(p.ID, t.ID) }))
		rows = append(rows, repository.ListTagsWithPostCountRow{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt, PostCount: int64(n)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows, nil
}

// =============================================================================
// Comments
// =============================================================================

func (f *fakeStore) CreateComment(ctx context.Context, arg repository.CreateCommentParams) (repository.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return repository.Comment{}, f.err
	}
	if _, ok := f.posts[arg.PostID]; !ok {
		return repository.Comment{}, foreignKeyViolation()
	}
	c := repository.Comment{
		ID:        uuid.New(),
		PostID:    arg.PostID,
		Name:      arg.Name,
		Email:     arg.Email,
		Url:       arg.Url,
		Text:      arg.Text,
		IpAddress: arg.IpAddress,
		CreatedAt: f.tick(),
	}
	f.comments = append(f.comments, c)
	return c, nil
}

func (f *fakeStore) ListCommentsByPost(ctx context.Context, postID uuid.UUID) ([]repository.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []repository.Comment
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) CountCommentsByPost(ctx context.Context, postID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for _, c := range f.comments {
		if c.PostID == postID {
			n++
		}
	}
	return n, nil
}

// =============================================================================
// Jobs
// =============================================================================

func (f *fakeStore) EnqueueJob(ctx context.Context, arg repository.EnqueueJobParams) (repository.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return repository.Job{}, f.err
	}
	if f.enqueueErr != nil {
		return repository.Job{}, f.enqueueErr
	}
	job := repository.Job{
		ID:          uuid.New(),
		JobType:     arg.JobType,
		Payload:     arg.Payload,
		Status:      "pending",
		Priority:    arg.Priority,
		MaxAttempts: arg.MaxAttempts,
		ScheduledAt: arg.ScheduledAt,
		CreatedAt:   f.tick(),
	}
	f.jobs = append(f.jobs, job)
	return job, nil
}

// The worker drives the remaining job queries; the services only enqueue.

func (f *fakeStore) DequeueJob(ctx context.Context) (repository.Job, error) {
	return repository.Job{}, sql.ErrNoRows
}

func (f *fakeStore) UpdateJobStarted(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeStore) UpdateJobCompleted(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeStore) UpdateJobFailed(ctx context.Context, arg repository.UpdateJobFailedParams) error {
	return nil
}

func (f *fakeStore) RecoverStaleJobs(ctx context.Context, thresholdSeconds float64) (int64, error) {
	return 0, nil
}

// purgedKeys returns the keys of every enqueued purge job.
func (f *fakeStore) purgedKeys(t *testing.T) []string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for _, job := range f.jobs {
		if job.JobType != worker.JobTypePurgeFiles {
			continue
		}
		var p worker.PurgeFilesPayload
		if err := json.Unmarshal(job.Payload, &p); err != nil {
			t.Fatalf("decode purge payload: %v", err)
		}
		keys = append(keys, p.Keys...)
	}
	return keys
}

var _ repository.Store = (*fakeStore)(nil)
