// Package service contains the business logic layer.
//
// This file implements the post service: listing and filtering posts,
// rendering a post for its detail page, and the admin write operations.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/DukeRupert/blog/internal/domain"
	"github.com/DukeRupert/blog/internal/markdown"
	"github.com/DukeRupert/blog/internal/metrics"
	"github.com/DukeRupert/blog/internal/repository"
	"github.com/DukeRupert/blog/internal/storage"
	"github.com/DukeRupert/blog/internal/worker"
)

// =============================================================================
// Interface Definition
// =============================================================================

// PostService defines the interface for post-related operations.
type PostService interface {
	// List retrieves a page of posts matching the filter, newest first.
	// Posts carry their category and tags.
	// Returns domain.EINVALID if the filter is malformed.
	List(ctx context.Context, params domain.ListPostsParams) (*domain.ListPostsResult, error)

	// Count returns the number of posts matching the filter.
	Count(ctx context.Context, filter domain.PostFilter) (int64, error)

	// Get retrieves a post by ID without rendering its body.
	// Returns domain.ENOTFOUND if the post does not exist.
	Get(ctx context.Context, id uuid.UUID) (*domain.Post, error)

	// View records a view of the post and returns it with the body
	// rendered to HTML and a table of contents.
	// Returns domain.ENOTFOUND if the post does not exist.
	View(ctx context.Context, id uuid.UUID) (*domain.Post, error)

	// Read returns the post rendered like View without counting a view.
	// Used when the detail page is shown again after a rejected comment.
	Read(ctx context.Context, id uuid.UUID) (*domain.Post, error)

	// Create creates a post and sets its tags.
	// Returns domain.EINVALID for validation errors or unknown category/tags.
	Create(ctx context.Context, params domain.CreatePostParams) (*domain.Post, error)

	// Update replaces a post's content and tags.
	// Returns domain.ENOTFOUND if the post does not exist.
	Update(ctx context.Context, params domain.UpdatePostParams) (*domain.Post, error)

	// Delete removes a post, its tags, comments and cover images.
	// Returns domain.ENOTFOUND if the post does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// Recent returns the n newest posts.
	Recent(ctx context.Context, n int) ([]domain.Post, error)

	// Archives returns the months that have posts, newest first.
	Archives(ctx context.Context) ([]domain.Archive, error)
}

// =============================================================================
// Implementation
// =============================================================================

// postService implements the PostService interface.
type postService struct {
	store    repository.Store
	markdown *markdown.Renderer
	storage  storage.Storage
	logger   *slog.Logger
}

// NewPostService creates a new PostService.
//
// Parameters:
// - store: Repository store for database access
// - md: Markdown renderer for post bodies and excerpts
// - files: Storage holding cover images (may be nil)
// - logger: Structured logger for operation logging
func NewPostService(
	store repository.Store,
	md *markdown.Renderer,
	files storage.Storage,
	logger *slog.Logger,
) PostService {
	return &postService{
		store:    store,
		markdown: md,
		storage:  files,
		logger:   logger,
	}
}

// =============================================================================
// List / Count
// =============================================================================

// List retrieves a page of posts matching the filter.
func (s *postService) List(ctx context.Context, params domain.ListPostsParams) (*domain.ListPostsResult, error) {
	const op = "post.list"

	if err := params.Filter.Validate(); err != nil {
		return nil, err
	}

	var total int64
	if params.Total != nil {
		total = *params.Total
	} else {
		var err error
		if total, err = s.Count(ctx, params.Filter); err != nil {
			return nil, err
		}
	}

	posts, err := s.listPage(ctx, params)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list posts")
	}

	if err := s.attachTags(ctx, posts); err != nil {
		return nil, domain.Internal(err, op, "failed to load post tags")
	}
	for i := range posts {
		s.resolveCoverURLs(ctx, &posts[i])
	}

	return &domain.ListPostsResult{
		Posts:  posts,
		Total:  total,
		Limit:  params.Limit,
		Offset: params.Offset,
	}, nil
}

// listPage runs the list query that matches the filter kind.
func (s *postService) listPage(ctx context.Context, params domain.ListPostsParams) ([]domain.Post, error) {
	f := params.Filter

	switch f.Kind {
	case domain.PostFilterArchive:
		start, end := f.MonthRange()
		rows, err := s.store.ListPostsByCreatedRange(ctx, repository.ListPostsByCreatedRangeParams{
			CreatedAt:   start,
			CreatedAt_2: end,
			Limit:       params.Limit,
			Offset:      params.Offset,
		})
		if err != nil {
			return nil, err
		}
		posts := make([]domain.Post, 0, len(rows))
		for _, row := range rows {
			posts = append(posts, toPost(row.Post, row.Category))
		}
		return posts, nil

	case domain.PostFilterCategory:
		rows, err := s.store.ListPostsByCategory(ctx, repository.ListPostsByCategoryParams{
			CategoryID: f.CategoryID,
			Limit:      params.Limit,
			Offset:     params.Offset,
		})
		if err != nil {
			return nil, err
		}
		posts := make([]domain.Post, 0, len(rows))
		for _, row := range rows {
			posts = append(posts, toPost(row.Post, row.Category))
		}
		return posts, nil

	case domain.PostFilterTag:
		rows, err := s.store.ListPostsByTag(ctx, repository.ListPostsByTagParams{
			TagID:  f.TagID,
			Limit:  params.Limit,
			Offset: params.Offset,
		})
		if err != nil {
			return nil, err
		}
		posts := make([]domain.Post, 0, len(rows))
		for _, row := range rows {
			posts = append(posts, toPost(row.Post, row.Category))
		}
		return posts, nil

	default:
		rows, err := s.store.ListPosts(ctx, repository.ListPostsParams{
			Limit:  params.Limit,
			Offset: params.Offset,
		})
		if err != nil {
			return nil, err
		}
		posts := make([]domain.Post, 0, len(rows))
		for _, row := range rows {
			posts = append(posts, toPost(row.Post, row.Category))
		}
		return posts, nil
	}
}

// Count returns the number of posts matching the filter.
func (s *postService) Count(ctx context.Context, filter domain.PostFilter) (int64, error) {
	const op = "post.count"

	if err := filter.Validate(); err != nil {
		return 0, err
	}

	var (
		total int64
		err   error
	)
	switch filter.Kind {
	case domain.PostFilterArchive:
		start, end := filter.MonthRange()
		total, err = s.store.CountPostsByCreatedRange(ctx, repository.CountPostsByCreatedRangeParams{
			CreatedAt:   start,
			CreatedAt_2: end,
		})
	case domain.PostFilterCategory:
		total, err = s.store.CountPostsByCategory(ctx, filter.CategoryID)
	case domain.PostFilterTag:
		total, err = s.store.CountPostsByTag(ctx, filter.TagID)
	default:
		total, err = s.store.CountPosts(ctx)
	}
	if err != nil {
		return 0, domain.Internal(err, op, "failed to count posts")
	}

	return total, nil
}

// =============================================================================
// Get / View
// =============================================================================

// Get retrieves a post by ID.
func (s *postService) Get(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	const op = "post.get"

	row, err := s.store.GetPost(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound(op, "post", id.String())
		}
		return nil, domain.Internal(err, op, "failed to get post")
	}

	post := toPost(row.Post, row.Category)
	posts := []domain.Post{post}
	if err := s.attachTags(ctx, posts); err != nil {
		return nil, domain.Internal(err, op, "failed to load post tags")
	}
	post = posts[0]
	s.resolveCoverURLs(ctx, &post)

	return &post, nil
}

// View records a view and returns the rendered post.
func (s *postService) View(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	const op = "post.view"

	views, err := s.store.IncrementPostViews(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.NotFound(op, "post", id.String())
		}
		return nil, domain.Internal(err, op, "failed to record post view")
	}
	metrics.PostViewsTotal.Inc()

	post, err := s.Read(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Views = views

	return post, nil
}

// Read returns the post with its body rendered to HTML.
func (s *postService) Read(ctx context.Context, id uuid.UUID) (*domain.Post, error) {
	const op = "post.read"

	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	doc, err := s.markdown.Render(post.Body)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to render post body")
	}
	post.BodyHTML = doc.HTML
	post.TOC = doc.TOC

	return post, nil
}

// =============================================================================
// Create / Update / Delete
// =============================================================================

// Create creates a post.
func (s *postService) Create(ctx context.Context, params domain.CreatePostParams) (*domain.Post, error) {
	const op = "post.create"

	params.Title = strings.TrimSpace(params.Title)
	params.Author = strings.TrimSpace(params.Author)
	params.Excerpt = strings.TrimSpace(params.Excerpt)
	if err := validateStruct(op, params); err != nil {
		return nil, err
	}
	if params.Excerpt == "" {
		params.Excerpt = s.markdown.Excerpt(params.Body, domain.ExcerptLength)
	}

	var id uuid.UUID
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		row, err := q.CreatePost(ctx, repository.CreatePostParams{
			Title:      params.Title,
			Body:       params.Body,
			Excerpt:    params.Excerpt,
			Author:     params.Author,
			CategoryID: params.CategoryID,
		})
		if err != nil {
			return err
		}
		id = row.ID
		return setTags(ctx, q, id, params.TagIDs)
	})
	if err != nil {
		return nil, s.writeError(op, err, "failed to create post")
	}

	metrics.PostsPublished.Inc()
	s.logger.Info("post created",
		"post_id", id,
		"title", params.Title,
		"tags", len(params.TagIDs),
	)

	return s.Get(ctx, id)
}

// Update replaces a post's content and tags.
func (s *postService) Update(ctx context.Context, params domain.UpdatePostParams) (*domain.Post, error) {
	const op = "post.update"

	params.Title = strings.TrimSpace(params.Title)
	params.Excerpt = strings.TrimSpace(params.Excerpt)
	if err := validateStruct(op, params); err != nil {
		return nil, err
	}
	if params.Excerpt == "" {
		params.Excerpt = s.markdown.Excerpt(params.Body, domain.ExcerptLength)
	}

	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		n, err := q.UpdatePost(ctx, repository.UpdatePostParams{
			ID:         params.ID,
			Title:      params.Title,
			Body:       params.Body,
			Excerpt:    params.Excerpt,
			CategoryID: params.CategoryID,
		})
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.NotFound(op, "post", params.ID.String())
		}
		if err := q.DeletePostTags(ctx, params.ID); err != nil {
			return err
		}
		return setTags(ctx, q, params.ID, params.TagIDs)
	})
	if err != nil {
		return nil, s.writeError(op, err, "failed to update post")
	}

	s.logger.Info("post updated", "post_id", params.ID)

	return s.Get(ctx, params.ID)
}

// Delete removes a post. Its cover files are purged by a background job
// enqueued in the same transaction.
func (s *postService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "post.delete"

	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		row, err := q.GetPost(ctx, id)
		if err != nil {
			if isNoRows(err) {
				return domain.NotFound(op, "post", id.String())
			}
			return domain.Internal(err, op, "failed to get post")
		}

		n, err := q.DeletePost(ctx, id)
		if err != nil {
			return domain.Internal(err, op, "failed to delete post")
		}
		if n == 0 {
			return domain.NotFound(op, "post", id.String())
		}

		keys := []string{
			domain.NullStringValue(row.Post.CoverKey),
			domain.NullStringValue(row.Post.ThumbKey),
		}
		if _, _, err := worker.EnqueuePurgeFiles(ctx, q, keys); err != nil {
			return domain.Internal(err, op, "failed to schedule cover removal")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("post deleted", "post_id", id)
	return nil
}

// setTags links a post to the given tags.
func setTags(ctx context.Context, q repository.Querier, postID uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}
	return q.AddPostTags(ctx, repository.AddPostTagsParams{
		PostID: postID,
		TagIds: tagIDs,
	})
}

// writeError maps errors from write transactions onto domain errors.
func (s *postService) writeError(op string, err error, message string) error {
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		return err
	}
	if isForeignKeyViolation(err) {
		return domain.Invalid(op, "category or tag does not exist")
	}
	return domain.Internal(err, op, message)
}

// =============================================================================
// Sidebar
// =============================================================================

// Recent returns the n newest posts.
func (s *postService) Recent(ctx context.Context, n int) ([]domain.Post, error) {
	const op = "post.recent"

	if n <= 0 {
		return []domain.Post{}, nil
	}

	rows, err := s.store.ListRecentPosts(ctx, int32(n))
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list recent posts")
	}

	posts := make([]domain.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, toPost(row, repository.Category{ID: row.CategoryID}))
	}
	return posts, nil
}

// Archives returns the months that have posts.
func (s *postService) Archives(ctx context.Context) ([]domain.Archive, error) {
	const op = "post.archives"

	rows, err := s.store.ListArchives(ctx)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to list archives")
	}

	archives := make([]domain.Archive, 0, len(rows))
	for _, row := range rows {
		archives = append(archives, domain.Archive{
			Year:      int(row.Year),
			Month:     int(row.Month),
			PostCount: row.PostCount,
		})
	}
	return archives, nil
}

// =============================================================================
// Helper Functions
// =============================================================================

// attachTags loads the tags of all posts with a single query.
func (s *postService) attachTags(ctx context.Context, posts []domain.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}

	rows, err := s.store.ListTagsForPosts(ctx, ids)
	if err != nil {
		return err
	}

	byPost := make(map[uuid.UUID][]domain.Tag, len(posts))
	for _, row := range rows {
		byPost[row.PostID] = append(byPost[row.PostID], toTag(row.Tag))
	}
	for i := range posts {
		posts[i].Tags = byPost[posts[i].ID]
	}
	return nil
}

// resolveCoverURLs fills in the public URLs of a post's cover images.
func (s *postService) resolveCoverURLs(ctx context.Context, post *domain.Post) {
	if s.storage == nil || !post.HasCover() {
		return
	}

	if url, err := s.storage.URL(ctx, post.CoverKey, coverURLExpiry); err == nil {
		post.CoverURL = url
	} else {
		s.logger.Warn("failed to resolve cover URL", "post_id", post.ID, "error", err)
	}
	if post.ThumbKey == "" {
		return
	}
	if url, err := s.storage.URL(ctx, post.ThumbKey, coverURLExpiry); err == nil {
		post.ThumbURL = url
	} else {
		s.logger.Warn("failed to resolve thumbnail URL", "post_id", post.ID, "error", err)
	}
}

// toPost converts repository rows to a domain post.
func toPost(p repository.Post, c repository.Category) domain.Post {
	return domain.Post{
		ID:      p.ID,
		Title:   p.Title,
		Body:    p.Body,
		Excerpt: p.Excerpt,
		Author:  p.Author,
		Category: domain.Category{
			ID:        c.ID,
			Name:      c.Name,
			CreatedAt: c.CreatedAt,
		},
		Views:      p.Views,
		CoverKey:   domain.NullStringValue(p.CoverKey),
		ThumbKey:   domain.NullStringValue(p.ThumbKey),
		CreatedAt:  p.CreatedAt,
		ModifiedAt: p.ModifiedAt,
	}
}

func toTag(t repository.Tag) domain.Tag {
	return domain.Tag{
		ID:        t.ID,
		Name:      t.Name,
		CreatedAt: t.CreatedAt,
	}
}
