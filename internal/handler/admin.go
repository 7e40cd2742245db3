// Package handler contains HTTP handlers for the blog.
//
// This file implements the admin JSON API used to manage posts, covers,
// categories and tags, and to read comments.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/DukeRupert/blog/internal/domain"
	"github.com/DukeRupert/blog/internal/pagination"
	"github.com/DukeRupert/blog/internal/service"
)

// maxJSONBody caps admin request bodies other than cover uploads.
const maxJSONBody = 1 << 20

// =============================================================================
// Response Types
// =============================================================================

// PostResponse is the JSON form of a post.
type PostResponse struct {
	ID         uuid.UUID      `json:"id"`
	Title      string         `json:"title"`
	Body       string         `json:"body"`
	Excerpt    string         `json:"excerpt"`
	Author     string         `json:"author"`
	Category   TaxonomyItem   `json:"category"`
	Tags       []TaxonomyItem `json:"tags"`
	Views      int64          `json:"views"`
	Cover      *domain.Cover  `json:"cover,omitempty"`
	URL        string         `json:"url"`
	CreatedAt  time.Time      `json:"created_at"`
	ModifiedAt time.Time      `json:"modified_at"`
}

// TaxonomyItem is the JSON form of a category or tag.
type TaxonomyItem struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	PostCount int64     `json:"post_count,omitempty"`
}

// PostListResponse is one page of posts.
type PostListResponse struct {
	Posts      []PostResponse `json:"posts"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
	Total      int64          `json:"total"`
}

// CommentResponse is the JSON form of a comment.
type CommentResponse struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	URL       string    `json:"url,omitempty"`
	Text      string    `json:"text"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toPostResponse(p *domain.Post) PostResponse {
	resp := PostResponse{
		ID:         p.ID,
		Title:      p.Title,
		Body:       p.Body,
		Excerpt:    p.Excerpt,
		Author:     p.Author,
		Category:   TaxonomyItem{ID: p.Category.ID, Name: p.Category.Name},
		Tags:       make([]TaxonomyItem, 0, len(p.Tags)),
		Views:      p.Views,
		URL:        p.URL(),
		CreatedAt:  p.CreatedAt,
		ModifiedAt: p.ModifiedAt,
	}
	for _, t := range p.Tags {
		resp.Tags = append(resp.Tags, TaxonomyItem{ID: t.ID, Name: t.Name})
	}
	if p.HasCover() {
		resp.Cover = &domain.Cover{
			Key:      p.CoverKey,
			ThumbKey: p.ThumbKey,
			URL:      p.CoverURL,
			ThumbURL: p.ThumbURL,
		}
	}
	return resp
}

// =============================================================================
// Handler Configuration
// =============================================================================

// AdminHandler handles the admin JSON API.
type AdminHandler struct {
	posts    service.PostService
	taxonomy service.TaxonomyService
	comments service.CommentService
	covers   service.CoverService
	logger   *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	posts service.PostService,
	taxonomy service.TaxonomyService,
	comments service.CommentService,
	covers service.CoverService,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{
		posts:    posts,
		taxonomy: taxonomy,
		comments: comments,
		covers:   covers,
		logger:   logger,
	}
}

// RegisterRoutes registers admin routes behind requireAdmin.
func (h *AdminHandler) RegisterRoutes(mux *http.ServeMux, requireAdmin func(http.Handler) http.Handler) {
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, requireAdmin(fn))
	}

	handle("GET /admin/posts", h.ListPosts)
	handle("POST /admin/posts", h.CreatePost)
	handle("GET /admin/posts/{id}", h.GetPost)
	handle("PUT /admin/posts/{id}", h.UpdatePost)
	handle("DELETE /admin/posts/{id}", h.DeletePost)
	handle("POST /admin/posts/{id}/cover", h.UploadCover)
	handle("GET /admin/categories", h.ListCategories)
	handle("POST /admin/categories", h.CreateCategory)
	handle("GET /admin/tags", h.ListTags)
	handle("POST /admin/tags", h.CreateTag)
	handle("GET /admin/comments", h.ListComments)
}

// =============================================================================
// Posts
// =============================================================================

// ListPosts returns a page of posts, newest first.
func (h *AdminHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	perPage := pagination.DefaultPerPage
	if raw := r.URL.Query().Get("per_page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			ErrorResponse(w, r, h.logger, domain.Invalid("admin.posts.list", "per_page must be a positive integer"))
			return
		}
		perPage = n
	}

	total, err := h.posts.Count(ctx, domain.AllPosts())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	page := pagination.NewPage(1, perPage, total)
	number, err := pagination.ParseNumber(r.URL.Query().Get("page"), page.TotalPages())
	if err != nil {
		NotFoundResponse(w, r, h.logger)
		return
	}
	page = pagination.NewPage(number, perPage, total)

	result, err := h.posts.List(ctx, domain.ListPostsParams{
		Filter: domain.AllPosts(),
		Limit:  int32(page.Limit()),
		Offset: int32(page.Offset()),
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	resp := PostListResponse{
		Posts:      make([]PostResponse, 0, len(result.Posts)),
		Page:       page.Number,
		TotalPages: page.TotalPages(),
		Total:      result.Total,
	}
	for i := range result.Posts {
		resp.Posts = append(resp.Posts, toPostResponse(&result.Posts[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetPost returns a single post.
func (h *AdminHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostResponse(post))
}

// CreatePost creates a post from a JSON body.
func (h *AdminHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var params domain.CreatePostParams
	if err := decodeJSON(w, r, &params); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	post, err := h.posts.Create(r.Context(), params)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.logger.Info("post created", "post_id", post.ID, "title", post.Title)
	w.Header().Set("Location", post.URL())
	writeJSON(w, http.StatusCreated, toPostResponse(post))
}

// UpdatePost replaces a post's content and tags.
func (h *AdminHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var params domain.UpdatePostParams
	if err := decodeJSON(w, r, &params); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	params.ID = id

	post, err := h.posts.Update(r.Context(), params)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostResponse(post))
}

// DeletePost removes a post.
func (h *AdminHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.posts.Delete(r.Context(), id); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.logger.Info("post deleted", "post_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// UploadCover stores the "cover" file of a multipart form as the post cover.
func (h *AdminHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	const op = "admin.cover.upload"

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	// Leave room for the multipart framing around the file
	r.Body = http.MaxBytesReader(w, r.Body, service.MaxCoverSize+maxJSONBody)
	if err := r.ParseMultipartForm(service.MaxCoverSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ErrorResponse(w, r, h.logger, domain.Errorf(domain.ETOOLARGE, op, "cover image must be %d MB or smaller", service.MaxCoverSize>>20))
			return
		}
		ErrorResponse(w, r, h.logger, domain.Invalid(op, "expected a multipart form"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("cover")
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid(op, `missing "cover" file`))
		return
	}
	defer file.Close()

	cover, err := h.covers.Upload(r.Context(), id, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, cover)
}

// =============================================================================
// Categories / Tags
// =============================================================================

// ListCategories returns all categories with post counts.
func (h *AdminHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.taxonomy.ListCategories(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	items := make([]TaxonomyItem, 0, len(categories))
	for _, c := range categories {
		items = append(items, TaxonomyItem{ID: c.ID, Name: c.Name, PostCount: c.PostCount})
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateCategory creates a category.
func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var params domain.CreateCategoryParams
	if err := decodeJSON(w, r, &params); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	category, err := h.taxonomy.CreateCategory(r.Context(), params)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, TaxonomyItem{ID: category.ID, Name: category.Name})
}

// ListTags returns all tags with post counts.
func (h *AdminHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.taxonomy.ListTags(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	items := make([]TaxonomyItem, 0, len(tags))
	for _, t := range tags {
		items = append(items, TaxonomyItem{ID: t.ID, Name: t.Name, PostCount: t.PostCount})
	}
	writeJSON(w, http.StatusOK, items)
}

// CreateTag creates a tag.
func (h *AdminHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var params domain.CreateTagParams
	if err := decodeJSON(w, r, &params); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	tag, err := h.taxonomy.CreateTag(r.Context(), params)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, TaxonomyItem{ID: tag.ID, Name: tag.Name})
}

// =============================================================================
// Comments
// =============================================================================

// ListComments returns the comments on the post named by ?post_id=.
func (h *AdminHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := uuid.Parse(r.URL.Query().Get("post_id"))
	if err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("admin.comments.list", "post_id must be a post ID"))
		return
	}

	comments, err := h.comments.ListByPost(r.Context(), postID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	resp := make([]CommentResponse, 0, len(comments))
	for _, c := range comments {
		resp = append(resp, CommentResponse{
			ID:        c.ID,
			PostID:    c.PostID,
			Name:      c.Name,
			Email:     c.Email,
			URL:       c.URL,
			Text:      c.Text,
			IPAddress: c.IPAddress,
			CreatedAt: c.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Helpers
// =============================================================================

// pathID parses the {id} path value, answering 404 when it is not a UUID.
func (h *AdminHandler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		NotFoundResponse(w, r, h.logger)
		return uuid.Nil, false
	}
	return id, true
}

// decodeJSON decodes a single JSON object from the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	const op = "admin.decode"

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.Errorf(domain.ETOOLARGE, op, "request body is too large")
		}
		return domain.Invalid(op, "request body must be a valid JSON object")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return domain.Invalid(op, "request body must contain a single JSON object")
	}
	return nil
}
