// Package handler contains HTTP handlers for the blog.
//
// This file implements the public pages: the post index, post detail with
// comments, and the archive, category and tag listings.
package handler

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/netip"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/DukeRupert/blog/internal/csrf"
	"github.com/DukeRupert/blog/internal/domain"
	"github.com/DukeRupert/blog/internal/metrics"
	"github.com/DukeRupert/blog/internal/middleware"
	"github.com/DukeRupert/blog/internal/pagination"
	"github.com/DukeRupert/blog/internal/service"
	navpkg "github.com/DukeRupert/blog/internal/templ/components/pagination"
)

// =============================================================================
// Template Data Types
// =============================================================================

// SidebarData is shown next to every public page.
type SidebarData struct {
	Recent     []domain.Post
	Archives   []domain.Archive
	Categories []domain.Category
	Tags       []domain.Tag
}

// ListPageData contains data for the post list pages (index, archive,
// category, tag).
type ListPageData struct {
	SiteTitle     string
	Heading       string // empty on the index
	CurrentPath   string
	Posts         []domain.Post
	Page          pagination.Page
	Window        pagination.Window
	IsPaginated   bool
	PaginationNav template.HTML // rendered nav, empty for a single page
	SidebarData
}

// DetailPageData contains data for the post detail page.
type DetailPageData struct {
	SiteTitle   string
	CurrentPath string
	Post        *domain.Post
	Comments    []domain.Comment
	CSRFToken   string
	Form        map[string]string // comment form values, kept on error
	Errors      map[string]string // field-level comment errors
	SidebarData
}

// =============================================================================
// Handler Configuration
// =============================================================================

// BlogConfig holds the settings of the public pages.
type BlogConfig struct {
	SiteTitle     string
	PostsPerPage  int
	RecentPosts   int
	SecureCookies bool
}

// BlogHandler handles the public blog pages.
type BlogHandler struct {
	posts    service.PostService
	taxonomy service.TaxonomyService
	comments service.CommentService
	renderer *Renderer
	cfg      BlogConfig
	logger   *slog.Logger
}

// NewBlogHandler creates a new BlogHandler.
func NewBlogHandler(
	posts service.PostService,
	taxonomy service.TaxonomyService,
	comments service.CommentService,
	renderer *Renderer,
	cfg BlogConfig,
	logger *slog.Logger,
) *BlogHandler {
	return &BlogHandler{
		posts:    posts,
		taxonomy: taxonomy,
		comments: comments,
		renderer: renderer,
		cfg:      cfg,
		logger:   logger,
	}
}

// RegisterRoutes registers the public routes. limitComments wraps the
// comment POST route.
func (h *BlogHandler) RegisterRoutes(mux *http.ServeMux, limitComments func(http.Handler) http.Handler) {
	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("GET /posts/{id}", h.Detail)
	mux.HandleFunc("GET /archives/{year}/{month}", h.Archive)
	mux.HandleFunc("GET /categories/{id}", h.Category)
	mux.HandleFunc("GET /tags/{id}", h.Tag)
	mux.Handle("POST /posts/{id}/comments", limitComments(http.HandlerFunc(h.CreateComment)))
}

// =============================================================================
// GET / - Index
// =============================================================================

// Index lists all posts.
func (h *BlogHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.listPosts(w, r, domain.AllPosts(), "")
}

// =============================================================================
// GET /archives/{year}/{month}
// =============================================================================

// Archive lists the posts created in one month.
func (h *BlogHandler) Archive(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.PathValue("year"))
	if err != nil || year < 1 {
		NotFoundResponse(w, r, h.logger)
		return
	}
	month, err := strconv.Atoi(r.PathValue("month"))
	if err != nil || month < 1 || month > 12 {
		NotFoundResponse(w, r, h.logger)
		return
	}

	heading := fmt.Sprintf("Archives: %s %d", time.Month(month), year)
	h.listPosts(w, r, domain.ArchivePosts(year, month), heading)
}

// =============================================================================
// GET /categories/{id}
// =============================================================================

// Category lists the posts in a category.
func (h *BlogHandler) Category(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		NotFoundResponse(w, r, h.logger)
		return
	}

	category, err := h.taxonomy.GetCategory(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.listPosts(w, r, domain.CategoryPosts(id), "Category: "+category.Name)
}

// =============================================================================
// GET /tags/{id}
// =============================================================================

// Tag lists the posts carrying a tag.
func (h *BlogHandler) Tag(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		NotFoundResponse(w, r, h.logger)
		return
	}

	tag, err := h.taxonomy.GetTag(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.listPosts(w, r, domain.TagPosts(id), "Tag: "+tag.Name)
}

// listPosts renders one page of the posts matching filter. A page query
// value that is not a page of the result answers 404.
func (h *BlogHandler) listPosts(w http.ResponseWriter, r *http.Request, filter domain.PostFilter, heading string) {
	ctx := r.Context()

	total, err := h.posts.Count(ctx, filter)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	page := pagination.NewPage(1, h.cfg.PostsPerPage, total)
	number, err := pagination.ParseNumber(r.URL.Query().Get("page"), page.TotalPages())
	if err != nil {
		NotFoundResponse(w, r, h.logger)
		return
	}
	page = pagination.NewPage(number, h.cfg.PostsPerPage, total)

	result, err := h.posts.List(ctx, domain.ListPostsParams{
		Filter: filter,
		Limit:  int32(page.Limit()),
		Offset: int32(page.Offset()),
		Total:  &total,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	navData, err := navpkg.FromPage(page)
	if err != nil {
		InternalErrorResponse(w, r, h.logger, err)
		return
	}
	nav, err := navpkg.HTML(ctx, navData, navpkg.Config{BaseURL: r.URL.RequestURI()})
	if err != nil {
		InternalErrorResponse(w, r, h.logger, err)
		return
	}

	sidebar, err := h.sidebar(ctx)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.renderer.RenderHTTP(w, "index", ListPageData{
		SiteTitle:     h.cfg.SiteTitle,
		Heading:       heading,
		CurrentPath:   r.URL.Path,
		Posts:         result.Posts,
		Page:          page,
		Window:        navData.Window,
		IsPaginated:   page.IsPaginated(),
		PaginationNav: nav,
		SidebarData:   sidebar,
	})
}

// =============================================================================
// GET /posts/{id} - Detail
// =============================================================================

// Detail renders a post with its comments and counts the view.
func (h *BlogHandler) Detail(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		NotFoundResponse(w, r, h.logger)
		return
	}

	post, err := h.posts.View(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.renderDetail(w, r, post, nil, nil, http.StatusOK)
}

// =============================================================================
// POST /posts/{id}/comments
// =============================================================================

// CreateComment processes the comment form. A valid comment redirects
// back to the post; an invalid one shows the form again with errors.
func (h *BlogHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		NotFoundResponse(w, r, h.logger)
		return
	}

	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("comment.form", "Invalid form submission."))
		return
	}

	if !csrf.ValidateRequest(r) {
		metrics.CommentRejected("csrf")
		h.logger.Warn("comment rejected: bad csrf token", "post_id", id, "ip", middleware.ClientIP(r))
		http.Error(w, "Your session has expired. Please reload the page and try again.", http.StatusForbidden)
		return
	}

	form := map[string]string{
		"name":  r.FormValue("name"),
		"email": r.FormValue("email"),
		"url":   r.FormValue("url"),
		"text":  r.FormValue("text"),
	}

	// An unparseable address is stored as no address
	ip, _ := netip.ParseAddr(middleware.ClientIP(r))

	_, err = h.comments.Create(r.Context(), domain.CreateCommentParams{
		PostID:    id,
		Name:      form["name"],
		Email:     form["email"],
		URL:       form["url"],
		Text:      form["text"],
		IPAddress: ip,
	})
	if err != nil {
		fields := domain.FieldErrors(err)
		if fields == nil {
			ErrorResponse(w, r, h.logger, err)
			return
		}

		metrics.CommentRejected("invalid")
		post, err := h.posts.Read(r.Context(), id)
		if err != nil {
			ErrorResponse(w, r, h.logger, err)
			return
		}
		h.renderDetail(w, r, post, form, fields, http.StatusBadRequest)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/posts/%s#comments", id), http.StatusSeeOther)
}

func (h *BlogHandler) renderDetail(w http.ResponseWriter, r *http.Request, post *domain.Post, form, fieldErrors map[string]string, status int) {
	ctx := r.Context()

	comments, err := h.comments.ListByPost(ctx, post.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	sidebar, err := h.sidebar(ctx)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	token, err := csrf.EnsureToken(w, r, h.cfg.SecureCookies)
	if err != nil {
		InternalErrorResponse(w, r, h.logger, err)
		return
	}

	h.renderer.RenderHTTPStatus(w, "detail", DetailPageData{
		SiteTitle:   h.cfg.SiteTitle,
		CurrentPath: r.URL.Path,
		Post:        post,
		Comments:    comments,
		CSRFToken:   token,
		Form:        form,
		Errors:      fieldErrors,
		SidebarData: sidebar,
	}, status)
}

// =============================================================================
// Sidebar
// =============================================================================

func (h *BlogHandler) sidebar(ctx context.Context) (SidebarData, error) {
	var data SidebarData
	var err error

	if data.Recent, err = h.posts.Recent(ctx, h.cfg.RecentPosts); err != nil {
		return data, err
	}
	if data.Archives, err = h.posts.Archives(ctx); err != nil {
		return data, err
	}
	if data.Categories, err = h.taxonomy.ListCategories(ctx); err != nil {
		return data, err
	}
	if data.Tags, err = h.taxonomy.ListTags(ctx); err != nil {
		return data, err
	}
	return data, nil
}
