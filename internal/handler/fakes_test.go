package handler

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/blog/internal/domain"
	"github.com/DukeRupert/blog/web"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// =============================================================================
// Fake Post Service
// =============================================================================

type fakePostService struct {
	mu      sync.Mutex
	posts   []domain.Post // newest first
	views   int           // View calls
	reads   int           // Read calls
	err     error         // returned by every method when set
	created []domain.CreatePostParams
	updated []domain.UpdatePostParams
	deleted []uuid.UUID
	listed  []domain.ListPostsParams
}

func (f *fakePostService) matching(filter domain.PostFilter) []domain.Post {
	var out []domain.Post
	for _, p := range f.posts {
		switch filter.Kind {
		case domain.PostFilterArchive:
			start, end := filter.MonthRange()
			if p.CreatedAt.Before(start) || !p.CreatedAt.Before(end) {
				continue
			}
		case domain.PostFilterCategory:
			if p.Category.ID != filter.CategoryID {
				continue
			}
		case domain.PostFilterTag:
			if !slices.ContainsFunc(p.Tags, func(t domain.Tag) bool { return t.ID == filter.TagID }) {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

func (f *fakePostService) List(_ context.Context, params domain.ListPostsParams) (*domain.ListPostsResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.listed = append(f.listed, params)
	all := f.matching(params.Filter)
	start := min(int(params.Offset), len(all))
	end := min(start+int(params.Limit), len(all))
	return &domain.ListPostsResult{
		Posts:  all[start:end],
		Total:  int64(len(all)),
		Limit:  params.Limit,
		Offset: params.Offset,
	}, nil
}

func (f *fakePostService) Count(_ context.Context, filter domain.PostFilter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.matching(filter))), nil
}

func (f *fakePostService) find(op string, id uuid.UUID) (*domain.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.posts {
		if f.posts[i].ID == id {
			p := f.posts[i]
			return &p, nil
		}
	}
	return nil, domain.NotFound(op, "post", id.String())
}

func (f *fakePostService) Get(_ context.Context, id uuid.UUID) (*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.find("post.get", id)
}

func (f *fakePostService) View(_ context.Context, id uuid.UUID) (*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views++
	p, err := f.find("post.view", id)
	if err != nil {
		return nil, err
	}
	p.Views++
	p.BodyHTML = template.HTML("<p>" + template.HTMLEscapeString(p.Body) + "</p>")
	return p, nil
}

func (f *fakePostService) Read(_ context.Context, id uuid.UUID) (*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	p, err := f.find("post.read", id)
	if err != nil {
		return nil, err
	}
	p.BodyHTML = template.HTML("<p>" + template.HTMLEscapeString(p.Body) + "</p>")
	return p, nil
}

func (f *fakePostService) Create(_ context.Context, params domain.CreatePostParams) (*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, params)
	if params.Title == "" {
		return nil, domain.NewValidationError("post.create", "title", "title is required")
	}
	p := domain.Post{
		ID:       uuid.New(),
		Title:    params.Title,
		Body:     params.Body,
		Author:   params.Author,
		Category: domain.Category{ID: params.CategoryID, Name: "go"},
	}
	f.posts = append([]domain.Post{p}, f.posts...)
	return &p, nil
}

func (f *fakePostService) Update(_ context.Context, params domain.UpdatePostParams) (*domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, params)
	p, err := f.find("post.update", params.ID)
	if err != nil {
		return nil, err
	}
	p.Title = params.Title
	p.Body = params.Body
	return p, nil
}

func (f *fakePostService) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.find("post.delete", id); err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakePostService) Recent(_ context.Context, n int) ([]domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.posts[:min(n, len(f.posts))], nil
}

func (f *fakePostService) Archives(context.Context) ([]domain.Archive, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []domain.Archive
	for _, p := range f.posts {
		y, m := p.CreatedAt.Year(), int(p.CreatedAt.Month())
		if n := len(out); n > 0 && out[n-1].Year == y && out[n-1].Month == m {
			out[n-1].PostCount++
			continue
		}
		out = append(out, domain.Archive{Year: y, Month: m, PostCount: 1})
	}
	return out, nil
}

// =============================================================================
// Fake Taxonomy Service
// =============================================================================

type fakeTaxonomyService struct {
	categories []domain.Category
	tags       []domain.Tag
}

func (f *fakeTaxonomyService) GetCategory(_ context.Context, id uuid.UUID) (*domain.Category, error) {
	for _, c := range f.categories {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, domain.NotFound("category.get", "category", id.String())
}

func (f *fakeTaxonomyService) GetTag(_ context.Context, id uuid.UUID) (*domain.Tag, error) {
	for _, t := range f.tags {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, domain.NotFound("tag.get", "tag", id.String())
}

func (f *fakeTaxonomyService) ListCategories(context.Context) ([]domain.Category, error) {
	return f.categories, nil
}

func (f *fakeTaxonomyService) ListTags(context.Context) ([]domain.Tag, error) {
	return f.tags, nil
}

func (f *fakeTaxonomyService) CreateCategory(_ context.Context, params domain.CreateCategoryParams) (*domain.Category, error) {
	for _, c := range f.categories {
		if c.Name == params.Name {
			return nil, domain.Conflict("category.create", fmt.Sprintf("category %q already exists", params.Name))
		}
	}
	c := domain.Category{ID: uuid.New(), Name: params.Name}
	f.categories = append(f.categories, c)
	return &c, nil
}

func (f *fakeTaxonomyService) CreateTag(_ context.Context, params domain.CreateTagParams) (*domain.Tag, error) {
	t := domain.Tag{ID: uuid.New(), Name: params.Name}
	f.tags = append(f.tags, t)
	return &t, nil
}

// =============================================================================
// Fake Comment Service
// =============================================================================

type fakeCommentService struct {
	comments map[uuid.UUID][]domain.Comment
	created  []domain.CreateCommentParams
}

func (f *fakeCommentService) Create(_ context.Context, params domain.CreateCommentParams) (*domain.Comment, error) {
	f.created = append(f.created, params)

	ve := &domain.ValidationError{Op: "comment.create", Fields: map[string]string{}}
	if params.Name == "" {
		ve.Fields["name"] = "name is required"
	}
	if params.Text == "" {
		ve.Fields["text"] = "text is required"
	}
	if len(ve.Fields) > 0 {
		return nil, ve
	}

	c := domain.Comment{ID: uuid.New(), PostID: params.PostID, Name: params.Name, Text: params.Text, CreatedAt: time.Now()}
	if f.comments == nil {
		f.comments = make(map[uuid.UUID][]domain.Comment)
	}
	f.comments[params.PostID] = append(f.comments[params.PostID], c)
	return &c, nil
}

func (f *fakeCommentService) ListByPost(_ context.Context, postID uuid.UUID) ([]domain.Comment, error) {
	return f.comments[postID], nil
}

func (f *fakeCommentService) Count(_ context.Context, postID uuid.UUID) (int64, error) {
	return int64(len(f.comments[postID])), nil
}

// =============================================================================
// Fake Cover Service
// =============================================================================

type fakeCoverService struct {
	filename    string
	contentType string
	data        []byte
	err         error
}

func (f *fakeCoverService) Upload(_ context.Context, postID uuid.UUID, filename, contentType string, data io.Reader) (*domain.Cover, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}
	f.filename, f.contentType, f.data = filename, contentType, raw
	key := "posts/" + postID.String() + "/cover/x.png"
	return &domain.Cover{Key: key, URL: "/files/" + key}, nil
}

// =============================================================================
// Fixtures
// =============================================================================

type blogFixture struct {
	posts    *fakePostService
	taxonomy *fakeTaxonomyService
	comments *fakeCommentService
	covers   *fakeCoverService
	mux      *http.ServeMux
	category domain.Category
	tag      domain.Tag
}

// newBlogFixture builds a mux with n posts, one per day going back from
// 2024-03-31, alternating between two categories.
func newBlogFixture(t *testing.T, n int) *blogFixture {
	t.Helper()

	goCat := domain.Category{ID: uuid.New(), Name: "go", PostCount: int64((n + 1) / 2)}
	otherCat := domain.Category{ID: uuid.New(), Name: "life", PostCount: int64(n / 2)}
	tag := domain.Tag{ID: uuid.New(), Name: "Testing"}

	f := &blogFixture{
		posts:    &fakePostService{},
		taxonomy: &fakeTaxonomyService{categories: []domain.Category{goCat, otherCat}, tags: []domain.Tag{tag}},
		comments: &fakeCommentService{},
		covers:   &fakeCoverService{},
		category: goCat,
		tag:      tag,
	}

	day := time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		p := domain.Post{
			ID:         uuid.New(),
			Title:      fmt.Sprintf("Post %d", i+1),
			Body:       fmt.Sprintf("Body of post %d", i+1),
			Excerpt:    fmt.Sprintf("Excerpt %d", i+1),
			Author:     "ann",
			Category:   goCat,
			CreatedAt:  day.AddDate(0, 0, -i),
			ModifiedAt: day.AddDate(0, 0, -i),
		}
		if i%2 == 1 {
			p.Category = otherCat
		}
		if i == 0 {
			p.Tags = []domain.Tag{tag}
		}
		f.posts.posts = append(f.posts.posts, p)
	}

	renderer, err := NewRenderer(RendererConfig{FS: web.Templates(), Logger: discardLogger()})
	require.NoError(t, err)

	blog := NewBlogHandler(f.posts, f.taxonomy, f.comments, renderer, BlogConfig{
		SiteTitle:    "Test Blog",
		PostsPerPage: 10,
		RecentPosts:  5,
	}, discardLogger())
	admin := NewAdminHandler(f.posts, f.taxonomy, f.comments, f.covers, discardLogger())

	f.mux = http.NewServeMux()
	noop := func(next http.Handler) http.Handler { return next }
	blog.RegisterRoutes(f.mux, noop)
	admin.RegisterRoutes(f.mux, noop)
	return f
}

func (f *blogFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	return rec
}

func (f *blogFixture) get(path string) *httptest.ResponseRecorder {
	return f.do(httptest.NewRequest(http.MethodGet, path, nil))
}
