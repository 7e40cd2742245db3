package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/blog/internal/domain"
)

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) JSONError {
	t.Helper()
	var body JSONError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestAdmin_CreatePost(t *testing.T) {
	f := newBlogFixture(t, 0)
	catID := uuid.New()

	rec := f.do(jsonRequest(http.MethodPost, "/admin/posts",
		`{"title":"Hello","body":"# Hi","author":"ann","category_id":"`+catID.String()+`"}`))

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp PostResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Hello", resp.Title)
	assert.Equal(t, catID, resp.Category.ID)
	assert.Equal(t, "/posts/"+resp.ID.String(), rec.Header().Get("Location"))
	assert.NotNil(t, resp.Tags, "tags encode as an empty list")

	require.Len(t, f.posts.created, 1)
	assert.Equal(t, "# Hi", f.posts.created[0].Body)
}

func TestAdmin_CreatePost_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed json", `{"title":`, http.StatusBadRequest, domain.EINVALID},
		{"unknown field", `{"title":"x","draft":true}`, http.StatusBadRequest, domain.EINVALID},
		{"trailing data", `{"title":"x"} {}`, http.StatusBadRequest, domain.EINVALID},
		{"validation", `{"title":""}`, http.StatusBadRequest, domain.EINVALID},
		{"too large", `{"body":"` + strings.Repeat("a", maxJSONBody) + `"}`, http.StatusRequestEntityTooLarge, domain.ETOOLARGE},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBlogFixture(t, 0)
			rec := f.do(jsonRequest(http.MethodPost, "/admin/posts", tt.body))

			require.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.code, decodeError(t, rec).Error.Code)
		})
	}
}

func TestAdmin_CreatePost_FieldErrors(t *testing.T) {
	f := newBlogFixture(t, 0)

	rec := f.do(jsonRequest(http.MethodPost, "/admin/posts", `{"title":""}`))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]string{"title": "title is required"}, decodeError(t, rec).Error.Fields)
}

func TestAdmin_UpdateAndDeletePost(t *testing.T) {
	f := newBlogFixture(t, 2)
	id := f.posts.posts[0].ID

	rec := f.do(jsonRequest(http.MethodPut, "/admin/posts/"+id.String(), `{"title":"Renamed","body":"b","category_id":"`+uuid.NewString()+`"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, f.posts.updated, 1)
	assert.Equal(t, id, f.posts.updated[0].ID, "id comes from the path")

	rec = f.do(jsonRequest(http.MethodPut, "/admin/posts/"+uuid.NewString(), `{"title":"x"}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, domain.ENOTFOUND, decodeError(t, rec).Error.Code)

	rec = f.do(httptest.NewRequest(http.MethodDelete, "/admin/posts/"+id.String(), nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []uuid.UUID{id}, f.posts.deleted)

	rec = f.do(httptest.NewRequest(http.MethodDelete, "/admin/posts/bogus", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdmin_ListPosts(t *testing.T) {
	f := newBlogFixture(t, 7)

	rec := f.get("/admin/posts?per_page=3&page=last")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PostListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 3, resp.Page)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, int64(7), resp.Total)
	require.Len(t, resp.Posts, 1)
	assert.Equal(t, "Post 7", resp.Posts[0].Title)

	assert.Equal(t, http.StatusBadRequest, f.get("/admin/posts?per_page=0").Code)
	assert.Equal(t, http.StatusNotFound, f.get("/admin/posts?page=9").Code)
}

func TestAdmin_UploadCover(t *testing.T) {
	f := newBlogFixture(t, 1)
	id := f.posts.posts[0].ID

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("cover", "photo.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/posts/"+id.String()+"/cover", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := f.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	var cover domain.Cover
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cover))
	assert.Equal(t, "posts/"+id.String()+"/cover/x.png", cover.Key)
	assert.Equal(t, "photo.png", f.covers.filename)
	assert.Equal(t, []byte("png-bytes"), f.covers.data)
}

func TestAdmin_UploadCover_Errors(t *testing.T) {
	f := newBlogFixture(t, 1)
	id := f.posts.posts[0].ID

	// Not multipart
	rec := f.do(jsonRequest(http.MethodPost, "/admin/posts/"+id.String()+"/cover", `{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Wrong field name
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("image", "photo.png")
	_, _ = part.Write([]byte("x"))
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/admin/posts/"+id.String()+"/cover", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec = f.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error.Message, `"cover"`)

	// Service rejection passes through
	f.covers.err = domain.Invalid("cover.upload", `unsupported image type "text/plain"`)
	body.Reset()
	mw = multipart.NewWriter(&body)
	part, _ = mw.CreateFormFile("cover", "notes.txt")
	_, _ = part.Write([]byte("hello"))
	_ = mw.Close()
	req = httptest.NewRequest(http.MethodPost, "/admin/posts/"+id.String()+"/cover", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec = f.do(req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `unsupported image type "text/plain"`, decodeError(t, rec).Error.Message)
}

func TestAdmin_Taxonomy(t *testing.T) {
	f := newBlogFixture(t, 0)

	rec := f.do(jsonRequest(http.MethodPost, "/admin/categories", `{"name":"rust"}`))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(jsonRequest(http.MethodPost, "/admin/categories", `{"name":"rust"}`))
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, domain.ECONFLICT, decodeError(t, rec).Error.Code)

	rec = f.get("/admin/categories")
	require.Equal(t, http.StatusOK, rec.Code)
	var cats []TaxonomyItem
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&cats))
	assert.Len(t, cats, 3)

	rec = f.do(jsonRequest(http.MethodPost, "/admin/tags", `{"name":"generics"}`))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.get("/admin/tags")
	require.Equal(t, http.StatusOK, rec.Code)
	var tags []TaxonomyItem
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&tags))
	assert.Len(t, tags, 2)
}

func TestAdmin_ListComments(t *testing.T) {
	f := newBlogFixture(t, 1)
	id := f.posts.posts[0].ID
	f.comments.comments = map[uuid.UUID][]domain.Comment{
		id: {{ID: uuid.New(), PostID: id, Name: "Reader", Email: "r@example.com", Text: "Hi", IPAddress: "203.0.113.9"}},
	}

	rec := f.get("/admin/comments?post_id=" + id.String())
	require.Equal(t, http.StatusOK, rec.Code)
	var comments []CommentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&comments))
	require.Len(t, comments, 1)
	assert.Equal(t, "r@example.com", comments[0].Email)
	assert.Equal(t, "203.0.113.9", comments[0].IPAddress)

	rec = f.get("/admin/comments")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
