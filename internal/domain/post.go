// Package domain contains core business types and interfaces.
//
// This file defines the Post domain type and the parameter/result types
// used to list, filter and edit posts.
package domain

import (
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"
)

// ExcerptLength is the number of characters kept when an excerpt is
// generated from the post body.
const ExcerptLength = 54

// =============================================================================
// Post Domain Type
// =============================================================================

// Post is a single blog article.
type Post struct {
	ID         uuid.UUID
	Title      string
	Body       string // Markdown source
	Excerpt    string
	Author     string
	Category   Category
	Tags       []Tag
	Views      int64
	CoverKey   string // Storage key of the cover image, if any
	ThumbKey   string // Storage key of the cover thumbnail, if any
	CreatedAt  time.Time
	ModifiedAt time.Time

	// Populated for detail views only
	BodyHTML template.HTML
	TOC      []TOCEntry
	CoverURL string
	ThumbURL string
}

// HasCover reports whether a cover image has been uploaded.
func (p *Post) HasCover() bool {
	return p.CoverKey != ""
}

// WasModified reports whether the post was edited after it was created.
func (p *Post) WasModified() bool {
	return p.ModifiedAt.After(p.CreatedAt)
}

// URL returns the public path of the post.
func (p *Post) URL() string {
	return fmt.Sprintf("/posts/%s", p.ID)
}

// TOCEntry is one heading in a post's table of contents.
type TOCEntry struct {
	ID       string
	Text     string
	Level    int
	Children []TOCEntry
}

// =============================================================================
// Filtering
// =============================================================================

// PostFilterKind selects which subset of posts a list query returns.
type PostFilterKind string

const (
	PostFilterAll      PostFilterKind = "all"
	PostFilterArchive  PostFilterKind = "archive"
	PostFilterCategory PostFilterKind = "category"
	PostFilterTag      PostFilterKind = "tag"
)

// PostFilter narrows a post list. Only the fields matching Kind are used.
type PostFilter struct {
	Kind       PostFilterKind
	Year       int
	Month      int
	CategoryID uuid.UUID
	TagID      uuid.UUID
}

// AllPosts returns a filter that matches every post.
func AllPosts() PostFilter {
	return PostFilter{Kind: PostFilterAll}
}

// ArchivePosts returns a filter for posts created in the given month.
func ArchivePosts(year, month int) PostFilter {
	return PostFilter{Kind: PostFilterArchive, Year: year, Month: month}
}

// CategoryPosts returns a filter for posts in a category.
func CategoryPosts(id uuid.UUID) PostFilter {
	return PostFilter{Kind: PostFilterCategory, CategoryID: id}
}

// TagPosts returns a filter for posts carrying a tag.
func TagPosts(id uuid.UUID) PostFilter {
	return PostFilter{Kind: PostFilterTag, TagID: id}
}

// Validate checks that the filter fields required by Kind are set.
func (f PostFilter) Validate() error {
	const op = "post.filter"

	switch f.Kind {
	case PostFilterAll, "":
		return nil
	case PostFilterArchive:
		if f.Year < 1 || f.Month < 1 || f.Month > 12 {
			return Invalid(op, "archive filter requires a valid year and month")
		}
	case PostFilterCategory:
		if f.CategoryID == uuid.Nil {
			return Invalid(op, "category filter requires a category")
		}
	case PostFilterTag:
		if f.TagID == uuid.Nil {
			return Invalid(op, "tag filter requires a tag")
		}
	default:
		return Invalid(op, fmt.Sprintf("unknown filter %q", f.Kind))
	}
	return nil
}

// MonthRange returns the half-open [start, end) time range of an archive filter.
func (f PostFilter) MonthRange() (time.Time, time.Time) {
	start := time.Date(f.Year, time.Month(f.Month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// =============================================================================
// Post Service Parameters
// =============================================================================

// ListPostsParams contains parameters for listing posts.
type ListPostsParams struct {
	Filter PostFilter
	Limit  int32
	Offset int32
	Total  *int64 // already counted by the caller; counted again when nil
}

// ListPostsResult contains the result of a paginated post list query.
type ListPostsResult struct {
	Posts  []Post
	Total  int64
	Limit  int32
	Offset int32
}

// CreatePostParams contains parameters for creating a post.
type CreatePostParams struct {
	Title      string      `json:"title" validate:"required,max=70"`
	Body       string      `json:"body" validate:"required"`
	Excerpt    string      `json:"excerpt" validate:"max=200"`
	Author     string      `json:"author" validate:"required,max=100"`
	CategoryID uuid.UUID   `json:"category_id" validate:"required"`
	TagIDs     []uuid.UUID `json:"tag_ids"`
}

// UpdatePostParams contains parameters for updating a post.
type UpdatePostParams struct {
	ID         uuid.UUID   `json:"-"`
	Title      string      `json:"title" validate:"required,max=70"`
	Body       string      `json:"body" validate:"required"`
	Excerpt    string      `json:"excerpt" validate:"max=200"`
	CategoryID uuid.UUID   `json:"category_id" validate:"required"`
	TagIDs     []uuid.UUID `json:"tag_ids"`
}

// =============================================================================
// Archives
// =============================================================================

// Archive is a month that has at least one post.
type Archive struct {
	Year      int
	Month     int
	PostCount int64
}

// ArchiveOf returns the archive month containing t. Archive months are
// UTC months, matching the range PostFilter.MonthRange selects.
func ArchiveOf(t time.Time) (year, month int) {
	t = t.UTC()
	return t.Year(), int(t.Month())
}

// Date returns the first day of the archive month.
func (a Archive) Date() time.Time {
	return time.Date(a.Year, time.Month(a.Month), 1, 0, 0, 0, 0, time.UTC)
}

// URL returns the public path of the archive.
func (a Archive) URL() string {
	return fmt.Sprintf("/archives/%d/%d", a.Year, a.Month)
}

// =============================================================================
// Cover Images
// =============================================================================

// Cover describes an uploaded post cover and its thumbnail.
type Cover struct {
	Key      string `json:"key"`
	ThumbKey string `json:"thumb_key"`
	URL      string `json:"url"`
	ThumbURL string `json:"thumb_url"`
}
