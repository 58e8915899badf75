// Package pagination computes page metadata and navigation links for
// offset-paginated list responses.
package pagination

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	// DefaultPage is used when the client does not ask for a page.
	DefaultPage = 1
	// DefaultPageSize is used when the client does not ask for a page size.
	DefaultPageSize = 20
	// MaxPageSize caps the number of items per page.
	MaxPageSize = 100
)

// Meta describes where a page sits in the full result set.
type Meta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// Offset returns the number of rows to skip for a 1-based page. Offsets
// too large for an int saturate at math.MaxInt.
func Offset(page, size int) int {
	if page < 1 || size < 1 {
		return 0
	}
	if page-1 > math.MaxInt/size {
		return math.MaxInt
	}
	return (page - 1) * size
}

// TotalPages returns ceil(total/size). It is 0 when there are no items.
func TotalPages(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// NewMeta builds the metadata of one page.
func NewMeta(page, size, total int) Meta {
	return Meta{
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: TotalPages(total, size),
	}
}

// Filters are the query parameters every link carries over unchanged.
// Dates are kept as the raw strings the client sent.
type Filters struct {
	StartDate string
	EndDate   string
}

// Links are the navigation URLs of a list response.
type Links struct {
	First string `json:"first"`
	Prev  string `json:"prev,omitempty"`
	Next  string `json:"next,omitempty"`
	Last  string `json:"last"`
}

// BuildLinks returns first, last and, where they exist, prev and next links
// for the page described by meta. Every link keeps the active filters and
// page size; page is always the final query parameter.
func BuildLinks(basePath string, meta Meta, f Filters) Links {
	last := meta.TotalPages
	if last < 1 {
		last = 1
	}

	links := Links{
		First: pageURL(basePath, 1, meta.PageSize, f),
		Last:  pageURL(basePath, last, meta.PageSize, f),
	}
	if meta.Page > 1 && meta.Page <= last+1 {
		links.Prev = pageURL(basePath, meta.Page-1, meta.PageSize, f)
	}
	if meta.Page < meta.TotalPages {
		links.Next = pageURL(basePath, meta.Page+1, meta.PageSize, f)
	}
	return links
}

func pageURL(basePath string, page, size int, f Filters) string {
	var b strings.Builder
	b.WriteString(basePath)
	b.WriteByte('?')
	if f.StartDate != "" {
		b.WriteString("start_date=" + url.QueryEscape(f.StartDate) + "&")
	}
	if f.EndDate != "" {
		b.WriteString("end_date=" + url.QueryEscape(f.EndDate) + "&")
	}
	b.WriteString("page_size=" + strconv.Itoa(size))
	b.WriteString("&page=" + strconv.Itoa(page))
	return b.String()
}
