package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pakodev28/foodgram-project-react/internal/types"
)

const maxPageSize = 100

// pageRequest reads ?page and ?limit. Missing or malformed values fall back
// to the first page of defaultLimit items.
func pageRequest(c *gin.Context, defaultLimit int) types.PageRequest {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = 1
	}
	if page > types.MaxPage {
		page = types.MaxPage
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return types.PageRequest{Page: page, Limit: limit}
}

// newPage wraps results with the total count and links to the neighbouring pages
func newPage[T any](c *gin.Context, req types.PageRequest, count int64, results []T) types.Page[T] {
	if results == nil {
		results = []T{}
	}
	p := types.Page[T]{Count: count, Results: results}
	if int64(req.Page)*int64(req.Limit) < count {
		next := pageURL(c.Request, req.Page+1)
		p.Next = &next
	}
	if req.Page > 1 {
		prev := pageURL(c.Request, req.Page-1)
		p.Previous = &prev
	}
	return p
}

func pageURL(r *http.Request, page int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	query := r.URL.Query()
	if page <= 1 {
		query.Del("page")
	} else {
		query.Set("page", strconv.Itoa(page))
	}
	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: query.Encode(),
	}
	return u.String()
}
