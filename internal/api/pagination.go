package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/types"
)

const maxPageSize = 100

// pagination is parsed from ?limit= plus either ?page= or ?offset=.
type pagination struct {
	limit    int
	offset   int
	page     int
	byOffset bool
}

func parsePagination(c *gin.Context, defaultLimit int) (pagination, bool) {
	p := pagination{limit: defaultLimit}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, types.ErrorResponse{Message: "a positive integer is required", Field: "limit"})
			return p, false
		}
		p.limit = min(n, maxPageSize)
	}

	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, types.ErrorResponse{Message: "invalid offset", Field: "offset"})
			return p, false
		}
		p.offset = n
		p.byOffset = true
		return p, true
	}

	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusNotFound, types.ErrorResponse{Message: "invalid page"})
			return p, false
		}
		p.page = n
		p.offset = (n - 1) * p.limit
	}
	return p, true
}

// writePage responds with the page, or 404 when page points past the last
// result.
func writePage[T any](c *gin.Context, p pagination, results []T, count int64) {
	if p.page > 1 && int64(p.offset) >= count {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Message: "invalid page"})
		return
	}
	c.JSON(http.StatusOK, newPage(c, p, results, count))
}

// newPage wraps results with absolute next/previous links.
func newPage[T any](c *gin.Context, p pagination, results []T, count int64) types.Page[T] {
	if results == nil {
		results = []T{}
	}
	page := types.Page[T]{Count: count, Results: results}
	if int64(p.offset+p.limit) < count {
		page.Next = p.link(c, p.offset+p.limit)
	}
	if p.offset > 0 {
		page.Previous = p.link(c, max(p.offset-p.limit, 0))
	}
	return page
}

func (p pagination) link(c *gin.Context, offset int) *string {
	u := absoluteURL(c)
	q := u.Query()
	q.Set("limit", strconv.Itoa(p.limit))
	if p.byOffset {
		q.Set("offset", strconv.Itoa(offset))
	} else {
		q.Del("page")
		if page := offset/p.limit + 1; page > 1 {
			q.Set("page", strconv.Itoa(page))
		}
	}
	u.RawQuery = q.Encode()
	s := u.String()
	return &s
}

func absoluteURL(c *gin.Context) *url.URL {
	u := *c.Request.URL
	u.Scheme = "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		u.Scheme = "https"
	}
	u.Host = c.Request.Host
	return &u
}

// parseID reads a positive integer path parameter. Anything else is a 404,
// the same answer an unknown id gets.
func parseID(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || n == 0 {
		c.JSON(http.StatusNotFound, types.ErrorResponse{Message: "not found"})
		return 0, false
	}
	return uint(n), true
}

// queryInt reads an optional integer query parameter.
func queryInt(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Message: "a valid integer is required", Field: name})
		return 0, false
	}
	return n, true
}

func queryBool(c *gin.Context, name string) bool {
	switch c.Query(name) {
	case "1", "true", "True":
		return true
	}
	return false
}
