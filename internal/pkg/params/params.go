package params

import (
	"strconv"
	"time"

	"clickservice/internal/domain"
	"clickservice/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// ID parses a positive path parameter; on failure it writes 400 and returns false.
func ID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "Invalid "+name, nil)
		return 0, false
	}
	return id, true
}

// OptionalInt64 parses a query value; empty yields 0.
func OptionalInt64(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		response.BadRequest(c, "Invalid query parameter "+name, nil)
		return 0, false
	}
	return v, true
}

// OptionalDate parses a YYYY-MM-DD query value; empty yields nil.
func OptionalDate(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	d, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		response.BadRequest(c, "Invalid query parameter "+name+", expected YYYY-MM-DD", nil)
		return nil, false
	}
	return &d, true
}

// RequiredTime parses an RFC 3339 query value.
func RequiredTime(c *gin.Context, name string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, c.Query(name))
	if err != nil {
		response.BadRequest(c, "Invalid query parameter "+name+", expected RFC 3339", nil)
		return time.Time{}, false
	}
	return t, true
}

// Bind decodes the JSON body; on failure it writes 400 and returns false.
func Bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.BadRequest(c, "Invalid request body", err.Error())
		return false
	}
	return true
}
