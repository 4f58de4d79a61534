package http

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

const ctxPagingKey = "pagination"

type Paging struct {
	Page  int
	Limit int
	Skip  int
}

// Paginate normalizes page/limit query parameters. Out-of-range values fall
// back to the defaults rather than erroring.
func Paginate() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := strconv.Atoi(c.Query("page"))
		if err != nil || page < 1 {
			page = defaultPage
		}
		limit, err := strconv.Atoi(c.Query("limit"))
		if err != nil || limit < 1 || limit > maxLimit {
			limit = defaultLimit
		}
		c.Set(ctxPagingKey, Paging{
			Page:  page,
			Limit: limit,
			Skip:  (page - 1) * limit,
		})
		c.Next()
	}
}

func GetPaging(c *gin.Context) Paging {
	if v, ok := c.Get(ctxPagingKey); ok {
		if p, ok := v.(Paging); ok {
			return p
		}
	}
	return Paging{Page: defaultPage, Limit: defaultLimit}
}
