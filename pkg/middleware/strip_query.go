package middleware

import (
	"github.com/gin-gonic/gin"
)

// StripQueryParams drops the named parameters from the query string before
// anything later in the chain sees it, the access log included
func StripQueryParams(names ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.RawQuery == "" {
			c.Next()
			return
		}

		q := c.Request.URL.Query()

		changed := false
		for _, n := range names {
			if q.Has(n) {
				q.Del(n)
				changed = true
			}
		}

		if changed {
			c.Request.URL.RawQuery = q.Encode()
		}

		c.Next()
	}
}
