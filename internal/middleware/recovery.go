package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/diya-thabet/hirfa/internal/apiresponse"
)

// Recovery turns a handler panic into a 500 envelope. Nothing is written when
// the handler already started the response.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			log.Error().
				Interface("panic", r).
				Str("route", c.FullPath()).
				Str("request_id", c.GetString(ContextRequestID)).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")
			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, apiresponse.Fail("Internal server error", nil))
		}()
		c.Next()
	}
}
