package middleware

import (
	"github.com/gin-gonic/gin"
)

// HTTPRecorder records served requests.
type HTTPRecorder interface {
	RecordHTTPRequest(method, route string, status int)
}

// HTTPMetrics counts requests by matched route so path parameters such as
// application names do not explode label cardinality.
func HTTPMetrics(recorder HTTPRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		recorder.RecordHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status())
	}
}
