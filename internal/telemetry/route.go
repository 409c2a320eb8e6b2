package telemetry

import (
	"github.com/gin-gonic/gin"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// GinRoute tags the request span opened by otelhttp with the matched gin
// route and renames it after that route. otelhttp runs before gin routing and
// cannot see the pattern itself.
func GinRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		if route := c.FullPath(); route != "" {
			span := oteltrace.SpanFromContext(c.Request.Context())
			span.SetAttributes(semconv.HTTPRoute(route))
			span.SetName(c.Request.Method + " " + route)
		}
		c.Next()
	}
}
