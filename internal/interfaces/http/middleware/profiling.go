package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
)

// Profiling label names
const (
	ProfilingLabelMethod       = "method"
	ProfilingLabelRoute        = "route"
	ProfilingLabelResource     = "resource"
	ProfilingLabelOrganization = "organization_id"
)

// ProfilingLabels runs the rest of the chain under pyroscope labels so CPU
// and allocation profiles can be split by route and organization.
// Register it after JWTAuth to get the organization label.
func ProfilingLabels(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		labels := profilingLabels(c)
		if len(labels) == 0 {
			c.Next()
			return
		}
		pyroscope.TagWrapper(c.Request.Context(), pyroscope.Labels(labels...), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func profilingLabels(c *gin.Context) []string {
	var labels []string
	if c.Request.Method != "" {
		labels = append(labels, ProfilingLabelMethod, c.Request.Method)
	}
	route := c.FullPath()
	if route != "" {
		labels = append(labels, ProfilingLabelRoute, route)
	}
	if resource := resourceFromRoute(route); resource != "" {
		labels = append(labels, ProfilingLabelResource, resource)
	}
	if org := c.GetString(OrganizationIDKey); org != "" {
		labels = append(labels, ProfilingLabelOrganization, org)
	}
	return labels
}

// resourceFromRoute returns the first static segment after /api/vN,
// e.g. "/api/v1/clients/:id" -> "clients"
func resourceFromRoute(route string) string {
	for _, part := range strings.Split(route, "/") {
		if part == "" || part == "api" || isVersionSegment(part) {
			continue
		}
		if strings.HasPrefix(part, ":") || strings.HasPrefix(part, "*") {
			continue
		}
		return part
	}
	return ""
}

func isVersionSegment(segment string) bool {
	if len(segment) < 2 || (segment[0] != 'v' && segment[0] != 'V') {
		return false
	}
	for i := 1; i < len(segment); i++ {
		if segment[i] < '0' || segment[i] > '9' {
			return false
		}
	}
	return true
}
