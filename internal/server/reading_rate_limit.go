package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/polarops/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/polarops/internal/observability/metrics"
	"github.com/smallbiznis/polarops/internal/orgcontext"
	"github.com/smallbiznis/polarops/internal/ratelimit"
	"go.uber.org/zap"
)

const (
	rateLimitReasonOrgRate       = "org-rate"
	rateLimitReasonEquipmentRate = "equipment-rate"
)

type readingIngestRateLimitKey struct {
	EquipmentID idValue `json:"equipment_id"`
}

// ReadingIngestRateLimit throttles telemetry writes per organization and per
// equipment. It is a no-op when the limiter is disabled.
func (s *Server) ReadingIngestRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.readingLimiter.Enabled() {
			c.Next()
			return
		}

		orgID, ok := orgcontext.OrgIDFromContext(c.Request.Context())
		if !ok || orgID == 0 {
			AbortWithError(c, ErrOrgRequired)
			return
		}

		endpoint := normalizeRateLimitEndpoint(c)
		ctx := c.Request.Context()

		res, err := s.readingLimiter.AllowOrg(ctx, orgID.String())
		if err != nil {
			logger.FromContext(ctx).Warn("reading ingest org rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}
		if !res.Allowed {
			denyReadingIngestRateLimit(c, endpoint, orgID.String(), rateLimitReasonOrgRate, res, s.obsMetrics)
			return
		}

		equipmentID, err := readReadingIngestKey(c)
		if err != nil {
			logger.FromContext(ctx).Warn("reading ingest rate limit read body failed", zap.Error(err))
			AbortWithError(c, invalidRequestError())
			return
		}

		if equipmentID != "" {
			res, err = s.readingLimiter.AllowEquipment(ctx, orgID.String(), equipmentID)
			if err != nil {
				logger.FromContext(ctx).Warn("reading ingest equipment rate limit check failed", zap.Error(err))
				AbortWithError(c, ErrServiceUnavailable)
				return
			}
			if !res.Allowed {
				denyReadingIngestRateLimit(c, endpoint, orgID.String(), rateLimitReasonEquipmentRate, res, s.obsMetrics)
				return
			}
		}

		recordRateLimitAllowed(ctx, endpoint, orgID.String(), s.obsMetrics)
		c.Next()
	}
}

func denyReadingIngestRateLimit(c *gin.Context, endpoint, orgID, reason string, res *ratelimit.RateLimitResult, metrics *obsmetrics.Metrics) {
	ctx := c.Request.Context()
	logger.FromContext(ctx).Warn("reading ingest rate limit exceeded",
		zap.String("reason", reason),
		zap.String("endpoint", endpoint),
	)
	recordRateLimitDenied(ctx, endpoint, orgID, reason, metrics)

	c.Header("Retry-After", retryAfterSeconds(res))
	c.Header("X-Rate-Limited-Reason", reason)
	AbortWithError(c, ErrRateLimited)
}

func retryAfterSeconds(res *ratelimit.RateLimitResult) string {
	if res == nil || res.RetryAfter <= 0 {
		return "1"
	}
	seconds := int(math.Ceil(res.RetryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}

func recordRateLimitAllowed(ctx context.Context, endpoint, orgID string, metrics *obsmetrics.Metrics) {
	if metrics == nil {
		return
	}
	metrics.RecordRateLimitAllowed(ctx, orgID, endpoint)
}

func recordRateLimitDenied(ctx context.Context, endpoint, orgID, reason string, metrics *obsmetrics.Metrics) {
	if metrics == nil {
		return
	}
	metrics.RecordRateLimitDenied(ctx, orgID, endpoint, reason)
}

func readReadingIngestKey(c *gin.Context) (string, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	if len(body) == 0 {
		return "", nil
	}

	var payload readingIngestRateLimitKey
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", nil
	}
	return strings.TrimSpace(payload.EquipmentID.String()), nil
}

func normalizeRateLimitEndpoint(c *gin.Context) string {
	if c == nil {
		return "unknown"
	}
	endpoint := strings.TrimSpace(c.FullPath())
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.Request.URL.Path)
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return endpoint
}
