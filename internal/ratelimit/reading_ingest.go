package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/polarops/internal/config"
)

const (
	keyReadingIngestOrg       = "readings:ingest:org:%s"
	keyReadingIngestEquipment = "readings:ingest:equipment:%s:%s"
)

var (
	ErrRedisAddrRequired = errors.New("rate limit redis addr is required")
	ErrInvalidOrgLimit   = errors.New("reading ingest org rate limit must be positive")
	ErrInvalidEquipLimit = errors.New("reading ingest equipment rate limit must be positive")
)

// ReadingIngestLimiter throttles telemetry ingestion per organization and per
// equipment. A nil limiter allows everything.
type ReadingIngestLimiter struct {
	enabled bool

	bucket *TokenBucket

	orgRate        float64
	orgBurst       int
	equipmentRate  float64
	equipmentBurst int
}

func NewReadingIngestLimiter(cfg config.Config, client *redis.Client) (*ReadingIngestLimiter, error) {
	limitCfg := cfg.RateLimit
	if !limitCfg.Enabled || client == nil {
		return nil, nil
	}
	if limitCfg.ReadingIngestOrgRate <= 0 || limitCfg.ReadingIngestOrgBurst <= 0 {
		return nil, ErrInvalidOrgLimit
	}
	if limitCfg.ReadingIngestEquipmentRate <= 0 || limitCfg.ReadingIngestEquipmentBurst <= 0 {
		return nil, ErrInvalidEquipLimit
	}

	return &ReadingIngestLimiter{
		enabled:        true,
		bucket:         NewTokenBucket(client),
		orgRate:        limitCfg.ReadingIngestOrgRate,
		orgBurst:       limitCfg.ReadingIngestOrgBurst,
		equipmentRate:  limitCfg.ReadingIngestEquipmentRate,
		equipmentBurst: limitCfg.ReadingIngestEquipmentBurst,
	}, nil
}

func (l *ReadingIngestLimiter) Enabled() bool {
	return l != nil && l.enabled
}

func (l *ReadingIngestLimiter) AllowOrg(ctx context.Context, orgID string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	key := fmt.Sprintf(keyReadingIngestOrg, strings.TrimSpace(orgID))
	return l.bucket.Allow(ctx, key, l.orgRate, l.orgBurst)
}

func (l *ReadingIngestLimiter) AllowEquipment(ctx context.Context, orgID, equipmentID string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}
	key := fmt.Sprintf(keyReadingIngestEquipment, strings.TrimSpace(orgID), strings.TrimSpace(equipmentID))
	return l.bucket.Allow(ctx, key, l.equipmentRate, l.equipmentBurst)
}
