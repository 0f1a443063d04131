package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/stockcast/internal/config"
	"github.com/andresuchdata/stockcast/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	planKeyPrefix     = "plan:result"
	planScanBatchSize = 100
)

// PlanCache stores computed plan results keyed by snapshot fingerprint.
// The engine is a pure function of its snapshot, so a hit is always valid
// until the underlying data changes and produces a different fingerprint.
type PlanCache interface {
	GetPlan(ctx context.Context, fingerprint string) (*domain.PlanResult, bool, error)
	SetPlan(ctx context.Context, fingerprint string, result *domain.PlanResult) error
	InvalidateAll(ctx context.Context) error
}

type redisPlanCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopPlanCache struct{}

// NewPlanCache returns a redis-backed cache, or a noop when caching is
// disabled.
func NewPlanCache(cfg config.CacheConfig) (PlanCache, error) {
	if !cfg.Enabled {
		return &noopPlanCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisPlanCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopPlanCache() PlanCache {
	return &noopPlanCache{}
}

func (c *redisPlanCache) GetPlan(ctx context.Context, fingerprint string) (*domain.PlanResult, bool, error) {
	payload, err := c.client.Get(ctx, buildPlanKey(fingerprint)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var result domain.PlanResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, false, fmt.Errorf("decode plan cache: %w", err)
	}

	return &result, true, nil
}

func (c *redisPlanCache) SetPlan(ctx context.Context, fingerprint string, result *domain.PlanResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode plan cache: %w", err)
	}

	if err := c.client.Set(ctx, buildPlanKey(fingerprint), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisPlanCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, planKeyPrefix, planScanBatchSize)
}

func (n *noopPlanCache) GetPlan(ctx context.Context, fingerprint string) (*domain.PlanResult, bool, error) {
	return nil, false, nil
}

func (n *noopPlanCache) SetPlan(ctx context.Context, fingerprint string, result *domain.PlanResult) error {
	return nil
}

func (n *noopPlanCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildPlanKey(fingerprint string) string {
	return fmt.Sprintf("%s:%s", planKeyPrefix, fingerprint)
}

// Fingerprint derives a stable cache key from the snapshot contents plus the
// planning parameters that shape the output.
func Fingerprint(snap *domain.Snapshot, today time.Time, horizonDays int) string {
	payload, err := json.Marshal(struct {
		Snapshot    *domain.Snapshot `json:"snapshot"`
		Today       string           `json:"today"`
		HorizonDays int              `json:"horizon_days"`
	}{snap, today.Format("2006-01-02"), horizonDays})
	if err != nil {
		// Marshal of plain data structs cannot realistically fail; fall back
		// to a key that never collides with a real fingerprint.
		return "unfingerprintable"
	}

	sum := sha1.Sum(payload)
	return hex.EncodeToString(sum[:])
}
