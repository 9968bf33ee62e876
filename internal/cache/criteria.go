package cache

import (
	"encoding/json"
	"time"

	"github.com/ibuc/dracmas-service/internal/model"
	"github.com/ibuc/dracmas-service/pkg/logger"
	"github.com/ibuc/dracmas-service/pkg/prom"
	"github.com/ibuc/dracmas-service/pkg/redis"
)

const criteriaKey = "criterios:ativos"

// CriteriaCache keeps the active criterion list in redis for a short TTL.
// Criteria are configuration, not balances, so a brief staleness window is
// acceptable; balances are never cached anywhere.
type CriteriaCache struct {
	r   redis.RedisAdapter
	ttl time.Duration
}

func NewCriteriaCache(r redis.RedisAdapter, ttl time.Duration) *CriteriaCache {
	return &CriteriaCache{
		r:   r,
		ttl: ttl,
	}
}

// Get returns the cached active criteria and whether the cache held them.
// Any redis or decode failure counts as a miss; the caller falls through
// to the store.
func (c *CriteriaCache) Get() ([]*model.Criterion, bool) {
	b, err := c.r.Get(criteriaKey)
	if err != nil {
		prom.IncCounter(prom.SystemDracmas, prom.MetricCriteriaCacheMiss)
		return nil, false
	}

	var criteria []*model.Criterion
	if err := json.Unmarshal(b, &criteria); err != nil {
		logger.Warn("criteria cache holds invalid payload, dropping", "error", err)
		_ = c.r.Del(criteriaKey)
		prom.IncCounter(prom.SystemDracmas, prom.MetricCriteriaCacheMiss)
		return nil, false
	}

	prom.IncCounter(prom.SystemDracmas, prom.MetricCriteriaCacheHits)
	return criteria, true
}

func (c *CriteriaCache) Set(criteria []*model.Criterion) {
	b, err := json.Marshal(criteria)
	if err != nil {
		return
	}
	if err := c.r.Set(criteriaKey, b, c.ttl); err != nil {
		logger.Warn("failed to populate criteria cache", "error", err)
	}
}

func (c *CriteriaCache) Invalidate() {
	if err := c.r.Del(criteriaKey); err != nil {
		logger.Warn("failed to invalidate criteria cache", "error", err)
	}
}
