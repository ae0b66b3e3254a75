package redis

import (
	"context"
	"fmt"
	"time"

	pcdomain "github.com/wyfcoding/insurancerating/internal/productconfig/domain"
	"github.com/wyfcoding/insurancerating/internal/rating/domain"
	"github.com/wyfcoding/insurancerating/pkg/cache"
	"github.com/wyfcoding/insurancerating/pkg/logger"
	"github.com/wyfcoding/insurancerating/pkg/metrics"
)

const snapshotTTL = 10 * time.Minute

// SnapshotProvider 带 Redis 缓存的配置快照提供者。
// 命中缓存直接返回；未命中回源配置仓储并写入缓存。
// 配置更新事件触发 Invalidate，下一次读取即可取到新版本。
type SnapshotProvider struct {
	cache   *cache.RedisCache
	configs pcdomain.ConfigRepository
	metrics *metrics.Metrics
}

// NewSnapshotProvider 创建快照提供者
func NewSnapshotProvider(c *cache.RedisCache, configs pcdomain.ConfigRepository, m *metrics.Metrics) *SnapshotProvider {
	return &SnapshotProvider{cache: c, configs: configs, metrics: m}
}

func snapshotKey(insurerID, productCode string) string {
	return fmt.Sprintf("rating:snapshot:%s:%s", insurerID, productCode)
}

// GetSnapshot 获取指定产品当前版本的评估快照
func (p *SnapshotProvider) GetSnapshot(ctx context.Context, insurerID, productCode string) (*domain.Snapshot, error) {
	key := snapshotKey(insurerID, productCode)

	var snap domain.Snapshot
	found, err := p.cache.GetJSON(ctx, key, &snap)
	if err != nil {
		// 缓存故障降级为直接回源
		logger.Warn(ctx, "snapshot cache read failed", "key", key, "error", err)
	}
	if found && err == nil {
		if p.metrics != nil {
			p.metrics.SnapshotCacheHitsTotal.Inc()
		}
		return &snap, nil
	}

	if p.metrics != nil {
		p.metrics.SnapshotCacheMissTotal.Inc()
	}

	config, err := p.configs.GetCurrent(ctx, insurerID, productCode)
	if err != nil {
		return nil, err
	}
	fresh := config.Snapshot()

	if err := p.cache.SetJSON(ctx, key, fresh, snapshotTTL); err != nil {
		logger.Warn(ctx, "snapshot cache write failed", "key", key, "error", err)
	}
	return fresh, nil
}

// Invalidate 删除指定产品的快照缓存
func (p *SnapshotProvider) Invalidate(ctx context.Context, insurerID, productCode string) error {
	return p.cache.Delete(ctx, snapshotKey(insurerID, productCode))
}
