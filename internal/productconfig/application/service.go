package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/wyfcoding/insurancerating/internal/productconfig/domain"
	rating "github.com/wyfcoding/insurancerating/internal/rating/domain"
	"github.com/wyfcoding/insurancerating/pkg/metrics"
)

// PutRateTableCommand 写入或替换单一维度的费率表
type PutRateTableCommand struct {
	InsurerID   string
	ProductCode string
	Table       rating.RateTable
}

// PutClausesCommand 整体替换条款定价清单
type PutClausesCommand struct {
	InsurerID   string
	ProductCode string
	Clauses     []rating.ClausePricing
}

// PutFeesCommand 整体替换税费清单；切片顺序即级联计算顺序
type PutFeesCommand struct {
	InsurerID   string
	ProductCode string
	Fees        []rating.FeeType
}

// PutLimitsCommand 替换保费与保额边界
type PutLimitsCommand struct {
	InsurerID   string
	ProductCode string
	Limits      rating.PolicyLimits
}

// PutDimensionOrderCommand 替换维度评估顺序
type PutDimensionOrderCommand struct {
	InsurerID   string
	ProductCode string
	Order       []rating.Dimension
}

// PutBaseRateCommand 替换基础保费规则
type PutBaseRateCommand struct {
	InsurerID   string
	ProductCode string
	Base        rating.BaseRate
}

// ConfigApplicationService 产品配置应用服务。
// 所有写操作遵循 读取当前版本 → 变更 → 校验 → 保存新版本 → 发布事件 的流程；
// 校验失败不产生新版本，当前生效配置不受影响。
type ConfigApplicationService struct {
	repo      domain.ConfigRepository
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewConfigApplicationService(
	repo domain.ConfigRepository,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ConfigApplicationService {
	return &ConfigApplicationService{
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

func (s *ConfigApplicationService) PutRateTable(ctx context.Context, cmd *PutRateTableCommand) (*domain.ProductConfig, error) {
	return s.saveNewVersion(ctx, cmd.InsurerID, cmd.ProductCode, domain.SectionRateTables, func(c *domain.ProductConfig) {
		c.RateTables[cmd.Table.Dimension] = cmd.Table
	})
}

func (s *ConfigApplicationService) PutClauses(ctx context.Context, cmd *PutClausesCommand) (*domain.ProductConfig, error) {
	return s.saveNewVersion(ctx, cmd.InsurerID, cmd.ProductCode, domain.SectionClauses, func(c *domain.ProductConfig) {
		c.Clauses = cmd.Clauses
	})
}

func (s *ConfigApplicationService) PutFees(ctx context.Context, cmd *PutFeesCommand) (*domain.ProductConfig, error) {
	return s.saveNewVersion(ctx, cmd.InsurerID, cmd.ProductCode, domain.SectionFees, func(c *domain.ProductConfig) {
		c.Fees = cmd.Fees
	})
}

func (s *ConfigApplicationService) PutLimits(ctx context.Context, cmd *PutLimitsCommand) (*domain.ProductConfig, error) {
	return s.saveNewVersion(ctx, cmd.InsurerID, cmd.ProductCode, domain.SectionLimits, func(c *domain.ProductConfig) {
		c.Limits = cmd.Limits
	})
}

func (s *ConfigApplicationService) PutDimensionOrder(ctx context.Context, cmd *PutDimensionOrderCommand) (*domain.ProductConfig, error) {
	return s.saveNewVersion(ctx, cmd.InsurerID, cmd.ProductCode, domain.SectionDimensionOrder, func(c *domain.ProductConfig) {
		c.DimensionOrder = cmd.Order
	})
}

func (s *ConfigApplicationService) PutBaseRate(ctx context.Context, cmd *PutBaseRateCommand) (*domain.ProductConfig, error) {
	return s.saveNewVersion(ctx, cmd.InsurerID, cmd.ProductCode, domain.SectionBase, func(c *domain.ProductConfig) {
		c.Base = cmd.Base
	})
}

// saveNewVersion 载入当前配置并应用变更；首个版本从空白配置开始
func (s *ConfigApplicationService) saveNewVersion(
	ctx context.Context,
	insurerID, productCode, section string,
	mutate func(c *domain.ProductConfig),
) (*domain.ProductConfig, error) {
	current, err := s.repo.GetCurrent(ctx, insurerID, productCode)
	if err != nil {
		if !errors.Is(err, domain.ErrConfigNotFound) {
			return nil, err
		}
		current = domain.NewProductConfig(insurerID, productCode)
	}

	mutate(current)

	if err := current.Validate(); err != nil {
		s.logger.WarnContext(ctx, "configuration rejected",
			"insurer_id", insurerID,
			"product_code", productCode,
			"section", section,
			"error", err,
		)
		return nil, err
	}

	current.Version++
	event := domain.ProductConfigUpdatedEvent{
		InsurerID:   insurerID,
		ProductCode: productCode,
		Version:     current.Version,
		Section:     section,
		OccurredOn:  time.Now(),
	}

	// 新版本与变更事件写入同一事务，崩溃不会留下无事件的版本
	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.SaveVersion(txCtx, current); err != nil {
			return err
		}
		return s.publisher.PublishConfigUpdated(txCtx, event)
	})
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ConfigVersionsSaved.Inc()
	}

	s.logger.InfoContext(ctx, "configuration version saved",
		"insurer_id", insurerID,
		"product_code", productCode,
		"version", current.Version,
		"section", section,
	)
	return current, nil
}

func (s *ConfigApplicationService) GetConfig(ctx context.Context, insurerID, productCode string) (*domain.ProductConfig, error) {
	return s.repo.GetCurrent(ctx, insurerID, productCode)
}

func (s *ConfigApplicationService) GetConfigVersion(ctx context.Context, insurerID, productCode string, version uint64) (*domain.ProductConfig, error) {
	return s.repo.GetVersion(ctx, insurerID, productCode, version)
}

// GetSnapshot 返回指定产品当前版本的评估快照
func (s *ConfigApplicationService) GetSnapshot(ctx context.Context, insurerID, productCode string) (*rating.Snapshot, error) {
	config, err := s.repo.GetCurrent(ctx, insurerID, productCode)
	if err != nil {
		return nil, err
	}
	return config.Snapshot(), nil
}

func (s *ConfigApplicationService) ListVersions(ctx context.Context, insurerID, productCode string, limit int) ([]*domain.ProductConfig, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListVersions(ctx, insurerID, productCode, limit)
}
