package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wyfcoding/insurancerating/internal/rating/domain"
	"github.com/wyfcoding/insurancerating/pkg/metrics"
)

// SnapshotProvider 配置快照端口；由基础设施层提供缓存与回源实现
type SnapshotProvider interface {
	GetSnapshot(ctx context.Context, insurerID, productCode string) (*domain.Snapshot, error)
	Invalidate(ctx context.Context, insurerID, productCode string) error
}

// EvaluateQuoteCommand 报价评估命令
type EvaluateQuoteCommand struct {
	InsurerID   string
	ProductCode string
	Profile     domain.RiskProfile
}

// RedisplayPolicyCommand 历史保单重新展示命令
type RedisplayPolicyCommand struct {
	InsurerID     string
	ProductCode   string
	StoredClauses []domain.ClauseSelection
}

// RatingApplicationService 报价应用服务。
// 评估本身是纯计算；本层负责取快照、落库与事件发布。
type RatingApplicationService struct {
	snapshots SnapshotProvider
	quotes    domain.QuoteRepository
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewRatingApplicationService(
	snapshots SnapshotProvider,
	quotes domain.QuoteRepository,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *RatingApplicationService {
	return &RatingApplicationService{
		snapshots: snapshots,
		quotes:    quotes,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

// EvaluateQuote 评估并持久化一次报价
func (s *RatingApplicationService) EvaluateQuote(ctx context.Context, cmd *EvaluateQuoteCommand) (*domain.QuoteResult, error) {
	result, err := s.evaluate(ctx, cmd.InsurerID, cmd.ProductCode, cmd.Profile)
	if err != nil {
		return nil, err
	}

	result.QuoteID = uuid.NewString()
	result.EvaluatedAt = time.Now().Unix()

	// 报价落库与事件发布写入同一事务，崩溃不会留下无事件的报价
	err = s.quotes.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.quotes.Save(txCtx, result); err != nil {
			return err
		}
		return s.publishEvaluated(txCtx, result)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "quote evaluated",
		"quote_id", result.QuoteID,
		"insurer_id", result.InsurerID,
		"product_code", result.ProductCode,
		"config_version", result.ConfigVersion,
		"decision", result.QuoteDecision,
		"final_premium", result.FinalPremium,
	)
	return result, nil
}

// PreviewQuote 评估但不持久化、不发布事件；供前端草稿页实时试算
func (s *RatingApplicationService) PreviewQuote(ctx context.Context, cmd *EvaluateQuoteCommand) (*domain.QuoteResult, error) {
	return s.evaluate(ctx, cmd.InsurerID, cmd.ProductCode, cmd.Profile)
}

func (s *RatingApplicationService) evaluate(ctx context.Context, insurerID, productCode string, profile domain.RiskProfile) (*domain.QuoteResult, error) {
	snap, err := s.snapshots.GetSnapshot(ctx, insurerID, productCode)
	if err != nil {
		return nil, err
	}

	result, err := domain.NewEvaluator(snap).Evaluate(profile)
	if err != nil {
		s.publishFailed(ctx, insurerID, productCode, err)
		if s.metrics != nil {
			s.metrics.QuotesRejectedTotal.Inc()
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.QuotesEvaluatedTotal.Inc()
		if result.QuoteDecision == domain.DecisionRefer {
			s.metrics.QuotesReferredTotal.Inc()
		}
		if result.IsMinimumPremiumApplied {
			s.metrics.MinimumPremiumApplied.Inc()
		}
	}
	return result, nil
}

// GetQuote 查询历史报价
func (s *RatingApplicationService) GetQuote(ctx context.Context, quoteID string) (*domain.QuoteResult, error) {
	return s.quotes.GetByQuoteID(ctx, quoteID)
}

// ListQuotes 查询某产品最近的报价
func (s *RatingApplicationService) ListQuotes(ctx context.Context, insurerID, productCode string, limit int) ([]*domain.QuoteResult, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.quotes.ListByProduct(ctx, insurerID, productCode, limit)
}

// RedisplayPolicy 按当前配置重新展示已出单保单的条款。
// 配置中已不存在的条款代码降级为未核验行，保留落库名称与保费。
func (s *RatingApplicationService) RedisplayPolicy(ctx context.Context, cmd *RedisplayPolicyCommand) ([]domain.ClauseLine, error) {
	snap, err := s.snapshots.GetSnapshot(ctx, cmd.InsurerID, cmd.ProductCode)
	if err != nil {
		return nil, err
	}

	lines := domain.ResolveStoredExtensions(snap.Registry(), cmd.StoredClauses)

	for _, line := range lines {
		if line.Unverified {
			s.logger.WarnContext(ctx, "stored clause no longer in configuration",
				"insurer_id", cmd.InsurerID,
				"product_code", cmd.ProductCode,
				"clause_code", line.Code,
			)
		}
	}
	return lines, nil
}

// InvalidateSnapshot 使指定产品的快照缓存失效；由配置变更事件消费方调用
func (s *RatingApplicationService) InvalidateSnapshot(ctx context.Context, insurerID, productCode string) error {
	return s.snapshots.Invalidate(ctx, insurerID, productCode)
}

func (s *RatingApplicationService) publishEvaluated(ctx context.Context, result *domain.QuoteResult) error {
	event := domain.QuoteEvaluatedEvent{
		QuoteID:                 result.QuoteID,
		InsurerID:               result.InsurerID,
		ProductCode:             result.ProductCode,
		ConfigVersion:           result.ConfigVersion,
		QuoteDecision:           string(result.QuoteDecision),
		FinalPremium:            result.FinalPremium.String(),
		IsMinimumPremiumApplied: result.IsMinimumPremiumApplied,
		EvaluatedAt:             result.EvaluatedAt,
		OccurredOn:              time.Now(),
	}
	if err := s.publisher.PublishQuoteEvaluated(ctx, event); err != nil {
		return err
	}

	if result.QuoteDecision == domain.DecisionRefer {
		referred := domain.QuoteReferredEvent{
			QuoteID:       result.QuoteID,
			InsurerID:     result.InsurerID,
			ProductCode:   result.ProductCode,
			ConfigVersion: result.ConfigVersion,
			FinalPremium:  result.FinalPremium.String(),
			OccurredOn:    time.Now(),
		}
		if err := s.publisher.PublishQuoteReferred(ctx, referred); err != nil {
			return err
		}
	}
	return nil
}

func (s *RatingApplicationService) publishFailed(ctx context.Context, insurerID, productCode string, cause error) {
	event := domain.QuoteEvaluationFailedEvent{
		InsurerID:   insurerID,
		ProductCode: productCode,
		Reason:      cause.Error(),
		OccurredOn:  time.Now(),
	}
	if err := s.publisher.PublishQuoteEvaluationFailed(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish quote evaluation failed event", "error", err)
	}
}
