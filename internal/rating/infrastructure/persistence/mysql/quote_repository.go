package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wyfcoding/insurancerating/internal/rating/domain"
	"github.com/wyfcoding/insurancerating/pkg/db"
)

type quoteRepository struct {
	db *gorm.DB
}

// NewQuoteRepository 创建并返回一个新的 quoteRepository 实例。
func NewQuoteRepository(db *gorm.DB) domain.QuoteRepository {
	return &quoteRepository{db: db}
}

// WithTx 开启事务并把事务句柄写入上下文，事务内的写操作共享同一连接
func (r *quoteRepository) WithTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(db.NewTxContext(ctx, tx))
	})
}

// conn 优先使用上下文携带的事务句柄
func (r *quoteRepository) conn(ctx context.Context) *gorm.DB {
	if tx, ok := db.TxFromContext(ctx); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *quoteRepository) Save(ctx context.Context, result *domain.QuoteResult) error {
	model, err := toQuoteModel(result)
	if err != nil {
		return err
	}

	if err := r.conn(ctx).Create(model).Error; err != nil {
		return err
	}

	result.ID = model.ID
	result.CreatedAt = model.CreatedAt
	result.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *quoteRepository) GetByQuoteID(ctx context.Context, quoteID string) (*domain.QuoteResult, error) {
	var model QuoteResultModel
	err := r.db.WithContext(ctx).Where("quote_id = ?", quoteID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrQuoteNotFound
		}
		return nil, err
	}
	return toQuote(&model)
}

func (r *quoteRepository) ListByProduct(ctx context.Context, insurerID, productCode string, limit int) ([]*domain.QuoteResult, error) {
	var models []QuoteResultModel
	err := r.db.WithContext(ctx).
		Where("insurer_id = ? AND product_code = ?", insurerID, productCode).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	quotes := make([]*domain.QuoteResult, 0, len(models))
	for i := range models {
		q, err := toQuote(&models[i])
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, nil
}
