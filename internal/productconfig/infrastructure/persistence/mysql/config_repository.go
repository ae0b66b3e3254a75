package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/wyfcoding/insurancerating/internal/productconfig/domain"
	"github.com/wyfcoding/insurancerating/pkg/db"
)

type configRepository struct {
	db *gorm.DB
}

// NewConfigRepository 创建并返回一个新的 configRepository 实例。
func NewConfigRepository(db *gorm.DB) domain.ConfigRepository {
	return &configRepository{db: db}
}

// WithTx 开启事务并把事务句柄写入上下文，事务内的写操作共享同一连接
func (r *configRepository) WithTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(db.NewTxContext(ctx, tx))
	})
}

// conn 优先使用上下文携带的事务句柄
func (r *configRepository) conn(ctx context.Context) *gorm.DB {
	if tx, ok := db.TxFromContext(ctx); ok {
		return tx
	}
	return r.db.WithContext(ctx)
}

func (r *configRepository) SaveVersion(ctx context.Context, config *domain.ProductConfig) error {
	model, err := toConfigModel(config)
	if err != nil {
		return err
	}
	model.ID = 0

	if err := r.conn(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrVersionConflict
		}
		return err
	}

	config.ID = model.ID
	config.CreatedAt = model.CreatedAt
	config.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *configRepository) GetCurrent(ctx context.Context, insurerID, productCode string) (*domain.ProductConfig, error) {
	var model ProductConfigModel
	err := r.db.WithContext(ctx).
		Where("insurer_id = ? AND product_code = ?", insurerID, productCode).
		Order("version DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrConfigNotFound
		}
		return nil, err
	}
	return toConfig(&model)
}

func (r *configRepository) GetVersion(ctx context.Context, insurerID, productCode string, version uint64) (*domain.ProductConfig, error) {
	var model ProductConfigModel
	err := r.db.WithContext(ctx).
		Where("insurer_id = ? AND product_code = ? AND version = ?", insurerID, productCode, version).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrConfigNotFound
		}
		return nil, err
	}
	return toConfig(&model)
}

func (r *configRepository) ListVersions(ctx context.Context, insurerID, productCode string, limit int) ([]*domain.ProductConfig, error) {
	var models []ProductConfigModel
	err := r.db.WithContext(ctx).
		Where("insurer_id = ? AND product_code = ?", insurerID, productCode).
		Order("version DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	configs := make([]*domain.ProductConfig, 0, len(models))
	for i := range models {
		c, err := toConfig(&models[i])
		if err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	return configs, nil
}
