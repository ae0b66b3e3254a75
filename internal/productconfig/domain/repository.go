package domain

import "context"

// ConfigRepository 产品配置仓储接口。
// SaveVersion 以 (insurer, product, version) 唯一约束实现乐观并发控制，
// 版本已存在时返回 ErrVersionConflict。
// WithTx 在单个数据库事务内执行 fn；fn 收到的上下文携带事务句柄，
// 事务内的仓储与发件箱写入要么全部生效要么全部回滚。
type ConfigRepository interface {
	SaveVersion(ctx context.Context, config *ProductConfig) error
	GetCurrent(ctx context.Context, insurerID, productCode string) (*ProductConfig, error)
	GetVersion(ctx context.Context, insurerID, productCode string, version uint64) (*ProductConfig, error)
	ListVersions(ctx context.Context, insurerID, productCode string, limit int) ([]*ProductConfig, error)
	WithTx(ctx context.Context, fn func(txCtx context.Context) error) error
}

// EventPublisher 配置事件发布者接口
type EventPublisher interface {
	// PublishConfigUpdated 发布产品配置更新事件
	PublishConfigUpdated(ctx context.Context, event ProductConfigUpdatedEvent) error
}
