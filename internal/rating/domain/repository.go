package domain

import "context"

// QuoteRepository 报价结果仓储接口。
// WithTx 在单个数据库事务内执行 fn；fn 收到的上下文携带事务句柄，
// 报价落库与发件箱写入要么全部生效要么全部回滚。
type QuoteRepository interface {
	Save(ctx context.Context, result *QuoteResult) error
	GetByQuoteID(ctx context.Context, quoteID string) (*QuoteResult, error)
	ListByProduct(ctx context.Context, insurerID, productCode string, limit int) ([]*QuoteResult, error)
	WithTx(ctx context.Context, fn func(txCtx context.Context) error) error
}
