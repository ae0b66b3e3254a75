package domain

import "time"

const (
	ProductConfigUpdatedEventType = "ProductConfigUpdated"
)

// 配置分区标识，事件消费方据此决定失效范围
const (
	SectionRateTables     = "rate_tables"
	SectionClauses        = "clauses"
	SectionFees           = "fees"
	SectionLimits         = "limits"
	SectionDimensionOrder = "dimension_order"
	SectionBase           = "base"
)

// ProductConfigUpdatedEvent 产品配置更新事件；每次成功保存新版本发布一条
type ProductConfigUpdatedEvent struct {
	InsurerID   string    `json:"insurer_id"`
	ProductCode string    `json:"product_code"`
	Version     uint64    `json:"version"`
	Section     string    `json:"section"`
	OccurredOn  time.Time `json:"occurred_on"`
}
