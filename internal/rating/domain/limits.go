package domain

import (
	"github.com/shopspring/decimal"
)

// PolicyLimits 产品层面的保费与保额边界
type PolicyLimits struct {
	MinimumPremium       decimal.Decimal `json:"minimum_premium"`
	MaximumCover         decimal.Decimal `json:"maximum_cover"`
	MinBrokerCommission  decimal.Decimal `json:"min_broker_commission"`
	MaxBrokerCommission  decimal.Decimal `json:"max_broker_commission"`
	BaseBrokerCommission decimal.Decimal `json:"base_broker_commission"`
}

// CheckCoverage 校验申请保额不超过最大承保额；在评估开始前调用，避免无谓计算
func (l PolicyLimits) CheckCoverage(requested decimal.Decimal) error {
	if requested.IsZero() {
		return nil
	}
	if l.MaximumCover.IsPositive() && requested.GreaterThan(l.MaximumCover) {
		return &CoverageExceedsMaximumError{Requested: requested, Maximum: l.MaximumCover}
	}
	return nil
}

// EnforceMinimum 将计算保费与最低保费下限比较。
// 低于下限时托底到最低保费并返回 true 标记已触发最低保费覆盖。
func (l PolicyLimits) EnforceMinimum(preLimitTotal decimal.Decimal) (decimal.Decimal, bool) {
	if preLimitTotal.LessThan(l.MinimumPremium) {
		return l.MinimumPremium, true
	}
	return preLimitTotal, false
}
