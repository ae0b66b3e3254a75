package domain

import (
	"github.com/shopspring/decimal"
)

// Dimension 费率维度
type Dimension string

const (
	DimensionProjectValue      Dimension = "PROJECT_VALUE"
	DimensionDuration          Dimension = "DURATION_MONTHS"
	DimensionExperience        Dimension = "CONTRACTOR_EXPERIENCE"
	DimensionEmployeeCount     Dimension = "EMPLOYEE_COUNT"
	DimensionClaimCount        Dimension = "CLAIM_COUNT"
	DimensionClaimAmount       Dimension = "CLAIM_AMOUNT"
	DimensionFeeIncome         Dimension = "FEE_INCOME"
	DimensionCoverLimit        Dimension = "COVER_LIMIT"
	DimensionPolicyPeriod      Dimension = "POLICY_PERIOD"
	DimensionRetroactivePeriod Dimension = "RETROACTIVE_PERIOD"
	DimensionDeductible        Dimension = "DEDUCTIBLE"
)

// PricingType 定价方式
type PricingType string

const (
	PricingTypePercentage PricingType = "PERCENTAGE"
	PricingTypeFixed      PricingType = "FIXED"
)

// QuoteDecision 报价决策
type QuoteDecision string

const (
	DecisionAutoQuote QuoteDecision = "AUTO_QUOTE"
	DecisionRefer     QuoteDecision = "REFER"
)

// NoUpperBound 末级费率档的开放上界哨兵值
var NoUpperBound = decimal.NewFromInt(-1)

// RateTier 费率档：一段连续的数值区间映射到一个价格调整
type RateTier struct {
	From          decimal.Decimal `json:"from"`
	To            decimal.Decimal `json:"to"`
	PricingType   PricingType     `json:"pricing_type"`
	Adjustment    decimal.Decimal `json:"adjustment"`
	QuoteDecision QuoteDecision   `json:"quote_decision"`
}

// Unbounded 是否为无上限档（To 为负哨兵值）
func (t RateTier) Unbounded() bool {
	return t.To.IsNegative()
}

// RateTable 单一维度的有序费率表
type RateTable struct {
	Dimension Dimension  `json:"dimension"`
	Tiers     []RateTier `json:"tiers"`
}

// LookupTier 返回包含 value 的费率档。
// 区间语义为 from ≤ v < to；末档（无上限档或配置中的最后一档）为 from ≤ v ≤ to。
// 负值或落在区间缺口中返回 NoMatchingTierError，绝不退化为零调整。
// 若管理员错误配置了重叠区间，按配置顺序第一个命中的档生效。
func (rt RateTable) LookupTier(value decimal.Decimal) (RateTier, error) {
	if value.IsNegative() {
		return RateTier{}, &NoMatchingTierError{Dimension: rt.Dimension, Value: value}
	}

	for i, tier := range rt.Tiers {
		if value.LessThan(tier.From) {
			continue
		}
		if tier.Unbounded() {
			return tier, nil
		}
		if value.LessThan(tier.To) {
			return tier, nil
		}
		// 最后一档上界闭合
		if i == len(rt.Tiers)-1 && value.Equal(tier.To) {
			return tier, nil
		}
	}

	return RateTier{}, &NoMatchingTierError{Dimension: rt.Dimension, Value: value}
}

// BaseRate 基础保费规则：按百分比挂靠某一维度取值，或固定金额
type BaseRate struct {
	PricingType PricingType     `json:"pricing_type"`
	Value       decimal.Decimal `json:"value"`
	// 百分比模式下计算基数所取的维度（如工程造价、费用收入）
	AppliesTo Dimension `json:"applies_to"`
}

// Premium 依据风险画像计算基础保费
func (b BaseRate) Premium(profile RiskProfile) (decimal.Decimal, error) {
	if b.PricingType == PricingTypeFixed {
		return b.Value, nil
	}
	v, ok := profile.DimensionValue(b.AppliesTo)
	if !ok {
		return decimal.Zero, &NoMatchingTierError{Dimension: b.AppliesTo, Value: decimal.Zero}
	}
	return v.Mul(b.Value).Div(hundred), nil
}

var hundred = decimal.NewFromInt(100)
