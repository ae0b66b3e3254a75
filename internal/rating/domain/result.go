package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TierApplication 一次维度费率档命中及其对运行保费的影响
type TierApplication struct {
	Dimension     Dimension       `json:"dimension"`
	Value         decimal.Decimal `json:"value"`
	TierFrom      decimal.Decimal `json:"tier_from"`
	TierTo        decimal.Decimal `json:"tier_to"`
	PricingType   PricingType     `json:"pricing_type"`
	Adjustment    decimal.Decimal `json:"adjustment"`
	RunningTotal  decimal.Decimal `json:"running_total"`
	QuoteDecision QuoteDecision   `json:"quote_decision"`
}

// ClauseLine 一项条款的计费明细。
// Unverified 表示该条款代码在当前配置中已不存在，金额来自落库原始数据。
type ClauseLine struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	OptionLabel string          `json:"option_label,omitempty"`
	PricingType PricingType     `json:"pricing_type"`
	Value       decimal.Decimal `json:"value"`
	Premium     decimal.Decimal `json:"premium"`
	Mandatory   bool            `json:"mandatory"`
	Unverified  bool            `json:"unverified"`
}

// QuoteResult 评估器的纯输出；由外部报价/保单系统持久化
type QuoteResult struct {
	ID        uint      `json:"id"`
	QuoteID   string    `json:"quote_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	InsurerID     string `json:"insurer_id"`
	ProductCode   string `json:"product_code"`
	ConfigVersion uint64 `json:"config_version"`

	BasePremium             decimal.Decimal   `json:"base_premium"`
	TierApplications        []TierApplication `json:"tier_applications"`
	ClauseLines             []ClauseLine      `json:"clause_lines"`
	PreFeeTotal             decimal.Decimal   `json:"pre_fee_total"`
	FeeLines                []FeeLine         `json:"fee_lines"`
	PreLimitTotal           decimal.Decimal   `json:"pre_limit_total"`
	IsMinimumPremiumApplied bool              `json:"is_minimum_premium_applied"`
	QuoteDecision           QuoteDecision     `json:"quote_decision"`
	FinalPremium            decimal.Decimal   `json:"final_premium"`
	EvaluatedAt             int64             `json:"evaluated_at"`
}
