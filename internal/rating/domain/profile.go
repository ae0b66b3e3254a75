package domain

import (
	"github.com/shopspring/decimal"
)

// ClauseSelection 报价请求中对某条款的选择；
// OptionLabel 指向条款的可选定价点，StoredName/StoredPremium
// 仅在重新展示历史保单时携带原始落库数据。
type ClauseSelection struct {
	Code          string          `json:"code"`
	OptionLabel   string          `json:"option_label,omitempty"`
	StoredName    string          `json:"stored_name,omitempty"`
	StoredPremium decimal.Decimal `json:"stored_premium,omitempty"`
}

// RiskProfile 单次报价的评估输入；不由本引擎持久化
type RiskProfile struct {
	ProjectValue            decimal.Decimal   `json:"project_value"`
	DurationMonths          decimal.Decimal   `json:"duration_months"`
	ContractorExperience    decimal.Decimal   `json:"contractor_experience"`
	EmployeeCount           decimal.Decimal   `json:"employee_count"`
	ClaimCount              decimal.Decimal   `json:"claim_count"`
	ClaimAmount             decimal.Decimal   `json:"claim_amount"`
	FeeIncome               decimal.Decimal   `json:"fee_income"`
	RequestedCover          decimal.Decimal   `json:"requested_cover"`
	PolicyPeriodMonths      decimal.Decimal   `json:"policy_period_months"`
	RetroactivePeriodMonths decimal.Decimal   `json:"retroactive_period_months"`
	Deductible              decimal.Decimal   `json:"deductible"`
	SelectedClauses         []ClauseSelection `json:"selected_clauses"`
}

// DimensionValue 返回画像在指定维度上的取值
func (p RiskProfile) DimensionValue(d Dimension) (decimal.Decimal, bool) {
	switch d {
	case DimensionProjectValue:
		return p.ProjectValue, true
	case DimensionDuration:
		return p.DurationMonths, true
	case DimensionExperience:
		return p.ContractorExperience, true
	case DimensionEmployeeCount:
		return p.EmployeeCount, true
	case DimensionClaimCount:
		return p.ClaimCount, true
	case DimensionClaimAmount:
		return p.ClaimAmount, true
	case DimensionFeeIncome:
		return p.FeeIncome, true
	case DimensionCoverLimit:
		return p.RequestedCover, true
	case DimensionPolicyPeriod:
		return p.PolicyPeriodMonths, true
	case DimensionRetroactivePeriod:
		return p.RetroactivePeriodMonths, true
	case DimensionDeductible:
		return p.Deductible, true
	}
	return decimal.Zero, false
}
