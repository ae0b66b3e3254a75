package domain

import (
	"github.com/shopspring/decimal"
)

// FeeStatus 费用状态
type FeeStatus string

const (
	FeeStatusActive   FeeStatus = "ACTIVE"
	FeeStatusInactive FeeStatus = "INACTIVE"
)

// FeeType 保费之上的税费项（VAT、保单费、印花税等）
type FeeType struct {
	Label       string          `json:"label"`
	PricingType PricingType     `json:"pricing_type"`
	Value       decimal.Decimal `json:"value"`
	Status      FeeStatus       `json:"status"`
}

// FeeLine 单项费用的计算明细
type FeeLine struct {
	Label       string          `json:"label"`
	PricingType PricingType     `json:"pricing_type"`
	Value       decimal.Decimal `json:"value"`
	Amount      decimal.Decimal `json:"amount"`
}

// ApplyFees 按配置顺序对运行总额叠加费用。
// 百分比费用以当前位置的运行总额为基数级联计算，固定费用直接累加；
// 因此 VAT 与保单费的先后顺序会改变最终金额，顺序由产品配置决定。
func ApplyFees(total decimal.Decimal, fees []FeeType) (decimal.Decimal, []FeeLine) {
	running := total
	var lines []FeeLine

	for _, fee := range fees {
		if fee.Status != FeeStatusActive {
			continue
		}

		var amount decimal.Decimal
		switch fee.PricingType {
		case PricingTypePercentage:
			amount = running.Mul(fee.Value).Div(hundred)
		default:
			amount = fee.Value
		}

		running = running.Add(amount)
		lines = append(lines, FeeLine{
			Label:       fee.Label,
			PricingType: fee.PricingType,
			Value:       fee.Value,
			Amount:      amount,
		})
	}

	return running, lines
}
