package domain

import (
	"testing"
)

func TestApplyFeesCascading(t *testing.T) {
	vat := FeeType{Label: "VAT", PricingType: PricingTypePercentage, Value: dec("5"), Status: FeeStatusActive}
	policyFee := FeeType{Label: "Policy Fee", PricingType: PricingTypeFixed, Value: dec("100"), Status: FeeStatusActive}

	// 百分比费用以当前运行总额为基数，顺序不同结果不同
	totalVATFirst, linesVATFirst := ApplyFees(dec("10000"), []FeeType{vat, policyFee})
	if !totalVATFirst.Equal(dec("10600")) {
		t.Errorf("VAT first total = %s, want 10600", totalVATFirst)
	}
	if len(linesVATFirst) != 2 || !linesVATFirst[0].Amount.Equal(dec("500")) {
		t.Errorf("VAT first lines = %v, want VAT amount 500", linesVATFirst)
	}

	totalFeeFirst, _ := ApplyFees(dec("10000"), []FeeType{policyFee, vat})
	if !totalFeeFirst.Equal(dec("10605")) {
		t.Errorf("policy fee first total = %s, want 10605", totalFeeFirst)
	}

	if totalVATFirst.Equal(totalFeeFirst) {
		t.Error("fee ordering must be significant for percentage fees")
	}
}

func TestApplyFeesSkipsInactive(t *testing.T) {
	fees := []FeeType{
		{Label: "VAT", PricingType: PricingTypePercentage, Value: dec("5"), Status: FeeStatusActive},
		{Label: "Stamp Duty", PricingType: PricingTypeFixed, Value: dec("250"), Status: FeeStatusInactive},
	}

	total, lines := ApplyFees(dec("1000"), fees)
	if !total.Equal(dec("1050")) {
		t.Errorf("total = %s, want 1050 (inactive fee skipped)", total)
	}
	if len(lines) != 1 {
		t.Errorf("lines = %d, want 1", len(lines))
	}
}

func TestApplyFeesEmpty(t *testing.T) {
	total, lines := ApplyFees(dec("1234.56"), nil)
	if !total.Equal(dec("1234.56")) {
		t.Errorf("total = %s, want unchanged 1234.56", total)
	}
	if len(lines) != 0 {
		t.Errorf("lines = %d, want 0", len(lines))
	}
}
