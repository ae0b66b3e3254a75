package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	rating "github.com/wyfcoding/insurancerating/internal/rating/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func validConfig() *ProductConfig {
	c := NewProductConfig("insurer-001", "CAR")
	c.Base = rating.BaseRate{PricingType: rating.PricingTypeFixed, Value: dec("10000")}
	c.RateTables[rating.DimensionProjectValue] = rating.RateTable{
		Dimension: rating.DimensionProjectValue,
		Tiers: []rating.RateTier{
			{From: dec("0"), To: dec("500000"), PricingType: rating.PricingTypePercentage, Adjustment: dec("0"), QuoteDecision: rating.DecisionAutoQuote},
			{From: dec("500000"), To: rating.NoUpperBound, PricingType: rating.PricingTypePercentage, Adjustment: dec("5"), QuoteDecision: rating.DecisionAutoQuote},
		},
	}
	c.DimensionOrder = []rating.Dimension{rating.DimensionProjectValue}
	c.Clauses = []rating.ClausePricing{
		{Code: "MRe004", Name: "SRCC", IsMandatory: true, Enabled: true, PricingType: rating.PricingTypeFixed, PricingValue: dec("1500")},
	}
	c.Fees = []rating.FeeType{
		{Label: "VAT", PricingType: rating.PricingTypePercentage, Value: dec("5"), Status: rating.FeeStatusActive},
	}
	c.Limits = rating.PolicyLimits{
		MinimumPremium:       dec("2500"),
		MaximumCover:         dec("50000000"),
		MinBrokerCommission:  dec("5"),
		MaxBrokerCommission:  dec("20"),
		BaseBrokerCommission: dec("10"),
	}
	return c
}

func TestValidateAcceptsWellFormedConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate failed on well formed config: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *ProductConfig)
	}{
		{
			name:   "缺少保险公司标识",
			mutate: func(c *ProductConfig) { c.InsurerID = "" },
		},
		{
			name: "空费率表",
			mutate: func(c *ProductConfig) {
				c.RateTables[rating.DimensionDuration] = rating.RateTable{Dimension: rating.DimensionDuration}
			},
		},
		{
			name: "费率档下界为负",
			mutate: func(c *ProductConfig) {
				c.RateTables[rating.DimensionDuration] = rating.RateTable{
					Dimension: rating.DimensionDuration,
					Tiers:     []rating.RateTier{{From: dec("-1"), To: dec("10"), PricingType: rating.PricingTypeFixed, Adjustment: dec("0")}},
				}
			},
		},
		{
			name: "费率档区间不递增",
			mutate: func(c *ProductConfig) {
				c.RateTables[rating.DimensionDuration] = rating.RateTable{
					Dimension: rating.DimensionDuration,
					Tiers:     []rating.RateTier{{From: dec("10"), To: dec("10"), PricingType: rating.PricingTypeFixed, Adjustment: dec("0")}},
				}
			},
		},
		{
			name: "费率档重叠",
			mutate: func(c *ProductConfig) {
				c.RateTables[rating.DimensionDuration] = rating.RateTable{
					Dimension: rating.DimensionDuration,
					Tiers: []rating.RateTier{
						{From: dec("0"), To: dec("10"), PricingType: rating.PricingTypeFixed, Adjustment: dec("0")},
						{From: dec("5"), To: dec("15"), PricingType: rating.PricingTypeFixed, Adjustment: dec("1")},
					},
				}
			},
		},
		{
			name: "开放档不在末位",
			mutate: func(c *ProductConfig) {
				c.RateTables[rating.DimensionDuration] = rating.RateTable{
					Dimension: rating.DimensionDuration,
					Tiers: []rating.RateTier{
						{From: dec("0"), To: rating.NoUpperBound, PricingType: rating.PricingTypeFixed, Adjustment: dec("0")},
						{From: dec("10"), To: dec("20"), PricingType: rating.PricingTypeFixed, Adjustment: dec("1")},
					},
				}
			},
		},
		{
			name: "未知定价方式",
			mutate: func(c *ProductConfig) {
				c.RateTables[rating.DimensionDuration] = rating.RateTable{
					Dimension: rating.DimensionDuration,
					Tiers:     []rating.RateTier{{From: dec("0"), To: dec("10"), PricingType: "DISCOUNT", Adjustment: dec("0")}},
				}
			},
		},
		{
			name: "条款代码重复",
			mutate: func(c *ProductConfig) {
				c.Clauses = append(c.Clauses, rating.ClausePricing{Code: "mre004", Name: "dup", Enabled: true, PricingType: rating.PricingTypeFixed, PricingValue: dec("1")})
			},
		},
		{
			name: "强制条款被停用",
			mutate: func(c *ProductConfig) {
				c.Clauses[0].Enabled = false
			},
		},
		{
			name: "条款定价为负",
			mutate: func(c *ProductConfig) {
				c.Clauses[0].PricingValue = dec("-1")
			},
		},
		{
			name: "费用标签重复",
			mutate: func(c *ProductConfig) {
				c.Fees = append(c.Fees, rating.FeeType{Label: "vat", PricingType: rating.PricingTypeFixed, Value: dec("1"), Status: rating.FeeStatusActive})
			},
		},
		{
			name: "最低保费为负",
			mutate: func(c *ProductConfig) {
				c.Limits.MinimumPremium = dec("-1")
			},
		},
		{
			name: "最大承保额不高于最低保费",
			mutate: func(c *ProductConfig) {
				c.Limits.MinimumPremium = dec("5000")
				c.Limits.MaximumCover = dec("100")
			},
		},
		{
			name: "佣金下限高于上限",
			mutate: func(c *ProductConfig) {
				c.Limits.MinBrokerCommission = dec("30")
			},
		},
		{
			name: "基准佣金越界",
			mutate: func(c *ProductConfig) {
				c.Limits.BaseBrokerCommission = dec("25")
			},
		},
		{
			name: "维度顺序引用缺失费率表",
			mutate: func(c *ProductConfig) {
				c.DimensionOrder = append(c.DimensionOrder, rating.DimensionClaimCount)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("Validate error = %v, want ErrInvalidConfiguration", err)
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate error type = %T, want *ConfigurationError", err)
			}
		})
	}
}

func TestSnapshotExport(t *testing.T) {
	c := validConfig()
	c.Version = 7

	snap := c.Snapshot()
	if snap.Version != 7 {
		t.Errorf("snapshot version = %d, want 7", snap.Version)
	}
	if snap.InsurerID != "insurer-001" || snap.ProductCode != "CAR" {
		t.Errorf("snapshot identity = %s/%s, want insurer-001/CAR", snap.InsurerID, snap.ProductCode)
	}
	if len(snap.DimensionOrder) != 1 || snap.DimensionOrder[0] != rating.DimensionProjectValue {
		t.Errorf("snapshot dimension order = %v", snap.DimensionOrder)
	}
	if _, ok := snap.RateTables[rating.DimensionProjectValue]; !ok {
		t.Error("snapshot missing project value rate table")
	}
}
