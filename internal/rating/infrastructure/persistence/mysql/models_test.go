package mysql

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/insurancerating/internal/rating/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestQuoteModelRoundTrip(t *testing.T) {
	q := &domain.QuoteResult{
		QuoteID:       "q-001",
		InsurerID:     "insurer-001",
		ProductCode:   "CAR",
		ConfigVersion: 3,
		BasePremium:   dec("10000"),
		TierApplications: []domain.TierApplication{
			{Dimension: domain.DimensionProjectValue, Value: dec("750000"), Adjustment: dec("5"), PricingType: domain.PricingTypePercentage, RunningTotal: dec("10500"), QuoteDecision: domain.DecisionAutoQuote},
		},
		ClauseLines: []domain.ClauseLine{
			{Code: "MRe004", Name: "SRCC", PricingType: domain.PricingTypeFixed, Value: dec("1500"), Premium: dec("1500"), Mandatory: true},
		},
		PreFeeTotal:   dec("12000"),
		PreLimitTotal: dec("12600"),
		QuoteDecision: domain.DecisionAutoQuote,
		FinalPremium:  dec("12600"),
		EvaluatedAt:   1756300000,
	}

	model, err := toQuoteModel(q)
	if err != nil {
		t.Fatalf("toQuoteModel failed: %v", err)
	}

	got, err := toQuote(model)
	if err != nil {
		t.Fatalf("toQuote failed: %v", err)
	}
	if got.QuoteID != "q-001" || got.ConfigVersion != 3 {
		t.Errorf("identity = %s/v%d, want q-001/v3", got.QuoteID, got.ConfigVersion)
	}
	if !got.FinalPremium.Equal(dec("12600")) || !got.BasePremium.Equal(dec("10000")) {
		t.Errorf("premiums = %s/%s, want 10000/12600", got.BasePremium, got.FinalPremium)
	}
	if len(got.TierApplications) != 1 || !got.TierApplications[0].RunningTotal.Equal(dec("10500")) {
		t.Errorf("tier applications = %+v, want single entry at 10500", got.TierApplications)
	}
	if len(got.ClauseLines) != 1 || !got.ClauseLines[0].Mandatory {
		t.Errorf("clause lines = %+v, want single mandatory line", got.ClauseLines)
	}
}

func TestToQuoteRejectsCorruptAmounts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *QuoteResultModel)
		want   string
	}{
		{name: "基础保费损坏", mutate: func(m *QuoteResultModel) { m.BasePremium = "not-a-number" }, want: "base_premium"},
		{name: "税前小计损坏", mutate: func(m *QuoteResultModel) { m.PreFeeTotal = "" }, want: "pre_fee_total"},
		{name: "限额前小计损坏", mutate: func(m *QuoteResultModel) { m.PreLimitTotal = "12,600" }, want: "pre_limit_total"},
		{name: "最终保费损坏", mutate: func(m *QuoteResultModel) { m.FinalPremium = "NaN..." }, want: "final_premium"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &QuoteResultModel{
				QuoteID:       "q-002",
				BasePremium:   "10000",
				PreFeeTotal:   "12000",
				PreLimitTotal: "12600",
				FinalPremium:  "12600",
			}
			tt.mutate(model)

			_, err := toQuote(model)
			if err == nil {
				t.Fatal("toQuote accepted a corrupt amount column")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want mention of %s", err, tt.want)
			}
		})
	}
}
