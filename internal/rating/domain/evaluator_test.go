package domain

import (
	"errors"
	"reflect"
	"testing"
)

func carSnapshot() *Snapshot {
	return &Snapshot{
		InsurerID:   "insurer-001",
		ProductCode: "CAR",
		Version:     3,
		Base:        BaseRate{PricingType: PricingTypeFixed, Value: dec("10000")},
		DimensionOrder: []Dimension{
			DimensionProjectValue,
		},
		RateTables: map[Dimension]RateTable{
			DimensionProjectValue: projectValueTable(),
		},
		Clauses: sampleClauses(),
		Fees: []FeeType{
			{Label: "VAT", PricingType: PricingTypePercentage, Value: dec("5"), Status: FeeStatusActive},
		},
		Limits: PolicyLimits{
			MinimumPremium: dec("2500"),
			MaximumCover:   dec("50000000"),
		},
	}
}

func TestEvaluateProjectValueLoading(t *testing.T) {
	// 基础保费 10000，工程造价 750000 命中 +5% 档 → 10500
	snap := carSnapshot()
	snap.Clauses = nil
	snap.Fees = nil

	result, err := NewEvaluator(snap).Evaluate(RiskProfile{ProjectValue: dec("750000")})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if !result.BasePremium.Equal(dec("10000")) {
		t.Errorf("base premium = %s, want 10000", result.BasePremium)
	}
	if !result.FinalPremium.Equal(dec("10500")) {
		t.Errorf("final premium = %s, want 10500", result.FinalPremium)
	}
	if result.QuoteDecision != DecisionAutoQuote {
		t.Errorf("decision = %s, want AUTO_QUOTE", result.QuoteDecision)
	}
	if len(result.TierApplications) != 1 {
		t.Fatalf("tier applications = %d, want 1", len(result.TierApplications))
	}
	app := result.TierApplications[0]
	if app.Dimension != DimensionProjectValue || !app.Adjustment.Equal(dec("5")) {
		t.Errorf("tier application = %+v, want PROJECT_VALUE +5%%", app)
	}
	if result.ConfigVersion != 3 {
		t.Errorf("config version = %d, want 3", result.ConfigVersion)
	}
}

func TestEvaluateMandatoryClauseAlwaysIncluded(t *testing.T) {
	snap := carSnapshot()
	snap.Fees = nil

	// 调用方未选择任何条款，强制条款 MRe004 仍按固定 1500 计入
	result, err := NewEvaluator(snap).Evaluate(RiskProfile{ProjectValue: dec("100000")})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	var found bool
	for _, line := range result.ClauseLines {
		if line.Code == "MRe004" {
			found = true
			if !line.Premium.Equal(dec("1500")) {
				t.Errorf("mandatory clause premium = %s, want 1500", line.Premium)
			}
			if !line.Mandatory {
				t.Error("clause line should be marked mandatory")
			}
		}
	}
	if !found {
		t.Fatal("mandatory clause MRe004 missing from result")
	}
	if !result.FinalPremium.Equal(dec("11500")) {
		t.Errorf("final premium = %s, want 11500", result.FinalPremium)
	}
}

func TestEvaluateSelectedClausePercentageBase(t *testing.T) {
	snap := carSnapshot()
	snap.Fees = nil

	// MRe002 百分比条款以维度评估后的小计为基数：10000 * 2.5% = 250
	result, err := NewEvaluator(snap).Evaluate(RiskProfile{
		ProjectValue:    dec("100000"),
		SelectedClauses: []ClauseSelection{{Code: "mre002"}},
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	var clausePremium string
	for _, line := range result.ClauseLines {
		if line.Code == "MRe002" {
			clausePremium = line.Premium.String()
		}
	}
	if clausePremium != "250" {
		t.Errorf("percentage clause premium = %s, want 250", clausePremium)
	}
	// 10000 + 250 + 强制条款 1500
	if !result.FinalPremium.Equal(dec("11750")) {
		t.Errorf("final premium = %s, want 11750", result.FinalPremium)
	}
}

func TestEvaluateVariableOption(t *testing.T) {
	snap := carSnapshot()
	snap.Fees = nil

	result, err := NewEvaluator(snap).Evaluate(RiskProfile{
		ProjectValue:    dec("100000"),
		SelectedClauses: []ClauseSelection{{Code: "MRe112", OptionLabel: "12 months"}},
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	for _, line := range result.ClauseLines {
		if line.Code == "MRe112" {
			if line.OptionLabel != "12 months" {
				t.Errorf("option label = %s, want 12 months", line.OptionLabel)
			}
			if !line.Premium.Equal(dec("800")) {
				t.Errorf("option premium = %s, want 800 (option overrides clause default)", line.Premium)
			}
			return
		}
	}
	t.Fatal("selected clause MRe112 missing from result")
}

func TestEvaluateUnknownClauseFatal(t *testing.T) {
	snap := carSnapshot()

	_, err := NewEvaluator(snap).Evaluate(RiskProfile{
		ProjectValue:    dec("100000"),
		SelectedClauses: []ClauseSelection{{Code: "MRe999"}},
	})
	if !errors.Is(err, ErrClauseNotFound) {
		t.Fatalf("unknown clause error = %v, want ErrClauseNotFound", err)
	}
}

func TestEvaluateMinimumPremiumFloor(t *testing.T) {
	snap := carSnapshot()
	snap.Clauses = nil
	snap.Fees = nil
	snap.Base = BaseRate{PricingType: PricingTypeFixed, Value: dec("18000")}
	snap.Limits.MinimumPremium = dec("25000")

	result, err := NewEvaluator(snap).Evaluate(RiskProfile{ProjectValue: dec("100000")})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if !result.FinalPremium.Equal(dec("25000")) {
		t.Errorf("final premium = %s, want floored 25000", result.FinalPremium)
	}
	if !result.IsMinimumPremiumApplied {
		t.Error("IsMinimumPremiumApplied should be true when floor triggers")
	}
	if !result.PreLimitTotal.Equal(dec("18000")) {
		t.Errorf("pre-limit total = %s, want computed 18000 preserved", result.PreLimitTotal)
	}
}

func TestEvaluateCoverageExceeded(t *testing.T) {
	snap := carSnapshot()

	_, err := NewEvaluator(snap).Evaluate(RiskProfile{
		ProjectValue:   dec("100000"),
		RequestedCover: dec("50000001"),
	})
	if !errors.Is(err, ErrCoverageExceedsMaximum) {
		t.Fatalf("coverage error = %v, want ErrCoverageExceedsMaximum", err)
	}
}

func TestEvaluateReferPropagates(t *testing.T) {
	snap := carSnapshot()
	snap.Clauses = nil
	snap.Fees = nil

	// 工程造价命中无上限 REFER 档，整单决策转人工
	result, err := NewEvaluator(snap).Evaluate(RiskProfile{ProjectValue: dec("2000000")})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if result.QuoteDecision != DecisionRefer {
		t.Errorf("decision = %s, want REFER", result.QuoteDecision)
	}
	// REFER 不阻断计算，保费仍然给出
	if !result.FinalPremium.Equal(dec("11000")) {
		t.Errorf("final premium = %s, want 11000", result.FinalPremium)
	}
}

func TestEvaluateNoMatchingTierFatal(t *testing.T) {
	snap := carSnapshot()

	_, err := NewEvaluator(snap).Evaluate(RiskProfile{ProjectValue: dec("-5")})
	if !errors.Is(err, ErrNoMatchingTier) {
		t.Fatalf("negative dimension error = %v, want ErrNoMatchingTier", err)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	snap := carSnapshot()
	profile := RiskProfile{
		ProjectValue:    dec("750000"),
		SelectedClauses: []ClauseSelection{{Code: "MRe002"}},
	}

	first, err := NewEvaluator(snap).Evaluate(profile)
	if err != nil {
		t.Fatalf("first evaluation failed: %v", err)
	}

	// 相同快照与画像必须产出完全一致的结果，逐字段比较而非只看最终保费
	for i := 0; i < 10; i++ {
		again, err := NewEvaluator(snap).Evaluate(profile)
		if err != nil {
			t.Fatalf("repeat evaluation failed: %v", err)
		}
		if !reflect.DeepEqual(again, first) {
			t.Fatalf("evaluation not deterministic:\n%+v\n%+v", again, first)
		}
	}
}

func TestEvaluateDisabledClauseRejected(t *testing.T) {
	snap := carSnapshot()

	// MRe099 已停用：可选条款列表不展示它，新报价也不得为它计费
	_, err := NewEvaluator(snap).Evaluate(RiskProfile{
		ProjectValue:    dec("100000"),
		SelectedClauses: []ClauseSelection{{Code: "MRe099"}},
	})
	if !errors.Is(err, ErrClauseDisabled) {
		t.Fatalf("disabled clause error = %v, want ErrClauseDisabled", err)
	}
	var disabledErr *ClauseDisabledError
	if !errors.As(err, &disabledErr) || disabledErr.Code != "MRe099" {
		t.Fatalf("disabled clause error detail = %v, want code MRe099", err)
	}
}

func TestEvaluateFeesAppliedAfterClauses(t *testing.T) {
	snap := carSnapshot()
	snap.Clauses = []ClausePricing{
		{Code: "MRe004", Name: "SRCC", IsMandatory: true, Enabled: true, PricingType: PricingTypeFixed, PricingValue: dec("1500")},
	}

	result, err := NewEvaluator(snap).Evaluate(RiskProfile{ProjectValue: dec("100000")})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	// VAT 以含条款小计 11500 为基数：575
	if !result.PreFeeTotal.Equal(dec("11500")) {
		t.Errorf("pre-fee total = %s, want 11500", result.PreFeeTotal)
	}
	if len(result.FeeLines) != 1 || !result.FeeLines[0].Amount.Equal(dec("575")) {
		t.Errorf("fee lines = %v, want VAT 575", result.FeeLines)
	}
	if !result.FinalPremium.Equal(dec("12075")) {
		t.Errorf("final premium = %s, want 12075", result.FinalPremium)
	}
}

func TestResolveStoredExtensions(t *testing.T) {
	registry := NewClauseRegistry(sampleClauses())

	lines := ResolveStoredExtensions(registry, []ClauseSelection{
		{Code: "MRe004", StoredName: "SRCC (as bound)", StoredPremium: dec("1400")},
		{Code: "MReGone", StoredName: "Removed Clause", StoredPremium: dec("600")},
	})

	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}

	if lines[0].Unverified {
		t.Error("resolvable stored clause should not be unverified")
	}
	if lines[0].Name != "Strike Riot Civil Commotion" {
		t.Errorf("resolved name = %s, want current configuration name", lines[0].Name)
	}
	if !lines[0].Premium.Equal(dec("1400")) {
		t.Errorf("resolved premium = %s, want stored 1400", lines[0].Premium)
	}

	if !lines[1].Unverified {
		t.Error("unknown stored clause must degrade to unverified, not fail")
	}
	if lines[1].Name != "Removed Clause" || !lines[1].Premium.Equal(dec("600")) {
		t.Errorf("unverified line = %+v, want stored name and premium preserved", lines[1])
	}
}
