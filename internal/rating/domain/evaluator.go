package domain

import (
	"github.com/shopspring/decimal"
)

// Evaluator 报价评估器：对不可变配置快照与单个风险画像做一次同步纯计算。
// 流水线依次经过 维度评估 → 条款计费 → 税费叠加 → 限额托底，
// 任一致命错误立即中止，不返回部分保费。
type Evaluator struct {
	snap     *Snapshot
	registry *ClauseRegistry
}

// NewEvaluator 基于配置快照创建评估器
func NewEvaluator(snap *Snapshot) *Evaluator {
	return &Evaluator{
		snap:     snap,
		registry: snap.Registry(),
	}
}

// Evaluate 评估一次报价请求
func (e *Evaluator) Evaluate(profile RiskProfile) (*QuoteResult, error) {
	// 保额上限前置校验，避免无谓计算
	if err := e.snap.Limits.CheckCoverage(profile.RequestedCover); err != nil {
		return nil, err
	}

	result := &QuoteResult{
		InsurerID:     e.snap.InsurerID,
		ProductCode:   e.snap.ProductCode,
		ConfigVersion: e.snap.Version,
		QuoteDecision: DecisionAutoQuote,
	}

	base, err := e.snap.Base.Premium(profile)
	if err != nil {
		return nil, err
	}
	result.BasePremium = base

	running, err := e.evaluateDimensions(result, profile, base)
	if err != nil {
		return nil, err
	}

	running, err = e.applyClauses(result, profile, running)
	if err != nil {
		return nil, err
	}
	result.PreFeeTotal = running

	running, result.FeeLines = ApplyFees(running, e.snap.Fees)
	result.PreLimitTotal = running

	result.FinalPremium, result.IsMinimumPremiumApplied = e.snap.Limits.EnforceMinimum(running)

	return result, nil
}

// evaluateDimensions 按配置定义的维度顺序应用费率表。
// 百分比档对运行保费做乘法加成，固定档累加固定金额；
// 任一维度查档失败即中止并携带维度与取值信息。
func (e *Evaluator) evaluateDimensions(result *QuoteResult, profile RiskProfile, base decimal.Decimal) (decimal.Decimal, error) {
	running := base

	for _, dim := range e.snap.DimensionOrder {
		table, ok := e.snap.RateTables[dim]
		if !ok {
			return decimal.Zero, ErrSnapshotIncomplete
		}

		value, ok := profile.DimensionValue(dim)
		if !ok {
			return decimal.Zero, &NoMatchingTierError{Dimension: dim, Value: decimal.Zero}
		}

		tier, err := table.LookupTier(value)
		if err != nil {
			return decimal.Zero, err
		}

		switch tier.PricingType {
		case PricingTypePercentage:
			running = running.Add(running.Mul(tier.Adjustment).Div(hundred))
		default:
			running = running.Add(tier.Adjustment)
		}

		if tier.QuoteDecision == DecisionRefer {
			result.QuoteDecision = DecisionRefer
		}

		result.TierApplications = append(result.TierApplications, TierApplication{
			Dimension:     dim,
			Value:         value,
			TierFrom:      tier.From,
			TierTo:        tier.To,
			PricingType:   tier.PricingType,
			Adjustment:    tier.Adjustment,
			RunningTotal:  running,
			QuoteDecision: tier.QuoteDecision,
		})
	}

	return running, nil
}

// applyClauses 对选中条款与全部强制条款计费。
// 百分比条款以维度评估后的小计为基数；新报价中不可解析或已停用的条款代码是致命错误。
func (e *Evaluator) applyClauses(result *QuoteResult, profile RiskProfile, running decimal.Decimal) (decimal.Decimal, error) {
	clauseBase := running
	applied := make(map[string]bool)

	for _, sel := range profile.SelectedClauses {
		clause, err := e.registry.Resolve(sel.Code)
		if err != nil {
			return decimal.Zero, err
		}
		if !clause.Enabled && !clause.IsMandatory {
			return decimal.Zero, &ClauseDisabledError{Code: clause.Code}
		}
		key := normalizeKey(clause.Code)
		if applied[key] {
			continue
		}
		applied[key] = true

		line := buildClauseLine(clause, sel, clauseBase)
		running = running.Add(line.Premium)
		result.ClauseLines = append(result.ClauseLines, line)
	}

	// 强制条款无论调用方是否选择都自动计入
	for _, clause := range e.registry.ListMandatory() {
		key := normalizeKey(clause.Code)
		if applied[key] {
			continue
		}
		applied[key] = true

		line := buildClauseLine(clause, ClauseSelection{Code: clause.Code}, clauseBase)
		running = running.Add(line.Premium)
		result.ClauseLines = append(result.ClauseLines, line)
	}

	return running, nil
}

func buildClauseLine(clause ClausePricing, sel ClauseSelection, base decimal.Decimal) ClauseLine {
	pricingType := clause.PricingType
	value := clause.PricingValue
	optionLabel := ""

	if sel.OptionLabel != "" {
		if opt, ok := clause.Option(sel.OptionLabel); ok {
			pricingType = opt.PricingType
			value = opt.Value
			optionLabel = opt.Label
		}
	}

	var premium decimal.Decimal
	switch pricingType {
	case PricingTypePercentage:
		premium = base.Mul(value).Div(hundred)
	default:
		premium = value
	}

	return ClauseLine{
		Code:        clause.Code,
		Name:        clause.Name,
		OptionLabel: optionLabel,
		PricingType: pricingType,
		Value:       value,
		Premium:     premium,
		Mandatory:   clause.IsMandatory,
	}
}

// ResolveStoredExtensions 将历史保单落库的条款选择与当前条款配置按代码匹配。
// 配置在保单出单后可能已经变更，匹配不到的条款降级为未核验行，
// 以落库原始名称与保费展示，而非评估失败。
func ResolveStoredExtensions(registry *ClauseRegistry, stored []ClauseSelection) []ClauseLine {
	lines := make([]ClauseLine, 0, len(stored))

	for _, sel := range stored {
		clause, err := registry.Resolve(sel.Code)
		if err != nil {
			lines = append(lines, ClauseLine{
				Code:       sel.Code,
				Name:       sel.StoredName,
				Premium:    sel.StoredPremium,
				Unverified: true,
			})
			continue
		}

		line := ClauseLine{
			Code:        clause.Code,
			Name:        clause.Name,
			PricingType: clause.PricingType,
			Value:       clause.PricingValue,
			Premium:     sel.StoredPremium,
			Mandatory:   clause.IsMandatory,
		}
		if sel.OptionLabel != "" {
			if opt, ok := clause.Option(sel.OptionLabel); ok {
				line.OptionLabel = opt.Label
				line.PricingType = opt.PricingType
				line.Value = opt.Value
			}
		}
		lines = append(lines, line)
	}

	return lines
}
