package mysql

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/insurancerating/internal/rating/domain"
)

// QuoteResultModel MySQL 报价结果表映射。
// 金额以 decimal 字符串存储避免浮点误差，计算明细以 JSON 列整体落库。
type QuoteResultModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`

	QuoteID     string `gorm:"column:quote_id;type:varchar(36);uniqueIndex;not null"`
	InsurerID   string `gorm:"column:insurer_id;type:varchar(64);index:idx_product;not null"`
	ProductCode string `gorm:"column:product_code;type:varchar(64);index:idx_product;not null"`
	Version     uint64 `gorm:"column:config_version;type:bigint unsigned;not null"`

	BasePremium             string `gorm:"column:base_premium;type:decimal(32,18);not null"`
	TierApplications        string `gorm:"column:tier_applications;type:json"`
	ClauseLines             string `gorm:"column:clause_lines;type:json"`
	PreFeeTotal             string `gorm:"column:pre_fee_total;type:decimal(32,18)"`
	FeeLines                string `gorm:"column:fee_lines;type:json"`
	PreLimitTotal           string `gorm:"column:pre_limit_total;type:decimal(32,18)"`
	IsMinimumPremiumApplied bool   `gorm:"column:minimum_premium_applied"`
	QuoteDecision           string `gorm:"column:quote_decision;type:varchar(20);index"`
	FinalPremium            string `gorm:"column:final_premium;type:decimal(32,18);not null"`
	EvaluatedAt             int64  `gorm:"column:evaluated_at;type:bigint;not null"`
}

func (QuoteResultModel) TableName() string { return "quote_results" }

// mapping helpers

func toQuoteModel(q *domain.QuoteResult) (*QuoteResultModel, error) {
	if q == nil {
		return nil, nil
	}

	tiers, err := json.Marshal(q.TierApplications)
	if err != nil {
		return nil, err
	}
	clauses, err := json.Marshal(q.ClauseLines)
	if err != nil {
		return nil, err
	}
	fees, err := json.Marshal(q.FeeLines)
	if err != nil {
		return nil, err
	}

	return &QuoteResultModel{
		ID:                      q.ID,
		CreatedAt:               q.CreatedAt,
		UpdatedAt:               q.UpdatedAt,
		QuoteID:                 q.QuoteID,
		InsurerID:               q.InsurerID,
		ProductCode:             q.ProductCode,
		Version:                 q.ConfigVersion,
		BasePremium:             q.BasePremium.String(),
		TierApplications:        string(tiers),
		ClauseLines:             string(clauses),
		PreFeeTotal:             q.PreFeeTotal.String(),
		FeeLines:                string(fees),
		PreLimitTotal:           q.PreLimitTotal.String(),
		IsMinimumPremiumApplied: q.IsMinimumPremiumApplied,
		QuoteDecision:           string(q.QuoteDecision),
		FinalPremium:            q.FinalPremium.String(),
		EvaluatedAt:             q.EvaluatedAt,
	}, nil
}

func toQuote(m *QuoteResultModel) (*domain.QuoteResult, error) {
	if m == nil {
		return nil, nil
	}

	base, err := decimal.NewFromString(m.BasePremium)
	if err != nil {
		return nil, fmt.Errorf("quote %s: invalid base_premium %q: %w", m.QuoteID, m.BasePremium, err)
	}
	preFee, err := decimal.NewFromString(m.PreFeeTotal)
	if err != nil {
		return nil, fmt.Errorf("quote %s: invalid pre_fee_total %q: %w", m.QuoteID, m.PreFeeTotal, err)
	}
	preLimit, err := decimal.NewFromString(m.PreLimitTotal)
	if err != nil {
		return nil, fmt.Errorf("quote %s: invalid pre_limit_total %q: %w", m.QuoteID, m.PreLimitTotal, err)
	}
	final, err := decimal.NewFromString(m.FinalPremium)
	if err != nil {
		return nil, fmt.Errorf("quote %s: invalid final_premium %q: %w", m.QuoteID, m.FinalPremium, err)
	}

	q := &domain.QuoteResult{
		ID:                      m.ID,
		CreatedAt:               m.CreatedAt,
		UpdatedAt:               m.UpdatedAt,
		QuoteID:                 m.QuoteID,
		InsurerID:               m.InsurerID,
		ProductCode:             m.ProductCode,
		ConfigVersion:           m.Version,
		BasePremium:             base,
		PreFeeTotal:             preFee,
		PreLimitTotal:           preLimit,
		IsMinimumPremiumApplied: m.IsMinimumPremiumApplied,
		QuoteDecision:           domain.QuoteDecision(m.QuoteDecision),
		FinalPremium:            final,
		EvaluatedAt:             m.EvaluatedAt,
	}

	if m.TierApplications != "" {
		if err := json.Unmarshal([]byte(m.TierApplications), &q.TierApplications); err != nil {
			return nil, err
		}
	}
	if m.ClauseLines != "" {
		if err := json.Unmarshal([]byte(m.ClauseLines), &q.ClauseLines); err != nil {
			return nil, err
		}
	}
	if m.FeeLines != "" {
		if err := json.Unmarshal([]byte(m.FeeLines), &q.FeeLines); err != nil {
			return nil, err
		}
	}

	return q, nil
}
