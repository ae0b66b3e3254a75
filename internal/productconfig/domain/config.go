package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	rating "github.com/wyfcoding/insurancerating/internal/rating/domain"
)

var (
	// ErrConfigNotFound 指定保险公司与产品的配置不存在
	ErrConfigNotFound = errors.New("product configuration not found")
	// ErrVersionConflict 并发写入导致的版本冲突
	ErrVersionConflict = errors.New("configuration version conflict")
	// ErrInvalidConfiguration 配置校验失败
	ErrInvalidConfiguration = errors.New("invalid product configuration")
)

// ConfigurationError 携带具体校验失败原因
type ConfigurationError struct {
	Section string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s configuration: %s", e.Section, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// ProductConfig 某保险公司某产品的完整费率配置聚合。
// 每次写入产生新版本；历史版本永不覆盖，存量报价按其评估时版本重算可复现。
type ProductConfig struct {
	ID        uint      `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	InsurerID   string `json:"insurer_id"`
	ProductCode string `json:"product_code"`
	Version     uint64 `json:"version"`

	Base           rating.BaseRate                       `json:"base"`
	DimensionOrder []rating.Dimension                    `json:"dimension_order"`
	RateTables     map[rating.Dimension]rating.RateTable `json:"rate_tables"`
	Clauses        []rating.ClausePricing                `json:"clauses"`
	Fees           []rating.FeeType                      `json:"fees"`
	Limits         rating.PolicyLimits                   `json:"limits"`
}

// NewProductConfig 创建空白配置（版本 0，首次保存后为 1）
func NewProductConfig(insurerID, productCode string) *ProductConfig {
	return &ProductConfig{
		InsurerID:   insurerID,
		ProductCode: productCode,
		RateTables:  make(map[rating.Dimension]rating.RateTable),
	}
}

// Snapshot 导出评估引擎使用的不可变快照
func (c *ProductConfig) Snapshot() *rating.Snapshot {
	return &rating.Snapshot{
		InsurerID:      c.InsurerID,
		ProductCode:    c.ProductCode,
		Version:        c.Version,
		Base:           c.Base,
		DimensionOrder: c.DimensionOrder,
		RateTables:     c.RateTables,
		Clauses:        c.Clauses,
		Fees:           c.Fees,
		Limits:         c.Limits,
	}
}

// Validate 校验整个配置的内部一致性；任何失败都阻止保存新版本
func (c *ProductConfig) Validate() error {
	if c.InsurerID == "" || c.ProductCode == "" {
		return &ConfigurationError{Section: "identity", Reason: "insurer id and product code are required"}
	}

	for dim, table := range c.RateTables {
		if err := validateRateTable(dim, table); err != nil {
			return err
		}
	}

	if err := validateClauses(c.Clauses); err != nil {
		return err
	}

	if err := validateFees(c.Fees); err != nil {
		return err
	}

	if err := validateLimits(c.Limits); err != nil {
		return err
	}

	for _, dim := range c.DimensionOrder {
		if _, ok := c.RateTables[dim]; !ok {
			return &ConfigurationError{
				Section: "dimension_order",
				Reason:  fmt.Sprintf("dimension %s has no rate table", dim),
			}
		}
	}

	return nil
}

// validateRateTable 费率表校验：区间合法、升序、不重叠、至多一个末位开放档
func validateRateTable(dim rating.Dimension, table rating.RateTable) error {
	section := fmt.Sprintf("rate_table[%s]", dim)

	if len(table.Tiers) == 0 {
		return &ConfigurationError{Section: section, Reason: "at least one tier is required"}
	}

	for i, tier := range table.Tiers {
		if tier.From.IsNegative() {
			return &ConfigurationError{
				Section: section,
				Reason:  fmt.Sprintf("tier %d lower bound %s is negative", i, tier.From),
			}
		}
		if tier.Unbounded() {
			if i != len(table.Tiers)-1 {
				return &ConfigurationError{
					Section: section,
					Reason:  fmt.Sprintf("open-ended tier %d must be last", i),
				}
			}
			continue
		}
		if !tier.From.LessThan(tier.To) {
			return &ConfigurationError{
				Section: section,
				Reason:  fmt.Sprintf("tier %d bounds [%s, %s) are not increasing", i, tier.From, tier.To),
			}
		}
		if tier.PricingType != rating.PricingTypePercentage && tier.PricingType != rating.PricingTypeFixed {
			return &ConfigurationError{
				Section: section,
				Reason:  fmt.Sprintf("tier %d has unknown pricing type %q", i, tier.PricingType),
			}
		}
	}

	for i := 1; i < len(table.Tiers); i++ {
		prev, cur := table.Tiers[i-1], table.Tiers[i]
		if cur.From.LessThan(prev.To) {
			return &ConfigurationError{
				Section: section,
				Reason:  fmt.Sprintf("tier %d overlaps previous tier (starts at %s before %s)", i, cur.From, prev.To),
			}
		}
	}

	return nil
}

func validateClauses(clauses []rating.ClausePricing) error {
	seen := make(map[string]bool, len(clauses))
	for _, c := range clauses {
		if c.Code == "" {
			return &ConfigurationError{Section: "clauses", Reason: "clause code is required"}
		}
		key := normalizeCode(c.Code)
		if seen[key] {
			return &ConfigurationError{
				Section: "clauses",
				Reason:  fmt.Sprintf("duplicate clause code %q", c.Code),
			}
		}
		seen[key] = true

		if c.IsMandatory && !c.Enabled {
			return &ConfigurationError{
				Section: "clauses",
				Reason:  fmt.Sprintf("mandatory clause %q must be enabled", c.Code),
			}
		}
		if c.PricingValue.IsNegative() {
			return &ConfigurationError{
				Section: "clauses",
				Reason:  fmt.Sprintf("clause %q pricing value %s is negative", c.Code, c.PricingValue),
			}
		}
		for _, opt := range c.VariableOptions {
			if opt.Label == "" {
				return &ConfigurationError{
					Section: "clauses",
					Reason:  fmt.Sprintf("clause %q has an option without a label", c.Code),
				}
			}
			if opt.Value.IsNegative() {
				return &ConfigurationError{
					Section: "clauses",
					Reason:  fmt.Sprintf("clause %q option %q value %s is negative", c.Code, opt.Label, opt.Value),
				}
			}
		}
	}
	return nil
}

func validateFees(fees []rating.FeeType) error {
	seen := make(map[string]bool, len(fees))
	for _, f := range fees {
		if f.Label == "" {
			return &ConfigurationError{Section: "fees", Reason: "fee label is required"}
		}
		key := normalizeCode(f.Label)
		if seen[key] {
			return &ConfigurationError{
				Section: "fees",
				Reason:  fmt.Sprintf("duplicate fee label %q", f.Label),
			}
		}
		seen[key] = true

		if f.Value.IsNegative() {
			return &ConfigurationError{
				Section: "fees",
				Reason:  fmt.Sprintf("fee %q value %s is negative", f.Label, f.Value),
			}
		}
	}
	return nil
}

func validateLimits(limits rating.PolicyLimits) error {
	if limits.MinimumPremium.IsNegative() {
		return &ConfigurationError{Section: "limits", Reason: "minimum premium is negative"}
	}
	if limits.MaximumCover.IsNegative() {
		return &ConfigurationError{Section: "limits", Reason: "maximum cover is negative"}
	}
	if limits.MaximumCover.IsPositive() && !limits.MaximumCover.GreaterThan(limits.MinimumPremium) {
		return &ConfigurationError{Section: "limits", Reason: "maximum cover must exceed minimum premium"}
	}
	if limits.MinBrokerCommission.IsNegative() || limits.MaxBrokerCommission.IsNegative() {
		return &ConfigurationError{Section: "limits", Reason: "broker commission bounds are negative"}
	}
	if limits.MaxBrokerCommission.IsPositive() {
		if limits.MinBrokerCommission.GreaterThan(limits.MaxBrokerCommission) {
			return &ConfigurationError{Section: "limits", Reason: "min broker commission exceeds max"}
		}
		base := limits.BaseBrokerCommission
		if !base.IsZero() && (base.LessThan(limits.MinBrokerCommission) || base.GreaterThan(limits.MaxBrokerCommission)) {
			return &ConfigurationError{Section: "limits", Reason: "base broker commission outside [min, max]"}
		}
	}
	return nil
}

func normalizeCode(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
