package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// VariableOption 同一条款下的可选定价点（不同限额对应不同费率）
type VariableOption struct {
	Label       string          `json:"label"`
	Limits      string          `json:"limits"`
	PricingType PricingType     `json:"pricing_type"`
	Value       decimal.Decimal `json:"value"`
}

// ClausePricing 条款定价定义（CEW：条款、除外与保证）
type ClausePricing struct {
	Code            string           `json:"code"`
	Name            string           `json:"name"`
	IsMandatory     bool             `json:"is_mandatory"`
	Enabled         bool             `json:"enabled"`
	PricingType     PricingType      `json:"pricing_type"`
	PricingValue    decimal.Decimal  `json:"pricing_value"`
	VariableOptions []VariableOption `json:"variable_options,omitempty"`
}

// Option 按标签查找可选定价点
func (c ClausePricing) Option(label string) (VariableOption, bool) {
	key := normalizeKey(label)
	for _, opt := range c.VariableOptions {
		if normalizeKey(opt.Label) == key {
			return opt, true
		}
	}
	return VariableOption{}, false
}

// ClauseRegistry 条款注册表，按归一化代码索引快照中的条款定义。
// 评估期间只读；配置变更只能通过配置服务写入新版本。
type ClauseRegistry struct {
	clauses []ClausePricing
	byCode  map[string]ClausePricing
}

// NewClauseRegistry 从快照条款列表构建注册表
func NewClauseRegistry(clauses []ClausePricing) *ClauseRegistry {
	byCode := make(map[string]ClausePricing, len(clauses))
	for _, c := range clauses {
		key := normalizeKey(c.Code)
		if _, exists := byCode[key]; exists {
			// 重复代码在配置写入时已被拒绝；此处保留首个定义
			continue
		}
		byCode[key] = c
	}
	return &ClauseRegistry{clauses: clauses, byCode: byCode}
}

// Resolve 按代码解析条款定义。历史保单重新展示时代码可能已不在当前配置中，
// 调用方据此降级为未核验条款而非失败。
func (r *ClauseRegistry) Resolve(code string) (ClausePricing, error) {
	c, ok := r.byCode[normalizeKey(code)]
	if !ok {
		return ClausePricing{}, &ClauseNotFoundError{Code: code}
	}
	return c, nil
}

// ListMandatory 返回所有强制条款；无论调用方选择与否都会参与计费
func (r *ClauseRegistry) ListMandatory() []ClausePricing {
	var out []ClausePricing
	for _, c := range r.clauses {
		if c.IsMandatory {
			out = append(out, c)
		}
	}
	return out
}

// ListOptional 返回启用的可选条款
func (r *ClauseRegistry) ListOptional() []ClausePricing {
	var out []ClausePricing
	for _, c := range r.clauses {
		if !c.IsMandatory && c.Enabled {
			out = append(out, c)
		}
	}
	return out
}

// normalizeKey 条款代码与存量保单扩展的匹配键：去空白、小写
func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
