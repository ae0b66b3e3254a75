package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoMatchingTier 风险画像取值落在所有已配置区间之外
	ErrNoMatchingTier = errors.New("no matching rate tier")
	// ErrCoverageExceedsMaximum 申请保额超过产品配置的最大承保额
	ErrCoverageExceedsMaximum = errors.New("requested coverage exceeds maximum cover")
	// ErrClauseNotFound 条款代码在当前产品配置中不存在
	ErrClauseNotFound = errors.New("clause not found")
	// ErrClauseDisabled 条款在当前产品配置中已停用，不可用于新报价
	ErrClauseDisabled = errors.New("clause disabled")
	// ErrSnapshotIncomplete 配置快照缺少评估所需的部分
	ErrSnapshotIncomplete = errors.New("configuration snapshot incomplete")
	// ErrQuoteNotFound 报价记录不存在
	ErrQuoteNotFound = errors.New("quote not found")
)

// NoMatchingTierError 标识具体维度与取值的费率档缺失错误
type NoMatchingTierError struct {
	Dimension Dimension
	Value     decimal.Decimal
}

func (e *NoMatchingTierError) Error() string {
	return fmt.Sprintf("no matching rate tier for dimension %s at value %s", e.Dimension, e.Value)
}

func (e *NoMatchingTierError) Unwrap() error {
	return ErrNoMatchingTier
}

// CoverageExceedsMaximumError 保额超限的业务规则错误
type CoverageExceedsMaximumError struct {
	Requested decimal.Decimal
	Maximum   decimal.Decimal
}

func (e *CoverageExceedsMaximumError) Error() string {
	return fmt.Sprintf("requested coverage %s exceeds maximum cover %s", e.Requested, e.Maximum)
}

func (e *CoverageExceedsMaximumError) Unwrap() error {
	return ErrCoverageExceedsMaximum
}

// ClauseNotFoundError 新报价评估中引用了不可解析的条款代码
type ClauseNotFoundError struct {
	Code string
}

func (e *ClauseNotFoundError) Error() string {
	return fmt.Sprintf("clause %q not found in current product configuration", e.Code)
}

func (e *ClauseNotFoundError) Unwrap() error {
	return ErrClauseNotFound
}

// ClauseDisabledError 新报价评估中选择了已停用的可选条款
type ClauseDisabledError struct {
	Code string
}

func (e *ClauseDisabledError) Error() string {
	return fmt.Sprintf("clause %q is disabled in current product configuration", e.Code)
}

func (e *ClauseDisabledError) Unwrap() error {
	return ErrClauseDisabled
}
