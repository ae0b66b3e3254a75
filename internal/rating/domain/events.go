package domain

import "time"

const (
	QuoteEvaluatedEventType        = "QuoteEvaluated"
	QuoteReferredEventType         = "QuoteReferred"
	QuoteEvaluationFailedEventType = "QuoteEvaluationFailed"
)

// QuoteEvaluatedEvent 报价评估完成事件
type QuoteEvaluatedEvent struct {
	QuoteID                 string    `json:"quote_id"`
	InsurerID               string    `json:"insurer_id"`
	ProductCode             string    `json:"product_code"`
	ConfigVersion           uint64    `json:"config_version"`
	QuoteDecision           string    `json:"quote_decision"`
	FinalPremium            string    `json:"final_premium"`
	IsMinimumPremiumApplied bool      `json:"is_minimum_premium_applied"`
	EvaluatedAt             int64     `json:"evaluated_at"`
	OccurredOn              time.Time `json:"occurred_on"`
}

// QuoteReferredEvent 报价转人工核保事件
type QuoteReferredEvent struct {
	QuoteID       string    `json:"quote_id"`
	InsurerID     string    `json:"insurer_id"`
	ProductCode   string    `json:"product_code"`
	ConfigVersion uint64    `json:"config_version"`
	FinalPremium  string    `json:"final_premium"`
	OccurredOn    time.Time `json:"occurred_on"`
}

// QuoteEvaluationFailedEvent 报价评估失败事件
type QuoteEvaluationFailedEvent struct {
	InsurerID   string    `json:"insurer_id"`
	ProductCode string    `json:"product_code"`
	Reason      string    `json:"reason"`
	OccurredOn  time.Time `json:"occurred_on"`
}
