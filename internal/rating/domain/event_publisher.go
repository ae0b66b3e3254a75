package domain

import "context"

// EventPublisher 事件发布者接口
type EventPublisher interface {
	// PublishQuoteEvaluated 发布报价评估完成事件
	PublishQuoteEvaluated(ctx context.Context, event QuoteEvaluatedEvent) error

	// PublishQuoteReferred 发布报价转人工核保事件
	PublishQuoteReferred(ctx context.Context, event QuoteReferredEvent) error

	// PublishQuoteEvaluationFailed 发布报价评估失败事件
	PublishQuoteEvaluationFailed(ctx context.Context, event QuoteEvaluationFailedEvent) error
}
