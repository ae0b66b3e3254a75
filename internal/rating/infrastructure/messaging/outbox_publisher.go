package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wyfcoding/insurancerating/internal/rating/domain"
	pkgdb "github.com/wyfcoding/insurancerating/pkg/db"
	"github.com/wyfcoding/insurancerating/pkg/mq"
)

// OutboxMessage 事务发件箱记录
type OutboxMessage struct {
	ID        string    `gorm:"type:varchar(36);primary_key"`
	EventID   string    `gorm:"type:varchar(36);index"`
	EventType string    `gorm:"type:varchar(100);index"`
	Payload   string    `gorm:"type:text"`
	Status    string    `gorm:"type:varchar(20);index;default:'pending'"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// TableName 指定表名
func (OutboxMessage) TableName() string {
	return "rating_outbox_messages"
}

// OutboxEventPublisher 实现 EventPublisher 接口，使用 Outbox 模式。
// 事件记录写入上下文携带的数据库事务，与报价落库同一事务提交或回滚。
type OutboxEventPublisher struct {
	db       *gorm.DB
	producer *mq.KafkaProducer
	topic    string
}

// NewOutboxEventPublisher 创建新的 OutboxEventPublisher 实例
func NewOutboxEventPublisher(db *gorm.DB, producer *mq.KafkaProducer, topic string) *OutboxEventPublisher {
	return &OutboxEventPublisher{db: db, producer: producer, topic: topic}
}

// PublishQuoteEvaluated 发布报价评估完成事件
func (p *OutboxEventPublisher) PublishQuoteEvaluated(ctx context.Context, event domain.QuoteEvaluatedEvent) error {
	return p.publishEvent(ctx, domain.QuoteEvaluatedEventType, event)
}

// PublishQuoteReferred 发布报价转人工核保事件
func (p *OutboxEventPublisher) PublishQuoteReferred(ctx context.Context, event domain.QuoteReferredEvent) error {
	return p.publishEvent(ctx, domain.QuoteReferredEventType, event)
}

// PublishQuoteEvaluationFailed 发布报价评估失败事件
func (p *OutboxEventPublisher) PublishQuoteEvaluationFailed(ctx context.Context, event domain.QuoteEvaluationFailedEvent) error {
	return p.publishEvent(ctx, domain.QuoteEvaluationFailedEventType, event)
}

func (p *OutboxEventPublisher) publishEvent(ctx context.Context, eventType string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	message := OutboxMessage{
		ID:        uuid.NewString(),
		EventID:   uuid.NewString(),
		EventType: eventType,
		Payload:   string(payload),
		Status:    "pending",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if tx, ok := pkgdb.TxFromContext(ctx); ok {
		return tx.Create(&message).Error
	}
	return p.db.WithContext(ctx).Create(&message).Error
}

// ProcessOutboxMessages 投递待发送消息
func (p *OutboxEventPublisher) ProcessOutboxMessages(ctx context.Context, batchSize int) error {
	var messages []OutboxMessage
	err := p.db.WithContext(ctx).
		Where("status = ?", "pending").
		Order("created_at ASC").
		Limit(batchSize).
		Find(&messages).Error
	if err != nil {
		return err
	}

	for _, message := range messages {
		if err := p.producer.SendRaw(ctx, p.topic, message.EventID, []byte(message.Payload)); err != nil {
			return err
		}
		if err := p.db.WithContext(ctx).Model(&OutboxMessage{}).
			Where("id = ?", message.ID).
			Updates(map[string]any{"status": "sent", "updated_at": time.Now()}).Error; err != nil {
			return err
		}
	}

	return nil
}

// CleanupProcessedMessages 清理已投递且早于给定时间的消息
func (p *OutboxEventPublisher) CleanupProcessedMessages(ctx context.Context, before time.Time) error {
	return p.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", "sent", before).
		Delete(&OutboxMessage{}).Error
}
