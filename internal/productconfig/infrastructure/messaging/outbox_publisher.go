package messaging

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wyfcoding/insurancerating/internal/productconfig/domain"
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
	return "productconfig_outbox_messages"
}

// OutboxEventPublisher 实现 EventPublisher 接口，使用 Outbox 模式。
// 事件记录写入上下文携带的数据库事务，与配置保存同一事务提交或回滚，
// 再由后台分发循环投递到 Kafka，不会出现只成功一半的情况。
type OutboxEventPublisher struct {
	db       *gorm.DB
	producer *mq.KafkaProducer
	topic    string
}

// NewOutboxEventPublisher 创建新的 OutboxEventPublisher 实例
func NewOutboxEventPublisher(db *gorm.DB, producer *mq.KafkaProducer, topic string) *OutboxEventPublisher {
	return &OutboxEventPublisher{db: db, producer: producer, topic: topic}
}

// PublishConfigUpdated 发布产品配置更新事件
func (p *OutboxEventPublisher) PublishConfigUpdated(ctx context.Context, event domain.ProductConfigUpdatedEvent) error {
	return p.publishEvent(ctx, domain.ProductConfigUpdatedEventType, event)
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

// ProcessOutboxMessages 投递待发送消息；按创建顺序批量取出发送后标记为 sent
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
