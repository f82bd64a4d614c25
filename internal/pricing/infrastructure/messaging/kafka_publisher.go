package messaging

import (
	"context"

	"github.com/wyfcoding/optionspricing/internal/pricing/domain"
	"github.com/wyfcoding/optionspricing/pkg/mq"
)

// KafkaEventPublisher 实现 EventPublisher 接口，将领域事件发布到 Kafka。
// 消息 key 使用标的代码，保证同一标的的事件落在同一分区并保序。
type KafkaEventPublisher struct {
	producer *mq.KafkaProducer
	topic    string
}

// NewKafkaEventPublisher 创建新的 KafkaEventPublisher 实例
func NewKafkaEventPublisher(producer *mq.KafkaProducer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

type eventEnvelope struct {
	EventType string `json:"event_type"`
	Payload   any    `json:"payload"`
}

// PublishOptionPriced 发布期权定价完成事件
func (p *KafkaEventPublisher) PublishOptionPriced(ctx context.Context, event domain.OptionPricedEvent) error {
	return p.publishEvent(ctx, domain.OptionPricedEventType, event.Symbol, event)
}

// PublishGreeksCalculated 发布希腊字母计算完成事件
func (p *KafkaEventPublisher) PublishGreeksCalculated(ctx context.Context, event domain.GreeksCalculatedEvent) error {
	return p.publishEvent(ctx, domain.GreeksCalculatedEventType, event.Symbol, event)
}

// PublishPricingError 发布定价错误事件
func (p *KafkaEventPublisher) PublishPricingError(ctx context.Context, event domain.PricingErrorEvent) error {
	return p.publishEvent(ctx, domain.PricingErrorEventType, event.Symbol, event)
}

// PublishBatchPricingCompleted 发布批量定价完成事件
func (p *KafkaEventPublisher) PublishBatchPricingCompleted(ctx context.Context, event domain.BatchPricingCompletedEvent) error {
	return p.publishEvent(ctx, domain.BatchPricingCompletedEventType, event.BatchID, event)
}

func (p *KafkaEventPublisher) publishEvent(ctx context.Context, eventType, key string, payload any) error {
	envelope := eventEnvelope{EventType: eventType, Payload: payload}
	return p.producer.SendMessage(ctx, p.topic, key, envelope)
}

var _ domain.EventPublisher = (*KafkaEventPublisher)(nil)
