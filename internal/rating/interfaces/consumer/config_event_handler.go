package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/wyfcoding/insurancerating/internal/rating/application"
)

// ConfigEventHandler 消费产品配置更新事件并使本地快照缓存失效
type ConfigEventHandler struct {
	rating *application.RatingApplicationService
}

func NewConfigEventHandler(rating *application.RatingApplicationService) *ConfigEventHandler {
	return &ConfigEventHandler{rating: rating}
}

func (h *ConfigEventHandler) HandleConfigUpdated(ctx context.Context, msg kafkago.Message) error {
	var event struct {
		InsurerID   string `json:"insurer_id"`
		ProductCode string `json:"product_code"`
		Version     uint64 `json:"version"`
		Section     string `json:"section"`
	}
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return err
	}

	slog.Info("Handling product config updated event",
		"insurer_id", event.InsurerID,
		"product_code", event.ProductCode,
		"version", event.Version,
		"section", event.Section,
	)

	return h.rating.InvalidateSnapshot(ctx, event.InsurerID, event.ProductCode)
}
