package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"CrediTech/internal/domain/models"
	domrepo "CrediTech/internal/domain/repository"
	xhttp "CrediTech/pkg/http"
	pkgkafka "CrediTech/pkg/kafka"
	"CrediTech/pkg/logger"
)

// Refresher is what refresh commands act on.
type Refresher interface {
	Reload(ctx context.Context, category string) error
	Recluster(ctx context.Context) error
}

// KafkaRefreshHandler consumes refresh commands:
//
//	{"action":"reload","category":"veiculo-financiamento"}
//	{"action":"recluster"}
type KafkaRefreshHandler struct {
	topic   string
	target  Refresher
	metrics domrepo.Metrics
	l       *logger.Logger
}

func NewKafkaRefreshHandler(topic string, target Refresher, m domrepo.Metrics, l *logger.Logger) *KafkaRefreshHandler {
	if m == nil {
		m = domrepo.NoopMetrics{}
	}
	return &KafkaRefreshHandler{topic: topic, target: target, metrics: m, l: logger.OrNop(l).Component("refresh-handler")}
}

func (h *KafkaRefreshHandler) Topic() string { return h.topic }

func (h *KafkaRefreshHandler) Handle(ctx context.Context, b []byte) error {
	var cmd models.RefreshCommand
	if err := json.Unmarshal(b, &cmd); err != nil {
		h.metrics.RecordError("refresh_unmarshal")
		return fmt.Errorf("decode refresh command: %w", err)
	}
	if errs := xhttp.ValidateStruct(ctx, &cmd); len(errs) > 0 {
		h.metrics.RecordError("refresh_invalid")
		// Retrying an invalid command cannot succeed; drop it.
		h.l.Warn("invalid refresh command dropped", logger.Any("errors", errs))
		return nil
	}

	h.l.Info("refresh command", logger.String("action", cmd.Action), logger.String("category", cmd.Category))
	switch cmd.Action {
	case "reload":
		return h.target.Reload(ctx, cmd.Category)
	case "recluster":
		return h.target.Recluster(ctx)
	}
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaRefreshHandler)(nil)

// PipelineRefresher adapts Pipeline to Refresher. Unknown categories are
// logged and acknowledged.
type PipelineRefresher struct {
	P *Pipeline
}

func (r PipelineRefresher) Reload(ctx context.Context, category string) error {
	_, err := r.P.Reload(ctx, category)
	if err != nil && errors.Is(err, ErrUnknownCategory) {
		r.P.l.Warn("reload for unknown category ignored", logger.String("category", category))
		return nil
	}
	return err
}

func (r PipelineRefresher) Recluster(ctx context.Context) error {
	_, err := r.P.Recluster(ctx)
	return err
}
