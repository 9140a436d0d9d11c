package events

import (
	"context"

	"github.com/tempoworks/tempo-backend/internal/csvimport/repository"
	"github.com/tempoworks/tempo-backend/pkg/logger"
	"github.com/tempoworks/tempo-backend/pkg/messaging"
)

// ImportEventPublisher publishes import lifecycle events
type ImportEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewImportEventPublisher creates a new import event publisher
func NewImportEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*ImportEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeImportEvents, "timesheet-service", log)
	if err != nil {
		return nil, err
	}

	return &ImportEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishCompleted publishes an import completed event
func (p *ImportEventPublisher) PublishCompleted(ctx context.Context, log *repository.ImportLog) {
	data := messaging.ImportCompletedEvent{
		ImportLogID: log.ID,
		DataType:    log.DataType,
		FileName:    log.FileName,
		TotalRows:   log.TotalRows,
		SuccessRows: log.SuccessRows,
		ErrorRows:   log.ErrorRows,
		Status:      log.Status,
		OperatorID:  log.OperatorID,
	}

	if err := p.publisher.Publish(ctx, messaging.EventImportCompleted, data); err != nil {
		p.logger.Error().Err(err).Str("import_log_id", log.ID).Msg("failed to publish import completed event")
	}
}
