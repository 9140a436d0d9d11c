package events

import (
	"context"

	"github.com/tempoworks/tempo-backend/internal/timesheet/repository"
	"github.com/tempoworks/tempo-backend/pkg/logger"
	"github.com/tempoworks/tempo-backend/pkg/messaging"
)

// TimesheetEventPublisher publishes timesheet workflow events
type TimesheetEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewTimesheetEventPublisher creates a new timesheet event publisher
func NewTimesheetEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*TimesheetEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeTimesheetEvents, "timesheet-service", log)
	if err != nil {
		return nil, err
	}

	return &TimesheetEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishSubmitted publishes a timesheet submitted event
func (p *TimesheetEventPublisher) PublishSubmitted(ctx context.Context, ts *repository.Timesheet, actorID string) {
	p.publish(ctx, messaging.EventTimesheetSubmitted, ts, actorID)
}

// PublishApproved publishes a timesheet approved event
func (p *TimesheetEventPublisher) PublishApproved(ctx context.Context, ts *repository.Timesheet, actorID string) {
	p.publish(ctx, messaging.EventTimesheetApproved, ts, actorID)
}

// PublishRejected publishes a timesheet rejected event
func (p *TimesheetEventPublisher) PublishRejected(ctx context.Context, ts *repository.Timesheet, actorID string) {
	p.publish(ctx, messaging.EventTimesheetRejected, ts, actorID)
}

// PublishReset publishes a timesheet reset-to-submitted event
func (p *TimesheetEventPublisher) PublishReset(ctx context.Context, ts *repository.Timesheet, actorID string) {
	p.publish(ctx, messaging.EventTimesheetReset, ts, actorID)
}

func (p *TimesheetEventPublisher) publish(ctx context.Context, eventType string, ts *repository.Timesheet, actorID string) {
	data := messaging.TimesheetEvent{
		TimesheetID: ts.ID,
		EmployeeID:  ts.EmployeeID,
		ProjectID:   ts.ProjectID,
		WorkDate:    ts.WorkDate.Format("2006-01-02"),
		Hours:       ts.Hours,
		Status:      ts.Status,
		ActorID:     actorID,
	}

	if err := p.publisher.Publish(ctx, eventType, data); err != nil {
		p.logger.Error().Err(err).Str("timesheet_id", ts.ID).Str("event_type", eventType).
			Msg("failed to publish timesheet event")
	}
}
