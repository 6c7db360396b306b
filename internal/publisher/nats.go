// Package publisher emits grade events on the host's grade channel.
package publisher

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gradefetcher-api/internal/dto"
)

// GradePublisher forwards successful grades to the grade channel.
type GradePublisher interface {
	PublishGrade(ctx context.Context, event dto.GradeEvent) error
}

type natsPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATS builds a publisher emitting grade events on the given subject.
func NewNATS(conn *nats.Conn, subject string, logger zerolog.Logger) GradePublisher {
	return &natsPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "grade_publisher").Logger(),
	}
}

func (p *natsPublisher) PublishGrade(_ context.Context, event dto.GradeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.Error().Err(err).Str("subject", p.subject).Msg("failed to publish grade event")
		return err
	}

	return nil
}

type noopPublisher struct{}

// NewNoop returns a publisher that drops events. Used when no broker is
// configured.
func NewNoop() GradePublisher {
	return noopPublisher{}
}

func (noopPublisher) PublishGrade(context.Context, dto.GradeEvent) error {
	return nil
}
