package nop

import (
	"context"

	"github.com/papercomputeco/weft/pkg/insight"
)

// Publisher is a no-op insight publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op insight publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishPath validates input and otherwise does nothing.
func (p *Publisher) PublishPath(_ context.Context, event *insight.PathCertifiedEvent) error {
	if event == nil {
		return insight.ErrNilPathEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
