package ports

import (
	"context"

	"github.com/tymchak1/flow-roles/internal/contracts"
)

type DomainPublisher interface {
	PublishDomain(ctx context.Context, event contracts.EventEnvelope) error
}
