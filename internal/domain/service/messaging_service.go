package service

import (
	"context"
	"ethereum-block-explorer/internal/domain/entity"
)

// MessagingService defines the interface for publishing exploration events
type MessagingService interface {
	// Connect establishes connection to the messaging system
	Connect(ctx context.Context) error

	// Disconnect closes connection to the messaging system
	Disconnect() error

	// IsConnected checks if connected to the messaging system
	IsConnected() bool

	// PublishSummary publishes the summary of a completed exploration
	PublishSummary(ctx context.Context, summary *entity.ExplorationSummary) error
}
