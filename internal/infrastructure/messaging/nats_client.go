package messaging

import (
	"context"
	"encoding/json"
	"ethereum-block-explorer/internal/domain/entity"
	"ethereum-block-explorer/internal/infrastructure/config"
	"ethereum-block-explorer/internal/infrastructure/logger"
	apperrors "ethereum-block-explorer/pkg/errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSClient handles NATS JetStream operations and implements MessagingService interface
type NATSClient struct {
	conn      *nats.Conn
	js        nats.JetStreamContext
	config    *config.NATSConfig
	logger    *logger.Logger
	isRunning bool
}

// NewNATSClient creates a new NATS client
func NewNATSClient(cfg *config.NATSConfig, logger *logger.Logger) *NATSClient {
	return &NATSClient{
		config: cfg,
		logger: logger.WithComponent("nats-client"),
	}
}

// NewNATSMessagingService creates a new NATS messaging service from main config
func NewNATSMessagingService(cfg *config.Config, logger *logger.Logger) *NATSClient {
	return NewNATSClient(&cfg.NATS, logger)
}

// Connect connects to NATS server and sets up JetStream
func (n *NATSClient) Connect(ctx context.Context) error {
	if !n.config.Enabled {
		n.logger.Debug("NATS is disabled, skipping connection")
		return nil
	}

	n.logger.Info("Connecting to NATS server", zap.String("url", n.config.URL))

	opts := []nats.Option{
		nats.Name("ethereum-block-explorer"),
		nats.Timeout(n.config.ConnectTimeout),
		nats.ReconnectWait(n.config.ReconnectDelay),
		nats.MaxReconnects(n.config.ReconnectAttempts),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			n.logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			n.logger.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	conn, err := nats.Connect(n.config.URL, opts...)
	if err != nil {
		return apperrors.NewMessagingError("failed to connect to NATS", err)
	}

	n.conn = conn

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return apperrors.NewMessagingError("failed to create JetStream context", err)
	}

	n.js = js

	if err := n.setupStream(ctx); err != nil {
		conn.Close()
		return apperrors.NewMessagingError("failed to setup stream", err)
	}

	n.isRunning = true
	n.logger.Info("Connected to NATS JetStream", zap.String("stream", n.config.StreamName))

	return nil
}

// Disconnect disconnects from NATS server
func (n *NATSClient) Disconnect() error {
	if n.conn != nil {
		n.conn.Close()
		n.conn = nil
		n.js = nil
	}
	n.isRunning = false
	return nil
}

// IsConnected checks if connected to NATS
func (n *NATSClient) IsConnected() bool {
	return n.isRunning && n.conn != nil && n.conn.IsConnected()
}

// SummarySubject returns the subject exploration summaries are published on
func (n *NATSClient) SummarySubject() string {
	return fmt.Sprintf("%s.summaries", n.config.SubjectPrefix)
}

// setupStream creates the JetStream stream when it does not exist yet
func (n *NATSClient) setupStream(ctx context.Context) error {
	streamName := n.config.StreamName
	subject := n.SummarySubject()

	stream, err := n.js.StreamInfo(streamName)
	if err == nil {
		n.logger.Debug("JetStream stream already exists",
			zap.String("stream", streamName),
			zap.Uint64("messages", stream.State.Msgs))
		return nil
	}

	n.logger.Info("Creating JetStream stream",
		zap.String("stream", streamName),
		zap.String("subject", subject))

	_, err = n.js.AddStream(&nats.StreamConfig{
		Name:       streamName,
		Subjects:   []string{subject},
		Storage:    nats.FileStorage,
		Retention:  nats.LimitsPolicy,
		MaxMsgs:    100000,
		MaxAge:     7 * 24 * time.Hour,
		Duplicates: 5 * time.Minute,
	})
	return err
}

// summaryMsgID identifies a summary for JetStream deduplication
func summaryMsgID(summary *entity.ExplorationSummary) string {
	return fmt.Sprintf("%s-%d-%d-%d", summary.Network, summary.StartBlock, summary.EndBlock, summary.GeneratedAt.UnixNano())
}

// PublishSummary publishes an exploration summary to NATS JetStream
func (n *NATSClient) PublishSummary(ctx context.Context, summary *entity.ExplorationSummary) error {
	if !n.IsConnected() {
		if !n.config.Enabled {
			return nil
		}
		return apperrors.NewMessagingError("NATS client is not connected", nil)
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return apperrors.NewMessagingError("failed to marshal exploration summary", err)
	}

	subject := n.SummarySubject()
	if _, err := n.js.Publish(subject, data, nats.MsgId(summaryMsgID(summary))); err != nil {
		return apperrors.NewMessagingError("failed to publish exploration summary", err)
	}

	n.logger.Debug("Published exploration summary",
		zap.String("subject", subject),
		zap.Uint64("start_block", summary.StartBlock),
		zap.Uint64("end_block", summary.EndBlock))

	return nil
}
