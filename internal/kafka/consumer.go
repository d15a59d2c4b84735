package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/trogers1052/carteira-dashboard/internal/locale"
	"github.com/trogers1052/carteira-dashboard/internal/models"
	"github.com/trogers1052/carteira-dashboard/internal/ticker"
	"go.uber.org/zap"
)

// ErrInvalidCommand is returned for commands that cannot be applied
var ErrInvalidCommand = errors.New("invalid position command")

// PositionWriter is the store the command consumer applies changes to
type PositionWriter interface {
	SavePosition(ctx context.Context, p *models.Position) error
	DeletePosition(ctx context.Context, code string) error
}

// PositionReplacer is implemented by stores that can swap the whole
// position set atomically
type PositionReplacer interface {
	ReplaceAllPositions(ctx context.Context, positions []models.Position) error
}

// CodeValidator checks that a ticker trades before it is added
type CodeValidator interface {
	Validate(ctx context.Context, code string) error
}

type positionGetter interface {
	GetPosition(ctx context.Context, code string) (*models.Position, error)
}

// MessageReader is the subset of *kafka.Reader used by CommandConsumer
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
	Config() kafka.ReaderConfig
}

// CommandConsumer applies position commands published by other services,
// such as a broker sync, to the position store
type CommandConsumer struct {
	reader    MessageReader
	store     PositionWriter
	validator CodeValidator
	logger    *zap.Logger
}

// NewCommandConsumer creates a consumer for the commands topic
func NewCommandConsumer(brokers []string, topic, groupID string, store PositionWriter, logger *zap.Logger) *CommandConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
	})
	return NewCommandConsumerWithReader(reader, store, logger)
}

// NewCommandConsumerWithReader creates a consumer on top of an existing reader
func NewCommandConsumerWithReader(r MessageReader, store PositionWriter, logger *zap.Logger) *CommandConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandConsumer{reader: r, store: store, logger: logger}
}

// WithValidator makes the consumer check codes the store does not hold yet.
// Without one, commands are trusted as sent.
func (c *CommandConsumer) WithValidator(v CodeValidator) *CommandConsumer {
	c.validator = v
	return c
}

// Start consumes until ctx is cancelled. Bad commands are logged and skipped.
func (c *CommandConsumer) Start(ctx context.Context) error {
	c.logger.Info("starting command consumer", zap.String("topic", c.reader.Config().Topic))

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("command consumer shutting down")
				return c.reader.Close()
			}
			c.logger.Warn("failed to read message", zap.Error(err))
			continue
		}

		if err := c.processMessage(ctx, msg); err != nil {
			c.logger.Warn("skipping position command",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.String("key", string(msg.Key)),
				zap.Error(err))
		}
	}
}

func (c *CommandConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var cmd models.PositionCommand
	if err := json.Unmarshal(msg.Value, &cmd); err != nil {
		return fmt.Errorf("%w: failed to unmarshal: %w", ErrInvalidCommand, err)
	}

	if cmd.CommandType == models.CommandPositionsSnapshot {
		return c.applySnapshot(ctx, cmd)
	}

	code := ticker.Normalize(cmd.Code)
	if code == "" {
		return fmt.Errorf("%w: codigo is required", ErrInvalidCommand)
	}

	switch cmd.CommandType {
	case models.CommandPositionUpsert:
		p, err := commandPosition(code, cmd)
		if err != nil {
			return err
		}
		if err := c.validateNew(ctx, code); err != nil {
			return err
		}
		if err := c.store.SavePosition(ctx, p); err != nil {
			return fmt.Errorf("failed to save position %s: %w", code, err)
		}
		c.logger.Info("position upserted from command", zap.String("code", code), zap.String("source", cmd.Source))
	case models.CommandPositionDelete:
		if err := c.store.DeletePosition(ctx, code); err != nil {
			if errors.Is(err, models.ErrPositionNotFound) {
				c.logger.Debug("position already absent", zap.String("code", code))
				return nil
			}
			return fmt.Errorf("failed to delete position %s: %w", code, err)
		}
		c.logger.Info("position deleted from command", zap.String("code", code), zap.String("source", cmd.Source))
	default:
		c.logger.Debug("ignoring command type", zap.String("command_type", cmd.CommandType))
	}
	return nil
}

// applySnapshot replaces every stored position. Any bad row rejects the
// whole snapshot.
func (c *CommandConsumer) applySnapshot(ctx context.Context, cmd models.PositionCommand) error {
	replacer, ok := c.store.(PositionReplacer)
	if !ok {
		return fmt.Errorf("%w: store does not support snapshots", ErrInvalidCommand)
	}

	positions := make([]models.Position, 0, len(cmd.Positions))
	for _, row := range cmd.Positions {
		code := ticker.Normalize(row.Code)
		if code == "" {
			return fmt.Errorf("%w: snapshot row without codigo", ErrInvalidCommand)
		}
		p, err := commandPosition(code, row)
		if err != nil {
			return fmt.Errorf("snapshot row %s: %w", code, err)
		}
		if err := c.validateNew(ctx, code); err != nil {
			return fmt.Errorf("snapshot row %s: %w", code, err)
		}
		positions = append(positions, *p)
	}

	if err := replacer.ReplaceAllPositions(ctx, positions); err != nil {
		return fmt.Errorf("failed to replace positions: %w", err)
	}
	c.logger.Info("positions replaced from snapshot",
		zap.Int("count", len(positions)),
		zap.String("source", cmd.Source))
	return nil
}

// validateNew checks code against the quote source unless it is already stored
func (c *CommandConsumer) validateNew(ctx context.Context, code string) error {
	if c.validator == nil {
		return nil
	}
	if g, ok := c.store.(positionGetter); ok {
		if _, err := g.GetPosition(ctx, code); err == nil {
			return nil
		}
	}
	if err := c.validator.Validate(ctx, code); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	return nil
}

func commandPosition(code string, cmd models.PositionCommand) (*models.Position, error) {
	avg, err := locale.Parse(cmd.AvgPrice)
	if err != nil {
		return nil, fmt.Errorf("%w: preco_medio: %w", ErrInvalidCommand, err)
	}
	target, err := locale.Parse(cmd.TargetPrice)
	if err != nil {
		return nil, fmt.Errorf("%w: preco_teto: %w", ErrInvalidCommand, err)
	}
	if avg.IsNegative() || target.IsNegative() {
		return nil, fmt.Errorf("%w: prices must not be negative", ErrInvalidCommand)
	}
	return &models.Position{Code: code, AvgPrice: avg, TargetPrice: target}, nil
}

// Close closes the Kafka consumer
func (c *CommandConsumer) Close() error {
	return c.reader.Close()
}
