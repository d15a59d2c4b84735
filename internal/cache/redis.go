// Package cache stores the last quote snapshot per ticker in Redis.
package cache

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/trogers1052/carteira-dashboard/internal/models"
	"go.uber.org/zap"
)

// Hash fields, matching the quote cache row layout
const (
	fieldCurrent  = "ultima_cotacao"
	fieldPrevious = "preco_anterior"
	fieldTime     = "data_hora"
)

// Redis keeps one hash per ticker under prefix+code
type Redis struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedis connects to Redis and verifies the connection
func NewRedis(ctx context.Context, addr, password string, db int, prefix string, logger *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return NewRedisWithClient(client, prefix, logger), nil
}

// NewRedisWithClient wraps an existing client
func NewRedisWithClient(client *redis.Client, prefix string, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, prefix: prefix, logger: logger}
}

// Close closes the underlying client
func (r *Redis) Close() error {
	return r.client.Close()
}

// SaveQuote replaces the hash for the snapshot's code
func (r *Redis) SaveQuote(ctx context.Context, q *models.QuoteSnapshot) error {
	key := r.prefix + q.Code
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, encode(q))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save quote for %s: %w", q.Code, err)
	}
	return nil
}

// LoadQuotes returns every cached snapshot keyed by code
func (r *Redis) LoadQuotes(ctx context.Context) (map[string]*models.QuoteSnapshot, error) {
	quotes := make(map[string]*models.QuoteSnapshot)

	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		fields, err := r.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to read cached quote %s: %w", key, err)
		}
		code := strings.TrimPrefix(key, r.prefix)
		q, err := decode(code, fields)
		if err != nil {
			r.logger.Warn("skipping unreadable cached quote", zap.String("code", code), zap.Error(err))
			continue
		}
		quotes[code] = q
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan quote cache: %w", err)
	}
	return quotes, nil
}

func encode(q *models.QuoteSnapshot) map[string]any {
	fields := map[string]any{
		fieldCurrent:  "",
		fieldPrevious: "",
		fieldTime:     models.FormatQuoteTime(q.FetchedAt),
	}
	if q.CurrentPrice != nil {
		fields[fieldCurrent] = q.CurrentPrice.String()
	}
	if q.PreviousPrice != nil {
		fields[fieldPrevious] = q.PreviousPrice.String()
	}
	return fields
}

func decode(code string, fields map[string]string) (*models.QuoteSnapshot, error) {
	q := &models.QuoteSnapshot{Code: code}

	var err error
	if q.CurrentPrice, err = optionalDecimal(fields[fieldCurrent]); err != nil {
		return nil, fmt.Errorf("%s: %w", fieldCurrent, err)
	}
	if q.PreviousPrice, err = optionalDecimal(fields[fieldPrevious]); err != nil {
		return nil, fmt.Errorf("%s: %w", fieldPrevious, err)
	}
	if s := fields[fieldTime]; s != "" {
		if q.FetchedAt, err = models.ParseQuoteTime(s); err != nil {
			return nil, fmt.Errorf("%s: %w", fieldTime, err)
		}
	}
	return q, nil
}

func optionalDecimal(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
