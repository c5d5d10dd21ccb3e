package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/vigil/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Journal implements ports.Journal using a Redis list of JSON encoded changes.
type Journal struct {
	client *backend.Client
	prefix string
	name   string
	ttl    time.Duration
}

type Option func(*Journal)

// WithTTL sets the expiration of the journal key, refreshed on every append.
func WithTTL(ttl time.Duration) Option {
	return func(j *Journal) {
		j.ttl = ttl
	}
}

// WithPrefix sets the key prefix for journals.
func WithPrefix(prefix string) Option {
	return func(j *Journal) {
		j.prefix = prefix
	}
}

// New creates a new Redis journal with options.
func New(address, password string, db int, name string, opts ...Option) *Journal {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, name, opts...)
}

// NewFromClient creates a new Redis journal from an existing client.
func NewFromClient(client *backend.Client, name string, opts ...Option) *Journal {
	journal := &Journal{
		client: client,
		prefix: "vigil:journal:",
		name:   name,
		ttl:    0, // No expiration by default
	}

	for _, opt := range opts {
		opt(journal)
	}

	return journal
}

func (j *Journal) key() string {
	return j.prefix + j.name
}

// Append pushes the change to the tail of the list.
func (j *Journal) Append(ctx context.Context, change domain.Change) error {
	data, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}

	pipe := j.client.TxPipeline()
	pipe.RPush(ctx, j.key(), data)
	if j.ttl > 0 {
		pipe.Expire(ctx, j.key(), j.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return wrap("failed to append to redis", err)
	}
	return nil
}

// Entries reads the whole list.
func (j *Journal) Entries(ctx context.Context) ([]domain.Change, error) {
	raw, err := j.client.LRange(ctx, j.key(), 0, -1).Result()
	if err != nil {
		return nil, wrap("failed to read journal", err)
	}

	entries := make([]domain.Change, 0, len(raw))
	for i, item := range raw {
		var change domain.Change
		if err := json.Unmarshal([]byte(item), &change); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entry %d: %w", i, err)
		}
		entries = append(entries, change)
	}
	return entries, nil
}

// Reset deletes the journal key.
func (j *Journal) Reset(ctx context.Context) error {
	if err := j.client.Del(ctx, j.key()).Err(); err != nil {
		return wrap("failed to reset journal", err)
	}
	return nil
}

// Close closes the redis client.
func (j *Journal) Close() error {
	return j.client.Close()
}

func wrap(op string, err error) error {
	if errors.Is(err, backend.ErrClosed) {
		return fmt.Errorf("%s: %w", op, domain.ErrJournalClosed)
	}
	return fmt.Errorf("%s: %w", op, err)
}
