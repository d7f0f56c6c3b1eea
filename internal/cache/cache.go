// Package cache stores per-campaign wizard state in Redis under typed,
// namespaced keys. Older builds of the wizard evicted local storage by
// substring-matching key names; the explicit namespace plus
// Invalidate(campaignID) replaces that wholesale.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Section names one cached slice of wizard state.
type Section string

const (
	SectionDetails      Section = "details"
	SectionCategories   Section = "categories"
	SectionAvailability Section = "availability"
	SectionArtFiles     Section = "artfiles"
	SectionAgreement    Section = "agreement"
	SectionPayment      Section = "payment"
)

const keyPrefix = "insertwizard"

// ErrMiss is returned when a section has no cached value.
var ErrMiss = errors.New("cache miss")

// Store is a campaign-scoped wizard cache. Safe for concurrent use.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a Store. A ttl of 0 means entries live until invalidated.
func New(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// Key builds the namespaced key for one campaign section.
func Key(campaignID string, section Section) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, campaignID, section)
}

// Set stores a JSON-encoded section value.
func (s *Store) Set(ctx context.Context, campaignID string, section Section, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", section, err)
	}
	if err := s.rdb.Set(ctx, Key(campaignID, section), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", section, err)
	}
	return nil
}

// Get loads a section into dest. Returns ErrMiss when nothing is cached.
func (s *Store) Get(ctx context.Context, campaignID string, section Section, dest interface{}) error {
	data, err := s.rdb.Get(ctx, Key(campaignID, section)).Bytes()
	if err == redis.Nil {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("cache get %s: %w", section, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode %s: %w", section, err)
	}
	return nil
}

// Invalidate removes every cached section for one campaign. Called after
// any mutation so a re-entered wizard never renders stale state.
func (s *Store) Invalidate(ctx context.Context, campaignID string) error {
	pattern := fmt.Sprintf("%s:%s:*", keyPrefix, campaignID)

	var cursor uint64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("cache scan: %w", err)
		}
		if len(keys) > 0 {
			if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache del: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
