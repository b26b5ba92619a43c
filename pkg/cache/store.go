package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrConnect indicates the store was unreachable during setup.
// It is surfaced so that the operator can refuse to proceed with caching
// enabled instead of silently running uncached.
var ErrConnect = errors.New("cache store connection failed")

// Config holds store configuration.
type Config struct {
	// Addr is the Redis address (host:port)
	Addr string

	// Password is the Redis password (empty for unauthenticated instances)
	Password string

	// DB is the Redis database number
	DB int

	// Namespace is the key prefix scoping this cache inside the shared store
	Namespace string

	// DefaultTTL applies when Set is called with a non-positive TTL
	DefaultTTL time.Duration

	// ConnectTimeout bounds the liveness probe at construction
	ConnectTimeout time.Duration

	// ScanBatch is the SCAN page size used during invalidation
	ScanBatch int64
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		Addr:           "localhost:6379",
		Namespace:      DefaultNamespace,
		DefaultTTL:     5 * time.Minute,
		ConnectTimeout: 5 * time.Second,
		ScanBatch:      100,
	}
}

// Store is a thin abstraction over a shared Redis instance with expiring
// entries and pattern-based invalidation. Redis is the single source of
// truth for entry data; expiry enforcement is delegated to the store.
//
// All keyed operations degrade gracefully: transport errors and malformed
// entries are logged and behave like misses, so a store outage turns into
// always-miss behavior rather than application failure.
type Store struct {
	redis  *redis.Client
	cfg    Config
	logger zerolog.Logger
}

// New creates a Store and verifies connectivity with a synchronous PING
// probe. It fails fast with ErrConnect rather than deferring the failure
// to first use.
func New(cfg Config) (*Store, error) {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 5 * time.Minute
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.ScanBatch <= 0 {
		cfg.ScanBatch = 100
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	logger := log.With().Str("component", "cache-store").Logger()
	logger.Info().
		Str("addr", cfg.Addr).
		Str("namespace", cfg.Namespace).
		Msg("Connected to Redis")

	return &Store{
		redis:  client,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Get returns the stored entry for key, and whether it was present and
// unexpired. A missing key, a transport error, a malformed stored payload
// and an expired entry all report absent; none of them raise.
func (s *Store) Get(ctx context.Context, key CacheKey) (*Entry, bool) {
	data, err := s.redis.Get(ctx, key.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.Inc()
			return nil, false
		}
		CacheErrors.WithLabelValues("get").Inc()
		CacheMisses.Inc()
		s.logger.Warn().Err(err).Str("key", key.String()).Msg("Cache read error, treating as miss")
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		CacheMisses.Inc()
		s.logger.Warn().Err(err).Str("key", key.String()).Msg("Malformed cache entry, treating as miss")
		return nil, false
	}

	// Redis expiry granularity can lag; never hand back a stale entry
	if entry.IsExpired() {
		CacheMisses.Inc()
		return nil, false
	}

	CacheHits.Inc()
	return &entry, true
}

// Set stores payload under key with an expiry of ttl from now, overwriting
// any existing entry. A non-positive ttl selects the configured default.
// Write failures are logged and swallowed: the caller already holds a
// valid response and a cache-write failure must not fail its request.
func (s *Store) Set(ctx context.Context, key CacheKey, payload json.RawMessage, ttl time.Duration) {
	if ttl <= 0 {
		ttl = s.cfg.DefaultTTL
	}

	data, err := json.Marshal(NewEntry(payload, ttl))
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		s.logger.Warn().Err(err).Str("key", key.String()).Msg("Cache entry marshal failed, skipping write")
		return
	}

	if err := s.redis.Set(ctx, key.String(), data, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		s.logger.Warn().Err(err).Str("key", key.String()).Msg("Cache write error, response not cached")
		return
	}

	StoredBytes.Add(float64(len(data)))
	s.logger.Debug().
		Str("key", key.String()).
		Dur("ttl", ttl).
		Int("bytes", len(data)).
		Msg("Cached response")
}

// Invalidate deletes every key matching the glob pattern and returns how
// many were removed. An empty pattern scopes the deletion to this store's
// namespace, never the entire shared store. Keys are enumerated and
// deleted in bounded SCAN batches so a large cache never produces an
// unbounded single request. Zero matches return 0; transport errors abort
// the sweep and return the count removed so far.
func (s *Store) Invalidate(ctx context.Context, pattern string) int {
	if pattern == "" {
		pattern = s.cfg.Namespace + ":*"
	}

	var cursor uint64
	deleted := 0

	for {
		keys, next, err := s.redis.Scan(ctx, cursor, pattern, s.cfg.ScanBatch).Result()
		if err != nil {
			CacheErrors.WithLabelValues("invalidate").Inc()
			s.logger.Warn().Err(err).Str("pattern", pattern).Msg("Cache scan error during invalidation")
			return deleted
		}

		if len(keys) > 0 {
			n, err := s.redis.Del(ctx, keys...).Result()
			if err != nil {
				CacheErrors.WithLabelValues("invalidate").Inc()
				s.logger.Warn().Err(err).Str("pattern", pattern).Msg("Cache delete error during invalidation")
				return deleted
			}
			deleted += int(n)
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	if deleted > 0 {
		InvalidatedKeys.Add(float64(deleted))
	}
	s.logger.Info().
		Str("pattern", pattern).
		Int("deleted", deleted).
		Msg("Invalidated cache entries")

	return deleted
}

// Ping checks store connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

// Namespace returns the configured key namespace.
func (s *Store) Namespace() string {
	return s.cfg.Namespace
}

// Close releases the underlying Redis connection.
func (s *Store) Close() error {
	return s.redis.Close()
}
