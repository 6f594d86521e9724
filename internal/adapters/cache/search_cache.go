package cache

import (
	"context"
	"easystay-service/internal/contextkeys"
	"easystay-service/internal/core/domain"
	"easystay-service/internal/core/port"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/karlseguin/ccache/v3"
)

const generationKey = "search_generation"

// memcacheClient - часть *memcache.Client, которой пользуется кэш
type memcacheClient interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Add(item *memcache.Item) error
	Increment(key string, delta uint64) (uint64, error)
}

type cachedResult struct {
	Properties []domain.Property `json:"properties"`
	Total      int               `json:"total"`
}

// SearchCache - двухуровневый кэш результатов поиска: ccache в процессе и
// необязательный memcached, общий для всех экземпляров.
// Ключи включают поколение, Invalidate сдвигает его, и старые записи перестают находиться.
type SearchCache struct {
	local      *ccache.Cache[*cachedResult]
	remote     memcacheClient
	ttl        time.Duration
	generation atomic.Uint64
}

type Config struct {
	LocalMaxSize   int64
	TTL            time.Duration
	MemcachedHosts []string
}

func NewSearchCache(cfg Config) *SearchCache {
	var remote memcacheClient
	if len(cfg.MemcachedHosts) > 0 {
		client := memcache.New(cfg.MemcachedHosts...)
		client.Timeout = 200 * time.Millisecond
		remote = client
	}
	return newSearchCache(cfg, remote)
}

func newSearchCache(cfg Config, remote memcacheClient) *SearchCache {
	if cfg.LocalMaxSize <= 0 {
		cfg.LocalMaxSize = 5000
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return &SearchCache{
		local:  ccache.New(ccache.Configure[*cachedResult]().MaxSize(cfg.LocalMaxSize)),
		remote: remote,
		ttl:    cfg.TTL,
	}
}

func cacheLogger(ctx context.Context, method string) port.LoggerPort {
	return contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "SearchCache",
		"method":    method,
	})
}

// currentGeneration читает поколение из memcached, без него - локальный счетчик.
// ok == false: поколение неизвестно, кэш нужно обойти.
func (c *SearchCache) currentGeneration(ctx context.Context) (uint64, bool) {
	if c.remote == nil {
		return c.generation.Load(), true
	}

	item, err := c.remote.Get(generationKey)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return 0, true
	}
	if err != nil {
		cacheLogger(ctx, "currentGeneration").Warn("Failed to read cache generation, bypassing cache", port.Fields{"error": err.Error()})
		return 0, false
	}

	gen, err := strconv.ParseUint(string(item.Value), 10, 64)
	if err != nil {
		cacheLogger(ctx, "currentGeneration").Warn("Corrupted cache generation, bypassing cache", port.Fields{"value": string(item.Value)})
		return 0, false
	}
	return gen, true
}

func (c *SearchCache) Get(ctx context.Context, q domain.SearchQuery) (*domain.SearchResult, bool) {
	gen, ok := c.currentGeneration(ctx)
	if !ok {
		return nil, false
	}
	key := buildKey(gen, q)
	logger := cacheLogger(ctx, "Get").WithFields(port.Fields{"key": key})

	if item := c.local.Get(key); item != nil && !item.Expired() {
		logger.Debug("Cache HIT (local)", nil)
		return toResult(item.Value()), true
	}

	if c.remote == nil {
		return nil, false
	}

	item, err := c.remote.Get(key)
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			logger.Warn("Failed to read from memcached", port.Fields{"error": err.Error()})
		}
		return nil, false
	}

	var data cachedResult
	if err := json.Unmarshal(item.Value, &data); err != nil {
		logger.Warn("Failed to decode cached search result", port.Fields{"error": err.Error()})
		return nil, false
	}

	c.local.Set(key, &data, c.ttl)
	logger.Debug("Cache HIT (memcached)", nil)
	return toResult(&data), true
}

func (c *SearchCache) Set(ctx context.Context, q domain.SearchQuery, result *domain.SearchResult) {
	if result == nil {
		return
	}
	gen, ok := c.currentGeneration(ctx)
	if !ok {
		return
	}
	key := buildKey(gen, q)
	logger := cacheLogger(ctx, "Set").WithFields(port.Fields{"key": key})

	data := &cachedResult{Properties: result.Properties, Total: result.Total}
	c.local.Set(key, data, c.ttl)

	if c.remote == nil {
		return
	}

	payload, err := json.Marshal(data)
	if err != nil {
		logger.Warn("Failed to encode search result for memcached", port.Fields{"error": err.Error()})
		return
	}
	if err := c.remote.Set(&memcache.Item{Key: key, Value: payload, Expiration: ttlSeconds(c.ttl)}); err != nil {
		logger.Warn("Failed to write to memcached", port.Fields{"error": err.Error()})
	}
}

// Invalidate очищает локальный кэш и сдвигает поколение в memcached
func (c *SearchCache) Invalidate(ctx context.Context) error {
	c.local.Clear()
	c.generation.Add(1)

	if c.remote == nil {
		return nil
	}

	_, err := c.remote.Increment(generationKey, 1)
	if err == nil {
		return nil
	}
	if !errors.Is(err, memcache.ErrCacheMiss) {
		return fmt.Errorf("failed to bump cache generation: %w", err)
	}

	// Счетчика еще нет. Если параллельный Add успел первым, достаточно инкремента.
	err = c.remote.Add(&memcache.Item{Key: generationKey, Value: []byte("1")})
	if errors.Is(err, memcache.ErrNotStored) {
		_, err = c.remote.Increment(generationKey, 1)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize cache generation: %w", err)
	}
	return nil
}

// Close останавливает фоновую горутину ccache
func (c *SearchCache) Close() {
	c.local.Stop()
}

func toResult(data *cachedResult) *domain.SearchResult {
	props := data.Properties
	if props == nil {
		props = []domain.Property{}
	}
	return &domain.SearchResult{Properties: props, Total: data.Total}
}

func ttlSeconds(ttl time.Duration) int32 {
	seconds := int32(ttl / time.Second)
	if seconds < 1 {
		return 1
	}
	return seconds
}
