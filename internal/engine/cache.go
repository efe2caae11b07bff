package engine

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache provides 2-tier caching: L1 in-memory + L2 Redis.
// L1 is fast but lost on restart. L2 survives restarts.
//
// Besides video metadata and transcripts, this is the local ephemeral store
// for organized checklists: written unconditionally before every durable
// write, and read back when the durable store is unavailable, so a finished
// organization is never silently lost.
var studioCache *tieredCache

// Cache metrics — atomic counters for thread-safe access.
var (
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
)

type tieredCache struct {
	l1              sync.Map      // key → *cacheEntry
	rdb             *redis.Client // nil if Redis unavailable
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
}

type cacheEntry struct {
	data      []byte
	expiresAt time.Time
}

// InitCache sets up the 2-tier cache. Call after Init().
// redisURL can be empty to disable L2.
func InitCache(redisURL string, ttl time.Duration, maxEntries int, cleanupInterval time.Duration) {
	c := &tieredCache{ttl: ttl, maxEntries: maxEntries, cleanupInterval: cleanupInterval}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			slog.Warn("cache: invalid redis URL, L2 disabled", slog.Any("error", err))
		} else {
			rdb := redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				slog.Warn("cache: redis unreachable, L2 disabled", slog.Any("error", err))
			} else {
				c.rdb = rdb
				slog.Info("cache: L2 redis connected", slog.String("addr", opts.Addr))
			}
		}
	}

	studioCache = c
	slog.Info("cache: initialized", slog.Duration("ttl", ttl), slog.Bool("redis", c.rdb != nil), slog.Int("max_entries", maxEntries))

	go c.cleanupLoop()
}

// CacheKey builds a deterministic cache key from parts.
func CacheKey(parts ...string) string {
	joined := strings.Join(parts, "|")
	hash := sha256.Sum256([]byte(joined))
	return fmt.Sprintf("studio:%x", hash[:12])
}

// CacheGet tries L1, then L2. On L2 hit, populates L1.
func CacheGet(ctx context.Context, key string) ([]byte, bool) {
	if studioCache == nil {
		cacheMisses.Add(1)
		return nil, false
	}

	if val, ok := studioCache.l1.Load(key); ok {
		entry := val.(*cacheEntry)
		if time.Now().Before(entry.expiresAt) {
			slog.Debug("cache: L1 hit", slog.String("key", key))
			cacheHits.Add(1)
			return entry.data, true
		}
		studioCache.l1.Delete(key) // expired
	}

	if studioCache.rdb != nil {
		data, err := studioCache.rdb.Get(ctx, key).Bytes()
		if err == nil {
			slog.Debug("cache: L2 hit", slog.String("key", key))
			cacheHits.Add(1)
			studioCache.l1.Store(key, &cacheEntry{
				data:      data,
				expiresAt: time.Now().Add(studioCache.ttl),
			})
			return data, true
		}
	}

	cacheMisses.Add(1)
	return nil, false
}

// CacheSet stores value in both L1 and L2.
func CacheSet(ctx context.Context, key string, data []byte) {
	if studioCache == nil {
		return
	}

	studioCache.evictIfNeeded()

	studioCache.l1.Store(key, &cacheEntry{
		data:      data,
		expiresAt: time.Now().Add(studioCache.ttl),
	})

	if studioCache.rdb != nil {
		if err := studioCache.rdb.Set(ctx, key, data, studioCache.ttl).Err(); err != nil {
			slog.Debug("cache: L2 set failed", slog.Any("error", err))
		}
	}
}

// CacheStats returns current cache hit/miss counters.
func CacheStats() (hits, misses int64) {
	return cacheHits.Load(), cacheMisses.Load()
}

// checklistCacheKey keys the cached organized checklist for a video.
func checklistCacheKey(videoID string) string {
	return CacheKey("checklist", videoID)
}

// cachedChecklist is the cache payload for an organized checklist: the task
// list plus per-item completion flags. Completion rides along so gating state
// survives between tool calls when no database is configured.
type cachedChecklist struct {
	Tasks     []OrganizedTask `json:"tasks"`
	Completed map[string]bool `json:"completed,omitempty"`
}

// CacheSetChecklist stores the organized task list and completion flags for a
// video. completed may be nil for a freshly organized list.
func CacheSetChecklist(ctx context.Context, videoID string, tasks []OrganizedTask, completed map[string]bool) {
	data, err := json.Marshal(cachedChecklist{Tasks: tasks, Completed: completed})
	if err != nil {
		return
	}
	CacheSet(ctx, checklistCacheKey(videoID), data)
}

// CacheGetChecklist retrieves a previously cached organized task list and its
// completion flags.
func CacheGetChecklist(ctx context.Context, videoID string) ([]OrganizedTask, map[string]bool, bool) {
	data, ok := CacheGet(ctx, checklistCacheKey(videoID))
	if !ok {
		return nil, nil, false
	}
	var cc cachedChecklist
	if err := json.Unmarshal(data, &cc); err != nil || len(cc.Tasks) == 0 {
		return nil, nil, false
	}
	return cc.Tasks, cc.Completed, true
}

// evictIfNeeded removes entries when L1 exceeds maxEntries.
// Removes expired entries first, then oldest entries if still over limit.
func (c *tieredCache) evictIfNeeded() {
	if c.maxEntries <= 0 {
		return
	}

	count := 0
	c.l1.Range(func(_, _ any) bool {
		count++
		return true
	})

	if count < c.maxEntries {
		return
	}

	// Phase 1: remove expired
	now := time.Now()
	c.l1.Range(func(key, val any) bool {
		if entry, ok := val.(*cacheEntry); ok && now.After(entry.expiresAt) {
			c.l1.Delete(key)
			count--
		}
		return count >= c.maxEntries
	})

	if count < c.maxEntries {
		return
	}

	// Phase 2: remove oldest entries until under limit
	var oldest struct {
		key any
		at  time.Time
	}
	for count >= c.maxEntries {
		oldest.key = nil
		oldest.at = time.Now().Add(time.Hour) // far future
		c.l1.Range(func(key, val any) bool {
			if entry, ok := val.(*cacheEntry); ok {
				// Earlier expiry = older entry (since expiry = createdAt + ttl)
				if entry.expiresAt.Before(oldest.at) {
					oldest.key = key
					oldest.at = entry.expiresAt
				}
			}
			return true
		})
		if oldest.key == nil {
			break
		}
		c.l1.Delete(oldest.key)
		count--
	}
}

// cleanupLoop periodically removes expired L1 entries.
func (c *tieredCache) cleanupLoop() {
	interval := c.cleanupInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		c.l1.Range(func(key, val any) bool {
			if entry, ok := val.(*cacheEntry); ok && now.After(entry.expiresAt) {
				c.l1.Delete(key)
			}
			return true
		})
	}
}
