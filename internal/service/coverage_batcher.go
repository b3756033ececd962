package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"census-gateway/internal/domain/entity"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// noCoverageMarker caches the "patient has no coverage" answer so it does
// not get re-fetched every refresh. Fetch failures are never cached.
const noCoverageMarker = "null"

const coverageCacheKeyPrefix = "census:coverage:"

// CoverageFetcher retrieves one patient's coverage from the upstream
type CoverageFetcher func(ctx context.Context, patientID int) (*entity.Coverage, error)

// CoverageBatcher fans coverage lookups out to the upstream in bounded
// batches. The upstream only answers coverage per patient, so a census of N
// patients needs N calls; the batcher caps the concurrency at the batch
// size, runs batches sequentially, and caches answers in Redis.
type CoverageBatcher interface {
	FetchMany(ctx context.Context, patientIDs []int) map[int]*entity.Coverage
	Invalidate(ctx context.Context, patientIDs ...int) error
}

type coverageBatcher struct {
	fetch     CoverageFetcher
	kv        KVStore
	batchSize int
	ttl       time.Duration
	group     singleflight.Group
	log       *logrus.Logger
}

func NewCoverageBatcher(fetch CoverageFetcher, kv KVStore, log *logrus.Logger, batchSize int, ttl time.Duration) CoverageBatcher {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &coverageBatcher{
		fetch:     fetch,
		kv:        kv,
		batchSize: batchSize,
		ttl:       ttl,
		log:       log,
	}
}

// FetchMany resolves coverage for every requested patient. Duplicate ids are
// fetched once. A patient whose lookup fails maps to nil, identical to a
// patient with no coverage: one bad record must never sink the whole census.
func (b *coverageBatcher) FetchMany(ctx context.Context, patientIDs []int) map[int]*entity.Coverage {
	result := make(map[int]*entity.Coverage, len(patientIDs))

	unique := make([]int, 0, len(patientIDs))
	seen := make(map[int]bool, len(patientIDs))
	for _, id := range patientIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, id)
	}

	var mu sync.Mutex
	for start := 0; start < len(unique); start += b.batchSize {
		end := start + b.batchSize
		if end > len(unique) {
			end = len(unique)
		}

		var wg sync.WaitGroup
		for _, id := range unique[start:end] {
			wg.Add(1)
			go func(patientID int) {
				defer wg.Done()
				coverage := b.fetchOne(ctx, patientID)
				mu.Lock()
				result[patientID] = coverage
				mu.Unlock()
			}(id)
		}
		wg.Wait()
	}

	return result
}

// fetchOne consults the cache, then the upstream. Concurrent requests for
// the same patient collapse into a single upstream call.
func (b *coverageBatcher) fetchOne(ctx context.Context, patientID int) *entity.Coverage {
	key := coverageCacheKey(patientID)

	value, err, _ := b.group.Do(key, func() (interface{}, error) {
		if cached, ok := b.cacheGet(ctx, key); ok {
			return cached, nil
		}

		coverage, err := b.fetch(ctx, patientID)
		if err != nil {
			b.log.Warnf("Failed to fetch coverage for patient %d: %+v", patientID, err)
			return (*entity.Coverage)(nil), nil
		}

		b.cacheSet(ctx, key, coverage)
		return coverage, nil
	})
	if err != nil {
		return nil
	}
	return value.(*entity.Coverage)
}

// Invalidate drops cached coverage, forcing the next lookup to hit the
// upstream.
func (b *coverageBatcher) Invalidate(ctx context.Context, patientIDs ...int) error {
	for _, id := range patientIDs {
		if err := b.kv.Delete(ctx, coverageCacheKey(id)); err != nil {
			return err
		}
	}
	return nil
}

func (b *coverageBatcher) cacheGet(ctx context.Context, key string) (*entity.Coverage, bool) {
	cached, err := b.kv.Get(ctx, key)
	if err != nil {
		if err != ErrCacheMiss {
			b.log.Warnf("Coverage cache read failed: %+v", err)
		}
		return nil, false
	}
	if cached == noCoverageMarker {
		return nil, true
	}
	var coverage entity.Coverage
	if err := json.Unmarshal([]byte(cached), &coverage); err != nil {
		// Corrupt entry, treat as a miss and let the fetch overwrite it
		return nil, false
	}
	return &coverage, true
}

func (b *coverageBatcher) cacheSet(ctx context.Context, key string, coverage *entity.Coverage) {
	value := noCoverageMarker
	if coverage != nil {
		encoded, err := json.Marshal(coverage)
		if err != nil {
			return
		}
		value = string(encoded)
	}
	if err := b.kv.Set(ctx, key, value, b.ttl); err != nil {
		b.log.Warnf("Coverage cache write failed: %+v", err)
	}
}

func coverageCacheKey(patientID int) string {
	return fmt.Sprintf("%s%d", coverageCacheKeyPrefix, patientID)
}
