// Package bank loads the working question set: remote repository when
// reachable, local cache otherwise, with the full pool re-cached after
// every successful fetch.
package bank

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"

	"agilequiz/internal/domain/entities"
)

var (
	// ErrNoQuestions means neither the remote repository nor the cache
	// could supply any questions. The quiz cannot start.
	ErrNoQuestions = errors.New("no questions available")

	// ErrPoolTooSmall means the pool holds fewer questions than the
	// configured sample size. Treated as a configuration error rather
	// than silently truncating the sample.
	ErrPoolTooSmall = errors.New("question pool smaller than sample size")
)

// Repository is the read side of the question repository.
type Repository interface {
	ReadAllRows(ctx context.Context) ([][]string, error)
}

// ConnectivityProbe reports whether the remote side looks reachable.
type ConnectivityProbe func(ctx context.Context) bool

// HTTPProbe probes a well-known URL with a HEAD request and a short
// timeout. Any response, including an HTTP error status, counts as
// connectivity.
func HTTPProbe(url string, timeout time.Duration) ConnectivityProbe {
	return func(ctx context.Context) bool {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return false
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}
}

// Bank owns the full question pool and the fixed per-run sample drawn
// from it.
type Bank struct {
	repo       Repository
	cache      *Cache
	probe      ConnectivityProbe
	sampleSize int
	logger     *zap.Logger
	rng        *rand.Rand

	pool    []entities.Question
	active  []entities.Question
	offline bool
}

func New(repo Repository, cache *Cache, probe ConnectivityProbe, sampleSize int, logger *zap.Logger) *Bank {
	return &Bank{
		repo:       repo,
		cache:      cache,
		probe:      probe,
		sampleSize: sampleSize,
		logger:     logger,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Initialize loads the pool and draws the active question set.
//
// Online path: read every repository row, shuffle, persist the full
// unsampled pool to the cache, then sample. Any remote failure falls
// back to the offline path instead of surfacing. Offline path: read the
// cached pool; a missing or unreadable cache yields ErrNoQuestions.
func (b *Bank) Initialize(ctx context.Context) error {
	if b.probe(ctx) {
		rows, err := b.repo.ReadAllRows(ctx)
		if err == nil {
			pool := make([]entities.Question, len(rows))
			for i, row := range rows {
				pool[i] = entities.QuestionFromRow(row)
			}
			b.rng.Shuffle(len(pool), func(i, j int) {
				pool[i], pool[j] = pool[j], pool[i]
			})

			// The cache holds the whole pool, not the sample, so
			// repeated offline runs still draw different samples.
			if err := b.cache.Write(pool); err != nil {
				b.logger.Warn("failed to persist question cache", zap.Error(err))
			}

			b.offline = false
			return b.activate(pool)
		}
		b.logger.Warn("remote fetch failed, falling back to cache", zap.Error(err))
	} else {
		b.logger.Info("no connectivity, loading questions from cache")
	}

	pool, err := b.cache.Read()
	if err != nil {
		b.logger.Warn("question cache unavailable", zap.Error(err))
		return fmt.Errorf("%w: remote unreachable and cache unreadable", ErrNoQuestions)
	}

	b.offline = true
	return b.activate(pool)
}

func (b *Bank) activate(pool []entities.Question) error {
	if len(pool) == 0 {
		return ErrNoQuestions
	}
	if len(pool) < b.sampleSize {
		return fmt.Errorf("%w: have %d, need %d", ErrPoolTooSmall, len(pool), b.sampleSize)
	}

	b.pool = pool
	b.active = b.sample(pool)

	b.logger.Info("question bank initialized",
		zap.Int("pool", len(b.pool)),
		zap.Int("active", len(b.active)),
		zap.Bool("offline", b.offline),
	)
	return nil
}

// sample draws sampleSize questions without replacement.
func (b *Bank) sample(pool []entities.Question) []entities.Question {
	idx := b.rng.Perm(len(pool))[:b.sampleSize]
	out := make([]entities.Question, b.sampleSize)
	for i, j := range idx {
		out[i] = pool[j]
	}
	return out
}

// ActiveQuestions returns the fixed sample for this run in presentation
// order.
func (b *Bank) ActiveQuestions() []entities.Question {
	return b.active
}

// PoolSize returns the size of the full loaded pool.
func (b *Bank) PoolSize() int {
	return len(b.pool)
}

// Offline reports whether the questions came from the local cache. The
// presentation layer shows a non-blocking notice in that case.
func (b *Bank) Offline() bool {
	return b.offline
}
