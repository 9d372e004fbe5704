// Package watch runs the long-lived poll loop that bridges the
// authoring document to the question repository: when the document's
// revision changes, its paragraphs are extracted into question records
// and synced into the repository.
package watch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"agilequiz/internal/domain/entities"
	"agilequiz/internal/extract"
	"agilequiz/internal/sheetsync"
)

// Source is the document side of the loop.
type Source interface {
	RevisionID(ctx context.Context) (string, error)
	Paragraphs(ctx context.Context) ([]entities.Paragraph, error)
}

// Syncer merges extracted records into the question repository.
type Syncer interface {
	Sync(ctx context.Context, records []entities.Question) (sheetsync.Result, error)
}

// Watcher polls the document source for revision changes.
type Watcher struct {
	source       Source
	syncer       Syncer
	pollInterval time.Duration
	retryBackoff time.Duration
	logger       *zap.Logger

	lastRevision string
}

func New(source Source, syncer Syncer, pollInterval, retryBackoff time.Duration, logger *zap.Logger) *Watcher {
	return &Watcher{
		source:       source,
		syncer:       syncer,
		pollInterval: pollInterval,
		retryBackoff: retryBackoff,
		logger:       logger,
	}
}

// Run polls until the context is cancelled. A failed cycle is logged
// and followed by the shorter retry backoff; the loop itself never
// terminates on error.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Info("document watcher started",
		zap.Duration("poll_interval", w.pollInterval),
		zap.Duration("retry_backoff", w.retryBackoff),
	)

	for {
		sleep := w.pollInterval
		if err := w.cycle(ctx); err != nil {
			if ctx.Err() != nil {
				w.logger.Info("document watcher stopped")
				return ctx.Err()
			}
			w.logger.Error("watcher cycle failed", zap.Error(err))
			sleep = w.retryBackoff
		}

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			w.logger.Info("document watcher stopped")
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// cycle checks the revision and runs extract+sync when it changed.
func (w *Watcher) cycle(ctx context.Context) error {
	revision, err := w.source.RevisionID(ctx)
	if err != nil {
		return err
	}

	if revision == w.lastRevision {
		return nil
	}

	w.logger.Info("document changed, syncing questions",
		zap.String("revision", revision),
	)
	if err := w.syncOnce(ctx); err != nil {
		return err
	}

	w.lastRevision = revision
	return nil
}

// ForceSync runs extract+sync regardless of the last seen revision.
// Used by the scheduled resync job.
func (w *Watcher) ForceSync(ctx context.Context) error {
	w.logger.Info("forced resync requested")
	return w.syncOnce(ctx)
}

func (w *Watcher) syncOnce(ctx context.Context) error {
	paragraphs, err := w.source.Paragraphs(ctx)
	if err != nil {
		return err
	}

	records := extract.Questions(paragraphs)
	res, err := w.syncer.Sync(ctx, records)
	if err != nil {
		return err
	}

	w.logger.Info("sync cycle completed",
		zap.Int("extracted", len(records)),
		zap.Int("appended", res.Appended),
		zap.Int("skipped", res.Skipped),
		zap.Int("padded", res.Padded),
	)
	return nil
}
