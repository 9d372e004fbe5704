// Package sheetsync merges freshly extracted question records into the
// question repository without duplicating rows that are already there.
package sheetsync

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"agilequiz/internal/domain/entities"
)

// Repository is the slice of the question repository the syncer needs:
// read every data row (header excluded) and append a batch of rows
// starting at a given 1-based row number.
type Repository interface {
	ReadAllRows(ctx context.Context) ([][]string, error)
	AppendRows(ctx context.Context, rows [][]string, startRow int) error
}

// Result summarises one sync run.
type Result struct {
	Appended int // rows written to the repository
	Skipped  int // records dropped as duplicates of existing rows
	Padded   int // appended records that needed option padding
}

// Syncer appends extracted question records to the repository.
type Syncer struct {
	repo   Repository
	logger *zap.Logger
}

func New(repo Repository, logger *zap.Logger) *Syncer {
	return &Syncer{repo: repo, logger: logger}
}

// Sync filters records whose statement already exists in the
// repository's first column and appends the rest in a single batch
// immediately after the last existing row. Records with fewer than four
// options are padded with empty cells and logged as a data-quality
// warning rather than rejected. Markup markers left over from the
// authoring document are stripped before writing.
func (s *Syncer) Sync(ctx context.Context, records []entities.Question) (Result, error) {
	existing, err := s.repo.ReadAllRows(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("read existing rows: %w", err)
	}

	seen := make(map[string]struct{}, len(existing))
	for _, row := range existing {
		if len(row) > 0 {
			seen[row[0]] = struct{}{}
		}
	}

	var res Result
	rows := make([][]string, 0, len(records))

	for _, rec := range records {
		statement := stripMarkup(rec.Statement)
		if _, ok := seen[statement]; ok {
			res.Skipped++
			s.logger.Debug("skipping duplicate question", zap.String("statement", statement))
			continue
		}

		if len(rec.Options) < entities.OptionCount {
			res.Padded++
			s.logger.Warn("question has fewer than four options, padding",
				zap.String("statement", statement),
				zap.Int("options", len(rec.Options)),
			)
		}

		row := entities.Question{
			Statement:     statement,
			Options:       stripMarkupAll(rec.Options),
			CorrectLetter: rec.CorrectLetter,
		}.Row()
		rows = append(rows, row)

		// Guard against the same statement appearing twice in one batch.
		seen[statement] = struct{}{}
	}

	if len(rows) == 0 {
		s.logger.Info("no new questions found")
		return res, nil
	}

	// Row 1 is the header, data starts at row 2, so the first free row
	// is len(existing)+2.
	startRow := len(existing) + 2
	if err := s.repo.AppendRows(ctx, rows, startRow); err != nil {
		return Result{}, fmt.Errorf("append rows: %w", err)
	}

	res.Appended = len(rows)
	s.logger.Info("questions appended to repository",
		zap.Int("appended", res.Appended),
		zap.Int("skipped", res.Skipped),
	)

	return res, nil
}

func stripMarkup(s string) string {
	s = strings.ReplaceAll(s, "<b>", "")
	return strings.ReplaceAll(s, "</b>", "")
}

func stripMarkupAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = stripMarkup(s)
	}
	return out
}
