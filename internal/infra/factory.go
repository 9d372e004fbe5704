// Package infra wires the configured question repository backend.
package infra

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"agilequiz/internal/config"
	"agilequiz/internal/infra/gsheet"
	"agilequiz/internal/infra/postgres"
	"agilequiz/internal/infra/sqlite"
)

// QuestionRepository is the full repository contract: ordered row reads
// plus batch appends after a given row.
type QuestionRepository interface {
	ReadAllRows(ctx context.Context) ([][]string, error)
	AppendRows(ctx context.Context, rows [][]string, startRow int) error
}

// NewQuestionRepository builds the backend selected by
// repository.driver. The returned cleanup releases backend resources
// and is safe to call once.
func NewQuestionRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (QuestionRepository, func(), error) {
	switch cfg.Repository.Driver {
	case "gsheet":
		sheet := cfg.Repository.Sheet
		if sheet.SpreadsheetID == "" || sheet.APIToken == "" {
			return nil, nil, fmt.Errorf("gsheet driver requires repository.sheet.spreadsheet_id and GOOGLE_API_TOKEN")
		}
		repo := gsheet.New(sheet.SpreadsheetID, sheet.SheetName, sheet.APIToken)
		return repo, func() {}, nil

	case "postgres":
		dsn, err := cfg.Repository.DB.DSN()
		if err != nil {
			return nil, nil, fmt.Errorf("postgres driver requires DATABASE_URL: %w", err)
		}
		pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
			MaxConns:        int32(cfg.Repository.DB.MaxConnections),
			MaxConnLifetime: cfg.Repository.DB.MaxConnLifetime,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres pool: %w", err)
		}
		repo := postgres.NewQuestionRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, pool.Close, nil

	case "sqlite":
		repo, err := sqlite.Open(cfg.Repository.SQLite.Path)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			if err := repo.Close(); err != nil {
				logger.Warn("failed to close sqlite repository", zap.Error(err))
			}
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown repository driver %q", cfg.Repository.Driver)
	}
}
