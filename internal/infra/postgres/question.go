// Package postgres implements the question repository on PostgreSQL.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// QuestionRepository stores question rows in a questions table. Row
// order is the insertion order (serial id), which stands in for the
// spreadsheet's physical row order.
type QuestionRepository struct {
	db *pgxpool.Pool
}

func NewQuestionRepository(db *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// EnsureSchema creates the questions table if it does not exist yet.
func (r *QuestionRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS questions (
			id            BIGSERIAL PRIMARY KEY,
			statement     TEXT NOT NULL,
			option_a      TEXT NOT NULL DEFAULT '',
			option_b      TEXT NOT NULL DEFAULT '',
			option_c      TEXT NOT NULL DEFAULT '',
			option_d      TEXT NOT NULL DEFAULT '',
			correct_letter TEXT NOT NULL DEFAULT ''
		)
	`

	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure questions schema: %w", err)
	}
	return nil
}

// ReadAllRows returns every question as a 6-cell row in storage order.
// There is no header row in this backend.
func (r *QuestionRepository) ReadAllRows(ctx context.Context) ([][]string, error) {
	query := `
		SELECT statement, option_a, option_b, option_c, option_d, correct_letter
		FROM questions
		ORDER BY id
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		row := make([]string, 6)
		if err := rows.Scan(&row[0], &row[1], &row[2], &row[3], &row[4], &row[5]); err != nil {
			return nil, fmt.Errorf("scan question row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}

	return out, nil
}

// AppendRows inserts the rows in one batch. startRow is part of the
// repository contract for range-addressed stores; here ordering comes
// from the serial id, so the parameter is not needed.
func (r *QuestionRepository) AppendRows(ctx context.Context, rows [][]string, _ int) error {
	if len(rows) == 0 {
		return nil
	}

	query := `
		INSERT INTO questions (statement, option_a, option_b, option_c, option_d, correct_letter)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, row := range rows {
		cells := padRow(row)
		batch.Queue(query, cells[0], cells[1], cells[2], cells[3], cells[4], cells[5])
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("append question row: %w", err)
		}
	}
	return nil
}

func padRow(row []string) []string {
	if len(row) >= 6 {
		return row[:6]
	}
	out := make([]string, 6)
	copy(out, row)
	return out
}
