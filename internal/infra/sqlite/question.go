// Package sqlite implements the question repository on a local SQLite
// file, for installs that manage their question bank entirely offline.
package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

type questionRow struct {
	Statement     string `db:"statement"`
	OptionA       string `db:"option_a"`
	OptionB       string `db:"option_b"`
	OptionC       string `db:"option_c"`
	OptionD       string `db:"option_d"`
	CorrectLetter string `db:"correct_letter"`
}

// QuestionRepository stores question rows in a single-file database.
type QuestionRepository struct {
	db *sqlx.DB
}

// Open opens (and if necessary creates) the database at path.
func Open(path string) (*QuestionRepository, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS questions (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			statement      TEXT NOT NULL,
			option_a       TEXT NOT NULL DEFAULT '',
			option_b       TEXT NOT NULL DEFAULT '',
			option_c       TEXT NOT NULL DEFAULT '',
			option_d       TEXT NOT NULL DEFAULT '',
			correct_letter TEXT NOT NULL DEFAULT ''
		)
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure questions schema: %w", err)
	}

	return &QuestionRepository{db: db}, nil
}

func (r *QuestionRepository) Close() error {
	return r.db.Close()
}

// ReadAllRows returns every question as a 6-cell row in storage order.
func (r *QuestionRepository) ReadAllRows(ctx context.Context) ([][]string, error) {
	query := `
		SELECT statement, option_a, option_b, option_c, option_d, correct_letter
		FROM questions
		ORDER BY id
	`

	var rows []questionRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}

	out := make([][]string, len(rows))
	for i, q := range rows {
		out[i] = []string{q.Statement, q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.CorrectLetter}
	}
	return out, nil
}

// AppendRows inserts the rows within one transaction. Ordering comes
// from the autoincrement id, so the startRow hint is not needed.
func (r *QuestionRepository) AppendRows(ctx context.Context, rows [][]string, _ int) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO questions (statement, option_a, option_b, option_c, option_d, correct_letter)
		VALUES (:statement, :option_a, :option_b, :option_c, :option_d, :correct_letter)
	`

	for _, row := range rows {
		cells := make([]string, 6)
		copy(cells, row)
		q := questionRow{
			Statement:     cells[0],
			OptionA:       cells[1],
			OptionB:       cells[2],
			OptionC:       cells[3],
			OptionD:       cells[4],
			CorrectLetter: cells[5],
		}
		if _, err := tx.NamedExecContext(ctx, query, q); err != nil {
			return fmt.Errorf("append question row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}
