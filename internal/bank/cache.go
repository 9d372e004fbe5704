package bank

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"agilequiz/internal/domain/entities"
)

// Cache is the durable snapshot of the full question pool: one JSON file
// holding an array of 6-cell string rows. It is overwritten wholesale
// after every successful remote fetch and read back when the remote
// repository is unreachable.
type Cache struct {
	path string
}

func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// Write replaces the snapshot atomically: the pool is written to a
// temporary file in the same directory and renamed over the target, so
// a crash mid-write never leaves a truncated cache.
func (c *Cache) Write(pool []entities.Question) error {
	rows := make([][]string, len(pool))
	for i, q := range pool {
		rows[i] = q.Row()
	}

	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshal pool: %w", err)
	}

	dir := filepath.Dir(c.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close cache: %w", err)
	}

	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace cache: %w", err)
	}
	return nil
}

// Read loads the snapshot. A missing file is returned as-is so the
// caller can distinguish "never cached" from a corrupt file.
func (c *Cache) Read() ([]entities.Question, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode cache %s: %w", c.path, err)
	}

	pool := make([]entities.Question, len(rows))
	for i, row := range rows {
		pool[i] = entities.QuestionFromRow(row)
	}
	return pool, nil
}
