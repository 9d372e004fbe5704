package bank

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agilequiz/internal/domain/entities"
)

type fakeRepo struct {
	rows [][]string
	err  error
}

func (f *fakeRepo) ReadAllRows(context.Context) ([][]string, error) {
	return f.rows, f.err
}

func online(context.Context) bool  { return true }
func offline(context.Context) bool { return false }

func poolRows(n int) [][]string {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = []string{
			"Question " + string(rune('A'+i%26)) + "?",
			"opt 1", "opt 2", "opt 3", "opt 4", "a",
		}
	}
	return rows
}

func tempCache(t *testing.T) *Cache {
	t.Helper()
	return NewCache(filepath.Join(t.TempDir(), "quiz_cache.json"))
}

func TestInitializeOnlineSamplesAndCaches(t *testing.T) {
	cache := tempCache(t)
	b := New(&fakeRepo{rows: poolRows(50)}, cache, online, 40, zap.NewNop())

	require.NoError(t, b.Initialize(context.Background()))

	assert.Equal(t, 50, b.PoolSize())
	assert.Len(t, b.ActiveQuestions(), 40)
	assert.False(t, b.Offline())

	// The cache must hold the full unsampled pool.
	cached, err := cache.Read()
	require.NoError(t, err)
	assert.Len(t, cached, 50)
}

func TestInitializeSamplesWithoutReplacement(t *testing.T) {
	rows := make([][]string, 60)
	for i := range rows {
		rows[i] = entities.Question{
			Statement:     "stmt-" + string(rune('0'+i/10)) + string(rune('0'+i%10)),
			Options:       []string{"1", "2", "3", "4"},
			CorrectLetter: "a",
		}.Row()
	}

	b := New(&fakeRepo{rows: rows}, tempCache(t), online, 30, zap.NewNop())
	require.NoError(t, b.Initialize(context.Background()))

	seen := make(map[string]struct{})
	for _, q := range b.ActiveQuestions() {
		_, dup := seen[q.Statement]
		assert.False(t, dup, "question sampled twice: %s", q.Statement)
		seen[q.Statement] = struct{}{}
	}
	assert.Len(t, seen, 30)
}

func TestInitializeOfflineReadsCache(t *testing.T) {
	cache := tempCache(t)

	// First run online to populate the cache.
	first := New(&fakeRepo{rows: poolRows(45)}, cache, online, 40, zap.NewNop())
	require.NoError(t, first.Initialize(context.Background()))

	// Second run offline: the repository must never be touched.
	second := New(&fakeRepo{err: errors.New("must not be called")}, cache, offline, 40, zap.NewNop())
	require.NoError(t, second.Initialize(context.Background()))

	assert.True(t, second.Offline())
	assert.Equal(t, 45, second.PoolSize())
	assert.Len(t, second.ActiveQuestions(), 40)
}

func TestCacheRoundTripPreservesPool(t *testing.T) {
	cache := tempCache(t)
	rows := poolRows(44)

	first := New(&fakeRepo{rows: rows}, cache, online, 40, zap.NewNop())
	require.NoError(t, first.Initialize(context.Background()))

	second := New(&fakeRepo{}, cache, offline, 40, zap.NewNop())
	require.NoError(t, second.Initialize(context.Background()))

	want := make([]entities.Question, len(rows))
	for i, r := range rows {
		want[i] = entities.QuestionFromRow(r)
	}
	assert.ElementsMatch(t, want, second.pool)
}

func TestInitializeFetchErrorFallsBackToCache(t *testing.T) {
	cache := tempCache(t)
	require.NoError(t, cache.Write(questionsFromRows(poolRows(41))))

	b := New(&fakeRepo{err: errors.New("remote exploded")}, cache, online, 40, zap.NewNop())
	require.NoError(t, b.Initialize(context.Background()))

	assert.True(t, b.Offline())
	assert.Len(t, b.ActiveQuestions(), 40)
}

func TestInitializeNoCacheNoConnectivity(t *testing.T) {
	b := New(&fakeRepo{}, tempCache(t), offline, 40, zap.NewNop())

	err := b.Initialize(context.Background())
	assert.ErrorIs(t, err, ErrNoQuestions)
	assert.Empty(t, b.ActiveQuestions())
}

func TestInitializePoolTooSmall(t *testing.T) {
	b := New(&fakeRepo{rows: poolRows(10)}, tempCache(t), online, 40, zap.NewNop())

	err := b.Initialize(context.Background())
	assert.ErrorIs(t, err, ErrPoolTooSmall)
}

func TestInitializeEmptyRemotePool(t *testing.T) {
	b := New(&fakeRepo{rows: nil}, tempCache(t), online, 40, zap.NewNop())

	err := b.Initialize(context.Background())
	assert.ErrorIs(t, err, ErrNoQuestions)
}

func questionsFromRows(rows [][]string) []entities.Question {
	out := make([]entities.Question, len(rows))
	for i, r := range rows {
		out[i] = entities.QuestionFromRow(r)
	}
	return out
}
