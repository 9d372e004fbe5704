package quiz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agilequiz/internal/domain/entities"
)

func sampleQuestions(n int) []entities.Question {
	qs := make([]entities.Question, n)
	letters := []string{"a", "b", "c", "d"}
	for i := range qs {
		qs[i] = entities.Question{
			Statement:     "Question?",
			Options:       []string{"opt a", "opt b", "opt c", "opt d"},
			CorrectLetter: letters[i%len(letters)],
		}
	}
	return qs
}

func newTestSession(questions []entities.Question, cfg Config) *Session {
	return NewSession(questions, cfg, zap.NewNop())
}

func TestNextShuffleKeepsCorrectAnswerLocatable(t *testing.T) {
	record := entities.Question{
		Statement:     "What is a Sprint?",
		Options:       []string{"A meeting", "A time-box", "A role", "A tool"},
		CorrectLetter: "b",
	}

	// Many trials so every permutation of the four options shows up.
	for trial := 0; trial < 500; trial++ {
		s := newTestSession([]entities.Question{record}, Config{TimeBudgetSeconds: 60})
		s.Start()

		pq, ok := s.Next()
		require.True(t, ok)

		require.GreaterOrEqual(t, pq.CorrectIndex, 0)
		assert.Equal(t, "A time-box", pq.Options[pq.CorrectIndex])
		assert.ElementsMatch(t, record.Options, pq.Options)
	}
}

func TestNextNumbersQuestions(t *testing.T) {
	s := newTestSession(sampleQuestions(3), Config{TimeBudgetSeconds: 60})
	s.Start()

	for i := 1; i <= 3; i++ {
		pq, ok := s.Next()
		require.True(t, ok)
		assert.Equal(t, i, pq.Number)
		assert.Contains(t, pq.Text, "Question?")
		assert.Equal(t, i, s.CurrentQuestionNumber())
	}

	_, ok := s.Next()
	assert.False(t, ok)
}

func TestNextUnknownCorrectAnswer(t *testing.T) {
	s := newTestSession([]entities.Question{{
		Statement: "Unmarked?",
		Options:   []string{"w", "x", "y", "z"},
	}}, Config{TimeBudgetSeconds: 60})
	s.Start()

	pq, ok := s.Next()
	require.True(t, ok)
	assert.Equal(t, -1, pq.CorrectIndex)
}

func TestRecordAnswerScoring(t *testing.T) {
	s := newTestSession(sampleQuestions(4), Config{TimeBudgetSeconds: 60})
	s.Start()

	assert.True(t, s.RecordAnswer(2, 2))
	assert.Equal(t, 1, s.Score())

	assert.False(t, s.RecordAnswer(1, 2))
	assert.Equal(t, 1, s.Score())

	s.Finish()
	assert.False(t, s.RecordAnswer(2, 2))
	assert.False(t, s.RecordAnswer(1, 2))
	assert.Equal(t, 1, s.Score())
}

func TestRecordAnswerBeforeStartIsNoOp(t *testing.T) {
	s := newTestSession(sampleQuestions(2), Config{TimeBudgetSeconds: 60})
	assert.False(t, s.RecordAnswer(0, 0))
	assert.Zero(t, s.Score())
}

func TestTickCountdownFinishesExactlyOnce(t *testing.T) {
	const budget = 5

	s := newTestSession(sampleQuestions(2), Config{
		TimeBudgetSeconds: budget,
		TickInterval:      time.Hour, // keep the internal timer out of the way
	})

	finishes := 0
	s.OnFinish(func(Result) { finishes++ })
	s.Start()
	s.RecordAnswer(1, 1)

	for i := 0; i < budget; i++ {
		s.Tick()
	}

	assert.True(t, s.IsFinished())
	assert.Equal(t, 0, s.RemainingSeconds())
	assert.Equal(t, 1, finishes)
	// The timeout itself must not touch the score.
	assert.Equal(t, 1, s.Score())

	// Further ticks and finishes change nothing.
	s.Tick()
	s.Finish()
	assert.Equal(t, 1, finishes)
}

func TestInternalTimerDrivesCountdown(t *testing.T) {
	s := newTestSession(sampleQuestions(1), Config{
		TimeBudgetSeconds: 3,
		TickInterval:      5 * time.Millisecond,
	})

	done := make(chan Result, 1)
	s.OnFinish(func(r Result) { done <- r })
	s.Start()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never finished the session")
	}
	assert.True(t, s.IsFinished())
	assert.Equal(t, 0, s.RemainingSeconds())
}

func TestResetClearsState(t *testing.T) {
	const budget = 60

	s := newTestSession(sampleQuestions(5), Config{TimeBudgetSeconds: budget, TickInterval: time.Hour})
	s.Start()

	s.Next()
	s.Next()
	s.RecordAnswer(0, 0)
	s.Tick()
	s.Reset()

	assert.Equal(t, 0, s.CurrentQuestionNumber())
	assert.Equal(t, 0, s.Score())
	assert.Equal(t, budget, s.RemainingSeconds())
	assert.False(t, s.IsStarted())
	assert.False(t, s.IsFinished())
}

func TestResetInvalidatesPendingTimer(t *testing.T) {
	s := newTestSession(sampleQuestions(1), Config{
		TimeBudgetSeconds: 60,
		TickInterval:      5 * time.Millisecond,
	})
	s.Start()
	s.Reset()

	// A stale callback from before the reset must not mutate state.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 60, s.RemainingSeconds())
	assert.False(t, s.IsStarted())
}

func TestFinishStopsTimer(t *testing.T) {
	s := newTestSession(sampleQuestions(1), Config{
		TimeBudgetSeconds: 60,
		TickInterval:      5 * time.Millisecond,
	})
	s.Start()
	s.Finish()

	remaining := s.RemainingSeconds()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, remaining, s.RemainingSeconds())
}

func TestResultAgainstThreshold(t *testing.T) {
	s := newTestSession(sampleQuestions(4), Config{TimeBudgetSeconds: 60, PassThreshold: 2})
	s.Start()

	s.RecordAnswer(0, 0)
	s.RecordAnswer(1, 1)
	s.Finish()

	res := s.Result()
	assert.Equal(t, 2, res.Score)
	assert.Equal(t, 4, res.Total)
	assert.True(t, res.Passed)

	failing := newTestSession(sampleQuestions(4), Config{TimeBudgetSeconds: 60, PassThreshold: 2})
	failing.Start()
	failing.RecordAnswer(0, 0)
	failing.Finish()
	assert.False(t, failing.Result().Passed)
}

func TestStartIsIgnoredWhileRunning(t *testing.T) {
	s := newTestSession(sampleQuestions(3), Config{TimeBudgetSeconds: 60, TickInterval: time.Hour})
	s.Start()
	s.Next()
	s.RecordAnswer(0, 0)

	s.Start()
	assert.Equal(t, 1, s.CurrentQuestionNumber())
	assert.Equal(t, 1, s.Score())
}
