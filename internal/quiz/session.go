// Package quiz drives the per-run quiz state machine: question cursor,
// score, countdown and the NotStarted -> InProgress -> Finished
// lifecycle.
package quiz

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"agilequiz/internal/domain/entities"
)

// Config holds the per-run quiz parameters.
type Config struct {
	TimeBudgetSeconds int
	PassThreshold     int

	// TickInterval is the countdown granularity. Zero means one second;
	// tests shorten it.
	TickInterval time.Duration
}

// Result is the outcome of a finished run.
type Result struct {
	RunID  uuid.UUID
	Score  int
	Total  int
	Passed bool
}

// Session is the state machine for one quiz run. All mutable state is
// guarded by a single mutex so the internal timer and presentation-layer
// callbacks may arrive on any goroutine.
type Session struct {
	mu        sync.Mutex
	questions []entities.Question
	cfg       Config
	logger    *zap.Logger
	rng       *rand.Rand

	runID     uuid.UUID
	current   int
	score     int
	remaining int
	started   bool
	finished  bool

	// timerGen invalidates pending timer callbacks: a fired callback
	// whose generation no longer matches belongs to a session that was
	// since reset or finished and must not touch state.
	timer    *time.Timer
	timerGen uint64

	onTick   func(remaining int)
	onFinish func(Result)
}

// NewSession creates a session over a fixed question set. The set is the
// presentation order; it is not reshuffled mid-run.
func NewSession(questions []entities.Question, cfg Config, logger *zap.Logger) *Session {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	return &Session{
		questions: questions,
		cfg:       cfg,
		logger:    logger,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		remaining: cfg.TimeBudgetSeconds,
	}
}

// OnTick registers a callback invoked after every countdown tick with
// the remaining seconds. Must be called before Start.
func (s *Session) OnTick(fn func(remaining int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTick = fn
}

// OnFinish registers a callback invoked exactly once when the run
// finishes, whether by answering every question, by timeout or by an
// explicit Finish. Must be called before Start.
func (s *Session) OnFinish(fn func(Result)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFinish = fn
}

// Start transitions NotStarted -> InProgress and begins the countdown.
// Calling it on a session that is already running or finished is a
// no-op.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.finished {
		return
	}

	s.runID = uuid.New()
	s.current = 0
	s.score = 0
	s.remaining = s.cfg.TimeBudgetSeconds
	s.started = true

	s.scheduleTickLocked()
	s.logger.Info("quiz started",
		zap.String("run_id", s.runID.String()),
		zap.Int("questions", len(s.questions)),
		zap.Int("time_budget_seconds", s.remaining),
	)
}

// Next returns the next question with its options shuffled and the
// correct answer located inside the shuffled copy, advancing the cursor.
// The second return is false when every question has been served; the
// caller is expected to Finish the run then.
func (s *Session) Next() (entities.PresentedQuestion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.finished || s.current >= len(s.questions) {
		return entities.PresentedQuestion{}, false
	}

	record := s.questions[s.current]
	s.current++

	options := append([]string(nil), record.Options...)
	s.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	// Locate the correct answer in the shuffled copy by value equality
	// against the canonical correct option. Deriving it from the letter
	// against the shuffled slice would point at an arbitrary option.
	correctIndex := -1
	if correct := record.CorrectOption(); correct != "" {
		for i, opt := range options {
			if opt == correct {
				correctIndex = i
				break
			}
		}
	}

	return entities.PresentedQuestion{
		Number:       s.current,
		Text:         fmt.Sprintf("%d. %s", s.current, record.Statement),
		Options:      options,
		CorrectIndex: correctIndex,
	}, true
}

// RecordAnswer scores one answered question. Its only side effect is the
// score increment; feedback (sound, colour) belongs to the presentation
// layer, which makes the same comparison. A call on a session that is
// not in progress is a no-op.
func (s *Session) RecordAnswer(selected, correct int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started || s.finished {
		return false
	}

	ok := selected == correct
	if ok {
		s.score++
	}
	return ok
}

// Tick advances the countdown by one second. It is exported so a
// presentation layer that owns its own clock can drive the session
// directly; the internal timer calls the same logic.
func (s *Session) Tick() {
	s.mu.Lock()
	wasRunning := s.started && !s.finished
	fired, res := s.tickLocked()
	onTick, remaining := s.onTick, s.remaining
	onFinish := s.onFinish
	s.mu.Unlock()

	if onTick != nil && wasRunning && !fired {
		onTick(remaining)
	}
	if fired && onFinish != nil {
		onFinish(res)
	}
}

func (s *Session) tickLocked() (finished bool, res Result) {
	if !s.started || s.finished {
		return false, Result{}
	}
	if s.remaining > 0 {
		s.remaining--
	}
	if s.remaining == 0 {
		return s.finishLocked(), s.resultLocked()
	}
	return false, Result{}
}

// Finish transitions InProgress -> Finished. It is idempotent: finishing
// an already finished session changes nothing and fires no callback.
func (s *Session) Finish() {
	s.mu.Lock()
	fired := s.finishLocked()
	res := s.resultLocked()
	onFinish := s.onFinish
	s.mu.Unlock()

	if fired && onFinish != nil {
		onFinish(res)
	}
}

// finishLocked reports whether this call performed the transition.
func (s *Session) finishLocked() bool {
	if s.finished {
		return false
	}
	s.finished = true
	s.started = false
	s.stopTimerLocked()

	s.logger.Info("quiz finished",
		zap.String("run_id", s.runID.String()),
		zap.Int("score", s.score),
		zap.Int("total", len(s.questions)),
	)
	return true
}

// Reset returns the session to NotStarted with the score, cursor and
// countdown at their initial values. Any pending timer callback is
// invalidated before state is cleared.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTimerLocked()
	s.current = 0
	s.score = 0
	s.remaining = s.cfg.TimeBudgetSeconds
	s.started = false
	s.finished = false
}

func (s *Session) scheduleTickLocked() {
	gen := s.timerGen
	s.timer = time.AfterFunc(s.cfg.TickInterval, func() { s.timerFired(gen) })
}

func (s *Session) timerFired(gen uint64) {
	s.mu.Lock()
	if gen != s.timerGen || !s.started || s.finished {
		s.mu.Unlock()
		return
	}

	fired, res := s.tickLocked()
	if !fired {
		s.scheduleTickLocked()
	}
	onTick, remaining := s.onTick, s.remaining
	onFinish := s.onFinish
	s.mu.Unlock()

	if onTick != nil && !fired {
		onTick(remaining)
	}
	if fired && onFinish != nil {
		onFinish(res)
	}
}

// stopTimerLocked cancels the countdown synchronously: the generation
// bump makes any already-fired callback a no-op before state changes.
func (s *Session) stopTimerLocked() {
	s.timerGen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Result reports the run outcome against the configured pass threshold.
func (s *Session) Result() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resultLocked()
}

func (s *Session) resultLocked() Result {
	return Result{
		RunID:  s.runID,
		Score:  s.score,
		Total:  len(s.questions),
		Passed: s.score >= s.cfg.PassThreshold,
	}
}

// RemainingSeconds returns the countdown value.
func (s *Session) RemainingSeconds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

// Score returns the number of correctly answered questions so far.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}

// CurrentQuestionNumber returns how many questions have been served.
func (s *Session) CurrentQuestionNumber() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// TotalQuestions returns the size of the active question set.
func (s *Session) TotalQuestions() int {
	return len(s.questions)
}

// IsStarted reports whether the run is in progress.
func (s *Session) IsStarted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// IsFinished reports whether the run has ended.
func (s *Session) IsFinished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}
