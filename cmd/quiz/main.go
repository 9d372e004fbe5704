package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"agilequiz/internal/bank"
	"agilequiz/internal/config"
	"agilequiz/internal/infra"
	"agilequiz/internal/logger"
	"agilequiz/internal/quiz"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, cleanup, err := infra.NewQuestionRepository(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("failed to build question repository", zap.Error(err))
	}
	defer cleanup()

	b := bank.New(
		repo,
		bank.NewCache(cfg.Bank.CacheFile),
		bank.HTTPProbe(cfg.Bank.ProbeURL, cfg.Bank.ProbeTimeout),
		cfg.Quiz.SampleSize,
		zl,
	)

	if err := b.Initialize(ctx); err != nil {
		if errors.Is(err, bank.ErrNoQuestions) {
			fmt.Println("Cannot load questions: no connection and no local cache.")
			os.Exit(1)
		}
		zl.Fatal("failed to initialize question bank", zap.Error(err))
	}

	if b.Offline() {
		fmt.Println("Offline: using cached questions.")
	}

	runQuiz(b, cfg, zl)
}

// runQuiz drives one session on stdin. This is a thin stand-in for the
// graphical presentation layer: it only renders session output and
// feeds answers back in.
func runQuiz(b *bank.Bank, cfg *config.Config, zl *zap.Logger) {
	session := quiz.NewSession(b.ActiveQuestions(), quiz.Config{
		TimeBudgetSeconds: cfg.Quiz.TimeBudgetSeconds,
		PassThreshold:     cfg.Quiz.PassThreshold,
	}, zl)

	session.OnFinish(func(r quiz.Result) {
		verdict := "Failed."
		if r.Passed {
			verdict = "Passed!"
		}
		fmt.Printf("\nFinal score: %d/%d\n%s\n", r.Score, r.Total, verdict)
	})

	scanner := bufio.NewScanner(os.Stdin)
	session.Start()

	for {
		pq, ok := session.Next()
		if !ok {
			break
		}

		fmt.Printf("\n%s\n", pq.Text)
		for i, opt := range pq.Options {
			fmt.Printf("  %c) %s\n", 'a'+i, opt)
		}

		selected := readAnswer(scanner, len(pq.Options))
		if selected < 0 {
			// stdin closed; abandon the run.
			break
		}

		if session.RecordAnswer(selected, pq.CorrectIndex) {
			fmt.Println("Correct!")
		} else {
			fmt.Println("Incorrect.")
		}

		if session.IsFinished() {
			// The countdown ran out mid-question.
			return
		}
	}

	session.Finish()
}

func readAnswer(scanner *bufio.Scanner, optionCount int) int {
	for {
		fmt.Print("Answer: ")
		if !scanner.Scan() {
			return -1
		}
		answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if len(answer) == 1 {
			idx := int(answer[0] - 'a')
			if idx >= 0 && idx < optionCount {
				return idx
			}
		}
		fmt.Printf("Please answer with a letter between a and %c.\n", 'a'+optionCount-1)
	}
}
