package quiz

import (
	"context"
	"errors"
	"testing"

	"github.com/mkarpov/studyhall/internal/model"
)

// fakeRecorder captures progress updates and optionally fails them.
type fakeRecorder struct {
	topic  string
	score  int
	status string
	calls  int
	err    error
}

func (f *fakeRecorder) UpdateProgress(ctx context.Context, topic string, score int, status string) error {
	f.calls++
	f.topic = topic
	f.score = score
	f.status = status
	return f.err
}

func fourQuestions() []model.Question {
	return []model.Question{
		{Text: "Q1", Options: []string{"a", "b", "c", "d"}, Answer: "a"},
		{Text: "Q2", Options: []string{"a", "b", "c", "d"}, Answer: "b"},
		{Text: "Q3", Options: []string{"a", "b", "c", "d"}, Answer: "c"},
		{Text: "Q4", Options: []string{"a", "b", "c", "d"}, Answer: "d"},
	}
}

func activeEngine(t *testing.T, topic string, qs []model.Question) *Engine {
	t.Helper()
	e := NewEngine()
	gen := e.Begin()
	if err := e.CompleteLoad(gen, topic, qs); err != nil {
		t.Fatalf("CompleteLoad: %v", err)
	}
	return e
}

func TestLoadTransitions(t *testing.T) {
	e := NewEngine()
	if e.Phase() != PhaseIdle {
		t.Fatalf("new engine should be idle, got %s", e.Phase())
	}

	gen := e.Begin()
	if e.Phase() != PhaseLoading {
		t.Fatalf("expected loading, got %s", e.Phase())
	}

	if err := e.CompleteLoad(gen, "Algebra", fourQuestions()); err != nil {
		t.Fatalf("CompleteLoad: %v", err)
	}
	if e.Phase() != PhaseActive {
		t.Errorf("expected active, got %s", e.Phase())
	}
	if e.Topic() != "Algebra" {
		t.Errorf("expected topic Algebra, got %q", e.Topic())
	}
}

func TestEmptyLoadReturnsToIdle(t *testing.T) {
	e := NewEngine()
	gen := e.Begin()
	err := e.CompleteLoad(gen, "Algebra", nil)
	if !errors.Is(err, ErrEmptyQuiz) {
		t.Fatalf("expected ErrEmptyQuiz, got %v", err)
	}
	if e.Phase() != PhaseIdle {
		t.Errorf("expected idle after empty load, got %s", e.Phase())
	}
}

func TestFailedLoadReturnsToIdle(t *testing.T) {
	e := NewEngine()
	gen := e.Begin()
	e.FailLoad(gen)
	if e.Phase() != PhaseIdle {
		t.Errorf("expected idle after failed load, got %s", e.Phase())
	}
}

func TestStaleLoadIsDropped(t *testing.T) {
	e := NewEngine()
	first := e.Begin()
	second := e.Begin() // user double-fired; second request wins

	if err := e.CompleteLoad(second, "Fractions", fourQuestions()); err != nil {
		t.Fatalf("CompleteLoad: %v", err)
	}
	if err := e.CompleteLoad(first, "Algebra", fourQuestions()); !errors.Is(err, ErrStaleLoad) {
		t.Fatalf("expected ErrStaleLoad for superseded result, got %v", err)
	}
	if e.Topic() != "Fractions" {
		t.Errorf("stale load mutated the attempt: topic %q", e.Topic())
	}

	// A result arriving after Close is equally stale.
	e.Close()
	if err := e.CompleteLoad(second, "Fractions", fourQuestions()); !errors.Is(err, ErrStaleLoad) {
		t.Fatalf("expected ErrStaleLoad after close, got %v", err)
	}
	if e.Phase() != PhaseIdle {
		t.Errorf("expected idle, got %s", e.Phase())
	}
}

func TestSelectLastWriteWins(t *testing.T) {
	e := activeEngine(t, "Algebra", fourQuestions())

	if err := e.Select(0, "b"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if err := e.Select(0, "a"); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if a, ok := e.Answer(0); !ok || a != "a" {
		t.Errorf("expected last write to win, got %q (%v)", a, ok)
	}

	// Selections are not validated against the options.
	if err := e.Select(1, "not an option"); err != nil {
		t.Errorf("Select should accept any answer string: %v", err)
	}

	if err := e.Select(7, "a"); err == nil {
		t.Error("expected error for out-of-range index")
	}
}

func TestSelectOutsideActive(t *testing.T) {
	e := NewEngine()
	if err := e.Select(0, "a"); !errors.Is(err, ErrNotActive) {
		t.Errorf("expected ErrNotActive, got %v", err)
	}
}

func TestSubmitScoring(t *testing.T) {
	tests := []struct {
		name    string
		answers map[int]string
		want    int
	}{
		{"three of four", map[int]string{0: "a", 1: "b", 2: "c", 3: "a"}, 75},
		{"all correct", map[int]string{0: "a", 1: "b", 2: "c", 3: "d"}, 100},
		{"none answered", nil, 0},
		{"one of four", map[int]string{2: "c"}, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := activeEngine(t, "Algebra", fourQuestions())
			for i, a := range tt.answers {
				if err := e.Select(i, a); err != nil {
					t.Fatalf("Select: %v", err)
				}
			}

			rec := &fakeRecorder{}
			score, err := e.Submit(context.Background(), rec)
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if score != tt.want {
				t.Errorf("expected score %d, got %d", tt.want, score)
			}
			if e.Phase() != PhaseScored {
				t.Errorf("expected scored, got %s", e.Phase())
			}
			if rec.calls != 1 || rec.topic != "Algebra" || rec.score != tt.want || rec.status != "Completed" {
				t.Errorf("unexpected progress record %+v", rec)
			}
		})
	}
}

func TestSubmitRounding(t *testing.T) {
	// 3 questions, 1 correct: 33.33... rounds to 33; 2 correct: 66.66... rounds to 67.
	qs := fourQuestions()[:3]

	e := activeEngine(t, "Rounding", qs)
	e.Select(0, "a")
	score, err := e.Submit(context.Background(), &fakeRecorder{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if score != 33 {
		t.Errorf("expected 33, got %d", score)
	}

	e = activeEngine(t, "Rounding", qs)
	e.Select(0, "a")
	e.Select(1, "b")
	score, err = e.Submit(context.Background(), &fakeRecorder{})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if score != 67 {
		t.Errorf("expected 67, got %d", score)
	}
}

func TestSubmitKeepsScoreOnRecordFailure(t *testing.T) {
	e := activeEngine(t, "Algebra", fourQuestions())
	e.Select(0, "a")

	rec := &fakeRecorder{err: errors.New("network down")}
	score, err := e.Submit(context.Background(), rec)
	if err == nil {
		t.Fatal("expected error from failed progress write")
	}
	if score != 25 {
		t.Errorf("expected score 25 despite failure, got %d", score)
	}
	if got, ok := e.Score(); !ok || got != 25 {
		t.Errorf("score must remain shown locally, got %d (%v)", got, ok)
	}
	if e.Phase() != PhaseScored {
		t.Errorf("expected scored, got %s", e.Phase())
	}
}

func TestSubmitFallbackTopic(t *testing.T) {
	e := activeEngine(t, "", fourQuestions())
	rec := &fakeRecorder{}
	if _, err := e.Submit(context.Background(), rec); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if rec.topic != "Teacher Quiz" {
		t.Errorf("expected fallback topic, got %q", rec.topic)
	}
}

func TestSubmitPreconditions(t *testing.T) {
	e := NewEngine()
	if _, err := e.Submit(context.Background(), &fakeRecorder{}); !errors.Is(err, ErrNotActive) {
		t.Errorf("expected ErrNotActive from idle, got %v", err)
	}

	e = activeEngine(t, "Algebra", fourQuestions())
	if _, err := e.Submit(context.Background(), &fakeRecorder{}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := e.Submit(context.Background(), &fakeRecorder{}); !errors.Is(err, ErrNotActive) {
		t.Errorf("expected ErrNotActive from scored, got %v", err)
	}
}

func TestCloseDiscardsAttempt(t *testing.T) {
	e := activeEngine(t, "Algebra", fourQuestions())
	e.Select(0, "a")
	e.Close()

	if e.Phase() != PhaseIdle {
		t.Errorf("expected idle, got %s", e.Phase())
	}
	if len(e.Questions()) != 0 {
		t.Error("expected questions to be discarded")
	}
	if _, ok := e.Answer(0); ok {
		t.Error("expected answers to be discarded")
	}
	if _, ok := e.Score(); ok {
		t.Error("expected no score after close")
	}
}

func TestBeginFromScoredResets(t *testing.T) {
	e := activeEngine(t, "Algebra", fourQuestions())
	if _, err := e.Submit(context.Background(), &fakeRecorder{}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	gen := e.Begin()
	if e.Phase() != PhaseLoading {
		t.Fatalf("expected loading, got %s", e.Phase())
	}
	if err := e.CompleteLoad(gen, "Geometry", fourQuestions()); err != nil {
		t.Fatalf("CompleteLoad: %v", err)
	}
	if _, ok := e.Score(); ok {
		t.Error("expected previous score to be discarded")
	}
}
