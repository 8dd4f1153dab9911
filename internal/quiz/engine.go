// Package quiz manages the lifecycle of a single quiz attempt.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/mkarpov/studyhall/internal/model"
)

// Phase is the explicit state of the engine.
//
// Transitions: Idle -> Loading -> Active -> Scored -> Idle. Closing from
// Active or Scored returns to Idle; beginning a new load from any phase
// resets to Loading and discards the current attempt.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseActive  Phase = "active"
	PhaseScored  Phase = "scored"
)

var (
	// ErrEmptyQuiz is returned when a load completes with no questions.
	ErrEmptyQuiz = errors.New("quiz: no questions were generated")
	// ErrStaleLoad is returned when a load result arrives after it has been
	// superseded by a newer load or by closing the quiz.
	ErrStaleLoad = errors.New("quiz: load result is stale")
	// ErrNotActive is returned for answer or submit calls outside Active.
	ErrNotActive = errors.New("quiz: no active quiz")
	// ErrNoQuestions is returned when submitting an attempt with zero
	// questions. An empty question set never enters Active, so this guards a
	// precondition rather than a reachable flow.
	ErrNoQuestions = errors.New("quiz: attempt has no questions")
)

// fallbackTopic labels a progress record when the attempt carries no topic.
const fallbackTopic = "Teacher Quiz"

// ProgressRecorder posts a computed score to the remote progress endpoint.
type ProgressRecorder interface {
	UpdateProgress(ctx context.Context, topic string, score int, status string) error
}

// Engine drives one quiz attempt at a time. It is owned by a single view and
// is not safe for concurrent use; overlapping loads are serialized by the
// generation token instead.
type Engine struct {
	phase     Phase
	gen       int
	topic     string
	questions []model.Question
	answers   map[int]string
	score     int
}

func NewEngine() *Engine {
	return &Engine{phase: PhaseIdle}
}

func (e *Engine) Phase() Phase { return e.phase }

func (e *Engine) Topic() string { return e.topic }

// Questions returns the loaded question sequence. Immutable once Active.
func (e *Engine) Questions() []model.Question { return e.questions }

// Answer returns the recorded answer for a question index.
func (e *Engine) Answer(index int) (string, bool) {
	a, ok := e.answers[index]
	return a, ok
}

// Score returns the computed score and whether the attempt has been scored.
func (e *Engine) Score() (int, bool) {
	return e.score, e.phase == PhaseScored
}

// Begin discards any current attempt and enters Loading. The returned
// generation token must be passed back to CompleteLoad or FailLoad; results
// carrying an older token are dropped, so a view that fired overlapping
// requests only ever applies the newest one.
func (e *Engine) Begin() int {
	e.gen++
	e.phase = PhaseLoading
	e.topic = ""
	e.questions = nil
	e.answers = nil
	e.score = 0
	return e.gen
}

// CompleteLoad applies a successful load. An empty question sequence counts
// as a failure: the engine returns to Idle and ErrEmptyQuiz is reported.
func (e *Engine) CompleteLoad(gen int, topic string, questions []model.Question) error {
	if gen != e.gen || e.phase != PhaseLoading {
		return ErrStaleLoad
	}
	if len(questions) == 0 {
		e.phase = PhaseIdle
		return ErrEmptyQuiz
	}
	e.phase = PhaseActive
	e.topic = topic
	e.questions = questions
	e.answers = make(map[int]string)
	return nil
}

// FailLoad records a failed load and returns the engine to Idle.
func (e *Engine) FailLoad(gen int) {
	if gen != e.gen || e.phase != PhaseLoading {
		return
	}
	e.phase = PhaseIdle
}

// Select records the answer for a question index, overwriting any previous
// selection (last write wins). The answer is not checked against the
// question's options; scoring does the comparison at submit time.
func (e *Engine) Select(index int, answer string) error {
	if e.phase != PhaseActive {
		return ErrNotActive
	}
	if index < 0 || index >= len(e.questions) {
		return fmt.Errorf("quiz: question index %d out of range", index)
	}
	e.answers[index] = answer
	return nil
}

// Submit scores the attempt and records the result remotely. The score is
// derived entirely from already-loaded data, so a failed remote write is
// reported but never reverts the score: the engine stays in Scored and the
// score remains available.
func (e *Engine) Submit(ctx context.Context, rec ProgressRecorder) (int, error) {
	if e.phase != PhaseActive {
		return 0, ErrNotActive
	}
	if len(e.questions) == 0 {
		return 0, ErrNoQuestions
	}

	matches := 0
	for i, q := range e.questions {
		if e.answers[i] == q.Answer {
			matches++
		}
	}
	e.score = int(math.Round(float64(matches) / float64(len(e.questions)) * 100))
	e.phase = PhaseScored

	topic := e.topic
	if topic == "" {
		topic = fallbackTopic
	}
	if err := rec.UpdateProgress(ctx, topic, e.score, "Completed"); err != nil {
		return e.score, fmt.Errorf("record progress: %w", err)
	}
	return e.score, nil
}

// Close discards the attempt and returns to Idle. Closing an Idle or Loading
// engine also lands on Idle; a load still in flight becomes stale.
func (e *Engine) Close() {
	e.gen++
	e.phase = PhaseIdle
	e.topic = ""
	e.questions = nil
	e.answers = nil
	e.score = 0
}
