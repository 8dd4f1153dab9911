// Package author maintains a teacher's pending list of manually written
// quiz questions and publishes quizzes to the platform.
package author

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"

	"github.com/mkarpov/studyhall/internal/model"
)

var (
	// ErrTopicRequired is returned when publishing without a topic.
	ErrTopicRequired = errors.New("author: quiz topic is required")
	// ErrNoPending is returned when publishing in manual mode with an empty
	// pending list. No network call is made.
	ErrNoPending = errors.New("author: at least one question is required")
)

// Draft is an in-progress manually authored question. A draft is only
// accepted when the question text, all four options and the answer are
// non-empty, and the answer matches one of the options byte-for-byte.
type Draft struct {
	Question string    `json:"question" validate:"required"`
	Options  [4]string `json:"options"  validate:"dive,required"`
	Answer   string    `json:"answer"   validate:"required"`
}

// Publisher sends a create-quiz request to the platform.
type Publisher interface {
	CreateQuiz(ctx context.Context, topic string, mode model.PublishMode, questions []model.Question) error
}

// Builder collects validated drafts into a pending question list.
type Builder struct {
	validate *validator.Validate
	pending  []model.Question
}

func NewBuilder() *Builder {
	v := validator.New()
	v.RegisterStructValidation(answerMatchesOption, Draft{})
	return &Builder{validate: v}
}

// answerMatchesOption enforces the exact, case-sensitive match between the
// answer field and one of the four options.
func answerMatchesOption(sl validator.StructLevel) {
	d := sl.Current().Interface().(Draft)
	if d.Answer == "" {
		return // the required rule already reports this
	}
	for _, o := range d.Options {
		if o == d.Answer {
			return
		}
	}
	sl.ReportError(d.Answer, "Answer", "answer", "oneofoptions", "")
}

// Add validates a draft and appends it to the pending list. On failure the
// pending list is untouched and the validation error is returned; callers
// keep the draft form populated so the teacher can fix it.
func (b *Builder) Add(d Draft) error {
	if err := b.validate.Struct(d); err != nil {
		return fmt.Errorf("validate question: %w", err)
	}
	b.pending = append(b.pending, model.Question{
		Text:    d.Question,
		Options: d.Options[:],
		Answer:  d.Answer,
	})
	return nil
}

// Pending returns the validated questions collected so far.
func (b *Builder) Pending() []model.Question { return b.pending }

// Count returns the number of pending questions.
func (b *Builder) Count() int { return len(b.pending) }

// Clear drops the pending list.
func (b *Builder) Clear() { b.pending = nil }

// ImportDrafts reads a JSON array of drafts and appends them all. The whole
// file is validated first; a single invalid draft rejects the import and
// leaves the pending list unchanged.
func (b *Builder) ImportDrafts(r io.Reader) (int, error) {
	var drafts []Draft
	if err := json.NewDecoder(r).Decode(&drafts); err != nil {
		return 0, fmt.Errorf("parse drafts: %w", err)
	}
	for i, d := range drafts {
		if err := b.validate.Struct(d); err != nil {
			return 0, fmt.Errorf("validate question %d: %w", i+1, err)
		}
	}
	for _, d := range drafts {
		b.pending = append(b.pending, model.Question{
			Text:    d.Question,
			Options: d.Options[:],
			Answer:  d.Answer,
		})
	}
	return len(drafts), nil
}

// Publish assigns a quiz. In AI mode the platform generates the questions
// from the topic; in manual mode the pending list is published and must be
// non-empty. Success clears the pending list in either mode, so drafts typed
// before switching to AI mode do not leak into the next quiz; callers refresh
// their analytics view.
func (b *Builder) Publish(ctx context.Context, pub Publisher, topic string, mode model.PublishMode) error {
	if topic == "" {
		return ErrTopicRequired
	}
	if mode == model.ModeManual && len(b.pending) == 0 {
		return ErrNoPending
	}

	var questions []model.Question
	if mode == model.ModeManual {
		questions = b.pending
	}
	if err := pub.CreateQuiz(ctx, topic, mode, questions); err != nil {
		return err
	}
	b.pending = nil
	return nil
}
