package author

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mkarpov/studyhall/internal/model"
)

func validDraft() Draft {
	return Draft{
		Question: "What is 2+2?",
		Options:  [4]string{"3", "4", "5", "6"},
		Answer:   "4",
	}
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Draft)
		wantOK bool
	}{
		{"valid", func(d *Draft) {}, true},
		{"empty question", func(d *Draft) { d.Question = "" }, false},
		{"empty option", func(d *Draft) { d.Options[2] = "" }, false},
		{"empty answer", func(d *Draft) { d.Answer = "" }, false},
		{"answer not an option", func(d *Draft) { d.Answer = "7" }, false},
		// Case-only mismatch is still a mismatch; the comparison is
		// byte-for-byte.
		{"case mismatch", func(d *Draft) { d.Options[1] = "Four"; d.Answer = "four" }, false},
		{"exact case match", func(d *Draft) { d.Options[1] = "Four"; d.Answer = "Four" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder()
			d := validDraft()
			tt.mutate(&d)

			err := b.Add(d)
			if tt.wantOK {
				if err != nil {
					t.Fatalf("Add: %v", err)
				}
				if b.Count() != 1 {
					t.Errorf("expected 1 pending question, got %d", b.Count())
				}
				return
			}
			if err == nil {
				t.Fatal("expected validation error")
			}
			if b.Count() != 0 {
				t.Errorf("rejected draft must not be appended, got %d pending", b.Count())
			}
		})
	}
}

// fakePublisher counts calls and optionally fails.
type fakePublisher struct {
	calls     int
	topic     string
	mode      model.PublishMode
	questions []model.Question
	err       error
}

func (f *fakePublisher) CreateQuiz(ctx context.Context, topic string, mode model.PublishMode, questions []model.Question) error {
	f.calls++
	f.topic = topic
	f.mode = mode
	f.questions = questions
	return f.err
}

func TestPublishManual(t *testing.T) {
	b := NewBuilder()
	pub := &fakePublisher{}

	// Empty pending list is rejected locally, without any network call.
	err := b.Publish(context.Background(), pub, "Algebra", model.ModeManual)
	if !errors.Is(err, ErrNoPending) {
		t.Fatalf("expected ErrNoPending, got %v", err)
	}
	if pub.calls != 0 {
		t.Fatalf("expected no network call, got %d", pub.calls)
	}

	if err := b.Add(validDraft()); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := b.Publish(context.Background(), pub, "Algebra", model.ModeManual); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if pub.calls != 1 || pub.mode != model.ModeManual || len(pub.questions) != 1 {
		t.Errorf("unexpected publish %+v", pub)
	}
	if b.Count() != 0 {
		t.Errorf("pending list must be cleared after publish, got %d", b.Count())
	}
}

func TestPublishAI(t *testing.T) {
	b := NewBuilder()
	pub := &fakePublisher{}

	if err := b.Publish(context.Background(), pub, "Algebra", model.ModeAI); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if pub.questions != nil {
		t.Error("AI mode must not send questions")
	}

	if err := b.Publish(context.Background(), pub, "", model.ModeAI); !errors.Is(err, ErrTopicRequired) {
		t.Errorf("expected ErrTopicRequired, got %v", err)
	}
}

func TestPublishAIClearsPending(t *testing.T) {
	b := NewBuilder()
	if err := b.Add(validDraft()); err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Drafts typed before switching to AI mode are not sent, but a successful
	// publish still starts the next quiz from a clean list.
	pub := &fakePublisher{}
	if err := b.Publish(context.Background(), pub, "Algebra", model.ModeAI); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if pub.questions != nil {
		t.Error("AI mode must not send questions")
	}
	if b.Count() != 0 {
		t.Errorf("pending list must be cleared after publish, got %d", b.Count())
	}
}

func TestPublishFailureKeepsPending(t *testing.T) {
	b := NewBuilder()
	if err := b.Add(validDraft()); err != nil {
		t.Fatalf("Add: %v", err)
	}

	pub := &fakePublisher{err: errors.New("server down")}
	if err := b.Publish(context.Background(), pub, "Algebra", model.ModeManual); err == nil {
		t.Fatal("expected publish error")
	}
	if b.Count() != 1 {
		t.Errorf("pending list must survive a failed publish, got %d", b.Count())
	}
}

func TestImportDrafts(t *testing.T) {
	b := NewBuilder()

	good := `[
		{"question": "Q1", "options": ["a","b","c","d"], "answer": "a"},
		{"question": "Q2", "options": ["a","b","c","d"], "answer": "d"}
	]`
	n, err := b.ImportDrafts(strings.NewReader(good))
	if err != nil {
		t.Fatalf("ImportDrafts: %v", err)
	}
	if n != 2 || b.Count() != 2 {
		t.Errorf("expected 2 imported, got n=%d count=%d", n, b.Count())
	}

	// One bad draft rejects the whole file and leaves pending untouched.
	bad := `[
		{"question": "Q3", "options": ["a","b","c","d"], "answer": "a"},
		{"question": "Q4", "options": ["a","b","c","d"], "answer": "nope"}
	]`
	if _, err := b.ImportDrafts(strings.NewReader(bad)); err == nil {
		t.Fatal("expected error for invalid draft in file")
	}
	if b.Count() != 2 {
		t.Errorf("failed import must not change pending list, got %d", b.Count())
	}
}
