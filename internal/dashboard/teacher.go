package dashboard

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mkarpov/studyhall/internal/author"
	"github.com/mkarpov/studyhall/internal/model"
)

type teacherPageData struct {
	Identity  *model.Identity
	Analytics *model.Analytics

	Mode    model.PublishMode
	Topic   string
	Draft   author.Draft
	Pending int

	Flash string
	Error string
}

func (h *Handler) handleTeacher(w http.ResponseWriter, r *http.Request) {
	data := teacherPageData{
		Identity: model.IdentityFromContext(r.Context()),
		Mode:     h.quizMode,
		Topic:    h.quizTopic,
		Draft:    h.draft,
		Pending:  h.builder.Count(),
	}
	data.Flash, data.Error = flashes(r)

	if analytics, err := h.api.Analytics(r.Context()); err != nil {
		slog.Warn("load analytics", "error", err)
	} else {
		data.Analytics = analytics
	}

	h.render(w, r, "teacher.html", data)
}

// handleAddQuestion validates the draft form and appends it to the pending
// list. A rejected draft stays in the form so the teacher can fix it.
func (h *Handler) handleAddQuestion(w http.ResponseWriter, r *http.Request) {
	h.rememberPublishForm(r)

	draft := author.Draft{
		Question: r.FormValue("question"),
		Options: [4]string{
			r.FormValue("option1"),
			r.FormValue("option2"),
			r.FormValue("option3"),
			r.FormValue("option4"),
		},
		Answer: r.FormValue("answer"),
	}

	if err := h.builder.Add(draft); err != nil {
		h.draft = draft
		redirectFlash(w, r, "/teacher/", "err", "DraftInvalid")
		return
	}
	h.draft = author.Draft{}
	http.Redirect(w, r, "/teacher/", http.StatusSeeOther)
}

func (h *Handler) handlePublish(w http.ResponseWriter, r *http.Request) {
	h.rememberPublishForm(r)

	err := h.builder.Publish(r.Context(), h.api, h.quizTopic, h.quizMode)
	switch {
	case err == nil:
		h.quizTopic = ""
		h.draft = author.Draft{}
		redirectFlash(w, r, "/teacher/", "ok", "QuizPublished")
	case errors.Is(err, author.ErrTopicRequired):
		redirectFlash(w, r, "/teacher/", "err", "TopicRequired")
	case errors.Is(err, author.ErrNoPending):
		redirectFlash(w, r, "/teacher/", "err", "QuestionsRequired")
	default:
		slog.Warn("publish quiz", "topic", h.quizTopic, "mode", h.quizMode, "error", err)
		redirectFlash(w, r, "/teacher/", "err", "GenericError")
	}
}

// rememberPublishForm keeps the topic and mode across the redirect cycle.
func (h *Handler) rememberPublishForm(r *http.Request) {
	h.quizTopic = r.FormValue("topic")
	if mode := model.PublishMode(r.FormValue("mode")); mode == model.ModeManual {
		h.quizMode = model.ModeManual
	} else {
		h.quizMode = model.ModeAI
	}
}
