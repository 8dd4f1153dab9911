package dashboard

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mkarpov/studyhall/internal/chat"
	"github.com/mkarpov/studyhall/internal/model"
	"github.com/mkarpov/studyhall/internal/quiz"
)

type studentPageData struct {
	Identity *model.Identity
	Profile  *model.User
	Quizzes  []model.AssignedQuiz
	Courses  []model.Course
	Progress *model.ProgressReport
	Plan     string

	QuizIdle   bool
	QuizActive bool
	QuizTopic  string
	Questions  []model.Question
	Answers    map[int]string
	Score      int
	Scored     bool

	Transcript []chat.Message

	Flash string
	Error string
}

func (h *Handler) handleStudent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := studentPageData{
		Identity:   model.IdentityFromContext(ctx),
		Plan:       h.plan,
		QuizIdle:   h.engine.Phase() == quiz.PhaseIdle,
		QuizActive: h.engine.Phase() == quiz.PhaseActive,
		QuizTopic:  h.engine.Topic(),
		Questions:  h.engine.Questions(),
		Transcript: h.transcript.Messages(),
	}
	data.Flash, data.Error = flashes(r)
	data.Score, data.Scored = h.engine.Score()

	data.Answers = make(map[int]string)
	for i := range data.Questions {
		if a, ok := h.engine.Answer(i); ok {
			data.Answers[i] = a
		}
	}

	// Each fetch degrades independently: a failed call logs and leaves its
	// section empty while the rest of the page stays usable.
	if profile, err := h.api.Profile(ctx); err != nil {
		slog.Warn("load profile", "error", err)
	} else {
		data.Profile = profile
	}
	if quizzes, err := h.api.AssignedQuizzes(ctx); err != nil {
		slog.Warn("load assigned quizzes", "error", err)
	} else {
		data.Quizzes = quizzes
	}
	if courses, err := h.api.Courses(ctx); err != nil {
		slog.Warn("load courses", "error", err)
	} else {
		data.Courses = courses
	}
	if progress, err := h.api.Progress(ctx); err != nil {
		slog.Warn("load progress", "error", err)
	} else {
		data.Progress = progress
	}

	h.render(w, r, "student.html", data)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	if name == "" {
		redirectFlash(w, r, "/student/", "err", "NameRequired")
		return
	}
	if err := h.api.UpdateProfile(r.Context(), name); err != nil {
		slog.Warn("update profile", "error", err)
		redirectFlash(w, r, "/student/", "err", "GenericError")
		return
	}
	h.session.SetDisplayName(name)
	redirectFlash(w, r, "/student/", "ok", "ProfileUpdated")
}

func (h *Handler) handleEnroll(w http.ResponseWriter, r *http.Request) {
	courseID := r.FormValue("course_id")
	if err := h.api.Enroll(r.Context(), courseID); err != nil {
		slog.Warn("enroll", "course_id", courseID, "error", err)
		redirectFlash(w, r, "/student/", "err", "EnrollError")
		return
	}
	redirectFlash(w, r, "/student/", "ok", "EnrollSuccess")
}

func (h *Handler) handlePlan(w http.ResponseWriter, r *http.Request) {
	if r.FormValue("clear") != "" {
		h.plan = ""
		http.Redirect(w, r, "/student/", http.StatusSeeOther)
		return
	}
	plan, err := h.api.Recommendation(r.Context())
	if err != nil {
		slog.Warn("study plan", "error", err)
		redirectFlash(w, r, "/student/", "err", "PlanError")
		return
	}
	h.plan = plan
	http.Redirect(w, r, "/student/", http.StatusSeeOther)
}

func (h *Handler) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	topic := r.FormValue("topic")
	if topic == "" {
		redirectFlash(w, r, "/student/", "err", "TopicRequired")
		return
	}
	gen := h.engine.Begin()
	questions, err := h.api.GenerateQuiz(r.Context(), topic, "Medium")
	if err != nil {
		slog.Warn("generate quiz", "topic", topic, "error", err)
		h.engine.FailLoad(gen)
		redirectFlash(w, r, "/student/", "err", "QuizLoadError")
		return
	}
	h.completeLoad(w, r, gen, topic, questions)
}

func (h *Handler) handleAdaptiveQuiz(w http.ResponseWriter, r *http.Request) {
	gen := h.engine.Begin()
	topic, questions, err := h.api.GenerateAdaptiveQuiz(r.Context())
	if err != nil {
		slog.Warn("adaptive quiz", "error", err)
		h.engine.FailLoad(gen)
		redirectFlash(w, r, "/student/", "err", "QuizLoadError")
		return
	}
	h.completeLoad(w, r, gen, topic+" (Remedial)", questions)
}

func (h *Handler) handleAssignedQuiz(w http.ResponseWriter, r *http.Request) {
	id := r.FormValue("quiz_id")
	gen := h.engine.Begin()
	quizzes, err := h.api.AssignedQuizzes(r.Context())
	if err != nil {
		slog.Warn("load assigned quizzes", "error", err)
		h.engine.FailLoad(gen)
		redirectFlash(w, r, "/student/", "err", "QuizLoadError")
		return
	}
	for _, q := range quizzes {
		if q.ID == id {
			h.completeLoad(w, r, gen, q.Topic, q.Questions)
			return
		}
	}
	h.engine.FailLoad(gen)
	redirectFlash(w, r, "/student/", "err", "GenericError")
}

func (h *Handler) completeLoad(w http.ResponseWriter, r *http.Request, gen int, topic string, questions []model.Question) {
	err := h.engine.CompleteLoad(gen, topic, questions)
	switch {
	case errors.Is(err, quiz.ErrEmptyQuiz):
		redirectFlash(w, r, "/student/", "err", "QuizEmpty")
	case errors.Is(err, quiz.ErrStaleLoad):
		// A newer request won; render whatever it produced.
		http.Redirect(w, r, "/student/", http.StatusSeeOther)
	default:
		http.Redirect(w, r, "/student/", http.StatusSeeOther)
	}
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.FormValue("index"))
	if err != nil {
		http.Error(w, "invalid question index", http.StatusBadRequest)
		return
	}
	if err := h.engine.Select(index, r.FormValue("choice")); err != nil {
		slog.Warn("select answer", "index", index, "error", err)
	}
	http.Redirect(w, r, "/student/", http.StatusSeeOther)
}

func (h *Handler) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	_, err := h.engine.Submit(r.Context(), h.api)
	switch {
	case err == nil:
		redirectFlash(w, r, "/student/", "ok", "ScoreSaved")
	case errors.Is(err, quiz.ErrNotActive), errors.Is(err, quiz.ErrNoQuestions):
		redirectFlash(w, r, "/student/", "err", "GenericError")
	default:
		// The score was computed locally and stays visible; only the remote
		// write failed.
		slog.Warn("record progress", "error", err)
		redirectFlash(w, r, "/student/", "err", "ScoreSaveError")
	}
}

func (h *Handler) handleCloseQuiz(w http.ResponseWriter, r *http.Request) {
	h.engine.Close()
	http.Redirect(w, r, "/student/", http.StatusSeeOther)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	if err := h.transcript.Send(r.Context(), h.api, r.FormValue("message")); err != nil {
		slog.Warn("chat", "error", err)
	}
	http.Redirect(w, r, "/student/", http.StatusSeeOther)
}
