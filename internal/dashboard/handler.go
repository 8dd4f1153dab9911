// Package dashboard serves the role-specific browser views of the client.
//
// The dashboards are plain server-rendered pages backed entirely by the
// remote API: the handler owns a session manager, an API client and the
// view-local state (quiz engine, question builder, chat transcript) for the
// single user driving this process.
package dashboard

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/mkarpov/studyhall/internal/api"
	"github.com/mkarpov/studyhall/internal/author"
	"github.com/mkarpov/studyhall/internal/chat"
	appI18n "github.com/mkarpov/studyhall/internal/i18n"
	"github.com/mkarpov/studyhall/internal/model"
	"github.com/mkarpov/studyhall/internal/quiz"
	"github.com/mkarpov/studyhall/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler holds shared dependencies for the dashboard views.
type Handler struct {
	api        *api.Client
	session    *session.Manager
	engine     *quiz.Engine
	builder    *author.Builder
	transcript *chat.Transcript
	pages      map[string]*template.Template

	// View-local form state, kept across redirects so a rejected draft or a
	// fetched study plan survives the post/redirect/get cycle.
	draft     author.Draft
	quizMode  model.PublishMode
	quizTopic string
	plan      string
}

// New creates a dashboard handler. lang selects the language for messages
// produced outside a request context, such as the chat offline notice.
func New(apiClient *api.Client, sess *session.Manager, lang string) (*Handler, error) {
	funcs := template.FuncMap{
		"add": func(a, b int) int { return a + b },
	}
	pages := make(map[string]*template.Template)
	for _, name := range []string{"login.html", "register.html", "student.html", "teacher.html", "admin.html"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, err
		}
		pages[name] = t
	}

	ctx := appI18n.WithLocalizer(context.Background(), appI18n.NewLocalizer(lang))
	return &Handler{
		api:        apiClient,
		session:    sess,
		engine:     quiz.NewEngine(),
		builder:    author.NewBuilder(),
		transcript: chat.NewTranscript(appI18n.T(ctx, "ChatOffline")),
		pages:      pages,
		quizMode:   model.ModeAI,
	}, nil
}

// Routes registers all dashboard routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.handleIndex)
	r.Get("/login", h.handleLoginPage)
	r.Post("/login", h.handleLogin)
	r.Get("/register", h.handleRegisterPage)
	r.Post("/register", h.handleRegister)
	r.Post("/logout", h.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Route("/student", func(r chi.Router) {
			r.Get("/", h.handleStudent)
			r.Post("/profile", h.handleUpdateProfile)
			r.Post("/enroll", h.handleEnroll)
			r.Post("/plan", h.handlePlan)
			r.Post("/quiz/generate", h.handleGenerateQuiz)
			r.Post("/quiz/adaptive", h.handleAdaptiveQuiz)
			r.Post("/quiz/assigned", h.handleAssignedQuiz)
			r.Post("/quiz/answer", h.handleAnswer)
			r.Post("/quiz/submit", h.handleSubmitQuiz)
			r.Post("/quiz/close", h.handleCloseQuiz)
			r.Post("/chat", h.handleChat)
		})

		r.Route("/teacher", func(r chi.Router) {
			r.Use(requireRole(model.RoleTeacher))
			r.Get("/", h.handleTeacher)
			r.Post("/questions", h.handleAddQuestion)
			r.Post("/publish", h.handlePublish)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireRole(model.RoleAdmin))
			r.Get("/", h.handleAdmin)
			r.Post("/users/{id}/delete", h.handleDeleteUser)
		})
	})
}

// routePath maps a session route to its URL.
func routePath(route session.Route) string {
	switch route {
	case session.RouteAdmin:
		return "/admin/"
	case session.RouteTeacher:
		return "/teacher/"
	case session.RouteStudent:
		return "/student/"
	default:
		return "/login"
	}
}

// requireAuth redirects to the login view when no identity is held.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := h.session.Current()
		if id == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(model.ContextWithIdentity(r.Context(), id)))
	})
}

// requireRole rejects requests whose identity lacks one of the allowed roles.
func requireRole(allowed ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := model.IdentityFromContext(r.Context())
			if id == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			for _, role := range allowed {
				if id.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, appI18n.T(r.Context(), "Forbidden"), http.StatusForbidden)
		})
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.pages[page].ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("render error", "page", page, "error", err)
	}
}

// redirectFlash issues a see-other redirect carrying a message ID in the
// query string; the target GET handler translates it for display.
func redirectFlash(w http.ResponseWriter, r *http.Request, path, param, msgID string) {
	if msgID != "" {
		path += "?" + param + "=" + url.QueryEscape(msgID)
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// flashes translates the ok/err message IDs carried in the query string.
func flashes(r *http.Request) (ok, errMsg string) {
	if id := r.URL.Query().Get("ok"); id != "" {
		ok = appI18n.T(r.Context(), id)
	}
	if id := r.URL.Query().Get("err"); id != "" {
		errMsg = appI18n.T(r.Context(), id)
	}
	return ok, errMsg
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	id := h.session.Current()
	if id == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, routePath(session.LandingRoute(id.Role)), http.StatusSeeOther)
}
