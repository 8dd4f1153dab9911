package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/mkarpov/studyhall/internal/author"
	appI18n "github.com/mkarpov/studyhall/internal/i18n"
	"github.com/mkarpov/studyhall/internal/model"
)

type authPageData struct {
	Flash string
	Error string
	Email string
	Name  string
}

func (h *Handler) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if h.session.Current() != nil {
		h.handleIndex(w, r)
		return
	}
	ok, errMsg := flashes(r)
	h.render(w, r, "login.html", authPageData{Flash: ok, Error: errMsg})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	password := r.FormValue("password")

	res, err := h.api.Login(r.Context(), email, password)
	if err != nil {
		slog.Warn("login failed", "email", email, "error", err)
		w.WriteHeader(http.StatusUnauthorized)
		h.render(w, r, "login.html", authPageData{
			Error: appI18n.T(r.Context(), "LoginError"),
			Email: email,
		})
		return
	}

	route, err := h.session.Login(res.Token, res.User)
	if err != nil {
		slog.Error("session login failed", "error", err)
		h.render(w, r, "login.html", authPageData{
			Error: appI18n.T(r.Context(), "GenericError"),
			Email: email,
		})
		return
	}
	http.Redirect(w, r, routePath(route), http.StatusSeeOther)
}

func (h *Handler) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	ok, errMsg := flashes(r)
	h.render(w, r, "register.html", authPageData{Flash: ok, Error: errMsg})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	email := r.FormValue("email")
	password := r.FormValue("password")
	role := model.Role(r.FormValue("role"))
	if role != model.RoleTeacher {
		role = model.RoleStudent
	}

	if err := h.api.Register(r.Context(), name, email, password, role); err != nil {
		slog.Warn("registration failed", "email", email, "error", err)
		w.WriteHeader(http.StatusBadRequest)
		h.render(w, r, "register.html", authPageData{
			Error: appI18n.T(r.Context(), "RegisterError"),
			Email: email,
			Name:  name,
		})
		return
	}
	redirectFlash(w, r, "/login", "ok", "RegisterSuccess")
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Logout(); err != nil {
		slog.Error("logout failed", "error", err)
	}
	// Drop view-local state along with the session.
	h.engine.Close()
	h.builder.Clear()
	h.transcript.Clear()
	h.plan = ""
	h.quizTopic = ""
	h.draft = author.Draft{}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
