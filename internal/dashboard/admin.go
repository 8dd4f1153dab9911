package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mkarpov/studyhall/internal/model"
)

type adminPageData struct {
	Identity *model.Identity
	Stats    *model.AdminStats
	Users    []model.User

	Flash string
	Error string
}

func (h *Handler) handleAdmin(w http.ResponseWriter, r *http.Request) {
	data := adminPageData{Identity: model.IdentityFromContext(r.Context())}
	data.Flash, data.Error = flashes(r)

	if stats, err := h.api.AdminStats(r.Context()); err != nil {
		slog.Warn("load admin stats", "error", err)
	} else {
		data.Stats = stats
	}
	if users, err := h.api.Users(r.Context()); err != nil {
		slog.Warn("load users", "error", err)
	} else {
		data.Users = users
	}

	h.render(w, r, "admin.html", data)
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.api.DeleteUser(r.Context(), id); err != nil {
		slog.Warn("delete user", "id", id, "error", err)
		redirectFlash(w, r, "/admin/", "err", "DeleteUserError")
		return
	}
	http.Redirect(w, r, "/admin/", http.StatusSeeOther)
}
