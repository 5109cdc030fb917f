package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskflow/taskflow/internal/platform/httpx"
	"github.com/taskflow/taskflow/internal/shared"
)

// Handler manages user endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers user routes. The listing feeds the assignment picker
// and is limited to admins, who are the only principals allowed to assign
// tasks to arbitrary users.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listUsers)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	if !principal.IsAdmin() {
		httpx.Problem(w, http.StatusForbidden, "Forbidden", "admin role required")
		return
	}

	list, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	refs := make([]Ref, 0, len(list))
	for _, u := range list {
		refs = append(refs, Ref{ID: u.ID, Name: u.Name})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": refs})
}
