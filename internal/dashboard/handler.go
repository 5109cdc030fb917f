package dashboard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskflow/taskflow/internal/platform/httpx"
	"github.com/taskflow/taskflow/internal/shared"
	"github.com/taskflow/taskflow/internal/tasks"
)

// TaskLister provides the access-filtered task set for a principal.
type TaskLister interface {
	List(ctx context.Context, p shared.Principal) ([]tasks.TaskWithAssignee, error)
}

// Handler serves the dashboard endpoint.
type Handler struct {
	logger *slog.Logger
	lister TaskLister
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, lister TaskLister) *Handler {
	return &Handler{logger: logger, lister: lister}
}

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.showDashboard)
}

type percentages struct {
	Todo       float64 `json:"todo"`
	InProgress float64 `json:"in_progress"`
	Done       float64 `json:"done"`
}

func (h *Handler) showDashboard(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	list, err := h.lister.List(r.Context(), principal)
	if err != nil {
		h.logger.Error("dashboard list failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if list == nil {
		list = []tasks.TaskWithAssignee{}
	}

	summary := Summarize(list)
	total := summary.Total()
	httpx.JSON(w, http.StatusOK, map[string]any{
		"tasks":   list,
		"summary": summary,
		"percentages": percentages{
			Todo:       PercentageOf(summary.Todo, total),
			InProgress: PercentageOf(summary.InProgress, total),
			Done:       PercentageOf(summary.Done, total),
		},
	})
}
