package tasks

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/taskflow/taskflow/internal/platform/httpx"
	"github.com/taskflow/taskflow/internal/shared"
)

// ServicePort defines the lifecycle operations the handler depends on.
type ServicePort interface {
	List(ctx context.Context, p shared.Principal) ([]TaskWithAssignee, error)
	Create(ctx context.Context, p shared.Principal, req CreateTaskRequest) (*Task, error)
	Get(ctx context.Context, p shared.Principal, id int64) (*Task, error)
	Update(ctx context.Context, p shared.Principal, id int64, req UpdateTaskRequest) (*Task, error)
	Assign(ctx context.Context, p shared.Principal, id, assigneeID int64) (*Task, error)
	Delete(ctx context.Context, p shared.Principal, id int64) error
}

// Handler manages task endpoints.
type Handler struct {
	logger   *slog.Logger
	service  ServicePort
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service ServicePort) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers task routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listTasks)
	r.Post("/", h.createTask)
	r.Get("/{id}", h.getTask)
	r.Patch("/{id}", h.updateTask)
	r.Post("/{id}/assign", h.assignTask)
	r.Delete("/{id}", h.deleteTask)
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	list, err := h.service.List(r.Context(), principal)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if list == nil {
		list = []TaskWithAssignee{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"tasks": list})
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	var req CreateTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ProblemWithField(w, http.StatusUnprocessableEntity, "Validation Failed", "invalid payload", firstInvalidField(err))
		return
	}
	task, err := h.service.Create(r.Context(), principal, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, task)
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}
	task, err := h.service.Get(r.Context(), principal, id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}
	var req UpdateTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	task, err := h.service.Update(r.Context(), principal, id, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *Handler) assignTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}
	var req AssignTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ProblemWithField(w, http.StatusUnprocessableEntity, "Validation Failed", "invalid payload", firstInvalidField(err))
		return
	}
	task, err := h.service.Assign(r.Context(), principal, id, req.AssigneeID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), principal, id); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "task deleted"})
}

func (h *Handler) principal(w http.ResponseWriter, r *http.Request) (shared.Principal, bool) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return shared.Principal{}, false
	}
	return principal, true
}

func (h *Handler) taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid task id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.ProblemWithField(w, http.StatusUnprocessableEntity, "Validation Failed", verr.Reason, verr.Field)
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "task not found")
	case errors.Is(err, ErrSelfAssignOnly):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", ErrSelfAssignOnly.Error())
	case errors.Is(err, ErrUnauthorized):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", ErrUnauthorized.Error())
	default:
		h.logger.Error("task operation failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func firstInvalidField(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field()
	}
	return ""
}
