package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/UnknownOlympus/iris/internal/apperr"
	"github.com/UnknownOlympus/iris/internal/lib/logger/sl"
	"github.com/UnknownOlympus/iris/internal/models"
	"github.com/gorilla/mux"
)

const (
	// BasePath is the prefix of the public employee endpoints.
	BasePath = "/api/v1/employees"
	// MaxBodyBytes caps the size of a create request body.
	MaxBodyBytes = 1 << 20
)

// Directory answers the public employee queries.
type Directory interface {
	ListAll(ctx context.Context) ([]models.Employee, error)
	SearchByName(ctx context.Context, fragment string) ([]models.Employee, error)
	GetByID(ctx context.Context, id string) (models.Employee, error)
	HighestSalary(ctx context.Context) (int, error)
	TopTenByEarning(ctx context.Context) ([]string, error)
	Create(ctx context.Context, input models.CreateEmployeeRequest) (models.Employee, error)
	DeleteByID(ctx context.Context, id string) (string, error)
}

// Handler serves the public employee API.
type Handler struct {
	log       *slog.Logger
	directory Directory
}

func NewHandler(log *slog.Logger, directory Directory) *Handler {
	return &Handler{
		log:       log.With(slog.String("division", "api")),
		directory: directory,
	}
}

// Register attaches the employee routes to r. Fixed segments are registered before {id}.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc(BasePath, h.ListAll).Methods(http.MethodGet)
	r.HandleFunc(BasePath, h.Create).Methods(http.MethodPost)
	r.HandleFunc(BasePath+"/search", h.SearchByName).Methods(http.MethodGet)
	r.HandleFunc(BasePath+"/highest-salary", h.HighestSalary).Methods(http.MethodGet)
	r.HandleFunc(BasePath+"/top-ten-highest-earning", h.TopTenByEarning).Methods(http.MethodGet)
	r.HandleFunc(BasePath+"/{id}", h.GetByID).Methods(http.MethodGet)
	r.HandleFunc(BasePath+"/{id}", h.DeleteByID).Methods(http.MethodDelete)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	employees, err := h.directory.ListAll(r.Context())
	if err != nil {
		h.fail(w, r, "ListAll", err)
		return
	}

	h.respond(w, r, http.StatusOK, employees)
}

func (h *Handler) SearchByName(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if !query.Has("name") {
		h.fail(w, r, "SearchByName", fmt.Errorf("%w: query parameter 'name' is required", apperr.ErrBadRequest))
		return
	}

	employees, err := h.directory.SearchByName(r.Context(), query.Get("name"))
	if err != nil {
		h.fail(w, r, "SearchByName", err)
		return
	}

	h.respond(w, r, http.StatusOK, employees)
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	employee, err := h.directory.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, "GetByID", err)
		return
	}

	h.respond(w, r, http.StatusOK, employee)
}

func (h *Handler) HighestSalary(w http.ResponseWriter, r *http.Request) {
	salary, err := h.directory.HighestSalary(r.Context())
	if err != nil {
		h.fail(w, r, "HighestSalary", err)
		return
	}

	h.respond(w, r, http.StatusOK, salary)
}

func (h *Handler) TopTenByEarning(w http.ResponseWriter, r *http.Request) {
	names, err := h.directory.TopTenByEarning(r.Context())
	if err != nil {
		h.fail(w, r, "TopTenByEarning", err)
		return
	}

	h.respond(w, r, http.StatusOK, names)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.CreateEmployeeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(&input); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, r, "Create", err)
			return
		}
		h.fail(w, r, "Create", fmt.Errorf("%w: invalid request body: %s", apperr.ErrBadRequest, err.Error()))
		return
	}

	employee, err := h.directory.Create(r.Context(), input)
	if err != nil {
		h.fail(w, r, "Create", err)
		return
	}

	h.respond(w, r, http.StatusOK, employee)
}

func (h *Handler) DeleteByID(w http.ResponseWriter, r *http.Request) {
	message, err := h.directory.DeleteByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, "DeleteByID", err)
		return
	}

	if err = writeText(w, http.StatusOK, message); err != nil {
		h.log.ErrorContext(r.Context(), "Failed to write response", sl.Err(err))
	}
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, status int, payload any) {
	if err := writeJSON(w, status, payload); err != nil {
		h.log.ErrorContext(r.Context(), "Failed to write response", sl.Err(err))
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, handler string, err error) {
	status, code, message := statusFor(err)

	log := h.log.With(sl.Op("Handler."+handler), slog.String("request_id", RequestIDFrom(r.Context())))
	if status >= http.StatusInternalServerError {
		log.ErrorContext(r.Context(), "Request failed", slog.Int("status", status), sl.Err(err))
	} else {
		log.DebugContext(r.Context(), "Request rejected", slog.Int("status", status), sl.Err(err))
	}

	if writeErr := writeError(w, r, status, code, message); writeErr != nil {
		log.ErrorContext(r.Context(), "Failed to write error response", sl.Err(writeErr))
	}
}
