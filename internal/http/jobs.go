package http

import (
	"net/http"
	"strconv"

	"github.com/hireline/hireline/internal/domain"
	"github.com/hireline/hireline/internal/service"
	"github.com/hireline/hireline/internal/store"
	"github.com/hireline/hireline/pkg/httpx"
)

// JobsHandler serves posting CRUD. Reads are public; writes go through the
// role middleware before they reach here.
type JobsHandler struct {
	Jobs *service.JobService
	Dev  bool
}

func (h *JobsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r)
	if !ok {
		writeServiceError(w, r, domain.ErrNotAuthenticated, h.Dev)
		return
	}

	var in service.JobInput
	if !decodeJSONBody(w, r, &in) {
		return
	}

	job, err := h.Jobs.Create(r.Context(), p.ID, in)
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, job)
}

func (h *JobsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.JobFilter{
		EmployerID: q.Get("employerId"),
		Search:     q.Get("search"),
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		f.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil && n > 0 {
		f.Offset = n
	}

	jobs, err := h.Jobs.List(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}
	if jobs == nil {
		jobs = []domain.Job{}
	}
	httpx.WriteJSON(w, http.StatusOK, struct {
		Jobs []domain.Job `json:"jobs"`
	}{Jobs: jobs})
}

func (h *JobsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	job, err := h.Jobs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, job)
}

func (h *JobsHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r)
	if !ok {
		writeServiceError(w, r, domain.ErrNotAuthenticated, h.Dev)
		return
	}

	var in service.JobInput
	if !decodeJSONBody(w, r, &in) {
		return
	}

	job, err := h.Jobs.Update(r.Context(), p, r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, job)
}

func (h *JobsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r)
	if !ok {
		writeServiceError(w, r, domain.ErrNotAuthenticated, h.Dev)
		return
	}

	if err := h.Jobs.Delete(r.Context(), p, r.PathValue("id")); err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
