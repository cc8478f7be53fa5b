package http

import (
	"net/http"

	"github.com/hireline/hireline/internal/domain"
	"github.com/hireline/hireline/internal/service"
	"github.com/hireline/hireline/pkg/httpx"
)

// ApplicationsHandler serves applying to postings and reviewing applicants.
type ApplicationsHandler struct {
	Applications *service.ApplicationService
	Dev          bool
}

func (h *ApplicationsHandler) HandleApply(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r)
	if !ok {
		writeServiceError(w, r, domain.ErrNotAuthenticated, h.Dev)
		return
	}

	var in struct {
		CoverNote string `json:"coverNote"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if !decodeJSONBody(w, r, &in) {
			return
		}
	}

	app, err := h.Applications.Apply(r.Context(), p.ID, r.PathValue("id"), in.CoverNote)
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, app)
}

func (h *ApplicationsHandler) HandleListForJob(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r)
	if !ok {
		writeServiceError(w, r, domain.ErrNotAuthenticated, h.Dev)
		return
	}

	apps, err := h.Applications.ListForJob(r.Context(), p, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}
	writeApplications(w, apps)
}

func (h *ApplicationsHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r)
	if !ok {
		writeServiceError(w, r, domain.ErrNotAuthenticated, h.Dev)
		return
	}

	apps, err := h.Applications.ListMine(r.Context(), p.ID)
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}
	writeApplications(w, apps)
}

func (h *ApplicationsHandler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFrom(r)
	if !ok {
		writeServiceError(w, r, domain.ErrNotAuthenticated, h.Dev)
		return
	}

	var in struct {
		Status string `json:"status"`
	}
	if !decodeJSONBody(w, r, &in) {
		return
	}

	app, err := h.Applications.UpdateStatus(r.Context(), p, r.PathValue("id"), in.Status)
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, app)
}

func writeApplications(w http.ResponseWriter, apps []domain.Application) {
	if apps == nil {
		apps = []domain.Application{}
	}
	httpx.WriteJSON(w, http.StatusOK, struct {
		Applications []domain.Application `json:"applications"`
	}{Applications: apps})
}
