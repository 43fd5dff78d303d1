package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fundraiser/src/schemas"
	"fundraiser/src/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
)

const requestTimeout = 10 * time.Second

func (h *Handler) requireToken(r *http.Request) error {
	if jwtauth.TokenFromHeader(r) == "" {
		return utils.Unauthorized("auth token not detected")
	}
	return nil
}

func orgIDParam(r *http.Request) (uint, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "orgID"))
	if err != nil || id < 1 {
		return 0, utils.UnprocessableEntity("invalid organization id")
	}
	return uint(id), nil
}

func (h *Handler) GetReportTypes(w http.ResponseWriter, r *http.Request) {
	if err := h.requireToken(r); err != nil {
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, h.ReportsController.GetReportTypes(), http.StatusOK)
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	ctx = utils.WithLogger(ctx, h.Logger)

	if err := h.requireToken(r); err != nil {
		h.HandleErrors(w, err)
		return
	}
	orgID, err := orgIDParam(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	query := schemas.ListReportsQuery{
		Type:   r.URL.Query().Get("type"),
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("search"),
		Page:   page,
	}

	reports, err := h.ReportsController.ListReports(ctx, orgID, query)
	if err != nil {
		h.Logger.Warning(err)
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, reports, http.StatusOK)
}

func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	ctx = utils.WithLogger(ctx, h.Logger)

	if err := h.requireToken(r); err != nil {
		h.HandleErrors(w, err)
		return
	}
	orgID, err := orgIDParam(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	var req schemas.CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest(err.Error()))
		return
	}

	created, err := h.ReportsController.CreateReport(ctx, orgID, &req, nil)
	if err != nil {
		h.Logger.Warning(err)
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, created, http.StatusCreated)
}

func (h *Handler) UpdateReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	ctx = utils.WithLogger(ctx, h.Logger)

	if err := h.requireToken(r); err != nil {
		h.HandleErrors(w, err)
		return
	}
	orgID, err := orgIDParam(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	reportID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleErrors(w, utils.UnprocessableEntity(err.Error()))
		return
	}

	var req schemas.UpdateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest(err.Error()))
		return
	}
	req.ID = uint(reportID)

	updated, err := h.ReportsController.UpdateReport(ctx, orgID, &req, nil)
	if err != nil {
		h.Logger.Warning(err)
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, updated, http.StatusOK)
}

func (h *Handler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	ctx = utils.WithLogger(ctx, h.Logger)

	if err := h.requireToken(r); err != nil {
		h.HandleErrors(w, err)
		return
	}
	orgID, err := orgIDParam(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}
	reportID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		h.HandleErrors(w, utils.UnprocessableEntity(err.Error()))
		return
	}

	if err := h.ReportsController.DeleteReport(ctx, orgID, uint(reportID)); err != nil {
		h.Logger.Warning(err)
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, nil, http.StatusNoContent)
}

func (h *Handler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	ctx = utils.WithLogger(ctx, h.Logger)

	if err := h.requireToken(r); err != nil {
		h.HandleErrors(w, err)
		return
	}
	orgID, err := orgIDParam(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	var req schemas.GenerateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest(err.Error()))
		return
	}

	result, err := h.ReportsController.GenerateReport(ctx, orgID, &req, nil)
	if err != nil {
		h.Logger.Warning(err)
		h.HandleErrors(w, err)
		return
	}
	h.respond(w, r, result, http.StatusOK)
}

func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()
	ctx = utils.WithLogger(ctx, h.Logger)

	if err := h.requireToken(r); err != nil {
		h.HandleErrors(w, err)
		return
	}
	orgID, err := orgIDParam(r)
	if err != nil {
		h.HandleErrors(w, err)
		return
	}

	var req schemas.ExportReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.HandleErrors(w, utils.BadRequest(err.Error()))
		return
	}

	file, err := h.ReportsController.ExportReport(ctx, orgID, &req)
	if err != nil {
		h.Logger.Warning(err)
		h.HandleErrors(w, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	w.Header().Set("X-Filename", file.Filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))

	if _, err := w.Write(file.Content); err != nil {
		h.Logger.Warning(err)
	}
}
