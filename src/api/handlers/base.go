package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"fundraiser/src/api/controllers"
	"fundraiser/src/services"
	"fundraiser/src/utils"

	"github.com/sirupsen/logrus"
)

type Handler struct {
	Logger            *logrus.Logger
	ReportsController controllers.ReportsControllerI
}

func NewHandler(logger *logrus.Logger, reportsController controllers.ReportsControllerI) *Handler {
	return &Handler{
		Logger:            logger,
		ReportsController: reportsController,
	}
}

func (h *Handler) respond(w http.ResponseWriter, _ *http.Request, data interface{}, status int) {
	res, err := json.Marshal(data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write(res)
}

// HandleErrors maps domain errors onto HTTP answers. Unsupported export
// formats and bad filters are client errors; tenant mismatches stay 404.
func (h *Handler) HandleErrors(w http.ResponseWriter, err error) {
	var (
		invalidFilter *services.InvalidFilterError
		badFormat     *services.UnsupportedFormatError
		notFound      *services.NotFoundError
		httpErr       *utils.HTTPError
	)

	switch {
	case errors.As(err, &invalidFilter):
		utils.WriteError(w, utils.BadRequest(invalidFilter.Message))
	case errors.As(err, &badFormat):
		utils.WriteError(w, utils.BadRequest(badFormat.Error()))
	case errors.As(err, &notFound):
		utils.WriteError(w, utils.NotFound(notFound.Message))
	case errors.As(err, &httpErr):
		utils.WriteError(w, httpErr)
	default:
		utils.WriteError(w, err)
	}
}

func Healthcheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
