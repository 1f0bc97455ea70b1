package qr

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"qrlink/entity"
	"qrlink/lib/api/response"
	"qrlink/lib/sl"

	"github.com/go-chi/render"
)

const (
	CodeInvalidInput  = "INVALID_INPUT"
	CodeNotFound      = "NOT_FOUND"
	CodeNoData        = "NO_DATA"
	CodeQRNotFound    = "QR_NOT_FOUND"
	CodeQRDisabled    = "QR_DISABLED"
	CodeTargetMissing = "TARGET_URL_MISSING"
	CodeStoreTimeout  = "STORE_TIMEOUT"
	CodeStoreError    = "STORE_ERROR"
	CodeUnavailable   = "SERVICE_UNAVAILABLE"
)

// status maps an error to http status and response code; notFound names the code for missing records
func status(err error, notFound string) (int, string) {
	switch {
	case errors.Is(err, entity.ErrInvalidInput):
		return http.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, entity.ErrNoData):
		return http.StatusBadRequest, CodeNoData
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound, notFound
	case errors.Is(err, entity.ErrForbidden):
		return http.StatusForbidden, CodeQRDisabled
	case errors.Is(err, entity.ErrTargetMissing):
		return http.StatusInternalServerError, CodeTargetMissing
	case errors.Is(err, entity.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, CodeStoreTimeout
	}
	return http.StatusInternalServerError, CodeStoreError
}

func fail(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error, notFound string) {
	st, code := status(err, notFound)
	log = log.With(sl.Err(err), slog.String("status_code", code))
	if st >= http.StatusInternalServerError {
		log.Error("request failed")
	} else {
		log.Debug("request rejected")
	}
	render.Status(r, st)
	render.JSON(w, r, response.Error(code))
}

func invalid(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	log.With(sl.Err(err)).Warn("invalid request body")
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, response.Error(CodeInvalidInput))
}

func unavailable(w http.ResponseWriter, r *http.Request, log *slog.Logger) {
	log.Error("qr service not available")
	render.Status(r, http.StatusServiceUnavailable)
	render.JSON(w, r, response.Error(CodeUnavailable))
}
