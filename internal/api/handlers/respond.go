package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/St1cky1/taskboard/internal/board"
	"github.com/St1cky1/taskboard/internal/entity"
	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

const maxBodySize = 1 << 20

var errInvalidJSON = errors.New("invalid JSON")

type errorResponse struct {
	Error string `json:"error"`
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := sonic.ConfigStd.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errInvalidJSON
	}
	_, _ = io.Copy(io.Discard, body)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = sonic.ConfigStd.NewEncoder(w).Encode(v)
}

// statusFor сопоставляет ошибку коду ответа; ok=false - внутренняя ошибка
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, errInvalidJSON),
		errors.Is(err, entity.ErrInvalidTaskData),
		errors.Is(err, entity.ErrNoFieldsToUpdate),
		errors.Is(err, entity.ErrInvalidUserData),
		errors.Is(err, board.ErrFormInvalid),
		errors.Is(err, board.ErrUnknownItem):
		return http.StatusBadRequest, true
	case errors.Is(err, entity.ErrUnauthorized),
		errors.Is(err, entity.ErrInvalidToken),
		errors.Is(err, entity.ErrInvalidCredentials):
		return http.StatusUnauthorized, true
	case errors.Is(err, entity.ErrInactiveUser),
		errors.Is(err, entity.ErrForbidden):
		return http.StatusForbidden, true
	case errors.Is(err, entity.ErrTaskNotFound),
		errors.Is(err, entity.ErrUserNotFound),
		errors.Is(err, board.ErrSessionNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, entity.ErrEmailTaken):
		return http.StatusConflict, true
	default:
		return http.StatusInternalServerError, false
	}
}

// writeError отдает известные ошибки как есть, остальные логирует
// и заменяет на "failed to <op>"
func writeError(w http.ResponseWriter, r *http.Request, logger log.FieldLogger, op string, err error) {
	status, known := statusFor(err)
	msg := err.Error()
	if !known {
		logger.WithError(err).WithFields(log.Fields{
			"op":         op,
			"request_id": middleware.GetReqID(r.Context()),
		}).Error("request failed")
		msg = "failed to " + op
	}
	writeJSON(w, status, errorResponse{Error: msg})
}
