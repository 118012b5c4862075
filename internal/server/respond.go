package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"rescuelink/pkg/types"

	"github.com/sirupsen/logrus"
)

type messageResponse struct {
	Message string `json:"message"`
}

func (s *Service) respondWithJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).WithField("request_id", requestIDFromContext(r.Context())).Error("failed to encode response")
	}
}

func (s *Service) respondWithMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.respondWithJSON(w, r, status, messageResponse{Message: msg})
}

// respondWithError maps domain errors onto status codes. Anything unknown is
// logged and reported as a 500 without leaking details.
func (s *Service) respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	var transition *types.TransitionError

	switch {
	case errors.Is(err, types.ErrReportNotFound):
		s.respondWithMessage(w, r, http.StatusNotFound, "Report not found")
	case errors.As(err, &transition):
		s.respondWithMessage(w, r, http.StatusConflict, transition.Error())
	case errors.Is(err, types.ErrInvalidValue):
		s.respondWithMessage(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrStoreUnavailable), errors.Is(err, types.ErrLockTimeout):
		s.logger.WithError(err).WithField("request_id", requestIDFromContext(r.Context())).Warn("record store unavailable")
		s.respondWithMessage(w, r, http.StatusServiceUnavailable, "Record store unavailable, try again")
	default:
		s.logger.WithError(err).WithField("request_id", requestIDFromContext(r.Context())).Error("unhandled error")
		s.respondWithMessage(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

func (s *Service) decodeJSON(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondWithMessage(w, r, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}

		s.logger.WithError(err).WithFields(logrus.Fields{
			"request_id": requestIDFromContext(r.Context()),
			"path":       r.URL.Path,
		}).Debug("invalid request body")
		s.respondWithMessage(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid request body: %s", err))
		return false
	}

	return true
}
