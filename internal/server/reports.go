package server

import (
	"fmt"
	"net/http"

	"rescuelink/pkg/types"

	"github.com/alexedwards/flow"
)

func (s *Service) handleListReports(w http.ResponseWriter, r *http.Request) {
	var filter types.ReportFilter
	if err := decoder.Decode(&filter, r.URL.Query()); err != nil {
		s.respondWithMessage(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid filter: %s", err))
		return
	}

	if filter.Status != "" && !filter.Status.Valid() {
		s.respondWithMessage(w, r, http.StatusBadRequest, fmt.Sprintf("Unknown status %q", filter.Status))
		return
	}
	if filter.MissionStatus != "" && !filter.MissionStatus.Valid() {
		s.respondWithMessage(w, r, http.StatusBadRequest, fmt.Sprintf("Unknown mission status %q", filter.MissionStatus))
		return
	}

	s.respondWithJSON(w, r, http.StatusOK, s.reports.List(r.Context(), filter))
}

func (s *Service) handleReportViews(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, r, http.StatusOK, s.reports.Views(r.Context()))
}

func (s *Service) handleGetReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.reports.Report(r.Context(), flow.Param(r.Context(), "id"))
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}

	s.respondWithJSON(w, r, http.StatusOK, report)
}

func (s *Service) handleSubmitReport(w http.ResponseWriter, r *http.Request) {
	var sub types.ReportSubmission
	if !s.decodeJSON(w, r, &sub) {
		return
	}

	report, err := s.reports.Submit(r.Context(), sub)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}

	s.respondWithJSON(w, r, http.StatusCreated, report)
}

func (s *Service) handlePatchReport(w http.ResponseWriter, r *http.Request) {
	var patch types.ReportPatch
	if !s.decodeJSON(w, r, &patch) {
		return
	}

	report, err := s.reports.Transition(r.Context(), flow.Param(r.Context(), "id"), patch)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}

	s.respondWithJSON(w, r, http.StatusOK, types.ReportUpdatedResponse{
		Message: "Report updated",
		Report:  report,
	})
}
