package server

import (
	"net/http"

	"rescuelink/pkg/types"
)

func (s *Service) handleListContacts(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, r, http.StatusOK, s.contacts.List(r.Context()))
}

func (s *Service) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var in types.ContactInput
	if !s.decodeJSON(w, r, &in) {
		return
	}

	contact, err := s.contacts.Create(r.Context(), in)
	if err != nil {
		s.respondWithError(w, r, err)
		return
	}

	s.respondWithJSON(w, r, http.StatusCreated, contact)
}
