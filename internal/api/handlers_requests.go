package api

import (
	"net/http"

	"shareit/internal/models"
)

func (s *HTTPServer) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	requestor, err := userID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body createRequestRequest
	if err := s.decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	req, err := s.deps.Requests.AddRequest(r.Context(), requestor, models.RequestInput{Description: body.Description})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (s *HTTPServer) handleOwnRequests(w http.ResponseWriter, r *http.Request) {
	requestor, err := userID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	list, err := s.deps.Requests.GetOwnRequests(r.Context(), requestor)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeRequests(w, list)
}

func (s *HTTPServer) handleOtherRequests(w http.ResponseWriter, r *http.Request) {
	viewer, err := userID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	from, size, err := s.page(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	list, err := s.deps.Requests.GetOtherRequests(r.Context(), viewer, from, size)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeRequests(w, list)
}

func (s *HTTPServer) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	viewer, err := userID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	req, err := s.deps.Requests.GetRequest(r.Context(), viewer, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func writeRequests(w http.ResponseWriter, list []*models.Request) {
	if list == nil {
		list = []*models.Request{}
	}
	writeJSON(w, http.StatusOK, list)
}
