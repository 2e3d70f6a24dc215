package api

import (
	"net/http"
	"strings"

	"shareit/internal/models"
)

func (s *HTTPServer) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	owner, err := userID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body createItemRequest
	if err := s.decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	item, err := s.deps.Items.AddItem(r.Context(), owner, models.ItemInput{
		Name:        body.Name,
		Description: body.Description,
		Available:   *body.Available,
		RequestID:   body.RequestID,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *HTTPServer) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	owner, err := userID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body updateItemRequest
	if err := s.decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	item, err := s.deps.Items.UpdateItem(r.Context(), owner, id, models.ItemPatch{
		Name:        body.Name,
		Description: body.Description,
		Available:   body.Available,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) handleGetItem(w http.ResponseWriter, r *http.Request) {
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
	detail, err := s.deps.Items.GetItemDetail(r.Context(), viewer, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *HTTPServer) handleListOwnerItems(w http.ResponseWriter, r *http.Request) {
	owner, err := userID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	from, size, err := s.page(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	items, err := s.deps.Items.ListOwnerItems(r.Context(), owner, from, size)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if items == nil {
		items = []*models.ItemDetail{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) handleSearchItems(w http.ResponseWriter, r *http.Request) {
	from, size, err := s.page(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	items, err := s.deps.Items.SearchItems(r.Context(), strings.TrimSpace(r.URL.Query().Get("text")), from, size)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if items == nil {
		items = []*models.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	owner, err := userID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.Items.DeleteItem(r.Context(), owner, id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleAddComment(w http.ResponseWriter, r *http.Request) {
	author, err := userID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var body createCommentRequest
	if err := s.decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	comment, err := s.deps.Items.AddComment(r.Context(), models.CommentInput{Text: body.Text}, author, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}
