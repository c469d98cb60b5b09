package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/debtcoder/debtcoder/internal/store"
)

func (s *Server) handleFSList(w http.ResponseWriter, r *http.Request) {
	target, err := s.store.Resolve(r.URL.Query().Get("path"))
	if err != nil {
		s.sendStoreError(w, err)
		return
	}
	items, err := s.store.List(target)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			s.sendError(w, http.StatusNotFound, "Directory not found")
		case errors.Is(err, store.ErrNotADirectory):
			s.sendError(w, http.StatusBadRequest, "Path points to a file")
		default:
			s.sendStoreError(w, err)
		}
		return
	}
	s.sendJSON(w, http.StatusOK, FSListResponse{Items: items})
}

func (s *Server) handleFSRead(w http.ResponseWriter, r *http.Request) {
	target, err := s.store.Resolve(r.URL.Query().Get("path"))
	if err != nil {
		s.sendStoreError(w, err)
		return
	}
	content, err := s.store.ReadText(target)
	if err != nil {
		s.sendStoreError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, TextFilePayload{Content: content})
}

func (s *Server) handleFSWrite(w http.ResponseWriter, r *http.Request) {
	var payload FSWritePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	target, err := s.store.Resolve(payload.Filename)
	if err != nil {
		s.sendStoreError(w, err)
		return
	}
	summary, err := s.store.WriteText(target, payload.Content)
	if err != nil {
		s.sendStoreError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, summary)
}

func (s *Server) handleFSDelete(w http.ResponseWriter, r *http.Request) {
	var payload FSDeletePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	target, err := s.store.Resolve(payload.Filename)
	if err != nil {
		s.sendStoreError(w, err)
		return
	}
	if entry, err := s.store.Stat(target); err == nil && entry.IsDir {
		s.sendError(w, http.StatusBadRequest, "Refusing to delete directories via API")
		return
	}
	summary, err := s.store.Delete(target)
	if err != nil {
		s.sendStoreError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, summary)
}
