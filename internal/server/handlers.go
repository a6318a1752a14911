package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"draft-desk/internal/importer"
	"draft-desk/internal/model"
	"draft-desk/internal/store"
	"draft-desk/internal/validation"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type importRequest struct {
	URL string `json:"url"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	drafts, err := s.drafts.List(r.Context())
	if err != nil {
		s.fail(w, err, "Failed to fetch drafts", "Draft not found")
		return
	}
	writeJSON(w, http.StatusOK, drafts)
}

func (s *Server) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	var in model.DraftInput
	if !s.decode(w, r, &in) {
		return
	}

	d, err := s.drafts.Create(r.Context(), in)
	if err != nil {
		s.fail(w, err, "Failed to create draft", "Draft not found")
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	d, err := s.drafts.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err, "Failed to fetch draft", "Draft not found")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	var patch model.DraftPatch
	if !s.decode(w, r, &patch) {
		return
	}

	d, err := s.drafts.Update(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		s.fail(w, err, "Failed to update draft", "Draft not found")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleDeleteDraft(w http.ResponseWriter, r *http.Request) {
	if err := s.drafts.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		s.fail(w, err, "Failed to delete draft", "Draft not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleGetContent is the public read path: unpublished drafts look exactly like missing ones.
func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	d, err := s.drafts.GetPublished(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, err, "Failed to fetch content", "Content not found")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleImportDraft(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "URL is required")
		return
	}

	d, err := s.importer.Import(r.Context(), req.URL)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrInvalidURL):
			writeError(w, http.StatusBadRequest, "Invalid article URL")
		case errors.Is(err, importer.ErrFetch):
			writeError(w, http.StatusBadGateway, "Failed to fetch article")
		default:
			s.fail(w, err, "Failed to import draft", "Draft not found")
		}
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// fail maps service errors onto responses. Persistence details stay in the log.
func (s *Server) fail(w http.ResponseWriter, err error, internalMsg, notFoundMsg string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error(), Fields: verr.Fields})
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMsg)
	default:
		s.logger.Error(internalMsg, zap.Error(err))
		writeError(w, http.StatusInternalServerError, internalMsg)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
