package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/sketchboard/internal/common"
	"github.com/dmitrijs2005/sketchboard/internal/server/export"
)

type healthResponse struct {
	Status     string `json:"status"`
	Users      int    `json:"users"`
	Operations int    `json:"operations"`
}

type exportResponse struct {
	Key string `json:"key"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn(r.Context(), "write response", "error", err)
	}
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	st, err := s.board.Stats(r.Context())
	if err != nil {
		s.writeJSON(w, r, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok", Users: st.Users, Operations: st.Operations})
}

// render draws the current operation log.
func (s *HTTPServer) render(r *http.Request) ([]byte, error) {
	snap, err := s.board.Snapshot(r.Context())
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := export.Render(&buf, snap.History, s.now()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *HTTPServer) exportPDF(w http.ResponseWriter, r *http.Request) {
	body, err := s.render(r)
	if err != nil {
		s.logger.Error(r.Context(), "export failed", "error", err)
		s.writeJSON(w, r, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="board.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *HTTPServer) createExport(w http.ResponseWriter, r *http.Request) {
	if s.uploader == nil || !s.uploader.Enabled() {
		s.writeJSON(w, r, http.StatusNotFound, errorResponse{Error: common.ErrExportDisabled.Error()})
		return
	}

	body, err := s.render(r)
	if err != nil {
		s.logger.Error(r.Context(), "export failed", "error", err)
		s.writeJSON(w, r, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}

	key, err := s.uploader.Upload(r.Context(), body)
	switch {
	case errors.Is(err, common.ErrExportDisabled):
		s.writeJSON(w, r, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	case err != nil:
		s.logger.Error(r.Context(), "upload failed", "error", err)
		s.writeJSON(w, r, http.StatusBadGateway, errorResponse{Error: "upload failed"})
		return
	}

	s.logger.Info(r.Context(), "export uploaded", "key", key)
	s.writeJSON(w, r, http.StatusCreated, exportResponse{Key: key})
}
