package server

import (
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"
)

// maxImageBytes caps inbound image payloads (10 MiB).
const maxImageBytes = 10 << 20

type queryRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	reply, route, err := s.engine.HandleTextQuery(r.Context(), req.Query)
	if err != nil {
		s.logger.Error("query failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if reply == "" {
		// Empty query: no reply is sent.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{
		"reply": reply,
		"route": string(route),
	})
}

func (s *Server) handleImageReceived(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImageBytes))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read image body")
		return
	}
	if len(data) == 0 {
		s.respondError(w, http.StatusBadRequest, "empty image body")
		return
	}
	receipt, err := s.engine.HandleImageReceived(r.Context(), data)
	if err != nil {
		s.logger.Error("image ingest failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusCreated, receipt)
}

func (s *Server) handleImageSearch(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	match, err := s.engine.HandleImageQuery(r.Context(), req.Query)
	if err != nil {
		s.logger.Error("image search failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if match == nil {
		s.respondError(w, http.StatusNotFound, "no matching image")
		return
	}
	s.respondJSON(w, http.StatusOK, match)
}

func (s *Server) handleReindex(w http.ResponseWriter, r *http.Request) {
	n, err := s.engine.Reindex(r.Context())
	if err != nil {
		s.logger.Error("reindex failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]int{"chunks": n})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	images, err := s.engine.ImageCount()
	if err != nil {
		s.logger.Error("status: image count failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"chunks": s.engine.TextChunks(),
		"images": images,
		"config": map[string]interface{}{
			"top_k":         s.config.Retrieval.TopK,
			"sim_threshold": s.config.Retrieval.SimThreshold,
			"knowledge_dir": s.config.Storage.KnowledgeDir,
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
