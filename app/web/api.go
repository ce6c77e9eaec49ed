package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/nsnt/app/snapshot"
	"github.com/umputun/nsnt/app/web/enums"
	"github.com/umputun/nsnt/app/web/persistence"
)

// APIStatusResponse is the JSON response for /api/v1/status
type APIStatusResponse struct {
	Version       string             `json:"version"`
	SchemaVersion int                `json:"schema_version"`
	Counts        persistence.Counts `json:"counts"`
	Uptime        string             `json:"uptime"`
	Timestamp     time.Time          `json:"timestamp"`
}

// APIItemRequest is the JSON body of item actions
type APIItemRequest struct {
	URL string `json:"url"`
}

// APIListResponse is the JSON response for partition listings
type APIListResponse[T any] struct {
	Partition string `json:"partition"`
	Items     []T    `json:"items"`
}

// handleAPIStatus returns JSON status with partition counts - designed for CLI/jq consumption
func (s *Server) handleAPIStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.Counts(r.Context())
	if err != nil {
		log.Printf("[ERROR] failed to get counts: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to load counts")
		return
	}

	ver, err := s.store.SchemaVersion(r.Context())
	if err != nil {
		log.Printf("[ERROR] failed to get schema version: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to load schema version")
		return
	}

	s.writeJSON(w, http.StatusOK, APIStatusResponse{
		Version:       s.version,
		SchemaVersion: ver,
		Counts:        counts,
		Uptime:        time.Since(s.startTime).Truncate(time.Second).String(),
		Timestamp:     time.Now(),
	})
}

// handleAPISchema returns JSON schema of the import document
func (s *Server) handleAPISchema(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, snapshot.Schema())
}

// handleAPIList returns items of a partition, limited by optional limit query param
func (s *Server) handleAPIList(w http.ResponseWriter, r *http.Request) {
	partition, err := enums.ParsePartition(r.PathValue("partition"))
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit, err := s.limitParam(r)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := s.store.List(r.Context(), partition, limit)
	if err != nil {
		log.Printf("[ERROR] failed to list %s: %v", partition, err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	s.writeJSON(w, http.StatusOK, APIListResponse[persistence.Item]{Partition: partition.String(), Items: nonNil(items)})
}

// handleAPIWatched returns watched items merged with their cached source fields
func (s *Server) handleAPIWatched(w http.ResponseWriter, r *http.Request) {
	limit, err := s.limitParam(r)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := s.store.ListWatched(r.Context(), limit)
	if err != nil {
		log.Printf("[ERROR] failed to list watched: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	s.writeJSON(w, http.StatusOK, APIListResponse[persistence.WatchedItem]{Partition: listWatched, Items: nonNil(items)})
}

// handleAPIOthers returns cached items which are neither watched nor ignored
func (s *Server) handleAPIOthers(w http.ResponseWriter, r *http.Request) {
	limit, err := s.limitParam(r)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := s.store.ListOthers(r.Context(), limit)
	if err != nil {
		log.Printf("[ERROR] failed to list others: %v", err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	s.writeJSON(w, http.StatusOK, APIListResponse[persistence.Item]{Partition: listOthers, Items: nonNil(items)})
}

// apiItemAction makes a handler applying a store action to the url from JSON body
func (s *Server) apiItemAction(name string, action func(ctx context.Context, url string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req APIItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.URL = strings.TrimSpace(req.URL)
		if req.URL == "" {
			s.writeJSONError(w, http.StatusBadRequest, "url is required")
			return
		}

		if err := action(r.Context(), req.URL); err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				s.writeJSONError(w, http.StatusNotFound, "item not found")
				return
			}
			log.Printf("[ERROR] failed to %s %s: %v", name, req.URL, err)
			s.writeJSONError(w, http.StatusInternalServerError, "failed to update item")
			return
		}

		log.Printf("[INFO] %s %s", name, req.URL)
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "url": req.URL})
	}
}

// handleAPIUpdate sets user title, description or priority of a tracked item
func (s *Server) handleAPIUpdate(w http.ResponseWriter, r *http.Request) {
	var req persistence.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		s.writeJSONError(w, http.StatusBadRequest, "url is required")
		return
	}

	if err := s.store.UpdateTracked(r.Context(), req); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			s.writeJSONError(w, http.StatusNotFound, "item not tracked")
			return
		}
		log.Printf("[ERROR] failed to update %s: %v", req.URL, err)
		s.writeJSONError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "url": req.URL})
}

// handleAPIImport imports snapshot from request body, yaml is selected by format param or content type
func (s *Server) handleAPIImport(w http.ResponseWriter, r *http.Request) {
	format := enums.FormatJSON
	if f := r.URL.Query().Get("format"); f != "" {
		var err error
		if format, err = enums.ParseFormat(f); err != nil {
			s.writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = enums.FormatYAML
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, snapshot.MaxSize+1))
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(body) > snapshot.MaxSize {
		s.writeJSONError(w, http.StatusRequestEntityTooLarge, "snapshot is too large")
		return
	}

	res, err := snapshot.Import(r.Context(), s.store, body, format)
	if err != nil {
		log.Printf("[WARN] failed to import snapshot: %v", err)
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// limitParam parses optional limit query param, zero means no limit
func (s *Server) limitParam(r *http.Request) (int, error) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(v)
	if err != nil || limit < 0 {
		return 0, fmt.Errorf("invalid limit %q", v)
	}
	return limit, nil
}

// nonNil makes empty lists encode as [] instead of null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[WARN] failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes a JSON error response
func (s *Server) writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]string{"error": message}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("[WARN] failed to encode JSON error response: %v", err)
	}
}
