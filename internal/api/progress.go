// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package api exposes scan results over HTTP so other tools (dashboards,
// scripts, a remote cv) can follow running copies without a terminal.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"cv/internal/logger"
	"cv/internal/progress"

	"github.com/gorilla/mux"
)

// Snapshot is the body of GET /api/progress.
type Snapshot struct {
	Commands  []string          `json:"commands"`
	Results   []progress.Result `json:"results"`
	ScannedAt time.Time         `json:"scanned_at"`
}

// Server serves scan results from a progress.Source. Scans are serialized so
// concurrent requests do not interleave throughput samples.
type Server struct {
	source progress.Source
	mu     sync.Mutex
	now    func() time.Time
}

// NewServer returns a Server scanning source on every request.
func NewServer(source progress.Source) *Server {
	return &Server{source: source, now: time.Now}
}

// NewRouter returns a router with all API routes registered.
func NewRouter(source progress.Source) *mux.Router {
	router := mux.NewRouter()
	NewServer(source).RegisterRoutes(router)
	return router
}

func (s *Server) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/progress", s.progressHandler).Methods("GET")
	router.HandleFunc("/api/progress/{pid:[0-9]+}", s.processHandler).Methods("GET")
	router.HandleFunc("/api/commands", s.commandsHandler).Methods("GET")
}

// writeJSONResponse writes a JSON response with CORS headers
func writeJSONResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode API response", "error", err)
	}
}

func (s *Server) scan(r *http.Request) ([]progress.Result, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	results, err := s.source.Scan(r.Context())
	return results, s.now(), err
}

// progressHandler serves GET /api/progress: one scan of every monitored
// command. An empty result list means nothing is running.
func (s *Server) progressHandler(w http.ResponseWriter, r *http.Request) {
	results, at, err := s.scan(r)
	if err != nil {
		logger.Error("Scan failed", "error", err)
		http.Error(w, fmt.Sprintf("Error scanning processes: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSONResponse(w, Snapshot{Commands: s.source.Commands(), Results: results, ScannedAt: at})
}

// processHandler serves GET /api/progress/{pid}. It returns 404 when the pid
// is not among the monitored processes.
func (s *Server) processHandler(w http.ResponseWriter, r *http.Request) {
	pid, err := strconv.Atoi(mux.Vars(r)["pid"])
	if err != nil {
		http.Error(w, "invalid pid", http.StatusBadRequest)
		return
	}
	results, _, err := s.scan(r)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error scanning processes: %v", err), http.StatusInternalServerError)
		return
	}
	for _, res := range results {
		if res.PID == pid {
			writeJSONResponse(w, res)
			return
		}
	}
	http.Error(w, fmt.Sprintf("process %d is not monitored", pid), http.StatusNotFound)
}

func (s *Server) commandsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, s.source.Commands())
}
