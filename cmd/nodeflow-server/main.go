// Package main provides a minimal HTTP server around a session document
// store, plus debug endpoints for the runtime's expvar metrics.
package main

import (
	"encoding/json"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/pyiron/nodeflow/internal/adapters/repository/memory"
	"github.com/pyiron/nodeflow/internal/core/document"
)

func main() {
	_ = godotenv.Load()
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	store := memory.NewStore()
	srv := &server{store: store, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "nodeflow server is running. See /healthz, /sessions, /debug/vars")
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})
	mux.Handle("/debug/vars", expvar.Handler())
	mux.HandleFunc("/sessions", srv.sessions)
	mux.HandleFunc("/sessions/", srv.session)

	addr := ":8080"
	if v := os.Getenv("NODEFLOW_ADDR"); v != "" {
		addr = v
	}
	log.Info().Str("addr", addr).Msg("starting nodeflow server")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

type server struct {
	store *memory.Store
	log   zerolog.Logger
}

// sessions handles GET (list IDs) and POST (validate and save a document).
func (s *server) sessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		ids, err := s.store.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, ids)
	case http.MethodPost:
		var doc document.SessionDoc
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.store.Save(r.Context(), &doc); err != nil {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		s.log.Info().Str("id", doc.ID).Int("scripts", len(doc.Scripts)).Msg("session saved")
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, map[string]string{"id": doc.ID})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// session handles GET and DELETE on /sessions/{id}.
func (s *server) session(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if id == "" {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return
	}
	switch r.Method {
	case http.MethodGet:
		doc, err := s.store.Load(r.Context(), id)
		if errors.Is(err, document.ErrDocumentNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, doc)
	case http.MethodDelete:
		err := s.store.Delete(r.Context(), id)
		if errors.Is(err, document.ErrDocumentNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
