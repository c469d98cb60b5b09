// Package api provides the HTTP server and handlers.
package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/debtcoder/debtcoder/internal/command"
	"github.com/debtcoder/debtcoder/internal/events"
	"github.com/debtcoder/debtcoder/internal/logging"
	"github.com/debtcoder/debtcoder/internal/metrics"
	"github.com/debtcoder/debtcoder/internal/motd"
	"github.com/debtcoder/debtcoder/internal/search"
	"github.com/debtcoder/debtcoder/internal/store"
)

// Server is the HTTP server.
type Server struct {
	store       *store.Store
	interp      *command.Interpreter
	search      *search.Client
	motd        *motd.Manager
	broadcaster *events.Broadcaster

	version   string
	publicURL string
	accessKey string
	startTime time.Time
}

// NewServer creates a new server.
func NewServer(
	st *store.Store,
	interp *command.Interpreter,
	searchClient *search.Client,
	motdManager *motd.Manager,
	broadcaster *events.Broadcaster,
	version string,
	publicURL string,
	accessKey string,
) *Server {
	return &Server{
		store:       st,
		interp:      interp,
		search:      searchClient,
		motd:        motdManager,
		broadcaster: broadcaster,
		version:     version,
		publicURL:   publicURL,
		accessKey:   accessKey,
		startTime:   time.Now(),
	}
}

// Handler returns the HTTP handler with CORS, auth, logging and metrics
// middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// System
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /diagnostics", s.handleDiagnostics)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/healthz", http.StatusFound)
	})

	// Content
	mux.HandleFunc("GET /motd", s.handleMOTD)
	mux.HandleFunc("GET /motd/html", s.handleMOTDHTML)
	mux.HandleFunc("PUT /motd", s.handleMOTDUpdate)

	// Search proxy
	mux.HandleFunc("GET /search", s.handleSearch)

	// Flat upload store
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /uploads", s.handleUploadsList)
	mux.HandleFunc("GET /upload/{filename...}", s.handleUploadFetch)
	mux.HandleFunc("GET /upload/{filename}/text", s.handleUploadText)
	mux.HandleFunc("PUT /upload/{filename...}", s.handleUploadPut)
	mux.HandleFunc("DELETE /upload/{filename...}", s.handleUploadDelete)
	mux.HandleFunc("POST /upload/{filename}/rename", s.handleUploadRename)
	mux.HandleFunc("POST /uploads/command", s.handleCommand)

	// Sandboxed filesystem browser
	mux.HandleFunc("GET /fs/list", s.handleFSList)
	mux.HandleFunc("GET /fs/read", s.handleFSRead)
	mux.HandleFunc("POST /fs/write", s.handleFSWrite)
	mux.HandleFunc("DELETE /fs/delete", s.handleFSDelete)

	// Streaming
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("GET /command/ws", s.handleCommandWS)

	handler := s.authMiddleware(mux)
	handler = corsMiddleware(handler)
	return metrics.Middleware(logging.Middleware(handler))
}

// authMiddleware enforces the shared-secret header when an access key is
// configured.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.accessKey != "" {
			key := r.Header.Get("X-Doja-Key")
			if subtle.ConstantTimeCompare([]byte(key), []byte(s.accessKey)) != 1 {
				metrics.RecordAuthRejection()
				s.sendError(w, http.StatusUnauthorized, "API key required")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ─── System ─────────────────────────────────────────────────────────────────

func (s *Server) uptime() float64 {
	return math.Round(time.Since(s.startTime).Seconds()*1000) / 1000
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, HealthResponse{Status: "ok", UptimeSeconds: s.uptime()})
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	searchReady := s.search.Ping(r.Context())

	status := "ok"
	if !searchReady {
		status = "degraded"
	}

	resp := DiagnosticsResponse{
		Status:        status,
		Version:       s.version,
		PublicURL:     s.publicURL,
		UptimeSeconds: s.uptime(),
		UploadDir:     s.store.Root(),
		SearchReady:   searchReady,
		GoVersion:     runtime.Version(),
	}
	// Re-seed a deleted MOTD before reporting on it.
	if err := s.motd.Ensure(); err != nil {
		logging.Warn("MOTD re-seed failed", zap.Error(err))
	}
	if mt := s.motd.ModTime(); !mt.IsZero() {
		resp.MOTDExists = true
		resp.MOTDLastModified = &mt
	}
	resp.UploadFileCount, resp.UploadDiskUsageBytes = s.store.Usage()

	s.sendJSON(w, http.StatusOK, resp)
}

// ─── MOTD ───────────────────────────────────────────────────────────────────

func (s *Server) handleMOTD(w http.ResponseWriter, r *http.Request) {
	content, err := s.motd.Read()
	if err != nil {
		s.sendError(w, http.StatusInternalServerError, "failed to read MOTD: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(content))
}

func (s *Server) handleMOTDHTML(w http.ResponseWriter, r *http.Request) {
	html, err := s.motd.RenderHTML()
	if err != nil {
		s.sendError(w, http.StatusInternalServerError, "failed to render MOTD: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

func (s *Server) handleMOTDUpdate(w http.ResponseWriter, r *http.Request) {
	var payload TextFilePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	n, err := s.motd.Write(payload.Content)
	if err != nil {
		s.sendStoreError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, MOTDUpdateResponse{
		Message:      "MOTD updated",
		BytesWritten: n,
		UpdatedAt:    s.motd.ModTime(),
	})
}

// ─── Search ─────────────────────────────────────────────────────────────────

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.sendError(w, http.StatusBadRequest, "Query must not be empty")
		return
	}

	resp, err := s.search.Fetch(r.Context(), query)
	if err != nil {
		var upstream *search.UpstreamError
		if errors.As(err, &upstream) {
			s.sendError(w, upstream.StatusCode, "search query failed")
			return
		}
		s.sendError(w, http.StatusBadGateway, "External request failed: "+err.Error())
		return
	}
	s.sendJSON(w, http.StatusOK, resp)
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func (s *Server) sendJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) sendError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// sendStoreError maps a store error kind to its transport status.
func (s *Server) sendStoreError(w http.ResponseWriter, err error) {
	s.sendError(w, statusForError(err), err.Error())
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, store.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, store.ErrInvalidEncoding):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, store.ErrPathEscape), errors.Is(err, store.ErrNotADirectory):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
