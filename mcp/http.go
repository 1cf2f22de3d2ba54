package mcp

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/bpowers/algorand-mcp/internal/logging"
)

// SessionHeader carries the session identifier issued on initialize.
const SessionHeader = "Mcp-Session-Id"

const defaultMaxBodyBytes = 4 << 20

// HTTPOptions configures the streamable HTTP transport.
type HTTPOptions struct {
	// Token, when set, is required as a bearer token on /mcp.
	Token string
	// AllowedOrigins defaults to any origin.
	AllowedOrigins []string
	// Metrics is mounted at GET /metrics when non-nil.
	Metrics      http.Handler
	MaxBodyBytes int64
}

// HTTPHandler exposes the server over HTTP: each POST /mcp carries one
// JSON-RPC message and receives the response in the body.
func (s *Server) HTTPHandler(opts HTTPOptions) http.Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", SessionHeader},
		ExposedHeaders: []string{SessionHeader},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/mcp", func(r chi.Router) {
		r.Use(bearerAuth(opts.Token))
		r.Post("/", s.handleHTTP(opts.MaxBodyBytes))
	})

	return r
}

func (s *Server) handleHTTP(maxBody int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse(json.RawMessage("null"), errInvalidRequest, "request too large", nil))
				return
			}
			writeJSON(w, http.StatusBadRequest, errorResponse(json.RawMessage("null"), errParse, "parse error", err.Error()))
			return
		}
		if !json.Valid(body) {
			writeJSON(w, http.StatusBadRequest, errorResponse(json.RawMessage("null"), errParse, "parse error", nil))
			return
		}

		var probe struct {
			Method string `json:"method"`
		}
		_ = json.Unmarshal(body, &probe)

		resp, err := s.handleRaw(r.Context(), body)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse(json.RawMessage("null"), errInternal, err.Error(), nil))
			return
		}
		if resp == nil {
			w.WriteHeader(http.StatusAccepted)
			return
		}

		if probe.Method == "initialize" && resp.Error == nil {
			w.Header().Set(SessionHeader, uuid.NewString())
		} else if id := r.Header.Get(SessionHeader); id != "" {
			w.Header().Set(SessionHeader, id)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			got := r.Header.Get("Authorization")
			if subtle.ConstantTimeCompare([]byte(got), []byte("Bearer "+token)) != 1 {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			logging.Logger().Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"elapsed", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
