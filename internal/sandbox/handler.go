// Package sandbox serves the remote collection REST API from an in-memory
// mock so clients can be exercised locally without the hosted database.
package sandbox

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Ratio1/userdb_sdk_go/pkg/userdata/mock"
)

// FailConfig injects failures into a share of requests.
type FailConfig struct {
	Rate float64
	Code int
}

// Options configures the sandbox handler.
type Options struct {
	// Prefix is the path the collections live under, e.g. "/rest".
	Prefix string
	// APIKey, when set, must match the apikey query parameter.
	APIKey  string
	Latency time.Duration
	Fail    FailConfig
	Logger  *zap.Logger
	// Rand drives failure injection; defaults to math/rand.
	Rand func() float64
}

type server struct {
	store *mock.Mock
	opts  Options
}

// NewHandler builds the HTTP handler for m.
func NewHandler(m *mock.Mock, opts Options) http.Handler {
	if m == nil {
		m = mock.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Rand == nil {
		opts.Rand = rand.Float64
	}
	s := &server{store: m, opts: opts}

	root := mux.NewRouter()
	r := root
	if prefix := strings.TrimRight(opts.Prefix, "/"); prefix != "" {
		r = root.PathPrefix(prefix).Subrouter()
	}
	r.Use(s.logRequests, s.inject, s.authorize)
	r.HandleFunc("/{collection}", s.handleQuery).Methods(http.MethodGet)
	r.HandleFunc("/{collection}", s.handleCreate).Methods(http.MethodPost)
	r.HandleFunc("/{collection}/{id}", s.handleGet).Methods(http.MethodGet)
	r.HandleFunc("/{collection}/{id}", s.handleUpdate).Methods(http.MethodPut)
	r.HandleFunc("/{collection}/{id}", s.handleDelete).Methods(http.MethodDelete)
	return root
}

func (s *server) handleQuery(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]
	var filter map[string]any
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		if err := json.Unmarshal([]byte(q), &filter); err != nil {
			writeError(w, http.StatusBadRequest, "invalid q parameter")
			return
		}
	}
	docs, err := s.store.Find(r.Context(), collection, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *server) handleCreate(w http.ResponseWriter, r *http.Request) {
	doc, ok := decodeBody(w, r)
	if !ok {
		return
	}
	stored, err := s.store.Insert(r.Context(), mux.Vars(r)["collection"], doc)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (s *server) handleGet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doc, err := s.store.Get(r.Context(), vars["collection"], vars["id"])
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	doc, ok := decodeBody(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	stored, err := s.store.Replace(r.Context(), vars["collection"], vars["id"], doc)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

func (s *server) handleDelete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.store.Remove(r.Context(), vars["collection"], vars["id"]); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": []string{vars["id"]}})
}

func (s *server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.APIKey != "" && r.URL.Query().Get("apikey") != s.opts.APIKey {
			writeError(w, http.StatusUnauthorized, "invalid apikey")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Latency > 0 {
			time.Sleep(s.opts.Latency)
		}
		if s.opts.Fail.Rate > 0 && s.opts.Rand() < s.opts.Fail.Rate {
			code := s.opts.Fail.Code
			if code == 0 {
				code = http.StatusInternalServerError
			}
			writeError(w, code, "failure injected")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.opts.Logger.Info("sandbox request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	defer r.Body.Close()
	var doc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil || doc == nil {
		writeError(w, http.StatusBadRequest, "body must be a JSON object")
		return nil, false
	}
	return doc, true
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, mock.ErrNotFound) {
		writeError(w, http.StatusNotFound, "document not found")
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

// ParseFailConfig parses "rate=<float>,code=<httpStatus>".
func ParseFailConfig(raw string) (FailConfig, error) {
	if strings.TrimSpace(raw) == "" {
		return FailConfig{}, nil
	}
	cfg := FailConfig{Code: http.StatusInternalServerError}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		keyVal := strings.SplitN(part, "=", 2)
		if len(keyVal) != 2 {
			return FailConfig{}, errors.Newf("invalid fail segment %q", part)
		}
		val := strings.TrimSpace(keyVal[1])
		switch strings.TrimSpace(keyVal[0]) {
		case "rate":
			rate, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return FailConfig{}, errors.Wrapf(err, "parse fail rate %q", val)
			}
			cfg.Rate = rate
		case "code":
			code, err := strconv.Atoi(val)
			if err != nil {
				return FailConfig{}, errors.Wrapf(err, "parse fail code %q", val)
			}
			cfg.Code = code
		default:
			return FailConfig{}, errors.Newf("unknown fail key %q", keyVal[0])
		}
	}
	return cfg, nil
}
