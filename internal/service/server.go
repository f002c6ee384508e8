package service

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/davidjspooner/asn1kit/internal/dump"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1codec"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
	"github.com/davidjspooner/asn1kit/pkg/logevent"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "requests_total",
	Help: "Total number of requests",
}, []string{"code", "method"})

type Server struct {
	manager *Manager
	logger  *slog.Logger
}

func NewServer(ctx context.Context, configPath string) (*Server, error) {
	s := &Server{
		manager: NewManager(),
		logger:  logevent.LoggerFromContext(ctx),
	}
	err := s.manager.ReloadConfig(ctx, configPath)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func NewServerWithManager(manager *Manager, logger *slog.Logger) *Server {
	return &Server{manager: manager, logger: logger}
}

func (s *Server) Manager() *Manager {
	return s.manager
}

// Routes builds the HTTP API:
//
//	GET  /api/v1/types
//	POST /api/v1/decode/{module}/{type}   BER body, JSON response
//	POST /api/v1/encode/{module}/{type}   JSON body, BER response
//	POST /api/v1/dump                     BER body, TLV listing
//
// Binary bodies and responses may be sent as hex with ?format=hex.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Heartbeat("/health"))
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.withLogger)
	r.Use(func(h http.Handler) http.Handler {
		return promhttp.InstrumentHandlerCounter(requestsTotal, h)
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/types", s.Types)
		r.Post("/decode/{module}/{type}", s.Decode)
		r.Post("/encode/{module}/{type}", s.Encode)
		r.Post("/dump", s.Dump)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, errors.New("not found"))
	})
	return r
}

func (s *Server) withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := s.logger.With("request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(logevent.WithLogger(r.Context(), logger)))
	})
}

func (s *Server) fail(r *http.Request, stats *RequestStats, err error) {
	status := statusFor(err)
	logevent.LoggerFromContext(r.Context()).Warn(stats.operation+" failed",
		logevent.EventAttrKey, stats.operation+".failed",
		"path", r.URL.Path,
		"status", status,
		"error", err)
	writeError(stats, status, err)
}

func (s *Server) Types(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.Types())
}

func (s *Server) Decode(w http.ResponseWriter, r *http.Request) {
	stats := NewRequestStats("decode", w)
	defer stats.Observe()

	t, err := s.manager.Lookup(chi.URLParam(r, "module"), chi.URLParam(r, "type"))
	if err != nil {
		s.fail(r, stats, err)
		return
	}
	data, err := s.readBody(stats, r)
	if err != nil {
		s.fail(r, stats, err)
		return
	}
	v, err := asn1codec.DecodeValue(data, t)
	if err != nil {
		s.fail(r, stats, err)
		return
	}
	j, err := asn1codec.ToJSON(t, v)
	if err != nil {
		s.fail(r, stats, err)
		return
	}
	logevent.LoggerFromContext(r.Context()).Info("decoded value", logevent.EventAttrKey, "decode.ok", "bytes", len(data))
	writeJSON(stats, http.StatusOK, j)
}

func (s *Server) Encode(w http.ResponseWriter, r *http.Request) {
	stats := NewRequestStats("encode", w)
	defer stats.Observe()

	t, err := s.manager.Lookup(chi.URLParam(r, "module"), chi.URLParam(r, "type"))
	if err != nil {
		s.fail(r, stats, err)
		return
	}
	body, err := s.readRaw(stats, r)
	if err != nil {
		s.fail(r, stats, err)
		return
	}
	var j any
	d := json.NewDecoder(bytes.NewReader(body))
	d.UseNumber()
	if err := d.Decode(&j); err != nil {
		s.fail(r, stats, err)
		return
	}
	v, err := asn1codec.FromJSON(t, j)
	if err != nil {
		s.fail(r, stats, err)
		return
	}
	data, err := asn1codec.EncodeValue(t, v)
	if err != nil {
		s.fail(r, stats, err)
		return
	}
	logevent.LoggerFromContext(r.Context()).Info("encoded value", logevent.EventAttrKey, "encode.ok", "bytes", len(data))
	if r.URL.Query().Get("format") == "hex" {
		stats.Header().Set("Content-Type", "text/plain")
		stats.WriteHeader(http.StatusOK)
		io.WriteString(stats, hex.EncodeToString(data)+"\n")
		return
	}
	stats.Header().Set("Content-Type", "application/octet-stream")
	stats.WriteHeader(http.StatusOK)
	stats.Write(data)
}

type dumpEntry struct {
	Depth  int    `json:"depth"`
	Offset int    `json:"offset"`
	Tag    string `json:"tag"`
	Length int    `json:"length"`
	Value  string `json:"value,omitempty"`
}

func (s *Server) Dump(w http.ResponseWriter, r *http.Request) {
	stats := NewRequestStats("dump", w)
	defer stats.Observe()

	data, err := s.readBody(stats, r)
	if err != nil {
		s.fail(r, stats, err)
		return
	}
	entries, err := dump.Walk(data)
	if err != nil {
		s.fail(r, stats, err)
		return
	}
	out := make([]dumpEntry, len(entries))
	for i, e := range entries {
		out[i] = dumpEntry{Depth: e.Depth, Offset: e.Offset, Tag: e.Tag.String(), Length: e.Length, Value: e.Value}
	}
	writeJSON(stats, http.StatusOK, out)
}

func (s *Server) readRaw(stats *RequestStats, r *http.Request) ([]byte, error) {
	return io.ReadAll(stats.Body(r, s.manager.Settings().MaxBodyBytes))
}

// readBody returns the BER payload, decoding it from hex for ?format=hex.
func (s *Server) readBody(stats *RequestStats, r *http.Request) ([]byte, error) {
	body, err := s.readRaw(stats, r)
	if err != nil {
		return nil, err
	}
	if r.URL.Query().Get("format") != "hex" {
		return body, nil
	}
	data, err := hex.DecodeString(strings.Join(strings.Fields(string(body)), ""))
	if err != nil {
		return nil, &badRequestError{err}
	}
	return data, nil
}

type badRequestError struct {
	err error
}

func (e *badRequestError) Error() string { return "invalid hex body: " + e.err.Error() }
func (e *badRequestError) Unwrap() error { return e.err }

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, ErrUnknownType):
		return http.StatusNotFound
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case asn1error.TypeOf(err) != asn1error.UnknownError:
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	response := errorResponse{Error: err.Error()}
	if kind := asn1error.TypeOf(err); kind != asn1error.UnknownError {
		response.Kind = kind.String()
	}
	writeJSON(w, status, response)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	e := json.NewEncoder(w)
	e.SetEscapeHTML(false)
	e.Encode(v)
}
