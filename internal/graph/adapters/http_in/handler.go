// Package httpin serves the chart analysis use case over JSON HTTP.
package httpin

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nathantilsley/chart-graph/api"
	gitcheckout "github.com/nathantilsley/chart-graph/internal/graph/adapters/git_checkout"
	"github.com/nathantilsley/chart-graph/internal/graph/domain"
	"github.com/nathantilsley/chart-graph/internal/graph/layout"
	"github.com/nathantilsley/chart-graph/internal/graph/ports"
)

const (
	// DefaultMaxBodyBytes caps request bodies when Options.MaxBodyBytes is unset.
	DefaultMaxBodyBytes = 10 << 20
	// DefaultMaxConcurrent caps in-flight analyses when Options.MaxConcurrent is unset.
	DefaultMaxConcurrent = 4
)

// SnapshotSource exposes the latest synced repository snapshot.
type SnapshotSource interface {
	Snapshot() (gitcheckout.Snapshot, error)
}

// Options configures a Handler.
type Options struct {
	MaxBodyBytes  int64
	MaxConcurrent int
	Layout        layout.Config
	// Repo is optional; without it GET /api/repo answers 404.
	Repo SnapshotSource
}

// Handler serves the analysis endpoints.
type Handler struct {
	useCase      ports.AnalyzeUseCase
	repo         SnapshotSource
	layout       layout.Config
	maxBodyBytes int64
	logger       *slog.Logger
	sem          chan struct{}
}

// NewHandler creates a new HTTP handler.
func NewHandler(uc ports.AnalyzeUseCase, logger *slog.Logger, opts Options) *Handler {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	return &Handler{
		useCase:      uc,
		repo:         opts.Repo,
		layout:       opts.Layout.WithDefaults(),
		maxBodyBytes: opts.MaxBodyBytes,
		logger:       logger,
		sem:          make(chan struct{}, opts.MaxConcurrent),
	}
}

// Register mounts the handler's routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/analyze", h.Analyze)
	mux.HandleFunc("POST /api/filter", h.Filter)
	mux.HandleFunc("POST /api/diff", h.Diff)
	mux.HandleFunc("GET /api/repo", h.Repo)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

// Analyze runs the full pipeline over the uploaded files.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req api.AnalyzeRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !h.acquire(w, r) {
		return
	}
	defer h.release()

	analysis, err := h.useCase.Analyze(r.Context(), req.Files, req.Layout)
	if err != nil {
		h.fail(w, err)
		return
	}

	cfg := h.layout
	if req.Layout != nil {
		cfg = req.Layout.WithDefaults()
	}
	writeJSON(w, http.StatusOK, toAnalyzeResponse(analysis, cfg))
}

// Filter returns the subgraph around one file of the uploaded chart.
func (h *Handler) Filter(w http.ResponseWriter, r *http.Request) {
	var req api.FilterRequest
	if !h.decode(w, r, &req) {
		return
	}
	if req.File == "" {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	if !h.acquire(w, r) {
		return
	}
	defer h.release()

	g, err := h.useCase.Filter(r.Context(), req.Files, req.File)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.FilterResponse{Graph: g, Stats: domain.ComputeStats(g)})
}

// Diff compares the references of two uploaded charts.
func (h *Handler) Diff(w http.ResponseWriter, r *http.Request) {
	var req api.DiffRequest
	if !h.decode(w, r, &req) {
		return
	}
	if !h.acquire(w, r) {
		return
	}
	defer h.release()

	cmp, err := h.useCase.Compare(r.Context(), req.Base, req.Head)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.DiffResponse{Comparison: cmp})
}

// Repo analyzes the chart from the synced git repository.
func (h *Handler) Repo(w http.ResponseWriter, r *http.Request) {
	if h.repo == nil {
		writeError(w, http.StatusNotFound, "no chart repository configured")
		return
	}
	snap, err := h.repo.Snapshot()
	if err != nil {
		if errors.Is(err, gitcheckout.ErrNotSynced) {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		h.fail(w, err)
		return
	}
	if !h.acquire(w, r) {
		return
	}
	defer h.release()

	analysis, err := h.useCase.Analyze(r.Context(), snap.Files, nil)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.RepoResponse{
		Head:            snap.Head,
		SyncedAt:        snap.SyncedAt,
		AnalyzeResponse: toAnalyzeResponse(analysis, h.layout),
	})
}

func toAnalyzeResponse(a domain.Analysis, cfg layout.Config) api.AnalyzeResponse {
	return api.AnalyzeResponse{
		Fingerprint: a.Fingerprint,
		Chart:       a.Chart,
		Graph:       a.Graph,
		Stats:       a.Stats,
		Bounds:      layout.Bounds(a.Graph.Nodes, cfg),
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		h.logger.Debug("invalid request body", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// acquire waits for a free analysis slot or gives up when the client does.
func (h *Handler) acquire(w http.ResponseWriter, r *http.Request) bool {
	select {
	case h.sem <- struct{}{}:
		return true
	case <-r.Context().Done():
		writeError(w, http.StatusServiceUnavailable, "request cancelled while waiting for an analysis slot")
		return false
	}
}

func (h *Handler) release() { <-h.sem }

func (h *Handler) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNoChartFile):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrInvalidLayout):
		writeError(w, http.StatusBadRequest, err.Error())
	case domain.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// writeJSON encodes before writing the header so an unencodable payload
// becomes a 500 rather than an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(api.ErrorResponse{Error: "encoding response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.ErrorResponse{Error: msg})
}
