package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bmarkwell/docslice/internal/chunker"
	"github.com/bmarkwell/docslice/internal/export"
	"github.com/bmarkwell/docslice/internal/model"
	"github.com/bmarkwell/docslice/internal/pipeline"
	"github.com/bmarkwell/docslice/internal/provider"
)

// extractRequest is the body of both extract endpoints: the input descriptor
// the provider caller already holds, the raw provider envelope, and optional
// chunking overrides.
type extractRequest struct {
	Input    model.ExtractionInput `json:"input"`
	Response json.RawMessage       `json:"response"`
	Chunking *chunkingOverrides    `json:"chunking,omitempty"`
}

type chunkingOverrides struct {
	MaxTokensPerChunk int   `json:"maxTokensPerChunk,omitempty"`
	OverlapTokens     *int  `json:"overlapTokens,omitempty"`
	RespectHeadings   *bool `json:"respectHeadings,omitempty"`
	PreserveTables    *bool `json:"preserveTables,omitempty"`
}

// decodeExtractRequest parses and validates the request into pipeline params.
func (s *Server) decodeExtractRequest(w http.ResponseWriter, r *http.Request) (pipeline.ExtractParams, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		jsonError(w, "read body: "+err.Error(), http.StatusBadRequest)
		return pipeline.ExtractParams{}, false
	}

	var req extractRequest
	if err := json.Unmarshal(body, &req); err != nil {
		jsonError(w, "invalid request: "+err.Error(), http.StatusBadRequest)
		return pipeline.ExtractParams{}, false
	}
	if len(req.Response) == 0 {
		jsonError(w, "response is required", http.StatusBadRequest)
		return pipeline.ExtractParams{}, false
	}

	resp, err := provider.Decode(req.Response)
	if err != nil {
		jsonError(w, err.Error(), providerErrorStatus(err))
		return pipeline.ExtractParams{}, false
	}

	opts := chunker.Options{
		MaxTokensPerChunk: s.cfg.MaxTokensPerChunk,
		OverlapTokens:     s.cfg.OverlapTokens,
		RespectHeadings:   s.cfg.RespectHeadings,
		PreserveTables:    s.cfg.PreserveTables,
	}
	if c := req.Chunking; c != nil {
		if c.MaxTokensPerChunk > 0 {
			opts.MaxTokensPerChunk = c.MaxTokensPerChunk
		}
		if c.OverlapTokens != nil && *c.OverlapTokens >= 0 {
			opts.OverlapTokens = *c.OverlapTokens
		}
		if c.RespectHeadings != nil {
			opts.RespectHeadings = *c.RespectHeadings
		}
		if c.PreserveTables != nil {
			opts.PreserveTables = *c.PreserveTables
		}
	}

	return pipeline.ExtractParams{
		Input:        req.Input,
		Response:     resp,
		ChunkOptions: opts,
		ProviderName: s.cfg.ProviderName,
		ProbeSource:  s.cfg.ProbeSources,
	}, true
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	params, ok := s.decodeExtractRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	result, err := pipeline.Extract(params, nil)
	s.orchestrator.RecordRun(time.Since(start))
	if err != nil {
		jsonError(w, err.Error(), providerErrorStatus(err))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleExtractAsync(w http.ResponseWriter, r *http.Request) {
	params, ok := s.decodeExtractRequest(w, r)
	if !ok {
		return
	}

	job := pipeline.NewJob(params)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":      job.ID,
		"document_id": job.DocumentID,
		"status":      job.Status,
		"poll_url":    fmt.Sprintf("/api/extract/%s/status", job.ID),
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	result := job.Result()
	if result == nil {
		jsonError(w, fmt.Sprintf("job is %s", job.Snapshot().Status), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleJobHTML(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	result := job.Result()
	if result == nil {
		jsonError(w, fmt.Sprintf("job is %s", job.Snapshot().Status), http.StatusConflict)
		return
	}

	rendered, err := export.HTML(result.Content.Markdown)
	if err != nil {
		jsonError(w, "render html: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(rendered))
}

// providerErrorStatus maps pipeline errors onto response codes: a provider
// failure or malformed document is the upstream's fault, not the caller's.
func providerErrorStatus(err error) int {
	var malformed *provider.MalformedError
	if errors.As(err, &malformed) || errors.Is(err, provider.ErrProvider) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
