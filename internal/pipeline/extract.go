// Package pipeline runs the normalization pipeline: synchronously for direct
// API calls, and asynchronously through a worker pool with job tracking.
package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/bmarkwell/docslice/internal/chunker"
	"github.com/bmarkwell/docslice/internal/compose"
	"github.com/bmarkwell/docslice/internal/docinfo"
	"github.com/bmarkwell/docslice/internal/model"
	"github.com/bmarkwell/docslice/internal/normalize"
	"github.com/bmarkwell/docslice/internal/provider"
)

// Phase names the pipeline stage currently running, for job progress.
type Phase string

const (
	PhaseNormalizing Phase = "normalizing"
	PhaseAssembling  Phase = "assembling"
	PhaseChunking    Phase = "chunking"
	PhaseComposing   Phase = "composing"
)

// ExtractParams is one pipeline invocation.
type ExtractParams struct {
	Input        model.ExtractionInput
	Response     *provider.Response
	ChunkOptions chunker.Options
	ProviderName string
	ProbeSource  bool
}

// Extract runs the whole pipeline for one provider response: validate,
// classify, assemble, chunk, compose. It is a pure function of its input —
// no shared state, so any number of documents may run concurrently. onPhase,
// when non-nil, is told as each stage begins.
func Extract(p ExtractParams, onPhase func(Phase)) (model.ExtractionResult, error) {
	start := time.Now()
	phase := func(ph Phase) {
		if onPhase != nil {
			onPhase(ph)
		}
	}

	if err := provider.Validate(&p.Response.Document); err != nil {
		return model.ExtractionResult{}, err
	}

	input := p.Input
	if input.DocumentID == "" {
		input.DocumentID = uuid.NewString()
	}

	phase(PhaseNormalizing)
	seq := normalize.NewSequence()
	placements := normalize.Classify(&p.Response.Document, seq)

	phase(PhaseAssembling)
	pages, dropped := normalize.Assemble(placements, p.Response.Document.Pages)

	phase(PhaseChunking)
	opts := p.ChunkOptions
	if opts.IDPrefix == "" {
		opts.IDPrefix = input.DocumentID
	}
	chunks := chunker.Chunk(pages, opts)

	phase(PhaseComposing)
	var probe docinfo.Info
	if p.ProbeSource {
		probe = docinfo.Probe(input.Source)
	}
	result := compose.Result(compose.Params{
		Input:           input,
		Pages:           pages,
		Chunks:          chunks,
		Dropped:         dropped,
		Markdown:        p.Response.Markdown,
		Origin:          p.Response.Document.Origin,
		Version:         p.Response.Document.Version,
		Provider:        p.ProviderName,
		Elapsed:         time.Since(start),
		ProbedMimeType:  probe.MimeType,
		SourcePageCount: probe.PageCount,
	})
	return result, nil
}
