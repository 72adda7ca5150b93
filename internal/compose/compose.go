// Package compose assembles the final extraction result from the pipeline
// stage outputs. It owns the aggregate exclusively; earlier stages hand their
// slices over and never touch them again.
package compose

import (
	"strings"
	"time"

	"github.com/bmarkwell/docslice/internal/export"
	"github.com/bmarkwell/docslice/internal/model"
	"github.com/bmarkwell/docslice/internal/provider"
)

// Params carries everything the composer needs from the stages and the
// original request.
type Params struct {
	Input    model.ExtractionInput
	Pages    []model.PageContent
	Chunks   []model.Chunk
	Dropped  []model.DroppedElement
	Markdown string // provider-returned markdown, may be empty
	Origin   *provider.Origin
	Version  string // provider model version
	Provider string // provider name for metadata

	Elapsed time.Duration

	// Probe results; zero values mean the probe had nothing to say.
	ProbedMimeType  string
	SourcePageCount int
}

// Result builds the ExtractionResult.
//
// PageCount counts the assembled pages, i.e. pages that actually retained
// elements after the orphaned-provenance drop — not necessarily the
// provider's original page count. SourcePageCount in the metadata carries the
// probed original when available.
func Result(p Params) model.ExtractionResult {
	filename := p.Input.Filename
	if filename == "" && p.Origin != nil {
		filename = p.Origin.Filename
	}

	mimeType := p.ProbedMimeType
	if p.Origin != nil && p.Origin.MimeType != "" {
		mimeType = p.Origin.MimeType
	}

	text := fullText(p.Pages)
	if text == "" && p.Markdown != "" {
		// Nothing survived assembly but the provider still produced
		// markdown; derive the plain text from it rather than
		// returning an empty document.
		text = export.PlainText(p.Markdown)
	}

	markdown := p.Markdown
	if markdown == "" {
		markdown = text
	}

	usedOCR := true
	if p.Input.Options != nil && p.Input.Options.SkipOCR {
		usedOCR = false
	}

	return model.ExtractionResult{
		DocumentID: p.Input.DocumentID,
		Filename:   filename,
		MimeType:   mimeType,
		PageCount:  len(p.Pages),
		Content: model.ResultContent{
			Text:     text,
			Markdown: markdown,
		},
		Pages:  p.Pages,
		Chunks: p.Chunks,
		Metadata: model.ResultMetadata{
			Provider:         p.Provider,
			ProcessingTimeMs: p.Elapsed.Milliseconds(),
			ModelVersion:     p.Version,
			UsedOCR:          usedOCR,
			SourcePageCount:  p.SourcePageCount,
		},
		Dropped: p.Dropped,
	}
}

// fullText concatenates every element's content in page-then-reading order,
// joined by blank lines.
func fullText(pages []model.PageContent) string {
	var sb strings.Builder
	for _, page := range pages {
		for _, el := range page.Elements {
			if el.Content == "" {
				continue
			}
			if sb.Len() > 0 {
				sb.WriteString("\n\n")
			}
			sb.WriteString(el.Content)
		}
	}
	return sb.String()
}
