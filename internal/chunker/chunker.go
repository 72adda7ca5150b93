// Package chunker partitions assembled pages into token-bounded, overlap-aware
// chunks for retrieval. It streams the reading-order element sequence across
// all pages and greedily bin-packs it, keeping headings at chunk starts and
// tables whole, while every chunk carries the bounding boxes of the elements
// that contributed to it.
package chunker

import (
	"fmt"
	"strings"

	"github.com/bmarkwell/docslice/internal/model"
)

// joiner separates element contents within one chunk's text.
const joiner = "\n\n"

// Options controls chunking behavior.
type Options struct {
	MaxTokensPerChunk int    // Chunk token budget.
	OverlapTokens     int    // Trailing tokens carried into the next chunk.
	RespectHeadings   bool   // Start a new chunk at every heading.
	PreserveTables    bool   // Never split a table across chunks.
	IDPrefix          string // Prefix for generated chunk IDs.
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		MaxTokensPerChunk: 500,
		OverlapTokens:     50,
		RespectHeadings:   true,
		PreserveTables:    true,
		IDPrefix:          "chunk",
	}
}

// placed is one element in the running buffer, with its precomputed token
// estimate and whether it was carried over as overlap from the previous chunk.
type placed struct {
	el      model.PageElement
	tokens  int
	overlap bool
}

// Chunk walks the pages in reading order and emits chunks. An empty page
// sequence yields no chunks. Elements are never split mid-content (their bbox
// provenance is per-element), so a single element larger than the budget is
// emitted whole as an oversized singleton.
func Chunk(pages []model.PageContent, opts Options) []model.Chunk {
	if opts.MaxTokensPerChunk <= 0 {
		opts.MaxTokensPerChunk = 500
	}
	if opts.IDPrefix == "" {
		opts.IDPrefix = "chunk"
	}

	var chunks []model.Chunk
	var buf []placed

	emit := func(b []placed) {
		if len(b) == 0 {
			return
		}
		chunks = append(chunks, finalize(b, opts.IDPrefix, len(chunks)))
	}

	for _, page := range pages {
		for _, el := range page.Elements {
			p := placed{el: el, tokens: EstimateTokens(el.Content)}

			switch {
			case opts.RespectHeadings && el.Type == model.ElementHeading && len(buf) > 0:
				// Headings open sections; the new chunk starts with
				// the heading itself, so no overlap is carried.
				emit(buf)
				buf = []placed{p}

			case len(buf) > 0 && exceeds(buf, p, opts.MaxTokensPerChunk):
				if el.Type == model.ElementTable && opts.PreserveTables {
					// Close early and give the table its own chunk,
					// oversized or not. Splitting a table destroys it
					// for retrieval.
					emit(buf)
					emit([]placed{p})
					buf = nil
				} else {
					emit(buf)
					seed := carryOverlap(buf, opts)
					// The seeded buffer must honor the budget too. Shed
					// overlap from the oldest end until the new element
					// fits; the element itself is never trimmed.
					for len(seed) > 0 && exceeds(seed, p, opts.MaxTokensPerChunk) {
						seed = seed[1:]
					}
					buf = append(seed, p)
				}

			default:
				buf = append(buf, p)
			}
		}
	}
	emit(buf)

	return chunks
}

// exceeds reports whether appending next to the buffer would push the chunk's
// token estimate past the budget. The check runs against the estimate of the
// joined text the chunk would actually have, so the emitted TokenEstimate can
// never contradict it.
func exceeds(buf []placed, next placed, maxTokens int) bool {
	chars := len(next.el.Content)
	for _, p := range buf {
		chars += len(p.el.Content) + len(joiner)
	}
	return tokensForChars(chars) > maxTokens
}

// carryOverlap selects the trailing elements of a just-closed buffer whose
// token estimates fit within the overlap budget. The copies are marked so the
// next chunk can report how much of its text is carried over; their bboxes end
// up in both chunks. Tables are never carried — duplicating one would break
// table atomicity.
func carryOverlap(buf []placed, opts Options) []placed {
	if opts.OverlapTokens <= 0 {
		return nil
	}
	total := 0
	start := len(buf)
	for i := len(buf) - 1; i >= 0; i-- {
		if buf[i].el.Type == model.ElementTable {
			break
		}
		if total+buf[i].tokens > opts.OverlapTokens {
			break
		}
		total += buf[i].tokens
		start = i
	}

	seed := make([]placed, 0, len(buf)-start)
	for _, p := range buf[start:] {
		p.overlap = true
		seed = append(seed, p)
	}
	return seed
}

// finalize builds the Chunk record for a buffer: joined text, token estimate,
// the (page, bbox) pair of every contributing element including carried
// overlap, and the page range those pairs span.
func finalize(buf []placed, idPrefix string, index int) model.Chunk {
	var sb strings.Builder
	bboxes := make([]model.BBoxRef, 0, len(buf))
	minPage, maxPage := buf[0].el.BBox.Page, buf[0].el.BBox.Page
	containsTable := false
	overlapTokens := 0

	for i, p := range buf {
		if i > 0 {
			sb.WriteString(joiner)
		}
		sb.WriteString(p.el.Content)

		page := p.el.BBox.Page
		bboxes = append(bboxes, model.BBoxRef{Page: page, BBox: p.el.BBox})
		if page < minPage {
			minPage = page
		}
		if page > maxPage {
			maxPage = page
		}
		if p.el.Type == model.ElementTable {
			containsTable = true
		}
		if p.overlap {
			overlapTokens += p.tokens
		}
	}

	text := sb.String()
	return model.Chunk{
		ID:                    fmt.Sprintf("%s-%d", idPrefix, index),
		Text:                  text,
		TokenEstimate:         EstimateTokens(text),
		PageRange:             [2]int{minPage, maxPage},
		BBoxes:                bboxes,
		ContainsTable:         containsTable,
		OverlapTokensFromPrev: overlapTokens,
	}
}
