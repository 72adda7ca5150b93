package pipeline

import (
	"strings"
	"testing"

	"github.com/bmarkwell/docslice/internal/chunker"
	"github.com/bmarkwell/docslice/internal/model"
	"github.com/bmarkwell/docslice/internal/provider"
)

// sampleResponse builds a small two-page document: a heading and paragraph on
// page 1, a 2x2 table on page 2.
func sampleResponse(t *testing.T) *provider.Response {
	t.Helper()
	data := []byte(`{
		"document": {
			"pages": [
				{"page_no": 1, "size": {"width": 600, "height": 800}},
				{"page_no": 2, "size": {"width": 600, "height": 800}}
			],
			"texts": [
				{"label": "section_header", "text": "Agreement", "level": 1,
				 "prov": [{"page_no": 1, "bbox": {"l": 50, "t": 50, "r": 550, "b": 80}}]},
				{"label": "paragraph", "text": "This agreement is made between the parties.",
				 "prov": [{"page_no": 1, "bbox": {"l": 50, "t": 100, "r": 550, "b": 200}}]}
			],
			"tables": [
				{"prov": [{"page_no": 2, "bbox": {"l": 50, "t": 50, "r": 550, "b": 300}}],
				 "data": {"num_rows": 2, "num_cols": 2, "table_cells": [
					{"text": "Item", "start_row_offset_idx": 0, "start_col_offset_idx": 0, "column_header": true},
					{"text": "Amount", "start_row_offset_idx": 0, "start_col_offset_idx": 1, "column_header": true},
					{"text": "Rent", "start_row_offset_idx": 1, "start_col_offset_idx": 0},
					{"text": "1200", "start_row_offset_idx": 1, "start_col_offset_idx": 1}
				 ]}}
			]
		},
		"md": "# Agreement\n\nThis agreement is made between the parties."
	}`)
	resp, err := provider.Decode(data)
	if err != nil {
		t.Fatalf("decode sample: %v", err)
	}
	return resp
}

func TestExtract_EndToEnd(t *testing.T) {
	var phases []Phase
	opts := chunker.DefaultOptions()
	opts.MaxTokensPerChunk = 20 // force the table out of the text chunk
	result, err := Extract(ExtractParams{
		Input:        model.ExtractionInput{DocumentID: "doc-1", Filename: "lease.pdf"},
		Response:     sampleResponse(t),
		ChunkOptions: opts,
		ProviderName: "docling",
	}, func(ph Phase) { phases = append(phases, ph) })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.PageCount != 2 || len(result.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", result.PageCount)
	}

	page1 := result.Pages[0]
	if page1.PageNumber != 1 || len(page1.Elements) != 2 {
		t.Fatalf("page 1 wrong: %+v", page1)
	}
	if page1.Elements[0].Type != model.ElementHeading || page1.Elements[0].Content != "Agreement" {
		t.Errorf("expected heading first, got %+v", page1.Elements[0])
	}
	if page1.Elements[1].Type != model.ElementText {
		t.Errorf("expected paragraph second, got %+v", page1.Elements[1])
	}

	// The normalized heading box: LTRB {50,50,550,80} -> origin (50,50), 500x30.
	hb := page1.Elements[0].BBox
	if hb.X != 50 || hb.Y != 50 || hb.Width != 500 || hb.Height != 30 {
		t.Errorf("heading bbox wrong: %+v", hb)
	}

	page2 := result.Pages[1]
	if len(page2.Elements) != 1 || page2.Elements[0].Type != model.ElementTable {
		t.Fatalf("page 2 should hold only the table, got %+v", page2.Elements)
	}
	if !strings.Contains(page2.Elements[0].Content, "| Item | Amount |") {
		t.Errorf("table markdown wrong: %q", page2.Elements[0].Content)
	}

	if len(result.Chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(result.Chunks))
	}
	tableChunk := result.Chunks[1]
	if !tableChunk.ContainsTable || result.Chunks[0].ContainsTable {
		t.Errorf("table should live alone in the second chunk")
	}
	if len(tableChunk.BBoxes) != 1 || tableChunk.BBoxes[0].Page != 2 {
		t.Errorf("table chunk should carry exactly its own page-2 bbox, got %+v", tableChunk.BBoxes)
	}
	if tableChunk.PageRange != [2]int{2, 2} {
		t.Errorf("table chunk page range wrong: %v", tableChunk.PageRange)
	}

	if result.Content.Markdown != "# Agreement\n\nThis agreement is made between the parties." {
		t.Errorf("provider markdown should pass through, got %q", result.Content.Markdown)
	}
	if !strings.Contains(result.Content.Text, "Agreement") {
		t.Errorf("full text missing content: %q", result.Content.Text)
	}
	if result.Metadata.Provider != "docling" {
		t.Errorf("expected provider docling, got %q", result.Metadata.Provider)
	}

	wantPhases := []Phase{PhaseNormalizing, PhaseAssembling, PhaseChunking, PhaseComposing}
	if len(phases) != len(wantPhases) {
		t.Fatalf("expected %d phases, got %v", len(wantPhases), phases)
	}
	for i, ph := range wantPhases {
		if phases[i] != ph {
			t.Errorf("phase %d: expected %s, got %s", i, ph, phases[i])
		}
	}
}

func TestExtract_DefaultsDocumentID(t *testing.T) {
	opts := chunker.DefaultOptions()
	opts.IDPrefix = ""
	result, err := Extract(ExtractParams{
		Response:     sampleResponse(t),
		ChunkOptions: opts,
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DocumentID == "" {
		t.Error("expected a generated document id")
	}
	for _, c := range result.Chunks {
		if !strings.HasPrefix(c.ID, result.DocumentID+"-") {
			t.Errorf("chunk id %q not derived from document id %q", c.ID, result.DocumentID)
		}
	}
}

func TestExtract_OrphanedProvenanceDropped(t *testing.T) {
	data := []byte(`{
		"document": {
			"pages": [{"page_no": 1, "width": 600, "height": 800}],
			"texts": [
				{"label": "paragraph", "text": "kept", "prov": [{"page_no": 1, "bbox": {"l": 0, "t": 0, "r": 10, "b": 10}}]},
				{"label": "paragraph", "text": "orphan", "prov": [{"page_no": 7, "bbox": {"l": 0, "t": 0, "r": 10, "b": 10}}]}
			]
		}
	}`)
	resp, err := provider.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	result, err := Extract(ExtractParams{
		Input:        model.ExtractionInput{DocumentID: "doc-1"},
		Response:     resp,
		ChunkOptions: chunker.DefaultOptions(),
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PageCount != 1 {
		t.Errorf("expected 1 retained page, got %d", result.PageCount)
	}
	if len(result.Dropped) != 1 || result.Dropped[0].Page != 7 {
		t.Errorf("expected one drop record for page 7, got %+v", result.Dropped)
	}
	if strings.Contains(result.Content.Text, "orphan") {
		t.Errorf("dropped element leaked into text: %q", result.Content.Text)
	}
}

func TestExtract_MalformedDocument(t *testing.T) {
	_, err := Extract(ExtractParams{
		Response:     &provider.Response{},
		ChunkOptions: chunker.DefaultOptions(),
	}, nil)
	if err == nil {
		t.Fatal("expected validation error for a document with no pages")
	}
}
