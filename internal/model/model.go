// Package model defines the canonical page/element/chunk data model that the
// normalization pipeline produces. Everything here is created once per
// extraction and immutable afterwards; stages hand slices downstream and never
// share mutable state.
package model

// BoundingBox is an axis-aligned rectangle in pixel units of its page, origin
// top-left. Width and Height are always non-negative.
type BoundingBox struct {
	Page   int     `json:"page"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Union returns the smallest box covering both b and other. Page is taken
// from the receiver; callers only union boxes on the same page.
func (b BoundingBox) Union(other BoundingBox) BoundingBox {
	minX := b.X
	if other.X < minX {
		minX = other.X
	}
	minY := b.Y
	if other.Y < minY {
		minY = other.Y
	}
	maxX := b.X + b.Width
	if other.X+other.Width > maxX {
		maxX = other.X + other.Width
	}
	maxY := b.Y + b.Height
	if other.Y+other.Height > maxY {
		maxY = other.Y + other.Height
	}
	return BoundingBox{
		Page:   b.Page,
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// ElementType is the closed set of semantic element kinds.
type ElementType string

const (
	ElementText    ElementType = "text"
	ElementHeading ElementType = "heading"
	ElementList    ElementType = "list"
	ElementCode    ElementType = "code"
	ElementFormula ElementType = "formula"
	ElementTable   ElementType = "table"
	ElementImage   ElementType = "image"
)

// PageElement is one classified content item placed on a page.
//
// Order is a document-global, strictly increasing integer assigned at
// classification time, before any page grouping or sorting. It is a stable
// origin-order tie-breaker and provenance id, not reading order.
type PageElement struct {
	Type    ElementType `json:"type"`
	Content string      `json:"content"`
	BBox    BoundingBox `json:"bbox"`
	Order   int         `json:"order"`
	Level   int         `json:"level,omitempty"`     // heading depth, headings only
	Table   *TableData  `json:"tableData,omitempty"` // tables only
}

// TableData is the dense rendering of a provider table.
type TableData struct {
	Rows       [][]string `json:"rows"`
	Markdown   string     `json:"markdown"`
	HeaderRows int        `json:"headerRows"`
}

// PageContent is one assembled page. Elements are in reading order and pages
// are globally sorted ascending by PageNumber before chunking.
type PageContent struct {
	PageNumber int           `json:"pageNumber"` // 1-based
	Width      float64       `json:"width"`
	Height     float64       `json:"height"`
	Elements   []PageElement `json:"elements"`
}

// BBoxRef ties a bounding box to the page it appears on.
type BBoxRef struct {
	Page int         `json:"page"`
	BBox BoundingBox `json:"bbox"`
}

// Chunk is a token-bounded span of document text with the bounding boxes of
// every element that contributed to it, for UI highlighting.
type Chunk struct {
	ID                    string    `json:"id"`
	Text                  string    `json:"text"`
	TokenEstimate         int       `json:"tokenEstimate"`
	PageRange             [2]int    `json:"pageRange"`
	BBoxes                []BBoxRef `json:"bboxes"`
	ContainsTable         bool      `json:"containsTable"`
	OverlapTokensFromPrev int       `json:"overlapTokensFromPrev"`
}

// DroppedElement records a classified element that was discarded because its
// provenance page had no matching dimension entry. The drop itself is silent
// (no error, matching the provider's lossy reality); this side channel exists
// so callers can observe the loss.
type DroppedElement struct {
	Order int    `json:"order"`
	Page  int    `json:"page"`
	Type  string `json:"type"`
}

// ResultContent is the full-document text and markdown of a result.
type ResultContent struct {
	Text     string `json:"text"`
	Markdown string `json:"markdown"`
}

// ResultMetadata describes how the extraction was produced.
type ResultMetadata struct {
	Provider         string `json:"provider"`
	ProcessingTimeMs int64  `json:"processingTimeMs"`
	ModelVersion     string `json:"modelVersion,omitempty"`
	UsedOCR          bool   `json:"usedOcr"`
	// SourcePageCount is the page count probed from the source document
	// itself, when available. PageCount reflects only pages that retained
	// elements, so the two can diverge on malformed provider output.
	SourcePageCount int `json:"sourcePageCount,omitempty"`
}

// ExtractionResult is the final aggregate handed to callers.
type ExtractionResult struct {
	DocumentID string           `json:"documentId"`
	Filename   string           `json:"filename"`
	MimeType   string           `json:"mimeType"`
	PageCount  int              `json:"pageCount"`
	Content    ResultContent    `json:"content"`
	Pages      []PageContent    `json:"pages"`
	Chunks     []Chunk          `json:"chunks"`
	Metadata   ResultMetadata   `json:"metadata"`
	Dropped    []DroppedElement `json:"dropped,omitempty"`
}
