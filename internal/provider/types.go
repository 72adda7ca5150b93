// Package provider defines the wire shape of the layout-extraction provider's
// response and decodes it into a form the normalization pipeline can consume.
// The HTTP client that produces these bytes (auth, signed URLs, timeouts) is an
// external collaborator; this package only owns the document shape.
package provider

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Response is the provider envelope. Markdown is optional; a non-empty Error
// means the provider call itself failed and the whole extraction aborts.
type Response struct {
	Document Document `json:"document"`
	Markdown string   `json:"md,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Document is the provider's layout tree for one document.
type Document struct {
	Pages    PageSet   `json:"pages"`
	Texts    []Text    `json:"texts"`
	Tables   []Table   `json:"tables"`
	Pictures []Picture `json:"pictures"`
	Origin   *Origin   `json:"origin,omitempty"`
	Version  string    `json:"version,omitempty"`
}

// Origin echoes what the provider was given.
type Origin struct {
	MimeType string `json:"mimetype"`
	Filename string `json:"filename"`
}

// Text is one typed text item with its visual placements.
type Text struct {
	Label string `json:"label"`
	Text  string `json:"text"`
	Level int    `json:"level,omitempty"`
	Prov  []Prov `json:"prov"`
}

// Table is a sparse cell grid with its visual placements.
type Table struct {
	Prov []Prov     `json:"prov"`
	Data *TableData `json:"data"`
}

// TableData is the provider's sparse spanning-cell table model.
type TableData struct {
	NumRows int         `json:"num_rows"`
	NumCols int         `json:"num_cols"`
	Cells   []TableCell `json:"table_cells"`
}

// TableCell is one source cell. Spans declare coverage but the renderer
// places text only at the start offsets.
type TableCell struct {
	Text           string `json:"text"`
	RowSpan        int    `json:"row_span"`
	ColSpan        int    `json:"col_span"`
	StartRowOffset int    `json:"start_row_offset_idx"`
	StartColOffset int    `json:"start_col_offset_idx"`
	ColumnHeader   bool   `json:"column_header,omitempty"`
}

// Picture is an image item; only its caption carries text.
type Picture struct {
	Caption string `json:"caption,omitempty"`
	Prov    []Prov `json:"prov"`
}

// Prov is one (page, bbox) placement of an item. CharSpan is passed through
// untouched; nothing downstream consumes it yet.
type Prov struct {
	PageNo   int     `json:"page_no"`
	BBox     RawBBox `json:"bbox"`
	CharSpan []int   `json:"charspan,omitempty"`
}

// BBoxKind tags which coordinate convention a raw box arrived in. The
// decision is made once at decode time, never re-sniffed per call.
type BBoxKind int

const (
	BBoxEmpty BBoxKind = iota
	BBoxLTRB           // left/top/right/bottom
	BBoxXYXY           // x0/y0/x1/y1
)

// RawBBox is the provider-native bounding box, a tagged union of the two
// conventions the provider emits. Missing optional fields are defaulted at
// decode time: t/y0 to 0, r/x1 to l/x0, b/y1 to t/y0, so a malformed box
// degrades to a zero-area rectangle instead of failing.
type RawBBox struct {
	Kind BBoxKind
	// Edge coordinates after defaulting. For LTRB these are l/t/r/b, for
	// XYXY they are x0/y0/x1/y1; the normalizer treats both identically.
	X0, Y0, X1, Y1 float64
}

// UnmarshalJSON decides the convention by the presence of "l" vs "x0".
func (b *RawBBox) UnmarshalJSON(data []byte) error {
	var raw struct {
		L  *float64 `json:"l"`
		T  *float64 `json:"t"`
		R  *float64 `json:"r"`
		B  *float64 `json:"b"`
		X0 *float64 `json:"x0"`
		Y0 *float64 `json:"y0"`
		X1 *float64 `json:"x1"`
		Y1 *float64 `json:"y1"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode bbox: %w", err)
	}

	switch {
	case raw.L != nil:
		b.Kind = BBoxLTRB
		b.X0, b.Y0, b.X1, b.Y1 = defaultEdges(*raw.L, raw.T, raw.R, raw.B)
	case raw.X0 != nil:
		b.Kind = BBoxXYXY
		b.X0, b.Y0, b.X1, b.Y1 = defaultEdges(*raw.X0, raw.Y0, raw.X1, raw.Y1)
	default:
		*b = RawBBox{Kind: BBoxEmpty}
	}
	return nil
}

func defaultEdges(x0 float64, y0, x1, y1 *float64) (float64, float64, float64, float64) {
	top := 0.0
	if y0 != nil {
		top = *y0
	}
	right := x0
	if x1 != nil {
		right = *x1
	}
	bottom := top
	if y1 != nil {
		bottom = *y1
	}
	return x0, top, right, bottom
}

// PageDim is one page's pixel dimensions.
type PageDim struct {
	PageNo int     `json:"page_no"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// PageSet holds per-page dimensions. The provider returns either an array of
// page records or an object keyed by page number; both decode into the same
// map form here.
type PageSet struct {
	dims map[int]PageDim
}

type pageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type pageRecord struct {
	PageNo int       `json:"page_no"`
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
	Size   *pageSize `json:"size"`
}

// UnmarshalJSON accepts both container shapes.
func (p *PageSet) UnmarshalJSON(data []byte) error {
	p.dims = make(map[int]PageDim)

	var list []pageRecord
	if err := json.Unmarshal(data, &list); err == nil {
		for _, rec := range list {
			dim := PageDim{PageNo: rec.PageNo, Width: rec.Width, Height: rec.Height}
			if rec.Size != nil {
				dim.Width = rec.Size.Width
				dim.Height = rec.Size.Height
			}
			p.dims[dim.PageNo] = dim
		}
		return nil
	}

	var byNo map[string]pageRecord
	if err := json.Unmarshal(data, &byNo); err != nil {
		return fmt.Errorf("decode pages: %w", err)
	}
	for key, rec := range byNo {
		no, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("decode pages: page key %q is not a number", key)
		}
		dim := PageDim{PageNo: no, Width: rec.Width, Height: rec.Height}
		if rec.Size != nil {
			dim.Width = rec.Size.Width
			dim.Height = rec.Size.Height
		}
		p.dims[no] = dim
	}
	return nil
}

// MarshalJSON always emits the array form, sorted by page number.
func (p PageSet) MarshalJSON() ([]byte, error) {
	out := make([]PageDim, 0, len(p.dims))
	for _, dim := range p.dims {
		out = append(out, dim)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PageNo < out[j].PageNo })
	return json.Marshal(out)
}

// Lookup returns the dimensions of a page, if the provider reported them.
func (p PageSet) Lookup(pageNo int) (PageDim, bool) {
	dim, ok := p.dims[pageNo]
	return dim, ok
}

// Len returns the number of pages the provider reported dimensions for.
func (p PageSet) Len() int {
	return len(p.dims)
}

// FromDims builds a PageSet directly; used by tests and callers that already
// hold normalized dimensions.
func FromDims(dims []PageDim) PageSet {
	set := PageSet{dims: make(map[int]PageDim, len(dims))}
	for _, d := range dims {
		set.dims[d.PageNo] = d
	}
	return set
}
