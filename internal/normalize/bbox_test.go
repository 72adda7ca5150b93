package normalize

import (
	"encoding/json"
	"testing"

	"github.com/bmarkwell/docslice/internal/provider"
)

func decodeBox(t *testing.T, raw string) provider.RawBBox {
	t.Helper()
	var b provider.RawBBox
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		t.Fatalf("decode bbox %s: %v", raw, err)
	}
	return b
}

func TestBBox_LTRBConvention(t *testing.T) {
	raw := decodeBox(t, `{"l": 50, "t": 100, "r": 550, "b": 200}`)
	box := BBox(raw, 1)

	if box.Page != 1 {
		t.Errorf("expected page 1, got %d", box.Page)
	}
	if box.X != 50 || box.Y != 100 {
		t.Errorf("expected origin (50,100), got (%v,%v)", box.X, box.Y)
	}
	if box.Width != 500 || box.Height != 100 {
		t.Errorf("expected 500x100, got %vx%v", box.Width, box.Height)
	}
}

func TestBBox_XYXYConvention(t *testing.T) {
	raw := decodeBox(t, `{"x0": 50, "y0": 100, "x1": 550, "y1": 200}`)
	box := BBox(raw, 2)

	if box.X != 50 || box.Y != 100 || box.Width != 500 || box.Height != 100 {
		t.Errorf("unexpected box: %+v", box)
	}
}

func TestBBox_BothConventionsAgree(t *testing.T) {
	ltrb := BBox(decodeBox(t, `{"l": 10, "t": 20, "r": 110, "b": 70}`), 1)
	xyxy := BBox(decodeBox(t, `{"x0": 10, "y0": 20, "x1": 110, "y1": 70}`), 1)

	if ltrb != xyxy {
		t.Errorf("conventions diverge: %+v vs %+v", ltrb, xyxy)
	}
}

func TestBBox_InvertedEdgesStayNonNegative(t *testing.T) {
	// Edges swapped: the normalized box must still have the min corner as
	// origin and non-negative extent.
	raw := decodeBox(t, `{"l": 550, "t": 200, "r": 50, "b": 100}`)
	box := BBox(raw, 1)

	if box.X != 50 || box.Y != 100 {
		t.Errorf("expected origin (50,100), got (%v,%v)", box.X, box.Y)
	}
	if box.Width < 0 || box.Height < 0 {
		t.Errorf("negative extent: %vx%v", box.Width, box.Height)
	}
}

func TestBBox_MissingFieldsDefault(t *testing.T) {
	// Only "l" present: t defaults to 0, r to l, b to t. Zero-area box at
	// (l, 0).
	raw := decodeBox(t, `{"l": 75}`)
	box := BBox(raw, 1)

	if box.X != 75 || box.Y != 0 {
		t.Errorf("expected origin (75,0), got (%v,%v)", box.X, box.Y)
	}
	if box.Width != 0 || box.Height != 0 {
		t.Errorf("expected zero area, got %vx%v", box.Width, box.Height)
	}
}

func TestBBox_EmptyBox(t *testing.T) {
	raw := decodeBox(t, `{}`)
	if raw.Kind != provider.BBoxEmpty {
		t.Fatalf("expected empty kind, got %v", raw.Kind)
	}

	box := BBox(raw, 3)
	if box.Page != 3 {
		t.Errorf("expected page 3, got %d", box.Page)
	}
	if box.X != 0 || box.Y != 0 || box.Width != 0 || box.Height != 0 {
		t.Errorf("expected zero box, got %+v", box)
	}
}
