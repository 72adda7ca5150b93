// Package normalize turns a provider document into the canonical page/element
// model: coordinate normalization, label classification, table rendering, and
// page assembly with reading-order inference.
package normalize

import (
	"math"

	"github.com/bmarkwell/docslice/internal/model"
	"github.com/bmarkwell/docslice/internal/provider"
)

// BBox converts a provider-native box into a canonical axis-aligned rectangle
// in page pixels, origin top-left. Both native conventions reduce to the same
// math once decoded: x and y take the minimum edge, width and height the
// absolute difference, so the result never has negative extent. There is no
// error path; a malformed box decodes as a zero-area rectangle.
func BBox(raw provider.RawBBox, pageNo int) model.BoundingBox {
	if raw.Kind == provider.BBoxEmpty {
		return model.BoundingBox{Page: pageNo}
	}
	return model.BoundingBox{
		Page:   pageNo,
		X:      math.Min(raw.X0, raw.X1),
		Y:      math.Min(raw.Y0, raw.Y1),
		Width:  math.Abs(raw.X1 - raw.X0),
		Height: math.Abs(raw.Y1 - raw.Y0),
	}
}
