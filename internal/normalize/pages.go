package normalize

import (
	"math"
	"sort"

	"github.com/bmarkwell/docslice/internal/model"
	"github.com/bmarkwell/docslice/internal/provider"
)

// bandEpsilon is the fraction of page height within which two elements count
// as vertically "on the same line" and sort by x instead of y.
const bandEpsilon = 0.02

// Assemble groups placements by page, normalizes their bounding boxes, sorts
// each page into reading order, and returns the pages sorted by number.
//
// A placement whose page has no dimension entry is dropped without error —
// the original system loses such elements invisibly, and failing instead
// would change observable output. The returned DroppedElement slice is the
// side channel that makes the loss observable.
func Assemble(placements []Placement, pages provider.PageSet) ([]model.PageContent, []model.DroppedElement) {
	byPage := make(map[int][]model.PageElement)
	var dropped []model.DroppedElement

	for _, p := range placements {
		if _, ok := pages.Lookup(p.PageNo); !ok {
			dropped = append(dropped, model.DroppedElement{
				Order: p.Order,
				Page:  p.PageNo,
				Type:  string(p.Type),
			})
			continue
		}
		byPage[p.PageNo] = append(byPage[p.PageNo], model.PageElement{
			Type:    p.Type,
			Content: p.Content,
			BBox:    BBox(p.BBox, p.PageNo),
			Order:   p.Order,
			Level:   p.Level,
			Table:   p.Table,
		})
	}

	out := make([]model.PageContent, 0, len(byPage))
	for pageNo, elements := range byPage {
		dim, _ := pages.Lookup(pageNo)
		sortReadingOrder(elements, dim.Height)
		out = append(out, model.PageContent{
			PageNumber: pageNo,
			Width:      dim.Width,
			Height:     dim.Height,
			Elements:   elements,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PageNumber < out[j].PageNumber })
	return out, dropped
}

// sortReadingOrder applies the banded top-to-bottom, left-to-right sort:
// elements whose vertical positions differ by more than ε of the page height
// order by y; within a band they order by x. The sort is stable, so the
// arrival order breaks any remaining ties.
func sortReadingOrder(elements []model.PageElement, pageHeight float64) {
	eps := bandEpsilon * pageHeight
	sort.SliceStable(elements, func(i, j int) bool {
		dy := elements[i].BBox.Y - elements[j].BBox.Y
		if math.Abs(dy) > eps {
			return dy < 0
		}
		return elements[i].BBox.X < elements[j].BBox.X
	})
}
