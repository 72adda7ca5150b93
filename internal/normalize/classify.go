package normalize

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bmarkwell/docslice/internal/model"
	"github.com/bmarkwell/docslice/internal/provider"
)

// Sequence is the document-scoped order counter. Classification owns one per
// extraction; the values it hands out become PageElement.Order, a provenance
// id recording arrival order before any sorting.
type Sequence struct {
	mu   sync.Mutex
	next int
}

// NewSequence starts a counter at zero.
func NewSequence() *Sequence {
	return &Sequence{}
}

// Next returns the next order value.
func (s *Sequence) Next() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.next
	s.next++
	return n
}

// Take reserves a contiguous block of n order values and returns the first.
// Lets the classify fan-out keep deterministic arrival order while the three
// source arrays are processed concurrently.
func (s *Sequence) Take(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := s.next
	s.next += n
	return start
}

// Placement is one classified element pinned to a single provenance entry.
// Items with provenance on several pages yield one placement per page. The
// bbox is still provider-native; the assembler normalizes it once page
// dimensions are known.
type Placement struct {
	Type    model.ElementType
	Content string
	Level   int
	Table   *model.TableData
	Order   int
	PageNo  int
	BBox    provider.RawBBox
}

// labelTypes maps provider text labels onto the closed element-type set.
// Anything unlisted (paragraph, caption, footnote, the lot) is plain text.
var labelTypes = map[string]model.ElementType{
	"section_header": model.ElementHeading,
	"title":          model.ElementHeading,
	"list_item":      model.ElementList,
	"code":           model.ElementCode,
	"formula":        model.ElementFormula,
}

// MapLabel classifies a provider text label.
func MapLabel(label string) model.ElementType {
	if t, ok := labelTypes[label]; ok {
		return t
	}
	return model.ElementText
}

// Classify converts the provider's three source arrays into placements.
// Tables and pictures are classified structurally, by array membership, not
// by label. The arrays are independent, so they are classified concurrently;
// order blocks are reserved up front in texts, tables, pictures order so the
// assignment stays deterministic.
func Classify(doc *provider.Document, seq *Sequence) []Placement {
	nTexts := provCount(len(doc.Texts), func(i int) int { return len(doc.Texts[i].Prov) })
	nTables := provCount(len(doc.Tables), func(i int) int { return len(doc.Tables[i].Prov) })
	nPics := provCount(len(doc.Pictures), func(i int) int { return len(doc.Pictures[i].Prov) })

	textBase := seq.Take(nTexts)
	tableBase := seq.Take(nTables)
	picBase := seq.Take(nPics)

	texts := make([]Placement, 0, nTexts)
	tables := make([]Placement, 0, nTables)
	pics := make([]Placement, 0, nPics)

	var g errgroup.Group
	g.Go(func() error {
		order := textBase
		for _, item := range doc.Texts {
			typ := MapLabel(item.Label)
			level := 0
			if typ == model.ElementHeading {
				level = headingLevel(item.Level)
			}
			for _, prov := range item.Prov {
				texts = append(texts, Placement{
					Type:    typ,
					Content: item.Text,
					Level:   level,
					Order:   order,
					PageNo:  prov.PageNo,
					BBox:    prov.BBox,
				})
				order++
			}
		}
		return nil
	})
	g.Go(func() error {
		order := tableBase
		for _, item := range doc.Tables {
			data := RenderTable(item.Data)
			for _, prov := range item.Prov {
				tables = append(tables, Placement{
					Type:    model.ElementTable,
					Content: data.Markdown,
					Table:   data,
					Order:   order,
					PageNo:  prov.PageNo,
					BBox:    prov.BBox,
				})
				order++
			}
		}
		return nil
	})
	g.Go(func() error {
		order := picBase
		for _, item := range doc.Pictures {
			for _, prov := range item.Prov {
				pics = append(pics, Placement{
					Type:    model.ElementImage,
					Content: item.Caption,
					Order:   order,
					PageNo:  prov.PageNo,
					BBox:    prov.BBox,
				})
				order++
			}
		}
		return nil
	})
	g.Wait()

	out := make([]Placement, 0, nTexts+nTables+nPics)
	out = append(out, texts...)
	out = append(out, tables...)
	out = append(out, pics...)
	return out
}

func provCount(n int, lenAt func(int) int) int {
	total := 0
	for i := 0; i < n; i++ {
		total += lenAt(i)
	}
	return total
}

func headingLevel(level int) int {
	if level < 1 {
		return 1
	}
	return level
}
