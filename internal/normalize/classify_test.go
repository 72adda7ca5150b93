package normalize

import (
	"sort"
	"testing"

	"github.com/bmarkwell/docslice/internal/model"
	"github.com/bmarkwell/docslice/internal/provider"
)

func TestMapLabel(t *testing.T) {
	cases := []struct {
		label string
		want  model.ElementType
	}{
		{"section_header", model.ElementHeading},
		{"title", model.ElementHeading},
		{"list_item", model.ElementList},
		{"code", model.ElementCode},
		{"formula", model.ElementFormula},
		{"paragraph", model.ElementText},
		{"caption", model.ElementText},
		{"footnote", model.ElementText},
		{"", model.ElementText},
		{"something_new", model.ElementText},
	}
	for _, tc := range cases {
		if got := MapLabel(tc.label); got != tc.want {
			t.Errorf("MapLabel(%q) = %q, want %q", tc.label, got, tc.want)
		}
	}
}

func TestClassify_OrderIsPermutation(t *testing.T) {
	// 2 texts (one with 2 prov entries), 1 table, 1 picture: 5 placements,
	// orders must be exactly {0..4}.
	doc := &provider.Document{
		Texts: []provider.Text{
			{Label: "paragraph", Text: "first", Prov: []provider.Prov{{PageNo: 1}}},
			{Label: "paragraph", Text: "spans", Prov: []provider.Prov{{PageNo: 1}, {PageNo: 2}}},
		},
		Tables: []provider.Table{
			{Data: &provider.TableData{NumRows: 1, NumCols: 1}, Prov: []provider.Prov{{PageNo: 2}}},
		},
		Pictures: []provider.Picture{
			{Caption: "fig 1", Prov: []provider.Prov{{PageNo: 1}}},
		},
	}

	placements := Classify(doc, NewSequence())
	if len(placements) != 5 {
		t.Fatalf("expected 5 placements, got %d", len(placements))
	}

	orders := make([]int, len(placements))
	for i, p := range placements {
		orders[i] = p.Order
	}
	sort.Ints(orders)
	for i, o := range orders {
		if o != i {
			t.Fatalf("orders are not a permutation of 0..4: %v", orders)
		}
	}
}

func TestClassify_MultiProvenanceReplicates(t *testing.T) {
	doc := &provider.Document{
		Texts: []provider.Text{
			{Label: "paragraph", Text: "continued", Prov: []provider.Prov{{PageNo: 1}, {PageNo: 2}}},
		},
	}

	placements := Classify(doc, NewSequence())
	if len(placements) != 2 {
		t.Fatalf("expected 2 placements, got %d", len(placements))
	}
	if placements[0].Content != "continued" || placements[1].Content != "continued" {
		t.Errorf("replicas should carry the same content")
	}
	if placements[0].PageNo != 1 || placements[1].PageNo != 2 {
		t.Errorf("expected pages 1 and 2, got %d and %d", placements[0].PageNo, placements[1].PageNo)
	}
}

func TestClassify_StructuralTypes(t *testing.T) {
	doc := &provider.Document{
		Tables: []provider.Table{
			{Data: &provider.TableData{NumRows: 1, NumCols: 2, Cells: []provider.TableCell{
				{Text: "a", StartRowOffset: 0, StartColOffset: 0},
				{Text: "b", StartRowOffset: 0, StartColOffset: 1},
			}}, Prov: []provider.Prov{{PageNo: 1}}},
		},
		Pictures: []provider.Picture{
			{Caption: "diagram", Prov: []provider.Prov{{PageNo: 1}}},
		},
	}

	placements := Classify(doc, NewSequence())
	if len(placements) != 2 {
		t.Fatalf("expected 2 placements, got %d", len(placements))
	}

	var table, pic *Placement
	for i := range placements {
		switch placements[i].Type {
		case model.ElementTable:
			table = &placements[i]
		case model.ElementImage:
			pic = &placements[i]
		}
	}
	if table == nil || pic == nil {
		t.Fatalf("expected one table and one image placement, got %+v", placements)
	}
	if table.Table == nil {
		t.Errorf("table placement missing rendered data")
	}
	if table.Content != table.Table.Markdown {
		t.Errorf("table content should be its markdown rendering")
	}
	if pic.Content != "diagram" {
		t.Errorf("image content should be the caption, got %q", pic.Content)
	}
}

func TestClassify_HeadingLevels(t *testing.T) {
	doc := &provider.Document{
		Texts: []provider.Text{
			{Label: "section_header", Text: "Deep", Level: 3, Prov: []provider.Prov{{PageNo: 1}}},
			{Label: "title", Text: "Top", Prov: []provider.Prov{{PageNo: 1}}},
			{Label: "paragraph", Text: "body", Level: 5, Prov: []provider.Prov{{PageNo: 1}}},
		},
	}

	placements := Classify(doc, NewSequence())
	if placements[0].Level != 3 {
		t.Errorf("expected level 3, got %d", placements[0].Level)
	}
	if placements[1].Level != 1 {
		t.Errorf("missing heading level should default to 1, got %d", placements[1].Level)
	}
	if placements[2].Level != 0 {
		t.Errorf("non-heading should carry no level, got %d", placements[2].Level)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	doc := &provider.Document{
		Texts: []provider.Text{
			{Label: "paragraph", Text: "a", Prov: []provider.Prov{{PageNo: 1}}},
			{Label: "paragraph", Text: "b", Prov: []provider.Prov{{PageNo: 1}}},
		},
		Tables: []provider.Table{
			{Data: &provider.TableData{NumRows: 1, NumCols: 1}, Prov: []provider.Prov{{PageNo: 1}}},
		},
		Pictures: []provider.Picture{
			{Caption: "c", Prov: []provider.Prov{{PageNo: 1}}},
		},
	}

	first := Classify(doc, NewSequence())
	for i := 0; i < 20; i++ {
		again := Classify(doc, NewSequence())
		if len(again) != len(first) {
			t.Fatalf("run %d: length changed", i)
		}
		for j := range first {
			if again[j].Order != first[j].Order || again[j].Content != first[j].Content {
				t.Fatalf("run %d: placement %d differs: %+v vs %+v", i, j, again[j], first[j])
			}
		}
	}
}

func TestSequence_Take(t *testing.T) {
	seq := NewSequence()
	if got := seq.Take(3); got != 0 {
		t.Errorf("expected first block at 0, got %d", got)
	}
	if got := seq.Take(2); got != 3 {
		t.Errorf("expected second block at 3, got %d", got)
	}
	if got := seq.Next(); got != 5 {
		t.Errorf("expected next value 5, got %d", got)
	}
}
