package normalize

import (
	"strings"

	"github.com/bmarkwell/docslice/internal/model"
	"github.com/bmarkwell/docslice/internal/provider"
)

var cellSanitizer = strings.NewReplacer(
	"|", "\\|",
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
)

// RenderTable projects the provider's sparse spanning-cell grid onto a dense
// rows×cols grid and emits a markdown table. Each source cell's text lands
// only at its start offsets; positions covered by a row/col span stay empty.
// Expanding spans would change observable output, so the projection is kept
// as-is and documented.
func RenderTable(data *provider.TableData) *model.TableData {
	if data == nil {
		return &model.TableData{Rows: [][]string{}}
	}

	rows := make([][]string, data.NumRows)
	for r := range rows {
		rows[r] = make([]string, data.NumCols)
	}

	headerRows := 0
	for _, cell := range data.Cells {
		r, c := cell.StartRowOffset, cell.StartColOffset
		if r < 0 || r >= data.NumRows || c < 0 || c >= data.NumCols {
			continue
		}
		rows[r][c] = cellSanitizer.Replace(cell.Text)
		if cell.ColumnHeader {
			span := cell.RowSpan
			if span < 1 {
				span = 1
			}
			if r+span > headerRows {
				headerRows = r + span
			}
		}
	}

	return &model.TableData{
		Rows:       rows,
		Markdown:   renderMarkdown(rows, data.NumCols),
		HeaderRows: headerRows,
	}
}

// renderMarkdown writes the dense grid as a markdown table. The separator row
// always follows row 0, whether or not the source declared a header row;
// markdown requires one and downstream rendering tolerates the fiction.
func renderMarkdown(rows [][]string, numCols int) string {
	if len(rows) == 0 || numCols == 0 {
		return ""
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteString("|")
		for _, cell := range cells {
			sb.WriteString(" ")
			sb.WriteString(cell)
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	writeRow(rows[0])
	sb.WriteString("|")
	for i := 0; i < numCols; i++ {
		sb.WriteString(" --- |")
	}
	sb.WriteString("\n")
	for _, row := range rows[1:] {
		writeRow(row)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
