package output

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	ptext "github.com/jedib0t/go-pretty/v6/text"
)

// Table is a simple header-plus-rows table rendered according to the
// renderer's mode.
type Table struct {
	fields []string
	rows   [][]string
}

// NewTable creates a table. fields are snake_case names; text and markdown
// output show them through Title.
func NewTable(fields ...string) *Table {
	return &Table{fields: fields}
}

// AddRow appends a row. Values are formatted with %v; nil becomes "".
func (t *Table) AddRow(values ...any) {
	row := make([]string, len(t.fields))
	for i := range row {
		if i < len(values) && values[i] != nil {
			row[i] = fmt.Sprint(values[i])
		}
	}
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Fields returns the column names.
func (t *Table) Fields() []string {
	return t.fields
}

// Rows returns the formatted cells.
func (t *Table) Rows() [][]string {
	return t.rows
}

func (t *Table) writer(styled bool) table.Writer {
	w := table.NewWriter()
	if styled {
		w.SetStyle(table.StyleLight)
	}
	w.Style().Format.Header = ptext.FormatDefault

	header := make(table.Row, len(t.fields))
	for i, f := range t.fields {
		header[i] = Title(f)
	}
	w.AppendHeader(header)

	for _, r := range t.rows {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = v
		}
		w.AppendRow(row)
	}
	return w
}

// Markdown returns the table as GitHub-flavored markdown.
func (t *Table) Markdown() string {
	return t.writer(false).RenderMarkdown()
}

// Text returns the table with box-drawing borders.
func (t *Table) Text() string {
	return t.writer(true).Render()
}

// Table writes t in the renderer's effective mode. JSON mode writes an array
// of objects keyed by field name.
func (r *Renderer) Table(t *Table) error {
	switch r.EffectiveMode() {
	case ModeJSON:
		objects := make([]map[string]string, 0, len(t.rows))
		for _, row := range t.rows {
			obj := make(map[string]string, len(t.fields))
			for i, f := range t.fields {
				obj[f] = row[i]
			}
			objects = append(objects, obj)
		}
		return r.JSON(objects)
	case ModeMarkdown:
		if t.Len() == 0 {
			r.Println("_No rows._")
			return nil
		}
		r.Println(t.Markdown())
	default:
		if t.Len() == 0 {
			r.Muted("(0 rows)")
			return nil
		}
		r.Println(t.Text())
		r.Muted(fmt.Sprintf("(%d rows)", t.Len()))
	}
	return nil
}
