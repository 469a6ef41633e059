package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/traitenum/traitenum/internal/model"
)

// gap separates table columns
const gap = "  "

// ColumnStyle selects how the cells of a column are colored
type ColumnStyle int

const (
	StylePlain ColumnStyle = iota
	// StyleIdentifier dims the a::b:: qualifier of an identifier and bolds
	// its name
	StyleIdentifier
	// StyleMuted dims the whole cell
	StyleMuted
)

// Column is one table column
type Column struct {
	Title string
	Style ColumnStyle
}

// Columns returns plain columns with the given titles
func Columns(titles ...string) []Column {
	columns := make([]Column, len(titles))
	for i, title := range titles {
		columns[i] = Column{Title: title}
	}
	return columns
}

type palette struct {
	heading *color.Color
	rule    *color.Color
	muted   *color.Color
	name    *color.Color
	key     *color.Color
}

func newPalette(noColor bool) palette {
	p := palette{
		heading: color.New(color.Bold, color.FgCyan),
		rule:    color.New(color.FgHiBlack),
		muted:   color.New(color.FgHiBlack),
		name:    color.New(color.Bold),
		key:     color.New(color.FgCyan),
	}
	if noColor {
		for _, c := range []*color.Color{p.heading, p.rule, p.muted, p.name, p.key} {
			c.DisableColor()
		}
	}
	return p
}

// Table lays out rows under a header and a rule. Empty cells print as "-".
type Table struct {
	out     io.Writer
	columns []Column
	rows    [][]string
	colors  palette
}

// NewTable creates a table with the given columns
func NewTable(w io.Writer, columns []Column, noColor bool) *Table {
	return &Table{
		out:     w,
		columns: columns,
		colors:  newPalette(noColor),
	}
}

// AddRow adds a row. Cells beyond the last column are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.columns))
	for i := range row {
		if i < len(cells) && cells[i] != "" {
			row[i] = cells[i]
		} else {
			row[i] = "-"
		}
	}
	t.rows = append(t.rows, row)
}

// AddIdentifier adds a row whose cells follow the identifier
func (t *Table) AddIdentifier(id model.Identifier, cells ...string) {
	t.AddRow(append([]string{id.String()}, cells...)...)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Render writes the table
func (t *Table) Render() {
	if len(t.columns) == 0 {
		return
	}

	widths := make([]int, len(t.columns))
	for i, col := range t.columns {
		widths[i] = width(col.Title)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], width(cell))
		}
	}

	last := len(t.columns) - 1
	for i, col := range t.columns {
		t.colors.heading.Fprint(t.out, col.Title)
		if i < last {
			fmt.Fprint(t.out, padding(col.Title, widths[i]))
		}
	}
	fmt.Fprintln(t.out)

	rules := make([]string, len(widths))
	for i, w := range widths {
		rules[i] = strings.Repeat("─", w)
	}
	t.colors.rule.Fprintln(t.out, strings.Join(rules, gap))

	for _, row := range t.rows {
		for i, col := range t.columns {
			t.writeCell(col.Style, row[i])
			if i < last {
				fmt.Fprint(t.out, padding(row[i], widths[i]))
			}
		}
		fmt.Fprintln(t.out)
	}
}

func (t *Table) writeCell(style ColumnStyle, cell string) {
	switch style {
	case StyleIdentifier:
		if i := strings.LastIndex(cell, model.PathSeparator); i >= 0 {
			split := i + len(model.PathSeparator)
			t.colors.muted.Fprint(t.out, cell[:split])
			t.colors.name.Fprint(t.out, cell[split:])
			return
		}
		t.colors.name.Fprint(t.out, cell)
	case StyleMuted:
		t.colors.muted.Fprint(t.out, cell)
	default:
		fmt.Fprint(t.out, cell)
	}
}

func width(s string) int {
	return utf8.RuneCountInString(s)
}

// padding fills cell up to width and adds the column gap
func padding(cell string, width int) string {
	return strings.Repeat(" ", max(0, width-utf8.RuneCountInString(cell))) + gap
}

// Summary renders aligned "key: value" lines
type Summary struct {
	out    io.Writer
	keys   []string
	values []string
	colors palette
}

// NewSummary creates an empty summary
func NewSummary(w io.Writer, noColor bool) *Summary {
	return &Summary{out: w, colors: newPalette(noColor)}
}

// Add appends a line. Values are formatted with fmt.Sprint.
func (s *Summary) Add(key string, value any) {
	s.keys = append(s.keys, key+":")
	s.values = append(s.values, fmt.Sprint(value))
}

// Render writes the summary
func (s *Summary) Render() {
	keyWidth := 0
	for _, key := range s.keys {
		keyWidth = max(keyWidth, width(key))
	}
	for i, key := range s.keys {
		s.colors.key.Fprint(s.out, key)
		fmt.Fprintf(s.out, "%s %s\n", strings.Repeat(" ", keyWidth-width(key)), s.values[i])
	}
}

// Header writes title underlined to its own width
func Header(w io.Writer, title string, noColor bool) {
	colors := newPalette(noColor)
	colors.heading.Fprintln(w, title)
	colors.rule.Fprintln(w, strings.Repeat("─", width(title)))
}
