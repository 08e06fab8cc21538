package layouts

import (
	"errors"

	"github.com/goliatone/go-xtheme/internal/domain"
)

// MaxCellsPerRow bounds the number of cells a row may hold.
const MaxCellsPerRow = 4

// ErrRowCellLimit is the source of the ValidationError raised by AddCell.
var ErrRowCellLimit = errors.New("layouts: row already holds the maximum number of cells")

// Layout is the row/cell tree describing the content of a placeholder.
type Layout struct {
	// PlaceholderName is serialized as "name".
	PlaceholderName string
	// Flavor identifies the layout variant this tree belongs to. Not serialized.
	Flavor string
	Rows   []*Row
}

// Row owns an ordered sequence of cells.
type Row struct {
	Cells []*Cell
}

// Cell holds at most one plugin and its configuration.
type Cell struct {
	Plugin       string
	Config       map[string]any
	Sizes        map[string]*float64
	Align        string
	ExtraClasses string
}

// New returns an empty layout for the placeholder.
func New(placeholder string) *Layout {
	return &Layout{PlaceholderName: placeholder}
}

// NewCell returns an empty cell.
func NewCell() *Cell {
	return &Cell{
		Config: map[string]any{},
		Sizes:  map[string]*float64{},
	}
}

// IsEmpty reports whether the cell carries no plugin.
func (c *Cell) IsEmpty() bool {
	return c == nil || c.Plugin == ""
}

// RowCount returns the number of rows.
func (l *Layout) RowCount() int {
	if l == nil {
		return 0
	}
	return len(l.Rows)
}

// BeginRow appends a new empty row and returns it.
func (l *Layout) BeginRow() *Row {
	row := &Row{}
	l.Rows = append(l.Rows, row)
	return row
}

// BeginColumn appends a cell with the given sizes to the last row, creating
// a row first when the layout has none. Row limits are not enforced here.
func (l *Layout) BeginColumn(sizes map[string]*float64) *Cell {
	if len(l.Rows) == 0 {
		l.BeginRow()
	}
	cell := NewCell()
	for breakpoint, size := range sizes {
		cell.Sizes[breakpoint] = cloneSize(size)
	}
	row := l.Rows[len(l.Rows)-1]
	row.Cells = append(row.Cells, cell)
	return cell
}

// AddPlugin sets the plugin and config of the last cell, creating a row and
// cell when needed.
func (l *Layout) AddPlugin(identifier string, config map[string]any) *Cell {
	if len(l.Rows) == 0 {
		l.BeginRow()
	}
	row := l.Rows[len(l.Rows)-1]
	if len(row.Cells) == 0 {
		row.Cells = append(row.Cells, NewCell())
	}
	cell := row.Cells[len(row.Cells)-1]
	cell.Plugin = identifier
	cell.Config = cloneConfig(config)
	return cell
}

// GetRow returns the row at y or nil when out of range.
func (l *Layout) GetRow(y int) *Row {
	if l == nil || y < 0 || y >= len(l.Rows) {
		return nil
	}
	return l.Rows[y]
}

// GetCell returns the cell at column x of row y or nil when out of range.
func (l *Layout) GetCell(x, y int) *Cell {
	row := l.GetRow(y)
	if row == nil || x < 0 || x >= len(row.Cells) {
		return nil
	}
	return row.Cells[x]
}

// AppendRow appends a new empty row.
func (l *Layout) AppendRow() *Row {
	return l.BeginRow()
}

// InsertRow inserts an empty row at y. It returns nil when y is outside
// [0, RowCount()].
func (l *Layout) InsertRow(y int) *Row {
	if y < 0 || y > len(l.Rows) {
		return nil
	}
	row := &Row{}
	l.Rows = append(l.Rows, nil)
	copy(l.Rows[y+1:], l.Rows[y:])
	l.Rows[y] = row
	return row
}

// AddCell appends an empty cell to row y. An out of range y is a no-op that
// returns nil, nil. A full row yields a ValidationError and is left untouched.
func (l *Layout) AddCell(y int) (*Cell, error) {
	row := l.GetRow(y)
	if row == nil {
		return nil, nil
	}
	if len(row.Cells) >= MaxCellsPerRow {
		return nil, domain.NewValidationError(ErrRowCellLimit, "cannot add cell: row is full")
	}
	cell := NewCell()
	row.Cells = append(row.Cells, cell)
	return cell, nil
}

// DeleteRow removes row y. Returns false when y is out of range.
func (l *Layout) DeleteRow(y int) bool {
	if l.GetRow(y) == nil {
		return false
	}
	l.Rows = append(l.Rows[:y], l.Rows[y+1:]...)
	return true
}

// DeleteCell removes cell x of row y. Returns false when out of range. The
// row is kept even when it becomes empty.
func (l *Layout) DeleteCell(x, y int) bool {
	if l.GetCell(x, y) == nil {
		return false
	}
	row := l.Rows[y]
	row.Cells = append(row.Cells[:x], row.Cells[x+1:]...)
	return true
}

// MoveRowToIndex moves row from to index to. Both indexes must address
// existing rows.
func (l *Layout) MoveRowToIndex(from, to int) bool {
	if l.GetRow(from) == nil || l.GetRow(to) == nil {
		return false
	}
	if from == to {
		return true
	}
	row := l.Rows[from]
	l.Rows = append(l.Rows[:from], l.Rows[from+1:]...)
	l.Rows = append(l.Rows, nil)
	copy(l.Rows[to+1:], l.Rows[to:])
	l.Rows[to] = row
	return true
}

// MoveCellToPosition moves cell (fromX, fromY) into row toY at column toX.
// toX is clamped to the target row bounds. Moving into another row that is
// already full is refused. The origin row is removed when it becomes empty.
func (l *Layout) MoveCellToPosition(fromX, fromY, toX, toY int) bool {
	cell := l.GetCell(fromX, fromY)
	target := l.GetRow(toY)
	if cell == nil || target == nil {
		return false
	}
	origin := l.Rows[fromY]
	if origin != target && len(target.Cells) >= MaxCellsPerRow {
		return false
	}

	origin.Cells = append(origin.Cells[:fromX], origin.Cells[fromX+1:]...)

	if toX < 0 {
		toX = 0
	}
	if toX > len(target.Cells) {
		toX = len(target.Cells)
	}
	target.Cells = append(target.Cells, nil)
	copy(target.Cells[toX+1:], target.Cells[toX:])
	target.Cells[toX] = cell

	if len(origin.Cells) == 0 {
		for idx, row := range l.Rows {
			if row == origin {
				l.Rows = append(l.Rows[:idx], l.Rows[idx+1:]...)
				break
			}
		}
	}
	return true
}

// Clone returns a deep copy of the layout.
func (l *Layout) Clone() *Layout {
	if l == nil {
		return nil
	}
	clone := &Layout{
		PlaceholderName: l.PlaceholderName,
		Flavor:          l.Flavor,
		Rows:            make([]*Row, 0, len(l.Rows)),
	}
	for _, row := range l.Rows {
		copied := &Row{Cells: make([]*Cell, 0, len(row.Cells))}
		for _, cell := range row.Cells {
			copied.Cells = append(copied.Cells, cell.Clone())
		}
		clone.Rows = append(clone.Rows, copied)
	}
	return clone
}

// Clone returns a deep copy of the cell.
func (c *Cell) Clone() *Cell {
	if c == nil {
		return nil
	}
	copied := &Cell{
		Plugin:       c.Plugin,
		Config:       cloneConfig(c.Config),
		Sizes:        make(map[string]*float64, len(c.Sizes)),
		Align:        c.Align,
		ExtraClasses: c.ExtraClasses,
	}
	for breakpoint, size := range c.Sizes {
		copied.Sizes[breakpoint] = cloneSize(size)
	}
	return copied
}

func cloneSize(size *float64) *float64 {
	if size == nil {
		return nil
	}
	value := *size
	return &value
}

func cloneConfig(config map[string]any) map[string]any {
	out := make(map[string]any, len(config))
	for key, value := range config {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneConfig(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	default:
		return value
	}
}
