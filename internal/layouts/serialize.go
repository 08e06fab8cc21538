package layouts

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Document is the full JSON form of a layout. Every cell carries every key.
type Document struct {
	Name *string       `json:"name"`
	Rows []RowDocument `json:"rows"`
}

type RowDocument struct {
	Cells []CellDocument `json:"cells"`
}

type CellDocument struct {
	Plugin       *string             `json:"plugin"`
	Config       map[string]any      `json:"config"`
	Sizes        map[string]*float64 `json:"sizes"`
	Align        string              `json:"align"`
	ExtraClasses string              `json:"extra_classes"`
}

// CompactDocument omits empty cell keys. It decodes to the same layout as the
// full form.
type CompactDocument struct {
	Name *string              `json:"name"`
	Rows []CompactRowDocument `json:"rows"`
}

type CompactRowDocument struct {
	Cells []CompactCellDocument `json:"cells"`
}

type CompactCellDocument struct {
	Plugin       string              `json:"plugin,omitempty"`
	Config       map[string]any      `json:"config,omitempty"`
	Sizes        map[string]*float64 `json:"sizes,omitempty"`
	Align        string              `json:"align,omitempty"`
	ExtraClasses string              `json:"extra_classes,omitempty"`
}

// Serialize returns the full document form.
func (l *Layout) Serialize() Document {
	doc := Document{Rows: make([]RowDocument, 0, l.RowCount())}
	if l == nil {
		return doc
	}
	if l.PlaceholderName != "" {
		name := l.PlaceholderName
		doc.Name = &name
	}
	for _, row := range l.Rows {
		rowDoc := RowDocument{Cells: make([]CellDocument, 0, len(row.Cells))}
		for _, cell := range row.Cells {
			copied := cell.Clone()
			cellDoc := CellDocument{
				Config:       copied.Config,
				Sizes:        copied.Sizes,
				Align:        copied.Align,
				ExtraClasses: copied.ExtraClasses,
			}
			if copied.Plugin != "" {
				plugin := copied.Plugin
				cellDoc.Plugin = &plugin
			}
			rowDoc.Cells = append(rowDoc.Cells, cellDoc)
		}
		doc.Rows = append(doc.Rows, rowDoc)
	}
	return doc
}

// SerializeCompact returns the minimal document form.
func (l *Layout) SerializeCompact() CompactDocument {
	full := l.Serialize()
	doc := CompactDocument{Name: full.Name, Rows: make([]CompactRowDocument, 0, len(full.Rows))}
	for _, row := range full.Rows {
		rowDoc := CompactRowDocument{Cells: make([]CompactCellDocument, 0, len(row.Cells))}
		for _, cell := range row.Cells {
			cellDoc := CompactCellDocument{
				Config:       cell.Config,
				Sizes:        cell.Sizes,
				Align:        cell.Align,
				ExtraClasses: cell.ExtraClasses,
			}
			if cell.Plugin != nil {
				cellDoc.Plugin = *cell.Plugin
			}
			rowDoc.Cells = append(rowDoc.Cells, cellDoc)
		}
		doc.Rows = append(doc.Rows, rowDoc)
	}
	return doc
}

// MarshalJSON encodes the full document form.
func (l *Layout) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Serialize())
}

// UnmarshalJSON accepts both document forms.
func (l *Layout) UnmarshalJSON(data []byte) error {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("layouts: decode layout: %w", err)
	}
	*l = *FromDocument(doc)
	return nil
}

// Unserialize decodes a layout from either document form.
func Unserialize(data []byte) (*Layout, error) {
	layout := &Layout{}
	if err := layout.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return layout, nil
}

// FromDocument builds a layout, defaulting keys that were omitted or null.
func FromDocument(doc Document) *Layout {
	layout := &Layout{Rows: make([]*Row, 0, len(doc.Rows))}
	if doc.Name != nil {
		layout.PlaceholderName = *doc.Name
	}
	for _, rowDoc := range doc.Rows {
		row := &Row{Cells: make([]*Cell, 0, len(rowDoc.Cells))}
		for _, cellDoc := range rowDoc.Cells {
			cell := NewCell()
			if cellDoc.Plugin != nil {
				cell.Plugin = *cellDoc.Plugin
			}
			for key, value := range cellDoc.Config {
				cell.Config[key] = cloneValue(value)
			}
			for breakpoint, size := range cellDoc.Sizes {
				cell.Sizes[breakpoint] = cloneSize(size)
			}
			cell.Align = cellDoc.Align
			cell.ExtraClasses = cellDoc.ExtraClasses
			row.Cells = append(row.Cells, cell)
		}
		layout.Rows = append(layout.Rows, row)
	}
	return layout
}

// Equal reports whether two layouts serialize to the same document.
func Equal(a, b *Layout) bool {
	return reflect.DeepEqual(a.Serialize(), b.Serialize())
}

var breakpointOrder = map[string]int{"xs": 0, "sm": 1, "md": 2, "lg": 3, "xl": 4, "xxl": 5}

// Classes returns the CSS classes derived from the cell sizes, alignment and
// extra classes.
func (c *Cell) Classes() []string {
	if c == nil {
		return nil
	}
	breakpoints := make([]string, 0, len(c.Sizes))
	for breakpoint, size := range c.Sizes {
		if size != nil && *size > 0 {
			breakpoints = append(breakpoints, breakpoint)
		}
	}
	sort.Slice(breakpoints, func(i, j int) bool {
		oi, iok := breakpointOrder[breakpoints[i]]
		oj, jok := breakpointOrder[breakpoints[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return breakpoints[i] < breakpoints[j]
		}
	})

	classes := make([]string, 0, len(breakpoints)+2)
	for _, breakpoint := range breakpoints {
		size := strconv.FormatFloat(*c.Sizes[breakpoint], 'f', -1, 64)
		classes = append(classes, "col-"+breakpoint+"-"+size)
	}
	if align := strings.TrimSpace(c.Align); align != "" {
		classes = append(classes, "xt-align-"+align)
	}
	classes = append(classes, strings.Fields(c.ExtraClasses)...)
	return classes
}
