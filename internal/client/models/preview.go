package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type CellKind int

const (
	CellText CellKind = iota
	CellNumber
	CellFormula
)

// Cell is one preview value: a string, a number, or a formula string
// (leading '=').
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

func TextCell(s string) Cell {
	if strings.HasPrefix(s, "=") {
		return Cell{Kind: CellFormula, Text: s}
	}
	return Cell{Kind: CellText, Text: s}
}

func NumberCell(n float64) Cell {
	return Cell{Kind: CellNumber, Number: n}
}

func (c Cell) String() string {
	if c.Kind == CellNumber {
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	}
	return c.Text
}

func (c Cell) MarshalJSON() ([]byte, error) {
	if c.Kind == CellNumber {
		return json.Marshal(c.Number)
	}
	return json.Marshal(c.Text)
}

func (c *Cell) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*c = Cell{}
		return nil
	}

	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*c = TextCell(s)
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*c = TextCell(strconv.FormatBool(v))
	default:
		var n float64
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("unsupported cell value %s: %w", string(b), err)
		}
		*c = NumberCell(n)
	}
	return nil
}

type Sheet struct {
	Name    string   `json:"name,omitempty"`
	Headers []string `json:"headers"`
	Data    [][]Cell `json:"data"`
}

// SpreadsheetPreview is the display-only summary of a generated workbook.
type SpreadsheetPreview struct {
	Title  string  `json:"title"`
	Sheets []Sheet `json:"sheets"`
}

// SheetWindow is a capped copy of a sheet for display.
type SheetWindow struct {
	Name          string
	Headers       []string
	Rows          [][]Cell
	HiddenColumns int
	HiddenRows    int
}

// Window returns the first maxCols columns and maxRows rows of every sheet.
// The result never shares backing arrays with p.
func (p *SpreadsheetPreview) Window(maxCols, maxRows int) []SheetWindow {
	if p == nil {
		return nil
	}

	maxCols, maxRows = max(maxCols, 0), max(maxRows, 0)

	out := make([]SheetWindow, 0, len(p.Sheets))
	for _, s := range p.Sheets {
		w := SheetWindow{Name: s.Name}

		nc := min(len(s.Headers), maxCols)
		w.Headers = append([]string(nil), s.Headers[:nc]...)
		w.HiddenColumns = len(s.Headers) - nc

		nr := min(len(s.Data), maxRows)
		w.HiddenRows = len(s.Data) - nr
		w.Rows = make([][]Cell, 0, nr)
		for _, row := range s.Data[:nr] {
			w.Rows = append(w.Rows, append([]Cell(nil), row[:min(len(row), maxCols)]...))
		}

		out = append(out, w)
	}
	return out
}
