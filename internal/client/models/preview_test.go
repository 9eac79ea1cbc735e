package models

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell_UnmarshalJSON(t *testing.T) {
	var row []Cell
	require.NoError(t, json.Unmarshal([]byte(`["Yanvar", 1500000, "=SUM(B2:B4)", 12.5, null, true]`), &row))

	require.Len(t, row, 6)
	assert.Equal(t, CellText, row[0].Kind)
	assert.Equal(t, "Yanvar", row[0].String())
	assert.Equal(t, CellNumber, row[1].Kind)
	assert.Equal(t, "1500000", row[1].String())
	assert.Equal(t, CellFormula, row[2].Kind)
	assert.Equal(t, "=SUM(B2:B4)", row[2].String())
	assert.Equal(t, "12.5", row[3].String())
	assert.Equal(t, Cell{}, row[4])
	assert.Equal(t, "true", row[5].String())
}

func TestCell_UnmarshalJSON_RejectsObjects(t *testing.T) {
	var c Cell
	require.Error(t, json.Unmarshal([]byte(`{"v":1}`), &c))
}

func TestCell_MarshalJSON(t *testing.T) {
	b, err := json.Marshal([]Cell{TextCell("a"), NumberCell(2), TextCell("=A1*2")})
	require.NoError(t, err)
	assert.JSONEq(t, `["a", 2, "=A1*2"]`, string(b))
}

func samplePreview() *SpreadsheetPreview {
	headers := []string{"Oy", "Daromad", "Xarajat", "Foyda", "Soliq", "Sof foyda", "Izoh", "Mas'ul"}
	var data [][]Cell
	for i := 0; i < 6; i++ {
		row := make([]Cell, len(headers))
		for j := range row {
			row[j] = NumberCell(float64(i*10 + j))
		}
		data = append(data, row)
	}
	return &SpreadsheetPreview{
		Title:  "Oylik moliyaviy hisobot",
		Sheets: []Sheet{{Name: "Hisobot", Headers: headers, Data: data}},
	}
}

func TestWindow_CapsColumnsAndRows(t *testing.T) {
	p := samplePreview()

	for _, tc := range []struct{ cols, rows int }{{6, 4}, {5, 3}} {
		w := p.Window(tc.cols, tc.rows)
		require.Len(t, w, 1)
		assert.Len(t, w[0].Headers, tc.cols)
		assert.Len(t, w[0].Rows, tc.rows)
		for _, row := range w[0].Rows {
			assert.Len(t, row, tc.cols)
		}
		assert.Equal(t, 8-tc.cols, w[0].HiddenColumns)
		assert.Equal(t, 6-tc.rows, w[0].HiddenRows)
		assert.Equal(t, "Hisobot", w[0].Name)
	}
}

func TestWindow_DoesNotMutateOrAlias(t *testing.T) {
	p := samplePreview()
	before := samplePreview()

	w := p.Window(6, 4)
	w[0].Headers[0] = "changed"
	w[0].Rows[0][0] = TextCell("changed")

	assert.Empty(t, cmp.Diff(before, p))
}

func TestWindow_SmallSheetAndShortRows(t *testing.T) {
	p := &SpreadsheetPreview{Sheets: []Sheet{{
		Headers: []string{"A", "B"},
		Data:    [][]Cell{{TextCell("x")}},
	}}}

	w := p.Window(6, 4)
	assert.Equal(t, []string{"A", "B"}, w[0].Headers)
	assert.Equal(t, [][]Cell{{TextCell("x")}}, w[0].Rows)
	assert.Zero(t, w[0].HiddenColumns)
	assert.Zero(t, w[0].HiddenRows)

	assert.Nil(t, (*SpreadsheetPreview)(nil).Window(6, 4))
	assert.Empty(t, p.Window(-1, -1)[0].Headers)
}
