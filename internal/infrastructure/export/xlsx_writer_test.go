package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestXLSXWriter_Bytes(t *testing.T) {
	records := []Record{
		{"business_name": "Comercial Andes", "rut": "12.345.678-5", "phone": "+56 9 8765 4321"},
		{"business_name": "Bodega Norte", "rut": "11.111.111-1"},
		{"business_name": "00123", "rut": "10.000.013-K", "phone": "2 2345 6789"},
	}

	data, err := NewXLSXWriter().Bytes(testColumns, records)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Datos"}, f.GetSheetList())

	rows, err := f.GetRows("Datos")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Razón Social", "RUT", "Teléfono"}, rows[0])
	assert.Equal(t, []string{"Comercial Andes", "12.345.678-5", "+56 9 8765 4321"}, rows[1])
	// trailing empty cells are not returned
	assert.Equal(t, []string{"Bodega Norte", "11.111.111-1"}, rows[2])
	assert.Equal(t, "00123", rows[3][0])

	cellType, err := f.GetCellType("Datos", "A4")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeNumber, cellType)

	styleID, err := f.GetCellStyle("Datos", "C1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

func TestXLSXWriter_HeaderOnly(t *testing.T) {
	data, err := NewXLSXWriter(WithSheetName("Clientes")).Bytes(testColumns, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Clientes")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestXLSXWriter_NoColumns(t *testing.T) {
	_, err := NewXLSXWriter().Bytes(nil, nil)
	assert.Error(t, err)
}
