package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testColumns = []Column{
	{Key: "business_name", Header: "Razón Social"},
	{Key: "rut", Header: "RUT"},
	{Key: "phone", Header: "Teléfono"},
}

func TestWriter_Write(t *testing.T) {
	records := []Record{
		{"business_name": "Comercial Andes; Ltda.", "rut": "12.345.678-5", "phone": "+56987654321"},
		{"business_name": "Bodega Norte", "rut": "11.111.111-1"},
	}

	var buf bytes.Buffer
	require.NoError(t, NewWriter().Write(&buf, testColumns, records))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\xEF\xBB\xBF"))
	lines := strings.Split(strings.TrimPrefix(out, "\xEF\xBB\xBF"), "\n")
	assert.Equal(t, "Razón Social;RUT;Teléfono", lines[0])
	assert.Equal(t, `"Comercial Andes; Ltda.";12.345.678-5;+56987654321`, lines[1])
	assert.Equal(t, "Bodega Norte;11.111.111-1;", lines[2])
}

func TestWriter_Options(t *testing.T) {
	data, err := NewWriter(WithDelimiter(','), WithoutBOM()).Bytes(testColumns, []Record{{"rut": "1-9"}})
	require.NoError(t, err)
	assert.Equal(t, "Razón Social,RUT,Teléfono\n,1-9,\n", string(data))
}

func TestWriter_NoColumns(t *testing.T) {
	_, err := NewWriter().Bytes(nil, nil)
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	at := time.Date(2024, 3, 7, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, "listado_de_clientes_07-03-2024.csv", Filename("Listado de Clientes", at, "csv"))
	assert.Equal(t, "clientes_activos_07-03-2024.xlsx", Filename("Clientes \t  Activos", at, "xlsx"))
	assert.Equal(t, "índice_07-03-2024.pdf", Filename("ÍNDICE", at, "pdf"))
}
