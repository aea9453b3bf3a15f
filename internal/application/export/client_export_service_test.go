package exportapp

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	partnerapp "github.com/pymeboard/backend/internal/application/partner"
	"github.com/pymeboard/backend/internal/infrastructure/printing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type MockClientLister struct {
	mock.Mock
}

func (m *MockClientLister) ListAll(ctx context.Context, orgID uuid.UUID, search string) ([]partnerapp.ClientResponse, error) {
	args := m.Called(ctx, orgID, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partnerapp.ClientResponse), args.Error(1)
}

type MockArchiveStorage struct {
	mock.Mock
}

func (m *MockArchiveStorage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return m.Called(ctx, key, data, contentType).Error(0)
}

func (m *MockArchiveStorage) DownloadURL(ctx context.Context, key string) (string, time.Time, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

type MockListingPrinter struct {
	mock.Mock
}

func (m *MockListingPrinter) Print(ctx context.Context, l *printing.Listing) ([]byte, error) {
	args := m.Called(ctx, l)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// Santiago summer time
var santiago = time.FixedZone("CLST", -3*60*60)

func testClients() []partnerapp.ClientResponse {
	return []partnerapp.ClientResponse{
		{
			BusinessName: "Comercial Andes",
			Rut:          "12.345.678-5",
			Email:        "hola@andes.cl",
			Phone:        "+56987654321",
			PhoneDisplay: "+56 9 8765 4321",
			// 02:00 UTC is still the previous day in Santiago
			CreatedAt: time.Date(2024, 3, 8, 2, 0, 0, 0, time.UTC),
		},
		{
			BusinessName: "Bodega Norte",
			Rut:          "11.111.111-1",
			CreatedAt:    time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC),
		},
	}
}

func TestClientExportService_Export(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	lister := new(MockClientLister)
	lister.On("ListAll", ctx, orgID, "andes").Return(testClients(), nil)

	// 2024-03-10 01:00 UTC is 2024-03-09 in Santiago
	now := time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC)
	svc := NewClientExportService(lister, WithLocation(santiago), WithClock(func() time.Time { return now }))

	file, err := svc.Export(ctx, orgID, "andes", FormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "listado_de_clientes_09-03-2024.csv", file.Filename)
	assert.Equal(t, ContentTypeCSV, file.ContentType)
	assert.Equal(t, 2, file.Rows)

	lines := strings.Split(strings.TrimPrefix(string(file.Data), "\xEF\xBB\xBF"), "\n")
	assert.Equal(t, "Razón Social;RUT;Email;Teléfono;Dirección;Fecha de Registro", lines[0])
	assert.Equal(t, "Comercial Andes;12.345.678-5;hola@andes.cl;+56 9 8765 4321;;07-03-2024", lines[1])
	assert.Equal(t, "Bodega Norte;11.111.111-1;;;;01-03-2024", lines[2])
}

func TestClientExportService_ExportError(t *testing.T) {
	lister := new(MockClientLister)
	lister.On("ListAll", mock.Anything, mock.Anything, "").Return(nil, errors.New("db down"))

	_, err := NewClientExportService(lister).Export(context.Background(), uuid.New(), "", "")
	assert.EqualError(t, err, "db down")
}

func TestClientExportService_Archive(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	now := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)
	expires := now.Add(15 * time.Minute)

	t.Run("storage disabled", func(t *testing.T) {
		svc := NewClientExportService(new(MockClientLister))
		_, err := svc.Archive(ctx, orgID, "", FormatCSV)
		assert.ErrorIs(t, err, ErrStorageDisabled)
	})

	t.Run("uploads and presigns", func(t *testing.T) {
		lister := new(MockClientLister)
		lister.On("ListAll", ctx, orgID, "").Return(testClients(), nil)
		archive := new(MockArchiveStorage)
		key := "exports/" + orgID.String() + "/listado_de_clientes_09-03-2024.csv"
		archive.On("Put", ctx, key, mock.AnythingOfType("[]uint8"), ContentTypeCSV).Return(nil)
		archive.On("DownloadURL", ctx, key).Return("https://s3.local/"+key+"?sig", expires, nil)

		svc := NewClientExportService(lister, WithArchive(archive), WithClock(func() time.Time { return now }))
		result, err := svc.Archive(ctx, orgID, "", FormatCSV)

		require.NoError(t, err)
		assert.Equal(t, key, result.Key)
		assert.Equal(t, "listado_de_clientes_09-03-2024.csv", result.Filename)
		assert.Equal(t, expires, result.ExpiresAt)
		assert.Equal(t, 2, result.Rows)
		assert.Contains(t, result.URL, key)
		archive.AssertExpectations(t)
	})

	t.Run("upload failure", func(t *testing.T) {
		lister := new(MockClientLister)
		lister.On("ListAll", ctx, orgID, "").Return(testClients(), nil)
		archive := new(MockArchiveStorage)
		archive.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("denied"))

		svc := NewClientExportService(lister, WithArchive(archive))
		_, err := svc.Archive(ctx, orgID, "", FormatCSV)
		assert.EqualError(t, err, "denied")
		archive.AssertNotCalled(t, "DownloadURL", mock.Anything, mock.Anything)
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{"", FormatCSV, false},
		{"csv", FormatCSV, false},
		{" XLSX ", FormatXLSX, false},
		{"Pdf", FormatPDF, false},
		{"xls", "", true},
		{"docx", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.err {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClientExportService_ExportXLSX(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	lister := new(MockClientLister)
	lister.On("ListAll", ctx, orgID, "").Return(testClients(), nil)

	now := time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC)
	svc := NewClientExportService(lister, WithLocation(santiago), WithClock(func() time.Time { return now }))

	file, err := svc.Export(ctx, orgID, "", FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "listado_de_clientes_09-03-2024.xlsx", file.Filename)
	assert.Equal(t, ContentTypeXLSX, file.ContentType)
	assert.Equal(t, 2, file.Rows)

	wb, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Datos")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Razón Social", "RUT", "Email", "Teléfono", "Dirección", "Fecha de Registro"}, rows[0])
	assert.Equal(t, []string{"Comercial Andes", "12.345.678-5", "hola@andes.cl", "+56 9 8765 4321", "", "07-03-2024"}, rows[1])
}

func TestClientExportService_ExportPDF(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	now := time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC)

	t.Run("prints the listing", func(t *testing.T) {
		lister := new(MockClientLister)
		lister.On("ListAll", ctx, orgID, "andes").Return(testClients(), nil)
		printer := new(MockListingPrinter)
		printer.On("Print", ctx, mock.MatchedBy(func(l *printing.Listing) bool {
			return l.CompanyName == "Comercial Andes SpA" &&
				l.Title == "Listado de Clientes" &&
				l.GeneratedAt.Equal(now) &&
				len(l.Columns) == 6 && l.Columns[5] == "Fecha de Registro" &&
				len(l.Rows) == 2 &&
				l.Rows[0][0] == "Comercial Andes" && l.Rows[0][3] == "+56 9 8765 4321" && l.Rows[0][5] == "07-03-2024" &&
				l.Rows[1][2] == ""
		})).Return([]byte("%PDF-1.7"), nil)

		svc := NewClientExportService(lister,
			WithPrinter(printer),
			WithCompanyName("Comercial Andes SpA"),
			WithLocation(santiago),
			WithClock(func() time.Time { return now }),
		)

		file, err := svc.Export(ctx, orgID, "andes", FormatPDF)
		require.NoError(t, err)
		assert.Equal(t, "listado_de_clientes_09-03-2024.pdf", file.Filename)
		assert.Equal(t, ContentTypePDF, file.ContentType)
		assert.Equal(t, []byte("%PDF-1.7"), file.Data)
		assert.Equal(t, 2, file.Rows)
		printer.AssertExpectations(t)
	})

	t.Run("printing disabled", func(t *testing.T) {
		lister := new(MockClientLister)
		_, err := NewClientExportService(lister).Export(ctx, orgID, "", FormatPDF)
		assert.ErrorIs(t, err, ErrPrintingDisabled)
		lister.AssertNotCalled(t, "ListAll", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("printer failure", func(t *testing.T) {
		lister := new(MockClientLister)
		lister.On("ListAll", ctx, orgID, "").Return(testClients(), nil)
		printer := new(MockListingPrinter)
		printer.On("Print", ctx, mock.Anything).Return(nil, errors.New("chrome unreachable"))

		_, err := NewClientExportService(lister, WithPrinter(printer)).Export(ctx, orgID, "", FormatPDF)
		assert.EqualError(t, err, "chrome unreachable")
	})
}

func TestClientExportService_UnsupportedFormat(t *testing.T) {
	lister := new(MockClientLister)
	_, err := NewClientExportService(lister).Export(context.Background(), uuid.New(), "", Format("ods"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	lister.AssertNotCalled(t, "ListAll", mock.Anything, mock.Anything, mock.Anything)
}

func TestClientExportService_ArchivePDF(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	now := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)

	lister := new(MockClientLister)
	lister.On("ListAll", ctx, orgID, "").Return(testClients(), nil)
	printer := new(MockListingPrinter)
	printer.On("Print", ctx, mock.Anything).Return([]byte("%PDF-1.7"), nil)
	archive := new(MockArchiveStorage)
	key := "exports/" + orgID.String() + "/listado_de_clientes_09-03-2024.pdf"
	archive.On("Put", ctx, key, []byte("%PDF-1.7"), ContentTypePDF).Return(nil)
	archive.On("DownloadURL", ctx, key).Return("https://s3.local/"+key, now.Add(time.Hour), nil)

	svc := NewClientExportService(lister, WithArchive(archive), WithPrinter(printer), WithClock(func() time.Time { return now }))
	result, err := svc.Archive(ctx, orgID, "", FormatPDF)

	require.NoError(t, err)
	assert.Equal(t, key, result.Key)
	assert.Equal(t, "listado_de_clientes_09-03-2024.pdf", result.Filename)
	archive.AssertExpectations(t)
}
