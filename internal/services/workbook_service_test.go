package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	wb := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := wb.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, wb.Close())
	return buf.Bytes()
}

func TestShapeWorkbookPromotesHeaders(t *testing.T) {
	svc := NewWorkbookService(zerolog.Nop())

	data := buildWorkbook(t, [][]interface{}{
		{"Name", "Amount", "Region"},
		{"Alice", "100", "West"},
		{"Bob", "250"},
	})

	rows, err := svc.ShapeWorkbook(data, "Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, map[string]string{"Name": "Alice", "Amount": "100", "Region": "West"}, rows[0])
	// Short rows are padded so every record carries every header.
	assert.Equal(t, map[string]string{"Name": "Bob", "Amount": "250", "Region": ""}, rows[1])
}

func TestShapeWorkbookHeaderOnly(t *testing.T) {
	svc := NewWorkbookService(zerolog.Nop())

	data := buildWorkbook(t, [][]interface{}{{"Name", "Amount"}})
	rows, err := svc.ShapeWorkbook(data, "Sheet1")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestShapeWorkbookUnknownSheet(t *testing.T) {
	svc := NewWorkbookService(zerolog.Nop())

	data := buildWorkbook(t, [][]interface{}{{"Name"}})
	_, err := svc.ShapeWorkbook(data, "Sheet2")
	assert.Error(t, err)
}

func TestFetchWorksheet(t *testing.T) {
	data := buildWorkbook(t, [][]interface{}{
		{"Name", "Amount"},
		{"Alice", "100"},
	})

	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write(data)
	}))
	defer ts.Close()

	svc := NewWorkbookService(zerolog.Nop())
	rows, err := svc.FetchWorksheet(context.Background(), ts.URL, "secret-token")
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	require.Len(t, rows, 1)
	assert.Equal(t, "Alice", rows[0]["Name"])
}

func TestFetchWorksheetNonOKStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer ts.Close()

	svc := NewWorkbookService(zerolog.Nop())
	_, err := svc.FetchWorksheet(context.Background(), ts.URL, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
