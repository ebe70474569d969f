package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// defaultSheetName is the worksheet ingestion pulls from hosted workbooks.
const defaultSheetName = "Sheet1"

// WorkbookService fetches a hosted spreadsheet and shapes one worksheet
// into rows keyed by the promoted header row. Pure extract-and-shape: no
// external state is mutated.
type WorkbookService struct {
	logger zerolog.Logger
	client *http.Client
}

func NewWorkbookService(logger zerolog.Logger) *WorkbookService {
	return &WorkbookService{
		logger: logger,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchWorksheet downloads the workbook at url (with a bearer token when
// given), opens the sheet named Sheet1 and promotes its first row to column
// headers. Short rows are padded with empty strings; cells beyond the
// header are dropped.
func (s *WorkbookService) FetchWorksheet(ctx context.Context, url, token string) ([]map[string]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build workbook request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workbook from %q: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("workbook fetch from %q returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook body: %w", err)
	}

	rows, err := s.ShapeWorkbook(body, defaultSheetName)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("url", url).Int("rows", len(rows)).Msg("worksheet fetched")
	return rows, nil
}

// ShapeWorkbook opens workbook bytes and promotes the named sheet's first
// row to headers.
func (s *WorkbookService) ShapeWorkbook(data []byte, sheet string) ([]map[string]string, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		if err := wb.Close(); err != nil {
			s.logger.Error().Err(err).Msg("error closing workbook")
		}
	}()

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return []map[string]string{}, nil
	}

	headers := rows[0]
	shaped := make([]map[string]string, 0, len(rows)-1)
	for _, raw := range rows[1:] {
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(raw) {
				// Trailing empty cells are trimmed from the returned
				// slice; cells in the middle stay.
				row[header] = raw[i]
			} else {
				row[header] = ""
			}
		}
		shaped = append(shaped, row)
	}

	return shaped, nil
}
