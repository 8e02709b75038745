package reader

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/chanmyae99/sopqa/internal/domain"
)

// readXLSX yields one page per data row across all sheets. The first row of
// each sheet is the header; row numbers count data rows from 1. Cell values
// render as "header: value" pairs, empty cells dropped.
func readXLSX(data []byte) ([]domain.Page, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	var pages []domain.Page
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		if len(rows) < 2 {
			continue
		}

		header := rows[0]
		for i, row := range rows[1:] {
			rowText := formatRow(header, row)
			if rowText == "" {
				continue
			}

			rowNum := i + 1
			pages = append(pages, domain.Page{
				Text:     fmt.Sprintf("Sheet: %s | Row %d | %s", sheet, rowNum, rowText),
				Position: domain.SheetPosition(sheet, rowNum),
			})
		}
	}

	return pages, nil
}

func formatRow(header, row []string) string {
	parts := make([]string, 0, len(row))
	for i, cell := range row {
		if cell == "" || i >= len(header) {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", header[i], cell))
	}
	return strings.Join(parts, ", ")
}
