package feed

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Table is the raw cell grid of a feed, before any header detection
type Table struct {
	Rows [][]string
}

// parseCSV reads a CSV export. Ragged rows are accepted.
func parseCSV(data []byte) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\ufeff"))))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	table := &Table{}
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		table.Rows = append(table.Rows, record)
	}
	return table, nil
}

// parseHTML reads the first <table> of a published sheet.
// Data cells are <td>; rows made only of <th> (column letters, row
// numbers) are kept as-is so header detection can skip them.
func parseHTML(data []byte) (*Table, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	first := doc.Find("table").First()
	if first.Length() == 0 {
		return nil, fmt.Errorf("parse html: no <table> found")
	}

	table := &Table{}
	first.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		cells := tr.Find("td")
		if cells.Length() == 0 {
			cells = tr.Find("th")
		}

		row := make([]string, 0, cells.Length())
		cells.Each(func(_ int, cell *goquery.Selection) {
			row = append(row, strings.TrimSpace(cell.Text()))
		})
		table.Rows = append(table.Rows, row)
	})
	return table, nil
}
