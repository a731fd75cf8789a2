// Package exporter renders aggregated tables as semicolon-separated CSV,
// BOM-prefixed so desktop spreadsheet tools open them as UTF-8 without
// prompting.
package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/gocarina/gocsv"
)

// CountRow is one line of an exported count table.
type CountRow struct {
	Value string `csv:"valor"`
	Count int    `csv:"quantidade"`
}

// utf8BOM makes Excel detect the encoding instead of assuming the system
// codepage.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CountsCSV serializes a count table with semicolon separators and CRLF
// line endings, matching the conventions of the exports this system ingests.
func CountsCSV(rows []CountRow) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.Write(utf8BOM); err != nil {
		return nil, fmt.Errorf("error writing BOM: %w", err)
	}

	writer := csv.NewWriter(&buf)
	writer.Comma = ';'
	writer.UseCRLF = true

	if err := gocsv.MarshalCSV(&rows, writer); err != nil {
		return nil, fmt.Errorf("error marshaling count table: %w", err)
	}
	return buf.Bytes(), nil
}
