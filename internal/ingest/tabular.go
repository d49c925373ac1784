// Package ingest turns uploaded CSV/TSV text into parsed rows.
package ingest

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/GregMSThompson/riskbi-backend/internal/errs"
	"github.com/GregMSThompson/riskbi-backend/internal/models"
)

// MaxRows caps the data rows kept from one upload.
const MaxRows = 200

var lineBreak = regexp.MustCompile(`\r?\n`)

// Parse reads a delimited text file. The first non-blank line is the header;
// the separator is a tab when the header contains one, otherwise a comma.
// Fields are trimmed and unquoted, and non-empty numeric fields become
// numbers. Only the first MaxRows data rows are kept.
func Parse(fileName string, r io.Reader) (models.ParsedFile, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return models.ParsedFile{}, errs.NewParseError(fileName, "failed to read file")
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	var lines []string
	for _, l := range lineBreak.Split(string(raw), -1) {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) < 2 {
		return models.ParsedFile{}, errs.NewParseError(fileName, "file needs a header row and at least one data row")
	}

	sep := ','
	if strings.ContainsRune(lines[0], '\t') {
		sep = '\t'
	}

	header, err := splitLine(lines[0], sep)
	if err != nil {
		return models.ParsedFile{}, errs.NewParseError(fileName, "malformed header row")
	}

	end := min(len(lines), MaxRows+1)
	rows := make([]models.Row, 0, end-1)
	for _, line := range lines[1:end] {
		vals, err := splitLine(line, sep)
		if err != nil {
			return models.ParsedFile{}, errs.NewParseError(fileName, "malformed data row")
		}
		row := make(models.Row, len(header))
		for i, col := range header {
			v := ""
			if i < len(vals) {
				v = vals[i]
			}
			row[col] = coerce(v)
		}
		rows = append(rows, row)
	}

	return models.ParsedFile{FileName: fileName, Columns: header, Rows: rows}, nil
}

func splitLine(line string, sep rune) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(line))
	cr.Comma = sep
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	fields, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []string{""}, nil
	}
	if err != nil {
		return nil, err
	}
	for i, f := range fields {
		f = strings.TrimSpace(f)
		f = strings.TrimPrefix(f, `"`)
		f = strings.TrimSuffix(f, `"`)
		fields[i] = f
	}
	return fields, nil
}

// coerce keeps v as a string unless it is a finite number.
func coerce(v string) any {
	if v == "" {
		return v
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return v
	}
	return f
}
