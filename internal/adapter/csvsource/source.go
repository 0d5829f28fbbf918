// Package csvsource reads the incident dataset from a CSV file.
package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/oil-spill-dashboard/internal/domain"
)

// ErrEmptyFile is returned when the file has no header row.
var ErrEmptyFile = errors.New("csv file has no header")

// Source reads raw incident rows from a CSV file on disk.
type Source struct {
	path string
}

// New creates a Source for the file at path.
func New(path string) *Source {
	return &Source{path: path}
}

// Extract reads the whole file. A missing or unreadable file is an error.
func (s *Source) Extract(ctx context.Context) (domain.RawTable, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	raw, err := Read(ctx, f)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("read dataset %s: %w", s.path, err)
	}
	raw.Source = s.path
	return raw, nil
}

// Read parses CSV from r. The first row is the header; rows may be shorter
// than the header, in which case the trailing cells are empty.
func Read(ctx context.Context, r io.Reader) (domain.RawTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return domain.RawTable{}, ErrEmptyFile
	}
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}
	// Strip a UTF-8 byte order mark left by spreadsheet exports.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var records []domain.RawRecord
	for {
		if err := ctx.Err(); err != nil {
			return domain.RawTable{}, err
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.RawTable{}, err
		}
		line, _ := cr.FieldPos(0)
		cells := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(row) {
				cells[h] = row[i]
			}
		}
		records = append(records, domain.RawRecord{Line: line, Cells: cells})
	}

	return domain.RawTable{Header: header, Records: records}, nil
}
