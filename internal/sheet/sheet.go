// Package sheet reads and writes the outreach tracking sheet: a CSV file
// with a fixed 6-column schema. Each call opens its own handle; there is no
// shared connection state between reads and row updates.
package sheet

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Columns is the required header, in order. Row 1 is always the header, so
// the first data row carries sheet index 2.
var Columns = []string{"Date Added", "Username", "Source", "Date Sent", "Message", "Status"}

// Column positions within a row.
const (
	colDateAdded = 0
	colUsername  = 1
	colSource    = 2
	colDateSent  = 3
	colMessage   = 4
	colStatus    = 5
)

// Status values written back after processing.
const (
	StatusDrafted     = "Drafted"
	StatusConvoExists = "Convo Exists"
	StatusFailed      = "Failed"
)

// AccountRecord is one data row of the sheet. RowIndex is the 1-based sheet
// row (header included) and stays stable for the duration of a run.
type AccountRecord struct {
	RowIndex  int
	Username  string
	Source    string
	Status    string
	DateAdded string
}

// CSVStore is the file-backed implementation of the tracking sheet.
type CSVStore struct {
	path string
	log  *zap.Logger
}

// NewCSVStore creates a store for the sheet at path.
func NewCSVStore(path string, log *zap.Logger) *CSVStore {
	return &CSVStore{path: path, log: log}
}

// Read loads all data rows. The header must match Columns exactly (after
// trimming); rows whose cells are all blank are dropped; usernames are
// trimmed and lower-cased.
func (s *CSVStore) Read(ctx context.Context) ([]AccountRecord, error) {
	rows, err := s.readAll()
	if err != nil {
		return nil, err
	}
	if err := validateHeader(rows); err != nil {
		return nil, err
	}

	records := make([]AccountRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row = padRow(row)
		if allBlank(row) {
			continue
		}
		records = append(records, AccountRecord{
			RowIndex:  i + 2,
			Username:  strings.ToLower(strings.TrimSpace(row[colUsername])),
			Source:    strings.TrimSpace(row[colSource]),
			Status:    strings.TrimSpace(row[colStatus]),
			DateAdded: strings.TrimSpace(row[colDateAdded]),
		})
	}
	s.log.Debug("sheet read", zap.String("path", s.path), zap.Int("rows", len(records)))
	return records, nil
}

// UpdateOutcome rewrites the Date Sent, Message, and Status cells of one row,
// addressed by its 1-based sheet index. All other cells are left untouched.
func (s *CSVStore) UpdateOutcome(ctx context.Context, rowIndex int, dateSent, message, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rowIndex < 2 {
		return fmt.Errorf("sheet: row index %d is not a data row", rowIndex)
	}

	rows, err := s.readAll()
	if err != nil {
		return err
	}
	if err := validateHeader(rows); err != nil {
		return err
	}
	if rowIndex > len(rows) {
		return fmt.Errorf("sheet: row index %d out of range (%d rows)", rowIndex, len(rows))
	}

	row := padRow(rows[rowIndex-1])
	row[colDateSent] = dateSent
	row[colMessage] = message
	row[colStatus] = status
	rows[rowIndex-1] = row

	return s.writeAll(rows)
}

func (s *CSVStore) readAll() ([][]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("sheet: open %s: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("sheet: parse %s: %w", s.path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet: %s is empty", s.path)
	}
	return rows, nil
}

// writeAll replaces the sheet contents via a temp file in the same directory
// so a crash mid-write cannot truncate the sheet.
func (s *CSVStore) writeAll(rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".sheet-*.csv")
	if err != nil {
		return fmt.Errorf("sheet: temp file: %w", err)
	}
	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("sheet: write: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("sheet: flush: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("sheet: close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("sheet: replace %s: %w", s.path, err)
	}
	return nil
}

func validateHeader(rows [][]string) error {
	header := rows[0]
	if len(header) < len(Columns) {
		return fmt.Errorf("sheet: header has %d columns, want %d", len(header), len(Columns))
	}
	for i, want := range Columns {
		if strings.TrimSpace(header[i]) != want {
			return fmt.Errorf("sheet: header column %d is %q, want %q", i+1, strings.TrimSpace(header[i]), want)
		}
	}
	return nil
}

func padRow(row []string) []string {
	if len(row) >= len(Columns) {
		return row
	}
	padded := make([]string, len(Columns))
	copy(padded, row)
	return padded
}

func allBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
