package analyzer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Errors
var (
	ErrNoTradesFile = errors.New("trades file not found")
	ErrUnparsedFile = errors.New("no encoding/separator combination parsed the file")
	ErrEmptyFile    = errors.New("trades file is empty")
)

// FileLayout is the naming convention for daily export files,
// in time.Format layout form ("Trades_02.01.2006.csv").
const FileLayout = "Trades_02.01.2006.csv"

// Table is a parsed trades file.
type Table struct {
	Headers []string
	Rows    [][]string

	// Detection results, for reporting.
	Encoding   string
	Separator  rune
	SlashSplit bool
}

// FindFile returns the path of the export file for the given day,
// or ErrNoTradesFile.
func FindFile(dir string, day time.Time, layout string) (string, error) {
	if layout == "" {
		layout = FileLayout
	}
	path := filepath.Join(dir, day.Format(layout))
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNoTradesFile, path)
		}
		return "", err
	}
	return path, nil
}

// candidate encodings in probe order. Plain utf-8 also covers BOM
// files: the stray BOM is trimmed from the first header.
var encodings = []struct {
	name string
	dec  encoding.Encoding
}{
	{"utf-8", nil},
	{"cp1251", charmap.Windows1251},
}

// candidate separators in probe order.
var separators = []rune{';', ',', '\t', '|', '/'}

// Load reads and parses a trades file, probing encodings and
// separators until the header splits into more than one column.
func Load(path string, logger *slog.Logger) (*Table, error) {
	if logger == nil {
		logger = slog.Default()
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read trades file: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyFile
	}

	for _, enc := range encodings {
		text, err := decode(raw, enc.dec)
		if err != nil {
			continue
		}

		for _, sep := range separators {
			table, err := parse(text, sep)
			if err != nil {
				continue
			}

			if len(table.Headers) > 1 {
				table.Encoding = enc.name
				table.Separator = sep
				logger.Info("trades file parsed",
					"encoding", enc.name,
					"separator", string(sep),
					"rows", len(table.Rows),
					"columns", len(table.Headers),
				)
				return table, nil
			}

			// Single column whose header embeds '/': split manually.
			if len(table.Headers) == 1 && strings.Contains(table.Headers[0], "/") {
				if split := slashSplit(table); split != nil {
					split.Encoding = enc.name
					split.Separator = sep
					split.SlashSplit = true
					logger.Info("trades file split manually",
						"encoding", enc.name,
						"rows", len(split.Rows),
						"columns", len(split.Headers),
					)
					return split, nil
				}
			}
		}
	}

	return nil, ErrUnparsedFile
}

func decode(raw []byte, enc encoding.Encoding) (string, error) {
	if enc == nil {
		// Unlike a decoder, string() never fails on malformed bytes;
		// check validity so CP1251 files fall through to the next pass.
		if !utf8.Valid(raw) {
			return "", errors.New("not valid utf-8")
		}
		return string(raw), nil
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func parse(text string, sep rune) (*Table, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = sep
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		// A BOM left by the plain utf-8 pass sticks to the first header.
		headers[i] = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
	}

	// Keep only rows matching the header width.
	var rows [][]string
	for _, rec := range records[1:] {
		if len(rec) == len(headers) {
			rows = append(rows, rec)
		}
	}

	return &Table{Headers: headers, Rows: rows}, nil
}

// slashSplit re-splits a single-column table on '/'. Rows whose field
// count does not match the header are dropped.
func slashSplit(t *Table) *Table {
	headers := strings.Split(t.Headers[0], "/")
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	var rows [][]string
	for _, row := range t.Rows {
		values := strings.Split(row[0], "/")
		if len(values) == len(headers) {
			rows = append(rows, values)
		}
	}

	if len(rows) == 0 {
		return nil
	}
	return &Table{Headers: headers, Rows: rows}
}
