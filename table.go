package kplr

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v18/arrow/array"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"github.com/xuri/excelize/v2"
)

// Offline catalog tables are plain CSV by default, optionally compressed,
// or spreadsheet/columnar exports from the archive's bulk download tools.
const (
	extCSV     = ".csv"
	extXLSX    = ".xlsx"
	extParquet = ".parquet"
	extGZ      = ".gz"
	extBZ2     = ".bz2"
	extXZ      = ".xz"
	extZSTD    = ".zst"
)

// tableExtensions is the search order for a table's backing file.
var tableExtensions = []string{
	extCSV,
	extCSV + extGZ,
	extCSV + extBZ2,
	extCSV + extXZ,
	extCSV + extZSTD,
	extXLSX,
	extParquet,
}

// localTable is one catalog table parsed from a local file: a header and
// string records, typed later by column inference when the table is loaded
// into SQLite.
type localTable struct {
	name    string
	header  []string
	records [][]string
}

// findTableFile locates the backing file for a named table beneath the
// tables directory, trying each supported extension in order.
func findTableFile(root, name string) (string, error) {
	dir := tablesDir(root)
	for _, ext := range tableExtensions {
		path := filepath.Join(dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %q under %s", ErrNoTable, name, dir)
}

// loadTableFile parses a table file into header and records, decompressing
// as needed.
func loadTableFile(name, path string) (*localTable, error) {
	switch {
	case strings.HasSuffix(path, extXLSX):
		return parseXLSXTable(name, path)
	case strings.HasSuffix(path, extParquet):
		return parseParquetTable(name, path)
	default:
		return parseCSVTable(name, path)
	}
}

// openTableReader opens path and wraps it with a decompression reader
// chosen by extension. The returned closer releases both the decompressor
// and the file.
func openTableReader(path string) (io.Reader, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	switch {
	case strings.HasSuffix(path, extGZ):
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("kplr: opening gzip table: %w", err)
		}
		return gz, func() error {
			gz.Close()
			return f.Close()
		}, nil
	case strings.HasSuffix(path, extBZ2):
		return bzip2.NewReader(f), f.Close, nil
	case strings.HasSuffix(path, extXZ):
		r, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("kplr: opening xz table: %w", err)
		}
		return r, f.Close, nil
	case strings.HasSuffix(path, extZSTD):
		dec, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("kplr: opening zstd table: %w", err)
		}
		return dec, func() error {
			dec.Close()
			return f.Close()
		}, nil
	default:
		return f, f.Close, nil
	}
}

// parseCSVTable reads a comma-separated table. Lines starting with '#' are
// catalog commentary and are skipped.
func parseCSVTable(name, path string) (*localTable, error) {
	reader, closer, err := openTableReader(path)
	if err != nil {
		return nil, err
	}
	defer closer()

	cr := csv.NewReader(reader)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("kplr: parsing table %q: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("kplr: table %q is empty", name)
	}
	return &localTable{name: name, header: rows[0], records: rows[1:]}, nil
}

// parseXLSXTable reads the first sheet of a spreadsheet export.
func parseXLSXTable(name, path string) (*localTable, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("kplr: opening table %q: %w", name, err)
	}
	defer wb.Close()

	sheets := wb.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("kplr: table %q has no sheets", name)
	}
	rows, err := wb.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("kplr: reading table %q: %w", name, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("kplr: table %q is empty", name)
	}

	header := rows[0]
	records := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		// GetRows trims trailing empty cells; restore row width.
		for len(row) < len(header) {
			row = append(row, "")
		}
		records = append(records, row)
	}
	return &localTable{name: name, header: header, records: records}, nil
}

// parseParquetTable reads a columnar export. Values are rendered back to
// strings and re-typed by column inference, the same path CSV takes.
func parseParquetTable(name, path string) (*localTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("kplr: table %q is empty", name)
	}

	pqReader, err := pqfile.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("kplr: opening table %q: %w", name, err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, nil)
	if err != nil {
		return nil, fmt.Errorf("kplr: reading table %q: %w", name, err)
	}

	tbl, err := arrowReader.ReadTable(context.Background())
	if err != nil {
		return nil, fmt.Errorf("kplr: reading table %q: %w", name, err)
	}
	defer tbl.Release()

	schema := tbl.Schema()
	header := make([]string, schema.NumFields())
	for i, field := range schema.Fields() {
		header[i] = field.Name
	}

	var records [][]string
	tr := array.NewTableReader(tbl, 0)
	defer tr.Release()
	for tr.Next() {
		batch := tr.Record()
		for i := range int(batch.NumRows()) {
			row := make([]string, batch.NumCols())
			for j, col := range batch.Columns() {
				if col.IsNull(i) {
					row[j] = ""
					continue
				}
				row[j] = col.ValueStr(i)
			}
			records = append(records, row)
		}
	}
	if err := tr.Err(); err != nil {
		return nil, fmt.Errorf("kplr: reading table %q: %w", name, err)
	}

	return &localTable{name: name, header: header, records: records}, nil
}

// columnType is the SQLite affinity inferred for a table column.
type columnType int

const (
	columnTypeText columnType = iota
	columnTypeInteger
	columnTypeReal
)

func (ct columnType) sqlType() string {
	switch ct {
	case columnTypeInteger:
		return "INTEGER"
	case columnTypeReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

// inferColumnType picks the narrowest type that fits every non-empty value
// of a column: all integers, else all numerics, else text.
func inferColumnType(values []string) columnType {
	sawValue := false
	allInts := true
	allFloats := true
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		sawValue = true
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			allInts = false
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			allFloats = false
		}
	}
	switch {
	case !sawValue:
		return columnTypeText
	case allInts:
		return columnTypeInteger
	case allFloats:
		return columnTypeReal
	default:
		return columnTypeText
	}
}

// columnTypes infers a type per column of a table.
func (t *localTable) columnTypes() []columnType {
	types := make([]columnType, len(t.header))
	column := make([]string, 0, len(t.records))
	for i := range t.header {
		column = column[:0]
		for _, rec := range t.records {
			if i < len(rec) {
				column = append(column, rec[i])
			}
		}
		types[i] = inferColumnType(column)
	}
	return types
}

// typedValue converts a raw cell to the value inserted into SQLite: NULL
// for empty cells, and the column's inferred type otherwise. A cell that
// defies its column type stays text.
func typedValue(raw string, ct columnType) any {
	if raw == "" {
		return nil
	}
	switch ct {
	case columnTypeInteger:
		if i, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil {
			return i
		}
	case columnTypeReal:
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return f
		}
	}
	return raw
}
