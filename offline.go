package kplr

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

// Offline table names mirror the archives' catalog names.
const (
	// koiTable is the cumulative KOI catalog.
	koiTable = "cumulative"
	// stellarTable is the DR25 stellar properties catalog.
	stellarTable = "q1_q17_dr25_stellar"
)

// OfflineClient serves the same lookups as Client from locally cached
// catalog tables instead of the network. Tables are read from
// <root>/data/tables and loaded once into an in-memory SQLite database;
// after loading they are read-only and safe for concurrent queries.
//
// Records produced by an OfflineClient resolve all of their relations
// offline; they never issue a network request.
type OfflineClient struct {
	cfg *Config

	mu     sync.Mutex
	db     *sql.DB
	loaded map[string]bool
}

// NewOffline returns an OfflineClient using cfg, or default configuration
// when cfg is nil.
func NewOffline(cfg *Config) *OfflineClient {
	if cfg == nil {
		cfg = NewConfig()
	}
	return &OfflineClient{
		cfg:    cfg,
		loaded: make(map[string]bool),
	}
}

func (o *OfflineClient) config() *Config {
	return o.cfg
}

// Close releases the in-memory table database.
func (o *OfflineClient) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.db == nil {
		return nil
	}
	err := o.db.Close()
	o.db = nil
	return err
}

// ensureTable loads the named table into the in-memory database on first
// use.
func (o *OfflineClient) ensureTable(ctx context.Context, name string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.loaded[name] {
		return nil
	}

	if o.db == nil {
		db, err := sql.Open("sqlite", ":memory:")
		if err != nil {
			return fmt.Errorf("kplr: opening table database: %w", err)
		}
		// The database is purely in-memory; a second connection would see
		// an empty schema.
		db.SetMaxOpenConns(1)
		o.db = db
	}

	path, err := findTableFile(o.cfg.DataRoot, name)
	if err != nil {
		return err
	}

	o.cfg.log().Debug("loading offline table", zap.String("table", name), zap.String("path", path))

	table, err := loadTableFile(name, path)
	if err != nil {
		return err
	}
	if err := o.loadTable(ctx, table); err != nil {
		return err
	}

	o.loaded[name] = true
	return nil
}

// loadTable creates the SQLite table and inserts every record with its
// inferred column types.
func (o *OfflineClient) loadTable(ctx context.Context, t *localTable) error {
	types := t.columnTypes()

	cols := make([]string, len(t.header))
	for i, name := range t.header {
		cols[i] = fmt.Sprintf("[%s] %s", name, types[i].sqlType())
	}
	ddl := fmt.Sprintf("CREATE TABLE [%s] (%s)", t.name, strings.Join(cols, ", "))
	if _, err := o.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("kplr: creating table %q: %w", t.name, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.header)), ", ")
	insert := fmt.Sprintf("INSERT INTO [%s] VALUES (%s)", t.name, placeholders)

	stmt, err := o.db.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("kplr: preparing insert for %q: %w", t.name, err)
	}
	defer stmt.Close()

	args := make([]any, len(t.header))
	for _, rec := range t.records {
		for i := range t.header {
			if i < len(rec) {
				args[i] = typedValue(rec[i], types[i])
			} else {
				args[i] = nil
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("kplr: loading table %q: %w", t.name, err)
		}
	}
	return nil
}

// tableQuery runs a filter against a loaded table and returns the matching
// rows. Values come back with the types the loader gave them; no separate
// normalization pass is applied.
func (o *OfflineClient) tableQuery(ctx context.Context, table, where string, args ...any) ([]Row, error) {
	if err := o.ensureTable(ctx, table); err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT * FROM [%s] WHERE %s", table, where)
	rows, err := o.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("kplr: querying table %q: %w", table, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []Row
	values := make([]any, len(columns))
	scan := make([]any, len(columns))
	for i := range values {
		scan[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, err
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			switch v := values[i].(type) {
			case []byte:
				row[col] = string(v)
			default:
				row[col] = v
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// KOI fetches a single KOI by number from the local cumulative table.
func (o *OfflineClient) KOI(ctx context.Context, number float64) (*KOI, error) {
	rows, err := o.tableQuery(ctx, koiTable, "kepoi_name = ?", koiName(number))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no KOI with number %.2f", ErrNotFound, number)
	}
	return newKOI(o, rows[0])
}

// Star fetches a single KIC target by Kepler ID from the local stellar
// table.
func (o *OfflineClient) Star(ctx context.Context, kepid int64) (*Star, error) {
	rows, err := o.tableQuery(ctx, stellarTable, "kepid = ?", kepid)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no KIC target with id %d", ErrNotFound, kepid)
	}
	// The stellar table keys stars by kepid; carry the id under the name
	// the Star record expects.
	row := rows[0]
	row["kic_kepler_id"] = kepid
	return newStar(o, row)
}

// koisForStar lists a star's KOIs from the local cumulative table, keeping
// offline records offline when their relations resolve.
func (o *OfflineClient) koisForStar(ctx context.Context, kepid int64) ([]*KOI, error) {
	rows, err := o.tableQuery(ctx, koiTable, "kepid = ?", kepid)
	if err != nil {
		return nil, err
	}
	kois := make([]*KOI, 0, len(rows))
	for _, row := range rows {
		koi, err := newKOI(o, row)
		if err != nil {
			return nil, err
		}
		kois = append(kois, koi)
	}
	return kois, nil
}

var (
	lightCurveFileRe  = regexp.MustCompile(`(kplr\d+[^/]*)_llc\.fits$`)
	targetPixelFileRe = regexp.MustCompile(`(kplr\d+[^/]*)_lpd-targ\.fits\.gz$`)
)

// LightCurves lists the light curves already present in the local cache
// for a Kepler ID by scanning the target's cache directory.
//
// Only long cadence files are discovered: the scan matches the long
// cadence filename pattern, since telling a short cadence file's data set
// apart would need the remote data_search table. The LongCadenceOnly
// option is therefore always implied offline.
func (o *OfflineClient) LightCurves(ctx context.Context, kepid int64, opts ...DataSearchOption) ([]*LightCurve, error) {
	rows, err := o.scanDataDir(kepid, lightCurveProduct, lightCurveFileRe)
	if err != nil {
		return nil, err
	}
	curves := make([]*LightCurve, 0, len(rows))
	for _, row := range rows {
		lc, err := newLightCurve(o, row)
		if err != nil {
			return nil, err
		}
		curves = append(curves, lc)
	}
	return curves, nil
}

// TargetPixelFiles lists the target pixel files already present in the
// local cache for a Kepler ID. As with LightCurves, only long cadence
// files are discovered.
func (o *OfflineClient) TargetPixelFiles(ctx context.Context, kepid int64, opts ...DataSearchOption) ([]*TargetPixelFile, error) {
	rows, err := o.scanDataDir(kepid, targetPixelProduct, targetPixelFileRe)
	if err != nil {
		return nil, err
	}
	files := make([]*TargetPixelFile, 0, len(rows))
	for _, row := range rows {
		tpf, err := newTargetPixelFile(o, row)
		if err != nil {
			return nil, err
		}
		files = append(files, tpf)
	}
	return files, nil
}

// scanDataDir walks a target's product cache directory and derives one row
// per file whose name matches the product's long cadence pattern.
func (o *OfflineClient) scanDataDir(kepid int64, prod product, pattern *regexp.Regexp) ([]Row, error) {
	dir := filepath.Join(o.cfg.DataRoot, "data", prod.name, padKepID(kepid))
	matches, err := filepath.Glob(filepath.Join(dir, "*"))
	if err != nil {
		return nil, err
	}

	var rows []Row
	for _, path := range matches {
		m := pattern.FindStringSubmatch(filepath.Base(path))
		if m == nil {
			continue
		}
		rows = append(rows, Row{
			"sci_data_set_name": m[1],
			"ktc_target_type":   longCadence,
			"ktc_kepler_id":     kepid,
		})
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no cached %s for Kepler ID %d", ErrNotFound, prod.name, kepid)
	}
	return rows, nil
}
