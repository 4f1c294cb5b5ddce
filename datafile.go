package kplr

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// dataFile is the shared body of LightCurve and TargetPixelFile: one data
// set of a target, identified by dataset name, target type, and Kepler ID,
// with a deterministic cache path and archive URL.
type dataFile struct {
	gw   Gateway
	row  Row
	prod product

	// DatasetName is the archive's data set name, for example
	// "kplr008561063-2013011073258".
	DatasetName string

	// TargetType is the cadence marker, "LC" or "SC".
	TargetType string

	// KepID is the target's Kepler ID.
	KepID int64
}

func newDataFile(gw Gateway, row Row, prod product) (dataFile, error) {
	name, err := row.Str("sci_data_set_name")
	if err != nil {
		return dataFile{}, err
	}
	targetType, err := row.Str("ktc_target_type")
	if err != nil {
		return dataFile{}, err
	}
	kepid, err := row.Int("ktc_kepler_id")
	if err != nil {
		return dataFile{}, err
	}
	return dataFile{
		gw:          gw,
		row:         row,
		prod:        prod,
		DatasetName: name,
		TargetType:  targetType,
		KepID:       kepid,
	}, nil
}

// Row returns the full row mapping the record was built from.
func (d *dataFile) Row() Row {
	return d.row
}

// ID returns the record's identity, "<dataset name>_<target type>".
func (d *dataFile) ID() string {
	return d.DatasetName + "_" + d.TargetType
}

// LocalPath returns the file's place in the local cache tree. The path is
// a pure function of the record's fields and the configured data root.
func (d *dataFile) LocalPath() string {
	return localDataPath(d.gw.config().DataRoot, d.prod, d.KepID, d.DatasetName, d.TargetType)
}

// URL returns the file's archive URL.
func (d *dataFile) URL() string {
	return remoteDataURL(d.gw.config().DataURL, d.prod, d.KepID, d.DatasetName, d.TargetType)
}

// fetch downloads the file into the local cache. An existing local file
// short-circuits the download unless clobber is set. A failed download
// does not remove a partially written file.
func (d *dataFile) fetch(ctx context.Context, clobber bool) error {
	cfg := d.gw.config()
	path := d.LocalPath()

	if _, err := os.Stat(path); err == nil && !clobber {
		cfg.log().Info("found local file", zap.String("path", path))
		return nil
	}

	u := d.URL()
	cfg.log().Info("downloading file", zap.String("url", u))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := cfg.client().Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: archive returned %d for %s", ErrTransport, resp.StatusCode, u)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("kplr: creating cache directory: %w", err)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrTransport, err)
	}

	cfg.log().Info("saving file", zap.String("path", path))
	return os.WriteFile(path, body, 0o640)
}

// LightCurve is one light curve data set of a target.
type LightCurve struct {
	dataFile
}

func newLightCurve(gw Gateway, row Row) (*LightCurve, error) {
	df, err := newDataFile(gw, row, lightCurveProduct)
	if err != nil {
		return nil, err
	}
	return &LightCurve{dataFile: df}, nil
}

func (lc *LightCurve) String() string {
	return fmt.Sprintf("LightCurve(%q)", lc.ID())
}

// Fetch downloads the light curve into the local cache if it is not
// already present, or unconditionally when clobber is set. It returns the
// record for chaining.
func (lc *LightCurve) Fetch(ctx context.Context, clobber bool) (*LightCurve, error) {
	if err := lc.fetch(ctx, clobber); err != nil {
		return nil, err
	}
	return lc, nil
}

// TargetPixelFile is one target pixel file data set of a target.
type TargetPixelFile struct {
	dataFile
}

func newTargetPixelFile(gw Gateway, row Row) (*TargetPixelFile, error) {
	df, err := newDataFile(gw, row, targetPixelProduct)
	if err != nil {
		return nil, err
	}
	return &TargetPixelFile{dataFile: df}, nil
}

func (tpf *TargetPixelFile) String() string {
	return fmt.Sprintf("TargetPixelFile(%q)", tpf.ID())
}

// Fetch downloads the target pixel file into the local cache if it is not
// already present, or unconditionally when clobber is set. It returns the
// record for chaining.
func (tpf *TargetPixelFile) Fetch(ctx context.Context, clobber bool) (*TargetPixelFile, error) {
	if err := tpf.fetch(ctx, clobber); err != nil {
		return nil, err
	}
	return tpf, nil
}
