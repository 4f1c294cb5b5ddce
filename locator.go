package kplr

import (
	"fmt"
	"path/filepath"
	"strings"
)

// longCadence is the target type marker for long cadence data. Any other
// target type selects the short cadence filename suffix.
const longCadence = "LC"

// product describes one MAST data product: its directory name under the
// cache root and remote archive, its cadence-dependent filename suffixes,
// and its file extension.
type product struct {
	name        string
	longSuffix  string
	shortSuffix string
	ext         string
}

var (
	lightCurveProduct = product{
		name:        "lightcurves",
		longSuffix:  "llc",
		shortSuffix: "slc",
		ext:         ".fits",
	}
	targetPixelProduct = product{
		name:        "target_pixel_files",
		longSuffix:  "lpd-targ",
		shortSuffix: "spd-targ",
		ext:         ".fits.gz",
	}
)

// padKepID renders a Kepler ID zero-padded to the 9 digits used in cache
// directories and archive URLs.
func padKepID(kepid int64) string {
	return fmt.Sprintf("%09d", kepid)
}

// filename derives the data file name for a data set: the lowercased
// dataset name, the cadence suffix, and the product extension.
func (p product) filename(dataset, targetType string) string {
	suffix := p.longSuffix
	if targetType != longCadence {
		suffix = p.shortSuffix
	}
	return strings.ToLower(fmt.Sprintf("%s_%s%s", dataset, suffix, p.ext))
}

// localDataPath derives the cache path for a data set:
// <root>/data/<product>/<9-digit id>/<filename>. The derivation is a pure
// function of its inputs.
func localDataPath(root string, p product, kepid int64, dataset, targetType string) string {
	return filepath.Join(root, "data", p.name, padKepID(kepid), p.filename(dataset, targetType))
}

// remoteDataURL derives the archive URL for a data set:
// <base>/<product>/<first 4 digits>/<9-digit id>/<filename>.
func remoteDataURL(base string, p product, kepid int64, dataset, targetType string) string {
	padded := padKepID(kepid)
	return fmt.Sprintf("%s/%s/%s/%s/%s", base, p.name, padded[:4], padded, p.filename(dataset, targetType))
}

// tablesDir returns the directory holding offline catalog tables.
func tablesDir(root string) string {
	return filepath.Join(root, "data", "tables")
}
