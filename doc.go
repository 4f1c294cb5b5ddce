// Package kplr is a client for the Kepler mission archives. It retrieves
// planetary-candidate and confirmed-planet records from the NASA Exoplanet
// Archive, stellar and data-set records from the MAST archive, and downloads
// light curve and target pixel files into a local on-disk cache.
//
// Records are lazily linked: a Star resolves its KOIs on first access, a KOI
// resolves its Star, and a Planet resolves both, each through the client that
// produced the record. Resolved relations are memoized for the lifetime of
// the record.
//
// # Basic Usage
//
//	client := kplr.New(nil)
//
//	koi, err := client.KOI(ctx, 952.01)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	star, err := koi.Star(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	curves, err := star.LightCurves(ctx, kplr.LongCadenceOnly())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, lc := range curves {
//	    if _, err := lc.Fetch(ctx, false); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//
// # Offline Usage
//
// OfflineClient serves the same lookups from locally cached catalog tables
// instead of the network. Tables live under <root>/data/tables and are loaded
// once into an in-memory SQLite database. Supported table formats are CSV
// (optionally gzip, bzip2, xz, or zstandard compressed), XLSX, and Parquet.
//
//	offline := kplr.NewOffline(kplr.NewConfig().WithDataRoot("/var/kepler"))
//	defer offline.Close()
//
//	star, err := offline.Star(ctx, 8561063)
//
// A record born from an offline query resolves all of its relations offline;
// it never issues a network request.
//
// # Cache Layout
//
// Downloaded data files are stored beneath the configured data root:
//
//	<root>/data/lightcurves/<9-digit id>/<dataset>_llc.fits
//	<root>/data/target_pixel_files/<9-digit id>/<dataset>_lpd-targ.fits.gz
//	<root>/data/tables/<table name>.csv
//
// The data root defaults to $KPLR_ROOT, falling back to ~/.kplr.
package kplr
