package kplr

import "context"

// Gateway is the query surface a record uses to resolve its lazy relations
// and fetch its data files. Every record keeps exactly one owning gateway,
// the one that produced it, so a record born from an offline query never
// issues a network request, and vice versa.
//
// Gateway is implemented by Client and OfflineClient; the unexported
// methods keep the set closed.
type Gateway interface {
	// KOI fetches a single KOI by its number, for example 952.01.
	KOI(ctx context.Context, number float64) (*KOI, error)
	// Star fetches a single KIC target by its Kepler ID.
	Star(ctx context.Context, kepid int64) (*Star, error)
	// LightCurves lists the light curve data sets for a Kepler ID.
	LightCurves(ctx context.Context, kepid int64, opts ...DataSearchOption) ([]*LightCurve, error)
	// TargetPixelFiles lists the target pixel file data sets for a Kepler ID.
	TargetPixelFiles(ctx context.Context, kepid int64, opts ...DataSearchOption) ([]*TargetPixelFile, error)

	// koisForStar lists the KOIs whose host star has the given Kepler ID.
	koisForStar(ctx context.Context, kepid int64) ([]*KOI, error)
	// config exposes the data root, HTTP client, and logger used by data
	// file records for path derivation and fetching.
	config() *Config
}

// DataSearchOption narrows a light curve or target pixel file listing.
type DataSearchOption func(*dataSearch)

type dataSearch struct {
	longCadenceOnly bool
}

// LongCadenceOnly restricts a data set listing to long cadence data.
func LongCadenceOnly() DataSearchOption {
	return func(ds *dataSearch) {
		ds.longCadenceOnly = true
	}
}

func newDataSearch(opts []DataSearchOption) dataSearch {
	var ds dataSearch
	for _, opt := range opts {
		opt(&ds)
	}
	return ds
}

// relation is a memoized lazy link from a record to related records. It
// resolves at most once; both the value and the error of the first
// resolution are cached, so null results and failures are remembered just
// like successes. Records are meant to be driven by a single caller, so
// resolution is not locked.
type relation[T any] struct {
	done  bool
	value T
	err   error
}

func (r *relation[T]) resolve(fn func() (T, error)) (T, error) {
	if !r.done {
		r.value, r.err = fn()
		r.done = true
	}
	return r.value, r.err
}
